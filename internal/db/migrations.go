package db

import (
	"database/sql"
	"fmt"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.Tx) error
}

// migrations is the list of all migrations in order
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_users_and_journeys",
		Up:      migrationV1,
	},
	{
		Version: 2,
		Name:    "create_journey_config_tables",
		Up:      migrationV2,
	},
	{
		Version: 3,
		Name:    "unique_journey_titles",
		Up:      migrationV3,
	},
	{
		Version: 4,
		Name:    "key_journey_configs_by_journey",
		Up:      migrationV4,
	},
	{
		Version: 5,
		Name:    "unique_micro_prompts",
		Up:      migrationV5,
	},
	{
		Version: 6,
		Name:    "add_updated_at_to_story_signals",
		Up:      migrationV6,
	},
	{
		Version: 7,
		Name:    "create_task_journey_tables",
		Up:      migrationV7,
	},
}

// LatestVersion returns the highest known migration version.
func LatestVersion() int {
	return migrations[len(migrations)-1].Version
}

func createVersionTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}
	return nil
}

// RunMigrations executes all pending migrations, each in its own transaction.
func RunMigrations(database *sql.DB) error {
	tx, err := database.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := createVersionTable(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema_version table: %w", err)
	}

	var currentVersion int
	err = database.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}
		if err := applyMigration(database, migration); err != nil {
			return err
		}
	}

	return nil
}

func applyMigration(database *sql.DB, migration Migration) error {
	tx, err := database.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
	}
	defer tx.Rollback()

	if err := migration.Up(tx); err != nil {
		return fmt.Errorf("migration %d (%s) failed: %w", migration.Version, migration.Name, err)
	}

	if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", migration.Version); err != nil {
		return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
	}
	return nil
}

// migrationV1 creates the tables shared with the journaling app.
func migrationV1(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL DEFAULT '',
			display_name TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS journeys (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			description TEXT,
			cover_image_url TEXT,
			duration_weeks INTEGER NOT NULL,
			cadence TEXT NOT NULL,
			is_active BOOLEAN DEFAULT 1,
			is_default BOOLEAN DEFAULT 0,
			created_by INTEGER,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (created_by) REFERENCES users (id)
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create base tables: %w", err)
	}
	return nil
}

// migrationV2 creates the config-driven journey tables.
func migrationV2(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS journey_configs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			config_file TEXT NOT NULL,
			parsed_config TEXT NOT NULL,
			version TEXT DEFAULT '1.0',
			is_active BOOLEAN DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS story_slots (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			journey_id INTEGER NOT NULL,
			slot_key TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT,
			signals TEXT,
			framework TEXT DEFAULT 'SPARC',
			estimated_minutes INTEGER DEFAULT 45,
			display_order INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (journey_id) REFERENCES journeys(id) ON DELETE CASCADE,
			UNIQUE(journey_id, slot_key)
		);

		CREATE TABLE IF NOT EXISTS user_stories (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			journey_id INTEGER NOT NULL,
			slot_id INTEGER,
			story_title TEXT,
			year TEXT,
			stakeholders TEXT,
			stakes TEXT,
			situation TEXT,
			problem TEXT,
			actions TEXT,
			results TEXT,
			coda TEXT,
			star_situation TEXT,
			star_task TEXT,
			star_action TEXT,
			star_result TEXT,
			sixty_second_version TEXT,
			bullet_outline TEXT,
			framework TEXT DEFAULT 'SPARC',
			is_complete BOOLEAN DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id),
			FOREIGN KEY (journey_id) REFERENCES journeys(id),
			FOREIGN KEY (slot_id) REFERENCES story_slots(id)
		);

		CREATE TABLE IF NOT EXISTS story_signals (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			story_id INTEGER NOT NULL,
			signal_name TEXT NOT NULL,
			strength INTEGER DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (story_id) REFERENCES user_stories(id) ON DELETE CASCADE,
			UNIQUE(story_id, signal_name)
		);

		CREATE TABLE IF NOT EXISTS micro_prompts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			section TEXT NOT NULL,
			prompt_text TEXT NOT NULL,
			display_order INTEGER NOT NULL,
			is_active BOOLEAN DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_user_stories_user ON user_stories(user_id, journey_id);
		CREATE INDEX IF NOT EXISTS idx_story_signals_story ON story_signals(story_id);
	`)
	if err != nil {
		return fmt.Errorf("failed to create journey config tables: %w", err)
	}
	return nil
}

// migrationV3 makes journey titles unique. Existing duplicates keep their
// lowest id under the original title; later copies get an id suffix.
func migrationV3(tx *sql.Tx) error {
	_, err := tx.Exec(`
		UPDATE journeys
		SET title = title || ' (#' || id || ')'
		WHERE id NOT IN (SELECT MIN(id) FROM journeys GROUP BY title)
	`)
	if err != nil {
		return fmt.Errorf("failed to rename duplicate journeys: %w", err)
	}

	if _, err := tx.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_journeys_title ON journeys(title)`); err != nil {
		return fmt.Errorf("failed to create title index: %w", err)
	}
	return nil
}

// migrationV4 links journey_configs rows to the journey they describe.
// Pre-existing rows cannot be attributed and keep a NULL journey_id.
func migrationV4(tx *sql.Tx) error {
	_, err := tx.Exec(`ALTER TABLE journey_configs ADD COLUMN journey_id INTEGER REFERENCES journeys(id) ON DELETE CASCADE`)
	if err != nil {
		return fmt.Errorf("failed to add journey_id column: %w", err)
	}

	if _, err := tx.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_journey_configs_journey ON journey_configs(journey_id)`); err != nil {
		return fmt.Errorf("failed to create journey_id index: %w", err)
	}
	return nil
}

// migrationV5 removes duplicated prompts left by repeated seeding and
// enforces uniqueness so INSERT OR IGNORE is idempotent.
func migrationV5(tx *sql.Tx) error {
	_, err := tx.Exec(`
		DELETE FROM micro_prompts
		WHERE id NOT IN (SELECT MIN(id) FROM micro_prompts GROUP BY section, prompt_text)
	`)
	if err != nil {
		return fmt.Errorf("failed to remove duplicate prompts: %w", err)
	}

	if _, err := tx.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_micro_prompts_section_text ON micro_prompts(section, prompt_text)`); err != nil {
		return fmt.Errorf("failed to create prompt index: %w", err)
	}
	return nil
}

// migrationV6 tracks when a tag's strength last changed.
func migrationV6(tx *sql.Tx) error {
	if _, err := tx.Exec(`ALTER TABLE story_signals ADD COLUMN updated_at DATETIME`); err != nil {
		return fmt.Errorf("failed to add updated_at column: %w", err)
	}
	return nil
}

// migrationV7 adds question-based journeys: tasks backed by questions,
// enrollments and per-task progress.
func migrationV7(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS question_categories (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			description TEXT,
			display_order INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS questions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			category_id INTEGER,
			week_number INTEGER,
			title TEXT NOT NULL,
			main_prompt TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (category_id) REFERENCES question_categories(id)
		);

		CREATE TABLE IF NOT EXISTS question_details (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			question_id INTEGER NOT NULL,
			detail_text TEXT NOT NULL,
			display_order INTEGER NOT NULL,
			FOREIGN KEY (question_id) REFERENCES questions(id) ON DELETE CASCADE
		);

		CREATE TABLE IF NOT EXISTS question_responses (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			question_id INTEGER NOT NULL,
			user_id INTEGER NOT NULL,
			response_text TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (question_id) REFERENCES questions(id),
			FOREIGN KEY (user_id) REFERENCES users(id),
			UNIQUE(question_id, user_id)
		);

		CREATE TABLE IF NOT EXISTS journey_tasks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			journey_id INTEGER NOT NULL,
			task_order INTEGER NOT NULL,
			title TEXT NOT NULL,
			description TEXT,
			task_type TEXT NOT NULL DEFAULT 'question',
			question_id INTEGER,
			estimated_time_minutes INTEGER DEFAULT 30,
			page_number INTEGER,
			chapter_name TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (journey_id) REFERENCES journeys(id) ON DELETE CASCADE,
			FOREIGN KEY (question_id) REFERENCES questions(id),
			UNIQUE(journey_id, task_order)
		);

		CREATE TABLE IF NOT EXISTS user_journeys (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			journey_id INTEGER NOT NULL,
			enrolled_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			start_date DATE NOT NULL,
			status TEXT DEFAULT 'active',
			completion_percentage REAL DEFAULT 0,
			completed_at DATETIME,
			FOREIGN KEY (user_id) REFERENCES users(id),
			FOREIGN KEY (journey_id) REFERENCES journeys(id),
			UNIQUE(user_id, journey_id)
		);

		CREATE TABLE IF NOT EXISTS user_task_progress (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_journey_id INTEGER NOT NULL,
			task_id INTEGER NOT NULL,
			user_id INTEGER NOT NULL,
			status TEXT DEFAULT 'pending',
			started_at DATETIME,
			completed_at DATETIME,
			question_response_id INTEGER,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_journey_id) REFERENCES user_journeys(id) ON DELETE CASCADE,
			FOREIGN KEY (task_id) REFERENCES journey_tasks(id),
			FOREIGN KEY (user_id) REFERENCES users(id),
			FOREIGN KEY (question_response_id) REFERENCES question_responses(id),
			UNIQUE(user_journey_id, task_id)
		);

		CREATE INDEX IF NOT EXISTS idx_journey_tasks_journey ON journey_tasks(journey_id, task_order);
		CREATE INDEX IF NOT EXISTS idx_user_journeys_user ON user_journeys(user_id);
	`)
	if err != nil {
		return fmt.Errorf("failed to create task journey tables: %w", err)
	}
	return nil
}
