package db

import (
	"database/sql"
	"fmt"
)

// SchemaSQL is the complete schema for fresh installs.
// It reflects the state after all migrations.
//
// # Schema Drift Protection
//
// This is the SINGLE SOURCE OF TRUTH for the database schema. Tests open
// databases through OpenMemory / GetSchemaSQL rather than declaring tables of
// their own, so a repository that references a column missing here fails
// with "no such column" at test time.
//
// When adding new columns or tables:
//  1. Add a migration in migrations.go
//  2. Update SchemaSQL here
//  3. Run `go test ./...`
const SchemaSQL = `
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

CREATE UNIQUE INDEX IF NOT EXISTS idx_journeys_title ON journeys(title);

-- Template a journey was materialized from
CREATE TABLE IF NOT EXISTS journey_configs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	config_file TEXT NOT NULL,
	parsed_config TEXT NOT NULL,
	version TEXT DEFAULT '1.0',
	is_active BOOLEAN DEFAULT 1,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	journey_id INTEGER REFERENCES journeys(id) ON DELETE CASCADE
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_journey_configs_journey ON journey_configs(journey_id);

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

CREATE INDEX IF NOT EXISTS idx_user_stories_user ON user_stories(user_id, journey_id);

CREATE TABLE IF NOT EXISTS story_signals (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	story_id INTEGER NOT NULL,
	signal_name TEXT NOT NULL,
	strength INTEGER DEFAULT 1,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME,
	FOREIGN KEY (story_id) REFERENCES user_stories(id) ON DELETE CASCADE,
	UNIQUE(story_id, signal_name)
);

CREATE INDEX IF NOT EXISTS idx_story_signals_story ON story_signals(story_id);

-- Guiding questions per SPARC section
CREATE TABLE IF NOT EXISTS micro_prompts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	section TEXT NOT NULL,
	prompt_text TEXT NOT NULL,
	display_order INTEGER NOT NULL,
	is_active BOOLEAN DEFAULT 1,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_micro_prompts_section_text ON micro_prompts(section, prompt_text);

-- Question-based journeys and enrollment
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
`

// InitSchema brings database up to date.
// Fresh databases get SchemaSQL directly with every migration marked applied.
// Databases created before versioning (a journeys table but no
// schema_version) and versioned databases run pending migrations.
func InitSchema(database *sql.DB) error {
	var tableCount int
	err := database.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableCount)
	if err != nil {
		return err
	}

	if tableCount > 0 {
		return RunMigrations(database)
	}

	var legacyCount int
	err = database.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('journeys', 'user_stories')").Scan(&legacyCount)
	if err != nil {
		return err
	}
	if legacyCount > 0 {
		return RunMigrations(database)
	}

	tx, err := database.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(SchemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if err := createVersionTable(tx); err != nil {
		return err
	}
	for _, m := range migrations {
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", m.Version); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
		}
	}

	return tx.Commit()
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}
