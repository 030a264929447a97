// Package wire provides dependency injection for levelup.
// It creates singleton services with lazy initialization.
package wire

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	cliadapter "github.com/example/levelup/internal/adapters/cli"
	"github.com/example/levelup/internal/adapters/filesystem"
	httpapi "github.com/example/levelup/internal/adapters/http"
	"github.com/example/levelup/internal/adapters/sqlite"
	"github.com/example/levelup/internal/app"
	"github.com/example/levelup/internal/config"
	"github.com/example/levelup/internal/db"
	"github.com/example/levelup/internal/logging"
	"github.com/example/levelup/internal/metrics"
	"github.com/example/levelup/internal/ports/primary"
	"github.com/example/levelup/internal/templates"
)

var (
	cfg = config.Defaults()

	logger         *zap.Logger
	database       *sql.DB
	registry       *metrics.Metrics
	configService  *app.ConfigServiceImpl
	journeyService primary.JourneyService
	storyService   primary.StoryService
	taskService    primary.TaskJourneyService
	userService    primary.UserService

	initErr error
	once    sync.Once
)

// SetConfig replaces the configuration used at initialization. It has no
// effect once any service has been requested.
func SetConfig(c *config.Config) {
	if c != nil {
		cfg = c
	}
}

// Config returns the active configuration.
func Config() *config.Config {
	return cfg
}

// Init initializes every service and reports the first failure.
func Init() error {
	once.Do(initServices)
	return initErr
}

func mustInit() {
	if err := Init(); err != nil {
		log.Fatalf("failed to initialize levelup: %v", err)
	}
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	logger, initErr = logging.New(cfg.Log)
	if initErr != nil {
		return
	}

	database, initErr = db.Open(db.Options{Driver: cfg.Database.Driver, Path: cfg.Database.Path})
	if initErr != nil {
		return
	}

	var source *filesystem.JourneySource
	if cfg.Journeys.Dir != "" {
		source, initErr = filesystem.NewDirJourneySource(cfg.Journeys.Dir)
		if initErr != nil {
			return
		}
	} else {
		source = filesystem.NewJourneySource(templates.Journeys())
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	registry = metrics.New(reg)

	// Repository adapters (secondary ports)
	repos := app.JourneyRepositories{
		Tx:       sqlite.NewTransactor(database),
		Journeys: sqlite.NewJourneyRepository(database),
		Configs:  sqlite.NewJourneyConfigRepository(database),
		Slots:    sqlite.NewStorySlotRepository(database),
		Stories:  sqlite.NewStoryRepository(database),
		Coverage: sqlite.NewCoverageReader(database),
		Prompts:  sqlite.NewMicroPromptRepository(database),
	}

	// Services (primary ports)
	configService = app.NewConfigService(source, logger.Named("config"), registry)
	journeyService = app.NewJourneyService(configService, repos, app.MaterializeOptions{
		Lenient:     cfg.Materialize.Mode == config.ModeLenient,
		Concurrency: cfg.Materialize.Concurrency,
	}, logger.Named("journey"), registry)
	storyService = app.NewStoryService(configService, repos.Tx, repos.Journeys, repos.Slots, repos.Stories,
		sqlite.NewSignalTagRepository(database))
	taskService = app.NewTaskService(source, app.TaskRepositories{
		Tx:          repos.Tx,
		Journeys:    repos.Journeys,
		Questions:   sqlite.NewQuestionRepository(database),
		Tasks:       sqlite.NewJourneyTaskRepository(database),
		Enrollments: sqlite.NewEnrollmentRepository(database),
	}, journeyService, logger.Named("tasks"), registry)
	userService = app.NewUserService(sqlite.NewUserRepository(database))
}

// Logger returns the application logger.
func Logger() *zap.Logger {
	mustInit()
	return logger
}

// Database returns the shared connection.
func Database() *sql.DB {
	mustInit()
	return database
}

// ConfigService returns the singleton journey document cache.
func ConfigService() primary.ConfigService {
	mustInit()
	return configService
}

// JourneyService returns the singleton JourneyService instance.
func JourneyService() primary.JourneyService {
	mustInit()
	return journeyService
}

// StoryService returns the singleton StoryService instance.
func StoryService() primary.StoryService {
	mustInit()
	return storyService
}

// TaskJourneyService returns the singleton TaskJourneyService instance.
func TaskJourneyService() primary.TaskJourneyService {
	mustInit()
	return taskService
}

// UserService returns the singleton UserService instance.
func UserService() primary.UserService {
	mustInit()
	return userService
}

// JourneyAdapter returns a new JourneyAdapter writing to out.
func JourneyAdapter(out io.Writer) *cliadapter.JourneyAdapter {
	return cliadapter.NewJourneyAdapter(JourneyService(), orStdout(out))
}

// StoryAdapter returns a new StoryAdapter writing to out.
func StoryAdapter(out io.Writer) *cliadapter.StoryAdapter {
	return cliadapter.NewStoryAdapter(StoryService(), orStdout(out))
}

// TaskAdapter returns a new TaskAdapter writing to out.
func TaskAdapter(out io.Writer) *cliadapter.TaskAdapter {
	return cliadapter.NewTaskAdapter(TaskJourneyService(), orStdout(out))
}

func orStdout(out io.Writer) io.Writer {
	if out == nil {
		return os.Stdout
	}
	return out
}

// HTTPHandler builds the API router over the singleton services.
func HTTPHandler() (http.Handler, error) {
	mustInit()
	if cfg.Server.JWTSecret == "" {
		return nil, errors.New("server.jwt_secret (LEVELUP_JWT_SECRET) is required to serve the API")
	}
	return httpapi.NewRouter(httpapi.Dependencies{
		Journeys:  journeyService,
		Stories:   storyService,
		Tasks:     taskService,
		Config:    configService,
		Logger:    logger.Named("http"),
		Metrics:   registry,
		JWTSecret: []byte(cfg.Server.JWTSecret),
	}), nil
}

// StartWatcher starts the journey document watcher when journeys.watch is
// set and documents come from a directory. It returns nil otherwise.
func StartWatcher(ctx context.Context) (*filesystem.TemplateWatcher, error) {
	mustInit()
	if !cfg.Journeys.Watch {
		return nil, nil
	}
	if cfg.Journeys.Dir == "" {
		logger.Warn("journeys.watch ignored: embedded documents never change")
		return nil, nil
	}

	w, err := filesystem.NewTemplateWatcher(cfg.Journeys.Dir, configService, logger.Named("watcher"))
	if err != nil {
		return nil, err
	}
	if err := w.Start(ctx); err != nil {
		_ = w.Stop()
		return nil, fmt.Errorf("failed to start journey watcher: %w", err)
	}
	return w, nil
}

// Close releases the database and flushes the logger.
func Close() error {
	var err error
	if database != nil {
		err = database.Close()
	}
	if logger != nil {
		_ = logger.Sync()
	}
	return err
}
