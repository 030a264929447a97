package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/example/levelup/internal/metrics"
	"github.com/example/levelup/internal/ports/primary"
)

// Dependencies holds everything the router needs.
type Dependencies struct {
	Journeys  primary.JourneyService
	Stories   primary.StoryService
	Tasks     primary.TaskJourneyService
	Config    primary.ConfigService
	Logger    *zap.Logger
	Metrics   *metrics.Metrics
	JWTSecret []byte
}

type server struct {
	journeys primary.JourneyService
	stories  primary.StoryService
	tasks    primary.TaskJourneyService
	config   primary.ConfigService
	logger   *zap.Logger
}

// NewRouter builds the API. Health and metrics are public; everything under
// /api other than health requires a bearer token.
func NewRouter(deps Dependencies) chi.Router {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &server{
		journeys: deps.Journeys,
		stories:  deps.Stories,
		tasks:    deps.Tasks,
		config:   deps.Config,
		logger:   logger,
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Recovery(logger))
	r.Use(Instrument(logger, deps.Metrics))

	r.Get("/api/health", handleHealth)
	r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(Authenticate(deps.JWTSecret))

		r.Get("/api/journeys", s.listJourneys)
		r.Post("/api/journeys/from-config/{template}", s.createJourneyFromConfig)
		r.Get("/api/journeys/{journeyID}/config", s.getJourneyConfig)
		r.Get("/api/journeys/{journeyID}/story-slots", s.getStorySlots)
		r.Get("/api/journeys/{journeyID}/story-slots/progress", s.getSlotsWithProgress)
		r.Get("/api/journeys/{journeyID}/signal-coverage", s.getSignalCoverage)
		r.Get("/api/journeys/{journeyID}/coverage-report", s.getCoverageReport)
		r.Get("/api/journeys/{journeyID}/stories", s.getUserStories)

		r.Post("/api/task-journeys", s.createTaskJourney)
		r.Post("/api/journeys/{journeyID}/enroll", s.enroll)
		r.Get("/api/enrollments", s.listEnrollments)
		r.Get("/api/journeys/{journeyID}/tasks", s.getTaskProgress)
		r.Post("/api/journeys/{journeyID}/tasks/{taskID}/response", s.recordResponse)

		r.Get("/api/sparc-prompts/{section}", s.getMicroPrompts)
		r.Get("/api/signals", s.listSignals)
		r.Get("/api/signals/{signalID}", s.getSignal)

		r.Post("/api/stories", s.createStory)
		r.Get("/api/stories/{storyID}", s.getStory)
		r.Put("/api/stories/{storyID}/sparc/{section}", s.updateSection)
		r.Post("/api/stories/{storyID}/signals", s.tagSignals)
		r.Put("/api/stories/{storyID}/complete", s.completeStory)
	})

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// fail logs server-side failures before writing the error response.
func (s *server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if StatusFor(err) >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", RequestIDFrom(r.Context())),
			zap.Error(err))
	}
	WriteError(w, err)
}
