package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/example/levelup/internal/ports/primary"
)

type materializeResponse struct {
	ID          int64    `json:"id"`
	Template    string   `json:"template"`
	Title       string   `json:"title"`
	Created     bool     `json:"created"`
	FailedSlots []string `json:"failed_slots,omitempty"`
	Undeclared  []string `json:"undeclared_signals,omitempty"`
}

func (s *server) createJourneyFromConfig(w http.ResponseWriter, r *http.Request) {
	report, err := s.journeys.MaterializeJourney(r.Context(), chi.URLParam(r, "template"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	resp := materializeResponse{
		ID:         report.JourneyID,
		Template:   report.TemplateName,
		Title:      report.Title,
		Created:    report.Created,
		Undeclared: report.UndeclaredSignals,
	}
	for _, f := range report.Failed() {
		resp.FailedSlots = append(resp.FailedSlots, f.SlotKey)
	}

	status := http.StatusOK
	if report.Created {
		status = http.StatusCreated
	}
	WriteJSON(w, status, resp)
}

func (s *server) listJourneys(w http.ResponseWriter, r *http.Request) {
	journeys, err := s.journeys.ListJourneys(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, journeys)
}

func (s *server) getJourneyConfig(w http.ResponseWriter, r *http.Request) {
	journeyID, err := pathID(r, "journeyID")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	cfg, err := s.journeys.GetJourneyConfig(r.Context(), journeyID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, cfg)
}

func (s *server) getStorySlots(w http.ResponseWriter, r *http.Request) {
	journeyID, err := pathID(r, "journeyID")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	slots, err := s.journeys.GetStorySlots(r.Context(), journeyID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, slots)
}

func (s *server) getSlotsWithProgress(w http.ResponseWriter, r *http.Request) {
	journeyID, err := pathID(r, "journeyID")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	slots, err := s.journeys.GetSlotsWithProgress(r.Context(), journeyID, currentUser(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, slots)
}

func (s *server) getSignalCoverage(w http.ResponseWriter, r *http.Request) {
	journeyID, err := pathID(r, "journeyID")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	coverage, err := s.journeys.GetSignalCoverage(r.Context(), journeyID, currentUser(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, coverage)
}

func (s *server) getCoverageReport(w http.ResponseWriter, r *http.Request) {
	journeyID, err := pathID(r, "journeyID")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	report, err := s.journeys.GetCoverageReport(r.Context(), journeyID, currentUser(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, report)
}

func (s *server) getUserStories(w http.ResponseWriter, r *http.Request) {
	journeyID, err := pathID(r, "journeyID")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	stories, err := s.journeys.GetUserArtifacts(r.Context(), currentUser(r), journeyID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, stories)
}

func (s *server) getMicroPrompts(w http.ResponseWriter, r *http.Request) {
	prompts, err := s.journeys.GetMicroPrompts(r.Context(), chi.URLParam(r, "section"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, prompts)
}

func (s *server) listSignals(w http.ResponseWriter, r *http.Request) {
	catalog, err := s.config.LoadSignalCatalog(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, catalog)
}

func (s *server) getSignal(w http.ResponseWriter, r *http.Request) {
	catalog, err := s.config.LoadSignalCatalog(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	id := chi.URLParam(r, "signalID")
	signal, ok := catalog.Lookup(id)
	if !ok {
		s.fail(w, r, fmt.Errorf("%w: signal %q (known: %s)", primary.ErrNotFound, id, strings.Join(catalog.IDs(), ", ")))
		return
	}
	WriteJSON(w, http.StatusOK, signal)
}
