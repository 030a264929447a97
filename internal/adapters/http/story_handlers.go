package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/example/levelup/internal/ports/primary"
)

type createStoryBody struct {
	JourneyID    int64      `json:"journeyId"`
	SlotID       *int64     `json:"slotId"`
	StoryTitle   string     `json:"storyTitle"`
	Year         flexString `json:"year"`
	Stakeholders string     `json:"stakeholders"`
	Stakes       string     `json:"stakes"`
}

type sectionBody struct {
	Content string `json:"content"`
}

type signalsBody struct {
	Signals []primary.SignalTag `json:"signals"`
}

func (s *server) createStory(w http.ResponseWriter, r *http.Request) {
	var body createStoryBody
	if err := decodeBody(r, &body); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	st, err := s.stories.CreateStory(r.Context(), primary.CreateStoryRequest{
		UserID:       currentUser(r),
		JourneyID:    body.JourneyID,
		SlotID:       body.SlotID,
		StoryTitle:   body.StoryTitle,
		Year:         string(body.Year),
		Stakeholders: body.Stakeholders,
		Stakes:       body.Stakes,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, st)
}

func (s *server) getStory(w http.ResponseWriter, r *http.Request) {
	storyID, err := pathID(r, "storyID")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	st, err := s.stories.GetStory(r.Context(), currentUser(r), storyID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, st)
}

func (s *server) updateSection(w http.ResponseWriter, r *http.Request) {
	storyID, err := pathID(r, "storyID")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	var body sectionBody
	if err := decodeBody(r, &body); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	section := chi.URLParam(r, "section")
	err = s.stories.UpdateSection(r.Context(), primary.UpdateSectionRequest{
		UserID:  currentUser(r),
		StoryID: storyID,
		Section: section,
		Content: body.Content,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"id": storyID, "section": section})
}

func (s *server) tagSignals(w http.ResponseWriter, r *http.Request) {
	storyID, err := pathID(r, "storyID")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	var body signalsBody
	if err := decodeBody(r, &body); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	tags, err := s.stories.TagSignals(r.Context(), primary.TagSignalsRequest{
		UserID:  currentUser(r),
		StoryID: storyID,
		Tags:    body.Signals,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, signalsBody{Signals: tags})
}

func (s *server) completeStory(w http.ResponseWriter, r *http.Request) {
	storyID, err := pathID(r, "storyID")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if err := s.stories.CompleteStory(r.Context(), currentUser(r), storyID); err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"id": storyID, "is_complete": true})
}
