package httpapi

import (
	"net/http"

	"github.com/example/levelup/internal/ports/primary"
)

type responseBody struct {
	ResponseText string `json:"responseText"`
}

func (s *server) createTaskJourney(w http.ResponseWriter, r *http.Request) {
	var body primary.CreateTaskJourneyRequest
	if err := decodeBody(r, &body); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	report, err := s.tasks.CreateTaskJourney(r.Context(), body)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	status := http.StatusOK
	if report.Created {
		status = http.StatusCreated
	}
	WriteJSON(w, status, report)
}

func (s *server) enroll(w http.ResponseWriter, r *http.Request) {
	journeyID, err := pathID(r, "journeyID")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	e, err := s.tasks.Enroll(r.Context(), currentUser(r), journeyID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, e)
}

func (s *server) listEnrollments(w http.ResponseWriter, r *http.Request) {
	enrollments, err := s.tasks.ListEnrollments(r.Context(), currentUser(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, enrollments)
}

func (s *server) getTaskProgress(w http.ResponseWriter, r *http.Request) {
	journeyID, err := pathID(r, "journeyID")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	progress, err := s.tasks.GetTaskProgress(r.Context(), journeyID, currentUser(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, progress)
}

func (s *server) recordResponse(w http.ResponseWriter, r *http.Request) {
	journeyID, err := pathID(r, "journeyID")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	taskID, err := pathID(r, "taskID")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	var body responseBody
	if err := decodeBody(r, &body); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	progress, err := s.tasks.RecordResponse(r.Context(), primary.RecordResponseRequest{
		UserID:    currentUser(r),
		JourneyID: journeyID,
		TaskID:    taskID,
		Text:      body.ResponseText,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, progress)
}
