package httpapi

import (
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
)

func (s *HTTPServer) handleListTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	// unparsable values fall through as 0 and get the defaults
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	result, err := s.tasks.List(r.Context(), userID, page, limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *HTTPServer) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	var in services.CreateTaskInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	t, err := s.tasks.Create(r.Context(), userID, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *HTTPServer) handleGetTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	t, err := s.tasks.Get(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *HTTPServer) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	var in services.UpdateTaskInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	t, err := s.tasks.Update(r.Context(), userID, r.PathValue("id"), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *HTTPServer) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	if err := s.tasks.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Task deleted")
}

func (s *HTTPServer) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := UserIDFromContext(r.Context())
	if !ok {
		s.writeError(w, r, common.ErrMissingToken)
	}
	return id, ok
}
