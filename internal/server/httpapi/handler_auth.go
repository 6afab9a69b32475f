package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
)

type registerResponse struct {
	Message string       `json:"message"`
	User    *models.User `json:"user"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in services.RegisterInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	u, err := s.users.Register(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "Registered", "user_id", u.ID)
	writeJSON(w, http.StatusCreated, registerResponse{Message: "User registered successfully", User: u})
}

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.users.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (s *HTTPServer) handleLogout(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		s.writeError(w, r, common.ErrMissingToken)
		return
	}

	if err := s.users.Logout(r.Context(), userID); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "Logged out", "user_id", userID)
	writeMessage(w, http.StatusOK, "Logged out successfully")
}
