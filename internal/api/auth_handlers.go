package api

import (
	"errors"
	"net/http"

	"padelclub/internal/models"
	"padelclub/internal/service"
	"padelclub/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type sessionResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !s.decode(w, r, &req) {
		return
	}

	user, token, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, http.StatusUnauthorized, err.Error())
		return
	}

	render.JSON(w, r, sessionResponse{Token: token, User: user})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !s.decode(w, r, &req) {
		return
	}

	user, token, err := s.users.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrEmailTaken):
			writeError(w, r, http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrMissingFields):
			writeError(w, r, http.StatusBadRequest, err.Error())
		default:
			writeError(w, r, http.StatusInternalServerError, "failed to register")
		}
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, sessionResponse{Token: token, User: user})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.users.Logout(r.Context(), tokenFrom(r.Context())); err != nil {
		writeError(w, r, http.StatusInternalServerError, "failed to log out")
		return
	}
	render.NoContent(w, r)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, userFrom(r.Context()))
}

type profileRequest struct {
	Name   string `json:"name" validate:"required"`
	Avatar string `json:"avatar"`
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if !s.decode(w, r, &req) {
		return
	}

	user := userFrom(r.Context()).Clone()
	user.Name = req.Name
	user.Avatar = req.Avatar
	if err := s.users.UpdateProfile(r.Context(), user); err != nil {
		writeError(w, r, http.StatusInternalServerError, "failed to update profile")
		return
	}
	render.JSON(w, r, user)
}

type friendRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (s *Server) handleAddFriend(w http.ResponseWriter, r *http.Request) {
	var req friendRequest
	if !s.decode(w, r, &req) {
		return
	}

	if err := s.users.AddFriend(r.Context(), userFrom(r.Context()), req.Email); err != nil {
		if errors.Is(err, service.ErrAlreadyFriends) {
			writeError(w, r, http.StatusConflict, err.Error())
			return
		}
		writeError(w, r, http.StatusInternalServerError, "failed to add friend")
		return
	}
	render.NoContent(w, r)
}

func (s *Server) handleRemoveFriend(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	if err := s.users.RemoveFriend(r.Context(), userFrom(r.Context()), email); err != nil {
		writeError(w, r, http.StatusInternalServerError, "failed to remove friend")
		return
	}
	render.NoContent(w, r)
}

// handleListUsers returns the whole user directory; owner only.
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.ListUsers(r.Context(), userFrom(r.Context()))
	if err != nil {
		writeError(w, r, statusFor(err), err.Error())
		return
	}
	render.JSON(w, r, map[string]interface{}{"users": users})
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	render.JSON(w, r, s.users.Notifications(r.Context(), user.Email))
}

func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	if err := s.users.MarkNotificationRead(r.Context(), user.Email, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, http.StatusNotFound, err.Error())
		return
	}
	render.NoContent(w, r)
}

// decode unmarshals and validates a JSON request body, answering 400
// on its own when the payload is unusable.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		writeError(w, r, http.StatusBadRequest, "failed to decode request")
		return false
	}
	if err := s.validate.Struct(v); err != nil {
		var validateErr validator.ValidationErrors
		if errors.As(err, &validateErr) {
			writeError(w, r, http.StatusBadRequest, validationMessage(validateErr))
			return false
		}
		writeError(w, r, http.StatusBadRequest, "invalid request")
		return false
	}
	return true
}

func validationMessage(errs validator.ValidationErrors) string {
	if len(errs) == 0 {
		return "invalid request"
	}
	field := errs[0]
	if field.Tag() == "required" {
		return "field " + field.Field() + " is required"
	}
	return "field " + field.Field() + " is invalid"
}
