package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	booking, err := s.roster.Join(r.Context(), userFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, statusFor(err), err.Error())
		return
	}
	render.JSON(w, r, booking)
}

func (s *Server) handleLeave(w http.ResponseWriter, r *http.Request) {
	booking, err := s.roster.Leave(r.Context(), userFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, statusFor(err), err.Error())
		return
	}
	render.JSON(w, r, booking)
}

type kickRequest struct {
	Target string `json:"target" validate:"required"`
}

func (s *Server) handleKick(w http.ResponseWriter, r *http.Request) {
	var req kickRequest
	if !s.decode(w, r, &req) {
		return
	}

	booking, err := s.roster.Kick(r.Context(), userFrom(r.Context()), chi.URLParam(r, "id"), req.Target)
	if err != nil {
		writeError(w, r, statusFor(err), err.Error())
		return
	}
	render.JSON(w, r, booking)
}

type inviteRequest struct {
	Name string `json:"name" validate:"required"`
}

func (s *Server) handleInvite(w http.ResponseWriter, r *http.Request) {
	var req inviteRequest
	if !s.decode(w, r, &req) {
		return
	}

	booking, err := s.roster.Invite(r.Context(), userFrom(r.Context()), chi.URLParam(r, "id"), req.Name)
	if err != nil {
		writeError(w, r, statusFor(err), err.Error())
		return
	}
	render.JSON(w, r, booking)
}
