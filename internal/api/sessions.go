package api

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/yourusername/trade-journal/internal/models"
)

// sessionDetail is a session with the summary of its closed trades
type sessionDetail struct {
	*models.Session
	Summary models.SessionSummary `json:"summary"`
}

// sessionTrades lists a session's trades with their summary
type sessionTrades struct {
	SessionID uuid.UUID             `json:"session_id"`
	Trades    []*models.Trade       `json:"trades"`
	Summary   models.SessionSummary `json:"summary"`
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	opts, err := listOptions(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	sessions, err := s.sessions.List(r.Context(), UserIDFromContext(r.Context()), opts)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, fmt.Sprintf("%d sessions", len(sessions)), sessions)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req models.SessionRequest
	if err := s.decode(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := validateSessionWindow(&req); err != nil {
		s.respondError(w, r, err)
		return
	}
	userID := UserIDFromContext(r.Context())
	session := &models.Session{UserID: userID}
	req.ApplyTo(session)
	if err := s.sessions.Create(r.Context(), session); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.recordChange(userID, "session", session.ID.String(), "create")
	s.respond(w, http.StatusCreated, "session created", session)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	userID := UserIDFromContext(r.Context())
	session, err := s.sessions.GetByID(r.Context(), userID, id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	trades, err := s.trades.ListBySession(r.Context(), userID, id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, "session found", sessionDetail{Session: session, Summary: session.Summarize(trades)})
}

func (s *Server) handleUpdateSession(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	var req models.SessionRequest
	if err := s.decode(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := validateSessionWindow(&req); err != nil {
		s.respondError(w, r, err)
		return
	}
	userID := UserIDFromContext(r.Context())
	session, err := s.sessions.GetByID(r.Context(), userID, id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	req.ApplyTo(session)
	if err := s.sessions.Update(r.Context(), session); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.recordChange(userID, "session", session.ID.String(), "update")
	s.respond(w, http.StatusOK, "session updated", session)
}

// handleDeleteSession removes the session; its trades stay in the journal
// without a session
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	userID := UserIDFromContext(r.Context())
	if err := s.sessions.Delete(r.Context(), userID, id); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.recordChange(userID, "session", id.String(), "delete")
	s.respond(w, http.StatusOK, "session deleted", nil)
}

func (s *Server) handleSessionTrades(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	userID := UserIDFromContext(r.Context())
	session, err := s.sessions.GetByID(r.Context(), userID, id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	trades, err := s.trades.ListBySession(r.Context(), userID, id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, fmt.Sprintf("%d trades", len(trades)), sessionTrades{
		SessionID: session.ID,
		Trades:    trades,
		Summary:   session.Summarize(trades),
	})
}

func validateSessionWindow(req *models.SessionRequest) error {
	if req.EndedAt != nil && req.EndedAt.Before(req.StartedAt) {
		return fmt.Errorf("%w: ended_at must not precede started_at", models.ErrInvalidInput)
	}
	return nil
}
