package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/yourusername/trade-journal/internal/metrics"
	"github.com/yourusername/trade-journal/internal/models"
)

func (s *Server) handleListTrades(w http.ResponseWriter, r *http.Request) {
	filter, err := tradeFilter(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	trades, err := s.trades.List(r.Context(), UserIDFromContext(r.Context()), filter)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, fmt.Sprintf("%d trades", len(trades)), trades)
}

func (s *Server) handleCreateTrade(w http.ResponseWriter, r *http.Request) {
	var req models.TradeRequest
	if err := s.decode(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	userID := UserIDFromContext(r.Context())
	if err := s.checkSession(r.Context(), userID, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	trade := &models.Trade{UserID: userID}
	req.ApplyTo(trade)
	if err := s.trades.Create(r.Context(), trade); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.recordChange(userID, "trade", trade.ID.String(), "create")
	s.respond(w, http.StatusCreated, "trade created", trade)
}

func (s *Server) handleGetTrade(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	trade, err := s.trades.GetByID(r.Context(), UserIDFromContext(r.Context()), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, "trade found", trade)
}

func (s *Server) handleUpdateTrade(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	var req models.TradeRequest
	if err := s.decode(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	userID := UserIDFromContext(r.Context())
	trade, err := s.trades.GetByID(r.Context(), userID, id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if req.SessionID != nil && (trade.SessionID == nil || *trade.SessionID != *req.SessionID) {
		if err := s.checkSession(r.Context(), userID, &req); err != nil {
			s.respondError(w, r, err)
			return
		}
	}

	req.ApplyTo(trade)
	if err := s.trades.Update(r.Context(), trade); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.recordChange(userID, "trade", trade.ID.String(), "update")
	s.respond(w, http.StatusOK, "trade updated", trade)
}

func (s *Server) handleDeleteTrade(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	userID := UserIDFromContext(r.Context())
	if err := s.trades.Delete(r.Context(), userID, id); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.recordChange(userID, "trade", id.String(), "delete")
	s.respond(w, http.StatusOK, "trade deleted", nil)
}

// checkSession verifies the referenced session belongs to the user and was
// still running when the trade opened
func (s *Server) checkSession(ctx context.Context, userID string, req *models.TradeRequest) error {
	if req.SessionID == nil {
		return nil
	}
	session, err := s.sessions.GetByID(ctx, userID, *req.SessionID)
	if err != nil {
		return fmt.Errorf("session %s: %w", *req.SessionID, err)
	}
	if session.EndedAt != nil && req.OpenedAt.After(*session.EndedAt) {
		return fmt.Errorf("session %s ended %s: %w", session.ID, session.EndedAt.Format("2006-01-02 15:04"), models.ErrSessionClosed)
	}
	return nil
}

func (s *Server) recordChange(userID, entity, recordID, action string) {
	s.audit.LogRecordChange(userID, entity, recordID, action)
	metrics.RecordMutation(entity, action)
}
