package api

import (
	"errors"
	"net"
	"net/http"

	"github.com/yourusername/trade-journal/internal/auth"
	"github.com/yourusername/trade-journal/internal/metrics"
)

// LoginRequest is the login payload
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=128"`
	Password string `json:"password" validate:"required,max=256"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := s.decode(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	remote := remoteHost(r)
	key := req.Username + "|" + remote
	if !s.throttle.Allow(key) {
		s.audit.LogLoginFailure(req.Username, remote, "throttled")
		metrics.RecordLoginAttempt("throttled")
		s.respondError(w, r, auth.ErrThrottled)
		return
	}

	identity, err := s.credentials.Verify(r.Context(), req.Username, req.Password)
	if err != nil {
		reason := "error"
		if errors.Is(err, auth.ErrAuthFailed) {
			reason = "invalid_credentials"
		}
		s.audit.LogLoginFailure(req.Username, remote, reason)
		metrics.RecordLoginAttempt("failure")
		s.respondError(w, r, err)
		return
	}

	s.throttle.Reset(key)
	s.audit.LogLoginSuccess(identity.Username, identity.UserID, remote)
	metrics.RecordLoginAttempt("success")
	s.respond(w, http.StatusOK, "login successful", identity)
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
