package server

import (
	"encoding/json"
	"net/http"

	"github.com/beyondthebrush/portal/auth"
	"github.com/beyondthebrush/portal/resource"
	"github.com/beyondthebrush/portal/session"
	"github.com/beyondthebrush/portal/students"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const contentTypeJSON = "application/json; charset=utf-8"

type verifyRequest struct {
	Code string `json:"code" validate:"required"`
	Role string `json:"role" validate:"required,oneof=student educator"`
	Name string `json:"name"`
}

type verifyResponse struct {
	Decision string `json:"decision"`
	Role     string `json:"role,omitempty"`
	Identity string `json:"identity,omitempty"`
	Code     string `json:"code,omitempty"`
	Name     string `json:"name,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// VerifyHandler validates a (code, role, name) claim and transitions the
// caller's session on success (POST /api/verify).
func (s *Server) VerifyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req verifyRequest
		if !s.decodeAndValidate(w, r, &req) {
			return
		}

		sess := s.session(w, r)
		outcome := s.auth.Verify(r.Context(), req.Code, auth.Role(req.Role), req.Name)

		resp := verifyResponse{Decision: string(outcome.Decision)}
		switch outcome.Decision {
		case auth.DecisionGranted, auth.DecisionNeedsRegistration:
			if err := sess.Apply(outcome); err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			resp.Role = string(outcome.Role)
			resp.Identity = outcome.Identity
			resp.Code = outcome.Code
			resp.Name = outcome.Name
			writeJSON(w, http.StatusOK, resp)
		case auth.DecisionRejected:
			resp.Reason = outcome.Reason.Error()
			status := http.StatusUnauthorized
			if errors.Is(outcome.Reason, auth.ErrBackendUnavailable) {
				status = http.StatusServiceUnavailable
			}
			writeJSON(w, status, resp)
		}
	}
}

type registerRequest struct {
	Name string `json:"name" validate:"required"`
	Code string `json:"code" validate:"required"`
}

// RegisterHandler creates a StudentRecord (POST /api/register). Successful
// registration returns the session to Unauthenticated, the student then
// logs in with the same name and code.
func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if !s.decodeAndValidate(w, r, &req) {
			return
		}

		sess := s.session(w, r)
		record, err := s.auth.Register(r.Context(), req.Name, req.Code)
		if err != nil {
			writeError(w, registrationStatus(err), err.Error())
			return
		}

		if sess.Status() == session.StatusPendingRegistration {
			sess.CompleteRegistration()
		}
		writeJSON(w, http.StatusCreated, record)
	}
}

func registrationStatus(err error) int {
	switch {
	case errors.Is(err, students.ErrInvalidName), errors.Is(err, auth.ErrInvalidOrInactiveCode):
		return http.StatusBadRequest
	case errors.Is(err, students.ErrDuplicateName), errors.Is(err, auth.ErrQuotaExceeded):
		return http.StatusConflict
	default:
		return http.StatusServiceUnavailable
	}
}

// LogoutHandler releases the exclusive resource, resets the session and
// drops it from the repo (POST /api/logout).
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(sessionCookieName); err == nil {
			if sess, err := s.sessions.Get(cookie.Value); err == nil {
				sess.Logout()
			}
			_ = s.sessions.Delete(cookie.Value)
		}
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
		})
		w.WriteHeader(http.StatusNoContent)
	}
}

type sessionResponse struct {
	Status        string `json:"status"`
	Identity      string `json:"identity,omitempty"`
	ActiveFeature bool   `json:"activeFeature"`
}

// SessionHandler reports the caller's current session state
// (GET /api/session).
func (s *Server) SessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := s.session(w, r)
		writeJSON(w, http.StatusOK, sessionResponse{
			Status:        string(sess.Status()),
			Identity:      sess.Identity(),
			ActiveFeature: sess.ActiveFeature(),
		})
	}
}

// FeatureEnterHandler engages the camera-driven feature, acquiring the
// exclusive resource (POST /api/feature/enter).
func (s *Server) FeatureEnterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := s.session(w, r)
		handle, err := sess.EnterFeature()
		if err != nil {
			switch {
			case errors.Is(err, session.ErrNotAuthenticated):
				writeError(w, http.StatusUnauthorized, err.Error())
			case errors.Is(err, resource.ErrAlreadyHeld):
				writeError(w, http.StatusConflict, err.Error())
			default:
				writeError(w, http.StatusServiceUnavailable, err.Error())
			}
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"handle": handle.ID()})
	}
}

// FeatureLeaveHandler navigates away from the feature. The resource is
// released first, role and identity survive (POST /api/feature/leave).
func (s *Server) FeatureLeaveHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := s.session(w, r)
		sess.NavigateAway()
		w.WriteHeader(http.StatusNoContent)
	}
}

// session returns the caller's session, creating one on first contact.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *session.Session {
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		if sess, err := s.sessions.Get(cookie.Value); err == nil {
			return sess
		}
	}

	sessionID := uuid.New().String()
	sess := session.New(s.device)
	_ = s.sessions.Upsert(sessionID, sess)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
	})
	return sess
}

// existingSession looks up the caller's session without creating one.
func (s *Server) existingSession(r *http.Request) (*session.Session, bool) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil, false
	}
	sess, err := s.sessions.Get(cookie.Value)
	if err != nil {
		return nil, false
	}
	return sess, true
}

func (s *Server) decodeAndValidate(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
