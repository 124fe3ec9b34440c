package server

import (
	"net/http"

	"github.com/beyondthebrush/portal/codes"
	"github.com/beyondthebrush/portal/students"
	"github.com/pkg/errors"
)

// ListCodesHandler returns all access codes with their authoritative student
// counts (GET /api/admin/codes).
func (s *Server) ListCodesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		usages, err := s.ledger.ListWithUsage(r.Context())
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, usages)
	}
}

type createCodeRequest struct {
	Code        string `json:"code" validate:"required,min=3,alphanum"`
	IsAdminCode bool   `json:"isAdminCode"`
	MaxUses     int    `json:"maxUses" validate:"gte=0"` // 0 = unlimited
	Issuer      string `json:"issuer"`
}

// CreateCodeHandler mints a new access code (POST /api/admin/codes).
func (s *Server) CreateCodeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createCodeRequest
		if !s.decodeAndValidate(w, r, &req) {
			return
		}

		issuer := req.Issuer
		if issuer == "" {
			issuer = "Admin"
		}

		accessCode, err := s.ledger.CreateCode(r.Context(), req.Code, req.IsAdminCode, req.MaxUses, issuer)
		if err != nil {
			switch {
			case errors.Is(err, codes.ErrInvalidFormat):
				writeError(w, http.StatusBadRequest, err.Error())
			case errors.Is(err, codes.ErrDuplicateCode):
				writeError(w, http.StatusConflict, err.Error())
			default:
				writeError(w, http.StatusServiceUnavailable, err.Error())
			}
			return
		}
		writeJSON(w, http.StatusCreated, accessCode)
	}
}

// ToggleCodeHandler flips a code's active flag and returns the new state
// (POST /api/admin/codes/{code}/toggle).
func (s *Server) ToggleCodeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		active, err := s.ledger.ToggleActive(r.Context(), r.PathValue("code"))
		if err != nil {
			if errors.Is(err, codes.ErrNotFound) {
				writeError(w, http.StatusNotFound, err.Error())
				return
			}
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"isActive": active})
	}
}

// DeleteCodeHandler hard-deletes a code (DELETE /api/admin/codes/{code}).
// Registered students keep their records.
func (s *Server) DeleteCodeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.ledger.DeleteCode(r.Context(), r.PathValue("code")); err != nil {
			if errors.Is(err, codes.ErrNotFound) {
				writeError(w, http.StatusNotFound, err.Error())
				return
			}
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ListStudentsHandler returns the roster (GET /api/admin/students).
func (s *Server) ListStudentsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := s.auth.ListStudents(r.Context())
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

type renameStudentRequest struct {
	NewName string `json:"newName" validate:"required"`
}

// RenameStudentHandler renames a registration
// (PATCH /api/admin/students/{name}).
func (s *Server) RenameStudentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req renameStudentRequest
		if !s.decodeAndValidate(w, r, &req) {
			return
		}

		err := s.auth.RenameStudent(r.Context(), r.PathValue("name"), req.NewName)
		if err != nil {
			switch {
			case errors.Is(err, students.ErrNotFound):
				writeError(w, http.StatusNotFound, err.Error())
			case errors.Is(err, students.ErrInvalidName):
				writeError(w, http.StatusBadRequest, err.Error())
			case errors.Is(err, students.ErrDuplicateName):
				writeError(w, http.StatusConflict, err.Error())
			default:
				writeError(w, http.StatusServiceUnavailable, err.Error())
			}
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// DeleteStudentHandler removes a registration and frees its quota seat
// (DELETE /api/admin/students/{name}).
func (s *Server) DeleteStudentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.auth.DeleteStudent(r.Context(), r.PathValue("name")); err != nil {
			if errors.Is(err, students.ErrNotFound) {
				writeError(w, http.StatusNotFound, err.Error())
				return
			}
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
