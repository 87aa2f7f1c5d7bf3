package httpx

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/target/onboard-admin/internal/domain/model"
)

// UserDirectory is the read-only lookup surface used by user handlers.
type UserDirectory interface {
	GetUserByID(ctx context.Context, id string) *model.User
	GetUserByEmail(ctx context.Context, email string) *model.UserProfile
}

// UserHandlers serves the principal and directory lookup endpoints.
type UserHandlers struct {
	Directory UserDirectory
}

// Me returns the principal resolved for the request.
// GET /api/me.
func (h *UserHandlers) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     errors.New("authentication required"),
		})
		return
	}
	WriteJSON(w, http.StatusOK, p)
}

// GetByID returns the full directory record for a user.
// GET /api/users/{id}.
func (h *UserHandlers) GetByID(w http.ResponseWriter, r *http.Request) {
	u := h.Directory.GetUserByID(r.Context(), r.PathValue("id"))
	if u == nil {
		writeUserNotFound(w)
		return
	}
	WriteJSON(w, http.StatusOK, u)
}

// FindByEmail returns the public profile of the user with the given email.
// GET /api/users?email=<email>.
func (h *UserHandlers) FindByEmail(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_email",
			Err:     errors.New("email query parameter is required"),
		})
		return
	}
	p := h.Directory.GetUserByEmail(r.Context(), email)
	if p == nil {
		writeUserNotFound(w)
		return
	}
	WriteJSON(w, http.StatusOK, p)
}

func writeUserNotFound(w http.ResponseWriter) {
	WriteError(w, ErrorParams{
		Code:    http.StatusNotFound,
		ErrCode: "not_found",
		Err:     errors.New("user not found"),
	})
}
