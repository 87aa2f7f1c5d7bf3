//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	domainauth "github.com/target/onboard-admin/internal/domain/auth"
)

const (
	maxUserNameLen = 255
	maxEmailLen    = 320
)

// User is the durable directory entry for a person who may sign in.
type User struct {
	ID            string          `json:"id"                       yaml:"id"`
	Email         string          `json:"email"                    yaml:"email"`
	Name          string          `json:"name"                     yaml:"name"`
	Surname       string          `json:"surname"                  yaml:"surname"`
	Role          domainauth.Role `json:"role,omitempty"           yaml:"role"`
	EmailVerified *time.Time      `json:"email_verified,omitempty" yaml:"email_verified,omitempty"`
	CreatedAt     time.Time       `json:"created_at"               yaml:"-"`
}

// UserProfile is the outward projection of a User. It omits surname and any
// future sensitive columns.
type UserProfile struct {
	ID            string          `json:"id"`
	Email         string          `json:"email"`
	Name          string          `json:"name"`
	Role          domainauth.Role `json:"role,omitempty"`
	EmailVerified *time.Time      `json:"email_verified,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Profile projects u into a UserProfile.
func (u User) Profile() UserProfile {
	return UserProfile{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		Role:          u.Role,
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
	}
}

// NormalizeEmail trims and lower-cases an email for lookups and storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// UpsertUserRequest carries the fields the operator tooling may write.
type UpsertUserRequest struct {
	ID            string
	Email         string
	Name          string
	Surname       string
	Role          domainauth.Role
	EmailVerified *time.Time
}

// Normalize trims whitespace and lower-cases the email in place.
func (r *UpsertUserRequest) Normalize() {
	r.ID = strings.TrimSpace(r.ID)
	r.Email = NormalizeEmail(r.Email)
	r.Name = strings.TrimSpace(r.Name)
	r.Surname = strings.TrimSpace(r.Surname)
}

// Validate checks required fields and lengths.
func (r *UpsertUserRequest) Validate() error {
	if r.Email == "" {
		return errors.New("email is required and cannot be empty")
	}
	if utf8.RuneCountInString(r.Email) > maxEmailLen {
		return errors.New("email cannot exceed 320 characters")
	}
	if !strings.Contains(r.Email, "@") {
		return errors.New("email must contain @")
	}
	if utf8.RuneCountInString(r.Name) > maxUserNameLen || utf8.RuneCountInString(r.Surname) > maxUserNameLen {
		return errors.New("name cannot exceed 255 characters")
	}
	if r.Role != "" && !r.Role.Valid() {
		return errors.New("role must be one of: ADMIN, USER")
	}
	return nil
}

// LookupStatus tags the outcome of a directory lookup.
type LookupStatus int

const (
	LookupNotFound LookupStatus = iota
	LookupFound
	LookupFault
)

func (s LookupStatus) String() string {
	switch s {
	case LookupFound:
		return "found"
	case LookupNotFound:
		return "not_found"
	case LookupFault:
		return "fault"
	default:
		return "unknown"
	}
}

// UserLookup is the tagged result of a directory lookup. User is set only for
// LookupFound; Err only for LookupFault.
type UserLookup struct {
	Status LookupStatus
	User   *User
	Err    error
}

// Found wraps a located user.
func Found(u *User) UserLookup { return UserLookup{Status: LookupFound, User: u} }

// NotFound reports a definite miss.
func NotFound() UserLookup { return UserLookup{Status: LookupNotFound} }

// Fault reports that the directory could not answer.
func Fault(err error) UserLookup { return UserLookup{Status: LookupFault, Err: err} }

// Account links an external identity provider account to a directory user.
type Account struct {
	UserID            string `json:"user_id"`
	Provider          string `json:"provider"`
	ProviderAccountID string `json:"provider_account_id"`
}

// Validate requires all three identifiers to be non-empty.
func (a Account) Validate() error {
	if strings.TrimSpace(a.UserID) == "" {
		return errors.New("user_id is required and cannot be empty")
	}
	if strings.TrimSpace(a.Provider) == "" {
		return errors.New("provider is required and cannot be empty")
	}
	if strings.TrimSpace(a.ProviderAccountID) == "" {
		return errors.New("provider_account_id is required and cannot be empty")
	}
	return nil
}
