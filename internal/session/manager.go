// Package session owns the authentication lifecycle: sign-up, sign-in,
// sign-out and resolution of an existing session into a Profile. It issues
// explicitly owned Session objects instead of keeping global mutable state.
// It never touches domain tables beyond the profile lookup.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"hospital-management-server/internal/apperrors"
	"hospital-management-server/internal/models"
)

// ErrProfileNotFound is returned by ProfileStore lookups when no profile
// exists for the account.
var ErrProfileNotFound = errors.New("profile not found")

// ErrTokenNotFound is returned by token lookups when no live refresh token
// matches.
var ErrTokenNotFound = errors.New("refresh token not found")

// Provider abstracts the credential store: account creation, credential
// exchange and session-token bookkeeping.
type Provider interface {
	CreateAccount(ctx context.Context, email, password, fullName string, role models.Role) (*models.Account, error)
	// Authenticate exchanges credentials for the account. Failures are
	// AuthenticationErrors distinguishing invalid credentials from an
	// unverified email.
	Authenticate(ctx context.Context, email, password string) (*models.Account, error)
	AccountByID(ctx context.Context, id string) (*models.Account, error)
	VerifyEmail(ctx context.Context, verificationToken string) (*models.Account, error)
	StoreRefreshToken(ctx context.Context, accountID, token string, expiresAt time.Time) error
	ValidRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, token string) error
}

// ProfileStore abstracts profile persistence.
type ProfileStore interface {
	CreateProfile(ctx context.Context, profile *models.Profile) error
	ProfileByAuthUID(ctx context.Context, authUID string) (*models.Profile, error)
}

// Manager drives the authentication lifecycle against a Provider and a
// ProfileStore.
type Manager struct {
	provider Provider
	profiles ProfileStore
	log      zerolog.Logger
}

// NewManager creates a Manager.
func NewManager(provider Provider, profiles ProfileStore, log zerolog.Logger) *Manager {
	return &Manager{
		provider: provider,
		profiles: profiles,
		log:      log.With().Str("component", "session").Logger(),
	}
}

// SignUpParams carries the registration form.
type SignUpParams struct {
	Email    string
	Password string
	FullName string
	Role     models.Role
}

// SignUp creates a credential account and exactly one matching Profile. The
// role is checked against the closed set before anything is persisted. The
// caller is not signed in afterwards: the account may still need email
// verification.
//
// If the profile insert fails after the account was created, the failure is
// surfaced as-is; SignIn retries profile creation idempotently later.
func (m *Manager) SignUp(ctx context.Context, params SignUpParams) (*models.Profile, error) {
	role := models.Role(strings.ToLower(strings.TrimSpace(string(params.Role))))
	if !role.Valid() {
		return nil, &apperrors.ValidationError{Field: "role", Message: "unrecognized role " + string(params.Role)}
	}
	if params.Email == "" {
		return nil, &apperrors.ValidationError{Field: "email", Message: "is required"}
	}
	if params.Password == "" {
		return nil, &apperrors.ValidationError{Field: "password", Message: "is required"}
	}
	if params.FullName == "" {
		return nil, &apperrors.ValidationError{Field: "full_name", Message: "is required"}
	}

	account, err := m.provider.CreateAccount(ctx, params.Email, params.Password, params.FullName, role)
	if err != nil {
		return nil, err
	}

	profile := &models.Profile{
		AuthUID:  account.ID,
		Role:     role,
		FullName: params.FullName,
		Email:    params.Email,
	}
	if err := m.profiles.CreateProfile(ctx, profile); err != nil {
		// The account exists without a profile now. No rollback is possible
		// against the provider; the next successful sign-in recreates the
		// profile from the account's registration metadata.
		m.log.Error().Err(err).Str("account_id", account.ID).Msg("profile creation failed after account creation")
		return nil, err
	}

	m.log.Info().Str("profile_id", profile.ID).Str("role", string(profile.Role)).Msg("account registered")
	return profile, nil
}

// SignIn exchanges credentials for an Authenticated session. A missing
// profile (sign-up partial failure) is repaired here by recreating it from
// the account's registration metadata.
func (m *Manager) SignIn(ctx context.Context, email, password string) (*Session, error) {
	account, err := m.provider.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	profile, err := m.profiles.ProfileByAuthUID(ctx, account.ID)
	if errors.Is(err, ErrProfileNotFound) {
		profile = &models.Profile{
			AuthUID:  account.ID,
			Role:     account.Role,
			FullName: account.FullName,
			Email:    account.Email,
		}
		if createErr := m.profiles.CreateProfile(ctx, profile); createErr != nil {
			return nil, createErr
		}
		m.log.Warn().Str("account_id", account.ID).Msg("recreated missing profile on sign-in")
	} else if err != nil {
		return nil, err
	}

	return m.authenticatedSession(profile), nil
}

// NewSession returns an uninitialized Session owned by the caller.
func (m *Manager) NewSession() *Session {
	return &Session{mgr: m, state: StateUninitialized}
}

func (m *Manager) authenticatedSession(profile *models.Profile) *Session {
	return &Session{mgr: m, state: StateAuthenticated, profile: profile, initialized: true}
}

// State is the lifecycle state of a Session.
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateAuthenticated
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return "uninitialized"
	}
}

// Session is one owned authentication session. Lifecycle:
// Uninitialized → Loading → Authenticated or Anonymous, then terminally
// Anonymous after SignOut.
type Session struct {
	mgr *Manager

	mu          sync.Mutex
	state       State
	profile     *models.Profile
	initialized bool
}

// Initialize resolves an existing remote session into this Session. The
// accountID comes from a previously issued token; an empty ID resolves to
// Anonymous. Resolution runs at most once per Session instance: account
// resolution completes before the profile is fetched, and later calls are
// no-ops.
func (s *Session) Initialize(ctx context.Context, accountID string) error {
	s.mu.Lock()
	if s.initialized || s.state == StateLoading {
		s.mu.Unlock()
		return nil
	}
	s.state = StateLoading
	s.mu.Unlock()

	settle := func(state State, profile *models.Profile) {
		s.mu.Lock()
		s.state = state
		s.profile = profile
		s.initialized = true
		s.mu.Unlock()
	}

	if accountID == "" {
		settle(StateAnonymous, nil)
		return nil
	}

	account, err := s.mgr.provider.AccountByID(ctx, accountID)
	if err != nil {
		settle(StateAnonymous, nil)
		return err
	}

	profile, err := s.mgr.profiles.ProfileByAuthUID(ctx, account.ID)
	if err != nil {
		settle(StateAnonymous, nil)
		if errors.Is(err, ErrProfileNotFound) {
			return nil
		}
		return err
	}

	settle(StateAuthenticated, profile)
	return nil
}

// SignOut revokes the remote session record and clears the local
// Authenticated state. The local state is cleared unconditionally, even when
// revocation fails; the revocation error is still returned to the caller.
func (s *Session) SignOut(ctx context.Context, refreshToken string) error {
	err := s.mgr.provider.RevokeRefreshToken(ctx, refreshToken)

	s.mu.Lock()
	s.state = StateAnonymous
	s.profile = nil
	s.initialized = true
	s.mu.Unlock()

	if err != nil {
		s.mgr.log.Warn().Err(err).Msg("remote sign-out failed; local session cleared anyway")
	}
	return err
}

// CurrentProfile returns the cached profile, or nil when the session is not
// authenticated. It never performs a store call.
func (s *Session) CurrentProfile() *models.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Authenticated reports whether the session resolved to a profile.
func (s *Session) Authenticated() bool {
	return s.State() == StateAuthenticated
}
