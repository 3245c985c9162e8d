package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

var (
	errAuthPasswordRequired = errors.New("auth service: admin password is required")
	errAuthClockRequired    = errors.New("auth service: clock is required")
	errAuthLimitsRequired   = errors.New("auth service: lockout limits are required")
)

// ErrAuthInvalidCredentials indicates the supplied password did not match.
var ErrAuthInvalidCredentials = errors.New("auth service: invalid credentials")

// ErrAuthLocked indicates the client exhausted its attempts and must wait out the lockout.
var ErrAuthLocked = errors.New("auth service: too many attempts")

// AuthServiceDeps wires the shared admin password and lockout policy.
type AuthServiceDeps struct {
	Password    string
	MaxAttempts int
	Lockout     time.Duration
	Clock       func() time.Time
	Logger      func(context.Context, string, map[string]any)
}

type attemptRecord struct {
	failures    int
	lockedUntil time.Time
}

type authService struct {
	password    []byte
	maxAttempts int
	lockout     time.Duration
	now         func() time.Time
	logger      func(context.Context, string, map[string]any)

	mu       sync.Mutex
	attempts map[string]*attemptRecord
}

// NewAuthService constructs an AuthService enforcing dependency validation.
func NewAuthService(deps AuthServiceDeps) (AuthService, error) {
	if strings.TrimSpace(deps.Password) == "" {
		return nil, errAuthPasswordRequired
	}
	if deps.MaxAttempts <= 0 || deps.Lockout <= 0 {
		return nil, errAuthLimitsRequired
	}
	if deps.Clock == nil {
		return nil, errAuthClockRequired
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	service := &authService{
		password:    []byte(deps.Password),
		maxAttempts: deps.MaxAttempts,
		lockout:     deps.Lockout,
		now:         func() time.Time { return deps.Clock().UTC() },
		logger:      logger,
		attempts:    map[string]*attemptRecord{},
	}
	return service, nil
}

// Login verifies the shared admin password. Failures accumulate per client key
// (usually the remote address); reaching the limit locks the key out for the
// configured window. A successful login clears the record.
func (s *authService) Login(ctx context.Context, clientKey, password string) error {
	clientKey = strings.TrimSpace(clientKey)
	if clientKey == "" {
		clientKey = "unknown"
	}
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	record := s.attempts[clientKey]
	if record != nil && now.Before(record.lockedUntil) {
		return fmt.Errorf("%w: retry after %s", ErrAuthLocked, record.lockedUntil.Sub(now).Round(time.Second))
	}

	if subtle.ConstantTimeCompare([]byte(password), s.password) == 1 {
		delete(s.attempts, clientKey)
		s.logger(ctx, "auth.login.success", map[string]any{"client": clientKey})
		return nil
	}

	if record == nil || (!record.lockedUntil.IsZero() && !now.Before(record.lockedUntil)) {
		record = &attemptRecord{}
		s.attempts[clientKey] = record
	}
	record.failures++
	if record.failures >= s.maxAttempts {
		record.lockedUntil = now.Add(s.lockout)
		s.logger(ctx, "auth.login.locked", map[string]any{
			"client":       clientKey,
			"locked_until": record.lockedUntil,
		})
		return fmt.Errorf("%w: retry after %s", ErrAuthLocked, s.lockout)
	}

	s.logger(ctx, "auth.login.failed", map[string]any{
		"client":   clientKey,
		"failures": record.failures,
	})
	return ErrAuthInvalidCredentials
}

// LockoutRemaining reports the recorded failures for the client and whether it
// is currently locked out.
func (s *authService) LockoutRemaining(clientKey string) (int, bool) {
	clientKey = strings.TrimSpace(clientKey)
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	record := s.attempts[clientKey]
	if record == nil {
		return 0, false
	}
	return record.failures, now.Before(record.lockedUntil)
}
