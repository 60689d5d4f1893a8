// Package auth implements the session-wide access gate in front of the dashboard.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ougirez/iodmap/internal/pkg/constants"
	"github.com/ougirez/iodmap/internal/pkg/logger"
	"github.com/ougirez/iodmap/internal/pkg/metrics"
	"github.com/ougirez/iodmap/internal/pkg/utils"
	"github.com/ougirez/iodmap/internal/service/session"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"
)

type Outcome string

const (
	OutcomeNotAttempted Outcome = "not_attempted"
	OutcomeGranted      Outcome = "granted"
	OutcomeDenied       Outcome = "denied"
)

type Result struct {
	Outcome   Outcome
	SessionID string
	AuthToken string
}

// A limiter idle this long has refilled its whole burst, so dropping it changes nothing.
const limiterIdleTTL = time.Minute

type clientLimiter struct {
	*rate.Limiter
	lastSeen time.Time
}

type Service struct {
	sessions *session.Store
	hash     []byte

	perMinute int
	now       func() time.Time
	mu        sync.Mutex
	limiters  map[string]*clientLimiter
	lastSweep time.Time
}

func NewService(sessions *session.Store, hash []byte, attemptsPerMinute int) *Service {
	return &Service{
		sessions:  sessions,
		hash:      hash,
		perMinute: attemptsPerMinute,
		now:       time.Now,
		limiters:  make(map[string]*clientLimiter),
	}
}

// NewServiceFromConfig prefers access.password_hash and otherwise hashes the plain
// access.password once at start-up.
func NewServiceFromConfig(sessions *session.Store) (*Service, error) {
	hash := []byte(viper.GetString(constants.ViperAccessPasswordHash))
	if len(hash) == 0 {
		var err error
		hash, err = HashSecret(viper.GetString(constants.ViperAccessPassword))
		if err != nil {
			return nil, err
		}
	}
	return NewService(sessions, hash, viper.GetInt(constants.ViperAttemptsPerMinute)), nil
}

func HashSecret(secret string) ([]byte, error) {
	if secret == "" {
		return nil, errors.New("empty access secret")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("bcrypt.GenerateFromPassword: %w", err)
	}
	return hash, nil
}

func (svc *Service) limiter(client string) *rate.Limiter {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	now := svc.now()
	if now.Sub(svc.lastSweep) >= limiterIdleTTL {
		svc.evictLimitersLocked(now)
		svc.lastSweep = now
	}

	l, ok := svc.limiters[client]
	if !ok {
		l = &clientLimiter{Limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(svc.perMinute)), svc.perMinute)}
		svc.limiters[client] = l
	}
	l.lastSeen = now
	return l.Limiter
}

func (svc *Service) evictLimitersLocked(now time.Time) {
	cutoff := now.Add(-limiterIdleTTL)
	for client, l := range svc.limiters {
		if l.lastSeen.Before(cutoff) {
			delete(svc.limiters, client)
		}
	}
}

// Authenticate checks one gate attempt. An empty password is not an attempt and
// yields no message; a wrong one yields ErrAccessDenied without saying why.
func (svc *Service) Authenticate(ctx context.Context, client, password string) (*Result, error) {
	if password == "" {
		return &Result{Outcome: OutcomeNotAttempted}, nil
	}

	if svc.perMinute > 0 && !svc.limiter(client).AllowN(svc.now(), 1) {
		metrics.AccessAttempts.WithLabelValues("throttled").Inc()
		logger.Warnf(ctx, "access attempts throttled for %s", client)
		return nil, constants.ErrTooManyAttempts
	}

	if err := bcrypt.CompareHashAndPassword(svc.hash, []byte(password)); err != nil {
		metrics.AccessAttempts.WithLabelValues(string(OutcomeDenied)).Inc()
		logger.Infof(ctx, "access denied for %s", client)
		return nil, constants.ErrAccessDenied
	}

	sessionID := svc.sessions.Create()
	token, err := utils.GenerateAuthToken(&utils.AuthTokenWrapper{SessionID: sessionID})
	if err != nil {
		svc.sessions.Delete(sessionID)
		return nil, err
	}

	metrics.AccessAttempts.WithLabelValues(string(OutcomeGranted)).Inc()
	logger.Debugf(ctx, "access granted: session [%v]", sessionID)
	return &Result{Outcome: OutcomeGranted, SessionID: sessionID, AuthToken: token}, nil
}

// Resolve validates a session token and makes sure its session exists.
func (svc *Service) Resolve(raw string) (string, error) {
	token, err := utils.ParseAuthToken(raw)
	if err != nil {
		return "", err
	}
	svc.sessions.GetOrCreate(token.SessionID)
	return token.SessionID, nil
}
