// Package session tracks per-user dialogue state with lazy expiry.
package session

import (
	"context"
	"fmt"
	"time"

	"KharitonBot/internal/domain/repository"
	"KharitonBot/internal/domain/schema"
)

// DefaultTTL bounds how long a multi-step flow may stay open.
const DefaultTTL = 30 * time.Minute

type Service struct {
	repo repository.SessionRepository
	now  func() time.Time
}

func New(repo repository.SessionRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Get loads the user's session, creating a fresh one lazily. A session whose
// expiry has passed is reset before use, so an expired record behaves exactly
// like a new one regardless of stale state or scratch. Deletion of expired
// rows by the sweeper is equivalent and not treated as data loss.
func (s *Service) Get(ctx context.Context, userID int64) (schema.Session, error) {
	sess, ok, err := s.repo.Get(ctx, userID)
	if err != nil {
		return schema.Session{}, fmt.Errorf("load session: %w", err)
	}
	if !ok {
		return schema.NewSession(userID), nil
	}
	if sess.Expired(s.now()) {
		sess.Reset()
		if err := s.repo.Put(ctx, userID, sess); err != nil {
			return schema.Session{}, fmt.Errorf("reset expired session: %w", err)
		}
	}
	if sess.Data == nil {
		sess.Data = map[string]string{}
	}
	return sess, nil
}

// SetState moves the user into state and refreshes expiry. Scratch data is
// carried over; flows that need a clean slate call Clear first.
func (s *Service) SetState(ctx context.Context, userID int64, state schema.SessionState, ttl time.Duration) error {
	sess, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	expires := s.now().Add(ttl)
	sess.State = state
	sess.ExpiresAt = &expires
	return s.repo.Put(ctx, userID, sess)
}

func (s *Service) SetData(ctx context.Context, userID int64, key, value string) error {
	sess, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	sess.Data[key] = value
	return s.repo.Put(ctx, userID, sess)
}

// Clear returns the session to the initial state and drops all scratch.
func (s *Service) Clear(ctx context.Context, userID int64) error {
	sess, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	sess.Reset()
	return s.repo.Put(ctx, userID, sess)
}

// CleanExpired deletes sessions whose expiry has already passed. This is a
// maintenance sweep; correctness does not depend on it.
func (s *Service) CleanExpired(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpired(ctx)
}
