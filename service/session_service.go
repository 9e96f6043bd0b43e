package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"loan-simulator/domain"
	"loan-simulator/metrics"
	"loan-simulator/repository"
)

// SessionService tracks API visitors.
type SessionService struct {
	repo   repository.SessionRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewSessionService(repo repository.SessionRepository, logger *zap.Logger) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{repo: repo, logger: logger, now: time.Now}
}

// Track records a request. When id is empty or unknown a new session is
// started and its id returned; otherwise the existing session is touched.
func (s *SessionService) Track(ctx context.Context, id, ip, userAgent string) (string, error) {
	now := s.now().UTC()

	if id != "" {
		err := s.repo.TouchSession(ctx, id, now)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return "", err
		}
	}

	sess := domain.Session{
		ID:           uuid.NewString(),
		IP:           ip,
		UserAgent:    userAgent,
		StartedAt:    now,
		LastSeenAt:   now,
		RequestCount: 1,
	}
	if err := s.repo.CreateSession(ctx, sess); err != nil {
		return "", err
	}
	metrics.SessionsStarted.Inc()
	s.logger.Debug("session started", zap.String("session", sess.ID), zap.String("ip", ip))
	return sess.ID, nil
}

// Sessions lists recent sessions, most recently seen first.
func (s *SessionService) Sessions(ctx context.Context, limit int) ([]domain.Session, error) {
	return s.repo.ListSessions(ctx, ClampLimit(limit))
}
