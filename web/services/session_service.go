package services

import (
	"time"

	"query-chat/config"
	"query-chat/session"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// SessionService keeps widget sessions in memory. Sessions idle for longer
// than the retention age are evicted by the cache janitor.
type SessionService struct {
	sessions *cache.Cache
	logger   *zap.Logger
}

func NewSessionService(cfg *config.Config, logger *zap.Logger) *SessionService {
	sessions := cache.New(cfg.SessionRetentionAge, cfg.SessionCleanupInterval)
	sessions.OnEvicted(func(id string, v interface{}) {
		logger.Debug("Widget session evicted",
			zap.String("session_id", id),
			zap.Duration("age", sessionAge(v)))
	})
	return &SessionService{
		sessions: sessions,
		logger:   logger,
	}
}

// Create starts a fresh session, as a page load does.
func (ss *SessionService) Create() *session.Session {
	sess := session.New()
	ss.sessions.SetDefault(sess.ID().String(), sess)
	ss.logger.Info("Widget session created", zap.String("session_id", sess.ID().String()))
	return sess
}

// Get returns a live session and extends its lifetime.
func (ss *SessionService) Get(id uuid.UUID) (*session.Session, bool) {
	v, found := ss.sessions.Get(id.String())
	if !found {
		return nil, false
	}
	sess := v.(*session.Session)
	ss.sessions.SetDefault(id.String(), sess)
	return sess, true
}

// Delete drops a session immediately.
func (ss *SessionService) Delete(id uuid.UUID) {
	ss.sessions.Delete(id.String())
}

func sessionAge(v interface{}) time.Duration {
	sess, ok := v.(*session.Session)
	if !ok {
		return 0
	}
	return time.Since(sess.CreatedAt())
}

// Count is the number of live sessions.
func (ss *SessionService) Count() int {
	return ss.sessions.ItemCount()
}
