package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"
)

const (
	LimitQuery  = "query"
	LimitUpload = "upload"
)

// RateLimiterConfig holds configuration for rate limiting
type RateLimiterConfig struct {
	QueriesPerMinute int // Max queries per session per minute
	UploadsPerHour   int // Max uploads per session per hour
	BurstSize        int // Allow burst of N queries
	MaxSessions      int // Sessions tracked at once; least recently seen are forgotten
}

// TokenBucket implements a token bucket rate limiter
type TokenBucket struct {
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
	now        func() time.Time
	mu         sync.Mutex
}

// NewTokenBucket creates a new token bucket
func NewTokenBucket(maxTokens float64, refillRate float64) *TokenBucket {
	return &TokenBucket{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillRate: refillRate,
		lastRefill: time.Now(),
		now:        time.Now,
	}
}

// Allow checks if a request can proceed and consumes a token if so
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()
	if tb.tokens >= 1.0 {
		tb.tokens -= 1.0
		return true
	}
	return false
}

// Remaining returns the number of tokens remaining
func (tb *TokenBucket) Remaining() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()
	return int(tb.tokens)
}

func (tb *TokenBucket) refill() {
	now := tb.now()
	elapsed := now.Sub(tb.lastRefill).Seconds()
	tb.tokens = min(tb.maxTokens, tb.tokens+(elapsed*tb.refillRate))
	tb.lastRefill = now
}

// SessionRateLimiter manages rate limits per session. Buckets live in LRU
// caches so abandoned sessions are forgotten without a cleanup routine.
type SessionRateLimiter struct {
	config       RateLimiterConfig
	queryLimits  *lru.Cache
	uploadLimits *lru.Cache
	mu           sync.Mutex
	logger       *zap.Logger
}

// NewSessionRateLimiter creates a new session-based rate limiter
func NewSessionRateLimiter(config RateLimiterConfig, logger *zap.Logger) (*SessionRateLimiter, error) {
	queryLimits, err := lru.New(config.MaxSessions)
	if err != nil {
		return nil, err
	}
	uploadLimits, err := lru.New(config.MaxSessions)
	if err != nil {
		return nil, err
	}
	return &SessionRateLimiter{
		config:       config,
		queryLimits:  queryLimits,
		uploadLimits: uploadLimits,
		logger:       logger,
	}, nil
}

func (srl *SessionRateLimiter) bucket(limits *lru.Cache, sessionID uuid.UUID, create func() *TokenBucket) *TokenBucket {
	srl.mu.Lock()
	defer srl.mu.Unlock()

	if v, ok := limits.Get(sessionID); ok {
		return v.(*TokenBucket)
	}
	b := create()
	limits.Add(sessionID, b)
	return b
}

func (srl *SessionRateLimiter) queryBucket(sessionID uuid.UUID) *TokenBucket {
	return srl.bucket(srl.queryLimits, sessionID, func() *TokenBucket {
		// BurstSize tokens, refill at QueriesPerMinute/60 per second
		return NewTokenBucket(float64(srl.config.BurstSize), float64(srl.config.QueriesPerMinute)/60.0)
	})
}

func (srl *SessionRateLimiter) uploadBucket(sessionID uuid.UUID) *TokenBucket {
	return srl.bucket(srl.uploadLimits, sessionID, func() *TokenBucket {
		// UploadsPerHour tokens, refill at rate/3600 per second
		return NewTokenBucket(float64(srl.config.UploadsPerHour), float64(srl.config.UploadsPerHour)/3600.0)
	})
}

// AllowQuery checks if a query can be sent for the given session
func (srl *SessionRateLimiter) AllowQuery(sessionID uuid.UUID) bool {
	return srl.queryBucket(sessionID).Allow()
}

// AllowUpload checks if an upload can proceed for the given session
func (srl *SessionRateLimiter) AllowUpload(sessionID uuid.UUID) bool {
	return srl.uploadBucket(sessionID).Allow()
}

// RateLimitMiddleware creates a Gin middleware for rate limiting one kind of
// widget request. SessionMiddleware must run first.
func RateLimitMiddleware(limiter *SessionRateLimiter, limitType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionIDValue, exists := c.Get("sessionID")
		if !exists {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "session not initialized"})
			return
		}
		sessionID := sessionIDValue.(uuid.UUID)

		var allowed bool
		var remaining, limit int
		switch limitType {
		case LimitQuery:
			allowed = limiter.AllowQuery(sessionID)
			remaining, limit = limiter.queryBucket(sessionID).Remaining(), limiter.config.BurstSize
		case LimitUpload:
			allowed = limiter.AllowUpload(sessionID)
			remaining, limit = limiter.uploadBucket(sessionID).Remaining(), limiter.config.UploadsPerHour
		default:
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "unknown limit type"})
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			limiter.logger.Warn("Rate limit exceeded",
				zap.String("session_id", sessionID.String()),
				zap.String("limit_type", limitType),
				zap.Int("limit", limit))

			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"limit":       limit,
				"remaining":   remaining,
				"retry_after": 60,
			})
			return
		}

		c.Next()
	}
}
