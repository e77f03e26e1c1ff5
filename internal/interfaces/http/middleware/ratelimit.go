package middleware

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"

	"github.com/turtacn/molsmarts/internal/interfaces/http/handlers"
	"github.com/turtacn/molsmarts/pkg/errors"
)

const defaultMaxClients = 10000

// RateLimitConfig holds configuration for the rate limit middleware.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained request rate per client.
	RequestsPerSecond float64
	// Burst is the number of requests a client may make at once.
	Burst int
	// MaxClients bounds the number of tracked clients; the least recently
	// seen client is forgotten first.
	MaxClients int
	// KeyFunc extracts the client key; the client IP when nil.
	KeyFunc func(c *gin.Context) string
	// SkipPaths bypass rate limiting.
	SkipPaths []string
}

// ClientLimiter hands out one token bucket per client key.
type ClientLimiter struct {
	limit   rate.Limit
	burst   int
	mu      sync.Mutex
	clients *lru.Cache[string, *rate.Limiter]
}

// NewClientLimiter returns a limiter for cfg.
func NewClientLimiter(cfg RateLimitConfig) (*ClientLimiter, error) {
	size := cfg.MaxClients
	if size <= 0 {
		size = defaultMaxClients
	}
	clients, err := lru.New[string, *rate.Limiter](size)
	if err != nil {
		return nil, err
	}
	return &ClientLimiter{limit: rate.Limit(cfg.RequestsPerSecond), burst: cfg.Burst, clients: clients}, nil
}

func (l *ClientLimiter) limiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	if lim, ok := l.clients.Get(key); ok {
		return lim
	}
	lim := rate.NewLimiter(l.limit, l.burst)
	l.clients.Add(key, lim)
	return lim
}

// Reserve takes one token for key.  When none is available it returns false
// and how long the client should wait.
func (l *ClientLimiter) Reserve(key string) (bool, time.Duration) {
	now := time.Now()
	r := l.limiter(key).ReserveN(now, 1)
	if !r.OK() {
		return false, time.Second
	}
	if d := r.DelayFrom(now); d > 0 {
		r.CancelAt(now)
		return false, d
	}
	return true, 0
}

// RateLimit rejects clients over their budget with 429 and Retry-After.
func RateLimit(limiter *ClientLimiter, config RateLimitConfig) gin.HandlerFunc {
	keyFunc := config.KeyFunc
	if keyFunc == nil {
		keyFunc = func(c *gin.Context) string { return c.ClientIP() }
	}
	skip := make(map[string]bool, len(config.SkipPaths))
	for _, p := range config.SkipPaths {
		skip[p] = true
	}

	return func(c *gin.Context) {
		if skip[c.Request.URL.Path] {
			c.Next()
			return
		}
		ok, wait := limiter.Reserve(keyFunc(c))
		if !ok {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			handlers.RespondError(c, errors.RateLimit("rate limit exceeded"))
			return
		}
		c.Next()
	}
}

//Personal.AI order the ending
