package httpmiddleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// idleAfter is how long a client's limiter survives without requests.
const idleAfter = 10 * time.Minute

// ClientLimiter keeps one token bucket per client IP.
type ClientLimiter struct {
	limit rate.Limit
	burst int
	now   func() time.Time

	mu      sync.Mutex
	clients map[string]*client
}

type client struct {
	limiter *rate.Limiter
	seen    time.Time
}

// NewClientLimiter allows perMinute requests per client with a burst of the same size.
// A non-positive perMinute disables limiting.
func NewClientLimiter(perMinute int) *ClientLimiter {
	l := &ClientLimiter{
		limit:   rate.Inf,
		burst:   1,
		now:     time.Now,
		clients: make(map[string]*client),
	}
	if perMinute > 0 {
		l.limit = rate.Limit(float64(perMinute) / 60)
		l.burst = perMinute
	}
	return l
}

// GinMiddleware returns gin handler enforcing per-IP limits.
func (l *ClientLimiter) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if ip == "" {
			ip = "unknown"
		}
		if !l.Allow(ip) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"ok": false, "message": "Too many requests."})
			return
		}
		c.Next()
	}
}

// Allow reports whether key may make a request now.
func (l *ClientLimiter) Allow(key string) bool {
	now := l.now()

	l.mu.Lock()
	cl, ok := l.clients[key]
	if !ok {
		cl = &client{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = cl
	}
	cl.seen = now
	l.sweep(now)
	l.mu.Unlock()

	return cl.limiter.AllowN(now, 1)
}

// sweep drops idle clients. Caller holds mu.
func (l *ClientLimiter) sweep(now time.Time) {
	for k, cl := range l.clients {
		if now.Sub(cl.seen) > idleAfter {
			delete(l.clients, k)
		}
	}
}
