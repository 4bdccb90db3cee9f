package mid

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitOpts configures RateLimit. A zero Rate disables limiting.
type RateLimitOpts struct {
	Rate  float64       `yaml:"rate"`
	Burst int           `yaml:"burst"`
	Idle  time.Duration `yaml:"idle"` // evict clients quiet this long
}

type clientLimiter struct {
	lim  *rate.Limiter
	seen time.Time
}

// limiterSet holds one token bucket per client address.
type limiterSet struct {
	mu      sync.Mutex
	opts    RateLimitOpts
	clients map[string]*clientLimiter
	now     func() time.Time
	lastGC  time.Time
}

func newLimiterSet(opts RateLimitOpts) *limiterSet {
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	if opts.Idle <= 0 {
		opts.Idle = 10 * time.Minute
	}
	return &limiterSet{opts: opts, clients: map[string]*clientLimiter{}, now: time.Now}
}

func (s *limiterSet) allow(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if now.Sub(s.lastGC) > s.opts.Idle {
		for k, c := range s.clients {
			if now.Sub(c.seen) > s.opts.Idle {
				delete(s.clients, k)
			}
		}
		s.lastGC = now
	}
	c, ok := s.clients[key]
	if !ok {
		c = &clientLimiter{lim: rate.NewLimiter(rate.Limit(s.opts.Rate), s.opts.Burst)}
		s.clients[key] = c
	}
	c.seen = now
	return c.lim.AllowN(now, 1)
}

// RateLimit rejects clients exceeding opts with 429.
func RateLimit(opts RateLimitOpts) Middleware {
	if opts.Rate <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	set := newLimiterSet(opts)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !set.allow(clientKey(r)) {
				w.Header().Set("Retry-After", "1")
				http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
