package server

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	clientIdleThreshold = 10 * time.Minute
	cleanupInterval     = 5 * time.Minute
)

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ClientLimiter keeps one token bucket per client address.
type ClientLimiter struct {
	mu          sync.Mutex
	limit       rate.Limit
	burst       int
	clients     map[string]*client
	stopCleanup chan struct{}
	stopOnce    sync.Once
}

// NewClientLimiter allows each client requestsPerSecond sustained requests
// with bursts of up to burst. Call Stop to end the idle-client sweeper.
func NewClientLimiter(requestsPerSecond float64, burst int) *ClientLimiter {
	cl := &ClientLimiter{
		limit:       rate.Limit(requestsPerSecond),
		burst:       burst,
		clients:     make(map[string]*client),
		stopCleanup: make(chan struct{}),
	}
	go cl.cleanupLoop()
	return cl
}

// Allow reports whether the client may make a request now.
func (cl *ClientLimiter) Allow(addr string) bool {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	c, ok := cl.clients[addr]
	if !ok {
		c = &client{limiter: rate.NewLimiter(cl.limit, cl.burst)}
		cl.clients[addr] = c
	}
	c.lastSeen = time.Now()
	return c.limiter.Allow()
}

// Stop ends the sweeper goroutine. It is safe to call more than once.
func (cl *ClientLimiter) Stop() {
	cl.stopOnce.Do(func() { close(cl.stopCleanup) })
}

func (cl *ClientLimiter) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cl.cleanup(time.Now())
		case <-cl.stopCleanup:
			return
		}
	}
}

func (cl *ClientLimiter) cleanup(now time.Time) {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	for addr, c := range cl.clients {
		if now.Sub(c.lastSeen) > clientIdleThreshold {
			delete(cl.clients, addr)
		}
	}
}

func (cl *ClientLimiter) size() int {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	return len(cl.clients)
}
