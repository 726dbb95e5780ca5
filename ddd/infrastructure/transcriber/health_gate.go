package transcriber

import (
	"sync"
	"time"
)

// HealthGate is the circuit breaker shared by every job hitting the speech
// service. After threshold consecutive failures it rejects calls until the
// cooldown expires, then lets a single probe through: a successful probe
// closes the gate, a failed one reopens it with a fresh cooldown.
type HealthGate struct {
	mu        sync.Mutex
	threshold int
	cooldown  time.Duration

	failures  int
	openUntil time.Time
	probing   bool

	now func() time.Time
}

func NewHealthGate(threshold int, cooldown time.Duration) *HealthGate {
	return &HealthGate{
		threshold: threshold,
		cooldown:  cooldown,
		now:       time.Now,
	}
}

// Allow reports whether a call may go out. While open it returns false
// without any network involvement. The first call after cooldown expiry is
// admitted as the half-open probe; others keep getting rejected until the
// probe reports its outcome.
func (g *HealthGate) Allow() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.openUntil.IsZero() {
		return true
	}
	if g.now().Before(g.openUntil) {
		return false
	}
	if g.probing {
		return false
	}
	g.probing = true
	return true
}

// RecordSuccess closes the gate and resets the failure counter.
func (g *HealthGate) RecordSuccess() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failures = 0
	g.openUntil = time.Time{}
	g.probing = false
}

// RecordFatal releases a held probe slot without touching the failure
// streak. Credential and quota rejections describe the caller's account,
// not the service's health, but the probe outcome still has to be
// reported or the gate would wait on it forever.
func (g *HealthGate) RecordFatal() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.probing = false
}

// RecordFailure counts a failure; at the threshold, or on a failed probe,
// the gate opens with a fresh cooldown.
func (g *HealthGate) RecordFailure() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.probing {
		g.probing = false
		g.openUntil = g.now().Add(g.cooldown)
		return
	}

	g.failures++
	if g.failures >= g.threshold {
		g.openUntil = g.now().Add(g.cooldown)
		g.failures = 0
	}
}

// Open reports whether calls are currently rejected.
func (g *HealthGate) Open() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return !g.openUntil.IsZero() && g.now().Before(g.openUntil)
}
