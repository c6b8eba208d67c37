package keypool

import (
	"sync"
	"time"
)

const (
	// cooldownWindow is how long an unavailable credential rests before
	// it is reinstated on the next selection.
	cooldownWindow = 60 * time.Second

	// errorThreshold is the number of consecutive errors that sends a
	// credential into cooldown.
	errorThreshold = 3
)

// credential tracks health and load for one API secret. Owned exclusively
// by the pool and mutated only under its lock.
type credential struct {
	key       string
	requests  int
	lastUsed  time.Time
	available bool
	errors    int
}

// Pool balances requests across a fixed set of interchangeable API
// credentials. All methods are safe for concurrent use.
type Pool struct {
	mu    sync.Mutex
	creds []*credential
	index map[string]*credential
	now   func() time.Time
}

// Option customizes pool construction.
type Option func(*Pool)

// WithClock replaces the time source, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(p *Pool) {
		if now != nil {
			p.now = now
		}
	}
}

// New builds a pool from the configured secrets. Empty strings are skipped;
// credentials are created once and never destroyed.
func New(keys []string, opts ...Option) *Pool {
	p := &Pool{
		index: map[string]*credential{},
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}

	for _, key := range keys {
		if key == "" {
			continue
		}
		if _, ok := p.index[key]; ok {
			continue
		}
		cred := &credential{key: key, available: true}
		p.creds = append(p.creds, cred)
		p.index[key] = cred
	}

	return p
}

// Next selects one usable credential, or ok == false when the pool was
// constructed without credentials. It never blocks.
//
// Selection order: reinstate credentials whose cooldown elapsed, then pick
// the available credential with the fewest recorded requests (ties broken
// by pool order). If nothing is available, the credential with the oldest
// last-used timestamp is force-reinstated so callers always make progress.
func (p *Pool) Next() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.creds) == 0 {
		return "", false
	}

	now := p.now()

	for _, cred := range p.creds {
		if !cred.available && now.Sub(cred.lastUsed) > cooldownWindow {
			cred.available = true
			cred.errors = 0
		}
	}

	var pick *credential
	for _, cred := range p.creds {
		if !cred.available {
			continue
		}
		if pick == nil || cred.requests < pick.requests {
			pick = cred
		}
	}

	if pick == nil {
		pick = p.creds[0]
		for _, cred := range p.creds[1:] {
			if cred.lastUsed.Before(pick.lastUsed) {
				pick = cred
			}
		}
		pick.available = true
		pick.errors = 0
	}

	pick.requests++
	pick.lastUsed = now
	return pick.key, true
}

// ReportError records a failed attempt with the credential. Reaching the
// error threshold marks it unavailable for the cooldown window. Unknown
// credentials are ignored.
func (p *Pool) ReportError(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	cred, ok := p.index[key]
	if !ok {
		return
	}

	cred.errors++
	if cred.errors >= errorThreshold {
		cred.available = false
	}
}

// ReportSuccess lets a recovering credential earn back headroom by
// decrementing its error counter, floored at zero. Unknown credentials
// are ignored.
func (p *Pool) ReportSuccess(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	cred, ok := p.index[key]
	if !ok {
		return
	}

	if cred.errors > 0 {
		cred.errors--
	}
}

// Stats is a read-only snapshot for observability. Requests is positional
// (pool iteration order) so output never echoes secrets.
type Stats struct {
	Total     int   `json:"total"`
	Available int   `json:"available"`
	Requests  []int `json:"requestCounts"`
}

// Stats reports pool size, availability, and per-credential request counts.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	stats := Stats{
		Total:    len(p.creds),
		Requests: make([]int, 0, len(p.creds)),
	}
	for _, cred := range p.creds {
		if cred.available {
			stats.Available++
		}
		stats.Requests = append(stats.Requests, cred.requests)
	}

	return stats
}
