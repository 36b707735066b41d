package auth

import (
	"context"
	"sync"
	"time"
)

// Denylist keeps revoked token IDs in memory so the middleware pays
// a map lookup instead of a database round trip per request. Entries
// expire together with the token they belong to.
type Denylist struct {
	mu      sync.RWMutex
	revoked map[string]time.Time
}

func NewDenylist(ctx context.Context) *Denylist {
	d := &Denylist{
		revoked: make(map[string]time.Time),
	}
	go d.retention(ctx, time.Minute)
	return d
}

func (d *Denylist) Add(jti string, expiresAt time.Time) {
	d.mu.Lock()
	d.revoked[jti] = expiresAt
	d.mu.Unlock()
}

func (d *Denylist) Has(jti string) bool {
	d.mu.RLock()
	_, ok := d.revoked[jti]
	d.mu.RUnlock()
	return ok
}

func (d *Denylist) retention(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			d.sweep(time.Now())
		case <-ctx.Done():
			return
		}
	}
}

func (d *Denylist) sweep(now time.Time) {
	d.mu.Lock()
	for jti, expiresAt := range d.revoked {
		if expiresAt.Before(now) {
			delete(d.revoked, jti)
		}
	}
	d.mu.Unlock()
}
