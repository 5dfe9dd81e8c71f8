package motion

import (
	"sync"
	"time"
)

// Reference cooldowns for the side-effect channels.
const (
	DefaultAlertCooldown    = 5 * time.Second
	DefaultSnapshotCooldown = 3 * time.Second
)

// Channel names used by the capture session.
const (
	ChannelAlert    = "alert"
	ChannelSnapshot = "snapshot"
)

// Clock is a single named cooldown timer: fireable iff the cooldown has fully
// elapsed since the last successful fire. A zero Clock fires immediately.
type Clock struct {
	cooldown time.Duration
	lastFire time.Time
}

// NewClock returns a clock with the given cooldown that is immediately fireable.
func NewClock(cooldown time.Duration) *Clock {
	return &Clock{cooldown: cooldown}
}

// TryFire returns true and records now iff now is strictly more than the
// cooldown after the previous fire; otherwise it returns false with no state
// change.
func (c *Clock) TryFire(now time.Time) bool {
	if !c.lastFire.IsZero() && now.Sub(c.lastFire) <= c.cooldown {
		return false
	}
	c.lastFire = now
	return true
}

// Gate throttles independent side-effect channels so continuous motion does
// not flood any of them. Each channel has its own clock; firing one never
// affects another.
type Gate struct {
	mu     sync.Mutex
	clocks map[string]*Clock
}

// NewGate returns a gate with no channels registered.
func NewGate() *Gate {
	return &Gate{clocks: make(map[string]*Clock)}
}

// SetCooldown registers (or replaces) a channel with the given cooldown.
func (g *Gate) SetCooldown(channel string, cooldown time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.clocks[channel] = NewClock(cooldown)
}

// TryFire attempts to fire the named channel at the given instant. Unknown
// channels never fire.
func (g *Gate) TryFire(channel string, now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	clock, ok := g.clocks[channel]
	if !ok {
		return false
	}
	return clock.TryFire(now)
}
