package motion

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClockFiresImmediatelyWhenNew(t *testing.T) {
	c := NewClock(5 * time.Second)
	assert.True(t, c.TryFire(time.Now()))
}

func TestClockThrottlesWithinCooldown(t *testing.T) {
	c := NewClock(5 * time.Second)
	base := time.Now()

	assert.True(t, c.TryFire(base))
	// 1 second apart with a 5 second cooldown: second call must not fire and
	// must not advance the clock.
	assert.False(t, c.TryFire(base.Add(time.Second)))
	assert.False(t, c.TryFire(base.Add(4*time.Second)))
	// After the cooldown elapses the channel fires again.
	assert.True(t, c.TryFire(base.Add(5*time.Second+time.Millisecond)))
}

func TestClockCooldownBoundaryIsExclusive(t *testing.T) {
	c := NewClock(5 * time.Second)
	base := time.Now()
	assert.True(t, c.TryFire(base))
	// Fireable iff now - lastFired > cooldown, strictly.
	assert.False(t, c.TryFire(base.Add(5*time.Second)))
}

func TestGateChannelsAreIndependent(t *testing.T) {
	g := NewGate()
	g.SetCooldown(ChannelAlert, 5*time.Second)
	g.SetCooldown(ChannelSnapshot, 3*time.Second)
	base := time.Now()

	assert.True(t, g.TryFire(ChannelAlert, base))
	// Alert firing never consumes the snapshot channel.
	assert.True(t, g.TryFire(ChannelSnapshot, base))

	assert.False(t, g.TryFire(ChannelAlert, base.Add(4*time.Second)))
	assert.True(t, g.TryFire(ChannelSnapshot, base.Add(4*time.Second)))
}

func TestGateUnknownChannelNeverFires(t *testing.T) {
	g := NewGate()
	assert.False(t, g.TryFire("unregistered", time.Now()))
}
