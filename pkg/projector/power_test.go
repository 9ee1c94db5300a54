package projector

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projector-protocol/benq-go/pkg/config"
)

// withModel resolves a capability table and installs a controllable
// clock. The w1110 table has a 60s power-on and 90s power-off settle
// time.
func withModel(t *testing.T, s *Session, model string) *time.Time {
	t.Helper()
	m, err := config.Load(model)
	require.NoError(t, err)

	now := time.Now()
	s.mu.Lock()
	s.model = m
	s.mu.Unlock()
	s.now = func() time.Time { return now }
	return &now
}

func TestUpdatePowerDebouncesDuringWarmUp(t *testing.T) {
	conn := scripted("*POW=ON#")
	s := newTestSession(conn)
	now := withModel(t, s, "W1110")

	s.mu.Lock()
	s.state.Power = PoweringOn
	s.powerTimestamp = *now
	s.mu.Unlock()

	// Half way into the warm-up window an "on" report still means
	// powering on.
	*now = now.Add(30 * time.Second)
	assert.True(t, s.UpdatePower())
	assert.Equal(t, PoweringOn, s.PowerStatus())

	// Past the window the same report settles to on.
	conn.setScript("*POW=ON#")
	*now = now.Add(60 * time.Second)
	assert.True(t, s.UpdatePower())
	assert.Equal(t, PowerOn, s.PowerStatus())
}

func TestUpdatePowerDebouncesDuringCoolDown(t *testing.T) {
	conn := scripted("*POW=OFF#")
	s := newTestSession(conn)
	now := withModel(t, s, "W1110")

	s.mu.Lock()
	s.state.Power = PoweringOff
	s.powerTimestamp = *now
	s.mu.Unlock()

	*now = now.Add(45 * time.Second)
	assert.True(t, s.UpdatePower())
	assert.Equal(t, PoweringOff, s.PowerStatus())

	conn.setScript("*POW=OFF#")
	*now = now.Add(90 * time.Second)
	assert.True(t, s.UpdatePower())
	assert.Equal(t, PowerOff, s.PowerStatus())
}

func TestUpdatePowerToleratesSilenceDuringTransition(t *testing.T) {
	conn := scripted() // the projector stops answering while warming up
	s := newTestSession(conn)
	now := withModel(t, s, "W1110")

	s.mu.Lock()
	s.state.Power = PoweringOn
	s.powerTimestamp = *now
	s.mu.Unlock()

	assert.True(t, s.UpdatePower())
	assert.Equal(t, PoweringOn, s.PowerStatus())
}

func TestUpdatePowerUnknownOutsideTransition(t *testing.T) {
	conn := scripted()
	s := newTestSession(conn)
	withModel(t, s, "W1110")

	s.mu.Lock()
	s.state.Power = PowerOff
	s.mu.Unlock()

	assert.False(t, s.UpdatePower())
	assert.Equal(t, PowerUnknown, s.PowerStatus())
}

func TestTurnOn(t *testing.T) {
	conn := scripted(
		"*POW=OFF#", // state check
		"*POW=ON#",  // acknowledgement of *pow=on#
	)
	s := newTestSession(conn)
	now := withModel(t, s, "W1110")

	assert.True(t, s.TurnOn())
	assert.Equal(t, PoweringOn, s.PowerStatus())
	s.mu.Lock()
	assert.Equal(t, *now, s.powerTimestamp)
	s.mu.Unlock()
}

func TestTurnOnWhileAlreadyOn(t *testing.T) {
	conn := scripted("*POW=ON#")
	s := newTestSession(conn)
	withModel(t, s, "W1110")

	assert.True(t, s.TurnOn())
	assert.Equal(t, PowerOn, s.PowerStatus())
}

func TestTurnOnWhilePoweringOffFails(t *testing.T) {
	conn := scripted("*POW=OFF#")
	s := newTestSession(conn)
	now := withModel(t, s, "W1110")

	s.mu.Lock()
	s.state.Power = PoweringOff
	s.powerTimestamp = *now
	s.mu.Unlock()

	*now = now.Add(45 * time.Second) // still inside the cool-down window

	assert.False(t, s.TurnOn())
	assert.Equal(t, PoweringOff, s.PowerStatus())
	assert.Equal(t, 1, conn.writeCount(), "no power-on command may be sent while cooling down")
}

func TestTurnOnAfterCoolDownWindow(t *testing.T) {
	conn := scripted(
		"*POW=OFF#",
		"*POW=ON#",
	)
	s := newTestSession(conn)
	now := withModel(t, s, "W1110")

	s.mu.Lock()
	s.state.Power = PoweringOff
	s.powerTimestamp = *now
	s.mu.Unlock()

	*now = now.Add(120 * time.Second) // past the 90s cool-down

	assert.True(t, s.TurnOn())
	assert.Equal(t, PoweringOn, s.PowerStatus())
}

func TestTurnOff(t *testing.T) {
	conn := scripted(
		"*POW=ON#",  // state check
		"*POW=OFF#", // acknowledgement of *pow=off#
	)
	s := newTestSession(conn)
	withModel(t, s, "W1110")

	assert.True(t, s.TurnOff())
	assert.Equal(t, PoweringOff, s.PowerStatus())
}

func TestTurnOffWhilePoweringOnFails(t *testing.T) {
	conn := scripted("*POW=ON#")
	s := newTestSession(conn)
	now := withModel(t, s, "W1110")

	s.mu.Lock()
	s.state.Power = PoweringOn
	s.powerTimestamp = *now
	s.mu.Unlock()

	*now = now.Add(30 * time.Second) // still inside the warm-up window

	assert.False(t, s.TurnOff())
	assert.Equal(t, PoweringOn, s.PowerStatus())
	assert.Equal(t, 1, conn.writeCount(), "no power-off command may be sent while warming up")
}

func TestTurnOffWhileAlreadyOff(t *testing.T) {
	conn := scripted("*POW=OFF#")
	s := newTestSession(conn)
	withModel(t, s, "W1110")

	assert.True(t, s.TurnOff())
	assert.Equal(t, PowerOff, s.PowerStatus())
}
