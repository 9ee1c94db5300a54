package projector

import (
	"time"

	"github.com/projector-protocol/benq-go/pkg/command"
)

// Commands the poller refreshes itself while the projector is on;
// subscribing them again would poll them twice.
var polledCommands = map[string]bool{
	command.Power:  true,
	command.Mute:   true,
	command.Volume: true,
	command.Source: true,
}

// Commands worth a one-shot refresh while the projector is off.
// Position and lamp hours don't change while off, so one read is
// enough.
var offCommands = []string{"pp", "ltim", "ltim2"}

func (s *Session) startPoller() {
	s.mu.Lock()
	if s.pollerDone != nil || s.interval <= 0 {
		s.mu.Unlock()
		return
	}
	done := make(chan struct{})
	s.pollerDone = done
	s.mu.Unlock()

	go s.pollLoop(done)
}

// stopPoller is idempotent.
func (s *Session) stopPoller() {
	s.mu.Lock()
	done := s.pollerDone
	s.pollerDone = nil
	s.mu.Unlock()

	if done != nil {
		close(done)
	}
}

func (s *Session) pollLoop(done <-chan struct{}) {
	s.logger.Debug("poller started")
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	previous := make(map[string]any)
	for {
		s.pollOnce(previous)

		select {
		case <-done:
			s.logger.Debug("poller stopped")
			return
		case <-ticker.C:
		}
	}
}

// pollOnce runs a single poll cycle: reconnect if needed, skip when
// an exchange is in flight, refresh power and the on-state values,
// and notify listeners of changes.
func (s *Session) pollOnce(previous map[string]any) {
	if !s.Connected() {
		if err := s.conn.Open(); err != nil {
			s.logger.Debug("not connected", "error", err)
			return
		}
	}

	if s.Busy() {
		return
	}

	if !s.UpdatePower() {
		if s.PowerStatus() == PowerUnknown {
			s.dispatch(previous, command.Power, PowerUnknown)
		}
		return
	}

	s.dispatch(previous, command.Power, s.PowerStatus())

	if s.PowerStatus() != PowerOn {
		for _, c := range s.subscribedCommands() {
			if _, seen := previous[c]; seen || !containsString(offCommands, c) {
				continue
			}
			if value, ok := s.SendCommand(c); ok {
				s.dispatch(previous, c, value)
			}
		}
		return
	}

	s.UpdateVolume()
	state := s.Snapshot()
	if state.Muted != nil {
		s.dispatch(previous, command.Mute, *state.Muted)
	}
	if state.Volume != nil {
		s.dispatch(previous, command.Volume, *state.Volume)
	}

	s.UpdateVideoSource()
	state = s.Snapshot()
	if state.VideoSource != "" {
		s.dispatch(previous, command.Source, state.VideoSource)
	}

	for _, c := range s.subscribedCommands() {
		if polledCommands[c] {
			continue
		}
		if value, ok := s.SendCommand(c); ok {
			s.dispatch(previous, c, value)
		}
	}
}

// dispatch notifies all listeners when the value differs from the
// last dispatched one.
func (s *Session) dispatch(previous map[string]any, cmd string, value any) {
	if prev, seen := previous[cmd]; seen && prev == value {
		return
	}
	previous[cmd] = value

	s.mu.Lock()
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	for _, listener := range listeners {
		s.notify(listener, cmd, value)
	}
}

// notify calls a single listener. A panicking listener must not take
// down the poll loop.
func (s *Session) notify(listener Listener, cmd string, value any) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic in listener", "command", cmd, "panic", r)
		}
	}()
	listener(cmd, value)
}

func (s *Session) subscribedCommands() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.listenerCommands...)
}

func containsString(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
