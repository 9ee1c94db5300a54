package projector

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/projector-protocol/benq-go/pkg/command"
	"github.com/projector-protocol/benq-go/pkg/protocol"
)

// Volume bounds of the vol command.
const (
	MinVolume = 0
	MaxVolume = 20
)

// TurnOn turns the projector on. It first verifies the projector is
// in a state where powering on is possible: a projector still
// cooling down refuses the power command. Returns true when the
// projector is on or now powering on.
func (s *Session) TurnOn() bool {
	response, proceed := s.refreshPowerForTransition()
	if !proceed {
		return false
	}

	switch response {
	case "on":
		return true
	case "off":
	default:
		return false
	}

	s.mu.Lock()
	_, offTime := s.settleTimes()
	if s.state.Power == PoweringOff && s.now().Sub(s.powerTimestamp) <= offTime {
		s.mu.Unlock()
		s.logger.Warn("projector still powering off")
		return false
	}
	s.state.Power = PowerOff
	s.powerTimestamp = time.Time{}
	s.mu.Unlock()

	s.logger.Info("turning on projector")
	value, err := s.Send(command.New(command.Power, command.ActionOn))
	if err == nil && value == "on" {
		s.mu.Lock()
		s.state.Power = PoweringOn
		s.powerTimestamp = s.now()
		s.mu.Unlock()
		return true
	}

	var blockedErr *protocol.BlockedItemError
	if errors.As(err, &blockedErr) {
		s.logger.Error("failed to turn on projector, is it already powering on or off?", "error", err)
	} else {
		s.logger.Error("failed to turn on projector", "response", value, "error", err)
	}
	return false
}

// TurnOff turns the projector off. It first verifies the projector
// is in a state where powering off is possible: a projector still
// warming up refuses the power command. Returns true when the
// projector is off or now powering off.
func (s *Session) TurnOff() bool {
	response, proceed := s.refreshPowerForTransition()
	if !proceed {
		return false
	}

	switch response {
	case "off":
		s.mu.Lock()
		_, offTime := s.settleTimes()
		if s.state.Power == PoweringOff && s.now().Sub(s.powerTimestamp) <= offTime {
			s.logger.Debug("projector still powering off")
		} else {
			s.state.Power = PowerOff
			s.powerTimestamp = time.Time{}
		}
		s.mu.Unlock()
		return true
	case "on":
	default:
		return false
	}

	s.mu.Lock()
	onTime, _ := s.settleTimes()
	if s.state.Power == PoweringOn && s.now().Sub(s.powerTimestamp) <= onTime {
		s.mu.Unlock()
		s.logger.Warn("projector still powering on")
		return false
	}
	s.state.Power = PowerOn
	s.powerTimestamp = time.Time{}
	s.mu.Unlock()

	s.logger.Info("turning off projector")
	value, err := s.Send(command.New(command.Power, command.ActionOff))
	if err == nil && value == "off" {
		s.mu.Lock()
		s.state.Power = PoweringOff
		s.powerTimestamp = s.now()
		s.mu.Unlock()
		return true
	}

	var blockedErr *protocol.BlockedItemError
	if errors.As(err, &blockedErr) {
		s.logger.Error("failed to turn off projector, is it already powering on or off?", "error", err)
	} else {
		s.logger.Error("failed to turn off projector", "response", value, "error", err)
	}
	return false
}

// refreshPowerForTransition queries the actual power state before a
// power transition and folds debounced reports back into the
// session state. The second return is false when the state could not
// be determined at all.
func (s *Session) refreshPowerForTransition() (string, bool) {
	response, err := s.Send(command.Query(command.Power))
	if err != nil {
		var blockedErr *protocol.BlockedItemError
		if errors.As(err, &blockedErr) {
			s.logger.Error("unable to retrieve power state, is the projector already powering down?", "error", err)
			return "", true
		}
		s.logger.Error("unable to retrieve power state", "error", err)
		return "", false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	onTime, _ := s.settleTimes()

	switch response {
	case "on":
		if s.state.Power == PoweringOn && s.now().Sub(s.powerTimestamp) <= onTime {
			s.logger.Debug("projector still powering on")
		} else {
			s.state.Power = PowerOn
			s.powerTimestamp = time.Time{}
		}
	case "off":
		// The powering-off debounce is handled by the callers, which
		// need to fail or succeed on it depending on direction.
	}
	return response, true
}

// Mute mutes the projector audio.
func (s *Session) Mute() bool {
	if value, ok := s.SendCommandAction(command.Mute, command.ActionOn); ok && value == "on" {
		s.mu.Lock()
		s.state.Muted = boolPtr(true)
		s.mu.Unlock()
		return true
	}
	return false
}

// Unmute unmutes the projector audio.
func (s *Session) Unmute() bool {
	if value, ok := s.SendCommandAction(command.Mute, command.ActionOff); ok && value == "off" {
		s.mu.Lock()
		s.state.Muted = boolPtr(false)
		s.mu.Unlock()
		return true
	}
	return false
}

// VolumeUp increases the volume by one step.
func (s *Session) VolumeUp() bool {
	s.mu.Lock()
	volume := s.state.Volume
	s.mu.Unlock()

	if volume == nil {
		s.UpdateVolume()
	} else if *volume >= MaxVolume {
		return false
	}

	if value, ok := s.SendCommandAction(command.Volume, "+"); ok && value == "+" {
		s.mu.Lock()
		if s.state.Volume != nil {
			s.state.Volume = intPtr(*s.state.Volume + 1)
		}
		s.mu.Unlock()
		return true
	}
	return false
}

// VolumeDown decreases the volume by one step.
func (s *Session) VolumeDown() bool {
	s.mu.Lock()
	volume := s.state.Volume
	s.mu.Unlock()

	if volume == nil {
		s.UpdateVolume()
	} else if *volume <= MinVolume {
		return false
	}

	if value, ok := s.SendCommandAction(command.Volume, "-"); ok && value == "-" {
		s.mu.Lock()
		if s.state.Volume != nil {
			s.state.Volume = intPtr(*s.state.Volume - 1)
		}
		s.mu.Unlock()
		return true
	}
	return false
}

// SetVolume sets the volume to the given level. Some projectors
// accept an absolute volume action; the rest only support stepwise
// changes, which the session detects once and remembers, then walks
// the volume to the target level.
func (s *Session) SetVolume(level int) bool {
	if level < MinVolume || level > MaxVolume {
		return false
	}

	s.mu.Lock()
	volume := s.state.Volume
	increments := s.useVolumeIncrements
	s.mu.Unlock()

	if volume != nil && *volume == level {
		return true
	}

	if !increments {
		value, err := s.Send(command.New(command.Volume, strconv.Itoa(level)))
		if err == nil && value == strconv.Itoa(level) {
			s.logger.Debug("set volume without increments")
			s.mu.Lock()
			s.state.Volume = intPtr(level)
			s.mu.Unlock()
			return true
		}
		var unsupportedErr *protocol.UnsupportedItemError
		if errors.As(err, &unsupportedErr) {
			s.logger.Debug("volume needs increments")
			s.mu.Lock()
			s.useVolumeIncrements = true
			s.mu.Unlock()
		}
	}

	for {
		s.mu.Lock()
		volume = s.state.Volume
		s.mu.Unlock()
		if volume == nil {
			return false
		}

		switch {
		case *volume == level:
			return true
		case *volume < level:
			if !s.VolumeUp() {
				return false
			}
		default:
			if !s.VolumeDown() {
				return false
			}
		}
	}
}

// SelectVideoSource switches to the given video source. The source
// must be listed in the model's capability table.
func (s *Session) SelectVideoSource(source string) bool {
	source = strings.ToLower(source)

	s.mu.Lock()
	model := s.model
	s.mu.Unlock()
	if model == nil {
		return false
	}
	supported := false
	for _, candidate := range model.VideoSources {
		if candidate == source {
			supported = true
			break
		}
	}
	if !supported {
		return false
	}

	if value, ok := s.SendCommandAction(command.Source, source); ok && value == source {
		s.mu.Lock()
		s.state.VideoSource = source
		s.mu.Unlock()
		return true
	}
	return false
}
