package projector

import (
	"strconv"
	"time"

	"github.com/projector-protocol/benq-go/pkg/command"
)

// UpdatePower refreshes the power state and reports whether it is
// known. A missing response during a power transition is expected
// (many models stop answering while warming up or cooling down) and
// keeps the transitional state; outside a transition it degrades the
// state to PowerUnknown.
func (s *Session) UpdatePower() bool {
	response, ok := s.SendCommand(command.Power)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !ok {
		switch s.state.Power {
		case PoweringOn:
			s.logger.Debug("projector still powering on")
			return true
		case PoweringOff:
			s.logger.Debug("projector still powering off")
			return true
		}
		s.state.Power = PowerUnknown
		return false
	}

	onTime, offTime := s.settleTimes()

	switch response {
	case "off":
		if s.state.Power == PoweringOff && s.now().Sub(s.powerTimestamp) <= offTime {
			s.logger.Debug("projector still powering off")
		} else {
			s.state.Power = PowerOff
			s.powerTimestamp = time.Time{}
		}
		return true
	case "on":
		if s.state.Power == PoweringOn && s.now().Sub(s.powerTimestamp) <= onTime {
			s.logger.Debug("projector still powering on")
		} else {
			s.state.Power = PowerOn
			s.powerTimestamp = time.Time{}
		}
		return true
	}

	s.logger.Error("unknown power status", "response", response)
	return false
}

// UpdateVolume refreshes the mute and volume state.
func (s *Session) UpdateVolume() {
	if muted, ok := s.SendCommand(command.Mute); ok {
		s.mu.Lock()
		s.state.Muted = boolPtr(muted == "on")
		s.mu.Unlock()
	}

	if value, ok := s.SendCommand(command.Volume); ok {
		volume, err := strconv.Atoi(value)
		s.mu.Lock()
		if err == nil {
			s.state.Volume = intPtr(volume)
		} else {
			s.state.Volume = nil
		}
		s.mu.Unlock()
	}
}

// UpdateVideoSource refreshes the active video source.
func (s *Session) UpdateVideoSource() {
	if source, ok := s.SendCommand(command.Source); ok {
		s.mu.Lock()
		s.state.VideoSource = source
		s.mu.Unlock()
	}
}

// Update refreshes all known device state. This sends one exchange
// per supported command and takes several seconds.
func (s *Session) Update() bool {
	if !s.UpdatePower() {
		return false
	}

	if value, ok := s.SendCommand("directpower"); ok {
		s.setBool(&s.state.DirectPowerOn, value == "on")
	}
	if value, ok := s.SendCommand("ltim"); ok {
		s.setInt(&s.state.LampTime, value)
	}
	if value, ok := s.SendCommand("ltim2"); ok {
		s.setInt(&s.state.Lamp2Time, value)
	}

	power := s.PowerStatus()

	// The position query only works in a stable power state, not
	// during transitions.
	if power == PowerOff || power == PowerOn {
		if position, ok := s.SendCommand("pp"); ok {
			s.mu.Lock()
			s.state.Position = position
			s.mu.Unlock()
		}
	}

	switch power {
	case PoweringOff, PowerOff:
		s.mu.Lock()
		s.state.clearOnStates()
		s.mu.Unlock()
	case PoweringOn, PowerOn:
		if value, ok := s.SendCommand("3d"); ok {
			s.setString(&s.state.ThreeDMode, value)
		}
		if value, ok := s.SendCommand("appmod"); ok {
			s.setString(&s.state.PictureMode, value)
		}
		if value, ok := s.SendCommand("asp"); ok {
			s.setString(&s.state.AspectRatio, value)
		}
		if value, ok := s.SendCommand("bc"); ok {
			s.setBool(&s.state.BrilliantColor, value == "on")
		}
		if value, ok := s.SendCommand("blank"); ok {
			s.setBool(&s.state.Blank, value == "on")
		}
		if value, ok := s.SendCommand("bri"); ok {
			s.setInt(&s.state.Brightness, value)
		}
		if value, ok := s.SendCommand("color"); ok {
			s.setInt(&s.state.ColorValue, value)
		}
		if value, ok := s.SendCommand("con"); ok {
			s.setInt(&s.state.Contrast, value)
		}
		if value, ok := s.SendCommand("ct"); ok {
			s.setString(&s.state.ColorTemperature, value)
		}
		if value, ok := s.SendCommand("highaltitude"); ok {
			s.setBool(&s.state.HighAltitude, value == "on")
		}
		if value, ok := s.SendCommand("lampm"); ok {
			s.setString(&s.state.LampMode, value)
		}
		if value, ok := s.SendCommand("qas"); ok {
			s.setBool(&s.state.QuickAutoSearch, value == "on")
		}
		if value, ok := s.SendCommand("sharp"); ok {
			s.setString(&s.state.Sharpness, value)
		}

		s.UpdateVideoSource()
		s.UpdateVolume()
	}

	return true
}

func (s *Session) setBool(field **bool, value bool) {
	s.mu.Lock()
	*field = boolPtr(value)
	s.mu.Unlock()
}

func (s *Session) setInt(field **int, value string) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return
	}
	s.mu.Lock()
	*field = intPtr(n)
	s.mu.Unlock()
}

func (s *Session) setString(field *string, value string) {
	s.mu.Lock()
	*field = value
	s.mu.Unlock()
}
