package projector

// State is a snapshot of the device state known to a session.
//
// String fields are empty and pointer fields nil when the value has
// not been read yet or is not available in the current power state.
type State struct {
	Power PowerStatus

	// Model is the reported model name, e.g. "W1110".
	Model string

	// UniqueID identifies the projector: the MAC address when the
	// model reports one, the connection address otherwise.
	UniqueID string

	VideoSource string
	Muted       *bool
	Volume      *int

	DirectPowerOn    *bool
	LampTime         *int
	Lamp2Time        *int
	LampMode         string
	Position         string
	ThreeDMode       string
	PictureMode      string
	AspectRatio      string
	BrilliantColor   *bool
	Blank            *bool
	Brightness       *int
	ColorValue       *int
	Contrast         *int
	ColorTemperature string
	HighAltitude     *bool
	QuickAutoSearch  *bool
	Sharpness        string
}

func boolPtr(v bool) *bool { return &v }
func intPtr(v int) *int    { return &v }

func cloneBool(p *bool) *bool {
	if p == nil {
		return nil
	}
	return boolPtr(*p)
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	return intPtr(*p)
}

// clone returns a copy that shares no pointers with the original.
func (s State) clone() State {
	c := s
	c.Muted = cloneBool(s.Muted)
	c.Volume = cloneInt(s.Volume)
	c.DirectPowerOn = cloneBool(s.DirectPowerOn)
	c.LampTime = cloneInt(s.LampTime)
	c.Lamp2Time = cloneInt(s.Lamp2Time)
	c.BrilliantColor = cloneBool(s.BrilliantColor)
	c.Blank = cloneBool(s.Blank)
	c.Brightness = cloneInt(s.Brightness)
	c.ColorValue = cloneInt(s.ColorValue)
	c.Contrast = cloneInt(s.Contrast)
	c.HighAltitude = cloneBool(s.HighAltitude)
	c.QuickAutoSearch = cloneBool(s.QuickAutoSearch)
	return c
}

// clearOnStates clears the state values that are only meaningful
// while the projector is powered on.
func (s *State) clearOnStates() {
	s.ThreeDMode = ""
	s.PictureMode = ""
	s.AspectRatio = ""
	s.BrilliantColor = nil
	s.Blank = nil
	s.Brightness = nil
	s.ColorValue = nil
	s.Contrast = nil
	s.ColorTemperature = ""
	s.HighAltitude = nil
	s.LampMode = ""
	s.QuickAutoSearch = nil
	s.Sharpness = ""
	s.VideoSource = ""
	s.Muted = nil
	s.Volume = nil
}
