package projector

// PowerStatus is the session's view of the projector power state.
//
// The projector itself only ever reports "on" or "off"; PoweringOn
// and PoweringOff are derived by holding the last commanded
// transition until the model's settle time has passed.
type PowerStatus int

const (
	// PowerUnknown means the power state has not been determined yet
	// or the projector stopped answering outside a transition.
	PowerUnknown PowerStatus = iota

	// PowerOff means the projector reports off and no power-off
	// transition is pending.
	PowerOff

	// PoweringOn means a power-on was issued and the warm-up settle
	// time has not passed yet.
	PoweringOn

	// PowerOn means the projector reports on and no power-on
	// transition is pending.
	PowerOn

	// PoweringOff means a power-off was issued and the cool-down
	// settle time has not passed yet.
	PoweringOff
)

// String returns a human readable power status name.
func (p PowerStatus) String() string {
	switch p {
	case PowerOff:
		return "off"
	case PoweringOn:
		return "powering on"
	case PowerOn:
		return "on"
	case PoweringOff:
		return "powering off"
	default:
		return "unknown"
	}
}
