package command

import "strings"

// Well-known command names.
const (
	ModelName = "modelname"
	Power     = "pow"
	Mute      = "mute"
	Volume    = "vol"
	Source    = "sour"
)

// Well-known actions.
const (
	// ActionQuery asks the projector for the current value.
	ActionQuery = "?"

	// ActionOn and ActionOff toggle binary commands such as pow and mute.
	ActionOn  = "on"
	ActionOff = "off"
)

// Command is an immutable projector command.
//
// The zero value is not a valid command; use New, Query, Trigger or Raw.
type Command struct {
	name      string
	action    string
	hasAction bool
	frame     string
}

// New creates a command with the given name and action.
// The name is lowercased; the action is sent verbatim.
func New(name, action string) Command {
	name = strings.ToLower(name)
	return Command{
		name:      name,
		action:    action,
		hasAction: true,
		frame:     "*" + name + "=" + action + "#",
	}
}

// Query creates a query command for the given name (action "?").
func Query(name string) Command {
	return New(name, ActionQuery)
}

// Trigger creates a stateless trigger command with no action,
// encoded as *name#. Used for directional and menu navigation keys.
func Trigger(name string) Command {
	name = strings.ToLower(name)
	return Command{
		name:  name,
		frame: "*" + name + "#",
	}
}

// Raw creates a command that sends the given frame verbatim.
// Raw commands have no structured name or action.
func Raw(frame string) Command {
	return Command{frame: frame}
}

// Name returns the command name, empty for raw commands.
func (c Command) Name() string {
	return c.name
}

// Action returns the command action and whether one is present.
func (c Command) Action() (string, bool) {
	return c.action, c.hasAction
}

// IsQuery reports whether the command is a query.
func (c Command) IsQuery() bool {
	return c.hasAction && c.action == ActionQuery
}

// IsRaw reports whether the command was constructed from a raw frame.
func (c Command) IsRaw() bool {
	return c.name == ""
}

// Frame returns the wire-level encoding of the command, without the
// trailing carriage return.
func (c Command) Frame() string {
	return c.frame
}

// String returns the wire frame for diagnostics.
func (c Command) String() string {
	return c.frame
}
