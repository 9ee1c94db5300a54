// Package command defines the value types for BenQ projector commands.
//
// A projector command is a (name, action) pair encoded on the wire as
// an ASCII frame:
//
//	*<name>=<action>#    action present (query "?" or a value)
//	*<name>#             stateless trigger, no action
//
// Command values are immutable once constructed. The name is
// case-normalized to lowercase at construction time.
//
// Raw commands carry a pre-framed string verbatim (used for menu
// navigation keys and protocol experiments) and have no structured
// name or action.
package command
