package protocol

import (
	"regexp"
	"strings"

	"github.com/projector-protocol/benq-go/pkg/command"
)

// Response parsing tiers. Firmware varies in framing strictness, so a
// failed strict match falls back to a loose match, and commands
// without an action use a state-only match.
var (
	responseStrict    = regexp.MustCompile(`^\*([^=]*)=([^#]*)#$`)
	responseLoose     = regexp.MustCompile(`^\*?([^=]*)=([^#]*)#?$`)
	responseStateOnly = regexp.MustCompile(`^\*?()([^#]*?)#?$`)
)

// responseWhitespace is what gets trimmed from response units and
// values: standard whitespace plus NUL, which some firmware pads with.
const responseWhitespace = " \t\n\v\f\r\x00"

// trimResponse trims protocol whitespace from both ends of s.
func trimResponse(s string) string {
	return strings.Trim(s, responseWhitespace)
}

// Parse validates a raw response unit for cmd and extracts its value.
//
// Device error strings are classified first and take priority over
// structural parsing: "illegal format", "unsupported item" and
// "block item" (with or without *...# framing, any case) return their
// typed errors.
//
// Structural parsing is tiered: commands without an action match
// state-only; others try strict then loose. A captured name that
// differs from the issued command fails as cross-talk, except that an
// unmatched model-name query retries state-only (some firmware
// returns the bare model string with no framing).
//
// The extracted value is trimmed of protocol whitespace and, unless
// preserveCase is set, lowercased.
func (e *Engine) Parse(cmd command.Command, response string, preserveCase bool) (string, error) {
	switch strings.ToLower(response) {
	case "*illegal format#", "illegal format":
		e.logger.Error("command illegal format", "frame", cmd.Frame())
		return "", &IllegalFormatError{Command: cmd}
	case "*unsupported item#", "unsupported item":
		e.logger.Warn("command unsupported item", "frame", cmd.Frame())
		return "", &UnsupportedItemError{Command: cmd}
	case "*block item#", "block item":
		e.logger.Warn("command blocked item", "frame", cmd.Frame())
		return "", &BlockedItemError{Command: cmd}
	}

	var matches []string
	if _, hasAction := cmd.Action(); !hasAction {
		matches = responseStateOnly.FindStringSubmatch(response)
	} else {
		matches = responseStrict.FindStringSubmatch(response)
		if matches == nil {
			e.logger.Warn("response does not match strict validation", "response", response)
			matches = responseLoose.FindStringSubmatch(response)
		}

		if matches != nil && !strings.EqualFold(matches[1], cmd.Name()) {
			return "", &InvalidResponseError{Command: cmd, Raw: response}
		}
		if matches == nil && cmd.Name() == command.ModelName {
			// Some projectors return only the model name without the
			// modelname framing: W700 instead of *modelname=W700#.
			matches = responseStateOnly.FindStringSubmatch(response)
		}
	}

	if matches == nil {
		e.logger.Error("unexpected response format", "response", response)
		return "", &InvalidResponseError{Command: cmd, Raw: response}
	}

	value := trimResponse(matches[2])
	if !preserveCase {
		value = strings.ToLower(value)
	}

	e.logger.Debug("processed response", "value", value)
	return value, nil
}
