package examine

import (
	"errors"
	"log/slog"
	"time"

	"github.com/projector-protocol/benq-go/pkg/command"
	"github.com/projector-protocol/benq-go/pkg/config"
	"github.com/projector-protocol/benq-go/pkg/projector"
	"github.com/projector-protocol/benq-go/pkg/protocol"
)

// Result markers for candidates that answered, but not cleanly.
const (
	// BlockedMarker tags a command or mode the projector knows but
	// refuses in its current state.
	BlockedMarker = "?"

	// SlowMarker tags a command or mode that repeatedly timed out
	// but is assumed supported.
	SlowMarker = "¿"
)

// Probe pacing defaults.
const (
	// DefaultCommandSettle is the pause after each probe.
	DefaultCommandSettle = 200 * time.Millisecond

	// DefaultCategorySettle is the pause between probe categories in
	// a full sweep.
	DefaultCategorySettle = 2 * time.Second
)

// timeoutRetries is how often a probe is retried on a response
// timeout before the candidate is recorded as supported-but-slow.
const timeoutRetries = 2

// ErrPoweredOff is returned by DetectProjectorFeatures when the
// projector is off; most categories only answer while on.
var ErrPoweredOff = errors.New("projector must be powered on to examine its features")

// Navigation commands with no queryable state. Probing them would
// press buttons on the projector.
var ignoreCommands = []string{
	"menu", "up", "down", "left", "right", "enter", "back",
	"zoomi", "zoomo", "auto", "focus", "error",
}

// Controller is the projector session surface the examiner drives.
// *projector.Session implements it.
type Controller interface {
	// Send performs a strict exchange, so probe failures keep their
	// type.
	Send(cmd command.Command) (string, error)

	// SendCommand and SendCommandAction are the lenient exchange
	// used to read and restore the current mode values.
	SendCommand(name string) (string, bool)
	SendCommandAction(name, action string) (string, bool)

	SupportsCommand(name string) bool
	PowerStatus() projector.PowerStatus
}

var _ Controller = (*projector.Session)(nil)

// CapabilitySet is the outcome of a full probe sweep. Entries may
// carry a BlockedMarker or SlowMarker suffix.
type CapabilitySet struct {
	Commands           []string `yaml:"commands"`
	VideoSources       []string `yaml:"video_sources"`
	AudioSources       []string `yaml:"audio_sources"`
	PictureModes       []string `yaml:"picture_modes"`
	ColorTemperatures  []string `yaml:"color_temperatures"`
	AspectRatios       []string `yaml:"aspect_ratios"`
	ProjectorPositions []string `yaml:"projector_positions"`
	LampModes          []string `yaml:"lamp_modes"`
	ThreeDModes        []string `yaml:"3d_modes"`
	MenuPositions      []string `yaml:"menu_positions"`
}

// Config configures an Examiner.
type Config struct {
	// Candidates is the capability table probed against. Defaults to
	// the generic union table.
	Candidates *config.Model

	// CommandSettle is the pause after each probe.
	CommandSettle time.Duration

	// CategorySettle is the pause between categories in a full sweep.
	CategorySettle time.Duration

	// Logger receives probe progress. Defaults to slog.Default().
	Logger *slog.Logger
}

// Examiner probes a projector session for its capabilities.
type Examiner struct {
	session        Controller
	candidates     *config.Model
	logger         *slog.Logger
	commandSettle  time.Duration
	categorySettle time.Duration
}

// New creates an examiner for the given session.
func New(session Controller, cfg Config) (*Examiner, error) {
	candidates := cfg.Candidates
	if candidates == nil {
		var err error
		candidates, err = config.Generic()
		if err != nil {
			return nil, err
		}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.CommandSettle == 0 {
		cfg.CommandSettle = DefaultCommandSettle
	}
	if cfg.CategorySettle == 0 {
		cfg.CategorySettle = DefaultCategorySettle
	}

	return &Examiner{
		session:        session,
		candidates:     candidates,
		logger:         logger,
		commandSettle:  cfg.CommandSettle,
		categorySettle: cfg.CategorySettle,
	}, nil
}

// probe tries a single candidate and classifies the outcome:
// a clean answer or a blocked item confirms support, a timeout is
// retried before the candidate counts as supported-but-slow, any
// other failure leaves the candidate unconfirmed.
func (e *Examiner) probe(cmd command.Command, name string) (string, bool) {
	retries := 0
	for {
		_, err := e.session.Send(cmd)
		if err == nil {
			return name, true
		}

		var blockedErr *protocol.BlockedItemError
		var timeoutErr *protocol.ResponseTimeoutError
		switch {
		case errors.As(err, &blockedErr):
			return name + BlockedMarker, true
		case errors.As(err, &timeoutErr):
			if retries < timeoutRetries {
				retries++
				continue
			}
			return name + SlowMarker, true
		default:
			return "", false
		}
	}
}

// DetectCommands probes which commands the projector supports by
// issuing every candidate as a bare query. Navigation commands are
// skipped.
func (e *Examiner) DetectCommands() []string {
	e.logger.Info("detecting supported commands")

	var supported []string
	for _, name := range e.candidates.Commands {
		if containsString(ignoreCommands, name) {
			continue
		}

		if marked, ok := e.probe(command.Query(name), name); ok {
			supported = append(supported, marked)
			e.logger.Info("command supported", "command", marked)
		}
		time.Sleep(e.commandSettle)
	}
	return supported
}

// detectModes probes which values of a mode category the projector
// accepts. The currently active value is read first and restored
// afterwards; if it cannot be read the category is skipped, since
// some categories are meaningless in the current power state.
func (e *Examiner) detectModes(description, name string, candidates []string) []string {
	if !e.session.SupportsCommand(name) {
		return nil
	}

	e.logger.Info("detecting supported modes", "category", description)

	current, ok := e.session.SendCommand(name)
	if !ok {
		return nil
	}
	e.logger.Info("current mode", "category", description, "value", current)

	var supported []string
	for _, mode := range candidates {
		if marked, ok := e.probe(command.New(name, mode), mode); ok {
			supported = append(supported, marked)
			e.logger.Debug("mode supported", "category", description, "mode", marked)
		}
		time.Sleep(e.commandSettle)
	}

	e.session.SendCommandAction(name, current)

	return supported
}

// DetectVideoSources probes the supported video sources.
func (e *Examiner) DetectVideoSources() []string {
	return e.detectModes("video sources", "sour", e.candidates.VideoSources)
}

// DetectAudioSources probes the supported audio sources.
func (e *Examiner) DetectAudioSources() []string {
	return e.detectModes("audio sources", "audiosour", e.candidates.AudioSources)
}

// DetectPictureModes probes the supported picture modes.
func (e *Examiner) DetectPictureModes() []string {
	return e.detectModes("picture modes", "appmod", e.candidates.PictureModes)
}

// DetectColorTemperatures probes the supported color temperatures.
func (e *Examiner) DetectColorTemperatures() []string {
	return e.detectModes("color temperatures", "ct", e.candidates.ColorTemperatures)
}

// DetectAspectRatios probes the supported aspect ratios.
func (e *Examiner) DetectAspectRatios() []string {
	return e.detectModes("aspect ratios", "asp", e.candidates.AspectRatios)
}

// DetectProjectorPositions probes the supported projector positions.
func (e *Examiner) DetectProjectorPositions() []string {
	return e.detectModes("projector positions", "pp", e.candidates.ProjectorPositions)
}

// DetectLampModes probes the supported lamp modes.
func (e *Examiner) DetectLampModes() []string {
	return e.detectModes("lamp modes", "lampm", e.candidates.LampModes)
}

// Detect3DModes probes the supported 3D modes.
func (e *Examiner) Detect3DModes() []string {
	return e.detectModes("3d modes", "3d", e.candidates.ThreeDModes)
}

// DetectMenuPositions probes the supported menu positions.
func (e *Examiner) DetectMenuPositions() []string {
	return e.detectModes("menu positions", "menuposition", e.candidates.MenuPositions)
}

// DetectProjectorFeatures runs the full probe sweep: commands first,
// then every mode category, pausing between categories. The
// projector must be powered on.
func (e *Examiner) DetectProjectorFeatures() (*CapabilitySet, error) {
	if e.session.PowerStatus() == projector.PowerOff {
		return nil, ErrPoweredOff
	}

	set := &CapabilitySet{}
	set.Commands = e.DetectCommands()
	time.Sleep(e.categorySettle)
	set.VideoSources = e.DetectVideoSources()
	time.Sleep(e.categorySettle)
	set.AudioSources = e.DetectAudioSources()
	time.Sleep(e.categorySettle)
	set.PictureModes = e.DetectPictureModes()
	time.Sleep(e.categorySettle)
	set.ColorTemperatures = e.DetectColorTemperatures()
	time.Sleep(e.categorySettle)
	set.AspectRatios = e.DetectAspectRatios()
	time.Sleep(e.categorySettle)
	set.ProjectorPositions = e.DetectProjectorPositions()
	time.Sleep(e.categorySettle)
	set.LampModes = e.DetectLampModes()
	time.Sleep(e.categorySettle)
	set.ThreeDModes = e.Detect3DModes()
	time.Sleep(e.categorySettle)
	set.MenuPositions = e.DetectMenuPositions()

	return set, nil
}

func containsString(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
