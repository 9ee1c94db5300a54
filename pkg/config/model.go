package config

import (
	"strings"
	"time"
)

// Model is a resolved capability table for a projector model.
type Model struct {
	// Name is the table name the model resolved to, e.g. "w1110" or
	// "all" when no model-specific table exists.
	Name string

	// Commands lists the lowercase command names the model supports.
	Commands []string

	VideoSources       []string
	AudioSources       []string
	PictureModes       []string
	ColorTemperatures  []string
	AspectRatios       []string
	ProjectorPositions []string
	LampModes          []string
	ThreeDModes        []string
	MenuPositions      []string

	// PowerOnTime is how long the model needs to warm up before it
	// accepts commands again after power on.
	PowerOnTime time.Duration

	// PowerOffTime is how long the model needs to cool down after
	// power off.
	PowerOffTime time.Duration
}

// SupportsCommand reports whether the model's table lists the command.
func (m *Model) SupportsCommand(name string) bool {
	name = strings.ToLower(name)
	for _, c := range m.Commands {
		if c == name {
			return true
		}
	}
	return false
}

// Modes returns the candidate values for a mode category command, or
// nil when the command has no mode category.
func (m *Model) Modes(command string) []string {
	switch strings.ToLower(command) {
	case "sour":
		return m.VideoSources
	case "audiosour":
		return m.AudioSources
	case "appmod":
		return m.PictureModes
	case "ct":
		return m.ColorTemperatures
	case "asp":
		return m.AspectRatios
	case "pp":
		return m.ProjectorPositions
	case "lampm":
		return m.LampModes
	case "3d":
		return m.ThreeDModes
	case "menuposition":
		return m.MenuPositions
	}
	return nil
}

// table is the on-disk YAML shape of a capability table. Absent keys
// stay nil so merging can tell "not specified" from "specified empty".
type table struct {
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
	PowerOnTime        *int     `yaml:"poweron_time"`
	PowerOffTime       *int     `yaml:"poweroff_time"`
}

// resolve merges the model table over the generic table key by key
// and produces the public Model.
func resolve(name string, model, generic *table) *Model {
	pick := func(m, g []string) []string {
		if m != nil {
			return m
		}
		return g
	}
	seconds := func(m, g *int) time.Duration {
		if m != nil {
			return time.Duration(*m) * time.Second
		}
		if g != nil {
			return time.Duration(*g) * time.Second
		}
		return 0
	}

	return &Model{
		Name:               name,
		Commands:           pick(model.Commands, generic.Commands),
		VideoSources:       pick(model.VideoSources, generic.VideoSources),
		AudioSources:       pick(model.AudioSources, generic.AudioSources),
		PictureModes:       pick(model.PictureModes, generic.PictureModes),
		ColorTemperatures:  pick(model.ColorTemperatures, generic.ColorTemperatures),
		AspectRatios:       pick(model.AspectRatios, generic.AspectRatios),
		ProjectorPositions: pick(model.ProjectorPositions, generic.ProjectorPositions),
		LampModes:          pick(model.LampModes, generic.LampModes),
		ThreeDModes:        pick(model.ThreeDModes, generic.ThreeDModes),
		MenuPositions:      pick(model.MenuPositions, generic.MenuPositions),
		PowerOnTime:        seconds(model.PowerOnTime, generic.PowerOnTime),
		PowerOffTime:       seconds(model.PowerOffTime, generic.PowerOffTime),
	}
}
