// Command benqctl controls BenQ projectors over RS-232 or the network.
//
// Usage:
//
//	benqctl [flags] <action>
//
// Actions:
//
//	status   Read and print the full projector state
//	on       Turn the projector on
//	off      Turn the projector off
//	monitor  Poll the projector and print state changes
//	examine  Probe the projector's capabilities and print them as YAML
//	shell    Interactive shell sending raw command frames
//
// Flags:
//
//	-serial string      Serial device, e.g. /dev/ttyUSB0
//	-baud int           Serial baud rate (default 115200)
//	-host string        Projector or bridge host
//	-port int           TCP port (default 8000)
//	-model string       Model hint used until the projector reports its model
//	-interval duration  Poll interval for monitor (default 5s)
//	-record string      Write a wire trace to this file
//	-log-level string   Log level: debug, info, warn, error (default "info")
//
// Examples:
//
//	# Print the status of a projector on a serial port
//	benqctl -serial /dev/ttyUSB0 -baud 115200 status
//
//	# Watch a networked projector for state changes
//	benqctl -host beamer.local -port 8000 monitor
//
//	# Probe capabilities, recording the raw traffic
//	benqctl -host 10.0.0.17 -record probe.trace examine
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/chzyer/readline"
	"gopkg.in/yaml.v3"

	"github.com/projector-protocol/benq-go/pkg/examine"
	"github.com/projector-protocol/benq-go/pkg/projector"
	"github.com/projector-protocol/benq-go/pkg/trace"
	"github.com/projector-protocol/benq-go/pkg/transport"
)

type options struct {
	serialDevice string
	baudRate     int
	host         string
	port         int
	modelHint    string
	interval     time.Duration
	recordFile   string
	logLevel     string
}

func main() {
	var opts options
	flag.StringVar(&opts.serialDevice, "serial", "", "Serial device, e.g. /dev/ttyUSB0")
	flag.IntVar(&opts.baudRate, "baud", 115200, "Serial baud rate")
	flag.StringVar(&opts.host, "host", "", "Projector or bridge host")
	flag.IntVar(&opts.port, "port", transport.DefaultTelnetPort, "TCP port")
	flag.StringVar(&opts.modelHint, "model", "", "Model hint used until the projector reports its model")
	flag.DurationVar(&opts.interval, "interval", 5*time.Second, "Poll interval for monitor")
	flag.StringVar(&opts.recordFile, "record", "", "Write a wire trace to this file")
	flag.StringVar(&opts.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flag.Parse()

	action := flag.Arg(0)
	if action == "" {
		fmt.Fprintln(os.Stderr, "usage: benqctl [flags] status|on|off|monitor|examine|shell")
		flag.PrintDefaults()
		os.Exit(2)
	}

	logger := newLogger(opts.logLevel)
	slog.SetDefault(logger)

	if err := run(action, opts, logger); err != nil {
		logger.Error("benqctl failed", "error", err)
		os.Exit(1)
	}
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}

func run(action string, opts options, logger *slog.Logger) error {
	cfg := projector.Config{
		ModelHint: opts.modelHint,
		Logger:    logger,
	}
	if action == "monitor" {
		cfg.Interval = opts.interval
	}

	if opts.recordFile != "" {
		recorder, err := trace.NewFileLogger(opts.recordFile)
		if err != nil {
			return fmt.Errorf("opening trace file: %w", err)
		}
		defer recorder.Close()
		cfg.Trace = recorder
	}

	session, err := newSession(opts, cfg)
	if err != nil {
		return err
	}

	if err := session.Connect(); err != nil {
		return fmt.Errorf("connecting to projector: %w", err)
	}
	defer func() {
		logger.Info("disconnecting from projector")
		session.Disconnect()
	}()

	switch action {
	case "status":
		return runStatus(session)
	case "on":
		if !session.TurnOn() {
			return fmt.Errorf("failed to turn on projector")
		}
		return nil
	case "off":
		if !session.TurnOff() {
			return fmt.Errorf("failed to turn off projector")
		}
		return nil
	case "monitor":
		return runMonitor(session, logger)
	case "examine":
		return runExamine(session, logger)
	case "shell":
		return runShell(session)
	}
	return fmt.Errorf("unknown action %q", action)
}

func newSession(opts options, cfg projector.Config) (*projector.Session, error) {
	switch {
	case opts.serialDevice != "":
		return projector.NewSerial(opts.serialDevice, opts.baudRate, cfg)
	case opts.host != "":
		return projector.NewTelnet(opts.host, opts.port, cfg), nil
	}
	return nil, fmt.Errorf("either -serial or -host is required")
}

func runStatus(session *projector.Session) error {
	session.Update()
	state := session.Snapshot()

	fmt.Printf("Model:             %s\n", state.Model)
	fmt.Printf("Unique ID:         %s\n", state.UniqueID)
	fmt.Printf("Power:             %s\n", state.Power)
	fmt.Printf("Position:          %s\n", state.Position)
	printBool("Direct power on", state.DirectPowerOn)
	printInt("Lamp time (h)", state.LampTime)
	printInt("Lamp 2 time (h)", state.Lamp2Time)

	if state.Power == projector.PowerOn {
		fmt.Printf("Video source:      %s\n", state.VideoSource)
		printBool("Muted", state.Muted)
		printInt("Volume", state.Volume)
		fmt.Printf("3D mode:           %s\n", state.ThreeDMode)
		fmt.Printf("Picture mode:      %s\n", state.PictureMode)
		fmt.Printf("Aspect ratio:      %s\n", state.AspectRatio)
		printBool("Brilliant color", state.BrilliantColor)
		printBool("Blank", state.Blank)
		printInt("Brightness", state.Brightness)
		printInt("Color", state.ColorValue)
		printInt("Contrast", state.Contrast)
		fmt.Printf("Color temperature: %s\n", state.ColorTemperature)
		printBool("High altitude", state.HighAltitude)
		fmt.Printf("Lamp mode:         %s\n", state.LampMode)
		printBool("Quick auto search", state.QuickAutoSearch)
		fmt.Printf("Sharpness:         %s\n", state.Sharpness)
	}

	if model := session.Model(); model != nil {
		fmt.Printf("Supported video sources: %s\n", strings.Join(model.VideoSources, " "))
	}
	return nil
}

func printBool(label string, value *bool) {
	if value == nil {
		return
	}
	fmt.Printf("%-18s %t\n", label+":", *value)
}

func printInt(label string, value *int) {
	if value == nil {
		return
	}
	fmt.Printf("%-18s %d\n", label+":", *value)
}

func runMonitor(session *projector.Session, logger *slog.Logger) error {
	session.AddListener(func(command string, value any) {
		logger.Info("state changed", "command", command, "value", value)
	})

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	return nil
}

func runExamine(session *projector.Session, logger *slog.Logger) error {
	logger.Info("examining projector, this takes several minutes", "model", session.ModelName())

	examiner, err := examine.New(session, examine.Config{Logger: logger})
	if err != nil {
		return err
	}

	capabilities, err := examiner.DetectProjectorFeatures()
	if err != nil {
		return err
	}

	out, err := yaml.Marshal(capabilities)
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func runShell(session *projector.Session) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		HistoryFile:     os.ExpandEnv("$HOME/.benqctl_history"),
		InterruptPrompt: "^C",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	fmt.Println(`Enter command frames like "*pow=?#", or "exit" to leave.`)
	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF or readline.ErrInterrupt
			return nil
		}
		line = strings.TrimSpace(line)
		switch line {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		response, err := session.SendRawCommand(line)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			continue
		}
		fmt.Println(response)
	}
}
