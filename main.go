package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/olivier-w/vorb/internal/audio"
	"github.com/olivier-w/vorb/internal/config"
	vlog "github.com/olivier-w/vorb/internal/log"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type rootFlags struct {
	configPath string
	input      string
	device     string
	fps        int
	headless   bool
	duration   time.Duration
	logLevel   string
	logFile    string
}

func newRootCmd() *cobra.Command {
	var f rootFlags
	cmd := &cobra.Command{
		Use:   "vorb [file]",
		Short: "An audio-reactive orb in your terminal",
		Long: `vorb renders a glowing orb that reacts to your microphone.

With a file argument the file is replayed silently as the audio source.
Supported formats: ` + audio.SupportedExtsList() + `, and .m3u/.m3u8/.pls
playlists of those.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.resolve(cmd, args)
			if err != nil {
				return err
			}
			if f.headless {
				return runHeadlessCmd(cmd.Context(), cfg, f.duration)
			}
			return runTUI(cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.configPath, "config", "", "config file (default: user config dir/vorb/config.yaml)")
	flags.StringVar(&f.input, "input", "", "audio source: mic, file or none")
	flags.StringVar(&f.device, "device", "", "capture device for the microphone")
	flags.IntVar(&f.fps, "fps", 0, "frames per second (1-120)")
	flags.BoolVar(&f.headless, "headless", false, "run without a display and log state changes")
	flags.DurationVar(&f.duration, "duration", 0, "stop after this long in headless mode (0 runs until interrupted)")
	flags.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.StringVar(&f.logFile, "log-file", "", "write logs to this file")
	return cmd
}

// resolve layers config file, environment, positional file and flags.
func (f rootFlags) resolve(cmd *cobra.Command, args []string) (config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return cfg, err
	}
	cfg.ApplyEnv(os.LookupEnv)

	if len(args) == 1 {
		cfg.Input.Source = config.SourceFile
		cfg.Input.File = args[0]
	}
	changed := cmd.Flags().Changed
	if changed("input") {
		cfg.Input.Source = f.input
	}
	if changed("device") {
		cfg.Input.Device = f.device
	}
	if changed("fps") {
		cfg.Render.FPS = f.fps
	}
	if changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if changed("log-file") {
		cfg.Log.File = f.logFile
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	if cfg.Input.Source == config.SourceFile {
		if _, err := os.Stat(cfg.Input.File); err != nil {
			return cfg, fmt.Errorf("file not found: %s", cfg.Input.File)
		}
	}
	return cfg, nil
}

// openLogOutput returns the log destination and a closer for it.
func openLogOutput(path string, fallback io.Writer) (io.Writer, func(), error) {
	if path == "" {
		return fallback, func() {}, nil
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return file, func() { file.Close() }, nil
}

func runHeadlessCmd(ctx context.Context, cfg config.Config, duration time.Duration) error {
	w, closeLog, err := openLogOutput(cfg.Log.File, os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()
	logger := vlog.Init(cfg.Log.Level, w)

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return runHeadless(ctx, cfg, logger, duration)
}

func runTUI(cfg config.Config) error {
	// the screen belongs to the orb, so logs only go to an explicit file
	w, closeLog, err := openLogOutput(cfg.Log.File, nil)
	if err != nil {
		return err
	}
	defer closeLog()
	logger := vlog.Init(cfg.Log.Level, w)

	s, err := newSession(cfg, logger)
	if err != nil {
		return err
	}
	defer s.driver.Dispose()

	prompt := cfg.Input.Source == config.SourceMic
	p := tea.NewProgram(newStartupModel(s, prompt), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
