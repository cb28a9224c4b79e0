package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/helixml/scanout/api/pkg/config"
)

type rootOptions struct {
	logLevel   string
	configFile string
	cfg        config.PresenterConfig
}

func main() {
	_ = godotenv.Load()

	rootCmd := newRootCmd()
	rootCmd.SetContext(context.Background())
	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("Failed to execute command")
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "drm-presenter",
		Short: "Scan out frames on a DRM/KMS display",
		Long: `drm-presenter drives one display through kernel modesetting. It picks a
connector, CRTC, primary plane and mode, then presents frames from a test-pattern
producer with atomic or legacy page flips.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error) (env: LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "YAML file with drm and producer sections")
	rootCmd.PersistentFlags().String("device", "", "DRM card node (env: DRM_DEVICE)")
	rootCmd.PersistentFlags().String("lease-socket", "", "Request a DRM lease from this socket instead of opening the device (env: DRM_LEASE_SOCKET)")
	rootCmd.PersistentFlags().Bool("disable-atomic", false, "Use legacy modesetting even if atomic is available (env: DRM_DISABLE_ATOMIC_MODESETTING)")
	rootCmd.PersistentFlags().String("video-mode", "", "Only use modes with this name, e.g. 1280x720 (env: DRM_VIDEO_MODE)")
	rootCmd.PersistentFlags().String("mode-max", "", "Largest mode to pick, WxH (env: DRM_MODE_MAX)")

	rootCmd.AddCommand(newProbeCmd(opts))
	rootCmd.AddCommand(newRunCmd(opts))
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

// load reads the environment, then the config file, then explicitly set flags.
func (o *rootOptions) load(cmd *cobra.Command) error {
	cfg, err := config.LoadPresenterConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if o.configFile != "" {
		if err := cfg.LoadFile(o.configFile); err != nil {
			return err
		}
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}

	flags := cmd.Flags()
	if flags.Changed("device") {
		cfg.DRM.Device, _ = flags.GetString("device")
	}
	if flags.Changed("lease-socket") {
		cfg.DRM.LeaseSocket, _ = flags.GetString("lease-socket")
	}
	if flags.Changed("disable-atomic") {
		cfg.DRM.DisableAtomicModesetting, _ = flags.GetBool("disable-atomic")
	}
	if flags.Changed("video-mode") {
		cfg.DRM.VideoMode, _ = flags.GetString("video-mode")
	}
	if flags.Changed("mode-max") {
		cfg.DRM.ModeMax, _ = flags.GetString("mode-max")
	}
	if flags.Lookup("renderer") != nil && flags.Changed("renderer") {
		cfg.DRM.Renderer, _ = flags.GetString("renderer")
	}
	if flags.Lookup("rotation") != nil && flags.Changed("rotation") {
		cfg.DRM.Rotation, _ = flags.GetInt("rotation")
	}
	if flags.Lookup("producer") != nil && flags.Changed("producer") {
		cfg.Producer.Kind, _ = flags.GetString("producer")
	}
	if flags.Lookup("frames") != nil && flags.Changed("frames") {
		cfg.Producer.Frames, _ = flags.GetInt("frames")
	}

	setupLogging(cfg.LogLevel, os.Stderr)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	o.cfg = cfg
	return nil
}

func setupLogging(level string, out *os.File) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	// Pretty output on a terminal, JSON otherwise
	if term.IsTerminal(int(out.Fd())) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339})
	} else {
		log.Logger = zerolog.New(out).With().Timestamp().Logger()
	}
}
