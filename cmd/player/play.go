package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/benbjohnson/clock"
	"github.com/faiface/beep"
	"github.com/jscyril/crossfade_player/api"
	"github.com/jscyril/crossfade_player/internal/audio"
	"github.com/jscyril/crossfade_player/internal/catalog"
	"github.com/jscyril/crossfade_player/internal/config"
	"github.com/jscyril/crossfade_player/internal/crossfade"
	"github.com/jscyril/crossfade_player/internal/logger"
	"github.com/jscyril/crossfade_player/internal/ui"
	playerrors "github.com/jscyril/crossfade_player/pkg/errors"
	"github.com/jscyril/crossfade_player/pkg/events"
	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play the catalog queue with crossfades",
	RunE:  runPlay,
}

func init() {
	addPlayFlags(playCmd)
	rootCmd.AddCommand(playCmd)
}

func addPlayFlags(cmd *cobra.Command) {
	cmd.Flags().String("backend", config.BackendGraph, "playback backend (graph, media)")
	cmd.Flags().Int("fade", 5, "crossfade length in seconds")
	cmd.Flags().String("catalog", "", "catalog file (.json, .yaml)")
	cmd.Flags().String("tracks", "", "directory holding the track files")
	cmd.Flags().Bool("stream", false, "decode from disk while playing instead of buffering")
	cmd.Flags().Bool("no-ui", false, "play without the terminal UI")
}

// applyFlags overrides config values with the flags the user set
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("backend") {
		cfg.Backend, _ = flags.GetString("backend")
	}
	if flags.Changed("fade") {
		cfg.FadeSeconds, _ = flags.GetInt("fade")
	}
	if flags.Changed("catalog") {
		cfg.CatalogPath, _ = flags.GetString("catalog")
	}
	if flags.Changed("tracks") {
		cfg.TracksDir, _ = flags.GetString("tracks")
	}
	if noUI, _ := flags.GetBool("no-ui"); noUI {
		cfg.EnableTUI = false
	}
}

// runPlay loads the queue and runs a session until it ends or the user quits
func runPlay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	log, closeLog, err := setupLogging(cfg)
	if err != nil {
		return err
	}
	defer closeLog()
	cli := logger.WithComponent("cli")

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return playerrors.NewConfigurationError("catalog_path", err)
	}
	tracks := cat.Prefix(cfg.QueueLength)
	cli.Info("catalog loaded", "path", cfg.CatalogPath, "tracks", cat.Len(), "queue", len(tracks))

	mode := audio.Buffered
	if stream, _ := cmd.Flags().GetBool("stream"); stream {
		mode = audio.Streamed
	}

	bus := events.NewEventBus()
	defer bus.Close()

	scheduler := crossfade.NewScheduler(
		newBackend(cfg, log),
		audio.NewResolver(cfg.TracksDir, mode, cfg.LoadWorkers, log),
		crossfade.Options{
			PollInterval: cfg.PollInterval(),
			RampTick:     cfg.RampTick(),
			Session:      cfg.Session,
			Bus:          bus,
			Logger:       log,
		},
	)
	defer func() {
		if err := scheduler.Close(); err != nil {
			cli.Warn("close backend", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.EnableTUI {
		// Scheduler events drive the UI status line
		if err := ui.Run(scheduler, tracks, cfg.FadeSeconds, bus.Subscribe()); err != nil {
			return fmt.Errorf("run ui: %w", err)
		}
		return nil
	}

	go printEvents(cmd.OutOrStdout(), bus.Subscribe())
	if err := scheduler.Start(ctx, tracks, cfg.FadeDuration()); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		fmt.Fprintln(cmd.OutOrStdout(), "\nShutting down...")
		scheduler.Stop()
	case <-scheduler.Done():
	}
	return scheduler.Err()
}

func newBackend(cfg *config.Config, log *slog.Logger) crossfade.Backend {
	rate := beep.SampleRate(cfg.SampleRate)
	out := audio.NewSpeakerOutput()
	if cfg.Backend == config.BackendMedia {
		return audio.NewMediaBackend(out, rate, cfg.BufferDuration(), clock.New(), cfg.Automation, log)
	}
	return audio.NewGraphBackend(out, rate, cfg.BufferDuration(), log)
}

// setupLogging sends logs to stderr, or to the configured file while the
// terminal UI owns the screen
func setupLogging(cfg *config.Config) (*slog.Logger, func(), error) {
	var w io.Writer = os.Stderr
	closeFn := func() {}

	if cfg.EnableTUI {
		if cfg.Logging.File == "" {
			w = io.Discard
		} else {
			f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if err != nil {
				return nil, nil, fmt.Errorf("open log file: %w", err)
			}
			w = f
			closeFn = func() { f.Close() }
		}
	}

	return logger.Setup(w, cfg.Logging.Level, cfg.Logging.Format), closeFn, nil
}

func printEvents(w io.Writer, ch <-chan api.AudioEvent) {
	for ev := range ch {
		switch p := ev.Payload.(type) {
		case api.Transition:
			fmt.Fprintf(w, "%-22s %s → %s  %s (#%d)\n", ev.Type, p.From, p.To, p.Track, p.Index)
		case error:
			fmt.Fprintf(w, "%-22s %v\n", ev.Type, p)
		default:
			fmt.Fprintf(w, "%s\n", ev.Type)
		}
	}
}
