package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"personalm3u/config"
	"personalm3u/favorites"
	"personalm3u/logger"
	"personalm3u/m3u"
	"personalm3u/merge"
	"personalm3u/probe"
	"personalm3u/resolution"
)

func main() {
	if err := execute(os.Args[1:]); err != nil {
		logger.Default.Error().Err(err).Msg("personalm3u failed")
		os.Exit(1)
	}
}

func execute(args []string) error {
	if err := loadEnv(".env"); err != nil {
		return err
	}
	cfg, err := parseArgs(args)
	if err != nil {
		return err
	}
	logger.Setup(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Schedule == "" {
		return run(ctx, cfg)
	}
	return schedule(ctx, cfg)
}

// loadEnv reads LOG_LEVEL, DEBUG and friends from an optional dotenv file.
// Variables already set in the environment win.
func loadEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load %s: %w", path, err)
}

// parseArgs loads the config file named by -config and lays the flags that
// were set on top of it.
func parseArgs(args []string) (*config.Config, error) {
	flags := flag.NewFlagSet("personalm3u", flag.ContinueOnError)
	var (
		configPath, input, output, favs, sched, level string
		tags                                          bool
	)
	flags.StringVar(&configPath, "config", "", "YAML config file")
	flags.StringVar(&input, "i", "", "input playlist path or URL")
	flags.StringVar(&input, "input", "", "input playlist path or URL")
	flags.StringVar(&output, "o", "", "output playlist path")
	flags.StringVar(&output, "output", "", "output playlist path")
	flags.StringVar(&favs, "f", "", "favorites pattern file")
	flags.StringVar(&favs, "favorites", "", "favorites pattern file")
	flags.BoolVar(&tags, "append_resolution_tag", false, "append [UHD]/[FHD]/[HD]/[SD] to channel names")
	flags.StringVar(&sched, "schedule", "", "cron spec; rebuild on this schedule instead of once")
	flags.StringVar(&level, "log-level", "", "debug, info, warn or error")
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "i", "input":
			cfg.Input = input
		case "o", "output":
			cfg.Output = output
		case "f", "favorites":
			cfg.Favorites = favs
		case "append_resolution_tag":
			cfg.AppendResolutionTag = tags
		case "schedule":
			cfg.Schedule = sched
		case "log-level":
			cfg.LogLevel = level
		}
	})
	return cfg, nil
}

// run performs one full rebuild of the output playlist.
func run(ctx context.Context, cfg *config.Config) error {
	tagger, err := cfg.Tagger()
	if err != nil {
		return err
	}
	opts := merge.Options{Classifier: cfg.Classifier(), Tagger: tagger}

	if cfg.Favorites != "" {
		opts.Favorites, err = favorites.LoadFile(cfg.Favorites)
		if err != nil {
			return err
		}
		opts.Favorites.Group = cfg.FavoritesGroup
	}

	data, err := readInput(ctx, cfg.Input)
	if err != nil {
		return err
	}

	if tagger != nil && cfg.Probe.Enabled {
		opts.Hints = probeHints(ctx, cfg.Probe, data)
	}

	var stats merge.Stats
	err = writeAtomic(cfg.Output, func(w io.Writer) error {
		var buildErr error
		stats, buildErr = merge.Build(bytes.NewReader(data), w, opts)
		return buildErr
	})
	if err != nil {
		return err
	}

	logger.Default.Info().
		Str("output", cfg.Output).
		Int("channels", stats.Parsed).
		Int("skipped", stats.Skipped).
		Int("favorites", stats.Favorites).
		Int("groups", stats.Groups).
		Msg("playlist written")
	return nil
}

func probeHints(ctx context.Context, pc config.Probe, data []byte) map[string]resolution.Tag {
	p, err := m3u.ReadAll(bytes.NewReader(data))
	if err != nil {
		logger.Default.Warn().Err(err).Msg("probe skipped")
		return nil
	}
	uris := make([]string, 0, len(p.Tracks))
	for _, t := range p.Tracks {
		uris = append(uris, t.URI)
	}
	prober := probe.New(pc.Timeout, pc.Workers, pc.UserAgent)
	prober.SetRate(pc.Rate)
	hints := prober.ResolveAll(ctx, uris)
	logger.Default.Info().Int("probed", len(hints)).Msg("variant probe done")
	return hints
}

// schedule rebuilds once immediately and then on every cron tick until ctx
// is cancelled. Failed runs are logged and retried on the next tick.
func schedule(ctx context.Context, cfg *config.Config) error {
	c := cron.New()
	job := func() {
		if err := run(ctx, cfg); err != nil {
			logger.Default.Error().Err(err).Msg("scheduled rebuild failed")
		}
	}
	if _, err := c.AddFunc(cfg.Schedule, job); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", cfg.Schedule, err)
	}

	job()
	c.Start()
	logger.Default.Info().Str("schedule", cfg.Schedule).Msg("waiting for next rebuild")

	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
