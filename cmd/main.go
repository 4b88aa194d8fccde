package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/LumineonRL/LLSIFTeamBuilder/internal/adapters/loader"
	app "github.com/LumineonRL/LLSIFTeamBuilder/internal/app"
	"github.com/LumineonRL/LLSIFTeamBuilder/internal/config"
	"github.com/LumineonRL/LLSIFTeamBuilder/internal/domain/gamedata"
	"github.com/LumineonRL/LLSIFTeamBuilder/internal/domain/simulation"
	"github.com/LumineonRL/LLSIFTeamBuilder/pkg/logger"
	"github.com/LumineonRL/LLSIFTeamBuilder/pkg/metrics"
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Use fmt for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Logs go to stderr so the report on stdout stays clean.
	if err := logger.Init(logger.WithWriter(os.Stderr), logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	if err := run(ctx, cfg, os.Stdout); err != nil {
		logger.Get().Error(ctx, "simulation failed", logger.Error(err))
		stop()
		os.Exit(1)
	}
}

// run simulates the configured play and writes the report to out.
func run(ctx context.Context, cfg *config.Config, out io.Writer) error {
	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	data, err := gamedata.Load(ctx, cfg.GameDataPath,
		gamedata.WithHealMultiplier(cfg.HealMultiplier),
		gamedata.WithMaxComboFeverBonus(cfg.MaxComboFeverBonus),
	)
	if err != nil {
		return err
	}
	team, err := loader.LoadTeam(cfg.TeamPath)
	if err != nil {
		return err
	}
	song, err := loader.LoadSong(cfg.SongPath)
	if err != nil {
		return err
	}

	playOpts := []simulation.ConfigOption{simulation.WithDetailedLog(cfg.DetailedLog)}
	if cfg.Seeded() {
		playOpts = append(playOpts, simulation.WithSeed(cfg.Seed))
	}
	playCfg, err := simulation.NewPlayConfig(cfg.Accuracy, cfg.ApproachRate, playOpts...)
	if err != nil {
		return err
	}
	play, err := simulation.NewPlay(team, song, playCfg, data, simulation.WithLogger(log.Named("play")))
	if err != nil {
		return err
	}

	log.Info(ctx, "simulating",
		logger.String("song", song.Title),
		logger.Int("notes", len(song.Notes)),
		logger.Int("trials", cfg.Trials),
		logger.Any("seed", play.Seed()),
	)

	svc := app.New(play,
		app.WithLogger(log.Named("service")),
		app.WithTrials(cfg.Trials),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithTopN(cfg.TopN),
		app.WithSplitStreams(cfg.SplitStreams),
	)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	defer svc.Stop()

	report, err := svc.Run(ctx)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(out, report.String()); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if cfg.MetricsFile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			return err
		}
		log.Info(ctx, "metrics written", logger.String("path", cfg.MetricsFile))
	}
	return nil
}
