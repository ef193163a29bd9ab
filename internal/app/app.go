package app

import (
	"fmt"

	"go.uber.org/zap"

	"artconnect/internal/config"
	"artconnect/internal/ingest"
	"artconnect/internal/reply"
	"artconnect/internal/review"
	"artconnect/internal/scoring"
	"artconnect/internal/storage"
)

// App holds the components every binary shares.
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	Scorer   *scoring.Scorer
	Replies  *reply.Selector
	Recorder storage.Recorder
	Review   *review.Service
}

// New builds the scorer, reply selector and decision log from cfg. The sample
// batch is not loaded; call LoadSamples.
func New(cfg *config.Config, logger *zap.Logger, opts ...review.Option) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	scorer := scoring.New(scoring.WithInfluenceScale(scoring.InfluenceScale(cfg.InfluenceScale)))

	replies := reply.NewSelector()
	if cfg.VoiceFilePath != "" {
		sel, err := reply.LoadVoice(cfg.VoiceFilePath)
		if err != nil {
			return nil, err
		}
		replies = sel
		logger.Info("🎨 Brand voice loaded", zap.String("path", cfg.VoiceFilePath))
	}

	rec, err := storage.Open(cfg.LogBackend, cfg.LogFilePath, cfg.LogDBPath, logger)
	if err != nil {
		return nil, fmt.Errorf("open decision log: %w", err)
	}
	logger.Info("🗂️ Decision log opened", zap.String("backend", cfg.LogBackend))

	return &App{
		Config:   cfg,
		Logger:   logger,
		Scorer:   scorer,
		Replies:  replies,
		Recorder: rec,
		Review:   review.New(scorer, replies, rec, logger, opts...),
	}, nil
}

// LoadSamples reads both sample files and scores them as one batch.
func (a *App) LoadSamples() error {
	batch, err := ingest.NewLoader(a.Review.Now()).LoadBatch(a.Config.InstagramPath, a.Config.TwitterPath)
	if err != nil {
		return fmt.Errorf("load samples: %w", err)
	}
	a.Review.Load(batch)
	return nil
}

// HighValue is the reviewer-facing threshold for "worth answering" filters.
func (a *App) HighValue() float64 { return a.Config.HighValueThreshold }

func (a *App) Close() error {
	return a.Recorder.Close()
}
