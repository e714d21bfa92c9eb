package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/transactai/transactai/internal/artifact"
	"github.com/transactai/transactai/internal/common"
	"github.com/transactai/transactai/internal/config"
	"github.com/transactai/transactai/internal/embed"
	"github.com/transactai/transactai/internal/engine"
	"github.com/transactai/transactai/internal/fusion"
	"github.com/transactai/transactai/internal/rules"
	"github.com/transactai/transactai/internal/storage"
	"github.com/transactai/transactai/internal/training"
)

func dataDir() string {
	if dir := viper.GetString("data_dir"); dir != "" {
		return config.ExpandPath(dir)
	}
	return config.DefaultDataDir()
}

func databasePath() string {
	if path := viper.GetString("database.path"); path != "" {
		return config.ExpandPath(path)
	}
	return filepath.Join(dataDir(), "transactai.db")
}

func artifactDir() string {
	if dir := viper.GetString("artifacts.dir"); dir != "" {
		return config.ExpandPath(dir)
	}
	return filepath.Join(dataDir(), "models")
}

func newEmbedder() *embed.HashingEmbedder {
	return embed.NewHashingEmbedder(viper.GetInt("embedding.dim"))
}

func fusionConfig() fusion.Config {
	cfg := fusion.DefaultConfig()
	if v := viper.GetFloat64("fusion.rule_accept"); v > 0 {
		cfg.RuleAccept = v
	}
	if v := viper.GetFloat64("fusion.ml_accept"); v > 0 {
		cfg.MLAccept = v
	}
	if v := viper.GetFloat64("fusion.embed_rescue"); v > 0 {
		cfg.EmbedRescue = v
	}
	if v := viper.GetFloat64("fusion.hybrid_margin"); v > 0 {
		cfg.HybridMargin = v
	}
	return cfg
}

func hyperparameters() training.Hyperparameters {
	return training.Hyperparameters{
		Seed:                viper.GetInt64("training.seed"),
		MaxInputTokens:      viper.GetInt("training.max_input_tokens"),
		TrainRatio:          viper.GetFloat64("training.train_ratio"),
		ValRatio:            viper.GetFloat64("training.val_ratio"),
		MinLabelExamples:    viper.GetInt("training.min_label_examples"),
		RegressionTolerance: viper.GetFloat64("training.regression_tolerance"),
	}
}

func openStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(databasePath())
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

// app bundles the assembled engine with the components that commands
// need direct access to.
type app struct {
	Engine    *engine.Engine
	Store     *storage.SQLiteStorage
	Retrainer *training.Retrainer
}

func (a *app) Close() {
	_ = a.Store.Close()
}

// buildApp assembles the full engine. When requireModel is true a
// missing or inconsistent artifact set refuses to serve; otherwise the
// engine starts without a model (enough to train the first one).
func buildApp(ctx context.Context, requireModel bool) (*app, error) {
	store, err := openStorage(ctx)
	if err != nil {
		return nil, err
	}

	embedder := newEmbedder()

	set, err := artifact.Load(artifactDir(), embedder)
	if err != nil {
		if requireModel || !errors.Is(err, common.ErrModelUnavailable) {
			_ = store.Close()
			return nil, fmt.Errorf("refusing to start: %w", err)
		}
		slog.Warn("No trained model found; run `transactai train` first",
			"artifact_dir", artifactDir())
		set = nil
	}
	holder := artifact.NewHolder(set)

	ruleEngine := rules.NewEngine(rules.DefaultRules())
	fusionEngine := fusion.New(ruleEngine, fusion.HolderSource{Holder: holder}, fusionConfig())

	timeout := viper.GetDuration("training.timeout")
	if timeout == 0 {
		timeout = 2 * time.Hour
	}
	retrainer := training.NewRetrainer(store, embedder, holder, artifactDir(), hyperparameters(), timeout)

	return &app{
		Engine:    engine.New(store, fusionEngine, retrainer),
		Store:     store,
		Retrainer: retrainer,
	}, nil
}
