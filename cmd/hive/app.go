package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openai/openai-go/option"

	"github.com/dusk-indust/hive/internal/completion"
	"github.com/dusk-indust/hive/internal/config"
	"github.com/dusk-indust/hive/internal/deliberation"
	"github.com/dusk-indust/hive/internal/orchestrator"
	"github.com/dusk-indust/hive/internal/participant"
	"github.com/dusk-indust/hive/internal/sqlite"
	"github.com/dusk-indust/hive/internal/store"
)

// app is the fully wired object graph shared by the subcommands.
type app struct {
	store    store.Store
	hive     *deliberation.Hive
	runner   *orchestrator.Runner
	progress *orchestrator.ProgressReporter
	logger   *slog.Logger

	closers []func() error
}

// newApp wires the store, participants, hive and project runner from cfg.
// A nil progress reporter disables progress events.
func newApp(cfg *config.Config, progress *orchestrator.ProgressReporter, logger *slog.Logger) (*app, error) {
	a := &app{progress: progress, logger: logger}

	st, err := a.openStore(cfg.Store)
	if err != nil {
		return nil, err
	}
	a.store = st

	members, err := spawnMembers(cfg, logger)
	if err != nil {
		a.close()
		return nil, err
	}

	a.hive = deliberation.NewHive(st, members, cfg.Deliberation.Settings, logger)
	orch := orchestrator.New(st, a.hive, orchestrator.Collaborators{}, progress, logger)
	a.runner = orchestrator.NewRunner(orch, logger)

	logger.Debug("hive wired",
		"store", cfg.Store.Driver,
		"participants", a.hive.Members(),
		"completion", completionBackend(cfg.Completion),
	)
	return a, nil
}

func (a *app) openStore(cfg config.StoreConfig) (store.Store, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		st, err := sqlite.Open(cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		a.closers = append(a.closers, st.Close)
		return st, nil
	default:
		return store.NewMemory(), nil
	}
}

// shutdown cancels running projects, then releases the store.
func (a *app) shutdown(ctx context.Context) error {
	err := a.runner.Shutdown(ctx)
	if a.progress != nil {
		a.progress.Close()
	}
	a.close()
	return err
}

func (a *app) close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.logger.Warn("close failed", "error", err)
		}
	}
	a.closers = nil
}

func spawnMembers(cfg *config.Config, logger *slog.Logger) ([]deliberation.Member, error) {
	reg := participant.NewRegistry()
	for _, p := range cfg.Deliberation.Profiles {
		if err := reg.Register(p); err != nil {
			return nil, err
		}
	}

	ps, err := reg.SpawnAll(cfg.ParticipantRoles(), newCompletionClient(cfg.Completion), logger)
	if err != nil {
		return nil, err
	}
	members := make([]deliberation.Member, len(ps))
	for i, p := range ps {
		members[i] = p
	}
	return members, nil
}

func newCompletionClient(cfg config.CompletionConfig) completion.Client {
	if cfg.APIKey == "" {
		return completion.Stub{}
	}
	var opts []option.RequestOption
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	return completion.NewOpenAI(completion.OpenAIConfig{
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	}, opts...)
}

func completionBackend(cfg config.CompletionConfig) string {
	if cfg.APIKey == "" {
		return "stub"
	}
	return "openai:" + cfg.Model
}
