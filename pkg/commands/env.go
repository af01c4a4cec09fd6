package commands

import (
	"context"
	"fmt"
	"log/slog"

	"tableflip.dev/flow/pkg/app"
	"tableflip.dev/flow/pkg/auth"
	"tableflip.dev/flow/pkg/config"
	"tableflip.dev/flow/pkg/logging"
	"tableflip.dev/flow/pkg/store"
)

// env is everything a command needs to reach the diary.
type env struct {
	Config  *config.Config
	Log     *slog.Logger
	Store   store.Adapter
	Auth    *auth.Local
	Manager *app.Manager
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(global.ConfigFile)
	if err != nil {
		return nil, err
	}
	if global.User != "" {
		cfg.User = global.User
	}
	return cfg, nil
}

// open loads configuration, opens the store and signs in the configured
// user. live keeps the session cache subscribed to store changes.
func open(ctx context.Context, live bool) (*env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log := logging.New(cfg.Log)

	st, err := store.Open(ctx, cfg.Store(), log)
	if err != nil {
		return nil, err
	}
	provider, err := auth.NewLocal(cfg.User)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("user %q: %w", cfg.User, err)
	}
	m := &app.Manager{
		Store: st,
		Auth:  provider,
		Log:   log,
		Live:  live,
	}
	m.Start(ctx)
	return &env{Config: cfg, Log: log, Store: st, Auth: provider, Manager: m}, nil
}

// service opens the store and returns a Service for the signed-in user.
// The returned close func releases the store.
func service(ctx context.Context) (*app.Service, func(), error) {
	e, err := open(ctx, false)
	if err != nil {
		return nil, nil, err
	}
	svc, err := e.Manager.Service()
	if err != nil {
		e.Close()
		return nil, nil, err
	}
	return svc, e.Close, nil
}

func (e *env) Close() {
	e.Manager.Close()
	if err := e.Store.Close(); err != nil {
		e.Log.Warn("closing store", "error", err)
	}
}
