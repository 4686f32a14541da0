package main

import (
	"fmt"

	"docsage/internal/analyze"
	"docsage/internal/authsvc"
	"docsage/internal/config"
	"docsage/internal/files"
	"docsage/internal/history"
	"docsage/internal/orchestrator"
	"docsage/internal/session"
	"docsage/internal/transport"
)

// services bundles the configured clients one command invocation needs.
type services struct {
	cfg      config.Config
	sessions session.Store
	auth     *authsvc.Client
	files    *files.Client
	history  *history.Client
	backend  *orchestrator.Client
	facade   *analyze.Service
}

// newServices is a var so tests can substitute clients pointed at fakes.
var newServices = func() (*services, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	sessions := session.NewFileStore()
	httpClient := transport.New(sessions)
	backend := orchestrator.New(cfg.Orchestrator.BaseURL, httpClient)

	return &services{
		cfg:      cfg,
		sessions: sessions,
		auth:     authsvc.New(cfg.Auth.BaseURL, httpClient, sessions),
		files:    files.New(cfg.Files.BaseURL, httpClient),
		history:  history.New(cfg.History.BaseURL, httpClient),
		backend:  backend,
		facade:   analyze.NewService(backend, cfg.Client.FanOutLimit),
	}, nil
}
