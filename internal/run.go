package internal

import "context"

// Run serves the App on addr until SIGINT, SIGTERM or the base context ends.
// The job manager, if any, starts before the startup hooks and stops before
// the shutdown hooks, which may close what its workers use.
func (a *App) Run(addr string, opts ...RunOption) error {
	cfg := buildRunConfig(opts...)
	if cfg.logger == nil {
		cfg.logger = a.logger
	}

	startup := cfg.startupHooks
	shutdown := cfg.shutdownHooks
	if a.jobs != nil {
		startup = append([]func(context.Context) error{a.jobs.Start}, startup...)
		shutdown = append([]func(context.Context) error{a.jobs.Stop}, shutdown...)
	}

	return runServer(runtimeConfig{
		handler:         a,
		address:         addr,
		logger:          cfg.logger,
		shutdownTimeout: cfg.shutdownTimeout,
		startupHooks:    startup,
		shutdownHooks:   shutdown,
		baseCtx:         cfg.baseCtx,
	})
}
