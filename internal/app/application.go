package app

import (
	"context"
	"errors"
	"time"

	"github.com/raysh454/reconspider/internal/cli"
	"github.com/raysh454/reconspider/internal/interfaces"
)

// Application is the global runtime state container. It holds config,
// parsed CLI args and the orchestrator shared across the server and CLI
// entry points.
type Application struct {
	Config *Config
	Args   *cli.CLIArgs

	Logger interfaces.Logger
	Orch   *Orchestrator

	ctx    context.Context
	cancel context.CancelFunc
}

// NewApplication constructs an Application from already-built parts.
func NewApplication(cfg *Config, args *cli.CLIArgs, logger interfaces.Logger, orch *Orchestrator) *Application {
	ctx, cancel := context.WithCancel(context.Background())

	return &Application{
		Config: cfg,
		Args:   args,
		Logger: logger,
		Orch:   orch,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start logs that the application is up. The HTTP server and any
// long-lived goroutines are started by their own entry points.
func (a *Application) Start() error {
	if a == nil {
		return errors.New("application is nil")
	}
	if a.Logger != nil {
		target := ""
		if a.Args != nil {
			target = a.Args.Target
		}
		a.Logger.Info("application starting", interfaces.Field{Key: "target", Value: target})
	}
	return nil
}

// Shutdown closes the orchestrator (cancelling running jobs) within a
// bounded timeout, then cancels the application's own context.
func (a *Application) Shutdown(ctx context.Context) error {
	if a == nil {
		return errors.New("application is nil")
	}
	if a.Logger != nil {
		a.Logger.Info("application shutdown initiated")
	}

	_, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	if a.Orch != nil {
		a.Orch.Close()
	}

	a.cancel()
	return nil
}
