package app

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/laiyunwu/casestudy12/internal/appconf"
	"github.com/laiyunwu/casestudy12/internal/dataset"
	"github.com/laiyunwu/casestudy12/internal/scenarios"
	"github.com/laiyunwu/casestudy12/plandb"
)

// Application holds the dependencies for our HTTP handlers, helpers,
// and middleware: the configuration, the dataset manager both cases read
// from, the run-history database, and the scenario runner.
type Application struct {
	Config    appconf.Config
	Logger    *slog.Logger
	Data      *dataset.Manager
	DB        *plandb.Client
	Scenarios *scenarios.Runner
	startedAt time.Time
}

// NewApplication wires the dataset manager, run database, and scenario
// runner from the given config. Dataset paths that are empty or unreadable
// fall back to the generated datasets, so the server always starts with
// data.
func NewApplication(config appconf.Config, logger *slog.Logger) (*Application, error) {
	data := dataset.NewManager(logger)
	data.LoadCase1(config.Case1Path)
	data.LoadCase2(config.Case2Path)

	db, err := plandb.NewClient(plandb.NewConfig(config.DBPath, config.Env, config.Verbose))
	if err != nil {
		return nil, err
	}

	return &Application{
		Config:    config,
		Logger:    logger,
		Data:      data,
		DB:        db,
		Scenarios: scenarios.NewRunner(data),
		startedAt: time.Now(),
	}, nil
}

// RecordRun persists one forecast, allocation, or scenario execution to the
// run history. Params and result are stored as JSON.
func (app *Application) RecordRun(ctx context.Context, kind string, params, result interface{}, status string) error {
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return err
	}
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return err
	}
	_, err = app.DB.SaveRun(ctx, plandb.Run{
		Kind:   kind,
		Params: paramsJSON,
		Result: resultJSON,
		Status: status,
	})
	return err
}

// StartedAt reports when the application was constructed.
func (app *Application) StartedAt() time.Time {
	return app.startedAt
}

// Uptime reports how long the application has been serving.
func (app *Application) Uptime() time.Duration {
	if app.startedAt.IsZero() {
		return 0
	}
	return time.Since(app.startedAt)
}

// Shutdown closes the run database.
func (app *Application) Shutdown() error {
	if app.DB != nil {
		return app.DB.Close()
	}
	return nil
}
