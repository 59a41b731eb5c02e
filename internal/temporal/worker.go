package temporal

import (
	"context"

	"github.com/flexprice/paycycle/internal/config"
	"github.com/flexprice/paycycle/internal/logger"
	"github.com/flexprice/paycycle/internal/service"
	"go.temporal.io/sdk/worker"
	"go.uber.org/fx"
)

// Worker manages the Temporal worker instance.
type Worker struct {
	worker worker.Worker
	log    *logger.Logger
}

// NewWorker creates a new Temporal worker and registers workflows and activities.
func NewWorker(client *TemporalClient, cfg *config.Configuration, params service.ServiceParams) *Worker {
	w := worker.New(client.Client, cfg.Temporal.TaskQueue, worker.Options{})

	RegisterWorkflowsAndActivities(w, params)

	return &Worker{
		worker: w,
		log:    params.Logger,
	}
}

func (w *Worker) Start() error {
	w.log.Infow("starting temporal worker")
	return w.worker.Start()
}

func (w *Worker) Stop() {
	w.log.Infow("stopping temporal worker")
	if w.worker != nil {
		w.worker.Stop()
	}
}

// RegisterWithLifecycle registers the worker with the fx lifecycle.
func (w *Worker) RegisterWithLifecycle(lc fx.Lifecycle) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return w.Start()
		},
		OnStop: func(ctx context.Context) error {
			done := make(chan struct{})
			go func() {
				w.Stop()
				close(done)
			}()

			select {
			case <-done:
				w.log.Infow("temporal worker stopped")
			case <-ctx.Done():
				w.log.Errorw("timeout while stopping temporal worker")
			}
			return nil
		},
	})
}
