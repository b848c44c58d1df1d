// Package supervisor runs the long-lived services of the API under a suture
// tree: the HTTP server in one layer, background maintenance in another.
package supervisor

import (
	"context"
	"time"

	"github.com/thejerf/suture/v4"
	"go.uber.org/zap"
)

type TreeConfig struct {
	FailureThreshold float64
	FailureDecay     float64
	FailureBackoff   time.Duration
	ShutdownTimeout  time.Duration
}

func DefaultTreeConfig() TreeConfig {
	return TreeConfig{
		FailureThreshold: 5.0,
		FailureDecay:     30.0,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	}
}

type Tree struct {
	root       *suture.Supervisor
	api        *suture.Supervisor
	background *suture.Supervisor
}

func NewTree(logger *zap.Logger, config TreeConfig) *Tree {
	defaults := DefaultTreeConfig()
	if config.FailureThreshold == 0 {
		config.FailureThreshold = defaults.FailureThreshold
	}
	if config.FailureDecay == 0 {
		config.FailureDecay = defaults.FailureDecay
	}
	if config.FailureBackoff == 0 {
		config.FailureBackoff = defaults.FailureBackoff
	}
	if config.ShutdownTimeout == 0 {
		config.ShutdownTimeout = defaults.ShutdownTimeout
	}

	spec := suture.Spec{
		FailureThreshold: config.FailureThreshold,
		FailureDecay:     config.FailureDecay,
		FailureBackoff:   config.FailureBackoff,
		Timeout:          config.ShutdownTimeout,
	}
	rootSpec := spec
	rootSpec.EventHook = EventHook(logger.Named("supervisor"))

	root := suture.New("foodies-api", rootSpec)
	api := suture.New("api-layer", spec)
	background := suture.New("background-layer", spec)
	root.Add(api)
	root.Add(background)

	return &Tree{root: root, api: api, background: background}
}

func (t *Tree) AddAPIService(svc suture.Service) suture.ServiceToken {
	return t.api.Add(svc)
}

func (t *Tree) AddBackgroundService(svc suture.Service) suture.ServiceToken {
	return t.background.Add(svc)
}

func (t *Tree) Serve(ctx context.Context) error {
	return t.root.Serve(ctx)
}

func (t *Tree) ServeBackground(ctx context.Context) <-chan error {
	return t.root.ServeBackground(ctx)
}

// EventHook logs supervisor events through zap. Panics and terminations are
// errors, backoff transitions are warnings.
func EventHook(logger *zap.Logger) suture.EventHook {
	return func(e suture.Event) {
		fields := make([]zap.Field, 0, 4)
		for k, v := range e.Map() {
			fields = append(fields, zap.Any(k, v))
		}

		switch e.Type() {
		case suture.EventTypeServicePanic, suture.EventTypeServiceTerminate:
			logger.Error(e.String(), fields...)
		case suture.EventTypeBackoff, suture.EventTypeStopTimeout:
			logger.Warn(e.String(), fields...)
		default:
			logger.Info(e.String(), fields...)
		}
	}
}
