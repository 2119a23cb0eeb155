package main

import (
	"context"

	"breathpacer/internal/audio"
	"breathpacer/internal/core/model"
	"breathpacer/internal/core/pacer"
	"breathpacer/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const subscriberBuffer = 256

// services wires the engine to audio and metrics for either front end.
type services struct {
	engine   *pacer.Engine
	player   *audio.Player
	registry *prometheus.Registry
	cancel   context.CancelFunc
	done     chan struct{}
}

func startServices(ctx context.Context, config model.PacerConfig, settings *viper.Viper, logger zerolog.Logger) (*services, error) {
	profiles, err := audio.DefaultProfiles()
	if err != nil {
		return nil, err
	}
	player := audio.NewPlayer(profiles, logger)

	engine := pacer.New(config, pacer.Options{
		Sounder: player,
		Logger:  logger,
	})

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewRecorder(registry)

	runCtx, cancel := context.WithCancel(ctx)
	svc := &services{
		engine:   engine,
		player:   player,
		registry: registry,
		cancel:   cancel,
		done:     make(chan struct{}),
	}

	events := engine.Subscribe(subscriberBuffer)
	go func() {
		defer close(svc.done)
		recorder.Run(runCtx, events)
	}()

	if addr := settings.GetString(keyMetricsAddr); addr != "" {
		router := metrics.NewRouter(registry, engine.Snapshot, logger)
		go func() {
			if err := metrics.Serve(runCtx, addr, router, logger); err != nil {
				logger.Error().Err(err).Msg("metrics server stopped")
			}
		}()
	}

	if config.SoundEnabled {
		// Failures are logged by the player and surface as audio_error events.
		go func() { _ = player.Warm() }()
	}

	return svc, nil
}

// Close stops the engine first so observers see the final state changes.
func (svc *services) Close() {
	svc.engine.Close()
	svc.cancel()
	<-svc.done
	_ = svc.player.Close()
}
