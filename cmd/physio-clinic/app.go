package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/hackgods/physio-booking/internal/api"
	"github.com/hackgods/physio-booking/internal/appointment"
	"github.com/hackgods/physio-booking/internal/clinic"
	"github.com/hackgods/physio-booking/internal/config"
	"github.com/hackgods/physio-booking/internal/db"
	"github.com/hackgods/physio-booking/internal/idgen"
	redisclient "github.com/hackgods/physio-booking/internal/redis"
)

// app wires the clinic directory, the booking engine and the optional event sinks.
type app struct {
	dir        *clinic.Directory
	engine     *appointment.Engine
	dispatcher *appointment.Dispatcher
	deps       []api.Dependency

	pgPool *pgxpool.Pool
	redis  *redis.Client
	log    zerolog.Logger
}

func newApp(ctx context.Context, cfg config.Config, logger zerolog.Logger, sample bool) (*app, error) {
	a := &app{log: logger}

	sinks := appointment.MultiSink{appointment.NewLogSink(logger)}

	if cfg.PostgresDSN != "" {
		pool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("postgres connection: %w", err)
		}
		a.pgPool = pool

		events := db.NewEventLog(pool)
		if err := events.EnsureSchema(ctx); err != nil {
			a.closeClients()
			return nil, err
		}
		sinks = append(sinks, events)
		a.deps = append(a.deps, api.Dependency{Name: "postgres", Critical: true, Ping: pool.Ping})
		logger.Info().Msg("connected to Postgres, appointment events go to event_logs")
	}

	if cfg.RedisAddr != "" {
		rdb, err := redisclient.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
		if err != nil {
			a.closeClients()
			return nil, fmt.Errorf("redis connection: %w", err)
		}
		a.redis = rdb

		sinks = append(sinks, redisclient.NewEventStream(rdb, cfg.RedisStream))
		a.deps = append(a.deps, api.Dependency{
			Name: "redis",
			Ping: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		})
		logger.Info().Str("stream", cfg.RedisStream).Msg("connected to Redis, appointment events go to stream")
	}

	ids := idgen.NewSource()
	a.dir = clinic.NewDirectory(ids)
	if sample {
		err := clinic.Seed(a.dir, clinic.SeedOptions{
			Seed:             cfg.SampleSeed,
			Patients:         cfg.SamplePatients,
			Physiotherapists: cfg.SamplePhysiotherapists,
		})
		if err != nil {
			a.closeClients()
			return nil, fmt.Errorf("seed sample clinic: %w", err)
		}
		logger.Info().
			Int("patients", len(a.dir.Patients())).
			Int("physiotherapists", len(a.dir.Physiotherapists())).
			Int("slots", len(a.dir.Slots())).
			Msg("sample clinic loaded")
	}

	a.dispatcher = appointment.NewDispatcher(sinks, cfg.EventBuffer, logger)
	a.engine = appointment.NewEngine(ids, a.dispatcher, logger)

	return a, nil
}

// Close drains pending events before releasing the sink connections.
func (a *app) Close(ctx context.Context) {
	if err := a.dispatcher.Close(ctx); err != nil {
		a.log.Warn().Err(err).Msg("event dispatcher did not drain before timeout")
	}
	a.closeClients()
}

func (a *app) closeClients() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Error().Err(err).Msg("error closing redis")
		}
	}
	if a.pgPool != nil {
		a.pgPool.Close()
	}
}
