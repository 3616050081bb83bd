package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/time/rate"

	"github.com/hackgods/physio-booking/internal/logging"
)

type SimConfig struct {
	APIBaseURL  string
	Duration    time.Duration
	Workers     int
	Rate        float64
	BookRatio   float64
	CancelRatio float64
	RebookRatio float64
	AttendRatio float64
	ReadRatio   float64
}

type Simulator struct {
	config  SimConfig
	pool    *DataPool
	client  *http.Client
	limiter *rate.Limiter
	metrics Metrics
	log     zerolog.Logger
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("SIM")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:          "simulate",
		Short:        "Drive concurrent booking traffic against a running physio-clinic API",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := SimConfig{
				APIBaseURL:  strings.TrimRight(v.GetString("api"), "/"),
				Duration:    v.GetDuration("duration"),
				Workers:     v.GetInt("workers"),
				Rate:        v.GetFloat64("rate"),
				BookRatio:   v.GetFloat64("book-ratio"),
				CancelRatio: v.GetFloat64("cancel-ratio"),
				RebookRatio: v.GetFloat64("rebook-ratio"),
				AttendRatio: v.GetFloat64("attend-ratio"),
				ReadRatio:   v.GetFloat64("read-ratio"),
			}
			if err := validateConfig(&cfg); err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	f := cmd.Flags()
	f.String("api", "http://127.0.0.1:8080", "Base URL of the booking API")
	f.Duration("duration", 30*time.Second, "How long to run")
	f.Int("workers", 10, "Concurrent workers")
	f.Float64("rate", 0, "Overall requests per second, 0 for unlimited")
	f.Float64("book-ratio", 0.5, "Share of booking requests")
	f.Float64("cancel-ratio", 0.15, "Share of cancellations")
	f.Float64("rebook-ratio", 0.1, "Share of rebookings")
	f.Float64("attend-ratio", 0.1, "Share of attendance requests")
	f.Float64("read-ratio", 0.15, "Share of appointment reads")
	_ = v.BindPFlags(f)

	return cmd
}

// validateConfig rejects unusable settings and normalises the ratios to sum to 1.
func validateConfig(cfg *SimConfig) error {
	if cfg.Workers <= 0 {
		return fmt.Errorf("workers must be > 0")
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("duration must be > 0")
	}
	if cfg.Rate < 0 {
		return fmt.Errorf("rate must not be negative")
	}

	total := cfg.BookRatio + cfg.CancelRatio + cfg.RebookRatio + cfg.AttendRatio + cfg.ReadRatio
	if total <= 0 {
		return fmt.Errorf("at least one ratio must be positive")
	}
	cfg.BookRatio /= total
	cfg.CancelRatio /= total
	cfg.RebookRatio /= total
	cfg.AttendRatio /= total
	cfg.ReadRatio /= total
	return nil
}

func run(ctx context.Context, cfg SimConfig) error {
	logger := logging.New("simulate", "dev", "info")

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sim := &Simulator{
		config: cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		log:    logger,
	}
	if cfg.Rate > 0 {
		sim.limiter = rate.NewLimiter(rate.Limit(cfg.Rate), cfg.Workers)
	}

	loadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	pool, err := sim.loadDataPool(loadCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("load data pool: %w", err)
	}
	sim.pool = pool

	logger.Info().
		Int("patients", len(pool.Patients)).
		Int("slots", len(pool.Slots)).
		Dur("duration", cfg.Duration).
		Int("workers", cfg.Workers).
		Msg("starting simulation")

	sim.Run(ctx)
	sim.PrintReport(os.Stdout)
	return nil
}

func (s *Simulator) Run(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.config.Duration)
	defer cancel()

	var wg sync.WaitGroup
	for i := range s.config.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.worker(ctx, uint64(i))
		}()
	}

	wg.Wait()
	s.log.Info().Msg("simulation complete")
}

func (s *Simulator) worker(ctx context.Context, workerID uint64) {
	rng := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), workerID))

	for ctx.Err() == nil {
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return
			}
		}

		r := rng.Float64()
		c := s.config
		switch {
		case r < c.BookRatio:
			s.doBook(ctx, rng)
		case r < c.BookRatio+c.CancelRatio:
			s.doTransition(ctx, rng, "cancel", &s.metrics.Cancel)
		case r < c.BookRatio+c.CancelRatio+c.RebookRatio:
			s.doTransition(ctx, rng, "rebook", &s.metrics.Rebook)
		case r < c.BookRatio+c.CancelRatio+c.RebookRatio+c.AttendRatio:
			s.doTransition(ctx, rng, "attend", &s.metrics.Attend)
		default:
			s.doRead(ctx, rng)
		}
	}
}

func (s *Simulator) doBook(ctx context.Context, rng *rand.Rand) {
	body, _ := json.Marshal(map[string]int{
		"patient_id": s.pool.Patients[rng.IntN(len(s.pool.Patients))],
		"slot_id":    s.pool.Slots[rng.IntN(len(s.pool.Slots))],
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.APIBaseURL+"/appointments", bytes.NewReader(body))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := s.client.Do(req)
	latency := time.Since(start)
	if err != nil {
		s.recordFailure(ctx, &s.metrics.Book, latency, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusCreated {
		var appt struct {
			ID int `json:"id"`
		}
		if json.NewDecoder(resp.Body).Decode(&appt) == nil && appt.ID > 0 {
			s.pool.AddAppointment(appt.ID)
		}
	}
	s.metrics.Book.Record(latency, resp.StatusCode)
}

func (s *Simulator) doTransition(ctx context.Context, rng *rand.Rand, action string, om *OperationMetrics) {
	id, ok := s.pool.RandomAppointment(rng)
	if !ok {
		return
	}

	url := fmt.Sprintf("%s/appointments/%d/%s", s.config.APIBaseURL, id, action)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	latency := time.Since(start)
	if err != nil {
		s.recordFailure(ctx, om, latency, err)
		return
	}
	resp.Body.Close()
	om.Record(latency, resp.StatusCode)
}

func (s *Simulator) doRead(ctx context.Context, rng *rand.Rand) {
	id, ok := s.pool.RandomAppointment(rng)
	if !ok {
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/appointments/%d", s.config.APIBaseURL, id), nil)
	if err != nil {
		return
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	latency := time.Since(start)
	if err != nil {
		s.recordFailure(ctx, &s.metrics.Read, latency, err)
		return
	}
	resp.Body.Close()
	s.metrics.Read.Record(latency, resp.StatusCode)
}

// recordFailure counts transport errors, except those caused by the run ending.
func (s *Simulator) recordFailure(ctx context.Context, om *OperationMetrics, latency time.Duration, err error) {
	if ctx.Err() != nil {
		return
	}
	s.log.Debug().Err(err).Msg("request failed")
	om.Record(latency, 0)
}
