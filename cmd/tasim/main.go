// Command tasim drives the TA card simulator: it loads config, wires
// the trust store, session cache, archiver, and tracer, then drains the
// recorded-APDU queue through the state machine in call order, exactly
// as a card dispatcher would deliver the commands.
package main

import (
	"context"
	"crypto/rand"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jmhodges/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/cardsim/termauth/archive"
	"github.com/cardsim/termauth/config"
	"github.com/cardsim/termauth/cvc"
	"github.com/cardsim/termauth/log"
	"github.com/cardsim/termauth/metrics"
	"github.com/cardsim/termauth/queue"
	"github.com/cardsim/termauth/session"
	"github.com/cardsim/termauth/ta"
	"github.com/cardsim/termauth/tracing"
	"github.com/cardsim/termauth/trust"
	"github.com/cardsim/termauth/verify"
)

func failOnError(logger log.Logger, err error, msg string) {
	if err != nil {
		logger.Err(fmt.Sprintf("%s: %s", msg, err))
		fmt.Fprintf(os.Stderr, "%s: %s\n", msg, err)
		os.Exit(1)
	}
}

func parseChipDate(s string) (cvc.Date, error) {
	var d cvc.Date
	if _, err := fmt.Sscanf(s, "%d-%d-%d", &d.Year, &d.Month, &d.Day); err != nil {
		return cvc.Date{}, fmt.Errorf("chip date %q is not YYYY-MM-DD: %w", s, err)
	}
	return d, nil
}

func main() {
	configFile := flag.String("config", "", "Path to configuration file")
	sessionID := flag.String("session", "replay", "Session ID for snapshots and archived reasons")
	flag.Parse()
	if *configFile == "" {
		flag.Usage()
		os.Exit(1)
	}

	logger := log.New("tasim")

	cfg, err := config.Load(*configFile)
	failOnError(logger, err, "Failed to load configuration")

	chipDate, err := parseChipDate(cfg.TASim.ChipDate)
	failOnError(logger, err, "Failed to parse chip date")

	scope := metrics.NewPromScope(prometheus.DefaultRegisterer, "tasim")
	if cfg.TASim.DebugAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			logger.Info(fmt.Sprintf("debug server listening on %s", cfg.TASim.DebugAddr))
			err := http.ListenAndServe(cfg.TASim.DebugAddr, mux)
			logger.Err(fmt.Sprintf("debug server exited: %s", err))
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	tp, err := tracing.NewProvider("tasim")
	failOnError(logger, err, "Failed to initialize tracing")
	defer tp.Shutdown(context.Background())

	// Open the stateful collaborators concurrently; each probes its
	// backend on construction, so a misconfigured DSN fails here rather
	// than mid-session.
	var trustStore trust.Store
	var sessions *session.Cache
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if cfg.DB.Connect == "" {
			trustStore = trust.NewMemStore()
			return nil
		}
		store, err := trust.NewMySQLStore("mysql", string(cfg.DB.Connect))
		if err != nil {
			return err
		}
		trustStore = store
		return nil
	})
	g.Go(func() error {
		if cfg.Redis.Addr == "" {
			return nil
		}
		cache := session.New(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: string(cfg.Redis.Password),
		}, cfg.Redis.TTL.Duration)
		if err := cache.Ping(gctx); err != nil {
			return err
		}
		sessions = cache
		return nil
	})
	failOnError(logger, g.Wait(), "Failed to connect to backends")

	var archiver archive.Archiver = archive.NopArchiver{}
	if cfg.Archive.Bucket != "" {
		archiver, err = archive.NewS3Archiver(ctx, cfg.Archive.Bucket, cfg.Archive.Prefix)
		failOnError(logger, err, "Failed to initialize S3 archiver")
	}

	recorder, err := queue.Open(cfg.Queue.Dir)
	failOnError(logger, err, "Failed to open APDU queue")
	defer recorder.Close()

	var verifier verify.Verifier = verify.StdVerifier{}
	if cfg.TASim.VerifyCacheSize > 0 {
		verifier = verify.NewCachingVerifier(verifier, cfg.TASim.VerifyCacheSize)
	}

	sm := ta.New(ta.Config{
		Trust:    trustStore,
		ChipDate: chipDate,
		Security: ta.NewMemorySecurityStatus(),
		Verifier: verifier,
		Rand:     rand.Reader,
		Clock:    clock.New(),
		Metrics:  scope,
		Logger:   logger,
	})
	dispatcher := tracing.NewDispatcher(sm, nil)

	logger.Info(fmt.Sprintf("draining %d recorded APDUs from %s", recorder.Length(), cfg.Queue.Dir))
	seq := 0
	for ctx.Err() == nil {
		rec, ok, err := recorder.Dequeue()
		failOnError(logger, err, "Failed to dequeue APDU")
		if !ok {
			break
		}

		resp := dispatcher.Dispatch(ctx, rec.Command())
		if err := archiver.Archive(ctx, *sessionID, seq, uint16(resp.Status), resp.Reason); err != nil {
			logger.Warning(fmt.Sprintf("archiving reason for APDU %d: %s", seq, err))
		}
		if sessions != nil {
			if err := sessions.Put(ctx, *sessionID, sm.Snapshot()); err != nil {
				logger.Warning(fmt.Sprintf("caching session snapshot: %s", err))
			}
		}
		seq++
	}

	logger.Info(fmt.Sprintf("replay complete: %d APDUs dispatched, final state %s", seq, sm.State()))
	if sessions != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := sessions.Put(shutdownCtx, *sessionID, sm.Snapshot()); err != nil {
			logger.Warning(fmt.Sprintf("caching final session snapshot: %s", err))
		}
		sessions.Close()
	}
}
