// Command cgr-live runs the live re-planning loop over a contact plan
// loaded from a local file, a remote SODA dataset (with local fallback),
// or the synthetic generator. It serves Prometheus metrics and can trace
// planning cycles via OpenTelemetry.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/signalsfoundry/contact-graph-router/core"
	"github.com/signalsfoundry/contact-graph-router/internal/ingest"
	"github.com/signalsfoundry/contact-graph-router/internal/live"
	"github.com/signalsfoundry/contact-graph-router/internal/logging"
	"github.com/signalsfoundry/contact-graph-router/internal/observability"
	"github.com/signalsfoundry/contact-graph-router/internal/synth"
	"github.com/signalsfoundry/contact-graph-router/model"
)

func main() {
	source := flag.String("source", "local", "contact plan source: local, api, or synth")
	contactsPath := flag.String("contacts", "data/contacts.csv", "local contact plan path (also the api fallback)")
	dataset := flag.String("dataset", "", "SODA dataset id for -source api")
	appToken := flag.String("app-token", "", "SODA application token")

	src := flag.Int("src", 100, "source node id")
	dst := flag.Int("dst", 200, "destination node id")
	bundleBytes := flag.Float64("bytes", 5e7, "bundle size in bytes")
	expiry := flag.Float64("expiry", 0, "relative TTL in seconds (0 = none)")
	tick := flag.Float64("tick", 10, "simulated clock step per cycle in seconds")
	period := flag.Float64("period", 0, "orbital period for plan periodization in seconds")
	autoPeriod := flag.Bool("auto-period", true, "infer the period from the plan span when -period is unset")
	kAlt := flag.Int("k", 3, "diversified alternatives per cycle")
	cycles := flag.Int("cycles", 0, "number of cycles to run (0 = until interrupted)")

	consume := flag.Bool("consume", false, "consume capacity used by the best route")
	learnEWMA := flag.Bool("learn-ewma", false, "learn a first-hop wait penalty between cycles")
	alpha := flag.Float64("alpha", 0.2, "EWMA smoothing coefficient in [0,1]")
	lambda := flag.Float64("lambda", 1.0, "EWMA penalty weight in seconds of setup per second of wait")

	synthN := flag.Int("synth-n", 8, "intermediate satellites for -source synth")
	seed := flag.Int64("seed", 0, "synthetic generator seed (0 = time-based)")

	metricsAddr := flag.String("metrics-addr", ":9090", "HTTP address for Prometheus /metrics (empty disables)")
	interval := flag.Duration("interval", time.Second, "wall-clock pause between cycles")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx := context.Background()

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.String("error", err.Error()))
		os.Exit(1)
	}

	collector, err := observability.NewRoutingCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise metrics collector", logging.String("error", err.Error()))
		os.Exit(1)
	}
	metricsSrv := serveMetrics(*metricsAddr, collector, log)

	cfg := live.Config{
		Src:           *src,
		Dst:           *dst,
		BundleBytes:   *bundleBytes,
		ExpiryRel:     *expiry,
		Tick:          *tick,
		Period:        *period,
		AutoPeriod:    *autoPeriod && *period <= 0,
		KAlternatives: *kAlt,
		Cycles:        *cycles,
		Consume:       *consume,
		LearnEWMA:     *learnEWMA,
		Alpha:         *alpha,
		Lambda:        *lambda,
		CycleInterval: *interval,
	}

	plan, err := loadPlan(ctx, *source, *contactsPath, *dataset, *appToken, *synthN, *seed, &cfg, log)
	if err != nil {
		log.Error(ctx, "failed to load contact plan", logging.String("error", err.Error()))
		os.Exit(1)
	}

	loop, err := live.New(plan, cfg,
		live.WithLogger(log),
		live.WithCollector(collector),
	)
	if err != nil {
		log.Error(ctx, "failed to build live loop", logging.String("error", err.Error()))
		os.Exit(1)
	}

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	log.Info(runCtx, "starting live re-planning loop",
		logging.String("source", *source),
		logging.Int("contacts", len(plan)),
		logging.Int("src", cfg.Src),
		logging.Int("dst", cfg.Dst),
		logging.Float64("period", cfg.Period),
	)

	if err := loop.Run(runCtx); err != nil {
		log.Error(runCtx, "live loop failed", logging.String("error", err.Error()))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	observability.ShutdownWithTimeout(ctx, shutdownTracing, log)
}

// loadPlan resolves the contact plan for the requested source. The api
// source falls back to the local plan file when the dataset yields no
// contacts; the synth source may override endpoints and period with the
// generated ones when the caller kept the defaults.
func loadPlan(ctx context.Context, source, contactsPath, dataset, appToken string, synthN int, seed int64, cfg *live.Config, log logging.Logger) ([]model.Contact, error) {
	switch source {
	case "api":
		if dataset == "" {
			return nil, fmt.Errorf("-dataset is required with -source api")
		}
		plan, skipped, err := ingest.FetchSODA(ctx, ingest.SODAConfig{DatasetID: dataset, AppToken: appToken})
		if err != nil {
			log.Warn(ctx, "SODA fetch failed; falling back to local plan",
				logging.String("dataset", dataset),
				logging.String("error", err.Error()),
			)
		} else if len(plan) == 0 {
			log.Warn(ctx, "SODA dataset empty; falling back to local plan", logging.String("dataset", dataset))
		} else {
			log.Info(ctx, "loaded contacts from SODA",
				logging.String("dataset", dataset),
				logging.Int("contacts", len(plan)),
				logging.Int("skipped_rows", skipped),
			)
			return plan, nil
		}
		return loadLocal(contactsPath, log)

	case "synth":
		p := synth.Generate(synthN, seed)
		if cfg.Src == 100 && cfg.Dst == 200 {
			cfg.Src, cfg.Dst = p.Src, p.Dst
		}
		if cfg.Period <= 0 {
			cfg.Period = p.Period
		}
		log.Info(context.Background(), "generated synthetic plan",
			logging.Int("contacts", len(p.Contacts)),
			logging.Float64("period", p.Period),
		)
		return p.Contacts, nil

	case "local":
		return loadLocal(contactsPath, log)

	default:
		return nil, fmt.Errorf("unknown source %q (want local, api, or synth)", source)
	}
}

func loadLocal(path string, log logging.Logger) ([]model.Contact, error) {
	plan, skipped, err := ingest.LoadPlanFile(path)
	if err != nil {
		return nil, err
	}
	if len(plan) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ingest.ErrNoContacts)
	}
	log.Info(context.Background(), "loaded contact plan",
		logging.String("path", path),
		logging.Int("contacts", len(plan)),
		logging.Int("skipped_rows", skipped),
		logging.Float64("span", core.AutoPeriod(plan)),
	)
	return plan, nil
}

func serveMetrics(addr string, collector *observability.RoutingCollector, log logging.Logger) *http.Server {
	if addr == "" || collector == nil {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn(context.Background(), "metrics server exited", logging.String("error", err.Error()))
		}
	}()

	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}
