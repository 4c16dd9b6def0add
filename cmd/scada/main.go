// Scada - home heating controller.
//
// The Scada runs the house: it reads sensors and the power meter, drives
// the relays, reports to the cloud supervisor (the Atn) over the
// gridworks broker and takes relay dispatches from it while a dispatch
// contract is alive. Without a live contract the home-alone fallback is in
// control.
//
// Configuration is read from configs/config.yaml, or the file named by
// SCADA_CONFIG. The house layout is read from scada.layout_file.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/nerrad567/gray-logic-scada/internal/actors"
	"github.com/nerrad567/gray-logic-scada/internal/drivers"
	"github.com/nerrad567/gray-logic-scada/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-scada/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-scada/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-scada/internal/layout"
	"github.com/nerrad567/gray-logic-scada/internal/scada"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Cancel on Ctrl+C and SIGTERM for a graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run wires and runs the Scada until ctx is cancelled.
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting scada",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log = logging.New(cfg.Logging, version)
	log.Info("configuration loaded",
		"path", configPath,
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	l, err := layout.Load(cfg.Scada.LayoutFile)
	if err != nil {
		return fmt.Errorf("loading layout: %w", err)
	}
	log.Info("layout loaded",
		"path", cfg.Scada.LayoutFile,
		"nodes", len(l.Nodes()),
		"scada", l.Scada().Alias,
	)

	reg := drivers.NewSimRegistry()
	if err := reg.Check(l); err != nil {
		return fmt.Errorf("checking drivers: %w", err)
	}

	// Diagnostics go to InfluxDB when enabled
	var metrics scada.Metrics
	influxClient, err := influxdb.Connect(cfg.InfluxDB, l.Scada().Alias)
	switch {
	case errors.Is(err, influxdb.ErrDisabled):
		log.Info("InfluxDB disabled")
	case err != nil:
		return fmt.Errorf("connecting to InfluxDB: %w", err)
	default:
		influxClient.SetOnError(func(err error) {
			log.Warn("InfluxDB write failed", "error", err)
		})
		defer func() {
			log.Info("closing InfluxDB")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		metrics = influxClient
		log.Info("InfluxDB connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
	}

	s, err := scada.New(l, cfg, scada.Options{Logger: log, Metrics: metrics})
	if err != nil {
		return fmt.Errorf("creating scada: %w", err)
	}

	runnables, err := actors.Build(l, s.Runtime(), reg, actors.Options{
		Logger:                    log,
		AsyncPowerReportThreshold: cfg.Scada.AsyncPowerReportThreshold,
	})
	if err != nil {
		return fmt.Errorf("building actors: %w", err)
	}
	for _, r := range runnables {
		if err := s.AddActors(r); err != nil {
			return fmt.Errorf("adding actor %s: %w", r.Name(), err)
		}
	}
	log.Info("actors built", "count", len(runnables))

	if err := s.Start(); err != nil {
		return fmt.Errorf("starting scada: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, stopping")
		s.Stop()
		return nil
	})
	g.Go(func() error {
		if err := s.Join(); err != nil {
			return fmt.Errorf("scada stopped: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	stats := s.Stats()
	log.Info("scada stopped",
		"processed", stats.Processed,
		"rejected", stats.Rejected,
	)
	return nil
}

// getConfigPath returns the configuration file path.
// Uses SCADA_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("SCADA_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
