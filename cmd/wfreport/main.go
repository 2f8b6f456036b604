// Command wfreport reports on workflow runs submitted to a workflow
// execution server.
//
// Usage:
//
//	wfreport status  [flags]   report workflow counts by job group and status
//	wfreport batches [flags]   list submission batches and their sizes
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.temporal.io/sdk/client"

	"github.com/crestline-bio/wfreport/internal/config"
	"github.com/crestline-bio/wfreport/internal/cromwell"
	"github.com/crestline-bio/wfreport/internal/observability"
	"github.com/crestline-bio/wfreport/internal/query"
	"github.com/crestline-bio/wfreport/internal/temporalapi"
)

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	switch os.Args[1] {
	case "status", "st":
		cmdStatus(os.Args[2:])
	case "batches":
		cmdBatches(os.Args[2:])
	default:
		usage()
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: wfreport <status|batches> [flags]")
	os.Exit(1)
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "wfreport: "+format+"\n", args...)
	os.Exit(1)
}

// setup loads config, initializes logging, and builds the pipeline over the
// configured backend. The returned closer releases backend resources.
func setup() (*query.Pipeline, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger := observability.InitLogger(cfg.LogLevel, cfg.LogFormat)

	var shutdownTracer func(context.Context) error
	if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != "" {
		shutdownTracer, err = observability.InitTracer(context.Background(), "wfreport")
		if err != nil {
			return nil, nil, err
		}
	}

	var api query.WorkflowAPI
	closer := func() {
		if shutdownTracer != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownTracer(ctx)
		}
	}

	switch cfg.Backend {
	case config.BackendTemporal:
		c, err := client.Dial(client.Options{
			HostPort: cfg.Server,
			Logger:   observability.NewTemporalSlogAdapter(logger),
		})
		if err != nil {
			return nil, nil, fmt.Errorf("dial temporal server: %w", err)
		}
		api = temporalapi.New(c)
		inner := closer
		closer = func() {
			c.Close()
			inner()
		}
	default:
		var opts []cromwell.Option
		if cfg.Token != "" {
			opts = append(opts, cromwell.WithToken(cfg.Token))
		}
		api = cromwell.New(cfg.Server, cfg.APIVersion, opts...)
	}

	metrics, err := observability.NewMetrics()
	if err != nil {
		return nil, nil, fmt.Errorf("init metrics: %w", err)
	}

	pipeline := query.New(api, logger,
		query.WithMetrics(metrics),
		query.WithFetchConcurrency(cfg.FetchConcurrency),
	)
	return pipeline, closer, nil
}
