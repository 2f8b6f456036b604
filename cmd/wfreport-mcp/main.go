// Command wfreport-mcp runs the MCP tool server for workflow reporting.
// Uses stdio transport for integration with AI assistants.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.temporal.io/sdk/client"

	"github.com/crestline-bio/wfreport/internal/config"
	"github.com/crestline-bio/wfreport/internal/cromwell"
	"github.com/crestline-bio/wfreport/internal/mcpserver"
	"github.com/crestline-bio/wfreport/internal/observability"
	"github.com/crestline-bio/wfreport/internal/query"
	"github.com/crestline-bio/wfreport/internal/temporalapi"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := observability.InitLogger(cfg.LogLevel, cfg.LogFormat)

	var api query.WorkflowAPI
	switch cfg.Backend {
	case config.BackendTemporal:
		c, err := client.Dial(client.Options{
			HostPort: cfg.Server,
			Logger:   observability.NewTemporalSlogAdapter(logger),
		})
		if err != nil {
			log.Fatalf("dial temporal server: %v", err)
		}
		defer c.Close()
		api = temporalapi.New(c)
	default:
		var opts []cromwell.Option
		if cfg.Token != "" {
			opts = append(opts, cromwell.WithToken(cfg.Token))
		}
		api = cromwell.New(cfg.Server, cfg.APIVersion, opts...)
	}

	pipeline := query.New(api, logger,
		query.WithFetchConcurrency(cfg.FetchConcurrency))

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "wfreport",
		Version: "v1.0.0",
	}, nil)
	mcpserver.RegisterTools(server, pipeline)

	fmt.Fprintln(os.Stderr, "wfreport-mcp listening on stdio")
	if err := server.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
		log.Fatalf("mcp server error: %v", err)
	}
}
