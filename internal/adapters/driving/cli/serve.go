package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	auditsqlite "github.com/custodia-labs/workplace-mcp/internal/adapters/driven/audit/sqlite"
	"github.com/custodia-labs/workplace-mcp/internal/adapters/driven/auth/cequence"
	"github.com/custodia-labs/workplace-mcp/internal/adapters/driven/auth/descope"
	"github.com/custodia-labs/workplace-mcp/internal/adapters/driven/cache/memory"
	configfile "github.com/custodia-labs/workplace-mcp/internal/adapters/driven/config/file"
	"github.com/custodia-labs/workplace-mcp/internal/adapters/driving/mcp"
	"github.com/custodia-labs/workplace-mcp/internal/connectors/confluence"
	"github.com/custodia-labs/workplace-mcp/internal/connectors/gdrive"
	"github.com/custodia-labs/workplace-mcp/internal/connectors/notion"
	"github.com/custodia-labs/workplace-mcp/internal/connectors/slack"
	"github.com/custodia-labs/workplace-mcp/internal/core/domain"
	"github.com/custodia-labs/workplace-mcp/internal/core/ports/driven"
	"github.com/custodia-labs/workplace-mcp/internal/core/services"
	"github.com/custodia-labs/workplace-mcp/internal/logger"
)

var serveStdio bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP gateway server",
	Long: `Start the Model Context Protocol server.

By default the server listens for streamable HTTP connections on the
configured port, with per-request bearer authentication. Use --stdio for
a local stdio transport instead (for Claude Desktop and similar hosts;
pair it with AUTH_ENABLED=false or a development identity).

Examples:
  # HTTP mode (default)
  workplace-mcp serve

  # Stdio mode for a local MCP host
  AUTH_ENABLED=false workplace-mcp serve --stdio`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveStdio, "stdio", false, "serve over stdio instead of HTTP")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	store, err := configfile.NewStore(os.Getenv("WORKPLACE_MCP_CONFIG_DIR"))
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	defer store.Close()
	cfg := store.Config()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server, closers, err := buildServer(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		for _, c := range closers {
			c.Close() //nolint:errcheck
		}
	}()

	if err := store.Watch(func(configfile.Config) {
		logger.Warn("configuration changed on disk; restart to apply provider changes")
	}); err != nil {
		logger.Warn("config watch unavailable: %v", err)
	}

	if serveStdio {
		logger.Info("serving MCP over stdio")
		return server.Run(ctx)
	}
	return server.RunHTTP(ctx, fmt.Sprintf(":%d", cfg.Server.Port))
}

type closer interface{ Close() error }

// buildServer wires the configured adapters into an MCP server.
func buildServer(ctx context.Context, cfg configfile.Config) (*mcp.Server, []closer, error) {
	var closers []closer

	providers, err := buildProviders(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if len(providers) == 0 {
		logger.Warn("no provider credentials configured; every source will be reported unavailable")
	}

	var cache driven.ResultCache
	if cfg.Cache.Enabled {
		cache = memory.New()
	}

	gatewayCfg := services.DefaultGatewayConfig()
	gatewayCfg.SearchTTL = cfg.Cache.SearchTTL()
	gatewayCfg.DocumentTTL = cfg.Cache.DocumentTTL()
	gatewayCfg.UpdatesTTL = cfg.Cache.UpdatesTTL()
	gateway := services.NewGateway(providers, cache, gatewayCfg)

	var verifier driven.TokenVerifier
	if cfg.Server.AuthEnabled {
		if cfg.Descope.ProjectID == "" {
			return nil, nil, fmt.Errorf("auth is enabled but DESCOPE_PROJECT_ID is not set")
		}
		verifier = descope.NewVerifier(cfg.Descope.ProjectID)
	}

	var proxy driven.ProxyVerifier
	if cfg.Server.ProxyEnabled {
		if cfg.Cequence.SigningSecret == "" {
			return nil, nil, fmt.Errorf("proxy gate is enabled but CEQUENCE_SIGNING_SECRET is not set")
		}
		proxy = cequence.NewVerifier(cfg.Cequence.SigningSecret)
	}

	audit, err := auditsqlite.NewStore(os.Getenv("WORKPLACE_MCP_DATA_DIR"))
	if err != nil {
		return nil, nil, fmt.Errorf("opening audit store: %w", err)
	}
	closers = append(closers, audit)

	authGate := services.NewAuthGate(verifier, proxy, audit, cfg.Server.AuthEnabled)

	kinds := make([]domain.ProviderKind, 0, len(providers))
	for kind := range providers {
		kinds = append(kinds, kind)
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Gateway: gateway,
		Auth:    authGate,
		Sources: kinds,
	})
	if err != nil {
		return nil, nil, err
	}
	return server, closers, nil
}

// buildProviders constructs an adapter for every source with credentials.
func buildProviders(ctx context.Context, cfg configfile.Config) (driven.ProviderSet, error) {
	providers := make(driven.ProviderSet)

	if cfg.Google.TokenPath != "" {
		ts, err := googleTokenSource(cfg.Google.TokenPath)
		if err != nil {
			return nil, fmt.Errorf("google drive: %w", err)
		}
		drive, err := gdrive.New(ctx, ts)
		if err != nil {
			return nil, fmt.Errorf("google drive: %w", err)
		}
		providers[domain.ProviderGoogleDrive] = drive
		logger.Info("google drive source configured")
	}

	if cfg.Notion.Token != "" {
		providers[domain.ProviderNotion] = notion.New(cfg.Notion.Token)
		logger.Info("notion source configured")
	}

	if cfg.Slack.Token != "" {
		providers[domain.ProviderSlack] = slack.New(cfg.Slack.Token)
		logger.Info("slack source configured")
	}

	if cfg.Confluence.BaseURL != "" && cfg.Confluence.Token != "" {
		providers[domain.ProviderConfluence] = confluence.New(
			cfg.Confluence.BaseURL, cfg.Confluence.Email, cfg.Confluence.Token)
		logger.Info("confluence source configured")
	}

	return providers, nil
}

// googleTokenSource loads a stored OAuth token from disk.
func googleTokenSource(path string) (oauth2.TokenSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading token file: %w", err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("parsing token file: %w", err)
	}
	return oauth2.StaticTokenSource(&token), nil
}
