package main

import (
	"github.com/felixgeelhaar/mcp-go"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/sotsync/internal/adapters/session"
	mcptools "github.com/felixgeelhaar/sotsync/internal/mcp"
	"github.com/felixgeelhaar/sotsync/internal/validation"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server for AI agent integration",
	Long: `Start a Model Context Protocol (MCP) server exposing sotsync to AI agents.

Available tools:
  - sotsync_parse     Parse a running configuration
  - sotsync_sync      Reconcile device sections (apply requires confirm)
  - sotsync_onboard   Run the onboarding chains for a device
  - sotsync_devices   List inventory devices
  - sotsync_plugins   List plugin handlers, bundles and sections
  - sotsync_status    Get version and inventory status

Commands are only applied when --out-dir is set; each device's batch is
written to <out-dir>/<device>.cmds.

Examples:
  sotsync mcp --inventory sot.yaml                    # Start stdio MCP server
  sotsync mcp --inventory sot.yaml --http :8080       # Start HTTP MCP server
  sotsync mcp --inventory sot.yaml --out-dir pending  # Allow applying commands`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runMCP(cmd, globalOptions(cmd), mcpOptions{
			http:      mcpHTTP,
			inventory: mcpInventory,
			outDir:    mcpOutDir,
		})
	},
}

var (
	mcpHTTP      string
	mcpInventory string
	mcpOutDir    string
)

type mcpOptions struct {
	http      string
	inventory string
	outDir    string
}

func init() {
	mcpCmd.Flags().StringVar(&mcpHTTP, "http", "", "Start HTTP server on address (e.g., :8080)")
	mcpCmd.Flags().StringVarP(&mcpInventory, "inventory", "i", "", "inventory file (YAML or TOML)")
	mcpCmd.Flags().StringVar(&mcpOutDir, "out-dir", "", "write applied <device>.cmds files here")
	rootCmd.AddCommand(mcpCmd)
}

// newMCPServer builds the server with every tool registered.
func newMCPServer(rt runtimeOptions, opts mcpOptions) (*mcp.Server, error) {
	rt.inventory = opts.inventory
	if opts.outDir != "" {
		rt.executor = session.NewFileExecutor(rt.fs, opts.outDir)
	}
	a, _, err := newApp(rt)
	if err != nil {
		return nil, err
	}

	srv := mcp.NewServer(mcp.ServerInfo{
		Name:    "sotsync",
		Version: version,
	})
	mcptools.RegisterAll(srv, a, mcptools.VersionInfo{
		Version:   version,
		Commit:    commit,
		BuildDate: buildDate,
	})
	return srv, nil
}

func runMCP(cmd *cobra.Command, rt runtimeOptions, opts mcpOptions) error {
	if opts.http != "" {
		if err := validation.ValidateListenAddress(opts.http); err != nil {
			return err
		}
	}

	srv, err := newMCPServer(rt, opts)
	if err != nil {
		return err
	}

	// Serve based on transport
	if opts.http != "" {
		return mcp.ServeHTTP(cmd.Context(), srv, opts.http)
	}
	return mcp.ServeStdio(cmd.Context(), srv)
}
