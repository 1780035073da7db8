package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/liftlog/liftlog-mcp/internal/logging"
)

var (
	verbosity            int
	dbPath               string
	mcpPort              int
	syncInterval         time.Duration
	tokenRefreshInterval time.Duration
	catalogSyncInterval  time.Duration
	defaultPeriod        string
	prTierKg             float64
	timezone             string
	noSync               bool
	forceReauth          bool
)

var rootCmd = &cobra.Command{
	Use:   "liftlog-mcp",
	Short: "LiftLog MCP Server - expose your workout analytics via Model Context Protocol",
	Long: `LiftLog MCP Server syncs your workout log from the LiftLog backend to a
local SQLite database and exposes derived training analytics via the
Model Context Protocol (MCP) for AI assistants.

The server runs with:
- Automatic authentication via OAuth (prompts on first run)
- Background token refresh to keep authentication valid
- Periodic workout and exercise catalog sync from the backend
- MCP server exposing training stats, volume breakdowns, PRs, and comparisons

On first run, you will be prompted for your LiftLog API credentials.
Get these from your LiftLog account's developer settings.

Use --force-reauth to re-enter credentials and re-authenticate.
`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Set up logging based on verbosity before any command runs
		logging.Setup(logging.Level(verbosity))
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		rtCfg := &RuntimeConfig{
			DBPath:               dbPath,
			MCPPort:              mcpPort,
			SyncInterval:         syncInterval,
			TokenRefreshInterval: tokenRefreshInterval,
			CatalogSyncInterval:  catalogSyncInterval,
			DefaultPeriod:        defaultPeriod,
			PRTierKg:             prTierKg,
			Timezone:             timezone,
			NoSync:               noSync,
			ForceReauth:          forceReauth,
		}

		return Run(rtCfg)
	},
}

func init() {
	// Logging verbosity
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase verbosity (-v for debug, -vv for trace with HTTP headers)")

	// Runtime settings as CLI flags
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "liftlog.db", "path to SQLite database file")
	rootCmd.PersistentFlags().IntVarP(&mcpPort, "port", "p", 8080, "MCP server port (0 for stdio mode)")
	rootCmd.PersistentFlags().DurationVar(&syncInterval, "sync-interval", 15*time.Minute, "interval between workout syncs")
	rootCmd.PersistentFlags().DurationVar(&tokenRefreshInterval, "token-refresh-interval", 30*time.Minute, "interval between token refresh checks")
	rootCmd.PersistentFlags().DurationVar(&catalogSyncInterval, "catalog-sync-interval", time.Hour, "interval between exercise catalog syncs")

	// Analytics settings
	rootCmd.PersistentFlags().StringVar(&defaultPeriod, "period", "last30Days", "initial analysis period (last7Days, last30Days, last90Days, thisMonth, lastMonth, thisYear, lastYear, allTime)")
	rootCmd.PersistentFlags().Float64Var(&prTierKg, "pr-tier-kg", 2.5, "weight tier size in kg for rep PR detection")
	rootCmd.PersistentFlags().StringVar(&timezone, "timezone", "", "IANA timezone for calendar bucketing (default: system local)")

	// Offline mode
	rootCmd.PersistentFlags().BoolVar(&noSync, "no-sync", false, "run MCP server only without backend sync (offline mode)")

	// Force re-authentication
	rootCmd.PersistentFlags().BoolVar(&forceReauth, "force-reauth", false, "force OAuth re-authentication, clearing existing tokens")
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
