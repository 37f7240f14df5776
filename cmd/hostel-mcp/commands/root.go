package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"hostel-mcp/internal/config"
	"hostel-mcp/internal/logging"
	"hostel-mcp/internal/mcp"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose bool
	cfg     *config.AppConfig
)

var rootCmd = &cobra.Command{
	Use:   "hostel-mcp",
	Short: "hostel-mcp turns hostel attendance data into narrative summaries",
	Long: `An attendance analytics server that computes statistics, temporal patterns and anomalies
for late check-ins, leaves and non-checked-in students, and explains them in plain language.
Runs as an MCP Server over stdio by default; see 'serve' and 'analyze' for the other front ends.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(verbose)

		// Load configuration
		var err error
		cfg, err = config.Load()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load configuration")
		}

		log.Info().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Str("command", cmd.Name()).
			Msg("hostel-mcp starting")
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		log.Info().Msg("MCP Server starting Stdio loop")
		return mcp.NewServer(cfg, Version).Serve(ctx)
	},
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.AddCommand(serveCmd, analyzeCmd)
}
