package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ifscdir/ifscdir/internal/config"
	"github.com/ifscdir/ifscdir/internal/database"
	"github.com/ifscdir/ifscdir/internal/directory"
	"github.com/ifscdir/ifscdir/internal/ingest"
	"github.com/ifscdir/ifscdir/internal/logging"
	"github.com/ifscdir/ifscdir/internal/web"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// CLI flags
var (
	settings  config.Settings
	verbosity int
	replace   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ifscdir",
		Short: "ifscdir - Indian bank branch directory server",
		Long:  `ifscdir loads a CSV snapshot of Indian bank branches into SQLite and serves it over REST and GraphQL.`,
		RunE:  runServe,
	}

	rootCmd.PersistentFlags().StringVarP(&settings.DBPath, "db", "d", config.DefaultDBPath, "SQLite database path (or set DB_PATH env var)")
	rootCmd.PersistentFlags().StringVarP(&settings.CSVPath, "csv", "c", config.DefaultCSVPath, "Branch CSV source path (or set CSV_PATH env var)")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v debug, -vv trace)")
	rootCmd.PersistentFlags().StringVar(&settings.LogFile, "log-file", "", "Also log to this file with rotation")

	rootCmd.Flags().IntVarP(&settings.Port, "port", "p", 0, "HTTP server port (required, or set PORT env var)")
	rootCmd.Flags().StringVarP(&settings.Bind, "bind", "b", "", "IP address to bind to (e.g., 127.0.0.1, 0.0.0.0)")
	rootCmd.Flags().StringVarP(&settings.AllowSubnet, "allow-subnet", "a", "", "CIDR subnet allowed to connect (e.g., 192.168.1.0/24)")
	rootCmd.Flags().BoolVar(&settings.GraphQL, "graphql", true, "Mount the /graphql endpoint")

	loadCmd := &cobra.Command{
		Use:   "load",
		Short: "Load the branch CSV into the database and exit",
		RunE:  runLoad,
	}
	loadCmd.Flags().BoolVar(&replace, "replace", false, "Truncate and reload even if the store is already populated")
	rootCmd.AddCommand(loadCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("ifscdir %s (commit: %s, built: %s)\n", version, commit, date)
		},
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := settings.ApplyEnv(); err != nil {
		return err
	}
	if settings.Port == 0 {
		return fmt.Errorf("--port flag or PORT environment variable is required")
	}
	if settings.Bind != "" {
		if ip := net.ParseIP(settings.Bind); ip == nil {
			return fmt.Errorf("invalid bind address: %s", settings.Bind)
		}
	}

	var allowedNet *net.IPNet
	if settings.AllowSubnet != "" {
		_, parsedNet, err := net.ParseCIDR(settings.AllowSubnet)
		if err != nil {
			return fmt.Errorf("invalid allow-subnet CIDR: %s", settings.AllowSubnet)
		}
		allowedNet = parsedNet
	}

	logging.Setup(verbosity, settings.LogFile)

	if (settings.Bind == "" || settings.Bind == "0.0.0.0" || settings.Bind == "::") && settings.AllowSubnet == "" {
		log.Warn().Msg("Server is accessible from all interfaces without subnet restrictions. Consider using --bind or --allow-subnet.")
	}

	log.Info().
		Str("version", version).
		Int("port", settings.Port).
		Str("bind", settings.Bind).
		Str("database", settings.DBPath).
		Str("csv", settings.CSVPath).
		Msg("Starting ifscdir")

	db, err := openStore()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	// Ingest before serving: the store must be fully published before any
	// read traffic. Startup loads only when the store is empty; use the
	// load subcommand with --replace for an explicit reload.
	loader := ingest.New(db)
	report, err := loader.Load(settings.CSVPath, ingest.Options{})
	if err != nil {
		log.Fatal().Err(err).Msg("Data load failed")
	}
	if report.SkippedExisting {
		log.Info().Msg("Serving existing dataset")
	}

	svc := directory.New(db)
	server, err := web.NewServer(svc, settings.Port, settings.Bind, allowedNet, config.DefaultTimeouts(), settings.GraphQL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create web server")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	if err := server.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server error")
	}

	log.Info().Msg("ifscdir stopped")
	return nil
}

func runLoad(cmd *cobra.Command, args []string) error {
	if err := settings.ApplyEnv(); err != nil {
		return err
	}

	logging.Setup(verbosity, settings.LogFile)

	db, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	loader := ingest.New(db)
	report, err := loader.Load(settings.CSVPath, ingest.Options{Replace: replace})
	if err != nil {
		return err
	}

	if report.SkippedExisting {
		fmt.Println("Store already populated; rerun with --replace to reload.")
		return nil
	}
	fmt.Printf("Loaded %d banks and %d branches (%d duplicates removed, %d malformed rows skipped)\n",
		report.BanksLoaded, report.BranchesLoaded, report.DuplicatesRemoved, report.MalformedSkipped)
	return nil
}

func openStore() (*database.DB, error) {
	db, err := database.New(settings.DBPath)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
