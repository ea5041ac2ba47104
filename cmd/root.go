// file: cmd/root.go
// version: 2.0.0
// guid: 6a7b8c9d-0e1f-2a3b-4c5d-6e7f8a9b0c1d

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jdfalk/fund-discovery/internal/catalog"
	"github.com/jdfalk/fund-discovery/internal/config"
	"github.com/jdfalk/fund-discovery/internal/models"
	"github.com/jdfalk/fund-discovery/internal/server"
)

var cfgFile string
var storePath string
var storeType string
var enableSQLite bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fund-discovery",
	Short: "Fund search and portfolio comparison backend",
	Long: `Fund Discovery serves fuzzy fund search, typeahead suggestions, and
portfolio overlap/correlation comparison over a local fund catalog.

Seed the catalog from a JSON fixture, then start the HTTP server.`,
}

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  `Start the HTTP server exposing the search and comparison API.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := catalog.InitializeStore(config.AppConfig.StoreType, config.AppConfig.StorePath, config.AppConfig.EnableSQLite); err != nil {
			return fmt.Errorf("failed to initialize catalog store: %w", err)
		}
		defer catalog.CloseStore()

		fmt.Printf("Using catalog store: %s (%s)\n", config.AppConfig.StorePath, config.AppConfig.StoreType)

		srv, err := server.NewServer(catalog.GlobalStore, config.AppConfig)
		if err != nil {
			return fmt.Errorf("failed to create server: %w", err)
		}

		cfg := server.ServerConfig{
			Port:         "8080",
			Host:         "localhost",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
		if port := cmd.Flag("port").Value.String(); port != "" {
			cfg.Port = port
		}
		if host := cmd.Flag("host").Value.String(); host != "" {
			cfg.Host = host
		}
		if rt := cmd.Flag("read-timeout").Value.String(); rt != "" {
			if d, err := time.ParseDuration(rt); err == nil {
				cfg.ReadTimeout = d
			}
		}
		if wt := cmd.Flag("write-timeout").Value.String(); wt != "" {
			if d, err := time.ParseDuration(wt); err == nil {
				cfg.WriteTimeout = d
			}
		}
		if it := cmd.Flag("idle-timeout").Value.String(); it != "" {
			if d, err := time.ParseDuration(it); err == nil {
				cfg.IdleTimeout = d
			}
		}

		return srv.Start(cfg)
	},
}

// seedFixture is the JSON layout accepted by the seed command.
type seedFixture struct {
	Funds      []models.Fund                `json:"funds"`
	NavHistory map[string][]models.NavPoint `json:"nav_history"`
}

// seedCmd represents the seed command
var seedCmd = &cobra.Command{
	Use:   "seed [fixture.json]",
	Short: "Load funds and NAV history from a JSON fixture",
	Long: `Load the catalog from a JSON fixture containing funds and optional
per-fund NAV history. Existing records with the same fund id are replaced.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := catalog.InitializeStore(config.AppConfig.StoreType, config.AppConfig.StorePath, config.AppConfig.EnableSQLite); err != nil {
			return fmt.Errorf("failed to initialize catalog store: %w", err)
		}
		defer catalog.CloseStore()

		fmt.Printf("Using catalog store: %s (%s)\n", config.AppConfig.StorePath, config.AppConfig.StoreType)

		fixture, err := loadSeedFixture(args[0])
		if err != nil {
			return err
		}

		ctx := context.Background()
		for i := range fixture.Funds {
			if err := catalog.GlobalStore.UpsertFund(ctx, &fixture.Funds[i]); err != nil {
				return fmt.Errorf("failed to store fund %s: %w", fixture.Funds[i].FundID, err)
			}
		}
		fmt.Printf("Loaded %d funds\n", len(fixture.Funds))

		navCount := 0
		for fundID, points := range fixture.NavHistory {
			if err := catalog.GlobalStore.PutNavHistory(ctx, fundID, points); err != nil {
				return fmt.Errorf("failed to store nav history for %s: %w", fundID, err)
			}
			navCount += len(points)
		}
		if navCount > 0 {
			fmt.Printf("Loaded %d nav points across %d funds\n", navCount, len(fixture.NavHistory))
		}
		return nil
	},
}

// loadSeedFixture parses and validates a seed file.
func loadSeedFixture(path string) (*seedFixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}
	var fixture seedFixture
	if err := json.Unmarshal(data, &fixture); err != nil {
		return nil, fmt.Errorf("invalid fixture JSON: %w", err)
	}
	if len(fixture.Funds) == 0 {
		return nil, fmt.Errorf("fixture contains no funds")
	}
	seen := make(map[string]struct{}, len(fixture.Funds))
	for i := range fixture.Funds {
		id := fixture.Funds[i].FundID
		if id == "" {
			return nil, fmt.Errorf("fund at index %d has no fund_id", i)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("duplicate fund_id %s in fixture", id)
		}
		seen[id] = struct{}{}
	}
	for fundID := range fixture.NavHistory {
		if _, ok := seen[fundID]; !ok {
			return nil, fmt.Errorf("nav_history references unknown fund %s", fundID)
		}
	}
	return &fixture, nil
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.fund-discovery.yaml)")
	rootCmd.PersistentFlags().StringVar(&storePath, "store", "funds.pebble", "path to catalog store (default: funds.pebble for PebbleDB)")
	rootCmd.PersistentFlags().StringVar(&storeType, "store-type", "pebble", "catalog store type: pebble (default) or sqlite")
	rootCmd.PersistentFlags().BoolVar(&enableSQLite, "enable-sqlite3-i-know-the-risks", false, "enable SQLite3 store (WARNING: cross-compilation issues, PebbleDB recommended)")

	viper.BindPFlag("store_path", rootCmd.PersistentFlags().Lookup("store"))
	viper.BindPFlag("store_type", rootCmd.PersistentFlags().Lookup("store-type"))
	viper.BindPFlag("enable_sqlite3_i_know_the_risks", rootCmd.PersistentFlags().Lookup("enable-sqlite3-i-know-the-risks"))

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCmd)

	// Add serve command specific flags
	serveCmd.Flags().String("port", "8080", "port to run the API server on")
	serveCmd.Flags().String("host", "localhost", "host to bind the API server to")
	serveCmd.Flags().String("read-timeout", "15s", "read timeout (e.g. 15s, 1m)")
	serveCmd.Flags().String("write-timeout", "15s", "write timeout (e.g. 15s, 1m)")
	serveCmd.Flags().String("idle-timeout", "60s", "idle timeout (e.g. 60s, 2m)")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".fund-discovery")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}

	// Ensure store directory exists
	if storePath != "" {
		storeDir := filepath.Dir(storePath)
		if storeDir != "." {
			if err := os.MkdirAll(storeDir, 0755); err != nil {
				fmt.Printf("Error creating store directory: %v\n", err)
			}
		}
	}

	config.InitConfig()
}
