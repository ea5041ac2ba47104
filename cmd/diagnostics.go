// file: cmd/diagnostics.go
// version: 2.0.0
// guid: c8f6a0d4-2a8b-48cf-9d08-02cc9915d9fc

package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/cockroachdb/pebble/v2"
	"github.com/spf13/cobra"

	"github.com/jdfalk/fund-discovery/internal/catalog"
	"github.com/jdfalk/fund-discovery/internal/config"
)

var (
	diagnosticsCmd = &cobra.Command{
		Use:   "diagnostics",
		Short: "Debugging and cleanup helpers",
		Long:  "Diagnostic utilities for inspecting and repairing the fund catalog.",
	}

	deactivateCmd = &cobra.Command{
		Use:   "deactivate",
		Short: "Mark funds inactive by id",
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("yes")
			return runDeactivateFunds(args, force)
		},
	}

	queryCmd = &cobra.Command{
		Use:   "query",
		Short: "Inspect stored fund records",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			prefix, _ := cmd.Flags().GetString("prefix")
			raw, _ := cmd.Flags().GetBool("raw")
			return runDiagnosticsQuery(limit, prefix, raw)
		},
	}
)

func init() {
	deactivateCmd.Flags().Bool("yes", false, "Skip confirmation prompt")

	queryCmd.Flags().Int("limit", 5, "Number of records to display")
	queryCmd.Flags().String("prefix", "fund:", "Key prefix to inspect when --raw is set")
	queryCmd.Flags().Bool("raw", false, "Show raw Pebble key/value data (Pebble only)")

	diagnosticsCmd.AddCommand(deactivateCmd)
	diagnosticsCmd.AddCommand(queryCmd)

	rootCmd.AddCommand(diagnosticsCmd)
}

func ensureDiagnosticsStore() (func(), error) {
	if err := catalog.InitializeStore(
		config.AppConfig.StoreType,
		config.AppConfig.StorePath,
		config.AppConfig.EnableSQLite,
	); err != nil {
		return nil, fmt.Errorf("failed to initialize catalog store: %w", err)
	}

	cleanup := func() {
		catalog.CloseStore()
	}
	return cleanup, nil
}

func runDeactivateFunds(fundIDs []string, force bool) error {
	if len(fundIDs) == 0 {
		return errors.New("at least one fund id is required")
	}

	closer, err := ensureDiagnosticsStore()
	if err != nil {
		return err
	}
	defer closer()

	ctx := context.Background()
	if !force {
		confirmed, err := promptYesNo(fmt.Sprintf("Deactivate %d funds", len(fundIDs)))
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("Aborted. No funds deactivated.")
			return nil
		}
	}

	deactivated := 0
	for _, id := range fundIDs {
		fund, err := catalog.GlobalStore.GetFundByID(ctx, id)
		if err != nil {
			fmt.Printf("Failed to load %s: %v\n", id, err)
			continue
		}
		fund.IsActive = false
		if err := catalog.GlobalStore.UpsertFund(ctx, fund); err != nil {
			fmt.Printf("Failed to update %s: %v\n", id, err)
			continue
		}
		deactivated++
	}

	fmt.Printf("Deactivated %d funds. They no longer appear in search or comparison.\n", deactivated)
	return nil
}

func runDiagnosticsQuery(limit int, prefix string, raw bool) error {
	if limit <= 0 {
		return errors.New("limit must be positive")
	}

	if raw {
		if config.AppConfig.StoreType != "pebble" {
			return fmt.Errorf("raw inspection is only available for Pebble stores")
		}
		return runRawPebbleQuery(limit, prefix)
	}

	closer, err := ensureDiagnosticsStore()
	if err != nil {
		return err
	}
	defer closer()

	ctx := context.Background()
	funds, err := catalog.GlobalStore.GetAllActiveFunds(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch funds: %w", err)
	}
	if len(funds) == 0 {
		fmt.Println("No funds found.")
		return nil
	}
	if len(funds) > limit {
		funds = funds[:limit]
	}

	for i, fund := range funds {
		fmt.Printf("%2d. ID: %s\n", i+1, fund.FundID)
		fmt.Printf("    Name: %s\n", fund.Name)
		fmt.Printf("    House: %s\n", fund.FundHouse)
		fmt.Printf("    Category: %s / %s\n", fund.Category, fund.SubCategory)
		fmt.Printf("    NAV: %.2f  AUM: %.0f  Popularity: %.0f\n", fund.CurrentNav, fund.AUM, fund.Popularity)
		if len(fund.Tags) > 0 {
			fmt.Printf("    Tags: %s\n", strings.Join(fund.Tags, ", "))
		}
		fmt.Println("---")
	}

	return nil
}

func runRawPebbleQuery(limit int, prefix string) error {
	db, err := pebble.Open(config.AppConfig.StorePath, &pebble.Options{
		FormatMajorVersion: pebble.FormatNewest,
	})
	if err != nil {
		return fmt.Errorf("failed to open Pebble store: %w", err)
	}
	defer db.Close()

	iterOpts := &pebble.IterOptions{}
	if prefix != "" {
		iterOpts.LowerBound = []byte(prefix)
		iterOpts.UpperBound = append([]byte(prefix), 0xFF)
	}

	iter, err := db.NewIter(iterOpts)
	if err != nil {
		return fmt.Errorf("failed to create iterator: %w", err)
	}
	defer iter.Close()

	count := 0
	ok := iter.First()
	if prefix != "" {
		ok = iter.SeekGE([]byte(prefix))
	}

	for ; ok && iter.Valid(); ok = iter.Next() {
		fmt.Printf("Key: %s\n", string(iter.Key()))
		val := iter.Value()
		fmt.Printf("Value length: %d bytes\n", len(val))
		preview := truncateString(string(val), 500)
		fmt.Printf("Value preview: %s\n", preview)
		fmt.Println("---")

		count++
		if count >= limit {
			break
		}
	}

	if err := iter.Error(); err != nil {
		return fmt.Errorf("iterator error: %w", err)
	}

	if count == 0 {
		fmt.Println("No keys matched the requested prefix.")
	}

	return nil
}

func promptYesNo(action string) (bool, error) {
	fmt.Printf("%s? Type 'yes' to confirm: ", action)
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false, err
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "yes", nil
}

func truncateString(in string, max int) string {
	if len(in) <= max {
		return in
	}
	return in[:max] + "..."
}
