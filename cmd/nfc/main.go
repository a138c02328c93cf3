package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"nfc-go/internal/app"
	"nfc-go/internal/config"
	"nfc-go/internal/database"
	"nfc-go/internal/display"
	"nfc-go/internal/nfc"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an NFCApp. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "Scan", "Convert").
// Without a config file the app runs with an in-memory history.
func newApp(operation string) (*app.NFCApp, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, _, err := app.LoadConfig(defaults)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := display.ConfigureColor(cfg.Display.Color, os.Stdout); err != nil {
		return nil, err
	}
	status := display.NewStatusLine(os.Stdout, display.StatusWidth(cfg.Display.MaxPathLength, os.Stdout))

	a, err := app.NewNFCApp(cfg, operation, status)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

// targetDir returns the directory argument, defaulting to the current directory.
func targetDir(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}

var rootCmd = &cobra.Command{
	Use:   "nfc",
	Short: "Convert NFD file and folder names to NFC",
	Long: `nfc finds files and folders whose names are not in Unicode NFC form,
such as names written by macOS in decomposed (NFD) form, and renames
the ones you select to their NFC equivalent.`,
	SilenceUsage: true,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration and the history database",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		hostID := uuid.New().String()
		cfg := config.NewConfig(hostID, defaults.BaseDir)

		if err := config.Init(defaults.ConfigPath, cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		db, err := database.NewDatabaseFromConfig(cfg.Database, cfg.HostID)
		if err != nil {
			return fmt.Errorf("creating database: %w", err)
		}
		defer db.Close()
		if err := db.Migrate(); err != nil {
			return fmt.Errorf("migrating database: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults.ConfigPath)
		fmt.Printf("Host ID:  %s\n", hostID)
		fmt.Printf("Base Dir: %s\n", defaults.BaseDir)
		fmt.Printf("Database: %s\n", db.Path())
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, found, err := app.LoadConfig(defaults)
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		if found {
			fmt.Printf("Configuration from %s:\n\n", defaults.ConfigPath)
		} else {
			fmt.Printf("No configuration at %s, using defaults (history is not kept):\n\n", defaults.ConfigPath)
		}
		fmt.Printf("Host ID:  %s\n", cfg.HostID)
		fmt.Printf("Base Dir: %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:  %s\n", cfg.LogDir)
		fmt.Printf("Database: %s", cfg.Database.Type)
		if cfg.Database.DataDir != "" {
			fmt.Printf(" (%s)", cfg.Database.DataDir)
		}
		fmt.Println()
		if found {
			fmt.Printf("History:  %s\n", historyState(cfg))
		}
		if len(cfg.Filesystem.Ignore) > 0 {
			fmt.Printf("Ignore:   %v\n", cfg.Filesystem.Ignore)
		}
		fmt.Printf("Color:    %s\n", cfg.Display.Color)
		return nil
	},
}

// historyState describes the configured history database without creating it.
func historyState(cfg *config.Config) string {
	db, err := database.OpenExisting(cfg.Database, cfg.HostID)
	if errors.Is(err, database.ErrNoHistory) {
		return "not created (run `nfc config init`)"
	}
	if err != nil {
		return err.Error()
	}
	defer db.Close()
	state, err := db.Schema()
	if err != nil {
		return err.Error()
	}
	return state.String()
}

// scan command
var scanCmd = &cobra.Command{
	Use:   "scan [DIR]",
	Short: "List entries whose names are not NFC",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Scan")
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.Scan(targetDir(args))
		if err != nil {
			return fmt.Errorf("scanning: %w", err)
		}

		display.RenderProblems(os.Stdout, result.Problems)
		if result.Root == nil {
			fmt.Println("No entries need renaming.")
			return nil
		}
		display.RenderTree(os.Stdout, nfc.NewSelectionTree(result.Root).Rows(), false)
		return nil
	},
}

// convert command
var convertCmd = &cobra.Command{
	Use:   "convert [DIR]",
	Short: "Rename selected entries to NFC",
	Long: `Scan DIR (default: the current directory) and rename the selected entries
to their NFC form. Select entries with --all, with one or more --select
paths relative to DIR, or pick them with --interactive. Selecting a folder
selects everything below it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		selects, _ := cmd.Flags().GetStringArray("select")
		interactive, _ := cmd.Flags().GetBool("interactive")
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		if interactive && !display.IsInteractive(os.Stdin) {
			return errors.New("--interactive requires a terminal")
		}
		if !interactive && !all && len(selects) == 0 {
			return errors.New("nothing selected: use --all, --select or --interactive")
		}

		a, err := newApp("Convert")
		if err != nil {
			return err
		}
		defer a.Close()

		dir := targetDir(args)
		result, err := a.Scan(dir)
		if err != nil {
			return fmt.Errorf("scanning: %w", err)
		}
		display.RenderProblems(os.Stdout, result.Problems)
		if result.Root == nil {
			fmt.Println("No entries need renaming.")
			return nil
		}

		tree := nfc.NewSelectionTree(result.Root)
		if all {
			tree.SetAll(true)
		}
		for _, rel := range selects {
			if err := selectPath(tree, rel); err != nil {
				return err
			}
		}

		if interactive {
			return runInteractive(a, dir, tree, dryRun)
		}
		return convertOnce(a, dir, tree, dryRun)
	},
}

// convertOnce converts (or previews) the checked nodes of tree and prints the result.
// It returns an error when any rename failed.
func convertOnce(a *app.NFCApp, dir string, tree *nfc.SelectionTree, dryRun bool) error {
	if dryRun {
		report, err := a.Preview(dir, tree)
		if err != nil {
			return err
		}
		display.RenderPlan(os.Stdout, report)
		return nil
	}

	report, err := a.Convert(dir, tree)
	if report != nil {
		display.RenderReport(os.Stdout, report)
	}
	if err != nil {
		return err
	}
	if report.Failed > 0 {
		return fmt.Errorf("%d of %d renames failed", report.Failed, len(report.Outcomes))
	}
	return nil
}

// runInteractive lets the user pick entries, converts them and re-scans
// until nothing is left to rename or the user quits.
func runInteractive(a *app.NFCApp, dir string, tree *nfc.SelectionTree, dryRun bool) error {
	in := bufio.NewReader(os.Stdin)
	failed := 0
	for {
		action, err := promptSelection(in, os.Stdout, tree)
		if err != nil {
			return err
		}
		if action == actionQuit {
			break
		}

		if dryRun {
			report, err := a.Preview(dir, tree)
			if err != nil {
				return err
			}
			display.RenderPlan(os.Stdout, report)
			continue
		}

		report, err := a.Convert(dir, tree)
		if err != nil {
			return err
		}
		display.RenderReport(os.Stdout, report)
		failed += report.Failed

		dir = report.RescanRoot
		result, err := a.Scan(dir)
		if err != nil {
			return fmt.Errorf("rescanning: %w", err)
		}
		display.RenderProblems(os.Stdout, result.Problems)
		if result.Root == nil {
			fmt.Println("No entries need renaming.")
			break
		}
		tree = nfc.NewSelectionTree(result.Root)
	}

	if failed > 0 {
		return fmt.Errorf("%d renames failed", failed)
	}
	return nil
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View conversion history",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp("GetHistory")
		if err != nil {
			return err
		}
		defer a.Close()

		ops, err := a.GetHistory(limit)
		if err != nil {
			return err
		}

		display.RenderHistory(os.Stdout, ops, time.Now())
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show the renames of one conversion",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid operation id %q: %w", args[0], err)
		}

		a, err := newApp("GetOperation")
		if err != nil {
			return err
		}
		defer a.Close()

		op, renames, err := a.GetOperation(id)
		if err != nil {
			return err
		}

		display.RenderOperation(os.Stdout, op, renames)
		return nil
	},
}

var historyExportCmd = &cobra.Command{
	Use:   "export FILE",
	Short: "Write a copy of the history database to FILE",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ExportHistory")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.ExportHistory(args[0]); err != nil {
			return err
		}
		fmt.Printf("History exported to %s\n", args[0])
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// convert flags
	convertCmd.Flags().BoolP("all", "a", false, "Select every entry")
	convertCmd.Flags().StringArrayP("select", "s", nil, "Select an entry by path relative to DIR (repeatable)")
	convertCmd.Flags().BoolP("interactive", "i", false, "Pick entries interactively")
	convertCmd.Flags().BoolP("dry-run", "n", false, "Show what would be renamed without renaming")

	// history subcommands
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of operations to show")

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(historyCmd)
}
