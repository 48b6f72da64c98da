package commands

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"arkscrape/internal/logsapi"
	"arkscrape/internal/raids"
	"arkscrape/internal/scrape"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	scrapeFromScratch *bool
	scrapeForce       *bool
	scrapePageSize    *int
	scrapeMaxLogs     *int
)

func init() {
	scrapeFromScratch = scrapeCmd.Flags().Bool("from-scratch", false, "Start from scratch, discarding previously stored logs")
	scrapeForce = scrapeCmd.Flags().Bool("force", false, "Skip the from-scratch confirmation prompt")
	scrapePageSize = scrapeCmd.Flags().Int("page-size", 25, "Number of logs to fetch per batch")
	scrapeMaxLogs = scrapeCmd.Flags().Int("max-logs", 0, "Maximum number of new logs to fetch before stopping (0 = no cap)")
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape BOSS [GATE] [DIFFICULTY]",
	Short: "Fetch new encounter logs for a boss, or `all` for every known raid.",
	Long: `Fetch new encounter logs for a boss. BOSS is required; GATE and
DIFFICULTY narrow the selection for gated raids. Passing ` + "`all`" + ` iterates
every boss, gate and difficulty in the raid table.`,
	Args: cobra.RangeArgs(1, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		client, err := logsapi.NewClient(cfg.Endpoints)
		if err != nil {
			return err
		}

		selections, err := resolveSelections(args)
		if err != nil {
			return err
		}
		force := *scrapeForce || args[0] == "all"

		if *scrapeFromScratch {
			fmt.Println("=== Starting from scratch ===")
			fmt.Println("WARNING: this discards previously stored logs")
			if force {
				slog.Warn("continuing without confirmation in three seconds")
				time.Sleep(3 * time.Second)
			} else if !confirm(cmd, "Are you sure you want to continue?") {
				return fmt.Errorf("aborted before any data loss")
			}
		}

		start := time.Now()
		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Selection", "New logs", "Batches", "Weird", "Elapsed"})

		for _, sel := range selections {
			f, err := logsapi.NewFilter(sel.Boss, sel.Gate, sel.Difficulty)
			if err != nil {
				return err
			}

			sum, err := scrape.Run(cmd.Context(), client, f, scrape.Options{
				DataDir:     cfg.DataDir,
				DatabaseURL: cfg.DatabaseURL,
				PageSize:    *scrapePageSize,
				MaxNewLogs:  *scrapeMaxLogs,
				FromScratch: *scrapeFromScratch,
				Verbose:     verbose,
			})
			if err != nil {
				return fmt.Errorf("scrape %s: %w", f, err)
			}
			t.AppendRow(table.Row{f.String(), sum.NewLogs, sum.Batches, sum.Weird, sum.Elapsed.Round(time.Millisecond)})
		}

		t.SetStyle(table.StyleRounded)
		t.Render()
		slog.Info("all selections scraped", "elapsed", time.Since(start).Round(time.Millisecond))
		return nil
	},
}

// resolveSelections expands CLI arguments into scrape targets. `all`
// walks the raid table newest-first. A gated boss is validated against
// the table; an unknown name gets a closest-match hint.
func resolveSelections(args []string) ([]raids.Selection, error) {
	if args[0] == "all" {
		if len(args) > 1 {
			return nil, fmt.Errorf("`all` takes no gate or difficulty")
		}
		return raids.Selections(), nil
	}

	sel := raids.Selection{Boss: args[0]}
	if len(args) >= 2 {
		gate, err := strconv.Atoi(args[1])
		if err != nil {
			return nil, fmt.Errorf("gate must be a number, got %q", args[1])
		}
		sel.Gate = gate
	}
	if len(args) >= 3 {
		d, err := raids.ParseDifficulty(args[2])
		if err != nil {
			return nil, err
		}
		sel.Difficulty = d
	}

	if sel.Gate > 0 {
		if _, err := raids.Lookup(sel.Boss, sel.Gate); err != nil {
			if hint := raids.Suggest(sel.Boss); hint != "" && !strings.EqualFold(hint, sel.Boss) {
				return nil, fmt.Errorf("%w (did you mean %q?)", err, hint)
			}
			return nil, err
		}
	}
	return []raids.Selection{sel}, nil
}

func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", prompt)
	scanner := bufio.NewScanner(cmd.InOrStdin())
	if !scanner.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	return answer == "y" || answer == "yes"
}
