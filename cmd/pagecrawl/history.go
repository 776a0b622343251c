package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/pagecrawl/internal/config"
	"github.com/nao1215/pagecrawl/internal/database"
	"github.com/nao1215/pagecrawl/internal/report"
)

// errSeedRequired is returned when a history operation needs a start URL.
var errSeedRequired = errors.New("start URL is required (use --list-seeds to see archived URLs)")

// NewHistoryCmd creates the history command.
// This command reads crawls archived with 'pagecrawl crawl --save'.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [url]",
		Short: "Show archived crawls and compare runs",
		Long: `History shows crawls archived with 'pagecrawl crawl --save'.

Without flags it lists the archived runs of a start URL. With --diff it
compares the latest two runs and prints the URLs that were added, removed
or whose extracted content changed.

Examples:
  # List all archived start URLs
  pagecrawl history --list-seeds

  # List the runs of a start URL
  pagecrawl history https://example.com/

  # Compare the latest two runs
  pagecrawl history --diff https://example.com/

  # Print the records of a run
  pagecrawl history --run 1b4e28ba-2fa1-11d2-883f-0016d3cca427`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().BoolP("list-seeds", "L", false,
		"List all archived start URLs")
	cmd.Flags().BoolP("diff", "d", false,
		"Compare the latest two runs of the start URL")
	cmd.Flags().StringP("run", "r", "",
		"Print the records of a run by ID")
	cmd.Flags().StringP("format", "f", config.FormatJSON,
		"Format used with --run: json, csv or markdown")
	cmd.Flags().BoolP("json", "j", false,
		"Output run lists and diffs in JSON format")

	return cmd
}

// historyOptions holds the parsed history flags.
type historyOptions struct {
	seed      string
	listSeeds bool
	diff      bool
	runID     string
	format    string
	json      bool
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	var opts historyOptions
	var err error

	if opts.listSeeds, err = cmd.Flags().GetBool("list-seeds"); err != nil {
		return err
	}
	if opts.diff, err = cmd.Flags().GetBool("diff"); err != nil {
		return err
	}
	if opts.runID, err = cmd.Flags().GetString("run"); err != nil {
		return err
	}
	if opts.format, err = cmd.Flags().GetString("format"); err != nil {
		return err
	}
	if opts.json, err = cmd.Flags().GetBool("json"); err != nil {
		return err
	}
	if len(args) > 0 {
		opts.seed = config.NormalizeTarget(args[0])
	}

	// Validate arguments before opening the database.
	if !opts.listSeeds && opts.runID == "" && opts.seed == "" {
		return errSeedRequired
	}
	if !config.IsValidFormat(opts.format) {
		return config.ErrInvalidFormat
	}

	db, err := database.Open(config.XDGDataDir(), database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	return runHistory(cmd.Context(), db, cmd.OutOrStdout(), opts)
}

// runHistory dispatches on the history options.
func runHistory(ctx context.Context, db *database.CrawlDB, out io.Writer, opts historyOptions) error {
	switch {
	case opts.listSeeds:
		return listSeeds(ctx, db, out, opts.json)
	case opts.runID != "":
		return showRun(ctx, db, out, opts.runID, opts.format)
	case opts.diff:
		return diffLatestRuns(ctx, db, out, opts.seed, opts.json)
	default:
		return listRuns(ctx, db, out, opts.seed, opts.json)
	}
}

// listSeeds prints every archived start URL.
func listSeeds(ctx context.Context, db *database.CrawlDB, out io.Writer, jsonOutput bool) error {
	seeds, err := db.ListSeeds(ctx)
	if err != nil {
		return err
	}

	if jsonOutput {
		if seeds == nil {
			seeds = []string{}
		}
		return writeJSON(out, seeds)
	}

	if len(seeds) == 0 {
		fmt.Fprintln(out, "No archived crawls found in the database.")
		fmt.Fprintln(out, "\nUse 'pagecrawl crawl --save <url>' to archive a crawl.")
		return nil
	}

	fmt.Fprintf(out, "Archived start URLs (%d):\n\n", len(seeds))
	for _, seed := range seeds {
		fmt.Fprintf(out, "  • %s\n", seed)
	}
	fmt.Fprintln(out, "\nUse 'pagecrawl history <url>' to see the runs of a start URL.")
	return nil
}

// runSummary is the JSON shape of an archived run.
type runSummary struct {
	ID         string            `json:"id"`
	Seed       string            `json:"seed"`
	StartedAt  string            `json:"started_at"`
	FinishedAt string            `json:"finished_at"`
	Pages      int               `json:"pages"`
	Errors     int               `json:"errors"`
	Options    map[string]string `json:"options"`
}

// listRuns prints the runs of seed, newest first.
func listRuns(ctx context.Context, db *database.CrawlDB, out io.Writer, seed string, jsonOutput bool) error {
	runs, err := db.ListRuns(ctx, seed)
	if err != nil {
		return err
	}

	if jsonOutput {
		summaries := make([]runSummary, len(runs))
		for i, r := range runs {
			summaries[i] = runSummary{
				ID:         r.ID,
				Seed:       r.Seed,
				StartedAt:  r.StartedAt.Format(time.RFC3339),
				FinishedAt: r.FinishedAt.Format(time.RFC3339),
				Pages:      r.PageCount,
				Errors:     r.ErrorCount,
				Options:    r.Options,
			}
		}
		return writeJSON(out, summaries)
	}

	if len(runs) == 0 {
		fmt.Fprintf(out, "No archived runs found for %s\n", seed)
		fmt.Fprintln(out, "\nUse 'pagecrawl crawl --save' to archive a crawl of this URL.")
		return nil
	}

	fmt.Fprintf(out, "Runs for %s (%d):\n\n", seed, len(runs))
	fmt.Fprintf(out, "  %-36s  %-20s  %6s  %6s  %s\n", "ID", "Date", "Pages", "Errors", "Duration")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 86))
	for _, r := range runs {
		fmt.Fprintf(out, "  %-36s  %-20s  %6d  %6d  %s\n",
			r.ID,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.PageCount,
			r.ErrorCount,
			r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond),
		)
	}

	fmt.Fprintln(out, "\nUse 'pagecrawl history --diff <url>' to compare the latest two runs.")
	fmt.Fprintln(out, "Use 'pagecrawl history --run <id>' to print the records of a run.")
	return nil
}

// showRun writes the records of a run in the given format.
func showRun(ctx context.Context, db *database.CrawlDB, out io.Writer, runID, format string) error {
	records, err := db.GetRunRecords(ctx, runID)
	if err != nil {
		return err
	}

	writer, err := report.NewWriter(format, out, report.Options{Title: "Run " + runID})
	if err != nil {
		return err
	}
	_, err = writer.Write(records)
	return err
}

// diffLatestRuns compares the latest two runs of seed.
func diffLatestRuns(ctx context.Context, db *database.CrawlDB, out io.Writer, seed string, jsonOutput bool) error {
	runs, err := db.LatestRuns(ctx, seed, 2)
	if err != nil {
		return err
	}
	if len(runs) < 2 {
		return fmt.Errorf("at least two archived runs are needed to compare %s (found %d)", seed, len(runs))
	}

	newer, older := runs[0], runs[1]
	diff, err := db.DiffRuns(ctx, older.ID, newer.ID)
	if err != nil {
		return err
	}

	if jsonOutput {
		return writeJSON(out, struct {
			Seed   string            `json:"seed"`
			OldRun string            `json:"old_run"`
			NewRun string            `json:"new_run"`
			Diff   *database.RunDiff `json:"diff"`
		}{seed, older.ID, newer.ID, diff})
	}

	fmt.Fprintf(out, "Comparing runs of %s\n", seed)
	fmt.Fprintf(out, "  old: %s (%s)\n", older.ID, older.StartedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "  new: %s (%s)\n\n", newer.ID, newer.StartedAt.Local().Format("2006-01-02 15:04:05"))

	if diff.Empty() {
		fmt.Fprintln(out, "No changes.")
		return nil
	}

	printURLs(out, "Added", "+", diff.Added)
	printURLs(out, "Removed", "-", diff.Removed)
	printURLs(out, "Changed", "~", diff.Changed)
	return nil
}

// printURLs prints a titled list of URLs, skipping empty lists.
func printURLs(out io.Writer, title, marker string, urls []string) {
	if len(urls) == 0 {
		return
	}
	fmt.Fprintf(out, "%s (%d):\n", title, len(urls))
	for _, u := range urls {
		fmt.Fprintf(out, "  %s %s\n", marker, u)
	}
	fmt.Fprintln(out)
}

// writeJSON writes v as indented JSON.
func writeJSON(out io.Writer, v any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
