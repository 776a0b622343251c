package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for pagecrawl.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pagecrawl",
		Short: "Bounded, polite web crawler and page metadata extractor",
		Long: `pagecrawl crawls a website breadth-first from a start URL and extracts
page metadata: title, description, meta tags, links, images and the text
of elements matching an optional CSS selector.

Crawls are bounded by depth and page count, pause between requests and
never fetch the same URL twice. Results are written as JSON, CSV or Markdown.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
