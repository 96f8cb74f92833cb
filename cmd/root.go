package cmd

import (
	"context"
	"linkscraper/internal/config"
	"linkscraper/internal/modules/filereader"
	"linkscraper/internal/modules/persistence"
	"linkscraper/internal/modules/pipeline"
	"linkscraper/internal/modules/scraper"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

var (
	linksPath    string
	outputDir    string
	skipExisting bool
)

var rootCmd = &cobra.Command{
	Use:   "linkscraper",
	Short: "Scrape URLs from a links file into per-domain markdown files",
	Long: `A CLI tool that reads URLs from a newline-delimited links file, scrapes
each one through the Firecrawl API and saves the returned markdown under
<output>/<domain>/<sanitized-path>.md`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. The process exits non-zero on fatal errors
// (missing configuration, an unreadable links file) and when the pass is
// interrupted before completing. Per-URL failures are reported by the
// pipeline stages and do not affect the exit code.
func Execute(ctx context.Context, logger *zap.Logger) {
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return run(ctx, logger)
	}
	if err := rootCmd.Execute(); err != nil {
		logger.Error("execution failed", zap.Error(err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVarP(&linksPath, "links", "l", "links.txt", "Path to the newline-delimited links file")
	rootCmd.Flags().StringVarP(&outputDir, "output", "o", "output", "Root directory for scraped markdown files")
	rootCmd.Flags().BoolVar(&skipExisting, "skip-existing", false, "Skip URLs whose output file already exists")
	pflag.CommandLine.AddFlagSet(rootCmd.Flags())
}

func run(ctx context.Context, logger *zap.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	if _, err := os.Stat(linksPath); err != nil {
		return errors.Wrapf(err, "links file %s is not readable", linksPath)
	}

	persister := persistence.New(outputDir, skipExisting)

	// With --skip-existing the scraper consults the output layout up front,
	// so an already-saved URL costs no API call.
	var skip scraper.SkipFunc
	if skipExisting {
		skip = persister.Exists
	}

	sc, err := scraper.New(cfg, skip)
	if err != nil {
		return err
	}

	logger.Info("starting URL processing",
		zap.String("links_path", linksPath),
		zap.String("output_dir", outputDir))

	p := pipeline.New(logger)
	p.AddStage(filereader.New(linksPath))
	p.AddStage(sc)
	p.AddStage(persister)

	input := make(chan interface{})
	close(input)

	if err := p.Run(ctx, input); err != nil {
		return errors.Wrap(err, "processing interrupted")
	}
	return nil
}
