package persistence

import (
	"context"
	"linkscraper/internal/models"
	"linkscraper/internal/modules/pathmapper"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

const defaultOutputDir = "./output"

// FilePersister writes scraped markdown under outputDir/<domain>/<file>.md,
// creating directories as needed. Existing files are overwritten unless
// skipExisting is set.
type FilePersister struct {
	outputDir    string
	skipExisting bool
}

// New creates a FilePersister. An empty outputDir falls back to
// defaultOutputDir.
func New(outputDir string, skipExisting bool) *FilePersister {
	if outputDir == "" {
		outputDir = defaultOutputDir
	}
	return &FilePersister{
		outputDir:    outputDir,
		skipExisting: skipExisting,
	}
}

// Exists reports whether the output file for url is already on disk. It is
// handed to the scraper as its skip predicate so an already-saved URL never
// reaches the API. Collision-disambiguated paths are not consulted; a URL
// that lost its path to another one in an earlier run is scraped again.
func (fp *FilePersister) Exists(url string) bool {
	mapped, err := pathmapper.Derive(url)
	if err != nil {
		return false
	}
	_, err = os.Stat(filepath.Join(fp.outputDir, mapped.Domain, mapped.Filename))
	return err == nil
}

// Execute persists every ScrapeResult from the input channel and emits the
// final run summary. Per-item failures are logged with the offending URL
// and never stop the remaining items.
func (fp *FilePersister) Execute(ctx context.Context, input <-chan interface{}, output chan<- interface{}, logger *zap.Logger) error {
	if err := os.MkdirAll(fp.outputDir, 0755); err != nil {
		return err
	}

	saved := 0
	failed := 0
	skippedExisting := 0

	// Maps relative output paths to the URL that claimed them, so two
	// distinct URLs sanitizing to the same path are disambiguated instead
	// of silently overwriting each other. Owned here to keep
	// pathmapper.Derive pure.
	seen := make(map[string]string)

	for item := range input {
		select {
		case <-ctx.Done():
			logger.Warn("persistence interrupted", zap.Error(ctx.Err()))
			return ctx.Err()
		default:
		}

		result, ok := item.(models.ScrapeResult)
		if !ok {
			logger.Warn("invalid input type, expected ScrapeResult", zap.Any("item", item))
			continue
		}
		if result.Error != nil {
			failed++
			continue
		}

		mapped, err := pathmapper.Derive(result.URL)
		if err != nil {
			logger.Warn("cannot derive output path",
				zap.String("url", result.URL),
				zap.Error(err))
			failed++
			continue
		}

		mapped, collided := pathmapper.Resolve(mapped, result.URL, seen)
		if collided {
			logger.Warn("output path collision, disambiguated",
				zap.String("url", result.URL),
				zap.String("path", mapped.RelPath()))
		}

		domainDir := filepath.Join(fp.outputDir, mapped.Domain)
		if err := os.MkdirAll(domainDir, 0755); err != nil {
			logger.Warn("cannot create domain directory",
				zap.String("url", result.URL),
				zap.String("dir", domainDir),
				zap.Error(err))
			failed++
			continue
		}

		outPath := filepath.Join(domainDir, mapped.Filename)
		if fp.skipExisting {
			if _, err := os.Stat(outPath); err == nil {
				logger.Info("output file exists, skipping",
					zap.String("url", result.URL),
					zap.String("filepath", outPath))
				skippedExisting++
				continue
			}
		}

		logger.Debug("persisting file", zap.String("filepath", outPath))
		if err := os.WriteFile(outPath, result.Markdown, 0644); err != nil {
			logger.Warn("persist failed",
				zap.String("url", result.URL),
				zap.String("filepath", outPath),
				zap.Error(err))
			failed++
			continue
		}
		saved++
	}

	logger.Info("run statistics",
		zap.Int("saved", saved),
		zap.Int("skipped_existing", skippedExisting),
		zap.Int("failed", failed))
	return nil
}
