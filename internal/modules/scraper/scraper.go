package scraper

import (
	"context"
	"linkscraper/internal/config"
	"linkscraper/internal/models"
	"strings"

	"github.com/mendableai/firecrawl-go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// scrapeTimeoutMS is handed to the Firecrawl API as the per-request budget.
const scrapeTimeoutMS = 90_000

// SkipFunc reports whether the output for a URL already exists on disk. It
// is consulted before the scrape request goes out, so an already-saved URL
// costs no API quota.
type SkipFunc func(url string) bool

// Scraper fetches markdown for each URL through the Firecrawl API. Requests
// are issued one at a time, in input order; at most one is in flight.
type Scraper struct {
	app    *firecrawl.FirecrawlApp
	params *firecrawl.ScrapeParams
	skip   SkipFunc
}

// New creates a Scraper from the loaded configuration. skip may be nil, in
// which case every URL is scraped.
func New(cfg config.Config, skip SkipFunc) (*Scraper, error) {
	app, err := firecrawl.NewFirecrawlApp(cfg.APIKey, cfg.APIURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize firecrawl client")
	}

	timeout := scrapeTimeoutMS
	params := &firecrawl.ScrapeParams{
		Formats: []string{"markdown"},
		Timeout: &timeout,
	}

	return &Scraper{
		app:    app,
		params: params,
		skip:   skip,
	}, nil
}

// Scrape fetches a single URL and returns its markdown content. An empty
// payload counts as a failure: there is nothing worth writing to disk.
func (s *Scraper) Scrape(url string) ([]byte, error) {
	doc, err := s.app.ScrapeURL(url, s.params)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to scrape URL %s", url)
	}

	if doc.Markdown == "" {
		return nil, errors.Errorf("no markdown content returned for %s", url)
	}

	return []byte(doc.Markdown), nil
}

// Execute scrapes every URL from the input channel sequentially and forwards
// a ScrapeResult per URL, failures included, so the persister can account
// for them. A failed URL never stops the remaining ones.
func (s *Scraper) Execute(ctx context.Context, input <-chan interface{}, output chan<- interface{}, logger *zap.Logger) error {
	scraped := 0
	failed := 0
	skippedPDF := 0
	skippedExisting := 0

	for item := range input {
		select {
		case <-ctx.Done():
			logger.Warn("scraping interrupted", zap.Error(ctx.Err()))
			return ctx.Err()
		default:
		}

		url, ok := item.(string)
		if !ok {
			logger.Warn("invalid input type, expected string URL", zap.Any("item", item))
			continue
		}

		// PDFs are not page markdown; they are skipped rather than scraped.
		if strings.HasSuffix(strings.ToLower(url), ".pdf") {
			logger.Info("skipping PDF URL", zap.String("url", url))
			skippedPDF++
			continue
		}

		if s.skip != nil && s.skip(url) {
			logger.Info("output file exists, skipping scrape", zap.String("url", url))
			skippedExisting++
			continue
		}

		logger.Debug("scraping URL", zap.String("url", url))
		markdown, err := s.Scrape(url)
		if err != nil {
			logger.Warn("scrape failed", zap.String("url", url), zap.Error(err))
			failed++
			output <- models.ScrapeResult{URL: url, Error: err}
			continue
		}

		scraped++
		output <- models.ScrapeResult{URL: url, Markdown: markdown}
	}

	logger.Info("scraping statistics",
		zap.Int("scraped", scraped),
		zap.Int("failed", failed),
		zap.Int("skipped_pdf", skippedPDF),
		zap.Int("skipped_existing", skippedExisting))
	return nil
}
