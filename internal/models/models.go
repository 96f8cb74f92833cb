package models

// ScrapeResult is what the scraper hands downstream for one URL: either the
// markdown payload or the error that prevented it.
type ScrapeResult struct {
	URL      string
	Markdown []byte
	Error    error
}
