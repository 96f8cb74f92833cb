package filereader

import (
	"bufio"
	"context"
	"os"
	"strings"

	"go.uber.org/zap"
)

// FileReader streams URLs from a newline-delimited links file. Blank lines
// are skipped; surrounding whitespace is trimmed.
type FileReader struct {
	linksPath string
}

// New creates a new FileReader for the given links file.
func New(linksPath string) *FileReader {
	return &FileReader{linksPath: linksPath}
}

// Execute reads the links file line by line and sends each URL downstream
// in file order.
func (fr *FileReader) Execute(ctx context.Context, input <-chan interface{}, output chan<- interface{}, logger *zap.Logger) error {
	file, err := os.Open(fr.linksPath)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	urlCount := 0

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			logger.Warn("file reading interrupted", zap.Error(ctx.Err()))
			return ctx.Err()
		default:
			url := strings.TrimSpace(scanner.Text())
			if url != "" {
				logger.Debug("read URL", zap.String("url", url))
				output <- url
				urlCount++
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return err
	}

	if urlCount == 0 {
		logger.Warn("no URLs found in links file", zap.String("links_path", fr.linksPath))
	}

	logger.Info("finished reading URLs", zap.Int("total_urls", urlCount))
	return nil
}
