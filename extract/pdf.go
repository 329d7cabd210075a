/*
Package extract turns statement documents into raw text and finds them on disk.

PURPOSE:
  Supplies the ledger.TextExtractor used by the ingest driver. PDF pages are
  read with github.com/ledongthuc/pdf, row by row, so that labels and their
  amounts stay on the same line; the statement rules depend on that.

FAILURE MODEL:
  - A page that cannot be read is logged and skipped.
  - A panic inside the PDF library becomes an error for that file.
  - A document with no text at all yields ledger.ErrNoText.
  Either way the ingest driver leaves the file unmarked, so it is retried.

SEE ALSO:
  - ledger/ingest.go: TextExtractor interface
  - extract/files.go: input discovery
*/
package extract

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/warp/statement-ledger/ledger"
	"github.com/warp/statement-ledger/logging"
)

var (
	_ ledger.TextExtractor = PDF{}
	_ ledger.TextExtractor = PlainText{}
	_ ledger.TextExtractor = Dispatcher{}
)

// PDF extracts text from PDF files.
type PDF struct {
	Logger *slog.Logger
}

// ExtractText returns the text of every readable page joined by newlines.
func (p PDF) ExtractText(ctx context.Context, path string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PDF library crashed on %s: %v", path, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF %s: %w", path, err)
	}
	defer f.Close()

	pages, err := p.pagesByRow(ctx, r)
	if err != nil {
		return "", err
	}
	text = strings.Join(pages, "\n")

	if strings.TrimSpace(text) == "" {
		text = wholeDocument(r)
	}
	if strings.TrimSpace(text) == "" {
		return "", ledger.ErrNoText
	}
	return text, nil
}

func (p PDF) pagesByRow(ctx context.Context, r *pdf.Reader) ([]string, error) {
	log := p.Logger
	if log == nil {
		log = slog.Default()
	}

	var pages []string
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := pageText(page)
		if err != nil {
			log.Warn("failed to read page, skipping", "page", i, logging.FieldError, err)
			continue
		}
		if text == "" {
			log.Debug("no text on page", "page", i)
			continue
		}
		pages = append(pages, text)
	}
	return pages, nil
}

// pageText joins each row's words with spaces and rows with newlines.
func pageText(page pdf.Page) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("page crashed: %v", r)
		}
	}()

	rows, err := page.GetTextByRow()
	if err != nil {
		return "", err
	}

	var lines []string
	for _, row := range rows {
		parts := make([]string, 0, len(row.Content))
		for _, word := range row.Content {
			parts = append(parts, word.S)
		}
		line := strings.TrimSpace(strings.Join(parts, " "))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n"), nil
}

func wholeDocument(r *pdf.Reader) string {
	reader, err := r.GetPlainText()
	if err != nil {
		return ""
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// =============================================================================
// DISPATCH BY EXTENSION
// =============================================================================

// Dispatcher picks an extractor from the file extension. Unknown extensions
// fall back to Default.
type Dispatcher struct {
	ByExt   map[string]ledger.TextExtractor
	Default ledger.TextExtractor
}

// ByExtension handles .pdf with PDF and .txt with PlainText.
func ByExtension(logger *slog.Logger) Dispatcher {
	return Dispatcher{
		ByExt: map[string]ledger.TextExtractor{
			".pdf": PDF{Logger: logger},
			".txt": PlainText{},
		},
		Default: PDF{Logger: logger},
	}
}

func (d Dispatcher) ExtractText(ctx context.Context, path string) (string, error) {
	if ex, ok := d.ByExt[strings.ToLower(filepath.Ext(path))]; ok {
		return ex.ExtractText(ctx, path)
	}
	if d.Default == nil {
		return "", fmt.Errorf("no extractor for %s", path)
	}
	return d.Default.ExtractText(ctx, path)
}
