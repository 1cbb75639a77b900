// Package runner drives a batch of page checks into a result table.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anchorscan/anchorscan/classifier"
	"github.com/anchorscan/anchorscan/config"
	"github.com/anchorscan/anchorscan/extractor"
	"github.com/anchorscan/anchorscan/models"
)

// Batch admission errors. Both are reported before any network traffic.
var (
	ErrEmptyBatch    = errors.New("runner: no URLs to process")
	ErrBatchTooLarge = errors.New("runner: too many URLs")
)

// PageClassifier is the fetch-and-classify dependency.
type PageClassifier interface {
	Classify(url string) *classifier.Outcome
}

// ProgressFunc receives completed and total counts after each URL.
type ProgressFunc func(completed, total int)

// Runner processes URL batches strictly sequentially: one fetch at a time,
// one row per input URL, input order preserved.
type Runner struct {
	classifier PageClassifier
	cfg        *config.Config

	// OnRow, when set, observes each finished row in order.
	OnRow func(models.ResultRow)
}

// New builds a runner on top of a page classifier.
func New(pc PageClassifier, cfg *config.Config) *Runner {
	return &Runner{classifier: pc, cfg: cfg}
}

// ParseURLList splits raw newline-separated input into an ordered URL list,
// trimming whitespace and dropping blank lines. URLs are not validated;
// malformed entries surface later as fetch-error rows.
func ParseURLList(text string) []string {
	var urls []string
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		urls = append(urls, line)
	}
	return urls
}

// Run processes urls for the selected brand (config.AllBrands means every
// brand at once) and returns one row per URL in input order. A failure on one
// URL never aborts the batch; cancelling ctx stops network calls but still
// yields a row for every remaining URL.
func (r *Runner) Run(ctx context.Context, urls []string, brand string, progress ProgressFunc) (*models.ResultTable, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(urls) == 0 {
		return nil, ErrEmptyBatch
	}
	if len(urls) > r.cfg.MaxBatchSize {
		return nil, fmt.Errorf("%w: %d exceeds limit %d", ErrBatchTooLarge, len(urls), r.cfg.MaxBatchSize)
	}

	all := brand == config.AllBrands
	domain := ""
	if !all {
		var ok bool
		domain, ok = r.cfg.Brands.DomainFor(brand)
		if !ok {
			return nil, fmt.Errorf("runner: unknown brand %q", brand)
		}
	}

	table := &models.ResultTable{
		Rows:      make([]models.ResultRow, 0, len(urls)),
		CreatedAt: time.Now(),
	}
	if all && r.cfg.PerBrandColumns {
		table.BrandColumns = r.cfg.Brands.Names()
	}

	total := len(urls)
	if total < 1 {
		total = 1
	}

	start := time.Now()
	slog.Info("starting batch",
		slog.Int("urls", len(urls)),
		slog.String("brand", brand),
	)

	for i, url := range urls {
		row := r.processURL(ctx, url, all, domain)
		table.Rows = append(table.Rows, row)
		if r.OnRow != nil {
			r.OnRow(row)
		}
		if progress != nil {
			progress(i+1, total)
		}
	}

	slog.Info("batch complete",
		slog.Int("rows", len(table.Rows)),
		slog.Duration("elapsed", time.Since(start)),
	)

	return table, nil
}

func (r *Runner) processURL(ctx context.Context, url string, all bool, domain string) (row models.ResultRow) {
	row = models.ResultRow{SourceURL: url}

	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("page processing panicked",
				slog.String("url", url),
				slog.Any("panic", rec),
			)
			row.PageTitle = models.MarkerProcessingError
			row.AnchorText = fmt.Sprintf("%s %v", models.WarningPrefix, rec)
			row.BrandAnchors = nil
		}
	}()

	if err := ctx.Err(); err != nil {
		msg := fmt.Sprintf(models.MarkerFetchErrorFormat, err)
		row.PageTitle = msg
		row.AnchorText = msg
		return row
	}

	out := r.classifier.Classify(url)
	switch out.Status {
	case classifier.StatusRemoved:
		row.PageTitle = models.MarkerRemoved
		row.AnchorText = models.MarkerRemoved
	case classifier.StatusFetchError:
		msg := fmt.Sprintf(models.MarkerFetchErrorFormat, out.Err)
		row.PageTitle = msg
		row.AnchorText = msg
	default:
		row.PageTitle = out.Title
		if all {
			if r.cfg.PerBrandColumns {
				row.BrandAnchors = extractor.PerBrand(out.Doc, r.cfg.Brands)
			}
			row.AnchorText = extractor.ForAllBrands(out.Doc, r.cfg.Brands)
		} else {
			row.AnchorText = extractor.ForDomain(out.Doc, domain)
		}
	}

	return row
}
