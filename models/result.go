// Package models defines data structures shared by the classifier, runner, and shells.
package models

import "time"

// Marker strings written into result rows. Downstream filters match on these
// exact values, so they must not change between releases.
const (
	MarkerRemoved         = "❌ Page Removed / Content Unavailable"
	MarkerNoTitle         = "(No title found)"
	MarkerNoLinks         = "No links found"
	MarkerProcessingError = "⚠️ Error Processing Page"

	// MarkerNoBrandLinkFormat takes the brand domain, not the display name.
	MarkerNoBrandLinkFormat = "❌ No %s link found"

	// MarkerFetchErrorFormat takes the underlying fetch failure.
	MarkerFetchErrorFormat = "⚠️ Error: %v"

	WarningPrefix = "⚠️"
	RemovedPrefix = "❌"
)

// Column names of the result table. Brand columns, when enabled, are inserted
// between ColumnPageTitle and ColumnAnchorText.
const (
	ColumnSourceURL  = "Source URL"
	ColumnPageTitle  = "Page Title"
	ColumnAnchorText = "Anchor Text"
)

// ResultRow is the outcome for a single input URL.
type ResultRow struct {
	SourceURL  string `csv:"Source URL" json:"source_url"`
	PageTitle  string `csv:"Page Title" json:"page_title"`
	AnchorText string `csv:"Anchor Text" json:"anchor_text"`

	// BrandAnchors holds per-brand joined anchor texts, keyed by brand name.
	// Populated only when per-brand columns are enabled.
	BrandAnchors map[string]string `csv:"-" json:"brand_anchors,omitempty"`
}

// ResultTable is one batch worth of rows, in input order.
type ResultTable struct {
	Rows []ResultRow

	// BrandColumns lists the brand column names in directory order when
	// per-brand columns are enabled, nil otherwise.
	BrandColumns []string

	CreatedAt time.Time
}

// Len returns the number of rows.
func (t *ResultTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Columns returns the table's column names in render order.
func (t *ResultTable) Columns() []string {
	cols := make([]string, 0, 3+len(t.BrandColumns))
	cols = append(cols, ColumnSourceURL, ColumnPageTitle)
	cols = append(cols, t.BrandColumns...)
	cols = append(cols, ColumnAnchorText)
	return cols
}

// StatusTag classifies a result row for filtering. Values are display strings.
type StatusTag string

const (
	StatusRemoved     StatusTag = "Removed"
	StatusNoLinks     StatusTag = "No Links"
	StatusNoBrandLink StatusTag = "No Brand Link"
	StatusError       StatusTag = "Error"
	StatusHasLinks    StatusTag = "Has Links"
	StatusUnknown     StatusTag = "Unknown"
)

// RunSummary holds the overall result of one batch run.
type RunSummary struct {
	StartTime   time.Time
	EndTime     time.Time
	URLCount    int
	Live        int
	Removed     int
	FetchErrors int
	CacheHits   int64
	OutputFile  string
}

// Duration returns the wall time the batch took.
func (s RunSummary) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}
