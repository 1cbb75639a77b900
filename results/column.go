package results

import (
	"fmt"
	"strings"

	"github.com/anchorscan/anchorscan/models"
)

// Column serializes one column of the table, one value per line in row
// order, joined with CRLF so the result pastes cleanly into spreadsheets.
// Empty values become empty lines. With withHeader the column name becomes
// the first line.
func Column(table *models.ResultTable, name string, withHeader bool) (string, error) {
	if table == nil {
		return "", fmt.Errorf("no results to copy")
	}

	value, err := columnAccessor(table, name)
	if err != nil {
		return "", err
	}

	lines := make([]string, 0, len(table.Rows)+1)
	if withHeader {
		lines = append(lines, name)
	}
	for _, row := range table.Rows {
		lines = append(lines, value(row))
	}
	return strings.Join(lines, "\r\n"), nil
}

func columnAccessor(table *models.ResultTable, name string) (func(models.ResultRow) string, error) {
	switch name {
	case models.ColumnSourceURL:
		return func(r models.ResultRow) string { return r.SourceURL }, nil
	case models.ColumnPageTitle:
		return func(r models.ResultRow) string { return r.PageTitle }, nil
	case models.ColumnAnchorText:
		return func(r models.ResultRow) string { return r.AnchorText }, nil
	}
	for _, brand := range table.BrandColumns {
		if brand == name {
			return func(r models.ResultRow) string { return r.BrandAnchors[name] }, nil
		}
	}
	return nil, fmt.Errorf("unknown column %q", name)
}
