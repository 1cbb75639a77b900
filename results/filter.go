package results

import (
	"strings"

	"github.com/anchorscan/anchorscan/models"
)

// Tag derives the status of a row from its rendered fields. Rules are
// checked in order; the first match wins.
func Tag(row models.ResultRow) models.StatusTag {
	at := row.AnchorText
	pt := row.PageTitle

	switch {
	case strings.HasPrefix(at, models.MarkerRemoved):
		return models.StatusRemoved
	case at == models.MarkerNoLinks:
		return models.StatusNoLinks
	case strings.HasPrefix(at, "❌ No ") && strings.Contains(at, "link found"):
		return models.StatusNoBrandLink
	case strings.HasPrefix(at, models.WarningPrefix) || strings.HasPrefix(pt, models.WarningPrefix):
		return models.StatusError
	case at != "" && !strings.HasPrefix(at, models.RemovedPrefix) && !strings.HasPrefix(at, models.WarningPrefix):
		return models.StatusHasLinks
	default:
		return models.StatusUnknown
	}
}

// View is a named filter over the result table.
type View struct {
	Name   string
	Tag    models.StatusTag
	Invert bool
	All    bool
}

// Views returns the selectable filters in display order.
func Views() []View {
	return []View{
		{Name: "Show all", All: true},
		{Name: "Only Removed", Tag: models.StatusRemoved},
		{Name: "Hide Removed", Tag: models.StatusRemoved, Invert: true},
		{Name: "Only “No links found”", Tag: models.StatusNoLinks},
		{Name: "Only Errors", Tag: models.StatusError},
		{Name: "Only Rows With Links", Tag: models.StatusHasLinks},
	}
}

// ViewByName resolves a view by its display name.
func ViewByName(name string) (View, bool) {
	for _, v := range Views() {
		if v.Name == name {
			return v, true
		}
	}
	return View{}, false
}

// Matches reports whether row belongs to the view.
func (v View) Matches(row models.ResultRow) bool {
	if v.All {
		return true
	}
	matched := Tag(row) == v.Tag
	if v.Invert {
		return !matched
	}
	return matched
}

// Apply projects table through v, preserving row order. The input table is
// never mutated and shares no row slice with the projection.
func Apply(table *models.ResultTable, v View) *models.ResultTable {
	if table == nil {
		return nil
	}
	out := &models.ResultTable{
		BrandColumns: table.BrandColumns,
		CreatedAt:    table.CreatedAt,
	}
	for _, row := range table.Rows {
		if v.Matches(row) {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

// Summary counts table rows by status tag.
type Summary struct {
	Total int
	ByTag map[models.StatusTag]int
}

// Summarize tallies table rows by tag.
func Summarize(table *models.ResultTable) Summary {
	s := Summary{ByTag: make(map[models.StatusTag]int)}
	if table == nil {
		return s
	}
	s.Total = len(table.Rows)
	for _, row := range table.Rows {
		s.ByTag[Tag(row)]++
	}
	return s
}
