// Package extractor pulls brand anchor texts out of parsed pages.
package extractor

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/anchorscan/anchorscan/config"
	"github.com/anchorscan/anchorscan/models"
)

// ForDomain collects the anchor texts of links whose href contains domain as
// a substring. Texts are trimmed, empties dropped, duplicates kept, and the
// result joined with "; ". When nothing matches it returns the no-link marker
// for that domain.
func ForDomain(doc *goquery.Document, domain string) string {
	anchors := anchorTexts(doc, domain)
	if len(anchors) == 0 {
		return fmt.Sprintf(models.MarkerNoBrandLinkFormat, domain)
	}
	return strings.Join(anchors, "; ")
}

// ForAllBrands collects anchor texts for every brand in directory order and
// joins them into a single combined value. A link whose href mentions two
// brand domains is counted once per brand.
func ForAllBrands(doc *goquery.Document, brands config.BrandDirectory) string {
	var anchors []string
	for _, b := range brands {
		anchors = append(anchors, anchorTexts(doc, b.Domain)...)
	}
	if len(anchors) == 0 {
		return models.MarkerNoLinks
	}
	return strings.Join(anchors, "; ")
}

// PerBrand collects anchor texts separately for each brand, keyed by brand
// name. Brands without matches map to the empty string.
func PerBrand(doc *goquery.Document, brands config.BrandDirectory) map[string]string {
	out := make(map[string]string, len(brands))
	for _, b := range brands {
		out[b.Name] = strings.Join(anchorTexts(doc, b.Domain), "; ")
	}
	return out
}

func anchorTexts(doc *goquery.Document, domain string) []string {
	var texts []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if !strings.Contains(href, domain) {
			return
		}
		text := strings.TrimSpace(sel.Text())
		if text == "" {
			return
		}
		texts = append(texts, text)
	})
	return texts
}
