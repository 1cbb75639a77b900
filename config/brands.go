package config

import "fmt"

// AllBrands is the selector value meaning every configured brand at once.
const AllBrands = "All brands"

// Brand maps a display name to the domain substring its links are matched on.
type Brand struct {
	Name   string
	Domain string
}

// BrandDirectory is the ordered set of brands anchors are extracted for.
// Order matters: all-brands extraction and per-brand columns follow it.
type BrandDirectory []Brand

// DefaultBrands returns the built-in sportsbook directory.
func DefaultBrands() BrandDirectory {
	return BrandDirectory{
		{Name: "Action Network", Domain: "actionnetwork.com"},
		{Name: "Vegas Insider", Domain: "vegasinsider.com"},
		{Name: "RotoGrinders", Domain: "rotogrinders.com"},
		{Name: "Canada Sports Betting", Domain: "canadasportsbetting.ca"},
	}
}

// DomainFor resolves a brand display name to its domain substring.
func (d BrandDirectory) DomainFor(name string) (string, bool) {
	for _, b := range d {
		if b.Name == name {
			return b.Domain, true
		}
	}
	return "", false
}

// Names returns the brand display names in directory order.
func (d BrandDirectory) Names() []string {
	names := make([]string, len(d))
	for i, b := range d {
		names[i] = b.Name
	}
	return names
}

// Validate ensures the directory is non-empty and every entry is usable.
func (d BrandDirectory) Validate() error {
	if len(d) == 0 {
		return fmt.Errorf("brand directory cannot be empty")
	}
	seen := make(map[string]struct{}, len(d))
	for _, b := range d {
		if b.Name == "" {
			return fmt.Errorf("brand name cannot be empty")
		}
		if b.Name == AllBrands {
			return fmt.Errorf("brand name %q is reserved", AllBrands)
		}
		if b.Domain == "" {
			return fmt.Errorf("brand %s has an empty domain", b.Name)
		}
		if _, dup := seen[b.Name]; dup {
			return fmt.Errorf("duplicate brand name: %s", b.Name)
		}
		seen[b.Name] = struct{}{}
	}
	return nil
}
