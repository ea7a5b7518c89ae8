// Package catalog models the venue catalog served by the prediction service:
// countries mapped to venues mapped to the venue's average first-innings score.
package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// DefaultAverageScore is used for venues the catalog does not know.
const DefaultAverageScore = 160

// Catalog maps country -> venue -> average score.
type Catalog map[string]map[string]float64

// Load decodes a catalog from JSON.
func Load(r io.Reader) (Catalog, error) {
	var c Catalog
	if err := json.NewDecoder(r).Decode(&c); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if c == nil {
		c = Catalog{}
	}
	return c, nil
}

// LoadFile reads a catalog from a JSON file on disk.
func LoadFile(path string) (Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Countries returns the country names in sorted order.
func (c Catalog) Countries() []string {
	out := make([]string, 0, len(c))
	for country := range c {
		out = append(out, country)
	}
	sort.Strings(out)
	return out
}

// Venues returns the venues of country in sorted order.
func (c Catalog) Venues(country string) []string {
	venues := c[country]
	out := make([]string, 0, len(venues))
	for v := range venues {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// First returns the first country and its first venue.
func (c Catalog) First() (country, venue string) {
	countries := c.Countries()
	if len(countries) == 0 {
		return "", ""
	}
	country = countries[0]
	if venues := c.Venues(country); len(venues) > 0 {
		venue = venues[0]
	}
	return country, venue
}

// Has reports whether venue is listed under country.
func (c Catalog) Has(country, venue string) bool {
	_, ok := c[country][venue]
	return ok
}

// AverageScore returns the venue average, or DefaultAverageScore.
func (c Catalog) AverageScore(country, venue string) float64 {
	if avg, ok := c[country][venue]; ok {
		return avg
	}
	return DefaultAverageScore
}

// Suggest returns the venue of country closest to name by edit distance,
// ignoring case. ok is false when nothing is close enough.
func (c Catalog) Suggest(country, name string) (string, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return "", false
	}
	best, bestDist := "", -1
	for _, venue := range c.Venues(country) {
		d := levenshtein.ComputeDistance(needle, strings.ToLower(venue))
		if bestDist < 0 || d < bestDist {
			best, bestDist = venue, d
		}
	}
	if bestDist < 0 || bestDist > maxSuggestDistance(needle) {
		return "", false
	}
	return best, true
}

func maxSuggestDistance(s string) int {
	n := len([]rune(s))
	return (n + 2) / 3
}
