package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// DefaultLinksURL is the published index of the global building footprint
// dataset.
const DefaultLinksURL = "https://minedbuildings.blob.core.windows.net/global-buildings/dataset-links.csv"

// Link is one row of the links CSV.
type Link struct {
	Location   string
	QuadKey    string
	URL        string
	Size       string
	UploadDate string
}

var requiredColumns = []string{"Location", "QuadKey", "Url"}

// ParseLinks reads a links CSV. Columns are located by header name; Size
// and UploadDate are optional.
func ParseLinks(r io.Reader) ([]Link, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("source: links: empty file")
		}
		return nil, fmt.Errorf("source: links: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("source: links: missing column %q", name)
		}
	}

	field := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var links []Link
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("source: links: %w", err)
		}
		links = append(links, Link{
			Location:   field(rec, "Location"),
			QuadKey:    field(rec, "QuadKey"),
			URL:        field(rec, "Url"),
			Size:       field(rec, "Size"),
			UploadDate: field(rec, "UploadDate"),
		})
	}
	return links, nil
}

// Filter returns the links of location in file order. The match is exact.
func Filter(links []Link, location string) []Link {
	var out []Link
	for _, l := range links {
		if l.Location == location {
			out = append(out, l)
		}
	}
	return out
}

// Locations returns the distinct locations in sorted order.
func Locations(links []Link) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, l := range links {
		if _, ok := seen[l.Location]; ok {
			continue
		}
		seen[l.Location] = struct{}{}
		out = append(out, l.Location)
	}
	sort.Strings(out)
	return out
}

// SizeBytes parses the Size column ("1.2MB", "730KB", "12345"). It returns
// 0 when the value is missing or malformed.
func (l Link) SizeBytes() int64 {
	s := strings.ToUpper(strings.TrimSpace(l.Size))
	mult := 1.0
	for _, u := range []struct {
		suffix string
		mult   float64
	}{{"GB", 1 << 30}, {"MB", 1 << 20}, {"KB", 1 << 10}, {"B", 1}} {
		if strings.HasSuffix(s, u.suffix) {
			s = strings.TrimSpace(strings.TrimSuffix(s, u.suffix))
			mult = u.mult
			break
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0
	}
	return int64(v * mult)
}
