package airquality

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/airsante/airwatch/internal/table"
)

// deaccent decomposes characters and removes combining marks, turning
// "début" into "debut".
var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeName canonicalizes a single column name: accents stripped,
// lower-cased, spaces and hyphens replaced by underscores. Idempotent.
func NormalizeName(name string) string {
	if stripped, _, err := transform.String(deaccent, name); err == nil {
		name = stripped
	}
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "-", "_")
	return name
}

// NormalizeHeaders returns a copy of the batch with every column name
// canonicalized. Unrecognized columns pass through renamed but untouched.
func NormalizeHeaders(t *table.Table) *table.Table {
	out := table.New()
	renamed := make(map[string]string, len(t.Headers))
	for _, h := range t.Headers {
		n := NormalizeName(h)
		renamed[h] = n
		out.AddColumn(n)
	}

	out.Rows = make([]table.Row, 0, len(t.Rows))
	for _, row := range t.Rows {
		nr := make(table.Row, len(row))
		for k, v := range row {
			n, ok := renamed[k]
			if !ok {
				n = NormalizeName(k)
			}
			nr[n] = v
		}
		out.Rows = append(out.Rows, nr)
	}
	return out
}
