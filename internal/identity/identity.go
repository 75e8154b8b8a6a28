// Package identity computes the stable key that decides whether two cart
// lines are the same line. Two adds with equal keys merge into one line.
package identity

import (
	"sort"
	"strings"

	"github.com/nabilnabti/tapeat-cart/internal/domain"
)

// escaper neutralizes the join delimiters inside free-text values. Without
// it a ';' or ',' inside a drink name could make two different selections
// key equally.
var escaper = strings.NewReplacer(`\`, `\\`, "|", `\|`, ";", `\;`, ",", `\,`)

// Key builds a canonical identity string from a product id, its menu options
// and its excluded ingredients. Structurally equal inputs always key equally:
// fields are written in a fixed order, list values are trimmed and sorted,
// and absent options key the same as an empty selection, so neither encoding
// nor selection order can split a line in two. Delimiter characters inside
// values are escaped, so different structures never key equally either.
func Key(productID string, opts *domain.MenuOptions, excluded []string) string {
	var b strings.Builder
	b.WriteString(escaper.Replace(productID))
	b.WriteByte('|')
	writeOptions(&b, opts)
	b.WriteByte('|')
	writeSorted(&b, excluded)
	return b.String()
}

// LineKey is Key applied to an existing line.
func LineKey(l domain.CartLine) string {
	return Key(l.ProductID, l.MenuOptions, l.ExcludedIngredients)
}

// OptionsEqual reports whether two option selections are structurally equal
// under the same canonical form Key uses.
func OptionsEqual(a, b *domain.MenuOptions) bool {
	var ka, kb strings.Builder
	writeOptions(&ka, a)
	writeOptions(&kb, b)
	return ka.String() == kb.String()
}

func writeOptions(b *strings.Builder, opts *domain.MenuOptions) {
	if opts == nil {
		opts = &domain.MenuOptions{}
	}
	b.WriteString(escaper.Replace(strings.TrimSpace(opts.Drink)))
	b.WriteByte(';')
	b.WriteString(escaper.Replace(strings.TrimSpace(opts.Side)))
	b.WriteByte(';')
	writeSorted(b, opts.Sauces)
}

func writeSorted(b *strings.Builder, vals []string) {
	if len(vals) == 0 {
		return
	}
	sorted := make([]string, 0, len(vals))
	for _, v := range vals {
		sorted = append(sorted, strings.TrimSpace(v))
	}
	sort.Strings(sorted)
	for i, v := range sorted {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(escaper.Replace(v))
	}
}
