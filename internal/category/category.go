// Package category maps visited domains to coarse activity categories
package category

import (
	"bytes"
	_ "embed"
	"errors"
	"io/fs"
	"os"
	"slices"

	"github.com/BurntSushi/toml"

	"github.com/ayoisaiah/diary/internal/apperr"
)

// Category is an activity label assigned to a domain.
type Category string

const (
	Learning      Category = "learning"
	Productive    Category = "productive"
	Entertainment Category = "entertainment"
	SocialMedia   Category = "social media"
	Shopping      Category = "shopping"
	Misc          Category = "misc"
)

// All lists every category in display order.
var All = []Category{
	Learning,
	Productive,
	Entertainment,
	SocialMedia,
	Shopping,
	Misc,
}

var (
	errUnknownCategory = &apperr.Error{
		Message: "unknown category %q in domain table",
	}

	errDuplicateDomain = &apperr.Error{
		Message: "domain %q is listed under both %q and %q",
	}

	errDecodeTable = &apperr.Error{
		Message: "unable to decode domain table",
	}
)

//go:embed categories.toml
var defaultTable []byte

var std = mustParse(defaultTable)

// Valid reports whether c is one of the known categories.
func Valid(c Category) bool {
	return slices.Contains(All, c)
}

// IsProductive reports whether time spent in c counts towards streaks and
// productive-time achievements.
func (c Category) IsProductive() bool {
	return c == Learning || c == Productive
}

// Table is an exact-match lookup from domain to category.
type Table struct {
	domains map[string]Category
}

type tableFile map[string]struct {
	Domains []string `toml:"domains"`
}

// Parse decodes a TOML domain table.
func Parse(data []byte) (*Table, error) {
	var f tableFile

	_, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&f)
	if err != nil {
		return nil, errDecodeTable.Wrap(err)
	}

	t := &Table{
		domains: make(map[string]Category),
	}

	for name, section := range f {
		c := Category(name)
		if !Valid(c) {
			return nil, errUnknownCategory.Fmt(name)
		}

		for _, d := range section.Domains {
			if prev, ok := t.domains[d]; ok && prev != c {
				return nil, errDuplicateDomain.Fmt(d, prev, c)
			}

			t.domains[d] = c
		}
	}

	return t, nil
}

func mustParse(data []byte) *Table {
	t, err := Parse(data)
	if err != nil {
		panic(err)
	}

	return t
}

// Default returns a copy of the built-in domain table.
func Default() *Table {
	return std.clone()
}

// LoadWithOverrides returns the built-in table extended by the entries in the
// TOML file at path. A missing file is not an error.
func LoadWithOverrides(path string) (*Table, error) {
	t := Default()

	if path == "" {
		return t, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return t, nil
		}

		return nil, err
	}

	overrides, err := Parse(data)
	if err != nil {
		return nil, err
	}

	for d, c := range overrides.domains {
		t.domains[d] = c
	}

	return t, nil
}

func (t *Table) clone() *Table {
	m := make(map[string]Category, len(t.domains))
	for k, v := range t.domains {
		m[k] = v
	}

	return &Table{domains: m}
}

// Classify returns the category for domain, or Misc if the domain is not in
// the table. Sub-domains are not matched unless listed explicitly.
func (t *Table) Classify(domain string) Category {
	if t == nil {
		return std.Classify(domain)
	}

	if c, ok := t.domains[domain]; ok {
		return c
	}

	return Misc
}

// Len returns the number of domains in the table.
func (t *Table) Len() int {
	return len(t.domains)
}

// Domains returns the sorted domains mapped to c.
func (t *Table) Domains(c Category) []string {
	var out []string

	for d, cat := range t.domains {
		if cat == c {
			out = append(out, d)
		}
	}

	slices.Sort(out)

	return out
}

// Classify looks up domain in the built-in table.
func Classify(domain string) Category {
	return std.Classify(domain)
}
