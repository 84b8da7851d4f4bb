package lookups

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/naming"
)

// ErrUnknownTable is returned by providers that do not serve a table.
var ErrUnknownTable = errors.New("lookups: unknown table")

// Option is one selectable value of a lookup table.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Provider answers searches against lookup tables. limit is already clamped
// by the handler; an empty query asks for the first limit rows.
type Provider interface {
	SearchLookup(ctx context.Context, table, query string, limit int) ([]Option, error)
}

// StaticProvider serves in-memory tables.
type StaticProvider struct {
	tables map[string][]Option
}

// NewStaticProvider copies tables into a provider.
func NewStaticProvider(tables map[string][]Option) *StaticProvider {
	p := &StaticProvider{tables: make(map[string][]Option, len(tables))}
	for name, rows := range tables {
		p.tables[name] = append([]Option(nil), rows...)
	}
	return p
}

// SearchLookup ranks the rows of table against query.
func (p *StaticProvider) SearchLookup(ctx context.Context, table, query string, limit int) ([]Option, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, ok := p.tables[table]
	if !ok {
		return nil, ErrUnknownTable
	}
	return Rank(rows, query, limit), nil
}

// Rank filters rows whose label or value contains query, ignoring case and
// accents. Label prefix matches come first, then the rest, each group by
// label. A blank query keeps every row in its original order. limit <= 0
// means no limit.
func Rank(rows []Option, query string, limit int) []Option {
	q := naming.Fold(strings.ToLower(strings.TrimSpace(query)))
	if q == "" {
		out := append([]Option(nil), rows...)
		if limit > 0 && len(out) > limit {
			out = out[:limit]
		}
		return out
	}

	matches := make([]matchedOption, 0, 16)
	for _, row := range rows {
		label := naming.Fold(strings.ToLower(row.Label))
		value := naming.Fold(strings.ToLower(row.Value))
		if !strings.Contains(label, q) && !strings.Contains(value, q) {
			continue
		}
		matches = append(matches, matchedOption{
			option:   row,
			key:      label,
			isPrefix: strings.HasPrefix(label, q),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].isPrefix != matches[j].isPrefix {
			return matches[i].isPrefix
		}
		return matches[i].key < matches[j].key
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	out := make([]Option, 0, len(matches))
	for _, match := range matches {
		out = append(out, match.option)
	}
	return out
}

type matchedOption struct {
	option   Option
	key      string
	isPrefix bool
}
