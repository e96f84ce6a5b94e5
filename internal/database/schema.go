package database

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// visitorField describes one logical field of the read path. The reader must
// tolerate schema drift: each field carries the candidate column names in
// preference order and a literal default emitted when none of them exist.
type visitorField struct {
	name     string   // output alias
	aliases  []string // candidate columns, first match wins
	def      string   // SQL literal used when no candidate exists
	coalesce bool     // wrap the matched column in COALESCE(col, def)
}

var visitorFields = []visitorField{
	{name: "id", aliases: []string{"id"}, def: "ROW_NUMBER() OVER()"},
	{name: "ip", aliases: []string{"ip", "ip_address"}, def: "'Unknown'"},
	{name: "country", aliases: []string{"country", "country_code"}, def: "'Unknown'", coalesce: true},
	{name: "city", aliases: []string{"city", "city_name"}, def: "'Unknown'", coalesce: true},
	{name: "state", aliases: []string{"state", "region"}, def: "'Unknown'", coalesce: true},
	{name: "client_timestamp", aliases: []string{"client_timestamp", "visit_time", "created_at", "timestamp"}, def: "NOW()"},
	{name: "language", aliases: []string{"language"}, def: "'Unknown'", coalesce: true},
	{name: "platform", aliases: []string{"platform"}, def: "'Unknown'", coalesce: true},
	{name: "user_agent", aliases: []string{"user_agent"}, def: "'Unknown'", coalesce: true},
	{name: "browser", aliases: []string{"browser"}, def: "'Unknown'", coalesce: true},
	{name: "version", aliases: []string{"version"}, def: "'Unknown'", coalesce: true},
	{name: "os", aliases: []string{"os"}, def: "'Unknown'", coalesce: true},
	{name: "device", aliases: []string{"device"}, def: "'Unknown'", coalesce: true},
	{name: "referrer", aliases: []string{"referrer"}, def: "'Direct'", coalesce: true},
	{name: "page_name", aliases: []string{"page_name"}, def: "'Unknown'", coalesce: true},
	{name: "is_vpn", aliases: []string{"is_vpn", "isvpn"}, def: "FALSE", coalesce: true},
}

// SchemaResolver caches the visitor table's actual column set. It is resolved
// on first use and invalidated explicitly when the schema may have changed
// (e.g. after the ingestion handler creates the table).
type SchemaResolver struct {
	mu   sync.Mutex
	cols map[string]bool
}

// Resolver is the shared resolver used by the read handlers.
var Resolver = &SchemaResolver{}

// Columns returns the cached column set, loading it from the catalog when
// empty.
func (r *SchemaResolver) Columns(ctx context.Context) (map[string]bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cols != nil {
		return r.cols, nil
	}

	cols, err := loadVisitorColumns(ctx)
	if err != nil {
		return nil, err
	}
	r.cols = cols
	return cols, nil
}

// Invalidate drops the cached column set so the next read re-inspects the
// catalog.
func (r *SchemaResolver) Invalidate() {
	r.mu.Lock()
	r.cols = nil
	r.mu.Unlock()
}

func loadVisitorColumns(ctx context.Context) (map[string]bool, error) {
	rows, err := DB.QueryContext(ctx, `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_name = $1
		ORDER BY ordinal_position`, VisitorTable)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect visitor table columns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	cols := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan column name: %w", err)
		}
		cols[name] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read visitor table columns: %w", err)
	}
	return cols, nil
}

// BuildVisitorSelect assembles the schema-tolerant SELECT statement for the
// data listing endpoint. Missing columns are replaced by literal defaults so
// rows written by older handler revisions still list cleanly.
func BuildVisitorSelect(cols map[string]bool) string {
	parts := make([]string, 0, len(visitorFields))
	for _, field := range visitorFields {
		parts = append(parts, field.expression(cols))
	}
	return "SELECT " + strings.Join(parts, ", ") +
		" FROM " + VisitorTable +
		" ORDER BY client_timestamp DESC"
}

func (f visitorField) expression(cols map[string]bool) string {
	for _, candidate := range f.aliases {
		if !cols[candidate] {
			continue
		}
		col := quoteIdent(candidate)
		if f.coalesce {
			return fmt.Sprintf("COALESCE(%s, %s) AS %s", col, f.def, f.name)
		}
		if candidate == f.name {
			return col
		}
		return col + " AS " + f.name
	}
	return f.def + " AS " + f.name
}

// quoteIdent quotes alias candidates that collide with SQL keywords.
func quoteIdent(name string) string {
	if name == "timestamp" {
		return `"timestamp"`
	}
	return name
}
