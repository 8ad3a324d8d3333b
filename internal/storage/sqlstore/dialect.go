package sqlstore

import (
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// Dialect captures what differs between the supported SQL engines.
type Dialect struct {
	Name       string
	DriverName string
	// DocumentType is the column type of the JSON documents.
	DocumentType string
	// OrderByID sorts ids in byte order.
	OrderByID   string
	placeholder func(n int) string
	jsonText    func(field string) string
	inClause    func(column string, ids []string, first int) (string, []any)
}

var Postgres = Dialect{
	Name:         "postgres",
	DriverName:   "postgres",
	DocumentType: "JSONB",
	OrderByID:    `ORDER BY id COLLATE "C"`,
	placeholder: func(n int) string {
		return fmt.Sprintf("$%d", n)
	},
	jsonText: func(field string) string {
		return fmt.Sprintf("(donnees->>'%s')", field)
	},
	inClause: func(column string, ids []string, first int) (string, []any) {
		return fmt.Sprintf("%s = ANY($%d)", column, first), []any{pq.Array(ids)}
	},
}

var SQLite = Dialect{
	Name:         "sqlite",
	DriverName:   "sqlite",
	DocumentType: "TEXT",
	OrderByID:    "ORDER BY id",
	placeholder: func(int) string {
		return "?"
	},
	jsonText: func(field string) string {
		return fmt.Sprintf("json_extract(donnees, '$.%s')", field)
	},
	inClause: func(column string, ids []string, _ int) (string, []any) {
		marks := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
		args := make([]any, 0, len(ids))
		for _, id := range ids {
			args = append(args, id)
		}
		return fmt.Sprintf("%s IN (%s)", column, marks), args
	},
}

// DialectByName resolves a configured backend name.
func DialectByName(name string) (Dialect, error) {
	switch name {
	case Postgres.Name:
		return Postgres, nil
	case SQLite.Name:
		return SQLite, nil
	default:
		return Dialect{}, fmt.Errorf("unknown sql dialect %q", name)
	}
}
