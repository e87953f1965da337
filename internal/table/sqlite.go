package table

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// ReadSQLite reads a table of a SQLite database into a Frame.
func ReadSQLite(ctx context.Context, dsn, tableName string, maxRows int) (*Frame, error) {
	if tableName == "" {
		return nil, eris.New("table: sqlite: table name required")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "table: sqlite: open")
	}
	defer db.Close() //nolint:errcheck

	limit := -1 // SQLite: negative LIMIT means no limit
	if maxRows > 0 {
		limit = maxRows
	}

	query := fmt.Sprintf("SELECT * FROM %s LIMIT ?", quoteIdent(tableName))
	rows, err := db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, eris.Wrapf(err, "table: sqlite: query %s", tableName)
	}
	defer rows.Close() //nolint:errcheck

	header, err := rows.Columns()
	if err != nil {
		return nil, eris.Wrap(err, "table: sqlite: columns")
	}

	var records [][]string
	for rows.Next() {
		vals := make([]any, len(header))
		ptrs := make([]any, len(header))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, eris.Wrap(err, "table: sqlite: scan row")
		}
		record := make([]string, len(vals))
		for i, v := range vals {
			record[i] = cellString(v)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "table: sqlite: iterate rows")
	}

	return NewFrame(header, records), nil
}

// quoteIdent quotes a possibly schema-qualified SQL identifier.
func quoteIdent(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = `"` + strings.ReplaceAll(p, `"`, `""`) + `"`
	}
	return strings.Join(parts, ".")
}

// cellString stringifies a scanned database value. NULL becomes the empty string.
func cellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.Format(time.RFC3339)
	default:
		return fmt.Sprint(t)
	}
}
