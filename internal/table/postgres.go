package table

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

// Pool is the subset of pgxpool.Pool used to read tables. pgxmock pools satisfy it.
type Pool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const columnsQuery = `SELECT column_name, udt_name FROM information_schema.columns
	WHERE table_schema = $1 AND table_name = $2
	ORDER BY ordinal_position`

// ReadPostgres reads a PostgreSQL table into a Frame. name may be schema
// qualified and defaults to the public schema. PostGIS geometry and geography
// columns are read as WKT; every other column is cast to text.
func ReadPostgres(ctx context.Context, pool Pool, name string, maxRows int) (*Frame, error) {
	schema, tbl := "public", name
	if i := strings.IndexByte(name, '.'); i >= 0 {
		schema, tbl = name[:i], name[i+1:]
	}
	if tbl == "" {
		return nil, eris.New("table: postgres: table name required")
	}

	cols, err := postgresColumns(ctx, pool, schema, tbl)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, eris.Errorf("table: postgres: table %s.%s not found or has no columns", schema, tbl)
	}

	header := make([]string, len(cols))
	selects := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.name
		ident := quoteIdent(c.name)
		if c.udt == "geometry" || c.udt == "geography" {
			selects[i] = fmt.Sprintf("ST_AsText(%s) AS %s", ident, ident)
		} else {
			selects[i] = fmt.Sprintf("%s::text AS %s", ident, ident)
		}
	}

	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(selects, ", "), quoteIdent(schema+"."+tbl))
	var args []any
	if maxRows > 0 {
		query += " LIMIT $1"
		args = append(args, maxRows)
	}

	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrapf(err, "table: postgres: query %s.%s", schema, tbl)
	}
	defer rows.Close()

	var records [][]string
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, eris.Wrap(err, "table: postgres: read row")
		}
		record := make([]string, len(header))
		for i := range header {
			if i < len(vals) {
				record[i] = cellString(vals[i])
			}
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "table: postgres: iterate rows")
	}

	return NewFrame(header, records), nil
}

type pgColumn struct {
	name string
	udt  string
}

func postgresColumns(ctx context.Context, pool Pool, schema, tbl string) ([]pgColumn, error) {
	rows, err := pool.Query(ctx, columnsQuery, schema, tbl)
	if err != nil {
		return nil, eris.Wrapf(err, "table: postgres: describe %s.%s", schema, tbl)
	}
	defer rows.Close()

	var cols []pgColumn
	for rows.Next() {
		var c pgColumn
		if err := rows.Scan(&c.name, &c.udt); err != nil {
			return nil, eris.Wrap(err, "table: postgres: scan column")
		}
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "table: postgres: iterate columns")
	}
	return cols, nil
}
