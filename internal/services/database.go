package services

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"library-loader/internal/logging"
	"library-loader/internal/models"
	"library-loader/internal/query"
)

// Database is the gateway over one MySQL connection. It renders table
// descriptors and queries into SQL and runs them.
type Database struct {
	db *sql.DB
}

// NewDatabase takes ownership of db and pins it to a single connection.
func NewDatabase(db *sql.DB) *Database {
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	return &Database{db: db}
}

func (d *Database) Close() error {
	return d.db.Close()
}

func (d *Database) CreateTable(ctx context.Context, table models.Table) error {
	stmt, err := CreateTableStatement(table)
	if err != nil {
		return fmt.Errorf("%w: create table %s: %w", ErrSchema, table.Name, err)
	}

	logging.FromContext(ctx).Debug("creating table", "table", table.Name, "sql", stmt)

	if _, err := d.db.ExecContext(ctx, stmt); err != nil {
		return wrapErr(err, ErrSchema, "create table %s", table.Name)
	}
	return nil
}

func (d *Database) DropTable(ctx context.Context, name string) error {
	stmt, err := DropTableStatement(name)
	if err != nil {
		return fmt.Errorf("%w: drop table %s: %w", ErrSchema, name, err)
	}

	if _, err := d.db.ExecContext(ctx, stmt); err != nil {
		return wrapErr(err, ErrSchema, "drop table %s", name)
	}
	return nil
}

// ListTables returns the base tables of the connected schema.
func (d *Database) ListTables(ctx context.Context) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, listTablesQuery)
	if err != nil {
		return nil, wrapErr(err, ErrQuery, "list tables")
	}
	defer rows.Close()

	tables := []string{}
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, wrapErr(err, ErrQuery, "list tables")
		}
		tables = append(tables, tableName)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapErr(err, ErrQuery, "list tables")
	}
	return tables, nil
}

// BulkInsert inserts rows into table in one transaction. Columns named in
// excluded (typically auto-increment keys) are left to the database; every
// row must supply the remaining columns in declaration order. Empty fields
// bind as NULL for nullable non-character columns and as '' otherwise. Any
// failing row rolls back the whole batch. Returns the number of rows affected.
func (d *Database) BulkInsert(ctx context.Context, table models.Table, excluded []string, rows [][]string) (int64, error) {
	attrs := table.Columns(excluded...)
	columns := make([]string, len(attrs))
	emptyAsNull := make([]bool, len(attrs))
	for i, attr := range attrs {
		columns[i] = attr.Name
		emptyAsNull[i] = attr.EmptyAsNull()
	}

	stmtSQL, err := InsertStatement(table.Name, columns)
	if err != nil {
		return 0, fmt.Errorf("%w: insert into %s: %w", ErrSchema, table.Name, err)
	}

	for i, row := range rows {
		if len(row) != len(columns) {
			return 0, fmt.Errorf("%w: insert into %s: row %d has %d fields, want %d (%s)",
				ErrRowShape, table.Name, i+1, len(row), len(columns), strings.Join(columns, ", "))
		}
	}

	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, wrapErr(err, ErrConnection, "insert into %s: begin", table.Name)
	}
	defer tx.Rollback() // No-op after commit

	stmt, err := tx.PrepareContext(ctx, stmtSQL)
	if err != nil {
		return 0, wrapErr(err, ErrSchema, "insert into %s: prepare", table.Name)
	}
	defer stmt.Close()

	var affected int64
	for i, row := range rows {
		result, err := stmt.ExecContext(ctx, rowArgs(row, emptyAsNull)...)
		if err != nil {
			return 0, wrapErr(err, ErrIntegrity, "insert into %s: row %d", table.Name, i+1)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return 0, wrapErr(err, ErrQuery, "insert into %s: row %d", table.Name, i+1)
		}
		affected += n
	}

	if err := tx.Commit(); err != nil {
		return 0, wrapErr(err, ErrIntegrity, "insert into %s: commit", table.Name)
	}

	logging.FromContext(ctx).Debug("bulk insert committed", slog.String("table", table.Name), slog.Int64("rows", affected))
	return affected, nil
}

// Select runs q and returns every matching row.
func (d *Database) Select(ctx context.Context, q *query.Select) (*models.ResultSet, error) {
	stmt, args, err := q.Build()
	if err != nil {
		return nil, fmt.Errorf("%w: build select: %w", ErrQuery, err)
	}

	logging.FromContext(ctx).Debug("running select", "sql", stmt, "args", len(args))

	rows, err := d.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, wrapErr(err, ErrQuery, "select from %s", q.From)
	}
	defer rows.Close()

	result, err := scanRows(rows)
	if err != nil {
		return nil, wrapErr(err, ErrQuery, "select from %s", q.From)
	}
	return result, nil
}

// rowArgs binds CSV fields as statement arguments. An empty field becomes
// NULL where emptyAsNull is set for its column; everything else is passed as
// text for the server to convert to the column type.
func rowArgs(row []string, emptyAsNull []bool) []any {
	args := make([]any, len(row))
	for i, field := range row {
		if field == "" && emptyAsNull[i] {
			args[i] = nil
			continue
		}
		args[i] = field
	}
	return args
}

func scanRows(rows *sql.Rows) (*models.ResultSet, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := &models.ResultSet{Columns: columns, Rows: [][]any{}}

	for rows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}

		for i, val := range values {
			// Convert []byte to string
			if b, ok := val.([]byte); ok {
				values[i] = string(b)
			}
		}

		result.Rows = append(result.Rows, values)
	}

	return result, rows.Err()
}
