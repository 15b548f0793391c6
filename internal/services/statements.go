package services

import (
	"fmt"
	"strings"

	"library-loader/internal/models"
	"library-loader/internal/query"
)

// CreateTableStatement renders the DDL for table: columns first, then
// foreign keys, then the table's other constraints, all in declaration order.
func CreateTableStatement(table models.Table) (string, error) {
	name, err := query.QuoteIdent(table.Name)
	if err != nil {
		return "", err
	}
	if len(table.Attributes) == 0 {
		return "", fmt.Errorf("table %s has no attributes", table.Name)
	}

	var defs []string
	for _, attr := range table.Attributes {
		col, err := query.QuoteIdent(attr.Name)
		if err != nil {
			return "", err
		}
		defs = append(defs, joinNonEmpty(col, attr.Type, attr.Constraints))
	}

	for _, fk := range table.ForeignKeys {
		col, err := query.QuoteIdent(fk.Name)
		if err != nil {
			return "", err
		}
		ref, err := query.QuoteIdent(fk.Table)
		if err != nil {
			return "", err
		}
		refCol, err := query.QuoteIdent(fk.Refer)
		if err != nil {
			return "", err
		}
		defs = append(defs, joinNonEmpty(
			fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s(%s)", col, ref, refCol),
			fk.Constraints,
		))
	}

	for _, other := range table.Other {
		if other = strings.TrimSpace(other); other != "" {
			defs = append(defs, other)
		}
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", name, strings.Join(defs, ", ")), nil
}

func DropTableStatement(name string) (string, error) {
	quoted, err := query.QuoteIdent(name)
	if err != nil {
		return "", err
	}
	return "DROP TABLE IF EXISTS " + quoted, nil
}

// InsertStatement renders a single-row parameterized INSERT for columns.
func InsertStatement(table string, columns []string) (string, error) {
	if len(columns) == 0 {
		return "", fmt.Errorf("insert into %s: no columns", table)
	}
	name, err := query.QuoteIdent(table)
	if err != nil {
		return "", err
	}
	cols, err := query.QuoteIdents(columns)
	if err != nil {
		return "", err
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", name, cols, placeholders), nil
}

const listTablesQuery = `SELECT TABLE_NAME
	          FROM information_schema.TABLES
	          WHERE TABLE_SCHEMA = DATABASE()
	          AND TABLE_TYPE = 'BASE TABLE'
	          ORDER BY TABLE_NAME`

func joinNonEmpty(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}
