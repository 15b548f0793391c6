package services

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"library-loader/internal/csvfile"
	"library-loader/internal/query"
	"library-loader/internal/schema"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func loaderSources() []schema.Source {
	return []schema.Source{
		{Table: booksTable(), File: "Books.csv", Excluded: []string{"book_id"}},
		{Table: pricesTable(), File: "Prices.csv", Excluded: []string{"price_id"}},
	}
}

func expectRecreate(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	mock.ExpectExec("DROP TABLE IF EXISTS `Books`").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DROP TABLE IF EXISTS `Prices`").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(mustStatement(t)(CreateTableStatement(pricesTable()))).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(mustStatement(t)(CreateTableStatement(booksTable()))).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(listTablesQuery).
		WillReturnRows(sqlmock.NewRows([]string{"TABLE_NAME"}).AddRow("Books").AddRow("Prices"))
}

func TestLoaderService_Run(t *testing.T) {
	db, mock := newMockDatabase(t)
	dir := t.TempDir()
	writeCSV(t, dir, "Prices.csv", "rental_price\n60.00\n")
	writeCSV(t, dir, "Books.csv", "title,price_id\nDune,1\n")

	expectRecreate(t, mock)

	mock.ExpectBegin()
	mock.ExpectPrepare("INSERT INTO `Prices` (`rental_price`) VALUES (?)").
		ExpectExec().WithArgs("60.00").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectPrepare("INSERT INTO `Books` (`title`, `price_id`) VALUES (?, ?)").
		ExpectExec().WithArgs("Dune", "1").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	mock.ExpectQuery("SELECT * FROM `Books` WHERE `price_id` IN (SELECT `price_id` FROM `Prices` WHERE `rental_price` > ?)").
		WithArgs(50).
		WillReturnRows(sqlmock.NewRows([]string{"book_id", "title", "price_id"}).AddRow(int64(1), "Dune", int64(1)))

	reports := []schema.Report{{
		Title: "Premium books",
		Query: query.From("Books").Filter(query.InSubquery("price_id",
			query.From("Prices").Select("price_id").Filter(query.Gt("rental_price", 50)))),
	}}

	var out bytes.Buffer
	loader := NewLoaderService(db, NewSchemaService(db), loaderSources(), reports, dir, &out)

	summary, err := loader.Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.NotEmpty(t, summary.RunID)
	assert.Equal(t, []string{"Books", "Prices"}, summary.Tables)
	require.Len(t, summary.Loads, 2)
	assert.Equal(t, "Prices", summary.Loads[0].TableName, "prices load before books")
	assert.Equal(t, int64(1), summary.Loads[1].Rows)
	assert.Equal(t, 1, summary.Reports)

	output := out.String()
	assert.Contains(t, output, "Inserting from Prices.csv")
	assert.Contains(t, output, "1 row(s) were inserted.")
	assert.Contains(t, output, "Premium books:")
	assert.Contains(t, output, "Dune")
}

func TestLoaderService_Run_MissingCSV(t *testing.T) {
	db, mock := newMockDatabase(t)
	dir := t.TempDir()

	expectRecreate(t, mock)

	var out bytes.Buffer
	loader := NewLoaderService(db, NewSchemaService(db), loaderSources(), nil, dir, &out)

	_, err := loader.Run(context.Background())
	require.ErrorIs(t, err, csvfile.ErrFile)
	assert.Contains(t, err.Error(), "Prices")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoaderService_Run_StopsOnSchemaError(t *testing.T) {
	db, mock := newMockDatabase(t)

	mock.ExpectExec("DROP TABLE IF EXISTS `Books`").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DROP TABLE IF EXISTS `Prices`").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(mustStatement(t)(CreateTableStatement(pricesTable()))).
		WillReturnError(assert.AnError)

	loader := NewLoaderService(db, NewSchemaService(db), loaderSources(), nil, t.TempDir(), &bytes.Buffer{})

	_, err := loader.Run(context.Background())
	require.ErrorIs(t, err, ErrSchema)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, "NULL"},
		{"Dune", "Dune"},
		{int64(2001), "2001"},
		{time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "2024-03-01"},
		{time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC), "2024-03-01 10:30:00"},
	}

	for _, tt := range tests {
		if got := formatValue(tt.in); got != tt.want {
			t.Errorf("formatValue(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
