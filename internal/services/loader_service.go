package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"library-loader/internal/csvfile"
	"library-loader/internal/logging"
	"library-loader/internal/models"
	"library-loader/internal/schema"

	"github.com/google/uuid"
)

// LoaderService recreates the tables of its sources, loads their CSV files
// and prints the reports.
type LoaderService struct {
	db      *Database
	schema  *SchemaService
	sources []schema.Source
	reports []schema.Report
	dataDir string
	out     io.Writer
}

func NewLoaderService(db *Database, schemaService *SchemaService, sources []schema.Source, reports []schema.Report, dataDir string, out io.Writer) *LoaderService {
	return &LoaderService{
		db:      db,
		schema:  schemaService,
		sources: sources,
		reports: reports,
		dataDir: dataDir,
		out:     out,
	}
}

// Run performs one complete load. It stops at the first error.
func (s *LoaderService) Run(ctx context.Context) (*models.RunSummary, error) {
	summary := &models.RunSummary{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}
	ctx = logging.WithRunID(ctx, summary.RunID)
	logger := logging.FromContext(ctx)

	logger.Info("load started", "data_dir", s.dataDir, "tables", len(s.sources))

	tables := make([]models.Table, len(s.sources))
	byTable := make(map[string]schema.Source, len(s.sources))
	for i, src := range s.sources {
		tables[i] = src.Table
		byTable[src.Table.Name] = src
	}

	fmt.Fprintln(s.out, "Drop existing tables and create them again.")
	ordered, err := s.schema.Recreate(ctx, tables)
	if err != nil {
		return summary, err
	}
	for _, table := range ordered {
		fmt.Fprintf(s.out, "Created %s table\n", table.Name)
	}
	fmt.Fprintln(s.out)

	fmt.Fprintln(s.out, "Show all tables")
	summary.Tables, err = s.db.ListTables(ctx)
	if err != nil {
		return summary, err
	}
	for _, name := range summary.Tables {
		fmt.Fprintln(s.out, name)
	}
	fmt.Fprintln(s.out)

	for _, table := range ordered {
		load, err := s.loadTable(ctx, byTable[table.Name])
		if err != nil {
			return summary, err
		}
		summary.Loads = append(summary.Loads, load)
	}
	fmt.Fprintln(s.out)

	for _, report := range s.reports {
		result, err := s.db.Select(ctx, report.Query)
		if err != nil {
			return summary, fmt.Errorf("report %q: %w", report.Title, err)
		}
		fmt.Fprintf(s.out, "%s:\n", report.Title)
		if err := printResult(s.out, result); err != nil {
			return summary, err
		}
		fmt.Fprintln(s.out)
		summary.Reports++
	}

	summary.FinishedAt = time.Now()
	logger.Info("load finished",
		"duration", summary.FinishedAt.Sub(summary.StartedAt).String(),
		"reports", summary.Reports)

	return summary, nil
}

func (s *LoaderService) loadTable(ctx context.Context, src schema.Source) (models.TableLoad, error) {
	path := filepath.Join(s.dataDir, src.File)
	logger := logging.WithFields(ctx, "table", src.Table.Name, "file", path)

	fmt.Fprintf(s.out, "Inserting from %s\n", src.File)

	rows, err := csvfile.ReadCSV(path, true)
	if err != nil {
		return models.TableLoad{}, fmt.Errorf("load %s: %w", src.Table.Name, err)
	}

	n, err := s.db.BulkInsert(ctx, src.Table, src.Excluded, rows)
	if err != nil {
		return models.TableLoad{}, err
	}

	fmt.Fprintf(s.out, "%d row(s) were inserted.\n", n)
	logger.Info("table loaded", "rows", n)

	return models.TableLoad{TableName: src.Table.Name, File: src.File, Rows: n}, nil
}

func printResult(w io.Writer, result *models.ResultSet) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(result.Columns, "\t"))
	for _, row := range result.Rows {
		fields := make([]string, len(row))
		for i, v := range row {
			fields[i] = formatValue(v)
		}
		fmt.Fprintln(tw, strings.Join(fields, "\t"))
	}
	return tw.Flush()
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case time.Time:
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 && val.Nanosecond() == 0 {
			return val.Format("2006-01-02")
		}
		return val.Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprint(val)
	}
}
