// Package csvfile reads comma-delimited input files into string rows.
package csvfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
)

var (
	ErrFile  = errors.New("csv file error")
	ErrParse = errors.New("csv parse error")
)

// ReadCSV reads every row of the file at path. When skipHeader is set the
// first row is dropped. Fields are returned exactly as parsed.
func ReadCSV(path string, skipHeader bool) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFile, err)
	}
	defer f.Close()

	rows, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if skipHeader && len(rows) > 0 {
		rows = rows[1:]
	}
	return rows, nil
}

// Read parses all rows from r. Every row must have the same number of fields
// as the first one.
func Read(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 0

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				return nil, fmt.Errorf("%w: line %d: %w", ErrParse, parseErr.Line, parseErr.Err)
			}
			return nil, fmt.Errorf("%w: %w", ErrFile, err)
		}
		rows = append(rows, record)
	}

	if rows == nil {
		rows = [][]string{}
	}
	return rows, nil
}
