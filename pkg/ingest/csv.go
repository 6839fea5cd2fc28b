package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// Table is a parsed upload: the header row plus data rows, all as raw
// strings. Interpretation of the cells is the validator's job.
type Table struct {
	Columns []string
	Rows    [][]string
}

func (t Table) Empty() bool {
	return len(t.Rows) == 0
}

// ParseCSV reads an uploaded CSV into a Table. Ragged rows survive parsing;
// the validator rejects rows that come up short.
func ParseCSV(r io.Reader) (Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return Table{}, nil
	}
	if err != nil {
		return Table{}, fmt.Errorf("read csv header: %w", err)
	}

	columns := make([]string, len(header))
	for i, name := range header {
		columns[i] = strings.TrimSpace(name)
	}
	if len(columns) > 0 {
		// Excel exports lead with a UTF-8 BOM.
		columns[0] = strings.TrimPrefix(columns[0], "\uFEFF")
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("read csv rows: %w", err)
	}

	return Table{Columns: columns, Rows: rows}, nil
}
