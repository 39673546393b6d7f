package domain

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseDailyCSV reads a raw daily report file into its header and data
// rows. Errors are reported as ParseError carrying the report date.
func ParseDailyCSV(day time.Time, data []byte) (header []string, rows [][]string, err error) {
	r := csv.NewReader(bytes.NewReader(data))
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, &ParseError{Date: day, Err: err}
	}
	if len(records) == 0 {
		return nil, nil, &ParseError{Date: day, Err: errors.New("empty file")}
	}

	header = records[0]
	// GitHub-served CSVs occasionally carry a UTF-8 BOM.
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}
	return header, records[1:], nil
}

// RecordsFromRows converts parsed rows into DailyRecords, stamping each
// with the report date. The header must already be normalized to legacy
// names. Empty cells become nil; a non-empty cell that fails numeric
// parsing is a ParseError, because it means the file is not the table it
// claims to be.
func RecordsFromRows(day time.Time, header []string, rows [][]string) ([]DailyRecord, error) {
	idx := make(map[string]int, len(header))
	for i, col := range header {
		idx[col] = i
	}

	records := make([]DailyRecord, 0, len(rows))
	for i, row := range rows {
		cells := rowParser{row: row, idx: idx}
		rec := DailyRecord{
			Region:              row[idx[ColProvinceState]],
			Date:                day,
			Confirmed:           cells.intp(ColConfirmed),
			Deaths:              cells.intp(ColDeaths),
			IncidentRate:        cells.floatp(ColIncidentRate),
			PeopleTested:        cells.intp(ColPeopleTested),
			PeopleHospitalized:  cells.intp(ColPeopleHospitalized),
			MortalityRate:       cells.floatp(ColMortalityRate),
			TestingRate:         cells.floatp(ColTestingRate),
			HospitalizationRate: cells.floatp(ColHospitalizationRate),
		}
		if cells.err != nil {
			return nil, &ParseError{Date: day, Err: fmt.Errorf("row %d: %w", i+2, cells.err)}
		}
		records = append(records, rec)
	}
	return records, nil
}

// rowParser extracts typed cells from a row, remembering the first error.
type rowParser struct {
	row []string
	idx map[string]int
	err error
}

// intp parses a cumulative counter cell. The source writes these both as
// integers and as float literals ("1234.0"), so fall back to float parsing
// and truncate.
func (p *rowParser) intp(col string) *int64 {
	s := strings.TrimSpace(p.row[p.idx[col]])
	if s == "" || p.err != nil {
		return nil
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return &v
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		p.err = fmt.Errorf("column %s: %q is not numeric", col, s)
		return nil
	}
	v := int64(f)
	return &v
}

func (p *rowParser) floatp(col string) *float64 {
	s := strings.TrimSpace(p.row[p.idx[col]])
	if s == "" || p.err != nil {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		p.err = fmt.Errorf("column %s: %q is not numeric", col, s)
		return nil
	}
	return &v
}
