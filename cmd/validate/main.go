// Command validate performs integrity checks on an exported combined
// table against the directory of daily files it was assembled from. It
// verifies row-count parity, the single normalized schema, (region, date)
// uniqueness, and the per-region delta columns.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -daily-dir data/cache \
//	  -combined data/covid_daily_us.csv
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/couchcryptid/covid-daily-etl/internal/domain"
	"github.com/couchcryptid/covid-daily-etl/internal/exporter"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dailyDir := flag.String("daily-dir", "", "directory containing raw daily CSV files")
	combined := flag.String("combined", "", "path to the exported combined CSV")
	flag.Parse()

	if *dailyDir == "" || *combined == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*dailyDir, *combined); code != 0 {
		os.Exit(code)
	}
}

func run(dailyDir, combinedPath string) int {
	fmt.Println("=== Combined Table Integrity Validation ===")
	fmt.Println()

	dailyRows, err := countDailyRows(dailyDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: read daily files: %v\n", err)
		return 1
	}

	header, rows, err := readCombined(combinedPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: read combined CSV: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateRowParity(dailyRows, len(rows)),
		validateSchema(header),
		validateUniqueness(header, rows),
		validateDeltas(header, rows),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "PASS"
		if !p.passed() {
			status = "FAIL"
			allPassed = false
		}
		fmt.Printf("[%s] %s\n", status, p.name)
		for _, e := range p.errors {
			fmt.Printf("       - %s\n", e)
		}
	}

	if !allPassed {
		return 1
	}
	fmt.Println("\nall phases passed")
	return 0
}

// countDailyRows sums the data rows of every *.csv file in dir.
func countDailyRows(dir string) (int, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return 0, err
	}
	if len(paths) == 0 {
		return 0, fmt.Errorf("no CSV files in %s", dir)
	}

	total := 0
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return 0, err
		}
		records, err := csv.NewReader(f).ReadAll()
		f.Close()
		if err != nil {
			return 0, fmt.Errorf("%s: %w", path, err)
		}
		if len(records) > 0 {
			total += len(records) - 1 // minus header
		}
	}
	fmt.Printf("daily files: %d, data rows: %d\n", len(paths), total)
	return total, nil
}

func readCombined(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("%s is empty", path)
	}
	fmt.Printf("combined table: %d rows\n", len(records)-1)
	return records[0], records[1:], nil
}

// validateRowParity checks the pure-union invariant: the combined table
// has exactly the sum of the daily files' row counts.
func validateRowParity(dailyRows, combinedRows int) *phase {
	p := &phase{name: "row parity (sum of daily rows == combined rows)"}
	if dailyRows != combinedRows {
		p.errorf("daily files hold %d rows, combined table holds %d", dailyRows, combinedRows)
	}
	return p
}

// validateSchema checks the combined header is exactly the canonical
// column set with legacy names only.
func validateSchema(header []string) *phase {
	p := &phase{name: "schema (canonical legacy columns only)"}
	if len(header) != len(exporter.Columns) {
		p.errorf("expected %d columns, found %d", len(exporter.Columns), len(header))
		return p
	}
	for i, want := range exporter.Columns {
		if header[i] != want {
			p.errorf("column %d: expected %s, found %s", i, want, header[i])
		}
	}
	for _, col := range header {
		if col == domain.ColCaseFatalityRatio || col == domain.ColTotalTestResults {
			p.errorf("current-schema column %s leaked into output", col)
		}
	}
	return p
}

func validateUniqueness(header []string, rows [][]string) *phase {
	p := &phase{name: "(region, date) uniqueness"}
	idx := indexOf(header)

	seen := make(map[string]bool, len(rows))
	for i, row := range rows {
		key := row[idx[domain.ColProvinceState]] + "|" + row[idx["Date"]]
		if seen[key] {
			p.errorf("row %d: duplicate (region, date) %s", i+2, key)
		}
		seen[key] = true
	}
	return p
}

// validateDeltas recomputes New_Deaths and New_Hospitalizations from the
// cumulative columns and compares against the exported values. The
// combined table is sorted by (region, date), so the predecessor row is
// the previous line whenever the region matches.
func validateDeltas(header []string, rows [][]string) *phase {
	p := &phase{name: "delta columns (per-region first differences)"}
	idx := indexOf(header)

	check := func(rowNum int, col string, got string, cur, prev *int64) {
		var want string
		if cur != nil && prev != nil {
			want = strconv.FormatInt(*cur-*prev, 10)
		}
		if got != want {
			p.errorf("row %d: %s is %q, recomputed %q", rowNum, col, got, want)
		}
	}

	for i, row := range rows {
		rowNum := i + 2
		var prev []string
		if i > 0 && rows[i-1][idx[domain.ColProvinceState]] == row[idx[domain.ColProvinceState]] {
			prev = rows[i-1]
		}

		if prev == nil {
			for _, col := range []string{"New_Deaths", "New_Hospitalizations"} {
				if v := row[idx[col]]; v != "" {
					p.errorf("row %d: first row of region has %s=%q, expected empty", rowNum, col, v)
				}
			}
			continue
		}

		check(rowNum, "New_Deaths", row[idx["New_Deaths"]],
			intOrNil(row[idx[domain.ColDeaths]]), intOrNil(prev[idx[domain.ColDeaths]]))
		check(rowNum, "New_Hospitalizations", row[idx["New_Hospitalizations"]],
			intOrNil(row[idx[domain.ColPeopleHospitalized]]), intOrNil(prev[idx[domain.ColPeopleHospitalized]]))
	}
	return p
}

func indexOf(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, col := range header {
		idx[col] = i
	}
	return idx
}

func intOrNil(s string) *int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return &v
}
