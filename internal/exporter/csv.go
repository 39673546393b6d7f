// Package exporter writes the assembled table as one combined CSV, the
// artifact the downstream plotting and regression report consumes.
package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/couchcryptid/covid-daily-etl/internal/config"
	"github.com/couchcryptid/covid-daily-etl/internal/domain"
)

// Columns is the output column order. Legacy names are canonical; the two
// delta columns come last.
var Columns = []string{
	domain.ColProvinceState,
	"Date",
	domain.ColConfirmed,
	domain.ColDeaths,
	domain.ColIncidentRate,
	domain.ColPeopleTested,
	domain.ColPeopleHospitalized,
	domain.ColMortalityRate,
	domain.ColTestingRate,
	domain.ColHospitalizationRate,
	"New_Deaths",
	"New_Hospitalizations",
}

// WriteFile writes the table to path, creating parent directories as
// needed. The file is replaced atomically enough for a one-shot run: a
// failed export leaves no half-written file at the final path.
func WriteFile(path string, table *domain.Table) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}

	if err := Write(f, table); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close output file: %w", err)
	}
	return os.Rename(tmp, path)
}

// Write streams the table as CSV. Missing values become empty cells.
func Write(w io.Writer, table *domain.Table) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := range table.Records {
		if err := cw.Write(row(&table.Records[i])); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func row(rec *domain.DailyRecord) []string {
	return []string{
		rec.Region,
		rec.Date.Format(config.DateLayout),
		intCell(rec.Confirmed),
		intCell(rec.Deaths),
		floatCell(rec.IncidentRate),
		intCell(rec.PeopleTested),
		intCell(rec.PeopleHospitalized),
		floatCell(rec.MortalityRate),
		floatCell(rec.TestingRate),
		floatCell(rec.HospitalizationRate),
		intCell(rec.NewDeaths),
		intCell(rec.NewHospitalizations),
	}
}

func intCell(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

func floatCell(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
