// Command genmock generates synthetic JHU-style daily report CSV fixtures
// for a date range. Files before the cutover use the legacy column names,
// files at or after it use the current names, so a directory of output is
// a faithful miniature of the real series — including the rename event.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -out data/mock \
//	  -start 2020-11-05 -end 2020-11-12 \
//	  -regions "Texas,California,New York"
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/covid-daily-etl/internal/config"
	"github.com/couchcryptid/covid-daily-etl/internal/domain"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outDir := flag.String("out", "", "output directory for daily CSV files")
	startStr := flag.String("start", "2020-11-05", "first report date (YYYY-MM-DD)")
	endStr := flag.String("end", "2020-11-12", "last report date (YYYY-MM-DD)")
	cutoverStr := flag.String("cutover", "2020-11-09", "first date using current column names (YYYY-MM-DD)")
	regionsStr := flag.String("regions", "Texas,California,New York", "comma-separated region names")
	sparse := flag.Bool("sparse", false, "blank People_Hospitalized on every fourth day to exercise missing-value handling")
	flag.Parse()

	if *outDir == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	start, err := time.Parse(config.DateLayout, *startStr)
	if err != nil {
		return fmt.Errorf("invalid -start: %w", err)
	}
	end, err := time.Parse(config.DateLayout, *endStr)
	if err != nil {
		return fmt.Errorf("invalid -end: %w", err)
	}
	cutover, err := time.Parse(config.DateLayout, *cutoverStr)
	if err != nil {
		return fmt.Errorf("invalid -cutover: %w", err)
	}
	regions := strings.Split(*regionsStr, ",")

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return err
	}

	files := 0
	for d, i := start, 0; !d.After(end); d, i = d.AddDate(0, 0, 1), i+1 {
		path := filepath.Join(*outDir, domain.FileName(d))
		legacy := d.Before(cutover)
		blankHosp := *sparse && i%4 == 3
		if err := writeDaily(path, d, regions, legacy, blankHosp); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		files++
	}

	log.Printf("wrote %d daily files to %s (%d regions each)", files, *outDir, len(regions))
	return nil
}

// header returns the full raw column set for one schema variant, in the
// order the upstream files use.
func header(legacy bool) []string {
	mortality, tested := domain.ColCaseFatalityRatio, domain.ColTotalTestResults
	if legacy {
		mortality, tested = domain.ColMortalityRate, domain.ColPeopleTested
	}
	return []string{
		domain.ColProvinceState,
		domain.ColCountryRegion,
		domain.ColLastUpdate,
		domain.ColLat,
		domain.ColLong,
		domain.ColConfirmed,
		domain.ColDeaths,
		domain.ColRecovered,
		domain.ColActive,
		domain.ColFIPS,
		domain.ColIncidentRate,
		tested,
		domain.ColPeopleHospitalized,
		mortality,
		domain.ColUID,
		domain.ColISO3,
		domain.ColTestingRate,
		domain.ColHospitalizationRate,
	}
}

// writeDaily writes one synthetic daily report. Values are deterministic
// functions of (region index, day) so repeated runs produce identical
// fixtures, and cumulative counters grow monotonically day over day.
func writeDaily(path string, day time.Time, regions []string, legacy, blankHosp bool) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header(legacy)); err != nil {
		return err
	}

	dayN := int64(day.Sub(time.Date(2020, 4, 12, 0, 0, 0, 0, time.UTC)).Hours() / 24)
	for r, region := range regions {
		region = strings.TrimSpace(region)
		rn := int64(r + 1)
		confirmed := 1000*rn + 25*dayN
		deaths := 10*rn + dayN
		tested := 5000*rn + 400*dayN
		hospitalized := strconv.FormatInt(50*rn+2*dayN, 10)
		if blankHosp {
			hospitalized = ""
		}

		row := []string{
			region,
			"US",
			day.Format("2006-01-02 15:04:05"),
			fmt.Sprintf("%.4f", 30.0+float64(r)),
			fmt.Sprintf("%.4f", -97.0-float64(r)),
			strconv.FormatInt(confirmed, 10),
			strconv.FormatInt(deaths, 10),
			"",
			"",
			strconv.Itoa(48 + r),
			fmt.Sprintf("%.2f", float64(confirmed)/290.0),
			strconv.FormatInt(tested, 10),
			hospitalized,
			fmt.Sprintf("%.4f", float64(deaths)/float64(confirmed)*100),
			strconv.Itoa(84000000 + r),
			"USA",
			fmt.Sprintf("%.2f", float64(tested)/290.0),
			fmt.Sprintf("%.4f", 5.0+float64(r)/10),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
