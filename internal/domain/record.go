package domain

import "time"

// SuffixLayout is the date layout embedded in daily report file names.
const SuffixLayout = "01-02-2006"

// FileName returns the daily report file name for a date, e.g. "04-12-2020.csv".
func FileName(day time.Time) string {
	return day.Format(SuffixLayout) + ".csv"
}

// DailyRecord is one (region, date) snapshot from a daily report file.
// Cumulative counters and rates are pointers because the source leaves
// individual cells empty; nil means the value was not reported, which is
// distinct from zero.
type DailyRecord struct {
	Region string    `json:"region"`
	Date   time.Time `json:"date"`

	Confirmed           *int64   `json:"confirmed,omitempty"`
	Deaths              *int64   `json:"deaths,omitempty"`
	IncidentRate        *float64 `json:"incident_rate,omitempty"`
	PeopleTested        *int64   `json:"people_tested,omitempty"`
	PeopleHospitalized  *int64   `json:"people_hospitalized,omitempty"`
	MortalityRate       *float64 `json:"mortality_rate,omitempty"`
	TestingRate         *float64 `json:"testing_rate,omitempty"`
	HospitalizationRate *float64 `json:"hospitalization_rate,omitempty"`

	// Derived after full assembly; nil on the first row of a region and
	// wherever either side of the difference is missing.
	NewDeaths           *int64 `json:"new_deaths,omitempty"`
	NewHospitalizations *int64 `json:"new_hospitalizations,omitempty"`
}

// Table is the assembled series: every daily file's rows, normalized to
// the legacy schema, sorted by (region, date), with deltas computed.
// Downstream consumers treat it as an immutable snapshot.
type Table struct {
	Records  []DailyRecord `json:"records"`
	LoadedAt time.Time     `json:"loaded_at"`
}

// NewTable wraps assembled records with a load timestamp from the
// package clock.
func NewTable(records []DailyRecord) *Table {
	return &Table{
		Records:  records,
		LoadedAt: clock.Now(),
	}
}
