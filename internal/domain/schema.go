package domain

// Column names as they appear in the raw daily report files.
const (
	ColProvinceState       = "Province_State"
	ColCountryRegion       = "Country_Region"
	ColLastUpdate          = "Last_Update"
	ColLat                 = "Lat"
	ColLong                = "Long_"
	ColConfirmed           = "Confirmed"
	ColDeaths              = "Deaths"
	ColRecovered           = "Recovered"
	ColActive              = "Active"
	ColFIPS                = "FIPS"
	ColIncidentRate        = "Incident_Rate"
	ColPeopleHospitalized  = "People_Hospitalized"
	ColUID                 = "UID"
	ColISO3                = "ISO3"
	ColTestingRate         = "Testing_Rate"
	ColHospitalizationRate = "Hospitalization_Rate"

	// The one rename event in the series. Legacy names are canonical in
	// the assembled table.
	ColMortalityRate     = "Mortality_Rate"      // legacy
	ColPeopleTested      = "People_Tested"       // legacy
	ColCaseFatalityRatio = "Case_Fatality_Ratio" // current
	ColTotalTestResults  = "Total_Test_Results"  // current
)

// sharedColumns are the raw columns common to both schema variants, i.e.
// everything except the renamed pair.
var sharedColumns = []string{
	ColProvinceState,
	ColCountryRegion,
	ColLastUpdate,
	ColLat,
	ColLong,
	ColConfirmed,
	ColDeaths,
	ColRecovered,
	ColActive,
	ColFIPS,
	ColIncidentRate,
	ColPeopleHospitalized,
	ColUID,
	ColISO3,
	ColTestingRate,
	ColHospitalizationRate,
}

// renamed maps current-schema column names to their legacy equivalents.
var renamed = map[string]string{
	ColCaseFatalityRatio: ColMortalityRate,
	ColTotalTestResults:  ColPeopleTested,
}

// SchemaVariant identifies which of the two observed column sets a daily
// file uses.
type SchemaVariant int

const (
	SchemaUnknown SchemaVariant = iota
	SchemaLegacy
	SchemaCurrent
)

func (v SchemaVariant) String() string {
	switch v {
	case SchemaLegacy:
		return "legacy"
	case SchemaCurrent:
		return "current"
	default:
		return "unknown"
	}
}

// DetectSchema classifies a file header against the two known variants.
// The comparison follows the merge rule: the header minus the renamed pair
// must equal the shared column set exactly, and the renamed pair must be
// present under exactly one variant's names. Anything else — a missing
// shared column, an extra column, or a mix of both naming variants — is
// SchemaUnknown.
func DetectSchema(header []string) SchemaVariant {
	set := make(map[string]bool, len(header))
	for _, col := range header {
		if set[col] {
			return SchemaUnknown // duplicate column
		}
		set[col] = true
	}

	for _, col := range sharedColumns {
		if !set[col] {
			return SchemaUnknown
		}
		delete(set, col)
	}

	// Only the renamed pair may remain.
	legacy := set[ColMortalityRate] && set[ColPeopleTested]
	current := set[ColCaseFatalityRatio] && set[ColTotalTestResults]
	switch {
	case legacy && !current && len(set) == 2:
		return SchemaLegacy
	case current && !legacy && len(set) == 2:
		return SchemaCurrent
	default:
		return SchemaUnknown
	}
}

// NormalizeHeader returns a copy of the header with current-schema names
// renamed to the canonical legacy names. Legacy headers pass through
// unchanged, so normalization is idempotent.
func NormalizeHeader(header []string) []string {
	out := make([]string, len(header))
	for i, col := range header {
		if legacy, ok := renamed[col]; ok {
			out[i] = legacy
			continue
		}
		out[i] = col
	}
	return out
}

// SameColumns reports whether two headers contain the same column set,
// ignoring order.
func SameColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]bool, len(a))
	for _, col := range a {
		set[col] = true
	}
	for _, col := range b {
		if !set[col] {
			return false
		}
	}
	return true
}
