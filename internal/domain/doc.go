// Package domain models Johns Hopkins CSSE US daily COVID-19 report data.
//
// # Data Source
//
// Snapshots originate from the JHU CSSE COVID-19 repository, one CSV per
// calendar day under csse_covid_19_data/csse_covid_19_daily_reports_us/,
// named <MM-DD-YYYY>.csv. The observed series runs 2020-04-12 through
// 2022-02-27 inclusive (687 files), one row per US state or territory.
//
// The report date always comes from the file name, never from in-file
// fields: the "Last_Update" column records when JHU regenerated the file
// and is unreliable as a snapshot date.
//
// # Schema Variants
//
// Exactly one column rename occurred over the series:
//
//	through 11-08-2020 (legacy):  Mortality_Rate, People_Tested
//	from    11-09-2020 (current): Case_Fatality_Ratio, Total_Test_Results
//
// All other columns are identical across the series. The loader normalizes
// every file to the legacy names, so the assembled table exposes a single
// schema regardless of which variant a given day used. A file whose column
// set matches neither variant is rejected outright — it signals an
// unanticipated upstream format change, not something to paper over.
//
// # Cumulative Fields and Deltas
//
// Confirmed, Deaths, People_Tested, and People_Hospitalized are running
// totals since tracking began. New_Deaths and New_Hospitalizations are
// derived after full assembly as the first difference of the cumulative
// value between a row and its sort-order predecessor within the same
// region. A delta is only present when both the current and predecessor
// values are present; the first row of a region and any row adjacent to a
// missing cumulative value carry no delta. Missing source values stay
// missing throughout — they are never coerced to zero.
//
// # Dropped Columns
//
// Country_Region, UID, ISO3, FIPS, Lat, Long_, Last_Update, Active, and
// Recovered appear in the raw files but are not part of the assembled
// table. Country_Region is constant ("US"), Active and Recovered were
// abandoned by JHU mid-series, and the rest are join keys for maps this
// dataset does not feed.
package domain
