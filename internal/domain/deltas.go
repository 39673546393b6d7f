package domain

import "sort"

// SortByRegionDate orders records by (region, date) ascending, the order
// delta computation is defined over.
func SortByRegionDate(records []DailyRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Region != records[j].Region {
			return records[i].Region < records[j].Region
		}
		return records[i].Date.Before(records[j].Date)
	})
}

// ComputeDeltas fills New_Deaths and New_Hospitalizations on a table
// already sorted by (region, date). Each delta is the first difference of
// the cumulative field against the sort-order predecessor within the same
// region; the first row of a region and any row where either side of the
// difference is missing carry no delta. The predecessor is positional, not
// calendar-adjacent: a one-day gap in the source series would diff across
// the gap, matching the upstream report's behavior.
//
// Pure over its input: returns a new slice, never mutates the argument.
func ComputeDeltas(records []DailyRecord) []DailyRecord {
	out := make([]DailyRecord, len(records))
	copy(out, records)

	for i := range out {
		out[i].NewDeaths = nil
		out[i].NewHospitalizations = nil
		if i == 0 || out[i-1].Region != out[i].Region {
			continue
		}
		out[i].NewDeaths = diff(out[i].Deaths, out[i-1].Deaths)
		out[i].NewHospitalizations = diff(out[i].PeopleHospitalized, out[i-1].PeopleHospitalized)
	}
	return out
}

// diff subtracts prev from cur, propagating missing values.
func diff(cur, prev *int64) *int64 {
	if cur == nil || prev == nil {
		return nil
	}
	d := *cur - *prev
	return &d
}
