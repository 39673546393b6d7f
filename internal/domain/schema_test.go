package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func legacyHeader() []string {
	return []string{
		ColProvinceState, ColCountryRegion, ColLastUpdate, ColLat, ColLong,
		ColConfirmed, ColDeaths, ColRecovered, ColActive, ColFIPS,
		ColIncidentRate, ColPeopleTested, ColPeopleHospitalized,
		ColMortalityRate, ColUID, ColISO3, ColTestingRate, ColHospitalizationRate,
	}
}

func currentHeader() []string {
	h := legacyHeader()
	for i, col := range h {
		switch col {
		case ColPeopleTested:
			h[i] = ColTotalTestResults
		case ColMortalityRate:
			h[i] = ColCaseFatalityRatio
		}
	}
	return h
}

func TestDetectSchema_Legacy(t *testing.T) {
	assert.Equal(t, SchemaLegacy, DetectSchema(legacyHeader()))
}

func TestDetectSchema_Current(t *testing.T) {
	assert.Equal(t, SchemaCurrent, DetectSchema(currentHeader()))
}

func TestDetectSchema_OrderIndependent(t *testing.T) {
	h := legacyHeader()
	h[0], h[len(h)-1] = h[len(h)-1], h[0]
	assert.Equal(t, SchemaLegacy, DetectSchema(h))
}

func TestDetectSchema_MissingSharedColumn(t *testing.T) {
	h := legacyHeader()
	// Drop a required non-renamed column; this must not slip into the
	// current-schema branch.
	for i, col := range h {
		if col == ColTestingRate {
			h = append(h[:i], h[i+1:]...)
			break
		}
	}
	assert.Equal(t, SchemaUnknown, DetectSchema(h))
}

func TestDetectSchema_ExtraColumn(t *testing.T) {
	h := append(legacyHeader(), "Vaccinated")
	assert.Equal(t, SchemaUnknown, DetectSchema(h))
}

func TestDetectSchema_MixedVariants(t *testing.T) {
	h := legacyHeader()
	for i, col := range h {
		if col == ColPeopleTested {
			h[i] = ColTotalTestResults
		}
	}
	assert.Equal(t, SchemaUnknown, DetectSchema(h))
}

func TestDetectSchema_DuplicateColumn(t *testing.T) {
	h := append(legacyHeader()[:17], ColConfirmed)
	assert.Equal(t, SchemaUnknown, DetectSchema(h))
}

func TestNormalizeHeader_RenamesCurrentToLegacy(t *testing.T) {
	got := NormalizeHeader(currentHeader())
	assert.Equal(t, legacyHeader(), got)
	assert.NotContains(t, got, ColCaseFatalityRatio)
	assert.NotContains(t, got, ColTotalTestResults)
}

func TestNormalizeHeader_Idempotent(t *testing.T) {
	once := NormalizeHeader(currentHeader())
	twice := NormalizeHeader(once)
	assert.Equal(t, once, twice)
}

func TestNormalizeHeader_DoesNotMutateInput(t *testing.T) {
	in := currentHeader()
	NormalizeHeader(in)
	assert.Contains(t, in, ColCaseFatalityRatio)
}

func TestSameColumns(t *testing.T) {
	a := legacyHeader()
	b := legacyHeader()
	b[0], b[1] = b[1], b[0]
	assert.True(t, SameColumns(a, b))
	assert.False(t, SameColumns(a, b[:17]))
	assert.False(t, SameColumns(a, currentHeader()))
}
