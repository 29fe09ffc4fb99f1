package factory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amanah/zakat-engine/factory"
	"github.com/amanah/zakat-engine/zakat"
)

// =============================================================================
// PARSING
// =============================================================================

func TestParseConfig_OverridesThresholdsOnly(t *testing.T) {
	// A partial document only replaces the sections it names.
	cfg, err := factory.NewConfigFactory().ParseConfig(`{
		"thresholds": {
			"cash_nisab": 6000,
			"gold_nisab_grams": 85,
			"silver_nisab_grams": 595,
			"crops_nisab_tons": 0.653,
			"camel_nisab": 5, "cattle_nisab": 30, "sheep_nisab": 40
		}
	}`)
	require.NoError(t, err)

	assert.True(t, cfg.Thresholds.CashNisab.Equal(decimal.NewFromInt(6000)))
	// Untouched sections keep their defaults.
	assert.True(t, cfg.Rates.Standard.Equal(decimal.NewFromFloat(0.025)))
	assert.NotEmpty(t, cfg.LivestockBrackets[zakat.AssetCamel])
}

func TestParseConfig_InvalidJSON(t *testing.T) {
	_, err := factory.NewConfigFactory().ParseConfig(`{not json`)
	assert.Error(t, err)
}

func TestParseConfig_RejectsNonLivestockBracketKey(t *testing.T) {
	_, err := factory.NewConfigFactory().ParseConfig(`{
		"livestock_brackets": {"CASH": [{"min_count": 0, "zakat_type": "NONE"}]}
	}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a livestock category")
}

func TestParseConfig_RejectsGappedTable(t *testing.T) {
	_, err := factory.NewConfigFactory().ParseConfig(`{
		"livestock_brackets": {"SHEEP_GOATS": [
			{"min_count": 0, "max_count": 39, "zakat_type": "NONE"},
			{"min_count": 50, "zakat_type": "SHEEP", "zakat_count": 1}
		]}
	}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gap or overlap")
}

func TestParseConfig_RejectsClosedFinalBracket(t *testing.T) {
	_, err := factory.NewConfigFactory().ParseConfig(`{
		"livestock_brackets": {"SHEEP_GOATS": [
			{"min_count": 0, "max_count": 39, "zakat_type": "NONE"}
		]}
	}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open-ended")
}

func TestParseConfig_RejectsUnknownExtrapolationKind(t *testing.T) {
	_, err := factory.NewConfigFactory().ParseConfig(`{
		"livestock_brackets": {"SHEEP_GOATS": [
			{"min_count": 0, "extrapolation": {"kind": "wild_guess"}}
		]}
	}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extrapolation kind")
}

func TestParseConfig_DisputedCamelRowVariant(t *testing.T) {
	// The 76-90 camel row can be swapped for the variant form purely through
	// configuration. The rest of the table stays default.
	cj := factory.NewConfigFactory().ToJSON(zakat.DefaultConfig())
	for i, row := range cj.LivestockBrackets["CAMEL"] {
		if row.MinCount == 76 {
			cj.LivestockBrackets["CAMEL"][i].ZakatType = "THREE_YEAR_OLD"
			cj.LivestockBrackets["CAMEL"][i].ZakatCount = 1
		}
	}

	cfg, err := factory.NewConfigFactory().FromJSON(cj)
	require.NoError(t, err)

	r := zakat.NewEngine(cfg).CalculateCamelZakat(80)
	assert.Equal(t, "THREE_YEAR_OLD", r.ZakatType)
	assert.Equal(t, 1, r.ZakatCount)
}

// =============================================================================
// ROUND-TRIP
// =============================================================================

func TestConfigJSON_RoundTrip(t *testing.T) {
	f := factory.NewConfigFactory()
	original := zakat.DefaultConfig()

	restored, err := f.FromJSON(f.ToJSON(original))
	require.NoError(t, err)

	assert.True(t, restored.Thresholds.CashNisab.Equal(original.Thresholds.CashNisab))
	assert.True(t, restored.Rates.CropsRainfall.Equal(original.Rates.CropsRainfall))
	assert.Equal(t, original.TypeDescriptions, restored.TypeDescriptions)

	for _, category := range []zakat.AssetType{zakat.AssetCamel, zakat.AssetCattle, zakat.AssetSheepGoats} {
		assert.Equal(t, original.LivestockBrackets[category], restored.LivestockBrackets[category], category)
	}
}

func TestDefaultConfigJSON_ParsesBack(t *testing.T) {
	doc, err := factory.DefaultConfigJSON()
	require.NoError(t, err)
	require.NotEmpty(t, doc)

	cfg, err := factory.NewConfigFactory().ParseConfig(doc)
	require.NoError(t, err)

	// The round-tripped config behaves like the default one.
	e := zakat.NewEngine(cfg)
	r := e.CalculateCashZakat(decimal.NewFromInt(10000))
	assert.True(t, r.ZakatAmount.Equal(decimal.NewFromInt(250)))

	camels := e.CalculateCamelZakat(130)
	assert.Equal(t, 3, camels.ZakatCount)
}

func TestParseConfig_RoundToOverride(t *testing.T) {
	cfg, err := factory.NewConfigFactory().ParseConfig(`{"round_to": 2}`)
	require.NoError(t, err)
	require.NotNil(t, cfg.RoundTo)
	assert.Equal(t, int32(2), *cfg.RoundTo)

	r := zakat.NewEngine(cfg).CalculateCashZakat(decimal.NewFromFloat(10001.11))
	assert.True(t, r.ZakatAmount.Equal(decimal.NewFromFloat(250.03)), r.ZakatAmount.String())
}
