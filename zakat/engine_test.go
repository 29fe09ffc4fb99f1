/*
engine_test.go - Specification tests for the calculation engine

PURPOSE:
  These tests serve as executable specifications of the engine behavior.
  Each test states the scenario in GIVEN/WHEN/THEN form and asserts the
  documented outcome: nisab boundary inclusivity, flat-rate amounts,
  bracket obligations, aggregation, and the purity guarantees.
*/
package zakat_test

import (
	"reflect"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amanah/zakat-engine/zakat"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newEngine() *zakat.Engine {
	return zakat.NewEngine(zakat.DefaultConfig())
}

func assertDecEqual(t *testing.T, expected string, actual decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, dec(expected).Equal(actual), "expected %s, got %s: %v", expected, actual, msgAndArgs)
}

// =============================================================================
// FLAT-RATE CATEGORIES
// =============================================================================

func TestCashZakat_AboveNisab(t *testing.T) {
	// GIVEN: 10000 in cash with a nisab of 5000
	// WHEN: Calculating cash zakat
	// THEN: 2.5% is due

	r := newEngine().CalculateCashZakat(dec("10000"))

	assert.True(t, r.IsAboveNisab)
	assertDecEqual(t, "250", r.ZakatAmount)
	assertDecEqual(t, "0.025", r.Rate)
}

func TestCashZakat_BelowNisab_NothingDue(t *testing.T) {
	r := newEngine().CalculateCashZakat(dec("4999.99"))

	assert.False(t, r.IsAboveNisab)
	assert.True(t, r.ZakatAmount.IsZero())
	// The rate is reported regardless of eligibility.
	assertDecEqual(t, "0.025", r.Rate)
}

func TestCashZakat_NisabBoundary_Inclusive(t *testing.T) {
	// GIVEN: A holding exactly at the nisab
	// THEN: The nisab amount itself qualifies

	cfg := zakat.DefaultConfig()
	r := zakat.NewEngine(cfg).CalculateCashZakat(cfg.Thresholds.CashNisab)

	assert.True(t, r.IsAboveNisab, "exact equality counts as due")
}

func TestCashZakat_Zero_IsNormalResult(t *testing.T) {
	// Zero input is not an error; it is simply not due.
	r := newEngine().CalculateCashZakat(decimal.Zero)

	assert.False(t, r.IsAboveNisab)
	assert.True(t, r.ZakatAmount.IsZero())
}

func TestCashZakat_Monotonic(t *testing.T) {
	// For a fixed rate, the due amount never decreases as the base grows.
	e := newEngine()
	prev := decimal.Zero
	for _, base := range []string{"0", "4999", "5000", "5001", "20000", "1000000"} {
		r := e.CalculateCashZakat(dec(base))
		assert.True(t, r.ZakatAmount.GreaterThanOrEqual(prev), "base %s", base)
		prev = r.ZakatAmount
	}
}

func TestBusinessInventoryZakat_MirrorsCashRules(t *testing.T) {
	e := newEngine()

	r := e.CalculateBusinessInventoryZakat(dec("8000"))
	assert.True(t, r.IsAboveNisab)
	assertDecEqual(t, "200", r.ZakatAmount)

	r = e.CalculateBusinessInventoryZakat(dec("100"))
	assert.False(t, r.IsAboveNisab)
	assert.True(t, r.ZakatAmount.IsZero())
}

// =============================================================================
// GOLD AND SILVER
// =============================================================================

func TestGoldZakat_AboveNisab(t *testing.T) {
	// GIVEN: 100g of gold at 65 per gram (value 6500, nisab 85g = 5525)
	// THEN: 162.5 due, re-expressed as 2.5g for in-kind payment

	r := newEngine().CalculateGoldZakat(dec("100"), dec("65"))

	assert.True(t, r.IsAboveNisab)
	assertDecEqual(t, "6500", r.TotalValue)
	assertDecEqual(t, "162.5", r.ZakatAmount)
	assertDecEqual(t, "2.5", r.ZakatGrams)
}

func TestGoldZakat_BelowGramNisab(t *testing.T) {
	// 50g < 85g nisab at any positive price.
	r := newEngine().CalculateGoldZakat(dec("50"), dec("65"))

	assert.False(t, r.IsAboveNisab)
	assert.True(t, r.ZakatAmount.IsZero())
	assert.True(t, r.ZakatGrams.IsZero())
}

func TestGoldZakat_ZeroPrice_NoDivisionByZero(t *testing.T) {
	// A zero per-gram price must not propagate NaN/Infinity into the
	// gram conversion.
	r := newEngine().CalculateGoldZakat(dec("100"), decimal.Zero)

	assert.True(t, r.ZakatGrams.IsZero())
	assert.True(t, r.ZakatAmount.IsZero())
}

func TestSilverZakat_UsesSilverGramNisab(t *testing.T) {
	e := newEngine()

	// 600g silver at 1/gram: value 600 >= 595 nisab value.
	r := e.CalculateSilverZakat(dec("600"), dec("1"))
	assert.True(t, r.IsAboveNisab)
	assertDecEqual(t, "15", r.ZakatAmount)

	// 594g is under the gram threshold.
	r = e.CalculateSilverZakat(dec("594"), dec("1"))
	assert.False(t, r.IsAboveNisab)
}

// =============================================================================
// LIVESTOCK
// =============================================================================

func TestCamelZakat_FirstBracket(t *testing.T) {
	// GIVEN: 5 camels
	// THEN: One sheep is due (the 5-9 bracket)

	r := newEngine().CalculateCamelZakat(5)

	assert.True(t, r.IsAboveNisab)
	assert.Equal(t, 1, r.ZakatCount)
	assert.Equal(t, zakat.ZakatTypeSheep, r.ZakatType)
}

func TestCamelZakat_BelowNisab(t *testing.T) {
	r := newEngine().CalculateCamelZakat(4)

	assert.False(t, r.IsAboveNisab)
	assert.True(t, r.ZakatAmount.IsZero())
	assert.Equal(t, zakat.ZakatTypeNone, r.ZakatType)
	assert.Zero(t, r.ZakatCount)
}

func TestCamelZakat_MidBrackets(t *testing.T) {
	e := newEngine()
	cases := []struct {
		count     int
		dueCount  int
		dueType   string
	}{
		{10, 2, zakat.ZakatTypeSheep},
		{24, 4, zakat.ZakatTypeSheep},
		{25, 1, zakat.ZakatTypeDaughterOfOneYear},
		{36, 1, zakat.ZakatTypeDaughterOfTwoYears},
		{46, 1, zakat.ZakatTypeHiqqah},
		{61, 1, zakat.ZakatTypeJadhaah},
		{76, 2, zakat.ZakatTypeDaughterOfTwoYears},
		{90, 2, zakat.ZakatTypeDaughterOfTwoYears},
		{91, 2, zakat.ZakatTypeHiqqah},
		{120, 2, zakat.ZakatTypeHiqqah},
	}
	for _, tc := range cases {
		r := e.CalculateCamelZakat(tc.count)
		assert.Equal(t, tc.dueCount, r.ZakatCount, "count %d", tc.count)
		assert.Equal(t, tc.dueType, r.ZakatType, "count %d", tc.count)
	}
}

func TestCamelZakat_Extrapolation_ExactPartition(t *testing.T) {
	// GIVEN: 130 camels (2x40 + 1x50)
	// THEN: Two bint labun and one hiqqah, three animals total

	r := newEngine().CalculateCamelZakat(130)

	assert.Equal(t, 3, r.ZakatCount)
	require.Len(t, r.Animals, 2)
	assert.Equal(t, zakat.AnimalDue{Type: zakat.ZakatTypeDaughterOfTwoYears, Count: 2}, r.Animals[0])
	assert.Equal(t, zakat.AnimalDue{Type: zakat.ZakatTypeHiqqah, Count: 1}, r.Animals[1])
}

func TestCamelZakat_Extrapolation_FallbackToLowerMultiple(t *testing.T) {
	// GIVEN: 125 camels - no exact 40/50 partition exists
	// THEN: Fall back to 120 (3x40); the remainder is not yet due

	r := newEngine().CalculateCamelZakat(125)

	assert.Equal(t, 3, r.ZakatCount)
	require.Len(t, r.Animals, 1)
	assert.Equal(t, zakat.AnimalDue{Type: zakat.ZakatTypeDaughterOfTwoYears, Count: 3}, r.Animals[0])
}

func TestCamelZakat_Extrapolation_PrefersFewestAnimals(t *testing.T) {
	// 200 = 4x50 (4 animals) or 5x40 (5 animals); fewest wins.
	r := newEngine().CalculateCamelZakat(200)

	assert.Equal(t, 4, r.ZakatCount)
	require.Len(t, r.Animals, 1)
	assert.Equal(t, zakat.ZakatTypeHiqqah, r.Animals[0].Type)
}

func TestCattleZakat_Brackets(t *testing.T) {
	e := newEngine()

	// Below 30 nothing is due.
	r := e.CalculateCattleZakat(29)
	assert.False(t, r.IsAboveNisab)
	assert.Zero(t, r.ZakatCount)

	// 30 -> one one-year calf.
	r = e.CalculateCattleZakat(30)
	assert.True(t, r.IsAboveNisab)
	assert.Equal(t, 1, r.ZakatCount)
	assert.Equal(t, zakat.ZakatTypeYoungCalfOneYear, r.ZakatType)

	// 40 -> one two-year female.
	r = e.CalculateCattleZakat(40)
	assert.Equal(t, 1, r.ZakatCount)
	assert.Equal(t, zakat.ZakatTypeFemaleCattleTwoYears, r.ZakatType)

	// 70 = 30 + 40 -> one of each.
	r = e.CalculateCattleZakat(70)
	assert.Equal(t, 2, r.ZakatCount)
	require.Len(t, r.Animals, 2)
}

func TestCattleZakat_PrefersMostAnimals(t *testing.T) {
	// 120 = 4x30 (4 animals) or 3x40 (3 animals); most wins.
	r := newEngine().CalculateCattleZakat(120)

	assert.Equal(t, 4, r.ZakatCount)
	require.Len(t, r.Animals, 1)
	assert.Equal(t, zakat.ZakatTypeYoungCalfOneYear, r.Animals[0].Type)
}

func TestCattleZakat_RemainderNotDue(t *testing.T) {
	// 50 has no exact 30/40 partition; the largest covered sub-multiple
	// is 40, and the 10 extra head are not yet due.
	r := newEngine().CalculateCattleZakat(50)

	assert.Equal(t, 1, r.ZakatCount)
	assert.Equal(t, zakat.ZakatTypeFemaleCattleTwoYears, r.ZakatType)
}

func TestSheepGoatsZakat_StepFunction(t *testing.T) {
	e := newEngine()
	cases := []struct {
		count    int
		dueCount int
	}{
		{0, 0}, {39, 0},
		{40, 1}, {120, 1},
		{121, 2}, {200, 2},
		{201, 3}, {300, 3},
		{301, 3}, {399, 3},
		{400, 4}, {500, 5}, {1000, 10},
	}
	for _, tc := range cases {
		r := e.CalculateSheepGoatsZakat(tc.count)
		assert.Equal(t, tc.dueCount, r.ZakatCount, "count %d", tc.count)
		if tc.dueCount > 0 {
			assert.Equal(t, zakat.ZakatTypeSheep, r.ZakatType, "count %d", tc.count)
		} else {
			assert.Equal(t, zakat.ZakatTypeNone, r.ZakatType, "count %d", tc.count)
		}
	}
}

// =============================================================================
// CROPS
// =============================================================================

func TestCropsZakat_RateByIrrigationMethod(t *testing.T) {
	e := newEngine()

	r, err := e.CalculateCropsZakat(dec("10"), zakat.IrrigationIrrigated)
	require.NoError(t, err)
	assert.True(t, r.IsAboveNisab)
	assertDecEqual(t, "0.05", r.Rate)
	assertDecEqual(t, "0.5", r.ZakatTons)
	assertDecEqual(t, "0.5", r.ZakatAmount, "amount mirrors tons without a price")

	r, err = e.CalculateCropsZakat(dec("10"), zakat.IrrigationRainfall)
	require.NoError(t, err)
	assertDecEqual(t, "0.1", r.Rate)
	assertDecEqual(t, "1", r.ZakatTons)
}

func TestCropsZakat_BelowNisab(t *testing.T) {
	r, err := newEngine().CalculateCropsZakat(dec("0.5"), zakat.IrrigationRainfall)

	require.NoError(t, err)
	assert.False(t, r.IsAboveNisab)
	assert.True(t, r.ZakatTons.IsZero())
}

func TestCropsZakat_UnknownIrrigationMethod_Errors(t *testing.T) {
	// No silent defaulting: the rate difference is material.
	_, err := newEngine().CalculateCropsZakat(dec("10"), "drip")

	require.Error(t, err)
	assert.ErrorIs(t, err, zakat.ErrUnknownIrrigationMethod)
}

// =============================================================================
// AGGREGATION
// =============================================================================

func TestCalculateTotalZakat_CashAndGold(t *testing.T) {
	// GIVEN: 50000 cash and 100g gold at 65/gram
	// WHEN: Calculating the aggregate report
	// THEN: cash owes 1250, gold owes 162.5, and the total sums them

	result, err := newEngine().CalculateTotalZakat([]zakat.Asset{
		{Type: zakat.AssetCash, Name: "Savings", Amount: dec("50000")},
		{Type: zakat.AssetGold, Name: "Jewelry", QuantityGrams: dec("100"), PricePerGram: dec("65")},
	})
	require.NoError(t, err)

	cash := result.Categories["cash"]
	assertDecEqual(t, "1250", cash.ZakatAmount)

	gold := result.Categories["gold"]
	assertDecEqual(t, "162.5", gold.ZakatAmount)

	assertDecEqual(t, "1412.5", result.TotalZakat)
	assert.NotEmpty(t, result.Recommendations)
}

func TestCalculateTotalZakat_SumLaw(t *testing.T) {
	// TotalZakat equals the sum of every category's ZakatAmount.
	result, err := newEngine().CalculateTotalZakat([]zakat.Asset{
		{Type: zakat.AssetCash, Name: "Cash", Amount: dec("20000")},
		{Type: zakat.AssetSilver, Name: "Silver", QuantityGrams: dec("700"), PricePerGram: dec("2")},
		{Type: zakat.AssetBusinessInventory, Name: "Stock", Value: dec("9000")},
		{Type: zakat.AssetSheepGoats, Name: "Flock", Count: 150},
		{Type: zakat.AssetCrops, Name: "Wheat", Tons: dec("3"), IrrigationMethod: zakat.IrrigationRainfall},
	})
	require.NoError(t, err)

	sum := decimal.Zero
	for _, r := range result.Categories {
		sum = sum.Add(r.ZakatAmount)
	}
	assert.True(t, sum.Equal(result.TotalZakat), "total %s != sum %s", result.TotalZakat, sum)
}

func TestCalculateTotalZakat_MergesCategoryDuplicates(t *testing.T) {
	// GIVEN: Two cash entries of 3000 each, both below the nisab alone
	// THEN: They are summed before one nisab test, so 6000 is due at 2.5%

	result, err := newEngine().CalculateTotalZakat([]zakat.Asset{
		{Type: zakat.AssetCash, Name: "Checking", Amount: dec("3000")},
		{Type: zakat.AssetCash, Name: "Savings", Amount: dec("3000")},
	})
	require.NoError(t, err)

	cash := result.Categories["cash"]
	assert.True(t, cash.IsAboveNisab)
	assertDecEqual(t, "150", cash.ZakatAmount)
}

func TestCalculateTotalZakat_OnlyPresentCategoriesKeyed(t *testing.T) {
	result, err := newEngine().CalculateTotalZakat([]zakat.Asset{
		{Type: zakat.AssetCamel, Name: "Herd", Count: 10},
	})
	require.NoError(t, err)

	assert.Len(t, result.Categories, 1)
	_, ok := result.Categories["camel"]
	assert.True(t, ok)
}

func TestCalculateTotalZakat_LivestockDoesNotInflateCurrencyTotal(t *testing.T) {
	// Livestock obligations are animals, not currency.
	result, err := newEngine().CalculateTotalZakat([]zakat.Asset{
		{Type: zakat.AssetCamel, Name: "Herd", Count: 40},
	})
	require.NoError(t, err)

	assert.True(t, result.TotalZakat.IsZero())
	assert.Equal(t, 1, result.Categories["camel"].ZakatCount)
}

func TestCalculateTotalZakat_CropsWithPricePerTon(t *testing.T) {
	// A priced crop expresses the due in currency as well as tons.
	result, err := newEngine().CalculateTotalZakat([]zakat.Asset{
		{Type: zakat.AssetCrops, Name: "Dates", Tons: dec("10"),
			IrrigationMethod: zakat.IrrigationIrrigated, PricePerTon: dec("400")},
	})
	require.NoError(t, err)

	crops := result.Categories["crops"]
	assertDecEqual(t, "0.5", crops.ZakatTons)
	assertDecEqual(t, "200", crops.ZakatAmount)
	assertDecEqual(t, "200", result.TotalZakat)
}

func TestCalculateTotalZakat_NothingDue_StillRecommends(t *testing.T) {
	result, err := newEngine().CalculateTotalZakat([]zakat.Asset{
		{Type: zakat.AssetCash, Name: "Wallet", Amount: dec("100")},
	})
	require.NoError(t, err)

	assert.True(t, result.TotalZakat.IsZero())
	assert.NotEmpty(t, result.Recommendations, "recommendations are always generated")
}

func TestCalculateTotalZakat_UnknownType_Rejected(t *testing.T) {
	_, err := newEngine().CalculateTotalZakat([]zakat.Asset{
		{Type: "STOCKS", Name: "Broker", Amount: dec("100")},
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, zakat.ErrUnknownAssetType)
}

// =============================================================================
// PURITY
// =============================================================================

func TestCalculators_Idempotent(t *testing.T) {
	// Identical input yields identical output; no hidden state.
	e := newEngine()

	first := e.CalculateCamelZakat(130)
	second := e.CalculateCamelZakat(130)
	assert.True(t, reflect.DeepEqual(first, second))

	g1 := e.CalculateGoldZakat(dec("100"), dec("65"))
	g2 := e.CalculateGoldZakat(dec("100"), dec("65"))
	assert.True(t, g1.ZakatAmount.Equal(g2.ZakatAmount))
	assert.True(t, g1.ZakatGrams.Equal(g2.ZakatGrams))
}

func TestRoundingPolicy_Configurable(t *testing.T) {
	// GIVEN: A config rounding currency results to 2 decimal places
	// THEN: An amount with a long fraction is rounded; the default is raw

	cfg := zakat.DefaultConfig().Clone()
	round := int32(2)
	cfg.RoundTo = &round

	r := zakat.NewEngine(cfg).CalculateCashZakat(dec("10001.11"))
	assertDecEqual(t, "250.03", r.ZakatAmount) // 250.02775 rounded

	raw := newEngine().CalculateCashZakat(dec("10001.11"))
	assertDecEqual(t, "250.02775", raw.ZakatAmount)
}
