/*
engine.go - Category calculators and the aggregator

PURPOSE:
  One pure method per asset category plus CalculateTotalZakat, which
  dispatches a list of assets to the matching calculators and folds the
  results into a single report with per-category breakdowns, an overall
  total, and generated recommendations.

CONTRACT:
  - Every calculator is a pure function of its arguments and the Config;
    identical input always yields identical output.
  - Calculators never fail for well-formed input. Zero and boundary values
    yield a normal "no obligation due" result.
  - The nisab boundary is inclusive: holding exactly the nisab qualifies.
  - Livestock obligations are denominated in animals; their ZakatAmount is
    zero and does not contribute to the aggregate currency total.

MERGE POLICY (aggregation):
  Assets sharing a category are summed before a single nisab test, so each
  calculator runs once per category. Crops are the exception: assets are
  grouped per irrigation method (the rates differ), each group gets its own
  nisab test, and the groups merge into the single "crops" entry. Gold and
  silver entries with different per-gram prices merge by total value, using
  the value-weighted effective price for the gram conversion.

CONCURRENCY:
  The Engine holds only the immutable Config; all methods may be invoked
  concurrently without coordination.
*/
package zakat

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Engine computes zakat obligations against an immutable Config.
type Engine struct {
	cfg *Config
}

// NewEngine creates an engine. A nil config selects DefaultConfig.
func NewEngine(cfg *Config) *Engine {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Engine{cfg: cfg}
}

// Config returns the engine's configuration. Treat it as read-only.
func (e *Engine) Config() *Config { return e.cfg }

// =============================================================================
// FLAT-RATE CATEGORIES
// =============================================================================

// CalculateCashZakat computes the obligation on a cash holding. The rate
// is reported regardless of eligibility; below-nisab amounts owe zero.
func (e *Engine) CalculateCashZakat(amount decimal.Decimal) CategoryResult {
	return e.flatRate(AssetCash, amount, e.cfg.Thresholds.CashNisab)
}

// CalculateBusinessInventoryZakat computes the obligation on the value of
// business inventory. Same rules as cash.
func (e *Engine) CalculateBusinessInventoryZakat(value decimal.Decimal) CategoryResult {
	return e.flatRate(AssetBusinessInventory, value, e.cfg.Thresholds.CashNisab)
}

func (e *Engine) flatRate(category AssetType, amount, nisab decimal.Decimal) CategoryResult {
	r := CategoryResult{
		Category:     category,
		IsAboveNisab: amount.GreaterThanOrEqual(nisab),
		TotalValue:   amount,
		Rate:         e.cfg.Rates.Standard,
	}
	if r.IsAboveNisab {
		r.ZakatAmount = e.cfg.Round(amount.Mul(e.cfg.Rates.Standard))
	}
	return r
}

// =============================================================================
// GOLD AND SILVER
// =============================================================================

// CalculateGoldZakat computes the obligation on a gold holding. The gram
// nisab converts to currency at the supplied price, and the due amount is
// also re-expressed in grams for payers who settle in kind. A zero price
// yields zero grams rather than a division by zero.
func (e *Engine) CalculateGoldZakat(grams, pricePerGram decimal.Decimal) CategoryResult {
	return e.metal(AssetGold, grams, pricePerGram, e.cfg.Thresholds.GoldNisabGrams)
}

// CalculateSilverZakat computes the obligation on a silver holding,
// symmetric with gold against the silver gram nisab.
func (e *Engine) CalculateSilverZakat(grams, pricePerGram decimal.Decimal) CategoryResult {
	return e.metal(AssetSilver, grams, pricePerGram, e.cfg.Thresholds.SilverNisabGrams)
}

func (e *Engine) metal(category AssetType, grams, pricePerGram, nisabGrams decimal.Decimal) CategoryResult {
	totalValue := grams.Mul(pricePerGram)
	nisabValue := nisabGrams.Mul(pricePerGram)

	r := CategoryResult{
		Category:     category,
		IsAboveNisab: totalValue.GreaterThanOrEqual(nisabValue),
		TotalValue:   totalValue,
		Rate:         e.cfg.Rates.Standard,
	}
	if r.IsAboveNisab {
		r.ZakatAmount = e.cfg.Round(totalValue.Mul(e.cfg.Rates.Standard))
		if pricePerGram.IsPositive() {
			r.ZakatGrams = r.ZakatAmount.Div(pricePerGram)
		}
	}
	return r
}

// =============================================================================
// LIVESTOCK
// =============================================================================

// CalculateCamelZakat resolves the camel bracket table for a head count.
func (e *Engine) CalculateCamelZakat(count int) CategoryResult {
	return e.livestock(AssetCamel, count, e.cfg.Thresholds.CamelNisab)
}

// CalculateCattleZakat resolves the cattle bracket table for a head count.
func (e *Engine) CalculateCattleZakat(count int) CategoryResult {
	return e.livestock(AssetCattle, count, e.cfg.Thresholds.CattleNisab)
}

// CalculateSheepGoatsZakat resolves the sheep/goats bracket table for a
// head count.
func (e *Engine) CalculateSheepGoatsZakat(count int) CategoryResult {
	return e.livestock(AssetSheepGoats, count, e.cfg.Thresholds.SheepNisab)
}

func (e *Engine) livestock(category AssetType, count, nisab int) CategoryResult {
	due := ResolveLivestock(e.cfg.LivestockBrackets[category], count)

	r := CategoryResult{
		Category:     category,
		IsAboveNisab: count >= nisab,
		ZakatType:    due.Type,
		ZakatCount:   due.Total,
		Animals:      due.Animals,
	}
	if due.Total == 0 {
		r.ZakatType = ZakatTypeNone
	}
	return r
}

// =============================================================================
// CROPS
// =============================================================================

// CalculateCropsZakat computes the crops obligation, denominated in tons.
// The rate depends on the irrigation method: irrigated land owes 5%,
// rain-fed land 10%. An unrecognized method is an error, never a default.
func (e *Engine) CalculateCropsZakat(tons decimal.Decimal, method IrrigationMethod) (CategoryResult, error) {
	var rate decimal.Decimal
	switch method {
	case IrrigationIrrigated:
		rate = e.cfg.Rates.CropsIrrigated
	case IrrigationRainfall:
		rate = e.cfg.Rates.CropsRainfall
	default:
		return CategoryResult{}, fmt.Errorf("%w: %q", ErrUnknownIrrigationMethod, method)
	}

	r := CategoryResult{
		Category:     AssetCrops,
		IsAboveNisab: tons.GreaterThanOrEqual(e.cfg.Thresholds.CropsNisabTons),
		Rate:         rate,
	}
	if r.IsAboveNisab {
		r.ZakatTons = tons.Mul(rate)
		r.ZakatAmount = r.ZakatTons
	}
	return r, nil
}

// =============================================================================
// AGGREGATION
// =============================================================================

// CalculateTotalZakat dispatches each asset to its category calculator and
// builds the aggregate report. Inputs are assumed well-typed (validation
// runs first); an unknown type code or irrigation method still returns an
// explicit error as a defensive boundary.
func (e *Engine) CalculateTotalZakat(assets []Asset) (*AggregateResult, error) {
	sums := newCategorySums()
	for _, a := range assets {
		if err := sums.add(a); err != nil {
			return nil, err
		}
	}

	out := &AggregateResult{Categories: make(map[string]CategoryResult)}

	if sums.seen[AssetCash] {
		out.Categories[AssetCash.CategoryKey()] = e.CalculateCashZakat(sums.cash)
	}
	if sums.seen[AssetGold] {
		grams, price := effectiveMetal(sums.goldGrams, sums.goldValue)
		out.Categories[AssetGold.CategoryKey()] = e.CalculateGoldZakat(grams, price)
	}
	if sums.seen[AssetSilver] {
		grams, price := effectiveMetal(sums.silverGrams, sums.silverValue)
		out.Categories[AssetSilver.CategoryKey()] = e.CalculateSilverZakat(grams, price)
	}
	if sums.seen[AssetCamel] {
		out.Categories[AssetCamel.CategoryKey()] = e.CalculateCamelZakat(sums.camels)
	}
	if sums.seen[AssetCattle] {
		out.Categories[AssetCattle.CategoryKey()] = e.CalculateCattleZakat(sums.cattle)
	}
	if sums.seen[AssetSheepGoats] {
		out.Categories[AssetSheepGoats.CategoryKey()] = e.CalculateSheepGoatsZakat(sums.sheep)
	}
	if sums.seen[AssetCrops] {
		crops, err := e.mergeCrops(sums.crops)
		if err != nil {
			return nil, err
		}
		out.Categories[AssetCrops.CategoryKey()] = crops
	}
	if sums.seen[AssetBusinessInventory] {
		out.Categories[AssetBusinessInventory.CategoryKey()] = e.CalculateBusinessInventoryZakat(sums.inventory)
	}

	for _, r := range out.Categories {
		out.TotalZakat = out.TotalZakat.Add(r.ZakatAmount)
	}
	out.TotalZakat = e.cfg.Round(out.TotalZakat)
	out.Recommendations = e.recommend(out)

	return out, nil
}

// mergeCrops computes one result per irrigation method group and merges
// them into the single crops entry. Rate is reported only when all crop
// assets share one method.
func (e *Engine) mergeCrops(groups map[IrrigationMethod]cropGroup) (CategoryResult, error) {
	merged := CategoryResult{Category: AssetCrops}
	single := len(groups) == 1

	for method, g := range groups {
		r, err := e.CalculateCropsZakat(g.tons, method)
		if err != nil {
			return CategoryResult{}, err
		}
		if r.IsAboveNisab {
			merged.IsAboveNisab = true
			merged.ZakatTons = merged.ZakatTons.Add(r.ZakatTons)
			if g.pricedTons.IsPositive() {
				// Value the due tons at the group's weighted price.
				price := g.priceValue.Div(g.pricedTons)
				merged.ZakatAmount = merged.ZakatAmount.Add(e.cfg.Round(r.ZakatTons.Mul(price)))
			} else {
				merged.ZakatAmount = merged.ZakatAmount.Add(r.ZakatAmount)
			}
		}
		if single {
			merged.Rate = r.Rate
		}
	}
	return merged, nil
}

func (e *Engine) recommend(result *AggregateResult) []string {
	var due, below, inKind []string
	for _, t := range AssetTypes {
		r, ok := result.Categories[t.CategoryKey()]
		if !ok {
			continue
		}
		name := strings.ReplaceAll(t.CategoryKey(), "_", " ")
		if r.IsAboveNisab {
			due = append(due, name)
			if len(r.Animals) > 0 {
				inKind = append(inKind, name)
			}
		} else {
			below = append(below, name)
		}
	}

	var recs []string
	if len(due) > 0 {
		recs = append(recs, fmt.Sprintf("You have zakat due on %s assets.", joinNames(due)))
		if result.TotalZakat.IsPositive() {
			recs = append(recs, fmt.Sprintf("Total zakat due: %s.", result.TotalZakat.String()))
		}
	} else {
		recs = append(recs, "No zakat is due on the provided assets at this time.")
	}
	if len(inKind) > 0 {
		recs = append(recs, fmt.Sprintf("Zakat on %s is payable in animals; see the per-category breakdown.", joinNames(inKind)))
	}
	if len(below) > 0 {
		recs = append(recs, fmt.Sprintf("Your %s holdings are below the nisab threshold; no zakat is due on them.", joinNames(below)))
	}
	recs = append(recs, "Consider setting calendar reminders for annual recalculation.")
	return recs
}

func joinNames(names []string) string {
	switch len(names) {
	case 1:
		return names[0]
	case 2:
		return names[0] + " and " + names[1]
	default:
		return strings.Join(names[:len(names)-1], ", ") + ", and " + names[len(names)-1]
	}
}

// =============================================================================
// PER-CATEGORY INPUT SUMMING
// =============================================================================

type cropGroup struct {
	tons decimal.Decimal

	// Value-weighted pricing for assets that supplied a price per ton.
	pricedTons decimal.Decimal
	priceValue decimal.Decimal
}

type categorySums struct {
	seen map[AssetType]bool

	cash        decimal.Decimal
	goldGrams   decimal.Decimal
	goldValue   decimal.Decimal
	silverGrams decimal.Decimal
	silverValue decimal.Decimal
	camels      int
	cattle      int
	sheep       int
	crops       map[IrrigationMethod]cropGroup
	inventory   decimal.Decimal
}

func newCategorySums() *categorySums {
	return &categorySums{
		seen:  make(map[AssetType]bool),
		crops: make(map[IrrigationMethod]cropGroup),
	}
}

func (s *categorySums) add(a Asset) error {
	switch a.Type {
	case AssetCash:
		s.cash = s.cash.Add(a.Amount)
	case AssetGold:
		s.goldGrams = s.goldGrams.Add(a.QuantityGrams)
		s.goldValue = s.goldValue.Add(a.QuantityGrams.Mul(a.PricePerGram))
	case AssetSilver:
		s.silverGrams = s.silverGrams.Add(a.QuantityGrams)
		s.silverValue = s.silverValue.Add(a.QuantityGrams.Mul(a.PricePerGram))
	case AssetCamel:
		s.camels += a.Count
	case AssetCattle:
		s.cattle += a.Count
	case AssetSheepGoats:
		s.sheep += a.Count
	case AssetCrops:
		g := s.crops[a.IrrigationMethod]
		g.tons = g.tons.Add(a.Tons)
		if a.PricePerTon.IsPositive() {
			g.pricedTons = g.pricedTons.Add(a.Tons)
			g.priceValue = g.priceValue.Add(a.Tons.Mul(a.PricePerTon))
		}
		s.crops[a.IrrigationMethod] = g
	case AssetBusinessInventory:
		s.inventory = s.inventory.Add(a.Value)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAssetType, a.Type)
	}
	s.seen[a.Type] = true
	return nil
}

// effectiveMetal derives the value-weighted per-gram price for merged
// gold/silver entries so one nisab test applies to the combined holding.
func effectiveMetal(grams, value decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	if grams.IsPositive() {
		return grams, value.Div(grams)
	}
	return grams, decimal.Zero
}
