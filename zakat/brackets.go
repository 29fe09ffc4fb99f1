/*
brackets.go - Ordered bracket lookup and extrapolation

PURPOSE:
  One generic routine consumes every livestock bracket table: find the
  first bracket whose range contains the head count, then apply that
  bracket's obligation or its extrapolation rule. The tables themselves
  are configuration (config.go), never code branches.

EXTRAPOLATION KINDS:
  Step:
    Obligation grows by one animal per fixed step beyond a base count.
    Used for sheep/goats above 300: 3 + floor((count-300)/100).

  Partition:
    The full head count is partitioned into fixed-size groups, each group
    owing one animal of its unit's type. The solver picks, among exact
    partitions, the one preferred by the table (fewest total animals for
    camels, most for cattle). When no exact partition exists it falls back
    to the largest partitionable count below, leaving the remainder not
    yet due - no partial animal is ever owed.

INVARIANT:
  A well-formed table partitions [0, inf): contiguous, non-overlapping
  ranges with a final open-ended bracket. LookupBracket therefore finds
  exactly one bracket for every non-negative count.
*/
package zakat

import "strings"

// =============================================================================
// BRACKET TABLE TYPES
// =============================================================================

// Bracket is one row of a livestock table: a contiguous head-count range
// mapped to an obligation. MaxCount nil marks the open-ended final row.
type Bracket struct {
	MinCount   int    `json:"min_count"`
	MaxCount   *int   `json:"max_count,omitempty"`
	ZakatType  string `json:"zakat_type,omitempty"`
	ZakatCount int    `json:"zakat_count,omitempty"`

	// Extrapolation, when set, computes the obligation instead of the
	// fixed ZakatType/ZakatCount pair.
	Extrapolation *Extrapolation `json:"extrapolation,omitempty"`
}

// Contains reports whether count falls inside this bracket's range.
func (b Bracket) Contains(count int) bool {
	if count < b.MinCount {
		return false
	}
	return b.MaxCount == nil || count <= *b.MaxCount
}

func (b Bracket) clone() Bracket {
	out := b
	if b.MaxCount != nil {
		v := *b.MaxCount
		out.MaxCount = &v
	}
	if b.Extrapolation != nil {
		e := *b.Extrapolation
		e.Units = append([]PartitionUnit(nil), b.Extrapolation.Units...)
		out.Extrapolation = &e
	}
	return out
}

// ExtrapolationKind selects how an open-ended bracket computes its due.
type ExtrapolationKind string

const (
	ExtrapolationStep      ExtrapolationKind = "step"
	ExtrapolationPartition ExtrapolationKind = "partition"
)

// PartitionPreference breaks ties between exact partitions.
type PartitionPreference string

const (
	PreferFewestAnimals PartitionPreference = "fewest_animals"
	PreferMostAnimals   PartitionPreference = "most_animals"
)

// PartitionUnit is one group size available to the partition solver.
type PartitionUnit struct {
	GroupSize int    `json:"group_size"`
	ZakatType string `json:"zakat_type"`
}

// Extrapolation describes how the obligation grows past the fixed rows.
type Extrapolation struct {
	Kind ExtrapolationKind `json:"kind"`

	// Step: due = bracket.ZakatCount + (count - StepFrom) / StepSize
	StepFrom int `json:"step_from,omitempty"`
	StepSize int `json:"step_size,omitempty"`

	// Partition: solve sum(GroupSize_i * n_i) == count over the units.
	Units  []PartitionUnit     `json:"units,omitempty"`
	Prefer PartitionPreference `json:"prefer,omitempty"`
}

// =============================================================================
// LOOKUP
// =============================================================================

// LivestockDue is a resolved livestock obligation. Total is the animal
// count across all lines; Type is the single type code when the obligation
// is uniform, or the codes joined with "+" for mixed partitions.
type LivestockDue struct {
	Animals []AnimalDue
	Total   int
	Type    string
}

// LookupBracket returns the first bracket containing count. The second
// return is false only for malformed tables with gaps.
func LookupBracket(table []Bracket, count int) (Bracket, bool) {
	for _, b := range table {
		if b.Contains(count) {
			return b, true
		}
	}
	return Bracket{}, false
}

// ResolveLivestock runs the full lookup + extrapolation for a head count.
// Counts matching no bracket (malformed table) yield the NONE obligation.
func ResolveLivestock(table []Bracket, count int) LivestockDue {
	bracket, ok := LookupBracket(table, count)
	if !ok {
		return LivestockDue{Type: ZakatTypeNone}
	}

	if bracket.Extrapolation == nil {
		due := LivestockDue{Type: bracket.ZakatType, Total: bracket.ZakatCount}
		if bracket.ZakatCount > 0 {
			due.Animals = []AnimalDue{{Type: bracket.ZakatType, Count: bracket.ZakatCount}}
		}
		return due
	}

	switch bracket.Extrapolation.Kind {
	case ExtrapolationStep:
		return resolveStep(bracket, count)
	case ExtrapolationPartition:
		return resolvePartition(bracket.Extrapolation, count)
	default:
		return LivestockDue{Type: ZakatTypeNone}
	}
}

func resolveStep(bracket Bracket, count int) LivestockDue {
	ex := bracket.Extrapolation
	total := bracket.ZakatCount
	if ex.StepSize > 0 && count > ex.StepFrom {
		total += (count - ex.StepFrom) / ex.StepSize
	}
	due := LivestockDue{Type: bracket.ZakatType, Total: total}
	if total > 0 {
		due.Animals = []AnimalDue{{Type: bracket.ZakatType, Count: total}}
	}
	return due
}

func resolvePartition(ex *Extrapolation, count int) LivestockDue {
	counts, ok := solveExact(ex.Units, count, ex.Prefer)
	if !ok {
		// Nearest lower exact partition; the remainder is not yet due.
		for target := count - 1; target > 0; target-- {
			if counts, ok = solveExact(ex.Units, target, ex.Prefer); ok {
				break
			}
		}
	}
	if !ok {
		return LivestockDue{Type: ZakatTypeNone}
	}

	var due LivestockDue
	var types []string
	for i, n := range counts {
		if n == 0 {
			continue
		}
		due.Animals = append(due.Animals, AnimalDue{Type: ex.Units[i].ZakatType, Count: n})
		due.Total += n
		types = append(types, ex.Units[i].ZakatType)
	}
	if len(types) == 0 {
		due.Type = ZakatTypeNone
	} else {
		due.Type = strings.Join(types, "+")
	}
	return due
}

// solveExact searches non-negative unit counts n_i with
// sum(GroupSize_i * n_i) == target, optimizing the total animal count per
// the preference. Tables carry two units and herd sizes are small, so a
// plain recursive enumeration is sufficient.
func solveExact(units []PartitionUnit, target int, prefer PartitionPreference) ([]int, bool) {
	var best []int
	bestTotal := -1

	better := func(total int) bool {
		if bestTotal < 0 {
			return true
		}
		if prefer == PreferMostAnimals {
			return total > bestTotal
		}
		return total < bestTotal
	}

	current := make([]int, len(units))
	var search func(idx, remaining, total int)
	search = func(idx, remaining, total int) {
		if idx == len(units) {
			if remaining == 0 && better(total) {
				best = append([]int(nil), current...)
				bestTotal = total
			}
			return
		}
		size := units[idx].GroupSize
		if size <= 0 {
			search(idx+1, remaining, total)
			return
		}
		for n := remaining / size; n >= 0; n-- {
			current[idx] = n
			search(idx+1, remaining-n*size, total+n)
		}
		current[idx] = 0
	}
	search(0, target, 0)

	return best, bestTotal >= 0
}
