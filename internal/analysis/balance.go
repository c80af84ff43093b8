package analysis

import "math"

// DefaultTolerance is the fraction of the average a ward may deviate by
// and still be considered balanced.
const DefaultTolerance = 0.03

// BalanceTarget is the population target derived from the current ward
// assignment: the average each ward should hold and the band around it.
type BalanceTarget struct {
	TotalPopulation int `json:"total_population"`
	WardCount       int `json:"ward_count"`
	Average         int `json:"average"`
	Tolerance       int `json:"tolerance"`
	Min             int `json:"min"`
	Max             int `json:"max"`
}

// ComputeBalance derives the balance target from the current-assignment
// ward aggregates. The total is the sum over ward groups, so rows with
// a null ward label (de-annexed blocks) are outside both the total and
// the ward count; Table.SumField gives the all-rows figure when the
// remainder matters.
//
// The average rounds up: with a ceiling average every ward can be
// granted at least the target without the targets summing short.
// Tolerance is ceil(frac x average). The band ends round independently,
// floor below and ceiling above; both operands are integers by then,
// but the rounding order is load-bearing and kept as is.
func ComputeBalance(g *Grouped, popCol string, toleranceFrac float64) (BalanceTarget, error) {
	if len(g.Keys) == 0 {
		return BalanceTarget{}, &InsufficientDataError{GroupBy: g.GroupBy}
	}
	if toleranceFrac <= 0 {
		toleranceFrac = DefaultTolerance
	}

	total := g.Sum(popCol)
	count := len(g.Keys)

	avg := int(math.Ceil(total / float64(count)))
	tol := int(math.Ceil(toleranceFrac * float64(avg)))

	return BalanceTarget{
		TotalPopulation: int(total),
		WardCount:       count,
		Average:         avg,
		Tolerance:       tol,
		Min:             int(math.Floor(float64(avg) - float64(tol))),
		Max:             int(math.Ceil(float64(avg) + float64(tol))),
	}, nil
}

// Balanced reports whether a ward population falls inside the band.
func (b BalanceTarget) Balanced(pop float64) bool {
	return pop >= float64(b.Min) && pop <= float64(b.Max)
}
