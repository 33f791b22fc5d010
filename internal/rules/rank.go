package rules

import "sort"

// MaxSupportingDefences caps how many secondary defences accompany the
// primary one in the generated letter.
const MaxSupportingDefences = 3

// Ranking is the ordered outcome of one analysis pass. When no defence
// applies, Primary is nil and GeneralFallback carries the generic procedural
// prompts - a valid result, never an error.
type Ranking struct {
	Primary         *Defence
	Supporting      []Defence
	Applicable      []Defence
	GeneralFallback []string
}

// HasSpecificDefences reports whether any template-based defence applied.
func (r Ranking) HasSpecificDefences() bool { return r.Primary != nil }

// Rank filters the evaluated candidates to the applicable ones and orders
// them by strength, strongest first. The sort is stable: equal strengths
// keep template declaration order. The first candidate becomes primary, the
// next up to three become supporting; the remainder is kept in Applicable
// for display but not used in the letter.
func Rank(candidates []Defence) Ranking {
	applicable := make([]Defence, 0, len(candidates))
	for _, d := range candidates {
		if d.Applicable {
			applicable = append(applicable, d)
		}
	}

	sort.SliceStable(applicable, func(i, j int) bool {
		return applicable[i].Strength.rank() > applicable[j].Strength.rank()
	})

	if len(applicable) == 0 {
		return Ranking{GeneralFallback: GeneralFallbackDefences()}
	}

	primary := applicable[0]
	supporting := applicable[1:]
	if len(supporting) > MaxSupportingDefences {
		supporting = supporting[:MaxSupportingDefences]
	}

	return Ranking{
		Primary:    &primary,
		Supporting: append([]Defence(nil), supporting...),
		Applicable: applicable,
	}
}
