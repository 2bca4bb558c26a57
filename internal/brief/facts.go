package brief

import (
	"math/rand/v2"
	"strings"
)

// Facts is the armadillo and pangolin trivia appended to briefs.
var Facts = []string{
	"Armadillos can hold their breath for over six minutes, letting them cross creeks around Lindale without a bridge.",
	"The nine-banded armadillo is the only mammal besides humans known to regularly give birth to quadruplets.",
	"Pangolins roll into a ball using scales made of keratin, the same material in human fingernails.",
	"In Texas folklore, armadillos were once called 'hillbilly speed bumps,' but Iron Dillo proves they can be cybersecurity heroes.",
	"Armadillos have a natural resistance to some infections, inspiring resilient network designs.",
}

// Picker chooses an index in [0, n). *rand.Rand satisfies it.
type Picker interface {
	IntN(n int) int
}

type globalPicker struct{}

func (globalPicker) IntN(n int) int { return rand.IntN(n) }

// RandomFact picks a fact not listed in avoid. When every fact is avoided the full list is
// used again. A nil picker uses the global source.
func RandomFact(p Picker, avoid ...string) string {
	if p == nil {
		p = globalPicker{}
	}
	skip := make(map[string]struct{}, len(avoid))
	for _, f := range avoid {
		skip[strings.TrimSpace(f)] = struct{}{}
	}
	candidates := make([]string, 0, len(Facts))
	for _, f := range Facts {
		if _, ok := skip[f]; !ok {
			candidates = append(candidates, f)
		}
	}
	if len(candidates) == 0 {
		candidates = Facts
	}
	return candidates[p.IntN(len(candidates))]
}
