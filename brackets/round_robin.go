package brackets

import (
	"context"
	"fmt"
)

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() PairingGenerator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) Name() string {
	return "RoundRobin"
}

// Generate produces a single round-robin schedule using the circle method:
// one unit stays fixed while the rest rotate, giving n-1 rounds of n/2
// matches for even n. For odd n a virtual bye unit joins the circle, so each
// round exactly one entry sits out and no match is emitted for it.
//
// Every unordered pair of entries appears exactly once, n*(n-1)/2 matches
// in total.
func (g *RoundRobinGenerator) Generate(ctx context.Context, params GenerateParams) ([]*FixtureMatch, error) {
	entries := params.Entries
	n := len(entries)

	if n < 2 {
		return nil, fmt.Errorf("%w: round robin requires at least 2 entries, found %d", ErrNotEnoughEntries, n)
	}

	// Circle of entry IDs; -1 is the bye slot for odd n.
	circle := make([]int, 0, n+1)
	for _, e := range entries {
		circle = append(circle, e.ID)
	}
	if n%2 != 0 {
		circle = append(circle, -1)
	}
	size := len(circle)
	rounds := size - 1

	matches := make([]*FixtureMatch, 0, n*(n-1)/2)
	matchCounter := 0

	for r := 1; r <= rounds; r++ {
		orderInRound := 0
		for i := 0; i < size/2; i++ {
			a := circle[i]
			b := circle[size-1-i]
			if a == -1 || b == -1 {
				// The paired entry has its bye this round.
				continue
			}
			matchCounter++
			orderInRound++
			e1, e2 := a, b
			matches = append(matches, &FixtureMatch{
				UID:          fmt.Sprintf("R%dM%d", r, orderInRound),
				Round:        r,
				OrderInRound: orderInRound,
				Entry1ID:     &e1,
				Entry2ID:     &e2,
			})
		}

		// Rotate everything except the fixed first position.
		rotated := make([]int, size)
		rotated[0] = circle[0]
		rotated[1] = circle[size-1]
		copy(rotated[2:], circle[1:size-1])
		circle = rotated
	}

	if matchCounter != n*(n-1)/2 {
		return nil, fmt.Errorf("round robin generated %d matches for %d entries, expected %d",
			matchCounter, n, n*(n-1)/2)
	}

	return matches, nil
}
