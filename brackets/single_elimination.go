package brackets

import (
	"context"
	"fmt"
	"math"
)

type SingleEliminationGenerator struct{}

func NewSingleEliminationGenerator() PairingGenerator {
	return &SingleEliminationGenerator{}
}

func (g *SingleEliminationGenerator) Name() string {
	return "SingleElimination"
}

// node is one bracket slot while building a round: either a known entry, a
// reference to the match whose winner will fill it, or a bye placeholder.
type node struct {
	entryID   *int
	sourceUID *string
	bye       bool
}

// seedOrder returns 1-based seed numbers in bracket slot order for a full
// bracket of the given power-of-two size. Slots are produced by recursive
// halving so that adjacent slots pair seed s against size+1-s; the top two
// seeds land in opposite halves and cannot meet before the final.
func seedOrder(size int) []int {
	order := []int{1}
	for len(order) < size {
		next := make([]int, 0, len(order)*2)
		complement := len(order)*2 + 1
		for _, s := range order {
			next = append(next, s, complement-s)
		}
		order = next
	}
	return order
}

// Generate builds a seeded single-elimination bracket. Entries must arrive
// best seed first. Bracket size is the smallest power of two >= n; the
// missing bracketSize-n slots become byes for the top seeds. Bye holders are
// emitted as virtual matches (IsBye) and advanced directly into the next
// round's slot; all other later-round matches are placeholders referencing
// their two feeder UIDs.
//
// n == 1 yields an empty fixture list: the lone entry is already the winner.
func (g *SingleEliminationGenerator) Generate(ctx context.Context, params GenerateParams) ([]*FixtureMatch, error) {
	entries := params.Entries
	n := len(entries)

	if n == 0 {
		return nil, ErrNoEntries
	}
	if n == 1 {
		return []*FixtureMatch{}, nil
	}

	numRounds := int(math.Ceil(math.Log2(float64(n))))
	bracketSize := 1 << uint(numRounds)

	slots := seedOrder(bracketSize)
	current := make([]*node, bracketSize)
	for i, seed := range slots {
		if seed <= n {
			id := entries[seed-1].ID
			current[i] = &node{entryID: &id}
		} else {
			current[i] = &node{bye: true}
		}
	}

	matches := make([]*FixtureMatch, 0, bracketSize-1)

	for r := 1; r <= numRounds; r++ {
		next := make([]*node, 0, len(current)/2)
		orderInRound := 0

		for i := 0; i < len(current); i += 2 {
			left, right := current[i], current[i+1]
			orderInRound++
			uid := fmt.Sprintf("R%dM%d", r, orderInRound)

			fm := &FixtureMatch{
				UID:          uid,
				Round:        r,
				OrderInRound: orderInRound,
			}

			switch {
			case left.bye && right.bye:
				// Cannot happen while byes < bracketSize/2, which holds for
				// every n >= 2 with a minimal bracket size.
				return nil, fmt.Errorf("two byes paired in round %d match %d", r, orderInRound)

			case left.bye || right.bye:
				advancing := left
				if left.bye {
					advancing = right
				}
				if advancing.entryID == nil {
					return nil, fmt.Errorf("bye paired against unresolved slot in round %d match %d", r, orderInRound)
				}
				fm.IsBye = true
				fm.ByeEntryID = advancing.entryID
				fm.Entry1ID = advancing.entryID
				next = append(next, &node{entryID: advancing.entryID})

			default:
				if left.entryID != nil {
					fm.Entry1ID = left.entryID
				} else {
					fm.SourceMatch1UID = left.sourceUID
				}
				if right.entryID != nil {
					fm.Entry2ID = right.entryID
				} else {
					fm.SourceMatch2UID = right.sourceUID
				}
				uidCopy := uid
				next = append(next, &node{sourceUID: &uidCopy})
			}

			matches = append(matches, fm)
		}

		current = next
	}

	return matches, nil
}
