package services

import (
	"fmt"
	"strconv"
	"strings"
)

// SetScore is one set of a match score, side 1 first.
type SetScore struct {
	Games1 int
	Games2 int
}

// ParsedScore is a validated set-by-set outcome. WinnerSide is 1 or 2,
// derived from the set tally.
type ParsedScore struct {
	Sets       []SetScore
	Sets1      int
	Sets2      int
	WinnerSide int
}

// ParseScore validates a score string like "6-4 3-6 7-5" (sets separated by
// spaces or commas). Every set needs two non-negative game counts and a
// winner; the match as a whole needs a strict set-count winner.
func ParseScore(score string) (*ParsedScore, error) {
	normalized := strings.ReplaceAll(score, ",", " ")
	fields := strings.Fields(normalized)
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: empty score", ErrScoreInvalid)
	}

	parsed := &ParsedScore{Sets: make([]SetScore, 0, len(fields))}
	for _, f := range fields {
		parts := strings.Split(f, "-")
		if len(parts) != 2 {
			return nil, fmt.Errorf("%w: set %q is not in games-games form", ErrScoreInvalid, f)
		}
		g1, err1 := strconv.Atoi(parts[0])
		g2, err2 := strconv.Atoi(parts[1])
		if err1 != nil || err2 != nil || g1 < 0 || g2 < 0 {
			return nil, fmt.Errorf("%w: set %q has invalid game counts", ErrScoreInvalid, f)
		}
		if g1 == g2 {
			return nil, fmt.Errorf("%w: set %q has no winner", ErrScoreInvalid, f)
		}
		parsed.Sets = append(parsed.Sets, SetScore{Games1: g1, Games2: g2})
		if g1 > g2 {
			parsed.Sets1++
		} else {
			parsed.Sets2++
		}
	}

	switch {
	case parsed.Sets1 > parsed.Sets2:
		parsed.WinnerSide = 1
	case parsed.Sets2 > parsed.Sets1:
		parsed.WinnerSide = 2
	default:
		return nil, fmt.Errorf("%w: equal sets won, match has no winner", ErrScoreInvalid)
	}
	return parsed, nil
}

// Normalized renders the score back in canonical space-separated form.
func (p *ParsedScore) Normalized() string {
	parts := make([]string, len(p.Sets))
	for i, s := range p.Sets {
		parts[i] = fmt.Sprintf("%d-%d", s.Games1, s.Games2)
	}
	return strings.Join(parts, " ")
}

// Inverted returns the same score seen from the other side of the net.
func (p *ParsedScore) Inverted() *ParsedScore {
	inv := &ParsedScore{
		Sets:  make([]SetScore, len(p.Sets)),
		Sets1: p.Sets2,
		Sets2: p.Sets1,
	}
	for i, s := range p.Sets {
		inv.Sets[i] = SetScore{Games1: s.Games2, Games2: s.Games1}
	}
	if p.WinnerSide == 1 {
		inv.WinnerSide = 2
	} else {
		inv.WinnerSide = 1
	}
	return inv
}
