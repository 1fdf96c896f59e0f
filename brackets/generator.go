package brackets

import (
	"context"
	"errors"

	"github.com/clubarena/championship-system/models"
)

var (
	ErrNoEntries        = errors.New("cannot generate fixtures with zero entries")
	ErrNotEnoughEntries = errors.New("not enough entries to generate fixtures")
)

// GenerateParams carries the seeded entry list for a stage. Entries must be
// ordered best seed first; doubles pairs are atomic units.
type GenerateParams struct {
	Stage   *models.Stage
	Entries []*models.Entry
}

// FixtureMatch is the generator output before persistence. UIDs are unique
// within one stage and are how later-round placeholders reference their
// feeder matches.
type FixtureMatch struct {
	UID          string
	Round        int
	OrderInRound int

	Entry1ID *int
	Entry2ID *int

	SourceMatch1UID *string
	SourceMatch2UID *string

	// IsBye marks a virtual match: ByeEntryID advances without play.
	IsBye      bool
	ByeEntryID *int
}

type PairingGenerator interface {
	Generate(ctx context.Context, params GenerateParams) ([]*FixtureMatch, error)

	Name() string
}

// ForStageType returns the generator for a stage type, or nil when the type
// is unknown.
func ForStageType(t models.StageType) PairingGenerator {
	switch t {
	case models.StageRoundRobin:
		return NewRoundRobinGenerator()
	case models.StageElimination:
		return NewSingleEliminationGenerator()
	default:
		return nil
	}
}
