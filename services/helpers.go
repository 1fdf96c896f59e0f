package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/clubarena/championship-system/models"
	"github.com/clubarena/championship-system/repositories"
)

// loadMatch fetches a match and maps repository errors into the service
// taxonomy.
func loadMatch(ctx context.Context, matchRepo repositories.MatchRepository, matchID int) (*models.Match, error) {
	match, err := matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, fmt.Errorf("%w: match %d", ErrMatchNotFound, matchID)
		}
		return nil, err
	}
	return match, nil
}

// matchSides loads both resolved entries of a match. A nil slot means the
// match still waits for a feeder result.
func matchSides(ctx context.Context, entryRepo repositories.EntryRepository, match *models.Match) (*models.Entry, *models.Entry, error) {
	if match.Entry1ID == nil || match.Entry2ID == nil {
		return nil, nil, fmt.Errorf("%w: match %d", ErrMatchSlotsUnresolved, match.ID)
	}
	entry1, err := entryRepo.GetByID(ctx, *match.Entry1ID)
	if err != nil {
		return nil, nil, mapEntryRepoError(err)
	}
	entry2, err := entryRepo.GetByID(ctx, *match.Entry2ID)
	if err != nil {
		return nil, nil, mapEntryRepoError(err)
	}
	return entry1, entry2, nil
}

// sideOf returns the entry the player competes under in this match, or nil
// when the player is not a participant.
func sideOf(entry1, entry2 *models.Entry, playerID int) *models.Entry {
	if entry1.HasPlayer(playerID) {
		return entry1
	}
	if entry2.HasPlayer(playerID) {
		return entry2
	}
	return nil
}

// championshipIDOfMatch resolves a match's championship through its stage,
// for event routing.
func championshipIDOfMatch(ctx context.Context, stageRepo repositories.StageRepository, match *models.Match) (int, error) {
	stage, err := stageRepo.GetByID(ctx, match.StageID)
	if err != nil {
		if errors.Is(err, repositories.ErrStageNotFound) {
			return 0, fmt.Errorf("%w: stage %d", ErrStageNotFound, match.StageID)
		}
		return 0, err
	}
	return stage.ChampionshipID, nil
}

func mapEntryRepoError(err error) error {
	if errors.Is(err, repositories.ErrEntryNotFound) {
		return ErrEntryNotFound
	}
	return err
}

// mapVersionConflict turns the repository's optimistic-lock failure into the
// service-level concurrency error; everything else passes through.
func mapVersionConflict(err error) error {
	if errors.Is(err, repositories.ErrMatchVersionConflict) {
		return fmt.Errorf("%w: %v", ErrConcurrencyConflict, err)
	}
	return err
}
