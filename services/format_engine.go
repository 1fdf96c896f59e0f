package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/clubarena/championship-system/brackets"
	"github.com/clubarena/championship-system/models"
	"github.com/clubarena/championship-system/repositories"
)

// FormatEngine resolves a championship's configured format into its stage
// sequence and materializes one stage at a time: it seeds the stage, runs
// the pairing generator and persists the fixtures, linking later-round
// placeholders to their feeder matches.
type FormatEngine interface {
	ResolveDefinitions(championship *models.Championship) ([]models.StageDefinition, error)
	BuildStage(ctx context.Context, exec repositories.SQLExecutor, championshipID, index int, def models.StageDefinition, seededEntries []*models.Entry) (*models.Stage, error)
}

type formatEngine struct {
	stageRepo repositories.StageRepository
	matchRepo repositories.MatchRepository
	logger    *slog.Logger
}

func NewFormatEngine(
	stageRepo repositories.StageRepository,
	matchRepo repositories.MatchRepository,
	logger *slog.Logger,
) FormatEngine {
	return &formatEngine{
		stageRepo: stageRepo,
		matchRepo: matchRepo,
		logger:    logger,
	}
}

// ResolveDefinitions parses and validates the championship's stage list.
func (e *formatEngine) ResolveDefinitions(championship *models.Championship) ([]models.StageDefinition, error) {
	defs, err := championship.ParseFormat()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormatInvalid, err)
	}
	if len(defs) == 0 {
		return nil, fmt.Errorf("%w: format has no stages", ErrFormatInvalid)
	}
	for i, def := range defs {
		if brackets.ForStageType(def.Type) == nil {
			return nil, fmt.Errorf("%w: stage %d has unknown type %q", ErrFormatInvalid, i, def.Type)
		}
		if def.MinEntries < 2 {
			return nil, fmt.Errorf("%w: stage %d needs min_entries >= 2", ErrFormatInvalid, i)
		}
		if def.MaxEntries > 0 && def.MaxEntries < def.MinEntries {
			return nil, fmt.Errorf("%w: stage %d has max_entries below min_entries", ErrFormatInvalid, i)
		}
		if i < len(defs)-1 && def.AdvanceCount < 1 {
			return nil, fmt.Errorf("%w: stage %d needs advance_count >= 1", ErrFormatInvalid, i)
		}
	}
	return defs, nil
}

// BuildStage creates the stage, its seed list and all fixture rows. Later
// rounds are persisted as placeholder matches with null entry slots; a
// second pass links each one to its feeder matches by database id. The
// caller provides the transaction.
func (e *formatEngine) BuildStage(ctx context.Context, exec repositories.SQLExecutor, championshipID, index int, def models.StageDefinition, seededEntries []*models.Entry) (*models.Stage, error) {
	if def.MaxEntries > 0 && len(seededEntries) > def.MaxEntries {
		seededEntries = seededEntries[:def.MaxEntries]
	}

	stage := &models.Stage{
		ChampionshipID: championshipID,
		Index:          index,
		Type:           def.Type,
		Status:         models.StageActive,
	}
	if err := e.stageRepo.Create(ctx, exec, stage); err != nil {
		return nil, fmt.Errorf("failed to create stage %d: %w", index, err)
	}

	entryIDs := make([]int, len(seededEntries))
	for i, entry := range seededEntries {
		entryIDs[i] = entry.ID
	}
	if err := e.stageRepo.SetSeeds(ctx, exec, stage.ID, entryIDs); err != nil {
		return nil, err
	}
	stage.EntryIDs = entryIDs

	generator := brackets.ForStageType(def.Type)
	fixtures, err := generator.Generate(ctx, brackets.GenerateParams{
		Stage:   stage,
		Entries: seededEntries,
	})
	if err != nil {
		if errors.Is(err, brackets.ErrNotEnoughEntries) || errors.Is(err, brackets.ErrNoEntries) {
			return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
		}
		return nil, fmt.Errorf("failed to generate fixtures for stage %d: %w", index, err)
	}

	e.logger.Info("stage fixtures generated",
		slog.Int("championship_id", championshipID),
		slog.Int("stage_index", index),
		slog.String("type", string(def.Type)),
		slog.Int("entries", len(seededEntries)),
		slog.Int("fixtures", len(fixtures)))

	// First pass: create all match rows.
	uidToMatch := make(map[string]*models.Match, len(fixtures))
	for _, fm := range fixtures {
		uid := fm.UID
		match := &models.Match{
			StageID:           stage.ID,
			Round:             fm.Round,
			OrderInRound:      fm.OrderInRound,
			BracketUID:        &uid,
			Entry1ID:          fm.Entry1ID,
			Entry2ID:          fm.Entry2ID,
			IsBye:             fm.IsBye,
			NegotiationStatus: models.NegotiationNoProposal,
			ResultStatus:      models.ResultUnplayed,
		}
		if fm.IsBye {
			// Virtual match: the bye holder advances with nothing to play
			// or schedule.
			match.ResultStatus = models.ResultConfirmed
			match.WinnerEntryID = fm.ByeEntryID
		}
		if err := e.matchRepo.Create(ctx, exec, match); err != nil {
			return nil, fmt.Errorf("failed to create match %s: %w", uid, err)
		}
		uidToMatch[uid] = match
	}

	// Second pass: resolve feeder UIDs into database ids.
	for _, fm := range fixtures {
		if fm.SourceMatch1UID == nil && fm.SourceMatch2UID == nil {
			continue
		}
		match := uidToMatch[fm.UID]
		var source1, source2 *int
		if fm.SourceMatch1UID != nil {
			feeder, ok := uidToMatch[*fm.SourceMatch1UID]
			if !ok {
				return nil, fmt.Errorf("fixture %s references unknown feeder %s", fm.UID, *fm.SourceMatch1UID)
			}
			source1 = &feeder.ID
		}
		if fm.SourceMatch2UID != nil {
			feeder, ok := uidToMatch[*fm.SourceMatch2UID]
			if !ok {
				return nil, fmt.Errorf("fixture %s references unknown feeder %s", fm.UID, *fm.SourceMatch2UID)
			}
			source2 = &feeder.ID
		}
		if err := e.matchRepo.SetSourceLinks(ctx, exec, match.ID, source1, source2); err != nil {
			return nil, err
		}
	}

	// A stage without playable fixtures (one entry left after slicing) is
	// complete the moment it exists.
	playable := 0
	for _, fm := range fixtures {
		if !fm.IsBye {
			playable++
		}
	}
	if playable == 0 {
		if err := e.stageRepo.UpdateStatus(ctx, exec, stage.ID, models.StageCompleted); err != nil {
			return nil, err
		}
		stage.Status = models.StageCompleted
	}

	return stage, nil
}
