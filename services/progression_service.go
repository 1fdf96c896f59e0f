package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/clubarena/championship-system/models"
	"github.com/clubarena/championship-system/repositories"
)

// AdvanceResult describes one progression step: the stage that was closed,
// the stage that was opened (nil on the final step), the persisted standings
// of a closed round-robin stage and the champion when the championship ends.
type AdvanceResult struct {
	Championship    *models.Championship     `json:"championship"`
	CompletedStage  *models.Stage            `json:"completed_stage,omitempty"`
	NextStage       *models.Stage            `json:"next_stage,omitempty"`
	Standings       []*models.StandingsEntry `json:"standings,omitempty"`
	ChampionEntryID *int                     `json:"champion_entry_id,omitempty"`
}

// ProgressionService drives a championship through its configured stage
// sequence: activation builds the first stage from the enrolled entries, each
// later call closes the current stage, carries its qualifiers into the next
// one and finishes the championship when the format is exhausted.
type ProgressionService interface {
	AdvanceStage(ctx context.Context, championshipID int, actor Actor, force bool) (*AdvanceResult, error)
	OnMatchFinalized(ctx context.Context, match *models.Match) error
}

type progressionService struct {
	db               *sql.DB
	championshipRepo repositories.ChampionshipRepository
	stageRepo        repositories.StageRepository
	matchRepo        repositories.MatchRepository
	entryRepo        repositories.EntryRepository
	standingRepo     repositories.StandingRepository
	engine           FormatEngine
	notifier         Notifier
	logger           *slog.Logger
}

func NewProgressionService(
	db *sql.DB,
	championshipRepo repositories.ChampionshipRepository,
	stageRepo repositories.StageRepository,
	matchRepo repositories.MatchRepository,
	entryRepo repositories.EntryRepository,
	standingRepo repositories.StandingRepository,
	engine FormatEngine,
	notifier Notifier,
	logger *slog.Logger,
) ProgressionService {
	return &progressionService{
		db:               db,
		championshipRepo: championshipRepo,
		stageRepo:        stageRepo,
		matchRepo:        matchRepo,
		entryRepo:        entryRepo,
		standingRepo:     standingRepo,
		engine:           engine,
		notifier:         notifier,
		logger:           logger,
	}
}

// withTx runs fn inside a transaction when a database handle is wired;
// otherwise fn runs against the repositories' default executor.
func (s *progressionService) withTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	if s.db == nil {
		return fn(nil)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		return err
	}
	return tx.Commit()
}

// AdvanceStage is the single admin lever of the progression engine. On a
// draft championship it activates it and builds the first stage from the
// enrolled entries in seed order. On an active championship it closes the
// current stage, provided every real match has a confirmed result or force
// is set, and either opens the next configured stage with the qualifiers or
// crowns the champion and finishes the championship.
func (s *progressionService) AdvanceStage(ctx context.Context, championshipID int, actor Actor, force bool) (*AdvanceResult, error) {
	if !actor.Admin {
		return nil, ErrAdminRequired
	}

	championship, err := s.loadChampionship(ctx, championshipID)
	if err != nil {
		return nil, err
	}
	defs, err := s.engine.ResolveDefinitions(championship)
	if err != nil {
		return nil, err
	}

	switch championship.Status {
	case models.ChampionshipFinished:
		return nil, fmt.Errorf("%w: championship %d", ErrChampionshipFinished, championshipID)
	case models.ChampionshipDraft:
		return s.activate(ctx, championship, defs)
	}

	stage, err := s.stageRepo.GetActiveByChampionship(ctx, championshipID)
	if err != nil {
		if errors.Is(err, repositories.ErrStageNotFound) {
			return nil, fmt.Errorf("%w: championship %d has no active stage", ErrStateConflict, championshipID)
		}
		return nil, err
	}

	if !force {
		pending, cErr := s.matchRepo.CountPendingResults(ctx, stage.ID)
		if cErr != nil {
			return nil, cErr
		}
		if pending > 0 {
			return nil, fmt.Errorf("%w: stage %d has %d pending matches", ErrStageIncomplete, stage.ID, pending)
		}
	}

	seeds, err := s.stageRepo.ListSeeds(ctx, stage.ID)
	if err != nil {
		return nil, err
	}
	matches, err := s.matchRepo.ListByStage(ctx, stage.ID)
	if err != nil {
		return nil, err
	}

	result := &AdvanceResult{Championship: championship, CompletedStage: stage}

	var qualifiers []int
	switch stage.Type {
	case models.StageRoundRobin:
		standings := ComputeStandings(seeds, matches)
		result.Standings = standings
		qualifiers = make([]int, 0, len(standings))
		for _, row := range standings {
			qualifiers = append(qualifiers, row.EntryID)
		}
	case models.StageElimination:
		qualifiers = eliminationRanking(seeds, matches)
	default:
		return nil, fmt.Errorf("%w: stage %d has unknown type %q", ErrFormatInvalid, stage.ID, stage.Type)
	}
	if len(qualifiers) == 0 {
		return nil, fmt.Errorf("%w: stage %d produced no qualifiers", ErrStateConflict, stage.ID)
	}

	def := defs[stage.Index]
	advance := def.AdvanceCount
	if advance < 1 || advance > len(qualifiers) {
		advance = len(qualifiers)
	}

	err = s.withTx(ctx, func(exec repositories.SQLExecutor) error {
		if result.Standings != nil {
			if err := s.standingRepo.ReplaceForStage(ctx, exec, stage.ID, result.Standings); err != nil {
				return err
			}
		}
		if err := s.stageRepo.UpdateStatus(ctx, exec, stage.ID, models.StageCompleted); err != nil {
			return err
		}
		stage.Status = models.StageCompleted

		// A stage built from a single qualifier has nothing to play and
		// comes back already completed, so the advancement loops until a
		// playable stage opens or the format runs out.
		index := stage.Index
		for {
			if index >= len(defs)-1 {
				championID := qualifiers[0]
				result.ChampionEntryID = &championID
				result.NextStage = nil
				if err := s.championshipRepo.UpdateStatus(ctx, exec, championshipID, models.ChampionshipFinished); err != nil {
					return err
				}
				championship.Status = models.ChampionshipFinished
				return nil
			}

			advancing, err := s.loadEntries(ctx, qualifiers[:advance])
			if err != nil {
				return err
			}
			next, err := s.engine.BuildStage(ctx, exec, championshipID, index+1, defs[index+1], advancing)
			if err != nil {
				return err
			}
			result.NextStage = next
			if next.Status != models.StageCompleted {
				return nil
			}

			index = next.Index
			qualifiers = qualifiers[:advance]
			advance = defs[index].AdvanceCount
			if advance < 1 || advance > len(qualifiers) {
				advance = len(qualifiers)
			}
		}
	})
	if err != nil {
		return nil, err
	}

	if result.ChampionEntryID != nil {
		s.notifier.Notify(championshipID, EventChampionshipFinished, map[string]interface{}{
			"championship_id":   championshipID,
			"champion_entry_id": *result.ChampionEntryID,
		})
		s.logger.Info("championship finished",
			slog.Int("championship_id", championshipID),
			slog.Int("champion_entry_id", *result.ChampionEntryID))
	} else {
		s.notifier.Notify(championshipID, EventStageAdvanced, map[string]interface{}{
			"championship_id": championshipID,
			"completed_stage": stage.Index,
			"next_stage":      result.NextStage.Index,
		})
		s.logger.Info("stage advanced",
			slog.Int("championship_id", championshipID),
			slog.Int("completed_stage", stage.Index),
			slog.Int("next_stage", result.NextStage.Index))
	}
	return result, nil
}

// activate flips a draft championship to active and builds its first stage
// from the active entries in seed order.
func (s *progressionService) activate(ctx context.Context, championship *models.Championship, defs []models.StageDefinition) (*AdvanceResult, error) {
	status := models.EntryActive
	entries, err := s.entryRepo.ListByChampionship(ctx, championship.ID, &status)
	if err != nil {
		return nil, err
	}
	if len(entries) < defs[0].MinEntries {
		return nil, fmt.Errorf("%w: have %d, stage 0 needs %d",
			ErrNotEnoughEntriesEnrolled, len(entries), defs[0].MinEntries)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Seed != entries[j].Seed {
			return entries[i].Seed < entries[j].Seed
		}
		return entries[i].ID < entries[j].ID
	})

	result := &AdvanceResult{Championship: championship}
	err = s.withTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.championshipRepo.UpdateStatus(ctx, exec, championship.ID, models.ChampionshipActive); err != nil {
			return err
		}
		championship.Status = models.ChampionshipActive

		first, err := s.engine.BuildStage(ctx, exec, championship.ID, 0, defs[0], entries)
		if err != nil {
			return err
		}
		result.NextStage = first
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(championship.ID, EventStageAdvanced, map[string]interface{}{
		"championship_id": championship.ID,
		"next_stage":      0,
	})
	s.logger.Info("championship activated",
		slog.Int("championship_id", championship.ID),
		slog.Int("entries", len(entries)))
	return result, nil
}

// OnMatchFinalized propagates a confirmed result: the winner flows into the
// slots of any bracket match fed by this one, and a round-robin stage gets
// its standings recomputed. Both writes are idempotent, so retries after a
// partial failure are safe.
func (s *progressionService) OnMatchFinalized(ctx context.Context, match *models.Match) error {
	if match.WinnerEntryID == nil {
		return fmt.Errorf("match %d finalized without a winner", match.ID)
	}
	if err := s.matchRepo.FillSlotsFromSource(ctx, nil, match.ID, *match.WinnerEntryID); err != nil {
		return err
	}

	stage, err := s.stageRepo.GetByID(ctx, match.StageID)
	if err != nil {
		return err
	}
	if stage.Type != models.StageRoundRobin {
		return nil
	}

	seeds, err := s.stageRepo.ListSeeds(ctx, stage.ID)
	if err != nil {
		return err
	}
	matches, err := s.matchRepo.ListByStage(ctx, stage.ID)
	if err != nil {
		return err
	}
	standings := ComputeStandings(seeds, matches)
	return s.standingRepo.ReplaceForStage(ctx, nil, stage.ID, standings)
}

func (s *progressionService) loadChampionship(ctx context.Context, id int) (*models.Championship, error) {
	championship, err := s.championshipRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrChampionshipNotFound) {
			return nil, fmt.Errorf("%w: championship %d", ErrChampionshipNotFound, id)
		}
		return nil, err
	}
	return championship, nil
}

func (s *progressionService) loadEntries(ctx context.Context, ids []int) ([]*models.Entry, error) {
	entries := make([]*models.Entry, 0, len(ids))
	for _, id := range ids {
		entry, err := s.entryRepo.GetByID(ctx, id)
		if err != nil {
			return nil, mapEntryRepoError(err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// eliminationRanking orders a bracket stage's entries by how far they got:
// the final's winner first, its loser second, then each earlier round's
// losers, best seed first inside a round. Entries without a decided exit,
// possible after a forced advance, trail in seed order.
func eliminationRanking(seeds []int, matches []*models.Match) []int {
	seedIndex := make(map[int]int, len(seeds))
	for i, id := range seeds {
		seedIndex[id] = i
	}

	maxRound := 0
	for _, m := range matches {
		if m.Round > maxRound {
			maxRound = m.Round
		}
	}

	ranked := make([]int, 0, len(seeds))
	added := make(map[int]bool, len(seeds))
	appendRanked := func(ids []int) {
		sort.SliceStable(ids, func(i, j int) bool { return seedIndex[ids[i]] < seedIndex[ids[j]] })
		for _, id := range ids {
			if !added[id] {
				added[id] = true
				ranked = append(ranked, id)
			}
		}
	}

	for round := maxRound; round >= 1; round-- {
		var winners, losers []int
		for _, m := range matches {
			if m.Round != round || m.IsBye {
				continue
			}
			if m.ResultStatus != models.ResultConfirmed || m.WinnerEntryID == nil {
				continue
			}
			winners = append(winners, *m.WinnerEntryID)
			if m.Entry1ID != nil && *m.Entry1ID != *m.WinnerEntryID {
				losers = append(losers, *m.Entry1ID)
			}
			if m.Entry2ID != nil && *m.Entry2ID != *m.WinnerEntryID {
				losers = append(losers, *m.Entry2ID)
			}
		}
		if round == maxRound {
			appendRanked(winners)
		}
		appendRanked(losers)
	}

	var rest []int
	for _, id := range seeds {
		if !added[id] {
			rest = append(rest, id)
		}
	}
	appendRanked(rest)
	return ranked
}
