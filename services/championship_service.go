package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/clubarena/championship-system/models"
	"github.com/clubarena/championship-system/repositories"
	"github.com/clubarena/championship-system/storage"
)

// CreateChampionshipInput carries everything an administrator configures up
// front: the competing mode, the ordered stage format and the optional
// eligibility filters.
type CreateChampionshipInput struct {
	Name        string                   `json:"name"`
	Description *string                  `json:"description,omitempty"`
	Mode        models.ChampionshipMode  `json:"mode"`
	Format      []models.StageDefinition `json:"format"`
	Gender      *models.Gender           `json:"gender,omitempty"`
	MinAge      *int                     `json:"min_age,omitempty"`
	MaxAge      *int                     `json:"max_age,omitempty"`
	MinRanking  *int                     `json:"min_ranking,omitempty"`
	MaxRanking  *int                     `json:"max_ranking,omitempty"`
}

type ChampionshipService interface {
	Create(ctx context.Context, actor Actor, input CreateChampionshipInput) (*models.Championship, error)
	GetByID(ctx context.Context, id int) (*models.Championship, error)
	List(ctx context.Context, status *models.ChampionshipStatus) ([]*models.Championship, error)
	Enroll(ctx context.Context, championshipID int, actor Actor, playerIDs []int) (*models.Entry, error)
	Withdraw(ctx context.Context, championshipID int, actor Actor) error
	ListStages(ctx context.Context, championshipID int) ([]*models.Stage, error)
	ListStageMatches(ctx context.Context, stageID int) ([]*models.Match, error)
	GetStandings(ctx context.Context, stageID int) ([]*models.StandingsEntry, error)
	UploadLogo(ctx context.Context, championshipID int, actor Actor, contentType string, file io.Reader) (*models.Championship, error)
}

type championshipService struct {
	championshipRepo repositories.ChampionshipRepository
	entryRepo        repositories.EntryRepository
	playerRepo       repositories.PlayerRepository
	categoryRepo     repositories.CategoryRepository
	stageRepo        repositories.StageRepository
	matchRepo        repositories.MatchRepository
	standingRepo     repositories.StandingRepository
	engine           FormatEngine
	uploader         storage.FileUploader
	logger           *slog.Logger
}

func NewChampionshipService(
	championshipRepo repositories.ChampionshipRepository,
	entryRepo repositories.EntryRepository,
	playerRepo repositories.PlayerRepository,
	categoryRepo repositories.CategoryRepository,
	stageRepo repositories.StageRepository,
	matchRepo repositories.MatchRepository,
	standingRepo repositories.StandingRepository,
	engine FormatEngine,
	uploader storage.FileUploader,
	logger *slog.Logger,
) ChampionshipService {
	return &championshipService{
		championshipRepo: championshipRepo,
		entryRepo:        entryRepo,
		playerRepo:       playerRepo,
		categoryRepo:     categoryRepo,
		stageRepo:        stageRepo,
		matchRepo:        matchRepo,
		standingRepo:     standingRepo,
		engine:           engine,
		uploader:         uploader,
		logger:           logger,
	}
}

// Create registers a new draft championship after validating its format.
func (s *championshipService) Create(ctx context.Context, actor Actor, input CreateChampionshipInput) (*models.Championship, error) {
	if !actor.Admin {
		return nil, ErrAdminRequired
	}
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, fmt.Errorf("%w: championship name is required", ErrValidationFailed)
	}
	if input.Mode != models.ModeSingles && input.Mode != models.ModeDoubles {
		return nil, fmt.Errorf("%w: unknown mode %q", ErrValidationFailed, input.Mode)
	}

	formatJSON, err := json.Marshal(input.Format)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormatInvalid, err)
	}
	championship := &models.Championship{
		Name:        input.Name,
		Description: input.Description,
		Mode:        input.Mode,
		Status:      models.ChampionshipDraft,
		FormatJSON:  string(formatJSON),
		Gender:      input.Gender,
		MinAge:      input.MinAge,
		MaxAge:      input.MaxAge,
		MinRanking:  input.MinRanking,
		MaxRanking:  input.MaxRanking,
	}
	defs, err := s.engine.ResolveDefinitions(championship)
	if err != nil {
		return nil, err
	}
	championship.Format = defs

	if err := s.championshipRepo.Create(ctx, nil, championship); err != nil {
		if errors.Is(err, repositories.ErrChampionshipNameConflict) {
			return nil, fmt.Errorf("%w: %q", ErrChampionshipNameConflict, input.Name)
		}
		return nil, err
	}

	s.logger.Info("championship created",
		slog.Int("championship_id", championship.ID),
		slog.String("name", championship.Name),
		slog.String("mode", string(championship.Mode)),
		slog.Int("stages", len(defs)))
	return championship, nil
}

// GetByID returns the championship with its format, stages, matches and
// entries resolved. Stages and entries load concurrently.
func (s *championshipService) GetByID(ctx context.Context, id int) (*models.Championship, error) {
	championship, err := s.loadChampionship(ctx, id)
	if err != nil {
		return nil, err
	}
	if defs, ferr := championship.ParseFormat(); ferr == nil {
		championship.Format = defs
	}
	if championship.LogoKey != nil {
		url := s.uploader.GetPublicURL(*championship.LogoKey)
		championship.LogoURL = &url
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		stages, err := s.stageRepo.ListByChampionship(gctx, id)
		if err != nil {
			return err
		}
		for _, stage := range stages {
			matches, err := s.matchRepo.ListByStage(gctx, stage.ID)
			if err != nil {
				return err
			}
			stage.Matches = make([]models.Match, len(matches))
			for i, m := range matches {
				stage.Matches[i] = *m
			}
			if seeds, err := s.stageRepo.ListSeeds(gctx, stage.ID); err == nil {
				stage.EntryIDs = seeds
			}
		}
		championship.Stages = make([]models.Stage, len(stages))
		for i, stage := range stages {
			championship.Stages[i] = *stage
		}
		return nil
	})

	g.Go(func() error {
		entries, err := s.entryRepo.ListByChampionship(gctx, id, nil)
		if err != nil {
			return err
		}
		if err := s.attachPlayers(gctx, entries); err != nil {
			return err
		}
		championship.Entries = make([]models.Entry, len(entries))
		for i, e := range entries {
			championship.Entries[i] = *e
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return championship, nil
}

func (s *championshipService) List(ctx context.Context, status *models.ChampionshipStatus) ([]*models.Championship, error) {
	list, err := s.championshipRepo.List(ctx, status)
	if err != nil {
		return nil, err
	}
	for _, c := range list {
		if c.LogoKey != nil {
			url := s.uploader.GetPublicURL(*c.LogoKey)
			c.LogoURL = &url
		}
	}
	return list, nil
}

// Enroll registers a competing entry while the championship is still in
// draft. Singles take exactly the enrolling player; doubles take a pair that
// includes the enrolling player. Every listed player must pass the
// championship's eligibility filters. The entry is seeded by the best
// ranking position on the side and assigned a category from the catalog.
func (s *championshipService) Enroll(ctx context.Context, championshipID int, actor Actor, playerIDs []int) (*models.Entry, error) {
	championship, err := s.loadChampionship(ctx, championshipID)
	if err != nil {
		return nil, err
	}
	if championship.Status != models.ChampionshipDraft {
		return nil, fmt.Errorf("%w: championship %d", ErrEnrollmentClosed, championshipID)
	}

	switch championship.Mode {
	case models.ModeSingles:
		if len(playerIDs) != 1 {
			return nil, fmt.Errorf("%w: singles entries take exactly one player", ErrEntryArityInvalid)
		}
	case models.ModeDoubles:
		if len(playerIDs) != 2 || playerIDs[0] == playerIDs[1] {
			return nil, fmt.Errorf("%w: doubles entries take two distinct players", ErrEntryArityInvalid)
		}
	}
	if !actor.Admin {
		member := false
		for _, id := range playerIDs {
			if id == actor.PlayerID {
				member = true
			}
		}
		if !member {
			return nil, fmt.Errorf("%w: players may only enroll themselves", ErrForbiddenOperation)
		}
	}

	bestRanking := 0
	now := time.Now()
	for _, playerID := range playerIDs {
		player, err := s.playerRepo.GetByID(ctx, playerID)
		if err != nil {
			if errors.Is(err, repositories.ErrPlayerNotFound) {
				return nil, fmt.Errorf("%w: player %d", ErrPlayerNotFound, playerID)
			}
			return nil, err
		}
		if err := checkEligibility(championship, player, now); err != nil {
			return nil, err
		}
		if bestRanking == 0 || player.RankingPosition < bestRanking {
			bestRanking = player.RankingPosition
		}
	}

	entry := &models.Entry{
		ChampionshipID: championshipID,
		Player1ID:      playerIDs[0],
		Seed:           bestRanking,
		Status:         models.EntryActive,
	}
	if len(playerIDs) == 2 {
		entry.Player2ID = &playerIDs[1]
	}

	if categories, cerr := s.categoryRepo.ListAll(ctx); cerr == nil {
		if category := ResolveCategory(bestRanking, categories); category != nil {
			entry.CategoryID = &category.ID
		}
	} else {
		s.logger.Warn("skipping category assignment", slog.Any("error", cerr))
	}

	if err := s.entryRepo.Create(ctx, nil, entry); err != nil {
		if errors.Is(err, repositories.ErrEntryAlreadyExists) {
			return nil, fmt.Errorf("%w: championship %d", ErrAlreadyEnrolled, championshipID)
		}
		return nil, err
	}

	s.logger.Info("entry enrolled",
		slog.Int("championship_id", championshipID),
		slog.Int("entry_id", entry.ID),
		slog.Int("seed", entry.Seed))
	return entry, nil
}

// Withdraw marks the actor's entry withdrawn. Once the championship starts
// the draw is frozen and withdrawal is refused.
func (s *championshipService) Withdraw(ctx context.Context, championshipID int, actor Actor) error {
	championship, err := s.loadChampionship(ctx, championshipID)
	if err != nil {
		return err
	}
	if championship.Status != models.ChampionshipDraft {
		return fmt.Errorf("%w: championship %d", ErrEnrollmentClosed, championshipID)
	}

	entry, err := s.entryRepo.FindByPlayer(ctx, championshipID, actor.PlayerID)
	if err != nil {
		if errors.Is(err, repositories.ErrEntryNotFound) {
			return fmt.Errorf("%w: player %d in championship %d", ErrEntryNotFound, actor.PlayerID, championshipID)
		}
		return err
	}
	if entry.Status == models.EntryWithdrawn {
		return nil
	}
	return s.entryRepo.UpdateStatus(ctx, nil, entry.ID, models.EntryWithdrawn)
}

func (s *championshipService) ListStages(ctx context.Context, championshipID int) ([]*models.Stage, error) {
	if _, err := s.loadChampionship(ctx, championshipID); err != nil {
		return nil, err
	}
	stages, err := s.stageRepo.ListByChampionship(ctx, championshipID)
	if err != nil {
		return nil, err
	}
	for _, stage := range stages {
		matches, merr := s.matchRepo.ListByStage(ctx, stage.ID)
		if merr != nil {
			return nil, merr
		}
		stage.Matches = make([]models.Match, len(matches))
		for i, m := range matches {
			stage.Matches[i] = *m
		}
		if seeds, serr := s.stageRepo.ListSeeds(ctx, stage.ID); serr == nil {
			stage.EntryIDs = seeds
		}
	}
	return stages, nil
}

func (s *championshipService) ListStageMatches(ctx context.Context, stageID int) ([]*models.Match, error) {
	if _, err := s.stageRepo.GetByID(ctx, stageID); err != nil {
		if errors.Is(err, repositories.ErrStageNotFound) {
			return nil, fmt.Errorf("%w: stage %d", ErrStageNotFound, stageID)
		}
		return nil, err
	}
	return s.matchRepo.ListByStage(ctx, stageID)
}

func (s *championshipService) GetStandings(ctx context.Context, stageID int) ([]*models.StandingsEntry, error) {
	if _, err := s.stageRepo.GetByID(ctx, stageID); err != nil {
		if errors.Is(err, repositories.ErrStageNotFound) {
			return nil, fmt.Errorf("%w: stage %d", ErrStageNotFound, stageID)
		}
		return nil, err
	}
	return s.standingRepo.ListByStage(ctx, stageID)
}

// UploadLogo stores the championship logo in the object store and records
// its key. A previous logo is deleted best-effort.
func (s *championshipService) UploadLogo(ctx context.Context, championshipID int, actor Actor, contentType string, file io.Reader) (*models.Championship, error) {
	if !actor.Admin {
		return nil, ErrAdminRequired
	}
	championship, err := s.loadChampionship(ctx, championshipID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("championships/%d/logo_%d", championshipID, time.Now().UnixNano())
	uploaded, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return nil, fmt.Errorf("failed to upload logo for championship %d: %w", championshipID, err)
	}
	if err := s.championshipRepo.UpdateLogoKey(ctx, championshipID, &uploaded.Key); err != nil {
		return nil, err
	}

	if championship.LogoKey != nil {
		if derr := s.uploader.Delete(ctx, *championship.LogoKey); derr != nil {
			s.logger.Warn("failed to delete previous logo",
				slog.String("key", *championship.LogoKey), slog.Any("error", derr))
		}
	}

	championship.LogoKey = &uploaded.Key
	url := s.uploader.GetPublicURL(uploaded.Key)
	championship.LogoURL = &url
	return championship, nil
}

func (s *championshipService) loadChampionship(ctx context.Context, id int) (*models.Championship, error) {
	championship, err := s.championshipRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrChampionshipNotFound) {
			return nil, fmt.Errorf("%w: championship %d", ErrChampionshipNotFound, id)
		}
		return nil, err
	}
	return championship, nil
}

func (s *championshipService) attachPlayers(ctx context.Context, entries []*models.Entry) error {
	idSet := make(map[int]bool)
	for _, e := range entries {
		idSet[e.Player1ID] = true
		if e.Player2ID != nil {
			idSet[*e.Player2ID] = true
		}
	}
	ids := make([]int, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}
	players, err := s.playerRepo.ListByIDs(ctx, ids)
	if err != nil {
		return err
	}
	byID := make(map[int]*models.Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}
	for _, e := range entries {
		e.Player1 = byID[e.Player1ID]
		if e.Player2ID != nil {
			e.Player2 = byID[*e.Player2ID]
		}
	}
	return nil
}

// checkEligibility applies the championship's enrollment filters to one
// player.
func checkEligibility(c *models.Championship, p *models.Player, now time.Time) error {
	if c.Gender != nil && p.Gender != *c.Gender {
		return fmt.Errorf("%w: player %d gender", ErrNotEligible, p.ID)
	}
	age := p.Age(now)
	if c.MinAge != nil && age < *c.MinAge {
		return fmt.Errorf("%w: player %d is under the minimum age", ErrNotEligible, p.ID)
	}
	if c.MaxAge != nil && age > *c.MaxAge {
		return fmt.Errorf("%w: player %d is over the maximum age", ErrNotEligible, p.ID)
	}
	if c.MinRanking != nil && p.RankingPosition < *c.MinRanking {
		return fmt.Errorf("%w: player %d is ranked above the allowed band", ErrNotEligible, p.ID)
	}
	if c.MaxRanking != nil && p.RankingPosition > *c.MaxRanking {
		return fmt.Errorf("%w: player %d is ranked below the allowed band", ErrNotEligible, p.ID)
	}
	return nil
}
