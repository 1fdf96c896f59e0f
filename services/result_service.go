package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/clubarena/championship-system/models"
	"github.com/clubarena/championship-system/repositories"
)

// MatchFinalizer reacts to a match reaching a confirmed result: filling the
// slots of downstream bracket matches and recomputing standings. Implemented
// by the progression service.
type MatchFinalizer interface {
	OnMatchFinalized(ctx context.Context, match *models.Match) error
}

// ResultService runs the per-match result state machine: Unplayed ->
// ResultProposed -> ResultConfirmed, with a Disputed branch that only an
// administrator can resolve. Scores are stored normalized to the entry1
// perspective regardless of which side reported them.
type ResultService interface {
	ProposeResult(ctx context.Context, matchID int, actor Actor, score string) (*models.ResultProposal, error)
	AcceptResult(ctx context.Context, matchID int, actor Actor) (*models.Match, error)
	FileDispute(ctx context.Context, matchID int, actor Actor, motive, justification string) (*models.Report, error)
	AdminResolveDispute(ctx context.Context, matchID int, actor Actor, score string) (*models.Match, error)
	GetPendingProposal(ctx context.Context, matchID int) (*models.ResultProposal, error)
}

type resultService struct {
	matchRepo    repositories.MatchRepository
	proposalRepo repositories.ResultProposalRepository
	entryRepo    repositories.EntryRepository
	stageRepo    repositories.StageRepository
	playerRepo   repositories.PlayerRepository
	reportRepo   repositories.ReportRepository
	finalizer    MatchFinalizer
	notifier     Notifier
	logger       *slog.Logger
}

func NewResultService(
	matchRepo repositories.MatchRepository,
	proposalRepo repositories.ResultProposalRepository,
	entryRepo repositories.EntryRepository,
	stageRepo repositories.StageRepository,
	playerRepo repositories.PlayerRepository,
	reportRepo repositories.ReportRepository,
	finalizer MatchFinalizer,
	notifier Notifier,
	logger *slog.Logger,
) ResultService {
	return &resultService{
		matchRepo:    matchRepo,
		proposalRepo: proposalRepo,
		entryRepo:    entryRepo,
		stageRepo:    stageRepo,
		playerRepo:   playerRepo,
		reportRepo:   reportRepo,
		finalizer:    finalizer,
		notifier:     notifier,
		logger:       logger,
	}
}

// ProposeResult records one side's claimed score. The score is submitted
// from the proposer's own perspective and normalized to entry1 before it is
// stored, so both sides' proposals compare on equal footing. A newer
// proposal replaces a pending one.
func (s *resultService) ProposeResult(ctx context.Context, matchID int, actor Actor, score string) (*models.ResultProposal, error) {
	match, err := loadMatch(ctx, s.matchRepo, matchID)
	if err != nil {
		return nil, err
	}
	if match.IsBye {
		return nil, fmt.Errorf("%w: match %d", ErrMatchIsBye, matchID)
	}
	entry1, entry2, err := matchSides(ctx, s.entryRepo, match)
	if err != nil {
		return nil, err
	}
	actorSide := sideOf(entry1, entry2, actor.PlayerID)
	if actorSide == nil && !actor.Admin {
		return nil, fmt.Errorf("%w: player %d, match %d", ErrNotMatchParticipant, actor.PlayerID, matchID)
	}

	switch match.ResultStatus {
	case models.ResultConfirmed:
		return nil, fmt.Errorf("%w: match %d", ErrResultAlreadyConfirmed, matchID)
	case models.ResultDisputed:
		return nil, fmt.Errorf("%w: match %d result is under dispute", ErrStateConflict, matchID)
	}
	if match.NegotiationStatus != models.NegotiationConfirmed && !actor.Admin {
		return nil, fmt.Errorf("%w: match %d", ErrScheduleNotConfirmed, matchID)
	}

	parsed, err := ParseScore(score)
	if err != nil {
		return nil, err
	}
	// Admins and entry1-side proposers already report from the entry1
	// perspective; an entry2-side proposer's score is flipped.
	if actorSide != nil && actorSide.ID == entry2.ID {
		parsed = parsed.Inverted()
	}

	if err := s.proposalRepo.DeletePendingByMatch(ctx, nil, matchID); err != nil {
		return nil, fmt.Errorf("failed to clear previous result proposal for match %d: %w", matchID, err)
	}

	proposal := &models.ResultProposal{
		MatchID:          matchID,
		ProposerPlayerID: actor.PlayerID,
		Score:            parsed.Normalized(),
		Status:           models.ResultProposalPending,
	}
	if err := s.proposalRepo.Create(ctx, nil, proposal); err != nil {
		return nil, err
	}

	err = s.matchRepo.UpdateResult(ctx, nil, matchID, match.Version,
		models.ResultProposed, nil, nil)
	if err != nil {
		return nil, mapVersionConflict(err)
	}
	return proposal, nil
}

// AcceptResult confirms the opposing side's pending proposal, finalizing the
// match: score and winner are written, the bracket advances and standings
// refresh.
func (s *resultService) AcceptResult(ctx context.Context, matchID int, actor Actor) (*models.Match, error) {
	match, err := loadMatch(ctx, s.matchRepo, matchID)
	if err != nil {
		return nil, err
	}
	if match.IsBye {
		return nil, fmt.Errorf("%w: match %d", ErrMatchIsBye, matchID)
	}
	if match.ResultStatus == models.ResultConfirmed {
		return nil, fmt.Errorf("%w: match %d", ErrResultAlreadyConfirmed, matchID)
	}
	if match.ResultStatus != models.ResultProposed {
		return nil, fmt.Errorf("%w: match %d", ErrNoPendingResult, matchID)
	}

	entry1, entry2, err := matchSides(ctx, s.entryRepo, match)
	if err != nil {
		return nil, err
	}
	actorSide := sideOf(entry1, entry2, actor.PlayerID)
	if actorSide == nil {
		return nil, fmt.Errorf("%w: player %d, match %d", ErrNotMatchParticipant, actor.PlayerID, matchID)
	}

	proposal, err := s.loadPendingProposal(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if proposal.Status != models.ResultProposalPending {
		return nil, fmt.Errorf("%w: match %d", ErrNoPendingResult, matchID)
	}
	proposerSide := sideOf(entry1, entry2, proposal.ProposerPlayerID)
	if proposerSide != nil && proposerSide.ID == actorSide.ID {
		return nil, fmt.Errorf("%w: match %d", ErrProposerCannotAct, matchID)
	}

	return s.finalize(ctx, match, entry1, entry2, proposal, proposal.Score)
}

// FileDispute rejects a pending proposal and freezes the match until an
// administrator resolves it. The dispute is tracked as an open report of
// kind disputa_resultado; a second dispute on the same match is refused
// while one is open.
func (s *resultService) FileDispute(ctx context.Context, matchID int, actor Actor, motive, justification string) (*models.Report, error) {
	motive = strings.TrimSpace(motive)
	justification = strings.TrimSpace(justification)
	if motive == "" || justification == "" {
		return nil, fmt.Errorf("%w: dispute needs a motive and a justification", ErrValidationFailed)
	}

	match, err := loadMatch(ctx, s.matchRepo, matchID)
	if err != nil {
		return nil, err
	}
	if match.ResultStatus != models.ResultProposed {
		return nil, fmt.Errorf("%w: match %d", ErrNoPendingResult, matchID)
	}

	entry1, entry2, err := matchSides(ctx, s.entryRepo, match)
	if err != nil {
		return nil, err
	}
	actorSide := sideOf(entry1, entry2, actor.PlayerID)
	if actorSide == nil {
		return nil, fmt.Errorf("%w: player %d, match %d", ErrNotMatchParticipant, actor.PlayerID, matchID)
	}

	proposal, err := s.loadPendingProposal(ctx, matchID)
	if err != nil {
		return nil, err
	}
	proposerSide := sideOf(entry1, entry2, proposal.ProposerPlayerID)
	if proposerSide != nil && proposerSide.ID == actorSide.ID {
		return nil, fmt.Errorf("%w: match %d", ErrProposerCannotAct, matchID)
	}

	if _, err := s.reportRepo.GetOpenByMatchAndKind(ctx, matchID, models.ReportResultDispute); err == nil {
		return nil, fmt.Errorf("%w: match %d", ErrDisputeAlreadyOpen, matchID)
	} else if !errors.Is(err, repositories.ErrReportNotFound) {
		return nil, err
	}

	reporter, err := s.playerRepo.GetByID(ctx, actor.PlayerID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, fmt.Errorf("%w: player %d", ErrPlayerNotFound, actor.PlayerID)
		}
		return nil, err
	}

	if err := s.matchRepo.UpdateResult(ctx, nil, matchID, match.Version,
		models.ResultDisputed, nil, nil); err != nil {
		return nil, mapVersionConflict(err)
	}
	if err := s.proposalRepo.UpdateStatus(ctx, nil, proposal.ID, models.ResultProposalDisputed); err != nil {
		return nil, err
	}

	report := &models.Report{
		Kind:          models.ReportResultDispute,
		Status:        models.ReportOpen,
		ReporterEmail: reporter.Email,
		MatchID:       &matchID,
		Motive:        &motive,
		Justification: &justification,
	}
	if err := s.reportRepo.Create(ctx, nil, report); err != nil {
		return nil, err
	}

	if championshipID, cerr := championshipIDOfMatch(ctx, s.stageRepo, match); cerr == nil {
		s.notifier.Notify(championshipID, EventDisputeOpened, map[string]interface{}{
			"match_id":  matchID,
			"report_id": report.ID,
		})
	}

	s.logger.Info("result dispute opened",
		slog.Int("match_id", matchID),
		slog.Int("report_id", report.ID),
		slog.Int("reporter_player_id", actor.PlayerID))
	return report, nil
}

// AdminResolveDispute settles a disputed match with an authoritative score,
// entered from the entry1 perspective, and closes the open dispute report.
func (s *resultService) AdminResolveDispute(ctx context.Context, matchID int, actor Actor, score string) (*models.Match, error) {
	if !actor.Admin {
		return nil, ErrAdminRequired
	}
	match, err := loadMatch(ctx, s.matchRepo, matchID)
	if err != nil {
		return nil, err
	}
	if match.ResultStatus != models.ResultDisputed {
		return nil, fmt.Errorf("%w: match %d", ErrResultNotDisputed, matchID)
	}
	entry1, entry2, err := matchSides(ctx, s.entryRepo, match)
	if err != nil {
		return nil, err
	}

	parsed, err := ParseScore(score)
	if err != nil {
		return nil, err
	}

	if proposal, perr := s.proposalRepo.GetPendingByMatch(ctx, matchID); perr == nil {
		status := models.ResultProposalConfirmed
		if proposal.Score != parsed.Normalized() {
			// The admin overruled the disputed claim; the proposal stays
			// marked disputed for the audit trail.
			status = models.ResultProposalDisputed
		}
		if status != proposal.Status {
			if err := s.proposalRepo.UpdateStatus(ctx, nil, proposal.ID, status); err != nil {
				return nil, err
			}
		}
	} else if !errors.Is(perr, repositories.ErrResultProposalNotFound) {
		return nil, perr
	}

	if report, rerr := s.reportRepo.GetOpenByMatchAndKind(ctx, matchID, models.ReportResultDispute); rerr == nil {
		if err := s.reportRepo.Close(ctx, nil, report.ID); err != nil {
			return nil, err
		}
	} else if !errors.Is(rerr, repositories.ErrReportNotFound) {
		return nil, rerr
	}

	return s.finalize(ctx, match, entry1, entry2, nil, parsed.Normalized())
}

func (s *resultService) GetPendingProposal(ctx context.Context, matchID int) (*models.ResultProposal, error) {
	return s.loadPendingProposal(ctx, matchID)
}

func (s *resultService) loadPendingProposal(ctx context.Context, matchID int) (*models.ResultProposal, error) {
	proposal, err := s.proposalRepo.GetPendingByMatch(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrResultProposalNotFound) {
			return nil, fmt.Errorf("%w: match %d", ErrNoPendingResult, matchID)
		}
		return nil, err
	}
	return proposal, nil
}

// finalize writes the confirmed score and winner, marks the proposal
// confirmed when one is involved, and hands the match to the progression
// layer. The score is already normalized to entry1.
func (s *resultService) finalize(ctx context.Context, match *models.Match, entry1, entry2 *models.Entry, proposal *models.ResultProposal, score string) (*models.Match, error) {
	parsed, err := ParseScore(score)
	if err != nil {
		return nil, err
	}
	winnerEntryID := entry1.ID
	if parsed.WinnerSide == 2 {
		winnerEntryID = entry2.ID
	}

	normalized := parsed.Normalized()
	err = s.matchRepo.UpdateResult(ctx, nil, match.ID, match.Version,
		models.ResultConfirmed, &normalized, &winnerEntryID)
	if err != nil {
		return nil, mapVersionConflict(err)
	}
	if proposal != nil {
		if err := s.proposalRepo.UpdateStatus(ctx, nil, proposal.ID, models.ResultProposalConfirmed); err != nil {
			return nil, err
		}
	}

	match.ResultStatus = models.ResultConfirmed
	match.Score = &normalized
	match.WinnerEntryID = &winnerEntryID
	match.Version++

	if err := s.finalizer.OnMatchFinalized(ctx, match); err != nil {
		return nil, fmt.Errorf("failed to propagate result of match %d: %w", match.ID, err)
	}

	if championshipID, cerr := championshipIDOfMatch(ctx, s.stageRepo, match); cerr == nil {
		s.notifier.Notify(championshipID, EventResultConfirmed, map[string]interface{}{
			"match_id":        match.ID,
			"score":           normalized,
			"winner_entry_id": winnerEntryID,
		})
	}

	s.logger.Info("match result confirmed",
		slog.Int("match_id", match.ID),
		slog.Int("winner_entry_id", winnerEntryID),
		slog.String("score", normalized))
	return match, nil
}
