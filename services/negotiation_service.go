package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/clubarena/championship-system/models"
	"github.com/clubarena/championship-system/repositories"
)

// SlotInput is one candidate play window offered by the proposing side.
type SlotInput struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NegotiationService runs the per-match scheduling state machine:
// NoProposal -> ProposalPending -> Confirmed, with replacement while pending
// and explicit cancellation back to NoProposal. Every write is guarded by
// the match version; a lost race surfaces as ErrConcurrencyConflict and the
// caller refetches and retries.
type NegotiationService interface {
	ProposeAvailability(ctx context.Context, matchID int, actor Actor, slots []SlotInput) (*models.AvailabilityProposal, error)
	AcceptProposal(ctx context.Context, matchID, slotID int, actor Actor) (*models.Match, error)
	CancelAcceptance(ctx context.Context, matchID int, actor Actor) (*models.Match, error)
	GetProposal(ctx context.Context, matchID int) (*models.AvailabilityProposal, error)
}

type negotiationService struct {
	matchRepo        repositories.MatchRepository
	availabilityRepo repositories.AvailabilityRepository
	entryRepo        repositories.EntryRepository
	stageRepo        repositories.StageRepository
	notifier         Notifier
	logger           *slog.Logger
}

func NewNegotiationService(
	matchRepo repositories.MatchRepository,
	availabilityRepo repositories.AvailabilityRepository,
	entryRepo repositories.EntryRepository,
	stageRepo repositories.StageRepository,
	notifier Notifier,
	logger *slog.Logger,
) NegotiationService {
	return &negotiationService{
		matchRepo:        matchRepo,
		availabilityRepo: availabilityRepo,
		entryRepo:        entryRepo,
		stageRepo:        stageRepo,
		notifier:         notifier,
		logger:           logger,
	}
}

// ProposeAvailability replaces any pending proposal with a fresh slot list.
// Only a match participant may propose; a confirmed schedule must be
// cancelled first.
func (s *negotiationService) ProposeAvailability(ctx context.Context, matchID int, actor Actor, slots []SlotInput) (*models.AvailabilityProposal, error) {
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
	if sideOf(entry1, entry2, actor.PlayerID) == nil {
		return nil, fmt.Errorf("%w: player %d, match %d", ErrNotMatchParticipant, actor.PlayerID, matchID)
	}

	if len(slots) == 0 {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, ErrSlotListEmpty)
	}
	for _, slot := range slots {
		if !slot.Start.Before(slot.End) {
			return nil, fmt.Errorf("%w: %v", ErrValidationFailed, ErrSlotRangeInvalid)
		}
	}

	if match.ResultStatus == models.ResultConfirmed {
		return nil, fmt.Errorf("%w: match %d", ErrResultAlreadyConfirmed, matchID)
	}
	if match.NegotiationStatus == models.NegotiationConfirmed {
		return nil, fmt.Errorf("%w: match %d", ErrNegotiationConfirmed, matchID)
	}

	// Overwrite semantics: a non-accepted proposal is simply replaced.
	if err := s.availabilityRepo.DeleteByMatch(ctx, nil, matchID); err != nil {
		return nil, fmt.Errorf("failed to clear previous proposal for match %d: %w", matchID, err)
	}

	proposal := &models.AvailabilityProposal{
		MatchID:          matchID,
		ProposerPlayerID: actor.PlayerID,
		Slots:            make([]models.ProposalSlot, len(slots)),
	}
	for i, slot := range slots {
		proposal.Slots[i] = models.ProposalSlot{Start: slot.Start, End: slot.End}
	}
	if err := s.availabilityRepo.Create(ctx, nil, proposal); err != nil {
		return nil, err
	}

	err = s.matchRepo.UpdateNegotiation(ctx, nil, matchID, match.Version,
		models.NegotiationProposalPending, nil, nil)
	if err != nil {
		return nil, mapVersionConflict(err)
	}
	return proposal, nil
}

// AcceptProposal confirms one candidate slot as the agreed play window. The
// accepting side must differ from the proposing side. Accepting the slot
// that is already accepted is idempotent and returns the confirmation.
func (s *negotiationService) AcceptProposal(ctx context.Context, matchID, slotID int, actor Actor) (*models.Match, error) {
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
	if actorSide == nil {
		return nil, fmt.Errorf("%w: player %d, match %d", ErrNotMatchParticipant, actor.PlayerID, matchID)
	}

	proposal, err := s.availabilityRepo.GetByMatch(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrAvailabilityProposalNotFound) {
			return nil, fmt.Errorf("%w: match %d", ErrNoPendingProposal, matchID)
		}
		return nil, err
	}

	if match.NegotiationStatus == models.NegotiationConfirmed {
		if accepted := proposal.AcceptedSlot(); accepted != nil && accepted.ID == slotID {
			// Retried accept of the same slot: return the existing
			// confirmation instead of erroring.
			return match, nil
		}
		return nil, fmt.Errorf("%w: match %d", ErrNegotiationConfirmed, matchID)
	}

	// The whole proposing side is bound by its own offer, so in doubles a
	// partner cannot accept a pair-mate's slots either.
	proposerSide := sideOf(entry1, entry2, proposal.ProposerPlayerID)
	if proposerSide != nil && proposerSide.ID == actorSide.ID {
		return nil, fmt.Errorf("%w: match %d", ErrProposerCannotAct, matchID)
	}

	var chosen *models.ProposalSlot
	for i := range proposal.Slots {
		if proposal.Slots[i].ID == slotID {
			chosen = &proposal.Slots[i]
			break
		}
	}
	if chosen == nil {
		return nil, fmt.Errorf("%w: slot %d in match %d", ErrNotFound, slotID, matchID)
	}

	// The version-guarded match update goes first: a lost race must leave
	// the proposal's slots untouched.
	err = s.matchRepo.UpdateNegotiation(ctx, nil, matchID, match.Version,
		models.NegotiationConfirmed, &chosen.Start, &chosen.End)
	if err != nil {
		return nil, mapVersionConflict(err)
	}
	if err := s.availabilityRepo.AcceptSlot(ctx, nil, proposal.ID, slotID); err != nil {
		return nil, err
	}

	match.NegotiationStatus = models.NegotiationConfirmed
	match.ScheduledStart = &chosen.Start
	match.ScheduledEnd = &chosen.End
	match.Version++

	if championshipID, cerr := championshipIDOfMatch(ctx, s.stageRepo, match); cerr == nil {
		s.notifier.Notify(championshipID, EventMatchScheduled, map[string]interface{}{
			"match_id": matchID,
			"start":    chosen.Start,
			"end":      chosen.End,
		})
	} else {
		s.logger.Warn("skipping match_scheduled event", slog.Int("match_id", matchID), slog.Any("error", cerr))
	}

	return match, nil
}

// CancelAcceptance reverts a confirmed schedule back to NoProposal so the
// sides can renegotiate. Either participant or an administrator may cancel.
func (s *negotiationService) CancelAcceptance(ctx context.Context, matchID int, actor Actor) (*models.Match, error) {
	match, err := loadMatch(ctx, s.matchRepo, matchID)
	if err != nil {
		return nil, err
	}
	if !actor.Admin {
		entry1, entry2, serr := matchSides(ctx, s.entryRepo, match)
		if serr != nil {
			return nil, serr
		}
		if sideOf(entry1, entry2, actor.PlayerID) == nil {
			return nil, fmt.Errorf("%w: player %d, match %d", ErrNotMatchParticipant, actor.PlayerID, matchID)
		}
	}

	if match.ResultStatus == models.ResultConfirmed {
		return nil, fmt.Errorf("%w: match %d", ErrResultAlreadyConfirmed, matchID)
	}
	if match.NegotiationStatus != models.NegotiationConfirmed {
		return nil, fmt.Errorf("%w: match %d", ErrScheduleNotConfirmed, matchID)
	}

	if err := s.availabilityRepo.DeleteByMatch(ctx, nil, matchID); err != nil {
		return nil, err
	}
	err = s.matchRepo.UpdateNegotiation(ctx, nil, matchID, match.Version,
		models.NegotiationNoProposal, nil, nil)
	if err != nil {
		return nil, mapVersionConflict(err)
	}

	match.NegotiationStatus = models.NegotiationNoProposal
	match.ScheduledStart = nil
	match.ScheduledEnd = nil
	match.Version++
	return match, nil
}

func (s *negotiationService) GetProposal(ctx context.Context, matchID int) (*models.AvailabilityProposal, error) {
	proposal, err := s.availabilityRepo.GetByMatch(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrAvailabilityProposalNotFound) {
			return nil, fmt.Errorf("%w: match %d", ErrNoPendingProposal, matchID)
		}
		return nil, err
	}
	return proposal, nil
}
