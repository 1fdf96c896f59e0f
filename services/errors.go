package services

import "errors"

// Shared service-layer errors, mapped to HTTP statuses in handlers.
// Specific errors wrap the group sentinel with %w so handlers can match on
// either level.
var (
	// Validation
	ErrValidationFailed  = errors.New("validation failed")
	ErrScoreInvalid      = errors.New("score does not parse into a valid set-by-set outcome")
	ErrSlotListEmpty     = errors.New("at least one candidate slot is required")
	ErrSlotRangeInvalid  = errors.New("slot start must be before slot end")
	ErrEntryArityInvalid = errors.New("wrong number of players for the championship mode")
	ErrFormatInvalid     = errors.New("championship format definition is invalid")
	ErrPasswordTooShort  = errors.New("password is too short")

	// Authorization
	ErrForbiddenOperation  = errors.New("operation not allowed for the current user")
	ErrNotMatchParticipant = errors.New("actor is not a participant of this match")
	ErrProposerCannotAct   = errors.New("the proposing side cannot accept its own proposal")
	ErrAdminRequired       = errors.New("administrator rights required")
	ErrInvalidCredentials  = errors.New("invalid email or password")

	// State conflicts
	ErrStateConflict            = errors.New("operation invalid for current state")
	ErrNegotiationConfirmed     = errors.New("match schedule is already confirmed")
	ErrNoPendingProposal        = errors.New("no pending proposal for this match")
	ErrScheduleNotConfirmed     = errors.New("match schedule is not confirmed yet")
	ErrNoPendingResult          = errors.New("no pending result proposal for this match")
	ErrResultAlreadyConfirmed   = errors.New("match result is already confirmed")
	ErrResultNotDisputed        = errors.New("match result is not under dispute")
	ErrMatchIsBye               = errors.New("bye matches are never played")
	ErrMatchSlotsUnresolved     = errors.New("match is still waiting for a feeder result")
	ErrStageIncomplete          = errors.New("stage has matches without a confirmed result")
	ErrStageAlreadyCompleted    = errors.New("stage is already completed")
	ErrChampionshipNotDraft     = errors.New("championship has already started")
	ErrChampionshipNotActive    = errors.New("championship is not active")
	ErrChampionshipFinished     = errors.New("championship is already finished")
	ErrEnrollmentClosed         = errors.New("enrollment is closed once a championship starts")
	ErrAlreadyEnrolled          = errors.New("player is already enrolled")
	ErrNotEligible              = errors.New("player does not meet the eligibility filters")
	ErrDisputeAlreadyOpen       = errors.New("a result dispute is already open for this match")
	ErrNotEnoughEntriesEnrolled = errors.New("not enough enrolled entries for the configured format")

	// Not found
	ErrNotFound             = errors.New("requested resource not found")
	ErrChampionshipNotFound = errors.New("championship not found")
	ErrStageNotFound        = errors.New("stage not found")
	ErrMatchNotFound        = errors.New("match not found")
	ErrEntryNotFound        = errors.New("entry not found")
	ErrCategoryNotFound     = errors.New("category not found")
	ErrReportNotFound       = errors.New("report not found")
	ErrPlayerNotFound       = errors.New("player not found")

	// Concurrency: the optimistic check lost a race; refetch and retry.
	ErrConcurrencyConflict = errors.New("resource was modified concurrently, refetch and retry")

	// Conflicts
	ErrEmailConflict            = errors.New("email address is already in use")
	ErrChampionshipNameConflict = errors.New("championship name already exists")
	ErrCategoryNameConflict     = errors.New("category name already exists")
)
