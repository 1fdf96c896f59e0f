package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubarena/championship-system/models"
)

func TestProposeResult(t *testing.T) {
	ctx := context.Background()

	t.Run("requires a confirmed schedule for players", func(t *testing.T) {
		env := newTestEnv(t)
		fx := env.singlesMatch(t, models.StageElimination)

		_, err := env.results.ProposeResult(ctx, fx.MatchID, Actor{PlayerID: fx.Player1}, "6-4 6-4")
		assert.ErrorIs(t, err, ErrScheduleNotConfirmed)
	})

	t.Run("an administrator may record without a schedule", func(t *testing.T) {
		env := newTestEnv(t)
		fx := env.singlesMatch(t, models.StageElimination)

		proposal, err := env.results.ProposeResult(ctx, fx.MatchID, Actor{PlayerID: 999, Admin: true}, "6-4 6-4")
		require.NoError(t, err)
		assert.Equal(t, "6-4 6-4", proposal.Score)

		match, err := env.matches.GetByID(ctx, fx.MatchID)
		require.NoError(t, err)
		assert.Equal(t, models.ResultProposed, match.ResultStatus)
	})

	t.Run("stores the entry1 perspective as submitted by side one", func(t *testing.T) {
		env := newTestEnv(t)
		fx := env.singlesMatch(t, models.StageElimination)
		env.confirmSchedule(t, fx)

		proposal, err := env.results.ProposeResult(ctx, fx.MatchID, Actor{PlayerID: fx.Player1}, "6-4 3-6 7-5")
		require.NoError(t, err)
		assert.Equal(t, "6-4 3-6 7-5", proposal.Score)
	})

	t.Run("flips a score submitted by side two", func(t *testing.T) {
		env := newTestEnv(t)
		fx := env.singlesMatch(t, models.StageElimination)
		env.confirmSchedule(t, fx)

		// Player two reports winning 6-4 3-6 7-5 from their own side of
		// the net; stored as the entry1 perspective.
		proposal, err := env.results.ProposeResult(ctx, fx.MatchID, Actor{PlayerID: fx.Player2}, "6-4 3-6 7-5")
		require.NoError(t, err)
		assert.Equal(t, "4-6 6-3 5-7", proposal.Score)
	})

	t.Run("a newer proposal replaces the pending one", func(t *testing.T) {
		env := newTestEnv(t)
		fx := env.singlesMatch(t, models.StageElimination)
		env.confirmSchedule(t, fx)

		_, err := env.results.ProposeResult(ctx, fx.MatchID, Actor{PlayerID: fx.Player1}, "6-0 6-0")
		require.NoError(t, err)
		_, err = env.results.ProposeResult(ctx, fx.MatchID, Actor{PlayerID: fx.Player2}, "6-2 6-2")
		require.NoError(t, err)

		current, err := env.results.GetPendingProposal(ctx, fx.MatchID)
		require.NoError(t, err)
		assert.Equal(t, fx.Player2, current.ProposerPlayerID)
		assert.Equal(t, "2-6 2-6", current.Score)
	})

	t.Run("rejects an invalid score", func(t *testing.T) {
		env := newTestEnv(t)
		fx := env.singlesMatch(t, models.StageElimination)
		env.confirmSchedule(t, fx)

		_, err := env.results.ProposeResult(ctx, fx.MatchID, Actor{PlayerID: fx.Player1}, "6-4 4-6")
		assert.ErrorIs(t, err, ErrScoreInvalid)
	})

	t.Run("rejects a non-participant", func(t *testing.T) {
		env := newTestEnv(t)
		fx := env.singlesMatch(t, models.StageElimination)
		env.confirmSchedule(t, fx)
		outsider := env.addPlayer(t, "stranger@club.test")

		_, err := env.results.ProposeResult(ctx, fx.MatchID, Actor{PlayerID: outsider}, "6-4 6-4")
		assert.ErrorIs(t, err, ErrNotMatchParticipant)
	})
}

func TestAcceptResult(t *testing.T) {
	ctx := context.Background()

	t.Run("confirms the match and notifies", func(t *testing.T) {
		env := newTestEnv(t)
		fx := env.singlesMatch(t, models.StageElimination)
		env.confirmSchedule(t, fx)

		_, err := env.results.ProposeResult(ctx, fx.MatchID, Actor{PlayerID: fx.Player2}, "6-4 6-4")
		require.NoError(t, err)

		match, err := env.results.AcceptResult(ctx, fx.MatchID, Actor{PlayerID: fx.Player1})
		require.NoError(t, err)
		assert.Equal(t, models.ResultConfirmed, match.ResultStatus)
		require.NotNil(t, match.Score)
		assert.Equal(t, "4-6 4-6", *match.Score)
		require.NotNil(t, match.WinnerEntryID)
		assert.Equal(t, fx.Entry2ID, *match.WinnerEntryID)

		_, err = env.proposals.GetPendingByMatch(ctx, fx.MatchID)
		assert.Error(t, err, "no pending proposal should remain")

		events := env.notifier.eventsOf(EventResultConfirmed)
		require.Len(t, events, 1)
	})

	t.Run("the proposing side cannot accept", func(t *testing.T) {
		env := newTestEnv(t)
		fx := env.singlesMatch(t, models.StageElimination)
		env.confirmSchedule(t, fx)

		_, err := env.results.ProposeResult(ctx, fx.MatchID, Actor{PlayerID: fx.Player1}, "6-4 6-4")
		require.NoError(t, err)

		_, err = env.results.AcceptResult(ctx, fx.MatchID, Actor{PlayerID: fx.Player1})
		assert.ErrorIs(t, err, ErrProposerCannotAct)
	})

	t.Run("nothing pending", func(t *testing.T) {
		env := newTestEnv(t)
		fx := env.singlesMatch(t, models.StageElimination)

		_, err := env.results.AcceptResult(ctx, fx.MatchID, Actor{PlayerID: fx.Player1})
		assert.ErrorIs(t, err, ErrNoPendingResult)
	})

	t.Run("already confirmed", func(t *testing.T) {
		env := newTestEnv(t)
		fx := env.singlesMatch(t, models.StageElimination)
		env.confirmSchedule(t, fx)

		_, err := env.results.ProposeResult(ctx, fx.MatchID, Actor{PlayerID: fx.Player1}, "6-4 6-4")
		require.NoError(t, err)
		_, err = env.results.AcceptResult(ctx, fx.MatchID, Actor{PlayerID: fx.Player2})
		require.NoError(t, err)

		_, err = env.results.AcceptResult(ctx, fx.MatchID, Actor{PlayerID: fx.Player2})
		assert.ErrorIs(t, err, ErrResultAlreadyConfirmed)
	})

	t.Run("updates round-robin standings", func(t *testing.T) {
		env := newTestEnv(t)
		fx := env.singlesMatch(t, models.StageRoundRobin)
		env.confirmSchedule(t, fx)

		_, err := env.results.ProposeResult(ctx, fx.MatchID, Actor{PlayerID: fx.Player1}, "6-1 6-2")
		require.NoError(t, err)
		_, err = env.results.AcceptResult(ctx, fx.MatchID, Actor{PlayerID: fx.Player2})
		require.NoError(t, err)

		table, err := env.standings.ListByStage(ctx, fx.StageID)
		require.NoError(t, err)
		require.Len(t, table, 2)
		assert.Equal(t, fx.Entry1ID, table[0].EntryID)
		assert.Equal(t, 1, table[0].Wins)
		assert.Equal(t, 2, table[0].SetDiff)
		assert.Equal(t, fx.Entry2ID, table[1].EntryID)
		assert.Equal(t, 1, table[1].Losses)
	})
}

func TestFileDispute(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*testEnv, matchFixture) {
		env := newTestEnv(t)
		fx := env.singlesMatch(t, models.StageElimination)
		env.confirmSchedule(t, fx)
		_, err := env.results.ProposeResult(ctx, fx.MatchID, Actor{PlayerID: fx.Player1}, "6-4 6-4")
		require.NoError(t, err)
		return env, fx
	}

	t.Run("freezes the match and opens a report", func(t *testing.T) {
		env, fx := setup(t)

		report, err := env.results.FileDispute(ctx, fx.MatchID, Actor{PlayerID: fx.Player2},
			"wrong score", "the second set ended 6-3, not 4-6")
		require.NoError(t, err)
		assert.Equal(t, models.ReportResultDispute, report.Kind)
		assert.Equal(t, models.ReportOpen, report.Status)
		require.NotNil(t, report.MatchID)
		assert.Equal(t, fx.MatchID, *report.MatchID)
		assert.NotEmpty(t, report.ReporterEmail)

		match, err := env.matches.GetByID(ctx, fx.MatchID)
		require.NoError(t, err)
		assert.Equal(t, models.ResultDisputed, match.ResultStatus)

		// The frozen match rejects further proposals and acceptance.
		_, err = env.results.ProposeResult(ctx, fx.MatchID, Actor{PlayerID: fx.Player1}, "6-0 6-0")
		assert.ErrorIs(t, err, ErrStateConflict)
		_, err = env.results.AcceptResult(ctx, fx.MatchID, Actor{PlayerID: fx.Player2})
		assert.ErrorIs(t, err, ErrNoPendingResult)

		events := env.notifier.eventsOf(EventDisputeOpened)
		require.Len(t, events, 1)
	})

	t.Run("requires a motive and a justification", func(t *testing.T) {
		env, fx := setup(t)

		_, err := env.results.FileDispute(ctx, fx.MatchID, Actor{PlayerID: fx.Player2}, "  ", "text")
		assert.ErrorIs(t, err, ErrValidationFailed)
		_, err = env.results.FileDispute(ctx, fx.MatchID, Actor{PlayerID: fx.Player2}, "motive", "")
		assert.ErrorIs(t, err, ErrValidationFailed)
	})

	t.Run("the proposer cannot dispute its own claim", func(t *testing.T) {
		env, fx := setup(t)

		_, err := env.results.FileDispute(ctx, fx.MatchID, Actor{PlayerID: fx.Player1},
			"changed my mind", "typed the wrong score")
		assert.ErrorIs(t, err, ErrProposerCannotAct)
	})

	t.Run("a second dispute is refused while one is open", func(t *testing.T) {
		env, fx := setup(t)

		_, err := env.results.FileDispute(ctx, fx.MatchID, Actor{PlayerID: fx.Player2},
			"wrong score", "details")
		require.NoError(t, err)

		// The match is already frozen, so the state gate fires first.
		_, err = env.results.FileDispute(ctx, fx.MatchID, Actor{PlayerID: fx.Player2},
			"wrong score again", "details")
		assert.ErrorIs(t, err, ErrNoPendingResult)
	})
}

func TestAdminResolveDispute(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*testEnv, matchFixture) {
		env := newTestEnv(t)
		fx := env.singlesMatch(t, models.StageElimination)
		env.confirmSchedule(t, fx)
		_, err := env.results.ProposeResult(ctx, fx.MatchID, Actor{PlayerID: fx.Player1}, "6-4 6-4")
		require.NoError(t, err)
		_, err = env.results.FileDispute(ctx, fx.MatchID, Actor{PlayerID: fx.Player2},
			"wrong score", "details")
		require.NoError(t, err)
		return env, fx
	}

	t.Run("settles with an authoritative score and closes the report", func(t *testing.T) {
		env, fx := setup(t)

		match, err := env.results.AdminResolveDispute(ctx, fx.MatchID,
			Actor{PlayerID: 999, Admin: true}, "4-6 4-6")
		require.NoError(t, err)
		assert.Equal(t, models.ResultConfirmed, match.ResultStatus)
		require.NotNil(t, match.WinnerEntryID)
		assert.Equal(t, fx.Entry2ID, *match.WinnerEntryID)

		open, err := env.reports.ListOpen(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, open)
	})

	t.Run("confirming the disputed score vindicates the proposal", func(t *testing.T) {
		env, fx := setup(t)

		_, err := env.results.AdminResolveDispute(ctx, fx.MatchID,
			Actor{PlayerID: 999, Admin: true}, "6-4 6-4")
		require.NoError(t, err)

		match, err := env.matches.GetByID(ctx, fx.MatchID)
		require.NoError(t, err)
		require.NotNil(t, match.WinnerEntryID)
		assert.Equal(t, fx.Entry1ID, *match.WinnerEntryID)
	})

	t.Run("players cannot resolve", func(t *testing.T) {
		env, fx := setup(t)

		_, err := env.results.AdminResolveDispute(ctx, fx.MatchID,
			Actor{PlayerID: fx.Player1}, "6-4 6-4")
		assert.ErrorIs(t, err, ErrAdminRequired)
	})

	t.Run("only disputed matches can be resolved", func(t *testing.T) {
		env := newTestEnv(t)
		fx := env.singlesMatch(t, models.StageElimination)

		_, err := env.results.AdminResolveDispute(ctx, fx.MatchID,
			Actor{PlayerID: 999, Admin: true}, "6-4 6-4")
		assert.ErrorIs(t, err, ErrResultNotDisputed)
	})
}
