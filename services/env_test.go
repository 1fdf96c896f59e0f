package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/clubarena/championship-system/models"
)

// testEnv wires the full service stack against the in-memory fakes, with a
// nil database handle so transactional sections run against the default
// executor.
type testEnv struct {
	players    *fakePlayerRepo
	champs     *fakeChampionshipRepo
	entries    *fakeEntryRepo
	stages     *fakeStageRepo
	matches    *fakeMatchRepo
	avail      *fakeAvailabilityRepo
	proposals  *fakeResultProposalRepo
	standings  *fakeStandingRepo
	reports    *fakeReportRepo
	categories *fakeCategoryRepo
	notifier   *recordingNotifier

	engine      FormatEngine
	negotiation NegotiationService
	results     ResultService
	progression ProgressionService
}

func testDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := testDiscardLogger()

	e := &testEnv{
		players:    newFakePlayerRepo(),
		champs:     newFakeChampionshipRepo(),
		entries:    newFakeEntryRepo(),
		stages:     newFakeStageRepo(),
		matches:    newFakeMatchRepo(),
		avail:      newFakeAvailabilityRepo(),
		proposals:  newFakeResultProposalRepo(),
		standings:  newFakeStandingRepo(),
		reports:    newFakeReportRepo(),
		categories: newFakeCategoryRepo(),
		notifier:   &recordingNotifier{},
	}

	e.engine = NewFormatEngine(e.stages, e.matches, logger)
	e.progression = NewProgressionService(
		nil, e.champs, e.stages, e.matches, e.entries, e.standings,
		e.engine, e.notifier, logger)
	e.negotiation = NewNegotiationService(
		e.matches, e.avail, e.entries, e.stages, e.notifier, logger)
	e.results = NewResultService(
		e.matches, e.proposals, e.entries, e.stages, e.players, e.reports,
		e.progression, e.notifier, logger)
	return e
}

func (e *testEnv) addPlayer(t *testing.T, email string) int {
	t.Helper()
	player := &models.Player{
		FirstName:       "Test",
		LastName:        "Player",
		Email:           email,
		Role:            models.RolePlayer,
		Gender:          models.GenderMale,
		BirthDate:       time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		RankingPosition: 50,
	}
	require.NoError(t, e.players.Create(context.Background(), player))
	return player.ID
}

func (e *testEnv) addEntry(t *testing.T, championshipID, playerID, seed int) int {
	t.Helper()
	entry := &models.Entry{
		ChampionshipID: championshipID,
		Player1ID:      playerID,
		Seed:           seed,
		Status:         models.EntryActive,
	}
	require.NoError(t, e.entries.Create(context.Background(), nil, entry))
	return entry.ID
}

func (e *testEnv) addStage(t *testing.T, championshipID int, stageType models.StageType) int {
	t.Helper()
	stage := &models.Stage{
		ChampionshipID: championshipID,
		Index:          0,
		Type:           stageType,
		Status:         models.StageActive,
	}
	require.NoError(t, e.stages.Create(context.Background(), nil, stage))
	return stage.ID
}

func (e *testEnv) addMatch(t *testing.T, stageID int, entry1ID, entry2ID int) int {
	t.Helper()
	match := &models.Match{
		StageID:           stageID,
		Round:             1,
		OrderInRound:      1,
		Entry1ID:          &entry1ID,
		Entry2ID:          &entry2ID,
		NegotiationStatus: models.NegotiationNoProposal,
		ResultStatus:      models.ResultUnplayed,
	}
	require.NoError(t, e.matches.Create(context.Background(), nil, match))
	return match.ID
}

// matchFixture is a ready-to-play singles match between two fresh players.
type matchFixture struct {
	MatchID  int
	StageID  int
	Entry1ID int
	Entry2ID int
	Player1  int
	Player2  int
}

var fixtureCounter int

func (e *testEnv) singlesMatch(t *testing.T, stageType models.StageType) matchFixture {
	t.Helper()
	fixtureCounter++
	p1 := e.addPlayer(t, fmt.Sprintf("p1.match%d@club.test", fixtureCounter))
	p2 := e.addPlayer(t, fmt.Sprintf("p2.match%d@club.test", fixtureCounter))

	stageID := e.addStage(t, 1, stageType)
	entry1 := e.addEntry(t, 1, p1, 1)
	entry2 := e.addEntry(t, 1, p2, 2)
	require.NoError(t, e.stages.SetSeeds(context.Background(), nil, stageID, []int{entry1, entry2}))
	matchID := e.addMatch(t, stageID, entry1, entry2)

	return matchFixture{
		MatchID:  matchID,
		StageID:  stageID,
		Entry1ID: entry1,
		Entry2ID: entry2,
		Player1:  p1,
		Player2:  p2,
	}
}

// confirmSchedule drives the match straight to a confirmed schedule:
// player1 proposes a single slot and player2 accepts it.
func (e *testEnv) confirmSchedule(t *testing.T, fx matchFixture) {
	t.Helper()
	ctx := context.Background()
	start := time.Now().Add(24 * time.Hour)
	proposal, err := e.negotiation.ProposeAvailability(ctx, fx.MatchID,
		Actor{PlayerID: fx.Player1}, []SlotInput{{Start: start, End: start.Add(2 * time.Hour)}})
	require.NoError(t, err)
	_, err = e.negotiation.AcceptProposal(ctx, fx.MatchID, proposal.Slots[0].ID,
		Actor{PlayerID: fx.Player2})
	require.NoError(t, err)
}
