package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubarena/championship-system/models"
	"github.com/clubarena/championship-system/storage"
)

// fakeUploader records uploads and deletions.
type fakeUploader struct {
	uploaded []string
	deleted  []string
}

func (u *fakeUploader) Upload(_ context.Context, key, _ string, _ io.Reader) (*storage.UploadResult, error) {
	u.uploaded = append(u.uploaded, key)
	return &storage.UploadResult{Key: key, Location: "https://cdn.test/" + key, ETag: "etag"}, nil
}

func (u *fakeUploader) Delete(_ context.Context, key string) error {
	u.deleted = append(u.deleted, key)
	return nil
}

func (u *fakeUploader) GetPublicURL(key string) string {
	return "https://cdn.test/" + key
}

func (e *testEnv) championshipService(uploader storage.FileUploader) ChampionshipService {
	if uploader == nil {
		uploader = storage.NopUploader{}
	}
	return NewChampionshipService(
		e.champs, e.entries, e.players, e.categories, e.stages, e.matches,
		e.standings, e.engine, uploader, testDiscardLogger())
}

func (e *testEnv) addRankedPlayer(t *testing.T, gender models.Gender, birthYear, ranking int) int {
	t.Helper()
	fixtureCounter++
	player := &models.Player{
		FirstName:       "Ranked",
		LastName:        "Player",
		Email:           fmt.Sprintf("ranked%d@club.test", fixtureCounter),
		Role:            models.RolePlayer,
		Gender:          gender,
		BirthDate:       time.Date(birthYear, 6, 15, 0, 0, 0, 0, time.UTC),
		RankingPosition: ranking,
	}
	require.NoError(t, e.players.Create(context.Background(), player))
	return player.ID
}

func validFormat() []models.StageDefinition {
	return []models.StageDefinition{
		{Type: models.StageRoundRobin, MinEntries: 3, AdvanceCount: 2},
		{Type: models.StageElimination, MinEntries: 2, AdvanceCount: 1},
	}
}

func TestCreateChampionship(t *testing.T) {
	ctx := context.Background()

	t.Run("registers a draft with a validated format", func(t *testing.T) {
		env := newTestEnv(t)
		svc := env.championshipService(nil)

		champ, err := svc.Create(ctx, testAdmin, CreateChampionshipInput{
			Name:   "Winter Masters",
			Mode:   models.ModeSingles,
			Format: validFormat(),
		})
		require.NoError(t, err)
		assert.Equal(t, models.ChampionshipDraft, champ.Status)
		assert.Len(t, champ.Format, 2)
		assert.NotZero(t, champ.ID)
	})

	t.Run("admin only", func(t *testing.T) {
		env := newTestEnv(t)
		svc := env.championshipService(nil)

		_, err := svc.Create(ctx, Actor{PlayerID: 1}, CreateChampionshipInput{
			Name: "X", Mode: models.ModeSingles, Format: validFormat(),
		})
		assert.ErrorIs(t, err, ErrAdminRequired)
	})

	t.Run("rejects bad input", func(t *testing.T) {
		env := newTestEnv(t)
		svc := env.championshipService(nil)

		_, err := svc.Create(ctx, testAdmin, CreateChampionshipInput{
			Name: "   ", Mode: models.ModeSingles, Format: validFormat(),
		})
		assert.ErrorIs(t, err, ErrValidationFailed)

		_, err = svc.Create(ctx, testAdmin, CreateChampionshipInput{
			Name: "X", Mode: "triples", Format: validFormat(),
		})
		assert.ErrorIs(t, err, ErrValidationFailed)

		_, err = svc.Create(ctx, testAdmin, CreateChampionshipInput{
			Name: "X", Mode: models.ModeSingles,
		})
		assert.ErrorIs(t, err, ErrFormatInvalid)

		_, err = svc.Create(ctx, testAdmin, CreateChampionshipInput{
			Name: "X", Mode: models.ModeSingles,
			Format: []models.StageDefinition{{Type: models.StageRoundRobin, MinEntries: 1}},
		})
		assert.ErrorIs(t, err, ErrFormatInvalid)
	})

	t.Run("name conflict", func(t *testing.T) {
		env := newTestEnv(t)
		svc := env.championshipService(nil)

		_, err := svc.Create(ctx, testAdmin, CreateChampionshipInput{
			Name: "Unique", Mode: models.ModeSingles, Format: validFormat(),
		})
		require.NoError(t, err)
		_, err = svc.Create(ctx, testAdmin, CreateChampionshipInput{
			Name: "Unique", Mode: models.ModeSingles, Format: validFormat(),
		})
		assert.ErrorIs(t, err, ErrChampionshipNameConflict)
	})
}

func TestEnroll(t *testing.T) {
	ctx := context.Background()

	newDraft := func(t *testing.T, env *testEnv, svc ChampionshipService, tweak func(*CreateChampionshipInput)) int {
		t.Helper()
		fixtureCounter++
		input := CreateChampionshipInput{
			Name:   fmt.Sprintf("Draft %d", fixtureCounter),
			Mode:   models.ModeSingles,
			Format: validFormat(),
		}
		if tweak != nil {
			tweak(&input)
		}
		champ, err := svc.Create(ctx, testAdmin, input)
		require.NoError(t, err)
		return champ.ID
	}

	t.Run("seeds by ranking and assigns a category", func(t *testing.T) {
		env := newTestEnv(t)
		svc := env.championshipService(nil)
		championshipID := newDraft(t, env, svc, nil)

		category := &models.Category{Name: "Second Division", MinPosition: 11, MaxPosition: 50, Priority: 1}
		require.NoError(t, env.categories.Create(ctx, category))

		playerID := env.addRankedPlayer(t, models.GenderMale, 1990, 17)
		entry, err := svc.Enroll(ctx, championshipID, Actor{PlayerID: playerID}, []int{playerID})
		require.NoError(t, err)
		assert.Equal(t, 17, entry.Seed)
		require.NotNil(t, entry.CategoryID)
		assert.Equal(t, category.ID, *entry.CategoryID)
		assert.Equal(t, models.EntryActive, entry.Status)
	})

	t.Run("doubles pair seeds by the better ranking", func(t *testing.T) {
		env := newTestEnv(t)
		svc := env.championshipService(nil)
		championshipID := newDraft(t, env, svc, func(in *CreateChampionshipInput) {
			in.Mode = models.ModeDoubles
		})

		p1 := env.addRankedPlayer(t, models.GenderMale, 1990, 40)
		p2 := env.addRankedPlayer(t, models.GenderMale, 1992, 12)
		entry, err := svc.Enroll(ctx, championshipID, Actor{PlayerID: p1}, []int{p1, p2})
		require.NoError(t, err)
		assert.Equal(t, 12, entry.Seed)
		require.NotNil(t, entry.Player2ID)
		assert.Equal(t, p2, *entry.Player2ID)
	})

	t.Run("arity by mode", func(t *testing.T) {
		env := newTestEnv(t)
		svc := env.championshipService(nil)
		singlesID := newDraft(t, env, svc, nil)
		doublesID := newDraft(t, env, svc, func(in *CreateChampionshipInput) {
			in.Mode = models.ModeDoubles
		})

		p1 := env.addRankedPlayer(t, models.GenderMale, 1990, 10)
		p2 := env.addRankedPlayer(t, models.GenderMale, 1991, 20)

		_, err := svc.Enroll(ctx, singlesID, Actor{PlayerID: p1}, []int{p1, p2})
		assert.ErrorIs(t, err, ErrEntryArityInvalid)
		_, err = svc.Enroll(ctx, doublesID, Actor{PlayerID: p1}, []int{p1})
		assert.ErrorIs(t, err, ErrEntryArityInvalid)
		_, err = svc.Enroll(ctx, doublesID, Actor{PlayerID: p1}, []int{p1, p1})
		assert.ErrorIs(t, err, ErrEntryArityInvalid)
	})

	t.Run("players may only enroll themselves", func(t *testing.T) {
		env := newTestEnv(t)
		svc := env.championshipService(nil)
		championshipID := newDraft(t, env, svc, nil)

		p1 := env.addRankedPlayer(t, models.GenderMale, 1990, 10)
		p2 := env.addRankedPlayer(t, models.GenderMale, 1991, 20)

		_, err := svc.Enroll(ctx, championshipID, Actor{PlayerID: p1}, []int{p2})
		assert.ErrorIs(t, err, ErrForbiddenOperation)

		// Administrators may enroll anyone.
		_, err = svc.Enroll(ctx, championshipID, testAdmin, []int{p2})
		assert.NoError(t, err)
	})

	t.Run("eligibility filters", func(t *testing.T) {
		env := newTestEnv(t)
		svc := env.championshipService(nil)
		female := models.GenderFemale
		minAge, maxAge := 18, 40
		minRank, maxRank := 10, 100
		championshipID := newDraft(t, env, svc, func(in *CreateChampionshipInput) {
			in.Gender = &female
			in.MinAge = &minAge
			in.MaxAge = &maxAge
			in.MinRanking = &minRank
			in.MaxRanking = &maxRank
		})

		wrongGender := env.addRankedPlayer(t, models.GenderMale, 1990, 50)
		_, err := svc.Enroll(ctx, championshipID, Actor{PlayerID: wrongGender}, []int{wrongGender})
		assert.ErrorIs(t, err, ErrNotEligible)

		tooYoung := env.addRankedPlayer(t, models.GenderFemale, time.Now().Year()-10, 50)
		_, err = svc.Enroll(ctx, championshipID, Actor{PlayerID: tooYoung}, []int{tooYoung})
		assert.ErrorIs(t, err, ErrNotEligible)

		rankedTooHigh := env.addRankedPlayer(t, models.GenderFemale, 1990, 5)
		_, err = svc.Enroll(ctx, championshipID, Actor{PlayerID: rankedTooHigh}, []int{rankedTooHigh})
		assert.ErrorIs(t, err, ErrNotEligible)

		eligible := env.addRankedPlayer(t, models.GenderFemale, 1990, 50)
		_, err = svc.Enroll(ctx, championshipID, Actor{PlayerID: eligible}, []int{eligible})
		assert.NoError(t, err)
	})

	t.Run("double enrollment", func(t *testing.T) {
		env := newTestEnv(t)
		svc := env.championshipService(nil)
		championshipID := newDraft(t, env, svc, nil)

		p := env.addRankedPlayer(t, models.GenderMale, 1990, 10)
		_, err := svc.Enroll(ctx, championshipID, Actor{PlayerID: p}, []int{p})
		require.NoError(t, err)
		_, err = svc.Enroll(ctx, championshipID, Actor{PlayerID: p}, []int{p})
		assert.ErrorIs(t, err, ErrAlreadyEnrolled)
	})

	t.Run("enrollment closes when the championship starts", func(t *testing.T) {
		env := newTestEnv(t)
		svc := env.championshipService(nil)
		championshipID := newDraft(t, env, svc, nil)
		require.NoError(t, env.champs.UpdateStatus(ctx, nil, championshipID, models.ChampionshipActive))

		p := env.addRankedPlayer(t, models.GenderMale, 1990, 10)
		_, err := svc.Enroll(ctx, championshipID, Actor{PlayerID: p}, []int{p})
		assert.ErrorIs(t, err, ErrEnrollmentClosed)
	})
}

func TestWithdraw(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := env.championshipService(nil)

	champ, err := svc.Create(ctx, testAdmin, CreateChampionshipInput{
		Name: "Withdraw Cup", Mode: models.ModeSingles, Format: validFormat(),
	})
	require.NoError(t, err)

	p := env.addRankedPlayer(t, models.GenderMale, 1990, 10)
	entry, err := svc.Enroll(ctx, champ.ID, Actor{PlayerID: p}, []int{p})
	require.NoError(t, err)

	require.NoError(t, svc.Withdraw(ctx, champ.ID, Actor{PlayerID: p}))
	stored, err := env.entries.GetByID(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EntryWithdrawn, stored.Status)

	// Withdrawing again is a no-op.
	assert.NoError(t, svc.Withdraw(ctx, champ.ID, Actor{PlayerID: p}))

	// A player who never enrolled has nothing to withdraw.
	other := env.addRankedPlayer(t, models.GenderMale, 1991, 20)
	assert.ErrorIs(t, svc.Withdraw(ctx, champ.ID, Actor{PlayerID: other}), ErrEntryNotFound)

	// Started championships freeze the draw.
	require.NoError(t, env.champs.UpdateStatus(ctx, nil, champ.ID, models.ChampionshipActive))
	assert.ErrorIs(t, svc.Withdraw(ctx, champ.ID, Actor{PlayerID: p}), ErrEnrollmentClosed)
}

func TestGetByIDResolvesLinkedData(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := env.championshipService(nil)

	champ, err := svc.Create(ctx, testAdmin, CreateChampionshipInput{
		Name: "Detail Cup", Mode: models.ModeSingles, Format: validFormat(),
	})
	require.NoError(t, err)

	p1 := env.addRankedPlayer(t, models.GenderMale, 1990, 1)
	p2 := env.addRankedPlayer(t, models.GenderMale, 1991, 2)
	p3 := env.addRankedPlayer(t, models.GenderMale, 1992, 3)
	for _, p := range []int{p1, p2, p3} {
		_, err := svc.Enroll(ctx, champ.ID, Actor{PlayerID: p}, []int{p})
		require.NoError(t, err)
	}

	_, err = env.progression.AdvanceStage(ctx, champ.ID, testAdmin, false)
	require.NoError(t, err)

	detail, err := svc.GetByID(ctx, champ.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Format, 2)
	require.Len(t, detail.Stages, 1)
	assert.Len(t, detail.Stages[0].Matches, 3)
	assert.Len(t, detail.Stages[0].EntryIDs, 3)
	require.Len(t, detail.Entries, 3)
	require.NotNil(t, detail.Entries[0].Player1)
	assert.NotEmpty(t, detail.Entries[0].Player1.Email)

	_, err = svc.GetByID(ctx, 9999)
	assert.ErrorIs(t, err, ErrChampionshipNotFound)
}

func TestGetStandingsUnknownStage(t *testing.T) {
	env := newTestEnv(t)
	svc := env.championshipService(nil)

	_, err := svc.GetStandings(context.Background(), 404)
	assert.ErrorIs(t, err, ErrStageNotFound)
}

func TestListStageMatches(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := env.championshipService(nil)

	stageID := env.addStage(t, 1, models.StageRoundRobin)
	e1 := env.addEntry(t, 1, env.addPlayer(t, "lsm1@club.test"), 1)
	e2 := env.addEntry(t, 1, env.addPlayer(t, "lsm2@club.test"), 2)
	env.addMatch(t, stageID, e1, e2)

	matches, err := svc.ListStageMatches(ctx, stageID)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, models.NegotiationNoProposal, matches[0].NegotiationStatus)
	assert.Equal(t, models.ResultUnplayed, matches[0].ResultStatus)

	_, err = svc.ListStageMatches(ctx, 404)
	assert.ErrorIs(t, err, ErrStageNotFound)
}

func TestUploadLogo(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	uploader := &fakeUploader{}
	svc := env.championshipService(uploader)

	champ, err := svc.Create(ctx, testAdmin, CreateChampionshipInput{
		Name: "Logo Cup", Mode: models.ModeSingles, Format: validFormat(),
	})
	require.NoError(t, err)

	_, err = svc.UploadLogo(ctx, champ.ID, Actor{PlayerID: 1}, "image/png", strings.NewReader("img"))
	assert.ErrorIs(t, err, ErrAdminRequired)

	updated, err := svc.UploadLogo(ctx, champ.ID, testAdmin, "image/png", strings.NewReader("img"))
	require.NoError(t, err)
	require.NotNil(t, updated.LogoURL)
	assert.Contains(t, *updated.LogoURL, "championships/")
	require.Len(t, uploader.uploaded, 1)

	// Replacing the logo removes the previous object.
	_, err = svc.UploadLogo(ctx, champ.ID, testAdmin, "image/png", strings.NewReader("img2"))
	require.NoError(t, err)
	require.Len(t, uploader.deleted, 1)
	assert.Equal(t, uploader.uploaded[0], uploader.deleted[0])
}
