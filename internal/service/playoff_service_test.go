package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parklandpickleball/ppl-playoffs/internal/bracket"
	"github.com/parklandpickleball/ppl-playoffs/internal/db"
	"github.com/parklandpickleball/ppl-playoffs/internal/league"
	"github.com/parklandpickleball/ppl-playoffs/internal/store"
)

type fixture struct {
	svc        *PlayoffService
	leagues    *store.LeagueStore
	seasonID   uuid.UUID
	divisionID uuid.UUID
	teams      []league.Team
}

// setupService brings up an in-memory database with one division of n
// seeded teams. No Redis: the service runs with the cache disabled, the
// same way a dev environment does.
func setupService(t *testing.T, format bracket.Format, n int, locked bool) *fixture {
	t.Helper()
	ctx := context.Background()

	conn, err := db.Connect(db.DriverSQLite, "file::memory:")
	require.NoError(t, err, "Failed to connect to in-memory DB")
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, db.Migrate(conn, db.DriverSQLite), "Failed to apply migrations")

	leagues := store.NewLeagueStore(conn)
	brackets := store.NewBracketStore(conn)

	season := &league.Season{ID: uuid.New(), Name: "Fall 2026", CreatedAt: time.Now().UTC()}
	require.NoError(t, leagues.CreateSeason(ctx, season))

	division := &league.Division{
		ID:        uuid.New(),
		SeasonID:  season.ID,
		Name:      "Open Doubles",
		Format:    format,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, leagues.CreateDivision(ctx, division))

	f := &fixture{
		svc:        NewPlayoffService(brackets, leagues, nil),
		leagues:    leagues,
		seasonID:   season.ID,
		divisionID: division.ID,
	}

	for i := 1; i <= n; i++ {
		team := &league.Team{
			ID:         uuid.New(),
			DivisionID: division.ID,
			Name:       "Team " + string(rune('A'+i-1)),
			Seed:       i,
			CreatedAt:  time.Now().UTC(),
		}
		require.NoError(t, leagues.CreateTeam(ctx, team))
		f.teams = append(f.teams, *team)
	}

	if locked {
		_, err := f.svc.LockSeeding(ctx, f.seasonID, f.divisionID)
		require.NoError(t, err)
	}

	return f
}

// team resolves a seed number to its stored team id.
func (f *fixture) team(seed int) bracket.TeamID {
	return bracket.TeamID(f.teams[seed-1].ID.String())
}

func (f *fixture) confirm(t *testing.T, matchID string, seed int) *store.BracketRecord {
	t.Helper()
	rec, err := f.svc.ConfirmWinner(context.Background(), f.seasonID, f.divisionID, matchID, f.team(seed))
	require.NoError(t, err)
	return rec
}

func TestGenerateRequiresLockedSeeding(t *testing.T) {
	f := setupService(t, bracket.SingleElimination, 4, false)

	_, err := f.svc.Generate(context.Background(), f.seasonID, f.divisionID, bracket.SingleElimination)
	assert.ErrorIs(t, err, ErrSeedingNotLocked)
}

func TestGenerateRequiresTwoTeams(t *testing.T) {
	f := setupService(t, bracket.SingleElimination, 1, true)

	_, err := f.svc.Generate(context.Background(), f.seasonID, f.divisionID, bracket.SingleElimination)
	assert.ErrorIs(t, err, ErrTooFewTeams)
}

func TestGenerateUnknownDivision(t *testing.T) {
	f := setupService(t, bracket.SingleElimination, 4, true)

	_, err := f.svc.Generate(context.Background(), f.seasonID, uuid.New(), bracket.SingleElimination)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestGenerateSeedsFromTeamList(t *testing.T) {
	f := setupService(t, bracket.SingleElimination, 4, true)
	ctx := context.Background()

	rec, err := f.svc.Generate(ctx, f.seasonID, f.divisionID, bracket.SingleElimination)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rec.Version)

	// Seed 1 meets seed 4, seed 2 meets seed 3.
	round1 := rec.Doc.Winners[1]
	require.Len(t, round1, 2)
	assert.Equal(t, f.team(1), *round1[0].A.TeamID)
	assert.Equal(t, f.team(4), *round1[0].B.TeamID)
	assert.Equal(t, f.team(2), *round1[1].A.TeamID)
	assert.Equal(t, f.team(3), *round1[1].B.TeamID)

	// A division has one bracket; generating again is a conflict.
	_, err = f.svc.Generate(ctx, f.seasonID, f.divisionID, bracket.SingleElimination)
	assert.ErrorIs(t, err, store.ErrBracketExists)
}

func TestGenerateDefaultsToDivisionFormat(t *testing.T) {
	f := setupService(t, bracket.DoubleElimination, 4, true)

	rec, err := f.svc.Generate(context.Background(), f.seasonID, f.divisionID, "")
	require.NoError(t, err)
	assert.Equal(t, bracket.DoubleElimination, rec.Doc.Format)
	assert.NotNil(t, rec.Doc.Losers)
}

func TestConfirmUndoAndOverridePersist(t *testing.T) {
	f := setupService(t, bracket.SingleElimination, 4, true)
	ctx := context.Background()

	_, err := f.svc.Generate(ctx, f.seasonID, f.divisionID, bracket.SingleElimination)
	require.NoError(t, err)

	rec := f.confirm(t, "W1-1", 1)
	assert.Equal(t, int64(2), rec.Version)
	assert.Equal(t, f.team(1), *rec.Doc.Winners[1][0].WinnerID)

	stored, err := f.svc.Get(ctx, f.seasonID, f.divisionID)
	require.NoError(t, err)
	assert.Equal(t, rec.Doc, stored.Doc)

	rec, err = f.svc.UndoWinner(ctx, f.seasonID, f.divisionID, "W1-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), rec.Version)
	assert.Nil(t, rec.Doc.Winners[1][0].WinnerID)

	override := f.team(4)
	rec, err = f.svc.OverrideSlot(ctx, f.seasonID, f.divisionID, "W2-1", "b", &override)
	require.NoError(t, err)
	assert.Equal(t, &override, rec.Doc.Winners[2][0].B.TeamID)

	// Engine failures surface unchanged and unpersisted.
	_, err = f.svc.ConfirmWinner(ctx, f.seasonID, f.divisionID, "W1-1", f.team(3))
	assert.ErrorIs(t, err, bracket.ErrInvalidWinner)
	_, err = f.svc.ConfirmWinner(ctx, f.seasonID, f.divisionID, "W9-1", f.team(1))
	assert.ErrorIs(t, err, bracket.ErrMatchNotFound)
	_, err = f.svc.ConfirmWinner(ctx, f.seasonID, f.divisionID, "match-7", f.team(1))
	assert.ErrorIs(t, err, bracket.ErrInvalidMatchRef)

	after, err := f.svc.Get(ctx, f.seasonID, f.divisionID)
	require.NoError(t, err)
	assert.Equal(t, rec.Version, after.Version, "failed mutations must not bump the version")
}

func TestFourTeamDoubleEliminationEndToEnd(t *testing.T) {
	f := setupService(t, bracket.DoubleElimination, 4, true)
	ctx := context.Background()

	_, err := f.svc.Generate(ctx, f.seasonID, f.divisionID, bracket.DoubleElimination)
	require.NoError(t, err)

	f.confirm(t, "W1-1", 1) // seed 4 drops
	f.confirm(t, "W1-2", 2) // seed 3 drops

	rec, err := f.svc.Get(ctx, f.seasonID, f.divisionID)
	require.NoError(t, err)
	assert.Equal(t, f.team(4), *rec.Doc.Losers[1][0].A.TeamID)
	assert.Equal(t, f.team(3), *rec.Doc.Losers[1][0].B.TeamID)

	f.confirm(t, "W2-1", 1) // seed 2 drops to the losers final
	f.confirm(t, "L1-1", 3)
	rec = f.confirm(t, "L2-1", 2)

	// Both champions known: the grand final is seated.
	assert.Equal(t, f.team(1), *rec.Doc.Finals.GF1.A.TeamID)
	assert.Equal(t, f.team(2), *rec.Doc.Finals.GF1.B.TeamID)
	assert.Equal(t, bracket.StateGF1Pending, rec.Doc.Status().State)

	// The losers champion takes game 1, forcing the reset game.
	rec = f.confirm(t, "GF1", 2)
	require.NotNil(t, rec.Doc.Finals.GF2)
	assert.Equal(t, bracket.StateGF2Pending, rec.Doc.Status().State)

	rec = f.confirm(t, "GF2", 1)
	status := rec.Doc.Status()
	assert.Equal(t, bracket.StateDone, status.State)
	assert.True(t, status.Complete)
	assert.Equal(t, f.team(1), *status.Champion)
	assert.Equal(t, f.team(2), *status.RunnerUp)

	view, err := f.svc.View(ctx, f.seasonID, f.divisionID)
	require.NoError(t, err)
	assert.Equal(t, status, view.Status)
	assert.Len(t, view.Teams, 4)
	assert.Equal(t, "Team A", view.Teams[string(f.team(1))].Name)
	assert.Equal(t, rec.Version, view.Version)
}

func TestRegenerateReplacesBracket(t *testing.T) {
	f := setupService(t, bracket.SingleElimination, 4, true)
	ctx := context.Background()

	_, err := f.svc.Generate(ctx, f.seasonID, f.divisionID, bracket.SingleElimination)
	require.NoError(t, err)
	f.confirm(t, "W1-1", 1)

	// Regenerate wipes results and can switch formats; the version keeps
	// counting so stale writers still lose their CAS.
	rec, err := f.svc.Regenerate(ctx, f.seasonID, f.divisionID, bracket.DoubleElimination)
	require.NoError(t, err)
	assert.Equal(t, int64(3), rec.Version)
	assert.Equal(t, bracket.DoubleElimination, rec.Doc.Format)
	assert.Nil(t, rec.Doc.Winners[1][0].WinnerID)
	require.NotNil(t, rec.Doc.Finals.GF1)
}

func TestRegenerateWithoutExistingBracket(t *testing.T) {
	f := setupService(t, bracket.SingleElimination, 4, true)

	rec, err := f.svc.Regenerate(context.Background(), f.seasonID, f.divisionID, bracket.SingleElimination)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rec.Version)
}

func TestLockAndUnlockSeeding(t *testing.T) {
	f := setupService(t, bracket.SingleElimination, 2, false)
	ctx := context.Background()

	division, err := f.svc.LockSeeding(ctx, f.seasonID, f.divisionID)
	require.NoError(t, err)
	assert.True(t, division.SeedingLocked())

	// Locking twice keeps the original timestamp.
	again, err := f.svc.LockSeeding(ctx, f.seasonID, f.divisionID)
	require.NoError(t, err)
	require.NotNil(t, again.SeedingLockedAt)
	assert.WithinDuration(t, *division.SeedingLockedAt, *again.SeedingLockedAt, time.Second)

	division, err = f.svc.UnlockSeeding(ctx, f.seasonID, f.divisionID)
	require.NoError(t, err)
	assert.False(t, division.SeedingLocked())

	_, err = f.svc.LockSeeding(ctx, f.seasonID, uuid.New())
	assert.ErrorIs(t, err, store.ErrNotFound)
}
