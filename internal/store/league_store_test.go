package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parklandpickleball/ppl-playoffs/internal/bracket"
	"github.com/parklandpickleball/ppl-playoffs/internal/league"
)

func TestLeagueStoreDivisionScoping(t *testing.T) {
	conn := setupTestDB(t)
	ctx := context.Background()
	leagues := NewLeagueStore(conn)
	seasonID, divisionID := seedDivision(t, conn, bracket.SingleElimination, 2)

	division, err := leagues.GetDivision(ctx, seasonID, divisionID)
	require.NoError(t, err)
	assert.Equal(t, "Mixed 3.5", division.Name)
	assert.Equal(t, bracket.SingleElimination, division.Format)
	assert.False(t, division.SeedingLocked())

	// The same division through a different season does not resolve.
	_, err = leagues.GetDivision(ctx, uuid.New(), divisionID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = leagues.GetSeason(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLeagueStoreListTeamsBySeed(t *testing.T) {
	conn := setupTestDB(t)
	ctx := context.Background()
	leagues := NewLeagueStore(conn)
	_, divisionID := seedDivision(t, conn, bracket.SingleElimination, 0)

	// Insert out of order; the listing must come back seed-ascending.
	for _, seed := range []int{3, 1, 4, 2} {
		team := &league.Team{
			ID:         uuid.New(),
			DivisionID: divisionID,
			Name:       teamName(seed),
			Seed:       seed,
			CreatedAt:  time.Now().UTC(),
		}
		require.NoError(t, leagues.CreateTeam(ctx, team))
	}

	teams, err := leagues.ListTeamsBySeed(ctx, divisionID)
	require.NoError(t, err)
	require.Len(t, teams, 4)
	for i, team := range teams {
		assert.Equal(t, i+1, team.Seed)
	}
}

func TestLeagueStoreDuplicateSeedRejected(t *testing.T) {
	conn := setupTestDB(t)
	ctx := context.Background()
	leagues := NewLeagueStore(conn)
	_, divisionID := seedDivision(t, conn, bracket.SingleElimination, 1)

	dupe := &league.Team{
		ID:         uuid.New(),
		DivisionID: divisionID,
		Name:       "Second Serve",
		Seed:       1,
		CreatedAt:  time.Now().UTC(),
	}
	assert.Error(t, leagues.CreateTeam(ctx, dupe))
}

func TestLeagueStoreSeedingLock(t *testing.T) {
	conn := setupTestDB(t)
	ctx := context.Background()
	leagues := NewLeagueStore(conn)
	seasonID, divisionID := seedDivision(t, conn, bracket.SingleElimination, 2)

	lockedAt := time.Now().UTC()
	require.NoError(t, leagues.SetSeedingLock(ctx, divisionID, &lockedAt))

	division, err := leagues.GetDivision(ctx, seasonID, divisionID)
	require.NoError(t, err)
	assert.True(t, division.SeedingLocked())

	require.NoError(t, leagues.SetSeedingLock(ctx, divisionID, nil))
	division, err = leagues.GetDivision(ctx, seasonID, divisionID)
	require.NoError(t, err)
	assert.False(t, division.SeedingLocked())

	assert.ErrorIs(t, leagues.SetSeedingLock(ctx, uuid.New(), &lockedAt), ErrNotFound)
}
