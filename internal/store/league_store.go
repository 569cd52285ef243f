package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/parklandpickleball/ppl-playoffs/internal/league"
)

const (
	createSeasonQuery = `INSERT INTO seasons (id, name, created_at) VALUES (:id, :name, :created_at)`
	getSeasonQuery    = `SELECT * FROM seasons WHERE id = $1`

	createDivisionQuery = `
		INSERT INTO divisions (id, season_id, name, format, seeding_locked_at, created_at)
		VALUES (:id, :season_id, :name, :format, :seeding_locked_at, :created_at)
	`
	getDivisionQuery = `SELECT * FROM divisions WHERE season_id = $1 AND id = $2`

	createTeamQuery = `
		INSERT INTO teams (id, division_id, name, seed, created_at)
		VALUES (:id, :division_id, :name, :seed, :created_at)
	`
	listTeamsBySeedQuery = `SELECT * FROM teams WHERE division_id = $1 ORDER BY seed ASC`

	setSeedingLockQuery = `UPDATE divisions SET seeding_locked_at = $1 WHERE id = $2`
)

type LeagueStore struct {
	db *sqlx.DB
}

func NewLeagueStore(db *sqlx.DB) *LeagueStore {
	return &LeagueStore{db: db}
}

func (s *LeagueStore) CreateSeason(ctx context.Context, season *league.Season) error {
	_, err := s.db.NamedExecContext(ctx, createSeasonQuery, season)
	return err
}

func (s *LeagueStore) GetSeason(ctx context.Context, id uuid.UUID) (*league.Season, error) {
	var season league.Season
	err := s.db.GetContext(ctx, &season, getSeasonQuery, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &season, nil
}

func (s *LeagueStore) CreateDivision(ctx context.Context, division *league.Division) error {
	_, err := s.db.NamedExecContext(ctx, createDivisionQuery, division)
	return err
}

// GetDivision is scoped by season so a division reached through the wrong
// season's URL comes back as not found.
func (s *LeagueStore) GetDivision(ctx context.Context, seasonID, divisionID uuid.UUID) (*league.Division, error) {
	var division league.Division
	err := s.db.GetContext(ctx, &division, getDivisionQuery, seasonID, divisionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &division, nil
}

func (s *LeagueStore) CreateTeam(ctx context.Context, team *league.Team) error {
	_, err := s.db.NamedExecContext(ctx, createTeamQuery, team)
	return err
}

func (s *LeagueStore) ListTeamsBySeed(ctx context.Context, divisionID uuid.UUID) ([]league.Team, error) {
	var teams []league.Team
	err := s.db.SelectContext(ctx, &teams, listTeamsBySeedQuery, divisionID)
	return teams, err
}

// SetSeedingLock stamps or clears the division's seeding lock. A nil
// lockedAt unlocks.
func (s *LeagueStore) SetSeedingLock(ctx context.Context, divisionID uuid.UUID, lockedAt *time.Time) error {
	res, err := s.db.ExecContext(ctx, setSeedingLockQuery, lockedAt, divisionID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
