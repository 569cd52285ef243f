package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/parklandpickleball/ppl-playoffs/internal/bracket"
	"github.com/parklandpickleball/ppl-playoffs/internal/cache"
	"github.com/parklandpickleball/ppl-playoffs/internal/league"
	"github.com/parklandpickleball/ppl-playoffs/internal/store"
)

var (
	ErrSeedingNotLocked = errors.New("seeding is not locked for this division")
	ErrTooFewTeams      = errors.New("division needs at least two seeded teams")
)

// casRetries bounds how often a mutation re-reads and re-applies after
// losing a version race before giving up with ErrVersionConflict.
const casRetries = 3

type PlayoffService struct {
	brackets *store.BracketStore
	leagues  *store.LeagueStore
	cache    *cache.Cache
}

func NewPlayoffService(brackets *store.BracketStore, leagues *store.LeagueStore, c *cache.Cache) *PlayoffService {
	return &PlayoffService{brackets: brackets, leagues: leagues, cache: c}
}

// Generate builds and stores the playoff bracket for a division. The
// division's seeding must be locked first, and a division only ever has one
// bracket; wiping it is Regenerate's job.
func (s *PlayoffService) Generate(ctx context.Context, seasonID, divisionID uuid.UUID, format bracket.Format) (*store.BracketRecord, error) {
	doc, err := s.buildDoc(ctx, seasonID, divisionID, format)
	if err != nil {
		return nil, err
	}

	rec, err := s.brackets.Create(ctx, seasonID, divisionID, doc)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, seasonID, divisionID)
	return rec, nil
}

// Regenerate rebuilds the bracket from the current seed list and replaces
// the stored document wholesale. This is the only reset operation, and also
// the path for switching formats. The version keeps counting up so writers
// holding the old document cannot silently clobber the fresh one.
func (s *PlayoffService) Regenerate(ctx context.Context, seasonID, divisionID uuid.UUID, format bracket.Format) (*store.BracketRecord, error) {
	doc, err := s.buildDoc(ctx, seasonID, divisionID, format)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < casRetries; attempt++ {
		current, err := s.brackets.Get(ctx, seasonID, divisionID)
		if errors.Is(err, store.ErrNotFound) {
			rec, err := s.brackets.Create(ctx, seasonID, divisionID, doc)
			if errors.Is(err, store.ErrBracketExists) {
				continue
			}
			if err != nil {
				return nil, err
			}
			s.invalidate(ctx, seasonID, divisionID)
			return rec, nil
		}
		if err != nil {
			return nil, err
		}

		rec, err := s.brackets.Update(ctx, seasonID, divisionID, doc, current.Version)
		if errors.Is(err, store.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}
		s.invalidate(ctx, seasonID, divisionID)
		return rec, nil
	}

	return nil, store.ErrVersionConflict
}

func (s *PlayoffService) Get(ctx context.Context, seasonID, divisionID uuid.UUID) (*store.BracketRecord, error) {
	return s.brackets.Get(ctx, seasonID, divisionID)
}

// ConfirmWinner records a match result and persists the transformed
// document, retrying on version races.
func (s *PlayoffService) ConfirmWinner(ctx context.Context, seasonID, divisionID uuid.UUID, matchID string, teamID bracket.TeamID) (*store.BracketRecord, error) {
	ref, err := bracket.ParseMatchRef(matchID)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, seasonID, divisionID, func(doc *bracket.Bracket) (*bracket.Bracket, error) {
		return doc.ConfirmWinner(ref, teamID)
	})
}

// UndoWinner reverses a recorded result, cascading through everything that
// was derived from it.
func (s *PlayoffService) UndoWinner(ctx context.Context, seasonID, divisionID uuid.UUID, matchID string) (*store.BracketRecord, error) {
	ref, err := bracket.ParseMatchRef(matchID)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, seasonID, divisionID, func(doc *bracket.Bracket) (*bracket.Bracket, error) {
		return doc.UndoWinner(ref)
	})
}

// OverrideSlot force-sets or clears one side of a match without any
// propagation. It exists for repairing a bracket by hand.
func (s *PlayoffService) OverrideSlot(ctx context.Context, seasonID, divisionID uuid.UUID, matchID, side string, teamID *bracket.TeamID) (*store.BracketRecord, error) {
	ref, err := bracket.ParseMatchRef(matchID)
	if err != nil {
		return nil, err
	}
	sd, err := bracket.ParseSide(side)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, seasonID, divisionID, func(doc *bracket.Bracket) (*bracket.Bracket, error) {
		return doc.ForceSetSlot(ref, sd, teamID)
	})
}

// LockSeeding freezes the division's seed order so a bracket can be
// generated. Locking an already locked division is a no-op.
func (s *PlayoffService) LockSeeding(ctx context.Context, seasonID, divisionID uuid.UUID) (*league.Division, error) {
	division, err := s.leagues.GetDivision(ctx, seasonID, divisionID)
	if err != nil {
		return nil, err
	}
	if division.SeedingLocked() {
		return division, nil
	}

	now := time.Now().UTC()
	if err := s.leagues.SetSeedingLock(ctx, divisionID, &now); err != nil {
		return nil, err
	}
	division.SeedingLockedAt = &now
	return division, nil
}

// UnlockSeeding clears the lock. An existing bracket stays as it is until
// somebody regenerates it.
func (s *PlayoffService) UnlockSeeding(ctx context.Context, seasonID, divisionID uuid.UUID) (*league.Division, error) {
	division, err := s.leagues.GetDivision(ctx, seasonID, divisionID)
	if err != nil {
		return nil, err
	}
	if !division.SeedingLocked() {
		return division, nil
	}

	if err := s.leagues.SetSeedingLock(ctx, divisionID, nil); err != nil {
		return nil, err
	}
	division.SeedingLockedAt = nil
	return division, nil
}

// buildDoc runs the generation guards and produces a fresh document from
// the division's seed list.
func (s *PlayoffService) buildDoc(ctx context.Context, seasonID, divisionID uuid.UUID, format bracket.Format) (*bracket.Bracket, error) {
	division, err := s.leagues.GetDivision(ctx, seasonID, divisionID)
	if err != nil {
		return nil, err
	}
	if !division.SeedingLocked() {
		return nil, ErrSeedingNotLocked
	}
	if format == "" {
		format = division.Format
	}

	teams, err := s.leagues.ListTeamsBySeed(ctx, divisionID)
	if err != nil {
		return nil, err
	}
	if len(teams) < 2 {
		return nil, ErrTooFewTeams
	}

	seeds := make([]bracket.TeamID, len(teams))
	for i, team := range teams {
		seeds[i] = bracket.TeamID(team.ID.String())
	}

	return bracket.Generate(seeds, format)
}

// mutate runs one read-transform-write cycle against the stored document,
// retrying the whole cycle while the version moves underneath it.
func (s *PlayoffService) mutate(ctx context.Context, seasonID, divisionID uuid.UUID, transform func(*bracket.Bracket) (*bracket.Bracket, error)) (*store.BracketRecord, error) {
	for attempt := 0; attempt < casRetries; attempt++ {
		current, err := s.brackets.Get(ctx, seasonID, divisionID)
		if err != nil {
			return nil, err
		}

		doc, err := transform(current.Doc)
		if err != nil {
			return nil, err
		}

		rec, err := s.brackets.Update(ctx, seasonID, divisionID, doc, current.Version)
		if errors.Is(err, store.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}

		s.invalidate(ctx, seasonID, divisionID)
		return rec, nil
	}

	return nil, store.ErrVersionConflict
}

func (s *PlayoffService) invalidate(ctx context.Context, seasonID, divisionID uuid.UUID) {
	_ = s.cache.Delete(ctx, viewCacheKey(seasonID, divisionID))
}
