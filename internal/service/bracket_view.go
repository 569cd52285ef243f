package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/parklandpickleball/ppl-playoffs/internal/bracket"
	"github.com/parklandpickleball/ppl-playoffs/internal/league"
	"github.com/parklandpickleball/ppl-playoffs/internal/store"
)

type TeamInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Seed int    `json:"seed"`
}

// BracketView is the renderable bracket: the document itself plus the
// derived status and a team directory for resolving slot ids to names.
type BracketView struct {
	SeasonID   string              `json:"seasonId"`
	DivisionID string              `json:"divisionId"`
	Bracket    *bracket.Bracket    `json:"bracket"`
	Status     bracket.Status      `json:"status"`
	Teams      map[string]TeamInfo `json:"teams"`
	Version    int64               `json:"version"`
	UpdatedAt  time.Time           `json:"updatedAt"`
}

// View assembles the bracket view, read-through cached. Every mutation
// invalidates the cached copy, so a hit is always current.
func (s *PlayoffService) View(ctx context.Context, seasonID, divisionID uuid.UUID) (*BracketView, error) {
	key := viewCacheKey(seasonID, divisionID)
	if raw, ok := s.cache.Get(ctx, key); ok {
		var view BracketView
		if err := json.Unmarshal(raw, &view); err == nil {
			return &view, nil
		}
	}

	rec, err := s.brackets.Get(ctx, seasonID, divisionID)
	if err != nil {
		return nil, err
	}
	teams, err := s.leagues.ListTeamsBySeed(ctx, divisionID)
	if err != nil {
		return nil, err
	}

	view := newBracketView(rec, teams)
	if raw, err := json.Marshal(view); err == nil {
		_ = s.cache.Set(ctx, key, raw)
	}
	return view, nil
}

func newBracketView(rec *store.BracketRecord, teams []league.Team) *BracketView {
	directory := make(map[string]TeamInfo, len(teams))
	for _, team := range teams {
		id := team.ID.String()
		directory[id] = TeamInfo{ID: id, Name: team.Name, Seed: team.Seed}
	}

	return &BracketView{
		SeasonID:   rec.SeasonID.String(),
		DivisionID: rec.DivisionID.String(),
		Bracket:    rec.Doc,
		Status:     rec.Doc.Status(),
		Teams:      directory,
		Version:    rec.Version,
		UpdatedAt:  rec.UpdatedAt,
	}
}

func viewCacheKey(seasonID, divisionID uuid.UUID) string {
	return fmt.Sprintf("bracket_view:%s:%s", seasonID, divisionID)
}
