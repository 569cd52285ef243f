package bracket

import "fmt"

type MatchKind string

const (
	KindWinners MatchKind = "winners"
	KindLosers  MatchKind = "losers"
	KindFinals  MatchKind = "finals"
)

// Side addresses one of a match's two slots.
type Side string

const (
	SideA Side = "a"
	SideB Side = "b"
)

func ParseSide(s string) (Side, error) {
	switch Side(s) {
	case SideA:
		return SideA, nil
	case SideB:
		return SideB, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSide, s)
}

// TeamID is an opaque identifier supplied by the roster subsystem. The
// engine never creates, renames, or deletes teams.
type TeamID string

// Slot is one side of a match. TeamID stays nil until the initial seeding
// or an upstream result fills it.
type Slot struct {
	TeamID *TeamID `json:"teamId"`
}

type MatchNode struct {
	GameID   string  `json:"gameId"`
	A        Slot    `json:"a"`
	B        Slot    `json:"b"`
	WinnerID *TeamID `json:"winnerId"`
}

// Ready reports whether both slots are filled, i.e. the match can be played
// and confirmed.
func (m *MatchNode) Ready() bool {
	return m.A.TeamID != nil && m.B.TeamID != nil
}

func (m *MatchNode) HasTeam(team TeamID) bool {
	if m.A.TeamID != nil && *m.A.TeamID == team {
		return true
	}
	return m.B.TeamID != nil && *m.B.TeamID == team
}

// Opponent returns the slot value facing the given team, or nil if the team
// is not seated in this match.
func (m *MatchNode) Opponent(team TeamID) *TeamID {
	if m.A.TeamID != nil && *m.A.TeamID == team {
		return m.B.TeamID
	}
	if m.B.TeamID != nil && *m.B.TeamID == team {
		return m.A.TeamID
	}
	return nil
}

func (m *MatchNode) slot(side Side) *Slot {
	if side == SideA {
		return &m.A
	}
	return &m.B
}

func (m *MatchNode) setTeam(side Side, team TeamID) {
	t := team
	m.slot(side).TeamID = &t
}

func (m *MatchNode) clone() *MatchNode {
	if m == nil {
		return nil
	}
	c := &MatchNode{GameID: m.GameID}
	if m.A.TeamID != nil {
		t := *m.A.TeamID
		c.A.TeamID = &t
	}
	if m.B.TeamID != nil {
		t := *m.B.TeamID
		c.B.TeamID = &t
	}
	if m.WinnerID != nil {
		t := *m.WinnerID
		c.WinnerID = &t
	}
	return c
}

func sideForIndex(i int) Side {
	if i%2 == 0 {
		return SideA
	}
	return SideB
}
