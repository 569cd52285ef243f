package bracket

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

type Format string

const (
	SingleElimination Format = "SINGLE"
	DoubleElimination Format = "DOUBLE"
)

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToUpper(s)) {
	case SingleElimination:
		return SingleElimination, nil
	case DoubleElimination:
		return DoubleElimination, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidFormat, s)
}

// RoundMap holds one ladder's matches keyed by round number starting at 1.
// On the wire the keys read "round1", "round2" and so on.
type RoundMap map[int][]*MatchNode

func (rm RoundMap) MarshalJSON() ([]byte, error) {
	rounds := make([]int, 0, len(rm))
	for r := range rm {
		rounds = append(rounds, r)
	}
	sort.Ints(rounds)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, r := range rounds {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, `"round%d":`, r)
		matches, err := json.Marshal(rm[r])
		if err != nil {
			return nil, err
		}
		buf.Write(matches)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (rm *RoundMap) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := make(RoundMap, len(raw))
	for key, val := range raw {
		num, ok := strings.CutPrefix(key, "round")
		if !ok {
			return fmt.Errorf("unexpected round key %q", key)
		}
		r, err := strconv.Atoi(num)
		if err != nil || r < 1 {
			return fmt.Errorf("unexpected round key %q", key)
		}
		var matches []*MatchNode
		if err := json.Unmarshal(val, &matches); err != nil {
			return err
		}
		out[r] = matches
	}
	*rm = out
	return nil
}

func (rm RoundMap) clone() RoundMap {
	if rm == nil {
		return nil
	}
	c := make(RoundMap, len(rm))
	for r, matches := range rm {
		cloned := make([]*MatchNode, len(matches))
		for i, m := range matches {
			cloned[i] = m.clone()
		}
		c[r] = cloned
	}
	return c
}

// Finals holds the grand-final games. GF2 is the reset game and exists only
// while the losers-bracket champion has game one in the bag.
type Finals struct {
	GF1 *MatchNode `json:"gf1"`
	GF2 *MatchNode `json:"gf2"`
}

// Bracket is the full playoff document for one division. Operations never
// mutate a Bracket in place; they clone it and return the new value, so a
// caller can hold onto the old document until the new one is persisted.
type Bracket struct {
	Format  Format   `json:"format"`
	Winners RoundMap `json:"winners"`
	Losers  RoundMap `json:"losers,omitempty"`
	Finals  *Finals  `json:"finals"`
}

func (b *Bracket) Clone() *Bracket {
	if b == nil {
		return nil
	}
	c := &Bracket{
		Format:  b.Format,
		Winners: b.Winners.clone(),
		Losers:  b.Losers.clone(),
	}
	if b.Finals != nil {
		c.Finals = &Finals{
			GF1: b.Finals.GF1.clone(),
			GF2: b.Finals.GF2.clone(),
		}
	}
	return c
}

func (b *Bracket) match(ref MatchRef) *MatchNode {
	switch ref.Kind {
	case KindWinners:
		return roundMatch(b.Winners, ref.Round, ref.Index)
	case KindLosers:
		return roundMatch(b.Losers, ref.Round, ref.Index)
	case KindFinals:
		if b.Finals == nil {
			return nil
		}
		switch ref.Game {
		case 1:
			return b.Finals.GF1
		case 2:
			return b.Finals.GF2
		}
	}
	return nil
}

func roundMatch(rm RoundMap, round, index int) *MatchNode {
	matches, ok := rm[round]
	if !ok || index < 0 || index >= len(matches) {
		return nil
	}
	return matches[index]
}

// winnersChampion is the winner of the last winners round, if decided.
func (b *Bracket) winnersChampion() *TeamID {
	final := roundMatch(b.Winners, len(b.Winners), 0)
	if final == nil {
		return nil
	}
	return final.WinnerID
}

// losersChampion is the winner of the last losers round, if decided.
func (b *Bracket) losersChampion() *TeamID {
	final := roundMatch(b.Losers, len(b.Losers), 0)
	if final == nil {
		return nil
	}
	return final.WinnerID
}

// nextTarget returns where the winner of the given match advances to. ok is
// false at the end of a ladder that goes nowhere, i.e. the single-elimination
// final and the grand-final games.
func (b *Bracket) nextTarget(ref MatchRef) (MatchRef, Side, bool) {
	switch ref.Kind {
	case KindWinners:
		if ref.Round < len(b.Winners) {
			return WinnersRef(ref.Round+1, ref.Index/2), sideForIndex(ref.Index), true
		}
		if b.Format == DoubleElimination {
			return GrandFinalRef(1), SideA, true
		}
	case KindLosers:
		if ref.Round < len(b.Losers) {
			// Odd losers rounds feed the same match index one round
			// on; even rounds pair survivors up again.
			if ref.Round%2 == 1 {
				return LosersRef(ref.Round+1, ref.Index), SideA, true
			}
			return LosersRef(ref.Round+1, ref.Index/2), sideForIndex(ref.Index), true
		}
		return GrandFinalRef(1), SideB, true
	}
	return MatchRef{}, "", false
}

// loserTarget returns the losers-bracket slot the loser of a winners match
// drops into. Round 1 losers pair up; every later round feeds side b of the
// even losers round 2r-2.
func loserTarget(ref MatchRef) (MatchRef, Side) {
	if ref.Round == 1 {
		return LosersRef(1, ref.Index/2), sideForIndex(ref.Index)
	}
	return LosersRef(2*ref.Round-2, ref.Index), SideB
}
