package bracket

import (
	"fmt"
	"strconv"
	"strings"
)

// MatchRef addresses a single match inside a bracket document. The engine
// passes refs around as plain values; ParseMatchRef and String are the only
// two places the wire form ("W2-1", "L1-3", "GF1") is read or written.
type MatchRef struct {
	Kind  MatchKind
	Round int // 1-based, winners and losers matches only
	Index int // 0-based position within the round
	Game  int // 1 or 2, grand-final matches only
}

func WinnersRef(round, index int) MatchRef {
	return MatchRef{Kind: KindWinners, Round: round, Index: index}
}

func LosersRef(round, index int) MatchRef {
	return MatchRef{Kind: KindLosers, Round: round, Index: index}
}

func GrandFinalRef(game int) MatchRef {
	return MatchRef{Kind: KindFinals, Game: game}
}

// String renders the wire form. Match numbers are 1-based on the wire even
// though Index is 0-based.
func (r MatchRef) String() string {
	switch r.Kind {
	case KindWinners:
		return fmt.Sprintf("W%d-%d", r.Round, r.Index+1)
	case KindLosers:
		return fmt.Sprintf("L%d-%d", r.Round, r.Index+1)
	case KindFinals:
		return fmt.Sprintf("GF%d", r.Game)
	}
	return ""
}

func ParseMatchRef(s string) (MatchRef, error) {
	switch s {
	case "GF1":
		return GrandFinalRef(1), nil
	case "GF2":
		return GrandFinalRef(2), nil
	}

	if s == "" {
		return MatchRef{}, fmt.Errorf("%w: empty id", ErrInvalidMatchRef)
	}

	var kind MatchKind
	switch s[0] {
	case 'W':
		kind = KindWinners
	case 'L':
		kind = KindLosers
	default:
		return MatchRef{}, fmt.Errorf("%w: %q", ErrInvalidMatchRef, s)
	}

	roundPart, numPart, ok := strings.Cut(s[1:], "-")
	if !ok {
		return MatchRef{}, fmt.Errorf("%w: %q", ErrInvalidMatchRef, s)
	}
	round, err := strconv.Atoi(roundPart)
	if err != nil || round < 1 {
		return MatchRef{}, fmt.Errorf("%w: %q", ErrInvalidMatchRef, s)
	}
	num, err := strconv.Atoi(numPart)
	if err != nil || num < 1 {
		return MatchRef{}, fmt.Errorf("%w: %q", ErrInvalidMatchRef, s)
	}

	return MatchRef{Kind: kind, Round: round, Index: num - 1}, nil
}
