package bracket

import (
	"fmt"
	"math"
)

// Gets the nearest power of 2 while rounding up, so with input 5 it returns 8 and so on
func calcBracketSize(count int) int {
	if count <= 0 {
		return 0
	}

	// Log2 -> Ceil -> 2^^log2 to round up
	log2 := math.Ceil(math.Log2(float64(count)))
	return int(math.Pow(2, log2))
}

// generateRound1Pairs produces the standard seeding order for a full
// bracket: seed 0 meets the last seed, the pairs interleave so top seeds
// cannot meet before the late rounds.
func generateRound1Pairs(bracketSize int) [][2]int {
	if bracketSize == 0 {
		return [][2]int{}
	}

	rounds := []int{0}
	for len(rounds) < bracketSize {
		var nextRound []int
		currentCount := len(rounds) * 2

		for _, seed := range rounds {
			nextRound = append(nextRound, seed)
			nextRound = append(nextRound, (currentCount-1)-seed)
		}
		rounds = nextRound
	}

	pairs := make([][2]int, 0, bracketSize/2)
	for i := 0; i < len(rounds); i += 2 {
		matchup := [2]int{rounds[i], rounds[i+1]}
		pairs = append(pairs, matchup)
	}

	return pairs
}

// losersRoundSize gives the number of matches in one losers round. The
// ladder runs S/4, S/4, S/8, S/8, ... 1, 1 for a winners bracket of size S.
func losersRoundSize(bracketSize, round int) int {
	return bracketSize >> ((round+1)/2 + 1)
}

// Generate builds a fresh bracket for the given seed order; seeds[0] is the
// top seed. Seats that a short field leaves empty become byes and resolve
// immediately. Generate always produces a brand new document - deciding
// whether an existing bracket may be replaced is the caller's job.
func Generate(seeds []TeamID, format Format) (*Bracket, error) {
	if len(seeds) == 0 {
		return nil, ErrNoSeeds
	}
	if format != SingleElimination && format != DoubleElimination {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFormat, string(format))
	}
	// A two-team double elimination has no losers rounds to drop into.
	if len(seeds) < 2 || (format == DoubleElimination && len(seeds) < 3) {
		return nil, fmt.Errorf("%w: got %d", ErrNotEnoughSeeds, len(seeds))
	}

	bracketSize := calcBracketSize(len(seeds))
	totalRounds := int(math.Log2(float64(bracketSize)))

	b := &Bracket{
		Format:  format,
		Winners: make(RoundMap, totalRounds),
		Finals:  &Finals{},
	}

	for r := 1; r <= totalRounds; r++ {
		round := make([]*MatchNode, bracketSize>>r)
		for i := range round {
			round[i] = &MatchNode{GameID: WinnersRef(r, i).String()}
		}
		b.Winners[r] = round
	}

	for i, pair := range generateRound1Pairs(bracketSize) {
		m := b.Winners[1][i]
		if pair[0] < len(seeds) {
			m.setTeam(SideA, seeds[pair[0]])
		}
		if pair[1] < len(seeds) {
			m.setTeam(SideB, seeds[pair[1]])
		}
	}

	if format == DoubleElimination {
		losersRounds := 2*totalRounds - 2
		b.Losers = make(RoundMap, losersRounds)
		for r := 1; r <= losersRounds; r++ {
			round := make([]*MatchNode, losersRoundSize(bracketSize, r))
			for i := range round {
				round[i] = &MatchNode{GameID: LosersRef(r, i).String()}
			}
			b.Losers[r] = round
		}
		b.Finals.GF1 = &MatchNode{GameID: GrandFinalRef(1).String()}
	}

	resolveByes(b)

	return b, nil
}

// resolveByes finishes round-1 matches that seeded only one team. The lone
// team wins immediately and moves into its round-2 slot. Bye results never
// drop anyone into the losers bracket.
func resolveByes(b *Bracket) {
	for i, m := range b.Winners[1] {
		var winner *TeamID
		switch {
		case m.A.TeamID != nil && m.B.TeamID == nil:
			winner = m.A.TeamID
		case m.A.TeamID == nil && m.B.TeamID != nil:
			winner = m.B.TeamID
		}
		if winner == nil {
			continue
		}

		w := *winner
		m.WinnerID = &w
		if next := roundMatch(b.Winners, 2, i/2); next != nil {
			next.setTeam(sideForIndex(i), w)
		}
	}
}
