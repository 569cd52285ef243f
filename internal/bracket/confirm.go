package bracket

import "fmt"

// ConfirmWinner records team as the winner of the referenced match and
// propagates the result exactly one level: into the next round's slot, into
// the losers bracket for double elimination, and into the grand final once
// both champions are known. The receiver is never modified; the updated
// document is returned.
//
// Confirming a match that already has a winner overwrites the old result and
// its propagated slots. Anything deeper that was built on the old result is
// repaired through UndoWinner, not here.
func (b *Bracket) ConfirmWinner(ref MatchRef, team TeamID) (*Bracket, error) {
	next := b.Clone()

	m := next.match(ref)
	if m == nil {
		return nil, fmt.Errorf("%w: %s", ErrMatchNotFound, ref)
	}
	if !m.Ready() {
		return nil, fmt.Errorf("%w: %s", ErrMatchNotReady, ref)
	}
	if !m.HasTeam(team) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidWinner, ref)
	}

	if ref.Kind == KindFinals {
		next.confirmGrandFinal(ref, m, team)
		return next, nil
	}

	m.WinnerID = &team

	if target, side, ok := next.nextTarget(ref); ok && target.Kind != KindFinals {
		if tm := next.match(target); tm != nil {
			tm.setTeam(side, team)
		}
	}

	if next.Format == DoubleElimination {
		if ref.Kind == KindWinners {
			if loser := m.Opponent(team); loser != nil {
				target, side := loserTarget(ref)
				if tm := next.match(target); tm != nil {
					tm.setTeam(side, *loser)
				}
			}
		}
		next.populateFinals()
	}

	return next, nil
}

// confirmGrandFinal decides a grand-final game. Winning game one from the
// losers-bracket side forces the reset game; the winners-bracket champion
// taking game one ends the playoff with no game two.
func (b *Bracket) confirmGrandFinal(ref MatchRef, m *MatchNode, team TeamID) {
	m.WinnerID = &team

	if ref.Game != 1 {
		return
	}

	if m.B.TeamID != nil && *m.B.TeamID == team {
		gf2 := &MatchNode{GameID: GrandFinalRef(2).String()}
		gf2.setTeam(SideA, *m.A.TeamID)
		gf2.setTeam(SideB, *m.B.TeamID)
		b.Finals.GF2 = gf2
	} else {
		b.Finals.GF2 = nil
	}
}

// populateFinals seats the grand final once both bracket champions are
// decided. Only unset slots are filled, so a re-confirm deeper in the
// bracket cannot silently flip an established pairing.
func (b *Bracket) populateFinals() {
	if b.Finals == nil || b.Finals.GF1 == nil {
		return
	}

	wb := b.winnersChampion()
	lb := b.losersChampion()
	if wb == nil || lb == nil {
		return
	}

	gf1 := b.Finals.GF1
	if gf1.A.TeamID == nil {
		gf1.setTeam(SideA, *wb)
	}
	if gf1.B.TeamID == nil {
		gf1.setTeam(SideB, *lb)
	}
}
