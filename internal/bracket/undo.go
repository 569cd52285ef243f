package bracket

import "fmt"

// UndoWinner reverses a confirmed result and clears every downstream slot
// and winner that was derived from it. A downstream match whose winner
// arrived independently of the reversed result keeps its outcome; only the
// vacated slot is cleared. Undoing a match with no winner is a harmless
// no-op.
func (b *Bracket) UndoWinner(ref MatchRef) (*Bracket, error) {
	next := b.Clone()

	m := next.match(ref)
	if m == nil {
		return nil, fmt.Errorf("%w: %s", ErrMatchNotFound, ref)
	}

	if ref.Kind == KindFinals {
		m.WinnerID = nil
		if ref.Game == 1 {
			next.Finals.GF2 = nil
		}
		return next, nil
	}

	if m.WinnerID == nil {
		return next, nil
	}

	next.invalidateDownstream(ref, m)

	// Both grand-final games are derived state, so any undo behind them
	// resets the final to undecided and removes the reset game. The gf1
	// slots themselves are only vacated when a champion chain above
	// actually reached them.
	if next.Finals != nil {
		if next.Finals.GF1 != nil {
			next.Finals.GF1.WinnerID = nil
		}
		next.Finals.GF2 = nil
	}

	return next, nil
}

// invalidateDownstream clears the target match's winner and walks the
// advancement chain it fed, vacating slots and dependent results.
func (b *Bracket) invalidateDownstream(ref MatchRef, m *MatchNode) {
	cleared := *m.WinnerID
	loser := m.Opponent(cleared)
	m.WinnerID = nil
	b.retractLoserDrop(ref, loser)

	if target, side, ok := b.nextTarget(ref); ok {
		b.clearForward(target, side, cleared)
	}
}

// clearForward follows value along the advancement chain starting at the
// given slot. At each match the slot is vacated if it still holds value;
// the match's own result is cleared only if value won it, in which case the
// walk continues one round on. A match whose winner arrived independently
// ends the walk.
func (b *Bracket) clearForward(ref MatchRef, side Side, value TeamID) {
	cur, curSide := ref, side
	for {
		if cur.Kind == KindFinals {
			if gf := b.match(cur); gf != nil {
				slot := gf.slot(curSide)
				if slot.TeamID != nil && *slot.TeamID == value {
					slot.TeamID = nil
				}
			}
			return
		}

		node := b.match(cur)
		if node == nil {
			return
		}

		// The loser has to be read before the slot is vacated.
		var loser *TeamID
		if node.WinnerID != nil && *node.WinnerID == value {
			loser = node.Opponent(value)
		}

		slot := node.slot(curSide)
		if slot.TeamID != nil && *slot.TeamID == value {
			slot.TeamID = nil
		}

		if node.WinnerID == nil || *node.WinnerID != value {
			return
		}

		node.WinnerID = nil
		b.retractLoserDrop(cur, loser)

		target, nextSide, ok := b.nextTarget(cur)
		if !ok {
			return
		}
		cur, curSide = target, nextSide
	}
}

// retractLoserDrop pulls a previously dropped loser back out of the losers
// bracket, together with anything that was built on top of the drop. Byes
// never dropped anyone, so a nil loser is fine.
func (b *Bracket) retractLoserDrop(ref MatchRef, loser *TeamID) {
	if b.Format != DoubleElimination || ref.Kind != KindWinners || loser == nil {
		return
	}
	target, side := loserTarget(ref)
	b.clearForward(target, side, *loser)
}
