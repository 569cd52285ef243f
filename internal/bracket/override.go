package bracket

import "fmt"

// ForceSetSlot writes a team straight into a slot, or clears it when team is
// nil. This is the admin escape hatch for repairing a document by hand:
// nothing is validated beyond the match existing, nothing propagates, and
// nothing downstream is invalidated. ConfirmWinner and UndoWinner stay the
// guarded path.
func (b *Bracket) ForceSetSlot(ref MatchRef, side Side, team *TeamID) (*Bracket, error) {
	if side != SideA && side != SideB {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSide, string(side))
	}

	next := b.Clone()
	m := next.match(ref)
	if m == nil {
		return nil, fmt.Errorf("%w: %s", ErrMatchNotFound, ref)
	}

	if team == nil {
		m.slot(side).TeamID = nil
	} else {
		m.setTeam(side, *team)
	}
	return next, nil
}
