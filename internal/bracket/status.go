package bracket

// FinalsState is how far along the championship is. The bracket document is
// the only source of truth; the state is derived, never stored.
type FinalsState string

const (
	StateNoChampions FinalsState = "NO_CHAMPIONS"
	StateGF1Pending  FinalsState = "GF1_PENDING"
	StateGF2Pending  FinalsState = "GF2_PENDING"
	StateDone        FinalsState = "DONE"
)

type Status struct {
	State    FinalsState `json:"state"`
	Complete bool        `json:"complete"`
	Champion *TeamID     `json:"champion"`
	RunnerUp *TeamID     `json:"runnerUp"`
}

// Status summarizes the championship. Single elimination completes when the
// final winners match is decided. Double elimination runs through the grand
// final: gf1 pending once both champions are seated, the reset game pending
// if the losers-bracket champion takes gf1, done otherwise.
func (b *Bracket) Status() Status {
	if b.Format == SingleElimination {
		final := roundMatch(b.Winners, len(b.Winners), 0)
		if final == nil || final.WinnerID == nil {
			return Status{State: StateNoChampions}
		}
		return decided(*final.WinnerID, final)
	}

	if b.Finals == nil || b.Finals.GF1 == nil || !b.Finals.GF1.Ready() {
		return Status{State: StateNoChampions}
	}

	gf1 := b.Finals.GF1
	if gf1.WinnerID == nil {
		return Status{State: StateGF1Pending}
	}

	gf2 := b.Finals.GF2
	if gf2 == nil {
		return decided(*gf1.WinnerID, gf1)
	}
	if gf2.WinnerID == nil {
		return Status{State: StateGF2Pending}
	}
	return decided(*gf2.WinnerID, gf2)
}

func decided(champion TeamID, m *MatchNode) Status {
	s := Status{State: StateDone, Complete: true}
	c := champion
	s.Champion = &c
	if opp := m.Opponent(champion); opp != nil {
		r := *opp
		s.RunnerUp = &r
	}
	return s
}
