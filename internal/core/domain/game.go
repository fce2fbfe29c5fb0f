package domain

import "time"

type GamePhase string

const (
	PhaseLobby  GamePhase = "lobby"
	PhaseActive GamePhase = "active"
)

// Outcome is one chamber slot of the revolver.
type Outcome string

const (
	OutcomeBlank Outcome = "blank"
	OutcomeLive  Outcome = "live"
)

// NewChamber builds an unshuffled chamber of the given composition.
func NewChamber(blanks, live int) []Outcome {
	chamber := make([]Outcome, 0, blanks+live)
	for i := 0; i < blanks; i++ {
		chamber = append(chamber, OutcomeBlank)
	}
	for i := 0; i < live; i++ {
		chamber = append(chamber, OutcomeLive)
	}
	return chamber
}

// GameSession is the full lobby/active state of one group's elimination
// game. It is owned exclusively by the game engine's per-group registry;
// all mutation happens under that group's lock.
type GameSession struct {
	Group        GroupID
	Phase        GamePhase
	Host         AccountID
	Roster       []AccountID
	DisplayNames map[AccountID]string

	// Chamber is the draw queue (front = next pull). ChamberTemplate keeps
	// the original composition for refills after every elimination.
	Chamber         []Outcome
	ChamberTemplate []Outcome

	AliveOrder []AccountID
	Eliminated []AccountID
	TurnIndex  int

	// WaitingOn is the account whose turn timer is armed, or zero. Timers
	// re-check it on fire instead of being cancelled.
	WaitingOn AccountID

	CreatedAt time.Time
}

func (s *GameSession) Joined(a AccountID) bool {
	for _, id := range s.Roster {
		if id == a {
			return true
		}
	}
	return false
}

func (s *GameSession) Alive(a AccountID) bool {
	for _, id := range s.AliveOrder {
		if id == a {
			return true
		}
	}
	return false
}

// RemoveAlive moves an account from the alive ring to the eliminated set.
func (s *GameSession) RemoveAlive(a AccountID) {
	for i, id := range s.AliveOrder {
		if id == a {
			s.AliveOrder = append(s.AliveOrder[:i], s.AliveOrder[i+1:]...)
			s.Eliminated = append(s.Eliminated, a)
			return
		}
	}
}

// CountOutcomes reports the remaining chamber composition for status lines.
func (s *GameSession) CountOutcomes() (blanks, live int) {
	for _, o := range s.Chamber {
		if o == OutcomeLive {
			live++
		} else {
			blanks++
		}
	}
	return blanks, live
}

// Name returns the display-name snapshot taken at join time.
func (s *GameSession) Name(a AccountID) string {
	if n, ok := s.DisplayNames[a]; ok {
		return n
	}
	return "player"
}
