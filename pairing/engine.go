// Package pairing computes Swiss-system pairings for the next round of a
// tournament from the current standings and the pairings already played.
package pairing

import (
	"errors"
	"fmt"
)

// maxSearchSteps bounds the backtracking search per bye candidate. Pruning
// and the dead-state memo keep real inputs far below it.
const maxSearchSteps = 1_000_000

// Player is one entry of the ranked standings handed to Pair. The slice order
// is the ranking; ties are expected to be broken by the caller.
type Player struct {
	ID            int
	Name          string
	Wins          int
	Draws         int
	MatchesPlayed int
	HadBye        bool
}

// Pairing is a single line of the next round. Player2 is nil when Player1
// receives the bye.
type Pairing struct {
	Player1 Player
	Player2 *Player
}

func (p Pairing) IsBye() bool {
	return p.Player2 == nil
}

// Pair walks the ranked players and pairs each unpaired player with the
// nearest-ranked unpaired player they have not played yet. A dead end further
// down the list backtracks to the next candidate, so the result is the first
// rematch-free pairing in rank order.
//
// With an odd number of players one player sits out. The bye goes to the
// lowest-ranked player without a previous bye whose absence still leaves a
// valid pairing; players that already had a bye are only considered when no
// such player exists.
//
// Pairings are returned ordered by the rank of their better-placed member and
// Player1 is always the better-ranked side. Pair has no side effects and is
// deterministic.
func Pair(players []Player, played History) ([]Pairing, error) {
	if len(players) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrInsufficientPlayers, len(players))
	}

	seen := make(map[int]struct{}, len(players))
	for _, p := range players {
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("%w: id %d", ErrDuplicatePlayer, p.ID)
		}
		seen[p.ID] = struct{}{}
	}

	if len(players)%2 == 0 {
		pairs, err := search(players, played, -1)
		if err != nil {
			return nil, err
		}
		return build(players, pairs, -1), nil
	}

	for _, bye := range byeCandidates(players) {
		pairs, err := search(players, played, bye)
		switch {
		case err == nil:
			return build(players, pairs, bye), nil
		case errors.Is(err, ErrSearchExhausted):
			return nil, fmt.Errorf("%w: bye candidate %d", err, players[bye].ID)
		}
	}
	return nil, ErrNoValidPairing
}

// byeCandidates lists indices in the order they are offered the bye:
// lowest-ranked first among players without a bye, then the rest.
func byeCandidates(players []Player) []int {
	fresh := make([]int, 0, len(players))
	repeat := make([]int, 0)
	for i := len(players) - 1; i >= 0; i-- {
		if players[i].HadBye {
			repeat = append(repeat, i)
		} else {
			fresh = append(fresh, i)
		}
	}
	return append(fresh, repeat...)
}

// search runs a depth-first pairing over rank indices, skipping the index
// given as bye (-1 for none). Pairs come back sorted by their first index.
//
// A branch is cut as soon as some unpaired player has no eligible unpaired
// opponent left. The remaining sub-problem depends only on the set of paired
// indices, so for up to 64 players that set is kept as a bitmask and states
// already proven dead are skipped.
func search(players []Player, played History, bye int) ([][2]int, error) {
	n := len(players)
	eligible := make([][]bool, n)
	for i := range eligible {
		eligible[i] = make([]bool, n)
		for j := range eligible[i] {
			eligible[i][j] = i != j && !played.Has(players[i].ID, players[j].ID)
		}
	}

	paired := make([]bool, n)
	memo := n <= 64
	var mask uint64
	dead := make(map[uint64]struct{})
	mark := func(k int, on bool) {
		paired[k] = on
		if !memo {
			return
		}
		if on {
			mask |= 1 << uint(k)
		} else {
			mask &^= 1 << uint(k)
		}
	}
	if bye >= 0 {
		mark(bye, true)
	}

	// viable: у каждого свободного игрока остался допустимый соперник
	viable := func() bool {
		for k := 0; k < n; k++ {
			if paired[k] {
				continue
			}
			ok := false
			for l := 0; l < n; l++ {
				if !paired[l] && eligible[k][l] {
					ok = true
					break
				}
			}
			if !ok {
				return false
			}
		}
		return true
	}

	out := make([][2]int, 0, n/2)
	steps := 0
	exhausted := false

	var walk func(from int) bool
	walk = func(from int) bool {
		i := from
		for i < n && paired[i] {
			i++
		}
		if i == n {
			return true
		}
		state := mask
		if memo {
			if _, ok := dead[state]; ok {
				return false
			}
		}
		if !viable() {
			if memo {
				dead[state] = struct{}{}
			}
			return false
		}

		mark(i, true)
		for j := i + 1; j < n; j++ {
			if paired[j] || !eligible[i][j] {
				continue
			}
			steps++
			if steps > maxSearchSteps {
				exhausted = true
				break
			}
			mark(j, true)
			out = append(out, [2]int{i, j})
			if walk(i + 1) {
				return true
			}
			out = out[:len(out)-1]
			mark(j, false)
			if exhausted {
				break
			}
		}
		mark(i, false)
		if memo && !exhausted {
			dead[state] = struct{}{}
		}
		return false
	}

	if walk(0) {
		return out, nil
	}
	if exhausted {
		return nil, fmt.Errorf("%w after %d steps", ErrSearchExhausted, maxSearchSteps)
	}
	return nil, ErrNoValidPairing
}

func build(players []Player, pairs [][2]int, bye int) []Pairing {
	result := make([]Pairing, 0, len(pairs)+1)
	byePlaced := bye < 0
	for _, pr := range pairs {
		if !byePlaced && bye < pr[0] {
			result = append(result, Pairing{Player1: players[bye]})
			byePlaced = true
		}
		opponent := players[pr[1]]
		result = append(result, Pairing{Player1: players[pr[0]], Player2: &opponent})
	}
	if !byePlaced {
		result = append(result, Pairing{Player1: players[bye]})
	}
	return result
}
