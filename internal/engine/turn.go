// internal/engine/turn.go
package engine

import "fmt"

// NextPlayerIndex returns the seat after the current one in the current direction.
func NextPlayerIndex(s GameState) int {
	n := len(s.Players)
	return (s.TurnIndex + int(s.Direction) + n) % n
}

// DeclareLastCard marks the current player as having called "last card". It is idempotent.
func DeclareLastCard(s GameState) GameState {
	next, err := DeclareLastCardAt(s, s.TurnIndex)
	if err != nil {
		return s
	}
	return next
}

// DeclareLastCardAt marks the player at seat index as having called "last card".
func DeclareLastCardAt(s GameState, index int) (GameState, error) {
	if index < 0 || index >= len(s.Players) {
		return GameState{}, fmt.Errorf("%w: %d", ErrPlayerIndex, index)
	}
	if s.Players[index].HasDeclaredLastCard {
		return s, nil
	}
	p := s.Players[index]
	p.HasDeclaredLastCard = true
	next := s
	next.Players = withPlayer(s.Players, index, p)
	return next, nil
}

// MissedLastCardDeclaration reports whether the current player holds exactly one card without
// having declared it. What to do about it is up to the caller.
func MissedLastCardDeclaration(s GameState) bool {
	if s.TurnIndex < 0 || s.TurnIndex >= len(s.Players) {
		return false
	}
	p := s.Players[s.TurnIndex]
	return len(p.Hand) == 1 && !p.HasDeclaredLastCard
}

// AssignSeat replaces the identity of the player at seat index. Hands are untouched.
func AssignSeat(s GameState, index int, playerID string) (GameState, error) {
	if index < 0 || index >= len(s.Players) {
		return GameState{}, fmt.Errorf("%w: %d", ErrPlayerIndex, index)
	}
	p := s.Players[index]
	p.ID = playerID
	next := s
	next.Players = withPlayer(s.Players, index, p)
	return next, nil
}
