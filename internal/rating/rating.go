// internal/rating/rating.go
package rating

import "math"

const (
	// KFactor bounds how far one game can move a rating.
	KFactor = 32.0

	// Floor is the lowest rating a player can drop to.
	Floor = 100
)

// Expected returns the probability that a player rated a beats a player rated b.
func Expected(a, b int) float64 {
	return 1.0 / (1.0 + math.Pow(10, float64(b-a)/400.0))
}

// UpdateHeadToHead returns the new ratings after winner beat loser. The two changes always
// sum to zero unless the loser hits the floor.
func UpdateHeadToHead(winner, loser int) (newWinner, newLoser int) {
	delta := int(math.Round(KFactor * (1 - Expected(winner, loser))))
	newWinner = winner + delta
	newLoser = loser - delta
	if newLoser < Floor {
		newLoser = Floor
	}
	return newWinner, newLoser
}
