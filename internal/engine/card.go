// internal/engine/card.go
package engine

import "fmt"

// Color is the color printed on a card. Wild cards carry ColorWild until played,
// at which point the player names one of the four suit colors.
type Color string

const (
	ColorRed    Color = "red"
	ColorYellow Color = "yellow"
	ColorGreen  Color = "green"
	ColorBlue   Color = "blue"
	ColorWild   Color = "wild"
)

// SuitColors are the four colors a card can be matched against.
var SuitColors = []Color{ColorRed, ColorYellow, ColorGreen, ColorBlue}

// IsSuit reports whether c is one of the four playable colors.
func (c Color) IsSuit() bool {
	switch c {
	case ColorRed, ColorYellow, ColorGreen, ColorBlue:
		return true
	}
	return false
}

// Kind identifies what a card does when played.
type Kind string

const (
	KindNumber       Kind = "number"
	KindSkip         Kind = "skip"
	KindReverse      Kind = "reverse"
	KindDrawTwo      Kind = "drawTwo"
	KindWild         Kind = "wild"
	KindWildDrawFour Kind = "wildDrawFour"
)

// Kinds lists every card kind.
var Kinds = []Kind{KindNumber, KindSkip, KindReverse, KindDrawTwo, KindWild, KindWildDrawFour}

// IsWild reports whether the kind requires a color choice when played.
func (k Kind) IsWild() bool {
	return k == KindWild || k == KindWildDrawFour
}

// Card is an immutable card instance. Value is set only for number cards.
type Card struct {
	ID    string `json:"id"`
	Color Color  `json:"color"`
	Kind  Kind   `json:"kind"`
	Value *int   `json:"value,omitempty"`
}

// NewNumberCard builds a number card.
func NewNumberCard(id string, color Color, value int) Card {
	v := value
	return Card{ID: id, Color: color, Kind: KindNumber, Value: &v}
}

// NewActionCard builds a skip, reverse, drawTwo, wild or wildDrawFour card.
// Wild kinds always get ColorWild regardless of the color passed.
func NewActionCard(id string, color Color, kind Kind) Card {
	if kind.IsWild() {
		color = ColorWild
	}
	return Card{ID: id, Color: color, Kind: kind}
}

// Number returns the card's face value and whether it has one.
func (c Card) Number() (int, bool) {
	if c.Kind != KindNumber || c.Value == nil {
		return 0, false
	}
	return *c.Value, true
}

// validate checks the color/kind/value invariants of a single card.
func (c Card) validate() error {
	if c.ID == "" {
		return fmt.Errorf("card has empty id")
	}
	switch c.Kind {
	case KindNumber:
		if c.Value == nil || *c.Value < 0 || *c.Value > 9 {
			return fmt.Errorf("number card %s has invalid value", c.ID)
		}
		if !c.Color.IsSuit() {
			return fmt.Errorf("number card %s has color %q", c.ID, c.Color)
		}
	case KindSkip, KindReverse, KindDrawTwo:
		if c.Value != nil {
			return fmt.Errorf("action card %s carries a value", c.ID)
		}
		if !c.Color.IsSuit() {
			return fmt.Errorf("action card %s has color %q", c.ID, c.Color)
		}
	case KindWild, KindWildDrawFour:
		if c.Value != nil {
			return fmt.Errorf("wild card %s carries a value", c.ID)
		}
		if c.Color != ColorWild {
			return fmt.Errorf("wild card %s has color %q", c.ID, c.Color)
		}
	default:
		return fmt.Errorf("card %s has unknown kind %q", c.ID, c.Kind)
	}
	return nil
}

func (c Card) String() string {
	if n, ok := c.Number(); ok {
		return fmt.Sprintf("%s %d", c.Color, n)
	}
	return fmt.Sprintf("%s %s", c.Color, c.Kind)
}
