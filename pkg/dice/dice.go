// Package dice rolls dice expressed in tabletop notation ("d20", "d6").
package dice

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/KirkDiggler/rpg-toolkit/dice"
)

// dieTypeRegex matches a die type like "d20" or "D6".
var dieTypeRegex = regexp.MustCompile(`^d(\d+)$`)

// Result holds the outcome of a dice roll.
type Result struct {
	Total    int    `json:"total"`
	Notation string `json:"notation"` // e.g. "2d6+3"
	Detail   string `json:"detail"`   // per-die breakdown from the roller
}

// Roll rolls num dice of the given type and adds modifier.
// A num of zero or less rolls a single die.
func Roll(dieType string, num, modifier int) (Result, error) {
	sides, err := parseDieType(dieType)
	if err != nil {
		return Result{}, err
	}
	if num <= 0 {
		num = 1
	}

	roll, err := dice.NewRoll(num, sides)
	if err != nil {
		return Result{}, fmt.Errorf("failed to roll %dd%d: %w", num, sides, err)
	}

	return Result{
		Total:    roll.GetValue() + modifier,
		Notation: notation(num, sides, modifier),
		Detail:   roll.GetDescription(),
	}, nil
}

// D20 rolls a single unmodified d20. Used for DM roll annotations.
func D20() int {
	roll, err := dice.NewRoll(1, 20)
	if err != nil {
		// NewRoll only fails on non-positive count or size.
		return 1
	}
	return roll.GetValue()
}

// D6 rolls a single unmodified d6. Used for DM-inflicted damage.
func D6() int {
	roll, err := dice.NewRoll(1, 6)
	if err != nil {
		return 1
	}
	return roll.GetValue()
}

// parseDieType extracts the number of sides from a die type like "d20".
func parseDieType(dieType string) (int, error) {
	matches := dieTypeRegex.FindStringSubmatch(strings.ToLower(strings.TrimSpace(dieType)))
	if len(matches) != 2 {
		return 0, fmt.Errorf("invalid die type %q (expected format: dN)", dieType)
	}
	sides, err := strconv.Atoi(matches[1])
	if err != nil || sides <= 0 {
		return 0, fmt.Errorf("invalid die size in %q", dieType)
	}
	return sides, nil
}

func notation(num, sides, modifier int) string {
	n := fmt.Sprintf("%dd%d", num, sides)
	switch {
	case modifier > 0:
		return fmt.Sprintf("%s+%d", n, modifier)
	case modifier < 0:
		return fmt.Sprintf("%s%d", n, modifier)
	default:
		return n
	}
}
