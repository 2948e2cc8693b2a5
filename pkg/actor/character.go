package actor

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jwebster45206/d20"
)

const (
	DefaultClass = "Adventurer"
	DefaultMaxHP = 10
)

// Character is a player's character sheet. HP is tracked by the embedded
// d20.Actor; class, level and inventory live on the sheet itself.
type Character struct {
	Class     string
	Level     int
	Inventory []string

	actor *d20.Actor
}

// NewCharacter creates a level 1 character at full HP with an empty
// inventory. Empty class and non-positive maxHP fall back to defaults.
func NewCharacter(name, class string, maxHP int) (*Character, error) {
	class = strings.TrimSpace(class)
	if class == "" {
		class = DefaultClass
	}
	if maxHP <= 0 {
		maxHP = DefaultMaxHP
	}

	a, err := d20.NewActor(name).
		WithHP(maxHP).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build actor: %w", err)
	}

	return &Character{
		Class:     class,
		Level:     1,
		Inventory: make([]string, 0),
		actor:     a,
	}, nil
}

// HP returns current hit points.
func (c *Character) HP() int {
	return c.actor.HP()
}

// MaxHP returns maximum hit points.
func (c *Character) MaxHP() int {
	return c.actor.MaxHP()
}

// ApplyDamage subtracts amount from current HP, flooring at zero, and
// returns the new HP.
func (c *Character) ApplyDamage(amount int) (int, error) {
	hp := c.actor.HP() - amount
	if hp < 0 {
		hp = 0
	}
	if err := c.actor.SetHP(hp); err != nil {
		return c.actor.HP(), fmt.Errorf("failed to set HP: %w", err)
	}
	return hp, nil
}

// AddItem appends an item to the character's inventory.
func (c *Character) AddItem(item string) {
	c.Inventory = append(c.Inventory, item)
}

// Describe returns a one-line summary used as player context in DM
// prompts, e.g. "Level 1 Fighter, HP 8/12, carrying: Rusty Sword".
func (c *Character) Describe() string {
	sb := strings.Builder{}
	fmt.Fprintf(&sb, "Level %d %s, HP %d/%d", c.Level, c.Class, c.HP(), c.MaxHP())
	if len(c.Inventory) > 0 {
		sb.WriteString(", carrying: ")
		sb.WriteString(strings.Join(c.Inventory, ", "))
	}
	return sb.String()
}

// MarshalJSON serializes the character sheet, reading current HP state
// from the runtime actor.
func (c *Character) MarshalJSON() ([]byte, error) {
	if c == nil {
		return []byte("null"), nil
	}
	type characterJSON struct {
		Class     string   `json:"class"`
		Level     int      `json:"level"`
		HP        int      `json:"hp"`
		MaxHP     int      `json:"max_hp"`
		Inventory []string `json:"inventory"`
	}
	inv := c.Inventory
	if inv == nil {
		inv = []string{}
	}
	return json.Marshal(characterJSON{
		Class:     c.Class,
		Level:     c.Level,
		HP:        c.HP(),
		MaxHP:     c.MaxHP(),
		Inventory: inv,
	})
}
