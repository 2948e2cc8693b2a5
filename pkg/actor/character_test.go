package actor

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestNewCharacter(t *testing.T) {
	c, err := NewCharacter("Rin", "Wizard", 12)
	if err != nil {
		t.Fatalf("NewCharacter failed: %v", err)
	}

	if c.Class != "Wizard" {
		t.Errorf("Class = %q, want %q", c.Class, "Wizard")
	}
	if c.Level != 1 {
		t.Errorf("Level = %d, want 1", c.Level)
	}
	if c.HP() != 12 {
		t.Errorf("HP() = %d, want 12", c.HP())
	}
	if c.MaxHP() != 12 {
		t.Errorf("MaxHP() = %d, want 12", c.MaxHP())
	}
	if len(c.Inventory) != 0 {
		t.Errorf("Inventory = %v, want empty", c.Inventory)
	}
}

func TestNewCharacter_Defaults(t *testing.T) {
	c, err := NewCharacter("Tor", "  ", 0)
	if err != nil {
		t.Fatalf("NewCharacter failed: %v", err)
	}
	if c.Class != DefaultClass {
		t.Errorf("Class = %q, want %q", c.Class, DefaultClass)
	}
	if c.MaxHP() != DefaultMaxHP {
		t.Errorf("MaxHP() = %d, want %d", c.MaxHP(), DefaultMaxHP)
	}
}

func TestCharacter_ApplyDamage(t *testing.T) {
	c, err := NewCharacter("Rin", "Fighter", 10)
	if err != nil {
		t.Fatalf("NewCharacter failed: %v", err)
	}

	hp, err := c.ApplyDamage(4)
	if err != nil {
		t.Fatalf("ApplyDamage failed: %v", err)
	}
	if hp != 6 {
		t.Errorf("HP after 4 damage = %d, want 6", hp)
	}

	// Damage past zero floors at zero.
	hp, err = c.ApplyDamage(100)
	if err != nil {
		t.Fatalf("ApplyDamage failed: %v", err)
	}
	if hp != 0 {
		t.Errorf("HP after overkill = %d, want 0", hp)
	}
}

func TestCharacter_AddItem(t *testing.T) {
	c, err := NewCharacter("Rin", "Rogue", 8)
	if err != nil {
		t.Fatalf("NewCharacter failed: %v", err)
	}

	c.AddItem("Gold Coin")
	c.AddItem("Magic Scroll")
	if len(c.Inventory) != 2 || c.Inventory[1] != "Magic Scroll" {
		t.Errorf("Inventory = %v, want [Gold Coin Magic Scroll]", c.Inventory)
	}
}

func TestCharacter_Describe(t *testing.T) {
	c, err := NewCharacter("Rin", "Bard", 9)
	if err != nil {
		t.Fatalf("NewCharacter failed: %v", err)
	}
	c.AddItem("Rusty Sword")

	desc := c.Describe()
	for _, want := range []string{"Level 1 Bard", "HP 9/9", "Rusty Sword"} {
		if !strings.Contains(desc, want) {
			t.Errorf("Describe() = %q, missing %q", desc, want)
		}
	}
}

func TestCharacter_MarshalJSON(t *testing.T) {
	c, err := NewCharacter("Rin", "Cleric", 11)
	if err != nil {
		t.Fatalf("NewCharacter failed: %v", err)
	}
	if _, err = c.ApplyDamage(3); err != nil {
		t.Fatalf("ApplyDamage failed: %v", err)
	}

	data, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var got struct {
		Class     string   `json:"class"`
		Level     int      `json:"level"`
		HP        int      `json:"hp"`
		MaxHP     int      `json:"max_hp"`
		Inventory []string `json:"inventory"`
	}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if got.Class != "Cleric" || got.Level != 1 || got.HP != 8 || got.MaxHP != 11 {
		t.Errorf("unexpected snapshot: %+v", got)
	}
	if got.Inventory == nil {
		t.Error("Inventory should serialize as empty array, not null")
	}
}
