package game

import (
	"math/rand"
	"strings"
)

// MessageKind classifies an inbound chat line.
type MessageKind int

const (
	// KindChat is plain table talk; it is relayed but never narrated.
	KindChat MessageKind = iota
	// KindAction triggers DM narration.
	KindAction
)

// ReplyEffect classifies a DM reply's side effect on the acting
// player's character.
type ReplyEffect int

const (
	EffectNone ReplyEffect = iota
	EffectLoot
	EffectDamage
)

// actionPrefixes mark first-person or group intent.
var actionPrefixes = []string{"i ", "we ", "group:", "the party"}

// actionKeywords mark verbs (or a question) the DM should resolve.
var actionKeywords = []string{"attack", "cast", "investigate", "roll", "look", "search", "open", "?"}

var lootKeywords = []string{"find", "loot", "treasure"}

var damageKeywords = []string{"damage", "wounded", "hit points"}

// rollKeywords in a DM reply trigger a synthesized d20 annotation.
var rollKeywords = []string{"roll", "attack", "check", "save"}

// lootCatalog is the fixed pool of items the DM can hand out.
var lootCatalog = []string{"Potion of Healing", "Rusty Sword", "Gold Coin", "Magic Scroll"}

// Classify tags a player message as chat or as an action that should be
// narrated by the DM.
func Classify(text string) MessageKind {
	lower := strings.ToLower(text)
	for _, prefix := range actionPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return KindAction
		}
	}
	for _, keyword := range actionKeywords {
		if strings.Contains(lower, keyword) {
			return KindAction
		}
	}
	return KindChat
}

// ClassifyReply tags a DM reply with its character-sheet side effect.
// Loot wins when a reply mentions both.
func ClassifyReply(text string) ReplyEffect {
	lower := strings.ToLower(text)
	for _, keyword := range lootKeywords {
		if strings.Contains(lower, keyword) {
			return EffectLoot
		}
	}
	for _, keyword := range damageKeywords {
		if strings.Contains(lower, keyword) {
			return EffectDamage
		}
	}
	return EffectNone
}

// WantsRollAnnotation reports whether a DM reply implies dice were
// rolled and should carry a synthesized d20 result.
func WantsRollAnnotation(text string) bool {
	lower := strings.ToLower(text)
	for _, keyword := range rollKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// RandomLoot picks one item from the fixed catalog.
func RandomLoot() string {
	return lootCatalog[rand.Intn(len(lootCatalog))]
}
