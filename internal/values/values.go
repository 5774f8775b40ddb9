// Package values holds the built-in lists of card faces a game can be
// dealt from.
package values

import (
	"slices"
	"sort"
)

var sets = map[string][]string{
	"emoji": {
		"🍎", "🍌", "🍒", "🍇", "🍉", "🍋", "🍑", "🍍", "🥝", "🥥", "🍓", "🫐",
		"🥕", "🌽", "🥦", "🍄", "🌶", "🥑", "🍆", "🥔", "🧄", "🧅", "🥜", "🌰",
	},
	"letters": {
		"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L", "M",
		"N", "O", "P", "Q", "R", "S", "T", "U", "V", "W", "X", "Y", "Z",
	},
	"numbers": {
		"1", "2", "3", "4", "5", "6", "7", "8", "9", "10",
		"11", "12", "13", "14", "15", "16", "17", "18", "19", "20",
	},
	"animals": {
		"cat", "dog", "fox", "owl", "bee", "cow", "pig", "hen",
		"yak", "elk", "ant", "bat", "eel", "emu", "gnu", "ram",
	},
}

// Lookup returns a copy of the named set.
func Lookup(name string) ([]string, bool) {
	set, ok := sets[name]
	if !ok {
		return nil, false
	}
	return slices.Clone(set), true
}

// Names returns the available set names in sorted order.
func Names() []string {
	names := make([]string, 0, len(sets))
	for name := range sets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Size returns the number of distinct faces in the named set, or 0.
func Size(name string) int {
	return len(sets[name])
}
