package script

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// DigitPrefix is prepended to identifiers that would start with a digit.
const DigitPrefix = "sketch"

// fallbackName is used for names without any alphanumeric character.
const fallbackName = "unnamed"

var wordPattern = regexp.MustCompile(`[a-zA-Z0-9]+`)

// SafeName turns a host name into an identifier: non-alphanumeric runs
// separate words, the first word is lower-cased and the remaining words are
// capitalised ("Base Plate_2" -> "basePlate2").
func SafeName(name string) string {
	words := wordPattern.FindAllString(name, -1)
	if len(words) == 0 {
		return fallbackName
	}
	var b strings.Builder
	b.WriteString(strings.ToLower(words[0]))
	for _, w := range words[1:] {
		b.WriteString(capitalize(w))
	}
	s := b.String()
	if unicode.IsDigit(rune(s[0])) {
		s = DigitPrefix + strings.ToUpper(s[:1]) + s[1:]
	}
	return s
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(w string) string {
	if w == "" {
		return w
	}
	return strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
}

// NameAllocator hands out identifiers for one translation run. A single
// counter numbers every generated variable; names are never handed out twice.
type NameAllocator struct {
	counter int
	used    map[string]bool
}

// NewNameAllocator returns an allocator with its counter at zero.
func NewNameAllocator() *NameAllocator {
	return &NameAllocator{used: make(map[string]bool)}
}

// Next advances the run counter and returns its new value.
func (a *NameAllocator) Next() int {
	a.counter++
	return a.counter
}

// Numbered returns prefix followed by the next counter value, zero padded to
// width digits, skipping values whose name is already taken.
func (a *NameAllocator) Numbered(prefix string, width int) string {
	for {
		name := fmt.Sprintf("%s%0*d", prefix, width, a.Next())
		if !a.used[name] {
			a.used[name] = true
			return name
		}
	}
}

// Unique reserves base, or base with the smallest numeric suffix (from 2)
// that is still free.
func (a *NameAllocator) Unique(base string) string {
	name := base
	for i := 2; a.used[name]; i++ {
		name = fmt.Sprintf("%s%d", base, i)
	}
	a.used[name] = true
	return name
}

// Taken reports whether name has been handed out.
func (a *NameAllocator) Taken(name string) bool {
	return a.used[name]
}
