// Package raids holds the static table of scrapeable encounters: every
// raid gate the remote logging service knows about, the encounter-name
// variants it reports for that gate, and the difficulties it can run at.
package raids

import (
	"fmt"
	"strings"

	"github.com/antzucaro/matchr"
)

type Difficulty string

const (
	DifficultyNone   Difficulty = ""
	DifficultyNormal Difficulty = "Normal"
	DifficultyHard   Difficulty = "Hard"
)

func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(s) {
	case "":
		return DifficultyNone, nil
	case "normal":
		return DifficultyNormal, nil
	case "hard":
		return DifficultyHard, nil
	}
	return DifficultyNone, fmt.Errorf("unknown difficulty %q (want Normal or Hard)", s)
}

// Raid is one row of the static table. Gate 0 marks a guardian-style
// encounter with no gates and no difficulty selection.
type Raid struct {
	Boss         string
	Gate         int
	Difficulties []Difficulty
	// Names are the boss name variants the service reports for this gate.
	Names []string
}

func (r Raid) Guardian() bool {
	return r.Gate == 0
}

// Selection is one concrete (boss, gate, difficulty) scrape target.
type Selection struct {
	Boss       string
	Gate       int
	Difficulty Difficulty
}

func (s Selection) String() string {
	if s.Gate == 0 {
		return s.Boss
	}
	if s.Difficulty == DifficultyNone {
		return fmt.Sprintf("%s G%d", s.Boss, s.Gate)
	}
	return fmt.Sprintf("%s G%d %s", s.Boss, s.Gate, s.Difficulty)
}

var table = []Raid{
	{
		Boss:  "Argeos",
		Names: []string{"Argeos"},
	},
	{
		Boss:         "Echidna",
		Gate:         1,
		Difficulties: []Difficulty{DifficultyHard},
		Names:        []string{"Red Doom Narkiel", "Agris"},
	},
	{
		Boss:         "Echidna",
		Gate:         2,
		Difficulties: []Difficulty{DifficultyHard},
		Names: []string{
			"Echidna",
			"Covetous Master Echidna",
			"Desire in Full Bloom, Echidna",
			"Alcaone, the Twisted Venom",
			"Agris, the Devouring Bog",
		},
	},
	{
		Boss:         "Behemoth",
		Gate:         1,
		Difficulties: []Difficulty{DifficultyNormal},
		Names: []string{
			"Behemoth, the Storm Commander",
			"Despicable Skolakia",
			"Untrue Crimson Yoho",
			"Ruthless Lakadroff",
			"Vicious Argeos",
		},
	},
	{
		Boss:         "Behemoth",
		Gate:         2,
		Difficulties: []Difficulty{DifficultyNormal},
		Names:        []string{"Behemoth, Cruel Storm Slayer"},
	},
	{
		Boss:         "Aegir",
		Gate:         1,
		Difficulties: []Difficulty{DifficultyNormal, DifficultyHard},
		Names:        []string{"Akkan, Lord of Death", "Abyss Monarch Aegir"},
	},
	{
		Boss:         "Aegir",
		Gate:         2,
		Difficulties: []Difficulty{DifficultyNormal, DifficultyHard},
		Names:        []string{"Aegir, the Oppressor", "Pulsating Giant's Heart"},
	},
}

func init() {
	if err := validate(table); err != nil {
		panic(err)
	}
}

func validate(rs []Raid) error {
	seen := map[string]bool{}
	for _, r := range rs {
		key := fmt.Sprintf("%s G%d", r.Boss, r.Gate)
		if r.Boss == "" {
			return fmt.Errorf("raid table: empty boss name")
		}
		if seen[key] {
			return fmt.Errorf("raid table: duplicate entry %s", key)
		}
		seen[key] = true
		if len(r.Names) == 0 {
			return fmt.Errorf("raid table: %s has no encounter name variants", key)
		}
		if r.Guardian() && len(r.Difficulties) > 0 {
			return fmt.Errorf("raid table: guardian %s must not list difficulties", r.Boss)
		}
		if !r.Guardian() && len(r.Difficulties) == 0 {
			return fmt.Errorf("raid table: %s must list at least one difficulty", key)
		}
		for _, d := range r.Difficulties {
			if d != DifficultyNormal && d != DifficultyHard {
				return fmt.Errorf("raid table: %s has invalid difficulty %q", key, d)
			}
		}
	}
	return nil
}

// Lookup resolves a (boss, gate) pair against the table. Gate 0 matches
// guardians only.
func Lookup(boss string, gate int) (Raid, error) {
	for _, r := range table {
		if r.Boss == boss && r.Gate == gate {
			return r, nil
		}
	}
	if gate == 0 {
		return Raid{}, fmt.Errorf("unknown boss %q", boss)
	}
	return Raid{}, fmt.Errorf("unknown boss/gate pair %q G%d", boss, gate)
}

// Suggest returns the closest known boss name by edit distance, or ""
// when nothing is remotely close.
func Suggest(boss string) string {
	best := ""
	bestDist := 4
	for _, r := range table {
		d := matchr.Levenshtein(strings.ToLower(boss), strings.ToLower(r.Boss))
		if d < bestDist {
			best = r.Boss
			bestDist = d
		}
	}
	return best
}

// All returns the table in declaration order.
func All() []Raid {
	out := make([]Raid, len(table))
	copy(out, table)
	return out
}

// Selections expands the table into every concrete scrape target, newest
// raids first (reverse declaration order).
func Selections() []Selection {
	var out []Selection
	for i := len(table) - 1; i >= 0; i-- {
		r := table[i]
		if r.Guardian() {
			out = append(out, Selection{Boss: r.Boss})
			continue
		}
		for _, d := range r.Difficulties {
			out = append(out, Selection{Boss: r.Boss, Gate: r.Gate, Difficulty: d})
		}
	}
	return out
}
