// Package command turns typed player input into game commands. Typos within
// a small edit distance of a known word are accepted.
package command

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/tatianab/pips-pilgrimage/internal/models"
)

type Kind int

const (
	Unknown Kind = iota
	Act
	Choose
	Restart
	Quit
	Mark
	Help
)

// Command is one parsed line of input.
type Command struct {
	Kind   Kind
	Action models.Action // set for Act
	Choice int           // zero-based, set for Choose
	Label  string        // set for Mark
	Raw    string
}

var actionWords = map[string]models.Action{
	"travel": models.ActionTravel,
	"walk":   models.ActionTravel,
	"march":  models.ActionTravel,
	"climb":  models.ActionTravel,
	"go":     models.ActionTravel,
	"t":      models.ActionTravel,
	"rest":   models.ActionRest,
	"sleep":  models.ActionRest,
	"camp":   models.ActionRest,
	"r":      models.ActionRest,
	"forage": models.ActionForage,
	"fish":   models.ActionForage,
	"hunt":   models.ActionForage,
	"search": models.ActionForage,
	"f":      models.ActionForage,
}

var slashWords = map[string]Kind{
	"restart": Restart,
	"new":     Restart,
	"quit":    Quit,
	"exit":    Quit,
	"q":       Quit,
	"mark":    Mark,
	"help":    Help,
}

// Parse reads one line. It never fails; unrecognised input has Kind Unknown.
func Parse(raw string) Command {
	cmd := Command{Raw: raw}
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return cmd
	}

	if strings.HasPrefix(trimmed, "/") {
		word, rest, _ := strings.Cut(trimmed[1:], " ")
		kind, ok := slashWords[strings.ToLower(word)]
		if !ok {
			if match, found := closest(strings.ToLower(word), keys(slashWords)); found {
				kind, ok = slashWords[match], true
			}
		}
		if !ok {
			return cmd
		}
		cmd.Kind = kind
		if kind == Mark {
			cmd.Label = strings.TrimSpace(rest)
			if cmd.Label == "" {
				cmd.Kind = Unknown
			}
		}
		return cmd
	}

	if n, err := strconv.Atoi(trimmed); err == nil {
		if n < 1 {
			return cmd
		}
		cmd.Kind, cmd.Choice = Choose, n-1
		return cmd
	}

	tokens := strings.Fields(normaliseInput(trimmed))
	if len(tokens) == 0 {
		return cmd
	}
	word := tokens[0]
	if a, ok := actionWords[word]; ok {
		cmd.Kind, cmd.Action = Act, a
		return cmd
	}
	if match, ok := closest(word, keys(actionWords)); ok {
		cmd.Kind, cmd.Action = Act, actionWords[match]
	}
	return cmd
}

// closest returns the candidate nearest to token, if one is near enough.
// Ties go to the alphabetically first candidate so parsing is stable.
func closest(token string, candidates []string) (string, bool) {
	best, bestDist := "", -1
	for _, cand := range candidates {
		if len(cand) < 3 {
			continue
		}
		dist := levenshtein.ComputeDistance(token, cand)
		if dist > levenshteinLimit(len(cand)) {
			continue
		}
		if bestDist < 0 || dist < bestDist {
			best, bestDist = cand, dist
		}
	}
	return best, bestDist >= 0
}

func levenshteinLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}

var multiSpaceRE = regexp.MustCompile(`\s+`)

func normaliseInput(raw string) string {
	raw = strings.TrimSpace(strings.ToLower(raw))
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '\t', r == '-', r == '_', r == '\'':
			b.WriteByte(' ')
		}
	}
	return strings.TrimSpace(multiSpaceRE.ReplaceAllString(b.String(), " "))
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// HelpText lists the commands Parse understands.
const HelpText = "travel, rest, forage (or walk, sleep, fish) · 1-3 to answer an encounter · /mark <label> · /restart · /quit"
