package parse

import (
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	"focus-planner/internal/model"
)

// Result is what a single line of free text breaks down into. Absent
// date or recurrence stay nil; the title falls back to the cleaned
// (possibly empty) text. Parsing never fails.
type Result struct {
	Title      string
	DueDate    *time.Time
	Priority   int
	Recurrence *model.RecurrenceRule
}

// recurrenceVocabulary is the user-facing phrase contract: tested
// case-insensitively, in this exact order, first substring match wins.
// Changing the set or the order changes observable parsing results.
var recurrenceVocabulary = []struct {
	phrase    string
	frequency model.Frequency
}{
	{"every day", model.Daily},
	{"daily", model.Daily},
	{"weekly", model.Weekly},
	{"monthly", model.Monthly},
	{"every week", model.Weekly},
	{"every month", model.Monthly},
	{"every year", model.Yearly},
}

// Parser extracts task fields from free-form text.
type Parser struct {
	when *when.Parser
}

func NewParser() *Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &Parser{when: w}
}

// Parse runs the extraction pipeline: trim, pull out the first
// natural-language date phrase, infer priority from keyword cues,
// scrub emphasis punctuation, detect a recurrence phrase, and return
// what is left as the title. Only the first date phrase is extracted
// and removed; later ones stay in the title.
func (p *Parser) Parse(text string, now time.Time) Result {
	text = strings.TrimSpace(text)

	var dueDate *time.Time
	if match, err := p.when.Parse(text, now); err == nil && match != nil {
		resolved := match.Time
		dueDate = &resolved
		text = strings.TrimSpace(text[:match.Index] + text[match.Index+len(match.Text):])
	}

	priority := detectPriority(text)

	// Longest run first, so no stray '!' survives. Cosmetic only: the
	// priority signal above is keyword-driven, not punctuation-driven.
	for _, run := range []string{"!!!", "!!", "!"} {
		text = strings.ReplaceAll(text, run, "")
	}
	text = strings.TrimSpace(text)

	recurrence, text := detectRecurrence(text)

	return Result{
		Title:      text,
		DueDate:    dueDate,
		Priority:   priority,
		Recurrence: recurrence,
	}
}

// detectPriority scans words left to right: "urgent" reads as priority
// 3, "important" as 2, default 1. The scan never stops early, so when
// both cues appear the later one wins.
func detectPriority(text string) int {
	priority := 1
	for _, word := range strings.Fields(text) {
		switch strings.ToLower(strings.Trim(word, "!?.,:;")) {
		case "urgent":
			priority = 3
		case "important":
			priority = 2
		}
	}
	return priority
}

// detectRecurrence tests the vocabulary in order against the lowered
// text. On a hit it returns the rule plus the title with ALL known
// phrases stripped (lower-cased as a side effect of that pass); on a
// miss the text comes back untouched, original casing included.
func detectRecurrence(text string) (*model.RecurrenceRule, string) {
	lowered := strings.ToLower(text)

	var rule *model.RecurrenceRule
	for _, entry := range recurrenceVocabulary {
		if strings.Contains(lowered, entry.phrase) {
			rule = &model.RecurrenceRule{Frequency: entry.frequency}
			break
		}
	}
	if rule == nil {
		return nil, text
	}

	for _, entry := range recurrenceVocabulary {
		lowered = strings.ReplaceAll(lowered, entry.phrase, "")
	}
	return rule, strings.TrimSpace(lowered)
}
