package parse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"focus-planner/internal/model"
)

var parseBase = time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC) // a Monday

func TestParseDatePhrase(t *testing.T) {
	p := NewParser()

	result := p.Parse("Lunch with Amy next Thursday", parseBase)

	assert.Equal(t, "Lunch with Amy", result.Title)
	require.NotNil(t, result.DueDate)
	assert.Equal(t, time.Thursday, result.DueDate.Weekday())
	assert.True(t, result.DueDate.After(parseBase))
	assert.Nil(t, result.Recurrence)
	assert.Equal(t, 1, result.Priority)
}

func TestParseNoDate(t *testing.T) {
	p := NewParser()

	result := p.Parse("  Buy milk  ", parseBase)

	assert.Equal(t, "Buy milk", result.Title, "casing survives when nothing is stripped")
	assert.Nil(t, result.DueDate)
	assert.Nil(t, result.Recurrence)
	assert.Equal(t, 1, result.Priority)
}

func TestParseRecurrence(t *testing.T) {
	p := NewParser()

	tests := []struct {
		input string
		title string
		freq  model.Frequency
	}{
		{"Call mom daily", "call mom", model.Daily},
		{"Water plants every week", "water plants", model.Weekly},
		{"Pay rent every month", "pay rent", model.Monthly},
		{"Review budget monthly", "review budget", model.Monthly},
		{"Renew passport every year", "renew passport", model.Yearly},
		{"Standup notes every day", "standup notes", model.Daily},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := p.Parse(tt.input, parseBase)
			require.NotNil(t, result.Recurrence)
			assert.Equal(t, tt.freq, result.Recurrence.Frequency)
			// The stripping pass lower-cases the remaining title.
			assert.Equal(t, tt.title, result.Title)
		})
	}
}

func TestParseVocabularyOrder(t *testing.T) {
	p := NewParser()

	// "every day" precedes "daily" in the vocabulary; first match wins.
	result := p.Parse("journal every day", parseBase)
	require.NotNil(t, result.Recurrence)
	assert.Equal(t, model.Daily, result.Recurrence.Frequency)
	assert.Equal(t, "journal", result.Title)
}

func TestParsePriorityKeywords(t *testing.T) {
	p := NewParser()

	tests := []struct {
		input    string
		priority int
	}{
		{"fix the boiler urgent", 3},
		{"plan the offsite important", 2},
		{"walk the dog", 1},
		{"Urgent: call the bank", 3},
		// The scan never stops early, so the later cue wins.
		{"this is urgent and important", 2},
		{"this is important and urgent", 3},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := p.Parse(tt.input, parseBase)
			assert.Equal(t, tt.priority, result.Priority)
		})
	}
}

func TestParsePunctuationCleanup(t *testing.T) {
	p := NewParser()

	result := p.Parse("Ship the release!!!", parseBase)
	assert.Equal(t, "Ship the release", result.Title)
	// Emphasis punctuation is cosmetic; it carries no priority signal.
	assert.Equal(t, 1, result.Priority)

	result = p.Parse("Do it! Please!! Really!!!", parseBase)
	assert.Equal(t, "Do it Please Really", result.Title)
}

func TestParseKeepsPriorityWordsInTitle(t *testing.T) {
	p := NewParser()

	result := p.Parse("submit the report urgent!!!", parseBase)
	assert.Equal(t, 3, result.Priority)
	assert.Equal(t, "submit the report urgent", result.Title)
}

func TestParseEmptyInput(t *testing.T) {
	p := NewParser()

	result := p.Parse("   ", parseBase)
	assert.Equal(t, "", result.Title)
	assert.Nil(t, result.DueDate)
	assert.Nil(t, result.Recurrence)
	assert.Equal(t, 1, result.Priority)
}

func TestParseDateAndRecurrenceTogether(t *testing.T) {
	p := NewParser()

	result := p.Parse("Team sync tomorrow weekly", parseBase)

	require.NotNil(t, result.DueDate)
	assert.Equal(t, parseBase.AddDate(0, 0, 1).Day(), result.DueDate.Day())
	require.NotNil(t, result.Recurrence)
	assert.Equal(t, model.Weekly, result.Recurrence.Frequency)
	assert.Equal(t, "team sync", result.Title)
}
