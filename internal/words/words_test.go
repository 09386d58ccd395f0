package words

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore(t *testing.T) {
	testCases := []struct {
		word string
		want int
	}{
		{"", 0},
		{"ok", 0},
		{"cat", 1},
		{"cats", 1},
		{"house", 2},
		{"banana", 3},
		{"strange", 5},
		{"elephant", 11},
		{"quiet", 1},    // q-i-e-t
		{"squad", 1},    // s-q-a-d
		{"QUIET", 1},    // lowercased before collapsing
		{"quququ", 1},   // three units
		{"quarters", 5}, // q-a-r-t-e-r-s
		{"straße", 3},   // ß stays one letter
		{"STRASSE", 5},
	}

	for _, tc := range testCases {
		t.Run(tc.word, func(t *testing.T) {
			assert.Equal(t, tc.want, Score(tc.word))
		})
	}
}

func TestParseList(t *testing.T) {
	testCases := []struct {
		description string
		in          string
		want        []string
	}{
		{"empty input", "", []string{}},
		{"blank input", "   ", []string{}},
		{"single word", "Cat", []string{"cat"}},
		{"trims and folds", " Cat , DOG,fish ", []string{"cat", "dog", "fish"}},
		{"drops trailing separator", "cat,", []string{"cat"}},
		{"drops empty tokens", "cat,, ,dog", []string{"cat", "dog"}},
		{"collapses repeats", "cat,CAT,dog,cat", []string{"cat", "dog"}},
		{"keeps sharp s", "Straße,STRASSE", []string{"straße", "strasse"}},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			got := ParseList(tc.in)
			assert.NotNil(t, got)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFold(t *testing.T) {
	assert.Equal(t, "alice", Fold("  Alice "))
	assert.Equal(t, Fold("ALICE"), Fold("alice"))
	assert.Equal(t, "", Fold("   "))
}

func TestLower(t *testing.T) {
	assert.Equal(t, "straße", Lower(" Straße "))
	assert.Equal(t, "strasse", Fold("Straße"))
	assert.Equal(t, 6, EffectiveLength("Straße"))
}

func TestTotal(t *testing.T) {
	assert.Equal(t, 0, Total(nil))
	assert.Equal(t, 1+2+11, Total([]string{"cat", "house", "elephant"}))
}
