package evaluation

import (
	"testing"

	"github.com/hupe1980/ensemble/participant"
	"github.com/stretchr/testify/assert"
)

var creatives = []string{participant.MinimalistStylist, participant.PoeticDesigner, participant.MarketingCopywriter}

func TestIsQualityReached(t *testing.T) {
	tests := map[string]bool{
		"Overall: YES, threshold met": true,
		"yes":                         true,
		"Answer: Yes.":                true,
		"NO":                          false,
		"":                            false,
		"eyes on the prize":           true,
	}
	for reply, want := range tests {
		assert.Equal(t, want, IsQualityReached(reply), reply)
	}
}

func TestIsConsensusReached(t *testing.T) {
	tests := map[string]bool{
		"YES, they align":         true,
		"yes":                     true,
		"  Yes - mostly aligned":  true,
		"We believe YES is right": false,
		"NO":                      false,
		"":                        false,
	}
	for reply, want := range tests {
		assert.Equal(t, want, IsConsensusReached(reply), reply)
	}
}

func TestParseSelection(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		max   int
		want  []string
	}{
		{"two valid", "Poetic Designer, Marketing Copywriter", 0, []string{"Poetic Designer", "Marketing Copywriter"}},
		{"unknown dropped", "Poetic Designer, Unknown Agent", 0, []string{"Poetic Designer"}},
		{"fallback", "Unknown Only", 0, []string{"Minimalist Stylist"}},
		{"empty reply", "", 0, []string{"Minimalist Stylist"}},
		{"duplicates dropped", "Poetic Designer,Poetic Designer , Minimalist Stylist", 0, []string{"Poetic Designer", "Minimalist Stylist"}},
		{"reply order kept", "Marketing Copywriter, Minimalist Stylist", 0, []string{"Marketing Copywriter", "Minimalist Stylist"}},
		{"capped", "Minimalist Stylist, Poetic Designer, Marketing Copywriter", 2, []string{"Minimalist Stylist", "Poetic Designer"}},
		{"case sensitive", "poetic designer", 0, []string{"Minimalist Stylist"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSelection(tt.reply, creatives, participant.MinimalistStylist, tt.max))
		})
	}
}
