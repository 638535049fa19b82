package risk

import (
	"testing"

	"github.com/reflecta/reflecta-backend/internal/types"
)

func TestMoodScore(t *testing.T) {
	tests := []struct {
		mood string
		want int
	}{
		{types.MoodHappy, 5},
		{types.MoodExcited, 5},
		{types.MoodGrateful, 4},
		{types.MoodCalm, 4},
		{types.MoodNeutral, 3},
		{types.MoodReflective, 3},
		{types.MoodAnxious, 2},
		{types.MoodSad, 1},
		{"confused", 3},
		{"", 3},
	}
	for _, tt := range tests {
		if got := MoodScore(tt.mood); got != tt.want {
			t.Errorf("MoodScore(%q) = %d, want %d", tt.mood, got, tt.want)
		}
	}
}

func TestChannelsFor(t *testing.T) {
	tests := []struct {
		level string
		want  []string
	}{
		{types.RiskLevelLow, []string{types.ChannelInApp}},
		{types.RiskLevelMedium, []string{types.ChannelInApp}},
		{types.RiskLevelHigh, []string{types.ChannelInApp, types.ChannelEmail}},
		{types.RiskLevelCritical, []string{types.ChannelInApp, types.ChannelEmail, types.ChannelSMS}},
	}
	for _, tt := range tests {
		got := ChannelsFor(tt.level)
		if len(got) != len(tt.want) {
			t.Fatalf("ChannelsFor(%q) = %v, want %v", tt.level, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Fatalf("ChannelsFor(%q) = %v, want %v", tt.level, got, tt.want)
			}
		}
	}
}
