package risk

import (
	"strings"
	"testing"
	"time"

	"github.com/reflecta/reflecta-backend/internal/types"
)

func TestHistorySummary(t *testing.T) {
	entries := []types.JournalEntry{
		{Mood: types.MoodSad, Date: time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC), Content: "secret text"},
		{Mood: types.MoodNeutral, Date: time.Date(2026, 2, 9, 9, 0, 0, 0, time.UTC), Content: "more secret text"},
	}
	got := HistorySummary(entries)
	want := "[2026-02-10] Mood: sad\n[2026-02-09] Mood: neutral"
	if got != want {
		t.Fatalf("HistorySummary = %q, want %q", got, want)
	}
	if strings.Contains(got, "secret") {
		t.Fatal("history summary leaked entry content")
	}
}

func TestHistorySummaryEmpty(t *testing.T) {
	if got := HistorySummary(nil); got != "" {
		t.Fatalf("HistorySummary(nil) = %q, want empty", got)
	}
}

func TestBuildClassifierPrompt(t *testing.T) {
	prompt := BuildClassifierPrompt("entry content here", types.MoodAnxious, "[2026-02-10] Mood: sad")
	for _, want := range []string{"Mood: anxious", "entry content here", "[2026-02-10] Mood: sad", "riskLevel"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}
}
