package orchestrator

import (
	"strings"
	"testing"

	"sitemate/internal/errors"
)

func TestExtractBOQ(t *testing.T) {
	tests := []struct {
		name string
		text string
		want map[string]float64
	}{
		{
			name: "prose around block",
			text: "Here you go.\n|||\n{\"Cement\": 100, \"Granite\": 2}\n|||\nThanks!",
			want: map[string]float64{"Cement": 100, "Granite": 2},
		},
		{
			name: "string quantities",
			text: `|||{"9-inch Vibrated Block": "3,000"}|||`,
			want: map[string]float64{"9-inch Vibrated Block": 3000},
		},
		{
			name: "json fence label",
			text: "|||json\n{\"Cement\": 5}|||",
			want: map[string]float64{"Cement": 5},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractBOQ(tt.text)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("%s = %v, want %v", k, got[k], v)
				}
			}
		})
	}
}

func TestExtractBOQFailures(t *testing.T) {
	tests := map[string]string{
		"no block":     "Just prose, no quantities.",
		"malformed":    "|||{Cement: 100|||",
		"no numbers":   `|||{"Cement": "lots"}|||`,
		"unterminated": "|||{\"Cement\": 100}",
	}
	for name, text := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ExtractBOQ(text)
			if !errors.IsType(err, errors.TypeParsing) {
				t.Errorf("expected parse error, got %v", err)
			}
		})
	}
}

func TestCleanText(t *testing.T) {
	got := CleanText("Report body\n### JSON\n|||{\"Cement\":1}|||")
	if got != "Report body" {
		t.Errorf("got %q", got)
	}
	if got := CleanText("  plain  "); got != "plain" {
		t.Errorf("got %q", got)
	}
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt(PromptInput{Location: "Lekki, Lagos", Soil: "Swampy (User Override)", Query: " build a fence "})
	for _, want := range []string{"Location: Lekki, Lagos", "**Soil:** Swampy (User Override)", MarketUnavailable, "\"build a fence\""} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
