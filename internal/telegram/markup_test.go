package telegram

import (
	"encoding/json"
	"testing"
)

func TestParseButtonLayout_Empty(t *testing.T) {
	t.Parallel()
	layout, err := ParseButtonLayout(nil, "", "")
	if err != nil {
		t.Fatal(err)
	}
	if layout != nil {
		t.Errorf("expected nil layout, got %+v", layout)
	}
}

func TestParseButtonLayout_RowsInOrder(t *testing.T) {
	t.Parallel()
	layout, err := ParseButtonLayout([]string{"Docs|https://example.com/docs", "Home|https://example.com"}, "", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(layout.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(layout.Rows))
	}
	if layout.Rows[0][0].Text != "Docs" || layout.Rows[1][0].URL != "https://example.com" {
		t.Errorf("unexpected rows: %+v", layout.Rows)
	}
}

func TestParseButtonLayout_LegacyPairAppendsLastRow(t *testing.T) {
	t.Parallel()
	layout, err := ParseButtonLayout([]string{"A|https://a.example"}, "Open", "https://b.example")
	if err != nil {
		t.Fatal(err)
	}
	if len(layout.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(layout.Rows))
	}
	last := layout.Rows[1][0]
	if last.Text != "Open" || last.URL != "https://b.example" {
		t.Errorf("legacy button not appended: %+v", last)
	}
}

func TestParseButtonLayout_LegacyPairIncomplete(t *testing.T) {
	t.Parallel()
	if _, err := ParseButtonLayout(nil, "Open", ""); err == nil {
		t.Error("expected error for text without URL")
	}
	if _, err := ParseButtonLayout(nil, "", "https://x.example"); err == nil {
		t.Error("expected error for URL without text")
	}
}

func TestParseButtonLayout_MalformedSpec(t *testing.T) {
	t.Parallel()
	for _, spec := range []string{"nopipe", "|https://x.example", "Label|", "  |  "} {
		if _, err := ParseButtonLayout([]string{spec}, "", ""); err == nil {
			t.Errorf("expected error for spec %q", spec)
		}
	}
}

func TestButtonLayout_JSONShape(t *testing.T) {
	t.Parallel()
	layout := &ButtonLayout{Rows: [][]Button{{{Text: "Go", URL: "https://example.com"}}}}
	data, err := json.Marshal(layout)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"inline_keyboard":[[{"text":"Go","url":"https://example.com"}]]}`
	if string(data) != want {
		t.Errorf("json = %s, want %s", data, want)
	}
}
