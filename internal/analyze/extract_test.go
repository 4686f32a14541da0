package analyze

import (
	"context"
	"testing"
	"time"
)

func TestSummarize_KeyPointsSection(t *testing.T) {
	backend := &fakeBackend{answers: []string{
		"This report covers the third quarter. Key points:\n• revenue grew\n• costs fell\n• margin improved",
	}}
	s := NewService(backend, 0)

	out, err := s.Summarize(context.Background(), FromReader("report.pdf", "x"))
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}

	if out.Summary != "This report covers the third quarter." {
		t.Errorf("summary = %q", out.Summary)
	}
	want := []string{"revenue grew", "costs fell", "margin improved"}
	if len(out.KeyPoints) != len(want) {
		t.Fatalf("key points = %v, want %v", out.KeyPoints, want)
	}
	for i, w := range want {
		if out.KeyPoints[i] != w {
			t.Errorf("keyPoints[%d] = %q, want %q", i, out.KeyPoints[i], w)
		}
	}
	if len(backend.questions) != 1 {
		t.Errorf("made %d backend calls, want 1", len(backend.questions))
	}
}

func TestSummarize_MarkerCaseInsensitive(t *testing.T) {
	backend := &fakeBackend{answers: []string{
		"Short intro. KEY POINTS:\n• only point",
	}}
	s := NewService(backend, 0)

	out, err := s.Summarize(context.Background(), FromReader("a.txt", "x"))
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if len(out.KeyPoints) != 1 || out.KeyPoints[0] != "only point" {
		t.Errorf("key points = %v", out.KeyPoints)
	}
}

func TestSummarize_FallbackFollowUp(t *testing.T) {
	backend := &fakeBackend{answers: []string{
		"First sentence here. Second sentence here. Third sentence here. Fourth sentence here.",
		"• point one\n• point two\n• point three\n• point four\n• point five\n• point six",
	}}
	s := NewService(backend, 0)

	out, err := s.Summarize(context.Background(), FromReader("a.txt", "x"))
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}

	if out.Summary != "First sentence here. Second sentence here. Third sentence here." {
		t.Errorf("summary = %q", out.Summary)
	}
	if len(out.KeyPoints) != 5 {
		t.Fatalf("got %d key points, want 5 (capped)", len(out.KeyPoints))
	}
	if out.KeyPoints[0] != "point one" || out.KeyPoints[4] != "point five" {
		t.Errorf("key points = %v", out.KeyPoints)
	}
	if len(backend.questions) != 2 {
		t.Errorf("made %d backend calls, want 2", len(backend.questions))
	}
}

func TestSummarize_PrimaryPathCapped(t *testing.T) {
	backend := &fakeBackend{answers: []string{
		"Intro. Key points:\n• a\n• b\n• c\n• d\n• e\n• f\n• g",
	}}
	s := NewService(backend, 0)

	out, err := s.Summarize(context.Background(), FromReader("a.txt", "x"))
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if len(out.KeyPoints) != 5 {
		t.Errorf("got %d key points, want 5", len(out.KeyPoints))
	}
}

func TestExtractEntities_JSONBlock(t *testing.T) {
	backend := &fakeBackend{answers: []string{
		"Here are the entities:\n{\"people\": [\"Ada Lovelace\", \"Grace Hopper\"]}\nLet me know if you need more.",
	}}
	s := NewService(backend, 0)

	out, err := s.ExtractEntities(context.Background(), FromReader("a.txt", "x"))
	if err != nil {
		t.Fatalf("ExtractEntities: %v", err)
	}

	if len(out.People) != 2 || out.People[0] != "Ada Lovelace" {
		t.Errorf("people = %v", out.People)
	}
	for name, cat := range map[string][]string{
		"organizations": out.Organizations,
		"locations":     out.Locations,
		"dates":         out.Dates,
		"products":      out.Products,
		"misc":          out.Misc,
	} {
		if cat == nil {
			t.Errorf("%s is nil, want empty list", name)
		}
		if len(cat) != 0 {
			t.Errorf("%s = %v, want empty", name, cat)
		}
	}
}

func TestExtractEntities_SectionFallback(t *testing.T) {
	backend := &fakeBackend{answers: []string{
		"People: Ada Lovelace, Grace Hopper\n" +
			"Organizations: Acme Corp\n" +
			"Locations: Paris\n" +
			"Dates: 2026\n" +
			"Products: Widget",
	}}
	s := NewService(backend, 0)

	out, err := s.ExtractEntities(context.Background(), FromReader("a.txt", "x"))
	if err != nil {
		t.Fatalf("ExtractEntities: %v", err)
	}

	if len(out.People) != 2 || out.People[1] != "Grace Hopper" {
		t.Errorf("people = %v", out.People)
	}
	if len(out.Organizations) != 1 || out.Organizations[0] != "Acme Corp" {
		t.Errorf("organizations = %v", out.Organizations)
	}
	if len(out.Locations) != 1 || out.Locations[0] != "Paris" {
		t.Errorf("locations = %v", out.Locations)
	}
	if len(out.Dates) != 1 || out.Dates[0] != "2026" {
		t.Errorf("dates = %v", out.Dates)
	}
	if len(out.Products) != 1 || out.Products[0] != "Widget" {
		t.Errorf("products = %v", out.Products)
	}
	if len(out.Misc) != 0 || out.Misc == nil {
		t.Errorf("misc = %v, want empty list", out.Misc)
	}
}

func TestExtractEntities_UnusableAnswer(t *testing.T) {
	backend := &fakeBackend{answers: []string{"I could not find any entities."}}
	s := NewService(backend, 0)

	out, err := s.ExtractEntities(context.Background(), FromReader("a.txt", "x"))
	if err != nil {
		t.Fatalf("ExtractEntities: %v", err)
	}
	for name, cat := range map[string][]string{
		"people": out.People, "organizations": out.Organizations,
		"locations": out.Locations, "dates": out.Dates,
		"products": out.Products, "misc": out.Misc,
	} {
		if cat == nil || len(cat) != 0 {
			t.Errorf("%s = %v, want empty list", name, cat)
		}
	}
}

func TestExtractText(t *testing.T) {
	answer := "First paragraph.\n\nSecond paragraph.\n \nThird paragraph."
	backend := &fakeBackend{answers: []string{answer}}
	s := NewService(backend, 0)

	out, err := s.ExtractText(context.Background(), FromReader("a.txt", "x"))
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if out.Text != answer {
		t.Errorf("text = %q", out.Text)
	}
	if out.Paragraphs != 3 {
		t.Errorf("paragraphs = %d, want 3", out.Paragraphs)
	}
	if out.Characters != len(answer) {
		t.Errorf("characters = %d, want %d", out.Characters, len(answer))
	}
}

func TestIsSupportedFile(t *testing.T) {
	cases := []struct {
		filename string
		want     bool
	}{
		{"report.PDF", true},
		{"notes.txt", true},
		{"deck.pptx", true},
		{"meeting.mp3", true},
		{"scan.jpeg", true},
		{"main.py", true},
		{"archive.zip", false},
		{"binary.exe", false},
		{"noextension", false},
	}
	for _, c := range cases {
		if got := IsSupportedFile(c.filename); got != c.want {
			t.Errorf("IsSupportedFile(%q) = %v, want %v", c.filename, got, c.want)
		}
	}
}

func TestMetadataFromChat(t *testing.T) {
	meta := MetadataFromChat("Thread A", "bob")

	if meta.Source != "chat" {
		t.Errorf("source = %q, want chat", meta.Source)
	}
	if meta.Context != "Thread A" {
		t.Errorf("context = %q", meta.Context)
	}
	if meta.Username != "bob" {
		t.Errorf("username = %q", meta.Username)
	}
	if _, err := time.Parse(time.RFC3339, meta.Timestamp); err != nil {
		t.Errorf("timestamp %q is not RFC3339: %v", meta.Timestamp, err)
	}
}

func TestMetadataFromChat_DefaultUsername(t *testing.T) {
	meta := MetadataFromChat("Thread B", "")
	if meta.Username != "user" {
		t.Errorf("username = %q, want user", meta.Username)
	}
}

func TestLeadingSentences(t *testing.T) {
	if got := leadingSentences("One. Two. Three. Four.", 3); got != "One. Two. Three." {
		t.Errorf("leadingSentences = %q", got)
	}
	if got := leadingSentences("Only one", 3); got != "Only one." {
		t.Errorf("leadingSentences = %q", got)
	}
	if got := leadingSentences("", 3); got != "" {
		t.Errorf("leadingSentences = %q, want empty", got)
	}
	if got := leadingSentences("...", 3); got != "" {
		t.Errorf("leadingSentences = %q, want empty", got)
	}
}
