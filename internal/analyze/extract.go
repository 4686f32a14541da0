package analyze

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

const (
	summaryPrompt   = "Generate a comprehensive summary of this document and list the key points"
	keyPointsPrompt = "List the 5 most important points from this document in bullet point format"
	entitiesPrompt  = "Extract and categorize all named entities in this document. " +
		"List all people, organizations, locations, dates, and products mentioned. " +
		"Format the response as JSON with these categories as keys."
	fullTextPrompt = "Extract and return the full text content of this document while " +
		"preserving the structure. Do not summarize or analyze the content."
)

const maxKeyPoints = 5

// Summary pairs a prose summary with up to five extracted key points.
type Summary struct {
	Summary   string   `json:"summary"`
	KeyPoints []string `json:"keyPoints"`
}

// Summarize asks the backend for a document summary and derives key points
// from the free-text answer. When the answer carries no recognizable
// "key points:" section, the first sentences stand in as the summary and a
// follow-up prompt supplies the points.
func (s *Service) Summarize(ctx context.Context, file LocalFile) (Summary, error) {
	resp, err := s.ask(ctx, file, summaryPrompt)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to summarize file: %w", err)
	}
	answer := resp.Answer

	if idx := indexKeyPoints(answer); idx >= 0 {
		points := splitBullets(answer[idx+len(keyPointsMarker):])
		if len(points) > 0 {
			return Summary{
				Summary:   strings.TrimSpace(answer[:idx]),
				KeyPoints: capPoints(points),
			}, nil
		}
	}

	// No usable key-points section: take the leading sentences and ask
	// explicitly for bullet points.
	summary := leadingSentences(answer, 3)

	followUp, err := s.ask(ctx, file, keyPointsPrompt)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to summarize file: %w", err)
	}

	var points []string
	for _, line := range strings.Split(followUp.Answer, "\n") {
		line = strings.TrimSpace(bulletPrefix.ReplaceAllString(line, ""))
		if line != "" {
			points = append(points, line)
		}
	}

	return Summary{Summary: summary, KeyPoints: capPoints(points)}, nil
}

const keyPointsMarker = "key points:"

var bulletPrefix = regexp.MustCompile(`^[-•*]\s*`)

func indexKeyPoints(text string) int {
	return strings.Index(strings.ToLower(text), keyPointsMarker)
}

// splitBullets splits bullet-delimited text into trimmed non-empty items.
func splitBullets(text string) []string {
	var points []string
	for _, p := range strings.FieldsFunc(text, func(r rune) bool {
		return r == '•' || r == '-' || r == '*'
	}) {
		p = strings.TrimSpace(p)
		if p != "" {
			points = append(points, p)
		}
	}
	return points
}

// leadingSentences joins the first up-to-n sentences of text.
func leadingSentences(text string, n int) string {
	var sentences []string
	for _, sentence := range strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	}) {
		sentence = strings.TrimSpace(sentence)
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
		if len(sentences) == n {
			break
		}
	}
	if len(sentences) == 0 {
		return ""
	}
	return strings.Join(sentences, ". ") + "."
}

func capPoints(points []string) []string {
	if len(points) > maxKeyPoints {
		return points[:maxKeyPoints]
	}
	return points
}

// Entities holds the six fixed entity categories. Categories the answer
// does not mention are empty, never nil.
type Entities struct {
	People        []string `json:"people"`
	Organizations []string `json:"organizations"`
	Locations     []string `json:"locations"`
	Dates         []string `json:"dates"`
	Products      []string `json:"products"`
	Misc          []string `json:"misc"`
}

// ExtractEntities asks the backend for categorized named entities and
// decodes the free-text answer through an ordered strategy chain: a JSON
// block if one is present, category-anchored text scanning otherwise, and
// empty categories as the final default.
func (s *Service) ExtractEntities(ctx context.Context, file LocalFile) (Entities, error) {
	resp, err := s.ask(ctx, file, entitiesPrompt)
	if err != nil {
		return Entities{}, fmt.Errorf("failed to extract entities: %w", err)
	}

	for _, decode := range entityDecoders {
		if ents, ok := decode(resp.Answer); ok {
			return withDefaults(ents), nil
		}
	}
	return withDefaults(Entities{}), nil
}

// entityDecoders are tried in order; the first success wins.
var entityDecoders = []func(string) (Entities, bool){
	decodeEntityJSON,
	decodeEntitySections,
}

// decodeEntityJSON locates a {...} block in the answer and parses it.
func decodeEntityJSON(answer string) (Entities, bool) {
	start := strings.Index(answer, "{")
	end := strings.LastIndex(answer, "}")
	if start < 0 || end <= start {
		return Entities{}, false
	}

	var ents Entities
	if err := json.Unmarshal([]byte(answer[start:end+1]), &ents); err != nil {
		return Entities{}, false
	}
	return ents, true
}

// entitySections are the category anchors scanned in document order; each
// category's items run from its anchor to the next one.
var entitySections = []struct {
	re    *regexp.Regexp
	apply func(*Entities, []string)
}{
	{regexp.MustCompile(`(?is)people[:\s]+(.*?)organizations`), func(e *Entities, v []string) { e.People = v }},
	{regexp.MustCompile(`(?is)organizations[:\s]+(.*?)locations`), func(e *Entities, v []string) { e.Organizations = v }},
	{regexp.MustCompile(`(?is)locations[:\s]+(.*?)dates`), func(e *Entities, v []string) { e.Locations = v }},
	{regexp.MustCompile(`(?is)dates[:\s]+(.*?)products`), func(e *Entities, v []string) { e.Dates = v }},
	{regexp.MustCompile(`(?is)products[:\s]+(.*)$`), func(e *Entities, v []string) { e.Products = v }},
}

// decodeEntitySections scans the answer for category-name anchors and
// splits each section on newlines and commas. It always succeeds; absent
// categories stay empty.
func decodeEntitySections(answer string) (Entities, bool) {
	var ents Entities
	for _, section := range entitySections {
		m := section.re.FindStringSubmatch(answer)
		if m == nil {
			continue
		}
		var items []string
		for _, item := range strings.FieldsFunc(m[1], func(r rune) bool {
			return r == '\n' || r == ','
		}) {
			item = strings.TrimSpace(bulletPrefix.ReplaceAllString(strings.TrimSpace(item), ""))
			if item != "" {
				items = append(items, item)
			}
		}
		section.apply(&ents, items)
	}
	return ents, true
}

func withDefaults(e Entities) Entities {
	if e.People == nil {
		e.People = []string{}
	}
	if e.Organizations == nil {
		e.Organizations = []string{}
	}
	if e.Locations == nil {
		e.Locations = []string{}
	}
	if e.Dates == nil {
		e.Dates = []string{}
	}
	if e.Products == nil {
		e.Products = []string{}
	}
	if e.Misc == nil {
		e.Misc = []string{}
	}
	return e
}

// TextExtract is the raw document text with basic shape counts.
type TextExtract struct {
	Text       string `json:"text"`
	Paragraphs int    `json:"paragraphs"`
	Characters int    `json:"characters"`
}

var paragraphBreak = regexp.MustCompile(`\n\s*\n`)

// ExtractText asks the backend for the full document text and reports
// paragraph and character counts alongside it.
func (s *Service) ExtractText(ctx context.Context, file LocalFile) (TextExtract, error) {
	resp, err := s.ask(ctx, file, fullTextPrompt)
	if err != nil {
		return TextExtract{}, fmt.Errorf("failed to extract text: %w", err)
	}

	return TextExtract{
		Text:       resp.Answer,
		Paragraphs: len(paragraphBreak.Split(resp.Answer, -1)),
		Characters: len(resp.Answer),
	}, nil
}
