// Package knowledge provides lightweight paragraph-level retrieval over
// document excerpts loaded from JSON. Retrieval is keyword overlap with
// length-normalized scoring, good enough to pick a handful of grounding
// excerpts for a prompt without an embedding store.
package knowledge

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/hupe1980/opscouncil/council"
	"github.com/hupe1980/opscouncil/logging"
)

// DefaultLimit is the number of excerpts returned when the caller passes a
// non-positive limit.
const DefaultLimit = 4

// tokenPattern matches Latin, Hebrew and numeric runs.
var tokenPattern = regexp.MustCompile(`[a-z\x{0590}-\x{05FF}0-9]+`)

// topicMatchBoost is added once per query token that matches a token of the
// section's topic name.
const topicMatchBoost = 2.0

type document struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	SourceFile string  `json:"source_file"`
	Topic      string  `json:"topic"`
	Chunks     []chunk `json:"chunks"`
}

type chunk struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type file struct {
	Documents []document `json:"documents"`
}

type section struct {
	id          string
	title       string
	source      string
	text        string
	textLower   string
	topicTokens map[string]struct{}
}

// Options configures a knowledge Base.
type Options struct {
	// Logger defaults to NoOpLogger.
	Logger logging.Logger
}

// Base holds the loaded sections of one knowledge file.
type Base struct {
	sections []section
	logger   logging.Logger
}

// Load reads a knowledge JSON file. A missing file yields an empty,
// unavailable base rather than an error so a bot can run without documents;
// a malformed file is an error.
func Load(path string, optFns ...func(o *Options)) (*Base, error) {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		opts.Logger.Warn("knowledge file not found, retrieval disabled", "path", path)
		return &Base{logger: opts.Logger}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read knowledge file: %w", err)
	}

	var parsed file
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("decode knowledge file %s: %w", path, err)
	}

	base := &Base{logger: opts.Logger}
	for _, doc := range parsed.Documents {
		docID := doc.ID
		if docID == "" {
			docID = "unknown"
		}
		title := doc.Title
		if title == "" {
			title = docID
		}
		source := doc.SourceFile
		if source == "" {
			source = "document"
		}
		topicTokens := tokenSet(doc.Topic)
		for _, c := range doc.Chunks {
			text := strings.TrimSpace(c.Text)
			if text == "" {
				continue
			}
			id := c.ID
			if id == "" {
				id = fmt.Sprintf("%s-%d", docID, len(base.sections)+1)
			}
			base.sections = append(base.sections, section{
				id:          id,
				title:       title,
				source:      source,
				text:        text,
				textLower:   strings.ToLower(text),
				topicTokens: topicTokens,
			})
		}
	}
	opts.Logger.Info("knowledge sections loaded", "path", path, "sections", len(base.sections))
	return base, nil
}

// Available reports whether any sections were loaded.
func (b *Base) Available() bool {
	return b != nil && len(b.sections) > 0
}

// Search returns up to limit excerpts relevant to the query, best first.
// With no scoring signal (empty query or no token overlaps) the first
// sections are returned as-is, mirroring a "show something" policy.
func (b *Base) Search(query string, limit int) []council.Excerpt {
	if !b.Available() {
		return nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	tokens := tokenize(query)
	if len(tokens) == 0 {
		return b.head(limit)
	}

	type scored struct {
		score   float64
		section section
	}
	var ranked []scored
	for _, sec := range b.sections {
		if score := scoreSection(sec, tokens); score > 0 {
			ranked = append(ranked, scored{score: score, section: sec})
		}
	}
	if len(ranked) == 0 {
		return b.head(limit)
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	seen := make(map[string]struct{}, limit)
	var results []council.Excerpt
	for _, r := range ranked {
		if _, dup := seen[r.section.id]; dup {
			continue
		}
		seen[r.section.id] = struct{}{}
		results = append(results, asExcerpt(r.section))
		if len(results) == limit {
			break
		}
	}
	return results
}

func (b *Base) head(limit int) []council.Excerpt {
	if limit > len(b.sections) {
		limit = len(b.sections)
	}
	results := make([]council.Excerpt, 0, limit)
	for _, sec := range b.sections[:limit] {
		results = append(results, asExcerpt(sec))
	}
	return results
}

func asExcerpt(sec section) council.Excerpt {
	return council.Excerpt{ID: sec.id, Title: sec.title, Source: sec.source, Text: sec.text}
}

func scoreSection(sec section, tokens []string) float64 {
	length := float64(len(sec.textLower))
	if length == 0 {
		length = 1
	}
	var score float64
	for _, token := range tokens {
		if _, ok := sec.topicTokens[token]; ok {
			score += topicMatchBoost
		}
		if occurrences := strings.Count(sec.textLower, token); occurrences > 0 {
			score += float64(occurrences) * float64(len(token)) / length
		}
	}
	return score
}

func tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

func tokenSet(text string) map[string]struct{} {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// Merge concatenates search results from several bases in order, useful when
// hazard and topical documents live in separate files.
func Merge(query string, limit int, bases ...*Base) []council.Excerpt {
	var combined []council.Excerpt
	for _, b := range bases {
		if !b.Available() {
			continue
		}
		combined = append(combined, b.Search(query, limit)...)
	}
	return combined
}
