package insights

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/NethermindEth/chaoschain-reality/core"
)

// DefaultItems is how many news items feed a recap.
const DefaultItems = 20

// NewsSource lists a show's feed, newest first.
type NewsSource interface {
	List(ctx context.Context, showID string, limit int) ([]core.NewsItem, error)
}

// Completer is the text service used to narrate recaps.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Extractor builds recaps from the news feed.
type Extractor struct {
	llm  Completer
	feed NewsSource
}

// NewExtractor wires the extractor. A nil completer produces plain headline digests.
func NewExtractor(feed NewsSource, llm Completer) *Extractor {
	return &Extractor{feed: feed, llm: llm}
}

const recapSystem = "You are the narrator of a reality show. Be dramatic but brief."

// Recap summarizes the latest items of a show's feed.
func (e *Extractor) Recap(ctx context.Context, showID string, items int) (*Recap, error) {
	if showID == "" {
		return nil, core.ValidationError("showId is required")
	}
	if items <= 0 {
		items = DefaultItems
	}
	news, err := e.feed.List(ctx, showID, items)
	if err != nil {
		return nil, fmt.Errorf("list news: %w", err)
	}
	recap := &Recap{ShowID: showID, LastUpdated: time.Now()}
	// oldest first reads as a story
	for i := len(news) - 1; i >= 0; i-- {
		recap.Headlines = append(recap.Headlines, news[i].Headline)
	}
	if len(news) == 0 {
		recap.Title = "Nothing happened yet"
		recap.Summary = "The house is quiet. No drama has been recorded for this show."
		return recap, nil
	}

	if e.llm != nil {
		raw, err := e.llm.Complete(ctx, recapSystem, buildRecapPrompt(showID, recap.Headlines))
		if err == nil {
			if title, summary := parseRecap(raw); summary != "" {
				recap.Title, recap.Summary, recap.Generated = title, summary, true
				return recap, nil
			}
		}
		log.Printf("[Insights] show %s: recap generation failed, using digest: %v", showID, err)
	}
	recap.Title = fmt.Sprintf("Previously on show %s", showID)
	recap.Summary = strings.Join(recap.Headlines, ". ") + "."
	return recap, nil
}

func buildRecapPrompt(showID string, headlines []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Recent events on show %s, oldest first:\n", showID)
	for i, h := range headlines {
		fmt.Fprintf(&b, "%d. %s\n", i+1, h)
	}
	b.WriteString(`
Write a "previously on" recap of these events in at most four sentences.
Your response must be a JSON object in this format:
{"title": "short episode title", "summary": "the recap"}`)
	return b.String()
}

// parseRecap accepts the requested JSON object or, failing that, plain text as the summary.
func parseRecap(raw string) (title, summary string) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.Trim(raw, "`\n ")
	if strings.HasPrefix(raw, "{") {
		var out recapJSON
		if err := json.Unmarshal([]byte(raw), &out); err == nil {
			return strings.TrimSpace(out.Title), strings.TrimSpace(out.Summary)
		}
	}
	return "", raw
}
