package insights

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/NethermindEth/chaoschain-reality/core"
)

type feed []core.NewsItem

func (f feed) List(_ context.Context, showID string, limit int) ([]core.NewsItem, error) {
	var out []core.NewsItem
	for _, n := range f {
		if n.ShowID == showID && len(out) < limit {
			out = append(out, n)
		}
	}
	return out, nil
}

type cannedLLM struct {
	reply  string
	err    error
	prompt string
}

func (c *cannedLLM) Complete(_ context.Context, _, prompt string) (string, error) {
	c.prompt = prompt
	return c.reply, c.err
}

// newest first, as the store returns them
var sample = feed{
	{ShowID: "1", Headline: "Bob betrayed Alice"},
	{ShowID: "1", Headline: "Alice and Bob formed an alliance"},
	{ShowID: "2", Headline: "Eve had a moment of glory"},
}

func TestRecapFromJSONReply(t *testing.T) {
	llm := &cannedLLM{reply: "```json\n{\"title\": \"Broken Trust\", \"summary\": \"An alliance crumbled overnight.\"}\n```"}
	r, err := NewExtractor(sample, llm).Recap(context.Background(), "1", 0)
	if err != nil {
		t.Fatalf("Recap: %v", err)
	}
	if !r.Generated || r.Title != "Broken Trust" || r.Summary != "An alliance crumbled overnight." {
		t.Fatalf("recap = %+v", r)
	}
	if !strings.Contains(llm.prompt, "1. Alice and Bob formed an alliance\n2. Bob betrayed Alice") {
		t.Fatalf("prompt should list events oldest first:\n%s", llm.prompt)
	}
	if strings.Contains(llm.prompt, "Eve") {
		t.Fatal("prompt leaked another show's news")
	}
}

func TestRecapPlainTextReply(t *testing.T) {
	r, err := NewExtractor(sample, &cannedLLM{reply: "Trust was broken."}).Recap(context.Background(), "1", 5)
	if err != nil {
		t.Fatalf("Recap: %v", err)
	}
	if r.Summary != "Trust was broken." || !r.Generated {
		t.Fatalf("recap = %+v", r)
	}
}

func TestRecapFallsBackToDigest(t *testing.T) {
	for name, llm := range map[string]Completer{
		"no service":    nil,
		"service error": &cannedLLM{err: errors.New("503")},
	} {
		t.Run(name, func(t *testing.T) {
			r, err := NewExtractor(sample, llm).Recap(context.Background(), "1", 0)
			if err != nil {
				t.Fatalf("Recap: %v", err)
			}
			if r.Generated {
				t.Fatal("digest recap should not be marked generated")
			}
			if r.Summary != "Alice and Bob formed an alliance. Bob betrayed Alice." {
				t.Fatalf("summary = %q", r.Summary)
			}
		})
	}
}

func TestRecapEmptyFeed(t *testing.T) {
	llm := &cannedLLM{reply: "should not be asked"}
	r, err := NewExtractor(sample, llm).Recap(context.Background(), "9", 0)
	if err != nil {
		t.Fatalf("Recap: %v", err)
	}
	if llm.prompt != "" || len(r.Headlines) != 0 || r.Summary == "" {
		t.Fatalf("recap = %+v prompt = %q", r, llm.prompt)
	}
	if _, err := NewExtractor(sample, nil).Recap(context.Background(), "", 0); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("err = %v, want validation", err)
	}
}
