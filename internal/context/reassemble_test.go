package ctxengine_test

import (
	"strings"
	"testing"

	ctxengine "github.com/the-ai-project-co/nimbus-sub002/internal/context"
	"github.com/the-ai-project-co/nimbus-sub002/internal/provider"
)

func TestBuildCompacted(t *testing.T) {
	t.Parallel()

	a := provider.LLMMessage{Role: provider.MessageRoleUser, Content: "anchor"}
	b := provider.LLMMessage{Role: provider.MessageRoleAssistant, Content: "recent"}

	tests := []struct {
		name         string
		preserved    []provider.LLMMessage
		wantLen      int
		wantContents []string // "" marks the summary slot
	}{
		{name: "empty_preserved", preserved: nil, wantLen: 1, wantContents: []string{""}},
		{name: "single_preserved", preserved: []provider.LLMMessage{a}, wantLen: 2,
			wantContents: []string{"anchor", ""}},
		{name: "summary_spliced_after_anchor", preserved: []provider.LLMMessage{a, b}, wantLen: 3,
			wantContents: []string{"anchor", "", "recent"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ctxengine.BuildCompacted(tt.preserved, "S")
			if len(got) != tt.wantLen {
				t.Fatalf("BuildCompacted() returned %d messages, want %d", len(got), tt.wantLen)
			}
			for i, want := range tt.wantContents {
				if want == "" {
					if !ctxengine.IsSummaryMessage(got[i]) {
						t.Errorf("message %d is not the summary: %q", i, got[i].Content)
					}
					continue
				}
				if got[i].Content != want {
					t.Errorf("message %d = %q, want %q", i, got[i].Content, want)
				}
			}
		})
	}
}

func TestWrapSummary(t *testing.T) {
	t.Parallel()

	msg := ctxengine.WrapSummary("decided to use sqlite")

	if msg.Role != provider.MessageRoleUser {
		t.Errorf("summary role = %q, want user", msg.Role)
	}
	if !strings.HasPrefix(msg.Content, ctxengine.SummaryMarker) {
		t.Errorf("summary content must start with the marker, got %q", msg.Content)
	}
	if !strings.Contains(msg.Content, "decided to use sqlite") {
		t.Errorf("summary content must contain the text verbatim, got %q", msg.Content)
	}
	if !strings.Contains(msg.Content, "The conversation continues below.") {
		t.Errorf("summary content missing the continuation footer: %q", msg.Content)
	}
}

// A rebuilt sequence must survive another partition pass without losing
// the summary.
func TestBuildCompacted_IdempotentUnderPartition(t *testing.T) {
	t.Parallel()

	msgs := makeTestMessages(12)
	preserved, _ := ctxengine.Partition(msgs, 3)
	rebuilt := ctxengine.BuildCompacted(preserved, "first summary")

	preserved2, toSummarize2 := ctxengine.Partition(rebuilt, 3)
	for _, m := range toSummarize2 {
		if ctxengine.IsSummaryMessage(m) {
			t.Fatal("prior summary scheduled for re-summarization")
		}
	}
	found := false
	for _, m := range preserved2 {
		if ctxengine.IsSummaryMessage(m) {
			found = true
		}
	}
	if !found {
		t.Error("prior summary dropped from preserved on the second pass")
	}
}
