package ctxengine_test

import (
	"fmt"
	"reflect"
	"testing"

	ctxengine "github.com/the-ai-project-co/nimbus-sub002/internal/context"
	"github.com/the-ai-project-co/nimbus-sub002/internal/provider"
)

// ---------------------------------------------------------------------------
// Partition: short sequences and degenerate inputs
// ---------------------------------------------------------------------------

func TestPartition_ShortSequences(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		messages       int
		preserveRecent int
	}{
		{name: "empty", messages: 0, preserveRecent: 5},
		{name: "single_message", messages: 1, preserveRecent: 5},
		{name: "fits_window_plus_anchor", messages: 6, preserveRecent: 5},
		{name: "negative_n_treated_as_zero", messages: 1, preserveRecent: -3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			msgs := makeTestMessages(tt.messages)
			preserved, toSummarize := ctxengine.Partition(msgs, tt.preserveRecent)

			if len(toSummarize) != 0 {
				t.Errorf("toSummarize has %d messages, want 0", len(toSummarize))
			}
			if !reflect.DeepEqual(contents(preserved), contents(msgs)) {
				t.Errorf("preserved = %v, want all of %v", contents(preserved), contents(msgs))
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Partition: the index rules
// ---------------------------------------------------------------------------

func TestPartition_AnchorAndRecentWindow(t *testing.T) {
	t.Parallel()

	msgs := makeTestMessages(8)
	preserved, toSummarize := ctxengine.Partition(msgs, 3)

	if len(preserved) != 4 {
		t.Fatalf("preserved has %d messages, want 4", len(preserved))
	}
	if len(toSummarize) != 4 {
		t.Fatalf("toSummarize has %d messages, want 4", len(toSummarize))
	}
	if preserved[0].Content != "msg-0" {
		t.Errorf("preserved[0] = %q, want the anchor msg-0", preserved[0].Content)
	}
	if preserved[1].Content != "msg-5" {
		t.Errorf("preserved[1] = %q, want msg-5 (first of the trailing three)", preserved[1].Content)
	}
	wantSummarized := []string{"msg-1", "msg-2", "msg-3", "msg-4"}
	if !reflect.DeepEqual(contents(toSummarize), wantSummarized) {
		t.Errorf("toSummarize = %v, want %v", contents(toSummarize), wantSummarized)
	}
}

func TestPartition_SummaryMarkerAlwaysPreserved(t *testing.T) {
	t.Parallel()

	// Place a prior summary at several positions deep in the summarized zone.
	for _, idx := range []int{1, 3, 5} {
		t.Run(fmt.Sprintf("index_%d", idx), func(t *testing.T) {
			t.Parallel()

			msgs := makeTestMessages(12)
			msgs[idx].Content = ctxengine.SummaryMarker + " earlier summary"

			preserved, toSummarize := ctxengine.Partition(msgs, 3)

			for _, m := range toSummarize {
				if ctxengine.IsSummaryMessage(m) {
					t.Fatalf("summary message at index %d was scheduled for summarization", idx)
				}
			}
			found := false
			for _, m := range preserved {
				if ctxengine.IsSummaryMessage(m) {
					found = true
				}
			}
			if !found {
				t.Errorf("summary message at index %d missing from preserved", idx)
			}
		})
	}
}

func TestPartition_ToolLookbackBoundary(t *testing.T) {
	t.Parallel()

	const n = 3
	msgs := makeTestMessages(10)
	// Recent window starts at index 7; the lookback zone covers 5 and 6.
	atBoundary := 5
	beyondBoundary := 4
	msgs[atBoundary].Role = provider.MessageRoleTool
	msgs[beyondBoundary].Role = provider.MessageRoleTool

	preserved, toSummarize := ctxengine.Partition(msgs, n)

	if !containsContent(preserved, msgs[atBoundary].Content) {
		t.Errorf("tool result at the lookback boundary (index %d) was not preserved", atBoundary)
	}
	if !containsContent(toSummarize, msgs[beyondBoundary].Content) {
		t.Errorf("tool result beyond the lookback (index %d) should be summarized", beyondBoundary)
	}
}

// ---------------------------------------------------------------------------
// Partition: the loss-less partition property
// ---------------------------------------------------------------------------

func TestPartition_LossLessAndOrdered(t *testing.T) {
	t.Parallel()

	for _, size := range []int{0, 1, 2, 5, 8, 13, 40} {
		for _, n := range []int{0, 1, 3, 5, 10} {
			t.Run(fmt.Sprintf("size_%d_n_%d", size, n), func(t *testing.T) {
				t.Parallel()

				msgs := makeTestMessages(size)
				if size > 4 {
					msgs[2].Role = provider.MessageRoleTool
					msgs[size/2].Content = ctxengine.SummaryMarker + " old"
				}

				preserved, toSummarize := ctxengine.Partition(msgs, n)

				if got := len(preserved) + len(toSummarize); got != size {
					t.Fatalf("partition sizes sum to %d, want %d", got, size)
				}

				// Each output keeps original relative order, and merging
				// them by original position reproduces the input exactly.
				seen := map[string]int{}
				for _, m := range append(append([]provider.LLMMessage{}, preserved...), toSummarize...) {
					seen[m.Content]++
				}
				for _, m := range msgs {
					if seen[m.Content] != 1 {
						t.Fatalf("message %q appears %d times across the partition", m.Content, seen[m.Content])
					}
				}

				assertOriginalOrder(t, msgs, preserved)
				assertOriginalOrder(t, msgs, toSummarize)
			})
		}
	}
}

func assertOriginalOrder(t *testing.T, original, subset []provider.LLMMessage) {
	t.Helper()
	pos := map[string]int{}
	for i, m := range original {
		pos[m.Content] = i
	}
	last := -1
	for _, m := range subset {
		p, ok := pos[m.Content]
		if !ok {
			t.Fatalf("message %q not in the original sequence", m.Content)
		}
		if p < last {
			t.Fatalf("message %q out of original order", m.Content)
		}
		last = p
	}
}

func containsContent(msgs []provider.LLMMessage, content string) bool {
	for _, m := range msgs {
		if m.Content == content {
			return true
		}
	}
	return false
}
