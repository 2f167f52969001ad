package history

import (
	"testing"
	"time"
)

func TestTranscriptAppendOrderAndProjection(t *testing.T) {
	tr := NewTranscript()
	now := time.Unix(100, 0).UTC()

	tr.Append(NewUserTurn("  I are happy today.  ", now))
	tr.Append(NewTutorTurn("Nice to hear that!", "I am happy today.", "Subject-verb agreement.", 60, now))
	tr.Append(NewUserTurn("Hello", now))
	tr.Append(NewTutorTurn("Hi there!", "", "", 100, now))

	turns := tr.Turns()
	if len(turns) != 4 || tr.Len() != 4 {
		t.Fatalf("unexpected length: %d", len(turns))
	}
	if turns[0].Role != RoleUser || turns[0].Content != "I are happy today." {
		t.Fatalf("unexpected turn 0: %+v", turns[0])
	}
	if turns[1].Correction == nil || turns[1].Correction.Score != 60 || turns[1].Correction.ImprovedText != "I am happy today." {
		t.Fatalf("unexpected correction: %+v", turns[1].Correction)
	}
	if turns[3].Correction != nil {
		t.Fatalf("tutor turn without improved text must not carry a correction")
	}

	proj := tr.Projection()
	if len(proj) != 4 {
		t.Fatalf("unexpected projection length: %d", len(proj))
	}
	if proj[1].Role != RoleTutor || proj[1].Content != "Nice to hear that!" {
		t.Fatalf("unexpected projection entry: %+v", proj[1])
	}
}

func TestTranscriptCopySemantics(t *testing.T) {
	tr := NewTranscript()
	tr.Append(NewTutorTurn("ok", "better", "why", 50, time.Time{}))

	turns := tr.Turns()
	turns[0].Content = "mutated"
	turns[0].Correction.Score = 1

	again := tr.Turns()
	if again[0].Content != "ok" || again[0].Correction.Score != 50 {
		t.Fatalf("internal state mutated via returned slice: %+v", again[0])
	}

	last, ok := tr.Last()
	if !ok || last.Content != "ok" {
		t.Fatalf("unexpected last: %+v", last)
	}
	last.Correction.Explanation = "changed"
	if l2, _ := tr.Last(); l2.Correction.Explanation != "why" {
		t.Fatalf("Last leaked internal correction")
	}
}

func TestTranscriptEmpty(t *testing.T) {
	tr := NewTranscript()
	if _, ok := tr.Last(); ok {
		t.Fatalf("empty transcript has no last turn")
	}
	if len(tr.Projection()) != 0 || len(tr.Turns()) != 0 {
		t.Fatalf("expected empty views")
	}
}
