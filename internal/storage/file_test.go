package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileRecorder_AppendAndLoad(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "logs", "activity.jsonl")
	rec, err := NewFileRecorder(p)
	if err != nil {
		t.Fatalf("init recorder: %v", err)
	}

	ev1 := Event{Timestamp: time.Unix(1, 0).UTC(), Kind: KindChatSession, SessionID: "a", Turns: 4, PracticeMinutes: 30}
	ev2 := Event{Timestamp: time.Unix(2, 0).UTC(), Kind: KindWordLearned, WordID: "v1"}
	if err := rec.AppendEvent(ev1); err != nil {
		t.Fatalf("append1: %v", err)
	}
	if err := rec.AppendEvent(ev2); err != nil {
		t.Fatalf("append2: %v", err)
	}

	events, err := rec.LoadEvents()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("want 2, got %d", len(events))
	}
	if events[0].SessionID != "a" || events[1].WordID != "v1" {
		t.Fatalf("order mismatch: %+v", events)
	}

	st, err := os.Stat(p)
	if err != nil || st.Size() == 0 {
		t.Fatalf("file not written")
	}
}

func TestFileRecorder_SkipsGarbageLines(t *testing.T) {
	p := filepath.Join(t.TempDir(), "activity.jsonl")
	if err := os.WriteFile(p, []byte("not json\n\n{\"kind\":\"word_learned\",\"word_id\":\"v2\"}\n"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}
	rec, err := NewFileRecorder(p)
	if err != nil {
		t.Fatalf("init recorder: %v", err)
	}
	events, err := rec.LoadEvents()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(events) != 1 || events[0].WordID != "v2" {
		t.Fatalf("unexpected events: %+v", events)
	}
}
