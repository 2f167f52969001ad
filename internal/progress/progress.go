// Package progress owns the learner's stats, daily tasks and vocabulary.
//
// State is persisted as three JSON blobs (lovable_stats, lovable_tasks,
// lovable_vocab). Every mutation writes all three before it becomes
// visible, so a failed write leaves the in-memory state unchanged.
package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"lovable-tutor/internal/catalog"
	"lovable-tutor/internal/metrics"
	"lovable-tutor/internal/session"
	"lovable-tutor/internal/storage"
)

const (
	KeyStats = "lovable_stats"
	KeyTasks = "lovable_tasks"
	KeyVocab = "lovable_vocab"

	DefaultCreditMinutes = 30
)

var (
	ErrUnknownTask = errors.New("progress: unknown task")
	ErrUnknownWord = errors.New("progress: unknown word")
)

// View names the screen a task opens.
type View string

const (
	ViewChat       View = "chat"
	ViewVocabulary View = "vocabulary"
)

type Dashboard struct {
	Stats     catalog.Stats  `json:"stats"`
	Tasks     []catalog.Task `json:"tasks"`
	Completed int            `json:"completed"`
	Total     int            `json:"total"`
	Percent   int            `json:"percent"`
}

// VocabFilter narrows Vocabulary. Zero fields match everything.
type VocabFilter struct {
	Category   catalog.Category
	Difficulty catalog.Difficulty
	Learned    *bool
	Query      string
}

func (f VocabFilter) match(w catalog.Word) bool {
	if f.Category != "" && !strings.EqualFold(string(f.Category), string(w.Category)) {
		return false
	}
	if f.Difficulty != "" && !strings.EqualFold(string(f.Difficulty), string(w.Difficulty)) {
		return false
	}
	if f.Learned != nil && *f.Learned != w.IsLearned {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		hay := strings.ToLower(w.Word + " " + w.MeaningEn + " " + w.Example)
		if !strings.Contains(hay, q) {
			return false
		}
	}
	return true
}

type Options struct {
	// CreditMinutes is added to practiceMinutes for every completed chat session.
	CreditMinutes int
	// Recorder receives activity events; nil disables the activity log.
	Recorder storage.Recorder
	Now      func() time.Time
}

type state struct {
	stats catalog.Stats
	tasks []catalog.Task
	vocab []catalog.Word
}

func (s state) clone() state {
	return state{
		stats: s.stats,
		tasks: append([]catalog.Task(nil), s.tasks...),
		vocab: append([]catalog.Word(nil), s.vocab...),
	}
}

type Service struct {
	store    storage.Store
	recorder storage.Recorder
	credit   int
	now      func() time.Time

	mu sync.Mutex
	st state
}

// Open loads persisted state, falling back to seed for every blob that is
// missing or unreadable.
func Open(ctx context.Context, store storage.Store, seed catalog.Seed, opts Options) (*Service, error) {
	if opts.CreditMinutes <= 0 {
		opts.CreditMinutes = DefaultCreditMinutes
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	s := &Service{store: store, recorder: opts.Recorder, credit: opts.CreditMinutes, now: opts.Now}

	seed = seed.Clone()
	s.st = state{stats: seed.Stats, tasks: seed.Tasks, vocab: seed.Vocabulary}
	if err := load(ctx, store, KeyStats, &s.st.stats); err != nil {
		return nil, err
	}
	if err := load(ctx, store, KeyTasks, &s.st.tasks); err != nil {
		return nil, err
	}
	if err := load(ctx, store, KeyVocab, &s.st.vocab); err != nil {
		return nil, err
	}
	return s, nil
}

// load leaves dst untouched when the key is missing or its blob does not decode.
func load[T any](ctx context.Context, store storage.Store, key string, dst *T) error {
	data, err := store.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		log.Printf("⚠️ Ignoring unreadable %s, using seed: %v", key, err)
		return nil
	}
	*dst = v
	return nil
}

func (s *Service) save(ctx context.Context, next state) error {
	blobs := []struct {
		key string
		v   any
	}{
		{KeyStats, next.stats},
		{KeyTasks, next.tasks},
		{KeyVocab, next.vocab},
	}
	for _, b := range blobs {
		data, err := json.Marshal(b.v)
		if err != nil {
			return fmt.Errorf("encode %s: %w", b.key, err)
		}
		if err := s.store.Put(ctx, b.key, data); err != nil {
			return fmt.Errorf("save %s: %w", b.key, err)
		}
	}
	return nil
}

// commit applies fn to a copy of the state and keeps it only if it was saved.
func (s *Service) commit(ctx context.Context, fn func(*state) error) error {
	next := s.st.clone()
	if err := fn(&next); err != nil {
		return err
	}
	if err := s.save(ctx, next); err != nil {
		return err
	}
	s.st = next
	return nil
}

func (s *Service) record(ev storage.Event) {
	if s.recorder == nil {
		return
	}
	ev.Timestamp = s.now()
	if err := s.recorder.AppendEvent(ev); err != nil {
		log.Printf("⚠️ Failed to record %s activity: %v", ev.Kind, err)
	}
}

func (s *Service) Stats() catalog.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.stats
}

func (s *Service) Tasks() []catalog.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]catalog.Task(nil), s.st.tasks...)
}

func (s *Service) Dashboard() Dashboard {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := Dashboard{
		Stats: s.st.stats,
		Tasks: append([]catalog.Task(nil), s.st.tasks...),
		Total: len(s.st.tasks),
	}
	for _, t := range s.st.tasks {
		if t.Completed {
			d.Completed++
		}
	}
	if d.Total > 0 {
		d.Percent = d.Completed * 100 / d.Total
	}
	return d
}

func (s *Service) Vocabulary(f VocabFilter) []catalog.Word {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]catalog.Word, 0, len(s.st.vocab))
	for _, w := range s.st.vocab {
		if f.match(w) {
			out = append(out, w)
		}
	}
	return out
}

// StartTask reports where the task is practiced. It does not complete it.
func (s *Service) StartTask(ctx context.Context, id string) (View, error) {
	s.mu.Lock()
	var task *catalog.Task
	for i := range s.st.tasks {
		if s.st.tasks[i].ID == id {
			t := s.st.tasks[i]
			task = &t
			break
		}
	}
	s.mu.Unlock()
	if task == nil {
		return "", fmt.Errorf("%w: %s", ErrUnknownTask, id)
	}

	s.record(storage.Event{Kind: storage.KindTaskStarted, TaskID: id})
	if task.Type == catalog.TaskChat {
		return ViewChat, nil
	}
	return ViewVocabulary, nil
}

// LearnWord marks a word learned. wordsLearned grows only the first time;
// learned reports whether this call changed anything.
func (s *Service) LearnWord(ctx context.Context, id string) (word catalog.Word, learned bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err = s.commit(ctx, func(next *state) error {
		for i := range next.vocab {
			if next.vocab[i].ID != id {
				continue
			}
			if !next.vocab[i].IsLearned {
				next.vocab[i].IsLearned = true
				next.stats.WordsLearned++
				learned = true
			}
			word = next.vocab[i]
			return nil
		}
		return fmt.Errorf("%w: %s", ErrUnknownWord, id)
	})
	if err != nil {
		return catalog.Word{}, false, err
	}
	if learned {
		metrics.WordsLearned.Inc()
		s.record(storage.Event{Kind: storage.KindWordLearned, WordID: id})
		log.Printf("📚 Word %s (%s) learned", id, word.Word)
	}
	return word, learned, nil
}

// ChatSessionCompleted marks every chat task completed and credits practice
// minutes. Each call counts, including repeated calls.
func (s *Service) ChatSessionCompleted(ctx context.Context, sum session.Summary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.commit(ctx, func(next *state) error {
		for i := range next.tasks {
			if next.tasks[i].Type == catalog.TaskChat {
				next.tasks[i].Completed = true
			}
		}
		next.stats.PracticeMinutes += s.credit
		return nil
	})
	if err != nil {
		return err
	}
	s.record(storage.Event{
		Kind:            storage.KindChatSession,
		SessionID:       sum.SessionID,
		Turns:           sum.Turns,
		Corrections:     sum.Corrections,
		AverageScore:    sum.AverageScore,
		PracticeMinutes: s.credit,
	})
	return nil
}

// RollOverDay starts a new day: the streak grows if any task was completed
// and resets otherwise, and every task is open again.
func (s *Service) RollOverDay(ctx context.Context) (catalog.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var completed int
	err := s.commit(ctx, func(next *state) error {
		for i := range next.tasks {
			if next.tasks[i].Completed {
				completed++
			}
			next.tasks[i].Completed = false
		}
		if completed > 0 {
			next.stats.Streak++
		} else {
			next.stats.Streak = 0
		}
		return nil
	})
	if err != nil {
		return catalog.Stats{}, err
	}
	s.record(storage.Event{Kind: storage.KindDayRollover})
	log.Printf("🌅 Day rolled over: %d task(s) completed, streak=%d", completed, s.st.stats.Streak)
	return s.st.stats, nil
}

// Activity returns the recorded activity log, or nil without a recorder.
func (s *Service) Activity() ([]storage.Event, error) {
	if s.recorder == nil {
		return nil, nil
	}
	return s.recorder.LoadEvents()
}
