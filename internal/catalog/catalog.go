// Package catalog holds the learner-facing data model and the seed used
// before anything has been saved.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var defaultSeed []byte

type Stats struct {
	Streak          int `json:"streak" yaml:"streak"`
	WordsLearned    int `json:"wordsLearned" yaml:"wordsLearned"`
	PracticeMinutes int `json:"practiceMinutes" yaml:"practiceMinutes"`
	TestsPassed     int `json:"testsPassed" yaml:"testsPassed"`
	Accuracy        int `json:"accuracy" yaml:"accuracy"`
}

type TaskType string

const (
	TaskChat     TaskType = "chat"
	TaskVocab    TaskType = "vocab"
	TaskRevision TaskType = "revision"
)

type Task struct {
	ID          string   `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	Duration    string   `json:"duration" yaml:"duration"`
	Type        TaskType `json:"type" yaml:"type"`
	Completed   bool     `json:"completed" yaml:"completed"`
}

type Category string

const (
	Conversational Category = "Conversational"
	Corporate      Category = "Corporate"
)

type Difficulty string

const (
	Beginner     Difficulty = "Beginner"
	Intermediate Difficulty = "Intermediate"
	Advanced     Difficulty = "Advanced"
)

type Word struct {
	ID         string     `json:"id" yaml:"id"`
	Word       string     `json:"word" yaml:"word"`
	MeaningEn  string     `json:"meaningEn" yaml:"meaningEn"`
	MeaningHi  string     `json:"meaningHi" yaml:"meaningHi"`
	Example    string     `json:"example" yaml:"example"`
	Category   Category   `json:"category" yaml:"category"`
	Difficulty Difficulty `json:"difficulty" yaml:"difficulty"`
	IsLearned  bool       `json:"isLearned" yaml:"isLearned"`
}

type Seed struct {
	Stats      Stats  `yaml:"stats"`
	Tasks      []Task `yaml:"tasks"`
	Vocabulary []Word `yaml:"vocabulary"`
}

// Clone returns a seed that shares no slices with s.
func (s Seed) Clone() Seed {
	return Seed{
		Stats:      s.Stats,
		Tasks:      append([]Task(nil), s.Tasks...),
		Vocabulary: append([]Word(nil), s.Vocabulary...),
	}
}

// Default returns the built-in seed.
func Default() Seed {
	seed, err := Parse(defaultSeed)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded seed is invalid: %v", err))
	}
	return seed
}

// Load reads a seed file, or returns the built-in seed when path is empty.
func Load(path string) (Seed, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("read seed: %w", err)
	}
	seed, err := Parse(data)
	if err != nil {
		return Seed{}, fmt.Errorf("parse seed %s: %w", path, err)
	}
	return seed, nil
}

func Parse(data []byte) (Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return Seed{}, err
	}
	if err := seed.validate(); err != nil {
		return Seed{}, err
	}
	return seed, nil
}

func (s Seed) validate() error {
	ids := make(map[string]bool)
	for _, t := range s.Tasks {
		if t.ID == "" {
			return fmt.Errorf("task %q has no id", t.Title)
		}
		if ids["task:"+t.ID] {
			return fmt.Errorf("duplicate task id %q", t.ID)
		}
		ids["task:"+t.ID] = true
		switch t.Type {
		case TaskChat, TaskVocab, TaskRevision:
		default:
			return fmt.Errorf("task %q has unknown type %q", t.ID, t.Type)
		}
	}
	for _, w := range s.Vocabulary {
		if w.ID == "" {
			return fmt.Errorf("word %q has no id", w.Word)
		}
		if ids["word:"+w.ID] {
			return fmt.Errorf("duplicate word id %q", w.ID)
		}
		ids["word:"+w.ID] = true
	}
	return nil
}
