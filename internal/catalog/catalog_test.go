package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSeed(t *testing.T) {
	seed := Default()
	assert.Equal(t, Stats{Streak: 5, WordsLearned: 128, PracticeMinutes: 420, TestsPassed: 12, Accuracy: 88}, seed.Stats)
	require.Len(t, seed.Tasks, 5)
	require.Len(t, seed.Vocabulary, 4)

	chat := 0
	for _, task := range seed.Tasks {
		assert.False(t, task.Completed)
		if task.Type == TaskChat {
			chat++
		}
	}
	assert.Equal(t, 2, chat)
	assert.Equal(t, "मिलनसार", seed.Vocabulary[0].MeaningHi)
	assert.Equal(t, Corporate, seed.Vocabulary[1].Category)
}

func TestLoadOverride(t *testing.T) {
	p := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(p, []byte(`
stats: {streak: 1}
tasks:
  - {id: a, title: Chat, type: chat}
vocabulary:
  - {id: w, word: Brisk, category: Conversational, difficulty: Beginner}
`), 0o644))

	seed, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, 1, seed.Stats.Streak)
	assert.Equal(t, "Brisk", seed.Vocabulary[0].Word)
}

func TestLoadEmptyPathUsesDefault(t *testing.T) {
	seed, err := Load("")
	require.NoError(t, err)
	assert.Len(t, seed.Tasks, 5)
}

func TestParseRejectsBadSeeds(t *testing.T) {
	for name, doc := range map[string]string{
		"unknown type": "tasks: [{id: a, type: quiz}]",
		"duplicate":    "tasks: [{id: a, type: chat}, {id: a, type: vocab}]",
		"word no id":   "vocabulary: [{word: x}]",
		"not yaml":     "tasks: [",
	} {
		_, err := Parse([]byte(doc))
		assert.Error(t, err, name)
	}
}

func TestCloneDoesNotShare(t *testing.T) {
	a := Default()
	b := a.Clone()
	b.Tasks[0].Completed = true
	assert.False(t, a.Tasks[0].Completed)
}
