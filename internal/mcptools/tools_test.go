package mcptools

import (
	"context"
	"sync"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lovable-tutor/internal/catalog"
	"lovable-tutor/internal/history"
	"lovable-tutor/internal/progress"
	"lovable-tutor/internal/session"
	"lovable-tutor/internal/storage"
	"lovable-tutor/internal/tutor"
)

type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *memStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return v, nil
}

func (m *memStore) Put(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

type fixedTutor struct{ result tutor.Result }

func (f fixedTutor) RequestTurn(ctx context.Context, hist []history.Entry, message string) (tutor.Result, error) {
	return f.result, nil
}

func newTools(t *testing.T) (*Tools, *progress.Service) {
	t.Helper()
	p, err := progress.Open(context.Background(), &memStore{data: map[string][]byte{}}, catalog.Default(), progress.Options{})
	require.NoError(t, err)
	tu := fixedTutor{result: tutor.Result{Reply: "Nice!", Score: 60, Improved: "I am happy.", Explanation: "Use 'am' with 'I'."}}
	return New(p, session.New(tu, p)), p
}

func text(t *testing.T, res *mcp.CallToolResultFor[any]) string {
	t.Helper()
	require.Len(t, res.Content, 1)
	tc, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestPracticeSendAndEnd(t *testing.T) {
	tools, p := newTools(t)
	ctx := context.Background()

	res, err := tools.PracticeSend(ctx, nil, &mcp.CallToolParamsFor[PracticeSendParams]{Arguments: PracticeSendParams{Text: "I are happy."}})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, text(t, res), "Score: 60/100")
	assert.Equal(t, 60, res.Meta["score"])

	res, err = tools.PracticeTranscript(ctx, nil, &mcp.CallToolParamsFor[EmptyParams]{})
	require.NoError(t, err)
	assert.Contains(t, text(t, res), "user: I are happy.")
	assert.Contains(t, text(t, res), "tutor: Nice!")

	res, err = tools.PracticeEnd(ctx, nil, &mcp.CallToolParamsFor[EmptyParams]{})
	require.NoError(t, err)
	assert.Contains(t, text(t, res), "2 turns, 1 corrections, average score 60")
	assert.Equal(t, 450, p.Stats().PracticeMinutes)

	res, err = tools.PracticeTranscript(ctx, nil, &mcp.CallToolParamsFor[EmptyParams]{})
	require.NoError(t, err)
	assert.Equal(t, "No messages yet.", text(t, res))
}

func TestPracticeSendRejectsBlank(t *testing.T) {
	tools, _ := newTools(t)
	res, err := tools.PracticeSend(context.Background(), nil, &mcp.CallToolParamsFor[PracticeSendParams]{Arguments: PracticeSendParams{Text: "  "}})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestVocabularyAndLearnWord(t *testing.T) {
	tools, p := newTools(t)
	ctx := context.Background()

	res, err := tools.Vocabulary(ctx, nil, &mcp.CallToolParamsFor[VocabularyParams]{Arguments: VocabularyParams{Category: "Corporate"}})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Meta["total_found"])

	res, err = tools.LearnWord(ctx, nil, &mcp.CallToolParamsFor[LearnWordParams]{Arguments: LearnWordParams{WordID: "v2"}})
	require.NoError(t, err)
	assert.Equal(t, "Learned Leverage!", text(t, res))
	assert.Equal(t, 129, p.Stats().WordsLearned)

	res, err = tools.LearnWord(ctx, nil, &mcp.CallToolParamsFor[LearnWordParams]{Arguments: LearnWordParams{WordID: "nope"}})
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = tools.Dashboard(ctx, nil, &mcp.CallToolParamsFor[EmptyParams]{})
	require.NoError(t, err)
	assert.Contains(t, text(t, res), "Words learned: 129")
}

func TestRegister(t *testing.T) {
	tools, p := newTools(t)
	server := mcp.NewServer(&mcp.Implementation{Name: "test", Version: "0"}, nil)
	assert.NotNil(t, Register(server, p, tools.session))
}
