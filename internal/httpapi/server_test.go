package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
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

// scriptedTutor replies immediately unless hold is set, in which case it
// waits for release.
type scriptedTutor struct {
	result  tutor.Result
	err     error
	hold    bool
	release chan struct{}
}

func (s *scriptedTutor) RequestTurn(ctx context.Context, hist []history.Entry, message string) (tutor.Result, error) {
	if s.hold {
		<-s.release
	}
	return s.result, s.err
}

type fixture struct {
	router   *gin.Engine
	server   *Server
	progress *progress.Service
	session  *session.Controller
	tutor    *scriptedTutor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	rec, err := storage.NewFileRecorder(t.TempDir() + "/activity.jsonl")
	require.NoError(t, err)
	p, err := progress.Open(context.Background(), &memStore{data: map[string][]byte{}}, catalog.Default(), progress.Options{Recorder: rec})
	require.NoError(t, err)

	tu := &scriptedTutor{
		result:  tutor.Result{Reply: "Nice to hear that!", Score: 60, Improved: "I am happy today.", Explanation: "Use 'am' with 'I'."},
		release: make(chan struct{}),
	}
	sess := session.New(tu, p)
	srv := NewServer(p, sess)
	t.Cleanup(srv.Close)
	return &fixture{router: srv.Router(), server: srv, progress: p, session: sess, tutor: tu}
}

func (f *fixture) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func TestHealthAndMetrics(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)

	w = f.do(http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodOptions, "/api/dashboard", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestDashboardAndTasks(t *testing.T) {
	f := newFixture(t)

	var d progress.Dashboard
	w := f.do(http.MethodGet, "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &d)
	assert.Equal(t, 5, d.Stats.Streak)
	assert.Equal(t, 5, d.Total)

	w = f.do(http.MethodPost, "/api/tasks/1/start", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"view":"chat"}`, w.Body.String())

	w = f.do(http.MethodPost, "/api/tasks/4/start", nil)
	assert.JSONEq(t, `{"view":"vocabulary"}`, w.Body.String())

	w = f.do(http.MethodPost, "/api/tasks/99/start", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVocabulary(t *testing.T) {
	f := newFixture(t)

	var out struct {
		Words []catalog.Word `json:"words"`
	}
	w := f.do(http.MethodGet, "/api/vocabulary?category=Corporate", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &out)
	assert.Len(t, out.Words, 2)

	w = f.do(http.MethodGet, "/api/vocabulary?learned=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodPost, "/api/vocabulary/v1/learn", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"newly_learned":true`)
	assert.Equal(t, 129, f.progress.Stats().WordsLearned)

	w = f.do(http.MethodPost, "/api/vocabulary/v1/learn", nil)
	assert.Contains(t, w.Body.String(), `"newly_learned":false`)
	assert.Equal(t, 129, f.progress.Stats().WordsLearned)

	w = f.do(http.MethodGet, "/api/vocabulary?learned=true", nil)
	decode(t, w, &out)
	require.Len(t, out.Words, 1)
	assert.Equal(t, "v1", out.Words[0].ID)

	w = f.do(http.MethodPost, "/api/vocabulary/zz/learn", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWeeklyProgress(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.progress.LearnWord(context.Background(), "v2")
	require.NoError(t, err)

	var out struct {
		Days []struct {
			Day   string `json:"day"`
			Words int    `json:"words"`
		} `json:"days"`
	}
	w := f.do(http.MethodGet, "/api/progress/weekly", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &out)
	require.Len(t, out.Days, 7)
	assert.Equal(t, 1, out.Days[6].Words)
}

func TestPostMessageWait(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/api/session/messages?wait=true", gin.H{"text": "I are happy today."})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var out struct {
		Turn    history.Turn `json:"turn"`
		Session session.View `json:"session"`
	}
	decode(t, w, &out)
	assert.Equal(t, "Nice to hear that!", out.Turn.Content)
	require.NotNil(t, out.Turn.Correction)
	assert.Equal(t, 60, out.Turn.Correction.Score)
	assert.Len(t, out.Session.Turns, 2)
}

func TestPostMessageValidation(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/api/session/messages", gin.H{"text": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodPost, "/api/session/messages", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, f.session.Transcript())
}

func TestPostMessageBusy(t *testing.T) {
	f := newFixture(t)
	f.tutor.hold = true

	w := f.do(http.MethodPost, "/api/session/messages", gin.H{"text": "first"})
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), `"state":"awaiting_reply"`)

	w = f.do(http.MethodPost, "/api/session/messages", gin.H{"text": "second"})
	assert.Equal(t, http.StatusConflict, w.Code)

	close(f.tutor.release)
	require.Eventually(t, func() bool { return f.session.State() == session.Idle }, time.Second, time.Millisecond)
	assert.Len(t, f.session.Transcript(), 2)
}

func TestPostMessageSurfacedTutorError(t *testing.T) {
	f := newFixture(t)
	f.tutor.err = &tutor.Error{Kind: tutor.KindFormat, Err: assert.AnError}

	w := f.do(http.MethodPost, "/api/session/messages?wait=true", gin.H{"text": "Hello"})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), `"state":"errored"`)
}

func TestEndSession(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodPost, "/api/session/messages?wait=true", gin.H{"text": "Hello"})
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(http.MethodPost, "/api/session/end", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var out struct {
		Summary   session.Summary    `json:"summary"`
		Dashboard progress.Dashboard `json:"dashboard"`
	}
	decode(t, w, &out)
	assert.Equal(t, 2, out.Summary.Turns)
	assert.Equal(t, 1, out.Summary.Corrections)
	assert.Equal(t, 450, out.Dashboard.Stats.PracticeMinutes)
	assert.Equal(t, 2, out.Dashboard.Completed)
	assert.Empty(t, f.session.Transcript())
}

func TestSessionEventsStream(t *testing.T) {
	f := newFixture(t)
	ts := httptest.NewServer(f.router)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/session/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	var first map[string]any
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, "snapshot", first["kind"])
	require.Eventually(t, func() bool { return f.server.hub.Len() == 1 }, time.Second, time.Millisecond)

	_, err = f.session.Send(context.Background(), "Hello")
	require.NoError(t, err)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var kinds []string
	for i := 0; i < 4; i++ {
		var ev struct {
			Kind  string `json:"kind"`
			State string `json:"state"`
		}
		require.NoError(t, conn.ReadJSON(&ev))
		kinds = append(kinds, ev.Kind+":"+ev.State)
	}
	assert.Equal(t, []string{
		"turn_appended:awaiting_reply",
		"state_changed:awaiting_reply",
		"turn_appended:idle",
		"state_changed:idle",
	}, kinds)
}

func TestHubSkipsEventsCoveredBySnapshot(t *testing.T) {
	hub := NewHub()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.Serve(w, r, func() session.View {
			// Committed after registration but before the snapshot was read.
			hub.Publish(session.Event{Seq: 5, Kind: session.EventTurnAppended})
			return session.View{Seq: 5, State: session.AwaitingReply}
		})
	}))
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	var first struct {
		Kind     string       `json:"kind"`
		Snapshot session.View `json:"snapshot"`
	}
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, "snapshot", first.Kind)
	assert.Equal(t, uint64(5), first.Snapshot.Seq)

	hub.Publish(session.Event{Seq: 6, Kind: session.EventStateChanged, State: session.Idle})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var next session.Event
	require.NoError(t, conn.ReadJSON(&next))
	assert.Equal(t, uint64(6), next.Seq, "the event already in the snapshot must not be sent again")
}
