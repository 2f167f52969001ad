package httpapi

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lovable-tutor/internal/analytics"
	"lovable-tutor/internal/catalog"
	"lovable-tutor/internal/history"
	"lovable-tutor/internal/progress"
	"lovable-tutor/internal/session"
	"lovable-tutor/internal/storage"
	"lovable-tutor/internal/tutor"
)

type Progress interface {
	Dashboard() progress.Dashboard
	Tasks() []catalog.Task
	Vocabulary(f progress.VocabFilter) []catalog.Word
	StartTask(ctx context.Context, id string) (progress.View, error)
	LearnWord(ctx context.Context, id string) (catalog.Word, bool, error)
	Activity() ([]storage.Event, error)
}

type Session interface {
	Submit(ctx context.Context, text string) (<-chan struct{}, error)
	Send(ctx context.Context, text string) (history.Turn, error)
	End(ctx context.Context) (session.Summary, error)
	Snapshot() session.View
	Subscribe(fn func(session.Event)) (cancel func())
}

type Server struct {
	progress Progress
	session  Session
	hub      *Hub
	now      func() time.Time
	cancel   func()
}

func NewServer(p Progress, s Session) *Server {
	srv := &Server{
		progress: p,
		session:  s,
		hub:      NewHub(),
		now:      func() time.Time { return time.Now().UTC() },
	}
	srv.cancel = s.Subscribe(srv.hub.Publish)
	return srv
}

// Close detaches the event stream from the session.
func (s *Server) Close() {
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	Setup(r)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "lovable-tutor"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.GET("/dashboard", s.getDashboard)
	api.GET("/tasks", s.getTasks)
	api.POST("/tasks/:id/start", s.startTask)
	api.GET("/vocabulary", s.getVocabulary)
	api.POST("/vocabulary/:id/learn", s.learnWord)
	api.GET("/progress/weekly", s.getWeekly)

	api.GET("/session", s.getSession)
	api.POST("/session/messages", s.postMessage)
	api.POST("/session/end", s.endSession)
	api.GET("/session/events", s.streamEvents)
	return r
}

func errorJSON(c *gin.Context, code int, err error) {
	c.JSON(code, gin.H{"error": err.Error()})
}

func (s *Server) getDashboard(c *gin.Context) {
	c.JSON(http.StatusOK, s.progress.Dashboard())
}

func (s *Server) getTasks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tasks": s.progress.Tasks()})
}

func (s *Server) startTask(c *gin.Context) {
	view, err := s.progress.StartTask(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, progress.ErrUnknownTask) {
			errorJSON(c, http.StatusNotFound, err)
			return
		}
		errorJSON(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"view": view})
}

func (s *Server) getVocabulary(c *gin.Context) {
	f := progress.VocabFilter{
		Category:   catalog.Category(c.Query("category")),
		Difficulty: catalog.Difficulty(c.Query("difficulty")),
		Query:      c.Query("q"),
	}
	if raw := c.Query("learned"); raw != "" {
		learned, err := strconv.ParseBool(raw)
		if err != nil {
			errorJSON(c, http.StatusBadRequest, errors.New("learned must be true or false"))
			return
		}
		f.Learned = &learned
	}
	c.JSON(http.StatusOK, gin.H{"words": s.progress.Vocabulary(f)})
}

func (s *Server) learnWord(c *gin.Context) {
	word, learned, err := s.progress.LearnWord(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, progress.ErrUnknownWord) {
			errorJSON(c, http.StatusNotFound, err)
			return
		}
		errorJSON(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"word": word, "newly_learned": learned})
}

func (s *Server) getWeekly(c *gin.Context) {
	events, err := s.progress.Activity()
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": analytics.Weekly(events, s.now())})
}

func (s *Server) getSession(c *gin.Context) {
	c.JSON(http.StatusOK, s.session.Snapshot())
}

type messageRequest struct {
	Text string `json:"text"`
}

func (s *Server) postMessage(c *gin.Context) {
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}

	if c.Query("wait") == "true" {
		turn, err := s.session.Send(c.Request.Context(), req.Text)
		if err != nil {
			s.sessionError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"turn": turn, "session": s.session.Snapshot()})
		return
	}

	if _, err := s.session.Submit(c.Request.Context(), req.Text); err != nil {
		s.sessionError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, s.session.Snapshot())
}

func (s *Server) sessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrEmptyMessage):
		errorJSON(c, http.StatusBadRequest, err)
	case errors.Is(err, session.ErrBusy):
		errorJSON(c, http.StatusConflict, err)
	case errors.Is(err, session.ErrSessionEnded):
		errorJSON(c, http.StatusGone, err)
	case errors.Is(err, tutor.ErrTransport), errors.Is(err, tutor.ErrFormat):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "session": s.session.Snapshot()})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// The client went away; the reply still lands in the transcript.
		c.Status(http.StatusAccepted)
	default:
		errorJSON(c, http.StatusInternalServerError, err)
	}
}

func (s *Server) endSession(c *gin.Context) {
	sum, err := s.session.End(c.Request.Context())
	if err != nil {
		log.Printf("❌ session end side effect failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "summary": sum})
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": sum, "dashboard": s.progress.Dashboard()})
}

func (s *Server) streamEvents(c *gin.Context) {
	s.hub.Serve(c.Writer, c.Request, s.session.Snapshot)
}
