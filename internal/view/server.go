package view

import (
	"context"
	"embed"
	"html/template"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ltlx4/technews/internal/cache"
	"github.com/ltlx4/technews/internal/pipeline"
)

//go:embed templates/*.html
var templateFS embed.FS

// Server serves the ranked news view over HTTP. The pipeline never runs in
// the request path: a background loop refreshes on an interval and handlers
// only read the latest snapshot. Runs are serialized with a mutex, keeping
// the single-writer assumption of the cache store.
type Server struct {
	processor *pipeline.Processor
	interval  time.Duration

	runMu sync.Mutex // serializes pipeline runs

	mu       sync.RWMutex
	snapshot *cache.Cache
}

func NewServer(p *pipeline.Processor, interval time.Duration) *Server {
	return &Server{
		processor: p,
		interval:  interval,
		snapshot:  cache.NewCache(),
	}
}

// Start refreshes once, launches the background refresh loop, and serves
// until ListenAndServe returns.
func (s *Server) Start(ctx context.Context, addr string) error {
	s.refresh(ctx)
	go s.refreshLoop(ctx)

	log.Printf("serving on %s", addr)
	return http.ListenAndServe(addr, s.Router())
}

func (s *Server) refreshLoop(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.refresh(ctx)
		}
	}
}

func (s *Server) refresh(ctx context.Context) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	c, stats, err := s.processor.Run(ctx)
	if err != nil {
		log.Printf("refresh: %v", err)
	}
	log.Printf("refresh: %d fetched, %d new, %d feed errors", stats.Fetched, stats.New, stats.FeedErrors)

	s.mu.Lock()
	s.snapshot = c
	s.mu.Unlock()
}

func (s *Server) latest() *cache.Cache {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Router constructs the Gin engine with registered routes.
func (s *Server) Router() *gin.Engine {
	tmpl := template.Must(template.New("").Funcs(template.FuncMap{
		"datetimeformat": FormatTimestamp,
	}).ParseFS(templateFS, "templates/*.html"))

	r := gin.New()
	r.Use(gin.Recovery())
	r.SetHTMLTemplate(tmpl)

	r.GET("/", s.handleHome)
	r.GET("/api/articles", s.handleArticles)
	r.GET("/healthz", s.handleHealth)
	r.POST("/refresh", s.handleRefresh)
	return r
}

func (s *Server) handleHome(c *gin.Context) {
	snap := s.latest()
	articles := Ranked(snap)
	groups := TagGroups(articles)

	lastUpdated := ""
	if snap.LastUpdated != nil {
		lastUpdated = *snap.LastUpdated
	}

	c.HTML(http.StatusOK, "index.html", gin.H{
		"Articles":    articles,
		"Highlights":  Highlights(articles),
		"TagNames":    TagNames(groups),
		"TagGroups":   groups,
		"LastUpdated": lastUpdated,
	})
}

func (s *Server) handleArticles(c *gin.Context) {
	snap := s.latest()
	c.JSON(http.StatusOK, gin.H{
		"articles":     Ranked(snap),
		"last_updated": snap.LastUpdated,
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleRefresh(c *gin.Context) {
	s.refresh(c.Request.Context())
	snap := s.latest()
	c.JSON(http.StatusOK, gin.H{
		"articles":     len(snap.Articles),
		"last_updated": snap.LastUpdated,
	})
}
