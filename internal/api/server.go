package api

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yt-gallery/internal/config"
	"github.com/yt-gallery/internal/gallery"
	"github.com/yt-gallery/internal/session"
)

const sessionCookie = "gallery_session"

//go:embed templates/*.tmpl
var templatesFS embed.FS

// Server represents the gallery HTTP server
type Server struct {
	router   *gin.Engine
	sessions *session.Store
	cfg      *config.Config
	log      logrus.FieldLogger
}

// NewServer creates a new server. Every browser session gets its own video
// list component built with factory and mounted on the configured channel.
func NewServer(cfg *config.Config, factory gallery.SearcherFactory, log logrus.FieldLogger) (*Server, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	tmpl, err := template.New("").ParseFS(templatesFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log))
	if len(cfg.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Requested-With"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	router.SetHTMLTemplate(tmpl)

	newComponent := func() *gallery.Component {
		return gallery.New(factory, gallery.Options{
			Pagination: cfg.PaginationMode,
			Overlap:    cfg.OverlapPolicy,
			Logger:     log,
		})
	}

	server := &Server{
		router:   router,
		sessions: session.NewStore(cfg.SessionTTL, newComponent, log),
		cfg:      cfg,
		log:      log,
	}

	server.setupRoutes()

	return server, nil
}

// setupRoutes configures all the routes for the server
func (s *Server) setupRoutes() {
	// Health check
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	// Rendered grid
	s.router.GET("/", s.index)
	s.router.POST("/page/next", s.pageNext)
	s.router.POST("/page/prev", s.pagePrev)

	// JSON view state
	api := s.router.Group("/api")
	api.GET("/videos", s.getVideos)
	api.POST("/videos/next", s.postNext)
	api.POST("/videos/prev", s.postPrev)
	api.POST("/videos/refresh", s.postRefresh)
	api.DELETE("/session", s.deleteSession)
}

// Handler exposes the router, e.g. for httptest
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the server on the specified port
func (s *Server) Start(port string) error {
	return s.router.Run(":" + port)
}

// component returns the caller's component, mounting it on first use.
// A non-empty channelID switches the session to that channel.
func (s *Server) component(c *gin.Context, channelID string) *gallery.Component {
	id, err := c.Cookie(sessionCookie)
	if err != nil || !session.ValidID(id) {
		id = session.NewID()
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, id, int(s.cfg.SessionTTL.Seconds()), "/", "", false, true)

	ctx := fetchContext(c)
	comp, created := s.sessions.GetOrCreate(id)
	switch {
	case created:
		if channelID == "" {
			channelID = s.cfg.YouTubeChannelID
		}
		s.logMountError(comp.Configure(ctx, s.cfg.YouTubeAPIKey, channelID), id, channelID)
	case channelID != "":
		s.logMountError(comp.Configure(ctx, comp.APIKey(), channelID), id, channelID)
	}
	return comp
}

// A failed first fetch is recorded in the state, the page still renders.
func (s *Server) logMountError(err error, sessionID, channelID string) {
	if err == nil {
		return
	}
	s.log.WithError(err).WithFields(logrus.Fields{
		"session_id": sessionID,
		"channel_id": channelID,
	}).Debug("mount fetch failed")
}

// fetchContext detaches fetches from the client connection: a viewer leaving
// mid-request does not cancel the fetch, its result still lands in the state.
func fetchContext(c *gin.Context) context.Context {
	return context.WithoutCancel(c.Request.Context())
}

// index renders the grid of the caller's session
func (s *Server) index(c *gin.Context) {
	comp := s.component(c, c.Query("channelId"))
	c.HTML(http.StatusOK, "index.tmpl", gin.H{
		"State":     comp.State(),
		"ChannelID": comp.ChannelID(),
	})
}

// pageNext handles the "Next Page" control
func (s *Server) pageNext(c *gin.Context) {
	comp := s.component(c, "")
	s.logPagingError(comp.NextPage(fetchContext(c)), "next")
	c.Redirect(http.StatusSeeOther, "/")
}

// pagePrev handles the "Previous Page" control
func (s *Server) pagePrev(c *gin.Context) {
	comp := s.component(c, "")
	s.logPagingError(comp.PrevPage(fetchContext(c)), "prev")
	c.Redirect(http.StatusSeeOther, "/")
}

// Fetch failures are already recorded and logged by the component.
func (s *Server) logPagingError(err error, direction string) {
	if errors.Is(err, gallery.ErrNoPage) || errors.Is(err, gallery.ErrFetchInFlight) {
		s.log.WithError(err).WithField("direction", direction).Debug("pagination ignored")
	}
}

// getVideos returns the view state of the caller's session
func (s *Server) getVideos(c *gin.Context) {
	comp := s.component(c, c.Query("channelId"))
	c.JSON(http.StatusOK, comp.State())
}

func (s *Server) postNext(c *gin.Context) {
	comp := s.component(c, "")
	s.respondState(c, comp, comp.NextPage(fetchContext(c)))
}

func (s *Server) postPrev(c *gin.Context) {
	comp := s.component(c, "")
	s.respondState(c, comp, comp.PrevPage(fetchContext(c)))
}

// postRefresh reissues a fresh fetch of the first page
func (s *Server) postRefresh(c *gin.Context) {
	comp := s.component(c, "")
	s.respondState(c, comp, comp.Fetch(fetchContext(c), ""))
}

// deleteSession unmounts the caller's component
func (s *Server) deleteSession(c *gin.Context) {
	if id, err := c.Cookie(sessionCookie); err == nil {
		s.sessions.Delete(id)
	}
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	c.Status(http.StatusNoContent)
}

// respondState maps pagination errors to status codes. A failed fetch is not
// an HTTP error: the state carries the message.
func (s *Server) respondState(c *gin.Context, comp *gallery.Component, err error) {
	switch {
	case errors.Is(err, gallery.ErrNoPage):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, gallery.ErrFetchInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, comp.State())
	}
}

func requestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(logrus.Fields{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    c.Writer.Status(),
			"latency":   time.Since(start).String(),
			"client_ip": c.ClientIP(),
		}).Info("request")
	}
}
