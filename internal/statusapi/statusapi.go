// Package statusapi exposes the engine's status and control surface over
// HTTP: gin.New()+gin.Recovery(), one handler method per route, gin.H{}
// JSON bodies.
package statusapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"usbridge/internal/engine"
)

// Server serves /status, /stats and the streaming-enable control endpoint
// for one engine instance.
type Server struct {
	eng *engine.Engine
	router *gin.Engine
	httpServer *http.Server
	sessionID string
}

// New builds a Server bound to the given engine. A session ID is minted
// once per process so log lines and responses can be correlated across a
// daemon's lifetime.
func New(eng *engine.Engine) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		eng: eng,
		router: router,
		sessionID: uuid.NewString(),
	}

	router.GET("/status", s.handleStatus)
	router.GET("/stats", s.handleStats)
	router.POST("/p2o-audio-enabled", s.handleSetP2OAudioEnabled)
	router.POST("/stop", s.handleStop)

	return s
}

// ListenAndServe starts the HTTP server on addr; it blocks until the
// server stops or returns an error.
func (s *Server) ListenAndServe(addr string) error {
	s.httpServer = &http.Server{Addr: addr, Handler: s.router}
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"session_id": s.sessionID,
		"status": s.eng.Status().String(),
		"device": s.eng.DeviceDescriptor().Name,
		"time": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleStats(c *gin.Context) {
	stats := s.eng.Stats()
	c.JSON(http.StatusOK, gin.H{
		"session_id": s.sessionID,
		"status": stats.Status.String(),
		"p2o_latency": stats.P2OLatency,
		"p2o_max_latency": stats.P2OMaxLatency,
		"p2o_audio_enabled": stats.P2OAudioEnabled,
		"frames_processed": stats.FramesProcessed,
		"underruns": stats.Underruns,
		"overruns": stats.Overruns,
		"midi_in_dropped": stats.MIDIInDropped,
		"midi_out_dropped": stats.MIDIOutDropped,
	})
}

type setP2OAudioEnabledRequest struct {
	Enabled bool `json:"enabled"`
}

func (s *Server) handleSetP2OAudioEnabled(c *gin.Context) {
	var req setP2OAudioEnabledRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	s.eng.SetP2OAudioEnabled(req.Enabled)
	c.JSON(http.StatusOK, gin.H{"p2o_audio_enabled": req.Enabled})
}

func (s *Server) handleStop(c *gin.Context) {
	s.eng.Stop()
	c.JSON(http.StatusOK, gin.H{"message": "stop requested"})
}
