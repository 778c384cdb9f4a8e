// Package server exposes the assistant pipeline over HTTP.
//
// Two actions mirror the user-facing surface: explaining a document image
// and asking a follow-up question about it. Pipeline faults are already
// folded into user-readable text by internal/assist, so handlers only reject
// structurally invalid requests.
package server

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"sahaayika/internal/assist"
	"sahaayika/internal/logger"
	"sahaayika/internal/prompt"
)

// Server wires the assist pipeline into HTTP handlers.
type Server struct {
	service  *assist.Service
	audioDir string
	log      zerolog.Logger
}

// New creates a server serving the given pipeline. Audio artifacts are
// served from audioDir.
func New(service *assist.Service, audioDir string) *Server {
	if audioDir == "" {
		audioDir = "."
	}
	return &Server{
		service:  service,
		audioDir: audioDir,
		log:      logger.WithComponent("server"),
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", s.handleHealth)
	api := router.Group("/api")
	{
		api.POST("/explain", s.handleExplain)
		api.POST("/doubt", s.handleDoubt)
		api.GET("/audio/:name", s.handleAudio)
	}
	return router
}

// Run starts the HTTP server on addr.
func (s *Server) Run(addr string) error {
	s.log.Info().Str("addr", addr).Msg("Starting HTTP server")
	return s.Router().Run(addr)
}

type explanationResponse struct {
	Text     string `json:"text"`
	AudioURL string `json:"audio_url,omitempty"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleExplain(c *gin.Context) {
	imageFile, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}

	imagePath, cleanup, err := s.saveUpload(c, imageFile)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to store uploaded image")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not store uploaded image"})
		return
	}
	defer cleanup()

	language := c.DefaultPostForm("language", "English")
	profile := prompt.Profile(c.DefaultPostForm("profile", string(prompt.ProfileWoman)))

	result := s.service.ExplainImage(c.Request.Context(), imagePath, language, profile)
	c.JSON(http.StatusOK, s.toResponse(result))
}

func (s *Server) handleDoubt(c *gin.Context) {
	imageFile, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}

	imagePath, cleanupImage, err := s.saveUpload(c, imageFile)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to store uploaded image")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not store uploaded image"})
		return
	}
	defer cleanupImage()

	req := assist.DoubtRequest{
		Question:  c.PostForm("question"),
		Language:  c.DefaultPostForm("language", "English"),
		Profile:   prompt.Profile(c.DefaultPostForm("profile", string(prompt.ProfileWoman))),
		ImagePath: imagePath,
	}

	// A recorded voice question is optional.
	if audioFile, err := c.FormFile("audio"); err == nil {
		audioPath, cleanupAudio, err := s.saveUpload(c, audioFile)
		if err != nil {
			s.log.Error().Err(err).Msg("Failed to store uploaded audio")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not store uploaded audio"})
			return
		}
		defer cleanupAudio()
		req.AudioPath = audioPath
	}

	result := s.service.HandleDoubt(c.Request.Context(), req)
	c.JSON(http.StatusOK, s.toResponse(result))
}

// handleAudio serves a narrated artifact by name. Names are restricted to
// the audio_<id>.mp3 pattern to keep path traversal out.
func (s *Server) handleAudio(c *gin.Context) {
	name := c.Param("name")
	if name != filepath.Base(name) || !strings.HasPrefix(name, "audio_") || !strings.HasSuffix(name, ".mp3") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid audio name"})
		return
	}

	path := filepath.Join(s.audioDir, name)
	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "audio not found"})
		return
	}
	c.File(path)
}

func (s *Server) toResponse(result assist.Explanation) explanationResponse {
	resp := explanationResponse{Text: result.Text}
	if result.AudioPath != "" {
		resp.AudioURL = "/api/audio/" + filepath.Base(result.AudioPath)
	}
	return resp
}

// saveUpload stores a multipart file under a temporary path preserving the
// original extension, returning the path and a cleanup function.
func (s *Server) saveUpload(c *gin.Context, file *multipart.FileHeader) (string, func(), error) {
	tmp, err := os.CreateTemp("", fmt.Sprintf("upload-*%s", filepath.Ext(file.Filename)))
	if err != nil {
		return "", nil, err
	}
	path := tmp.Name()
	if err := tmp.Close(); err != nil {
		os.Remove(path)
		return "", nil, err
	}
	if err := c.SaveUploadedFile(file, path); err != nil {
		os.Remove(path)
		return "", nil, err
	}
	cleanup := func() {
		if err := os.Remove(path); err != nil {
			s.log.Warn().Err(err).Str("path", path).Msg("Failed to remove uploaded file")
		}
	}
	return path, cleanup, nil
}
