// Package stubserver is an in-memory stand-in for the re-cropping service.
// It answers every endpoint the client uses with synthetic frames so the
// client can be developed and tested without the real backend.
package stubserver

import (
	"bytes"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/menta2k/adaptvideo/pkg/types"
)

const (
	defaultMaxUploadSize = 500 * 1024 * 1024
	previewFrameCount    = 4
	previewMaxWidth      = 250
	previewMaxHeight     = 180
	originalMaxWidth     = 300
)

// DefaultTemplates are the output presets served by default.
var DefaultTemplates = []types.Template{
	{Name: "kaohsiung billboard", Width: 3840, Height: 1526, Description: "Kaohsiung LED billboard"},
	{Name: "zhongxiao district", Width: 1440, Height: 960, Description: "Zhongxiao shopping district display"},
	{Name: "standard 16:9", Width: 1920, Height: 1080, Description: "Full HD"},
	{Name: "4k landscape", Width: 3840, Height: 2160, Description: "4K Ultra HD landscape"},
	{Name: "portrait 9:16", Width: 1080, Height: 1920, Description: "Phone portrait"},
	{Name: "square 1:1", Width: 1080, Height: 1080, Description: "Square display"},
	{Name: "ultra wide", Width: 2560, Height: 1080, Description: "21:9 ultra wide"},
}

// DefaultVideoInfo is reported for every upload.
var DefaultVideoInfo = types.VideoInfo{Width: 1920, Height: 1080, Duration: 12.5, FPS: 30}

type record struct {
	fileID     string
	filename   string
	size       int64
	info       types.VideoInfo
	thumbnail  string
	subjects   []types.Subject
	converted  []types.ConvertedVideo
	convCenter types.Point
	convW      int
	convH      int
	seq        int
	uploadedAt time.Time
}

// Server holds the uploaded videos. It is safe for concurrent use.
type Server struct {
	mu        sync.Mutex
	templates []types.Template
	videos    map[string]*record
	maxSize   int64
	allowed   map[string]bool
	logger    *slog.Logger
	now       func() time.Time
	requests  map[string]int
	lastBody  map[string][]byte
	seq       int
}

// Option configures a Server.
type Option func(*Server)

// WithTemplates replaces the template catalogue.
func WithTemplates(t []types.Template) Option {
	return func(s *Server) { s.templates = append([]types.Template(nil), t...) }
}

// WithMaxUploadSize sets the upload limit in bytes.
func WithMaxUploadSize(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxSize = n
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates an empty server.
func New(opts ...Option) *Server {
	s := &Server{
		templates: append([]types.Template(nil), DefaultTemplates...),
		videos:    make(map[string]*record),
		maxSize:   defaultMaxUploadSize,
		allowed: map[string]bool{
			".mp4": true, ".avi": true, ".mov": true, ".mkv": true, ".webm": true,
		},
		logger:   slog.Default(),
		now:      time.Now,
		requests: make(map[string]int),
		lastBody: make(map[string][]byte),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router returns a gin engine serving every endpoint.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.trace())

	api := r.Group("/api")
	api.GET("/templates", s.handleTemplates)
	api.GET("/uploaded_videos", s.handleUploadedVideos)
	api.POST("/upload", s.handleUpload)
	api.POST("/analyze", s.handleAnalyze)
	api.POST("/convert", s.handleConvert)
	api.POST("/generate_preview", s.handleGeneratePreview)
	api.POST("/generate_original_preview", s.handleOriginalPreview)
	api.POST("/generate_converted_preview", s.handleConvertedPreview)
	api.POST("/get_video_comparison_data", s.handleComparison)
	api.GET("/debug_conversions/:file_id", s.handleDebugConversions)

	r.GET("/outputs/:filename", s.handleOutput)
	r.GET("/uploads/:filename", s.handleUploadFile)
	return r
}

// Requests returns how often a path was requested.
func (s *Server) Requests(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[path]
}

// LastBody returns the last JSON body posted to a path.
func (s *Server) LastBody(path string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.lastBody[path]...)
}

func (s *Server) trace() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := s.now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		var body []byte
		if c.ContentType() == "application/json" && c.Request.Body != nil {
			body, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
		}

		s.mu.Lock()
		s.requests[path]++
		if body != nil {
			s.lastBody[path] = body
		}
		s.mu.Unlock()

		c.Next()

		s.logger.Debug("stub request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"elapsed", s.now().Sub(start))
	}
}

func (s *Server) lookup(fileID string) (*record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.videos[fileID]
	return rec, ok
}

func (s *Server) findTemplate(name string) (types.Template, bool) {
	for _, t := range s.templates {
		if t.Name == name {
			return t, true
		}
	}
	return types.Template{}, false
}

func (s *Server) sortedVideos() []*record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*record, 0, len(s.videos))
	for _, r := range s.videos {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].seq > out[j].seq
	})
	return out
}
