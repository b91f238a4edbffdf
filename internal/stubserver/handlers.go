package stubserver

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/menta2k/adaptvideo/pkg/media"
	"github.com/menta2k/adaptvideo/pkg/types"
)

// fileRequest is the body of the calls that only carry a file id.
type fileRequest struct {
	FileID string `json:"file_id" binding:"required"`
}

type analyzeRequest struct {
	FileID              string                   `json:"file_id" binding:"required"`
	ConversationHistory []types.ConversationTurn `json:"conversation_history"`
}

// pair is a crop centre as the service takes it, [x, y]. Objects fail to
// decode into it.
type pair []float64

type convertRequest struct {
	FileID   string `json:"file_id" binding:"required"`
	Width    int    `json:"width" binding:"required"`
	Height   int    `json:"height" binding:"required"`
	CropMode string `json:"crop_mode"`
	Center   pair   `json:"center"`
	Centers  []pair `json:"centers"`
}

type previewRequest struct {
	FileID       string `json:"file_id" binding:"required"`
	TemplateName string `json:"template_name" binding:"required"`
	CropMode     string `json:"crop_mode"`
	Center       pair   `json:"center"`
	Centers      []pair `json:"centers"`
}

func (p pair) point() (types.Point, error) {
	if len(p) != 2 {
		return types.Point{}, fmt.Errorf("centre must be [x, y], got %d values", len(p))
	}
	return types.Point{X: p[0], Y: p[1]}, nil
}

// positions converts the request's centres; a missing center is nil.
func positions(center pair, centers []pair) (*types.Point, []types.Point, error) {
	var single *types.Point
	if center != nil {
		p, err := center.point()
		if err != nil {
			return nil, nil, err
		}
		single = &p
	}
	multi := make([]types.Point, 0, len(centers))
	for _, c := range centers {
		p, err := c.point()
		if err != nil {
			return nil, nil, err
		}
		multi = append(multi, p)
	}
	return single, multi, nil
}

func fail(c *gin.Context, code int, format string, args ...any) {
	c.JSON(code, gin.H{"error": fmt.Sprintf(format, args...)})
}

func (s *Server) handleTemplates(c *gin.Context) {
	c.JSON(http.StatusOK, s.templates)
}

func (s *Server) handleUploadedVideos(c *gin.Context) {
	records := s.sortedVideos()

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.UploadedVideo, 0, len(records))
	for _, r := range records {
		info := r.info
		out = append(out, types.UploadedVideo{
			FileID:          r.fileID,
			Filename:        r.filename,
			Thumbnail:       r.thumbnail,
			VideoInfo:       &info,
			ConvertedVideos: append([]types.ConvertedVideo(nil), r.converted...),
		})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleUpload(c *gin.Context) {
	fh, err := c.FormFile("video")
	if err != nil || fh.Filename == "" {
		fail(c, http.StatusBadRequest, "no file selected")
		return
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !s.allowed[ext] {
		fail(c, http.StatusBadRequest, "unsupported file type %q", ext)
		return
	}
	if fh.Size > s.maxSize {
		fail(c, http.StatusBadRequest, "file exceeds the %dMB limit", s.maxSize/(1024*1024))
		return
	}

	thumb, err := media.EncodeDataURL(frame(0), "jpg", 85)
	if err != nil {
		fail(c, http.StatusInternalServerError, "failed to extract thumbnail")
		return
	}

	rec := &record{
		fileID:     uuid.New().String(),
		filename:   fh.Filename,
		size:       fh.Size,
		info:       DefaultVideoInfo,
		thumbnail:  thumb,
		uploadedAt: s.now(),
	}
	s.mu.Lock()
	s.seq++
	rec.seq = s.seq
	s.videos[rec.fileID] = rec
	s.mu.Unlock()

	s.logger.Info("stub upload stored", "file_id", rec.fileID, "filename", rec.filename, "size", rec.size)
	c.JSON(http.StatusOK, gin.H{
		"file_id":    rec.fileID,
		"video_info": rec.info,
		"thumbnail":  rec.thumbnail,
	})
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "%v", err)
		return
	}
	rec, ok := s.lookup(req.FileID)
	if !ok {
		fail(c, http.StatusNotFound, "file not found")
		return
	}

	// Centres go out as [x, y] pairs like the real service sends them.
	options := make([]gin.H, 0, len(subjects))
	stored := make([]types.Subject, 0, len(subjects))
	for _, sub := range subjects {
		thumb, err := thumbnailFor(sub)
		if err != nil {
			fail(c, http.StatusInternalServerError, "failed to crop subject thumbnail")
			return
		}
		sub.Thumbnail = thumb
		stored = append(stored, sub)
		options = append(options, gin.H{
			"subject":    sub.Subject,
			"center":     []float64{sub.Center.X, sub.Center.Y},
			"importance": sub.Importance,
			"confidence": sub.Confidence,
			"thumbnail":  sub.Thumbnail,
		})
	}

	s.mu.Lock()
	rec.subjects = stored
	s.mu.Unlock()

	suggestions := "## Suggested crops\n\n" +
		"- **presenter** stays in frame for *portrait 9:16*\n" +
		"- **product** and **logo** fit the *ultra wide* banner\n"
	if n := len(req.ConversationHistory); n > 0 {
		suggestions += fmt.Sprintf("\nFollowing up on %d earlier message(s).\n", n)
	}

	c.JSON(http.StatusOK, gin.H{
		"analysis_options":           options,
		"suggestions":                suggestions,
		"recommended_template_names": []string{"portrait 9:16", "ultra wide", "not offered"},
	})
}

// cropCenter mirrors the service: in llm mode several centres are averaged
// and a single centre is used as is; anything else crops the middle.
func cropCenter(mode string, center *types.Point, centers []types.Point) types.Point {
	if mode == string(types.CropModeLLM) {
		if len(centers) > 0 {
			return averageCenter(centers)
		}
		if center != nil {
			return *center
		}
	}
	return types.Point{X: 0.5, Y: 0.5}
}

func (s *Server) handleConvert(c *gin.Context) {
	var req convertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "%v", err)
		return
	}
	single, multi, err := positions(req.Center, req.Centers)
	if err != nil {
		fail(c, http.StatusBadRequest, "%v", err)
		return
	}
	rec, ok := s.lookup(req.FileID)
	if !ok {
		fail(c, http.StatusNotFound, "no original file for file_id %s", req.FileID)
		return
	}

	center := cropCenter(req.CropMode, single, multi)
	filename := rec.fileID + "_converted" + strings.ToLower(filepath.Ext(rec.filename))

	s.mu.Lock()
	rec.convCenter = center
	rec.convW, rec.convH = req.Width, req.Height
	rec.converted = append(rec.converted, types.ConvertedVideo{
		Path:         "outputs/" + filename,
		Filename:     filename,
		TemplateName: fmt.Sprintf("%dx%d", req.Width, req.Height),
		Timestamp:    s.now().UTC().Format("2006-01-02T15:04:05Z"),
	})
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"file_id":      rec.fileID,
		"download_url": "/outputs/" + filename,
		"filename":     filename,
	})
}

func (s *Server) handleGeneratePreview(c *gin.Context) {
	var req previewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "%v", err)
		return
	}
	tmpl, ok := s.findTemplate(req.TemplateName)
	if !ok {
		fail(c, http.StatusNotFound, "template not found: %s", req.TemplateName)
		return
	}
	rec, ok := s.lookup(req.FileID)
	if !ok {
		fail(c, http.StatusNotFound, "video not found: %s", req.FileID)
		return
	}

	single, multi, err := positions(req.Center, req.Centers)
	if err != nil {
		fail(c, http.StatusBadRequest, "%v", err)
		return
	}
	center := cropCenter(req.CropMode, single, multi)
	frames, adjusted, err := previewFrames(previewFrameCount, center, tmpl.Width, tmpl.Height, previewMaxWidth, previewMaxHeight)
	if err != nil {
		fail(c, http.StatusInternalServerError, "failed to generate preview")
		return
	}

	var subjectName string
	s.mu.Lock()
	for _, sub := range rec.subjects {
		if sub.Center == center {
			subjectName = sub.Subject
			break
		}
	}
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"preview_frames": frames,
		"is_adjusted":    adjusted,
		"template":       tmpl,
		"frame_count":    len(frames),
		"subject_name":   subjectName,
	})
}

func (s *Server) handleOriginalPreview(c *gin.Context) {
	var req fileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "%v", err)
		return
	}
	if _, ok := s.lookup(req.FileID); !ok {
		fail(c, http.StatusNotFound, "video file not found: %s", req.FileID)
		return
	}

	frames, _, err := previewFrames(previewFrameCount, types.Point{X: 0.5, Y: 0.5}, 0, 0, originalMaxWidth, originalMaxWidth)
	if err != nil {
		fail(c, http.StatusInternalServerError, "failed to generate original preview")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"preview_frames": frames,
		"frame_count":    len(frames),
	})
}

// handleConvertedPreview answers errors in plain text, as the service does.
func (s *Server) handleConvertedPreview(c *gin.Context) {
	var req fileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, "missing file_id")
		return
	}
	rec, ok := s.lookup(req.FileID)
	if !ok {
		c.String(http.StatusNotFound, "no video for file_id %s", req.FileID)
		return
	}

	s.mu.Lock()
	converted := len(rec.converted) > 0
	center, w, h := rec.convCenter, rec.convW, rec.convH
	s.mu.Unlock()
	if !converted {
		c.String(http.StatusNotFound, "no converted video for file_id %s", req.FileID)
		return
	}

	frames, _, err := previewFrames(previewFrameCount, center, w, h, originalMaxWidth, originalMaxWidth)
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to generate converted preview")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"preview_frames": frames,
		"frame_count":    len(frames),
	})
}

func (s *Server) handleComparison(c *gin.Context) {
	var req fileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "%v", err)
		return
	}
	rec, ok := s.lookup(req.FileID)
	if !ok {
		fail(c, http.StatusNotFound, "video not found: %s", req.FileID)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(rec.converted) == 0 {
		fail(c, http.StatusNotFound, "no converted video for %s", req.FileID)
		return
	}
	last := rec.converted[len(rec.converted)-1]
	convInfo := rec.info
	convInfo.Width, convInfo.Height = rec.convW, rec.convH

	c.JSON(http.StatusOK, types.ComparisonData{
		Original: &types.ComparisonSide{
			URL:      "/uploads/" + rec.fileID + strings.ToLower(filepath.Ext(rec.filename)),
			Filename: rec.filename,
			Info:     rec.info,
		},
		Converted: &types.ComparisonSide{
			URL:      "/outputs/" + last.Filename,
			Filename: last.Filename,
			Info:     convInfo,
		},
	})
}

func (s *Server) handleDebugConversions(c *gin.Context) {
	fileID := c.Param("file_id")
	rec, ok := s.lookup(fileID)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"file_id": fileID, "found": false})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{
		"file_id":          fileID,
		"found":            true,
		"original":         rec.filename,
		"conversion_count": len(rec.converted),
		"converted_videos": rec.converted,
	})
}

// handleOutput serves a still of the converted video in place of the file.
func (s *Server) handleOutput(c *gin.Context) {
	name := c.Param("filename")
	for _, rec := range s.sortedVideos() {
		s.mu.Lock()
		var found bool
		for _, cv := range rec.converted {
			if cv.Filename == name {
				found = true
				break
			}
		}
		center, w, h := rec.convCenter, rec.convW, rec.convH
		s.mu.Unlock()

		if found {
			img, _ := media.CropAround(frame(0), center, w, h)
			s.writeJPEG(c, img)
			return
		}
	}
	c.String(http.StatusNotFound, "not found")
}

func (s *Server) handleUploadFile(c *gin.Context) {
	name := c.Param("filename")
	id := strings.TrimSuffix(name, filepath.Ext(name))
	if _, ok := s.lookup(id); !ok {
		c.String(http.StatusNotFound, "not found")
		return
	}
	s.writeJPEG(c, frame(0))
}

func (s *Server) writeJPEG(c *gin.Context, img image.Image) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		c.String(http.StatusInternalServerError, "encode failed")
		return
	}
	c.Data(http.StatusOK, "image/jpeg", buf.Bytes())
}
