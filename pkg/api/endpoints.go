package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"

	"github.com/menta2k/adaptvideo/pkg/request"
	"github.com/menta2k/adaptvideo/pkg/types"
)

// Endpoint paths.
const (
	PathTemplates        = "/api/templates"
	PathUploadedVideos   = "/api/uploaded_videos"
	PathUpload           = "/api/upload"
	PathAnalyze          = "/api/analyze"
	PathConvert          = "/api/convert"
	PathPreview          = "/api/generate_preview"
	PathOriginalPreview  = "/api/generate_original_preview"
	PathConvertedPreview = "/api/generate_converted_preview"
	PathVideoComparison  = "/api/get_video_comparison_data"
	PathDebugConversions = "/api/debug_conversions/"
	uploadFormField      = "video"
)

// Templates lists the output templates offered by the service.
func (c *Client) Templates(ctx context.Context) ([]types.Template, error) {
	var templates []types.Template
	if err := c.doJSONRequest(ctx, http.MethodGet, PathTemplates, nil, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

// UploadedVideos returns the upload history.
func (c *Client) UploadedVideos(ctx context.Context) ([]types.UploadedVideo, error) {
	var videos []types.UploadedVideo
	if err := c.doJSONRequest(ctx, http.MethodGet, PathUploadedVideos, nil, &videos); err != nil {
		return nil, err
	}
	return videos, nil
}

// Upload sends a video as the multipart field "video".
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (*types.UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(uploadFormField, filepath.Base(filename))
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+PathUpload, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	body, err := c.do(req, PathUpload)
	if err != nil {
		return nil, err
	}

	var result types.UploadResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%s: failed to decode response: %w", PathUpload, err)
	}
	if result.FileID == "" {
		return nil, fmt.Errorf("%s: response carries no file_id", PathUpload)
	}
	return &result, nil
}

// Analyze asks the service for subject positions in an uploaded video.
func (c *Client) Analyze(ctx context.Context, fileID string, history []types.ConversationTurn) (*types.AnalysisResult, error) {
	if history == nil {
		history = []types.ConversationTurn{}
	}
	payload := types.AnalyzeRequest{FileID: fileID, ConversationHistory: history}

	var result types.AnalysisResult
	if err := c.doJSONRequest(ctx, http.MethodPost, PathAnalyze, payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Convert starts the conversion. The request is sent in its width and
// height shape.
func (c *Client) Convert(ctx context.Context, req types.ConversionRequest) (*types.ConvertResult, error) {
	var result types.ConvertResult
	if err := c.doJSONRequest(ctx, http.MethodPost, PathConvert, request.ForConvert(req), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GeneratePreview renders sample frames of a conversion. The request is
// sent in its template name shape.
func (c *Client) GeneratePreview(ctx context.Context, req types.ConversionRequest) (*types.PreviewResult, error) {
	var result types.PreviewResult
	if err := c.doJSONRequest(ctx, http.MethodPost, PathPreview, request.ForPreview(req), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GenerateOriginalPreview renders sample frames of the uploaded video.
func (c *Client) GenerateOriginalPreview(ctx context.Context, fileID string) (*types.PreviewResult, error) {
	var result types.PreviewResult
	if err := c.doJSONRequest(ctx, http.MethodPost, PathOriginalPreview, types.FileRequest{FileID: fileID}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GenerateConvertedPreview renders sample frames of a converted video.
func (c *Client) GenerateConvertedPreview(ctx context.Context, fileID string) (*types.PreviewResult, error) {
	var result types.PreviewResult
	if err := c.doJSONRequest(ctx, http.MethodPost, PathConvertedPreview, types.FileRequest{FileID: fileID}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// VideoComparison returns both sides of a before/after comparison.
func (c *Client) VideoComparison(ctx context.Context, fileID string) (*types.ComparisonData, error) {
	var result types.ComparisonData
	if err := c.doJSONRequest(ctx, http.MethodPost, PathVideoComparison, types.FileRequest{FileID: fileID}, &result); err != nil {
		return nil, err
	}
	if result.Original == nil || result.Converted == nil {
		return nil, fmt.Errorf("%s: incomplete comparison data", PathVideoComparison)
	}
	return &result, nil
}

// DebugConversions returns the service's diagnostic view of the
// conversions recorded for a file.
func (c *Client) DebugConversions(ctx context.Context, fileID string) (map[string]any, error) {
	var result map[string]any
	path := PathDebugConversions + url.PathEscape(fileID)
	if err := c.doJSONRequest(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}
