package handler

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kokonnect/konnect-back-sub000/model"
	"github.com/kokonnect/konnect-back-sub000/pkg/logger"
	"github.com/kokonnect/konnect-back-sub000/service"
)

type AnalysisHandler struct {
	orchestrator   *service.Orchestrator
	storage        *service.FileStorage // nil when object storage is not configured
	store          *service.AnalysisStore
	maxUploadBytes int64
}

func NewAnalysisHandler(orchestrator *service.Orchestrator, storage *service.FileStorage, store *service.AnalysisStore, maxUploadBytes int64) *AnalysisHandler {
	return &AnalysisHandler{
		orchestrator:   orchestrator,
		storage:        storage,
		store:          store,
		maxUploadBytes: maxUploadBytes,
	}
}

var imageExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
}

// Analyze accepts an uploaded school notice and runs the full analysis
// pipeline synchronously. A failed stage yields a PARTIAL response with
// the same analysis id accepted by Retry.
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}
	defer file.Close()

	if header.Filename == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing filename"})
		return
	}
	if h.maxUploadBytes > 0 && header.Size > h.maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large"})
		return
	}

	limit := h.maxUploadBytes
	if limit <= 0 {
		limit = 1 << 30
	}
	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return
	}
	if len(data) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Empty file"})
		return
	}
	if h.maxUploadBytes > 0 && int64(len(data)) > h.maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large"})
		return
	}

	kind, mimeType, err := detectFileKind(c.PostForm("file_type"), header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lang := model.ResolveLanguage(c.PostForm("target_language"))
	metadata := map[string]any{}
	if c.PostForm("simple_mode") == "true" {
		metadata["simple_mode"] = true
	}

	input := &service.PipelineInput{
		AnalysisID:     uuid.New().String(),
		Data:           data,
		Filename:       header.Filename,
		MimeType:       mimeType,
		FileKind:       kind,
		TargetLanguage: lang,
		Metadata:       metadata,
	}

	if h.storage != nil {
		// Keep the original document around; analysis does not depend on it.
		objectName, err := h.storage.Upload(c.Request.Context(), input.AnalysisID, header.Filename, data, mimeType)
		if err != nil {
			logger.Warn(c.Request.Context(), "file storage upload failed", "error", err)
		} else {
			input.FileURL = h.storage.PublicURL(objectName)
		}
	}

	resp, err := h.orchestrator.Analyze(c.Request.Context(), input)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Analysis failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Retry resumes a partially failed analysis from the stage that failed.
func (h *AnalysisHandler) Retry(c *gin.Context) {
	id := c.Param("id")

	resp, err := h.orchestrator.Retry(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrAnalysisNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Analysis not found or retry window expired"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Retry failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Get returns a single analysis record with its stage logs.
func (h *AnalysisHandler) Get(c *gin.Context) {
	id := c.Param("id")

	record := h.store.Get(id)
	if record == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Analysis not found"})
		return
	}

	c.JSON(http.StatusOK, record)
}

// List returns all analysis records, newest first, without stage logs.
func (h *AnalysisHandler) List(c *gin.Context) {
	records := h.store.List()

	result := make([]gin.H, len(records))
	for i, record := range records {
		entry := gin.H{
			"id":         record.ID,
			"filename":   record.Filename,
			"status":     record.Status,
			"created_at": record.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			"updated_at": record.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
		if record.FileURL != "" {
			entry["file_url"] = record.FileURL
		}
		result[i] = entry
	}

	c.JSON(http.StatusOK, gin.H{"analyses": result})
}

// detectFileKind decides whether the upload is handled as an image or a
// PDF. It cross-checks every available signal at the kind level — the
// declared file_type form field, the filename extension, the part's
// content type and a payload sniff — and rejects the upload when they
// disagree, so a mislabeled file fails fast instead of producing a
// PARTIAL that no retry can fix. Comparison stays at the kind level (a
// .jpg that actually holds PNG bytes is still an image).
func detectFileKind(declared, filename, contentType string, data []byte) (kind, mimeType string, err error) {
	type signal struct {
		kind string
		mime string
	}
	var signals []signal

	if declared != "" {
		switch strings.ToUpper(declared) {
		case model.FileKindImage:
			signals = append(signals, signal{model.FileKindImage, ""})
		case model.FileKindPDF:
			signals = append(signals, signal{model.FileKindPDF, "application/pdf"})
		default:
			return "", "", errors.New("file_type must be IMAGE or PDF")
		}
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == ".pdf" {
		signals = append(signals, signal{model.FileKindPDF, "application/pdf"})
	} else if m, ok := imageExtensions[ext]; ok {
		signals = append(signals, signal{model.FileKindImage, m})
	}

	if contentType != "" && contentType != "application/octet-stream" {
		mt := contentType
		if parsed, _, parseErr := mime.ParseMediaType(contentType); parseErr == nil {
			mt = parsed
		}
		switch {
		case mt == "application/pdf":
			signals = append(signals, signal{model.FileKindPDF, mt})
		case strings.HasPrefix(mt, "image/"):
			signals = append(signals, signal{model.FileKindImage, mt})
		default:
			return "", "", errors.New("Only image and PDF files are supported")
		}
	}

	// http.DetectContentType falls back to text/plain or octet-stream
	// when it cannot tell; those are not evidence either way.
	sniffed := http.DetectContentType(data)
	switch {
	case sniffed == "application/pdf":
		signals = append(signals, signal{model.FileKindPDF, sniffed})
	case strings.HasPrefix(sniffed, "image/"):
		signals = append(signals, signal{model.FileKindImage, sniffed})
	}

	if len(signals) == 0 {
		return "", "", errors.New("Only image and PDF files are supported")
	}
	for _, s := range signals[1:] {
		if s.kind != signals[0].kind {
			return "", "", errors.New("File type mismatch: declared type, filename and content disagree")
		}
	}

	kind = signals[0].kind
	for _, s := range signals {
		if s.mime != "" {
			return kind, s.mime, nil
		}
	}
	return "", "", errors.New("Only image and PDF files are supported")
}
