package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Engine names reported by Name() and surfaced in stage audit rows.
const (
	EngineGeminiVision = "gemini-vision"
	EngineTesseract    = "tesseract"
)

// OCREngine extracts text from a single image. Implementations are tried
// by the selector in priority order.
type OCREngine interface {
	ExtractText(ctx context.Context, image []byte, mimeType string) (string, error)
	Supports(mimeType string) bool
	Name() string
}

// GeminiOCR reads documents with the vision model. It gives much better
// results than local OCR on noisy phone photos of notices, but burns
// capable-tier quota.
type GeminiOCR struct {
	gen *GenerationClient
}

func NewGeminiOCR(gen *GenerationClient) *GeminiOCR {
	return &GeminiOCR{gen: gen}
}

func (o *GeminiOCR) Name() string { return EngineGeminiVision }

func (o *GeminiOCR) Supports(mimeType string) bool {
	switch mimeType {
	case "image/jpeg", "image/png", "image/webp", "image/gif", "image/bmp":
		return true
	}
	return false
}

func (o *GeminiOCR) ExtractText(ctx context.Context, image []byte, mimeType string) (string, error) {
	text, _, err := o.gen.GenerateVision(ctx, ocrPrompt(), image, mimeType, ocrTemperature, ocrMaxTokens)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// TesseractOCR is the local fallback engine. A fresh client per call keeps
// it safe under concurrent analyses; gosseract clients are not.
type TesseractOCR struct {
	languages []string
}

func NewTesseractOCR(languages []string) *TesseractOCR {
	if len(languages) == 0 {
		languages = []string{"kor", "eng"}
	}
	return &TesseractOCR{languages: languages}
}

func (o *TesseractOCR) Name() string { return EngineTesseract }

func (o *TesseractOCR) Supports(mimeType string) bool {
	switch mimeType {
	case "image/jpeg", "image/png", "image/webp", "image/bmp", "image/tiff":
		return true
	}
	return false
}

func (o *TesseractOCR) ExtractText(ctx context.Context, image []byte, mimeType string) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(o.languages...); err != nil {
		return "", fmt.Errorf("tesseract language setup failed: %w", err)
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("tesseract rejected image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("tesseract OCR failed: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// OCRSelector tries engines in priority order: an engine is attempted when
// it supports the MIME type, and a failing engine falls through to the
// next one.
type OCRSelector struct {
	engines []OCREngine
}

func NewOCRSelector(engines ...OCREngine) *OCRSelector {
	return &OCRSelector{engines: engines}
}

// Supports reports whether any engine can handle the MIME type.
func (s *OCRSelector) Supports(mimeType string) bool {
	for _, e := range s.engines {
		if e.Supports(mimeType) {
			return true
		}
	}
	return false
}

// ExtractText runs the first supporting engine, falling through on error.
// The second return value names the engine that produced the text.
func (s *OCRSelector) ExtractText(ctx context.Context, image []byte, mimeType string) (string, string, error) {
	var lastErr error
	for _, e := range s.engines {
		if !e.Supports(mimeType) {
			continue
		}
		text, err := e.ExtractText(ctx, image, mimeType)
		if err != nil {
			slog.Warn("ocr engine failed, trying next", "engine", e.Name(), "error", err)
			lastErr = err
			continue
		}
		return text, e.Name(), nil
	}
	if lastErr != nil {
		return "", "", lastErr
	}
	return "", "", fmt.Errorf("%w: no OCR engine supports %s", ErrUnsupportedFileType, mimeType)
}
