package service

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/gen2brain/go-fitz"
	"github.com/ledongthuc/pdf"
	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/kokonnect/konnect-back-sub000/config"
	"github.com/kokonnect/konnect-back-sub000/model"
)

var supportedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
	"image/bmp":  true,
	"image/tiff": true,
}

// Extracted is the result of text extraction: the raw text, the provenance
// tag recording which path produced it, the OCR engine involved (empty
// for native PDF text), and the page (or image) count.
type Extracted struct {
	Text      string
	Method    string
	Engine    string
	PageCount int
}

// TextExtractor turns an uploaded file into raw text. Images go straight
// to OCR. PDFs try the native per-page reader first and fall back to
// rendering every page and OCRing it when the native text is too thin to
// be a real text layer.
type TextExtractor struct {
	ocr       *OCRSelector
	threshold int // minimum rune count for native PDF text to be trusted
	dpi       int

	// seams for tests
	readNative  func(data []byte) (string, error)
	renderPages func(data []byte, dpi int) ([][]byte, error)
	countPages  func(data []byte) (int, error)
}

func NewTextExtractor(ocr *OCRSelector, cfg *config.PDFConfig) *TextExtractor {
	return &TextExtractor{
		ocr:         ocr,
		threshold:   cfg.NativeTextThreshold,
		dpi:         cfg.RenderDPI,
		readNative:  nativePDFText,
		renderPages: renderPDFPages,
		countPages:  pdfPageCount,
	}
}

// Extract dispatches on the declared file kind.
func (e *TextExtractor) Extract(ctx context.Context, data []byte, mimeType, kind string) (*Extracted, error) {
	switch kind {
	case model.FileKindImage:
		return e.extractImage(ctx, data, mimeType)
	case model.FileKindPDF:
		return e.extractPDF(ctx, data)
	default:
		return nil, fmt.Errorf("%w: unknown file kind %q", ErrUnsupportedFileType, kind)
	}
}

func (e *TextExtractor) extractImage(ctx context.Context, data []byte, mimeType string) (*Extracted, error) {
	if !supportedImageTypes[mimeType] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFileType, mimeType)
	}

	text, engine, err := e.ocr.ExtractText(ctx, data, mimeType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTextExtractionFailed, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: ocr produced no text", ErrTextExtractionFailed)
	}

	return &Extracted{Text: text, Method: model.OCRMethodOCR, Engine: engine, PageCount: 1}, nil
}

func (e *TextExtractor) extractPDF(ctx context.Context, data []byte) (*Extracted, error) {
	pageCount, err := e.countPages(data)
	if err != nil {
		return nil, fmt.Errorf("%w: unreadable pdf: %v", ErrTextExtractionFailed, err)
	}

	nativeText, err := e.readNative(data)
	if err != nil {
		// A broken text layer is not fatal; OCR may still work.
		slog.Warn("native pdf text reader failed", "error", err)
		nativeText = ""
	}
	nativeText = strings.TrimSpace(nativeText)

	if utf8.RuneCountInString(nativeText) >= e.threshold {
		return &Extracted{Text: nativeText, Method: model.OCRMethodNative, PageCount: pageCount}, nil
	}

	// Scanned or image-only PDF: render every page and OCR each one.
	// No page-count cap here; a very large scanned PDF is rendered whole.
	images, err := e.renderPages(data, e.dpi)
	if err != nil {
		return nil, fmt.Errorf("%w: page rendering failed: %v", ErrTextExtractionFailed, err)
	}

	var parts []string
	var engine string
	for i, img := range images {
		text, eng, err := e.ocr.ExtractText(ctx, img, "image/png")
		if err != nil {
			slog.Warn("ocr failed for pdf page", "page", i+1, "error", err)
			continue
		}
		if t := strings.TrimSpace(text); t != "" {
			parts = append(parts, t)
			engine = eng
		}
	}

	joined := strings.Join(parts, "\n\n")
	if joined == "" {
		return nil, fmt.Errorf("%w: ocr produced no text across %d pages", ErrTextExtractionFailed, len(images))
	}

	method := model.OCRMethodOCR
	if nativeText != "" {
		method = model.OCRMethodHybrid
	}
	return &Extracted{Text: joined, Method: method, Engine: engine, PageCount: len(images)}, nil
}

// pdfPageCount validates the document and returns its page count.
func pdfPageCount(data []byte) (int, error) {
	conf := pdfmodel.NewDefaultConfiguration()
	conf.ValidationMode = pdfmodel.ValidationRelaxed
	return pdfapi.PageCount(bytes.NewReader(data), conf)
}

// nativePDFText reads the text layer page by page. The reader panics on
// some malformed files, hence the recover.
func nativePDFText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if t := strings.TrimSpace(pageText); t != "" {
			pages = append(pages, t)
		}
	}
	return strings.Join(pages, "\n\n"), nil
}

// renderPDFPages rasterizes every page to PNG at the given DPI.
func renderPDFPages(data []byte, dpi int) ([][]byte, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf for rendering: %w", err)
	}
	defer doc.Close()

	var images [][]byte
	for n := 0; n < doc.NumPage(); n++ {
		img, err := doc.ImageDPI(n, float64(dpi))
		if err != nil {
			return nil, fmt.Errorf("failed to render page %d: %w", n+1, err)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("failed to encode page %d: %w", n+1, err)
		}
		images = append(images, buf.Bytes())
	}
	return images, nil
}
