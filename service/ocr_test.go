package service

import (
	"context"
	"errors"
	"testing"
)

// fakeOCR is a scripted engine for selector tests.
type fakeOCR struct {
	name     string
	supports map[string]bool
	text     string
	err      error
	calls    int
}

func (f *fakeOCR) Name() string { return f.name }

func (f *fakeOCR) Supports(mimeType string) bool { return f.supports[mimeType] }

func (f *fakeOCR) ExtractText(ctx context.Context, image []byte, mimeType string) (string, error) {
	f.calls++
	return f.text, f.err
}

func TestOCRSelectorPriorityOrder(t *testing.T) {
	primary := &fakeOCR{name: "primary", supports: map[string]bool{"image/png": true}, text: "from primary"}
	fallback := &fakeOCR{name: "fallback", supports: map[string]bool{"image/png": true}, text: "from fallback"}
	sel := NewOCRSelector(primary, fallback)

	text, engine, err := sel.ExtractText(context.Background(), []byte{1}, "image/png")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if text != "from primary" {
		t.Errorf("Expected primary engine result, got %q", text)
	}
	if engine != "primary" {
		t.Errorf("Expected primary engine name, got %q", engine)
	}
	if fallback.calls != 0 {
		t.Error("Fallback engine should not have been called")
	}
}

func TestOCRSelectorFallsThroughOnError(t *testing.T) {
	primary := &fakeOCR{name: "primary", supports: map[string]bool{"image/png": true}, err: errors.New("vision quota gone")}
	fallback := &fakeOCR{name: "fallback", supports: map[string]bool{"image/png": true}, text: "from fallback"}
	sel := NewOCRSelector(primary, fallback)

	text, engine, err := sel.ExtractText(context.Background(), []byte{1}, "image/png")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if text != "from fallback" {
		t.Errorf("Expected fallback result, got %q", text)
	}
	if engine != "fallback" {
		t.Errorf("Expected fallback engine name, got %q", engine)
	}
	if primary.calls != 1 {
		t.Errorf("Expected primary engine attempted once, got %d", primary.calls)
	}
}

func TestOCRSelectorSkipsUnsupported(t *testing.T) {
	pngOnly := &fakeOCR{name: "png-only", supports: map[string]bool{"image/png": true}, text: "png text"}
	tiffOnly := &fakeOCR{name: "tiff-only", supports: map[string]bool{"image/tiff": true}, text: "tiff text"}
	sel := NewOCRSelector(pngOnly, tiffOnly)

	text, _, err := sel.ExtractText(context.Background(), []byte{1}, "image/tiff")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if text != "tiff text" {
		t.Errorf("Expected tiff engine result, got %q", text)
	}
	if pngOnly.calls != 0 {
		t.Error("PNG-only engine should have been skipped")
	}
}

func TestOCRSelectorNoSupportingEngine(t *testing.T) {
	sel := NewOCRSelector(&fakeOCR{name: "png-only", supports: map[string]bool{"image/png": true}})

	_, _, err := sel.ExtractText(context.Background(), []byte{1}, "application/zip")
	if !errors.Is(err, ErrUnsupportedFileType) {
		t.Errorf("Expected ErrUnsupportedFileType, got %v", err)
	}
}

func TestOCRSelectorAllEnginesFail(t *testing.T) {
	wantErr := errors.New("hopeless scan")
	sel := NewOCRSelector(
		&fakeOCR{name: "a", supports: map[string]bool{"image/png": true}, err: errors.New("first failure")},
		&fakeOCR{name: "b", supports: map[string]bool{"image/png": true}, err: wantErr},
	)

	_, _, err := sel.ExtractText(context.Background(), []byte{1}, "image/png")
	if !errors.Is(err, wantErr) {
		t.Errorf("Expected last engine error, got %v", err)
	}
}

func TestGeminiOCRSupports(t *testing.T) {
	o := NewGeminiOCR(nil)
	if !o.Supports("image/png") || !o.Supports("image/jpeg") {
		t.Error("Expected common image types supported")
	}
	if o.Supports("application/pdf") {
		t.Error("PDF should not be supported directly by the vision OCR engine")
	}
}

func TestTesseractOCRSupports(t *testing.T) {
	o := NewTesseractOCR(nil)
	if !o.Supports("image/tiff") {
		t.Error("Expected tiff supported")
	}
	if o.Supports("image/gif") {
		t.Error("gif should not be supported by tesseract engine")
	}
}
