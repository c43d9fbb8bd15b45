package vision

import (
	"context"
	"errors"
	"image"
	"testing"
)

type fakeReader struct {
	texts []string
	err   error
}

func (f *fakeReader) ReadText(ctx context.Context, imageJPEG []byte) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.texts, nil
}

func newExtractor(t *testing.T, reader TextRecognizer) *PlateExtractor {
	t.Helper()
	e, err := NewPlateExtractor(reader, `^[A-Z]{3}\d{4}$`)
	if err != nil {
		t.Fatalf("building extractor: %v", err)
	}
	return e
}

func candidateImage() image.Image {
	return image.NewRGBA(image.Rect(0, 0, 40, 20))
}

func TestExtractNormalizesAndMatches(t *testing.T) {
	e := newExtractor(t, &fakeReader{texts: []string{"A B-C!1234"}})

	got, err := e.Extract(context.Background(), candidateImage())
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if got != "ABC1234" {
		t.Fatalf("expected ABC1234, got %q", got)
	}
}

func TestExtractRejectsGrammarMismatch(t *testing.T) {
	for _, text := range []string{"AB1234", "ABCD1234", "abc1234", "ABC123", ""} {
		e := newExtractor(t, &fakeReader{texts: []string{text}})
		got, err := e.Extract(context.Background(), candidateImage())
		if err != nil {
			t.Fatalf("extract %q: %v", text, err)
		}
		if got != "" {
			t.Fatalf("expected %q to be rejected, got %q", text, got)
		}
	}
}

func TestExtractUsesFirstResultOnly(t *testing.T) {
	e := newExtractor(t, &fakeReader{texts: []string{"not a plate", "ABC1234"}})

	got, err := e.Extract(context.Background(), candidateImage())
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if got != "" {
		t.Fatalf("later results must not be considered, got %q", got)
	}
}

func TestExtractNoText(t *testing.T) {
	e := newExtractor(t, &fakeReader{})

	got, err := e.Extract(context.Background(), candidateImage())
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if got != "" {
		t.Fatalf("expected empty result, got %q", got)
	}
}

func TestExtractEngineFailurePropagates(t *testing.T) {
	engineErr := errors.New("engine down")
	e := newExtractor(t, &fakeReader{err: engineErr})

	if _, err := e.Extract(context.Background(), candidateImage()); !errors.Is(err, engineErr) {
		t.Fatalf("expected engine error, got %v", err)
	}
}

func TestNormalizePlate(t *testing.T) {
	cases := map[string]string{
		"ABC-1234":     "ABC1234",
		" a b c 1234 ": "abc1234",
		"ÄBC·1234":     "BC1234",
		"":             "",
	}
	for raw, want := range cases {
		if got := NormalizePlate(raw); got != want {
			t.Errorf("NormalizePlate(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestNewPlateExtractorBadPattern(t *testing.T) {
	if _, err := NewPlateExtractor(&fakeReader{}, `[`); err == nil {
		t.Fatal("expected error for invalid pattern")
	}
}
