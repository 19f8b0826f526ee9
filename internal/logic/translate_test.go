package logic

import (
	"testing"

	"github.com/opencms/sectionbanner/internal/models"
)

func TestResolveTranslation_FallbackChain(t *testing.T) {
	banner := models.Banner{Translations: []models.Translation{
		{Lang: "fr", Title: "Bonjour"},
		{Lang: "en", Title: "Hello"},
	}}

	if tr := ResolveTranslation(banner, "fr", "en", "basic_html"); tr.Title != "Bonjour" {
		t.Errorf("expected current-language entry, got %q", tr.Title)
	}
	if tr := ResolveTranslation(banner, "de", "en", "basic_html"); tr.Title != "Hello" {
		t.Errorf("expected default-language fallback, got %q", tr.Title)
	}
}

func TestResolveTranslation_FirstStoredFallback(t *testing.T) {
	banner := models.Banner{Translations: []models.Translation{
		{Lang: "fr", Title: "Bonjour"},
		{Lang: "es", Title: "Hola"},
	}}

	// Neither the current nor the default language exists; the first stored
	// entry wins regardless of its language.
	if tr := ResolveTranslation(banner, "de", "en", "basic_html"); tr.Title != "Bonjour" {
		t.Errorf("expected first stored translation, got %q", tr.Title)
	}
}

func TestResolveTranslation_NoTranslations(t *testing.T) {
	tr := ResolveTranslation(models.Banner{}, "de", "en", "basic_html")
	if tr.Title != "" || tr.Body.Value != "" {
		t.Errorf("expected empty content, got title=%q body=%q", tr.Title, tr.Body.Value)
	}
	if tr.Body.Format != "basic_html" {
		t.Errorf("expected default format carried, got %q", tr.Body.Format)
	}
}
