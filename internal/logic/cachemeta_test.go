package logic

import (
	"testing"

	"github.com/opencms/sectionbanner/internal/models"
)

func TestComputeCacheInfo(t *testing.T) {
	ctx := models.RequestContext{Path: "/news"}

	meta := ComputeCacheInfo(nil, ctx)
	if len(meta.Tags) != 1 || meta.Tags[0] != BannerListCacheTag {
		t.Errorf("expected only the banner list tag on no-match, got %v", meta.Tags)
	}
	if meta.MaxAge != models.CacheMaxAgeUnbounded {
		t.Errorf("expected unbounded max-age, got %d", meta.MaxAge)
	}

	want := []string{"route", "url.path", "languages:interface", "languages:content"}
	if len(meta.Contexts) != len(want) {
		t.Fatalf("expected %d contexts, got %v", len(want), meta.Contexts)
	}
	for i, c := range want {
		if meta.Contexts[i] != c {
			t.Errorf("context %d = %q, want %q", i, meta.Contexts[i], c)
		}
	}
}

func TestComputeCacheInfo_ImageTag(t *testing.T) {
	sel := &models.Selection{Banner: models.Banner{ImageID: "42"}}
	meta := ComputeCacheInfo(sel, models.RequestContext{})

	found := false
	for _, tag := range meta.Tags {
		if tag == "file:42" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected file tag for the banner image, got %v", meta.Tags)
	}
}

func TestComputeCacheInfo_ContextsAreACopy(t *testing.T) {
	meta := ComputeCacheInfo(nil, models.RequestContext{})
	meta.Contexts[0] = "mutated"
	if cacheContexts[0] != "route" {
		t.Errorf("shared context slice was mutated")
	}
}
