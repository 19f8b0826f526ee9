package logic

import "github.com/opencms/sectionbanner/internal/models"

// BannerListCacheTag is invalidated whenever any banner is added, edited or
// removed. Render output always carries it so one save flushes every cached
// variation at once.
const BannerListCacheTag = "banner_list"

// Cache contexts the selection result depends on. Which banner matches is a
// function of the resolved route and path, and the displayed content is a
// function of both languages, so caches must vary by all four.
var cacheContexts = []string{
	"route",
	"url.path",
	"languages:interface",
	"languages:content",
}

// ComputeCacheInfo derives the cache metadata for a selection result.
// Max-age is unbounded: cached output is only ever flushed by tag
// invalidation on save, never by time.
func ComputeCacheInfo(sel *models.Selection, ctx models.RequestContext) models.CacheMetadata {
	meta := models.CacheMetadata{
		Tags:     []string{BannerListCacheTag},
		Contexts: append([]string(nil), cacheContexts...),
		MaxAge:   models.CacheMaxAgeUnbounded,
	}
	if sel != nil && sel.Banner.ImageID != "" {
		meta.Tags = append(meta.Tags, FileCacheTag(sel.Banner.ImageID))
	}
	return meta
}

// FileCacheTag returns the cache tag of a stored file.
func FileCacheTag(fileRef string) string {
	return "file:" + fileRef
}
