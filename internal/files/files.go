// Package files resolves stored file references (banner images) to absolute
// URLs. The mapping lives in a redis hash maintained by the media pipeline.
package files

import (
	"context"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// FilesKey is the redis hash holding file reference to relative path entries.
const FilesKey = "banner:files"

// Lookup resolves a file reference to an absolute URL. A false result means
// the reference is unknown; callers render without an image in that case.
type Lookup interface {
	ResolveURL(ctx context.Context, fileRef string) (string, bool)
}

// RedisLookup implements Lookup against the redis file map.
type RedisLookup struct {
	client  *redis.Client
	baseURL string
	logger  *zap.Logger
}

// NewRedisLookup constructs a RedisLookup. baseURL is prefixed onto the
// stored relative paths.
func NewRedisLookup(client *redis.Client, baseURL string, logger *zap.Logger) *RedisLookup {
	return &RedisLookup{
		client:  client,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger,
	}
}

// ResolveURL looks up the file reference. Lookup failures are treated the
// same as unknown references: the banner renders without an image.
func (l *RedisLookup) ResolveURL(ctx context.Context, fileRef string) (string, bool) {
	if fileRef == "" {
		return "", false
	}
	path, err := l.client.HGet(ctx, FilesKey, fileRef).Result()
	if err != nil {
		if err != redis.Nil && l.logger != nil {
			l.logger.Warn("file lookup failed",
				zap.String("file_ref", fileRef),
				zap.Error(err))
		}
		return "", false
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return l.baseURL + path, true
}

// StaticLookup is a map-backed Lookup for tests and single-binary setups.
type StaticLookup map[string]string

// ResolveURL returns the mapped URL for the reference.
func (l StaticLookup) ResolveURL(_ context.Context, fileRef string) (string, bool) {
	url, ok := l[fileRef]
	return url, ok
}
