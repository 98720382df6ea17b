// Package cache stores rendered scenes and artifacts between runs.
//
// Entries are opaque byte slices addressed by string keys. Keys are built by
// a [Keyer] from content hashes, so a key changes whenever the input table or
// any option that affects the output changes.
//
// Three backends are provided: [FileCache] for the CLI, [RedisCache] for a
// shared server cache, and [NullCache] when caching is disabled.
package cache

import (
	"context"
	"time"
)

// Default entry lifetimes.
const (
	TTLScene    = 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte store with per-entry expiration. Implementations must be
// safe for concurrent use.
type Cache interface {
	// Get returns the entry for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl <= 0 never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Keyer derives cache keys.
type Keyer interface {
	// SceneKey addresses a built scene.
	SceneKey(dataHash string, opts SceneKeyOpts) string
	// ArtifactKey addresses one rendered output of a scene.
	ArtifactKey(sceneHash string, opts ArtifactKeyOpts) string
}

// SceneKeyOpts are the inputs besides the data that change a scene.
type SceneKeyOpts struct {
	AxisMin        float64 `json:"axis_min"`
	AxisMax        float64 `json:"axis_max"`
	SizeScale      float64 `json:"size_scale"`
	Title          string  `json:"title"`
	XLabel         string  `json:"x_label"`
	YLabel         string  `json:"y_label"`
	RulesHash      string  `json:"rules_hash"`
	Width          float64 `json:"width"`
	Height         float64 `json:"height"`
	ShowGrid       bool    `json:"show_grid"`
	ShowBoundaries bool    `json:"show_boundaries"`
	ShowZoneLabels bool    `json:"show_zone_labels"`
}

// ArtifactKeyOpts are the inputs that change a rendered file.
type ArtifactKeyOpts struct {
	Format string  `json:"format"`
	Scale  float64 `json:"scale,omitempty"`
}

// DefaultKeyer builds keys of the form "kind:sha256".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// SceneKey implements Keyer.
func (DefaultKeyer) SceneKey(dataHash string, opts SceneKeyOpts) string {
	return hashKey("scene", dataHash, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(sceneHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", sceneHash, opts)
}

// WithTTL returns c with every positive ttl replaced by ttl. A ttl <= 0
// returns c unchanged.
func WithTTL(c Cache, ttl time.Duration) Cache {
	if ttl <= 0 {
		return c
	}
	return &ttlCache{Cache: c, ttl: ttl}
}

type ttlCache struct {
	Cache
	ttl time.Duration
}

func (c *ttlCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if ttl > 0 {
		ttl = c.ttl
	}
	return c.Cache.Set(ctx, key, data, ttl)
}
