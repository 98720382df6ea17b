// Package config loads zonemap configuration files.
//
// A configuration file is TOML with up to five sections. Every section is
// optional; command-line flags override file values.
//
//	[chart]
//	title = "EMEA Assessment"
//	preset = "stacey"
//	size_scale = 6
//	axis = { min = 1, max = 9 }
//	formats = ["svg", "png"]
//
//	[[zone]]
//	name = "Focus"
//	color = "#b3e5fc"
//	x0 = 1
//	x1 = 9
//	y0 = 1
//	y1 = 9
//
//	[[zone_label]]
//	zone = "Focus"
//	x = 2
//	y = 8
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//	ttl = "12h"
//
//	[server]
//	addr = ":8080"
//
// When [[zone]] rules are present they replace the preset. Rules are
// painted in file order, so later rules win where they overlap.
package config

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/zonemap/pkg/errors"
	"github.com/matzehuels/zonemap/pkg/layout"
	"github.com/matzehuels/zonemap/pkg/pipeline"
	"github.com/matzehuels/zonemap/pkg/zone"
)

// FileName is the configuration file looked up in the working directory.
const FileName = "zonemap.toml"

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// DefaultAddr is the HTTP listen address.
const DefaultAddr = ":8080"

// DefaultMaxBody bounds uploaded CSV bodies, in bytes.
const DefaultMaxBody = 8 << 20

// Config is a decoded configuration file.
type Config struct {
	Chart      Chart        `toml:"chart"`
	Zones      []ZoneRule   `toml:"zone"`
	ZoneLabels []zone.Label `toml:"zone_label"`
	Cache      Cache        `toml:"cache"`
	Server     Server       `toml:"server"`

	// Path is the file the config was loaded from, if any.
	Path string `toml:"-"`
}

// Chart holds pipeline options.
type Chart struct {
	Title          string            `toml:"title"`
	XLabel         string            `toml:"x_label"`
	YLabel         string            `toml:"y_label"`
	Preset         string            `toml:"preset"`
	Axis           *layout.AxisRange `toml:"axis"`
	SizeScale      float64           `toml:"size_scale"`
	Width          float64           `toml:"width"`
	Height         float64           `toml:"height"`
	Scale          float64           `toml:"scale"`
	Formats        []string          `toml:"formats"`
	HideGrid       bool              `toml:"hide_grid"`
	HideBoundaries bool              `toml:"hide_boundaries"`
	HideZoneLabels bool              `toml:"hide_zone_labels"`
	XWeights       []float64         `toml:"x_weights"`
	YWeights       []float64         `toml:"y_weights"`
	DefaultZone    *zone.Zone        `toml:"default_zone"`
}

// ZoneRule is one [[zone]] table.
type ZoneRule struct {
	Name  string  `toml:"name"`
	Color string  `toml:"color"`
	X0    float64 `toml:"x0"`
	X1    float64 `toml:"x1"`
	Y0    float64 `toml:"y0"`
	Y1    float64 `toml:"y1"`
}

// Cache selects and tunes the cache backend.
type Cache struct {
	Backend       string   `toml:"backend"`
	Dir           string   `toml:"dir"`
	RedisAddr     string   `toml:"redis_addr"`
	RedisPassword string   `toml:"redis_password"`
	RedisDB       int      `toml:"redis_db"`
	TTL           Duration `toml:"ttl"`
}

// Server configures the HTTP API.
type Server struct {
	Addr    string `toml:"addr"`
	MaxBody int64  `toml:"max_body"`
}

// Duration is a time.Duration written as a Go duration string ("12h").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the configuration used when no file is found.
func Default() Config {
	return Config{
		Cache:  Cache{Backend: BackendFile},
		Server: Server{Addr: DefaultAddr, MaxBody: DefaultMaxBody},
	}
}

// Decode reads a TOML configuration. Unknown keys are rejected so that
// typos do not silently fall back to defaults.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "unknown config key %q", undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads the configuration at path.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return Config{}, err
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return Config{}, err
	}
	cfg.Path = path
	return cfg, nil
}

// Find returns the first existing config file among ./zonemap.toml and
// $XDG_CONFIG_HOME/zonemap/config.toml (~/.config when unset).
// It returns "" when there is none.
func Find() string {
	candidates := []string{FileName}
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "zonemap", "config.toml"))
	}
	for _, p := range candidates {
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p
		}
	}
	return ""
}

// Resolve loads path, or the file Find returns when path is empty. With no
// file at all it returns Default.
func Resolve(path string) (Config, error) {
	if path == "" {
		path = Find()
	}
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// Validate checks the cache backend and the zone rules.
func (c Config) Validate() error {
	switch c.Cache.Backend {
	case "", BackendFile, BackendNone:
	case BackendRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache backend redis requires redis_addr")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q (must be one of: file, redis, none)", c.Cache.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache ttl must not be negative")
	}

	rs, err := c.RuleSet()
	if err != nil {
		return err
	}
	if rs != nil {
		if _, err := rs.Classifier(); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "zone rules")
		}
	}
	return nil
}

// RuleSet returns the [[zone]] rules as a rule set, or nil when the file
// defines none.
func (c Config) RuleSet() (*zone.RuleSet, error) {
	if len(c.Zones) == 0 {
		if len(c.ZoneLabels) > 0 {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "zone_label entries require [[zone]] rules")
		}
		return nil, nil
	}
	rs := &zone.RuleSet{
		Name:    "config",
		Axis:    layout.DefaultAxis,
		Default: zone.Unclassified,
		Labels:  c.ZoneLabels,
	}
	if c.Path != "" {
		rs.Name = filepath.Base(c.Path)
	}
	if c.Chart.Axis != nil {
		rs.Axis = *c.Chart.Axis
	}
	if c.Chart.DefaultZone != nil {
		rs.Default = *c.Chart.DefaultZone
	}
	for _, z := range c.Zones {
		rs.Rules = append(rs.Rules, zone.FileRule(z.Name, z.Color, z.X0, z.X1, z.Y0, z.Y1))
	}
	return rs, nil
}

// Options converts the [chart] section and zone rules into pipeline
// options. Zero values are left for pipeline defaults.
func (c Config) Options() (pipeline.Options, error) {
	ch := c.Chart
	opts := pipeline.Options{
		Title:          ch.Title,
		XLabel:         ch.XLabel,
		YLabel:         ch.YLabel,
		Preset:         ch.Preset,
		SizeScale:      ch.SizeScale,
		Width:          ch.Width,
		Height:         ch.Height,
		Scale:          ch.Scale,
		Formats:        ch.Formats,
		HideGrid:       ch.HideGrid,
		HideBoundaries: ch.HideBoundaries,
		HideZoneLabels: ch.HideZoneLabels,
		XWeights:       ch.XWeights,
		YWeights:       ch.YWeights,
	}
	if ch.Axis != nil {
		opts.Axis = *ch.Axis
	}
	rs, err := c.RuleSet()
	if err != nil {
		return pipeline.Options{}, err
	}
	opts.Rules = rs
	return opts, nil
}
