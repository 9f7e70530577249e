// Package config loads formation scenarios from TOML.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/Garsondee/formation-sense/internal/formation"
)

// Config is one runnable scenario plus runtime settings.
type Config struct {
	Formation string  `toml:"formation"`
	Range     float64 `toml:"range"`
	Ticks     int     `toml:"ticks"`
	// BotSpeed is how far a bot may move toward its target per tick.
	BotSpeed float64 `toml:"bot_speed"`

	Anchor  Anchor   `toml:"anchor"`
	Members []Member `toml:"member"`
	Terrain Terrain  `toml:"terrain"`
	Holes   []Hole   `toml:"hole"`

	Log    Log    `toml:"log"`
	Server Server `toml:"server"`
}

// Anchor describes the followed unit and the path it walks.
type Anchor struct {
	ID       string  `toml:"id"`
	MapID    uint32  `toml:"map_id"`
	X        float64 `toml:"x"`
	Y        float64 `toml:"y"`
	Heading  float64 `toml:"heading"`
	Speed    float64 `toml:"speed"`
	TurnRate float64 `toml:"turn_rate"` // radians per tick
}

// Member is one roster entry. For the anchor member, x and y are its start
// position unless [anchor] sets x or y; giving both with different non-zero
// values is an error.
type Member struct {
	ID   string  `toml:"id"`
	Role string  `toml:"role"`
	X    float64 `toml:"x"`
	Y    float64 `toml:"y"`
	// The member is unsafe for ticks in [UnsafeFrom, UnsafeUntil).
	UnsafeFrom  int `toml:"unsafe_from"`
	UnsafeUntil int `toml:"unsafe_until"`
}

// Terrain is a plane z = Base + SlopeX*x + SlopeY*y.
type Terrain struct {
	Base   float64 `toml:"base"`
	SlopeX float64 `toml:"slope_x"`
	SlopeY float64 `toml:"slope_y"`
}

// Hole is a disc with no ground.
type Hole struct {
	X      float64 `toml:"x"`
	Y      float64 `toml:"y"`
	Radius float64 `toml:"radius"`
}

// Log configures internal/logging.
type Log struct {
	Debug      bool   `toml:"debug"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

// Server configures the HTTP server.
type Server struct {
	Addr     string `toml:"addr"`
	TickRate int    `toml:"tick_rate"` // ticks per second
}

// Default returns a small mixed party walking east in a slow arc.
func Default() Config {
	return Config{
		Formation: "arrow",
		Range:     5,
		Ticks:     600,
		BotSpeed:  2,
		Anchor: Anchor{
			ID:       "leader",
			X:        100,
			Y:        360,
			Speed:    1,
			TurnRate: 0.004,
		},
		Members: []Member{
			{ID: "leader", Role: "tank", X: 100, Y: 360},
			{ID: "guard", Role: "tank", X: 90, Y: 340},
			{ID: "blade", Role: "melee", X: 80, Y: 350},
			{ID: "fang", Role: "melee", X: 80, Y: 370},
			{ID: "arrow", Role: "ranged", X: 70, Y: 340},
			{ID: "spark", Role: "ranged", X: 70, Y: 380},
			{ID: "mend", Role: "healer", X: 60, Y: 360},
		},
		Log:    Log{MaxSizeMB: 10, MaxBackups: 3, MaxAgeDays: 7},
		Server: Server{Addr: ":8080", TickRate: 20},
	}
}

// Load reads a TOML scenario file over Default.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	cfg, err := Decode(string(data))
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Decode parses TOML text over Default. A scenario without members keeps the
// default roster. Unknown keys are an error.
func Decode(text string) (Config, error) {
	cfg := Default()
	cfg.Members = nil
	md, err := toml.Decode(text, &cfg)
	if err != nil {
		return Config{}, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	if len(cfg.Members) == 0 {
		cfg.Members = Default().Members
	}
	if err := cfg.placeAnchor(md.IsDefined("anchor", "x") || md.IsDefined("anchor", "y")); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// placeAnchor reconciles the anchor's start position between [anchor] and its
// [[member]] entry. fromTable reports whether [anchor] set x or y.
func (c *Config) placeAnchor(fromTable bool) error {
	for _, m := range c.Members {
		if m.ID != c.Anchor.ID {
			continue
		}
		switch {
		case !fromTable:
			c.Anchor.X, c.Anchor.Y = m.X, m.Y
		case (m.X != 0 || m.Y != 0) && (m.X != c.Anchor.X || m.Y != c.Anchor.Y):
			return fmt.Errorf("anchor: start (%v,%v) conflicts with member %q at (%v,%v)",
				c.Anchor.X, c.Anchor.Y, m.ID, m.X, m.Y)
		}
	}
	return nil
}

// Kind returns the parsed formation kind.
func (c Config) Kind() formation.Kind {
	k, _ := formation.ParseKind(c.Formation)
	return k
}

// Validate reports every problem found.
func (c Config) Validate() error {
	var errs []error
	if _, err := formation.ParseKind(c.Formation); err != nil {
		errs = append(errs, fmt.Errorf("formation: %w", err))
	}
	if c.Range <= 0 {
		errs = append(errs, fmt.Errorf("range: must be > 0, got %v", c.Range))
	}
	if c.Ticks <= 0 {
		errs = append(errs, fmt.Errorf("ticks: must be > 0, got %d", c.Ticks))
	}
	if c.BotSpeed <= 0 {
		errs = append(errs, fmt.Errorf("bot_speed: must be > 0, got %v", c.BotSpeed))
	}
	if c.Server.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("server.tick_rate: must be > 0, got %d", c.Server.TickRate))
	}

	seen := map[string]bool{}
	for i, m := range c.Members {
		switch {
		case m.ID == "":
			errs = append(errs, fmt.Errorf("member[%d].id: required", i))
		case seen[m.ID]:
			errs = append(errs, fmt.Errorf("member[%d].id: duplicate %q", i, m.ID))
		}
		seen[m.ID] = true
		switch m.Role {
		case "tank", "healer", "ranged", "melee", "":
		default:
			errs = append(errs, fmt.Errorf("member[%d].role: unknown %q", i, m.Role))
		}
		if m.UnsafeUntil < m.UnsafeFrom {
			errs = append(errs, fmt.Errorf("member[%d]: unsafe_until before unsafe_from", i))
		}
	}
	if !seen[c.Anchor.ID] {
		errs = append(errs, fmt.Errorf("anchor.id: %q is not a member", c.Anchor.ID))
	}
	for i, h := range c.Holes {
		if h.Radius <= 0 {
			errs = append(errs, fmt.Errorf("hole[%d].radius: must be > 0", i))
		}
	}
	return errors.Join(errs...)
}
