// Package config loads run settings from defaults, an optional YAML file,
// GAMESEARCH_* environment variables and command line flags, in increasing
// order of precedence.
package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"gamesearch/experiments"
	"gamesearch/experiments/metrics"
	"gamesearch/scoring"
	"gamesearch/searcher"
	"gamesearch/tree"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const EnvPrefix = "GAMESEARCH"

type Config struct {
	Game      string         `mapstructure:"game"`
	Target    int            `mapstructure:"target"`
	Games     int            `mapstructure:"games"`
	Parallel  int            `mapstructure:"parallel"`
	Alternate bool           `mapstructure:"alternate"`
	Opponent  string         `mapstructure:"opponent"`
	OutputDir string         `mapstructure:"output_dir"`
	LogLevel  string         `mapstructure:"log_level"`
	Search    SearchConfig   `mapstructure:"search"`
	Training  TrainingConfig `mapstructure:"training"`
}

type SearchConfig struct {
	MinPlies       int           `mapstructure:"min_plies"`
	MaxPlies       int           `mapstructure:"max_plies"`
	MinThink       time.Duration `mapstructure:"min_think"`
	MaxThink       time.Duration `mapstructure:"max_think"`
	Ties           string        `mapstructure:"ties"`
	Trim           string        `mapstructure:"trim"`
	CacheCapacity  int           `mapstructure:"cache_capacity"`
	MemoryFraction float64       `mapstructure:"memory_fraction"`
	Decay          float64       `mapstructure:"decay"`
	Misere         bool          `mapstructure:"misere"`
}

type TrainingConfig struct {
	Temperature float64 `mapstructure:"temperature"`
}

// flagKeys maps command line flags onto configuration keys.
var flagKeys = map[string]string{
	"config":          "",
	"game":            "game",
	"target":          "target",
	"games":           "games",
	"parallel":        "parallel",
	"alternate":       "alternate",
	"opponent":        "opponent",
	"output-dir":      "output_dir",
	"log-level":       "log_level",
	"min-plies":       "search.min_plies",
	"max-plies":       "search.max_plies",
	"min-think":       "search.min_think",
	"max-think":       "search.max_think",
	"ties":            "search.ties",
	"trim":            "search.trim",
	"cache-capacity":  "search.cache_capacity",
	"memory-fraction": "search.memory_fraction",
	"decay":           "search.decay",
	"misere":          "search.misere",
	"temperature":     "training.temperature",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("game", experiments.TicTacToe)
	v.SetDefault("target", 20)
	v.SetDefault("games", 10)
	v.SetDefault("parallel", 0)
	v.SetDefault("alternate", true)
	v.SetDefault("opponent", string(metrics.Random))
	v.SetDefault("output_dir", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("search.min_plies", searcher.DefaultMinPlies)
	v.SetDefault("search.max_plies", 0)
	v.SetDefault("search.min_think", time.Duration(0))
	v.SetDefault("search.max_think", 100*time.Millisecond)
	v.SetDefault("search.ties", scoring.TieFirst.String())
	v.SetDefault("search.trim", tree.TrimGenerational.String())
	v.SetDefault("search.cache_capacity", 0)
	v.SetDefault("search.memory_fraction", searcher.DefaultMemoryFraction)
	v.SetDefault("search.decay", 0.0)
	v.SetDefault("search.misere", false)
	v.SetDefault("training.temperature", 1.0)
}

// Flags declares the command line flags Load understands. Unset flags do
// not override the file or environment.
func Flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("gamesearch", pflag.ContinueOnError)
	fs.String("config", "", "YAML configuration file")
	fs.String("game", experiments.TicTacToe, "game to play: "+strings.Join(experiments.Games, ", "))
	fs.Int("target", 20, "points needed to win pig")
	fs.Int("games", 10, "number of games to play")
	fs.Int("parallel", 0, "games played at once, 0 for no limit")
	fs.Bool("alternate", true, "swap the starting player every other game")
	fs.String("opponent", string(metrics.Random), "opponent agent: search, train or random")
	fs.String("output-dir", "", "directory for CSV records, none if empty")
	fs.String("log-level", "info", "zerolog level")
	fs.Int("min-plies", searcher.DefaultMinPlies, "plies searched regardless of time")
	fs.Int("max-plies", 0, "maximum plies searched, 0 for no limit")
	fs.Duration("min-think", 0, "minimum search time per move")
	fs.Duration("max-think", 100*time.Millisecond, "maximum search time per move")
	fs.String("ties", scoring.TieFirst.String(), "tie policy: first or mixed")
	fs.String("trim", tree.TrimGenerational.String(), "cache trim policy: generational or clear")
	fs.Int("cache-capacity", 0, "transposition cache entries, 0 to size from memory")
	fs.Float64("memory-fraction", searcher.DefaultMemoryFraction, "share of memory for the default cache size")
	fs.Float64("decay", 0, "per-ply score decay factor, 0 to disable")
	fs.Bool("misere", false, "invert win and loss")
	fs.Float64("temperature", 1, "training agent sampling temperature")
	return fs
}

// Load reads the configuration. flags may be nil; a "config" flag names the YAML file.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			flag := flags.Lookup(name)
			if flag == nil || key == "" {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
			}
		}
		if path, err := flags.GetString("config"); err == nil && path != "" {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	if !slices.Contains(experiments.Games, c.Game) {
		return fmt.Errorf("unknown game %q", c.Game)
	}
	if c.Games <= 0 {
		return fmt.Errorf("games must be positive, got %d", c.Games)
	}
	if c.Parallel < 0 {
		return fmt.Errorf("parallel must not be negative, got %d", c.Parallel)
	}
	switch metrics.AgentKind(c.Opponent) {
	case metrics.Searching, metrics.Training, metrics.Random:
	default:
		return fmt.Errorf("unknown opponent %q", c.Opponent)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	s := c.Search
	if s.MinPlies < 0 || s.MaxPlies < 0 || s.MinThink < 0 || s.MaxThink < 0 {
		return fmt.Errorf("search limits must not be negative")
	}
	if s.MaxPlies > 0 && s.MaxPlies < s.MinPlies {
		return fmt.Errorf("max plies %d is below min plies %d", s.MaxPlies, s.MinPlies)
	}
	if s.MaxPlies == 0 && s.MaxThink == 0 && s.MinThink == 0 {
		return fmt.Errorf("search needs max plies or a think time")
	}
	if s.MaxThink > 0 && s.MinThink > s.MaxThink {
		return fmt.Errorf("min think %s exceeds max think %s", s.MinThink, s.MaxThink)
	}
	if _, ok := scoring.ParseTiePolicy(s.Ties); !ok {
		return fmt.Errorf("unknown tie policy %q", s.Ties)
	}
	if _, ok := tree.ParseTrimPolicy(s.Trim); !ok {
		return fmt.Errorf("unknown trim policy %q", s.Trim)
	}
	if s.MemoryFraction <= 0 || s.MemoryFraction > 1 {
		return fmt.Errorf("memory fraction must be in (0, 1], got %v", s.MemoryFraction)
	}
	if s.Decay < 0 || s.Decay > 1 {
		return fmt.Errorf("decay must be in [0, 1], got %v", s.Decay)
	}
	return nil
}

func (c *Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

func (c *Config) TrimPolicy() tree.TrimPolicy {
	policy, _ := tree.ParseTrimPolicy(c.Search.Trim)
	return policy
}

// CacheCapacity is the configured capacity, or one sized from system memory.
func (c *Config) CacheCapacity() int {
	if c.Search.CacheCapacity > 0 {
		return c.Search.CacheCapacity
	}
	return tree.DefaultCapacity(c.Search.MemoryFraction)
}

// AgentConfig describes the searching agent under test (ID 1).
func (c *Config) AgentConfig() metrics.AgentConfig {
	return metrics.AgentConfig{
		ID:          1,
		Kind:        metrics.Searching,
		MinPlies:    c.Search.MinPlies,
		MaxPlies:    c.Search.MaxPlies,
		MinThink:    c.Search.MinThink,
		MaxThink:    c.Search.MaxThink,
		Ties:        c.Search.Ties,
		Decay:       c.Search.Decay,
		Misere:      c.Search.Misere,
		Temperature: c.Training.Temperature,
	}
}

// Experiment pits the searching agent against the configured opponent,
// which shares its search settings (ID 2).
func (c *Config) Experiment(name string) experiments.Experiment {
	opponent := c.AgentConfig()
	opponent.ID = 2
	opponent.Kind = metrics.AgentKind(c.Opponent)
	return experiments.Experiment{
		Name:          name,
		Game:          c.Game,
		Target:        c.Target,
		Games:         c.Games,
		Parallel:      c.Parallel,
		Alternate:     c.Alternate,
		Agents:        [2]metrics.AgentConfig{c.AgentConfig(), opponent},
		CacheCapacity: c.CacheCapacity(),
		TrimPolicy:    c.TrimPolicy(),
		OutputDir:     c.OutputDir,
	}
}

// SearchOptions configures a standalone searcher with its own cache.
func (c *Config) SearchOptions(logger zerolog.Logger) []searcher.Option {
	cache := tree.NewMapCache(
		tree.WithCapacity(c.CacheCapacity()),
		tree.WithTrimPolicy(c.TrimPolicy()),
		tree.WithCacheLogger(logger),
	)
	return append(experiments.NewSearchOptions(c.AgentConfig()),
		searcher.WithCache(cache),
		searcher.WithLogger(logger),
		searcher.WithMetrics(),
	)
}
