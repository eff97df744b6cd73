// Package config loads cocan settings from defaults, a YAML file and COCAN_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"cocan/internal/chobin"
	"cocan/internal/dish"
	"cocan/internal/geometry"
	"cocan/internal/kitchen"
	"cocan/internal/logx"
	"cocan/internal/queue"
)

// EnvPrefix prefixes every environment override, e.g. COCAN_GUESTS_TOTAL.
const EnvPrefix = "COCAN"

// Config is the full application configuration.
type Config struct {
	Scenario   string           `mapstructure:"scenario" yaml:"scenario"`
	Simulation SimulationConfig `mapstructure:"simulation" yaml:"simulation"`
	Guests     GuestsConfig     `mapstructure:"guests" yaml:"guests"`
	Chobins    ChobinsConfig    `mapstructure:"chobins" yaml:"chobins"`
	Materials  []MaterialConfig `mapstructure:"materials" yaml:"materials"`
	Actions    []ActionConfig   `mapstructure:"actions" yaml:"actions"`
	Server     ServerConfig     `mapstructure:"server" yaml:"server"`
	Database   DatabaseConfig   `mapstructure:"database" yaml:"database"`
	Auth       AuthConfig       `mapstructure:"auth" yaml:"auth"`
	Advisor    AdvisorConfig    `mapstructure:"advisor" yaml:"advisor"`
	Log        LogConfig        `mapstructure:"log" yaml:"log"`
}

// SimulationConfig controls the game loop.
type SimulationConfig struct {
	TickInterval time.Duration `mapstructure:"tick_interval" yaml:"tick_interval"`
	TimeScale    float64       `mapstructure:"time_scale" yaml:"time_scale"`
	Seed         int64         `mapstructure:"seed" yaml:"seed"`
	// MaxTicks bounds a headless run; 0 means until every guest has left.
	MaxTicks int `mapstructure:"max_ticks" yaml:"max_ticks"`
}

// Spots are the fixed queue landmarks.
type Spots struct {
	Spawn        *geometry.Vec3 `mapstructure:"spawn" yaml:"spawn"`
	Ordering     *geometry.Vec3 `mapstructure:"ordering" yaml:"ordering"`
	WaitingServe *geometry.Vec3 `mapstructure:"waiting_serve" yaml:"waiting_serve"`
	Exit         *geometry.Vec3 `mapstructure:"exit" yaml:"exit"`
}

// VariantConfig is one guest profile.
type VariantConfig struct {
	Name    string   `mapstructure:"name" yaml:"name"`
	Liked   []string `mapstructure:"liked" yaml:"liked"`
	Hated   []string `mapstructure:"hated" yaml:"hated"`
	Emotion []string `mapstructure:"emotion" yaml:"emotion"`
}

type GuestsConfig struct {
	Total            int             `mapstructure:"total" yaml:"total"`
	MaxConcurrent    int             `mapstructure:"max_concurrent" yaml:"max_concurrent"`
	SpawnIntervalMin time.Duration   `mapstructure:"spawn_interval_min" yaml:"spawn_interval_min"`
	SpawnIntervalMax time.Duration   `mapstructure:"spawn_interval_max" yaml:"spawn_interval_max"`
	Speed            float64         `mapstructure:"speed" yaml:"speed"`
	Spots            Spots           `mapstructure:"spots" yaml:"spots"`
	OrderOffset      geometry.Vec3   `mapstructure:"order_offset" yaml:"order_offset"`
	ServeOffset      geometry.Vec3   `mapstructure:"serve_offset" yaml:"serve_offset"`
	WaitingDirection geometry.Vec3   `mapstructure:"waiting_direction" yaml:"waiting_direction"`
	OrderTexts       []string        `mapstructure:"order_texts" yaml:"order_texts"`
	ReactionWindow   time.Duration   `mapstructure:"reaction_window" yaml:"reaction_window"`
	Variants         []VariantConfig `mapstructure:"variants" yaml:"variants"`
}

type ChobinsConfig struct {
	Speed          float64         `mapstructure:"speed" yaml:"speed"`
	PerformingTime time.Duration   `mapstructure:"performing_time" yaml:"performing_time"`
	CommandCount   int             `mapstructure:"command_count" yaml:"command_count"`
	WaitingSpots   []geometry.Vec3 `mapstructure:"waiting_spots" yaml:"waiting_spots"`
	ServingSpot    *geometry.Vec3  `mapstructure:"serving_spot" yaml:"serving_spot"`
	ServingRadius  float64         `mapstructure:"serving_radius" yaml:"serving_radius"`
	WaitingRadius  float64         `mapstructure:"waiting_radius" yaml:"waiting_radius"`
	ArrivalEpsilon float64         `mapstructure:"arrival_epsilon" yaml:"arrival_epsilon"`
}

type MaterialConfig struct {
	Name  string `mapstructure:"name" yaml:"name"`
	Asset string `mapstructure:"asset" yaml:"asset,omitempty"`
}

// StationConfig is where an action is performed.
type StationConfig struct {
	Position geometry.Vec3 `mapstructure:"position" yaml:"position"`
	Facing   geometry.Vec3 `mapstructure:"facing" yaml:"facing"`
}

type ActionConfig struct {
	Name    string         `mapstructure:"name" yaml:"name"`
	Asset   string         `mapstructure:"asset" yaml:"asset,omitempty"`
	Station *StationConfig `mapstructure:"station" yaml:"station"`
}

type ServerConfig struct {
	Addr        string `mapstructure:"addr" yaml:"addr"`
	MetricsAddr string `mapstructure:"metrics_addr" yaml:"metrics_addr"`
	Mode        string `mapstructure:"mode" yaml:"mode"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver" yaml:"driver"`
	DSN    string `mapstructure:"dsn" yaml:"dsn"`
}

// AuthConfig enables bearer tokens on command routes when Secret is set.
type AuthConfig struct {
	Secret   string        `mapstructure:"secret" yaml:"secret"`
	TokenTTL time.Duration `mapstructure:"token_ttl" yaml:"token_ttl"`
}

// AdvisorConfig selects the command advisor backend: heuristic, openai or
// ollama.
type AdvisorConfig struct {
	Provider string        `mapstructure:"provider" yaml:"provider"`
	Model    string        `mapstructure:"model" yaml:"model"`
	BaseURL  string        `mapstructure:"base_url" yaml:"base_url"`
	APIKey   string        `mapstructure:"api_key" yaml:"api_key,omitempty"`
	Timeout  time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	Color bool   `mapstructure:"color" yaml:"color"`
}

func vec(x, y, z float64) *geometry.Vec3 {
	v := geometry.V(x, y, z)
	return &v
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Scenario: "standard",
		Simulation: SimulationConfig{
			TickInterval: 50 * time.Millisecond,
			TimeScale:    1,
			Seed:         0,
		},
		Guests: GuestsConfig{
			Total:            10,
			MaxConcurrent:    4,
			SpawnIntervalMin: 3 * time.Second,
			SpawnIntervalMax: 8 * time.Second,
			Speed:            1.5,
			Spots: Spots{
				Spawn:        vec(-8, 0, 4),
				Ordering:     vec(0, 0, 2),
				WaitingServe: vec(3, 0, 2),
				Exit:         vec(8, 0, 4),
			},
			OrderOffset:      geometry.V(-1, 0, 0.5),
			ServeOffset:      geometry.V(1, 0, 0.5),
			WaitingDirection: geometry.V(0, 0, -1),
			OrderTexts:       []string{"omurice", "sushi", "curry", "pizza", "ramen"},
			ReactionWindow:   2 * time.Second,
			Variants: []VariantConfig{
				{Name: "sweet tooth", Liked: []string{"egg", "cheese"}, Hated: []string{"fish"}, Emotion: []string{"egg"}},
				{Name: "fisher", Liked: []string{"fish", "rice"}, Hated: []string{"cheese"}, Emotion: []string{"fish"}},
				{Name: "gardener", Liked: []string{"tomato", "mushroom"}, Hated: []string{"egg"}, Emotion: []string{"tomato"}},
				{Name: "picky", Liked: []string{"rice"}, Hated: []string{"mushroom", "tomato"}, Emotion: []string{"cheese"}},
			},
		},
		Chobins: ChobinsConfig{
			Speed:          3,
			PerformingTime: 2 * time.Second,
			CommandCount:   3,
			WaitingSpots: []geometry.Vec3{
				geometry.V(-2, 0, -1),
				geometry.V(0, 0, -1),
				geometry.V(2, 0, -1),
			},
			ServingSpot:    vec(3, 0, 1),
			ServingRadius:  chobin.DefaultServingRadius,
			WaitingRadius:  chobin.DefaultWaitingRadius,
			ArrivalEpsilon: chobin.DefaultArrivalEpsilon,
		},
		Materials: []MaterialConfig{
			{Name: "tomato", Asset: "materials/tomato.png"},
			{Name: "egg", Asset: "materials/egg.png"},
			{Name: "rice", Asset: "materials/rice.png"},
			{Name: "fish", Asset: "materials/fish.png"},
			{Name: "cheese", Asset: "materials/cheese.png"},
			{Name: "mushroom", Asset: "materials/mushroom.png"},
		},
		Actions: []ActionConfig{
			{Name: "cut", Asset: "actions/cut.png", Station: &StationConfig{Position: geometry.V(-4, 0, -4), Facing: geometry.V(0, 0, -1)}},
			{Name: "boil", Asset: "actions/boil.png", Station: &StationConfig{Position: geometry.V(-1, 0, -4), Facing: geometry.V(0, 0, -1)}},
			{Name: "fry", Asset: "actions/fry.png", Station: &StationConfig{Position: geometry.V(2, 0, -4), Facing: geometry.V(0, 0, -1)}},
			{Name: "bake", Asset: "actions/bake.png", Station: &StationConfig{Position: geometry.V(5, 0, -3), Facing: geometry.V(1, 0, 0)}},
		},
		Server: ServerConfig{
			Addr:        ":8080",
			MetricsAddr: "",
			Mode:        "release",
		},
		Database: DatabaseConfig{
			Driver: "sqlite3",
			DSN:    ":memory:",
		},
		Auth: AuthConfig{
			TokenTTL: 12 * time.Hour,
		},
		Advisor: AdvisorConfig{
			Provider: "heuristic",
			Model:    "gpt-4o-mini",
			Timeout:  10 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
			Color: true,
		},
	}
}

// setDefaults registers the scalar defaults with viper so environment
// variables can override them. List sections are filled after unmarshal.
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("scenario", d.Scenario)

	v.SetDefault("simulation.tick_interval", d.Simulation.TickInterval.String())
	v.SetDefault("simulation.time_scale", d.Simulation.TimeScale)
	v.SetDefault("simulation.seed", d.Simulation.Seed)
	v.SetDefault("simulation.max_ticks", d.Simulation.MaxTicks)

	v.SetDefault("guests.total", d.Guests.Total)
	v.SetDefault("guests.max_concurrent", d.Guests.MaxConcurrent)
	v.SetDefault("guests.spawn_interval_min", d.Guests.SpawnIntervalMin.String())
	v.SetDefault("guests.spawn_interval_max", d.Guests.SpawnIntervalMax.String())
	v.SetDefault("guests.speed", d.Guests.Speed)
	v.SetDefault("guests.reaction_window", d.Guests.ReactionWindow.String())

	v.SetDefault("chobins.speed", d.Chobins.Speed)
	v.SetDefault("chobins.performing_time", d.Chobins.PerformingTime.String())
	v.SetDefault("chobins.command_count", d.Chobins.CommandCount)
	v.SetDefault("chobins.serving_radius", d.Chobins.ServingRadius)
	v.SetDefault("chobins.waiting_radius", d.Chobins.WaitingRadius)
	v.SetDefault("chobins.arrival_epsilon", d.Chobins.ArrivalEpsilon)

	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.metrics_addr", d.Server.MetricsAddr)
	v.SetDefault("server.mode", d.Server.Mode)

	v.SetDefault("database.driver", d.Database.Driver)
	v.SetDefault("database.dsn", d.Database.DSN)

	v.SetDefault("auth.secret", d.Auth.Secret)
	v.SetDefault("auth.token_ttl", d.Auth.TokenTTL.String())

	v.SetDefault("advisor.provider", d.Advisor.Provider)
	v.SetDefault("advisor.model", d.Advisor.Model)
	v.SetDefault("advisor.base_url", d.Advisor.BaseURL)
	v.SetDefault("advisor.api_key", d.Advisor.APIKey)
	v.SetDefault("advisor.timeout", d.Advisor.Timeout.String())

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.color", d.Log.Color)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// The conventional provider variable works too.
	_ = v.BindEnv("advisor.api_key", EnvPrefix+"_ADVISOR_API_KEY", "OPENAI_API_KEY")
	return v
}

// Load reads cocan.yaml from the working directory or the user config
// directory. A missing file is not an error; defaults and environment
// overrides apply.
func Load() (*Config, error) {
	v := newViper()
	v.SetConfigName("cocan")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "cocan"))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}
	return decode(v)
}

// LoadFromPath reads configuration from a specific file, which must exist.
func LoadFromPath(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Anything not named in the file keeps its built-in value. A section
	// set to an empty list stays empty and fails validation.
	d := Default()
	if !v.IsSet("guests.spots") {
		cfg.Guests.Spots = d.Guests.Spots
	}
	if !v.IsSet("guests.order_offset") {
		cfg.Guests.OrderOffset = d.Guests.OrderOffset
	}
	if !v.IsSet("guests.serve_offset") {
		cfg.Guests.ServeOffset = d.Guests.ServeOffset
	}
	if !v.IsSet("guests.waiting_direction") {
		cfg.Guests.WaitingDirection = d.Guests.WaitingDirection
	}
	if !v.IsSet("guests.order_texts") {
		cfg.Guests.OrderTexts = d.Guests.OrderTexts
	}
	if !v.IsSet("guests.variants") {
		cfg.Guests.Variants = d.Guests.Variants
	}
	if !v.IsSet("chobins.waiting_spots") {
		cfg.Chobins.WaitingSpots = d.Chobins.WaitingSpots
	}
	if !v.IsSet("chobins.serving_spot") {
		cfg.Chobins.ServingSpot = d.Chobins.ServingSpot
	}
	if !v.IsSet("materials") {
		cfg.Materials = d.Materials
	}
	if !v.IsSet("actions") {
		cfg.Actions = d.Actions
	}
	return &cfg, nil
}

// Validate clamps recoverable values with a warning and reports every other
// problem, each logged, joined into one error.
func (c *Config) Validate(log *logx.Logger) error {
	if log == nil {
		log = logx.Discard()
	}
	g := &c.Guests
	if g.SpawnIntervalMin < 0 {
		log.Warnf("guests.spawn_interval_min %s is negative; using 0", g.SpawnIntervalMin)
		g.SpawnIntervalMin = 0
	}
	if g.SpawnIntervalMax < g.SpawnIntervalMin {
		log.Warnf("guests.spawn_interval_max %s is below the minimum; using %s", g.SpawnIntervalMax, g.SpawnIntervalMin)
		g.SpawnIntervalMax = g.SpawnIntervalMin
	}

	var errs []error
	add := func(format string, args ...any) { errs = append(errs, fmt.Errorf(format, args...)) }

	if c.Simulation.TickInterval <= 0 {
		add("simulation.tick_interval must be positive")
	}
	if c.Simulation.TimeScale <= 0 {
		add("simulation.time_scale must be positive")
	}
	if g.Spots.Spawn == nil || g.Spots.Ordering == nil || g.Spots.WaitingServe == nil || g.Spots.Exit == nil {
		add("guests.spots: spawn, ordering, waiting_serve and exit must all be set")
	}
	if len(g.Variants) == 0 {
		add("guests.variants is empty")
	}
	if len(g.OrderTexts) == 0 {
		add("guests.order_texts is empty")
	}
	if c.Chobins.ServingSpot == nil {
		add("chobins.serving_spot is not set")
	}
	for i, a := range c.Actions {
		if a.Station == nil {
			add("action %d (%q) has no station", i, a.Name)
		}
	}
	switch c.Database.Driver {
	case "sqlite3", "postgres":
	default:
		add("database.driver %q is not sqlite3 or postgres", c.Database.Driver)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		add("server.mode %q is not debug, release or test", c.Server.Mode)
	}
	switch c.Advisor.Provider {
	case "", "none", "heuristic", "openai", "ollama", "github_models", "azure_openai":
	default:
		add("advisor.provider %q is unknown", c.Advisor.Provider)
	}
	if c.Auth.Secret != "" && c.Auth.TokenTTL <= 0 {
		add("auth.token_ttl must be positive when a secret is set")
	}
	// Station and spot checks above must pass before the kitchen view can
	// be built without nil dereferences.
	if len(errs) == 0 {
		if err := c.Kitchen().Validate(); err != nil {
			errs = append(errs, unjoin(err)...)
		}
	}
	for _, err := range errs {
		log.Errorf("config: %v", err)
	}
	return errors.Join(errs...)
}

func unjoin(err error) []error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}

// Kitchen converts the configuration into the simulation's view. It must
// only be called on a configuration whose spots and stations are set.
func (c *Config) Kitchen() kitchen.Config {
	g := c.Guests
	variants := make([]dish.Preferences, len(g.Variants))
	for i, vc := range g.Variants {
		variants[i] = dish.Preferences{
			Liked:   dish.NewSet(vc.Liked...),
			Hated:   dish.NewSet(vc.Hated...),
			Emotion: dish.NewSet(vc.Emotion...),
		}
	}

	materials := make([]kitchen.Material, len(c.Materials))
	for i, m := range c.Materials {
		materials[i] = kitchen.Material{Name: m.Name, Asset: m.Asset}
	}
	actions := make([]kitchen.Action, len(c.Actions))
	for i, a := range c.Actions {
		actions[i] = kitchen.Action{
			Name:    a.Name,
			Asset:   a.Asset,
			Station: chobin.Target{Position: a.Station.Position, Facing: a.Station.Facing},
		}
	}

	return kitchen.Config{
		Scenario:       c.Scenario,
		Seed:           c.Simulation.Seed,
		TimeScale:      c.Simulation.TimeScale,
		OrderTexts:     append([]string(nil), g.OrderTexts...),
		ReactionWindow: g.ReactionWindow,
		Queue: queue.Config{
			SpawnSpot:        *g.Spots.Spawn,
			OrderingSpot:     *g.Spots.Ordering,
			WaitingServeSpot: *g.Spots.WaitingServe,
			ExitSpot:         *g.Spots.Exit,
			OrderOffset:      g.OrderOffset,
			ServeOffset:      g.ServeOffset,
			WaitingDirection: g.WaitingDirection,
			SpawnIntervalMin: g.SpawnIntervalMin,
			SpawnIntervalMax: g.SpawnIntervalMax,
			Total:            g.Total,
			MaxConcurrent:    g.MaxConcurrent,
			Speed:            g.Speed,
			Variants:         variants,
		},
		Chobins: chobin.Config{
			WaitingSpots:   append([]geometry.Vec3(nil), c.Chobins.WaitingSpots...),
			ServingSpot:    *c.Chobins.ServingSpot,
			Speed:          c.Chobins.Speed,
			PerformingTime: c.Chobins.PerformingTime,
			ArrivalEpsilon: c.Chobins.ArrivalEpsilon,
			ServingRadius:  c.Chobins.ServingRadius,
			WaitingRadius:  c.Chobins.WaitingRadius,
			CommandCount:   c.Chobins.CommandCount,
		},
		Materials: materials,
		Actions:   actions,
	}
}

// WriteDefault writes the built-in configuration to path as YAML.
func WriteDefault(path string) error {
	data, err := Marshal(Default())
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Marshal renders cfg as YAML with durations written as strings ("2s"),
// which is the form Load reads back.
func Marshal(cfg *Config) ([]byte, error) {
	node, err := encodeNode(reflect.ValueOf(cfg).Elem())
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	doc := &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{node}}
	return yaml.Marshal(doc)
}

var durationType = reflect.TypeOf(time.Duration(0))

// encodeNode walks v in field order so the written file reads top to bottom
// like Config.
func encodeNode(v reflect.Value) (*yaml.Node, error) {
	if v.Type() == durationType {
		return scalar(time.Duration(v.Int()).String())
	}
	switch v.Kind() {
	case reflect.Ptr:
		if v.IsNil() {
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
		}
		return encodeNode(v.Elem())
	case reflect.Struct:
		if v.Type() == reflect.TypeOf(geometry.Vec3{}) {
			break
		}
		m := &yaml.Node{Kind: yaml.MappingNode}
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			name, opts, _ := strings.Cut(f.Tag.Get("yaml"), ",")
			if name == "" || name == "-" {
				continue
			}
			fv := v.Field(i)
			if strings.Contains(opts, "omitempty") && fv.IsZero() {
				continue
			}
			val, err := encodeNode(fv)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			m.Content = append(m.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: name}, val)
		}
		return m, nil
	case reflect.Slice:
		s := &yaml.Node{Kind: yaml.SequenceNode}
		for i := 0; i < v.Len(); i++ {
			item, err := encodeNode(v.Index(i))
			if err != nil {
				return nil, err
			}
			s.Content = append(s.Content, item)
		}
		return s, nil
	}
	n := &yaml.Node{}
	if err := n.Encode(v.Interface()); err != nil {
		return nil, err
	}
	return n, nil
}

func scalar(s string) (*yaml.Node, error) {
	n := &yaml.Node{}
	return n, n.Encode(s)
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	out := *c
	out.Guests.Spots = Spots{
		Spawn:        clonePtr(c.Guests.Spots.Spawn),
		Ordering:     clonePtr(c.Guests.Spots.Ordering),
		WaitingServe: clonePtr(c.Guests.Spots.WaitingServe),
		Exit:         clonePtr(c.Guests.Spots.Exit),
	}
	out.Guests.OrderTexts = slices.Clone(c.Guests.OrderTexts)
	out.Guests.Variants = nil
	for _, v := range c.Guests.Variants {
		out.Guests.Variants = append(out.Guests.Variants, VariantConfig{
			Name:    v.Name,
			Liked:   slices.Clone(v.Liked),
			Hated:   slices.Clone(v.Hated),
			Emotion: slices.Clone(v.Emotion),
		})
	}
	out.Chobins.WaitingSpots = slices.Clone(c.Chobins.WaitingSpots)
	out.Chobins.ServingSpot = clonePtr(c.Chobins.ServingSpot)
	out.Materials = slices.Clone(c.Materials)
	out.Actions = nil
	for _, a := range c.Actions {
		a.Station = clonePtr(a.Station)
		out.Actions = append(out.Actions, a)
	}
	return &out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
