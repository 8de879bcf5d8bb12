package ecs

import (
	"io"

	"gopkg.in/yaml.v3"
)

// Mode selects the scheduling/locking discipline described in spec.md §5.
type Mode int

const (
	// Sequential mode assumes single-threaded access; no locks are taken.
	Sequential Mode = iota
	// Parallel mode guards every archetype and the slot map with
	// per-archetype and per-partition read/write locks.
	Parallel
)

func (m Mode) String() string {
	if m == Parallel {
		return "parallel"
	}
	return "sequential"
}

// Config is the configuration surface enumerated in spec.md §6.
type Config struct {
	Mode                     Mode `yaml:"-"`
	ModeName                 string `yaml:"registry_mode"`
	InitialArchetypeCapacity int    `yaml:"initial_archetype_capacity"`
	SegmentSizeLog2          uint   `yaml:"segment_size_log2"`
	SlotMapPartitions        int    `yaml:"slot_map_partitions"`
}

// DefaultConfig returns spec.md §6's documented defaults.
func DefaultConfig() Config {
	return Config{
		Mode:                     Sequential,
		ModeName:                 "sequential",
		InitialArchetypeCapacity: 1024,
		SegmentSizeLog2:          defaultSegmentSizeLog2,
		SlotMapPartitions:        1,
	}
}

func (c *Config) normalize() {
	if c.InitialArchetypeCapacity <= 0 {
		c.InitialArchetypeCapacity = 1024
	}
	if c.SegmentSizeLog2 == 0 {
		c.SegmentSizeLog2 = defaultSegmentSizeLog2
	}
	if c.SlotMapPartitions <= 0 {
		c.SlotMapPartitions = 1
	}
	if c.ModeName == "parallel" {
		c.Mode = Parallel
	}
}

// LoadConfig reads a YAML configuration document (registry_mode,
// initial_archetype_capacity, segment_size_log2, slot_map_partitions) and
// merges it over DefaultConfig. Config loading is the one place this
// module touches YAML; the engine itself has no persistence (spec.md
// §1's non-goals) — this only configures how storage is laid out at
// construction time.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, err
	}
	cfg.normalize()
	return cfg, nil
}

// Option configures a Registry at construction time. This is the primary
// construction path, matching the functional-options style used by
// DangerosoDavo-ecs/world.go's WorldOption.
type Option func(*Config)

// WithMode selects Sequential or Parallel scheduling.
func WithMode(m Mode) Option {
	return func(c *Config) { c.Mode = m }
}

// WithInitialArchetypeCapacity sets the initial capacity of the registry's
// archetype table (a number of archetypes, not rows). Column allocation
// does not use it.
func WithInitialArchetypeCapacity(n int) Option {
	return func(c *Config) { c.InitialArchetypeCapacity = n }
}

// WithSegmentSizeLog2 sets the power-of-two column segment size.
func WithSegmentSizeLog2(log2 uint) Option {
	return func(c *Config) { c.SegmentSizeLog2 = log2 }
}

// WithSlotMapPartitions sets the number of independently locked slot map
// shards used in Parallel mode.
func WithSlotMapPartitions(n int) Option {
	return func(c *Config) { c.SlotMapPartitions = n }
}
