package ecs

import (
	"os"

	"github.com/rs/zerolog"
)

// NewDevLogger returns a human-readable console logger suitable for local
// development, the same zerolog.ConsoleWriter setup
// Argus-Labs-world-engine/cardinal/engine/options.go wires up for its
// pretty-logging option. Production code should build its own
// zerolog.Logger and pass it to SetLogger instead.
func NewDevLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
}

// logArchetype writes one debug-level line describing an archetype's
// current shape, grounded on Argus-Labs-world-engine/cardinal/log/log.go's
// loadComponentsToEvent/Entity helpers, adapted from that package's
// component-metadata dictionaries to this module's TypeSet.
func logArchetype(logger *zerolog.Logger, a *Archetype) {
	arr := zerolog.Arr()
	for _, id := range a.typeIds {
		arr = arr.Uint64(uint64(id))
	}
	logger.Debug().
		Uint64("archetype", a.ID()).
		Int("rows", a.Size()).
		Uint64("change_counter", a.ChangeCounter()).
		Array("component_types", arr).
		Msg("archetype snapshot")
}

// LogSnapshot writes one debug-level line per live archetype, describing
// its TypeSet, row count, and change counter. Intended for periodic
// diagnostics or the debug inspector, not the hot path.
func (r *Registry) LogSnapshot() {
	r.forEachArchetype(func(a *Archetype) {
		logArchetype(&r.logger, a)
	})
}
