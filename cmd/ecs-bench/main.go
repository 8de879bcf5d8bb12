// Command ecs-bench drives a synthetic entity churn workload against the
// registry and reports throughput and memory growth. Grounded on the
// teacher's cmd/ecs-stress (simulation loop, MemStats before/after,
// text/template report) and edwinsyarief-lazyecs/profile/entities/main.go
// for the profile.Start/Stop wiring around the hot loop.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"runtime"
	"time"

	"github.com/pkg/profile"

	"github.com/silverware-games/ecs/ecs"
)

// Fixed component set. Unlike the teacher's code-generated component and
// system counts, this benchmark exercises a small hand-written set large
// enough to visit several archetypes under churn.
type Position struct{ X, Y float32 }
type Velocity struct{ DX, DY float32 }
type Health struct{ Current, Max int32 }
type Tag struct{ Name string }

func main() {
	duration := flag.Duration("duration", 10*time.Second, "total duration the benchmark should run for")
	entityCount := flag.Int("entities", 10000, "initial number of entities to create")
	mode := flag.String("mode", "sequential", "registry mode: sequential or parallel")
	partitions := flag.Int("slot-map-partitions", 1, "slot map partition count (parallel mode)")
	profileMode := flag.String("profile", "", "enable profiling: cpu, mem, or empty to disable")
	flag.Parse()

	log.Println("starting ecs-bench")

	regMode := ecs.Sequential
	if *mode == "parallel" {
		regMode = ecs.Parallel
	}
	registry := ecs.NewRegistry(
		ecs.WithMode(regMode),
		ecs.WithSlotMapPartitions(*partitions),
		ecs.WithInitialArchetypeCapacity(16),
	)
	ecs.RegisterComponent[Position](registry)
	ecs.RegisterComponent[Velocity](registry)
	ecs.RegisterComponent[Health](registry)
	ecs.RegisterComponent[Tag](registry)

	var stopProfile func() error
	switch *profileMode {
	case "cpu":
		p := profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook)
		stopProfile = func() error { p.Stop(); return nil }
	case "mem":
		p := profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook)
		stopProfile = func() error { p.Stop(); return nil }
	}

	log.Printf("populating registry with %d entities...\n", *entityCount)
	handles := make([]ecs.Handle, 0, *entityCount)
	for i := 0; i < *entityCount; i++ {
		handles = append(handles, spawnRandom(registry, i))
	}

	report := &Report{
		Duration:   *duration,
		Entities:   *entityCount,
		Mode:       regMode.String(),
		UpdateTime: Stats{Samples: make([]time.Duration, 0, 1024)},
	}
	runtime.ReadMemStats(&report.MemStatsStart)

	log.Printf("running churn workload for %s...\n", *duration)
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	rng := rand.New(rand.NewSource(1))
	startTime := time.Now()
	var totalTicks int64

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		default:
			tickStart := time.Now()
			churnOnce(registry, handles, rng)
			report.UpdateTime.Samples = append(report.UpdateTime.Samples, time.Since(tickStart))
			totalTicks++
		}
	}

	report.TotalTime = time.Since(startTime)
	report.TotalTicks = totalTicks
	report.FinalEntities = registry.Size()
	report.UpdateTime.Finalize()
	runtime.ReadMemStats(&report.MemStatsEnd)

	if stopProfile != nil {
		if err := stopProfile(); err != nil {
			log.Printf("failed to stop profiler: %v", err)
		}
	}

	fmt.Println("\n--- ecs-bench Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		log.Fatalf("failed to generate report: %v", err)
	}
	fmt.Println("--- end of report ---")
}

// spawnRandom creates one entity from a random 1-4 component combination
// drawn from the fixed component set, so the population spans several
// archetypes.
func spawnRandom(r *ecs.Registry, seed int) ecs.Handle {
	components := []any{&Position{X: float32(seed), Y: float32(seed)}}
	if seed%2 == 0 {
		components = append(components, &Velocity{DX: 1, DY: 1})
	}
	if seed%3 == 0 {
		components = append(components, &Health{Current: 100, Max: 100})
	}
	if seed%5 == 0 {
		components = append(components, &Tag{Name: "npc"})
	}
	return r.Create(components...)
}

// churnOnce performs one tick of mixed Create/Put/Erase/Destroy traffic
// against a random sample of handles, mutating the slice in place when a
// handle is destroyed and replaced.
func churnOnce(r *ecs.Registry, handles []ecs.Handle, rng *rand.Rand) {
	const sample = 64
	for i := 0; i < sample; i++ {
		idx := rng.Intn(len(handles))
		h := handles[idx]
		if !r.Exists(h) {
			continue
		}
		switch rng.Intn(4) {
		case 0:
			_ = r.Put(h, &Velocity{DX: rng.Float32(), DY: rng.Float32()})
		case 1:
			_ = ecs.Erase[Velocity](r, h)
		case 2:
			if pos, err := ecs.Get[Position](r, h); err == nil {
				pos.X += 1
			}
		case 3:
			_ = r.Destroy(h)
			handles[idx] = spawnRandom(r, rng.Int())
		}
	}
}
