package main

import (
	"io"
	"runtime"
	"text/template"
	"time"
)

type Report struct {
	Duration time.Duration
	Entities int
	Mode     string

	TotalTicks    int64
	FinalEntities int
	TotalTime     time.Duration
	UpdateTime    Stats
	MemStatsStart runtime.MemStats
	MemStatsEnd   runtime.MemStats
}

type Stats struct {
	Min     time.Duration
	Max     time.Duration
	Avg     time.Duration
	Samples []time.Duration
}

func (s *Stats) Finalize() {
	if len(s.Samples) == 0 {
		return
	}
	var total time.Duration
	s.Min, s.Max = s.Samples[0], s.Samples[0]
	for _, sample := range s.Samples {
		if sample < s.Min {
			s.Min = sample
		}
		if sample > s.Max {
			s.Max = sample
		}
		total += sample
	}
	s.Avg = total / time.Duration(len(s.Samples))
}

func (r *Report) Generate(w io.Writer) error {
	const reportTemplate = `
# ecs-bench Report

## Configuration
- **Mode:** {{.Mode}}
- **Run Duration:** {{.Duration}}
- **Initial Entities:** {{.Entities}}

## Performance
- **Total Ticks:** {{.TotalTicks}}
- **Total Test Time:** {{.TotalTime}}
- **Final Entity Count:** {{.FinalEntities}}
- **Tick Time:**
  - **Avg:** {{.UpdateTime.Avg}}
  - **Min:** {{.UpdateTime.Min}}
  - **Max:** {{.UpdateTime.Max}}

## Memory (bytes)
- Heap Alloc:  {{.MemStatsStart.HeapAlloc}} -> {{.MemStatsEnd.HeapAlloc}} (delta {{bsub .MemStatsEnd.HeapAlloc .MemStatsStart.HeapAlloc}})
- Total Alloc: {{.MemStatsStart.TotalAlloc}} -> {{.MemStatsEnd.TotalAlloc}} (delta {{bsub .MemStatsEnd.TotalAlloc .MemStatsStart.TotalAlloc}})
- Sys:         {{.MemStatsStart.Sys}} -> {{.MemStatsEnd.Sys}} (delta {{bsub .MemStatsEnd.Sys .MemStatsStart.Sys}})
- Num GC:      {{.MemStatsStart.NumGC}} -> {{.MemStatsEnd.NumGC}} (delta {{usub .MemStatsEnd.NumGC .MemStatsStart.NumGC}})
`

	fm := template.FuncMap{
		"bsub": func(a, b uint64) int64 { return int64(a) - int64(b) },
		"usub": func(a, b uint32) uint32 { return a - b },
	}

	tmpl, err := template.New("report").Funcs(fm).Parse(reportTemplate)
	if err != nil {
		return err
	}
	return tmpl.Execute(w, r)
}
