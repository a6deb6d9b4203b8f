package main

import (
	"fmt"
	"io"
	"runtime"
	"slices"
	"text/template"
	"time"

	"github.com/plus3/cobweb/ecs"
	"github.com/plus3/cobweb/react"
)

type Report struct {
	// Configuration
	Duration time.Duration
	Entities int
	Reactors int
	Depth    int
	Batch    int
	Churn    bool

	// Results
	TotalUpdates  int64
	TotalTime     time.Duration
	UpdateTime    Stats
	Scheduler     *ecs.SchedulerStats
	Kernel        react.Stats
	Counters      Counters
	Peak          Peak
	MemStatsStart runtime.MemStats
	MemStatsEnd   runtime.MemStats
}

type Stats struct {
	Min     time.Duration
	Max     time.Duration
	Avg     time.Duration
	P99     time.Duration
	Samples []time.Duration
}

func (s *Stats) Finalize() {
	if len(s.Samples) == 0 {
		return
	}

	var total time.Duration
	s.Min = s.Samples[0]
	s.Max = s.Samples[0]

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
	s.P99 = percentile(s.Samples, 0.99)
}

func percentile(samples []time.Duration, p float64) time.Duration {
	sorted := make([]time.Duration, len(samples))
	copy(sorted, samples)
	slices.Sort(sorted)
	return sorted[int(float64(len(sorted)-1)*p)]
}

func (r *Report) Generate(w io.Writer) error {
	const reportTemplate = `
# Reaction Kernel Stress Report

## Test Configuration
- **Run Duration:** {{.Duration}}
- **Entities:** {{.Entities}}
- **Reactors:** {{.Reactors}}
- **Cascade Depth:** {{.Depth}}
- **Resets Per Frame:** {{.Batch}}
- **Despawn Churn:** {{.Churn}}

## Performance Results
- **Total Updates:** {{.TotalUpdates}}
- **Total Test Time:** {{.TotalTime}}
- **Update Time (Frame):**
  - **Avg:** {{.UpdateTime.Avg}}
  - **Min:** {{.UpdateTime.Min}}
  - **Max:** {{.UpdateTime.Max}}
  - **P99:** {{.UpdateTime.P99}}
{{with .Scheduler}}
## Scheduler
{{range .Systems}}- {{.Name}}: {{.ExecutionCount}} runs, avg {{.AvgDuration}}, max {{.MaxDuration}}
{{end}}{{end}}
## Kernel
- System Commands: {{.Kernel.SystemCommands}}
- System Events:   {{.Kernel.Events}}
- Reactions:       {{.Kernel.Reactions}} ({{perframe .Kernel.Reactions .TotalUpdates}} per frame)
- Deferred:        {{.Kernel.Deferred}}
- Aborted:         {{.Kernel.Aborted}}

## Workload
- Resets:          {{.Counters.Resets}}
- Cascade Steps:   {{.Counters.Cascades}}
- Pulses Relayed:  {{.Counters.Pulses}}
- Listener Runs:   {{.Counters.Listeners}}
- Entity Hooks:    {{.Counters.EntityHooks}}
- Despawn Hooks:   {{.Counters.Despawns}}
- Peak Heat:       {{.Peak.Level}} (frame {{.Peak.Frame}})

## Memory Usage (MiB)
- Heap Alloc:     {{mb .MemStatsStart.HeapAlloc}} (start) -> {{mb .MemStatsEnd.HeapAlloc}} (end)
- Total Alloc:    {{mb .MemStatsStart.TotalAlloc}} (start) -> {{mb .MemStatsEnd.TotalAlloc}} (end) -> delta: {{bsub .MemStatsEnd.TotalAlloc .MemStatsStart.TotalAlloc | mb}}
- Num GC:         {{usub .MemStatsEnd.NumGC .MemStatsStart.NumGC}}
- Total GC Pause: {{.MemStatsEnd.PauseTotalNs | ns}}
`

	fm := template.FuncMap{
		"mb": func(v any) string {
			switch val := v.(type) {
			case uint64:
				return fmt.Sprintf("%.2f", float64(val)/1024/1024)
			case int64:
				return fmt.Sprintf("%.2f", float64(val)/1024/1024)
			default:
				return "N/A"
			}
		},
		"bsub": func(a, b uint64) int64 {
			return int64(a) - int64(b)
		},
		"usub": func(a, b uint32) uint32 {
			return a - b
		},
		"ns": func(ns uint64) string {
			return time.Duration(ns).String()
		},
		"perframe": func(total uint64, frames int64) string {
			if frames == 0 {
				return "0"
			}
			return fmt.Sprintf("%.1f", float64(total)/float64(frames))
		},
	}

	tmpl, err := template.New("report").Funcs(fm).Parse(reportTemplate)
	if err != nil {
		return err
	}

	return tmpl.Execute(w, r)
}
