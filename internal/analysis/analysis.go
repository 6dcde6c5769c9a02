// Package analysis turns the historical result sequence into descriptive
// statistics and a flat spreadsheet export, mirroring the study's offline
// analysis workflow.
package analysis

import (
	"fmt"
	"io"
	"sort"

	"github.com/montanaflynn/stats"
	"github.com/samber/lo"

	"tablelab/internal/models"
)

// Summary holds descriptive statistics over trial durations, in seconds.
type Summary struct {
	Count  int
	Mean   float64
	Median float64
	StdDev float64 // population standard deviation
	Min    float64
	Max    float64
}

// trial is one flattened observation: a single trial with its order position.
type trial struct {
	system   models.DisplayMode
	position int // 1 = shown first, 2 = shown second
	seconds  float64
}

// Report groups summaries the way the study is analyzed: per system overall,
// and per system split by order position to expose learning effects.
type Report struct {
	Total      int
	BySystem   map[models.DisplayMode]Summary
	ByPosition map[int]map[models.DisplayMode]Summary
}

func flatten(results []models.ExperimentResult) []trial {
	return lo.FlatMap(results, func(r models.ExperimentResult, _ int) []trial {
		return []trial{
			{system: r.Trial1.System, position: 1, seconds: float64(r.Trial1.Duration) / 1000},
			{system: r.Trial2.System, position: 2, seconds: float64(r.Trial2.Duration) / 1000},
		}
	})
}

func summarize(durations []float64) (Summary, error) {
	if len(durations) == 0 {
		return Summary{}, nil
	}

	data := stats.Float64Data(durations)
	mean, err := data.Mean()
	if err != nil {
		return Summary{}, err
	}
	median, err := data.Median()
	if err != nil {
		return Summary{}, err
	}
	stdDev, err := data.StandardDeviationPopulation()
	if err != nil {
		return Summary{}, err
	}
	min, err := data.Min()
	if err != nil {
		return Summary{}, err
	}
	max, err := data.Max()
	if err != nil {
		return Summary{}, err
	}

	return Summary{
		Count:  len(durations),
		Mean:   mean,
		Median: median,
		StdDev: stdDev,
		Min:    min,
		Max:    max,
	}, nil
}

// Analyze computes the full report over the historical sequence.
func Analyze(results []models.ExperimentResult) (*Report, error) {
	trials := flatten(results)

	report := &Report{
		Total:      len(results),
		BySystem:   make(map[models.DisplayMode]Summary),
		ByPosition: map[int]map[models.DisplayMode]Summary{1: {}, 2: {}},
	}

	for _, system := range []models.DisplayMode{models.DisplayColoured, models.DisplayText} {
		all := lo.FilterMap(trials, func(t trial, _ int) (float64, bool) {
			return t.seconds, t.system == system
		})
		summary, err := summarize(all)
		if err != nil {
			return nil, err
		}
		report.BySystem[system] = summary

		for position := 1; position <= 2; position++ {
			subset := lo.FilterMap(trials, func(t trial, _ int) (float64, bool) {
				return t.seconds, t.system == system && t.position == position
			})
			summary, err := summarize(subset)
			if err != nil {
				return nil, err
			}
			report.ByPosition[position][system] = summary
		}
	}

	return report, nil
}

// Print writes the report as a readable console table.
func (r *Report) Print(w io.Writer) {
	fmt.Fprintf(w, "Participants: %d\n\n", r.Total)

	fmt.Fprintln(w, "Completion time by system (seconds):")
	printGroup(w, r.BySystem)

	for position := 1; position <= 2; position++ {
		fmt.Fprintf(w, "\nWhen shown %s:\n", ordinal(position))
		printGroup(w, r.ByPosition[position])
	}
}

func printGroup(w io.Writer, group map[models.DisplayMode]Summary) {
	systems := lo.Keys(group)
	sort.Slice(systems, func(i, j int) bool { return systems[i] < systems[j] })

	fmt.Fprintf(w, "  %-10s %5s %8s %8s %8s %8s %8s\n",
		"system", "n", "mean", "median", "std", "min", "max")
	for _, system := range systems {
		s := group[system]
		fmt.Fprintf(w, "  %-10s %5d %8.2f %8.2f %8.2f %8.2f %8.2f\n",
			system, s.Count, s.Mean, s.Median, s.StdDev, s.Min, s.Max)
	}
}

func ordinal(position int) string {
	if position == 1 {
		return "first"
	}
	return "second"
}
