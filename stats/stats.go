package stats

import (
	"math"
	"time"
)

// TagStats holds the six derived statistic values for a single tag over one
// time slice: mean, standard deviation, minimum, maximum, count and
// transactions per second.
type TagStats struct {
	Tag    string  `json:"tag"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stdDev"`
	Min    int64   `json:"min"`
	Max    int64   `json:"max"`
	Count  int64   `json:"count"`
	TPS    float64 `json:"tps"`
}

// Snapshot is the serializable form of a grouped slice, consumed by the
// appenders and the management HTTP surface.
type Snapshot struct {
	Start time.Time           `json:"start"`
	Stop  time.Time           `json:"stop"`
	Tags  map[string]TagStats `json:"tags"`
}

// tagAccumulator carries the running sums for one tag. All mutation happens
// under the owning shard lock of the tag map.
type tagAccumulator struct {
	count int64
	sum   float64
	sumSq float64
	min   int64
	max   int64
}

func (acc *tagAccumulator) add(elapsedMS int64) {
	if acc.count == 0 || elapsedMS < acc.min {
		acc.min = elapsedMS
	}

	if acc.count == 0 || elapsedMS > acc.max {
		acc.max = elapsedMS
	}

	acc.count++
	acc.sum += float64(elapsedMS)
	acc.sumSq += float64(elapsedMS) * float64(elapsedMS)
}

// mean returns the arithmetic mean of the accumulated samples.
func (acc *tagAccumulator) mean() float64 {
	if acc.count == 0 {
		return 0
	}

	return acc.sum / float64(acc.count)
}

// stdDev returns the sample standard deviation of the accumulated samples.
func (acc *tagAccumulator) stdDev() float64 {
	if acc.count <= 1 {
		return 0
	}

	numerator := acc.sumSq - acc.sum*acc.mean()

	return math.Sqrt(numerator / float64(acc.count-1))
}

// Grouped aggregates completed stop watch measurements by tag over a bounded
// window. It is safe for concurrent use: samples can be added while another
// goroutine reads the derived statistics.
type Grouped struct {
	start time.Time
	stop  time.Time
	tags  ConcurrentMap[*tagAccumulator]
}

// NewGrouped creates an empty grouped slice opening at the given instant.
func NewGrouped(start time.Time) *Grouped {
	return &Grouped{
		start: start,
		tags:  NewConcurrentMap[*tagAccumulator](),
	}
}

// AddSample records a completed measurement for the given tag.
func (g *Grouped) AddSample(tag string, elapsed time.Duration) {
	g.tags.Upsert(tag, func(exist bool, acc *tagAccumulator) *tagAccumulator {
		if !exist {
			acc = &tagAccumulator{}
		}

		acc.add(elapsed.Milliseconds())

		return acc
	})
}

// Seal closes the window at the given instant. Throughput is derived from the
// sealed window span.
func (g *Grouped) Seal(stop time.Time) {
	g.stop = stop
}

// StartTime returns the instant the window opened.
func (g *Grouped) StartTime() time.Time {
	return g.start
}

// StopTime returns the instant the window sealed, zero while still open.
func (g *Grouped) StopTime() time.Time {
	return g.stop
}

// TagNames returns the tags observed so far.
func (g *Grouped) TagNames() []string {
	names := make([]string, 0, g.tags.Count())

	g.tags.IterCb(func(tag string, _ *tagAccumulator) {
		names = append(names, tag)
	})

	return names
}

// Stats derives the per-tag statistic values for the current window. An open
// window computes throughput against the current instant.
func (g *Grouped) Stats() map[string]TagStats {
	stop := g.stop
	if stop.IsZero() {
		stop = time.Now()
	}

	span := stop.Sub(g.start).Seconds()

	out := make(map[string]TagStats, g.tags.Count())

	g.tags.IterCb(func(tag string, acc *tagAccumulator) {
		tps := 0.0
		if span > 0 {
			tps = float64(acc.count) / span
		}

		out[tag] = TagStats{
			Tag:    tag,
			Mean:   acc.mean(),
			StdDev: acc.stdDev(),
			Min:    acc.min,
			Max:    acc.max,
			Count:  acc.count,
			TPS:    tps,
		}
	})

	return out
}

// Snapshot returns the serializable form of the current window.
func (g *Grouped) Snapshot() Snapshot {
	stop := g.stop
	if stop.IsZero() {
		stop = time.Now()
	}

	return Snapshot{
		Start: g.start,
		Stop:  stop,
		Tags:  g.Stats(),
	}
}
