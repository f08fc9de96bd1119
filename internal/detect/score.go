package detect

import (
	"math"
	"sort"
)

// Detection is the scored outcome for one technology.
type Detection struct {
	Name       string   `json:"name"`
	Category   string   `json:"category"`
	Confidence float64  `json:"confidence"`
	Files      []string `json:"files"`
}

// Level is a qualitative confidence bucket.
type Level string

const (
	High   Level = "high"
	Medium Level = "medium"
	Low    Level = "low"
)

// Bucket thresholds.
const (
	HighThreshold   = 0.8
	MediumThreshold = 0.5
)

// Bucket returns the qualitative level for a confidence value. The value is
// rounded to two decimals first, the precision reports display it with.
func Bucket(confidence float64) Level {
	c := math.Round(confidence*100) / 100
	switch {
	case c >= HighThreshold:
		return High
	case c >= MediumThreshold:
		return Medium
	default:
		return Low
	}
}

// Indicator returns the emoji shown next to a confidence level.
func (l Level) Indicator() string {
	switch l {
	case High:
		return "🟢"
	case Medium:
		return "🟡"
	default:
		return "🔴"
	}
}

type evidenceKey struct {
	technology string
	pattern    int
	path       string
}

// Score reduces raw matches to detections. Each distinct (technology,
// pattern, file) contributes its weight once; contributions are summed and
// clamped to [0, 1]. Detections are returned in first-match order and list
// their files in first-match order without repeats.
func Score(matches []Match) []Detection {
	seen := make(map[evidenceKey]bool, len(matches))
	index := make(map[string]int)
	var out []Detection
	fileSeen := make(map[string]map[string]bool)

	for _, m := range matches {
		i, ok := index[m.Technology]
		if !ok {
			i = len(out)
			index[m.Technology] = i
			out = append(out, Detection{Name: m.Technology, Category: m.Category})
			fileSeen[m.Technology] = make(map[string]bool)
		}

		if !fileSeen[m.Technology][m.Path] {
			fileSeen[m.Technology][m.Path] = true
			out[i].Files = append(out[i].Files, m.Path)
		}

		k := evidenceKey{m.Technology, m.Pattern, m.Path}
		if seen[k] {
			continue
		}
		seen[k] = true
		out[i].Confidence += m.Weight
	}

	for i := range out {
		out[i].Confidence = clamp(out[i].Confidence)
	}
	return out
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ByCategory groups detections by category. Within a category detections are
// ordered by confidence descending; ties keep their first-match order.
func ByCategory(detections []Detection) map[string][]Detection {
	groups := make(map[string][]Detection)
	for _, d := range detections {
		groups[d.Category] = append(groups[d.Category], d)
	}
	for _, g := range groups {
		sort.SliceStable(g, func(a, b int) bool {
			return g[a].Confidence > g[b].Confidence
		})
	}
	return groups
}

// Top returns up to n detections ordered by confidence descending, ties in
// first-match order.
func Top(detections []Detection, n int) []Detection {
	sorted := make([]Detection, len(detections))
	copy(sorted, detections)
	sort.SliceStable(sorted, func(a, b int) bool {
		return sorted[a].Confidence > sorted[b].Confidence
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
