package vector

import (
	"fmt"
	"math"
	"strings"
)

type Metric int

const (
	// MetricL2 is squared euclidean distance.
	MetricL2 Metric = iota
	// MetricCosine is 1 - cosine similarity.
	MetricCosine
)

func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "l2", "euclidean":
		return MetricL2, nil
	case "cosine", "cos":
		return MetricCosine, nil
	default:
		return 0, fmt.Errorf("unknown vector metric: %q", s)
	}
}

func (m Metric) String() string {
	if m == MetricCosine {
		return "cosine"
	}
	return "l2"
}

// Distance assumes len(a) == len(b). Lower is closer for both metrics.
func (m Metric) Distance(a, b []float32) float32 {
	if m == MetricCosine {
		return 1 - CosineSimilarity(a, b)
	}
	return SquaredL2(a, b)
}

func SquaredL2(a, b []float32) float32 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return float32(sum)
}

// CosineSimilarity returns 0 when either vector has zero norm.
func CosineSimilarity(a, b []float32) float32 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
