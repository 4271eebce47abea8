// Package kpi holds the pure derived-metric functions. Every dimension
// of the aggregate re-derives its metrics from its own slice of rows
// with these functions; ratios are never carried across dimensions.
package kpi

import (
	"math"
	"sort"

	"github.com/carlosribasgomez/chatters-dashboard/pkg/parse"
	"github.com/shopspring/decimal"
)

// GoldenRatio is the percentage of sent messages that were PPV offers.
// Zero messages means zero ratio, never a division error.
func GoldenRatio(ppvSent, messagesSent int) float64 {
	return ratio(ppvSent, messagesSent)
}

// UnlockRatio is the percentage of sent PPVs the fan paid to view.
func UnlockRatio(ppvUnlocked, ppvSent int) float64 {
	return ratio(ppvUnlocked, ppvSent)
}

// FanConversion is the percentage of engaged fans who spent any money.
func FanConversion(fansSpent, fansChatted int) float64 {
	return ratio(fansSpent, fansChatted)
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return round2(float64(num) / float64(den) * 100)
}

// LifetimeValue is total earnings divided by active fans, 0 when the
// creator has no active fans.
func LifetimeValue(totalEarnings decimal.Decimal, activeFans int) float64 {
	if activeFans == 0 {
		return 0
	}
	v, _ := totalEarnings.Div(decimal.NewFromInt(int64(activeFans))).Round(2).Float64()
	return v
}

// SalesPerHour is sales divided by clocked hours, 0 with no clocked time.
func SalesPerHour(sales decimal.Decimal, clockedMinutes int) float64 {
	if clockedMinutes == 0 {
		return 0
	}
	hours := decimal.NewFromInt(int64(clockedMinutes)).Div(decimal.NewFromInt(60))
	v, _ := sales.Div(hours).Round(2).Float64()
	return v
}

// Money rounds a currency sum to 2 decimal places at the point of
// aggregation. Downstream consumers must not re-round.
func Money(d decimal.Decimal) float64 {
	v, _ := d.Round(2).Float64()
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// LatencyStats summarises reply-latency observations. An entity with no
// observations reports nil seconds and "N/A", never zero.
type LatencyStats struct {
	Count           int      `json:"count"`
	AvgSeconds      *float64 `json:"avg_seconds"`
	MedianSeconds   *float64 `json:"median_seconds"`
	AvgFormatted    string   `json:"avg_formatted"`
	MedianFormatted string   `json:"median_formatted"`
}

// Latency computes mean and median over the non-null observations.
func Latency(observations []float64) LatencyStats {
	stats := LatencyStats{
		Count:           len(observations),
		AvgFormatted:    "N/A",
		MedianFormatted: "N/A",
	}
	if len(observations) == 0 {
		return stats
	}

	sum := 0.0
	for _, v := range observations {
		sum += v
	}
	avg := round1(sum / float64(len(observations)))

	sorted := append([]float64(nil), observations...)
	sort.Float64s(sorted)
	var median float64
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		median = round1((sorted[mid-1] + sorted[mid]) / 2)
	} else {
		median = round1(sorted[mid])
	}

	stats.AvgSeconds = &avg
	stats.MedianSeconds = &median
	stats.AvgFormatted = parse.FormatSeconds(&avg)
	stats.MedianFormatted = parse.FormatSeconds(&median)
	return stats
}

// LatencyBuckets counts observations per staffing-report bucket.
type LatencyBuckets struct {
	Under2M   int `json:"under_2m"`
	From2To5  int `json:"btwn_2_5m"`
	From5To10 int `json:"btwn_5_10m"`
	Over10M   int `json:"over_10m"`
}

// BucketLatencies buckets observations at the 2, 5 and 10 minute marks.
func BucketLatencies(observations []float64) LatencyBuckets {
	var b LatencyBuckets
	for _, v := range observations {
		switch {
		case v <= 120:
			b.Under2M++
		case v <= 300:
			b.From2To5++
		case v <= 600:
			b.From5To10++
		default:
			b.Over10M++
		}
	}
	return b
}
