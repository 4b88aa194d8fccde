package simulation

import (
	"math"

	"github.com/samber/lo"

	"github.com/LumineonRL/LLSIFTeamBuilder/pkg/logger"
)

// Summary aggregates a batch of trials.
type Summary struct {
	Trials           int
	Mean             float64
	Min              int
	Max              int
	StdDev           float64
	AvgLockUptime    float64
	AvgUptimePercent float64
	AvgPerfectRatio  float64
}

// Summarize computes population statistics over results. songLength scales
// the uptime percentage; zero leaves it at 0.
func Summarize(results []TrialResult, songLength float64) Summary {
	if len(results) == 0 {
		return Summary{}
	}
	n := float64(len(results))
	scores := lo.Map(results, func(r TrialResult, _ int) int { return r.Score })

	mean := float64(lo.Sum(scores)) / n
	variance := lo.SumBy(scores, func(v int) float64 {
		d := float64(v) - mean
		return d * d
	}) / n

	uptime := lo.SumBy(results, func(r TrialResult) float64 { return r.LockUptime }) / n
	sum := Summary{
		Trials:          len(results),
		Mean:            mean,
		Min:             lo.Min(scores),
		Max:             lo.Max(scores),
		StdDev:          math.Sqrt(variance),
		AvgLockUptime:   uptime,
		AvgPerfectRatio: lo.SumBy(results, func(r TrialResult) float64 { return r.PerfectRatio() }) / n,
	}
	if songLength > 0 {
		sum.AvgUptimePercent = uptime / songLength * 100
	}
	return sum
}

// Fields renders the summary for structured logs.
func (s Summary) Fields() []logger.Field {
	return []logger.Field{
		logger.Int("trials", s.Trials),
		logger.String("mean", formatScore(int(math.Round(s.Mean)))),
		logger.String("max", formatScore(s.Max)),
		logger.String("min", formatScore(s.Min)),
		logger.Float64("std_dev", math.Round(s.StdDev*100)/100),
		logger.Float64("avg_lock_uptime", s.AvgLockUptime),
		logger.Float64("avg_uptime_percent", s.AvgUptimePercent),
		logger.Float64("avg_perfect_ratio", s.AvgPerfectRatio),
	}
}
