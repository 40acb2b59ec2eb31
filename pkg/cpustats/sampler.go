// Package cpustats samples host CPU utilization into the cpu-usage CSV that
// the deploy step stages as cpu-<job>.csv. It runs as a background step for
// the whole build and stops on context cancellation.
package cpustats

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/sirupsen/logrus"
)

// DefaultInterval is the default sampling interval.
const DefaultInterval = 10 * time.Second

// timesFunc matches cpu.Times, swapped out in tests.
type timesFunc func(percpu bool) ([]cpu.TimesStat, error)

// Sampler periodically appends CPU utilization rows to a CSV file.
type Sampler struct {
	log      logrus.FieldLogger
	path     string
	interval time.Duration
	times    timesFunc
}

// NewSampler creates a Sampler writing to path every interval.
func NewSampler(log logrus.FieldLogger, path string, interval time.Duration) *Sampler {
	if interval <= 0 {
		interval = DefaultInterval
	}

	return &Sampler{
		log:      log.WithField("component", "cpu-sampler"),
		path:     path,
		interval: interval,
		times:    cpu.Times,
	}
}

// Run samples until ctx is cancelled. Each row is
// timestamp,user,system,idle with percentages computed from the delta
// between consecutive aggregate samples. Cancellation is a normal stop.
func (s *Sampler) Run(ctx context.Context) error {
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", s.path, err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)

	prev, err := s.sample()
	if err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"path":     s.path,
		"interval": s.interval.String(),
	}).Info("CPU sampling started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.Flush()

			if err := w.Error(); err != nil {
				return fmt.Errorf("flushing %s: %w", s.path, err)
			}

			s.log.Info("CPU sampling stopped")

			return nil
		case now := <-ticker.C:
			cur, err := s.sample()
			if err != nil {
				return err
			}

			if row := buildRow(now, prev, cur); row != nil {
				if err := w.Write(row); err != nil {
					return fmt.Errorf("writing row: %w", err)
				}

				w.Flush()

				if err := w.Error(); err != nil {
					return fmt.Errorf("flushing %s: %w", s.path, err)
				}
			}

			prev = cur
		}
	}
}

// sample reads the aggregate CPU times.
func (s *Sampler) sample() (cpu.TimesStat, error) {
	stats, err := s.times(false)
	if err != nil {
		return cpu.TimesStat{}, fmt.Errorf("reading cpu times: %w", err)
	}

	if len(stats) == 0 {
		return cpu.TimesStat{}, fmt.Errorf("no cpu times reported")
	}

	return stats[0], nil
}

// buildRow computes utilization percentages for the interval between prev
// and cur. Returns nil when no time elapsed between the samples.
func buildRow(now time.Time, prev, cur cpu.TimesStat) []string {
	total := totalTime(cur) - totalTime(prev)
	if total <= 0 {
		return nil
	}

	pct := func(delta float64) string {
		if delta < 0 {
			delta = 0
		}

		return strconv.FormatFloat(delta/total*100, 'f', 2, 64)
	}

	return []string{
		now.UTC().Format(time.RFC3339),
		pct(cur.User - prev.User),
		pct(cur.System - prev.System),
		pct(cur.Idle - prev.Idle),
	}
}

// totalTime sums all accounted CPU time buckets.
func totalTime(t cpu.TimesStat) float64 {
	return t.User + t.System + t.Idle + t.Nice + t.Iowait +
		t.Irq + t.Softirq + t.Steal
}
