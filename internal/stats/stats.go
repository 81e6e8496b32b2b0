// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/verte-zerg/morsedrill/internal/model"
)

const sparkChars = " .:-=+*#%@"

// SessionMetrics computes symbols per minute and accuracy for a session.
func SessionMetrics(correct, incorrect int, durationMs int64) (spm, accuracy float64) {
	den := float64(correct + incorrect)
	if den > 0 {
		accuracy = float64(correct) / den
	}
	if durationMs <= 0 {
		return 0, accuracy
	}
	minutes := float64(durationMs) / 60000.0
	spm = den / minutes
	return spm, accuracy
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		out[i] = sum / float64(min(i+1, window))
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if math.Abs(hi-lo) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		idx := int(math.Round((v - lo) / (hi - lo) * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints a summary of drill sessions.
func RenderSummary(w io.Writer, sessions []model.SessionAggregate) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	var totalSPM, totalAcc float64
	responses := 0
	unlocked := 0
	for _, s := range sessions {
		spm, acc := SessionMetrics(s.Correct, s.Incorrect, s.DurationMs)
		totalSPM += spm
		totalAcc += acc
		responses += s.Correct + s.Incorrect
		unlocked = max(unlocked, s.Unlocked)
	}
	count := float64(len(sessions))
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d", len(sessions)),
		fmt.Sprintf("Responses: %d", responses),
		fmt.Sprintf("Avg symbols/min: %.1f", totalSPM/count),
		fmt.Sprintf("Avg Accuracy: %.2f%%", totalAcc/count*100),
		fmt.Sprintf("Unlocked: %d", unlocked),
		"",
	}
	return writeLines(w, lines)
}

// RenderCurves prints the accuracy learning curve as a sparkline of at most width points.
func RenderCurves(w io.Writer, sessions []model.SessionAggregate, window, width int) error {
	if len(sessions) == 0 {
		return nil
	}
	accs := make([]float64, len(sessions))
	for i, s := range sessions {
		_, acc := SessionMetrics(s.Correct, s.Incorrect, s.DurationMs)
		accs[i] = acc * 100
	}
	accs = MovingAverage(accs, window)
	if width > 0 && len(accs) > width {
		accs = accs[len(accs)-width:]
	}
	return writeLines(w, []string{
		"Accuracy Curve",
		Sparkline(accs),
		fmt.Sprintf("latest %.1f%% (window %d)", accs[len(accs)-1], window),
		"",
	})
}

// RenderSymbolTable prints per-symbol aggregates, weakest first.
func RenderSymbolTable(w io.Writer, aggs []model.SymbolAggregate) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No symbol stats found.")
		return err
	}
	rows := make([]model.SymbolAggregate, len(aggs))
	copy(rows, aggs)
	sort.Slice(rows, func(i, j int) bool {
		ai, aj := accuracy(rows[i]), accuracy(rows[j])
		if ai == aj {
			return rows[i].Symbol < rows[j].Symbol
		}
		return ai < aj
	})

	headers := []string{"Symbol", "Accuracy", "Avg Latency (ms)", "Correct", "Incorrect"}
	tableRows := make([][]string, 0, len(rows))
	for _, r := range rows {
		lat := 0.0
		if r.LatencyCount > 0 {
			lat = float64(r.LatencySumMs) / float64(r.LatencyCount)
		}
		tableRows = append(tableRows, []string{
			r.Symbol,
			fmt.Sprintf("%.2f%%", accuracy(r)*100),
			fmt.Sprintf("%.1f", lat),
			fmt.Sprintf("%d", r.Correct),
			fmt.Sprintf("%d", r.Incorrect),
		})
	}
	lines := append([]string{"Per-Symbol (Windowed)"}, formatTable(headers, tableRows, map[int]bool{1: true, 2: true, 3: true, 4: true})...)
	return writeLines(w, append(lines, ""))
}

// RenderTotals prints the long-running records in curriculum order and marks
// symbols that meet the mastery rule.
func RenderTotals(w io.Writer, order string, totals []model.SymbolTotals, mastery, minTries int) error {
	bySymbol := make(map[string]model.SymbolTotals, len(totals))
	for _, t := range totals {
		bySymbol[t.Symbol] = t
	}
	headers := []string{"Symbol", "Attempts", "Accuracy", "Status"}
	rows := make([][]string, 0, len(order))
	for _, r := range order {
		t, ok := bySymbol[string(r)]
		if !ok || t.Attempts == 0 {
			rows = append(rows, []string{string(r), "0", "-", "new"})
			continue
		}
		acc := int(math.Round(100 * float64(t.Successes) / float64(t.Attempts)))
		status := "learning"
		if acc > mastery && t.Attempts > minTries {
			status = "mastered"
		}
		rows = append(rows, []string{string(r), fmt.Sprintf("%d", t.Attempts), fmt.Sprintf("%d%%", acc), status})
	}
	lines := append([]string{"Curriculum"}, formatTable(headers, rows, map[int]bool{1: true, 2: true})...)
	return writeLines(w, append(lines, ""))
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
