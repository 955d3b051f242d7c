package pipeline

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/oklog/ulid/v2"

	"github.com/ppiankov/wikisift/internal/logging"
	"github.com/ppiankov/wikisift/internal/model"
	"github.com/ppiankov/wikisift/internal/record"
)

const (
	initialLineBuffer = 1 << 20
	maxLineBytes      = 64 << 20
)

// Sink receives accepted items.
type Sink interface {
	Write(ctx context.Context, item *model.Item) error
	Close() error
}

// Stats summarizes a run.
type Stats struct {
	RunID     string
	Seen      int
	Accepted  int
	Malformed int
	Rejected  map[Stage]int
	CacheSize int
	Elapsed   time.Duration
}

// NewRunID returns a sortable identifier for a run.
func NewRunID() string {
	return ulid.Make().String()
}

// Runner streams newline-delimited records through a Pipeline.
type Runner struct {
	pipeline      *Pipeline
	sink          Sink
	logger        *slog.Logger
	runID         string
	progressEvery int
}

// NewRunner creates a runner. progressEvery <= 0 disables progress lines.
func NewRunner(p *Pipeline, sink Sink, runID string, progressEvery int, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	if runID == "" {
		runID = NewRunID()
	}
	return &Runner{
		pipeline:      p,
		sink:          sink,
		logger:        logger.With(slog.String("run_id", runID)),
		runID:         runID,
		progressEvery: progressEvery,
	}
}

// Run evaluates every line of r in order. Malformed lines are counted and
// skipped. A sink write error or a cancelled context ends the run.
func (r *Runner) Run(ctx context.Context, in io.Reader) (Stats, error) {
	start := time.Now()
	stats := Stats{
		RunID:    r.runID,
		Rejected: make(map[Stage]int, len(Stages)),
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, initialLineBuffer), maxLineBytes)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return r.finish(stats, start), err
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		stats.Seen++

		rec, err := record.Parse([]byte(line))
		if err != nil {
			stats.Malformed++
			r.logger.Debug("skipping malformed line",
				slog.Int("line", stats.Seen),
				slog.String("error", err.Error()))
			continue
		}

		verdict := r.pipeline.Evaluate(ctx, rec)
		if !verdict.Accepted() {
			stats.Rejected[verdict.Stage]++
			if r.logger.Enabled(ctx, slog.LevelDebug) {
				id, _ := rec.ID()
				r.logger.Debug("rejected",
					slog.String("id", id),
					slog.String("stage", string(verdict.Stage)),
					slog.String("reason", verdict.Reason))
			}
		} else {
			if err := r.sink.Write(ctx, verdict.Item); err != nil {
				return r.finish(stats, start), fmt.Errorf("write item %s: %w", verdict.Item.ID, err)
			}
			stats.Accepted++
			r.logAccepted(verdict.Item)
		}

		if r.progressEvery > 0 && stats.Seen%r.progressEvery == 0 {
			r.logProgress(stats)
		}
	}

	if err := scanner.Err(); err != nil {
		return r.finish(stats, start), fmt.Errorf("read input: %w", err)
	}

	stats = r.finish(stats, start)
	r.logger.Info("run complete",
		slog.String("accepted", humanize.Comma(int64(stats.Accepted))),
		slog.String("seen", humanize.Comma(int64(stats.Seen))),
		slog.Int("malformed", stats.Malformed),
		slog.Any("rejected", stageCounts(stats.Rejected)),
		slog.Int("label_cache", stats.CacheSize),
		slog.Duration("elapsed", stats.Elapsed.Round(time.Second)))
	return stats, nil
}

func (r *Runner) finish(stats Stats, start time.Time) Stats {
	stats.CacheSize = r.pipeline.Labels().Len()
	stats.Elapsed = time.Since(start)
	return stats
}

func (r *Runner) logAccepted(item *model.Item) {
	attrs := []any{
		slog.String("id", item.ID),
		slog.String("label", item.Label),
		slog.String("description", item.Description),
		slog.String("date", model.DatePropertyDescription(r.pipeline.DateProperties(), item.DatePropID)),
		slog.Int64("year", item.Year),
		slog.Int("page_views", item.PageViews),
		slog.String("instance_of", strings.Join(item.InstanceOf, ",")),
		slog.String("wiki", item.WikipediaURL()),
		slog.String("image", item.ImageURL()),
	}
	if len(item.Occupations) > 0 {
		attrs = append(attrs, slog.String("occupations", strings.Join(item.Occupations, ",")))
	}
	r.logger.Info("accepted", attrs...)
}

func (r *Runner) logProgress(stats Stats) {
	rate := 0.0
	if stats.Seen > 0 {
		rate = float64(stats.Accepted) / float64(stats.Seen) * 100
	}
	r.logger.Info("progress",
		slog.String("accepted", humanize.Comma(int64(stats.Accepted))),
		slog.String("seen", humanize.Comma(int64(stats.Seen))),
		slog.String("accept_rate", fmt.Sprintf("%.3f%%", rate)),
		slog.Int("label_cache", r.pipeline.Labels().Len()))
}

// stageCounts renders rejection counts in stage order for logging.
func stageCounts(rejected map[Stage]int) map[string]int {
	out := make(map[string]int, len(rejected))
	for _, s := range Stages {
		if n := rejected[s]; n > 0 {
			out[string(s)] = n
		}
	}
	return out
}
