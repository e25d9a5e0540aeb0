package mapfeed

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/runmate-app/runmate/internal/core/domain"
)

// RunSource executes geospatial queries. *Client is the production
// implementation.
type RunSource interface {
	Execute(ctx context.Context, q Query) ([]domain.Run, error)
}

// ViewOptions tune a View. Zero values select the defaults.
type ViewOptions struct {
	SettleDelay   time.Duration
	MoveThreshold float64
}

// View wires the map screen's pipeline together: region changes feed the
// debouncer, settled viewports become box queries, and responses are
// reconciled by the merger. Query failures retain the previously displayed
// set; a map that briefly shows slightly old markers beats one that blanks.
type View struct {
	ctx    context.Context
	source RunSource
	deb    *Debouncer
	merger *Merger
}

// NewView creates a View. The context bounds all queries the view issues.
func NewView(ctx context.Context, source RunSource, opts ViewOptions) *View {
	v := &View{
		ctx:    ctx,
		source: source,
		merger: NewMerger(),
	}
	v.deb = NewDebouncer(opts.SettleDelay, opts.MoveThreshold, v.fetch)
	return v
}

// HandleRegionChange records a map pan or zoom.
func (v *View) HandleRegionChange(vp Viewport) {
	v.deb.Observe(vp)
}

// Runs returns the currently displayed run set.
func (v *View) Runs() []domain.Run {
	return v.merger.Runs()
}

// Close tears the view down, cancelling any pending settle. In-flight
// requests are deliberately left to complete; the merger discards whatever
// they return if a newer response has landed meanwhile.
func (v *View) Close() {
	v.deb.Close()
}

func (v *View) fetch(vp Viewport) {
	q, err := BuildBoxQuery(vp)
	if err != nil {
		slog.Warn("skipping query for malformed viewport", "error", err)
		return
	}
	q.Seq = v.merger.Next()

	runs, err := v.source.Execute(v.ctx, q)
	if err != nil {
		var netErr *NetworkError
		var remoteErr *RemoteQueryError
		switch {
		case errors.As(err, &netErr):
			slog.Warn("run query transport failure, keeping displayed set", "seq", q.Seq, "error", err)
		case errors.As(err, &remoteErr):
			slog.Warn("run query rejected by store, keeping displayed set", "seq", q.Seq, "status", remoteErr.Status)
		default:
			slog.Warn("run query failed, keeping displayed set", "seq", q.Seq, "error", err)
		}
		return
	}

	v.merger.Apply(q.Seq, runs)
}
