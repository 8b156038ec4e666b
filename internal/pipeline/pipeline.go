// Package pipeline lowers manifests end to end: load, lower, drain and
// encode, one independent unit per manifest, units in parallel.
package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"tyjson/internal/cache"
	"tyjson/internal/collect"
	"tyjson/internal/diag"
	"tyjson/internal/ir"
	"tyjson/internal/lower"
	"tyjson/internal/manifest"
	"tyjson/internal/observ"
	"tyjson/internal/trace"
)

// Request configures a run.
type Request struct {
	Files          []string
	Jobs           int
	MaxDiagnostics int
	Pretty         bool
	// Cache is optional. Hits skip every stage after reading the manifest.
	Cache *cache.Cache
	// ToolVersion is folded into cache keys.
	ToolVersion string
	Progress    ProgressSink
}

// Result is the outcome of one unit. Doc is nil whenever Err is set.
type Result struct {
	File    string
	Unit    string
	Doc     []byte
	Bag     *diag.Bag
	Cached  bool
	Err     error
	Timings Timings
	Report  observ.Report
}

// Run lowers every file of req. Unit failures are reported in their Result;
// the returned error is set only when the run itself was cancelled.
func Run(ctx context.Context, req *Request) ([]Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if req == nil {
		return nil, fmt.Errorf("pipeline: missing request")
	}
	if len(req.Files) == 0 {
		return nil, nil
	}

	jobs := req.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	emitQueued(req.Progress, req.Files)
	results := make([]Result, len(req.Files))
	for i, path := range req.Files {
		results[i].File = path
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(req.Files)))
	for i, path := range req.Files {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			// each goroutine owns its index
			results[i] = LowerFile(gctx, path, req)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, fmt.Errorf("pipeline: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return results, fmt.Errorf("pipeline: %w", err)
	}
	if req.Progress != nil {
		req.Progress.OnEvent(Event{Stage: StageEncode, Status: StatusDone})
	}
	return results, nil
}

type unitRun struct {
	ctx   context.Context
	req   *Request
	res   *Result
	timer *observ.Timer
	r     diag.Reporter
	span  *trace.Span
}

// LowerFile runs every stage for one manifest.
func LowerFile(ctx context.Context, path string, req *Request) (res Result) {
	res.File = path
	res.Bag = diag.NewBag(req.MaxDiagnostics)
	res.Timings = make(Timings, len(Stages))

	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeUnit, "unit", trace.CurrentSpan(ctx).SpanID).
		WithExtra("file", path)
	ctx = trace.WithSpanContext(ctx, trace.SpanContext{SpanID: span.ID()})

	dedup := diag.NewDedupReporter(diag.BagReporter{Bag: res.Bag})
	u := &unitRun{
		ctx:   ctx,
		req:   req,
		res:   &res,
		timer: observ.NewTimer(),
		r:     dedup,
		span:  span,
	}
	started := time.Now()
	defer func() {
		res.Report = u.timer.Report()
		res.Report.Unit = path
		status := "ok"
		switch {
		case res.Err != nil:
			status = "error"
		case res.Cached:
			status = "cached"
		}
		if n := dedup.Suppressed(); n > 0 {
			span.WithExtra("repeated_diags", strconv.Itoa(n))
		}
		if n := res.Bag.Dropped(); n > 0 {
			span.WithExtra("dropped_diags", strconv.Itoa(n))
		}
		span.WithExtra("status", status).End("")
	}()

	if err := u.run(tracer); err != nil {
		res.Err = err
		res.Doc = nil
		return res
	}
	if req.Progress != nil {
		status := StatusDone
		if res.Cached {
			status = StatusCached
		}
		req.Progress.OnEvent(Event{File: path, Stage: StageEncode, Status: status, Elapsed: time.Since(started)})
	}
	return res
}

func (u *unitRun) run(tracer trace.Tracer) error {
	var (
		data []byte
		key  cache.Digest
		unit *manifest.Unit
		doc  *ir.Document
		raw  []byte
	)
	err := u.stage(StageLoad, func() (string, error) {
		var err error
		data, err = os.ReadFile(u.res.File)
		if err != nil {
			diag.ReportError(u.r, diag.IOLoadFileError, u.res.File, err.Error()).Emit()
			return "", fmt.Errorf("pipeline: %w", err)
		}
		if u.req.Cache != nil {
			key = cache.DigestOf(u.req.ToolVersion, data)
			if hit := u.lookup(key); hit {
				return "cached", nil
			}
		}
		unit, err = manifest.Parse(u.res.File, data, u.r)
		if err != nil {
			return "", err
		}
		u.res.Unit = unit.Name
		return "", nil
	})
	if err != nil || u.res.Cached {
		return err
	}

	err = u.stage(StageDrain, func() (string, error) {
		sess := lower.NewSession(unit.Program, lower.Options{
			Reporter: u.r,
			Tracer:   tracer,
			Parent:   u.span.ID(),
		})
		u.span.WithExtra("session", sess.ID.String())
		var err error
		doc, err = collect.Collect(u.ctx, sess, unit.Roots)
		if err != nil {
			var fe *lower.FatalError
			if errors.As(err, &fe) {
				diag.ReportError(u.r, diag.LowerFatal, u.res.File, fe.Error()).Emit()
			}
			return "", err
		}
		return fmt.Sprintf("%d fns, %d tys", len(doc.Fns), len(doc.Tys)), nil
	})
	if err != nil {
		return err
	}

	return u.stage(StageEncode, func() (string, error) {
		var err error
		raw, err = json.Marshal(doc)
		if err != nil {
			return "", fmt.Errorf("pipeline: encode %s: %w", u.res.File, err)
		}
		if u.req.Cache != nil {
			payload := &cache.Payload{Unit: unit.Name, Doc: raw, Diags: u.res.Bag.Items()}
			if err := u.req.Cache.Put(key, payload); err != nil {
				diag.ReportWarning(u.r, cacheCode(err), u.res.File, err.Error()).Emit()
			}
		}
		u.res.Doc, err = formatDoc(raw, u.req.Pretty)
		return "", err
	})
}

// lookup fills the result from the cache. Cache failures degrade to a miss.
func (u *unitRun) lookup(key cache.Digest) bool {
	payload, ok, err := u.req.Cache.Get(key)
	if err != nil {
		diag.ReportWarning(u.r, cacheCode(err), u.res.File, err.Error()).Emit()
		return false
	}
	if !ok {
		return false
	}
	doc, err := formatDoc(payload.Doc, u.req.Pretty)
	if err != nil {
		diag.ReportWarning(u.r, diag.CacheCorrupt, u.res.File, err.Error()).Emit()
		return false
	}
	for _, d := range payload.Diags {
		u.res.Bag.Add(d)
	}
	u.res.Unit = payload.Unit
	u.res.Doc = doc
	u.res.Cached = true
	u.span.WithExtra("cache", key.String())
	return true
}

func (u *unitRun) stage(stage Stage, fn func() (string, error)) error {
	if err := u.ctx.Err(); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	u.emit(stage, StatusWorking, nil, 0)
	stop := u.timer.Start(string(stage))
	note, err := fn()
	elapsed := stop(note)
	u.res.Timings[stage] = elapsed
	if err != nil {
		u.emit(stage, StatusError, err, elapsed)
	}
	return err
}

func (u *unitRun) emit(stage Stage, status Status, err error, elapsed time.Duration) {
	if u.req.Progress == nil {
		return
	}
	u.req.Progress.OnEvent(Event{File: u.res.File, Stage: stage, Status: status, Err: err, Elapsed: elapsed})
}

func emitQueued(sink ProgressSink, files []string) {
	if sink == nil {
		return
	}
	for _, file := range files {
		sink.OnEvent(Event{File: file, Stage: StageLoad, Status: StatusQueued})
	}
}

func cacheCode(err error) diag.Code {
	switch {
	case errors.Is(err, cache.ErrCorrupt):
		return diag.CacheCorrupt
	case errors.Is(err, cache.ErrLocked):
		return diag.CacheLocked
	default:
		return diag.CacheInfo
	}
}

func formatDoc(raw []byte, pretty bool) ([]byte, error) {
	if !pretty {
		return raw, nil
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	return buf.Bytes(), nil
}
