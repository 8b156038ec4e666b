package lower

import (
	"github.com/google/uuid"

	"tyjson/internal/diag"
	"tyjson/internal/host"
	"tyjson/internal/naming"
	"tyjson/internal/trace"
)

// Options configures a Session.
type Options struct {
	Reporter diag.Reporter
	Tracer   trace.Tracer
	// Parent is the span that item-scope trace events hang off.
	Parent uint64
}

// Session is the lowering state of one unit: the type table, the used sets
// and the collaborators they are built from. A Session is not safe for
// concurrent use.
type Session struct {
	// ID correlates trace events of parallel units. It never reaches the IR.
	ID uuid.UUID

	oracles  host.Oracles
	names    *naming.Mangler
	tys      *TypeTable
	used     UsedSets
	reporter diag.Reporter
	tracer   trace.Tracer
	parent   uint64
}

// NewSession creates a session over the given oracles.
func NewSession(oracles host.Oracles, opts Options) *Session {
	s := &Session{
		ID:       uuid.New(),
		oracles:  oracles,
		names:    naming.NewMangler(oracles),
		tys:      NewTypeTable(),
		reporter: opts.Reporter,
		tracer:   opts.Tracer,
		parent:   opts.Parent,
	}
	if s.reporter == nil {
		s.reporter = diag.NopReporter{}
	}
	if s.tracer == nil {
		s.tracer = trace.Nop
	}
	return s
}

// Oracles returns the collaborators the session consults.
func (s *Session) Oracles() host.Oracles { return s.oracles }

// Names returns the session's mangler.
func (s *Session) Names() *naming.Mangler { return s.names }

// Types returns the type table.
func (s *Session) Types() *TypeTable { return s.tys }

// Used returns the used sets. Callers drain them; the engine only inserts.
func (s *Session) Used() *UsedSets { return &s.used }

// Reporter returns the diagnostics sink.
func (s *Session) Reporter() diag.Reporter { return s.reporter }

func (s *Session) point(what string, name naming.StableName) {
	if !s.tracer.Enabled() {
		return
	}
	trace.Point(s.tracer, trace.ScopeItem, what, string(name), s.parent, map[string]string{
		"session": s.ID.String(),
	})
}
