// Package session wires a host document, a geometry kernel, a scene
// engine and a converter together from configuration. A Session is the
// single owner of its document: every import and export goes through it.
package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/chazu/blockbridge/pkg/config"
	"github.com/chazu/blockbridge/pkg/convert"
	"github.com/chazu/blockbridge/pkg/engine"
	"github.com/chazu/blockbridge/pkg/host"
	"github.com/chazu/blockbridge/pkg/host/memdoc"
	"github.com/chazu/blockbridge/pkg/interchange"
	"github.com/chazu/blockbridge/pkg/kernel"
	"github.com/chazu/blockbridge/pkg/kernel/sdfx"
	"github.com/chazu/blockbridge/pkg/logger"
	"github.com/chazu/blockbridge/pkg/tessellate"
	"github.com/samber/lo"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Session owns one host document and the converter bound to it.
type Session struct {
	cfg    *config.Config
	log    *zap.Logger
	kernel kernel.Kernel
	engine *engine.Engine
	reg    *convert.Registry

	mu   sync.Mutex
	doc  *memdoc.Document
	conv *convert.Converter
}

// Open builds a session with an empty document. A nil cfg means
// config.Default().
func Open(cfg *config.Config) (*Session, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}

	var fileCfg logger.FileConfig
	if cfg.Logging.LogFile != "" {
		fileCfg = logger.DefaultFileConfig(cfg.Logging.LogFile)
	}
	log := logger.New(cfg.Logging.Level, fileCfg, cfg.Logging.Console)

	k := sdfx.NewWithCells(cfg.Kernel.MeshCells)
	s := &Session{
		cfg:    cfg,
		log:    log,
		kernel: k,
		engine: engine.NewEngine(k, log.Named("engine")),
		reg:    convert.DefaultRegistry(k),
	}
	s.bind(memdoc.New())

	log.Info("session opened",
		zap.String("commit", cfg.Conversion.CommitInfo),
		zap.Stringer("units", cfg.ModelUnits()),
		zap.Int("meshCells", cfg.Kernel.MeshCells),
	)
	return s, nil
}

// bind makes doc the session document. Callers hold s.mu or own s
// exclusively.
func (s *Session) bind(doc *memdoc.Document) {
	ctx := convert.NewContext(doc, s.cfg.Conversion.CommitInfo, s.cfg.ModelUnits())
	ctx.NameSeparator = s.cfg.Conversion.NameSeparator
	ctx.Logger = s.log.Named("convert")
	s.doc = doc
	s.conv = convert.NewConverter(s.reg, ctx)
}

// Document returns the current document.
func (s *Session) Document() *memdoc.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// RunScript evaluates a scene script. On success the document it built
// replaces the session document; on evaluation errors the session is left
// unchanged and the errors are in the result.
func (s *Session) RunScript(source string) (engine.EvalResult, error) {
	res, err := s.engine.EvaluateResult(source)
	if err != nil {
		return res, fmt.Errorf("session: %w", err)
	}
	if len(res.Errors) > 0 {
		return res, nil
	}
	for _, w := range res.Warnings {
		s.log.Warn("scene script", zap.String("warning", w.Message))
	}

	s.mu.Lock()
	s.bind(res.Doc)
	s.mu.Unlock()
	return res, nil
}

// ExportInstances converts every placed instance in the document. Instances
// that fail are left out and their errors combined.
func (s *Session) ExportInstances() ([]*interchange.BlockInstance, error) {
	s.mu.Lock()
	doc, conv := s.doc, s.conv
	s.mu.Unlock()

	var errs error
	out := lo.FilterMap(doc.Objects().Instances(), func(o *host.Object, _ int) (*interchange.BlockInstance, bool) {
		bi, err := conv.InstanceToInterchange(o)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("instance %s: %w", o.ID, err))
			return nil, false
		}
		return bi, true
	})
	return out, errs
}

// Export converts every top-level object in the document. Objects no
// converter handles are skipped without an error.
func (s *Session) Export() ([]interchange.Object, error) {
	s.mu.Lock()
	doc, conv := s.doc, s.conv
	s.mu.Unlock()

	out, err := conv.ConvertAllToInterchange(doc.AllObjects())
	var errs error
	for _, e := range multierr.Errors(err) {
		if convert.IsSkippable(e) {
			s.log.Debug("export skipped object", zap.Error(e))
			continue
		}
		errs = multierr.Append(errs, e)
	}
	return out, errs
}

// Tessellate flattens the document into world-space meshes, expanding every
// placed instance.
func (s *Session) Tessellate() ([]tessellate.Part, error) {
	doc := s.Document()
	parts, err := tessellate.Tessellate(doc, doc.AllObjects(), s.kernel)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	s.log.Debug("tessellated document", zap.Int("parts", len(parts)))
	return parts, nil
}

// Import validates objs and adds the valid ones to the document under
// commit. Validation failures and conversion failures are combined in the
// returned error; the objects that made it in are returned.
func (s *Session) Import(commit string, objs []interchange.Object) ([]*host.Object, error) {
	s.mu.Lock()
	conv := s.conv
	s.mu.Unlock()

	var errs error
	var positions []int
	valid := lo.Filter(objs, func(o interchange.Object, i int) bool {
		res := interchange.Validate(o)
		for _, w := range res.Warnings {
			s.log.Warn("import validation", zap.Int("object", i), zap.Stringer("kind", w.Kind), zap.String("warning", w.Message))
		}
		if !res.OK() {
			errs = multierr.Append(errs, &convert.ObjectError{
				Index: i,
				Kind:  o.Kind().String(),
				Err:   multierr.Combine(lo.Map(res.Errors, func(e interchange.ValidationError, _ int) error { return e })...),
			})
			return false
		}
		positions = append(positions, i)
		return true
	})

	created, err := conv.ImportAll(commit, valid)
	// ImportAll numbers failures within valid; report them by input position.
	for _, e := range multierr.Errors(err) {
		var oe *convert.ObjectError
		if errors.As(e, &oe) {
			oe.Index = positions[oe.Index]
		}
		errs = multierr.Append(errs, e)
	}
	return created, errs
}

// Close flushes the session logger.
func (s *Session) Close() error {
	logger.Sync(s.log)
	return nil
}
