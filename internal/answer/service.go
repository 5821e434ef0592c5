// Package answer orchestrates the question-to-result flow: it owns the
// cached schema, runs the compiler, executes the compiled query, and
// reshapes the rows into a minimal answer.
package answer

import (
	"context"
	"math"
	"strings"
	"sync"

	libinjection "github.com/corazawaf/libinjection-go"
	"go.uber.org/zap"

	"github.com/GoogleCloudPlatform/nl-trip-analytics/internal/nlq"
)

// SchemaProvider returns the analytic schema. It is called at most
// once per process lifetime, plus once per explicit reload.
type SchemaProvider interface {
	GetSchema(ctx context.Context) (nlq.SchemaSnapshot, error)
}

// QueryExecutor runs a parameterized query against the store. All
// user-influenced values travel through params, never through query.
type QueryExecutor interface {
	Execute(ctx context.Context, query string, params []any) ([]nlq.Row, error)
}

// Response is the structured answer surfaced to the transport layer.
// Error is nil on success.
type Response struct {
	Query  string  `json:"query"`
	Result any     `json:"result"`
	Error  *string `json:"error"`
}

// Service wires the compiler to its two external collaborators.
type Service struct {
	provider SchemaProvider
	executor QueryExecutor
	dialect  nlq.Dialect
	logger   *zap.Logger
	refYear  int
	retry    RetryOptions

	initOnce sync.Once
	initErr  error
	matcher  *nlq.Matcher
	compiler *nlq.Compiler
}

func NewService(provider SchemaProvider, executor QueryExecutor, dialect nlq.Dialect, refYear int, logger *zap.Logger) *Service {
	return &Service{
		provider: provider,
		executor: executor,
		dialect:  dialect,
		logger:   logger,
		refYear:  refYear,
		retry:    DefaultRetryOptions,
	}
}

// Initialize fetches and caches the schema snapshot exactly once.
// Concurrent callers share a single fetch; later calls return the
// recorded outcome without touching the provider again.
func (s *Service) Initialize(ctx context.Context) error {
	s.initOnce.Do(func() {
		snapshot, err := s.provider.GetSchema(ctx)
		if err != nil {
			s.initErr = &ErrSchemaUnavailable{Err: err}
			return
		}
		s.matcher = nlq.NewMatcher(snapshot, nlq.DefaultMinScore)
		s.compiler = nlq.NewCompiler(s.matcher, s.dialect, s.refYear)
		s.logger.Info("schema snapshot cached", zap.Int("tables", len(snapshot.Tables)))
	})
	return s.initErr
}

// Reload replaces the schema snapshot; the match cache is emptied in
// the same swap. Initialize must have succeeded first.
func (s *Service) Reload(ctx context.Context) error {
	if err := s.Initialize(ctx); err != nil {
		return err
	}
	snapshot, err := s.provider.GetSchema(ctx)
	if err != nil {
		return &ErrSchemaUnavailable{Err: err}
	}
	s.matcher.SetSchema(snapshot)
	s.logger.Info("schema snapshot reloaded", zap.Int("tables", len(snapshot.Tables)))
	return nil
}

// Answer compiles and executes one question. All failures are
// recovered into a structured Response; the transport layer decides
// status codes.
func (s *Service) Answer(ctx context.Context, question string) Response {
	if strings.TrimSpace(question) == "" {
		return errorResponse(&ErrEmptyQuestion{})
	}
	if err := s.Initialize(ctx); err != nil {
		return errorResponse(err)
	}

	compiled := s.compiler.Compile(question)
	if strings.TrimSpace(compiled.Text) == "" {
		return errorResponse(&ErrUncompilable{Question: question})
	}

	if err := s.screenParameters(compiled.Parameters); err != nil {
		return errorResponse(err)
	}

	rows, err := withRetry(ctx, s.retry, func(ctx context.Context) ([]nlq.Row, error) {
		rows, execErr := s.executor.Execute(ctx, compiled.Text, compiled.Parameters)
		if execErr != nil {
			return nil, &ErrExecution{Msg: "execute compiled query", Err: execErr}
		}
		return rows, nil
	})
	if err != nil {
		s.logger.Error("query execution failed",
			zap.String("intent", compiled.Intent.String()),
			zap.Error(err))
		return errorResponse(err)
	}

	return Response{
		Query:  compiled.Text,
		Result: reshape(rows, compiled.Intent),
	}
}

// screenParameters runs every bound string parameter through the
// libinjection tripwire. The compiler only binds values it chose
// itself, so a hit here means something upstream went badly wrong;
// refuse rather than execute.
func (s *Service) screenParameters(params []any) error {
	for i, p := range params {
		str, ok := p.(string)
		if !ok {
			continue
		}
		if isSQLi, fingerprint := libinjection.IsSQLi(str); isSQLi {
			s.logger.Warn("bound parameter failed injection screen",
				zap.Int("ordinal", i+1),
				zap.String("fingerprint", string(fingerprint)))
			return &ErrExecution{Msg: "bound parameter failed injection screen"}
		}
	}
	return nil
}

func errorResponse(err error) Response {
	msg := err.Error()
	return Response{Query: "", Result: nil, Error: &msg}
}

// reshape collapses a single-row, single-column result to a scalar:
// averages round to whole minutes, distance totals keep one decimal,
// text collapses to a plain string. Anything else is returned as the
// full row list.
func reshape(rows []nlq.Row, intent nlq.Intent) any {
	if len(rows) != 1 || len(rows[0]) != 1 {
		return rows
	}
	for _, value := range rows[0] {
		switch v := value.(type) {
		case float64:
			return roundScalar(v, intent)
		case float32:
			return roundScalar(float64(v), intent)
		case []byte:
			return string(v)
		default:
			return v
		}
	}
	return rows
}

func roundScalar(v float64, intent nlq.Intent) any {
	if intent == nlq.IntentAverage {
		return int64(math.Round(v))
	}
	return math.Round(v*10) / 10
}
