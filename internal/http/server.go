package http

import (
	"context"
	"errors"
	"net/http"
	"runtime/debug"
	"time"

	"finance/internal/core"
	applog "finance/internal/log"
	"finance/internal/middleware/security"
	"finance/internal/middleware/trace"

	"github.com/google/uuid"
)

// TransactionService is the transaction API the handlers depend on.
type TransactionService interface {
	List(ctx context.Context) ([]core.Transaction, error)
	Get(ctx context.Context, id uuid.UUID) (core.Transaction, error)
	Create(ctx context.Context, in core.TransactionInput) (core.Transaction, error)
	Update(ctx context.Context, id uuid.UUID, p core.TransactionPatch) (core.Transaction, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// PlanService is the monthly plan API the handlers depend on.
type PlanService interface {
	List(ctx context.Context) ([]core.PlanItem, error)
	Get(ctx context.Context, id int64) (core.PlanItem, error)
	Create(ctx context.Context, in core.PlanItemInput) (core.PlanItem, error)
	Update(ctx context.Context, id int64, p core.PlanItemPatch) (core.PlanItem, error)
	Delete(ctx context.Context, id int64) error
}

// ReadinessChecker reports whether the backing store can serve requests.
type ReadinessChecker interface {
	Ping(ctx context.Context) error
}

type Server struct {
	http.Server
	transactions TransactionService
	plan         PlanService
	ready        ReadinessChecker
	logger       *applog.Logger
	audit        *applog.StructuredLogger
	tracer       *trace.Middleware
}

// route is one entry of the routing table.
type route struct {
	pattern string
	handler http.HandlerFunc
}

// NewServer builds the routing table and middleware chain, returning a
// ready-to-run http.Server. ready and logger may be nil.
func NewServer(addr string, transactions TransactionService, plan PlanService, ready ReadinessChecker, logger *applog.Logger) *Server {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	s := &Server{
		transactions: transactions,
		plan:         plan,
		ready:        ready,
		logger:       logger,
		audit:        applog.NewStructuredLogger(logger),
		tracer:       trace.NewMiddleware(logger),
	}

	routes := []route{
		{"GET /transactions/{$}", s.handleListTransactions},
		{"POST /transactions/{$}", s.handleCreateTransaction},
		{"GET /transactions/{id}/{$}", s.handleGetTransaction},
		{"PUT /transactions/{id}/{$}", s.handleUpdateTransaction},
		{"PATCH /transactions/{id}/{$}", s.handleUpdateTransaction},
		{"DELETE /transactions/{id}/{$}", s.handleDeleteTransaction},

		{"GET /monthly-plan/{$}", s.handleListPlanItems},
		{"POST /monthly-plan/{$}", s.handleCreatePlanItem},
		{"GET /monthly-plan/{id}/{$}", s.handleGetPlanItem},
		{"PUT /monthly-plan/{id}/{$}", s.handleUpdatePlanItem},
		{"PATCH /monthly-plan/{id}/{$}", s.handleUpdatePlanItem},
		{"DELETE /monthly-plan/{id}/{$}", s.handleDeletePlanItem},

		{"GET /healthz", handleHealth},
		{"GET /readyz", s.handleReady},
	}

	mux := http.NewServeMux()
	for _, rt := range routes {
		mux.HandleFunc(rt.pattern, rt.handler)
	}

	var handler http.Handler = withJSONFallback(mux)
	handler = s.recoverPanics(handler)
	handler = applog.RequestIDMiddleware(trace.RequestID)(handler)
	handler = applog.Middleware(logger)(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// writeError maps an operation error onto its HTTP response.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, component, op string) {
	var ve *core.ValidationError
	switch {
	case errors.As(err, &ve):
		ValidationErrorResponse(ve).Write(w)
	case errors.Is(err, core.ErrNotFound):
		NotFoundError().Write(w)
	default:
		fields := applog.NewFields().
			WithRequestID(trace.GetRequestID(r.Context())).
			WithErrorType(applog.ErrorTypeDatabase)
		s.audit.LogError(r.Context(), "Request failed", err, component, op, fields)
		InternalServerError().Write(w)
	}
}

func (s *Server) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				applog.FromContext(r.Context()).ErrorContext(r.Context(), "Handler panicked",
					"panic", rec,
					applog.FieldErrorType, applog.ErrorTypeInternal,
					"stack", string(debug.Stack()))
				InternalServerError().Write(w)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// withJSONFallback turns the mux's plain-text 404 and 405 replies into JSON
// bodies, keeping the Allow header the mux computed.
func withJSONFallback(mux *http.ServeMux) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, pattern := mux.Handler(r); pattern != "" {
			mux.ServeHTTP(w, r)
			return
		}

		rec := &discardWriter{header: make(http.Header)}
		mux.ServeHTTP(rec, r)
		if rec.status == http.StatusMethodNotAllowed {
			MethodNotAllowedError(r.Method, rec.header.Get("Allow")).Write(w)
			return
		}
		NotFoundError().Write(w)
	})
}

// discardWriter records the status and headers of a response and drops its body.
type discardWriter struct {
	header http.Header
	status int
}

func (d *discardWriter) Header() http.Header { return d.header }

func (d *discardWriter) Write(b []byte) (int, error) {
	if d.status == 0 {
		d.status = http.StatusOK
	}
	return len(b), nil
}

func (d *discardWriter) WriteHeader(code int) {
	if d.status == 0 {
		d.status = code
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready.Ping(ctx); err != nil {
			s.logger.WarnContext(r.Context(), "Readiness check failed", applog.FieldError, err)
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("store unavailable"))
			return
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
