package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"essencialform/internal/storage"
	"essencialform/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/sirupsen/logrus"
)

type SubmissionStore interface {
	Create(ctx context.Context, sub *types.Submission) error
	Submission(ctx context.Context, id int64) (*types.Submission, error)
	Submissions(ctx context.Context) ([]*types.Submission, error)
}

type DocumentStore interface {
	DocumentsBySubmissionID(ctx context.Context, submissionID int64) ([]types.Document, error)
}

// Dispatcher detaches the post-commit fan-out from the request lifecycle.
type Dispatcher interface {
	Dispatch(sub *types.Submission, files []storage.File)
}

type Service struct {
	logger      *logrus.Logger
	config      *types.Config
	submissions SubmissionStore
	documents   DocumentStore
	dispatcher  Dispatcher

	cepClient  *http.Client
	cepBaseURL string

	server *http.Server
}

func New(
	config *types.Config,
	logger *logrus.Logger,
	submissions SubmissionStore,
	documents DocumentStore,
	dispatcher Dispatcher,
) *Service {
	mux := flow.New()

	s := &Service{
		logger:      logger,
		config:      config,
		submissions: submissions,
		documents:   documents,
		dispatcher:  dispatcher,
		cepClient:   &http.Client{Timeout: 10 * time.Second},
		cepBaseURL:  viaCEPBaseURL,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.ServerPort),
			Handler:           mux,
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	s.buildRouter(mux)

	return s
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler exposes the routed handler, used by the httptest-based tests.
func (s *Service) Handler() http.Handler {
	return s.server.Handler
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.StripTrailingSlash)
	r.Use(s.CORSMiddleware)
	r.Use(s.LoggingMiddleware)

	r.HandleFunc("/api/users", s.handleCreateSubmission, http.MethodPost)
	r.HandleFunc("/api/users", s.handleListSubmissions, http.MethodGet)
	r.HandleFunc("/api/users/:id", s.handleGetSubmission, http.MethodGet)

	r.HandleFunc("/api/cep/:cep", s.handleCEPLookup, http.MethodGet)

	r.HandleFunc("/health", s.handleHealth, http.MethodGet)
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "Backend funcionando!",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
