package sword

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/tphakala/swordgate/internal/errors"
	"github.com/tphakala/swordgate/internal/jper"
	"github.com/tphakala/swordgate/internal/logger"
	"github.com/tphakala/swordgate/internal/observability/metrics"
)

// Server answers SWORD operations for one request. It is not shared between
// requests: its cache and gateway belong to the caller.
type Server struct {
	cfg        Config
	uris       *URIManager
	translator *Translator
	auth       Auth
	gateway    Gateway
	cache      *NotificationCache
	log        logger.Logger
	metrics    *metrics.SwordMetrics
	now        func() time.Time
}

// Option customizes a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(log logger.Logger) Option {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// WithMetrics records operation and cache metrics.
func WithMetrics(m *metrics.SwordMetrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithClock sets the time source for document timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// NewServer creates a Server acting for auth through gateway.
func NewServer(cfg Config, auth Auth, gateway Gateway, opts ...Option) *Server {
	cfg = cfg.withDefaults()
	s := &Server{
		cfg:     cfg,
		uris:    NewURIManager(cfg),
		auth:    auth,
		gateway: gateway,
		log:     logger.NewDiscardLogger(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.translator = NewTranslator(cfg, s.uris, s.now)
	s.cache = newNotificationCache(s.metrics)
	return s
}

// URIs returns the server's URI formatter.
func (s *Server) URIs() *URIManager {
	return s.uris
}

// resolve returns the notification for id, fetching it at most once per Server.
// Only successful fetches are cached.
func (s *Server) resolve(ctx context.Context, id string) (*jper.Notification, error) {
	if n, ok := s.cache.Get(id); ok {
		return n, nil
	}

	n, err := s.gateway.Fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, fmt.Errorf("%w: notification %s", ErrNotFound, id)
	}

	s.cache.Set(id, n)
	return n, nil
}

// ContainerExists reports whether the router knows notification id. Failures
// other than not found are returned, never reported as false.
func (s *Server) ContainerExists(ctx context.Context, id string) (exists bool, err error) {
	defer s.observe(metrics.OpContainerExists, time.Now(), &err)
	s.log.Info("checking notification exists", logger.String("notification_id", id))

	if _, err := s.resolve(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// MediaResourceExists reports whether notification id has a package to download.
func (s *Server) MediaResourceExists(ctx context.Context, id string) (exists bool, err error) {
	defer s.observe(metrics.OpMediaResourceExists, time.Now(), &err)
	s.log.Info("checking media resource exists", logger.String("notification_id", id))

	n, err := s.resolve(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.log.Info("notification not found", logger.String("notification_id", id))
			return false, nil
		}
		return false, err
	}

	packages := n.URLs(jper.LinkTypePackage)
	if len(packages) == 0 {
		s.log.Info("no media resource for notification", logger.String("notification_id", id))
		return false, nil
	}
	return true, nil
}

// ServiceDocument returns the serialized service document.
func (s *Server) ServiceDocument() (doc []byte, err error) {
	defer s.observe(metrics.OpServiceDocument, time.Now(), &err)
	s.log.Info("service document requested")

	return s.translator.BuildServiceDocument().Serialise()
}

// DepositNew sends a deposit to the validate or notify collection.
func (s *Server) DepositNew(ctx context.Context, collectionID string, deposit *DepositRequest) (resp *DepositResponse, err error) {
	defer s.observe(metrics.OpDepositNew, time.Now(), &err)

	log := s.log.With(logger.String("collection", collectionID))
	log.Info("deposit received")

	if collectionID != CollectionValidate && collectionID != CollectionNotify {
		log.Debug("deposit to unknown collection")
		return nil, fmt.Errorf("%w: collection %s", ErrNotFound, collectionID)
	}
	if deposit == nil || deposit.Content == nil {
		return nil, newBadRequest("deposit has no content")
	}
	log = log.With(logger.String("packaging", deposit.Packaging))

	if collectionID == CollectionValidate {
		if err := s.gateway.Validate(ctx, deposit); err != nil {
			return nil, s.depositError(log, err)
		}
		log.Debug("validation succeeded")
		return &DepositResponse{Accepted: true}, nil
	}

	id, location, err := s.gateway.Create(ctx, deposit)
	if err != nil {
		return nil, s.depositError(log, err)
	}

	receipt, err := s.translator.BuildReceipt(id, deposit.Packaging, TreatmentAccepted).Serialise()
	if err != nil {
		return nil, err
	}

	log.Debug("notification created", logger.String("notification_id", id))
	return &DepositResponse{
		Created:  true,
		ID:       id,
		Location: location,
		EditURI:  s.uris.EditURI(id),
		Receipt:  receipt,
	}, nil
}

// depositError maps a gateway deposit failure onto the adapter taxonomy.
func (s *Server) depositError(log logger.Logger, err error) error {
	var validationErr *ValidationError
	switch {
	case errors.As(err, &validationErr):
		log.Debug("router rejected deposit", logger.String("reason", validationErr.Message))
		return newBadRequest(validationErr.Message)
	case errors.Is(err, ErrUnauthorized):
		log.Debug("router rejected credentials", logger.String("username", s.auth.Username))
		return err
	default:
		log.Error("deposit failed", logger.Error(err))
		return err
	}
}

// GetMediaResource redirects to the first package of notification id.
func (s *Server) GetMediaResource(ctx context.Context, id, accept string) (resp *MediaResourceResponse, err error) {
	defer s.observe(metrics.OpGetMediaResource, time.Now(), &err)
	s.log.Info("media resource requested",
		logger.String("notification_id", id),
		logger.String("accept", accept))

	n, err := s.resolve(ctx, id)
	if err != nil {
		return nil, err
	}

	packages := n.URLs(jper.LinkTypePackage)
	if len(packages) == 0 {
		return nil, fmt.Errorf("%w: no package for notification %s", ErrNotFound, id)
	}

	s.log.Debug("redirecting to media resource", logger.String("url", logger.RedactSensitiveData(packages[0])))
	return &MediaResourceResponse{Redirect: true, URL: packages[0]}, nil
}

// GetContainer returns the receipt when an entry is asked for and the statement
// otherwise. A nil body with a nil error means the type cannot be served.
func (s *Server) GetContainer(ctx context.Context, id, accept string) (body []byte, contentType string, err error) {
	defer s.observe(metrics.OpGetContainer, time.Now(), &err)
	s.log.Info("container requested",
		logger.String("notification_id", id),
		logger.String("accept", accept))

	if accept == MimeAtomEntry {
		body, err := s.receipt(ctx, id)
		if err != nil {
			return nil, "", err
		}
		return body, MimeAtomEntry, nil
	}

	if accept == "" {
		accept = MimeAtomFeed
	}
	body, err = s.statement(ctx, id, accept)
	if err != nil || body == nil {
		return nil, "", err
	}
	return body, accept, nil
}

// receipt is the deposit receipt of an existing notification.
func (s *Server) receipt(ctx context.Context, id string) ([]byte, error) {
	n, err := s.resolve(ctx, id)
	if err != nil {
		return nil, err
	}

	treatment := TreatmentAccepted
	if n.Routed() {
		treatment = TreatmentRouted
	}
	noteID := n.ID
	if noteID == "" {
		noteID = id
	}
	return s.translator.BuildReceipt(noteID, n.PackagingFormat(), treatment).Serialise()
}

// GetStatement returns the statement of notification id in mimeType, the Atom
// feed by default. A nil body with a nil error means mimeType is unsupported.
func (s *Server) GetStatement(ctx context.Context, id, mimeType string) (body []byte, err error) {
	defer s.observe(metrics.OpGetStatement, time.Now(), &err)
	if mimeType == "" {
		mimeType = MimeAtomFeed
	}
	s.log.Info("statement requested",
		logger.String("notification_id", id),
		logger.String("mime_type", mimeType))

	return s.statement(ctx, id, mimeType)
}

func (s *Server) statement(ctx context.Context, id, mimeType string) ([]byte, error) {
	n, err := s.resolve(ctx, id)
	if err != nil {
		return nil, err
	}

	st := s.translator.BuildStatement(n, id, s.auth.Username, s.auth.OnBehalfOf)
	body, ok, err := st.Serialise(mimeType)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.log.Debug("statement type not supported", logger.String("mime_type", mimeType))
		return nil, nil
	}
	return body, nil
}

// ErrorDocument renders err as a SWORD error document.
func (s *Server) ErrorDocument(err *SwordError) ([]byte, error) {
	return s.translator.BuildError(err).Serialise()
}

// ListCollection is not supported by the router.
func (s *Server) ListCollection(_ context.Context, _ string) ([]byte, error) {
	return nil, s.unsupported("list_collection")
}

// Replace is not supported by the router.
func (s *Server) Replace(_ context.Context, _ string, _ *DepositRequest) (*DepositResponse, error) {
	return nil, s.unsupported("replace")
}

// AddContent is not supported by the router.
func (s *Server) AddContent(_ context.Context, _ string, _ *DepositRequest) (*DepositResponse, error) {
	return nil, s.unsupported("add_content")
}

// DepositExisting is not supported by the router.
func (s *Server) DepositExisting(_ context.Context, _ string, _ *DepositRequest) (*DepositResponse, error) {
	return nil, s.unsupported("deposit_existing")
}

// DeleteContent is not supported by the router.
func (s *Server) DeleteContent(_ context.Context, _ string) error {
	return s.unsupported("delete_content")
}

// DeleteContainer is not supported by the router.
func (s *Server) DeleteContainer(_ context.Context, _ string) error {
	return s.unsupported("delete_container")
}

func (s *Server) unsupported(operation string) error {
	s.metrics.RecordOperation(metrics.OpUnsupported, metrics.OutcomeNotImplemented, 0)
	s.log.Debug("unsupported operation requested", logger.String("operation", operation))
	return fmt.Errorf("%w: %s", ErrNotImplemented, operation)
}

func (s *Server) observe(operation string, start time.Time, errp *error) {
	s.metrics.RecordOperation(operation, outcome(*errp), time.Since(start))
}

func outcome(err error) string {
	switch StatusCode(err) {
	case http.StatusOK:
		return metrics.OutcomeSuccess
	case http.StatusBadRequest:
		return metrics.OutcomeBadRequest
	case http.StatusUnauthorized:
		return metrics.OutcomeUnauthorized
	case http.StatusNotFound:
		return metrics.OutcomeNotFound
	case http.StatusNotImplemented:
		return metrics.OutcomeNotImplemented
	default:
		return metrics.OutcomeError
	}
}
