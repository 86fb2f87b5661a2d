// Package registration performs the two-phase registration write: apply
// locally to the catalog, confirm with the durable store, and roll the local
// change back if confirmation fails.
package registration

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/campus-connect/internal/apperror"
	"github.com/Shivanand-hulikatti/campus-connect/internal/catalog"
	"github.com/Shivanand-hulikatti/campus-connect/internal/durable"
	"github.com/Shivanand-hulikatti/campus-connect/internal/eligibility"
	"github.com/Shivanand-hulikatti/campus-connect/internal/events"
	"github.com/Shivanand-hulikatti/campus-connect/internal/logger"
	"github.com/Shivanand-hulikatti/campus-connect/internal/metrics"
	"github.com/Shivanand-hulikatti/campus-connect/internal/model"
)

const opInsert = "insert registration"

// Catalog is the part of catalog.Store the writer mutates.
type Catalog interface {
	Event(id string) (model.Event, bool)
	ApplyRegistration(reg model.Registration) error
	RevertRegistration(regID string) bool
}

var _ Catalog = (*catalog.Store)(nil)

// Writer creates registrations.
type Writer struct {
	catalog Catalog
	store   durable.Store
	pub     events.Publisher
	log     *logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
	newID   func() string
}

// Option configures a Writer.
type Option func(*Writer)

func WithClock(now func() time.Time) Option { return func(w *Writer) { w.now = now } }

func WithIDFunc(fn func() string) Option { return func(w *Writer) { w.newID = fn } }

func WithPublisher(p events.Publisher) Option { return func(w *Writer) { w.pub = p } }

func WithLogger(l *logger.Logger) Option { return func(w *Writer) { w.log = l } }

func WithMetrics(m *metrics.Metrics) Option { return func(w *Writer) { w.metrics = m } }

// NewWriter constructs a Writer over the catalog and durable store.
func NewWriter(cat Catalog, store durable.Store, opts ...Option) *Writer {
	w := &Writer{
		catalog: cat,
		store:   store,
		pub:     &events.NoopPublisher{},
		log:     logger.Nop(),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Register records userID's registration for eventID.
//
// The caller is expected to have evaluated eligibility. Register still
// refuses to exceed the event's capacity. When the durable store rejects the
// write, the local registration and attendee increment are undone and a
// RemoteError is returned; no partial success is ever reported.
func (w *Writer) Register(ctx context.Context, eventID, userID string, info model.AttendeeInfo) (model.Registration, error) {
	reg := model.Registration{
		ID:               w.newID(),
		EventID:          eventID,
		UserID:           userID,
		RegistrationDate: w.now(),
		AttendeeInfo:     info,
	}
	log := w.log.WithContext(ctx).WithFields(
		zap.String("event_id", eventID),
		zap.String("registration_id", reg.ID),
	)

	// Phase 1: local apply.
	if err := w.catalog.ApplyRegistration(reg); err != nil {
		switch {
		case errors.Is(err, catalog.ErrEventNotFound):
			return model.Registration{}, apperror.NotFound("event", eventID)
		case errors.Is(err, catalog.ErrEventFull):
			return model.Registration{}, &apperror.IneligibleError{Outcome: eligibility.EventFull}
		default:
			return model.Registration{}, err
		}
	}

	// Phase 2: remote confirm.
	if err := w.store.InsertRegistration(ctx, durable.RecordFromRegistration(reg)); err != nil {
		// Phase 3: compensate.
		reverted := w.catalog.RevertRegistration(reg.ID)
		w.metrics.RemoteFailure(opInsert)
		log.Error("durable insert failed, local registration rolled back",
			zap.Bool("reverted", reverted),
			zap.Error(err),
		)
		if !errors.Is(err, apperror.ErrRemote) {
			err = apperror.Remote(opInsert, err)
		}
		return model.Registration{}, err
	}

	w.announce(ctx, log, reg)
	return reg, nil
}

// announce publishes registration.created. Failures are logged only.
func (w *Writer) announce(ctx context.Context, log *logger.Logger, reg model.Registration) {
	msg := events.RegistrationCreated{
		RegistrationID: reg.ID,
		EventID:        reg.EventID,
		UserID:         reg.UserID,
		RegisteredAt:   reg.RegistrationDate,
	}
	if e, ok := w.catalog.Event(reg.EventID); ok {
		msg.Attendees = e.CurrentAttendees
	}
	if err := w.pub.Publish(ctx, events.TopicRegistrationCreated, msg); err != nil {
		log.Warn("publish registration event failed", zap.Error(err))
	}
}
