package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tradepost/backend/internal/application/listing"
	appwizard "github.com/tradepost/backend/internal/application/wizard"
	"github.com/tradepost/backend/internal/domain/catalog"
	"github.com/tradepost/backend/internal/domain/identity"
	"github.com/tradepost/backend/internal/domain/shared"
	"github.com/tradepost/backend/internal/domain/wizard"
	"github.com/tradepost/backend/internal/infrastructure/logger"
	"github.com/tradepost/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// UserBinder binds a sender to a stored user
type UserBinder interface {
	EnsureUser(ctx context.Context, externalID, handle string) (*identity.User, error)
}

// WizardRunner drives listing wizards
type WizardRunner interface {
	Start(ctx context.Context, externalID, handle string) (*appwizard.Outcome, error)
	Active(ctx context.Context, externalID string) (bool, error)
	Handle(ctx context.Context, externalID string, in wizard.Input) (*appwizard.Outcome, error)
	Cancel(ctx context.Context, externalID string) (*appwizard.Outcome, error)
}

// Lister pages through listings
type Lister interface {
	Page(ctx context.Context, filter listing.Filter, n int) (*listing.Page, error)
	Categories(ctx context.Context) ([]catalog.CategoryWithCount, error)
}

// Limiter decides whether a sender may send another event
type Limiter interface {
	Allow(sender string) bool
}

// Observer is told how each event ended and how long it took
type Observer interface {
	ObserveEvent(ctx context.Context, kind, outcome string, elapsed time.Duration)
}

// Event outcomes reported to the Observer and set on the dispatch span
const (
	OutcomeOK          = "ok"
	OutcomeIgnored     = "ignored"
	OutcomeRateLimited = "rate_limited"
	OutcomeRejected    = "rejected"
	OutcomeFailed      = "failed"
)

// Dispatcher routes inbound events to the wizard or to the stateless
// browsing commands and always produces a reply.
type Dispatcher struct {
	binder   UserBinder
	wizard   WizardRunner
	lister   Lister
	locker   *KeyedLocker
	limiter  Limiter
	observer Observer
	timeout  time.Duration
	logger   *zap.Logger
}

// DispatcherOption configures a Dispatcher
type DispatcherOption func(*Dispatcher)

// WithLimiter sets a per-sender rate limiter
func WithLimiter(l Limiter) DispatcherOption {
	return func(d *Dispatcher) {
		d.limiter = l
	}
}

// WithObserver reports every handled event to o
func WithObserver(o Observer) DispatcherOption {
	return func(d *Dispatcher) {
		d.observer = o
	}
}

// WithEventTimeout bounds the work done for one event
func WithEventTimeout(timeout time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		d.timeout = timeout
	}
}

// WithDispatcherLogger sets the logger
func WithDispatcherLogger(l *zap.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = l
	}
}

// NewDispatcher creates a new Dispatcher
func NewDispatcher(binder UserBinder, wizard WizardRunner, lister Lister, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		binder: binder,
		wizard: wizard,
		lister: lister,
		locker: NewKeyedLocker(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch handles one inbound event. Events from the same sender are handled
// one at a time, in arrival order at the lock.
func (d *Dispatcher) Dispatch(ctx context.Context, in Inbound) (reply Reply) {
	started := time.Now()
	externalID := in.Sender.ExternalID
	kind := eventClass(in.Event)
	ctx = logger.WithSender(ctx, externalID)
	log := logger.WithLogger(ctx, d.logger)

	ctx, span := telemetry.StartSpan(ctx, "chat.dispatch",
		telemetry.WithAttribute(telemetry.AttrEventKind, kind),
		telemetry.WithAttribute(telemetry.AttrSender, externalID),
	)
	outcome := OutcomeOK
	defer func() {
		if r := recover(); r != nil {
			log.Error("panic while handling chat event", zap.Any("panic", r), zap.String("event", eventKind(in.Event)))
			telemetry.RecordError(span, fmt.Errorf("panic: %v", r))
			outcome = OutcomeFailed
			reply = textReply(textGenericFailure)
		}
		telemetry.SetAttributes(span, telemetry.AttrOutcome, outcome)
		span.End()
		if d.observer != nil {
			d.observer.ObserveEvent(ctx, kind, outcome, time.Since(started))
		}
	}()

	if externalID == "" || in.Event == nil {
		outcome = OutcomeIgnored
		return textReply(textHint)
	}
	if d.limiter != nil && !d.limiter.Allow(externalID) {
		log.Debug("chat event rate limited")
		outcome = OutcomeRateLimited
		return textReply(textSlowDown)
	}

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	// Listing flows key on the external id, so a failed bind is not fatal here.
	if _, err := d.binder.EnsureUser(ctx, externalID, in.Sender.Handle); err != nil {
		log.Warn("failed to bind chat user", zap.Error(err))
		telemetry.AddEvent(span, "bind_failed", "error", err.Error())
	}

	unlock := d.locker.Lock(externalID)
	defer unlock()

	var err error
	telemetry.WithProfilingLabels(ctx, map[string]string{"chat_event": kind}, func(ctx context.Context) {
		reply, err = d.route(ctx, in)
	})
	if err != nil {
		outcome = failureOutcome(err)
		if outcome == OutcomeFailed {
			telemetry.RecordError(span, err)
		}
		return d.errorReply(log, in, err)
	}
	return reply
}

func (d *Dispatcher) route(ctx context.Context, in Inbound) (Reply, error) {
	sender := in.Sender
	switch ev := in.Event.(type) {
	case Command:
		return d.onCommand(ctx, sender, ev)
	case Text:
		return d.onText(ctx, sender, ev)
	case Callback:
		return d.onCallback(ctx, sender, ev)
	}
	return textReply(textHint), nil
}

func (d *Dispatcher) onCommand(ctx context.Context, sender Sender, cmd Command) (Reply, error) {
	switch strings.ToLower(strings.TrimPrefix(cmd.Name, "/")) {
	case "start", "menu":
		return welcomeReply(), nil
	case "addproduct":
		return d.startWizard(ctx, sender)
	case "cancel":
		return d.cancelWizard(ctx, sender)
	case "categories", "browse":
		return d.browseCategories(ctx)
	case "myproducts":
		return d.myProducts(ctx, sender, 1)
	}
	return textReply(textHint), nil
}

func (d *Dispatcher) onText(ctx context.Context, sender Sender, text Text) (Reply, error) {
	out, err := d.wizard.Handle(ctx, sender.ExternalID, wizard.TextInput{Body: text.Body})
	if errors.Is(err, shared.ErrNotFound) {
		return textReply(textHint), nil
	}
	if err != nil {
		return Reply{}, err
	}
	return outcomeReply(out), nil
}

func (d *Dispatcher) onCallback(ctx context.Context, sender Sender, cb Callback) (Reply, error) {
	token, err := ParseToken(cb.Token)
	if err != nil {
		return textReply(textUnknownAction, mainMenuRow()), nil
	}

	switch token.Action {
	case ActionStart:
		return welcomeReply(), nil
	case ActionAddProduct:
		return d.startWizard(ctx, sender)
	case ActionCancel:
		return d.cancelWizard(ctx, sender)
	case ActionSelectCategory:
		out, err := d.wizard.Handle(ctx, sender.ExternalID, wizard.SelectCategory{CategoryID: token.CategoryID})
		if errors.Is(err, shared.ErrNotFound) {
			return textReply(textUnknownAction, mainMenuRow()), nil
		}
		if err != nil {
			return Reply{}, err
		}
		return outcomeReply(out), nil
	case ActionBrowseCategories:
		return d.browseCategories(ctx)
	case ActionBrowseCategory:
		return d.categoryPage(ctx, token.CategoryID, token.Page)
	case ActionViewMyProducts:
		return d.myProducts(ctx, sender, 1)
	case ActionPageProducts:
		return d.myProducts(ctx, sender, token.Page)
	}
	return textReply(textUnknownAction, mainMenuRow()), nil
}

func (d *Dispatcher) startWizard(ctx context.Context, sender Sender) (Reply, error) {
	out, err := d.wizard.Start(ctx, sender.ExternalID, sender.Handle)
	if errors.Is(err, wizard.ErrNoCategories) {
		return textReply(textNoCategories, mainMenuRow()), nil
	}
	if err != nil {
		return Reply{}, err
	}
	return wizardReply(out.Effects, nil), nil
}

func (d *Dispatcher) cancelWizard(ctx context.Context, sender Sender) (Reply, error) {
	out, err := d.wizard.Cancel(ctx, sender.ExternalID)
	if errors.Is(err, shared.ErrNotFound) {
		return textReply(textNothingToCancel, mainMenuRow()), nil
	}
	if err != nil {
		return Reply{}, err
	}
	return wizardReply(out.Effects, nil), nil
}

func (d *Dispatcher) browseCategories(ctx context.Context) (Reply, error) {
	cats, err := d.lister.Categories(ctx)
	if err != nil {
		return Reply{}, err
	}
	return categoriesReply(cats), nil
}

func (d *Dispatcher) categoryPage(ctx context.Context, rawID string, n int) (Reply, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return textReply(textUnknownAction, backToCategoriesRow()), nil
	}
	page, err := d.lister.Page(ctx, listing.ByCategory(id), n)
	if err != nil {
		return Reply{}, err
	}
	return categoryPageReply(page, BrowseCategoryPrefix(id)), nil
}

func (d *Dispatcher) myProducts(ctx context.Context, sender Sender, n int) (Reply, error) {
	page, err := d.lister.Page(ctx, listing.ByOwner(sender.ExternalID), n)
	if err != nil {
		return Reply{}, err
	}
	return myProductsReply(page), nil
}

func (d *Dispatcher) errorReply(log *logger.ContextLogger, in Inbound, err error) Reply {
	var de *shared.DomainError
	if errors.As(err, &de) {
		switch de.Code {
		case shared.CodeInvalidPage:
			return textReply(textInvalidPage, mainMenuRow())
		case shared.CodeInvalidInput, shared.CodeInvalidState:
			log.Debug("chat event rejected", zap.String("code", de.Code), zap.String("event", eventKind(in.Event)))
			return textReply(textUnknownAction, mainMenuRow())
		}
	}
	log.Error("failed to handle chat event", zap.String("event", eventKind(in.Event)), zap.Error(err))
	return textReply(textGenericFailure, mainMenuRow())
}

func failureOutcome(err error) string {
	var de *shared.DomainError
	if errors.As(err, &de) {
		switch de.Code {
		case shared.CodeInvalidPage, shared.CodeInvalidInput, shared.CodeInvalidState:
			return OutcomeRejected
		}
	}
	return OutcomeFailed
}

// eventClass is the low-cardinality event kind used for metrics and labels
func eventClass(ev Event) string {
	switch ev.(type) {
	case Command:
		return "command"
	case Text:
		return "text"
	case Callback:
		return "callback"
	}
	return "unknown"
}

func eventKind(ev Event) string {
	switch e := ev.(type) {
	case Command:
		return "command:" + e.Name
	case Text:
		return "text"
	case Callback:
		return fmt.Sprintf("callback:%s", e.Token)
	}
	return "unknown"
}
