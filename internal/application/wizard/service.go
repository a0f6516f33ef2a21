// Package wizard runs listing wizards against storage: it loads and saves
// sessions, carries out commit effects and publishes the resulting events.
package wizard

import (
	"context"
	"errors"
	"time"

	"github.com/tradepost/backend/internal/domain/catalog"
	"github.com/tradepost/backend/internal/domain/identity"
	"github.com/tradepost/backend/internal/domain/shared"
	"github.com/tradepost/backend/internal/domain/wizard"
	"go.uber.org/zap"
)

// UserEnsurer binds a sender to a stored user
type UserEnsurer interface {
	EnsureUser(ctx context.Context, externalID, handle string) (*identity.User, error)
}

// Outcome is what one wizard step produced
type Outcome struct {
	// Effects are the prompts and notices to show, in order. Commit effects
	// have already been carried out.
	Effects []wizard.Effect
	// Session is the state after the step
	Session wizard.Session
	// Product is set when the step listed a product
	Product *catalog.Product
	// Err is why a commit failed, when it did
	Err error
}

// sessionCleanupTimeout bounds the delete of a finished session
const sessionCleanupTimeout = 3 * time.Second

// Service drives listing wizards
type Service struct {
	sessions   wizard.SessionStore
	categories catalog.CategoryRepository
	products   catalog.ProductRepository
	users      UserEnsurer
	events     shared.EventPublisher
	logger     *zap.Logger
	now        func() time.Time
}

// NewService creates a new wizard Service. events may be nil.
func NewService(
	sessions wizard.SessionStore,
	categories catalog.CategoryRepository,
	products catalog.ProductRepository,
	users UserEnsurer,
	events shared.EventPublisher,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		sessions:   sessions,
		categories: categories,
		products:   products,
		users:      users,
		events:     events,
		logger:     logger,
		now:        time.Now,
	}
}

// Start opens a wizard for the sender, replacing any session in progress
func (s *Service) Start(ctx context.Context, externalID, handle string) (*Outcome, error) {
	cats, err := s.categories.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	options := make([]wizard.CategoryOption, len(cats))
	for i, c := range cats {
		options[i] = wizard.CategoryOption{ID: c.ID, Name: c.Name}
	}

	session, effects, err := wizard.Start(externalID, handle, options, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Put(ctx, &session); err != nil {
		return nil, err
	}

	s.logger.Debug("wizard started", zap.String("external_id", externalID), zap.Int("categories", len(options)))
	return &Outcome{Effects: effects, Session: session}, nil
}

// Active reports whether the sender has a wizard in progress
func (s *Service) Active(ctx context.Context, externalID string) (bool, error) {
	_, err := s.sessions.Get(ctx, externalID)
	if errors.Is(err, shared.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Handle applies one input to the sender's wizard. It returns
// shared.ErrNotFound when no wizard is in progress. A failed commit is not an
// error here: the outcome carries the failure notice and the session is gone.
func (s *Service) Handle(ctx context.Context, externalID string, in wizard.Input) (*Outcome, error) {
	session, err := s.sessions.Get(ctx, externalID)
	if err != nil {
		return nil, err
	}

	next, effects, err := wizard.Transition(*session, in)
	if err != nil {
		return nil, err
	}

	out := &Outcome{}
	for _, eff := range effects {
		commit, ok := eff.(wizard.Commit)
		if !ok {
			out.Effects = append(out.Effects, eff)
			continue
		}

		product, commitErr := s.commit(ctx, commit.Draft)
		if errors.Is(commitErr, shared.ErrNotFound) {
			s.logger.Warn("listing category no longer exists",
				zap.String("external_id", externalID),
				zap.String("category_id", commit.Draft.CategoryID.String()),
			)
		} else if commitErr != nil {
			s.logger.Error("failed to list product",
				zap.String("external_id", externalID),
				zap.String("category_id", commit.Draft.CategoryID.String()),
				zap.Error(commitErr),
			)
		}
		out.Err = commitErr
		var resultEffects []wizard.Effect
		next, resultEffects, err = wizard.Transition(next, wizard.CommitResult{Err: commitErr})
		if err != nil {
			return nil, err
		}
		out.Effects = append(out.Effects, resultEffects...)
		out.Product = product
	}
	next.UpdatedAt = s.now()
	out.Session = next

	if next.Step.IsTerminal() {
		// The commit may have used up the event deadline; the session must
		// still go so a finished draft is never committed twice.
		delCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sessionCleanupTimeout)
		defer cancel()
		if err := s.sessions.Delete(delCtx, externalID); err != nil {
			s.logger.Warn("failed to delete finished wizard session",
				zap.String("external_id", externalID),
				zap.String("step", string(next.Step)),
				zap.Error(err),
			)
		}
		return out, nil
	}

	if err := s.sessions.Put(ctx, &next); err != nil {
		return nil, err
	}
	return out, nil
}

// Cancel abandons the sender's wizard. Returns shared.ErrNotFound when there is none.
func (s *Service) Cancel(ctx context.Context, externalID string) (*Outcome, error) {
	return s.Handle(ctx, externalID, wizard.Cancel{})
}

// commit stores the draft as a product owned by the draft's sender. A
// category removed since the wizard offered it is shared.ErrNotFound.
func (s *Service) commit(ctx context.Context, d wizard.Draft) (*catalog.Product, error) {
	if _, err := s.categories.FindByID(ctx, d.CategoryID); err != nil {
		return nil, err
	}

	user, err := s.users.EnsureUser(ctx, d.ExternalID, d.Handle)
	if err != nil {
		return nil, err
	}

	product, err := catalog.NewProduct(d.Title, d.Wish, user.ID, d.CategoryID)
	if err != nil {
		return nil, err
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}
	product.Category = &catalog.Category{ID: d.CategoryID, Name: d.CategoryName}

	s.publish(ctx, product.GetDomainEvents())
	product.ClearDomainEvents()

	s.logger.Info("product listed",
		zap.String("product_id", product.ID.String()),
		zap.String("external_id", d.ExternalID),
		zap.String("category", d.CategoryName),
	)
	return product, nil
}

func (s *Service) publish(ctx context.Context, events []shared.DomainEvent) {
	if s.events == nil || len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish product events", zap.Error(err))
	}
}
