package wizard

import (
	"fmt"
	"time"

	"github.com/tradepost/backend/internal/domain/shared"
)

// ErrNoCategories is returned by Start when there is nothing to list under
var ErrNoCategories = shared.NewDomainError("NO_CATEGORIES", "No categories are available")

// Start opens a new session at the category step. Any previous session for the
// same sender is replaced by the caller.
func Start(externalID, handle string, categories []CategoryOption, now time.Time) (Session, []Effect, error) {
	if len(categories) == 0 {
		return Session{}, nil, ErrNoCategories
	}
	offered := make([]CategoryOption, len(categories))
	copy(offered, categories)

	s := Session{
		ExternalID: externalID,
		Handle:     handle,
		Step:       StepAwaitingCategory,
		Categories: offered,
		StartedAt:  now,
		UpdatedAt:  now,
	}
	return s, []Effect{Prompt{Kind: PromptChooseCategory, Categories: offered}}, nil
}

// Transition applies one input to a session and returns the next session and
// the effects to carry out. It does no I/O. Inputs that do not fit the current
// step leave the session unchanged and re-prompt.
func Transition(s Session, in Input) (Session, []Effect, error) {
	if !s.Step.IsValid() {
		return s, nil, shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Unknown wizard step %q", s.Step))
	}
	if s.Step.IsTerminal() {
		return s, nil, shared.NewDomainError(shared.CodeInvalidState, "Wizard has already finished")
	}

	if _, ok := in.(Cancel); ok {
		if s.Step == StepCommitting {
			return s, nil, shared.NewDomainError(shared.CodeInvalidState, "Wizard is committing")
		}
		next, err := s.moveTo(StepCancelled)
		if err != nil {
			return s, nil, err
		}
		return next, []Effect{Notice{Kind: NoticeCancelled}}, nil
	}

	switch s.Step {
	case StepAwaitingCategory:
		return onCategory(s, in)
	case StepAwaitingTitle:
		return onTitle(s, in)
	case StepAwaitingWish:
		return onWish(s, in)
	default:
		return onCommitting(s, in)
	}
}

func onCategory(s Session, in Input) (Session, []Effect, error) {
	sel, ok := in.(SelectCategory)
	if !ok {
		return s, []Effect{Prompt{Kind: PromptInvalidCategory, Categories: s.Categories}}, nil
	}
	category, found := s.findCategory(sel.CategoryID)
	if !found {
		return s, []Effect{Prompt{Kind: PromptInvalidCategory, Categories: s.Categories}}, nil
	}

	next, err := s.moveTo(StepAwaitingTitle)
	if err != nil {
		return s, nil, err
	}
	next.CategoryID = category.ID
	next.CategoryName = category.Name
	return next, []Effect{Prompt{Kind: PromptTitle}}, nil
}

func onTitle(s Session, in Input) (Session, []Effect, error) {
	text, ok := in.(TextInput)
	if !ok || text.Body == "" {
		return s, []Effect{Prompt{Kind: PromptTitleAgain}}, nil
	}

	next, err := s.moveTo(StepAwaitingWish)
	if err != nil {
		return s, nil, err
	}
	next.Title = text.Body
	return next, []Effect{Prompt{Kind: PromptWish}}, nil
}

func onWish(s Session, in Input) (Session, []Effect, error) {
	text, ok := in.(TextInput)
	if !ok || text.Body == "" {
		return s, []Effect{Prompt{Kind: PromptWishAgain}}, nil
	}

	next, err := s.moveTo(StepCommitting)
	if err != nil {
		return s, nil, err
	}
	next.Wish = text.Body
	return next, []Effect{Commit{Draft: next.draft()}}, nil
}

func onCommitting(s Session, in Input) (Session, []Effect, error) {
	result, ok := in.(CommitResult)
	if !ok {
		return s, nil, shared.NewDomainError(shared.CodeInvalidState, "Wizard is committing")
	}
	if result.Err != nil {
		next, err := s.moveTo(StepFailed)
		if err != nil {
			return s, nil, err
		}
		return next, []Effect{Notice{Kind: NoticeFailed}}, nil
	}
	next, err := s.moveTo(StepCompleted)
	if err != nil {
		return s, nil, err
	}
	return next, []Effect{Notice{Kind: NoticeCompleted}}, nil
}

// moveTo returns a copy of s at step. Moving backwards is an error.
func (s Session) moveTo(step Step) (Session, error) {
	if step.rank() < s.Step.rank() {
		return s, shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Wizard cannot move from %s back to %s", s.Step, step))
	}
	s.Step = step
	return s, nil
}
