package wizard

import (
	"time"

	"github.com/google/uuid"
)

// Step marks how far a listing wizard has progressed
type Step string

const (
	StepAwaitingCategory Step = "awaiting_category"
	StepAwaitingTitle    Step = "awaiting_title"
	StepAwaitingWish     Step = "awaiting_wish"
	StepCommitting       Step = "committing"
	StepCompleted        Step = "completed"
	StepCancelled        Step = "cancelled"
	StepFailed           Step = "failed"
)

// rank orders steps; a session may only move to a step of equal or higher rank.
// All terminal steps share the top rank.
func (s Step) rank() int {
	switch s {
	case StepAwaitingCategory:
		return 1
	case StepAwaitingTitle:
		return 2
	case StepAwaitingWish:
		return 3
	case StepCommitting:
		return 4
	case StepCompleted, StepCancelled, StepFailed:
		return 5
	default:
		return 0
	}
}

// IsValid reports whether s is a known step
func (s Step) IsValid() bool {
	return s.rank() > 0
}

// IsTerminal reports whether the session is finished and should be discarded
func (s Step) IsTerminal() bool {
	return s == StepCompleted || s == StepCancelled || s == StepFailed
}

// CategoryOption is a category offered to the user at the first step
type CategoryOption struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Session is the per-user state of an in-progress listing.
// It is keyed by the sender's external id and lives only in the session store.
type Session struct {
	ExternalID   string           `json:"external_id"`
	Handle       string           `json:"handle,omitempty"`
	Step         Step             `json:"step"`
	Categories   []CategoryOption `json:"categories"`
	CategoryID   uuid.UUID        `json:"category_id"`
	CategoryName string           `json:"category_name,omitempty"`
	Title        string           `json:"title,omitempty"`
	Wish         string           `json:"wish,omitempty"`
	StartedAt    time.Time        `json:"started_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// Draft is the data a completed wizard commits as a product
type Draft struct {
	ExternalID   string
	Handle       string
	CategoryID   uuid.UUID
	CategoryName string
	Title        string
	Wish         string
}

func (s Session) draft() Draft {
	return Draft{
		ExternalID:   s.ExternalID,
		Handle:       s.Handle,
		CategoryID:   s.CategoryID,
		CategoryName: s.CategoryName,
		Title:        s.Title,
		Wish:         s.Wish,
	}
}

func (s Session) findCategory(raw string) (CategoryOption, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return CategoryOption{}, false
	}
	for _, c := range s.Categories {
		if c.ID == id {
			return c, true
		}
	}
	return CategoryOption{}, false
}
