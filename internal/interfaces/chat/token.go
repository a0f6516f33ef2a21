package chat

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/tradepost/backend/internal/domain/shared"
)

// Action names the operation a callback token asks for
type Action string

const (
	ActionStart            Action = "start"
	ActionAddProduct       Action = "add_product"
	ActionCancel           Action = "cancel"
	ActionSelectCategory   Action = "select_category"
	ActionBrowseCategories Action = "browse_categories"
	ActionBrowseCategory   Action = "browse_category"
	ActionViewMyProducts   Action = "view_my_products"
	ActionPageProducts     Action = "page_products"
)

// Token is a decoded callback token
type Token struct {
	Action Action
	// CategoryID is set for select_category and browse_category. It is kept
	// raw for select_category so the wizard can judge it.
	CategoryID string
	// Page is set for browse_category and page_products
	Page int
}

// String encodes the token in its wire form
func (t Token) String() string {
	switch t.Action {
	case ActionSelectCategory:
		return fmt.Sprintf("%s:%s", t.Action, t.CategoryID)
	case ActionBrowseCategory:
		return fmt.Sprintf("%s:%s:%d", t.Action, t.CategoryID, t.Page)
	case ActionPageProducts:
		return fmt.Sprintf("%s:%d", t.Action, t.Page)
	default:
		return string(t.Action)
	}
}

// SelectCategoryToken picks a category in the listing wizard
func SelectCategoryToken(id uuid.UUID) string {
	return Token{Action: ActionSelectCategory, CategoryID: id.String()}.String()
}

// BrowseCategoryToken opens page n of a category
func BrowseCategoryToken(id uuid.UUID, n int) string {
	return Token{Action: ActionBrowseCategory, CategoryID: id.String(), Page: n}.String()
}

// BrowseCategoryPrefix is the navigation prefix for pages of a category
func BrowseCategoryPrefix(id uuid.UUID) string {
	return fmt.Sprintf("%s:%s", ActionBrowseCategory, id)
}

func invalidToken(raw string) error {
	return shared.NewValidationError(shared.CodeInvalidInput, fmt.Sprintf("Unknown action %q", raw))
}

// ParseToken decodes a callback token
func ParseToken(raw string) (Token, error) {
	parts := strings.Split(raw, ":")
	action := Action(parts[0])

	switch action {
	case ActionStart, ActionAddProduct, ActionCancel, ActionBrowseCategories, ActionViewMyProducts:
		if len(parts) != 1 {
			return Token{}, invalidToken(raw)
		}
		return Token{Action: action}, nil

	case ActionSelectCategory:
		if len(parts) != 2 {
			return Token{}, invalidToken(raw)
		}
		return Token{Action: action, CategoryID: parts[1]}, nil

	case ActionBrowseCategory:
		if len(parts) != 3 {
			return Token{}, invalidToken(raw)
		}
		if _, err := uuid.Parse(parts[1]); err != nil {
			return Token{}, invalidToken(raw)
		}
		n, err := strconv.Atoi(parts[2])
		if err != nil {
			return Token{}, invalidToken(raw)
		}
		return Token{Action: action, CategoryID: parts[1], Page: n}, nil

	case ActionPageProducts:
		if len(parts) != 2 {
			return Token{}, invalidToken(raw)
		}
		n, err := strconv.Atoi(parts[1])
		if err != nil {
			return Token{}, invalidToken(raw)
		}
		return Token{Action: action, Page: n}, nil
	}

	return Token{}, invalidToken(raw)
}
