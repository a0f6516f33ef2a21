package chat

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tradepost/backend/internal/application/listing"
	appwizard "github.com/tradepost/backend/internal/application/wizard"
	"github.com/tradepost/backend/internal/domain/catalog"
	"github.com/tradepost/backend/internal/domain/shared"
	"github.com/tradepost/backend/internal/domain/wizard"
)

const (
	textWelcome          = "👋 Welcome to the Trading Bot!\n\nWhat would you like to do?"
	textChooseCategory   = "🛍 Select a category for your product:"
	textInvalidCategory  = "❌ Invalid category. Please try again."
	textAskTitle         = "📝 What is the title of your product?"
	textAskTitleAgain    = "📝 Please send the title of your product as a text message."
	textAskWish          = "🔄 What trades are you interested in?"
	textAskWishAgain     = "🔄 Please tell me, as a text message, what you would like in exchange."
	textProductAdded     = "✅ Product added successfully!\n\n"
	textAddFailed        = "❌ Error adding product. Please try again."
	textCategoryGone     = "❌ That category no longer exists. Please start again and pick another one."
	textCancelled        = "🚫 Product listing cancelled."
	textNothingToCancel  = "There is nothing to cancel."
	textBrowseCategories = "📂 Browse Categories:"
	textNoCategories     = "❌ No categories are available yet."
	textCategoryEmpty    = "❌ No products found in this category."
	textMyProducts       = "📋 Your Listed Products:\n\n"
	textNoMyProducts     = "❌ You haven't listed any products yet."
	textHint             = "🤔 I didn't understand that. Use /start to see what I can do."
	textUnknownAction    = "❌ That button is no longer valid."
	textInvalidPage      = "❌ That page does not exist."
	textPageGone         = "❌ That page no longer exists. The listing has fewer pages now."
	textGenericFailure   = "❌ Something went wrong. Please try again later."
	textSlowDown         = "⏳ You're sending messages too quickly. Please slow down."
)

func button(label string, action Action) Button {
	return Button{Label: label, Token: string(action)}
}

func row(buttons ...Button) []Button {
	return buttons
}

func mainMenuRow() []Button {
	return row(button("🏠 Main Menu", ActionStart))
}

func backToCategoriesRow() []Button {
	return row(button("◀️ Back to Categories", ActionBrowseCategories))
}

func addProductRow() []Button {
	return row(button("📦 Add New Product", ActionAddProduct))
}

func textReply(text string, keyboard ...[]Button) Reply {
	return Reply{Text: text, Keyboard: keyboard}
}

func welcomeReply() Reply {
	return textReply(textWelcome,
		row(button("📦 Add New Product", ActionAddProduct)),
		row(button("🔍 Browse Products", ActionBrowseCategories)),
		row(button("📋 My Products", ActionViewMyProducts)),
	)
}

func categoriesReply(cats []catalog.CategoryWithCount) Reply {
	if len(cats) == 0 {
		return textReply(textNoCategories, mainMenuRow())
	}
	keyboard := make([][]Button, 0, len(cats)+1)
	for _, c := range cats {
		keyboard = append(keyboard, row(Button{
			Label: fmt.Sprintf("📁 %s (%d)", c.Name, c.ProductCount),
			Token: BrowseCategoryToken(c.ID, 1),
		}))
	}
	keyboard = append(keyboard, mainMenuRow())
	return Reply{Text: textBrowseCategories, Keyboard: keyboard}
}

func navigationRows(links []listing.NavLink) [][]Button {
	if len(links) == 0 {
		return nil
	}
	nav := make([]Button, len(links))
	for i, l := range links {
		nav[i] = Button{Label: l.Label, Token: l.Token}
	}
	return [][]Button{nav}
}

// pageGoneReply answers a page past the end of a listing that still has
// items, e.g. a stale next button after products were traded
func pageGoneReply(page *listing.Page, prefix string, footer []Button) Reply {
	last := Button{
		Label: fmt.Sprintf("◀️ Page %d", page.TotalPages),
		Token: fmt.Sprintf("%s:%d", prefix, page.TotalPages),
	}
	return textReply(textPageGone, row(last), footer)
}

func categoryPageReply(page *listing.Page, prefix string) Reply {
	if page.NoResults {
		return textReply(textCategoryEmpty, backToCategoriesRow())
	}
	if len(page.Items) == 0 {
		return pageGoneReply(page, prefix, backToCategoriesRow())
	}
	text := fmt.Sprintf("📦 Products in %s:\n\n%s", page.Items[0].CategoryName(), listing.FormatItems(page.Items))
	keyboard := append(navigationRows(page.Navigation(prefix)), backToCategoriesRow())
	return Reply{Text: text, Keyboard: keyboard}
}

func myProductsReply(page *listing.Page) Reply {
	if page.NoResults {
		return textReply(textNoMyProducts, addProductRow())
	}
	if len(page.Items) == 0 {
		return pageGoneReply(page, string(ActionPageProducts), addProductRow())
	}
	text := textMyProducts + listing.FormatItems(page.Items)
	keyboard := append(navigationRows(page.Navigation(string(ActionPageProducts))), addProductRow())
	return Reply{Text: text, Keyboard: keyboard}
}

func categoryKeyboard(options []wizard.CategoryOption) [][]Button {
	keyboard := make([][]Button, 0, len(options)+1)
	for _, c := range options {
		keyboard = append(keyboard, row(Button{Label: "📁 " + c.Name, Token: SelectCategoryToken(c.ID)}))
	}
	return append(keyboard, row(button("✖️ Cancel", ActionCancel)))
}

// outcomeReply renders a wizard step, telling a vanished category apart from
// other commit failures
func outcomeReply(out *appwizard.Outcome) Reply {
	if errors.Is(out.Err, shared.ErrNotFound) {
		return textReply(textCategoryGone, row(button("📦 Try Again", ActionAddProduct)))
	}
	return wizardReply(out.Effects, out.Product)
}

// wizardReply renders the effects of one wizard step. Texts are joined in
// order; the keyboard of the last effect that has one is used.
func wizardReply(effects []wizard.Effect, product *catalog.Product) Reply {
	var (
		texts    []string
		keyboard [][]Button
	)
	for _, eff := range effects {
		r, ok := effectReply(eff, product)
		if !ok {
			continue
		}
		texts = append(texts, r.Text)
		if len(r.Keyboard) > 0 {
			keyboard = r.Keyboard
		}
	}
	if len(texts) == 0 {
		return textReply(textGenericFailure)
	}
	return Reply{Text: strings.Join(texts, "\n\n"), Keyboard: keyboard}
}

func effectReply(eff wizard.Effect, product *catalog.Product) (Reply, bool) {
	switch e := eff.(type) {
	case wizard.Prompt:
		switch e.Kind {
		case wizard.PromptChooseCategory:
			return Reply{Text: textChooseCategory, Keyboard: categoryKeyboard(e.Categories)}, true
		case wizard.PromptInvalidCategory:
			return Reply{Text: textInvalidCategory, Keyboard: categoryKeyboard(e.Categories)}, true
		case wizard.PromptTitle:
			return textReply(textAskTitle), true
		case wizard.PromptTitleAgain:
			return textReply(textAskTitleAgain), true
		case wizard.PromptWish:
			return textReply(textAskWish), true
		case wizard.PromptWishAgain:
			return textReply(textAskWishAgain), true
		}
	case wizard.Notice:
		switch e.Kind {
		case wizard.NoticeCompleted:
			details := ""
			if product != nil {
				details = listing.FormatProduct(product)
			}
			return textReply(textProductAdded+details,
				row(button("View My Products", ActionViewMyProducts)),
				row(button("Add Another Product", ActionAddProduct)),
			), true
		case wizard.NoticeCancelled:
			return textReply(textCancelled, mainMenuRow()), true
		case wizard.NoticeFailed:
			return textReply(textAddFailed, row(button("📦 Try Again", ActionAddProduct))), true
		}
	}
	return Reply{}, false
}
