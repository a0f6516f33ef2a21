package listing

import (
	"fmt"
	"strings"

	"github.com/tradepost/backend/internal/domain/catalog"
)

// DateLayout is how listing dates are shown
const DateLayout = "2006-01-02"

const (
	prevLabel = "◀️ Previous"
	nextLabel = "Next ▶️"
)

// FormatProduct renders a product as labelled lines in a fixed order.
// Lines whose value is empty are left out.
func FormatProduct(p *catalog.Product) string {
	var listed string
	if at := p.ListedAt(); at != nil {
		listed = at.Format(DateLayout)
	}

	fields := []struct{ label, value string }{
		{"🏷 Title: ", p.Title},
		{"📁 Category: ", p.CategoryName()},
		{"💭 Wanted: ", p.WantedTrades},
		{"📅 Listed: ", listed},
	}

	lines := make([]string, 0, len(fields))
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		lines = append(lines, f.label+f.value)
	}
	return strings.Join(lines, "\n")
}

// FormatItems renders every product on the page separated by blank lines
func FormatItems(items []catalog.Product) string {
	blocks := make([]string, len(items))
	for i := range items {
		blocks[i] = FormatProduct(&items[i])
	}
	return strings.Join(blocks, "\n\n")
}

// NavLink is a navigation control pointing at another page
type NavLink struct {
	Label string
	Token string
}

// Navigation returns the previous/next controls for the page, in that order.
// Tokens are "<prefix>:<page>". The result is empty when there is nowhere to go.
func (p *Page) Navigation(prefix string) []NavLink {
	var links []NavLink
	if p.HasPrev {
		links = append(links, NavLink{Label: prevLabel, Token: fmt.Sprintf("%s:%d", prefix, p.Number-1)})
	}
	if p.HasNext {
		links = append(links, NavLink{Label: nextLabel, Token: fmt.Sprintf("%s:%d", prefix, p.Number+1)})
	}
	return links
}
