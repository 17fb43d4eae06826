// ABOUTME: Product browser TUI component with search and category cycling
// ABOUTME: Shows the filtered catalog, a product detail pane, and add-to-cart

package productlist

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/markalston/storefront/cli/internal/catalog"
	"github.com/markalston/storefront/cli/internal/client"
	"github.com/markalston/storefront/cli/internal/tui/icons"
	"github.com/markalston/storefront/cli/internal/tui/styles"
)

type state int

const (
	stateList state = iota
	stateSearch
	stateDetail
)

// AddToCartMsg is sent when the user adds the highlighted product
type AddToCartMsg struct {
	Product client.Product
}

// CancelledMsg is sent when the user leaves the browser
type CancelledMsg struct{}

// ProductList is the catalog browser
type ProductList struct {
	products   []client.Product
	categories []client.Category
	filter     catalog.Filter
	visible    []client.Product
	catIdx     int // 0 is all categories, i+1 is categories[i]
	cursor     int
	state      state
	search     textinput.Model
	status     string
	err        string
	width      int
	height     int
}

var (
	errorStyle   = lipgloss.NewStyle().Foreground(styles.Danger)
	helpStyle    = lipgloss.NewStyle().Foreground(styles.Muted)
	statusStyle  = lipgloss.NewStyle().Foreground(styles.Secondary)
	dividerStyle = lipgloss.NewStyle().Foreground(styles.Surface)
)

// New creates a browser over products. categories should already be the
// visible set.
func New(products []client.Product, categories []client.Category) *ProductList {
	ti := textinput.New()
	ti.Placeholder = "search titles"
	ti.CharLimit = 64
	ti.Width = 40
	ti.Prompt = icons.Search.String() + " "

	pl := &ProductList{
		products:   products,
		categories: categories,
		search:     ti,
	}
	pl.applyFilter()
	return pl
}

// Init implements tea.Model
func (pl *ProductList) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (pl *ProductList) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		pl.width = msg.Width
		pl.height = msg.Height
		return pl, nil

	case tea.KeyMsg:
		pl.err = ""

		switch pl.state {
		case stateList:
			return pl.updateList(msg)
		case stateSearch:
			return pl.updateSearch(msg)
		case stateDetail:
			return pl.updateDetail(msg)
		}
	}

	return pl, nil
}

func (pl *ProductList) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if pl.cursor > 0 {
			pl.cursor--
		}
	case "down", "j":
		if pl.cursor < len(pl.visible)-1 {
			pl.cursor++
		}
	case "enter":
		if _, ok := pl.Current(); ok {
			pl.state = stateDetail
		}
	case "a":
		return pl, pl.addCurrent()
	case "/":
		pl.state = stateSearch
		pl.search.Focus()
		return pl, textinput.Blink
	case "c":
		pl.cycleCategory()
	case "esc", "b":
		return pl, func() tea.Msg { return CancelledMsg{} }
	}
	return pl, nil
}

func (pl *ProductList) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		pl.search.SetValue("")
		pl.search.Blur()
		pl.state = stateList
		pl.applyFilter()
		return pl, nil
	case "enter":
		pl.search.Blur()
		pl.state = stateList
		return pl, nil
	}

	var cmd tea.Cmd
	pl.search, cmd = pl.search.Update(msg)
	pl.applyFilter()
	return pl, cmd
}

func (pl *ProductList) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "a":
		return pl, pl.addCurrent()
	case "esc", "b":
		pl.state = stateList
	}
	return pl, nil
}

func (pl *ProductList) addCurrent() tea.Cmd {
	p, ok := pl.Current()
	if !ok {
		return nil
	}
	return func() tea.Msg { return AddToCartMsg{Product: p} }
}

func (pl *ProductList) cycleCategory() {
	pl.catIdx = (pl.catIdx + 1) % (len(pl.categories) + 1)
	pl.applyFilter()
}

func (pl *ProductList) applyFilter() {
	pl.filter.Search = pl.search.Value()
	pl.filter.CategoryID = 0
	if pl.catIdx > 0 {
		pl.filter.CategoryID = pl.categories[pl.catIdx-1].ID
	}
	pl.visible = pl.filter.Apply(pl.products)
	if pl.cursor >= len(pl.visible) {
		pl.cursor = max(0, len(pl.visible)-1)
	}
}

// Current returns the highlighted product
func (pl *ProductList) Current() (client.Product, bool) {
	if pl.cursor < 0 || pl.cursor >= len(pl.visible) {
		return client.Product{}, false
	}
	return pl.visible[pl.cursor], true
}

// Visible returns the products passing the current filter
func (pl *ProductList) Visible() []client.Product {
	return pl.visible
}

// SetStatus shows a one-line confirmation under the list
func (pl *ProductList) SetStatus(msg string) {
	pl.status = msg
}

// SetError sets an error message to display
func (pl *ProductList) SetError(msg string) {
	pl.err = msg
}

// categoryLabel names the active category filter
func (pl *ProductList) categoryLabel() string {
	if pl.catIdx == 0 {
		return "All"
	}
	return pl.categories[pl.catIdx-1].Name
}

// View implements tea.Model
func (pl *ProductList) View() string {
	var b strings.Builder

	if pl.state == stateDetail {
		b.WriteString(pl.viewDetail())
	} else {
		b.WriteString(pl.viewList())
	}

	if pl.status != "" {
		b.WriteString("\n")
		b.WriteString(statusStyle.Render(pl.status))
	}
	if pl.err != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("Error: " + pl.err))
	}
	return b.String()
}

func (pl *ProductList) viewList() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("Products"))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(fmt.Sprintf("%s %s   %d of %d", icons.Category.String(), pl.categoryLabel(), len(pl.visible), len(pl.products))))
	b.WriteString("\n")

	if pl.state == stateSearch || pl.search.Value() != "" {
		b.WriteString(pl.search.View())
		b.WriteString("\n")
	}

	dividerWidth := min(40, pl.width-4)
	if dividerWidth < 1 {
		dividerWidth = 40
	}
	b.WriteString(dividerStyle.Render(strings.Repeat("─", dividerWidth)))
	b.WriteString("\n")

	if len(pl.visible) == 0 {
		b.WriteString(helpStyle.Render("No products match."))
		b.WriteString("\n")
		return b.String()
	}

	start, end := pl.window()
	for i := start; i < end; i++ {
		p := pl.visible[i]
		selected := i == pl.cursor
		title := p.Title
		if maxTitle := pl.width - 20; maxTitle > 10 && len(title) > maxTitle {
			title = title[:maxTitle-3] + "..."
		}
		b.WriteString(styles.Cursor(selected) + styles.Row(title, selected) + "  " + styles.Price(p.Price) + "\n")
	}
	return b.String()
}

// window returns the slice of rows that fits the height, keeping the cursor visible
func (pl *ProductList) window() (int, int) {
	rows := pl.height - 6
	if rows < 5 || rows >= len(pl.visible) {
		return 0, len(pl.visible)
	}
	start := pl.cursor - rows/2
	start = max(0, min(start, len(pl.visible)-rows))
	return start, start + rows
}

func (pl *ProductList) viewDetail() string {
	p, ok := pl.Current()
	if !ok {
		return ""
	}

	var b strings.Builder
	b.WriteString(styles.Title.Render(p.Title))
	b.WriteString("\n")
	b.WriteString(styles.Price(p.Price))
	b.WriteString("  ")
	b.WriteString(helpStyle.Render(icons.Category.String() + " " + catalog.CleanCategoryName(p.Category.Name)))
	b.WriteString("\n\n")

	desc := p.Description
	if pl.width > 20 {
		desc = lipgloss.NewStyle().Width(pl.width - 8).Render(desc)
	}
	b.WriteString(desc)
	b.WriteString("\n")
	if len(p.Images) > 0 {
		b.WriteString("\n")
		b.WriteString(helpStyle.Render(p.Images[0]))
		b.WriteString("\n")
	}
	return b.String()
}
