package tui

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Makepad-fr/till/internal/checkout"
	"github.com/Makepad-fr/till/internal/model"
	"github.com/Makepad-fr/till/internal/store/jsonstore"
	"github.com/Makepad-fr/till/internal/ui"
)

var (
	selectedStyle = lipgloss.NewStyle().Bold(true).Reverse(true)
	soldOutStyle  = lipgloss.NewStyle().Faint(true).Strikethrough(true)
)

// catalogItem adapts a catalog entry to bubbles/list.Item.
type catalogItem struct{ item *model.Item }

func (c catalogItem) Title() string       { return c.item.Name() }
func (c catalogItem) Description() string { return "" }
func (c catalogItem) FilterValue() string { return c.item.Name() }

// Single-line rows: name, price, stock, traits.
type itemDelegate struct{}

func (d itemDelegate) Height() int                         { return 1 }
func (d itemDelegate) Spacing() int                        { return 0 }
func (d itemDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, li list.Item) {
	c, ok := li.(catalogItem)
	if !ok {
		return
	}
	it := c.item
	name := fmt.Sprintf("%-16s", it.Name())
	if it.Stock() == 0 {
		name = soldOutStyle.Render(name)
	}
	line := fmt.Sprintf("%s %6s  %s  %s",
		name,
		ui.Money(it.Price()),
		ui.Current().Muted.Render(fmt.Sprintf("stock %-3d", it.Stock())),
		ui.Traits(it),
	)
	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render("> ")
	}
	fmt.Fprintln(w, prefix+line)
}

// Model is the interactive shop for one account. It is a Bubble Tea model;
// New builds it and Run drives it in the terminal.
type Model struct {
	list   list.Model
	shop   *jsonstore.Shop
	acct   *model.Account
	engine *checkout.Engine
	policy checkout.Policy

	// Inline quantity prompt
	adding bool
	ti     textinput.Model
	addErr string

	status    string
	statusErr bool
	receipt   []string // last settled checkout
	changed   bool
	err       error
}

func New(shop *jsonstore.Shop, acct *model.Account, eng *checkout.Engine, policy checkout.Policy) Model {
	l := list.New(listItems(shop), itemDelegate{}, 80, 16)
	l.Title = "Catalog"
	l.SetShowHelp(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = ui.Current().Title
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("item", "items")

	addBind := key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add"))
	checkoutBind := key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "checkout"))
	clearBind := key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear basket"))
	extra := func() []key.Binding { return []key.Binding{addBind, checkoutBind, clearBind} }
	l.AdditionalShortHelpKeys = extra
	l.AdditionalFullHelpKeys = extra

	ti := textinput.New()
	ti.Prompt = "qty> "
	ti.Placeholder = "1"
	ti.CharLimit = 6

	return Model{
		list:   l,
		shop:   shop,
		acct:   acct,
		engine: eng,
		policy: policy,
		ti:     ti,
	}
}

func listItems(shop *jsonstore.Shop) []list.Item {
	items := shop.Items()
	out := make([]list.Item, 0, len(items))
	for _, it := range items {
		out = append(out, catalogItem{item: it})
	}
	return out
}

// Changed reports whether the basket, stock or balance moved.
func (m Model) Changed() bool { return m.changed }

// Err is the invariant violation that ended the session, if any.
func (m Model) Err() error { return m.err }

// Receipt is the panel body of the last settled checkout.
func (m Model) Receipt() []string { return m.receipt }

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.list.SetSize(size.Width-4, size.Height-10)
		return m, nil
	}

	if m.adding {
		return m.updateAdding(msg)
	}

	if k, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		switch k.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "a":
			if _, ok := m.list.SelectedItem().(catalogItem); !ok {
				return m, nil
			}
			m.adding = true
			m.addErr = ""
			m.ti.SetValue("")
			cmd := m.ti.Focus()
			return m, cmd
		case "c":
			return m.checkout()
		case "x":
			basket := m.shop.Basket(m.acct.Name())
			if !basket.IsEmpty() {
				basket.Clear()
				m.changed = true
			}
			m.setStatus("basket cleared", false)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateAdding(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "enter":
			sel, _ := m.list.SelectedItem().(catalogItem)
			n, err := strconv.Atoi(strings.TrimSpace(m.ti.Value()))
			if err != nil {
				m.addErr = "quantity must be a number"
				return m, nil
			}
			if err := m.shop.Basket(m.acct.Name()).Add(sel.item, n); err != nil {
				m.addErr = err.Error()
				return m, nil
			}
			m.changed = true
			m.stopAdding()
			m.setStatus(fmt.Sprintf("added %dx %s", n, sel.item.Name()), false)
			return m, nil
		case "esc":
			m.stopAdding()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	return m, cmd
}

func (m *Model) stopAdding() {
	m.adding = false
	m.addErr = ""
	m.ti.SetValue("")
	m.ti.Blur()
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status, m.statusErr = s, isErr
}

func (m Model) checkout() (tea.Model, tea.Cmd) {
	res, err := m.engine.Checkout(m.acct, m.shop.Basket(m.acct.Name()), m.policy)
	if err != nil {
		m.err = err
		return m, tea.Quit
	}
	if !res.Settled() {
		m.setStatus(ui.Failure(res), true)
		return m, nil
	}
	m.changed = true
	m.receipt = ui.Checkout(res)
	m.setStatus("paid "+ui.Money(res.Total), false)
	// Stock moved; redraw rows.
	cmd := m.list.SetItems(listItems(m.shop))
	return m, cmd
}

func (m Model) View() string {
	t := ui.Current()
	basket := m.shop.Basket(m.acct.Name())
	header := fmt.Sprintf("%s  %s  %s %s  %s %d",
		t.Title.Render("Till"),
		t.Accent.Render(m.acct.Name()),
		t.Muted.Render("balance"), ui.Money(m.acct.Balance()),
		t.Muted.Render("basket"), basket.Len(),
	)

	parts := []string{header, "", m.list.View()}
	if m.adding {
		title := "Quantity"
		if sel, ok := m.list.SelectedItem().(catalogItem); ok {
			title += " of " + sel.item.Name()
		}
		if m.addErr != "" {
			title += ": " + t.Error.Render(m.addErr)
		}
		bar := lipgloss.NewStyle().Border(t.Border).BorderForeground(t.BorderColor).Padding(0, 1)
		parts = append(parts, bar.Render(title+"\n"+m.ti.View()))
	}
	if !basket.IsEmpty() {
		parts = append(parts, "", t.Title.Render("Basket"))
		parts = append(parts, ui.BasketLines(basket.Lines())...)
	}
	if m.receipt != nil {
		parts = append(parts, "", ui.PanelString(m.receipt))
	}
	if m.status != "" {
		style := t.Success
		if m.statusErr {
			style = t.Error
		}
		parts = append(parts, "", style.Render(m.status))
	}
	return ui.PanelString(parts)
}

// Run starts the shop on the terminal and reports whether anything needs
// saving once the user quits.
func Run(shop *jsonstore.Shop, acct *model.Account, eng *checkout.Engine, policy checkout.Policy) (bool, error) {
	p := tea.NewProgram(New(shop, acct, eng, policy), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return false, err
	}
	fm, ok := final.(Model)
	if !ok {
		return false, nil
	}
	if fm.receipt != nil {
		ui.Panel(fm.receipt)
	}
	return fm.changed, fm.err
}
