package monitor

import "github.com/charmbracelet/bubbles/key"

// keyMap holds every dashboard binding. Events are matched by their
// String form, so mouse actions bind like keys.
type keyMap struct {
	Quit        key.Binding
	Help        key.Binding
	IntervalUp  key.Binding
	IntervalDn  key.Binding
	NetNext     key.Binding
	NetPrev     key.Binding
	NetReset    key.Binding
	NetAuto     key.Binding
	NetSync     key.Binding
	SortNext    key.Binding
	SortPrev    key.Binding
	Collapse    key.Binding
	Tree        key.Binding
	Reverse     key.Binding
	PerCore     key.Binding
	Swap        key.Binding
	Filter      key.Binding
	ClearFilter key.Binding
	Mini        key.Binding
	Term        key.Binding
	Kill        key.Binding
	Interrupt   key.Binding
	Detail      key.Binding
	Up          key.Binding
	Down        key.Binding
	PageUp      key.Binding
	PageDown    key.Binding
	Home        key.Binding
	End         key.Binding
	ScrollUp    key.Binding
	ScrollDown  key.Binding
	Click       key.Binding
	Suspend     key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Help:        key.NewBinding(key.WithKeys("h", "f1"), key.WithHelp("h / f1", "toggle this help")),
		IntervalUp:  key.NewBinding(key.WithKeys("+"), key.WithHelp("+", "update interval +100ms")),
		IntervalDn:  key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "update interval -100ms")),
		NetNext:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next net interface")),
		NetPrev:     key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "previous net interface")),
		NetReset:    key.NewBinding(key.WithKeys("z"), key.WithHelp("z", "reset net totals")),
		NetAuto:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "toggle net auto scale")),
		NetSync:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "toggle net sync scale")),
		SortNext:    key.NewBinding(key.WithKeys("right"), key.WithHelp("right", "next sort key")),
		SortPrev:    key.NewBinding(key.WithKeys("left"), key.WithHelp("left", "previous sort key")),
		Collapse:    key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "collapse/expand process")),
		Tree:        key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "toggle tree view")),
		Reverse:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reverse sort")),
		PerCore:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "toggle per-core cpu")),
		Swap:        key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "toggle swap")),
		Filter:      key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter processes")),
		ClearFilter: key.NewBinding(key.WithKeys("delete"), key.WithHelp("delete", "clear filter")),
		Mini:        key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "toggle mini mode")),
		Term:        key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "terminate process")),
		Kill:        key.NewBinding(key.WithKeys("k"), key.WithHelp("k", "kill process")),
		Interrupt:   key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "interrupt process")),
		Detail:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "toggle process details")),
		Up:          key.NewBinding(key.WithKeys("up"), key.WithHelp("up", "select previous")),
		Down:        key.NewBinding(key.WithKeys("down"), key.WithHelp("down", "select next")),
		PageUp:      key.NewBinding(key.WithKeys("page_up"), key.WithHelp("pgup", "page up")),
		PageDown:    key.NewBinding(key.WithKeys("page_down"), key.WithHelp("pgdn", "page down")),
		Home:        key.NewBinding(key.WithKeys("home"), key.WithHelp("home", "select first")),
		End:         key.NewBinding(key.WithKeys("end"), key.WithHelp("end", "select last")),
		ScrollUp:    key.NewBinding(key.WithKeys("mouse_scroll_up")),
		ScrollDown:  key.NewBinding(key.WithKeys("mouse_scroll_down")),
		Click:       key.NewBinding(key.WithKeys("mouse_click")),
		Suspend:     key.NewBinding(key.WithKeys("ctrl+z"), key.WithHelp("ctrl+z", "suspend")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp implements help.KeyMap. Each group is one column.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Quit, k.Help, k.Suspend, k.IntervalUp, k.IntervalDn, k.Mini, k.PerCore, k.Swap},
		{k.NetNext, k.NetPrev, k.NetReset, k.NetAuto, k.NetSync},
		{k.SortNext, k.SortPrev, k.Reverse, k.Tree, k.Collapse, k.Filter, k.ClearFilter},
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Home, k.End, k.Detail},
		{k.Term, k.Kill, k.Interrupt},
	}
}
