package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Left     key.Binding
	Right    key.Binding
	Up       key.Binding
	Down     key.Binding
	Add      key.Binding
	Edit     key.Binding
	Delete   key.Binding
	Move     key.Binding
	Projects key.Binding
	Confirm  key.Binding
	Cancel   key.Binding
	New      key.Binding
	Rename   key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Left:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←→", "columns")),
		Right:    key.NewBinding(key.WithKeys("right", "l")),
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑↓", "tasks")),
		Down:     key.NewBinding(key.WithKeys("down", "j")),
		Add:      key.NewBinding(key.WithKeys("a", "A"), key.WithHelp("a", "add")),
		Edit:     key.NewBinding(key.WithKeys("e", "E"), key.WithHelp("e", "edit")),
		Delete:   key.NewBinding(key.WithKeys("d", "D"), key.WithHelp("d", "delete")),
		Move:     key.NewBinding(key.WithKeys("m", "M"), key.WithHelp("m", "move (+ arrows)")),
		Projects: key.NewBinding(key.WithKeys("p", "P"), key.WithHelp("p", "projects")),
		Confirm:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
		Cancel:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		New:      key.NewBinding(key.WithKeys("n", "N"), key.WithHelp("n", "new")),
		Rename:   key.NewBinding(key.WithKeys("r", "R"), key.WithHelp("r", "rename")),
		Quit:     key.NewBinding(key.WithKeys("q", "Q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp is the board footer.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.Up, k.Add, k.Edit, k.Delete, k.Move, k.Projects, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Up},
		{k.Add, k.Edit, k.Delete},
		{k.Move, k.Confirm, k.Cancel},
		{k.Projects, k.New, k.Rename},
		{k.Quit},
	}
}

// moveKeyMap is shown while a task is being moved.
type moveKeyMap struct{ k keyMap }

func (m moveKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("left"), key.WithHelp("← →", "columns")),
		key.NewBinding(key.WithKeys("up"), key.WithHelp("↑ ↓", "reorder")),
		m.k.Confirm,
		m.k.Cancel,
	}
}

func (m moveKeyMap) FullHelp() [][]key.Binding { return [][]key.Binding{m.ShortHelp()} }

// projectsKeyMap is shown in the project manager.
type projectsKeyMap struct{ k keyMap }

func (p projectsKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("up"), key.WithHelp("↑↓", "navigate")),
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		p.k.New,
		p.k.Rename,
		p.k.Delete,
		key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc/q", "close")),
	}
}

func (p projectsKeyMap) FullHelp() [][]key.Binding { return [][]key.Binding{p.ShortHelp()} }
