package keys

import (
	"sort"

	"github.com/gdamore/tcell/v2"
)

// Action represents a keybinding action.
type Action struct {
	Key         tcell.Key
	Rune        rune
	Description string
	Handler     func()
	Visible     bool
}

// Matches returns true if the event matches this action.
func (a *Action) Matches(ev *tcell.EventKey) bool {
	if a.Key != tcell.KeyRune {
		return ev.Key() == a.Key
	}
	return ev.Key() == tcell.KeyRune && ev.Rune() == a.Rune
}

// Registry holds keybindings organized by scope: global bindings apply
// on every page, page bindings only when their page is front.
type Registry struct {
	global map[string]*Action
	pages  map[string]map[string]*Action
}

func NewRegistry() *Registry {
	return &Registry{
		global: make(map[string]*Action),
		pages:  make(map[string]map[string]*Action),
	}
}

// AddGlobal registers a binding active on every page.
func (r *Registry) AddGlobal(name string, action *Action) {
	r.global[name] = action
}

// AddPage registers a binding active only on one page.
func (r *Registry) AddPage(page, name string, action *Action) {
	if r.pages[page] == nil {
		r.pages[page] = make(map[string]*Action)
	}
	r.pages[page][name] = action
}

// Hints returns visible binding descriptions for a page, page-specific
// first, each group sorted for a stable render.
func (r *Registry) Hints(page string) []string {
	var pageHints, globalHints []string
	for _, a := range r.pages[page] {
		if a.Visible {
			pageHints = append(pageHints, a.Description)
		}
	}
	for _, a := range r.global {
		if a.Visible {
			globalHints = append(globalHints, a.Description)
		}
	}
	sort.Strings(pageHints)
	sort.Strings(globalHints)
	return append(pageHints, globalHints...)
}

// HandleEvent dispatches a key event to the matching action for the
// given page. Page bindings shadow global ones. Returns true if a
// handler ran.
func (r *Registry) HandleEvent(page string, ev *tcell.EventKey) bool {
	for _, a := range r.pages[page] {
		if a.Matches(ev) {
			a.Handler()
			return true
		}
	}
	for _, a := range r.global {
		if a.Matches(ev) {
			a.Handler()
			return true
		}
	}
	return false
}
