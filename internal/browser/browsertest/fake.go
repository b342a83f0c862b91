// Package browsertest provides a scripted in-memory browser for tests.
//
// A Page shows one Screen at a time. Screens map selector strings to elements
// verbatim, so a test registers elements under the exact selector the code
// under test asks for. Every mutating action is recorded on the Page.
package browsertest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/amishk599/easyapply/internal/browser"
	"github.com/amishk599/easyapply/internal/model"
)

// Screen is the set of elements visible after a navigation or a click.
type Screen struct {
	Elements map[string][]*Element
}

// NewScreen returns an empty Screen.
func NewScreen() *Screen {
	return &Screen{Elements: make(map[string][]*Element)}
}

// Add registers els under selector, after any already registered.
func (s *Screen) Add(selector string, els ...*Element) *Screen {
	s.Elements[selector] = append(s.Elements[selector], els...)
	return s
}

// Element is a scripted DOM node.
type Element struct {
	Name     string
	Text     string
	Attrs    map[string]string
	Value    string
	Disabled bool
	Checked  bool
	Children map[string][]*Element

	// OnClick runs after a successful click, typically to Show the next screen.
	OnClick  func()
	ClickErr error
	FillErr  error
}

// NewElement returns an element named name for action logs.
func NewElement(name string) *Element {
	return &Element{Name: name, Attrs: map[string]string{}, Children: map[string][]*Element{}}
}

// WithAttr sets an attribute and returns e.
func (e *Element) WithAttr(key, value string) *Element {
	e.Attrs[key] = value
	return e
}

// WithText sets the text content and returns e.
func (e *Element) WithText(text string) *Element {
	e.Text = text
	return e
}

// Child registers els under selector relative to e and returns e.
func (e *Element) Child(selector string, els ...*Element) *Element {
	e.Children[selector] = append(e.Children[selector], els...)
	return e
}

// Select returns a select element whose option children carry labels.
func Select(name string, labels ...string) *Element {
	el := NewElement(name)
	for _, l := range labels {
		el.Child("option", NewElement(name+"/option").WithText(l))
	}
	return el
}

// Page is a scripted browser.Page.
type Page struct {
	mu      sync.Mutex
	routes  map[string]*Screen
	navErrs map[string]error
	current *Screen

	IdleErr error
	Visited []string
	Actions []string
}

// NewPage returns a Page showing an empty screen.
func NewPage() *Page {
	return &Page{
		routes:  make(map[string]*Screen),
		navErrs: make(map[string]error),
		current: NewScreen(),
	}
}

// Route makes Navigate(url) show screen.
func (p *Page) Route(url string, screen *Screen) *Page {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.routes[url] = screen
	return p
}

// FailNavigation makes Navigate(url) return err.
func (p *Page) FailNavigation(url string, err error) *Page {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.navErrs[url] = err
	return p
}

// Show replaces the current screen.
func (p *Page) Show(screen *Screen) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = screen
}

// ActionLog returns a copy of the recorded actions.
func (p *Page) ActionLog() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.Actions...)
}

// CountActions returns how many recorded actions start with prefix.
func (p *Page) CountActions(prefix string) int {
	n := 0
	for _, a := range p.ActionLog() {
		if strings.HasPrefix(a, prefix) {
			n++
		}
	}
	return n
}

func (p *Page) record(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Actions = append(p.Actions, fmt.Sprintf(format, args...))
}

func (p *Page) Navigate(url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Visited = append(p.Visited, url)
	if err, ok := p.navErrs[url]; ok {
		return err
	}
	if s, ok := p.routes[url]; ok {
		p.current = s
	} else {
		p.current = NewScreen()
	}
	return nil
}

func (p *Page) Locate(selector string) ([]browser.Element, error) {
	p.mu.Lock()
	els := p.current.Elements[selector]
	p.mu.Unlock()
	return p.wrap(els), nil
}

func (p *Page) WaitFor(selector string, timeout time.Duration) (browser.Element, error) {
	els, _ := p.Locate(selector)
	if len(els) == 0 {
		return nil, fmt.Errorf("wait for %s: %w", selector, model.ErrNavigationTimeout)
	}
	return els[0], nil
}

func (p *Page) WaitIdle(time.Duration) error {
	return p.IdleErr
}

func (p *Page) wrap(els []*Element) []browser.Element {
	out := make([]browser.Element, len(els))
	for i, e := range els {
		out[i] = &handle{page: p, el: e}
	}
	return out
}

type handle struct {
	page *Page
	el   *Element
}

func (h *handle) Text() (string, error) { return h.el.Text, nil }

func (h *handle) Attr(name string) (string, bool, error) {
	v, ok := h.el.Attrs[name]
	return v, ok, nil
}

func (h *handle) Value() (string, error) { return h.el.Value, nil }
func (h *handle) Enabled() (bool, error) { return !h.el.Disabled, nil }
func (h *handle) Checked() (bool, error) { return h.el.Checked, nil }

func (h *handle) Click(time.Duration) error {
	if h.el.ClickErr != nil {
		return h.el.ClickErr
	}
	h.page.record("click:%s", h.el.Name)
	if h.el.OnClick != nil {
		h.el.OnClick()
	}
	return nil
}

func (h *handle) Fill(text string, _ time.Duration) error {
	if h.el.FillErr != nil {
		return h.el.FillErr
	}
	h.el.Value = text
	h.page.record("fill:%s=%s", h.el.Name, text)
	return nil
}

func (h *handle) Check(time.Duration) error {
	h.el.Checked = true
	h.page.record("check:%s", h.el.Name)
	return nil
}

func (h *handle) Locate(selector string) ([]browser.Element, error) {
	return h.page.wrap(h.el.Children[selector]), nil
}

func (h *handle) SelectLabel(label string) error {
	for _, opt := range h.el.Children["option"] {
		if strings.TrimSpace(opt.Text) == label {
			h.el.Value = label
			h.page.record("select:%s=%s", h.el.Name, label)
			return nil
		}
	}
	return fmt.Errorf("no option labelled %q", label)
}

func (h *handle) SelectIndex(i int) error {
	opts := h.el.Children["option"]
	if i < 0 || i >= len(opts) {
		return fmt.Errorf("option index %d out of range", i)
	}
	h.el.Value = strings.TrimSpace(opts[i].Text)
	h.page.record("select:%s=%s", h.el.Name, h.el.Value)
	return nil
}

// Session is a scripted browser.Session.
type Session struct {
	P      *Page
	mu     sync.Mutex
	closed bool
}

func (s *Session) Page() browser.Page { return s.P }

func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Closed reports whether Close was called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Launcher hands out Session, or fails with Err.
type Launcher struct {
	Session *Session
	Err     error

	mu       sync.Mutex
	launches int
}

func (l *Launcher) Launch(ctx context.Context) (browser.Session, error) {
	l.mu.Lock()
	l.launches++
	l.mu.Unlock()
	if l.Err != nil {
		return nil, l.Err
	}
	return l.Session, nil
}

// Launches returns how many times Launch was called.
func (l *Launcher) Launches() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.launches
}
