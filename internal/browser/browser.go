// Package browser defines the narrow page-driving capability used by the
// discovery, wizard and login code. Implementations map unmet bounded waits to
// model.ErrNavigationTimeout.
package browser

import (
	"context"
	"strings"
	"time"
)

// Locator finds elements without waiting.
type Locator interface {
	// Locate returns the elements currently matching selector in document
	// order.
	Locate(selector string) ([]Element, error)
}

// Page is the single tab a run drives.
type Page interface {
	Locator
	Navigate(url string) error
	// WaitFor blocks until selector matches or timeout elapses.
	WaitFor(selector string, timeout time.Duration) (Element, error)
	// WaitIdle blocks until network activity settles or timeout elapses.
	WaitIdle(timeout time.Duration) error
}

// Element is one DOM node on a Page.
type Element interface {
	Text() (string, error)
	Attr(name string) (string, bool, error)
	Value() (string, error)
	Enabled() (bool, error)
	Checked() (bool, error)
	Click(timeout time.Duration) error
	Fill(text string, timeout time.Duration) error
	Check(timeout time.Duration) error
	Locator
	// SelectLabel picks the option whose visible label equals label.
	SelectLabel(label string) error
	// SelectIndex picks the option at DOM index i.
	SelectIndex(i int) error
}

// Session owns a browser process and its page.
type Session interface {
	Page() Page
	Close() error
}

// Launcher starts a new Session bound to ctx.
type Launcher interface {
	Launch(ctx context.Context) (Session, error)
}

// First returns the first element matching selector, or false when none does.
func First(p Locator, selector string) (Element, bool) {
	els, err := p.Locate(selector)
	if err != nil || len(els) == 0 {
		return nil, false
	}
	return els[0], true
}

// TextOf returns the whitespace-collapsed text of the first match of selector
// under parent, or "" when there is none.
func TextOf(parent Locator, selector string) string {
	el, ok := First(parent, selector)
	if !ok {
		return ""
	}
	text, err := el.Text()
	if err != nil {
		return ""
	}
	return Collapse(text)
}

// Collapse trims s and folds every whitespace run into one space.
func Collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
