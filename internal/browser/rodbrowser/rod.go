// Package rodbrowser implements browser.Launcher on top of go-rod.
package rodbrowser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/amishk599/easyapply/internal/browser"
	"github.com/amishk599/easyapply/internal/model"
)

// Options controls how the browser process is started.
type Options struct {
	Headless bool
	Bin      string // empty lets rod find or download a browser
}

// Launcher starts one Chromium process per session.
type Launcher struct {
	opts   Options
	logger *slog.Logger
}

// NewLauncher creates a Launcher.
func NewLauncher(opts Options, logger *slog.Logger) *Launcher {
	return &Launcher{opts: opts, logger: logger}
}

// Launch starts a browser and opens a blank page bound to ctx. Cancelling ctx
// aborts every pending page operation.
func (l *Launcher) Launch(ctx context.Context) (browser.Session, error) {
	lnch := launcher.New().Context(ctx).Headless(l.opts.Headless)
	if l.opts.Bin != "" {
		lnch = lnch.Bin(l.opts.Bin)
	}

	controlURL, err := lnch.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	b := rod.New().ControlURL(controlURL).Context(ctx)
	if err := b.Connect(); err != nil {
		lnch.Kill()
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	p, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = b.Close()
		lnch.Kill()
		return nil, fmt.Errorf("open page: %w", err)
	}

	l.logger.Debug("browser launched", "headless", l.opts.Headless)
	return &session{browser: b, launcher: lnch, page: &page{page: p}}, nil
}

type session struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	page     *page
}

func (s *session) Page() browser.Page { return s.page }

func (s *session) Close() error {
	err := s.browser.Close()
	s.launcher.Kill()
	return err
}

type page struct {
	page *rod.Page
}

func (p *page) Navigate(url string) error {
	if err := p.page.Navigate(url); err != nil {
		return fmt.Errorf("navigate %s: %w", url, mapErr(err))
	}
	if err := p.page.WaitLoad(); err != nil {
		return fmt.Errorf("load %s: %w", url, mapErr(err))
	}
	return nil
}

func (p *page) Locate(selector string) ([]browser.Element, error) {
	els, err := p.page.Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("locate %s: %w", selector, mapErr(err))
	}
	return wrap(els), nil
}

func (p *page) WaitFor(selector string, timeout time.Duration) (browser.Element, error) {
	el, err := p.page.Timeout(timeout).Element(selector)
	if err != nil {
		return nil, fmt.Errorf("wait for %s: %w", selector, mapErr(err))
	}
	return &element{el: el.CancelTimeout()}, nil
}

func (p *page) WaitIdle(timeout time.Duration) error {
	if err := p.page.WaitIdle(timeout); err != nil {
		return fmt.Errorf("wait idle: %w", mapErr(err))
	}
	return nil
}

type element struct {
	el *rod.Element
}

func wrap(els rod.Elements) []browser.Element {
	out := make([]browser.Element, len(els))
	for i, el := range els {
		out[i] = &element{el: el}
	}
	return out
}

func (e *element) Text() (string, error) {
	return e.el.Text()
}

func (e *element) Attr(name string) (string, bool, error) {
	v, err := e.el.Attribute(name)
	if err != nil {
		return "", false, mapErr(err)
	}
	if v == nil {
		return "", false, nil
	}
	return *v, true, nil
}

func (e *element) Value() (string, error) {
	v, err := e.el.Property("value")
	if err != nil {
		return "", mapErr(err)
	}
	return v.Str(), nil
}

func (e *element) Enabled() (bool, error) {
	v, err := e.el.Property("disabled")
	if err != nil {
		return false, mapErr(err)
	}
	return !v.Bool(), nil
}

func (e *element) Checked() (bool, error) {
	v, err := e.el.Property("checked")
	if err != nil {
		return false, mapErr(err)
	}
	return v.Bool(), nil
}

func (e *element) Click(timeout time.Duration) error {
	if err := e.el.Timeout(timeout).Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click: %w", mapErr(err))
	}
	return nil
}

func (e *element) Fill(text string, timeout time.Duration) error {
	el := e.el.Timeout(timeout)
	if err := el.SelectAllText(); err != nil {
		return fmt.Errorf("fill: %w", mapErr(err))
	}
	if err := el.Input(text); err != nil {
		return fmt.Errorf("fill: %w", mapErr(err))
	}
	return nil
}

func (e *element) Check(timeout time.Duration) error {
	checked, err := e.Checked()
	if err != nil {
		return err
	}
	if checked {
		return nil
	}
	return e.Click(timeout)
}

func (e *element) Locate(selector string) ([]browser.Element, error) {
	els, err := e.el.Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("locate %s: %w", selector, mapErr(err))
	}
	return wrap(els), nil
}

const selectByLabelJS = `function (label) {
	for (let i = 0; i < this.options.length; i++) {
		if (this.options[i].text.trim() === label) {
			this.selectedIndex = i;
			this.dispatchEvent(new Event('input', { bubbles: true }));
			this.dispatchEvent(new Event('change', { bubbles: true }));
			return true;
		}
	}
	return false;
}`

const selectByIndexJS = `function (i) {
	if (i < 0 || i >= this.options.length) return false;
	this.selectedIndex = i;
	this.dispatchEvent(new Event('input', { bubbles: true }));
	this.dispatchEvent(new Event('change', { bubbles: true }));
	return true;
}`

func (e *element) SelectLabel(label string) error {
	res, err := e.el.Eval(selectByLabelJS, label)
	if err != nil {
		return fmt.Errorf("select %q: %w", label, mapErr(err))
	}
	if !res.Value.Bool() {
		return fmt.Errorf("select %q: no such option", label)
	}
	return nil
}

func (e *element) SelectIndex(i int) error {
	res, err := e.el.Eval(selectByIndexJS, i)
	if err != nil {
		return fmt.Errorf("select index %d: %w", i, mapErr(err))
	}
	if !res.Value.Bool() {
		return fmt.Errorf("select index %d: out of range", i)
	}
	return nil
}

// mapErr turns rod's deadline errors into model.ErrNavigationTimeout.
func mapErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", model.ErrNavigationTimeout, err)
	}
	return err
}
