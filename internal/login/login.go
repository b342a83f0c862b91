// Package login authenticates a browser session against the job site.
package login

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/amishk599/easyapply/internal/browser"
	"github.com/amishk599/easyapply/internal/model"
)

const (
	usernameSelector = "#username"
	passwordSelector = "#password"
	submitSelector   = `button[type="submit"]`
)

// Authenticator signs in through the site's login form.
type Authenticator struct {
	baseURL       string
	actionTimeout time.Duration
	idleTimeout   time.Duration
	logger        *slog.Logger
}

// NewAuthenticator creates an Authenticator for the site at baseURL.
func NewAuthenticator(baseURL string, actionTimeout, idleTimeout time.Duration, logger *slog.Logger) *Authenticator {
	return &Authenticator{
		baseURL:       baseURL,
		actionTimeout: actionTimeout,
		idleTimeout:   idleTimeout,
		logger:        logger,
	}
}

// Login fills the credentials, submits and waits for the next page to settle.
// Every failure wraps model.ErrAuthentication.
func (a *Authenticator) Login(ctx context.Context, page browser.Page, creds model.Credentials) error {
	if !creds.Complete() {
		return model.ErrMissingCredentials
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", model.ErrAuthentication, err)
	}

	if err := page.Navigate(a.baseURL + "/login"); err != nil {
		return fmt.Errorf("%w: open login page: %v", model.ErrAuthentication, err)
	}

	user, err := page.WaitFor(usernameSelector, a.actionTimeout)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrAuthentication, err)
	}
	if err := user.Fill(creds.Email, a.actionTimeout); err != nil {
		return fmt.Errorf("%w: fill username: %v", model.ErrAuthentication, err)
	}

	pass, err := page.WaitFor(passwordSelector, a.actionTimeout)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrAuthentication, err)
	}
	if err := pass.Fill(creds.Password, a.actionTimeout); err != nil {
		return fmt.Errorf("%w: fill password: %v", model.ErrAuthentication, err)
	}

	submit, err := page.WaitFor(submitSelector, a.actionTimeout)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrAuthentication, err)
	}
	if err := submit.Click(a.actionTimeout); err != nil {
		return fmt.Errorf("%w: submit: %v", model.ErrAuthentication, err)
	}

	if err := page.WaitIdle(a.idleTimeout); err != nil {
		return fmt.Errorf("%w: %v", model.ErrAuthentication, err)
	}

	a.logger.Info("logged in", "email", creds.Email)
	return nil
}
