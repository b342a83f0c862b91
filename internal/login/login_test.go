package login

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/amishk599/easyapply/internal/browser/browsertest"
	"github.com/amishk599/easyapply/internal/model"
)

const base = "https://jobs.example.com"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func loginScreen() *browsertest.Screen {
	return browsertest.NewScreen().
		Add(usernameSelector, browsertest.NewElement("username")).
		Add(passwordSelector, browsertest.NewElement("password")).
		Add(submitSelector, browsertest.NewElement("submit"))
}

func TestLogin_FillsAndSubmits(t *testing.T) {
	page := browsertest.NewPage().Route(base+"/login", loginScreen())
	a := NewAuthenticator(base, time.Second, time.Second, discardLogger())

	err := a.Login(context.Background(), page, model.Credentials{Email: "me@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	want := []string{"fill:username=me@example.com", "fill:password=pw", "click:submit"}
	got := page.ActionLog()
	if len(got) != len(want) {
		t.Fatalf("actions = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("action[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestLogin_MissingCredentials(t *testing.T) {
	page := browsertest.NewPage()
	a := NewAuthenticator(base, time.Second, time.Second, discardLogger())

	err := a.Login(context.Background(), page, model.Credentials{Email: "me@example.com"})
	if !errors.Is(err, model.ErrAuthentication) {
		t.Fatalf("err = %v, want ErrAuthentication", err)
	}
	if len(page.Visited) != 0 {
		t.Errorf("visited %v, want no navigation", page.Visited)
	}
}

func TestLogin_FormMissingIsAuthFailure(t *testing.T) {
	page := browsertest.NewPage()
	a := NewAuthenticator(base, time.Second, time.Second, discardLogger())

	err := a.Login(context.Background(), page, model.Credentials{Email: "a", Password: "b"})
	if !errors.Is(err, model.ErrAuthentication) {
		t.Fatalf("err = %v, want ErrAuthentication", err)
	}
}

func TestLogin_IdleTimeoutIsAuthFailure(t *testing.T) {
	page := browsertest.NewPage().Route(base+"/login", loginScreen())
	page.IdleErr = model.ErrNavigationTimeout
	a := NewAuthenticator(base, time.Second, time.Second, discardLogger())

	err := a.Login(context.Background(), page, model.Credentials{Email: "a", Password: "b"})
	if !errors.Is(err, model.ErrAuthentication) {
		t.Fatalf("err = %v, want ErrAuthentication", err)
	}
}
