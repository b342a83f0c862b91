// Package settings holds the credentials and completion settings that can be
// changed while the service runs, persisted to a YAML file.
package settings

import (
	"fmt"
	"log/slog"
	"maps"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/amishk599/easyapply/internal/model"
)

// Mask replaces a secret in safe views.
const Mask = "********"

// DefaultModel is used when neither config nor the settings file names one.
const DefaultModel = "gpt-4o-mini"

// Values is the full settings record.
type Values struct {
	LinkedinEmail    string            `json:"linkedin_email" yaml:"linkedin_email"`
	LinkedinPassword string            `json:"linkedin_password" yaml:"linkedin_password"`
	OpenAIAPIKey     string            `json:"openai_api_key" yaml:"openai_api_key"`
	OpenAIModel      string            `json:"openai_model" yaml:"openai_model"`
	DatabaseURL      string            `json:"database_url" yaml:"database_url"`
	Profile          map[string]string `json:"profile" yaml:"profile"`
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	LinkedinEmail    *string           `json:"linkedin_email"`
	LinkedinPassword *string           `json:"linkedin_password"`
	OpenAIAPIKey     *string           `json:"openai_api_key"`
	OpenAIModel      *string           `json:"openai_model"`
	DatabaseURL      *string           `json:"database_url"`
	Profile          map[string]string `json:"profile"`
}

// Store is safe for concurrent use. Reads always observe the latest Update.
type Store struct {
	mu     sync.RWMutex
	path   string
	values Values
	logger *slog.Logger
}

// NewStore seeds a Store from defaults and then overrides it with the file at
// path. A missing, unreadable or invalid file is ignored. An empty path
// disables persistence.
func NewStore(path string, defaults Values, logger *slog.Logger) *Store {
	if defaults.OpenAIModel == "" {
		defaults.OpenAIModel = DefaultModel
	}
	s := &Store{path: path, values: defaults, logger: logger}
	s.load()
	return s
}

func (s *Store) load() {
	if s.path == "" {
		return
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("settings file unreadable, using defaults", "path", s.path, "error", err)
		}
		return
	}

	var v Values
	if err := yaml.Unmarshal(data, &v); err != nil {
		s.logger.Warn("settings file invalid, using defaults", "path", s.path, "error", err)
		return
	}
	if v.OpenAIModel == "" {
		v.OpenAIModel = DefaultModel
	}
	s.values = v
}

// Get returns a copy of the current values, secrets included.
func (s *Store) Get() Values {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v := s.values
	v.Profile = maps.Clone(s.values.Profile)
	return v
}

// Safe returns a copy with the password and API key masked when set.
func (s *Store) Safe() Values {
	v := s.Get()
	if v.LinkedinPassword != "" {
		v.LinkedinPassword = Mask
	}
	if v.OpenAIAPIKey != "" {
		v.OpenAIAPIKey = Mask
	}
	return v
}

// Update applies p, persists the result and returns it. String fields are
// trimmed. The in-memory values change even if persisting fails.
func (s *Store) Update(p Patch) (Values, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&s.values.LinkedinEmail, p.LinkedinEmail)
	set(&s.values.LinkedinPassword, p.LinkedinPassword)
	set(&s.values.OpenAIAPIKey, p.OpenAIAPIKey)
	set(&s.values.OpenAIModel, p.OpenAIModel)
	set(&s.values.DatabaseURL, p.DatabaseURL)
	if p.Profile != nil {
		profile := make(map[string]string, len(p.Profile))
		for k, v := range p.Profile {
			profile[strings.TrimSpace(k)] = strings.TrimSpace(v)
		}
		s.values.Profile = profile
	}

	v := s.values
	v.Profile = maps.Clone(s.values.Profile)
	if err := s.save(); err != nil {
		return v, err
	}
	return v, nil
}

func (s *Store) save() error {
	if s.path == "" {
		return nil
	}
	data, err := yaml.Marshal(s.values)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

// Credentials implements model.CredentialSource.
func (s *Store) Credentials() model.Credentials {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.Credentials{Email: s.values.LinkedinEmail, Password: s.values.LinkedinPassword}
}

// APIKey returns the completion API key, empty when unset.
func (s *Store) APIKey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values.OpenAIAPIKey
}

// Model returns the completion model name.
func (s *Store) Model() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.values.OpenAIModel == "" {
		return DefaultModel
	}
	return s.values.OpenAIModel
}

// Profile returns a copy of the applicant profile.
func (s *Store) Profile() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.values.Profile)
}
