// Package auth manages backend profiles and the bearer token session.
// Profiles point at different backend environments (local, staging,
// production); the session remembers which one is active.
package auth

import (
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/oauth2"

	"github.com/tiendactl/tiendactl/internal/config"
)

// Profile describes one backend environment.
type Profile struct {
	Name    string `json:"name"`
	BaseURL string `json:"base_url"`
	Token   string `json:"token"`
}

// Session is the persisted session state.
type Session struct {
	ActiveProfile string `json:"active_profile"`
}

// Manager handles session and profile management
type Manager struct {
	session  *Session
	profiles []Profile
}

// NewManager creates a new session manager
func NewManager() *Manager {
	return &Manager{
		session:  &Session{},
		profiles: []Profile{},
	}
}

// Load loads session and profiles from disk
func (m *Manager) Load() error {
	if err := m.LoadSession(); err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	if err := m.LoadProfiles(); err != nil {
		return fmt.Errorf("failed to load profiles: %w", err)
	}
	return nil
}

// LoadSession loads the session file
func (m *Manager) LoadSession() error {
	data, err := os.ReadFile(config.GetSessionFilePath())
	if err != nil {
		// If file doesn't exist, use default session
		m.session = &Session{}
		return nil
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return fmt.Errorf("failed to parse session file: %w", err)
	}

	m.session = &session
	return nil
}

// SaveSession saves the session to disk
func (m *Manager) SaveSession() error {
	data, err := json.MarshalIndent(m.session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := os.WriteFile(config.GetSessionFilePath(), data, config.FilePermissions); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// LoadProfiles loads the profiles file
func (m *Manager) LoadProfiles() error {
	data, err := os.ReadFile(config.GetProfilesFilePath())
	if err != nil {
		// If file doesn't exist, start with a single local profile
		m.profiles = []Profile{{Name: "local", BaseURL: "http://localhost:8080"}}
		return nil
	}

	var profiles []Profile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return fmt.Errorf("failed to parse profiles file: %w", err)
	}

	m.profiles = profiles
	return nil
}

// SaveProfiles saves the profiles to disk
func (m *Manager) SaveProfiles() error {
	data, err := json.MarshalIndent(m.profiles, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal profiles: %w", err)
	}
	if err := os.WriteFile(config.GetProfilesFilePath(), data, config.FilePermissions); err != nil {
		return fmt.Errorf("failed to write profiles file: %w", err)
	}
	return nil
}

// GetProfiles returns all profiles
func (m *Manager) GetProfiles() []Profile {
	return m.profiles
}

// GetActiveProfile returns the currently active profile. Falls back to the
// first profile when none is selected or the selected one no longer exists.
func (m *Manager) GetActiveProfile() *Profile {
	if m.session.ActiveProfile != "" {
		for i := range m.profiles {
			if m.profiles[i].Name == m.session.ActiveProfile {
				return &m.profiles[i]
			}
		}
	}
	if len(m.profiles) > 0 {
		return &m.profiles[0]
	}
	return &Profile{Name: "local", BaseURL: "http://localhost:8080"}
}

// SetActiveProfile sets the active profile by name
func (m *Manager) SetActiveProfile(name string) error {
	found := false
	for _, profile := range m.profiles {
		if profile.Name == name {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("profile not found: %s", name)
	}

	m.session.ActiveProfile = name
	return m.SaveSession()
}

// SetToken updates the active profile's bearer token and persists it.
func (m *Manager) SetToken(token string) error {
	profile := m.GetActiveProfile()
	for i := range m.profiles {
		if m.profiles[i].Name == profile.Name {
			m.profiles[i].Token = token
			return m.SaveProfiles()
		}
	}
	return fmt.Errorf("profile not found: %s", profile.Name)
}

// TokenSource returns an oauth2 token source for the active profile.
// The TIENDACTL_TOKEN environment variable overrides the stored token.
func (m *Manager) TokenSource() oauth2.TokenSource {
	token := m.GetActiveProfile().Token
	if env := os.Getenv("TIENDACTL_TOKEN"); env != "" {
		token = env
	}
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
}

// BaseURL returns the backend root for the active profile, with fallback.
func (m *Manager) BaseURL(fallback string) string {
	if url := m.GetActiveProfile().BaseURL; url != "" {
		return url
	}
	return fallback
}
