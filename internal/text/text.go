// Package text provides loading and lookup for externalized text blocks
// shown by the proxy, so operators can rebrand a game without
// recompiling.
package text

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// TextData represents the structure of the text.yaml file.
type TextData struct {
	Welcome  WelcomeText `yaml:"welcome"`
	Messages MessageText `yaml:"messages"`
}

// WelcomeText contains welcome/login screen text.
type WelcomeText struct {
	Banner string `yaml:"banner"`
}

// MessageText contains operational messages shown to players.
type MessageText struct {
	WorldUnavailable string `yaml:"world_unavailable"`
	AccountTaken     string `yaml:"account_taken"`
	InvalidLogin     string `yaml:"invalid_login"`
}

// Text provides text lookup functionality.
type Text struct {
	data *TextData
	mu   sync.RWMutex
}

var (
	instance *Text
	once     sync.Once
)

// Load loads text data from a YAML file.
func Load(path string) (*Text, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read text file: %w", err)
	}

	var textData TextData
	if err := yaml.Unmarshal(data, &textData); err != nil {
		return nil, fmt.Errorf("failed to parse text file: %w", err)
	}

	return &Text{data: &textData}, nil
}

// GetInstance returns the singleton text instance, or nil when
// Initialize has not run. Callers fall back to built-in text on nil.
func GetInstance() *Text {
	return instance
}

// Initialize loads the text data and sets the singleton instance.
func Initialize(path string) error {
	var err error
	once.Do(func() {
		instance, err = Load(path)
	})
	return err
}

// GetWelcomeBanner returns the welcome banner text.
func (t *Text) GetWelcomeBanner() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return strings.TrimSpace(t.data.Welcome.Banner)
}

// GetWorldUnavailable returns the message shown when the world daemon
// cannot be reached.
func (t *Text) GetWorldUnavailable() string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	text := strings.TrimSpace(t.data.Messages.WorldUnavailable)
	if text == "" {
		return "The game world is unavailable right now. Please try again shortly."
	}
	return text
}

// GetAccountTaken returns the duplicate-username message.
func (t *Text) GetAccountTaken() string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	text := strings.TrimSpace(t.data.Messages.AccountTaken)
	if text == "" {
		return "That username is already taken."
	}
	return text
}

// GetInvalidLogin returns the failed-login message.
func (t *Text) GetInvalidLogin() string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	text := strings.TrimSpace(t.data.Messages.InvalidLogin)
	if text == "" {
		return "Invalid username or password."
	}
	return text
}
