// Package help serves in-game help topics. Built-in topics cover every
// shipped command, so a fresh deployment answers `help` without any
// data files; a YAML file can override or extend them.
package help

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Topic is a single help topic with its lookup aliases.
type Topic struct {
	Aliases []string `yaml:"aliases"`
	Text    string   `yaml:"text"`
}

// HelpData is the structure of the help.yaml override file.
type HelpData struct {
	Topics      map[string]Topic `yaml:"topics"`
	GeneralHelp string           `yaml:"general_help"`
	AdminHelp   string           `yaml:"admin_help"`
}

// Help answers topic lookups. Built once and read-only afterwards, so
// no locking is needed.
type Help struct {
	data        *HelpData
	aliasLookup map[string]string // maps alias -> topic name
}

var (
	instance *Help
	once     sync.Once
)

func newHelp(data *HelpData) *Help {
	h := &Help{
		data:        data,
		aliasLookup: make(map[string]string),
	}
	for topicName, topic := range data.Topics {
		h.aliasLookup[strings.ToLower(topicName)] = topicName
		for _, alias := range topic.Aliases {
			h.aliasLookup[strings.ToLower(alias)] = topicName
		}
	}
	return h
}

// Defaults returns the built-in help set.
func Defaults() *Help {
	data := &HelpData{
		Topics:      make(map[string]Topic, len(builtinTopics)),
		GeneralHelp: builtinGeneralHelp,
		AdminHelp:   builtinAdminHelp,
	}
	for name, topic := range builtinTopics {
		data.Topics[name] = topic
	}
	return newHelp(data)
}

// Load reads a YAML help file and merges it over the built-in set.
// File topics replace same-named built-ins; non-empty general/admin
// sections replace the built-in ones.
func Load(path string) (*Help, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read help file: %w", err)
	}

	var fileData HelpData
	if err := yaml.Unmarshal(raw, &fileData); err != nil {
		return nil, fmt.Errorf("failed to parse help file: %w", err)
	}

	merged := Defaults().data
	for name, topic := range fileData.Topics {
		merged.Topics[name] = topic
	}
	if strings.TrimSpace(fileData.GeneralHelp) != "" {
		merged.GeneralHelp = fileData.GeneralHelp
	}
	if strings.TrimSpace(fileData.AdminHelp) != "" {
		merged.AdminHelp = fileData.AdminHelp
	}

	return newHelp(merged), nil
}

// Initialize loads the help file and sets the singleton instance. On
// failure the built-in set is installed and the error returned, so the
// game always has help to serve.
func Initialize(path string) error {
	var err error
	once.Do(func() {
		instance, err = Load(path)
		if err != nil {
			instance = Defaults()
		}
	})
	return err
}

// GetInstance returns the singleton help set. Before Initialize runs it
// returns the built-in defaults.
func GetInstance() *Help {
	if instance == nil {
		return Defaults()
	}
	return instance
}

// GetTopic returns help text for a topic or alias, or empty when the
// topic is unknown.
func (h *Help) GetTopic(topic string) string {
	topicName, ok := h.aliasLookup[strings.ToLower(topic)]
	if !ok {
		return ""
	}
	return strings.TrimSpace(h.data.Topics[topicName].Text)
}

// GetGeneralHelp returns the general command overview.
func (h *Help) GetGeneralHelp() string {
	return strings.TrimSpace(h.data.GeneralHelp)
}

// GetAdminHelp returns the staff command overview.
func (h *Help) GetAdminHelp() string {
	return strings.TrimSpace(h.data.AdminHelp)
}

// GetHelpText returns help for a topic, or the general overview when
// topic is empty. Admin viewers get the staff section appended to the
// overview.
func (h *Help) GetHelpText(topic string, isAdmin bool) string {
	if topic == "" {
		text := h.GetGeneralHelp()
		if isAdmin {
			text += "\n" + h.GetAdminHelp()
		}
		return text
	}

	text := h.GetTopic(topic)
	if text == "" {
		return fmt.Sprintf("No help available for '%s'.\nType 'help' for a list of commands.", topic)
	}
	return text
}
