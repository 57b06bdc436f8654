package team

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"sigs.k8s.io/yaml"
)

// RosterEntry is one team in a roster file.
type RosterEntry struct {
	Name    string   `json:"name"`
	Topic   string   `json:"topic,omitempty"`
	Members []string `json:"members,omitempty"`
}

// ParseRoster decodes a YAML or JSON roster: either a list of entries or an
// object with a "teams" list.
func ParseRoster(data []byte) ([]RosterEntry, error) {
	var list []RosterEntry
	if err := yaml.Unmarshal(data, &list); err != nil {
		var doc struct {
			Teams []RosterEntry `json:"teams"`
		}
		if err2 := yaml.Unmarshal(data, &doc); err2 != nil {
			return nil, fmt.Errorf("decoding roster: %w", err)
		}
		list = doc.Teams
	}

	for i := range list {
		if err := list[i].normalize(); err != nil {
			return nil, fmt.Errorf("roster entry %d: %w", i+1, err)
		}
	}

	return list, nil
}

// normalize applies the same trimming, defaults and limits as a team created
// through the API.
func (e *RosterEntry) normalize() error {
	e.Name = strings.TrimSpace(e.Name)
	if e.Name == "" {
		return errors.New("name is required")
	}
	if utf8.RuneCountInString(e.Name) > MaxFieldLength {
		return fmt.Errorf("name must be at most %d characters", MaxFieldLength)
	}

	e.Topic = strings.TrimSpace(e.Topic)
	if e.Topic == "" {
		e.Topic = DefaultTopic
	}
	if utf8.RuneCountInString(e.Topic) > MaxFieldLength {
		return fmt.Errorf("topic must be at most %d characters", MaxFieldLength)
	}

	e.Members = NormalizeMembers(e.Members)
	if len(e.Members) > MaxMembers {
		return fmt.Errorf("members must contain at most %d items", MaxMembers)
	}
	for j, m := range e.Members {
		if utf8.RuneCountInString(m) > MaxFieldLength {
			return fmt.Errorf("members[%d] must be at most %d characters", j, MaxFieldLength)
		}
	}
	return nil
}

// LoadRoster reads and parses a roster file.
func LoadRoster(path string) ([]RosterEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading roster: %w", err)
	}
	return ParseRoster(data)
}
