// Package session handles saving and restoring reader session state.
package session

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// ViewState represents a single document view in history.
type ViewState struct {
	Source string `json:"source"` // URL or file path
	Scroll int    `json:"scroll"`
	View   string `json:"view"` // "preview" or "source"
}

// Buffer represents an open document with its navigation history.
type Buffer struct {
	History []ViewState `json:"history"` // back stack
	Current ViewState   `json:"current"`
	Forward []ViewState `json:"forward"` // forward stack
}

// Session represents the complete reader session state.
type Session struct {
	Buffers          []Buffer `json:"buffers"`
	CurrentBufferIdx int      `json:"currentBufferIdx"`
	SearchHistory    []string `json:"searchHistory"`
	OpenHistory      []string `json:"openHistory"`
}

// Path returns the session file path.
func Path() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "headway", "session.json"), nil
}

// Load reads the session from disk.
func Load() (*Session, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}

	return &s, nil
}

// Save writes the session to disk.
func Save(s *Session) error {
	path, err := Path()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Clear removes the session file.
func Clear() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return os.Remove(path)
}
