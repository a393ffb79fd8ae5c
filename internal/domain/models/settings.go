package models

import (
	"encoding/json"
)

// Font family choices for the editor surface.
const (
	FontSerif = "serif"
	FontSans  = "sans"
	FontMono  = "mono"
)

// EditorSettings is the per-user (remote) or per-browser (guest) editor
// configuration. One instance per session. Loads always merge onto defaults
// so unknown or missing fields never break the caller.
type EditorSettings struct {
	FontSize           int     `json:"fontSize"`
	LineHeight         float64 `json:"lineHeight"`
	FontFamily         string  `json:"fontFamily"`
	MarkdownMode       bool    `json:"markdownMode"`
	EnableAIRefinement bool    `json:"enableAiRefinement"`
	DarkMode           bool    `json:"darkMode"`
	TypewriterMode     bool    `json:"typewriterMode"`
}

// SettingsPatch is a partial settings update; nil fields are left unchanged.
type SettingsPatch struct {
	FontSize           *int     `json:"fontSize,omitempty"`
	LineHeight         *float64 `json:"lineHeight,omitempty"`
	FontFamily         *string  `json:"fontFamily,omitempty"`
	MarkdownMode       *bool    `json:"markdownMode,omitempty"`
	EnableAIRefinement *bool    `json:"enableAiRefinement,omitempty"`
	DarkMode           *bool    `json:"darkMode,omitempty"`
	TypewriterMode     *bool    `json:"typewriterMode,omitempty"`
}

// DefaultSettings returns the baseline configuration.
func DefaultSettings() EditorSettings {
	return EditorSettings{
		FontSize:           16,
		LineHeight:         1.6,
		FontFamily:         FontSerif,
		MarkdownMode:       false,
		EnableAIRefinement: true,
		DarkMode:           false,
		TypewriterMode:     false,
	}
}

// MergeSettings decodes a stored settings blob on top of the defaults.
// Unknown fields are ignored; a malformed blob yields plain defaults.
func MergeSettings(raw []byte) EditorSettings {
	settings := DefaultSettings()
	if len(raw) == 0 {
		return settings
	}
	var patch SettingsPatch
	if err := json.Unmarshal(raw, &patch); err != nil {
		return DefaultSettings()
	}
	settings.Apply(&patch)
	return settings
}

// Apply overlays non-nil patch fields onto the settings.
func (s *EditorSettings) Apply(patch *SettingsPatch) {
	if patch == nil {
		return
	}
	if patch.FontSize != nil {
		s.FontSize = *patch.FontSize
	}
	if patch.LineHeight != nil {
		s.LineHeight = *patch.LineHeight
	}
	if patch.FontFamily != nil {
		s.FontFamily = *patch.FontFamily
	}
	if patch.MarkdownMode != nil {
		s.MarkdownMode = *patch.MarkdownMode
	}
	if patch.EnableAIRefinement != nil {
		s.EnableAIRefinement = *patch.EnableAIRefinement
	}
	if patch.DarkMode != nil {
		s.DarkMode = *patch.DarkMode
	}
	if patch.TypewriterMode != nil {
		s.TypewriterMode = *patch.TypewriterMode
	}
}
