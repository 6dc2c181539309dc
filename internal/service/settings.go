package service

import (
	"github.com/journalapp/journal-server/internal/config"
)

// EditorSettings are the editing defaults handed to clients.
type EditorSettings struct {
	NudgeStep       float64 `json:"nudge_step"`
	NudgeStepLarge  float64 `json:"nudge_step_large"`
	DebounceMS      int64   `json:"debounce_ms"`
	HistoryCapacity int     `json:"history_capacity"`
	GridSize        float64 `json:"grid_size"`
	MinElementSize  float64 `json:"min_element_size"`
	DuplicateOffset float64 `json:"duplicate_offset"`
	MaxUploadBytes  int64   `json:"max_upload_bytes"`
}

// SettingsService serves the editor defaults from configuration.
type SettingsService struct {
	settings EditorSettings
}

// NewSettingsService creates a new settings service.
func NewSettingsService(cfg *config.Config) *SettingsService {
	return &SettingsService{settings: EditorSettings{
		NudgeStep:       cfg.Editor.NudgeStep,
		NudgeStepLarge:  cfg.Editor.NudgeStepLarge,
		DebounceMS:      cfg.Editor.Debounce.Milliseconds(),
		HistoryCapacity: cfg.Editor.HistoryCapacity,
		GridSize:        cfg.Editor.GridSize,
		MinElementSize:  cfg.Editor.MinElementSize,
		DuplicateOffset: cfg.Editor.DuplicateOffset,
		MaxUploadBytes:  cfg.Media.MaxUploadBytes,
	}}
}

// Editor returns the editor defaults.
func (s *SettingsService) Editor() EditorSettings {
	return s.settings
}

// ElementRules derives the element write rules from the editor settings.
func (s *SettingsService) ElementRules() ElementRules {
	return ElementRules{MinSize: s.settings.MinElementSize, DuplicateOffset: s.settings.DuplicateOffset}
}
