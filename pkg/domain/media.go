package domain

import "time"

// Media is an uploaded image that image elements reference by URL.
type Media struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	StorageKey  string    `json:"-"`
	URL         string    `json:"url"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	BlurHash    string    `json:"blurhash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Sticker is one entry of the sticker library. Stickers are global, read-only
// catalog items loaded from the sticker manifest.
type Sticker struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Tags     []string `json:"tags,omitempty"`
	// File is the path relative to the sticker directory. Empty for inline stickers.
	File string `json:"-"`
	// Emoji is set for built-in stickers rendered from a glyph instead of a file.
	Emoji string `json:"emoji,omitempty"`
	URL   string `json:"url,omitempty"`
}

// StickerCategory groups stickers in the library picker.
type StickerCategory struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}
