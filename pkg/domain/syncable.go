package domain

import "time"

// Syncable provides the identity and lifecycle timestamps shared by every
// journal entity. Soft-deleted rows keep their data and carry DeletedAt.
type Syncable struct {
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
	ID        string     `json:"id"`
}

// Touch updates the UpdatedAt timestamp to the current time.
func (s *Syncable) Touch() {
	s.UpdatedAt = time.Now().UTC()
}

// InitTimestamps sets both CreatedAt and UpdatedAt to now.
func (s *Syncable) InitTimestamps() {
	now := time.Now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now
}

// IsDeleted returns true if this entity has been soft-deleted.
func (s *Syncable) IsDeleted() bool {
	return s.DeletedAt != nil
}

// MarkDeleted soft-deletes the entity and bumps UpdatedAt.
func (s *Syncable) MarkDeleted() {
	now := time.Now().UTC()
	s.DeletedAt = &now
	s.UpdatedAt = now
}

// Restore clears the soft-delete marker.
func (s *Syncable) Restore() {
	s.DeletedAt = nil
	s.Touch()
}
