package domain

import "time"

// Notebook is a travel journal owned by one user. Notebook.UserID is the
// authorization boundary for every page and element beneath it.
type Notebook struct {
	Syncable
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Description string     `json:"description"`
	CoverColor  string     `json:"cover_color"`
	TripStart   *time.Time `json:"trip_start,omitempty"`
	TripEnd     *time.Time `json:"trip_end,omitempty"`
	PageCount   int        `json:"page_count"`
}

// OwnedBy reports whether userID owns the notebook.
func (n *Notebook) OwnedBy(userID string) bool {
	return n.UserID != "" && n.UserID == userID
}

// TripDays returns the inclusive number of days covered by the trip dates,
// or 0 when either date is missing.
func (n *Notebook) TripDays() int {
	if n.TripStart == nil || n.TripEnd == nil || n.TripEnd.Before(*n.TripStart) {
		return 0
	}
	start := n.TripStart.Truncate(24 * time.Hour)
	end := n.TripEnd.Truncate(24 * time.Hour)
	return int(end.Sub(start).Hours()/24) + 1
}

// Page is one spread in a notebook. PageNumber orders pages within the notebook.
type Page struct {
	Syncable
	NotebookID string `json:"notebook_id"`
	Title      string `json:"title"`
	PageNumber int    `json:"page_number"`
	Background string `json:"background"`
}
