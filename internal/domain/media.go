package domain

import "time"

type (
	PlaylistID string
	ItemID     string
)

// MediaSnapshot is a full copy of a media item's fields at play time.
// History keeps the copy, so later playlist edits never rewrite the past.
type MediaSnapshot struct {
	SourceType string `json:"sourceType"`
	SourceID   string `json:"sourceID"`
	Artist     string `json:"artist"`
	Title      string `json:"title"`
	Duration   int    `json:"duration"` // seconds
	Start      int    `json:"start"`    // cut points, seconds
	End        int    `json:"end"`
}

// PlayDuration is how long the media actually plays, honoring cut points.
func (m MediaSnapshot) PlayDuration() time.Duration {
	secs := m.Duration
	if m.End > m.Start {
		secs = m.End - m.Start
	}
	return time.Duration(secs) * time.Second
}

type PlaylistItem struct {
	ID    ItemID        `json:"id"`
	Media MediaSnapshot `json:"media"`
}

// Playlist is the engine-facing view of a playlist: ownership and size,
// not the full item list.
type Playlist struct {
	ID     PlaylistID `json:"id"`
	Owner  UserID     `json:"owner"`
	Name   string     `json:"name"`
	Active bool       `json:"active"`
	Size   int        `json:"size"`
}
