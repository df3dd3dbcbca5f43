package history

import (
	"time"

	"github.com/PeytonNagle/MoodMusic2/internal/recommend"
)

// SaveJob is one queued history write: the request, its analysis and the
// final track list. ID is only used for log correlation.
type SaveJob struct {
	ID       string
	Query    recommend.MoodQuery
	Analysis recommend.MoodAnalysis
	Tracks   []recommend.EnrichedTrack
}

// PastSearch is one history row with its saved songs, newest first in
// listings.
type PastSearch struct {
	RequestID       int64                     `json:"request_id"`
	TextDescription string                    `json:"text_description"`
	Emojis          []string                  `json:"emojis"`
	NumSongs        int                       `json:"num_songs_requested"`
	Analysis        recommend.MoodAnalysis    `json:"analysis"`
	CreatedAt       time.Time                 `json:"created_at"`
	Songs           []recommend.EnrichedTrack `json:"songs"`
}

// User is an account row. PasswordHash never leaves this package's callers
// unredacted.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	DisplayName  string    `json:"display_name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
