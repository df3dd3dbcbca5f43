package catalog

// Track is one search result from the music catalog.
type Track struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Artists     []string `json:"artists"` // lead artist first
	Album       string   `json:"album"`
	AlbumArt    string   `json:"albumArt"`
	PreviewURL  string   `json:"previewUrl"`
	ExternalURL string   `json:"externalUrl"`
	ReleaseDate string   `json:"releaseDate"` // YYYY or YYYY-MM-DD, granularity varies
	DurationMs  int      `json:"durationMs"`
	Popularity  int      `json:"popularity"` // 0-100
}

// PrimaryArtist returns the lead artist, or "" when the catalog sent none.
func (t Track) PrimaryArtist() string {
	if len(t.Artists) == 0 {
		return ""
	}
	return t.Artists[0]
}

// ReleaseYear reduces the release date to its year component.
func (t Track) ReleaseYear() string {
	if len(t.ReleaseDate) >= 4 {
		return t.ReleaseDate[:4]
	}
	return t.ReleaseDate
}
