package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2/clientcredentials"
)

// ProviderError marks a total catalog failure (network, auth, quota).
// An empty result list is not an error.
type ProviderError struct {
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("catalog provider error: %v", e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// SpotifyClient searches the Spotify catalog using the client-credentials
// flow. The oauth2 transport caches and refreshes the app token.
type SpotifyClient struct {
	searchURL string
	market    string
	http      *http.Client
}

func NewSpotifyClient(clientID, clientSecret, tokenURL, searchURL string) *SpotifyClient {
	creds := clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
	}
	httpClient := creds.Client(context.Background())
	httpClient.Timeout = 10 * time.Second

	return &SpotifyClient{
		searchURL: searchURL,
		market:    "US",
		http:      httpClient,
	}
}

type spotifySearchResponse struct {
	Tracks struct {
		Items []struct {
			ID      string `json:"id"`
			Name    string `json:"name"`
			Artists []struct {
				Name string `json:"name"`
			} `json:"artists"`
			Album struct {
				Name   string `json:"name"`
				Images []struct {
					URL string `json:"url"`
				} `json:"images"`
				ReleaseDate string `json:"release_date"`
			} `json:"album"`
			PreviewURL   string `json:"preview_url"`
			ExternalURLs struct {
				Spotify string `json:"spotify"`
			} `json:"external_urls"`
			DurationMs int `json:"duration_ms"`
			Popularity int `json:"popularity"`
		} `json:"items"`
	} `json:"tracks"`
}

// SearchTracks runs one track search. Returns a ProviderError on transport
// or non-200 responses; an empty slice is a normal "no matches" outcome.
func (c *SpotifyClient) SearchTracks(ctx context.Context, query string, limit int) ([]Track, error) {
	if limit <= 0 || limit > 25 {
		limit = 5
	}

	val := url.Values{}
	val.Set("q", query)
	val.Set("type", "track")
	val.Set("limit", fmt.Sprint(limit))
	val.Set("market", c.market)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.searchURL+"?"+val.Encode(), nil)
	if err != nil {
		return nil, &ProviderError{Err: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &ProviderError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{Err: fmt.Errorf("spotify status %d", resp.StatusCode)}
	}

	var body spotifySearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &ProviderError{Err: err}
	}

	out := make([]Track, 0, len(body.Tracks.Items))
	for _, it := range body.Tracks.Items {
		artists := make([]string, 0, len(it.Artists))
		for _, a := range it.Artists {
			artists = append(artists, a.Name)
		}
		art := ""
		if len(it.Album.Images) > 0 {
			art = it.Album.Images[0].URL
		}
		out = append(out, Track{
			ID:          it.ID,
			Title:       it.Name,
			Artists:     artists,
			Album:       it.Album.Name,
			AlbumArt:    art,
			PreviewURL:  it.PreviewURL,
			ExternalURL: it.ExternalURLs.Spotify,
			ReleaseDate: it.Album.ReleaseDate,
			DurationMs:  it.DurationMs,
			Popularity:  it.Popularity,
		})
	}
	return out, nil
}

// TestConnection runs a cheap search to verify credentials and reachability.
func (c *SpotifyClient) TestConnection(ctx context.Context) bool {
	_, err := c.SearchTracks(ctx, "test", 1)
	return err == nil
}
