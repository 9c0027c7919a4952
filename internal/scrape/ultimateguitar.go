package scrape

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/starford/bandhub/internal/models"
)

// DefaultUGBaseURL is the Ultimate Guitar site root.
const DefaultUGBaseURL = "https://www.ultimate-guitar.com"

// UltimateGuitar searches for tabs and reads tab pages. Both kinds of page
// embed their data as JSON in the data-content attribute of div.js-store.
type UltimateGuitar struct {
	Client  *http.Client
	BaseURL string
	// Cache, when set, holds search pages.
	Cache Cache

	now func() time.Time
}

// NewUltimateGuitar returns a scraper rooted at baseURL (DefaultUGBaseURL when empty).
func NewUltimateGuitar(c *http.Client, baseURL string, cache Cache) *UltimateGuitar {
	if baseURL == "" {
		baseURL = DefaultUGBaseURL
	}
	return &UltimateGuitar{Client: c, BaseURL: strings.TrimRight(baseURL, "/"), Cache: cache, now: time.Now}
}

type ugResult struct {
	SongName   string    `json:"song_name"`
	ArtistName string    `json:"artist_name"`
	TabURL     string    `json:"tab_url"`
	Type       string    `json:"type"`
	Rating     flexFloat `json:"rating"`
	Votes      flexFloat `json:"votes"`
	AccessType string    `json:"tab_access_type"`
}

func (r ugResult) candidate() models.MatchCandidate {
	return models.MatchCandidate{
		Title:      r.SongName,
		ArtistName: r.ArtistName,
		URL:        r.TabURL,
		Rating:     float64(r.Rating),
		Votes:      int(r.Votes),
		AccessType: r.AccessType,
		TypeLabel:  r.Type,
	}
}

type ugStore struct {
	Store struct {
		Page struct {
			Data struct {
				Results []ugResult `json:"results"`
				Tab     ugResult   `json:"tab"`
				TabView struct {
					WikiTab struct {
						Content string `json:"content"`
					} `json:"wiki_tab"`
					Meta struct {
						Capo   flexFloat `json:"capo"`
						Tuning struct {
							Name  string `json:"name"`
							Value string `json:"value"`
						} `json:"tuning"`
					} `json:"meta"`
				} `json:"tab_view"`
			} `json:"data"`
		} `json:"page"`
	} `json:"store"`
}

// parseStore extracts the js-store JSON from an Ultimate Guitar page.
func parseStore(body []byte) (*ugStore, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	raw, ok := doc.Find("div.js-store").First().Attr("data-content")
	if !ok || strings.TrimSpace(raw) == "" {
		return nil, ErrNoData
	}
	var st ugStore
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoData, err)
	}
	return &st, nil
}

// Search runs a title search and returns every result as a candidate.
// Filtering and ranking are left to the caller.
func (u *UltimateGuitar) Search(ctx context.Context, query string) ([]models.MatchCandidate, error) {
	q := url.Values{}
	q.Set("search_type", "title")
	q.Set("value", query)
	target := u.BaseURL + "/search.php?" + q.Encode()

	body, err := cachedGet(ctx, u.Client, u.Cache, "ug:search:"+strings.ToLower(query), target, nil)
	if err != nil {
		return nil, fmt.Errorf("scrape: ug search: %w", err)
	}
	st, err := parseStore(body)
	if err != nil {
		// A page without a store means no results, not a failure.
		return nil, nil
	}
	results := st.Store.Page.Data.Results
	out := make([]models.MatchCandidate, 0, len(results))
	for _, r := range results {
		out = append(out, r.candidate())
	}
	return out, nil
}

// FetchTab downloads a tab page and returns its stored form.
func (u *UltimateGuitar) FetchTab(ctx context.Context, tabURL string) (*models.TabPayload, error) {
	body, err := get(ctx, u.Client, tabURL, nil)
	if err != nil {
		return nil, fmt.Errorf("scrape: ug tab: %w", err)
	}
	st, err := parseStore(body)
	if err != nil {
		return nil, fmt.Errorf("scrape: ug tab: %w", err)
	}
	data := st.Store.Page.Data
	content := data.TabView.WikiTab.Content
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("scrape: ug tab: %w", ErrNoData)
	}

	tuning := data.TabView.Meta.Tuning.Value
	if tuning == "" {
		tuning = data.TabView.Meta.Tuning.Name
	}
	tabURLOut := data.Tab.TabURL
	if tabURLOut == "" {
		tabURLOut = tabURL
	}
	now := u.now
	if now == nil {
		now = time.Now
	}
	return &models.TabPayload{
		Title:     data.Tab.SongName,
		Artist:    data.Tab.ArtistName,
		URL:       tabURLOut,
		Type:      data.Tab.Type,
		Rating:    float64(data.Tab.Rating),
		Votes:     int(data.Tab.Votes),
		Tuning:    tuning,
		Capo:      int(data.TabView.Meta.Capo),
		Content:   content,
		FetchedAt: now().UTC(),
	}, nil
}
