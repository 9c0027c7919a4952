package scrape

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/starford/bandhub/internal/matcher"
)

// DefaultGeniusAPIBase is the Genius API root.
const DefaultGeniusAPIBase = "https://api.genius.com"

// Genius finds songs through the Genius API and reads lyrics from the
// song pages it links to.
type Genius struct {
	Client  *http.Client
	APIBase string
	Token   string
	// Cache, when set, holds search responses.
	Cache Cache
}

// NewGenius returns a Genius client. token is sent as a Bearer token.
func NewGenius(c *http.Client, apiBase, token string, cache Cache) *Genius {
	if apiBase == "" {
		apiBase = DefaultGeniusAPIBase
	}
	return &Genius{Client: c, APIBase: strings.TrimRight(apiBase, "/"), Token: token, Cache: cache}
}

// GeniusSong is one search hit.
type GeniusSong struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
	URL    string `json:"url"`
}

type geniusSearch struct {
	Response struct {
		Hits []struct {
			Result struct {
				Title         string `json:"title"`
				URL           string `json:"url"`
				PrimaryArtist struct {
					Name string `json:"name"`
				} `json:"primary_artist"`
			} `json:"result"`
		} `json:"hits"`
	} `json:"response"`
}

// Search looks up "title artist" and returns the first hit whose normalized
// title and artist contain the query's, falling back to the first hit.
// It returns nil when there are no hits.
func (g *Genius) Search(ctx context.Context, title, artist string) (*GeniusSong, error) {
	query := strings.TrimSpace(title + " " + artist)
	target := g.APIBase + "/search?" + url.Values{"q": {query}}.Encode()
	header := http.Header{
		"Authorization": {"Bearer " + g.Token},
		"Accept":        {"application/json"},
	}

	body, err := cachedGet(ctx, g.Client, g.Cache, "genius:search:"+strings.ToLower(query), target, header)
	if err != nil {
		return nil, fmt.Errorf("scrape: genius search: %w", err)
	}
	var res geniusSearch
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("scrape: genius search: %w", err)
	}

	hits := res.Response.Hits
	if len(hits) == 0 {
		return nil, nil
	}
	titleNorm, artistNorm := matcher.Normalize(title), matcher.Normalize(artist)
	pick := -1
	for i, h := range hits {
		if h.Result.URL == "" && h.Result.Title == "" {
			continue
		}
		if titleNorm != "" && !strings.Contains(matcher.Normalize(h.Result.Title), titleNorm) {
			continue
		}
		if artistNorm != "" && !strings.Contains(matcher.Normalize(h.Result.PrimaryArtist.Name), artistNorm) {
			continue
		}
		pick = i
		break
	}
	if pick < 0 {
		pick = 0
	}
	r := hits[pick].Result
	return &GeniusSong{Title: r.Title, Artist: r.PrimaryArtist.Name, URL: r.URL}, nil
}

// FetchLyrics downloads a song page and extracts its lyrics. Line breaks
// become newlines and separate lyric containers are joined by a blank line.
func (g *Genius) FetchLyrics(ctx context.Context, songURL string) (string, error) {
	body, err := get(ctx, g.Client, songURL, http.Header{"Accept": {"text/html"}})
	if err != nil {
		return "", fmt.Errorf("scrape: genius lyrics: %w", err)
	}
	lyrics, err := ExtractLyrics(body)
	if err != nil {
		return "", fmt.Errorf("scrape: genius lyrics: %w", err)
	}
	return lyrics, nil
}

// ExtractLyrics pulls lyrics out of a Genius song page.
func ExtractLyrics(page []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return "", err
	}
	containers := doc.Find(`div[data-lyrics-container="true"]`)
	if containers.Length() == 0 {
		containers = doc.Find("div.lyrics").First()
	}

	var chunks []string
	containers.Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(selectionText(s)); text != "" {
			chunks = append(chunks, text)
		}
	})
	lyrics := strings.TrimSpace(strings.Join(chunks, "\n\n"))
	if lyrics == "" {
		return "", ErrNoData
	}
	return lyrics, nil
}

// selectionText renders text with <br> as newline and each text node on
// its own line, then drops blank runs left by the markup.
func selectionText(s *goquery.Selection) string {
	s.Find("br").ReplaceWithHtml("\n")
	var lines []string
	for _, line := range strings.Split(s.Text(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
