package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/gmusic/internal/models"
	"github.com/desertthunder/gmusic/internal/shared"
)

// Search runs a catalog query and classifies the hits into tracks, albums and artists.
//
// Calls GET {base}query?q={query}[&max-results={maxResults}].
func (c *Client) Search(ctx context.Context, query string, maxResults int) (*models.Results, error) {
	c.logger.Info("got search", "query", query)

	resp, err := c.Do(ctx, http.MethodGet, c.searchURL(query, maxResults))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("search failed",
			"query", query,
			"status", resp.Status,
			"body", strings.TrimSpace(string(resp.Body)),
		)
		return nil, fmt.Errorf("%w: %s", shared.ErrUnexpectedStatus, resp.Status)
	}

	results, err := ParseSearchResponse(resp.Body)
	if err != nil {
		c.logger.Error("search response malformed", "query", query, "err", err)
		return nil, err
	}
	return results, nil
}

func (c *Client) searchURL(query string, maxResults int) string {
	params := url.Values{"q": {query}}
	if maxResults > 0 {
		params.Set("max-results", strconv.Itoa(maxResults))
	}
	return c.baseURL + "query?" + params.Encode()
}

// ParseSearchResponse decodes a query response body into a [models.Results] bundle.
//
// A body without "entries" is an empty result, not an error. Entries with an unknown type code, or
// whose payload for their type is missing, are skipped.
func ParseSearchResponse(body []byte) (*models.Results, error) {
	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrDecodeResponse, err)
	}

	results := models.NewResults()
	for _, entry := range resp.Entries {
		score := NormalizeScore(entry.Score)

		switch string(entry.Type) {
		case entryTrack:
			if entry.Track == nil {
				continue
			}
			track := ConvertTrack(entry.Track)
			track.Score = score
			results.Tracks = append(results.Tracks, track)
		case entryArtist:
			if entry.Artist == nil {
				continue
			}
			artist := ConvertArtist(entry.Artist)
			artist.Score = score
			results.Artists = append(results.Artists, artist)
		case entryAlbum:
			if entry.Album == nil {
				continue
			}
			album := ConvertAlbum(entry.Album)
			album.Score = score
			results.Albums = append(results.Albums, album)
		}
	}

	return results, nil
}
