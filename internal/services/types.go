package services

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Entry type codes returned by the query endpoint.
const (
	entryTrack  = "1"
	entryArtist = "2"
	entryAlbum  = "3"
)

// searchResponse is the body of GET query. Entries is absent when nothing matched.
type searchResponse struct {
	Kind    string        `json:"kind"`
	Entries []searchEntry `json:"entries"`
}

// searchEntry is one scored hit; exactly one of Track, Album or Artist is set according to Type.
type searchEntry struct {
	Type   flexString    `json:"type"`
	Score  float64       `json:"score"`
	Track  *GMusicTrack  `json:"track,omitempty"`
	Album  *GMusicAlbum  `json:"album,omitempty"`
	Artist *GMusicArtist `json:"artist,omitempty"`
}

// GMusicTrack is a track as returned by the catalog.
type GMusicTrack struct {
	Nid            *string `json:"nid"`
	Title          *string `json:"title"`
	Artist         *string `json:"artist"`
	Album          *string `json:"album"`
	Year           *int    `json:"year"`
	TrackNumber    *int    `json:"trackNumber"`
	DiscNumber     *int    `json:"discNumber"`
	EstimatedSize  flexInt `json:"estimatedSize"`
	DurationMillis flexInt `json:"durationMillis"`
}

// GMusicAlbum is an album as returned by the catalog.
type GMusicAlbum struct {
	AlbumID *string `json:"albumId"`
	Name    *string `json:"name"`
	Artist  *string `json:"artist"`
	Year    *int    `json:"year"`
}

// GMusicArtist is an artist as returned by the catalog.
type GMusicArtist struct {
	ArtistID *string `json:"artistId"`
	Name     *string `json:"name"`
}

// flexInt accepts both JSON numbers and numeric strings; the API sends int64 fields quoted.
// Valid is false when the field is missing, null, or an empty string.
type flexInt struct {
	Value int64
	Valid bool
}

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		*f = flexInt{}
		return nil
	}
	v, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return err
	}
	*f = flexInt{Value: v, Valid: true}
	return nil
}

// flexString accepts a string or a bare number.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	if string(data) == "null" {
		return nil
	}
	*f = flexString(data)
	return nil
}
