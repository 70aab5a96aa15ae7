package services

import "github.com/desertthunder/gmusic/internal/models"

// TrackURLPrefix prefixes the catalog id in track result URLs.
const TrackURLPrefix = "gmusic:track:"

// TrackURL builds the resolver's resource identifier for a catalog track id.
func TrackURL(nid string) string {
	return TrackURLPrefix + nid
}

// NormalizeScore scales a raw catalog relevance score.
func NormalizeScore(raw float64) float64 {
	return raw / models.ScoreNormalization
}

// ConvertTrack maps a catalog track to a [models.TrackResult]. Duration is converted from milliseconds to seconds.
func ConvertTrack(t *GMusicTrack) models.TrackResult {
	result := models.TrackResult{
		Artist:     t.Artist,
		Album:      t.Album,
		Track:      t.Title,
		Year:       t.Year,
		AlbumPos:   t.TrackNumber,
		DiscNumber: t.DiscNumber,
		URL:        TrackURL(models.Deref(t.Nid)),
		Checked:    true,
	}

	if t.EstimatedSize.Valid {
		size := t.EstimatedSize.Value
		result.Size = &size
	}

	if t.DurationMillis.Valid {
		seconds := float64(t.DurationMillis.Value) / 1000
		result.Duration = &seconds
	}

	return result
}

// ConvertAlbum maps a catalog album to a [models.AlbumResult].
func ConvertAlbum(a *GMusicAlbum) models.AlbumResult {
	return models.AlbumResult{
		Artist: a.Artist,
		Album:  a.Name,
		Year:   a.Year,
	}
}

// ConvertArtist maps a catalog artist to a [models.ArtistResult].
func ConvertArtist(a *GMusicArtist) models.ArtistResult {
	return models.ArtistResult{Name: a.Name}
}
