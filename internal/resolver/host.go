package resolver

import (
	"github.com/charmbracelet/log"
	"github.com/desertthunder/gmusic/internal/models"
)

// AssetReader loads bundled resolver assets (config.ui, images) as base64 strings.
type AssetReader interface {
	ReadBase64(name string) (string, error)
}

// ResultSink receives result lists, each tagged with the query id that produced it.
type ResultSink interface {
	AddTrackResults(qid string, results []models.TrackResult)
	AddAlbumResults(qid string, results []models.AlbumResult)
	AddArtistResults(qid string, results []models.ArtistResult)
}

// ConfigSource returns the user's saved resolver configuration.
type ConfigSource interface {
	UserConfig() models.Credentials
}

// StaticConfig is a [ConfigSource] that always returns the same credentials.
type StaticConfig models.Credentials

func (s StaticConfig) UserConfig() models.Credentials {
	return models.Credentials(s)
}

// Host bundles the services a host application provides to a resolver.
type Host struct {
	Logger *log.Logger
	Assets AssetReader
	Sink   ResultSink
	Config ConfigSource
}
