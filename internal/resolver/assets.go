package resolver

import (
	"embed"
	"encoding/base64"
	"fmt"
	"io/fs"
)

//go:embed assets/config.ui assets/play-logo.png
var bundled embed.FS

// FSAssets is an [AssetReader] backed by a filesystem.
type FSAssets struct {
	FS fs.FS
}

// ReadBase64 returns the named file's contents, base64 encoded.
func (a FSAssets) ReadBase64(name string) (string, error) {
	data, err := fs.ReadFile(a.FS, name)
	if err != nil {
		return "", fmt.Errorf("failed to read asset %s: %w", name, err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// BundledAssets returns the config dialog and logo shipped with the resolver.
func BundledAssets() FSAssets {
	sub, err := fs.Sub(bundled, "assets")
	if err != nil {
		panic(err)
	}
	return FSAssets{FS: sub}
}
