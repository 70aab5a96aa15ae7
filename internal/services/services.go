// package services defines interface Catalog for the Google Play Music API
package services

import (
	"context"

	"github.com/desertthunder/gmusic/internal/models"
)

// Catalog defines the operations the resolver needs from a music catalog.
type Catalog interface {
	// SetCredentials replaces the account used by subsequent logins.
	SetCredentials(creds models.Credentials)

	// Login exchanges the current credentials for a session token.
	Login(ctx context.Context) error

	// Search runs a free-text query. maxResults <= 0 leaves the result count to the catalog.
	Search(ctx context.Context, query string, maxResults int) (*models.Results, error)
}
