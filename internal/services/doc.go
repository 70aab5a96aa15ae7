// Package services implements the Google Play Music catalog client behind the resolver.
//
// # Catalog Interface
//
// [Catalog] is the narrow surface the resolver depends on: set credentials, log in, search.
// [Client] implements it against the skyjam ("sj") API.
//
// # Authentication
//
// [Client.Login] performs a legacy ClientLogin exchange: a form-encoded POST of the account
// email and password, answered by a text body whose "Auth=" line carries the session token.
// The token is kept as an [oauth2.Token] and sent as "Authorization: GoogleLogin auth=<token>".
// Concurrent logins are coalesced so that one exchange serves every waiting request.
//
// # Re-authentication
//
// Requests that come back 401 trigger a fresh login and are resent. The number of resends is
// bounded by [ClientOpts.MaxAuthRetries] (one by default); any other status is returned as-is.
//
// # Search
//
// [Client.Search] issues GET {base}query?q=...&max-results=N and classifies each entry by its
// type code into tracks ("1"), artists ("2") and albums ("3"). A response without "entries"
// yields empty lists; unknown type codes are dropped.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrNotConfigured] : credentials missing
//   - [shared.ErrAuthFailed] : login returned a non-200 status
//   - [shared.ErrTokenNotFound] : login body had no Auth= line
//   - [shared.ErrUnexpectedStatus] : search returned a non-200 status
//   - [shared.ErrDecodeResponse] : search body was not valid JSON
package services
