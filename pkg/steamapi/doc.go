// Package steamapi is a small client for the Steam Web API.
//
// Every accessor (GetUserProfile, GetOwnedGames, ResolveVanityURL, ...) is a
// fixed endpoint plus a RequestConfig handed to Client.Execute, which:
//
//  1. adds the key and format=json query parameters,
//  2. performs one request through the injected httpclient.Client,
//  3. decodes the body and rejects Steam's in-band errors,
//  4. rejects any status other than 200,
//  5. walks the configured path into the decoded value.
//
// Failures at each stage have their own type (DecodeError, ServiceError,
// HTTPStatusError, PathError) and sentinel (ErrDecode, ErrService,
// ErrHTTPStatus, ErrPath):
//
//	client, _ := steamapi.New(key, httpclient.NewRestyClient(15*time.Second))
//	player, err := client.GetUserProfile(ctx, "76561197960287930")
//	var pathErr *steamapi.PathError
//	if errors.As(err, &pathErr) {
//		// no such player
//	}
//
// Decoded values are plain trees of map[string]any, []any, json.Number,
// string and bool.
package steamapi
