// Package fetch retrieves pages over HTTP for the crawler.
//
// # Components
//
//   - NewHTTPClient: an *http.Client with optional SOCKS5 proxy, header and
//     cookie injection, and a redirect limit
//   - Fetcher: one GET per call that returns UTF-8 markup or a *TransportError
//   - CheckProxy: a SOCKS5 greeting used to fail fast on a bad --proxy
//
// # Errors
//
// Every failed fetch is a *TransportError. It unwraps to the cause, so
// errors.Is(err, ErrUnexpectedStatus) identifies non-2xx responses and
// Timeout() identifies deadline failures.
//
// # Usage
//
//	client, err := fetch.NewHTTPClient(fetch.ClientOptions{Timeout: 15 * time.Second})
//	f := fetch.NewFetcher(client, fetch.WithUserAgent("pagecrawl/1.0"))
//	body, err := f.Fetch(ctx, "https://example.com/")
package fetch
