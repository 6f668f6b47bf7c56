// Package http provides the HTTP client used to fetch catalog records.
//
// This package handles:
//   - GET requests with context deadlines
//   - JSON decoding of response bodies
//   - Retry with exponential backoff on transport errors and 5xx responses
//   - Mapping of 401/403/404 to sentinel errors
//
// # Usage
//
//	client := http.NewClient(Options{
//	    Timeout:       30 * time.Second,
//	    RetryAttempts: 5,
//	})
//
//	var item catalog.Item
//	err := client.GetJSON(ctx, itemURL, &item)
package http
