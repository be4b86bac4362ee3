// Package client is the transport to the FileFlex backend REST API.
//
// Every call goes through the same pipeline:
//   - expired JWT tokens fail fast without a round trip
//   - a circuit breaker rejects calls while the backend is known to be down
//   - a rate limiter paces requests
//   - resty sends the request over a go-retryablehttp transport; only GET
//     requests are retried, so operations are never replayed
//   - the {code, message, data, timestamp} envelope is unwrapped and a
//     non-200 code becomes a types.TransportError carrying the backend
//     message
//
// A context without a deadline gets the default request timeout. Uploads,
// saves and downloads pass their own deadline instead.
//
// Example Usage:
//
//	c, err := client.New(client.OptionsFromConfig(cfg.Backend))
//	if err != nil {
//		return err
//	}
//	page, err := c.FetchListing(ctx, "/docs", 1, 20)
package client
