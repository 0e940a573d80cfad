// Package integrations provides the shared HTTP client used by tag sources.
//
// # Overview
//
// [Client] bundles what every remote API client needs:
//
//   - default request headers (accept type, API version, authentication)
//   - response caching through a [cache.Cache] with a key prefix and TTL
//   - retries with exponential backoff for transient failures
//   - mapping of HTTP status codes to sentinel errors
//
// Tag sources live in subpackages; [github] is the only one so far.
//
// # Errors
//
// Failures are distinguishable with errors.Is:
//
//   - [ErrNotFound]: the project does not exist (404)
//   - [ErrUnauthorized]: the credential was rejected (401, 403)
//   - [ErrNetwork]: transport failures and other non-success responses
//   - [ErrMalformed]: the response body does not have the expected shape
//
// Transport failures, 429 and 5xx responses are wrapped as retryable.
//
// [github]: github.com/bjoernmichaelsen/ghdepup/pkg/integrations/github
// [cache.Cache]: github.com/bjoernmichaelsen/ghdepup/pkg/cache.Cache
package integrations
