// Package httputil provides retry with exponential backoff for the tag
// source clients.
//
// Only errors wrapped with [Retryable] are retried: transport failures and
// 5xx responses are transient, while a 404 or a malformed payload will not
// get better by asking again.
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return httputil.Retryable(err)
//	    }
//	    ...
//	})
//
// [RetryWithBackoff] makes 3 attempts starting with a 1 second delay that
// doubles after each failure. A cancelled context stops the wait.
package httputil
