// Package httputil provides the HTTP client plumbing used by the remote
// export backend.
//
// # Retry
//
// [Retry] runs an operation with exponential backoff. Only errors wrapped in
// [RetryableError] are retried; everything else returns immediately:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    ...
//	})
//
// # Client
//
// [Client.Post] wraps a POST in Retry, classifies network errors, 429 and
// 5xx responses as retryable, and reports every attempt to the registered
// observability HTTP hooks.
package httputil
