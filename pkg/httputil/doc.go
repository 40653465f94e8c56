// Package httputil provides the HTTP plumbing behind kgview's backend client.
//
// # Overview
//
//   - [Client]: JSON GET requests with default headers, status mapping,
//     observability hooks and automatic retry
//   - [ResponseCache]: file-based cache of decoded responses with a TTL
//   - [Retry]: retry with exponential backoff for [RetryableError]s
//
// # Caching
//
// [ResponseCache] keeps decoded responses under ~/.cache/kgview/http so
// repeated graph fetches do not hit the knowledge-base backend:
//
//	rc, _ := httputil.NewResponseCache("", 10*time.Minute)
//	client := httputil.NewClient(httputil.WithCache(rc))
//	err := client.Cached(ctx, "graph:kb-1", false, &resp, func() error {
//	    return client.GetJSON(ctx, url, &resp)
//	})
//
// # Retry
//
// Transport failures and 5xx responses are wrapped in [RetryableError];
// 4xx responses are returned immediately as coded errors from package
// errors (NOT_FOUND, UNAUTHORIZED, UPSTREAM_ERROR).
package httputil
