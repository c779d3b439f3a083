// Package fetch downloads release artifacts over HTTP and unpacks them.
//
// Archives are streamed: the response body feeds the decompressor and the
// tar reader directly, so a progress tracker can follow the download while
// extraction is in flight. Zip archives need random access and are spooled
// to a temporary file first. Every failure is reported as a *FetchError
// that carries the URL and, when one was received, the HTTP status.
package fetch
