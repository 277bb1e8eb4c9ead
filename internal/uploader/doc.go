// Package uploader submits finished images to marketplace contributor APIs
// over HTTP multipart uploads. Uploads are rate limited by a configurable
// minimum interval and retried on throttling and server errors.
package uploader
