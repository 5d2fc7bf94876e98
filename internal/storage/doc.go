// Package storage memoizes fetched pages so repeated scrapes do not hit the
// network again.
//
// A Cache maps a key of the form "<name>::<argument>" to an opaque blob. Blobs
// are stored gzip-compressed, either as files under a local data directory
// (default ~/.local/share/fb-events) or as objects in an S3 bucket.
package storage
