// Package snapshot persists and transports index snapshots.
//
// FileStore keeps the local snapshot and replaces it atomically. Remote
// snapshots are read through a SnapshotSource chosen by the location's
// scheme:
//
//	https://host/path/snapshot.json
//	s3://bucket/key
//	github://owner/repo/path/snapshot.json@ref
//
// S3Publisher uploads a snapshot to an s3:// location.
package snapshot
