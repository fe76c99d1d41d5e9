package storage

import "context"

// ArchiveStore keeps verbatim copies of inbound notification mails. Archival
// is best-effort: the portal keeps working when the store is unavailable.
type ArchiveStore interface {
	// Put stores the raw payload under the given key and returns the key.
	Put(ctx context.Context, key string, payload []byte) (string, error)
	Get(ctx context.Context, key string) ([]byte, error)
}
