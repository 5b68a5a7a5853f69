package contracts

import "context"

// ArchiveStorage keeps raw JSON documents such as provider responses and webhook payloads.
type ArchiveStorage interface {
	PutJSON(ctx context.Context, objectName string, body []byte) error
}
