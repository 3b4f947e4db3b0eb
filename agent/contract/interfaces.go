package contract

import "context"

// Completer is the text-generation collaborator a pipeline delegates to.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// RecordStore holds booking records. Records are append-only.
type RecordStore interface {
	Init(ctx context.Context) error
	Close() error
	Append(ctx context.Context, rec Record) error
	Exists(ctx context.Context, timestamp, category string) (bool, error)
	List(ctx context.Context) ([]Record, error)
}
