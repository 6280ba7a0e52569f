package domain

import "context"

// Persister is the durable-write collaborator of the store. Save receives the
// full snapshot and overwrites whatever was stored before. Load reports
// ok=false when nothing has been saved yet.
type Persister interface {
	Load(ctx context.Context) (snapshot Buildings, ok bool, err error)
	Save(ctx context.Context, snapshot Buildings) error
}
