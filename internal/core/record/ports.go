package record

import (
	"context"

	"github.com/deptsite/deptcms/internal/core/filter"
	"github.com/deptsite/deptcms/internal/core/schema"
)

// Store persists records. Lookups of an absent id return (nil, nil) or
// false rather than an error. Implementations map storage-level unique
// violations to *apperror.DuplicateKeyError.
type Store interface {
	Insert(ctx context.Context, def *schema.ResourceDefinition, rec *Record) error
	Get(ctx context.Context, def *schema.ResourceDefinition, id string) (*Record, error)
	Find(ctx context.Context, def *schema.ResourceDefinition, req *filter.Request) ([]*Record, error)
	Replace(ctx context.Context, def *schema.ResourceDefinition, rec *Record) (bool, error)
	Delete(ctx context.Context, def *schema.ResourceDefinition, id string) (bool, error)

	// Increment adds by to a counter field in one storage operation and
	// returns the updated record.
	Increment(ctx context.Context, def *schema.ResourceDefinition, id, field string, by int64) (*Record, error)

	// ExistsWithValue reports whether any record, active or not, other
	// than excludeID has field equal to value.
	ExistsWithValue(ctx context.Context, def *schema.ResourceDefinition, field string, value any, excludeID string) (bool, error)

	EnsureIndexes(ctx context.Context, defs []*schema.ResourceDefinition) error
	Ping(ctx context.Context) error
	Close() error
}
