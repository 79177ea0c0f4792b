package driving

import (
	"context"

	"github.com/malcha/dagu-client/internal/core/domain"
)

// MutationOp names a write operation.
type MutationOp string

const (
	OpCreateItem  MutationOp = "create_item"
	OpTrackClick  MutationOp = "track_click"
	OpExtendItem  MutationOp = "extend_item"
	OpReportItem  MutationOp = "report_item"
	OpUpdatePrice MutationOp = "update_price"
)

// MutationStatus is the per-operation lifecycle the UI observes.
// Resubmission must be disabled while Pending.
type MutationStatus string

const (
	MutationIdle      MutationStatus = "idle"
	MutationPending   MutationStatus = "pending"
	MutationSucceeded MutationStatus = "succeeded"
	MutationFailed    MutationStatus = "failed"
)

// MutationState is the observable state of one operation.
type MutationState struct {
	Status  MutationStatus
	Failure domain.FailureKind
	Detail  string
}

// Mutations is the write surface the UI drives. Every operation runs its
// declared cache invalidations before success is surfaced, so an immediate
// re-query observes post-mutation data.
type Mutations interface {
	CreateItem(ctx context.Context, input domain.CreateItemInput) (*domain.Item, error)
	TrackClick(ctx context.Context, itemID string)
	ExtendItem(ctx context.Context, itemID string) (*domain.Item, error)
	ReportItem(ctx context.Context, itemID string, input domain.ReportInput) (*domain.ReportResult, error)
	UpdatePrice(ctx context.Context, itemID string, price int) (*domain.Item, error)

	// State returns the current lifecycle state of an operation.
	State(op MutationOp) MutationState
}
