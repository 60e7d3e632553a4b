// Package store persists medicines and doses and lets the reminder engine
// subscribe to live dose snapshots.
package store

import (
	"context"
	"errors"

	"github.com/dosewatch/dosewatch/pkg/models"
)

// ErrNotFound is returned when a medicine or dose does not exist
var ErrNotFound = errors.New("not found")

// Subscription delivers full dose snapshots, newest state last.
//
// If the subscriber can't keep up, the store unsubscribes it and closes its
// channel; the holder must subscribe again.
type Subscription interface {
	C() <-chan []*models.Dose
	Close() error
}

// Store is the persistence surface consumed by the engine and the API
type Store interface {
	CreateMedicine(ctx context.Context, m *models.Medicine) error
	ListMedicines(ctx context.Context) ([]*models.Medicine, error)
	GetMedicine(ctx context.Context, id string) (*models.Medicine, error)
	DeleteMedicine(ctx context.Context, id string) error

	CreateDose(ctx context.Context, d *models.Dose) error
	ListDoses(ctx context.Context) ([]*models.Dose, error)
	GetDose(ctx context.Context, id string) (*models.Dose, error)
	UpdateDose(ctx context.Context, d *models.Dose) error
	DeleteDose(ctx context.Context, id string) error
	MarkTaken(ctx context.Context, id string) error

	// Subscribe registers for dose snapshots. The current snapshot is
	// delivered immediately, then one snapshot per mutation.
	Subscribe(ctx context.Context) Subscription

	Close() error
}
