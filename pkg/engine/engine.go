// Package engine runs the dose due-detection and alerting loop: it polls
// the dose store on a fixed cadence, classifies every dose, drives the
// alert controller, and commits user acknowledgements.
package engine

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/dosewatch/dosewatch/pkg/models"
	"github.com/dosewatch/dosewatch/pkg/schedule"
	"github.com/dosewatch/dosewatch/pkg/store"
)

// DoseStore is the slice of the persistence layer the engine consumes
type DoseStore interface {
	Subscribe(ctx context.Context) store.Subscription
	MarkTaken(ctx context.Context, id string) error
	GetMedicine(ctx context.Context, id string) (*models.Medicine, error)
}

// View is the read surface the engine publishes for the UI collaborator:
// per-dose statuses and the active alert, refreshed every evaluation cycle.
type View struct {
	Statuses map[string]models.DoseStatus
	Alert    *models.ActiveAlert
	ScanTime time.Time
}

// Options tune the engine. Zero values select the defaults the alerting
// behaviour was designed around.
type Options struct {
	// PollInterval is the due-scan cadence (default 10s)
	PollInterval time.Duration

	// NotificationsDisabled keeps statuses live but never arms an alert
	NotificationsDisabled bool

	// Now overrides the clock, for tests
	Now func() time.Time
}

type ackRequest struct {
	doseID string
	action models.AcknowledgeAction
	done   chan error
}

// Engine owns the single goroutine that touches alert state. All shared
// state is confined to Run's loop; the read side sees atomically published
// View snapshots.
type Engine struct {
	store DoseStore
	ctrl  *Controller
	log   *zap.Logger

	pollInterval  time.Duration
	notifications bool
	now           func() time.Time

	acks chan ackRequest
	view atomic.Pointer[View]
}

// New assembles an engine around a store and a cue
func New(st DoseStore, cue Cue, log *zap.Logger, opts Options) *Engine {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 10 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	ctrl := NewController(cue, log)
	ctrl.now = opts.Now

	e := &Engine{
		store:         st,
		ctrl:          ctrl,
		log:           log,
		pollInterval:  opts.PollInterval,
		notifications: !opts.NotificationsDisabled,
		now:           opts.Now,
		acks:          make(chan ackRequest),
	}
	e.view.Store(&View{Statuses: map[string]models.DoseStatus{}})
	return e
}

// Run drives the engine until the context is cancelled. Every poll tick
// re-scans the most recent dose snapshot; subscription updates only refresh
// the snapshot. The controller's repeat timer and acknowledgement requests
// are serviced by the same loop, so no alert state is ever touched from two
// goroutines.
func (e *Engine) Run(ctx context.Context) error {
	sub := e.store.Subscribe(ctx)
	defer func() { sub.Close() }()

	ticker := time.NewTicker(e.pollInterval)
	defer ticker.Stop()

	// A leaked repeat timer would keep the cue sounding after teardown.
	defer e.ctrl.Stop()

	var snapshot []*models.Dose

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case doses, ok := <-sub.C():
			if !ok {
				// Dropped as a slow consumer; resubscribe.
				e.log.Warn("dose subscription dropped, resubscribing")
				sub = e.store.Subscribe(ctx)
				continue
			}
			snapshot = doses

		case <-ticker.C:
			e.scan(ctx, snapshot)

		case <-e.ctrl.RepeatC():
			e.ctrl.Repeat()

		case req := <-e.acks:
			var err error
			snapshot, err = e.handleAck(ctx, req, snapshot)
			req.done <- err
		}
	}
}

// scan runs one evaluation cycle: classify everything against a single now,
// update the controller, publish the new view.
func (e *Engine) scan(ctx context.Context, snapshot []*models.Dose) {
	now := e.now()
	res := Scan(snapshot, now, e.log)

	if e.notifications {
		if res.Due != nil {
			label, at := e.alertDetails(ctx, res.Due)
			e.ctrl.SetDue(res.Due, label, at)
		} else {
			e.ctrl.SetDue(nil, "", time.Time{})
		}
	}

	e.view.Store(&View{
		Statuses: res.Statuses,
		Alert:    e.ctrl.Active(),
		ScanTime: now,
	})
}

func (e *Engine) alertDetails(ctx context.Context, dose *models.Dose) (string, time.Time) {
	label := dose.MedicineID
	if med, err := e.store.GetMedicine(ctx, dose.MedicineID); err == nil {
		label = med.Label()
	} else {
		e.log.Warn("medicine lookup for alert banner failed",
			zap.String("medicine_id", dose.MedicineID),
			zap.Error(err))
	}

	at, err := schedule.Instant(dose)
	if err != nil {
		at = e.now()
	}
	return label, at
}

// Acknowledge commits a user's taken/dismiss action. It is safe to call
// from any goroutine; the request is serviced inside the engine loop so
// alert-stop always strictly precedes the store mutation.
func (e *Engine) Acknowledge(ctx context.Context, doseID string, action models.AcknowledgeAction) error {
	if !action.IsValid() {
		return fmt.Errorf("unknown acknowledge action %q", action)
	}

	req := ackRequest{doseID: doseID, action: action, done: make(chan error, 1)}
	select {
	case e.acks <- req:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-req.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// handleAck returns the snapshot the loop should carry forward, which may be
// a masked copy of the one passed in.
func (e *Engine) handleAck(ctx context.Context, req ackRequest, snapshot []*models.Dose) ([]*models.Dose, error) {
	// Silence first. Even a failed mutation must leave the alert stopped;
	// the next poll tick re-evaluates from store truth.
	if a := e.ctrl.Active(); a != nil && a.DoseID == req.doseID {
		e.ctrl.Stop()
		e.publishAlertCleared()
	}

	if req.action != models.AckTaken {
		e.log.Info("alert dismissed", zap.String("dose_id", req.doseID))
		return snapshot, nil
	}

	if err := e.store.MarkTaken(ctx, req.doseID); err != nil {
		e.log.Error("mark taken failed, alert stays stopped",
			zap.String("dose_id", req.doseID),
			zap.Error(err))
		return snapshot, err
	}

	// Mask the subscription round-trip so the next tick doesn't re-alert
	// from a stale snapshot. The store shares snapshot slices across
	// subscribers, so mask a copy instead of writing through.
	masked := make([]*models.Dose, len(snapshot))
	for i, d := range snapshot {
		if d.ID == req.doseID {
			taken := *d
			taken.Taken = true
			masked[i] = &taken
			continue
		}
		masked[i] = d
	}

	e.log.Info("dose taken", zap.String("dose_id", req.doseID))
	return masked, nil
}

func (e *Engine) publishAlertCleared() {
	old := e.view.Load()
	e.view.Store(&View{Statuses: old.Statuses, Alert: nil, ScanTime: old.ScanTime})
}

// Statuses returns the most recently published dose statuses
func (e *Engine) Statuses() map[string]models.DoseStatus {
	return e.view.Load().Statuses
}

// ActiveAlert returns the alert currently showing, or nil
func (e *Engine) ActiveAlert() *models.ActiveAlert {
	return e.view.Load().Alert
}
