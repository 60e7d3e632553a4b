package engine

import (
	"time"

	"go.uber.org/zap"

	"github.com/dosewatch/dosewatch/pkg/models"
)

// RepeatInterval is the cadence at which the cue re-fires while a dose is
// alerting and unacknowledged.
const RepeatInterval = 3 * time.Second

// Cue is the audio/visual alert signal. Implementations swallow playback
// failures; the controller never retries a failed cue outside its normal
// repeat cadence.
type Cue interface {
	Play()
	Stop()
}

// Controller is the alert state machine: Idle, or Alerting for exactly one
// dose. It owns the repeat timer outright — every exit path from Alerting
// cancels it before any new state is entered.
//
// Controller is not safe for concurrent use; the engine loop is its only
// caller.
type Controller struct {
	cue Cue
	log *zap.Logger
	now func() time.Time

	active *models.ActiveAlert
	repeat *time.Ticker
}

// NewController builds an idle controller around the given cue
func NewController(cue Cue, log *zap.Logger) *Controller {
	return &Controller{
		cue: cue,
		log: log,
		now: time.Now,
	}
}

// SetDue drives the state machine from the scanner's report.
//
// A nil dose means nothing is due: any running alert stops. Reporting the
// dose that is already alerting is a no-op — the repeat timer keeps its
// phase and the cue is not double-played. A different dose tears the
// current alert down first, then starts alerting the new one.
func (c *Controller) SetDue(dose *models.Dose, medicineLabel string, scheduledAt time.Time) {
	if dose == nil {
		c.Stop()
		return
	}
	if c.active != nil && c.active.DoseID == dose.ID {
		return
	}

	c.Stop()

	c.active = &models.ActiveAlert{
		DoseID:        dose.ID,
		MedicineLabel: medicineLabel,
		ScheduledAt:   scheduledAt,
		StartedAt:     c.now(),
	}
	c.cue.Play()
	c.repeat = time.NewTicker(RepeatInterval)

	c.log.Info("alert started",
		zap.String("dose_id", dose.ID),
		zap.String("medicine", medicineLabel))
}

// RepeatC returns the repeat timer channel, or nil when idle. Selecting on
// a nil channel blocks forever, so the engine loop can select on it
// unconditionally.
func (c *Controller) RepeatC() <-chan time.Time {
	if c.repeat == nil {
		return nil
	}
	return c.repeat.C
}

// Repeat replays the cue on the repeat cadence
func (c *Controller) Repeat() {
	if c.active == nil {
		return
	}
	c.cue.Play()
}

// Stop cancels the repeat timer, silences any in-flight cue, and returns
// to Idle. Safe to call when already idle.
func (c *Controller) Stop() {
	if c.repeat != nil {
		c.repeat.Stop()
		c.repeat = nil
	}
	if c.active != nil {
		c.cue.Stop()
		c.log.Info("alert stopped", zap.String("dose_id", c.active.DoseID))
		c.active = nil
	}
}

// Active returns a copy of the current alert, or nil when idle
func (c *Controller) Active() *models.ActiveAlert {
	if c.active == nil {
		return nil
	}
	alert := *c.active
	return &alert
}
