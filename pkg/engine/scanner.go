package engine

import (
	"time"

	"go.uber.org/zap"

	"github.com/dosewatch/dosewatch/pkg/models"
	"github.com/dosewatch/dosewatch/pkg/schedule"
)

// ScanResult is one due-scan over a dose snapshot
type ScanResult struct {
	// Statuses holds the classification of every dose in the snapshot
	Statuses map[string]models.DoseStatus

	// Due is the single current due dose — the first Due dose in snapshot
	// order — or nil. Other simultaneously due doses stay visible through
	// Statuses but do not alert.
	Due *models.Dose
}

// Scan classifies every dose in the snapshot against one consistent now and
// selects the current due dose. Re-running with unchanged inputs yields the
// same result; snapshot order is the documented tie-break when several
// doses are due at once.
//
// Classification errors are logged per dose and never abort the scan.
func Scan(doses []*models.Dose, now time.Time, log *zap.Logger) ScanResult {
	res := ScanResult{Statuses: make(map[string]models.DoseStatus, len(doses))}

	for _, d := range doses {
		status, err := schedule.Classify(d, now)
		if err != nil {
			log.Warn("dose classification failed, treating as missed",
				zap.String("dose_id", d.ID),
				zap.Error(err))
		}
		res.Statuses[d.ID] = status

		if res.Due == nil && !d.Taken && status == models.StatusDue {
			res.Due = d
		}
	}
	return res
}
