package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/dosewatch/dosewatch/pkg/models"
	"github.com/dosewatch/dosewatch/pkg/schedule"
)

type doseRequest struct {
	MedicineID    string `json:"medicineId"`
	ScheduledDate string `json:"scheduledDate"`
	ScheduledTime string `json:"scheduledTime"`
	Frequency     string `json:"frequency"`
	RepeatUntil   string `json:"repeatUntil,omitempty"`
	Quantity      string `json:"quantity,omitempty"`
	DoseAmount    string `json:"doseAmount,omitempty"`
}

// doseView is a dose decorated with its classification at request time.
type doseView struct {
	*models.Dose
	Status   models.DoseStatus `json:"status"`
	Medicine string            `json:"medicine,omitempty"`
}

func (req *doseRequest) apply(d *models.Dose) {
	d.MedicineID = req.MedicineID
	d.ScheduledDate = req.ScheduledDate
	d.ScheduledTime = req.ScheduledTime
	d.Frequency = models.Frequency(req.Frequency)
	d.RepeatUntil = req.RepeatUntil
	d.Quantity = req.Quantity
	d.DoseAmount = req.DoseAmount
}

func (h *handlers) createDose(w http.ResponseWriter, r *http.Request) {
	var req doseRequest
	if !h.readJSON(w, r, &req) {
		return
	}

	dose := &models.Dose{}
	req.apply(dose)
	if err := schedule.Validate(dose); err != nil {
		h.writeError(w, err)
		return
	}
	if _, err := h.store.GetMedicine(r.Context(), dose.MedicineID); err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.store.CreateDose(r.Context(), dose); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, dose)
}

func (h *handlers) listDoses(w http.ResponseWriter, r *http.Request) {
	views, err := h.doseViews(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, views)
}

func (h *handlers) getDose(w http.ResponseWriter, r *http.Request) {
	dose, err := h.store.GetDose(r.Context(), chi.URLParam(r, "doseID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	status, cerr := schedule.Classify(dose, time.Now())
	if cerr != nil {
		h.log.Warn("classify dose", zap.String("dose_id", dose.ID), zap.Error(cerr))
	}
	h.writeJSON(w, http.StatusOK, doseView{Dose: dose, Status: status})
}

func (h *handlers) updateDose(w http.ResponseWriter, r *http.Request) {
	var req doseRequest
	if !h.readJSON(w, r, &req) {
		return
	}

	dose, err := h.store.GetDose(r.Context(), chi.URLParam(r, "doseID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	req.apply(dose)
	if err := schedule.Validate(dose); err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.store.UpdateDose(r.Context(), dose); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, dose)
}

func (h *handlers) deleteDose(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteDose(r.Context(), chi.URLParam(r, "doseID")); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusNoContent, nil)
}

type acknowledgeRequest struct {
	Action string `json:"action"`
}

func (h *handlers) acknowledgeDose(w http.ResponseWriter, r *http.Request) {
	var req acknowledgeRequest
	if !h.readJSON(w, r, &req) {
		return
	}
	action := models.AcknowledgeAction(req.Action)
	if !action.IsValid() {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown action"})
		return
	}
	if err := h.engine.Acknowledge(r.Context(), chi.URLParam(r, "doseID"), action); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusNoContent, nil)
}

type summaryResponse struct {
	Upcoming int `json:"upcoming"`
	Due      int `json:"due"`
	Taken    int `json:"taken"`
	Missed   int `json:"missed"`
	Total    int `json:"total"`
}

func (h *handlers) summary(w http.ResponseWriter, r *http.Request) {
	views, err := h.doseViews(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	var resp summaryResponse
	for _, v := range views {
		switch v.Status {
		case models.StatusUpcoming:
			resp.Upcoming++
		case models.StatusDue:
			resp.Due++
		case models.StatusTaken:
			resp.Taken++
		case models.StatusMissed:
			resp.Missed++
		}
	}
	resp.Total = len(views)
	h.writeJSON(w, http.StatusOK, resp)
}

// history lists doses filtered by scheduled date and/or medicine.
func (h *handlers) history(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date != "" {
		if _, err := schedule.ParseDate(date); err != nil {
			h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "date must be YYYY-MM-DD"})
			return
		}
	}
	medicineID := r.URL.Query().Get("medicine")

	views, err := h.doseViews(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	filtered := make([]doseView, 0, len(views))
	for _, v := range views {
		if date != "" && v.ScheduledDate != date {
			continue
		}
		if medicineID != "" && v.MedicineID != medicineID {
			continue
		}
		filtered = append(filtered, v)
	}
	h.writeJSON(w, http.StatusOK, filtered)
}

type alertResponse struct {
	Alert *models.ActiveAlert `json:"alert"`
}

func (h *handlers) activeAlert(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, alertResponse{Alert: h.engine.ActiveAlert()})
}

// doseViews loads every dose and classifies it against a single instant,
// resolving medicine labels in one pass.
func (h *handlers) doseViews(r *http.Request) ([]doseView, error) {
	doses, err := h.store.ListDoses(r.Context())
	if err != nil {
		return nil, err
	}
	meds, err := h.store.ListMedicines(r.Context())
	if err != nil {
		return nil, err
	}
	labels := make(map[string]string, len(meds))
	for _, m := range meds {
		labels[m.ID] = m.Label()
	}

	now := time.Now()
	views := make([]doseView, 0, len(doses))
	for _, d := range doses {
		status, cerr := schedule.Classify(d, now)
		if cerr != nil {
			h.log.Warn("classify dose", zap.String("dose_id", d.ID), zap.Error(cerr))
		}
		views = append(views, doseView{Dose: d, Status: status, Medicine: labels[d.MedicineID]})
	}
	return views, nil
}
