package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dosewatch/dosewatch/pkg/models"
)

type createMedicineRequest struct {
	Name string `json:"name"`
	Dose string `json:"dose"`
}

func (h *handlers) createMedicine(w http.ResponseWriter, r *http.Request) {
	var req createMedicineRequest
	if !h.readJSON(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "name is required"})
		return
	}

	med := &models.Medicine{Name: req.Name, Dose: strings.TrimSpace(req.Dose)}
	if err := h.store.CreateMedicine(r.Context(), med); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, med)
}

func (h *handlers) listMedicines(w http.ResponseWriter, r *http.Request) {
	meds, err := h.store.ListMedicines(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, meds)
}

func (h *handlers) getMedicine(w http.ResponseWriter, r *http.Request) {
	med, err := h.store.GetMedicine(r.Context(), chi.URLParam(r, "medicineID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, med)
}

// deleteMedicine removes the medicine and, through the store's cascade,
// every dose scheduled for it.
func (h *handlers) deleteMedicine(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteMedicine(r.Context(), chi.URLParam(r, "medicineID")); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusNoContent, nil)
}
