package handler

import (
	"net/http"
	"time"

	"github.com/carelink-tw/med-reminder/backend/internal/domain"
	"github.com/carelink-tw/med-reminder/backend/internal/medschedule"
)

// PreviewSchedule 是无状态的排程试算：前端在创建药品前
// 用相同参数调用这里，给照护者确认日历
func (h *Handler) PreviewSchedule(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DosesPerDay   int      `json:"dosesPerDay" validate:"required,min=1"`
		TimingPlan    string   `json:"timingPlan" validate:"required"`
		CustomTimes   []string `json:"customTimes"`
		TreatmentDays int      `json:"treatmentDays" validate:"required,min=1"`
		FirstDoseAt   string   `json:"firstDoseAt" validate:"required"`
		Timezone      string   `json:"timezone"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	loc := h.defaultLocation
	if req.Timezone != "" {
		var err error
		loc, err = time.LoadLocation(req.Timezone)
		if err != nil {
			h.errorResponse(w, r, "无效的时区")
			return
		}
	}

	firstDoseAt, err := time.Parse(time.RFC3339, req.FirstDoseAt)
	if err != nil {
		h.errorResponse(w, r, "首次服药时间必须是 RFC3339 格式")
		return
	}

	events, err := medschedule.GenerateSchedule(medschedule.ScheduleRequest{
		AnchorDateTime: firstDoseAt,
		DosesPerDay:    req.DosesPerDay,
		TreatmentDays:  req.TreatmentDays,
		TimingPlan:     medschedule.TimingPlan(req.TimingPlan),
		CustomTimes:    req.CustomTimes,
		Location:       loc,
	})
	if err != nil {
		h.scheduleError(w, r, err)
		return
	}

	h.successResponse(w, r, "排程试算成功", medschedule.Preview(events, time.Now(), h.config.Schedule.PreviewHorizonDays))
}

// ExtractTimes 从一段中文医嘱里抽取钟点，供前端预填自定义时间
func (h *Handler) ExtractTimes(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	times := medschedule.ExtractTimes(req.Text)
	h.successResponse(w, r, "时间抽取成功", struct {
		Times []string `json:"times"`
	}{Times: times})
}

func (h *Handler) GetMedicationSchedule(w http.ResponseWriter, r *http.Request) {
	medication := r.Context().Value(MedicationCtx).(*domain.Medication)

	events, err := h.loadMedicationEvents(medication, "")
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取服药排程成功", medschedule.Preview(events, time.Now(), h.config.Schedule.PreviewHorizonDays))
}

// GetPatientSchedule 把该病患所有药品的服药事件合并成一份日历
func (h *Handler) GetPatientSchedule(w http.ResponseWriter, r *http.Request) {
	patient := r.Context().Value(PatientCtx).(*domain.Patient)

	medications, err := h.repository.GetMedicationsByPatient(patient.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	byMedication := make(map[string][]medschedule.ScheduleEvent, len(medications))
	for _, medication := range medications {
		events, err := h.loadMedicationEvents(medication, medication.Name)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}
		byMedication[medication.Name] = events
	}

	merged := medschedule.MergeEvents(byMedication)
	h.successResponse(w, r, "获取病患排程成功", medschedule.Preview(merged, time.Now(), h.config.Schedule.PreviewHorizonDays))
}

// loadMedicationEvents 把持久化的服药事件换回引擎的事件形态，
// 时间落在药品自己的时区上
func (h *Handler) loadMedicationEvents(medication *domain.Medication, medicationName string) ([]medschedule.ScheduleEvent, error) {
	loc, err := time.LoadLocation(medication.Timezone)
	if err != nil {
		return nil, err
	}

	doseEvents, err := h.repository.GetMedicationDoseEvents(medication.ID)
	if err != nil {
		return nil, err
	}

	events := make([]medschedule.ScheduleEvent, 0, len(doseEvents))
	for _, doseEvent := range doseEvents {
		events = append(events, medschedule.ScheduleEvent{
			DateTime:    doseEvent.DoseTime.In(loc),
			DayIndex:    doseEvent.DayIndex,
			IsFirstDose: doseEvent.IsFirstDose,
			Label:       doseEvent.Label,
			Medication:  medicationName,
		})
	}

	return events, nil
}
