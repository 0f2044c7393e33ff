package handler

import (
	"net/http"
	"time"

	"github.com/carelink-tw/med-reminder/backend/internal/domain"
	"github.com/carelink-tw/med-reminder/backend/internal/medschedule"
	"github.com/carelink-tw/med-reminder/backend/internal/utils"
)

func (h *Handler) CreateMedication(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	patient := r.Context().Value(PatientCtx).(*domain.Patient)

	var req struct {
		Name          string   `json:"name" validate:"required"`
		Dosage        string   `json:"dosage" validate:"required"`
		DosesPerDay   int      `json:"dosesPerDay" validate:"required,min=1"`
		TimingPlan    string   `json:"timingPlan" validate:"required"`
		CustomTimes   []string `json:"customTimes"`
		TreatmentDays int      `json:"treatmentDays" validate:"required,min=1"`
		FirstDoseAt   string   `json:"firstDoseAt" validate:"required"` // RFC3339，照护者确认首剂已服下的真实时刻
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

	// 时区必须显式解析，不能落到进程时区上
	timezone := req.Timezone
	loc := h.defaultLocation
	if timezone == "" {
		timezone = h.config.Schedule.DefaultTimezone
	} else {
		var err error
		loc, err = time.LoadLocation(timezone)
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

	// 解析规范时间表并生成整个疗程的排程
	plan, err := medschedule.ResolveSlotPlan(req.DosesPerDay, medschedule.TimingPlan(req.TimingPlan), req.CustomTimes)
	if err != nil {
		h.scheduleError(w, r, err)
		return
	}

	events, err := medschedule.Generate(medschedule.ScheduleRequest{
		AnchorDateTime: firstDoseAt,
		DosesPerDay:    req.DosesPerDay,
		TreatmentDays:  req.TreatmentDays,
		TimingPlan:     medschedule.TimingPlan(req.TimingPlan),
		CustomTimes:    req.CustomTimes,
		Location:       loc,
	}, plan)
	if err != nil {
		h.scheduleError(w, r, err)
		return
	}

	// 入库前的最后一道校验
	if err := utils.ValidateScheduleAgainstPlan(events, plan, req.TreatmentDays); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	slotTimes := make([]string, 0, len(plan.Slots))
	for _, slot := range plan.Slots {
		slotTimes = append(slotTimes, slot.String())
	}

	medication := &domain.Medication{
		PatientID:     patient.ID,
		Name:          req.Name,
		Dosage:        req.Dosage,
		DosesPerDay:   req.DosesPerDay,
		TimingPlan:    req.TimingPlan,
		CustomTimes:   req.CustomTimes,
		TreatmentDays: req.TreatmentDays,
		FirstDoseAt:   firstDoseAt,
		Timezone:      timezone,
		SlotTimes:     slotTimes,
		TriggerSpecs:  medschedule.SynthesizeTrigger(plan).CronSpecs(),
	}

	doseEvents := make([]domain.DoseEvent, 0, len(events))
	for _, event := range events {
		doseEvents = append(doseEvents, domain.DoseEvent{
			DoseTime:    event.DateTime,
			DayIndex:    event.DayIndex,
			IsFirstDose: event.IsFirstDose,
			Label:       event.Label,
		})
	}

	if err := h.repository.CreateMedication(medication, doseEvents); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 通知 worker 注册每日提醒
	if err := h.publishReminderMessage(domain.ReminderMessage{
		Type: "register_triggers",
		To:   myInfo.Email,
		Data: domain.RegisterTriggersData{
			MedicationID:   medication.ID,
			MedicationName: medication.Name,
			PatientName:    patient.FullName,
			Dosage:         medication.Dosage,
			Timezone:       medication.Timezone,
			CronSpecs:      medication.TriggerSpecs,
		},
	}); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "药品创建成功", struct {
		Medication *domain.Medication      `json:"medication"`
		Preview    []medschedule.PreviewDay `json:"preview"`
	}{
		Medication: medication,
		Preview:    medschedule.Preview(events, time.Now(), h.config.Schedule.PreviewHorizonDays),
	})
}

func (h *Handler) GetMedication(w http.ResponseWriter, r *http.Request) {
	medication := r.Context().Value(MedicationCtx).(*domain.Medication)
	h.successResponse(w, r, "获取药品信息成功", medication)
}

func (h *Handler) GetPatientMedications(w http.ResponseWriter, r *http.Request) {
	patient := r.Context().Value(PatientCtx).(*domain.Patient)

	medications, err := h.repository.GetMedicationsByPatient(patient.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取药品列表成功", medications)
}

func (h *Handler) DeleteMedication(w http.ResponseWriter, r *http.Request) {
	medication := r.Context().Value(MedicationCtx).(*domain.Medication)

	if err := h.repository.DeleteMedication(medication.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 通知 worker 撤销该药品的提醒
	if err := h.publishReminderMessage(domain.ReminderMessage{
		Type: "remove_triggers",
		Data: domain.RemoveTriggersData{
			MedicationID: medication.ID,
		},
	}); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除药品成功", nil)
}
