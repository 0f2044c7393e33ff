package seed

import (
	"log/slog"
	"math/rand"
	"time"

	"github.com/carelink-tw/med-reminder/backend/internal/config"
	"github.com/carelink-tw/med-reminder/backend/internal/domain"
	"github.com/carelink-tw/med-reminder/backend/internal/medschedule"
	"github.com/carelink-tw/med-reminder/backend/internal/repository"
	"github.com/carelink-tw/med-reminder/backend/internal/utils"
)

// SeedMedication 为一条医嘱跑一遍完整的排程流水线并入库，
// 和 API 创建药品时的路径保持一致
func SeedMedication(r *repository.Repository, medication *domain.Medication, loc *time.Location) error {
	plan, err := medschedule.ResolveSlotPlan(medication.DosesPerDay, medschedule.TimingPlan(medication.TimingPlan), medication.CustomTimes)
	if err != nil {
		return err
	}

	events, err := medschedule.Generate(medschedule.ScheduleRequest{
		AnchorDateTime: medication.FirstDoseAt,
		DosesPerDay:    medication.DosesPerDay,
		TreatmentDays:  medication.TreatmentDays,
		TimingPlan:     medschedule.TimingPlan(medication.TimingPlan),
		CustomTimes:    medication.CustomTimes,
		Location:       loc,
	}, plan)
	if err != nil {
		return err
	}

	if err := utils.ValidateScheduleAgainstPlan(events, plan, medication.TreatmentDays); err != nil {
		return err
	}

	medication.SlotTimes = make([]string, 0, len(plan.Slots))
	for _, slot := range plan.Slots {
		medication.SlotTimes = append(medication.SlotTimes, slot.String())
	}
	medication.TriggerSpecs = medschedule.SynthesizeTrigger(plan).CronSpecs()

	doseEvents := make([]domain.DoseEvent, 0, len(events))
	for _, event := range events {
		doseEvents = append(doseEvents, domain.DoseEvent{
			DoseTime:    event.DateTime,
			DayIndex:    event.DayIndex,
			IsFirstDose: event.IsFirstDose,
			Label:       event.Label,
		})
	}

	return r.CreateMedication(medication, doseEvents)
}

// SeedDemoData 生成一套演示数据：护理师、病患和带完整排程的医嘱
func SeedDemoData(r *repository.Repository, cfg *config.Config) {
	loc, err := time.LoadLocation(cfg.Schedule.DefaultTimezone)
	if err != nil {
		slog.Error("无法加载默认时区", "error", err)
		return
	}

	caregiverCount := 0
	patientCount := 0
	medicationCount := 0

	for i := 0; i < 3; i++ {
		caregiver, err := utils.GenerateRandomUser(cfg.Seed.User.Password, cfg.Email.UserDomain)
		if err != nil {
			slog.Error("无法生成随机护理师", "error", err)
			continue
		}
		caregiver.Role = domain.RoleCaregiver

		if err := r.CreateUser(caregiver); err != nil {
			slog.Error("插入护理师失败", "error", err)
			continue
		}
		caregiverCount++

		for j := 0; j < 2; j++ {
			patient := utils.GenerateRandomPatient(caregiver.ID)
			if err := r.CreatePatient(patient); err != nil {
				slog.Error("插入病患失败", "error", err)
				continue
			}
			patientCount++

			for k := 0; k < rand.Intn(3)+1; k++ {
				medication := utils.GenerateRandomMedication(patient.ID, cfg.Schedule.DefaultTimezone, loc)
				if err := SeedMedication(r, medication, loc); err != nil {
					slog.Error("插入医嘱失败", "error", err)
					continue
				}
				medicationCount++
			}
		}
	}

	slog.Info("插入演示数据完成",
		"caregivers", caregiverCount,
		"patients", patientCount,
		"medications", medicationCount,
	)
}
