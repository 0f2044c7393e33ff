package utils

import (
	"testing"
	"time"

	"github.com/carelink-tw/med-reminder/backend/internal/medschedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var taipei = time.FixedZone("Asia/Taipei", 8*60*60)

func TestValidateScheduleAgainstPlan(t *testing.T) {
	plan, err := medschedule.ResolveSlotPlan(3, medschedule.TimingPlan1, nil)
	require.NoError(t, err)

	req := medschedule.ScheduleRequest{
		AnchorDateTime: time.Date(2025, 3, 10, 10, 13, 0, 0, taipei),
		DosesPerDay:    3,
		TreatmentDays:  3,
		TimingPlan:     medschedule.TimingPlan1,
		Location:       taipei,
	}

	events, err := medschedule.Generate(req, plan)
	require.NoError(t, err)

	t.Run("引擎输出能通过校验", func(t *testing.T) {
		assert.NoError(t, ValidateScheduleAgainstPlan(events, plan, req.TreatmentDays))
	})

	t.Run("丢失锚点时报错", func(t *testing.T) {
		truncated := events[1:]
		assert.Error(t, ValidateScheduleAgainstPlan(truncated, plan, req.TreatmentDays))
	})

	t.Run("非锚点事件落入凌晨时段时报错", func(t *testing.T) {
		corrupted := append([]medschedule.ScheduleEvent{}, events...)
		corrupted[2].DateTime = time.Date(2025, 3, 11, 3, 0, 0, 0, taipei)
		assert.Error(t, ValidateScheduleAgainstPlan(corrupted, plan, req.TreatmentDays))
	})

	t.Run("第二天缺少一次服药时报错", func(t *testing.T) {
		var missing []medschedule.ScheduleEvent
		for _, event := range events {
			if event.DayIndex == 2 && event.DateTime.Format("15:04") == "12:00" {
				continue
			}
			missing = append(missing, event)
		}
		assert.Error(t, ValidateScheduleAgainstPlan(missing, plan, req.TreatmentDays))
	})
}

func TestGenerateRandomMedication(t *testing.T) {
	loc := taipei

	// 生成结果必须能通过整条排程流水线
	for i := 0; i < 50; i++ {
		medication := GenerateRandomMedication(1, "Asia/Taipei", loc)

		plan, err := medschedule.ResolveSlotPlan(medication.DosesPerDay, medschedule.TimingPlan(medication.TimingPlan), medication.CustomTimes)
		require.NoError(t, err)

		events, err := medschedule.Generate(medschedule.ScheduleRequest{
			AnchorDateTime: medication.FirstDoseAt,
			DosesPerDay:    medication.DosesPerDay,
			TreatmentDays:  medication.TreatmentDays,
			TimingPlan:     medschedule.TimingPlan(medication.TimingPlan),
			CustomTimes:    medication.CustomTimes,
			Location:       loc,
		}, plan)
		require.NoError(t, err)

		assert.NoError(t, ValidateScheduleAgainstPlan(events, plan, medication.TreatmentDays))
	}
}
