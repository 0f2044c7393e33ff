package medschedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateTestEvents(t *testing.T) []ScheduleEvent {
	t.Helper()

	// 2025-03-10 是星期一
	events, err := GenerateSchedule(ScheduleRequest{
		AnchorDateTime: time.Date(2025, 3, 10, 10, 13, 0, 0, taipei),
		DosesPerDay:    3,
		TreatmentDays:  3,
		TimingPlan:     TimingPlan1,
		Location:       taipei,
	})
	require.NoError(t, err)
	return events
}

func TestPreview_BucketsByDay(t *testing.T) {
	events := generateTestEvents(t)
	reference := time.Date(2025, 3, 10, 13, 0, 0, 0, taipei)

	days := Preview(events, reference, 7)
	require.Len(t, days, 3)

	assert.Equal(t, "2025-03-10", days[0].Date)
	assert.Equal(t, "星期一", days[0].DayOfWeek)
	assert.Equal(t, "星期二", days[1].DayOfWeek)
	require.Len(t, days[0].Items, 3)
	require.Len(t, days[1].Items, 3)

	// 参考时刻是 13:00：首日的 10:13 和 12:00 已过，18:00 未到
	assert.Equal(t, StatusPassed, days[0].Items[0].Status)
	assert.Equal(t, StatusPassed, days[0].Items[1].Status)
	assert.Equal(t, StatusUpcoming, days[0].Items[2].Status)
	assert.Equal(t, "首次服药", days[0].Items[0].Label)
	assert.Equal(t, "早上", days[1].Items[0].Label)
}

func TestPreview_HorizonTruncates(t *testing.T) {
	events := generateTestEvents(t)

	days := Preview(events, time.Date(2025, 3, 10, 0, 0, 0, 0, taipei), 2)
	require.Len(t, days, 2)
	assert.Equal(t, "2025-03-10", days[0].Date)
	assert.Equal(t, "2025-03-11", days[1].Date)
}

// 参考时刻前移只会把 upcoming 翻成 passed，不会反向翻转
func TestPreview_StatusMonotonic(t *testing.T) {
	events := generateTestEvents(t)

	earlier := Preview(events, time.Date(2025, 3, 10, 13, 0, 0, 0, taipei), 7)
	later := Preview(events, time.Date(2025, 3, 11, 13, 0, 0, 0, taipei), 7)

	for i, day := range earlier {
		for j, item := range day.Items {
			if item.Status == StatusPassed {
				assert.Equal(t, StatusPassed, later[i].Items[j].Status)
			}
		}
	}
}

func TestPreview_EmptyInput(t *testing.T) {
	assert.Empty(t, Preview(nil, time.Now(), 7))
	assert.Empty(t, Preview(generateTestEvents(t), time.Now(), 0))
}

// 同一位病患多个药品的排程合并后按时间交错展示，保留各自的药品名
func TestMergeEvents(t *testing.T) {
	morning, err := GenerateSchedule(ScheduleRequest{
		AnchorDateTime: time.Date(2025, 3, 10, 8, 0, 0, 0, taipei),
		DosesPerDay:    1,
		TreatmentDays:  2,
		TimingPlan:     TimingPlan1,
		Location:       taipei,
	})
	require.NoError(t, err)

	evening, err := GenerateSchedule(ScheduleRequest{
		AnchorDateTime: time.Date(2025, 3, 10, 21, 0, 0, 0, taipei),
		DosesPerDay:    1,
		TreatmentDays:  2,
		TimingPlan:     TimingPlanCustom,
		CustomTimes:    []string{"21:00"},
		Location:       taipei,
	})
	require.NoError(t, err)

	merged := MergeEvents(map[string][]ScheduleEvent{
		"阿莫西林": morning,
		"布洛芬":  evening,
	})
	require.Len(t, merged, len(morning)+len(evening))

	for i := 1; i < len(merged); i++ {
		assert.False(t, merged[i].DateTime.Before(merged[i-1].DateTime))
	}

	days := Preview(merged, time.Date(2025, 3, 10, 12, 0, 0, 0, taipei), 7)
	require.NotEmpty(t, days)
	assert.Equal(t, "阿莫西林", days[0].Items[0].Medication)
	assert.Equal(t, "布洛芬", days[0].Items[1].Medication)
}
