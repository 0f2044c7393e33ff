package medschedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var taipei = time.FixedZone("Asia/Taipei", 8*60*60)

func newRequest(anchor time.Time) ScheduleRequest {
	return ScheduleRequest{
		AnchorDateTime: anchor,
		DosesPerDay:    3,
		TreatmentDays:  3,
		TimingPlan:     TimingPlan1,
		Location:       taipei,
	}
}

// 晚上 21:04 才吃第一剂：首日只有锚点这一个事件，之后每天三次
func TestGenerateSchedule_LateAnchor(t *testing.T) {
	anchor := time.Date(2025, 3, 10, 21, 4, 0, 0, taipei)

	events, err := GenerateSchedule(newRequest(anchor))
	require.NoError(t, err)
	require.Len(t, events, 7)

	assert.True(t, events[0].IsFirstDose)
	assert.True(t, events[0].DateTime.Equal(anchor))
	assert.Equal(t, 1, events[0].DayIndex)

	for d := 2; d <= 3; d++ {
		var times []string
		for _, event := range events {
			if event.DayIndex == d {
				times = append(times, event.DateTime.Format("15:04"))
				assert.False(t, event.IsFirstDose)
			}
		}
		assert.Equal(t, []string{"08:00", "12:00", "18:00"}, times, "第 %d 天", d)
	}
}

// 上午 10:13 吃第一剂：首日补上晚于锚点的 12:00 和 18:00，不补已经过去的 08:00
func TestGenerateSchedule_MidMorningAnchor(t *testing.T) {
	anchor := time.Date(2025, 3, 10, 10, 13, 0, 0, taipei)

	events, err := GenerateSchedule(newRequest(anchor))
	require.NoError(t, err)
	require.Len(t, events, 9)

	var day1 []string
	for _, event := range events {
		if event.DayIndex == 1 {
			day1 = append(day1, event.DateTime.Format("15:04"))
		}
	}
	assert.Equal(t, []string{"10:13", "12:00", "18:00"}, day1)
}

// 锚点恰好等于某个规范时间时，该时间不再重复出现在首日
func TestGenerateSchedule_AnchorEqualsSlot(t *testing.T) {
	anchor := time.Date(2025, 3, 10, 12, 0, 0, 0, taipei)

	events, err := GenerateSchedule(newRequest(anchor))
	require.NoError(t, err)

	var day1 []string
	for _, event := range events {
		if event.DayIndex == 1 {
			day1 = append(day1, event.DateTime.Format("15:04"))
		}
	}
	assert.Equal(t, []string{"12:00", "18:00"}, day1)
	assert.True(t, events[0].IsFirstDose)
}

// 锚点代表已经发生的服药，即使落在凌晨禁止时段也必须原样保留
func TestGenerateSchedule_AnchorInForbiddenWindow(t *testing.T) {
	anchor := time.Date(2025, 3, 10, 3, 30, 0, 0, taipei)

	events, err := GenerateSchedule(newRequest(anchor))
	require.NoError(t, err)

	assert.True(t, events[0].IsFirstDose)
	assert.Equal(t, 3, events[0].DateTime.Hour())

	// 除锚点外的所有事件都不允许出现在 [00:00, 06:00)
	firstDoseCount := 0
	for _, event := range events {
		if event.IsFirstDose {
			firstDoseCount++
			continue
		}
		assert.GreaterOrEqual(t, event.DateTime.Hour(), 6)
	}
	assert.Equal(t, 1, firstDoseCount)
}

func TestGenerateSchedule_ChronologicalAndDeterministic(t *testing.T) {
	req := newRequest(time.Date(2025, 3, 10, 10, 13, 0, 0, taipei))

	first, err := GenerateSchedule(req)
	require.NoError(t, err)
	second, err := GenerateSchedule(req)
	require.NoError(t, err)

	assert.Equal(t, first, second)

	for i := 1; i < len(first); i++ {
		assert.True(t, first[i-1].DateTime.Before(first[i].DateTime))
	}
}

func TestGenerateSchedule_CustomPlan(t *testing.T) {
	req := ScheduleRequest{
		AnchorDateTime: time.Date(2025, 3, 10, 9, 0, 0, 0, taipei),
		DosesPerDay:    2,
		TreatmentDays:  2,
		TimingPlan:     TimingPlanCustom,
		CustomTimes:    []string{"08:30", "20:30"},
		Location:       taipei,
	}

	events, err := GenerateSchedule(req)
	require.NoError(t, err)
	// 首日：锚点 + 20:30，第二天：08:30 + 20:30
	require.Len(t, events, 4)
	assert.Equal(t, "第 2 次", events[1].Label)
}

func TestGenerate_InvalidRequests(t *testing.T) {
	anchor := time.Date(2025, 3, 10, 9, 0, 0, 0, taipei)

	tests := []struct {
		name    string
		mutate  func(*ScheduleRequest)
		wantErr error
	}{
		{name: "疗程天数为零", mutate: func(r *ScheduleRequest) { r.TreatmentDays = 0 }, wantErr: ErrInvalidRequest},
		{name: "每日次数为零", mutate: func(r *ScheduleRequest) { r.DosesPerDay = 0 }, wantErr: ErrInvalidRequest},
		{name: "缺少锚点", mutate: func(r *ScheduleRequest) { r.AnchorDateTime = time.Time{} }, wantErr: ErrInvalidRequest},
		{name: "缺少时区", mutate: func(r *ScheduleRequest) { r.Location = nil }, wantErr: ErrInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := newRequest(anchor)
			tt.mutate(&req)
			_, err := GenerateSchedule(req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// 从持久化层读回的时间表可能被改坏，生成器要能挡住
func TestGenerate_CorruptedPlan(t *testing.T) {
	req := newRequest(time.Date(2025, 3, 10, 9, 0, 0, 0, taipei))
	req.DosesPerDay = 2

	corrupted := &SlotPlan{
		Plan:  TimingPlanCustom,
		Slots: []Slot{{Hour: 3}, {Hour: 20}},
	}

	_, err := Generate(req, corrupted)
	assert.ErrorIs(t, err, ErrInvalidSlot)
}
