package medschedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveSlotPlan_NamedPlans(t *testing.T) {
	tests := []struct {
		name        string
		dosesPerDay int
		plan        TimingPlan
		want        []Slot
	}{
		{name: "plan1每日一次", dosesPerDay: 1, plan: TimingPlan1, want: []Slot{{Hour: 8}}},
		{name: "plan1每日三次", dosesPerDay: 3, plan: TimingPlan1, want: []Slot{{Hour: 8}, {Hour: 12}, {Hour: 18}}},
		{name: "plan1每日四次", dosesPerDay: 4, plan: TimingPlan1, want: []Slot{{Hour: 8}, {Hour: 12}, {Hour: 17}, {Hour: 21}}},
		{name: "plan2比plan1晚一小时", dosesPerDay: 3, plan: TimingPlan2, want: []Slot{{Hour: 9}, {Hour: 13}, {Hour: 19}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sp, err := ResolveSlotPlan(tt.dosesPerDay, tt.plan, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.plan, sp.Plan)
			assert.Equal(t, tt.want, sp.Slots)
		})
	}
}

func TestResolveSlotPlan_Errors(t *testing.T) {
	tests := []struct {
		name        string
		dosesPerDay int
		plan        TimingPlan
		customTimes []string
		wantErr     error
	}{
		{name: "次数为零", dosesPerDay: 0, plan: TimingPlan1, wantErr: ErrInvalidRequest},
		{name: "未知方案", dosesPerDay: 2, plan: TimingPlan("plan9"), wantErr: ErrInvalidRequest},
		{name: "方案表没有每日五次", dosesPerDay: 5, plan: TimingPlan1, wantErr: ErrUnsupportedDoseCount},
		{name: "自定义数量不符", dosesPerDay: 3, plan: TimingPlanCustom, customTimes: []string{"08:00", "20:00"}, wantErr: ErrInvalidSlot},
		{name: "自定义格式错误", dosesPerDay: 1, plan: TimingPlanCustom, customTimes: []string{"8點"}, wantErr: ErrInvalidSlot},
		{name: "自定义落在禁止时段", dosesPerDay: 2, plan: TimingPlanCustom, customTimes: []string{"05:59", "12:00"}, wantErr: ErrInvalidSlot},
		{name: "自定义去重后数量不足", dosesPerDay: 2, plan: TimingPlanCustom, customTimes: []string{"08:00", "08:00"}, wantErr: ErrInvalidSlot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveSlotPlan(tt.dosesPerDay, tt.plan, tt.customTimes)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestResolveSlotPlan_CustomSortedAscending(t *testing.T) {
	sp, err := ResolveSlotPlan(3, TimingPlanCustom, []string{"21:00", "08:30", "13:15"})
	require.NoError(t, err)
	assert.Equal(t, []Slot{{Hour: 8, Minute: 30}, {Hour: 13, Minute: 15}, {Hour: 21}}, sp.Slots)
}

// 06:00 是禁止时段的开区间端点，应当被允许
func TestResolveSlotPlan_ForbiddenWindowBoundary(t *testing.T) {
	sp, err := ResolveSlotPlan(1, TimingPlanCustom, []string{"06:00"})
	require.NoError(t, err)
	assert.Equal(t, []Slot{{Hour: 6}}, sp.Slots)
}
