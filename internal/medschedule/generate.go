package medschedule

import (
	"fmt"
	"time"
)

// ScheduleRequest 是一次排程计算的全部输入
type ScheduleRequest struct {
	AnchorDateTime time.Time      // 真实的首次服药时间
	DosesPerDay    int            // 每日服药次数
	TreatmentDays  int            // 疗程天数（含首日）
	TimingPlan     TimingPlan     // 时间方案
	CustomTimes    []string       // 仅当 TimingPlan 为 custom 时使用
	Location       *time.Location // 必须显式注入，不允许依赖进程时区
}

// ScheduleEvent 是排程输出中的一次服药事件，生成后不再修改
type ScheduleEvent struct {
	DateTime    time.Time `json:"dateTime"`
	DayIndex    int       `json:"dayIndex"` // 从首日起算，1 开始
	IsFirstDose bool      `json:"isFirstDose"`
	Label       string    `json:"label"`
	Medication  string    `json:"medication,omitempty"` // 合并多个药品的排程时用来区分来源
}

const firstDoseLabel = "首次服药"

// Generate 根据锚点剂量和时间表生成整个疗程的服药事件序列
//
// 首日只包含锚点本身和晚于锚点的时间；锚点代表已经发生的服药，
// 即使它落在禁止时段内也必须原样保留。第二天起每天都是完整的时间表。
func Generate(req ScheduleRequest, plan *SlotPlan) ([]ScheduleEvent, error) {
	if req.DosesPerDay < 1 {
		return nil, fmt.Errorf("%w: 每日服药次数必须为正数", ErrInvalidRequest)
	}
	if req.TreatmentDays < 1 {
		return nil, fmt.Errorf("%w: 疗程天数必须为正数", ErrInvalidRequest)
	}
	if req.AnchorDateTime.IsZero() {
		return nil, fmt.Errorf("%w: 缺少首次服药时间", ErrInvalidRequest)
	}
	if req.Location == nil {
		return nil, fmt.Errorf("%w: 必须显式指定时区", ErrInvalidRequest)
	}
	if plan == nil || len(plan.Slots) == 0 {
		return nil, fmt.Errorf("%w: 缺少服药时间表", ErrInvalidSlot)
	}
	// 时间表可能来自持久化层，这里重新校验一遍，防止被改坏的数据流入
	if err := plan.validate(len(plan.Slots)); err != nil {
		return nil, err
	}

	// 所有日期运算都在请求的时区内进行，避免在夏令时边界上把事件算到错误的日历日
	anchor := req.AnchorDateTime.In(req.Location)
	year, month, day := anchor.Date()
	anchorMinute := anchor.Hour()*60 + anchor.Minute()

	events := make([]ScheduleEvent, 0, 1+len(plan.Slots)*req.TreatmentDays)

	// 首日：锚点事件必须和真实服药时间完全一致
	events = append(events, ScheduleEvent{
		DateTime:    anchor,
		DayIndex:    1,
		IsFirstDose: true,
		Label:       firstDoseLabel,
	})

	// 首日剩余的时间：只取严格晚于锚点的，不补已经过去的时间
	for i, slot := range plan.Slots {
		if slot.minuteOfDay() <= anchorMinute {
			continue
		}
		events = append(events, ScheduleEvent{
			DateTime: time.Date(year, month, day, slot.Hour, slot.Minute, 0, 0, req.Location),
			DayIndex: 1,
			Label:    slotLabel(plan, i),
		})
	}

	// 第 2 天到第 TreatmentDays 天：每天完整的时间表
	for d := 2; d <= req.TreatmentDays; d++ {
		for i, slot := range plan.Slots {
			dt := time.Date(year, month, day+d-1, slot.Hour, slot.Minute, 0, 0, req.Location)
			// 时间表在解析时已经校验过，这里再断言一次，同时也能挡住
			// 夏令时切换把墙上时间挪进禁止时段的罕见情况
			if dt.Hour() < forbiddenWindowEndHour {
				return nil, fmt.Errorf("%w: 第 %d 天的 %s 落在凌晨禁止时段内", ErrInvalidSlot, d, slot)
			}
			events = append(events, ScheduleEvent{
				DateTime: dt,
				DayIndex: d,
				Label:    slotLabel(plan, i),
			})
		}
	}

	return events, nil
}

// GenerateSchedule 先解析时间表再生成排程，是对外的一站式入口
func GenerateSchedule(req ScheduleRequest) ([]ScheduleEvent, error) {
	plan, err := ResolveSlotPlan(req.DosesPerDay, req.TimingPlan, req.CustomTimes)
	if err != nil {
		return nil, err
	}
	return Generate(req, plan)
}

// slotLabel 给时间表中第 i 个时间生成展示标签
// 固定方案按时段命名，自定义方案退化为序数
func slotLabel(plan *SlotPlan, i int) string {
	if plan.Plan == TimingPlanCustom {
		return fmt.Sprintf("第 %d 次", i+1)
	}

	switch hour := plan.Slots[i].Hour; {
	case hour < 11:
		return "早上"
	case hour < 14:
		return "中午"
	case hour < 17:
		return "下午"
	case hour < 21:
		return "晚上"
	default:
		return "睡前"
	}
}
