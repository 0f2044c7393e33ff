package medschedule

import (
	"fmt"
	"slices"
	"time"
)

type TimingPlan string

const (
	TimingPlan1      TimingPlan = "plan1"  // 三餐前后的常规方案
	TimingPlan2      TimingPlan = "plan2"  // plan1 整体推后一小时，适合晚起的病患
	TimingPlanCustom TimingPlan = "custom" // 由照护者自行指定每个时间
)

// 凌晨 [00:00, 06:00) 不允许安排服药
const forbiddenWindowEndHour = 6

type Slot struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

func (s Slot) String() string {
	return fmt.Sprintf("%02d:%02d", s.Hour, s.Minute)
}

func (s Slot) minuteOfDay() int {
	return s.Hour*60 + s.Minute
}

func (s Slot) inForbiddenWindow() bool {
	return s.Hour >= 0 && s.Hour < forbiddenWindowEndHour
}

// SlotPlan 是一天内的规范服药时间表，构建完成后不再修改
type SlotPlan struct {
	Plan  TimingPlan `json:"plan"`
	Slots []Slot     `json:"slots"`
}

// 固定方案表，按 (方案, 每日次数) 查询
// 表中的时间都经过预先审核，不会落在禁止时段内
var namedPlans = map[TimingPlan]map[int][]Slot{
	TimingPlan1: {
		1: {{Hour: 8}},
		2: {{Hour: 8}, {Hour: 20}},
		3: {{Hour: 8}, {Hour: 12}, {Hour: 18}},
		4: {{Hour: 8}, {Hour: 12}, {Hour: 17}, {Hour: 21}},
	},
	TimingPlan2: {
		1: {{Hour: 9}},
		2: {{Hour: 9}, {Hour: 21}},
		3: {{Hour: 9}, {Hour: 13}, {Hour: 19}},
		4: {{Hour: 9}, {Hour: 13}, {Hour: 18}, {Hour: 22}},
	},
}

// ParseSlot 把 "HH:MM" 格式的字符串解析为 Slot
func ParseSlot(value string) (Slot, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return Slot{}, fmt.Errorf("%w: 时间 %q 不是 HH:MM 格式", ErrInvalidSlot, value)
	}
	return Slot{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// ResolveSlotPlan 把 (每日次数, 时间方案, 自定义时间) 解析为规范的服药时间表
func ResolveSlotPlan(dosesPerDay int, plan TimingPlan, customTimes []string) (*SlotPlan, error) {
	if dosesPerDay < 1 {
		return nil, fmt.Errorf("%w: 每日服药次数必须为正数", ErrInvalidRequest)
	}

	if plan == TimingPlanCustom {
		return resolveCustomPlan(dosesPerDay, customTimes)
	}

	table, ok := namedPlans[plan]
	if !ok {
		return nil, fmt.Errorf("%w: 未知的时间方案 %q", ErrInvalidRequest, plan)
	}

	slots, ok := table[dosesPerDay]
	if !ok {
		return nil, fmt.Errorf("%w: 方案 %s 不支持每日 %d 次", ErrUnsupportedDoseCount, plan, dosesPerDay)
	}

	sp := &SlotPlan{
		Plan:  plan,
		Slots: normalizeSlots(slots),
	}
	// 固定方案表被改坏时（比如出现重复项）要在这里就报错，而不是等到生成排程时
	if err := sp.validate(dosesPerDay); err != nil {
		return nil, err
	}

	return sp, nil
}

func resolveCustomPlan(dosesPerDay int, customTimes []string) (*SlotPlan, error) {
	if len(customTimes) != dosesPerDay {
		return nil, fmt.Errorf("%w: 需要 %d 个自定义时间，实际收到 %d 个", ErrInvalidSlot, dosesPerDay, len(customTimes))
	}

	slots := make([]Slot, 0, len(customTimes))
	for _, value := range customTimes {
		slot, err := ParseSlot(value)
		if err != nil {
			return nil, err
		}
		if slot.inForbiddenWindow() {
			return nil, fmt.Errorf("%w: %s 在凌晨禁止服药时段内", ErrInvalidSlot, slot)
		}
		slots = append(slots, slot)
	}

	sp := &SlotPlan{
		Plan:  TimingPlanCustom,
		Slots: normalizeSlots(slots),
	}
	if err := sp.validate(dosesPerDay); err != nil {
		return nil, err
	}

	return sp, nil
}

// normalizeSlots 排序并去重，返回新的切片，不修改入参
func normalizeSlots(slots []Slot) []Slot {
	normalized := slices.Clone(slots)
	slices.SortFunc(normalized, func(a, b Slot) int {
		return a.minuteOfDay() - b.minuteOfDay()
	})
	return slices.Compact(normalized)
}

// validate 检查时间表是否满足不变量：数量、升序、无重复、不在禁止时段
func (sp *SlotPlan) validate(dosesPerDay int) error {
	if len(sp.Slots) < dosesPerDay {
		// 去重后数量变少，说明方案配置有重复时间
		return fmt.Errorf("%w: 去重后只剩 %d 个时间，少于每日 %d 次", ErrInvalidSlot, len(sp.Slots), dosesPerDay)
	}

	for i, slot := range sp.Slots {
		if slot.Hour < 0 || slot.Hour > 23 || slot.Minute < 0 || slot.Minute > 59 {
			return fmt.Errorf("%w: %02d:%02d 超出一天的范围", ErrInvalidSlot, slot.Hour, slot.Minute)
		}
		if slot.inForbiddenWindow() {
			return fmt.Errorf("%w: %s 在凌晨禁止服药时段内", ErrInvalidSlot, slot)
		}
		if i > 0 && sp.Slots[i-1].minuteOfDay() >= slot.minuteOfDay() {
			return fmt.Errorf("%w: 时间表必须严格升序", ErrInvalidSlot)
		}
	}

	return nil
}
