package utils

import (
	"fmt"

	"github.com/carelink-tw/med-reminder/backend/internal/medschedule"
)

// ValidateScheduleAgainstPlan 对生成好的排程做最终校验：
// 锚点唯一、首日之后每天的时间集合与时间表完全一致、
// 除锚点外没有事件落在凌晨禁止时段
// 排程引擎本身保证这些不变量，这里是入库前的最后一道防线
func ValidateScheduleAgainstPlan(events []medschedule.ScheduleEvent, plan *medschedule.SlotPlan, treatmentDays int) error {
	planTimes := make([]string, 0, len(plan.Slots))
	for _, slot := range plan.Slots {
		planTimes = append(planTimes, slot.String())
	}

	firstDoseCount := 0
	timesByDay := make(map[int][]string)

	for _, event := range events {
		if event.IsFirstDose {
			firstDoseCount++
			if event.DayIndex != 1 {
				return fmt.Errorf("锚点事件出现在第 %d 天", event.DayIndex)
			}
			continue
		}

		if event.DateTime.Hour() < 6 {
			return fmt.Errorf("第 %d 天的 %s 落在凌晨禁止时段内", event.DayIndex, event.DateTime.Format("15:04"))
		}

		timesByDay[event.DayIndex] = append(timesByDay[event.DayIndex], event.DateTime.Format("15:04"))
	}

	if firstDoseCount != 1 {
		return fmt.Errorf("锚点事件应当恰好一个，实际有 %d 个", firstDoseCount)
	}

	for d := 2; d <= treatmentDays; d++ {
		times := timesByDay[d]
		if len(times) != len(planTimes) {
			return fmt.Errorf("第 %d 天应有 %d 次服药，实际有 %d 次", d, len(planTimes), len(times))
		}
		for i, t := range times {
			if t != planTimes[i] {
				return fmt.Errorf("第 %d 天的第 %d 次服药时间 %s 与时间表 %s 不符", d, i+1, t, planTimes[i])
			}
		}
	}

	return nil
}
