package medschedule

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// TriggerFire 表示每天在同一分钟值、若干小时上的一组触发
type TriggerFire struct {
	Minute int   `json:"minute"`
	Hours  []int `json:"hours"`
}

// TriggerExpression 是由服药时间表编译出来的每日循环触发描述
// 它只描述稳态的循环，不包含首日锚点，也不携带时区，
// 时区由消费它的提醒调度器在求值时应用
type TriggerExpression struct {
	Fires []TriggerFire `json:"fires"`
}

// SynthesizeTrigger 把时间表按分钟值分组，每个分钟值产生一组 (分钟, 小时集合) 触发
func SynthesizeTrigger(plan *SlotPlan) TriggerExpression {
	hoursByMinute := make(map[int][]int)
	for _, slot := range plan.Slots {
		hoursByMinute[slot.Minute] = append(hoursByMinute[slot.Minute], slot.Hour)
	}

	minutes := make([]int, 0, len(hoursByMinute))
	for minute := range hoursByMinute {
		minutes = append(minutes, minute)
	}
	slices.Sort(minutes)

	fires := make([]TriggerFire, 0, len(minutes))
	for _, minute := range minutes {
		hours := hoursByMinute[minute]
		slices.Sort(hours)
		fires = append(fires, TriggerFire{Minute: minute, Hours: hours})
	}

	return TriggerExpression{Fires: fires}
}

// CronSpecs 把触发描述渲染为标准的五段 cron 表达式，
// 提醒 worker 用 robfig/cron 在药品所在时区解析执行
func (e TriggerExpression) CronSpecs() []string {
	specs := make([]string, 0, len(e.Fires))
	for _, fire := range e.Fires {
		hours := make([]string, 0, len(fire.Hours))
		for _, hour := range fire.Hours {
			hours = append(hours, strconv.Itoa(hour))
		}
		specs = append(specs, fmt.Sprintf("%d %s * * *", fire.Minute, strings.Join(hours, ",")))
	}
	return specs
}
