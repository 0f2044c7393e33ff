package medschedule

import (
	"slices"
	"time"
)

type PreviewStatus string

const (
	StatusPassed   PreviewStatus = "passed"
	StatusUpcoming PreviewStatus = "upcoming"
)

type PreviewItem struct {
	Time       string        `json:"time"`
	Label      string        `json:"label"`
	Medication string        `json:"medication,omitempty"`
	Status     PreviewStatus `json:"status"`
}

// PreviewDay 是面向照护者展示的一天的服药安排
type PreviewDay struct {
	Date      string        `json:"date"`
	DayOfWeek string        `json:"dayOfWeek"`
	Items     []PreviewItem `json:"items"`
}

var weekdayNames = map[time.Weekday]string{
	time.Sunday:    "星期日",
	time.Monday:    "星期一",
	time.Tuesday:   "星期二",
	time.Wednesday: "星期三",
	time.Thursday:  "星期四",
	time.Friday:    "星期五",
	time.Saturday:  "星期六",
}

// Preview 把已生成的事件按日历日分桶，取最早的 horizonDays 个有事件的日子，
// 并根据 referenceInstant 现算每个事件的 passed/upcoming 状态
//
// 状态永远不落库，每次调用都重新计算，这样随着真实时间推移，
// 同一批事件的预览会自然地从 upcoming 翻转为 passed
func Preview(events []ScheduleEvent, referenceInstant time.Time, horizonDays int) []PreviewDay {
	days := make([]PreviewDay, 0, horizonDays)
	if len(events) == 0 || horizonDays < 1 {
		return days
	}

	// 合并多个药品的事件后顺序可能被打乱，这里统一按时间排序
	sorted := slices.Clone(events)
	slices.SortStableFunc(sorted, func(a, b ScheduleEvent) int {
		return a.DateTime.Compare(b.DateTime)
	})

	for _, event := range sorted {
		date := event.DateTime.Format("2006-01-02")

		if len(days) == 0 || days[len(days)-1].Date != date {
			if len(days) == horizonDays {
				break
			}
			days = append(days, PreviewDay{
				Date:      date,
				DayOfWeek: weekdayNames[event.DateTime.Weekday()],
			})
		}

		status := StatusUpcoming
		if !event.DateTime.After(referenceInstant) {
			status = StatusPassed
		}

		days[len(days)-1].Items = append(days[len(days)-1].Items, PreviewItem{
			Time:       event.DateTime.Format("15:04"),
			Label:      event.Label,
			Medication: event.Medication,
			Status:     status,
		})
	}

	return days
}

// MergeEvents 合并同一位病患多个药品的事件，给每个事件打上药品名后按时间排序
// 入参不会被修改
func MergeEvents(groups map[string][]ScheduleEvent) []ScheduleEvent {
	total := 0
	for _, events := range groups {
		total += len(events)
	}

	merged := make([]ScheduleEvent, 0, total)
	for medication, events := range groups {
		for _, event := range events {
			event.Medication = medication
			merged = append(merged, event)
		}
	}

	slices.SortStableFunc(merged, func(a, b ScheduleEvent) int {
		return a.DateTime.Compare(b.DateTime)
	})

	return merged
}
