package medschedule

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
)

// 时段词 + 数字 + 可选的 點/点，例如 "早上9點"、"晚上 9 点" 不含空格的写法
var periodPattern = regexp.MustCompile(`(早上|上午|中午|下午|晚上|深夜|凌晨)(\d{1,2})[點点]?`)

// 不带时段词的裸数字写法，例如 "9點"、"21:30"
var barePattern = regexp.MustCompile(`(\d{1,2})[點点:：](\d{1,2})?`)

// periodRule 描述一个时段词如何把口语小时换算成 24 小时制
type periodRule struct {
	noonOverride bool // 无论数字是几都固定为 12 点（中午）
	addTwelve    bool // 数字为 1~11 时加 12（下午、晚上、深夜）
	twelveToZero bool // 数字为 12 时换算成 0 点（晚上、深夜、凌晨）
}

// 换算规则表，做成显式的枚举便于逐条审核和单测
//
// 注意 中午 会丢弃捕获到的数字、固定输出 12:00，"中午1點" 也会变成 12:00，
// 这是沿用线上观察到的行为，没有擅自修正
var periodRules = map[string]periodRule{
	"早上": {},
	"上午": {},
	"中午": {noonOverride: true},
	"下午": {addTwelve: true},
	"晚上": {addTwelve: true, twelveToZero: true},
	"深夜": {addTwelve: true, twelveToZero: true},
	"凌晨": {twelveToZero: true},
}

func (rule periodRule) convert(hour int) int {
	switch {
	case rule.noonOverride:
		return 12
	case rule.twelveToZero && hour == 12:
		return 0
	case rule.addTwelve && hour >= 1 && hour <= 11:
		return hour + 12
	default:
		return hour
	}
}

// ExtractTimes 从照护者的自由文本中提取 "HH:MM" 时间，升序去重
//
// 先扫带时段词的写法，这一轮不解析分钟（"下午3點半" 会丢掉半小时，只得 15:00）；
// 只有当第一轮一无所获时才退回扫裸数字写法，裸写法支持分钟。
// 什么都没匹配到时返回空切片，这本身就是 "没找到时间" 的信号，不算错误
func ExtractTimes(text string) []string {
	times := extractPeriodTagged(text)
	if len(times) == 0 {
		times = extractBareNumeric(text)
	}

	slices.Sort(times)
	return slices.Compact(times)
}

func extractPeriodTagged(text string) []string {
	times := []string{}
	for _, match := range periodPattern.FindAllStringSubmatch(text, -1) {
		rule := periodRules[match[1]]
		hour, err := strconv.Atoi(match[2])
		if err != nil {
			continue
		}

		hour = rule.convert(hour)
		if hour < 0 || hour > 23 {
			continue
		}

		times = append(times, fmt.Sprintf("%02d:00", hour))
	}
	return times
}

func extractBareNumeric(text string) []string {
	times := []string{}
	for _, match := range barePattern.FindAllStringSubmatch(text, -1) {
		hour, err := strconv.Atoi(match[1])
		if err != nil || hour > 23 {
			continue
		}

		minute := 0
		if match[2] != "" {
			minute, err = strconv.Atoi(match[2])
			if err != nil || minute > 59 {
				continue
			}
		}

		times = append(times, fmt.Sprintf("%02d:%02d", hour, minute))
	}
	return times
}
