package medschedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractTimes_PeriodTagged(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "早晚各一次", text: "早上9點晚上9點", want: []string{"09:00", "21:00"}},
		{name: "带连接词", text: "早上9點和晚上9點", want: []string{"09:00", "21:00"}},
		{name: "上午", text: "上午10點吃药", want: []string{"10:00"}},
		{name: "中午固定为12点", text: "中午12點", want: []string{"12:00"}},
		{name: "中午丢弃数字", text: "中午1點", want: []string{"12:00"}},
		{name: "下午加12", text: "下午3點", want: []string{"15:00"}},
		{name: "下午12点不变", text: "下午12點", want: []string{"12:00"}},
		{name: "晚上12点换算为0点", text: "晚上12點", want: []string{"00:00"}},
		{name: "深夜11点", text: "深夜11點", want: []string{"23:00"}},
		{name: "凌晨12点换算为0点", text: "凌晨12點", want: []string{"00:00"}},
		{name: "凌晨5点不变", text: "凌晨5點", want: []string{"05:00"}},
		{name: "简体点字", text: "早上8点", want: []string{"08:00"}},
		{name: "重复去重", text: "早上9點早上9點", want: []string{"09:00"}},
		{name: "结果升序", text: "晚上9點早上9點中午12點", want: []string{"09:00", "12:00", "21:00"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractTimes(tt.text))
		})
	}
}

// 带时段词的那一轮不解析分钟，"下午3點半" 的半小时会被丢掉
func TestExtractTimes_PeriodPassDropsMinutes(t *testing.T) {
	assert.Equal(t, []string{"15:00"}, ExtractTimes("下午3點半"))
}

func TestExtractTimes_BareFallback(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "裸点字", text: "9點", want: []string{"09:00"}},
		{name: "半角冒号带分钟", text: "21:30吃药", want: []string{"21:30"}},
		{name: "全角冒号", text: "９不算，8：15才算", want: []string{"08:15"}},
		{name: "多个时间", text: "9:30和21:00", want: []string{"09:30", "21:00"}},
		{name: "小时越界跳过", text: "25:00", want: []string{}},
		{name: "分钟越界跳过", text: "8:75", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractTimes(tt.text))
		})
	}
}

// 只要第一轮有收获，第二轮就不再执行，裸写法的 21:30 会被忽略
func TestExtractTimes_PeriodPassSuppressesFallback(t *testing.T) {
	assert.Equal(t, []string{"09:00"}, ExtractTimes("早上9點，另外21:30也行"))
}

// 没匹配到任何时间时返回空切片，不报错
func TestExtractTimes_NoMatch(t *testing.T) {
	got := ExtractTimes("饭后吃两颗")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
