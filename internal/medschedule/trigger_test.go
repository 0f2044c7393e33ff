package medschedule

import (
	"testing"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 分钟值相同的时间合并为一组 (分钟, 小时集合)
func TestSynthesizeTrigger_GroupsByMinute(t *testing.T) {
	sp, err := ResolveSlotPlan(3, TimingPlanCustom, []string{"08:00", "12:00", "20:00"})
	require.NoError(t, err)

	expr := SynthesizeTrigger(sp)
	require.Len(t, expr.Fires, 1)
	assert.Equal(t, 0, expr.Fires[0].Minute)
	assert.Equal(t, []int{8, 12, 20}, expr.Fires[0].Hours)
}

func TestSynthesizeTrigger_MixedMinutes(t *testing.T) {
	sp, err := ResolveSlotPlan(3, TimingPlanCustom, []string{"08:30", "12:00", "20:30"})
	require.NoError(t, err)

	expr := SynthesizeTrigger(sp)
	require.Len(t, expr.Fires, 2)
	assert.Equal(t, TriggerFire{Minute: 0, Hours: []int{12}}, expr.Fires[0])
	assert.Equal(t, TriggerFire{Minute: 30, Hours: []int{8, 20}}, expr.Fires[1])
}

// 渲染出来的 cron 表达式必须能被提醒 worker 使用的解析器接受
func TestTriggerExpression_CronSpecs(t *testing.T) {
	sp, err := ResolveSlotPlan(3, TimingPlanCustom, []string{"08:00", "12:00", "20:00"})
	require.NoError(t, err)

	specs := SynthesizeTrigger(sp).CronSpecs()
	require.Equal(t, []string{"0 8,12,20 * * *"}, specs)

	for _, spec := range specs {
		_, err := cron.ParseStandard(spec)
		assert.NoError(t, err, "cron 表达式 %q 无法解析", spec)
	}
}
