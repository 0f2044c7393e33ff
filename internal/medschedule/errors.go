package medschedule

import "errors"

// 引擎的三类校验错误，调用方通过 errors.Is 来区分并向用户返回对应的提示
var (
	ErrInvalidRequest       = errors.New("无效的排程请求")
	ErrUnsupportedDoseCount = errors.New("不支持的每日服药次数")
	ErrInvalidSlot          = errors.New("无效的服药时间")
)
