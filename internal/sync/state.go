package sync

// State 同步模块的生命周期
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateLive     // 快照已加载，变更流增量合并中
	StateFailed   // 快照加载失败，等待下一次 Load
	StateDemo     // 集合缺失，降级到内置演示数据，纯本地操作
	StateDisabled // 集合缺失，功能整体关闭，操作一律无害空转
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateLive:
		return "live"
	case StateFailed:
		return "failed"
	case StateDemo:
		return "demo"
	case StateDisabled:
		return "disabled"
	default:
		return "unknown"
	}
}
