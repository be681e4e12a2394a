// Package i18n holds the strings shown by the memory view in the two
// supported languages.
package i18n

type Language string

const (
	English Language = "en"
	Chinese Language = "zh"
)

// Parse maps a language tag to a supported language. Only the exact tag "zh"
// selects Chinese; anything else falls back to English.
func Parse(tag string) Language {
	if tag == string(Chinese) {
		return Chinese
	}
	return English
}

// Toggle switches between the two languages.
func (l Language) Toggle() Language {
	if l == Chinese {
		return English
	}
	return Chinese
}

type Key string

const (
	LoadFailed      Key = "load_failed"
	Loading         Key = "loading"
	TotalTrades     Key = "total_trades"
	Learning        Key = "learning"
	Mature          Key = "mature"
	RecentWinRate   Key = "recent_win_rate"
	MemoryDepth     Key = "memory_depth"
	LastN           Key = "last_n"
	Activity        Key = "activity"
	Active          Key = "active"
	NoMemoryTitle   Key = "no_memory_title"
	NoMemoryHint    Key = "no_memory_hint"
	HardConstraints Key = "hard_constraints"
	Prediction      Key = "prediction"
	JustNow         Key = "just_now"
	MinutesAgo      Key = "minutes_ago"
	HoursAgo        Key = "hours_ago"
	DaysAgo         Key = "days_ago"
	Performance     Key = "performance"
	AvgReturn       Key = "avg_return"
	TotalReturn     Key = "total_return"
	MaxDrawdown     Key = "max_drawdown"
	RecentTen       Key = "recent_ten"
	Entry           Key = "entry"
	Exit            Key = "exit"
	Held            Key = "held"
	Position        Key = "position"
	ExpectedMove    Key = "expected_move"
	TradeMemory     Key = "trade_memory"
	UpdatedAt       Key = "updated_at"
	Trader          Key = "trader"
	Refreshing      Key = "refreshing"
	RefreshThrottle Key = "refresh_throttled"
)

var table = map[Key][2]string{
	LoadFailed:      {"Failed to load memory", "记忆加载失败"},
	Loading:         {"Loading...", "加载中..."},
	TotalTrades:     {"Total Trades", "总交易数"},
	Learning:        {"Learning", "学习中"},
	Mature:          {"Mature", "成熟期"},
	RecentWinRate:   {"Recent Win Rate", "近期胜率"},
	MemoryDepth:     {"Memory Depth", "记忆深度"},
	LastN:           {"Last 20", "最近20笔"},
	Activity:        {"Activity", "活跃度"},
	Active:          {"Active", "活跃"},
	NoMemoryTitle:   {"No Trade Memory Yet", "暂无交易记忆"},
	NoMemoryHint:    {"Memory will start recording after first trade", "AI首次交易后将开始记录学习"},
	HardConstraints: {"Hard Constraints", "基础风控约束"},
	Prediction:      {"Prediction", "预测"},
	JustNow:         {"just now", "刚才"},
	MinutesAgo:      {"m ago", "分钟前"},
	HoursAgo:        {"h ago", "小时前"},
	DaysAgo:         {"d ago", "天前"},
	Performance:     {"Performance", "表现"},
	AvgReturn:       {"Avg", "平均"},
	TotalReturn:     {"Total", "累计"},
	MaxDrawdown:     {"Max DD", "最大回撤"},
	RecentTen:       {"Last 10", "最近10笔"},
	Entry:           {"Entry", "开仓"},
	Exit:            {"Exit", "平仓"},
	Held:            {"Held", "持仓"},
	Position:        {"Size", "仓位"},
	ExpectedMove:    {"Move", "预期"},
	TradeMemory:     {"AI Trade Memory", "AI交易记忆"},
	UpdatedAt:       {"Updated", "更新于"},
	Trader:          {"trader", "交易员"},
	Refreshing:      {"refreshing...", "刷新中..."},
	RefreshThrottle: {"refresh throttled", "刷新过于频繁"},
}

// T returns the string for key in the given language.
func (l Language) T(key Key) string {
	entry, ok := table[key]
	if !ok {
		return string(key)
	}
	if l == Chinese {
		return entry[1]
	}
	return entry[0]
}
