package memory

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ActiveThreshold is the lifetime trade count at which a trader counts as active.
const ActiveThreshold = 100

// RecentWindow is the number of closed trades used for RecentWinRate.
const RecentWindow = 10

type Maturity string

const (
	MaturityLearning Maturity = "learning"
	MaturityMature   Maturity = "mature"
)

// Summary holds the headline numbers shown above the trade list.
type Summary struct {
	TotalTrades     int
	CompletedTrades int
	WinCount        int
	LossCount       int
	WinRate         float64 // percent, 0 when nothing completed
	MemoryDepth     int
	Maturity        Maturity
	Active          bool
	RemainingTo100  int
}

// Summarize derives the summary panel from a snapshot.
func Summarize(s *Snapshot) Summary {
	sum := Summary{
		TotalTrades: s.TotalTrades,
		MemoryDepth: len(s.RecentTrades),
		Maturity:    MaturityMature,
	}
	if s.Status == StatusLearning {
		sum.Maturity = MaturityLearning
	}

	for _, t := range s.RecentTrades {
		if !t.Outcome.Closed() {
			continue
		}
		sum.CompletedTrades++
		switch t.Outcome.Result {
		case ResultWin:
			sum.WinCount++
		case ResultLoss:
			sum.LossCount++
		}
	}
	if sum.CompletedTrades > 0 {
		sum.WinRate = float64(sum.WinCount) / float64(sum.CompletedTrades) * 100
	}

	if s.TotalTrades >= ActiveThreshold {
		sum.Active = true
	} else {
		sum.RemainingTo100 = ActiveThreshold - s.TotalTrades
	}
	return sum
}

// OverallStats is the performance view over the closed trades in memory.
type OverallStats struct {
	TotalTrades   int     `json:"total_trades"`
	WinCount      int     `json:"win_count"`
	LossCount     int     `json:"loss_count"`
	WinRate       float64 `json:"win_rate"`
	AvgReturn     float64 `json:"avg_return"`
	TotalReturn   float64 `json:"total_return"`
	MaxDrawdown   float64 `json:"max_drawdown"`
	RecentWinRate float64 `json:"recent_win_rate"`
}

// Overall computes OverallStats from trades in oldest-first order.
// Returns are summed, not compounded; drawdown is measured on that running sum.
func Overall(trades []TradeEntry) OverallStats {
	var st OverallStats
	returns := make([]float64, 0, len(trades))
	results := make([]string, 0, len(trades))

	for _, t := range trades {
		if !t.Outcome.Closed() {
			continue
		}
		returns = append(returns, t.Outcome.ReturnPct)
		results = append(results, t.Outcome.Result)
		switch t.Outcome.Result {
		case ResultWin:
			st.WinCount++
		case ResultLoss:
			st.LossCount++
		}
	}

	st.TotalTrades = len(returns)
	if st.TotalTrades == 0 {
		return st
	}

	st.WinRate = float64(st.WinCount) / float64(st.TotalTrades) * 100
	st.AvgReturn = stat.Mean(returns, nil)
	st.TotalReturn = floats.Sum(returns)
	st.MaxDrawdown = maxDrawdown(returns)

	recent := results
	if len(recent) > RecentWindow {
		recent = recent[len(recent)-RecentWindow:]
	}
	wins := 0
	for _, r := range recent {
		if r == ResultWin {
			wins++
		}
	}
	st.RecentWinRate = float64(wins) / float64(len(recent)) * 100
	return st
}

func maxDrawdown(returns []float64) float64 {
	equity := make([]float64, len(returns))
	floats.CumSum(equity, returns)

	peak, worst := 0.0, 0.0
	for _, v := range equity {
		if v > peak {
			peak = v
		}
		if dd := peak - v; dd > worst {
			worst = dd
		}
	}
	return worst
}
