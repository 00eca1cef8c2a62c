package tumble

import (
	"github.com/zintix-labs/fairlab/sdk/buf"
	"github.com/zintix-labs/fairlab/sdk/core"
)

// evalScatter 掃描全盤 Scatter 並判定免費次數，回傳派發場次。
// 單局至多派發一次由呼叫端把關，本函數只負責判定與發事件。
func (sp *Spinner) evalScatter(q *buf.SpinRequest, r *buf.RoundResult) int {
	count := sp.grid.CountSym(scatterSym)
	awarded := sp.gs.Scatter.SpinsFor(count, q.FreeSpin)
	if awarded == 0 {
		return 0
	}
	sp.cellBuf = sp.grid.CellsOf(scatterSym, sp.cellBuf[:0])
	r.AddTrigger(count, awarded, q.FreeSpin, sp.cellBuf)
	return awarded
}

// DrawForcedCells 從亂數流抽出 n 個相異格子，供強制 Scatter 流程
// （例如購買觸發）指定落點。消耗恰好 n 次抽選，重算方可重現。
// n 超出 [0, gridSize] 回傳 nil。
func DrawForcedCells(c *core.Core, n int, gridSize int) []int16 {
	idx := c.SampleIdx(n, gridSize)
	if idx == nil {
		return nil
	}
	out := make([]int16, len(idx))
	for i, v := range idx {
		out[i] = int16(v)
	}
	return out
}
