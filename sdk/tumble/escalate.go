package tumble

import "github.com/zintix-labs/fairlab/sdk/buf"

// escalate 對本輪所有得獎格升級倍數，同一格在一輪內至多升級一次
// （同輪多個叢集共享的格子已在 markWins 去重）。值有變動才發事件，
// 已封頂的格子不再發。由 spin 流程在派彩後、消除前呼叫。
func (sp *Spinner) escalate(r *buf.RoundResult) {
	ms := &sp.gs.Multiplier
	for _, cell := range sp.winCells {
		old := sp.grid.Mults[cell]
		next := ms.Escalate(old)
		if next != old {
			sp.grid.Mults[cell] = next
			r.AddUpgrade(cell, next)
		}
	}
}
