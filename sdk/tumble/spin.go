// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package tumble 實作消除式叢集遊戲的完整單局流程。
//
// 一局依序：開盤、初始 Scatter 判定，之後進入消除迴圈
// （找叢集 → Wild 結算 → 派彩 → 倍數升級 → 消除 → 掉落 → 補盤 →
// Scatter 複掃），盤面穩定後判定彩池並結算總派彩。
// 所有抽選都來自注入的亂數流，同一組種子必然重現同一局。
package tumble

import (
	"fmt"

	"github.com/zintix-labs/fairlab/errs"
	"github.com/zintix-labs/fairlab/gamespec"
	"github.com/zintix-labs/fairlab/sdk/buf"
	"github.com/zintix-labs/fairlab/sdk/cluster"
	"github.com/zintix-labs/fairlab/sdk/core"
	"github.com/zintix-labs/fairlab/sdk/grid"
)

const (
	wildSym    = int16(gamespec.W1)
	scatterSym = int16(gamespec.C1)
)

// Spinner 單一遊戲的執行工作站。
//
// 持有盤面、叢集搜尋器、Wild 策略與重用緩衝，熱路徑零配置。
// 非並行安全：一個 Spinner 同一時間只服務一個請求，由上層機台
// 以互斥鎖保護。GameSetting 在載入後視為唯讀。
type Spinner struct {
	gs     *gamespec.GameSetting
	grid   *grid.Grid
	finder *cluster.Finder
	wild   WildPolicy

	// 權重表符號，抽選索引的對照目標
	syms []gamespec.Symbol

	winSeen  []bool  // 本輪得獎格去重標記
	wildSeen []bool  // 本輪得獎 Wild 格去重標記
	winCells []int16 // 得獎格升冪列表，供升級與消除
	cellBuf  []int16 // Scatter 格暫用
}

// NewSpinner 依遊戲設定建立工作站。設定必須已通過載入檢查，
// Wild 策略鍵未註冊或參數不合法回傳設定錯誤。
func NewSpinner(gs *gamespec.GameSetting) (*Spinner, error) {
	pol, err := BuildWildPolicy(&gs.Wild, &gs.Multiplier)
	if err != nil {
		return nil, err
	}
	size := gs.Screen.ScreenSize
	return &Spinner{
		gs:       gs,
		grid:     grid.New(gs.Screen.Columns, gs.Screen.Rows, gs.Multiplier.Initial),
		finder:   cluster.NewFinder(&gs.Symbols, gs.Tumble.MinCluster),
		wild:     pol,
		syms:     gs.Weights.Symbols,
		winSeen:  make([]bool, size),
		wildSeen: make([]bool, size),
		winCells: make([]int16, 0, size),
		cellBuf:  make([]int16, 0, size),
	}, nil
}

// Setting 回傳工作站綁定的遊戲設定（唯讀）。
func (sp *Spinner) Setting() *gamespec.GameSetting {
	return sp.gs
}

// Run 執行一局並把結果寫入 r。r 需由呼叫端先 Reset。
// 回傳錯誤時 r 的內容不完整，不得作為結果回傳。
func (sp *Spinner) Run(c *core.Core, q *buf.SpinRequest, r *buf.RoundResult) error {
	gs := sp.gs
	g := sp.grid

	r.Bet = q.Bet
	r.FreeSpin = q.FreeSpin

	// 盤面歸位與倍數層延續
	g.Reset(gs.Multiplier.Initial)
	if len(q.CarryMults) > 0 {
		if err := sp.applyCarry(q.CarryMults); err != nil {
			return err
		}
	}

	// 開盤。免費遊戲走免費權重表且不套用 boost
	lut := gs.Weights.Table(q.FreeSpin, q.ScatterBoost, q.WildBoost)
	g.Fill(c, lut, sp.syms)

	// 強制 Scatter 落點，蓋過抽出的符號
	for _, cell := range q.ForcedScatters {
		if cell < 0 || int(cell) >= g.Size() {
			return errs.Inputf("forced scatter cell %d outside grid of %d", cell, g.Size())
		}
		g.Syms[cell] = scatterSym
	}

	r.SetInitial(g.Syms)
	r.AddReveal()

	// 初始 Scatter 判定。單局至多派發一次
	triggered := sp.evalScatter(q, r)

	// 消除迴圈
	var cascade float64
	maxT := gs.Tumble.MaxTumbles
	for {
		clusters := sp.finder.Find(g)
		if len(clusters) == 0 {
			break
		}
		if r.TumbleCount == maxT {
			return errs.NewIterLimit(fmt.Sprintf("tumble loop exceeded %d iterations (game %s nonce %d)", maxT, gs.GameName, q.Nonce))
		}
		r.TumbleCount++

		sp.markWins(clusters)

		// Wild 先結算，本輪派彩採用更新後的倍數
		for idx := range sp.wildSeen {
			if sp.wildSeen[idx] {
				sp.wild.Burst(c, g, int16(idx), r)
			}
		}

		// 派彩
		for i := range clusters {
			cl := &clusters[i]
			cl.BasePay = payFor(&gs.Symbols, gs.Tumble.MinCluster, cl.Sym, len(cl.Cells))
			cl.Mult = clusterMult(g, cl.Cells)
			cl.Pay = cl.BasePay * float64(cl.Mult) * q.Bet
			cascade += cl.Pay
			r.AddWin(cl.Sym, cl.Mult, cl.BasePay, cl.Pay, cl.Cells)
		}

		// 升級與消除
		sp.escalate(r)
		g.Clear(sp.winCells)

		// 掉落與補盤
		moveStart := len(r.MoveFlat)
		g.Gravity(&r.MoveFlat)
		if len(r.MoveFlat) > moveStart {
			r.AddTumble(moveStart)
		}
		fillStart := len(r.FillFlat)
		g.Refill(c, lut, sp.syms, &r.FillFlat)
		if len(r.FillFlat) > fillStart {
			r.AddFill(fillStart)
		}

		// 補盤後複掃 Scatter，直到本局首次派發為止
		if triggered == 0 {
			triggered = sp.evalScatter(q, r)
		}
	}

	// 彩池只在基礎遊戲判定
	var jackpot float64
	if !q.FreeSpin {
		jackpot = sp.checkJackpot(c, q.Bet, r)
	}

	// 消除派彩封頂，彩池獎金另計不受限
	if limit := gs.Bet.MaxWinMult * q.Bet; cascade > limit {
		cascade = limit
	}
	r.TotalPay = cascade + jackpot
	if q.Bet > 0 {
		r.PayoutMult = r.TotalPay / q.Bet
	}

	// 免費場次結算：免費模式先扣本場再加新授予
	remaining := 0
	if q.FreeSpin {
		remaining = q.FreeSpinsRemaining - 1
		if remaining < 0 {
			remaining = 0
		}
	}
	r.FreeSpinsTriggered = triggered
	r.FreeSpinsRemaining = remaining + triggered

	r.SetFinal(g.Syms, g.Mults)
	return nil
}

// ============================================================
// ** 以下內部方法 **
// ============================================================

// applyCarry 套用免費遊戲延續的倍數層。
// 尺寸不符視為組裝面錯誤，值域不符視為請求面錯誤。
func (sp *Spinner) applyCarry(carry []int) error {
	if len(carry) != sp.grid.Size() {
		return errs.Configf("carry-over multiplier grid: len %d != screen size %d", len(carry), sp.grid.Size())
	}
	ms := &sp.gs.Multiplier
	for i, v := range carry {
		if v < ms.Initial || v > ms.Max {
			return errs.Inputf("carry-over multiplier %d at cell %d outside [%d, %d]", v, i, ms.Initial, ms.Max)
		}
	}
	copy(sp.grid.Mults, carry)
	return nil
}

// markWins 彙整本輪所有叢集的成員格：winSeen / winCells 收去重後的
// 得獎格，wildSeen 收其中的 Wild 格。同一 Wild 可能同時屬於多個
// 叢集，結算與升級都只作用一次。winCells 依格子升冪排列。
func (sp *Spinner) markWins(clusters []cluster.Cluster) {
	for i := range sp.winSeen {
		sp.winSeen[i] = false
		sp.wildSeen[i] = false
	}
	for i := range clusters {
		for _, cell := range clusters[i].Cells {
			if sp.winSeen[cell] {
				continue
			}
			sp.winSeen[cell] = true
			if sp.grid.Syms[cell] == wildSym {
				sp.wildSeen[cell] = true
			}
		}
	}
	sp.winCells = sp.winCells[:0]
	for idx := range sp.winSeen {
		if sp.winSeen[idx] {
			sp.winCells = append(sp.winCells, int16(idx))
		}
	}
}
