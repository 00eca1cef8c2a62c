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

// Package cluster 實作 cluster-pays 的連通塊搜尋 (BFS)。
//
// 配對規則：
//   - 同符號相連 (四方位，無對角線)。
//   - Wild 可替代任何非 Scatter 符號，且可同時被多個 cluster 吸收。
//   - Scatter 永遠不配對。
//
// Wild 起頭的 BFS 以「第一個出列的非 Wild 符號」鎖定代表符號；
// 鎖定前入列、鎖定後不再匹配的格子會在出列時被丟棄。
// 全 Wild 的連通塊以 Wild 作為代表符號派彩。
package cluster

import (
	"github.com/zintix-labs/fairlab/gamespec"
	"github.com/zintix-labs/fairlab/sdk/grid"
)

// Cluster 單次迭代找到的一組連線。
//
// Cells 依 BFS 出列順序排列。Sym 為代表符號：cluster 內第一個非 Wild
// 的格子符號，全 Wild 時為 Wild 本身。
// BasePay / Mult / Pay 由派彩階段回填，搜尋階段一律為零值。
type Cluster struct {
	Sym     int16
	Cells   []int16
	BasePay float64
	Mult    int
	Pay     float64
}

// Finder 重用緩衝的 cluster 搜尋器，單一 goroutine 使用
type Finder struct {
	minCluster int
	wildMask   uint64
	scatMask   uint64

	rows, cols int
	n          int

	// BFS 佇列 (head 指標出列)
	q []int

	// visited 記錄格子是否已編入某個 cluster (本次 Find 全局有效)。
	// 只擋「再作為起點」：Wild 入列與否由 mark 決定，仍可被其他 cluster 吸收
	visited []bool

	// mark 記錄「當前 BFS」的入列狀態，配合 epoch 避免每次清零
	mark  []int
	epoch int

	// arena 收納本次 Find 所有 cluster 的格子，out 的 Cells 都切自這裡
	arena  []int16
	spans  []span
	out    []Cluster
}

type span struct {
	sym        int16
	start, end int32
}

// NewFinder 依符號配置與最小連線數建立搜尋器。
// 盤面尺寸在第一次 Find 時才決定，之後允許變動 (緩衝自動擴容)
func NewFinder(ss *gamespec.SymbolSetting, minCluster int) *Finder {
	f := &Finder{minCluster: minCluster}
	for _, s := range ss.SymbolUsed {
		switch {
		case gamespec.IsSymbolWild(s):
			f.wildMask |= 1 << uint(s)
		case gamespec.IsSymbolScatter(s):
			f.scatMask |= 1 << uint(s)
		}
	}
	return f
}

// resetSizes 只調整容量，不清內容
func (f *Finder) resetSizes(rows int, cols int) {
	f.rows, f.cols = rows, cols
	f.n = rows * cols
	needN := f.n

	if cap(f.visited) < needN {
		f.visited = make([]bool, needN)
	} else {
		f.visited = f.visited[:needN]
	}

	if cap(f.mark) < needN {
		f.mark = make([]int, needN)
	} else {
		f.mark = f.mark[:needN]
	}

	if cap(f.q) < needN {
		f.q = make([]int, 0, needN)
	}
}

// Find 搜尋盤面上所有達標的 cluster。
//
// 回傳的 slice 與其中的 Cells 都切自 Finder 的重用緩衝，
// 只在下一次 Find 之前有效；呼叫端需要長期保留時必須自行複製。
func (f *Finder) Find(g *grid.Grid) []Cluster {
	f.resetSizes(g.Rows, g.Cols)

	// 重置 Global Visited (range clear 會被編譯為 memclr)
	for i := range f.visited {
		f.visited[i] = false
	}
	// mark 不用清，依靠 epoch 區分；溢位才清一次 (極少發生)
	f.epoch++
	if f.epoch < 0 { // handle overflow
		f.epoch = 1
		for i := range f.mark {
			f.mark[i] = 0
		}
	}

	f.arena = f.arena[:0]
	f.spans = f.spans[:0]

	isWild := func(s int16) bool { return ((f.wildMask >> uint(s)) & 1) != 0 }
	isScat := func(s int16) bool { return ((f.scatMask >> uint(s)) & 1) != 0 }

	// match 判斷 s 是否可併入 target 的 cluster
	match := func(s, t int16) bool {
		if s == 0 || t == 0 {
			return false
		}
		if s == t {
			return true
		}
		if isScat(s) || isScat(t) {
			return false
		}
		return isWild(s) || isWild(t)
	}

	// 遍歷每一個格子作為潛在的 cluster 起點 (Wild 也可以起頭)
	for i := 0; i < f.n; i++ {
		sym := g.Syms[i]
		if sym == 0 {
			continue
		}
		// Scatter 不成 cluster，標記後跳過
		if isScat(sym) {
			f.visited[i] = true
			continue
		}
		if f.visited[i] {
			continue
		}

		// --- 開始一個新的 cluster ---
		f.epoch++
		ep := f.epoch

		f.q = f.q[:0]
		f.q = append(f.q, i)
		f.mark[i] = ep

		target := sym
		cellStart := len(f.arena)
		head := 0

		// BFS Loop
		for head < len(f.q) {
			curr := f.q[head]
			head++
			s := g.Syms[curr]

			// 出列時再驗一次：target 可能在這格入列後才被鎖定
			if !match(s, target) {
				continue
			}

			f.arena = append(f.arena, int16(curr))
			f.visited[curr] = true

			// Wild 起頭的 cluster 鎖定第一個出列的非 Wild 符號
			if isWild(target) && !isWild(s) {
				target = s
			}

			r := curr / f.cols
			c := curr % f.cols

			checkNeighbor := func(next int) {
				if f.mark[next] == ep {
					return
				}
				if !match(g.Syms[next], target) {
					return
				}
				f.mark[next] = ep
				f.q = append(f.q, next)
			}

			// 展開順序固定：上、下、左、右。
			// 出列順序決定代表符號的鎖定結果，不可重排
			if r > 0 {
				checkNeighbor(curr - f.cols)
			}
			if r+1 < f.rows {
				checkNeighbor(curr + f.cols)
			}
			if c > 0 {
				checkNeighbor(curr - 1)
			}
			if c+1 < f.cols {
				checkNeighbor(curr + 1)
			}
		}

		// 未達最小連線數，丟棄這段 arena
		size := len(f.arena) - cellStart
		if size < f.minCluster {
			f.arena = f.arena[:cellStart]
			continue
		}

		f.spans = append(f.spans, span{
			sym:   target,
			start: int32(cellStart),
			end:   int32(len(f.arena)),
		})
	}

	// arena 已定型，現在才切出 Cells (append 期間底層陣列可能搬家)
	f.out = f.out[:0]
	for _, sp := range f.spans {
		f.out = append(f.out, Cluster{
			Sym:   sp.sym,
			Cells: f.arena[sp.start:sp.end],
		})
	}
	return f.out
}
