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

// Package grid 提供雙層盤面狀態與落珠類遊戲的盤面操作。
//
// 盤面採用扁平化 []int16 儲存，idx = row*cols + col (row-major)，
// 0 代表空位。倍數層與符號層平行，倍數屬於「格子」而非「符號」：
// 符號掉落時倍數留在原位。
package grid

import (
	"github.com/zintix-labs/fairlab/gamespec"
	"github.com/zintix-labs/fairlab/sdk/core"
	"github.com/zintix-labs/fairlab/sdk/sampler"
)

// Fill 紀錄單格補盤：在 Cell 格補入符號 Sym
type Fill struct {
	Cell int16
	Sym  int16
}

// Grid 雙層盤面：符號層 + 倍數層
//
//   - Syms: 符號層，存 gamespec.Symbol 的 int16 值，0 = 空位
//   - Mults: 倍數層，跟格子走，不跟符號走
//
// 一次 Spin 期間由單一呼叫者獨佔，對外只交付複本。
type Grid struct {
	Cols int
	Rows int

	Syms  []int16
	Mults []int
}

// New 建立盤面，符號層全空，倍數層填入初始值
func New(cols, rows, initMult int) *Grid {
	size := cols * rows
	g := &Grid{
		Cols:  cols,
		Rows:  rows,
		Syms:  make([]int16, size),
		Mults: make([]int, size),
	}
	for i := range g.Mults {
		g.Mults[i] = initMult
	}
	return g
}

// Size 回傳盤面格數
func (g *Grid) Size() int {
	return g.Cols * g.Rows
}

// Reset 清空符號層並將倍數層重設為初始值，保留既有配置供重用
func (g *Grid) Reset(initMult int) {
	for i := range g.Syms {
		g.Syms[i] = 0
	}
	for i := range g.Mults {
		g.Mults[i] = initMult
	}
}

// Fill 補滿整個盤面：依 row-major 順序逐格抽一次符號
//
//   - lut: 生效中的權重查找表 (模式與加購選項由呼叫端決定)
//   - syms: 權重表對應的符號列表，lut.Pick 回傳其索引
func (g *Grid) Fill(c *core.Core, lut sampler.LUT, syms []gamespec.Symbol) {
	for i := range g.Syms {
		g.Syms[i] = int16(syms[lut.Pick(c)])
	}
}

// Refill 依 row-major 順序掃描空位，每個空位抽一次符號補入。
// 掃描順序即抽樣順序，重算方必須用相同順序才能對上亂數流。
// 若 fills 非 nil，補盤紀錄會追加進去
func (g *Grid) Refill(c *core.Core, lut sampler.LUT, syms []gamespec.Symbol, fills *[]Fill) {
	for i := range g.Syms {
		// 只有是空位 (0) 才補
		if g.Syms[i] != 0 {
			continue
		}
		sym := int16(syms[lut.Pick(c)])
		g.Syms[i] = sym
		if fills != nil {
			*fills = append(*fills, Fill{Cell: int16(i), Sym: sym})
		}
	}
}

// Clear 消除標記位置的圖標(改為0)，倍數層不受影響
func (g *Grid) Clear(cells []int16) {
	for _, v := range cells {
		if int(v) < len(g.Syms) { // 簡單防禦
			g.Syms[v] = 0
		}
	}
}

// CellsOf 依 row-major 順序收集符號 sym 所在的格子，追加到 buf
func (g *Grid) CellsOf(sym int16, buf []int16) []int16 {
	for i, v := range g.Syms {
		if v == sym {
			buf = append(buf, int16(i))
		}
	}
	return buf
}

// CountSym 回傳符號 sym 在盤面上出現的次數
func (g *Grid) CountSym(sym int16) int {
	n := 0
	for _, v := range g.Syms {
		if v == sym {
			n++
		}
	}
	return n
}

// burstDirs 爆裂影響的固定順序：四方位在前，對角線在後
var burstDirs = [8][2]int{
	{-1, 0}, {1, 0}, {0, -1}, {0, 1},
	{-1, -1}, {-1, 1}, {1, -1}, {1, 1},
}

// Neighborhood 回傳 idx 自身加上界內的 8 鄰格，追加到 buf。
// 順序固定：自身、上、下、左、右、左上、右上、左下、右下，
// 界外鄰格直接略過。事件紀錄依賴這個順序，不可重排
func (g *Grid) Neighborhood(idx int16, buf []int16) []int16 {
	buf = append(buf, idx)
	r := int(idx) / g.Cols
	c := int(idx) % g.Cols
	for _, d := range burstDirs {
		nr, nc := r+d[0], c+d[1]
		if nr < 0 || nr >= g.Rows || nc < 0 || nc >= g.Cols {
			continue
		}
		buf = append(buf, int16(nr*g.Cols+nc))
	}
	return buf
}
