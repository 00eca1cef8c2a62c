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

package grid

import (
	"slices"
	"testing"

	"github.com/zintix-labs/fairlab/gamespec"
	"github.com/zintix-labs/fairlab/sdk/core"
	"github.com/zintix-labs/fairlab/sdk/sampler"
)

func newCore(nonce uint64) *core.Core {
	return core.New(core.NewSeedStream("grid-unit-server", "grid-unit-client", nonce))
}

// TestFillMatchesStream 驗證整盤補滿的抽樣順序
// 檢查項目: Fill 必須依 row-major 順序逐格抽一次，與手動重算的流完全一致
func TestFillMatchesStream(t *testing.T) {
	syms := []gamespec.Symbol{gamespec.H1, gamespec.M1}
	lut := sampler.BuildLUT([]int{3, 5})

	g := New(3, 3, 1)
	g.Fill(newCore(1), lut, syms)

	b := newCore(1)
	for i := range g.Syms {
		want := int16(syms[lut.Pick(b)])
		if g.Syms[i] != want {
			t.Fatalf("cell %d: got %d, want %d", i, g.Syms[i], want)
		}
	}
}

// TestRefillOnlyEmpties 驗證補盤只針對空位
// 檢查項目: 非空格保持不動，空格依 row-major 順序補入並紀錄 Fill 事件
func TestRefillOnlyEmpties(t *testing.T) {
	syms := []gamespec.Symbol{gamespec.L1, gamespec.L2}
	lut := sampler.BuildLUT([]int{1, 1})

	g := New(3, 3, 1)
	copy(g.Syms, []int16{
		9, 0, 9,
		0, 9, 0,
		9, 9, 0,
	})

	var fills []Fill
	g.Refill(newCore(2), lut, syms, &fills)

	// 空位依 row-major 順序為 1, 3, 5, 8
	wantCells := []int16{1, 3, 5, 8}
	if len(fills) != len(wantCells) {
		t.Fatalf("expected %d fills, got %d", len(wantCells), len(fills))
	}

	b := newCore(2)
	for i, f := range fills {
		if f.Cell != wantCells[i] {
			t.Fatalf("fill %d: cell %d, want %d", i, f.Cell, wantCells[i])
		}
		want := int16(syms[lut.Pick(b)])
		if f.Sym != want || g.Syms[f.Cell] != want {
			t.Fatalf("fill %d: sym %d (grid %d), want %d", i, f.Sym, g.Syms[f.Cell], want)
		}
	}

	// 非空格不可變動
	for _, idx := range []int{0, 2, 4, 6, 7} {
		if g.Syms[idx] != 9 {
			t.Fatalf("cell %d modified: %v", idx, g.Syms)
		}
	}
}

// TestGravityMovesAndMults 驗證掉落壓縮與倍數層的獨立性
// 檢查項目: 符號往下壓縮保持順序、掉落紀錄順序正確、倍數層不隨符號移動
func TestGravityMovesAndMults(t *testing.T) {
	g := New(3, 3, 1)
	copy(g.Syms, []int16{
		1, 0, 2,
		0, 3, 0,
		4, 0, 5,
	})
	for i := range g.Mults {
		g.Mults[i] = i + 1 // 每格不同倍數，用來偵測搬動
	}

	var moves []Move
	g.Gravity(&moves)

	wantSyms := []int16{
		0, 0, 0,
		1, 0, 2,
		4, 3, 5,
	}
	if !slices.Equal(g.Syms, wantSyms) {
		t.Fatalf("unexpected gravity result: %v", g.Syms)
	}

	wantMoves := []Move{
		{From: 0, To: 3, Sym: 1},
		{From: 4, To: 7, Sym: 3},
		{From: 2, To: 5, Sym: 2},
	}
	if !slices.Equal(moves, wantMoves) {
		t.Fatalf("unexpected moves: %v", moves)
	}

	for i := range g.Mults {
		if g.Mults[i] != i+1 {
			t.Fatalf("multiplier moved with symbol at cell %d: %v", i, g.Mults)
		}
	}
}

// TestClear 驗證消格只影響符號層
func TestClear(t *testing.T) {
	g := New(3, 1, 7)
	copy(g.Syms, []int16{1, 2, 3})

	g.Clear([]int16{0, 2, 10})
	if g.Syms[0] != 0 || g.Syms[1] != 2 || g.Syms[2] != 0 {
		t.Fatalf("unexpected clear result: %v", g.Syms)
	}
	for i, m := range g.Mults {
		if m != 7 {
			t.Fatalf("multiplier changed at cell %d: %v", i, g.Mults)
		}
	}
}

// TestNeighborhood 驗證 9 宮格收集的順序與邊界裁切
// 檢查項目: 自身優先、四方位次之、對角線最後，界外格子略過
func TestNeighborhood(t *testing.T) {
	g := New(3, 3, 1)

	cases := []struct {
		idx  int16
		want []int16
	}{
		{4, []int16{4, 1, 7, 3, 5, 0, 2, 6, 8}}, // 中心
		{0, []int16{0, 3, 1, 4}},                // 左上角
		{1, []int16{1, 4, 0, 2, 3, 5}},          // 上緣
		{8, []int16{8, 5, 7, 4}},                // 右下角
	}
	for _, tc := range cases {
		got := g.Neighborhood(tc.idx, nil)
		if !slices.Equal(got, tc.want) {
			t.Fatalf("idx %d: got %v, want %v", tc.idx, got, tc.want)
		}
	}
}

// TestCellsOfAndCount 驗證符號收集與計數
func TestCellsOfAndCount(t *testing.T) {
	g := New(3, 2, 1)
	sc := int16(gamespec.C1)
	copy(g.Syms, []int16{sc, 3, sc, 3, 3, sc})

	cells := g.CellsOf(sc, nil)
	if !slices.Equal(cells, []int16{0, 2, 5}) {
		t.Fatalf("unexpected scatter cells: %v", cells)
	}
	if n := g.CountSym(sc); n != 3 {
		t.Fatalf("expected 3 scatters, got %d", n)
	}
}

// TestReset 驗證重用前的重設
func TestReset(t *testing.T) {
	g := New(2, 2, 1)
	copy(g.Syms, []int16{1, 2, 3, 4})
	g.Mults[0] = 64

	g.Reset(1)
	for i := range g.Syms {
		if g.Syms[i] != 0 || g.Mults[i] != 1 {
			t.Fatalf("reset incomplete at cell %d: syms=%v mults=%v", i, g.Syms, g.Mults)
		}
	}
	if g.Size() != 4 {
		t.Fatalf("unexpected size: %d", g.Size())
	}
}
