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

package cluster

import (
	"slices"
	"testing"

	"github.com/zintix-labs/fairlab/gamespec"
	"github.com/zintix-labs/fairlab/sdk/grid"
)

// -----------------------------------------------------------------------------
// Helper Functions
// -----------------------------------------------------------------------------

func testSymbols() *gamespec.SymbolSetting {
	return &gamespec.SymbolSetting{
		SymbolUsed: []gamespec.Symbol{
			gamespec.W1, gamespec.C1,
			gamespec.H1, gamespec.H2, gamespec.H3,
			gamespec.M1, gamespec.M2, gamespec.M3,
			gamespec.L1, gamespec.L2, gamespec.L3, gamespec.L4,
		},
	}
}

func newGrid(cols, rows int, syms []int16) *grid.Grid {
	g := grid.New(cols, rows, 1)
	copy(g.Syms, syms)
	return g
}

func checkClusters(t *testing.T, got []Cluster, want []Cluster) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d clusters, got %+v", len(want), got)
	}
	for i := range want {
		if got[i].Sym != want[i].Sym || !slices.Equal(got[i].Cells, want[i].Cells) {
			t.Fatalf("cluster %d: got {sym %d cells %v}, want {sym %d cells %v}",
				i, got[i].Sym, got[i].Cells, want[i].Sym, want[i].Cells)
		}
	}
}

// -----------------------------------------------------------------------------
// Tests
// -----------------------------------------------------------------------------

// TestFindBasicCluster 驗證基本的同符號連通塊
// 檢查項目: Cells 依 BFS 出列順序 (展開固定為上、下、左、右)
func TestFindBasicCluster(t *testing.T) {
	f := NewFinder(testSymbols(), 4)
	g := newGrid(3, 3, []int16{
		3, 3, 6,
		3, 3, 7,
		8, 9, 10,
	})

	got := f.Find(g)
	checkClusters(t, got, []Cluster{
		{Sym: 3, Cells: []int16{0, 3, 1, 4}},
	})
}

// TestFindBelowMinCluster 驗證未達最小連線數不派彩
func TestFindBelowMinCluster(t *testing.T) {
	f := NewFinder(testSymbols(), 4)
	g := newGrid(3, 3, []int16{
		3, 3, 3,
		2, 2, 2,
		6, 7, 8,
	})

	if got := f.Find(g); len(got) != 0 {
		t.Fatalf("expected no clusters, got %+v", got)
	}
}

// TestFindWildSeededLock 驗證 Wild 起頭的代表符號鎖定
// 檢查項目: 第一個出列的非 Wild 符號成為代表符號，後續只收同符號與 Wild
func TestFindWildSeededLock(t *testing.T) {
	f := NewFinder(testSymbols(), 4)
	g := newGrid(3, 3, []int16{
		1, 3, 3,
		3, 6, 6,
		6, 6, 9,
	})

	got := f.Find(g)
	checkClusters(t, got, []Cluster{
		{Sym: 3, Cells: []int16{0, 3, 1, 2}},
		{Sym: 6, Cells: []int16{4, 7, 5, 6}},
	})
}

// TestFindSharedWild 驗證同一個 Wild 可同時屬於多個 cluster
// 檢查項目: 全局 visited 只擋再作為起點，不擋跨 cluster 吸收
func TestFindSharedWild(t *testing.T) {
	f := NewFinder(testSymbols(), 4)
	g := newGrid(3, 3, []int16{
		3, 2, 4,
		3, 1, 4,
		3, 2, 4,
	})

	got := f.Find(g)
	checkClusters(t, got, []Cluster{
		{Sym: 3, Cells: []int16{0, 3, 6, 4}},
		{Sym: 4, Cells: []int16{2, 5, 8, 4}},
	})
}

// TestFindAllWildCluster 驗證全 Wild 連通塊以 Wild 作為代表符號
func TestFindAllWildCluster(t *testing.T) {
	f := NewFinder(testSymbols(), 4)
	g := newGrid(3, 3, []int16{
		1, 1, 2,
		1, 1, 2,
		2, 2, 2,
	})

	got := f.Find(g)
	checkClusters(t, got, []Cluster{
		{Sym: 1, Cells: []int16{0, 3, 1, 4}},
	})
}

// TestFindWildBlockAbsorbsRegular 驗證 Wild 方塊吸收鄰接普通符號後的鎖定
// 檢查項目: 出列到普通符號那一刻才鎖定，之前出列的 Wild 全數保留
func TestFindWildBlockAbsorbsRegular(t *testing.T) {
	f := NewFinder(testSymbols(), 4)
	g := newGrid(3, 3, []int16{
		1, 1, 2,
		1, 1, 2,
		11, 2, 2,
	})

	got := f.Find(g)
	checkClusters(t, got, []Cluster{
		{Sym: 11, Cells: []int16{0, 3, 1, 6, 4}},
	})
}

// TestFindLockDropsAndReseeds 驗證鎖定後的丟棄與重新起頭
// 檢查項目: 鎖定前入列、鎖定後不匹配的格子在出列時丟棄，
// 且該格未被全局標記，之後仍可自行起頭成 cluster
func TestFindLockDropsAndReseeds(t *testing.T) {
	f := NewFinder(testSymbols(), 2)
	g := newGrid(3, 2, []int16{
		1, 3, 2,
		6, 2, 2,
	})

	got := f.Find(g)
	checkClusters(t, got, []Cluster{
		{Sym: 6, Cells: []int16{0, 3}},
		{Sym: 3, Cells: []int16{1, 0}},
	})
}

// TestFindScatterNeverClusters 驗證 Scatter 不參與任何連線
func TestFindScatterNeverClusters(t *testing.T) {
	f := NewFinder(testSymbols(), 2)
	g := newGrid(3, 2, []int16{
		2, 2, 2,
		2, 2, 2,
	})

	if got := f.Find(g); len(got) != 0 {
		t.Fatalf("expected no clusters on scatter-only grid, got %+v", got)
	}
}

// TestFindBufferReuse 驗證同一個 Finder 連續使用不互相汙染
func TestFindBufferReuse(t *testing.T) {
	f := NewFinder(testSymbols(), 4)

	got := f.Find(newGrid(3, 3, []int16{
		3, 3, 6,
		3, 3, 7,
		8, 9, 10,
	}))
	checkClusters(t, got, []Cluster{
		{Sym: 3, Cells: []int16{0, 3, 1, 4}},
	})

	got = f.Find(newGrid(3, 3, []int16{
		1, 1, 2,
		1, 1, 2,
		2, 2, 2,
	}))
	checkClusters(t, got, []Cluster{
		{Sym: 1, Cells: []int16{0, 3, 1, 4}},
	})

	// 第三盤無任何連線
	if got = f.Find(newGrid(3, 3, []int16{
		3, 4, 5,
		6, 7, 8,
		9, 10, 11,
	})); len(got) != 0 {
		t.Fatalf("expected no clusters, got %+v", got)
	}
}
