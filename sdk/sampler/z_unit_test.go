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

package sampler

import (
	"math"
	"slices"
	"testing"

	"github.com/zintix-labs/fairlab/sdk/core"
)

// -----------------------------------------------------------------------------
// Helper Functions
// -----------------------------------------------------------------------------

// newCore 以固定種子組建立可重現的 Core，nonce 用來區隔各測試的亂數流
func newCore(nonce uint64) *core.Core {
	return core.New(core.NewSeedStream("sampler-unit-server", "sampler-unit-client", nonce))
}

// assertPanic 驗證函數是否如預期觸發 panic
func assertPanic(t *testing.T, f func(), msg string) {
	t.Helper()
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected panic for %s, but got none", msg)
		}
	}()
	f()
}

// checkDistribution 驗證抽樣結果的分佈是否符合預期權重
func checkDistribution(t *testing.T, name string, weights []int, samples []int, tolerance float64) {
	t.Helper()
	totalW := 0
	for _, w := range weights {
		totalW += w
	}
	if totalW == 0 {
		return
	}

	counts := make(map[int]int)
	for _, idx := range samples {
		counts[idx]++
	}

	totalSamples := len(samples)
	for i, w := range weights {
		if w == 0 {
			if counts[i] > 0 {
				t.Errorf("[%s] expected 0 samples for index %d (weight 0), got %d", name, i, counts[i])
			}
			continue
		}
		expectedProb := float64(w) / float64(totalW)
		actualProb := float64(counts[i]) / float64(totalSamples)
		diff := math.Abs(expectedProb - actualProb)

		if diff > tolerance {
			t.Errorf("[%s] index %d: expected prob %.3f, got %.3f (diff %.3f > tol %.3f)",
				name, i, expectedProb, actualProb, diff, tolerance)
		}
	}
}

// -----------------------------------------------------------------------------
// Tests for Look-Up Table (LUT)
// -----------------------------------------------------------------------------

// TestBuildLUTExpansion 驗證建表展開結果
// 檢查項目: 每個索引重複出現的次數等於其權重，零權重不出現
func TestBuildLUTExpansion(t *testing.T) {
	lut := BuildLUT([]int{3, 5, 0})
	want := []int{0, 0, 0, 1, 1, 1, 1, 1}
	if !slices.Equal([]int(lut), want) {
		t.Fatalf("expected %v, got %v", want, lut)
	}

	// 空權重表應建出空 LUT，不應 panic
	empty := BuildLUT([]int{})
	if len(empty) != 0 {
		t.Fatalf("expected empty LUT, got %v", empty)
	}

	// 泛型約束: int16 權重表也能建表
	small := BuildLUT([]int16{1, 2})
	if !slices.Equal([]int(small), []int{0, 1, 1}) {
		t.Fatalf("unexpected int16 expansion: %v", small)
	}
}

// TestLUT_Distribution 驗證 LUT 的抽樣分佈
// 檢查項目: 大量抽樣結果應符合權重比例
func TestLUT_Distribution(t *testing.T) {
	c := newCore(1)
	weights := []int{1, 2, 7} // 適合 LUT 的小權重
	lut := BuildLUT(weights)

	trials := 10000
	samples := make([]int, trials)
	for i := 0; i < trials; i++ {
		samples[i] = lut.Pick(c)
	}
	checkDistribution(t, "LUT", weights, samples, 0.015)
}

// TestLUTPickMatchesCumulativeScan 驗證 LUT 與累積權重掃描的協議等價性
// 檢查項目: 相同亂數流下，LUT.Pick 與「IntN(total) 後線性掃描累積權重」
// 必須逐次產生相同的索引，兩種實作才能互相重算驗證
func TestLUTPickMatchesCumulativeScan(t *testing.T) {
	weights := []int{3, 5, 7, 1}
	total := 0
	for _, w := range weights {
		total += w
	}
	lut := BuildLUT(weights)

	a := newCore(9)
	b := newCore(9)
	for i := 0; i < 500; i++ {
		got := lut.Pick(a)

		r := b.IntN(total)
		want := -1
		acc := 0
		for idx, w := range weights {
			acc += w
			if r < acc {
				want = idx
				break
			}
		}

		if got != want {
			t.Fatalf("draw %d: LUT picked %d, cumulative scan picked %d", i, got, want)
		}
	}
}

// TestLUTPickDeterminism 驗證相同種子組下抽樣序列完全一致
// 檢查項目: 兩個相同 (serverSeed, clientSeed, nonce) 的流應產生相同序列
func TestLUTPickDeterminism(t *testing.T) {
	weights := []int{4, 4, 8, 16}
	lut := BuildLUT(weights)

	a := newCore(42)
	b := newCore(42)
	for i := 0; i < 200; i++ {
		x, y := lut.Pick(a), lut.Pick(b)
		if x != y {
			t.Fatalf("draw %d diverged: %d vs %d", i, x, y)
		}
		if x < 0 || x >= len(weights) {
			t.Fatalf("draw %d out of range: %d", i, x)
		}
	}
}

// TestLUTPickEmpty 驗證空 LUT 的抽樣行為
// 檢查項目: 空 LUT 應回傳哨兵值 -1，且不消耗亂數流
func TestLUTPickEmpty(t *testing.T) {
	c := newCore(3)
	before, err := c.Snapshot()
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}

	if got := (LUT{}).Pick(c); got != -1 {
		t.Fatalf("expected -1 from empty LUT, got %d", got)
	}

	after, err := c.Snapshot()
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	if !slices.Equal(before, after) {
		t.Fatal("empty pick must not consume the random stream")
	}
}

// TestLUT_Panics 驗證 LUT 的各種錯誤情境
// 檢查項目: 超過容量上限、負權重、全零權重應觸發 panic
func TestLUT_Panics(t *testing.T) {
	// Capacity Limit
	assertPanic(t, func() {
		// 模擬超過 maxLUTCap
		weights := []int{int(maxLUTCap) + 1}
		BuildLUT(weights)
	}, "Exceed maxLUTCap")

	// Negative
	assertPanic(t, func() {
		BuildLUT([]int{10, -10})
	}, "Negative weight")

	// All zero
	assertPanic(t, func() {
		BuildLUT([]int{0, 0})
	}, "All zero weights")
}
