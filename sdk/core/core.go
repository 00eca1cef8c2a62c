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

package core

// PRNG 定義 Core 所需的亂數來源，需同時支援取樣與狀態保存/還原。
type PRNG interface {
	RAND
	Restorable
}

// Restorable 定義可快照與還原的狀態介面。
type Restorable interface {
	// Snapshot 回傳可用於還原的序列化狀態。
	Snapshot() ([]byte, error)
	// Restore 依序列化狀態還原 PRNG 內部狀態。
	Restore([]byte) error
}

// RAND 定義核心亂數取樣能力。
//
// 為什麼要求同時提供 4 個方法（Uint64 / Float64 / UintN / IntN），而不是只要求 Uint64？
//
// 1) 取樣方法決定位元組消耗量，而消耗量是公平性合約的一部分
//   - 可驗證亂數流的每一次取樣都對應固定的位元組讀取規則（依上界寬度決定讀取量），
//     重算方必須得到完全相同的讀取序列才能重現結果。
//   - 若合約只要求 Uint64，所有 bounded 取樣都得先取 8 bytes 再裁切，
//     讀取量與原始協議不同，重算就對不上。
//
// 2) Float64 的精度與生成方式應由 PRNG 決定
//   - 本專案的協議以 4 bytes 大端序除以 2^32 生成 [0,1)；其他實作可能用 53-bit mantissa。
//     讓 PRNG 自己提供 Float64，精度與讀取量都由實作定義。
type RAND interface {
	// Uint64 回傳非負 uint64 亂數。
	Uint64() uint64
	// Float64 回傳 [0,1) 的浮點亂數。
	Float64() float64
	// UintN 回傳 [0,max) 的 uint 亂數，若 max == 0 回傳 0。
	UintN(uint) uint
	// IntN 回傳 [0,max) 的 int 亂數，若 max <= 0 回傳 0。
	IntN(int) int
}

// Core 封裝 PRNG，並提供常用取樣與工具方法。
type Core struct {
	PRNG
}

// New 允許使用外部自實現的 PRNG 建立 Core。
func New(rng PRNG) *Core {
	return &Core{rng}
}

// Pick 從列表中隨機選取一個元素，若列表為空回傳 -1
// 熱路徑中只使用哨兵值回傳
func (c *Core) Pick(src []int) int {
	if len(src) == 0 {
		return -1
	}
	idx := c.IntN(len(src))
	return src[idx]
}

// ShuffleInts 使用 Fisher-Yates (亦稱 Knuth Shuffle) 演算法
// 對[]int進行「就地 (In-place)」隨機重排。
//
// 演算法特性：
//
//  1. 公平性 (Unbiased)：
//     此算法保證所有可能的 N! 種排列組合出現的機率是嚴格相等的 (1/N!)。
//     這解決了傳統 "Naive Shuffle" (每個位置都隨機跟任意位置交換) 導致的機率偏差問題。
//
//  2. 效能 (High Performance)：
//     - 時間複雜度：O(N)，只需要對陣列進行一次線性掃描。
//     - 空間複雜度：O(1)，直接在原記憶體位置交換，實現零配置 (Zero Allocation)。
func (c *Core) ShuffleInts(src []int) {
	if len(src) <= 1 {
		return
	}

	for i := len(src) - 1; i > 0; i-- {
		j := c.IntN(i + 1)
		src[i], src[j] = src[j], src[i]
	}
}

// SampleIdx 從 [0,n) 中抽出 k 個相異索引，使用部分 Fisher-Yates，
// 恰好消耗 k 次 IntN。k 超出 [0,n] 回傳 nil。
//
// 回傳順序即抽出順序，重算方以相同的流可得到相同結果。
func (c *Core) SampleIdx(k int, n int) []int {
	if k < 0 || k > n {
		return nil
	}
	arr := make([]int, n)
	for i := range arr {
		arr[i] = i
	}
	for i := 0; i < k; i++ {
		j := i + c.IntN(n-i)
		arr[i], arr[j] = arr[j], arr[i]
	}
	return arr[:k]
}
