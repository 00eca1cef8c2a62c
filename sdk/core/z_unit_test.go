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

import (
	"bytes"
	"encoding/hex"
	"slices"
	"testing"
)

// 固定向量：HMAC_SHA256("server", "client:0:0") 與下一個區塊。
const (
	vecBlock0 = "e0d8048be5b3823aa19be4fb31220b0d7a7a285c43fa1ba70bac3ea4f9f8da06"
	vecBlock1 = "e849db527025538d9ab6741203bee69144e9074fc95c3d9d61979126529ab8ed"
)

func vecStream() *SeedStream {
	return NewSeedStream("server", "client", 0)
}

func TestSeedStreamVectors(t *testing.T) {
	b0, _ := hex.DecodeString(vecBlock0)
	b1, _ := hex.DecodeString(vecBlock1)

	if got := vecStream().Bytes(32); !bytes.Equal(got, b0) {
		t.Fatalf("block0 mismatch:\ngot  %x\nwant %x", got, b0)
	}

	// 跨區塊讀取：第 33..40 個位元組必須是第二個區塊的開頭
	if got := vecStream().Bytes(40); !bytes.Equal(got[32:], b1[:8]) {
		t.Fatalf("block spanning mismatch: got %x want %x", got[32:], b1[:8])
	}

	if got, want := vecStream().Uint64(), uint64(16201704658366071354); got != want {
		t.Fatalf("Uint64 got %d want %d", got, want)
	}

	if got, want := vecStream().Float64(), float64(0xe0d8048b)/float64(1<<32); got != want {
		t.Fatalf("Float64 got %v want %v", got, want)
	}

	// IntN(6)：每次嘗試讀 1 byte、遮罩 3 bits，向量前六抽無重抽
	s := vecStream()
	want := []int{0, 0, 4, 3, 5, 3}
	for i, w := range want {
		if got := s.IntN(6); got != w {
			t.Fatalf("IntN(6) draw %d got %d want %d", i, got, w)
		}
	}
}

func TestSeedStreamDeterminism(t *testing.T) {
	s1 := NewSeedStream("a1b2c3", "player-77", 1042)
	s2 := NewSeedStream("a1b2c3", "player-77", 1042)
	for i := 0; i < 64; i++ {
		if s1.Uint64() != s2.Uint64() {
			t.Fatalf("Uint64 mismatch at %d", i)
		}
	}
	if s1.IntN(10) != s2.IntN(10) {
		t.Fatalf("IntN mismatch")
	}
	if s1.UintN(10) != s2.UintN(10) {
		t.Fatalf("UintN mismatch")
	}
	if s1.Float64() != s2.Float64() {
		t.Fatalf("Float64 mismatch")
	}

	// 改變三元組任一項都必須走出不同的流
	if vecStream().Uint64() == NewSeedStream("server", "client", 1).Uint64() {
		t.Fatalf("nonce must change the stream")
	}
	if vecStream().Uint64() == NewSeedStream("server", "client2", 0).Uint64() {
		t.Fatalf("client seed must change the stream")
	}
	if vecStream().Uint64() == NewSeedStream("server2", "client", 0).Uint64() {
		t.Fatalf("server seed must change the stream")
	}
}

func TestSeedStreamHash(t *testing.T) {
	// sha256("server")
	want := "b3eacd33433b31b5252351032c9b3e7a2e7aa7738d5decdf0dd6c62680853c06"
	if got := vecStream().ServerSeedHash(); got != want {
		t.Fatalf("server seed hash got %s want %s", got, want)
	}
}

func TestSeedStreamSnapshotRestore(t *testing.T) {
	s := vecStream()
	s.Bytes(37) // 游標停在第二塊第 5 個位元組

	snap, err := s.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(snap) != 9 {
		t.Fatalf("snapshot length got %d want 9", len(snap))
	}

	want := s.Bytes(16)
	if err := s.Restore(snap); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if got := s.Bytes(16); !bytes.Equal(got, want) {
		t.Fatalf("restore did not rewind: got %x want %x", got, want)
	}

	// 快照可套用到同三元組的全新流
	fresh := vecStream()
	if err := fresh.Restore(snap); err != nil {
		t.Fatalf("restore on fresh stream: %v", err)
	}
	if got := fresh.Bytes(16); !bytes.Equal(got, want) {
		t.Fatalf("fresh restore mismatch: got %x want %x", got, want)
	}

	// 區塊尾端的游標要正規化成下一塊開頭
	edge := vecStream()
	edge.Bytes(32)
	snap2, _ := edge.Snapshot()
	if snap2[7] != 1 || snap2[8] != 0 {
		t.Fatalf("snapshot at block edge not normalized: %x", snap2)
	}

	if err := s.Restore(snap[:4]); err == nil {
		t.Fatalf("short snapshot must be rejected")
	}
	bad := slices.Clone(snap)
	bad[8] = 99
	if err := s.Restore(bad); err == nil {
		t.Fatalf("invalid byte offset must be rejected")
	}
}

func TestSeedStreamBounded(t *testing.T) {
	s := NewSeedStream("bound", "check", 3)
	for _, max := range []int{1, 2, 6, 100, 1 << 20} {
		for i := 0; i < 200; i++ {
			if v := s.IntN(max); v < 0 || v >= max {
				t.Fatalf("IntN(%d) out of range: %d", max, v)
			}
		}
	}
	if s.IntN(0) != 0 || s.IntN(-5) != 0 {
		t.Fatalf("IntN with non-positive max must return 0")
	}
	if s.UintN(0) != 0 {
		t.Fatalf("UintN(0) must return 0")
	}
	for i := 0; i < 200; i++ {
		if v := s.UintN(37); v >= 37 {
			t.Fatalf("UintN(37) out of range: %d", v)
		}
	}
}

func TestCorePickShuffleSample(t *testing.T) {
	c := New(NewSeedStream("core", "helpers", 0))
	if got := c.Pick(nil); got != -1 {
		t.Fatalf("expected -1 for empty pick, got %d", got)
	}

	src := []int{1, 2, 3, 4}
	c.ShuffleInts(src)
	want := []int{1, 2, 3, 4}
	got := slices.Clone(src)
	slices.Sort(got)
	if !slices.Equal(want, got) {
		t.Fatalf("shuffle changed elements: %v", src)
	}

	// SampleIdx：相異、界內、可重現
	c1 := New(NewSeedStream("core", "helpers", 1))
	c2 := New(NewSeedStream("core", "helpers", 1))
	s1 := c1.SampleIdx(5, 30)
	s2 := c2.SampleIdx(5, 30)
	if !slices.Equal(s1, s2) {
		t.Fatalf("SampleIdx not reproducible: %v vs %v", s1, s2)
	}
	seen := make(map[int]bool, len(s1))
	for _, v := range s1 {
		if v < 0 || v >= 30 {
			t.Fatalf("SampleIdx out of range: %d", v)
		}
		if seen[v] {
			t.Fatalf("SampleIdx duplicated: %v", s1)
		}
		seen[v] = true
	}
	if got := c1.SampleIdx(5, 4); got != nil {
		t.Fatalf("k > n must return nil, got %v", got)
	}
	if got := c1.SampleIdx(0, 4); len(got) != 0 {
		t.Fatalf("k == 0 must return empty, got %v", got)
	}
}
