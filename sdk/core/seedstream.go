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
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"hash"
	"math/bits"
	"strconv"

	"github.com/zintix-labs/fairlab/corefmt"
)

// 單一 HMAC 區塊的位元組數（SHA-256 摘要長度）。
const blockSize = 32

// SeedStream 可驗證亂數流。
//
// 以 HMAC-SHA256 鏈產生位元組流：第 i 個區塊為
//
//	HMAC_SHA256(key = serverSeed, msg = "{clientSeed}:{nonce}:{i}")
//
// 同一組 (serverSeed, clientSeed, nonce) 產生的流完全相同，重算方取得
// 揭露的種子後即可逐位元組重現整局結果。流狀態只有讀取游標
// (blockIdx, byteOff)，Snapshot/Restore 據此保存與還原。
type SeedStream struct {
	clientSeed string
	nonce      uint64
	mac        hash.Hash // 以 serverSeed 為鍵，重用於每個區塊
	serverHash string

	blockIdx uint64
	byteOff  int // 0..blockSize，等於 blockSize 代表下次讀取前換塊
	block    [blockSize]byte
	msg      []byte // 區塊訊息的重用緩衝
}

// NewSeedStream 以種子三元組建立亂數流，游標位於流的開頭。
func NewSeedStream(serverSeed string, clientSeed string, nonce uint64) *SeedStream {
	s := &SeedStream{
		clientSeed: clientSeed,
		nonce:      nonce,
		mac:        hmac.New(sha256.New, []byte(serverSeed)),
		serverHash: corefmt.SeedCommitment(serverSeed),
	}
	s.rehash()
	return s
}

// ServerSeedHash 回傳 serverSeed 的 SHA-256 十六進位摘要，用於事前承諾揭露。
func (s *SeedStream) ServerSeedHash() string {
	return s.serverHash
}

//---------------------------------------
// 回傳方法
//---------------------------------------

// Uint64 回傳非負整數uint64亂數，消耗 8 bytes。
func (s *SeedStream) Uint64() uint64 {
	var b [8]byte
	s.read(b[:])
	return binary.BigEndian.Uint64(b[:])
}

// UintN 產出[0,max) 的uint整數，若 max == 0 回傳 0
func (s *SeedStream) UintN(max uint) uint {
	if max == 0 {
		return 0
	}
	return uint(s.bounded(uint64(max)))
}

// IntN 產出[0,max) 的整數，若 max <= 0 回傳 0
func (s *SeedStream) IntN(max int) int {
	if max <= 0 {
		return 0
	}
	return int(s.bounded(uint64(max)))
}

// Float64 產出 [0,1) 的 float64，取 4 bytes 大端序除以 2^32（32bits精度）。
func (s *SeedStream) Float64() float64 {
	var b [4]byte
	s.read(b[:])
	return float64(binary.BigEndian.Uint32(b[:])) / float64(1<<32)
}

// Bytes 回傳流中接下來的 n 個位元組，n <= 0 回傳 nil。
func (s *SeedStream) Bytes(n int) []byte {
	if n <= 0 {
		return nil
	}
	out := make([]byte, n)
	s.read(out)
	return out
}

//---------------------------------------
// 快照方法
//---------------------------------------

// Snapshot 取得當下讀取游標，固定 9 bytes：blockIdx (uint64 BE) + byteOff。
// 游標停在區塊尾端時正規化為下一塊的開頭。
func (s *SeedStream) Snapshot() ([]byte, error) {
	blockIdx, off := s.blockIdx, s.byteOff
	if off >= blockSize {
		blockIdx++
		off = 0
	}
	out := make([]byte, 9)
	binary.BigEndian.PutUint64(out[:8], blockIdx)
	out[8] = byte(off)
	return out, nil
}

// Restore 還原讀取游標並重建對應區塊。種子三元組不在快照內，
// 只能還原到同一條流上。
func (s *SeedStream) Restore(data []byte) error {
	if len(data) != 9 {
		return errors.New("seed stream snapshot must be 9 bytes")
	}
	off := int(data[8])
	if off >= blockSize {
		return errors.New("seed stream snapshot has invalid byte offset")
	}
	s.blockIdx = binary.BigEndian.Uint64(data[:8])
	s.rehash()
	s.byteOff = off
	return nil
}

//---------------------------------------
// 內部方法
//---------------------------------------

// bounded 以拒絕取樣產出 [0,bound) 的整數。
//
// 讀取量由上界寬度決定：nbytes = ceil(bitLen(bound)/8)，每次嘗試讀取
// nbytes，遮罩至 bitLen 位後若仍 >= bound 則重抽。這是重算合約的一部分，
// 不可改用更寬的讀取。
func (s *SeedStream) bounded(bound uint64) uint64 {
	n := bits.Len64(bound)
	nbytes := (n + 7) / 8
	mask := ^uint64(0)
	if n < 64 {
		mask = uint64(1)<<n - 1
	}
	var b [8]byte
	for {
		s.read(b[8-nbytes:])
		v := binary.BigEndian.Uint64(b[:]) & mask
		if v < bound {
			return v
		}
	}
}

// read 從流中讀滿 dst，跨區塊時依序換塊。
func (s *SeedStream) read(dst []byte) {
	for len(dst) > 0 {
		if s.byteOff >= blockSize {
			s.blockIdx++
			s.rehash()
		}
		n := copy(dst, s.block[s.byteOff:])
		s.byteOff += n
		dst = dst[n:]
	}
}

// rehash 重算目前 blockIdx 對應的區塊並重設區塊內偏移。
func (s *SeedStream) rehash() {
	s.msg = append(s.msg[:0], s.clientSeed...)
	s.msg = append(s.msg, ':')
	s.msg = strconv.AppendUint(s.msg, s.nonce, 10)
	s.msg = append(s.msg, ':')
	s.msg = strconv.AppendUint(s.msg, s.blockIdx, 10)
	s.mac.Reset()
	s.mac.Write(s.msg)
	s.mac.Sum(s.block[:0])
	s.byteOff = 0
}
