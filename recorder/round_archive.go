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

// Package recorder 提供回合封存檔的讀寫。
//
// 封存檔是 zstd 壓縮串流，內容為連續的 uvarint 長度前綴 JSON 紀錄。
// 一筆 RoundRecord 即重算一局所需的全部揭露資訊：遊戲名稱、已揭露的
// 種子三元組、下注與模式旗標，以及當時對玩家宣告的派彩倍數。
// 批次審計據此逐筆重算並與宣告值比對。
package recorder

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/zintix-labs/fairlab/corefmt"
	"github.com/zintix-labs/fairlab/errs"
	"github.com/zintix-labs/fairlab/sdk/buf"
)

// 單筆紀錄的長度上限，防止壞檔案觸發超大配置
const maxRecordBytes uint64 = 1 << 20

// RoundRecord 一局的完整揭露。ServerSeed 在此為「已揭露」狀態：
// 封存檔只該在種子輪換後產生，寫入未輪換的種子等同洩漏。
type RoundRecord struct {
	Game string `json:"game"`

	ServerSeed string `json:"server_seed"`
	ClientSeed string `json:"client_seed"`
	Nonce      uint64 `json:"nonce"`

	Bet float64 `json:"bet"`

	FreeSpin           bool `json:"free_spin,omitempty"`
	FreeSpinsRemaining int  `json:"free_spins_remaining,omitempty"`
	ScatterBoost       bool `json:"scatter_boost,omitempty"`
	WildBoost          bool `json:"wild_boost,omitempty"`

	ForcedScatters []int16 `json:"forced_scatters,omitempty"`
	CarryMults     []int   `json:"carry_mults,omitempty"`

	// 當時對玩家宣告的派彩倍數，審計以此為比對基準
	ClaimedPayoutMult float64 `json:"claimed_payout_multiplier"`
}

// SpinRequest 把揭露紀錄轉成引擎請求。回傳新配置，不與紀錄共享切片。
func (rec *RoundRecord) SpinRequest() *buf.SpinRequest {
	q := &buf.SpinRequest{
		GameName:           rec.Game,
		Bet:                rec.Bet,
		ServerSeed:         rec.ServerSeed,
		ClientSeed:         rec.ClientSeed,
		Nonce:              rec.Nonce,
		FreeSpin:           rec.FreeSpin,
		FreeSpinsRemaining: rec.FreeSpinsRemaining,
		ScatterBoost:       rec.ScatterBoost,
		WildBoost:          rec.WildBoost,
	}
	if len(rec.ForcedScatters) > 0 {
		q.ForcedScatters = append([]int16(nil), rec.ForcedScatters...)
	}
	if len(rec.CarryMults) > 0 {
		q.CarryMults = append([]int(nil), rec.CarryMults...)
	}
	return q
}

// ============================================================
// RoundWriter
// ============================================================

// RoundWriter 把回合紀錄依序寫入 zstd 封存串流。
// 非並行安全；寫完必須 Close 才會沖出壓縮尾塊。
type RoundWriter struct {
	zw    *zstd.Encoder
	count int
}

// NewRoundWriter 在 w 上建立封存寫入器。
func NewRoundWriter(w io.Writer) (*RoundWriter, error) {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return nil, errs.Wrap(err, "create zstd writer failed")
	}
	return &RoundWriter{zw: zw}, nil
}

// Write 追加一筆紀錄。
func (rw *RoundWriter) Write(rec *RoundRecord) error {
	if rec == nil {
		return errs.NewWarn("round record is nil")
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return errs.Wrap(err, "marshal round record failed")
	}
	if err := corefmt.WriteBlobFrame(rw.zw, raw); err != nil {
		return err
	}
	rw.count++
	return nil
}

// Count 回傳已寫入的紀錄數。
func (rw *RoundWriter) Count() int {
	return rw.count
}

// Close 沖出壓縮緩衝並結束串流。底層 io.Writer 的關閉由呼叫端負責。
func (rw *RoundWriter) Close() error {
	if err := rw.zw.Close(); err != nil {
		return errs.Wrap(err, "close zstd writer failed")
	}
	return nil
}

// ============================================================
// RoundReader
// ============================================================

// RoundReader 依序讀出封存串流中的回合紀錄。
type RoundReader struct {
	zr *zstd.Decoder
	br *bufio.Reader
}

// NewRoundReader 在 r 上建立封存讀取器。
func NewRoundReader(r io.Reader) (*RoundReader, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, errs.Wrap(err, "create zstd reader failed")
	}
	// 解壓串流只包一層 bufio，連續讀框共用同一份預讀緩衝
	return &RoundReader{zr: zr, br: bufio.NewReader(zr)}, nil
}

// Read 讀出下一筆紀錄。串流在框邊界乾淨結束時回傳 io.EOF。
func (rr *RoundReader) Read() (*RoundRecord, error) {
	raw, err := corefmt.ReadBlobFrame(rr.br, maxRecordBytes)
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, err
	}
	rec := new(RoundRecord)
	if err := json.Unmarshal(raw, rec); err != nil {
		return nil, errs.Wrap(err, "unmarshal round record failed")
	}
	return rec, nil
}

// ReadAll 讀出剩餘的所有紀錄。
func (rr *RoundReader) ReadAll() ([]RoundRecord, error) {
	out := make([]RoundRecord, 0, 256)
	for {
		rec, err := rr.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
}

// Close 釋放解壓資源。底層 io.Reader 的關閉由呼叫端負責。
func (rr *RoundReader) Close() {
	rr.zr.Close()
}
