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

package fairlab

import (
	"strings"
	"sync"

	"github.com/zintix-labs/fairlab/dto"
	"github.com/zintix-labs/fairlab/errs"
	"github.com/zintix-labs/fairlab/gamespec"
	"github.com/zintix-labs/fairlab/sdk/buf"
	"github.com/zintix-labs/fairlab/sdk/core"
	"github.com/zintix-labs/fairlab/sdk/tumble"
)

// Engine 封裝一台「可對外提供 Spin」的遊戲引擎。
//
// 你可以把 Engine 視為 Spinner 的「外殼（shell）」：
//   - 對外：提供 Spin 入口（HTTP/驗證器通常只操作 Engine）。
//   - 對內：持有真正執行遊戲邏輯的核心（sdk/tumble.Spinner）與可重用的結果緩衝。
//
// 隨機性語意：
//   - Engine 本身不持有亂數狀態。每次 Spin 都以請求內的種子三元組
//     (serverSeed, clientSeed, nonce) 建出一條全新的 SeedStream，
//     所以同一請求在任何一台 Engine 上必然重現同一局。
//
// 並發語意：
//   - Engine 不是 lock-free 結構；它內含可重用的 result buffer（熱路徑），
//     由互斥鎖保證同一台 Engine 不會被多 goroutine 同時 Spin。
//   - 若要併發驗證，由更高層建立多台 Engine 分散到不同 worker（見 EnginePool）。
//
// Buffer 語意：
//   - RoundResult 會被重用（避免 GC），每次 Spin 會覆寫內容。
//   - Spin 回傳的 dto.SpinResult 是展開後的深拷貝，可安全保留；
//     SpinBrief 回傳的 Brief 亦為複本。
type Engine struct {
	gameName string       // 遊戲名稱（來自 GameSetting.GameName，主要用於觀測/日誌）
	gameId   gamespec.GID // 遊戲 ID（Catalog 內唯一；用於路由與查表）
	gs       *gamespec.GameSetting
	spinner  *tumble.Spinner  // 遊戲執行核心（消除式叢集邏輯入口）
	result   *buf.RoundResult // 可重用的結果 buffer（熱路徑；每次 Spin 會覆寫）
	mu       sync.Mutex       // 防併發鎖：保護可重用 buffer
}

// newEngine 依遊戲設定建立 Engine。設定必須已通過載入檢查。
func newEngine(gs *gamespec.GameSetting) (*Engine, error) {
	sp, err := tumble.NewSpinner(gs)
	if err != nil {
		return nil, err
	}
	return &Engine{
		gameName: gs.GameName,
		gameId:   gs.GameID,
		gs:       gs,
		spinner:  sp,
		result:   buf.NewRoundResult(gs),
	}, nil
}

// GameName 回傳引擎綁定的遊戲名稱。
func (e *Engine) GameName() string {
	return e.gameName
}

// GameId 回傳引擎綁定的遊戲 ID。
func (e *Engine) GameId() gamespec.GID {
	return e.gameId
}

// Setting 回傳引擎綁定的遊戲設定（唯讀）。
func (e *Engine) Setting() *gamespec.GameSetting {
	return e.gs
}

// Spin 為主要公開入口，會驗證投注請求，執行一局並回傳展開後的結果。
//
// 流程：
//  1. 校驗請求合法性（結構檢查 + 遊戲層範圍檢查）
//  2. 以種子三元組建立 SeedStream 並執行整局
//  3. 填入種子揭露欄位（只含承諾雜湊，不含伺服器種子原文）
//  4. 轉成對外 DTO
func (e *Engine) Spin(q *buf.SpinRequest) (dto.SpinResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	r, err := e.run(q)
	if err != nil {
		return dto.SpinResult{}, err
	}
	return dto.NewSpinResult(&e.gs.Screen, r)
}

// SpinBrief 執行一局並只回傳彙總欄位；常用於批次審計。
//
// 跳過事件展開（DTO 組裝是批次情境的主要成本），其餘驗證與
// 執行流程與 Spin 完全一致。
func (e *Engine) SpinBrief(q *buf.SpinRequest) (buf.Brief, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	r, err := e.run(q)
	if err != nil {
		return buf.Brief{}, err
	}
	return r.Brief(), nil
}

// ============================================================
// ** 以下內部方法 **
// ============================================================

func (e *Engine) run(q *buf.SpinRequest) (*buf.RoundResult, error) {
	if err := e.valid(q); err != nil {
		return nil, err
	}

	stream := core.NewSeedStream(q.ServerSeed, q.ClientSeed, q.Nonce)
	c := core.New(stream)

	e.result.Reset()
	if err := e.spinner.Run(c, q, e.result); err != nil {
		return nil, err
	}

	r := e.result
	r.ServerSeedHash = stream.ServerSeedHash()
	r.ClientSeed = q.ClientSeed
	r.Nonce = q.Nonce
	return r, nil
}

func (e *Engine) valid(q *buf.SpinRequest) error {
	if q == nil {
		return errs.Inputf("nil spin request")
	}
	if err := q.Norm(); err != nil {
		return err
	}
	if q.GameName != "" && !strings.EqualFold(q.GameName, e.gameName) {
		return errs.Inputf("game name %q does not match engine %q", q.GameName, e.gameName)
	}
	if !e.gs.Bet.ValidBet(q.Bet) {
		return errs.Inputf("bet %v outside [%v, %v]", q.Bet, e.gs.Bet.MinBet, e.gs.Bet.MaxBet)
	}
	return nil
}
