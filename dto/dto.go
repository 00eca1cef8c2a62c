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

package dto

import (
	"github.com/zintix-labs/fairlab/errs"
	"github.com/zintix-labs/fairlab/gamespec"
	"github.com/zintix-labs/fairlab/sdk/buf"
)

// SpinResult 為對外輸出的單局結果。鍵名沿用公開的驗證格式
// (camelCase、座標為 [row, col])，重算方據此比對每一筆事件。
type SpinResult struct {
	GameName   string       `json:"game"`
	GameID     gamespec.GID `json:"gameId"`
	Bet        float64      `json:"bet"`
	TotalPay   float64      `json:"totalPayout"`
	PayoutMult float64      `json:"payoutMultiplier"`

	Events []any `json:"events"`

	InitialGrid      [][]string `json:"initialGrid"`
	FinalGrid        [][]string `json:"finalGrid"`
	FinalMultipliers [][]int    `json:"finalMultipliers"`

	TumbleCount   int `json:"tumbleCount"`
	MaxMultiplier int `json:"maxMultiplier"`

	FreeSpinsTriggered int  `json:"freeSpinsTriggered"`
	FreeSpinsRemaining int  `json:"freeSpinsRemaining"`
	IsFreeSpin         bool `json:"isFreeSpin"`

	JackpotWon    string  `json:"jackpotWon,omitempty"`
	JackpotAmount float64 `json:"jackpotAmount,omitempty"`

	SeedInfo SeedInfo `json:"seedInfo"`
}

// SeedInfo 是種子揭露物件：只含承諾雜湊，絕不含伺服器種子原文。
type SeedInfo struct {
	ServerSeedHash string `json:"serverSeedHash"`
	ClientSeed     string `json:"clientSeed"`
	Nonce          uint64 `json:"nonce"`
}

type RevealEventDTO struct {
	Type      string   `json:"type"`
	Positions [][2]int `json:"positions"`
	Symbols   []string `json:"symbols"`
}

type WinEventDTO struct {
	Type       string   `json:"type"`
	ClusterID  int      `json:"clusterId"`
	Symbol     string   `json:"symbol"`
	Positions  [][2]int `json:"positions"`
	Size       int      `json:"size"`
	BasePayout float64  `json:"basePayout"`
	Multiplier int      `json:"multiplier"`
	Amount     float64  `json:"amount"`
}

type UpgradeEventDTO struct {
	Type     string `json:"type"`
	Position [2]int `json:"position"`
	Value    int    `json:"value"`
}

type BurstCellDTO struct {
	Position      [2]int `json:"position"`
	OldMultiplier int    `json:"oldMultiplier"`
	NewMultiplier int    `json:"newMultiplier"`
}

type BurstEventDTO struct {
	Type             string         `json:"type"`
	WildPosition     [2]int         `json:"wildPosition"`
	AffectedCells    [][2]int       `json:"affectedCells"`
	CellDetails      []BurstCellDTO `json:"cellDetails"`
	ExplosionFactor  int            `json:"explosionFactor"`
	MaxNewMultiplier int            `json:"maxNewMultiplier"`
}

type MoveDTO struct {
	From   [2]int `json:"from"`
	To     [2]int `json:"to"`
	Symbol string `json:"symbol"`
}

type TumbleEventDTO struct {
	Type      string    `json:"type"`
	Movements []MoveDTO `json:"movements"`
}

type FillDTO struct {
	Position [2]int `json:"position"`
	Symbol   string `json:"symbol"`
}

type FillEventDTO struct {
	Type  string    `json:"type"`
	Fills []FillDTO `json:"fills"`
}

type TriggerEventDTO struct {
	Type             string   `json:"type"`
	ScatterCount     int      `json:"scatterCount"`
	Positions        [][2]int `json:"positions"`
	FreeSpinsAwarded int      `json:"freeSpinsAwarded"`
	IsRetrigger      bool     `json:"isRetrigger"`
}

type JackpotEventDTO struct {
	Type   string  `json:"type"`
	Tier   string  `json:"tier"`
	Amount float64 `json:"amount"`
}

// NewSpinResult 把引擎內部的 RoundResult 轉成對外輸出格式。
// 內部以平面索引與共享緩衝紀錄，輸出時才展開成 [row, col] 與符號代碼。
func NewSpinResult(screen *gamespec.ScreenSetting, r *buf.RoundResult) (SpinResult, error) {
	if r == nil {
		return SpinResult{}, errs.NewWarn("round result is nil")
	}
	if screen == nil || screen.ScreenSize != len(r.FinalSyms) {
		return SpinResult{}, errs.NewWarn("screen setting does not match the round result")
	}

	dto := SpinResult{
		GameName:   r.GameName,
		GameID:     r.GameID,
		Bet:        r.Bet,
		TotalPay:   r.TotalPay,
		PayoutMult: r.PayoutMult,

		Events: make([]any, 0, len(r.Events)),

		InitialGrid:      symbolRows(screen, r.InitSyms),
		FinalGrid:        symbolRows(screen, r.FinalSyms),
		FinalMultipliers: multiplierRows(screen, r.FinalMults),

		TumbleCount:   r.TumbleCount,
		MaxMultiplier: r.MaxMult,

		FreeSpinsTriggered: r.FreeSpinsTriggered,
		FreeSpinsRemaining: r.FreeSpinsRemaining,
		IsFreeSpin:         r.FreeSpin,

		JackpotWon:    r.JackpotTier,
		JackpotAmount: r.JackpotAmount,

		SeedInfo: SeedInfo{
			ServerSeedHash: r.ServerSeedHash,
			ClientSeed:     r.ClientSeed,
			Nonce:          r.Nonce,
		},
	}

	cols := screen.Columns
	clusterID := 0 // 每輪消除自 0 起算，補盤後歸零
	for _, ev := range r.Events {
		switch ev.Kind {
		case buf.EvReveal:
			dto.Events = append(dto.Events, newRevealDTO(screen, r.InitSyms))
		case buf.EvWin:
			dto.Events = append(dto.Events, newWinDTO(cols, r, r.Wins[ev.Idx], clusterID))
			clusterID++
		case buf.EvMultUpgrade:
			u := r.Upgrades[ev.Idx]
			dto.Events = append(dto.Events, UpgradeEventDTO{
				Type:     ev.Kind.String(),
				Position: rc(u.Cell, cols),
				Value:    u.Val,
			})
		case buf.EvWildBurst:
			dto.Events = append(dto.Events, newBurstDTO(cols, r, r.Bursts[ev.Idx]))
		case buf.EvTumble:
			dto.Events = append(dto.Events, newTumbleDTO(cols, r, r.Tumbles[ev.Idx]))
		case buf.EvFill:
			dto.Events = append(dto.Events, newFillDTO(cols, r, r.Fills[ev.Idx]))
			clusterID = 0
		case buf.EvFreeSpins:
			dto.Events = append(dto.Events, newTriggerDTO(cols, r, r.Triggers[ev.Idx]))
		case buf.EvJackpot:
			dto.Events = append(dto.Events, JackpotEventDTO{
				Type:   ev.Kind.String(),
				Tier:   r.JackpotTier,
				Amount: r.JackpotAmount,
			})
		default:
			return SpinResult{}, errs.Warnf("unknown event kind %d in round result", ev.Kind)
		}
	}

	return dto, nil
}

// ============================================================
// ** 以下內部方法 **
// ============================================================

func rc(cell int16, cols int) [2]int {
	c := int(cell)
	return [2]int{c / cols, c % cols}
}

func cellPositions(cells []int16, cols int) [][2]int {
	out := make([][2]int, len(cells))
	for i, cell := range cells {
		out[i] = rc(cell, cols)
	}
	return out
}

func symbolRows(screen *gamespec.ScreenSetting, flat []int16) [][]string {
	rows := make([][]string, screen.Rows)
	for r := 0; r < screen.Rows; r++ {
		row := make([]string, screen.Columns)
		for c := 0; c < screen.Columns; c++ {
			row[c] = gamespec.Symbol(flat[r*screen.Columns+c]).String()
		}
		rows[r] = row
	}
	return rows
}

func multiplierRows(screen *gamespec.ScreenSetting, flat []int) [][]int {
	rows := make([][]int, screen.Rows)
	for r := 0; r < screen.Rows; r++ {
		row := make([]int, screen.Columns)
		copy(row, flat[r*screen.Columns:(r+1)*screen.Columns])
		rows[r] = row
	}
	return rows
}

func newRevealDTO(screen *gamespec.ScreenSetting, initSyms []int16) RevealEventDTO {
	positions := make([][2]int, screen.ScreenSize)
	symbols := make([]string, screen.ScreenSize)
	for i := 0; i < screen.ScreenSize; i++ {
		positions[i] = rc(int16(i), screen.Columns)
		symbols[i] = gamespec.Symbol(initSyms[i]).String()
	}
	return RevealEventDTO{
		Type:      buf.EvReveal.String(),
		Positions: positions,
		Symbols:   symbols,
	}
}

func newWinDTO(cols int, r *buf.RoundResult, w buf.WinEvent, clusterID int) WinEventDTO {
	cells := r.Cells(w.CellsStart, w.CellsEnd)
	return WinEventDTO{
		Type:       buf.EvWin.String(),
		ClusterID:  clusterID,
		Symbol:     gamespec.Symbol(w.Sym).String(),
		Positions:  cellPositions(cells, cols),
		Size:       len(cells),
		BasePayout: w.BasePay,
		Multiplier: w.Mult,
		Amount:     w.Amount,
	}
}

func newBurstDTO(cols int, r *buf.RoundResult, b buf.BurstEvent) BurstEventDTO {
	details := r.BurstCellsOf(b)
	affected := make([][2]int, len(details))
	cellDetails := make([]BurstCellDTO, len(details))
	for i, d := range details {
		affected[i] = rc(d.Cell, cols)
		cellDetails[i] = BurstCellDTO{
			Position:      rc(d.Cell, cols),
			OldMultiplier: d.Old,
			NewMultiplier: d.New,
		}
	}
	return BurstEventDTO{
		Type:             buf.EvWildBurst.String(),
		WildPosition:     rc(b.WildCell, cols),
		AffectedCells:    affected,
		CellDetails:      cellDetails,
		ExplosionFactor:  b.Factor,
		MaxNewMultiplier: b.MaxAfter,
	}
}

func newTumbleDTO(cols int, r *buf.RoundResult, tb buf.TumbleEvent) TumbleEventDTO {
	moves := r.MovesOf(tb)
	out := make([]MoveDTO, len(moves))
	for i, mv := range moves {
		out[i] = MoveDTO{
			From:   rc(mv.From, cols),
			To:     rc(mv.To, cols),
			Symbol: gamespec.Symbol(mv.Sym).String(),
		}
	}
	return TumbleEventDTO{Type: buf.EvTumble.String(), Movements: out}
}

func newFillDTO(cols int, r *buf.RoundResult, f buf.FillEvent) FillEventDTO {
	fills := r.FillsOf(f)
	out := make([]FillDTO, len(fills))
	for i, rec := range fills {
		out[i] = FillDTO{
			Position: rc(rec.Cell, cols),
			Symbol:   gamespec.Symbol(rec.Sym).String(),
		}
	}
	return FillEventDTO{Type: buf.EvFill.String(), Fills: out}
}

func newTriggerDTO(cols int, r *buf.RoundResult, trig buf.TriggerEvent) TriggerEventDTO {
	cells := r.Cells(trig.CellsStart, trig.CellsEnd)
	return TriggerEventDTO{
		Type:             buf.EvFreeSpins.String(),
		ScatterCount:     trig.Count,
		Positions:        cellPositions(cells, cols),
		FreeSpinsAwarded: trig.Awarded,
		IsRetrigger:      trig.Retrigger,
	}
}
