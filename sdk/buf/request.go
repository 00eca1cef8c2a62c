package buf

import (
	"github.com/zintix-labs/fairlab/errs"
)

// SpinRequest 一次 Spin 的完整輸入。
// 種子三元組決定隨機流，其餘欄位描述遊戲狀態與促銷旗標
type SpinRequest struct {
	GameName string  `json:"game_name"`
	Bet      float64 `json:"bet"`

	ServerSeed string `json:"server_seed"`
	ClientSeed string `json:"client_seed"`
	Nonce      uint64 `json:"nonce"`

	FreeSpin           bool `json:"free_spin,omitempty"`
	FreeSpinsRemaining int  `json:"free_spins_remaining,omitempty"`

	// 促銷旗標，僅作用於 base game 的權重表
	ScatterBoost bool `json:"scatter_boost,omitempty"`
	WildBoost    bool `json:"wild_boost,omitempty"`

	// 強制 Scatter 落點 (bonus 觸發流程)，盤面範圍由引擎驗證
	ForcedScatters []int16 `json:"forced_scatters,omitempty"`

	// 免費遊戲的倍數層延續，長度須等於盤面格數
	CarryMults []int `json:"carry_mults,omitempty"`
}

// Norm 驗證不依賴遊戲設定的欄位。
// 範圍類驗證 (注額級距、落點邊界、倍數上下限) 由引擎在
// 取得 GameSetting 後進行
func (q *SpinRequest) Norm() error {
	if q.ServerSeed == "" {
		return errs.Inputf("empty server seed")
	}
	if q.ClientSeed == "" {
		return errs.Inputf("empty client seed")
	}
	if q.Bet < 0 {
		return errs.Inputf("negative bet %v", q.Bet)
	}
	if q.FreeSpinsRemaining < 0 {
		return errs.Inputf("negative free_spins_remaining %d", q.FreeSpinsRemaining)
	}
	if q.FreeSpin && q.FreeSpinsRemaining < 1 {
		return errs.Inputf("free spin with no remaining count")
	}
	for i := 0; i < len(q.ForcedScatters); i++ {
		if q.ForcedScatters[i] < 0 {
			return errs.Inputf("forced scatter cell %d is negative", q.ForcedScatters[i])
		}
		for j := 0; j < i; j++ {
			if q.ForcedScatters[j] == q.ForcedScatters[i] {
				return errs.Inputf("duplicate forced scatter cell %d", q.ForcedScatters[i])
			}
		}
	}
	return nil
}
