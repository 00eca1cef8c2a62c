package gamespec

import "github.com/zintix-labs/fairlab/errs"

// BetSetting 描述下注範圍與賠付上限。
//
// MinBet 同時是彩池與派彩換算的基準注。MaxWinMult 為單局消除派彩的
// 上限倍數，超過時收斂到上限；彩池獎金不受此限，於收斂後另計。
type BetSetting struct {
	MinBet     float64   `yaml:"min_bet"       json:"min_bet"`
	MaxBet     float64   `yaml:"max_bet"       json:"max_bet"`
	Levels     []float64 `yaml:"levels"        json:"levels"`
	MaxWinMult float64   `yaml:"max_win_mult"  json:"max_win_mult"`
	initFlag   bool
}

// Init 檢查不合法的設定
func (bs *BetSetting) Init() error {
	if bs.initFlag {
		return nil
	}
	if bs.MinBet <= 0 {
		return errs.Configf("min_bet must be > 0, got %v", bs.MinBet)
	}
	if bs.MaxBet < bs.MinBet {
		return errs.Configf("max_bet %v < min_bet %v", bs.MaxBet, bs.MinBet)
	}
	if bs.MaxWinMult <= 0 {
		return errs.Configf("max_win_mult must be > 0, got %v", bs.MaxWinMult)
	}
	for i, lv := range bs.Levels {
		if lv < bs.MinBet || lv > bs.MaxBet {
			return errs.Configf("bet level %v outside [%v, %v]", lv, bs.MinBet, bs.MaxBet)
		}
		if i > 0 && lv <= bs.Levels[i-1] {
			return errs.Configf("bet levels must be strictly ascending at %d", i)
		}
	}
	bs.initFlag = true
	return nil
}

// ValidBet 回傳下注額是否在允許範圍內。
func (bs *BetSetting) ValidBet(bet float64) bool {
	return bet >= bs.MinBet && bet <= bs.MaxBet
}
