package tumble

import (
	"github.com/zintix-labs/fairlab/sdk/buf"
	"github.com/zintix-labs/fairlab/sdk/core"
)

// checkJackpot 在消除迴圈結束後判定彩池，由高至低逐層進行。
//
// 未達注額門檻的層級直接跳過且不消耗亂數流；合格層級各抽一次
// Float64，首個低於 chance 的層級即中獎並停止。獎金以基準注等比
// 放大：amount = seed × (bet / minBet)。回傳中獎金額，未中為 0。
func (sp *Spinner) checkJackpot(c *core.Core, bet float64, r *buf.RoundResult) float64 {
	minBet := sp.gs.Bet.MinBet
	for i := range sp.gs.Jackpot.Tiers {
		t := &sp.gs.Jackpot.Tiers[i]
		if bet < t.MinBetMult*minBet {
			continue
		}
		if c.Float64() < t.Chance {
			amount := t.Seed * (bet / minBet)
			r.AddJackpot(t.Name, amount)
			return amount
		}
	}
	return 0
}
