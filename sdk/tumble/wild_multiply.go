package tumble

import (
	"github.com/zintix-labs/fairlab/errs"
	"github.com/zintix-labs/fairlab/gamespec"
	"github.com/zintix-labs/fairlab/sdk/buf"
	"github.com/zintix-labs/fairlab/sdk/core"
	"github.com/zintix-labs/fairlab/sdk/grid"
)

func init() {
	if err := RegisterWildPolicy(PolicyMultiply, newMultiplyPolicy); err != nil {
		panic(err)
	}
}

// multiplyParams multiply 策略的自由參數。
type multiplyParams struct {
	Factor int `yaml:"factor"`
}

// multiplyPolicy 把爆裂範圍內的倍數乘上固定倍率，封頂於設定上限。
// 不消耗亂數流。
type multiplyPolicy struct {
	factor int
	max    int
	hood   []int16
}

func newMultiplyPolicy(ws *gamespec.WildSetting, ms *gamespec.MultiplierSetting) (WildPolicy, error) {
	p := multiplyParams{}
	if err := gamespec.DecodeFixed(ws.Params, &p); err != nil {
		return nil, err
	}
	if p.Factor < 2 {
		return nil, errs.Configf("multiply policy: factor must be >= 2, got %d", p.Factor)
	}
	return &multiplyPolicy{
		factor: p.Factor,
		max:    ms.Max,
		hood:   make([]int16, 0, 9),
	}, nil
}

func (p *multiplyPolicy) Burst(c *core.Core, g *grid.Grid, cell int16, r *buf.RoundResult) {
	r.BeginBurst(cell, p.factor)
	p.hood = g.Neighborhood(cell, p.hood[:0])
	for _, idx := range p.hood {
		old := g.Mults[idx]
		next := old * p.factor
		if next > p.max {
			next = p.max
		}
		g.Mults[idx] = next
		r.AddBurstCell(idx, old, next)
	}
	r.EndBurst()
}
