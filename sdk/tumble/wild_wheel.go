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

package tumble

import (
	"github.com/zintix-labs/fairlab/errs"
	"github.com/zintix-labs/fairlab/gamespec"
	"github.com/zintix-labs/fairlab/sdk/buf"
	"github.com/zintix-labs/fairlab/sdk/core"
	"github.com/zintix-labs/fairlab/sdk/grid"
	"github.com/zintix-labs/fairlab/sdk/sampler"
)

func init() {
	if err := RegisterWildPolicy(PolicyWheel, newWheelPolicy); err != nil {
		panic(err)
	}
}

// wheelParams wheel 策略的自由參數，values 與 weights 一一對應。
type wheelParams struct {
	Values  []int `yaml:"values"`
	Weights []int `yaml:"weights"`
}

// wheelPolicy 每顆 Wild 抽一次輪盤值，爆裂範圍內倍數低於
// 抽出值者提升至該值，高於者不變。每顆 Wild 恰好消耗一次抽選。
type wheelPolicy struct {
	values []int
	lut    sampler.LUT
	hood   []int16
}

func newWheelPolicy(ws *gamespec.WildSetting, ms *gamespec.MultiplierSetting) (WildPolicy, error) {
	p := wheelParams{}
	if err := gamespec.DecodeFixed(ws.Params, &p); err != nil {
		return nil, err
	}
	if len(p.Values) == 0 {
		return nil, errs.NewConfig("wheel policy: values is empty")
	}
	if len(p.Values) != len(p.Weights) {
		return nil, errs.Configf("wheel policy: len(values) %d != len(weights) %d", len(p.Values), len(p.Weights))
	}
	total := 0
	for i, v := range p.Values {
		if v < 1 {
			return nil, errs.Configf("wheel policy: value at %d must be >= 1, got %d", i, v)
		}
		if v > ms.Max {
			return nil, errs.Configf("wheel policy: value %d exceeds multiplier max %d", v, ms.Max)
		}
		if p.Weights[i] < 0 {
			return nil, errs.Configf("wheel policy: negative weight at %d", i)
		}
		total += p.Weights[i]
	}
	if total == 0 {
		return nil, errs.NewConfig("wheel policy: total weight is zero")
	}
	return &wheelPolicy{
		values: p.Values,
		lut:    sampler.BuildLUT(p.Weights),
		hood:   make([]int16, 0, 9),
	}, nil
}

func (p *wheelPolicy) Burst(c *core.Core, g *grid.Grid, cell int16, r *buf.RoundResult) {
	drawn := p.values[p.lut.Pick(c)]
	r.BeginBurst(cell, drawn)
	p.hood = g.Neighborhood(cell, p.hood[:0])
	for _, idx := range p.hood {
		old := g.Mults[idx]
		next := old
		if drawn > next {
			next = drawn
		}
		g.Mults[idx] = next
		r.AddBurstCell(idx, old, next)
	}
	r.EndBurst()
}
