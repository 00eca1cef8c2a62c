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

package gamespec

import (
	"github.com/zintix-labs/fairlab/errs"
	"github.com/zintix-labs/fairlab/sdk/sampler"
)

// WeightSetting 描述盤面符號的抽選權重。
//
// Base 與 FreeSpin 為兩張平行於 Symbols 的整數權重表。
// ScatterBoost / WildBoost 僅作用於基礎遊戲：載入時會把對應符號的
// 權重乘上倍率，並預先建好所有組合的查表，抽選時不再改動權重。
type WeightSetting struct {
	SymbolsStr   []string `yaml:"symbols"        json:"symbols"`
	Base         []int    `yaml:"base"           json:"base"`
	FreeSpin     []int    `yaml:"free_spin"      json:"free_spin"`
	ScatterBoost int      `yaml:"scatter_boost"  json:"scatter_boost"`
	WildBoost    int      `yaml:"wild_boost"     json:"wild_boost"`

	Symbols  []Symbol `yaml:"-" json:"-"`
	luts     [lutCount]sampler.LUT
	initFlag bool
}

// 預建查表的組合。Boost 僅存在於基礎遊戲。
const (
	lutBase = iota
	lutBaseScatter
	lutBaseWild
	lutBaseBoth
	lutFree
	lutCount
)

// Init 檢查設定並建立所有抽選查表。
func (ws *WeightSetting) Init() error {
	if ws.initFlag {
		return nil
	}

	// 解析符號
	if ws.Symbols == nil {
		seen := make(map[Symbol]bool, len(ws.SymbolsStr))
		ws.Symbols = make([]Symbol, len(ws.SymbolsStr))
		for i, str := range ws.SymbolsStr {
			s, ok := ParseSymbol(str)
			if !ok {
				return errs.Configf("weight symbols has wrong elem %s", str)
			}
			if seen[s] {
				return errs.Configf("weight symbols has duplicate elem %s", str)
			}
			seen[s] = true
			ws.Symbols[i] = s
		}
	}
	if len(ws.Symbols) == 0 {
		return errs.NewConfig("weight symbols is empty")
	}

	if err := validWeights("base", ws.Base, len(ws.Symbols)); err != nil {
		return err
	}
	if err := validWeights("free_spin", ws.FreeSpin, len(ws.Symbols)); err != nil {
		return err
	}
	if ws.ScatterBoost < 1 {
		return errs.Configf("scatter_boost must be >= 1, got %d", ws.ScatterBoost)
	}
	if ws.WildBoost < 1 {
		return errs.Configf("wild_boost must be >= 1, got %d", ws.WildBoost)
	}

	// 預建所有組合的查表
	ws.luts[lutBase] = sampler.BuildLUT(ws.Base)
	ws.luts[lutBaseScatter] = sampler.BuildLUT(ws.boosted(ws.ScatterBoost, 1))
	ws.luts[lutBaseWild] = sampler.BuildLUT(ws.boosted(1, ws.WildBoost))
	ws.luts[lutBaseBoth] = sampler.BuildLUT(ws.boosted(ws.ScatterBoost, ws.WildBoost))
	ws.luts[lutFree] = sampler.BuildLUT(ws.FreeSpin)

	ws.initFlag = true
	return nil
}

// Table 依模式與 boost 旗標回傳抽選查表，查表值為 Symbols 的索引。
// 免費遊戲不套用 boost。
func (ws *WeightSetting) Table(free bool, scatterBoost bool, wildBoost bool) sampler.LUT {
	if free {
		return ws.luts[lutFree]
	}
	switch {
	case scatterBoost && wildBoost:
		return ws.luts[lutBaseBoth]
	case scatterBoost:
		return ws.luts[lutBaseScatter]
	case wildBoost:
		return ws.luts[lutBaseWild]
	}
	return ws.luts[lutBase]
}

// boosted 回傳套用倍率後的基礎權重副本，原表不變。
func (ws *WeightSetting) boosted(scatterMult int, wildMult int) []int {
	out := make([]int, len(ws.Base))
	copy(out, ws.Base)
	for i, s := range ws.Symbols {
		if IsSymbolScatter(s) {
			out[i] *= scatterMult
		}
		if IsSymbolWild(s) {
			out[i] *= wildMult
		}
	}
	return out
}

func validWeights(name string, w []int, symbols int) error {
	if len(w) != symbols {
		return errs.Configf("%s weights: len %d != symbols %d", name, len(w), symbols)
	}
	total := 0
	for i, v := range w {
		if v < 0 {
			return errs.Configf("%s weights: negative weight at %d", name, i)
		}
		total += v
	}
	if total == 0 {
		return errs.Configf("%s weights: total weight is zero", name)
	}
	return nil
}
