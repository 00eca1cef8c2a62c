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

import "github.com/zintix-labs/fairlab/errs"

// JackpotTier 單一彩池層級。
//
// Seed 為基準注下的獎金，實際派彩隨下注等比放大；Chance 為每次判定的
// 中獎機率；MinBetMult 為參與資格門檻（下注需達基準注的倍數）。
type JackpotTier struct {
	Name       string  `yaml:"name"          json:"name"`
	Seed       float64 `yaml:"seed"          json:"seed"`
	Chance     float64 `yaml:"chance"        json:"chance"`
	MinBetMult float64 `yaml:"min_bet_mult"  json:"min_bet_mult"`
}

// JackpotSetting 彩池層級設定，由高至低排列，判定時依序進行且至多中一層。
type JackpotSetting struct {
	Tiers    []JackpotTier `yaml:"tiers"  json:"tiers"`
	initFlag bool
}

// Init 檢查不合法的設定。Tiers 可為空（該遊戲無彩池）。
func (js *JackpotSetting) Init() error {
	if js.initFlag {
		return nil
	}
	seen := make(map[string]bool, len(js.Tiers))
	for i, t := range js.Tiers {
		if len(t.Name) == 0 {
			return errs.Configf("jackpot tier %d has empty name", i)
		}
		if seen[t.Name] {
			return errs.Configf("jackpot tier name duplicated: %s", t.Name)
		}
		seen[t.Name] = true
		if t.Seed <= 0 {
			return errs.Configf("jackpot tier %s: seed must be > 0", t.Name)
		}
		if t.Chance < 0 || t.Chance >= 1 {
			return errs.Configf("jackpot tier %s: chance must be in [0,1)", t.Name)
		}
		if t.MinBetMult <= 0 {
			return errs.Configf("jackpot tier %s: min_bet_mult must be > 0", t.Name)
		}
		if i > 0 && js.Tiers[i-1].Seed < t.Seed {
			return errs.Configf("jackpot tiers must be ordered high to low: %s", t.Name)
		}
	}
	js.initFlag = true
	return nil
}
