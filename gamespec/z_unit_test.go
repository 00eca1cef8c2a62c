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

package gamespec_test

import (
	"strings"
	"testing"

	"github.com/zintix-labs/fairlab/gamespec"
)

const validYAML = `
game_name: unit
game_id: 7001
screen_setting: {columns: 3, rows: 3}
tumble_setting: {min_cluster: 4, max_tumbles: 10}
symbol_setting:
  symbol_used: [W1, C1, H1, L1]
  pay_table:
    - [0.78, 1.25, 2.04]
    - [0, 0, 0]
    - [0.78, 1.25, 2.04]
    - [0.08, 0.13, 0.21]
weight_setting:
  symbols: [W1, C1, H1, L1]
  base: [3, 2, 8, 36]
  free_spin: [5, 3, 8, 36]
  scatter_boost: 3
  wild_boost: 5
multiplier_setting: {initial: 1, ghost_base: 2, growth: 2, max: 1024}
wild_setting:
  policy: multiply
  params: {factor: 64}
scatter_setting:
  trigger: 3
  retrigger: 2
  awards: {3: 8, 4: 12}
  retrigger_awards: {2: 3, 3: 5}
jackpot_setting:
  tiers:
    - {name: grand, seed: 10000, chance: 5.0e-8, min_bet_mult: 10}
    - {name: mini, seed: 50, chance: 1.0e-5, min_bet_mult: 1}
bet_setting:
  min_bet: 0.1
  max_bet: 100
  levels: [0.1, 1, 100]
  max_win_mult: 40000
`

func TestGameSettingFromYAML(t *testing.T) {
	gs, err := gamespec.GetGameSettingByYAML([]byte(validYAML))
	if err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
	if gs.GameID != 7001 || gs.GameName != "unit" {
		t.Fatalf("identity mismatch: %s %d", gs.GameName, gs.GameID)
	}
	if gs.Screen.ScreenSize != 9 {
		t.Fatalf("screen size got %d want 9", gs.Screen.ScreenSize)
	}
	if gs.Symbols.PayLen != 3 || gs.Symbols.SymbolCount != 4 {
		t.Fatalf("symbol derivation wrong: paylen=%d count=%d", gs.Symbols.PayLen, gs.Symbols.SymbolCount)
	}

	// 賠付查表：H1 的首欄（最小叢集顆數）
	idx := gs.Symbols.PayTableIndex[gamespec.H1]
	if idx < 0 || gs.Symbols.PayTableFlat[idx] != 0.78 {
		t.Fatalf("paytable lookup for H1 got idx=%d", idx)
	}
	if gs.Symbols.PayTableIndex[gamespec.C1] < 0 {
		t.Fatalf("scatter should still own a pay row")
	}

	// 查表長度 = 權重總和；boost 只放大對應符號
	if n := len(gs.Weights.Table(false, false, false)); n != 3+2+8+36 {
		t.Fatalf("base lut size got %d", n)
	}
	if n := len(gs.Weights.Table(false, true, false)); n != 3+2*3+8+36 {
		t.Fatalf("scatter-boost lut size got %d", n)
	}
	if n := len(gs.Weights.Table(false, false, true)); n != 3*5+2+8+36 {
		t.Fatalf("wild-boost lut size got %d", n)
	}
	if n := len(gs.Weights.Table(true, true, true)); n != 5+3+8+36 {
		t.Fatalf("free lut must ignore boosts, size got %d", n)
	}

	// Scatter 對照表：門檻、查表、收斂
	if v := gs.Scatter.SpinsFor(2, false); v != 0 {
		t.Fatalf("below threshold should award 0, got %d", v)
	}
	if v := gs.Scatter.SpinsFor(3, false); v != 8 {
		t.Fatalf("award for 3 got %d want 8", v)
	}
	if v := gs.Scatter.SpinsFor(99, false); v != 12 {
		t.Fatalf("award above table max should clamp, got %d", v)
	}
	if v := gs.Scatter.SpinsFor(2, true); v != 3 {
		t.Fatalf("retrigger award for 2 got %d want 3", v)
	}

	// 倍數成長鏈：1 -> 2 -> 4 -> ... -> 1024 封頂
	m := gs.Multiplier.Initial
	for range 12 {
		m = gs.Multiplier.Escalate(m)
	}
	if m != 1024 {
		t.Fatalf("escalation should cap at 1024, got %d", m)
	}
	if gs.Multiplier.Escalate(1024) != 1024 {
		t.Fatalf("escalation must not exceed max")
	}
}

func TestGameSettingValidation(t *testing.T) {
	cases := []struct {
		name string
		old  string
		new  string
	}{
		{"zero weight total", "base: [3, 2, 8, 36]", "base: [0, 0, 0, 0]"},
		{"negative weight", "base: [3, 2, 8, 36]", "base: [3, -2, 8, 36]"},
		{"duplicate symbol", "symbol_used: [W1, C1, H1, L1]", "symbol_used: [W1, C1, H1, H1]"},
		{"unknown symbol", "symbol_used: [W1, C1, H1, L1]", "symbol_used: [W1, C1, H1, X9]"},
		{"scatter pays", "- [0, 0, 0]", "- [0, 1, 0]"},
		{"ragged pay row", "- [0.08, 0.13, 0.21]", "- [0.08, 0.13]"},
		{"retrigger table gap", "retrigger_awards: {2: 3, 3: 5}", "retrigger_awards: {2: 3, 4: 5}"},
		{"jackpot order", "name: grand, seed: 10000", "name: grand, seed: 10"},
		{"bet levels not ascending", "levels: [0.1, 1, 100]", "levels: [0.1, 100, 1]"},
		{"min cluster too large", "min_cluster: 4", "min_cluster: 99"},
		{"weight symbols diverge", "symbols: [W1, C1, H1, L1]", "symbols: [W1, C1, H1, M1]"},
		{"missing wild policy", "policy: multiply", `policy: ""`},
	}
	for _, tc := range cases {
		doc := strings.Replace(validYAML, tc.old, tc.new, 1)
		if doc == validYAML {
			t.Fatalf("%s: mutation did not apply", tc.name)
		}
		if _, err := gamespec.GetGameSettingByYAML([]byte(doc)); err == nil {
			t.Fatalf("%s: invalid config accepted", tc.name)
		}
	}
}

func TestDecodeFixedStrict(t *testing.T) {
	type multiplyParams struct {
		Factor int `yaml:"factor"`
	}
	var p multiplyParams
	if err := gamespec.DecodeFixed(map[string]any{"factor": 64}, &p); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if p.Factor != 64 {
		t.Fatalf("factor got %d want 64", p.Factor)
	}

	var q multiplyParams
	if err := gamespec.DecodeFixed(map[string]any{"factorr": 64}, &q); err == nil {
		t.Fatalf("unknown field must be rejected")
	}
}
