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
)

// 內建策略鍵，設定檔 wild_setting.policy 對應此值。
const (
	PolicyMultiply = gamespec.PolicyKey("multiply")
	PolicyWheel    = gamespec.PolicyKey("wheel")
)

// WildPolicy 定義 Wild 參與得獎時的結算行為。
//
// Burst 的合約：
//   - 依 grid.Neighborhood 的固定順序更新 cell 與相鄰格的倍數
//   - 以 r.BeginBurst / AddBurstCell / EndBurst 寫入爆裂事件
//   - 亂數流消耗量由策略自身定義且固定，重算方依同一設定可重現
type WildPolicy interface {
	Burst(c *core.Core, g *grid.Grid, cell int16, r *buf.RoundResult)
}

// PolicyBuilder 依設定建立策略實例，參數解碼或檢查失敗回傳設定錯誤。
type PolicyBuilder func(ws *gamespec.WildSetting, ms *gamespec.MultiplierSetting) (WildPolicy, error)

var policyBuilders = make(map[gamespec.PolicyKey]PolicyBuilder, 4)

// RegisterWildPolicy 註冊策略建構器，鍵重複回傳 Fatal。
// 內建策略由本包 init 註冊，外部專案可在組裝機台前追加。
func RegisterWildPolicy(key gamespec.PolicyKey, b PolicyBuilder) error {
	if _, ok := policyBuilders[key]; ok {
		return errs.Fatalf("duplicate wild policy: %s", key)
	}
	policyBuilders[key] = b
	return nil
}

// IsPolicy 回傳策略鍵是否已註冊。
func IsPolicy(key gamespec.PolicyKey) bool {
	_, ok := policyBuilders[key]
	return ok
}

// BuildWildPolicy 依遊戲設定建立 Wild 策略。
func BuildWildPolicy(ws *gamespec.WildSetting, ms *gamespec.MultiplierSetting) (WildPolicy, error) {
	b, ok := policyBuilders[ws.Policy]
	if !ok {
		return nil, errs.Configf("wild policy is not registered: %s", ws.Policy)
	}
	return b(ws, ms)
}
