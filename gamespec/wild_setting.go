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

// WildSetting 描述 Wild 參與得獎時的結算策略。
//
// Policy 對應策略註冊表中的鍵（如 multiply、wheel），Params 為該策略的
// 自由參數，由策略建構時以 DecodeFixed 嚴格解碼。
type WildSetting struct {
	PolicyStr string         `yaml:"policy"  json:"policy"`
	Params    map[string]any `yaml:"params"  json:"params"`
	Policy    PolicyKey      `yaml:"-"       json:"-"`
	initFlag  bool
}

// Init 檢查不合法的設定。策略鍵是否存在由組裝端對照註冊表檢查。
func (ws *WildSetting) Init() error {
	if ws.initFlag {
		return nil
	}
	if len(ws.PolicyStr) == 0 {
		return errs.NewConfig("wild policy is required")
	}
	ws.Policy = PolicyKey(ws.PolicyStr)
	ws.initFlag = true
	return nil
}
