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

// 消除迴圈的預設上限，設定檔未指定時採用。
const defaultMaxTumbles = 50

// TumbleSetting 描述叢集判定與消除迴圈的規則。
//
// Fields:
//   - MinCluster: 叢集成立的最低顆數
//   - MaxTumbles: 單次 spin 允許的消除迴圈上限，超過即中止並回報錯誤
type TumbleSetting struct {
	MinCluster int `yaml:"min_cluster"  json:"min_cluster"`
	MaxTumbles int `yaml:"max_tumbles"  json:"max_tumbles"`
	initFlag   bool
}

// Init 檢查不合法的設定
func (ts *TumbleSetting) Init() error {
	if ts.initFlag {
		return nil
	}
	if ts.MinCluster < 2 {
		return errs.Configf("min_cluster must be >= 2, got %d", ts.MinCluster)
	}
	if ts.MaxTumbles == 0 {
		ts.MaxTumbles = defaultMaxTumbles
	}
	if ts.MaxTumbles < 1 {
		return errs.Configf("max_tumbles must be >= 1, got %d", ts.MaxTumbles)
	}
	ts.initFlag = true
	return nil
}
