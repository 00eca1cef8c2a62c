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

// ScreenSetting 描述盤面樣式的設定。
//
// Fields:
//   - Columns: 盤面軸數（行數）
//   - Rows: 盤面列數
//
// 盤面為完整矩陣，索引採 row-major：idx = row*Columns + col。
type ScreenSetting struct {
	Columns    int `yaml:"columns"   json:"columns"`
	Rows       int `yaml:"rows"      json:"rows"`
	ScreenSize int `yaml:"-"         json:"-"`
	initFlag   bool
}

// Init 檢查不合法的設定
func (ss *ScreenSetting) Init() error {
	// 檢查初始化旗標
	if ss.initFlag {
		return nil
	}
	if ss.Columns <= 0 || ss.Rows <= 0 {
		return errs.Configf("invalid screen dimensions: cols=%d rows=%d", ss.Columns, ss.Rows)
	}
	ss.ScreenSize = ss.Rows * ss.Columns
	ss.initFlag = true
	return nil
}
