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

// Package gameconfigs 內嵌預設遊戲設定檔。
//
// 兩款內建遊戲覆蓋兩種 Wild 結算策略：ghostgrid 用 multiply，
// ghostwheel 用 wheel，其餘表格相同。呼叫端以 fairlab.Configs(gameconfigs.FS)
// 注入，或改以 os.DirFS 提供外部設定目錄。
package gameconfigs

import "embed"

//go:embed *.yaml
var FS embed.FS
