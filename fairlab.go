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

// Package fairlab 提供 Fairlab 引擎的「組裝入口（assembler）」與「運行入口（runtime entry）」。
//
// 你可以把 Fairlab 視為一個「可被後端/驗證器使用的 runtime」，它負責把下列地基組裝在一起，
// 並提供建立 Engine 的入口：
//  1. Catalog：遊戲目錄（Single Source of Truth / SSOT），定義有哪些遊戲、各自對應的設定檔名稱（ConfigName）。
//  2. Wild 策略註冊表：sdk/tumble 內的 PolicyBuilder 集合，決定設定檔宣告的 wild policy 能否組裝。
//
// 隨機性不屬於組裝物：每次 Spin 的亂數流由請求內的種子三元組
// (serverSeed, clientSeed, nonce) 決定，引擎本身無狀態，
// 同一請求在任何引擎上必然重現同一局（provably fair 的基礎）。
//
// 設計重點：
//   - Fairlab 本身不綁定任何「檔案路徑」概念：設定檔來源一律以 fs.FS 的形式注入。
//   - Engine 是對外提供 Spin 的最小單位；遊戲邏輯開發者（數學家）主要操作的是 sdk 內的型別與資料結構。
//
// 典型使用情境：
//   - 後端服務：由 Fairlab 建立 Engine，Engine 對外提供 Spin。
//   - 批次驗證（verify）：由 Fairlab 建立 EnginePool，重放存檔並核對派彩。
//
// 注意：此套引擎目前以消除式叢集遊戲為中心（Spin -> Result），不是泛用遊戲框架。
package fairlab

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/zintix-labs/fairlab/catalog"
	"github.com/zintix-labs/fairlab/errs"
	"github.com/zintix-labs/fairlab/gamespec"
	"github.com/zintix-labs/fairlab/recorder"
	"github.com/zintix-labs/fairlab/sdk/tumble"
)

// Configs 用來把一或多個設定檔來源（fs.FS）打包成 New() 需要的參數。
//
// 為什麼是 fs.FS：
//   - 你可以用 go:embed 把 configs 直接編進 binary（部署最穩定，不依賴工作目錄）。
//   - 也可以用 os.DirFS 在本機開發時讀取目錄。
//   - 甚至可以用自製的 MultiFS 來合併多個來源。
//
// Fairlab 不解析「路徑」：它只依賴 fs.FS + ConfigName（檔名）來取得設定內容。
func Configs(cfgs ...fs.FS) []fs.FS {
	return cfgs
}

// Fairlab 是「組裝器（assembler）」與「運行入口（runtime entry）」：
//
// 使用流程通常分成兩階段：
//   - 註冊/組裝階段（registration/build）：建立 catalog、檢查設定檔重複與缺漏。
//   - 執行階段（runtime）：依據遊戲 ID 產生 Engine，並在 Engine 上執行 Spin。
//
// 重要設計原則：
//   - Catalog 的 ID 唯一性只保證在「同一個 Fairlab instance」內（不同 Fairlab 之間不做全域保證）。
//   - 你要跑哪一批遊戲、哪一套設定檔，必須由 New() 的參數明確決定。
//   - runtime 一旦開始（例如已建立 Engine 並對外服務），不建議再變更 Catalog（避免非預期行為）。
//
// 實務例子（概念示意，細節依你的實作為準）：
//
//	// 1) 準備 configs（通常是 go:embed 或 DirFS）
//	// 2) 組裝 Fairlab，取得可建立 Engine 的入口
//	//	lab, _ := fairlab.NewAuto(fairlab.Configs(gameconfigs.FS))
//	//	eng, _ := lab.NewEngine(9001)
//	//	// eng.Spin(...) -> 取得結果（通常再轉成 JSON 回傳）
type Fairlab struct {
	cat *catalog.Catalog
	sum []catalog.Summary
}

// New 建立一個 Fairlab instance。
//
// 這是「組裝階段（registration/build）」的入口：
//   - 會建立 Catalog（通常同時做檔名存在性/重複性檢查，避免 runtime 才爆）。
//
// 參數要求（是合約的一部分）：
//   - cfgs 至少一個：沒有設定檔來源，Catalog 無法解析 GameSetting。
func New(cfgs []fs.FS) (*Fairlab, error) {
	if len(cfgs) == 0 {
		return nil, errs.NewFatal("configs required")
	}
	cata, err := catalog.New(cfgs...)
	if err != nil {
		return nil, err
	}
	return &Fairlab{cat: cata}, nil
}

// NewAuto 建立一個直接進入執行階段的 Fairlab instance。
func NewAuto(cfgs []fs.FS) (*Fairlab, error) {
	lab, err := New(cfgs)
	if err != nil {
		return nil, err
	}
	if err := lab.RegisterAll(); err != nil {
		return nil, err
	}
	lab.Freeze()
	return lab, nil
}

func (f *Fairlab) Register(ents ...catalog.Entry) error {
	return f.cat.Register(ents...)
}

// RegisterAll
//
// 會掃描 catalog 持有的設定檔來源（fs.FS），把所有可辨識的設定檔（.yaml/.yml/.json）嘗試解析成
// *gamespec.GameSetting，並用設定檔內宣告的 GameID/GameName 產生對應的 catalog.Entry 來批次註冊。
//
// 行為特性（重要）：
//  1. Fail-fast：任何一個檔案讀取/解析/基本檢查失敗，都會立刻回傳 error（不會忽略、也不會繼續掃完）。
//  2. 原子性：只有當「全部檔案」都成功解析並通過基本檢查時，才會呼叫 Register(...) 一次性寫入。
//     因此不會出現只註冊了一半、導致 catalog 處於半完成狀態的情況。
//  3. 穩定性：會依檔名排序後再處理，確保行為 determinism（方便重現與除錯）。
//
// 注意：
//   - RegisterAll 只負責「把設定檔宣告的遊戲資訊放進 Catalog」。
//
// Wild 策略（PolicyBuilder）是否支援該 policy key，在這裡一併檢查，
// 避免到建引擎時才發現設定檔宣告了不存在的策略。
func (f *Fairlab) RegisterAll() error {
	cfgs := f.cat.Cfg()
	sources := cfgs.Sources()
	if len(sources) == 0 {
		return errs.NewFatal("configs required")
	}

	entries := make([]catalog.Entry, 0, 64)
	seenID := map[gamespec.GID]string{}
	seenName := map[string]string{}

	for _, src := range sources {
		walkErr := fs.WalkDir(src, ".", func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path == "." {
					return nil
				}
				return errs.NewFatal(fmt.Sprintf("configs must be flat (no subdir): %q", path))
			}

			base := filepath.Base(path)
			if strings.Contains(path, "/") && path != base {
				return errs.NewFatal(fmt.Sprintf("configs must be flat (nested path): %q", path))
			}
			if strings.HasPrefix(base, ".") {
				return nil
			}

			ext := strings.ToLower(filepath.Ext(base))
			if ext != ".yaml" && ext != ".yml" && ext != ".json" {
				return nil
			}

			raw, rerr := fs.ReadFile(src, path)
			if rerr != nil {
				return errs.NewFatal(fmt.Sprintf("read config failed: %s", base))
			}

			var (
				gs   *gamespec.GameSetting
				gerr error
			)
			switch ext {
			case ".yaml", ".yml":
				gs, gerr = gamespec.GetGameSettingByYAML(raw)
			case ".json":
				gs, gerr = gamespec.GetGameSettingByJSON(raw)
			default:
				return errs.NewFatal(fmt.Sprintf("unsupported config format: %q", base))
			}
			if gerr != nil {
				return errs.NewFatal(fmt.Sprintf("parse gamesetting failed: %s (%v)", base, gerr))
			}

			name := strings.TrimSpace(gs.GameName)
			if name == "" {
				return errs.NewFatal(fmt.Sprintf("game name required: %s", base))
			}

			id := gs.GameID
			if prev, ok := seenID[id]; ok {
				return errs.NewFatal(fmt.Sprintf("duplicate game id: %d (config=%s and %s)", id, prev, base))
			}
			if _, ok := f.cat.GetByID(id); ok {
				return errs.NewFatal(fmt.Sprintf("game id already registered: %d (config=%s)", id, base))
			}
			seenID[id] = base

			nameKey := strings.ToLower(name)
			if prev, ok := seenName[nameKey]; ok {
				return errs.NewFatal(fmt.Sprintf("duplicate game name: %s (config=%s and %s)", nameKey, prev, base))
			}
			if _, ok := f.cat.GetByName(name); ok {
				return errs.NewFatal(fmt.Sprintf("game name already registered: %s (config=%s)", name, base))
			}
			seenName[nameKey] = base

			if gs.Wild.Policy == "" {
				return errs.NewFatal(fmt.Sprintf("wild policy required: %s", base))
			}
			if !tumble.IsPolicy(gs.Wild.Policy) {
				return errs.NewFatal(fmt.Sprintf("wild policy not registered: policy=%s (config=%s)", gs.Wild.Policy, base))
			}

			entries = append(entries, catalog.Entry{
				GID:        id,
				Name:       name,
				ConfigName: base,
			})
			return nil
		})
		if walkErr != nil {
			return walkErr
		}
	}

	if len(entries) == 0 {
		return errs.NewFatal("no config files found to register")
	}

	return f.cat.Register(entries...)
}

func (f *Fairlab) Freeze() {
	f.cat.Freeze()
}

func (f *Fairlab) EntryById(id gamespec.GID) (catalog.Entry, bool) {
	return f.cat.GetByID(id)
}

func (f *Fairlab) EntryByName(name string) (catalog.Entry, bool) {
	return f.cat.GetByName(name)
}

func (f *Fairlab) IDs() []gamespec.GID {
	return f.cat.IDs()
}

func (f *Fairlab) All() []catalog.Entry {
	return f.cat.All()
}

func (f *Fairlab) Summary() ([]catalog.Summary, error) {
	if !f.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	if f.sum != nil {
		return f.sum, nil
	}
	ids := f.cat.IDs()
	cs := make([]catalog.Summary, 0, len(ids))
	for _, id := range ids {
		gs, err := f.cat.GameSettingById(id)
		if err != nil {
			return nil, errs.NewFatal("parse game setting failed")
		}
		s := catalog.Summary{
			GID:       id,
			Name:      gs.GameName,
			Policy:    gs.Wild.Policy,
			Columns:   gs.Screen.Columns,
			Rows:      gs.Screen.Rows,
			BetLevels: gs.Bet.Levels,
		}
		cs = append(cs, s)
	}
	f.sum = cs
	return f.sum, nil
}

// NewEngine 依據 Catalog 內的遊戲 ID 建立一台 Engine。
//
// 行為：
//  1. 由 Catalog 取得對應的 GameSetting（通常來自 fs.FS 內的 YAML/JSON）。
//  2. 依設定組裝 Spinner 與結果緩衝。
//
// 引擎無亂數狀態：隨機流由每個 Spin 請求的種子三元組決定，
// 因此不需要（也沒有）seed 參數。
func (f *Fairlab) NewEngine(id gamespec.GID) (*Engine, error) {
	if !f.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	gs, err := f.cat.GameSettingById(id)
	if err != nil {
		return nil, err
	}
	return newEngine(gs)
}

// NewEngineByName 與 NewEngine 相同，但以遊戲名稱查表。
func (f *Fairlab) NewEngineByName(name string) (*Engine, error) {
	if !f.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	gs, err := f.cat.GameSettingByName(name)
	if err != nil {
		return nil, err
	}
	return newEngine(gs)
}

// NewEngineByJSON 以外部提供的 JSON 設定建引擎；設定宣告的遊戲
// 必須已存在於 Catalog（防止偷換設定跑未註冊的遊戲）。
func (f *Fairlab) NewEngineByJSON(raw []byte) (*Engine, error) {
	if !f.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	cfg, err := gamespec.GetGameSettingByJSON(raw)
	if err != nil {
		return nil, err
	}
	if err := f.validCfg(cfg); err != nil {
		return nil, err
	}
	return newEngine(cfg)
}

// NewEngineByYAML 是 NewEngineByJSON 的 YAML 版本。
func (f *Fairlab) NewEngineByYAML(raw []byte) (*Engine, error) {
	if !f.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	cfg, err := gamespec.GetGameSettingByYAML(raw)
	if err != nil {
		return nil, err
	}
	if err := f.validCfg(cfg); err != nil {
		return nil, err
	}
	return newEngine(cfg)
}

func (f *Fairlab) validCfg(cfg *gamespec.GameSetting) error {
	ent, ok := f.cat.GetByID(cfg.GameID)
	if !ok {
		return errs.NewWarn("gid not exist")
	}
	ent2, ok := f.cat.GetByName(cfg.GameName)
	if !ok {
		return errs.NewWarn("game name not exist")
	}
	if ent.GID != ent2.GID {
		return errs.NewWarn("game id is not matched game name")
	}
	if !tumble.IsPolicy(cfg.Wild.Policy) {
		return errs.NewWarn("wild policy not exist")
	}
	return nil
}

// NewEnginePool 依據 Catalog 內的遊戲 ID 建立一個引擎池。
//   - n: 引擎數量（至少為 1）
func (f *Fairlab) NewEnginePool(id gamespec.GID, n int) (*EnginePool, error) {
	if !f.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	gs, err := f.cat.GameSettingById(id)
	if err != nil {
		return nil, err
	}
	return newEnginePool(n, gs)
}

// NewVerifier 依據 Catalog 內的遊戲 ID 建立批次驗證器。
//   - workers: 併發 worker 數（至少為 1），同時也是引擎池容量
func (f *Fairlab) NewVerifier(id gamespec.GID, workers int) (*Verifier, error) {
	pool, err := f.NewEnginePool(id, workers)
	if err != nil {
		return nil, err
	}
	return newVerifier(pool, workers), nil
}

// Verify 以一次性引擎重放單筆揭露紀錄並核對派彩，適合低頻查核
// （玩家事後驗證單局）。大量重放請用 NewVerifier + VerifyArchive。
func (f *Fairlab) Verify(id gamespec.GID, rec *recorder.RoundRecord) (VerifyOutcome, error) {
	if rec == nil {
		return VerifyOutcome{}, errs.Inputf("nil round record")
	}
	eng, err := f.NewEngine(id)
	if err != nil {
		return VerifyOutcome{}, err
	}
	brief, err := eng.SpinBrief(rec.SpinRequest())
	if err != nil {
		return VerifyOutcome{}, err
	}
	return VerifyOutcome{
		Match:    payoutMatch(brief.PayoutMult, rec.ClaimedPayoutMult),
		Claimed:  rec.ClaimedPayoutMult,
		Computed: brief.PayoutMult,
		Brief:    brief,
	}, nil
}
