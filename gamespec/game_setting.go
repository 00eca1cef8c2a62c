package gamespec

import (
	"fmt"

	"github.com/zintix-labs/fairlab/errs"
)

// GameSetting 包含啟動一個遊戲引擎所需的所有高階設定。
type GameSetting struct {
	GameName   string            `yaml:"game_name"           json:"game_name"`
	GameID     GID               `yaml:"game_id"             json:"game_id"`
	Screen     ScreenSetting     `yaml:"screen_setting"      json:"screen_setting"`
	Tumble     TumbleSetting     `yaml:"tumble_setting"      json:"tumble_setting"`
	Symbols    SymbolSetting     `yaml:"symbol_setting"      json:"symbol_setting"`
	Weights    WeightSetting     `yaml:"weight_setting"      json:"weight_setting"`
	Multiplier MultiplierSetting `yaml:"multiplier_setting"  json:"multiplier_setting"`
	Wild       WildSetting       `yaml:"wild_setting"        json:"wild_setting"`
	Scatter    ScatterSetting    `yaml:"scatter_setting"     json:"scatter_setting"`
	Jackpot    JackpotSetting    `yaml:"jackpot_setting"     json:"jackpot_setting"`
	Bet        BetSetting        `yaml:"bet_setting"         json:"bet_setting"`
}

// init
func (gs *GameSetting) init() error {
	if err := gs.Screen.Init(); err != nil {
		return err
	}
	if err := gs.Tumble.Init(); err != nil {
		return err
	}
	if err := gs.Symbols.Init(); err != nil {
		return err
	}
	if err := gs.Weights.Init(); err != nil {
		return err
	}
	if err := gs.Multiplier.Init(); err != nil {
		return err
	}
	if err := gs.Wild.Init(); err != nil {
		return err
	}
	if err := gs.Scatter.Init(); err != nil {
		return err
	}
	if err := gs.Jackpot.Init(); err != nil {
		return err
	}
	if err := gs.Bet.Init(); err != nil {
		return err
	}
	return gs.valid()
}

// valid 執行跨子設定的一致性檢查，如需更多驗證可在此擴充。
func (gs *GameSetting) valid() error {
	if len(gs.GameName) == 0 {
		return errs.NewConfig("game_name is required")
	}
	if gs.GameID <= 0 {
		return errs.Configf("game_name: %s err: invalid game_id %d", gs.GameName, gs.GameID)
	}

	// 權重表與符號表必須涵蓋同一組符號
	used := make(map[Symbol]bool, len(gs.Symbols.SymbolUsed))
	for _, s := range gs.Symbols.SymbolUsed {
		used[s] = true
	}
	for i, s := range gs.Weights.Symbols {
		if !used[s] {
			return errs.Configf("game_name: %s err: weight symbol %s not in symbol_used", gs.GameName, gs.Weights.SymbolsStr[i])
		}
	}
	if len(gs.Weights.Symbols) != len(gs.Symbols.SymbolUsed) {
		return errs.Configf("game_name: %s err: weight symbols do not cover symbol_used", gs.GameName)
	}

	// 叢集遊戲必備 Wild 與 Scatter
	wilds, scatters := 0, 0
	for _, st := range gs.Symbols.SymbolTypes {
		switch st {
		case SymbolTypeWild:
			wilds++
		case SymbolTypeScatter:
			scatters++
		}
	}
	if wilds != 1 || scatters != 1 {
		return errs.Configf("game_name: %s err: need exactly one wild and one scatter, got %d/%d", gs.GameName, wilds, scatters)
	}

	if gs.Tumble.MinCluster > gs.Screen.ScreenSize {
		return errs.NewConfig(fmt.Sprintf("game_name: %s err: min_cluster %d > screen size %d", gs.GameName, gs.Tumble.MinCluster, gs.Screen.ScreenSize))
	}

	return nil
}
