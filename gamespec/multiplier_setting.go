package gamespec

import "github.com/zintix-labs/fairlab/errs"

// MultiplierSetting 描述格子倍數（ghost spot）的成長規則。
//
// 每個格子的倍數從 Initial 起算；格子第一次參與得獎時跳至 GhostBase，
// 之後每次參與得獎乘上 Growth，上限為 Max。倍數只增不減，並跟著格子
// 位置走，不隨符號掉落移動。
type MultiplierSetting struct {
	Initial   int `yaml:"initial"     json:"initial"`
	GhostBase int `yaml:"ghost_base"  json:"ghost_base"`
	Growth    int `yaml:"growth"      json:"growth"`
	Max       int `yaml:"max"         json:"max"`
	initFlag  bool
}

// Init 檢查不合法的設定
func (ms *MultiplierSetting) Init() error {
	if ms.initFlag {
		return nil
	}
	if ms.Initial < 1 {
		return errs.Configf("multiplier initial must be >= 1, got %d", ms.Initial)
	}
	if ms.GhostBase < ms.Initial {
		return errs.Configf("multiplier ghost_base %d < initial %d", ms.GhostBase, ms.Initial)
	}
	if ms.Growth < 2 {
		return errs.Configf("multiplier growth must be >= 2, got %d", ms.Growth)
	}
	if ms.Max < ms.GhostBase {
		return errs.Configf("multiplier max %d < ghost_base %d", ms.Max, ms.GhostBase)
	}
	ms.initFlag = true
	return nil
}

// Escalate 回傳格子得獎一次後的新倍數。
func (ms *MultiplierSetting) Escalate(cur int) int {
	if cur <= ms.Initial {
		return ms.GhostBase
	}
	next := cur * ms.Growth
	if next > ms.Max {
		return ms.Max
	}
	return next
}
