package gamespec

import "github.com/zintix-labs/fairlab/errs"

// ScatterSetting 描述免費遊戲的觸發與再觸發規則。
//
// Awards / RetriggerAwards 為「Scatter 顆數 -> 免費次數」對照表，
// 超過表中最大顆數時以最大顆數計。兩張表各自必須從門檻顆數起連續無缺，
// 缺項在載入時即為設定錯誤。
type ScatterSetting struct {
	Trigger         int         `yaml:"trigger"           json:"trigger"`
	Retrigger       int         `yaml:"retrigger"         json:"retrigger"`
	Awards          map[int]int `yaml:"awards"            json:"awards"`
	RetriggerAwards map[int]int `yaml:"retrigger_awards"  json:"retrigger_awards"`
	awardMax        int
	retriggerMax    int
	initFlag        bool
}

// Init 檢查不合法的設定
func (ss *ScatterSetting) Init() error {
	if ss.initFlag {
		return nil
	}
	if ss.Trigger < 1 {
		return errs.Configf("scatter trigger must be >= 1, got %d", ss.Trigger)
	}
	if ss.Retrigger < 1 {
		return errs.Configf("scatter retrigger must be >= 1, got %d", ss.Retrigger)
	}
	var err error
	if ss.awardMax, err = validAwards("awards", ss.Awards, ss.Trigger); err != nil {
		return err
	}
	if ss.retriggerMax, err = validAwards("retrigger_awards", ss.RetriggerAwards, ss.Retrigger); err != nil {
		return err
	}
	ss.initFlag = true
	return nil
}

// SpinsFor 回傳指定 Scatter 顆數應派發的免費次數，未達門檻回傳 0。
func (ss *ScatterSetting) SpinsFor(count int, free bool) int {
	threshold, table, maxKey := ss.Trigger, ss.Awards, ss.awardMax
	if free {
		threshold, table, maxKey = ss.Retrigger, ss.RetriggerAwards, ss.retriggerMax
	}
	if count < threshold {
		return 0
	}
	if count > maxKey {
		count = maxKey
	}
	return table[count]
}

// validAwards 檢查對照表從門檻顆數到最大顆數連續無缺且次數為正。
func validAwards(name string, table map[int]int, threshold int) (int, error) {
	if len(table) == 0 {
		return 0, errs.Configf("scatter %s is empty", name)
	}
	maxKey := 0
	for k := range table {
		if k < threshold {
			return 0, errs.Configf("scatter %s has key %d below threshold %d", name, k, threshold)
		}
		if k > maxKey {
			maxKey = k
		}
	}
	for k := threshold; k <= maxKey; k++ {
		v, ok := table[k]
		if !ok {
			return 0, errs.Configf("scatter %s is missing key %d", name, k)
		}
		if v < 1 {
			return 0, errs.Configf("scatter %s has non-positive award for key %d", name, k)
		}
	}
	return maxKey, nil
}
