package tumble

import (
	"github.com/zintix-labs/fairlab/gamespec"
	"github.com/zintix-labs/fairlab/sdk/grid"
)

// payFor 回傳符號在指定叢集顆數下的基礎賠率。
// 超過賠付表最後一欄的顆數一律以最後一欄計。
func payFor(ss *gamespec.SymbolSetting, minCluster int, sym int16, size int) float64 {
	if int(sym) >= len(ss.PayTableIndex) {
		return 0
	}
	idx := ss.PayTableIndex[sym]
	if idx < 0 {
		return 0
	}
	step := size - minCluster
	if step < 0 {
		return 0
	}
	if step >= ss.PayLen {
		step = ss.PayLen - 1
	}
	return ss.PayTableFlat[idx+step]
}

// clusterMult 回傳叢集成員格中的最大倍數。
func clusterMult(g *grid.Grid, cells []int16) int {
	m := 0
	for _, cell := range cells {
		if v := g.Mults[cell]; v > m {
			m = v
		}
	}
	return m
}
