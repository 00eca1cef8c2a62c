package grid

// Move 紀錄單格掉落：符號 Sym 自 From 格落至 To 格
type Move struct {
	From int16
	To   int16
	Sym  int16
}

// Gravity 執行標準的單格圖標下落邏輯 (Column-wise compact)
//
// 符號往下壓縮並保持相對順序，倍數層不隨符號移動。
// 若 moves 非 nil，掉落紀錄依「每行由下而上、行由左至右」的順序追加，
// 與事件紀錄的順序約定一致
func (g *Grid) Gravity(moves *[]Move) {
	for c := 0; c < g.Cols; c++ {
		wp := (g.Rows-1)*g.Cols + c // Write Pointer (寫入位置，從底開始)

		// 自底向上掃描
		for r := g.Rows - 1; r >= 0; r-- {
			rp := r*g.Cols + c // Read Pointer
			if g.Syms[rp] != 0 {
				if rp != wp {
					g.Syms[wp] = g.Syms[rp]
					if moves != nil {
						*moves = append(*moves, Move{From: int16(rp), To: int16(wp), Sym: g.Syms[wp]})
					}
				}
				wp -= g.Cols
			}
		}

		// 上方剩餘空間補 0
		for w := wp; w >= 0; w -= g.Cols {
			g.Syms[w] = 0
		}
	}
}
