package gamespec

import (
	"fmt"

	"github.com/zintix-labs/fairlab/errs"
)

// SymbolSetting 統整遊戲中的所有符號，並記錄衍生屬性（類型、賠付表、總數等）。
//
// PayTable 每列對應 SymbolUsed 中同位置的符號，欄位依序代表
// 最小叢集顆數起算的每一階賠付倍數；超過最後一欄的叢集一律以最後一欄計。
type SymbolSetting struct {
	SymbolUsedStr []string     `yaml:"symbol_used"  json:"symbol_used"`
	PayTable      [][]float64  `yaml:"pay_table"    json:"pay_table"`
	SymbolUsed    []Symbol     `yaml:"-"           json:"-"`
	SymbolTypes   []SymbolType `yaml:"-"           json:"-"`
	SymbolCount   int          `yaml:"-"           json:"-"`
	PayLen        int          `yaml:"-"           json:"-"`
	PayTableFlat  []float64    `yaml:"-"           json:"-"`
	PayTableIndex []int        `yaml:"-"           json:"-"`
	initFlag      bool
}

// Init 檢查設定並賦值
//
// PayTableIndex 以符號值為索引（未使用的符號為 -1），查表時
// pay = PayTableFlat[PayTableIndex[sym] + (size - minCluster)]。
func (ss *SymbolSetting) Init() error {
	// 檢查初始化旗標
	if ss.initFlag {
		return nil
	}
	// 解析SymbolUsed
	if ss.SymbolUsed == nil {
		seen := make(map[Symbol]bool, len(ss.SymbolUsedStr))
		ss.SymbolUsed = make([]Symbol, len(ss.SymbolUsedStr))
		for id, str := range ss.SymbolUsedStr {
			su, ok := ParseSymbol(str)
			if !ok {
				return errs.Configf("symbol_used has wrong elem %s", str)
			}
			if su == SymNone {
				return errs.Configf("symbol_used must not contain the empty symbol %s", str)
			}
			if seen[su] {
				return errs.Configf("symbol_used has duplicate elem %s", str)
			}
			seen[su] = true
			ss.SymbolUsed[id] = su
		}
	}
	if len(ss.SymbolUsed) == 0 {
		return errs.NewConfig("symbol_used is empty")
	}

	if len(ss.SymbolUsed) != len(ss.PayTable) {
		return errs.NewConfig("len(symbol_used) != len(pay_table)")
	}

	// 檢查 PayTable
	payLen := len(ss.PayTable[0])
	if payLen == 0 {
		return errs.NewConfig("pay_table rows are empty")
	}
	maxSym := Symbol(0)
	for _, s := range ss.SymbolUsed {
		if s > maxSym {
			maxSym = s
		}
	}
	ss.PayTableFlat = make([]float64, len(ss.SymbolUsed)*payLen)
	ss.PayTableIndex = make([]int, int(maxSym)+1)
	for i := range ss.PayTableIndex {
		ss.PayTableIndex[i] = -1
	}
	write := 0
	for rowIdx, payRow := range ss.PayTable {
		if len(payRow) != payLen {
			return errs.NewConfig("inconsistent pay table lengths")
		}
		sym := ss.SymbolUsed[rowIdx]
		for i, v := range payRow {
			if v < 0 {
				return errs.Configf("pay_table has negative pay %v for symbol %s", v, ss.SymbolUsedStr[rowIdx])
			}
			if IsSymbolScatter(sym) && v != 0 {
				return errs.Configf("scatter symbol %s must have an all-zero pay row", ss.SymbolUsedStr[rowIdx])
			}
			ss.PayTableFlat[write+i] = v
		}
		ss.PayTableIndex[sym] = write
		write += payLen
	}

	// 賦值
	for _, s := range ss.SymbolUsed {
		ss.SymbolTypes = append(ss.SymbolTypes, s.GetSymbolType())
	}
	ss.SymbolCount = len(ss.SymbolUsed)
	ss.PayLen = payLen
	// set 初始化旗標
	ss.initFlag = true
	return nil
}

// Symbol 盤面符號。空格為 SymNone(0)，盤面緩衝可直接以零值代表空格。
type Symbol int16

const (
	SymNone Symbol = iota // 空格，不屬於任何符號

	W1 // Wild 百搭符號
	C1 // Scatter 分散符號

	// H系列圖標 : High 圖標是高分符號
	H1
	H2
	H3

	// M系列圖標 : Mid 圖標是中分符號
	M1
	M2
	M3

	// L系列圖標 : Low 圖標是低分符號
	L1
	L2
	L3
	L4
)

var symbolMap = map[string]Symbol{
	"W1": W1,
	"C1": C1,
	"H1": H1,
	"H2": H2,
	"H3": H3,
	"M1": M1,
	"M2": M2,
	"M3": M3,
	"L1": L1,
	"L2": L2,
	"L3": L3,
	"L4": L4,
}

var symbolStr = func() map[Symbol]string {
	m := make(map[Symbol]string, len(symbolMap))
	for k, v := range symbolMap {
		m[v] = k
	}
	return m
}()

func ParseSymbol(s string) (Symbol, bool) {
	sym, ok := symbolMap[s]
	return sym, ok
}

// String 回傳符號的設定檔代碼，空格為 "--"。
func (s Symbol) String() string {
	if str, ok := symbolStr[s]; ok {
		return str
	}
	if s == SymNone {
		return "--"
	}
	return fmt.Sprintf("Symbol(%d)", int16(s))
}

// IsSymbolNone 回傳符號是否為空格。
func IsSymbolNone(s Symbol) bool { return s == SymNone }

// IsSymbolWild 回傳符號是否屬於 Wild 符號。
func IsSymbolWild(s Symbol) bool { return s == W1 }

// IsSymbolScatter 回傳符號是否屬於 Scatter 符號。
func IsSymbolScatter(s Symbol) bool { return s == C1 }

// IsSymbolHigh 回傳符號是否屬於高分符號。
func IsSymbolHigh(s Symbol) bool { return (s >= H1) && (s <= H3) }

// IsSymbolMid 回傳符號是否屬於中分符號。
func IsSymbolMid(s Symbol) bool { return (s >= M1) && (s <= M3) }

// IsSymbolLow 回傳符號是否屬於低分符號。
func IsSymbolLow(s Symbol) bool { return (s >= L1) && (s <= L4) }

// IsSymbolRegular 回傳符號是否為一般計分符號（非空格、非 Wild、非 Scatter）。
func IsSymbolRegular(s Symbol) bool { return (s >= H1) && (s <= L4) }

type SymbolType int

const (
	SymbolTypeNone = iota
	SymbolTypeWild
	SymbolTypeScatter
	SymbolTypeHigh
	SymbolTypeMid
	SymbolTypeLow
)

// GetSymbolType 依符號類別回傳對應的 SymbolType。
func (s Symbol) GetSymbolType() SymbolType {
	if IsSymbolWild(s) {
		return SymbolTypeWild
	}
	if IsSymbolScatter(s) {
		return SymbolTypeScatter
	}
	if IsSymbolHigh(s) {
		return SymbolTypeHigh
	}
	if IsSymbolMid(s) {
		return SymbolTypeMid
	}
	if IsSymbolLow(s) {
		return SymbolTypeLow
	}
	return SymbolTypeNone
}
