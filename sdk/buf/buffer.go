package buf

import (
	"github.com/zintix-labs/fairlab/gamespec"
	"github.com/zintix-labs/fairlab/sdk/grid"
)

const capEventGrow int = 64

// EventKind 事件種類。事件依發生順序追加，即盤面狀態變化的因果順序
type EventKind uint8

const (
	EvReveal EventKind = iota
	EvWin
	EvMultUpgrade
	EvWildBurst
	EvTumble
	EvFill
	EvFreeSpins
	EvJackpot
)

var eventKindStr = [...]string{
	"reveal",
	"win",
	"multiplier_upgrade",
	"wild_burst",
	"tumble",
	"fill",
	"free_spins_trigger",
	"jackpot_win",
}

func (k EventKind) String() string {
	if int(k) < len(eventKindStr) {
		return eventKindStr[k]
	}
	return "unknown"
}

// Event 單一事件。Idx 指向所屬 Kind 的扁平儲存；
// reveal 與 jackpot_win 的資料在 RoundResult 本體，Idx 為 -1
type Event struct {
	Kind EventKind
	Idx  int32
}

// WinEvent 一組 cluster 的派彩紀錄
type WinEvent struct {
	Sym        int16   // 代表符號
	Mult       int     // 生效倍數 (成員格子的最大值)
	BasePay    float64 // 賠率表基礎賠率
	Amount     float64 // 派彩金額 (BasePay × Mult × Bet)
	CellsStart int32   // CellsFlat 起點
	CellsEnd   int32
}

// UpgradeEvent 單格倍數升級
type UpgradeEvent struct {
	Cell int16
	Val  int // 升級後的新值
}

// BurstEvent 單顆 Wild 的爆裂紀錄
type BurstEvent struct {
	WildCell    int16
	Factor      int // multiply 策略為固定倍率；wheel 策略為抽出的輪盤值
	MaxAfter    int // 爆裂後影響格中的最大倍數
	DetailStart int32
	DetailEnd   int32
}

// BurstCell 爆裂影響的單格明細
type BurstCell struct {
	Cell int16
	Old  int
	New  int
}

// TriggerEvent 免費遊戲觸發/重觸發
type TriggerEvent struct {
	Count      int // 盤面 Scatter 數
	Awarded    int // 授予場次
	Retrigger  bool
	CellsStart int32 // Scatter 所在格子
	CellsEnd   int32
}

// TumbleEvent 一次掉落的所有移動，range 指向 MoveFlat
type TumbleEvent struct {
	MoveStart int32
	MoveEnd   int32
}

// FillEvent 一次補盤的所有新格，range 指向 FillFlat
type FillEvent struct {
	FillStart int32
	FillEnd   int32
}

// ============================================================
// RoundResult
// ============================================================

// RoundResult 保存一次完整 Spin 的結果與事件紀錄。
//
// 事件內容採扁平儲存：Events 只存種類與索引，
// 各類事件的本體在對應的扁平切片中，格子/移動/補盤列表
// 再透過 range 指向 CellsFlat / MoveFlat / FillFlat。
// Reset 之後所有容量保留重用。
type RoundResult struct {
	GameName string
	GameID   gamespec.GID
	Bet      float64
	FreeSpin bool

	TotalPay    float64 // 含 Jackpot 的總派彩
	PayoutMult  float64 // TotalPay / Bet (Bet == 0 時為 0)
	TumbleCount int
	MaxMult     int // 本次 Spin 觀測到的最大倍數

	FreeSpinsTriggered int
	FreeSpinsRemaining int

	JackpotTier   string // 空字串 = 未中
	JackpotAmount float64

	// 盤面快照 (複本，不與 Grid 共享底層)
	InitSyms   []int16
	FinalSyms  []int16
	FinalMults []int

	// 種子揭露 (不含 server seed 本體)
	ServerSeedHash string
	ClientSeed     string
	Nonce          uint64

	Events []Event

	Wins       []WinEvent
	Upgrades   []UpgradeEvent
	Bursts     []BurstEvent
	BurstCells []BurstCell
	Triggers   []TriggerEvent
	Tumbles    []TumbleEvent
	Fills      []FillEvent

	// 扁平緩衝。MoveFlat / FillFlat 由 Grid 直接追加，
	// 事件再以 range 落地
	CellsFlat []int16
	MoveFlat  []grid.Move
	FillFlat  []grid.Fill

	tmpBurst  BurstEvent
	burstOpen bool
}

// NewRoundResult 依遊戲設定建立 RoundResult 並預配容量
func NewRoundResult(gs *gamespec.GameSetting) *RoundResult {
	size := gs.Screen.ScreenSize
	r := &RoundResult{
		GameName: gs.GameName,
		GameID:   gs.GameID,

		InitSyms:   make([]int16, 0, size),
		FinalSyms:  make([]int16, 0, size),
		FinalMults: make([]int, 0, size),

		Events: make([]Event, 0, capEventGrow),

		Wins:       make([]WinEvent, 0, capEventGrow),
		Upgrades:   make([]UpgradeEvent, 0, capEventGrow),
		Bursts:     make([]BurstEvent, 0, 8),
		BurstCells: make([]BurstCell, 0, capEventGrow),
		Triggers:   make([]TriggerEvent, 0, 2),
		Tumbles:    make([]TumbleEvent, 0, 16),
		Fills:      make([]FillEvent, 0, 16),

		CellsFlat: make([]int16, 0, size*4),
		MoveFlat:  make([]grid.Move, 0, size*4),
		FillFlat:  make([]grid.Fill, 0, size*4),
	}
	r.Reset()
	return r
}

// Reset 重置累積資料，保留已配置的內部切片容量。
// GameName / GameID 不變
func (r *RoundResult) Reset() {
	r.Bet = 0
	r.FreeSpin = false

	r.TotalPay = 0
	r.PayoutMult = 0
	r.TumbleCount = 0
	r.MaxMult = 1

	r.FreeSpinsTriggered = 0
	r.FreeSpinsRemaining = 0

	r.JackpotTier = ""
	r.JackpotAmount = 0

	r.InitSyms = r.InitSyms[:0]
	r.FinalSyms = r.FinalSyms[:0]
	r.FinalMults = r.FinalMults[:0]

	r.ServerSeedHash = ""
	r.ClientSeed = ""
	r.Nonce = 0

	r.Events = r.Events[:0]
	r.Wins = r.Wins[:0]
	r.Upgrades = r.Upgrades[:0]
	r.Bursts = r.Bursts[:0]
	r.BurstCells = r.BurstCells[:0]
	r.Triggers = r.Triggers[:0]
	r.Tumbles = r.Tumbles[:0]
	r.Fills = r.Fills[:0]

	r.CellsFlat = r.CellsFlat[:0]
	r.MoveFlat = r.MoveFlat[:0]
	r.FillFlat = r.FillFlat[:0]

	r.tmpBurst = BurstEvent{}
	r.burstOpen = false
}

// ============================================================
// ** 以下事件落地方法 **
// ============================================================

// AddReveal 落地開盤事件，盤面本體讀 InitSyms
func (r *RoundResult) AddReveal() {
	r.Events = append(r.Events, Event{Kind: EvReveal, Idx: -1})
}

// AddWin 落地一組 cluster 派彩，cells 內容會複製進 CellsFlat
func (r *RoundResult) AddWin(sym int16, mult int, basePay float64, amount float64, cells []int16) {
	start := int32(len(r.CellsFlat))
	r.CellsFlat = append(r.CellsFlat, cells...)

	r.Wins = append(r.Wins, WinEvent{
		Sym:        sym,
		Mult:       mult,
		BasePay:    basePay,
		Amount:     amount,
		CellsStart: start,
		CellsEnd:   int32(len(r.CellsFlat)),
	})
	r.Events = append(r.Events, Event{Kind: EvWin, Idx: int32(len(r.Wins) - 1)})
	r.bumpMax(mult)
}

// AddUpgrade 落地單格倍數升級
func (r *RoundResult) AddUpgrade(cell int16, val int) {
	r.Upgrades = append(r.Upgrades, UpgradeEvent{Cell: cell, Val: val})
	r.Events = append(r.Events, Event{Kind: EvMultUpgrade, Idx: int32(len(r.Upgrades) - 1)})
	r.bumpMax(val)
}

// BeginBurst 開始記錄一顆 Wild 的爆裂，之後以 AddBurstCell 追加明細，
// EndBurst 落地。不可巢狀
func (r *RoundResult) BeginBurst(wildCell int16, factor int) {
	if r.burstOpen {
		panic("burst already open, EndBurst must land the previous one")
	}
	r.burstOpen = true
	r.tmpBurst = BurstEvent{
		WildCell:    wildCell,
		Factor:      factor,
		DetailStart: int32(len(r.BurstCells)),
	}
}

// AddBurstCell 追加爆裂影響的單格明細
func (r *RoundResult) AddBurstCell(cell int16, oldMult int, newMult int) {
	if !r.burstOpen {
		panic("no open burst")
	}
	r.BurstCells = append(r.BurstCells, BurstCell{Cell: cell, Old: oldMult, New: newMult})
	if newMult > r.tmpBurst.MaxAfter {
		r.tmpBurst.MaxAfter = newMult
	}
}

// EndBurst 落地爆裂事件
func (r *RoundResult) EndBurst() {
	if !r.burstOpen {
		panic("no open burst")
	}
	r.burstOpen = false
	r.tmpBurst.DetailEnd = int32(len(r.BurstCells))

	r.Bursts = append(r.Bursts, r.tmpBurst)
	r.Events = append(r.Events, Event{Kind: EvWildBurst, Idx: int32(len(r.Bursts) - 1)})
	r.bumpMax(r.tmpBurst.MaxAfter)
}

// AddTumble 落地一次掉落事件，範圍為 MoveFlat[moveStart:] 的新增部分。
// 慣用寫法：先記下 len(MoveFlat)，讓 Grid.Gravity 直接追加，再呼叫本方法
func (r *RoundResult) AddTumble(moveStart int) {
	r.Tumbles = append(r.Tumbles, TumbleEvent{
		MoveStart: int32(moveStart),
		MoveEnd:   int32(len(r.MoveFlat)),
	})
	r.Events = append(r.Events, Event{Kind: EvTumble, Idx: int32(len(r.Tumbles) - 1)})
}

// AddFill 落地一次補盤事件，範圍為 FillFlat[fillStart:] 的新增部分
func (r *RoundResult) AddFill(fillStart int) {
	r.Fills = append(r.Fills, FillEvent{
		FillStart: int32(fillStart),
		FillEnd:   int32(len(r.FillFlat)),
	})
	r.Events = append(r.Events, Event{Kind: EvFill, Idx: int32(len(r.Fills) - 1)})
}

// AddTrigger 落地免費遊戲觸發事件，cells 為 Scatter 所在格子
func (r *RoundResult) AddTrigger(count int, awarded int, retrigger bool, cells []int16) {
	start := int32(len(r.CellsFlat))
	r.CellsFlat = append(r.CellsFlat, cells...)

	r.Triggers = append(r.Triggers, TriggerEvent{
		Count:      count,
		Awarded:    awarded,
		Retrigger:  retrigger,
		CellsStart: start,
		CellsEnd:   int32(len(r.CellsFlat)),
	})
	r.Events = append(r.Events, Event{Kind: EvFreeSpins, Idx: int32(len(r.Triggers) - 1)})
}

// AddJackpot 落地 Jackpot 事件，金額與層級同時記在本體欄位
func (r *RoundResult) AddJackpot(tier string, amount float64) {
	r.JackpotTier = tier
	r.JackpotAmount = amount
	r.Events = append(r.Events, Event{Kind: EvJackpot, Idx: -1})
}

// SetInitial 快照開盤符號層 (複製)
func (r *RoundResult) SetInitial(syms []int16) {
	r.InitSyms = append(r.InitSyms[:0], syms...)
}

// SetFinal 快照終盤符號層與倍數層 (複製)
func (r *RoundResult) SetFinal(syms []int16, mults []int) {
	r.FinalSyms = append(r.FinalSyms[:0], syms...)
	r.FinalMults = append(r.FinalMults[:0], mults...)
}

// ============================================================
// ** 以下取值方法 **
// ============================================================

// Cells 取出 CellsFlat 的一段 (請勿修改返回值)
func (r *RoundResult) Cells(start int32, end int32) []int16 {
	return r.CellsFlat[start:end]
}

// MovesOf 取出掉落事件的移動列表 (請勿修改返回值)
func (r *RoundResult) MovesOf(e TumbleEvent) []grid.Move {
	return r.MoveFlat[e.MoveStart:e.MoveEnd]
}

// FillsOf 取出補盤事件的新格列表 (請勿修改返回值)
func (r *RoundResult) FillsOf(e FillEvent) []grid.Fill {
	return r.FillFlat[e.FillStart:e.FillEnd]
}

// BurstCellsOf 取出爆裂事件的明細 (請勿修改返回值)
func (r *RoundResult) BurstCellsOf(e BurstEvent) []BurstCell {
	return r.BurstCells[e.DetailStart:e.DetailEnd]
}

// Brief 單局結果的彙總欄位。批次審計在歸還結果緩衝前複製一份，
// 不需為每筆紀錄組裝對外結果
type Brief struct {
	TotalPay    float64
	PayoutMult  float64
	TumbleCount int
	MaxMult     int

	FreeSpinsTriggered int

	JackpotTier   string
	JackpotAmount float64
}

// Brief 回傳彙總欄位複本
func (r *RoundResult) Brief() Brief {
	return Brief{
		TotalPay:           r.TotalPay,
		PayoutMult:         r.PayoutMult,
		TumbleCount:        r.TumbleCount,
		MaxMult:            r.MaxMult,
		FreeSpinsTriggered: r.FreeSpinsTriggered,
		JackpotTier:        r.JackpotTier,
		JackpotAmount:      r.JackpotAmount,
	}
}

func (r *RoundResult) bumpMax(v int) {
	if v > r.MaxMult {
		r.MaxMult = v
	}
}
