package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/zintix-labs/fairlab/gamespec"
	"github.com/zintix-labs/fairlab/sdk/buf"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var lang language.Tag = language.English

// 掉落深度直方圖的上限，超過者併入最後一格
const tumbleDepthCap = 32

// 信賴區間
type CI struct {
	Lo float64 `json:"Lo"`
	Hi float64 `json:"Hi"`
}

// AuditReport 批次驗證報告
type AuditReport struct {
	Summary *AuditSummary `json:"Summary"`
	Dist    *AuditDist    `json:"Dist"`
}

type AuditSummary struct {
	GameName      string         `json:"GameName"`
	GameId        gamespec.GID   `json:"GameId"`
	Rounds        int            `json:"Rounds"`
	Verified      int            `json:"Verified"`
	Mismatched    int            `json:"Mismatched"`
	TotalBet      float64        `json:"TotalBet"`
	TotalPay      float64        `json:"TotalPay"`
	RTP           float64        `json:"RTP"`
	RtpCI         CI             `json:"RtpCI"`
	Std           float64        `json:"Std"`
	Cv            float64        `json:"Cv"`
	NoWinRounds   int            `json:"NoWinRounds"`
	HitRate       float64        `json:"HitRate"`
	HitRateCI     CI             `json:"HitRateCI"`
	Triggers      int            `json:"Triggers"`
	TriggerRate   float64        `json:"TriggerRate"`
	Jackpots      map[string]int `json:"Jackpots,omitempty"`
	MaxPayoutMult float64        `json:"MaxPayoutMult"`
	MaxTumbles    int            `json:"MaxTumbles"`
}

// AuditDist 派彩倍數與掉落深度的區間落點統計
type AuditDist struct {
	PayoutBucket  []string  `json:"PayoutBucket"`
	PayoutCollect []int     `json:"PayoutCollect"`
	PayoutDist    []float64 `json:"PayoutDist"`
	TumbleDepth   []int     `json:"TumbleDepth"`
	TumbleDist    []float64 `json:"TumbleDist"`
}

// AuditRecorder 批次驗證的累積計數器。
//
// 每個 worker 持有一個，逐局 Record，批次結束後 Merge 到主計數器，
// 最後 Done 一次性換算統計量。倍數的平方和在紀錄時同步累積，
// 避免收尾時重掃整批紀錄
type AuditRecorder struct {
	gameName string
	gameId   gamespec.GID

	rounds     int
	verified   int
	mismatched int

	totalBet float64
	totalPay float64

	sumMult   float64
	sumMultSq float64

	noWin    int
	triggers int
	jackpots map[string]int

	maxPayoutMult float64
	maxTumbles    int

	payoutCollect []int
	tumbleDepth   []int
}

func NewAuditRecorder(name string, gid gamespec.GID) *AuditRecorder {
	return &AuditRecorder{
		gameName:      name,
		gameId:        gid,
		jackpots:      make(map[string]int),
		payoutCollect: make([]int, BucketCount()),
		tumbleDepth:   make([]int, tumbleDepthCap+1),
	}
}

// Record 累積一局的彙總結果。ok 表示重算派彩與存檔宣稱值相符
func (a *AuditRecorder) Record(bet float64, b buf.Brief, ok bool) {
	a.rounds++
	if ok {
		a.verified++
	} else {
		a.mismatched++
	}

	a.totalBet += bet
	a.totalPay += b.TotalPay

	a.sumMult += b.PayoutMult
	a.sumMultSq += b.PayoutMult * b.PayoutMult

	if b.TotalPay <= 0 {
		a.noWin++
	}
	if b.FreeSpinsTriggered > 0 {
		a.triggers++
	}
	if b.JackpotTier != "" {
		a.jackpots[b.JackpotTier]++
	}

	if b.PayoutMult > a.maxPayoutMult {
		a.maxPayoutMult = b.PayoutMult
	}
	if b.TumbleCount > a.maxTumbles {
		a.maxTumbles = b.TumbleCount
	}

	a.payoutCollect[BucketIndex(b.PayoutMult)]++
	depth := b.TumbleCount
	if depth > tumbleDepthCap {
		depth = tumbleDepthCap
	}
	a.tumbleDepth[depth]++
}

// Merge 把另一個計數器併入本計數器
func (a *AuditRecorder) Merge(o *AuditRecorder) {
	a.rounds += o.rounds
	a.verified += o.verified
	a.mismatched += o.mismatched

	a.totalBet += o.totalBet
	a.totalPay += o.totalPay

	a.sumMult += o.sumMult
	a.sumMultSq += o.sumMultSq

	a.noWin += o.noWin
	a.triggers += o.triggers
	for tier, n := range o.jackpots {
		a.jackpots[tier] += n
	}

	if o.maxPayoutMult > a.maxPayoutMult {
		a.maxPayoutMult = o.maxPayoutMult
	}
	if o.maxTumbles > a.maxTumbles {
		a.maxTumbles = o.maxTumbles
	}

	for i, n := range o.payoutCollect {
		a.payoutCollect[i] += n
	}
	for i, n := range o.tumbleDepth {
		a.tumbleDepth[i] += n
	}
}

// Rounds 回傳已累積的局數
func (a *AuditRecorder) Rounds() int {
	return a.rounds
}

// Done 將累積計數轉換為最終統計結果。
//
// 統計過程因為性能原因只做加總，所以請在批次結束後
// 使用 Done 一次性計算 RTP、信賴區間與分布比例
func (a *AuditRecorder) Done() *AuditReport {
	sum := &AuditSummary{
		GameName:      a.gameName,
		GameId:        a.gameId,
		Rounds:        a.rounds,
		Verified:      a.verified,
		Mismatched:    a.mismatched,
		TotalBet:      a.totalBet,
		TotalPay:      a.totalPay,
		NoWinRounds:   a.noWin,
		Triggers:      a.triggers,
		MaxPayoutMult: a.maxPayoutMult,
		MaxTumbles:    a.maxTumbles,
	}
	if len(a.jackpots) > 0 {
		sum.Jackpots = a.jackpots
	}

	sum.RTP = a.rtp()
	sum.Std = a.std()
	if sum.RTP > 0 {
		sum.Cv = sum.Std / sum.RTP
	}
	sum.RtpCI = normalCI(sum.RTP, sum.Std, a.rounds, 0.95)

	if a.rounds > 0 {
		hits := a.rounds - a.noWin
		sum.HitRate = float64(hits) / float64(a.rounds)
		_, sum.HitRateCI = proportionCICP(hits, a.rounds, 0.95)
		sum.TriggerRate = float64(a.triggers) / float64(a.rounds)
	}

	dist := &AuditDist{
		PayoutBucket:  BucketLabels(),
		PayoutCollect: append([]int(nil), a.payoutCollect...),
		PayoutDist:    ratios(a.payoutCollect, a.rounds),
		TumbleDepth:   append([]int(nil), a.tumbleDepth...),
		TumbleDist:    ratios(a.tumbleDepth, a.rounds),
	}

	return &AuditReport{Summary: sum, Dist: dist}
}

// rtp 回傳整體 RTP（總派彩 / 總押注）
func (a *AuditRecorder) rtp() float64 {
	if a.totalBet <= 0 {
		return 0
	}
	return a.totalPay / a.totalBet
}

// std 回傳單局派彩倍數的標準差
func (a *AuditRecorder) std() float64 {
	if a.rounds < 2 {
		return 0
	}
	rounds := float64(a.rounds)

	multPow := a.sumMult * a.sumMult
	variance := (a.sumMultSq - multPow/rounds) / (rounds - 1)

	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance)
}

func ratios(counts []int, total int) []float64 {
	out := make([]float64, len(counts))
	if total == 0 {
		return out
	}
	for i, n := range counts {
		out[i] = float64(n) / float64(total)
	}
	return out
}

// ============================================================
// ** 公開方法 **
// ============================================================

func (r *AuditReport) WriteWith(w io.Writer, rep AuditReportRender) error {
	return rep.Write(w, r)
}

func (r *AuditReport) StdOut(ut time.Duration) {
	formatDuration(ut, r.Summary.Rounds)
	sk, sm := r.fmtBasic()
	str := fmtTable(r.Summary.GameName, sk, sm)
	fmt.Println(str)
}

// ============================================================
// ** 內部方法 **
// ============================================================

func formatDuration(d time.Duration, spins int) {
	p := message.NewPrinter(lang)
	if d < 0 {
		d = -d
	}
	sec := d.Seconds()
	if sec <= 0 {
		sec = 1e-9
	}
	sps := int(float64(spins) / sec)
	if sec < 60.0 {
		p.Printf("used: %.2f seconds\nsps : %d spins/sec\n", sec, sps)
		return
	}
	s := int(d.Seconds()) % 60
	m := int(d.Minutes()) % 60
	h := int(d.Hours())
	if h == 0 {
		s = s % 60
		p.Printf("used: %dm %ds\nsps : %d spins/sec\n", m, s, sps)
		return
	}
	p.Printf("used: %dh:%dm:%ds\nsps : %d spins/sec\n", h, m, s, sps)
}

// StdOut

func (r *AuditReport) fmtBasic() ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	basic := map[string]string{
		"Game Name":    p.Sprintf("%s", r.Summary.GameName),
		"Game ID":      fmt.Sprintf("%d", r.Summary.GameId),
		"Total Rounds": p.Sprintf("%d", r.Summary.Rounds),
		"Verified":     p.Sprintf("%d", r.Summary.Verified),
		"Mismatched":   p.Sprintf("%d", r.Summary.Mismatched),
		"Total RTP":    p.Sprintf("%.2f %%", 100.0*r.Summary.RTP),
		"RTP 95% CI":   p.Sprintf("[%.2f%%,%.2f%%]", 100.0*r.Summary.RtpCI.Lo, 100.0*r.Summary.RtpCI.Hi),
		"Total Bet":    p.Sprintf("%.2f", r.Summary.TotalBet),
		"Total Pay":    p.Sprintf("%.2f", r.Summary.TotalPay),
		"Hit Rate":     p.Sprintf("%.2f %%", 100.0*r.Summary.HitRate),
		"NoWin Rounds": p.Sprintf("%d", r.Summary.NoWinRounds),
		"Triggers":     p.Sprintf("%d", r.Summary.Triggers),
		"Max Payout":   p.Sprintf("%.2f x", r.Summary.MaxPayoutMult),
		"Max Tumbles":  p.Sprintf("%d", r.Summary.MaxTumbles),
		"STD":          p.Sprintf("%.3f", r.Summary.Std),
		"CV":           p.Sprintf("%.3f", r.Summary.Cv),
	}
	keys := []string{"Game Name", "Game ID", "Total Rounds", "Verified", "Mismatched", "Total RTP", "RTP 95% CI", "Total Bet", "Total Pay", "Hit Rate", "NoWin Rounds", "Triggers", "Max Payout", "Max Tumbles", "STD", "CV"}
	return keys, basic
}

func fmtTable(title string, keys []string, msg map[string]string) string {
	p := message.NewPrinter(lang)
	maxKeyLen := 0
	maxValLen := 0
	for k, m := range msg {
		if w := runewidth.StringWidth(k); w > maxKeyLen {
			maxKeyLen = w
		}
		if w := runewidth.StringWidth(m); w > maxValLen {
			maxValLen = w
		}
	}
	maxKeyLen += 2
	maxValLen += 2

	divider := "+" + strings.Repeat("-", maxKeyLen) + "+" + strings.Repeat("-", maxValLen) + "+\n"
	top := "+" + strings.Repeat("-", maxKeyLen+1+maxValLen) + "+\n"

	totalInner := maxKeyLen + maxValLen + 1
	titleW := runewidth.StringWidth(title)

	left := (totalInner - titleW) / 2
	right := totalInner - titleW - left

	fmtStr := top
	fmtStr += p.Sprintf("|%s%s%s|\n", blank(left), title, blank(right))
	fmtStr += divider
	for _, k := range keys {
		fmtStr += p.Sprintf("| %s%s | %s%s |\n", k, blank(maxKeyLen-2-runewidth.StringWidth(k)), msg[k], blank(maxValLen-2-runewidth.StringWidth(msg[k])))
	}
	fmtStr += divider

	return fmtStr
}

func blank(w int) string {
	if w < 1 {
		return ""
	}
	return strings.Repeat(" ", w)
}
