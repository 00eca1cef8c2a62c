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

package fairlab

import (
	"context"
	"io"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/zintix-labs/fairlab/errs"
	"github.com/zintix-labs/fairlab/recorder"
	"github.com/zintix-labs/fairlab/sdk/buf"
	"github.com/zintix-labs/fairlab/stats"
)

// PayoutTolerance 重算派彩與存檔宣稱值的允許誤差。
// 派彩是浮點倍數累加的結果，跨平台重算允許到千分之一。
const PayoutTolerance = 0.001

// VerifyOutcome 單筆重放的核對結果。
type VerifyOutcome struct {
	Match    bool      `json:"match"`
	Claimed  float64   `json:"claimed_payout_multiplier"`
	Computed float64   `json:"computed_payout_multiplier"`
	Brief    buf.Brief `json:"-"`
}

// Verifier 批次重放驗證器。
//
// 從存檔逐筆還原 SpinRequest，把整局重新跑一遍，核對重算派彩與
// 存檔宣稱的派彩倍數。引擎無亂數狀態，所以任何一台引擎重放同一筆
// 紀錄都得到同一結果，worker 的分派順序不影響驗證結論。
type Verifier struct {
	pool    *EnginePool
	workers int
	log     *slog.Logger
}

func newVerifier(pool *EnginePool, workers int) *Verifier {
	return &Verifier{
		pool:    pool,
		workers: max(1, workers),
		log:     slog.Default(),
	}
}

// SetLogger 替換驗證器的 logger（預設 slog.Default）。
func (v *Verifier) SetLogger(l *slog.Logger) {
	if l != nil {
		v.log = l
	}
}

// Pool 回傳底層引擎池，供觀測 Metrics 使用。
func (v *Verifier) Pool() *EnginePool {
	return v.pool
}

// Close 關閉底層引擎池。
func (v *Verifier) Close() {
	v.pool.Close()
}

// VerifyRound 重放單筆紀錄並核對派彩。
func (v *Verifier) VerifyRound(ctx context.Context, rec *recorder.RoundRecord) (VerifyOutcome, error) {
	if rec == nil {
		return VerifyOutcome{}, errs.Inputf("nil round record")
	}
	brief, err := v.pool.SpinBrief(ctx, rec.SpinRequest())
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

// VerifyArchive 重放整份存檔（zstd 壓縮的紀錄串流），平行核對後
// 回傳審計報告與用時。
//
// 紀錄先全數讀入再分派：存檔量級是百萬筆彙總紀錄（非完整事件流），
// 一次讀入可直接取得進度條總量，也避免 reader 成為併發瓶頸。
func (v *Verifier) VerifyArchive(ctx context.Context, src io.Reader, showpb bool) (*stats.AuditReport, time.Duration, error) {
	rr, err := recorder.NewRoundReader(src)
	if err != nil {
		return nil, 0, err
	}
	recs, err := rr.ReadAll()
	rr.Close()
	if err != nil {
		return nil, 0, err
	}
	if len(recs) == 0 {
		return nil, 0, errs.NewWarn("archive has no records")
	}

	workers := v.workers
	if workers > len(recs) {
		workers = len(recs)
	}

	// worker 各自持有計數器，結束後合併，避免熱路徑搶鎖
	rBuf := make([]*stats.AuditRecorder, workers)
	for i := range rBuf {
		rBuf[i] = stats.NewAuditRecorder(v.pool.gameName, v.pool.gameId)
	}

	bar := pb.StartNew(len(recs))
	if !showpb {
		bar.SetWriter(io.Discard)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan *recorder.RoundRecord, 2048)

	var firstErr error
	var errOnce sync.Once
	fail := func(e error) {
		errOnce.Do(func() {
			firstErr = e
			cancel()
		})
	}

	v.log.Debug("verify archive", "game", v.pool.gameName, "records", len(recs), "workers", workers)

	wg := new(sync.WaitGroup)
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go verify(wg, runCtx, v.pool, jobs, rBuf[w], bar, v.log, fail)
	}

	// 塞進紀錄，開始重放
feed:
	for i := range recs {
		select {
		case <-runCtx.Done():
			break feed
		case jobs <- &recs[i]:
		}
	}
	close(jobs) // 紀錄送完關閉通道 通知所有 worker 不會再有新資料
	wg.Wait()   // 等待 worker 都執行完任務
	used := time.Since(bar.StartTime())
	bar.Finish()

	if firstErr != nil {
		return nil, used, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, used, errs.NewWarn("verify canceled/timeout: " + err.Error())
	}

	master := rBuf[0]
	for _, r := range rBuf[1:] {
		master.Merge(r)
	}
	return master.Done(), used, nil
}

func verify(wg *sync.WaitGroup, ctx context.Context, pool *EnginePool, jobs chan *recorder.RoundRecord, st *stats.AuditRecorder, bar *pb.ProgressBar, log *slog.Logger, fail func(error)) {
	defer wg.Done()
	for rec := range jobs { // rec := <- jobs
		brief, err := pool.SpinBrief(ctx, rec.SpinRequest())
		if err != nil {
			if isFatalErr(err) || ctx.Err() != nil {
				// 引擎狀態不可信或已取消：整批中止
				fail(err)
				return
			}
			// 請求面錯誤（壞紀錄）不中止整批，計為不符
			log.Warn("round replay rejected, counted as mismatch", "nonce", rec.Nonce, "err", err)
			st.Record(rec.Bet, buf.Brief{}, false)
			bar.Increment()
			continue
		}
		st.Record(rec.Bet, brief, payoutMatch(brief.PayoutMult, rec.ClaimedPayoutMult))
		bar.Increment()
	}
}

func payoutMatch(computed, claimed float64) bool {
	return math.Abs(computed-claimed) <= PayoutTolerance
}
