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

package stats_test

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/zintix-labs/fairlab/sdk/buf"
	"github.com/zintix-labs/fairlab/stats"
)

func brief(pay, bet float64, tumbles int) buf.Brief {
	mult := 0.0
	if bet > 0 {
		mult = pay / bet
	}
	return buf.Brief{
		TotalPay:    pay,
		PayoutMult:  mult,
		TumbleCount: tumbles,
		MaxMult:     1,
	}
}

func TestBucketIndex(t *testing.T) {
	cases := []struct {
		mult float64
		want int
	}{
		{0, 0},
		{0.4, 1},
		{1, 2},
		{1.99, 2},
		{2, 3},
		{9999, 12},
		{10000, 13},
		{250000, 13},
	}
	for _, c := range cases {
		if got := stats.BucketIndex(c.mult); got != c.want {
			t.Fatalf("BucketIndex(%v) got %d want %d", c.mult, got, c.want)
		}
	}
	if len(stats.BucketLabels()) != stats.BucketCount() {
		t.Fatalf("label count mismatch")
	}
}

func TestAuditRecorderCoreMetrics(t *testing.T) {
	bet := 2.0
	rec := stats.NewAuditRecorder("audit", 9001)
	rec.Record(bet, brief(2.0, bet, 1), true)
	rec.Record(bet, brief(4.0, bet, 3), true)
	rec.Record(bet, brief(0, bet, 0), true)

	rep := rec.Done()

	wantRTP := (2.0 + 4.0) / (3 * bet)
	if got := rep.Summary.RTP; math.Abs(got-wantRTP) > 1e-12 {
		t.Fatalf("RTP got %.12f want %.12f", got, wantRTP)
	}

	// 倍數樣本 {1, 2, 0} 的樣本標準差
	mean := (1.0 + 2.0 + 0.0) / 3
	variance := ((1-mean)*(1-mean) + (2-mean)*(2-mean) + (0-mean)*(0-mean)) / 2
	wantStd := math.Sqrt(variance)
	if got := rep.Summary.Std; math.Abs(got-wantStd) > 1e-12 {
		t.Fatalf("Std got %.12f want %.12f", got, wantStd)
	}

	if rep.Summary.NoWinRounds != 1 {
		t.Fatalf("NoWinRounds got %d want 1", rep.Summary.NoWinRounds)
	}
	wantHit := 2.0 / 3.0
	if math.Abs(rep.Summary.HitRate-wantHit) > 1e-12 {
		t.Fatalf("HitRate got %.12f want %.12f", rep.Summary.HitRate, wantHit)
	}
	if rep.Summary.HitRateCI.Lo >= wantHit || rep.Summary.HitRateCI.Hi <= wantHit {
		t.Fatalf("HitRate CI [%f,%f] does not cover %f", rep.Summary.HitRateCI.Lo, rep.Summary.HitRateCI.Hi, wantHit)
	}
	if rep.Summary.RtpCI.Lo > wantRTP || rep.Summary.RtpCI.Hi < wantRTP {
		t.Fatalf("RTP CI [%f,%f] does not cover %f", rep.Summary.RtpCI.Lo, rep.Summary.RtpCI.Hi, wantRTP)
	}

	if rep.Summary.MaxTumbles != 3 {
		t.Fatalf("MaxTumbles got %d want 3", rep.Summary.MaxTumbles)
	}
	if rep.Summary.MaxPayoutMult != 2.0 {
		t.Fatalf("MaxPayoutMult got %f want 2", rep.Summary.MaxPayoutMult)
	}

	totalRounds := 0
	for _, c := range rep.Dist.PayoutCollect {
		totalRounds += c
	}
	if totalRounds != rep.Summary.Rounds {
		t.Fatalf("distribution total %d != rounds %d", totalRounds, rep.Summary.Rounds)
	}
	depthRounds := 0
	for _, c := range rep.Dist.TumbleDepth {
		depthRounds += c
	}
	if depthRounds != rep.Summary.Rounds {
		t.Fatalf("depth total %d != rounds %d", depthRounds, rep.Summary.Rounds)
	}
}

func TestAuditRecorderMismatchAndJackpot(t *testing.T) {
	rec := stats.NewAuditRecorder("audit", 9001)

	b := brief(100, 1, 5)
	b.JackpotTier = "grand"
	b.JackpotAmount = 50
	b.FreeSpinsTriggered = 8
	rec.Record(1, b, true)
	rec.Record(1, brief(0, 1, 0), false)

	rep := rec.Done()
	if rep.Summary.Verified != 1 || rep.Summary.Mismatched != 1 {
		t.Fatalf("verify counts got %d/%d want 1/1", rep.Summary.Verified, rep.Summary.Mismatched)
	}
	if rep.Summary.Jackpots["grand"] != 1 {
		t.Fatalf("jackpot count got %d want 1", rep.Summary.Jackpots["grand"])
	}
	if rep.Summary.Triggers != 1 || rep.Summary.TriggerRate != 0.5 {
		t.Fatalf("trigger got %d rate %f", rep.Summary.Triggers, rep.Summary.TriggerRate)
	}
}

func TestAuditRecorderMerge(t *testing.T) {
	a := stats.NewAuditRecorder("audit", 9001)
	b := stats.NewAuditRecorder("audit", 9001)
	for i := 0; i < 10; i++ {
		a.Record(1, brief(float64(i%3), 1, i%4), true)
		b.Record(1, brief(float64((i+1)%3), 1, (i+1)%4), true)
	}

	whole := stats.NewAuditRecorder("audit", 9001)
	for i := 0; i < 10; i++ {
		whole.Record(1, brief(float64(i%3), 1, i%4), true)
	}
	for i := 0; i < 10; i++ {
		whole.Record(1, brief(float64((i+1)%3), 1, (i+1)%4), true)
	}

	a.Merge(b)
	got := a.Done()
	want := whole.Done()

	if got.Summary.Rounds != want.Summary.Rounds ||
		got.Summary.TotalPay != want.Summary.TotalPay ||
		math.Abs(got.Summary.Std-want.Summary.Std) > 1e-12 {
		t.Fatalf("merged summary differs: %+v vs %+v", got.Summary, want.Summary)
	}
	for i := range got.Dist.PayoutCollect {
		if got.Dist.PayoutCollect[i] != want.Dist.PayoutCollect[i] {
			t.Fatalf("bucket %d: merged %d want %d", i, got.Dist.PayoutCollect[i], want.Dist.PayoutCollect[i])
		}
	}
}

func TestRenderers(t *testing.T) {
	rec := stats.NewAuditRecorder("render", 9002)
	rec.Record(1, brief(3, 1, 2), true)
	rep := rec.Done()

	var jb bytes.Buffer
	if err := rep.WriteWith(&jb, &stats.JsonAuditRender{}); err != nil {
		t.Fatalf("json render: %v", err)
	}
	var round stats.AuditReport
	if err := json.Unmarshal(jb.Bytes(), &round); err != nil {
		t.Fatalf("json parse-back: %v", err)
	}
	if round.Summary.GameName != "render" || round.Summary.Rounds != 1 {
		t.Fatalf("json round-trip lost summary: %+v", round.Summary)
	}

	var yb bytes.Buffer
	if err := rep.WriteWith(&yb, &stats.YAMLAuditRender{}); err != nil {
		t.Fatalf("yaml render: %v", err)
	}
	// 一維陣列要以 flow style 輸出
	if !strings.Contains(yb.String(), "[") {
		t.Fatalf("yaml output missing flow-style lists:\n%s", yb.String())
	}
}
