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

package errs

import (
	"errors"
	"fmt"
)

// ErrLevel : Error 分級，使最上層理解問題嚴重程度
type ErrLevel uint8

const (
	None ErrLevel = iota
	Fatal
	Warn
	Log
)

var errLvMap = map[ErrLevel]string{
	None:  "",
	Fatal: "fatal",
	Warn:  "warn",
	Log:   "log",
}

func ErrLv(errlv ErrLevel) string {
	if str, ok := errLvMap[errlv]; ok {
		return str
	}
	return ""
}

// Kind : 錯誤類別。賭局計算只會失敗在三種情況：
// 設定錯（KindConfig）、請求錯（KindInput）、消除迴圈超限（KindIterLimit）。
// 錯誤的「成功結果」比中止更危險，所以三類一律直接中止該次計算，不補預設值。
type Kind uint8

const (
	KindNone Kind = iota
	KindConfig
	KindInput
	KindIterLimit
)

var kindMap = map[Kind]string{
	KindNone:      "",
	KindConfig:    "config",
	KindInput:     "input",
	KindIterLimit: "iter_limit",
}

func KindStr(k Kind) string {
	if str, ok := kindMap[k]; ok {
		return str
	}
	return ""
}

// E 是統一的錯誤型別。
// Message 為經過樣板格式化後的主訊息；Extra 為呼叫端可追加的額外上下文；
// Cause 可串接下層錯誤（wrap）；ErrLv 表示嚴重度；Kind 表示類別（供上層分流）。
type E struct {
	Message string
	Extra   string
	Cause   error
	ErrLv   ErrLevel
	Kind    Kind
}

// Error 實作 error 介面並回傳格式化後的錯誤訊息。
func (e *E) Error() string {
	base := fmt.Sprintf("errlv=%s %s", ErrLv(e.ErrLv), e.Message)
	if e.Kind != KindNone {
		base = fmt.Sprintf("errlv=%s kind=%s %s", ErrLv(e.ErrLv), KindStr(e.Kind), e.Message)
	}
	if e.Extra != "" {
		base += " | extra: " + e.Extra
	}
	if e.Cause != nil {
		base += fmt.Sprintf(" (cause: %v)", e.Cause)
	}
	return base
}

// Unwrap 讓 errors.Is / errors.As 能夠向下展開。
func (e *E) Unwrap() error { return e.Cause }

// New 依錯誤分級與訊息建立錯誤
func New(errLv ErrLevel, msg string) *E {
	return &E{Message: msg, ErrLv: errLv}
}

func NewFatal(msg string) *E {
	return &E{Message: msg, ErrLv: Fatal}
}

func NewWarn(msg string) *E {
	return &E{Message: msg, ErrLv: Warn}
}

func NewLog(msg string) *E {
	return &E{Message: msg, ErrLv: Log}
}

func Fatalf(format string, a ...any) *E {
	return NewFatal(fmt.Sprintf(format, a...))
}

func Warnf(format string, a ...any) *E {
	return NewWarn(fmt.Sprintf(format, a...))
}

func Logf(format string, a ...any) *E {
	return NewLog(fmt.Sprintf(format, a...))
}

// NewConfig 建立設定錯誤：零權重表、缺賠付列、盤面尺寸不符等。
// 設定錯誤代表機台不可建立或結果不可信，一律 Fatal。
func NewConfig(msg string) *E {
	return &E{Message: msg, ErrLv: Fatal, Kind: KindConfig}
}

func Configf(format string, a ...any) *E {
	return NewConfig(fmt.Sprintf(format, a...))
}

// NewInput 建立請求錯誤：負押注、負序號、強制位置越界等。
// 請求錯誤不代表機台損壞，分級為 Warn，機台可以繼續服務下一個請求。
func NewInput(msg string) *E {
	return &E{Message: msg, ErrLv: Warn, Kind: KindInput}
}

func Inputf(format string, a ...any) *E {
	return NewInput(fmt.Sprintf(format, a...))
}

// NewIterLimit 建立消除迴圈超限錯誤。
// 超限通常代表權重表退化（單一圖標壟斷盤面），結果不可信，一律 Fatal。
func NewIterLimit(msg string) *E {
	return &E{Message: msg, ErrLv: Fatal, Kind: KindIterLimit}
}

// KindOf 回傳錯誤的類別；非本包錯誤回傳 KindNone。
func KindOf(err error) Kind {
	var e *E
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindNone
}

func IsConfig(err error) bool    { return KindOf(err) == KindConfig }
func IsInput(err error) bool     { return KindOf(err) == KindInput }
func IsIterLimit(err error) bool { return KindOf(err) == KindIterLimit }

// NewWithExtra 與 New 相同，但可附加額外上下文字串（不影響主訊息）。
func NewWithExtra(errLv ErrLevel, msg string, extra string) *E {
	e := New(errLv, msg)
	e.Extra = extra
	return e
}

// Wrap 使用給定的訊息包裝底層錯誤，建立一個 *E。
//
// 規則：
//   - 若 cause 已經是 *E，則沿用其 ErrLv 與 Kind（保持原本嚴重度與類別）。
//   - 若 cause 不是本包定義的 *E（多半是標準庫或三方依賴錯誤），則 ErrLv 一律視為 Fatal。
//
// 建議使用方式：
//   - 若你已判斷該錯誤是「可預期且可處理」的情境，請直接建立一個 *E
//     （使用 New / NewWithExtra 並自行指定 ErrLv），而不要對其呼叫 Wrap。
func Wrap(cause error, msg string) *E {
	var e *E
	errLv := Fatal
	kind := KindNone
	if errors.As(cause, &e) {
		errLv = e.ErrLv
		kind = e.Kind
	}
	r := New(errLv, msg)
	r.Kind = kind
	r.Cause = cause
	return r
}

// WrapWithExtra 使用給定的訊息與上下文包裝底層錯誤，建立一個 *E。
// ErrLv 與 Kind 的沿用規則同 Wrap。
func WrapWithExtra(cause error, msg string, extra string) *E {
	r := Wrap(cause, msg)
	r.Extra = extra
	return r
}

func AsErr(err error) (*E, bool) {
	var e *E
	if errors.As(err, &e) {
		return e, true
	}
	return e, false
}
