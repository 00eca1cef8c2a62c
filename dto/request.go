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

package dto

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/zintix-labs/fairlab/errs"
	"github.com/zintix-labs/fairlab/sdk/buf"
)

// 防止過大輸入影響服務 (預設 1MiB)
const maxRequestBytes = 1 << 20

// DecodeSpinRequest 把 JSON 輸入解碼成 buf.SpinRequest。
//
// 這裡只負責解碼與結構檢查 (Norm)：未知欄位嚴格拒絕，避免靜默丟資料。
// 遊戲層合法性 (遊戲是否存在、押注檔位、格子範圍) 由引擎決定。
func DecodeSpinRequest(r io.Reader) (*buf.SpinRequest, error) {
	dec := json.NewDecoder(io.LimitReader(r, maxRequestBytes))
	dec.DisallowUnknownFields()

	req := new(buf.SpinRequest)
	if err := dec.Decode(req); err != nil {
		return nil, errs.Warnf("invalid spin request json: %v", err)
	}
	if err := req.Norm(); err != nil {
		return nil, err
	}
	return req, nil
}

// ParseSpinRequest 是 DecodeSpinRequest 的位元組版本。
func ParseSpinRequest(data []byte) (*buf.SpinRequest, error) {
	return DecodeSpinRequest(bytes.NewReader(data))
}
