package gamespec

import (
	"bytes"

	"github.com/zintix-labs/fairlab/errs"
	"gopkg.in/yaml.v3"
)

// DecodeFixed 會把自由參數由 map[string]any 轉成你要的型別 T。
// T 應該是 struct，例如 Wild 策略的參數結構。
func DecodeFixed[T any](fixed map[string]any, out *T) error {
	// 先把 map[string]any -> YAML bytes
	bs, err := yaml.Marshal(fixed)
	if err != nil {
		return errs.Wrap(err, "gamespec.fixed_decoder : marshal failed")
	}
	// 再把 YAML bytes -> 自定義的型別
	dec := yaml.NewDecoder(bytes.NewReader(bs))
	dec.KnownFields(true) // 嚴格檢查：多寫/拼錯欄位就報錯
	if err = dec.Decode(out); err != nil {
		return errs.Wrap(err, "gamespec.fixed_decoder : decode failed")
	}
	return nil
}
