// Package cart はクライアント側カート（item, quantity の並び）の状態遷移と永続化。
//
// 正はストレージ側。変更は毎回ストレージから読み直してから適用し、
// 書き戻したあとでメモリ上のミラーを更新する。
package cart

import (
	"encoding/json"
	"errors"
	"math"
)

// StorageKey はカートを保存するキー
const StorageKey = "cart"

// MaxQuantity は1行の数量の上限。これを超える加算は上限で止める
const MaxQuantity = math.MaxInt32

// Line はカートの1行。Quantityは常に1以上。
type Line struct {
	Item     string `json:"item"`
	Quantity int    `json:"quantity"`
}

// ErrEmptyItem は item が空のとき
var ErrEmptyItem = errors.New("item is required")

// Decode は保存値を読む。壊れていたら空カート扱い（エラーは返すが結果は使える）。
func Decode(raw string) ([]Line, error) {
	if raw == "" {
		return []Line{}, nil
	}

	var stored []Line
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return []Line{}, err
	}

	// 数量0以下・item空・重複は捨てる
	lines := make([]Line, 0, len(stored))
	seen := make(map[string]struct{}, len(stored))
	for _, l := range stored {
		if l.Item == "" || l.Quantity <= 0 {
			continue
		}
		if _, ok := seen[l.Item]; ok {
			continue
		}
		seen[l.Item] = struct{}{}
		l.Quantity = min(l.Quantity, MaxQuantity)
		lines = append(lines, l)
	}
	return lines, nil
}

// Encode は保存用のJSON配列にする（空でも "[]"）
func Encode(lines []Line) (string, error) {
	if lines == nil {
		lines = []Line{}
	}
	b, err := json.Marshal(lines)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Apply は itemID の数量を delta だけ動かした新しい並びを返す。元のスライスは変更しない。
//   - 既存行: 数量+delta が0以下なら行ごと削除、それ以外は更新
//   - 行なし & delta>0: 末尾に追加
//   - 行なし & delta<=0: 何もしない
//
// 数量は MaxQuantity で頭打ちになる。
func Apply(lines []Line, itemID string, delta int) []Line {
	next := make([]Line, 0, len(lines)+1)
	found := false

	for _, l := range lines {
		if l.Item != itemID {
			next = append(next, l)
			continue
		}
		found = true
		qty := addQuantity(l.Quantity, delta)
		if qty <= 0 {
			continue
		}
		next = append(next, Line{Item: l.Item, Quantity: qty})
	}

	if !found && delta > 0 {
		next = append(next, Line{Item: itemID, Quantity: min(delta, MaxQuantity)})
	}
	return next
}

// int64で足してから上限に寄せる。intが64bitでも桁あふれしない範囲に先に丸める
func addQuantity(qty, delta int) int {
	d := int64(max(min(delta, MaxQuantity), -MaxQuantity))
	sum := int64(min(qty, MaxQuantity)) + d
	if sum > MaxQuantity {
		return MaxQuantity
	}
	return int(sum)
}

// QuantityOf は行が無ければ0
func QuantityOf(lines []Line, itemID string) int {
	for _, l := range lines {
		if l.Item == itemID {
			return l.Quantity
		}
	}
	return 0
}
