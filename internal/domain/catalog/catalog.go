// Package catalog はメニュー表示用の純粋な処理（カテゴリ別グループ化・名前フィルタ・割引価格）。
package catalog

import (
	"strings"

	"restaurant/internal/domain/model"

	"github.com/shopspring/decimal"
)

// UncategorizedKey はカテゴリ未設定の品目のグループキー
const UncategorizedKey = "Uncategorized"

type Group struct {
	Key         string           `json:"key"`
	DisplayName string           `json:"displayName"`
	Items       []model.MenuItem `json:"items"`
}

// GroupByCategory は品目をカテゴリごとにまとめる。
// 並びは品目を走査して最初に現れた順。カテゴリ一覧に無いキーはキー文字列をそのまま表示名にする。
func GroupByCategory(items []model.MenuItem, categories []model.Category) []Group {
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		if _, ok := names[c.ID]; !ok {
			names[c.ID] = c.Category
		}
	}

	groups := []Group{}
	index := map[string]int{}
	for _, it := range items {
		key := it.Category
		if key == "" {
			key = UncategorizedKey
		}

		i, ok := index[key]
		if !ok {
			display := names[key]
			if display == "" {
				display = key
			}
			groups = append(groups, Group{Key: key, DisplayName: display, Items: []model.MenuItem{}})
			i = len(groups) - 1
			index[key] = i
		}
		groups[i].Items = append(groups[i].Items, it)
	}
	return groups
}

// FilterByName は名前に query を含む品目（大文字小文字無視）。空なら全件。
func FilterByName(items []model.MenuItem, query string) []model.MenuItem {
	q := FoldName(strings.TrimSpace(query))
	out := make([]model.MenuItem, 0, len(items))
	for _, it := range items {
		if q == "" || strings.Contains(FoldName(it.Name), q) {
			out = append(out, it)
		}
	}
	return out
}

var hundred = decimal.NewFromInt(100)

// ParsePrice は価格文字列を読む。数値でなければ false。
// FoldName は名前検索の大文字小文字をそろえる（DBの name_folded もこれで作る）
func FoldName(name string) string {
	return strings.ToLower(name)
}

func ParsePrice(price string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(price))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// DiscountedPrice は discount% 引きの単価（小数2桁で丸め）。discount は 0〜100 に収める。
func DiscountedPrice(price string, discount int) (decimal.Decimal, bool) {
	p, ok := ParsePrice(price)
	if !ok {
		return decimal.Zero, false
	}
	if discount < 0 {
		discount = 0
	}
	if discount > 100 {
		discount = 100
	}

	rate := hundred.Sub(decimal.NewFromInt(int64(discount))).Div(hundred)
	return p.Mul(rate).Round(2), true
}
