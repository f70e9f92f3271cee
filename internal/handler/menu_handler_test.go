package handler_test

import (
	"net/http"
	"strings"
	"testing"

	"restaurant/internal/domain/catalog"
	"restaurant/internal/domain/model"
	"restaurant/internal/handler"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createCategory(t *testing.T, a *testApp, token, name string) model.Category {
	t.Helper()
	rec := a.do(t, request{method: http.MethodPost, path: "/admin/categories", token: token, body: map[string]string{"category": name}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[model.Category](t, rec)
}

func createMenu(t *testing.T, a *testApp, token string, body map[string]any) model.MenuItem {
	t.Helper()
	rec := a.do(t, request{method: http.MethodPost, path: "/admin/menu", token: token, body: body})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[model.MenuItem](t, rec)
}

func TestMenu_RequiresLogin(t *testing.T) {
	a := newTestApp(t)

	for _, path := range []string{"/menu", "/menu/search?name=a", "/menu/grouped", "/categories"} {
		rec := a.do(t, request{method: http.MethodGet, path: path})
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestAdminMenu_Forbidden(t *testing.T) {
	a := newTestApp(t)
	worker := a.login(t, workerEmail)
	guest := a.login(t, "guest@example.com")

	for _, token := range []string{worker, guest} {
		rec := a.do(t, request{method: http.MethodPost, path: "/admin/categories", token: token, body: map[string]string{"category": "x"}})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	}
}

func TestMenu_CRUDFlow(t *testing.T) {
	a := newTestApp(t)
	admin := a.login(t, adminEmail)
	guest := a.login(t, "guest@example.com")

	cat := createCategory(t, a, admin, "Appetizers")

	soup := createMenu(t, a, admin, map[string]any{"name": "Soup", "price": "4.50", "category": cat.ID, "discount": "10"})
	assert.NotEmpty(t, soup.ID)
	assert.Equal(t, 10, soup.Discount)
	assert.Equal(t, 0, soup.OrderCount)

	pizza := createMenu(t, a, admin, map[string]any{"name": "Pizza", "price": "12", "category": cat.ID})
	assert.NotEqual(t, soup.ID, pizza.ID)

	// 一覧はid降順（新しいものが先）
	rec := a.do(t, request{method: http.MethodGet, path: "/menu", token: guest})
	require.Equal(t, http.StatusOK, rec.Code)
	items := decode[[]model.MenuItem](t, rec)
	require.Len(t, items, 2)
	assert.Equal(t, pizza.ID, items[0].ID)

	// ローカル絞り込み
	rec = a.do(t, request{method: http.MethodGet, path: "/menu?q=SOU", token: guest})
	items = decode[[]model.MenuItem](t, rec)
	require.Len(t, items, 1)
	assert.Equal(t, soup.ID, items[0].ID)

	// DB検索
	rec = a.do(t, request{method: http.MethodGet, path: "/menu/search?name=pIz", token: guest})
	items = decode[[]model.MenuItem](t, rec)
	require.Len(t, items, 1)
	assert.Equal(t, pizza.ID, items[0].ID)

	// 部分更新
	rec = a.do(t, request{method: http.MethodPatch, path: "/admin/menu/" + soup.ID, token: admin, body: map[string]any{"price": "5.00"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[model.MenuItem](t, rec)
	assert.Equal(t, "5.00", updated.Price)
	assert.Equal(t, "Soup", updated.Name)
	assert.Equal(t, 10, updated.Discount)

	// 更新は次の読み込みに反映される
	rec = a.do(t, request{method: http.MethodGet, path: "/menu/" + soup.ID, token: guest})
	assert.Equal(t, "5.00", decode[model.MenuItem](t, rec).Price)

	// 削除は消した行を返す
	rec = a.do(t, request{method: http.MethodDelete, path: "/admin/menu/" + soup.ID, token: admin})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, soup.ID, decode[model.MenuItem](t, rec).ID)

	rec = a.do(t, request{method: http.MethodGet, path: "/menu", token: guest})
	assert.Len(t, decode[[]model.MenuItem](t, rec), 1)
}

// 見つからないものは200でnull
func TestMenu_AbsentIsNull(t *testing.T) {
	a := newTestApp(t)
	admin := a.login(t, adminEmail)

	cases := []request{
		{method: http.MethodGet, path: "/menu/missing", token: admin},
		{method: http.MethodGet, path: "/categories/missing", token: admin},
		{method: http.MethodPatch, path: "/admin/menu/missing", token: admin, body: map[string]any{"name": "x"}},
		{method: http.MethodDelete, path: "/admin/menu/missing", token: admin},
	}
	for _, r := range cases {
		rec := a.do(t, r)
		assert.Equal(t, http.StatusOK, rec.Code, r.path)
		assert.Equal(t, "null", strings.TrimSpace(rec.Body.String()), r.path)
	}
}

func TestMenu_ValidationErrors(t *testing.T) {
	a := newTestApp(t)
	admin := a.login(t, adminEmail)
	cat := createCategory(t, a, admin, "Mains")

	cases := []struct {
		name  string
		req   request
		field string
	}{
		{"empty name", request{method: http.MethodPost, path: "/admin/menu", body: map[string]any{"price": "1", "category": cat.ID}}, "name"},
		{"empty price", request{method: http.MethodPost, path: "/admin/menu", body: map[string]any{"name": "a", "category": cat.ID}}, "price"},
		{"unknown category", request{method: http.MethodPost, path: "/admin/menu", body: map[string]any{"name": "a", "price": "1", "category": "nope"}}, "category"},
		{"bad discount", request{method: http.MethodPost, path: "/admin/menu", body: map[string]any{"name": "a", "price": "1", "category": cat.ID, "discount": "ten"}}, "discount"},
		{"empty category name", request{method: http.MethodPost, path: "/admin/categories", body: map[string]any{"category": ""}}, "category"},
		{"empty search", request{method: http.MethodGet, path: "/menu/search?name="}, "name"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.req.token = admin
			rec := a.do(t, tc.req)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Equal(t, tc.field, decode[handler.ErrorResponse](t, rec).Field)
		})
	}

	rec := a.do(t, request{method: http.MethodPost, path: "/admin/menu", token: admin, body: "{broken"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMenu_Grouped(t *testing.T) {
	a := newTestApp(t)
	admin := a.login(t, adminEmail)
	starters := createCategory(t, a, admin, "Starters")
	drinks := createCategory(t, a, admin, "Drinks")

	createMenu(t, a, admin, map[string]any{"name": "Olives", "price": "3", "category": starters.ID})
	createMenu(t, a, admin, map[string]any{"name": "Cola", "price": "2", "category": drinks.ID})
	createMenu(t, a, admin, map[string]any{"name": "Bread", "price": "2", "category": starters.ID})

	rec := a.do(t, request{method: http.MethodGet, path: "/menu/grouped", token: admin})
	require.Equal(t, http.StatusOK, rec.Code)
	groups := decode[[]catalog.Group](t, rec)

	// 全件（id降順）で最初に出てきた順
	require.Len(t, groups, 2)
	assert.Equal(t, "Starters", groups[0].DisplayName)
	assert.Len(t, groups[0].Items, 2)
	assert.Equal(t, "Drinks", groups[1].DisplayName)

	rec = a.do(t, request{method: http.MethodGet, path: "/categories", token: admin})
	cats := decode[[]model.Category](t, rec)
	require.Len(t, cats, 2)
	assert.Equal(t, drinks.ID, cats[0].ID)
}
