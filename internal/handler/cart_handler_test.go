package handler_test

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"restaurant/internal/cart"
	"restaurant/internal/handler"
	"restaurant/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == handler.CartSessionCookie {
			return c
		}
	}
	t.Fatalf("no %s cookie", handler.CartSessionCookie)
	return nil
}

func TestCart_SessionCookie(t *testing.T) {
	a := newTestApp(t)

	rec := a.do(t, request{method: http.MethodGet, path: "/cart"})
	require.Equal(t, http.StatusOK, rec.Code)
	ck := sessionCookie(t, rec)
	assert.True(t, ck.HttpOnly)
	assert.NotEmpty(t, ck.Value)

	view := decode[usecase.CartView](t, rec)
	assert.Empty(t, view.Lines)

	// 同じcookieなら新しく発行しない
	rec = a.do(t, request{method: http.MethodGet, path: "/cart", cookies: []*http.Cookie{ck}})
	assert.Empty(t, rec.Result().Cookies())

	// 壊れたcookieは作り直す
	rec = a.do(t, request{method: http.MethodGet, path: "/cart", cookies: []*http.Cookie{{Name: handler.CartSessionCookie, Value: "garbage"}}})
	assert.NotEqual(t, "garbage", sessionCookie(t, rec).Value)
}

func TestCart_MutationsAndView(t *testing.T) {
	a := newTestApp(t)
	admin := a.login(t, adminEmail)
	cat := createCategory(t, a, admin, "Mains")
	pizza := createMenu(t, a, admin, map[string]any{"name": "Pizza", "price": "10.00", "discount": 25, "category": cat.ID})

	rec := a.do(t, request{method: http.MethodPost, path: "/cart/add", body: map[string]string{"item": pizza.ID}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	ck := sessionCookie(t, rec)
	jar := []*http.Cookie{ck}

	rec = a.do(t, request{method: http.MethodPost, path: "/cart/increment", body: map[string]string{"item": pizza.ID}, cookies: jar})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(t, request{method: http.MethodPost, path: "/cart/lines", body: map[string]any{"item": "ghost", "delta": 3}, cookies: jar})
	require.Equal(t, http.StatusOK, rec.Code)

	view := decode[usecase.CartView](t, rec)
	require.Len(t, view.Lines, 2)
	assert.Equal(t, "Pizza", view.Lines[0].Name)
	assert.Equal(t, 2, view.Lines[0].Quantity)
	assert.Equal(t, "15", view.Lines[0].Subtotal.String())
	assert.Equal(t, usecase.UnknownItemName, view.Lines[1].Name)
	assert.Equal(t, 5, view.ItemCount)
	assert.Equal(t, "15", view.Total.String())

	// 数量1からのdecrementで行が消える
	a.do(t, request{method: http.MethodPost, path: "/cart/lines", body: map[string]any{"item": "ghost", "delta": -2}, cookies: jar})
	rec = a.do(t, request{method: http.MethodPost, path: "/cart/decrement", body: map[string]string{"item": "ghost"}, cookies: jar})
	view = decode[usecase.CartView](t, rec)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, pizza.ID, view.Lines[0].Item)

	// 保存される値は "cart" キーのJSON
	raw, ok, err := a.carts.ForSession(ck.Value).Read(context.Background(), cart.StorageKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `[{"item":"`+pizza.ID+`","quantity":2}]`, raw)
}

func TestCart_Errors(t *testing.T) {
	a := newTestApp(t)

	rec := a.do(t, request{method: http.MethodPost, path: "/cart/add", body: map[string]string{"item": " "}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "item", decode[handler.ErrorResponse](t, rec).Field)

	rec = a.do(t, request{method: http.MethodPost, path: "/cart/lines", body: "{"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCart_GetMenuItem(t *testing.T) {
	a := newTestApp(t)
	admin := a.login(t, adminEmail)
	cat := createCategory(t, a, admin, "Mains")
	pizza := createMenu(t, a, admin, map[string]any{"name": "Pizza", "price": "10", "category": cat.ID})

	// ログイン不要
	rec := a.do(t, request{method: http.MethodGet, path: "/cart/items/" + pizza.ID})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Pizza"`)

	rec = a.do(t, request{method: http.MethodGet, path: "/cart/items/missing"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null", strings.TrimSpace(rec.Body.String()))
}

func TestCart_Events(t *testing.T) {
	a := newTestApp(t)
	srv := httptest.NewServer(a.e)
	defer srv.Close()

	sessionID := "0191d3a2-6c1e-7c2a-9a55-6f1f2d7f0c11"
	jar := []*http.Cookie{{Name: handler.CartSessionCookie, Value: sessionID}}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/cart/events", nil)
	require.NoError(t, err)
	req.AddCookie(jar[0])

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, "text/event-stream", res.Header.Get("Content-Type"))

	events := make(chan string, 4)
	go func() {
		sc := bufio.NewScanner(res.Body)
		for sc.Scan() {
			if data, ok := strings.CutPrefix(sc.Text(), "data: "); ok {
				events <- data
			}
		}
	}()

	// 最初は今の中身
	select {
	case data := <-events:
		assert.Equal(t, "[]", data)
	case <-ctx.Done():
		t.Fatal("no initial event")
	}

	// 別のクライアント（別タブ）から同じセッションを更新
	rec := a.do(t, request{method: http.MethodPost, path: "/cart/add", body: map[string]string{"item": "a"}, cookies: jar})
	require.Equal(t, http.StatusOK, rec.Code)

	select {
	case data := <-events:
		assert.JSONEq(t, `[{"item":"a","quantity":1}]`, data)
	case <-ctx.Done():
		t.Fatal("no change event")
	}
}
