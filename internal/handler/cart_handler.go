package handler

import (
	"fmt"
	"net/http"
	"time"

	"restaurant/internal/cart"
	"restaurant/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	CartSessionCookie = "cart_session"
	cartSessionMaxAge = 30 * 24 * time.Hour
	sseKeepAlive      = 25 * time.Second
)

// /cartのHTTP。カートはcookieのセッションごと（ログイン不要）
type CartHandler struct {
	uc           *usecase.CartUsecase
	cookieSecure bool
}

// DI
func NewCartHandler(uc *usecase.CartUsecase, cookieSecure bool) *CartHandler {
	return &CartHandler{uc: uc, cookieSecure: cookieSecure}
}

type CartLineRequest struct {
	Item  string `json:"item"`
	Delta int    `json:"delta"`
}

type CartItemRequest struct {
	Item string `json:"item"`
}

func (h *CartHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/cart")

	g.GET("", h.getCart)
	g.POST("/lines", h.applyDelta)
	g.POST("/add", h.action(usecase.CartActionAdd))
	g.POST("/increment", h.action(usecase.CartActionIncrement))
	g.POST("/decrement", h.action(usecase.CartActionDecrement))
	g.GET("/items/:id", h.getItem)
	g.GET("/events", h.events)
}

// session はcookieのセッションIDを返す。無い・壊れているときは新しく発行する
func (h *CartHandler) session(c echo.Context) string {
	if ck, err := c.Cookie(CartSessionCookie); err == nil {
		if id, err := uuid.Parse(ck.Value); err == nil {
			return id.String()
		}
	}

	id := uuid.NewString()
	c.SetCookie(&http.Cookie{
		Name:     CartSessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(cartSessionMaxAge.Seconds()),
	})
	return id
}

func (h *CartHandler) getCart(c echo.Context) error {
	view, err := h.uc.View(c.Request().Context(), h.session(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *CartHandler) applyDelta(c echo.Context) error {
	var req CartLineRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("invalid body"))
	}
	return h.mutate(c, usecase.CartActionDelta, req.Item, req.Delta)
}

func (h *CartHandler) action(action usecase.CartAction) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req CartItemRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, errorJSON("invalid body"))
		}
		return h.mutate(c, action, req.Item, 0)
	}
}

// 更新後のカートを表示用で返す
func (h *CartHandler) mutate(c echo.Context, action usecase.CartAction, item string, delta int) error {
	ctx := c.Request().Context()
	sessionID := h.session(c)

	if _, err := h.uc.Mutate(ctx, sessionID, action, item, delta); err != nil {
		return writeError(c, err)
	}

	view, err := h.uc.View(ctx, sessionID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

// 無ければ200でnull
func (h *CartHandler) getItem(c echo.Context) error {
	item, err := h.uc.GetMenuItemByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

// events はカートの変更をSSEで流す。最初に現在の中身を1回送る
func (h *CartHandler) events(c echo.Context) error {
	ctx := c.Request().Context()
	sessionID := h.session(c)

	// 受け取り側が遅いときは最新だけ残す
	updates := make(chan []cart.Line, 1)
	push := func(lines []cart.Line) {
		for {
			select {
			case updates <- lines:
				return
			default:
			}
			select {
			case <-updates:
			default:
			}
		}
	}

	stop, err := h.uc.Watch(ctx, sessionID, push)
	if err != nil {
		return writeError(c, err)
	}
	defer stop()

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.WriteHeader(http.StatusOK)

	if err := writeCartEvent(res, h.uc.Lines(ctx, sessionID)); err != nil {
		return nil
	}

	ticker := time.NewTicker(sseKeepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case lines := <-updates:
			if err := writeCartEvent(res, lines); err != nil {
				return nil
			}
		case <-ticker.C:
			if _, err := fmt.Fprint(res, ": ping\n\n"); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}

// 値は "cart" キーと同じJSON
func writeCartEvent(res *echo.Response, lines []cart.Line) error {
	raw, err := cart.Encode(lines)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(res, "event: cart\ndata: %s\n\n", raw); err != nil {
		return err
	}
	res.Flush()
	return nil
}
