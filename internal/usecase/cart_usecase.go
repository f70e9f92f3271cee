package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"restaurant/internal/cart"
	"restaurant/internal/domain/catalog"
	"restaurant/internal/domain/model"
	"restaurant/internal/logger"
	"restaurant/internal/metrics"
	repo "restaurant/internal/repository"

	"github.com/shopspring/decimal"
)

// カートに名前が無い（削除済みなど）ときの表示名
const UnknownItemName = "Unknown"

// カート操作の種類
type CartAction string

const (
	CartActionAdd       CartAction = "add"
	CartActionIncrement CartAction = "increment"
	CartActionDecrement CartAction = "decrement"
	CartActionDelta     CartAction = "delta"
)

// セッションごとのカート保存先
type CartStorageProvider interface {
	ForSession(sessionID string) cart.Storage
}

// CartUsecase は /cart の業務ロジックです。
// カートの正はセッションのストレージ側で、DBには保存しない。
type CartUsecase struct {
	storages CartStorageProvider
	menuRepo repo.MenuRepository
	metrics  *metrics.CartMetrics
	log      *logger.Logger
}

func NewCartUsecase(
	storages CartStorageProvider,
	menuRepo repo.MenuRepository,
	m *metrics.CartMetrics,
	log *logger.Logger,
) *CartUsecase {
	if log == nil {
		log = logger.Nop()
	}
	return &CartUsecase{
		storages: storages,
		menuRepo: menuRepo,
		metrics:  m,
		log:      log,
	}
}

// 表示用の1行。価格が数値として読めたときだけ単価と小計を入れる
type CartLineView struct {
	Item      string           `json:"item"`
	Quantity  int              `json:"quantity"`
	Name      string           `json:"name"`
	Price     string           `json:"price,omitempty"`
	Discount  int              `json:"discount"`
	UnitPrice *decimal.Decimal `json:"unitPrice,omitempty"`
	Subtotal  *decimal.Decimal `json:"subtotal,omitempty"`
}

type CartView struct {
	Lines     []CartLineView  `json:"lines"`
	ItemCount int             `json:"itemCount"`
	Total     decimal.Decimal `json:"total"`
}

// セッションのエンジン。読み込み失敗は空カートとして続行し、ログだけ残す
func (u *CartUsecase) engine(ctx context.Context, sessionID string) *cart.Engine {
	return cart.NewEngine(
		u.storages.ForSession(sessionID),
		cart.WithReadErrorHandler(func(err error) {
			u.log.Warn(ctx, "cart storage read failed", err)
		}),
	)
}

// Lines は保存されている並びそのまま
func (u *CartUsecase) Lines(ctx context.Context, sessionID string) []cart.Line {
	return u.engine(ctx, sessionID).Hydrate(ctx)
}

// View はカートの並び順で名前・価格を引いて合計を出す
func (u *CartUsecase) View(ctx context.Context, sessionID string) (CartView, error) {
	return u.buildView(ctx, u.Lines(ctx, sessionID))
}

// Mutate は itemID の数量を動かす（add/increment は+1、decrement は-1、delta は指定値）
func (u *CartUsecase) Mutate(ctx context.Context, sessionID string, action CartAction, itemID string, delta int) ([]cart.Line, error) {
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return nil, NewFieldError("item", "item is required")
	}

	switch action {
	case CartActionAdd, CartActionIncrement:
		delta = 1
	case CartActionDecrement:
		delta = -1
	case CartActionDelta:
		if delta > cart.MaxQuantity || delta < -cart.MaxQuantity {
			return nil, NewFieldError("delta", "delta is out of range")
		}
	default:
		return nil, NewHTTPError(http.StatusBadRequest, "invalid action")
	}

	lines, err := u.engine(ctx, sessionID).ApplyDelta(ctx, itemID, delta)
	if err != nil {
		if errors.Is(err, cart.ErrEmptyItem) {
			return nil, NewFieldError("item", "item is required")
		}
		u.log.Error(ctx, "cart storage write failed", err)
		return nil, NewHTTPError(http.StatusInternalServerError, "cart storage error")
	}

	u.metrics.IncMutation(string(action))
	return lines, nil
}

// GetMenuItemByID はカート表示用の1件。無ければ nil
func (u *CartUsecase) GetMenuItemByID(ctx context.Context, id string) (*model.MenuItem, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, NewFieldError("id", "id is required")
	}

	item, err := u.menuRepo.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return &item, nil
}

// Watch は同じセッションの変更を購読する。通知の値をそのまま使ってミラーを作り直し fn に渡す
func (u *CartUsecase) Watch(ctx context.Context, sessionID string, fn func([]cart.Line)) (func(), error) {
	e := u.engine(ctx, sessionID)
	store := u.storages.ForSession(sessionID)

	stop, err := store.Subscribe(ctx, e.Key(), func(newValue string) {
		e.HandleChange(newValue)
		fn(e.Lines())
	})
	if err != nil {
		u.log.Error(ctx, "cart subscribe failed", err)
		return nil, NewHTTPError(http.StatusInternalServerError, "cart storage error")
	}
	return stop, nil
}

func (u *CartUsecase) buildView(ctx context.Context, lines []cart.Line) (CartView, error) {
	view := CartView{Lines: make([]CartLineView, 0, len(lines)), Total: decimal.Zero}

	for _, l := range lines {
		lv := CartLineView{Item: l.Item, Quantity: l.Quantity, Name: UnknownItemName}

		item, err := u.GetMenuItemByID(ctx, l.Item)
		if err != nil {
			return CartView{}, err
		}
		if item != nil {
			lv.Name = item.Name
			lv.Price = item.Price
			lv.Discount = item.Discount
			if unit, ok := catalog.DiscountedPrice(item.Price, item.Discount); ok {
				sub := unit.Mul(decimal.NewFromInt(int64(l.Quantity)))
				lv.UnitPrice = &unit
				lv.Subtotal = &sub
				view.Total = view.Total.Add(sub)
			}
		}

		view.ItemCount += l.Quantity
		view.Lines = append(view.Lines, lv)
	}
	return view, nil
}
