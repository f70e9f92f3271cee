package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"restaurant/internal/domain/catalog"
	"restaurant/internal/domain/model"
	"restaurant/internal/infra/cache"
	"restaurant/internal/logger"
	repo "restaurant/internal/repository"
	"restaurant/internal/validator"
)

// errAbsent はtx内で「対象なし」を外に伝える
var errAbsent = errors.New("absent")

type MenuUsecase struct {
	menuRepo     repo.MenuRepository
	categoryRepo repo.CategoryRepository
	txm          repo.TransactionManager
	cache        cache.Cache
	cacheTTL     time.Duration
	idGen        IDGenerator
	log          *logger.Logger
}

// DI
func NewMenuUsecase(
	menuRepo repo.MenuRepository,
	categoryRepo repo.CategoryRepository,
	txm repo.TransactionManager,
	c cache.Cache,
	cacheTTL time.Duration,
	idGen IDGenerator,
	log *logger.Logger,
) *MenuUsecase {
	if c == nil {
		c = cache.Nop{}
	}
	if idGen == nil {
		idGen = UUIDv7Generator{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &MenuUsecase{
		menuRepo:     menuRepo,
		categoryRepo: categoryRepo,
		txm:          txm,
		cache:        c,
		cacheTTL:     cacheTTL,
		idGen:        idGen,
		log:          log,
	}
}

// 全件（id降順）。キャッシュがあればそれを返す
func (u *MenuUsecase) ListAll(ctx context.Context) ([]model.MenuItem, error) {
	items, err := cachedList(ctx, u, cache.KeyMenuAll, u.menuRepo.ListAll)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return items, nil
}

// 全件から名前で絞る（検索ダイアログ用）。空なら全件
func (u *MenuUsecase) FilterByName(ctx context.Context, query string) ([]model.MenuItem, error) {
	items, err := u.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.FilterByName(items, query), nil
}

// 名前の部分一致（空は400）
func (u *MenuUsecase) FindByName(ctx context.Context, name string) ([]model.MenuItem, error) {
	q, err := validator.ValidateSearchName(name)
	if err != nil {
		return nil, fromValidation(err)
	}

	items, err := u.menuRepo.FindByName(ctx, q)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return items, nil
}

// 1件。無ければ nil（エラーにしない）
func (u *MenuUsecase) GetByID(ctx context.Context, id string) (*model.MenuItem, error) {
	id, err := validator.ValidateID(id)
	if err != nil {
		return nil, fromValidation(err)
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

// 作成。IDはここで採番する
func (u *MenuUsecase) Create(ctx context.Context, actorID string, in validator.MenuCreateRequest) (model.MenuItem, error) {
	draft, err := validator.ValidateCreateMenu(in)
	if err != nil {
		return model.MenuItem{}, fromValidation(err)
	}

	var created model.MenuItem
	err = u.txm.WithinTx(ctx, func(r repo.TxRepos) error {
		item, err := r.Menu().Create(ctx, model.MenuItem{
			ID:         u.idGen.NewID(),
			Name:       draft.Name,
			Price:      draft.Price,
			Discount:   draft.Discount,
			OrderCount: draft.OrderCount,
			Category:   draft.Category,
		})
		if err != nil {
			return err
		}
		created = item
		return r.AuditLogs().Create(ctx, auditEntry(actorID, model.AuditActionCreateMenuItem, model.AuditResourceMenuItem, item.ID, nil, item))
	})
	if err != nil {
		return model.MenuItem{}, u.writeError(ctx, "menu create failed", err)
	}

	u.invalidate(ctx, cache.KeyMenuAll)
	return created, nil
}

// 部分更新。無ければ nil
func (u *MenuUsecase) Update(ctx context.Context, actorID string, id string, in validator.MenuUpdateRequest) (*model.MenuItem, error) {
	id, err := validator.ValidateID(id)
	if err != nil {
		return nil, fromValidation(err)
	}
	patch, err := validator.ValidateUpdateMenu(id, in)
	if err != nil {
		return nil, fromValidation(err)
	}

	var updated model.MenuItem
	err = u.txm.WithinTx(ctx, func(r repo.TxRepos) error {
		before, err := r.Menu().FindByID(ctx, id)
		if errors.Is(err, repo.ErrNotFound) {
			return errAbsent
		}
		if err != nil {
			return err
		}

		after, err := r.Menu().Update(ctx, id, patch)
		if errors.Is(err, repo.ErrNotFound) {
			return errAbsent
		}
		if err != nil {
			return err
		}
		updated = after
		return r.AuditLogs().Create(ctx, auditEntry(actorID, model.AuditActionUpdateMenuItem, model.AuditResourceMenuItem, id, before, after))
	})
	if errors.Is(err, errAbsent) {
		return nil, nil
	}
	if err != nil {
		return nil, u.writeError(ctx, "menu update failed", err)
	}

	u.invalidate(ctx, cache.KeyMenuAll)
	return &updated, nil
}

// 削除して消した行を返す。無ければ nil（ストアは変わらない）
func (u *MenuUsecase) Delete(ctx context.Context, actorID string, id string) (*model.MenuItem, error) {
	id, err := validator.ValidateID(id)
	if err != nil {
		return nil, fromValidation(err)
	}

	var deleted model.MenuItem
	err = u.txm.WithinTx(ctx, func(r repo.TxRepos) error {
		item, err := r.Menu().Delete(ctx, id)
		if errors.Is(err, repo.ErrNotFound) {
			return errAbsent
		}
		if err != nil {
			return err
		}
		deleted = item
		return r.AuditLogs().Create(ctx, auditEntry(actorID, model.AuditActionDeleteMenuItem, model.AuditResourceMenuItem, id, item, nil))
	})
	if errors.Is(err, errAbsent) {
		return nil, nil
	}
	if err != nil {
		return nil, u.writeError(ctx, "menu delete failed", err)
	}

	u.invalidate(ctx, cache.KeyMenuAll)
	return &deleted, nil
}

// カテゴリ全件（id降順）
func (u *MenuUsecase) ListCategories(ctx context.Context) ([]model.Category, error) {
	cats, err := cachedList(ctx, u, cache.KeyCategoryAll, u.categoryRepo.ListAll)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return cats, nil
}

// カテゴリ1件。無ければ nil
func (u *MenuUsecase) GetCategoryByID(ctx context.Context, id string) (*model.Category, error) {
	id, err := validator.ValidateID(id)
	if err != nil {
		return nil, fromValidation(err)
	}

	c, err := u.categoryRepo.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return &c, nil
}

func (u *MenuUsecase) CreateCategory(ctx context.Context, actorID string, in validator.CategoryCreateRequest) (model.Category, error) {
	name, err := validator.ValidateCategory(in)
	if err != nil {
		return model.Category{}, fromValidation(err)
	}

	var created model.Category
	err = u.txm.WithinTx(ctx, func(r repo.TxRepos) error {
		c, err := r.Categories().Create(ctx, model.Category{ID: u.idGen.NewID(), Category: name})
		if err != nil {
			return err
		}
		created = c
		return r.AuditLogs().Create(ctx, auditEntry(actorID, model.AuditActionCreateCategory, model.AuditResourceCategory, c.ID, nil, c))
	})
	if err != nil {
		return model.Category{}, u.writeError(ctx, "category create failed", err)
	}

	u.invalidate(ctx, cache.KeyCategoryAll)
	return created, nil
}

// カテゴリごとにまとめたメニュー
func (u *MenuUsecase) GroupedMenu(ctx context.Context) ([]catalog.Group, error) {
	items, err := u.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	cats, err := u.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.GroupByCategory(items, cats), nil
}

// 一覧をキャッシュ経由で読む。世代を先に読んでからDBを引くので、
// 読み込み中に無効化されても古い一覧は新しい世代に載らない
func cachedList[T any](ctx context.Context, u *MenuUsecase, key string, load func(context.Context) ([]T, error)) ([]T, error) {
	gen, err := cache.Generation(ctx, u.cache, key)
	if err != nil {
		u.log.Warn(ctx, "cache generation read failed", err)
		return load(ctx)
	}
	dataKey := cache.VersionedKey(key, gen)

	var list []T
	if hit, err := cache.GetJSON(ctx, u.cache, dataKey, &list); err != nil {
		u.log.Warn(ctx, "list cache read failed", err)
	} else if hit {
		return list, nil
	}

	list, err = load(ctx)
	if err != nil {
		return nil, err
	}
	if err := cache.SetJSON(ctx, u.cache, dataKey, list, u.cacheTTL); err != nil {
		u.log.Warn(ctx, "list cache write failed", err)
	}
	return list, nil
}

// コミット後に呼ぶ
func (u *MenuUsecase) invalidate(ctx context.Context, keys ...string) {
	for _, key := range keys {
		if err := cache.Bump(ctx, u.cache, key); err != nil {
			u.log.Warn(ctx, "cache invalidation failed", err)
		}
	}
}

// 書き込み系のエラーをHTTPErrorへ
func (u *MenuUsecase) writeError(ctx context.Context, msg string, err error) error {
	if errors.Is(err, repo.ErrInvalidCategory) {
		return NewFieldError("category", "category does not exist")
	}
	u.log.Error(ctx, msg, err)
	return NewHTTPError(http.StatusInternalServerError, "db error")
}

// 監査ログ1件。before/afterはnilなら空
func auditEntry(actorID string, action model.AuditAction, resource model.AuditResourceType, resourceID string, before, after any) model.AuditLog {
	return model.AuditLog{
		ActorUserID:  actorID,
		Action:       action,
		ResourceType: resource,
		ResourceID:   resourceID,
		BeforeJSON:   toJSON(before),
		AfterJSON:    toJSON(after),
	}
}

func toJSON(v any) string {
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
