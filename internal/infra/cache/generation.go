package cache

import (
	"context"

	"github.com/google/uuid"
)

// 一覧キーは世代付きで保存する。無効化は世代を差し替えるだけなので、
// 差し替え前の世代で読んだ結果があとから書き込まれても新しい世代からは見えない。

const (
	generationSuffix = ":gen"
	generationDelim  = "@"
)

// Generation は key の今の世代。無ければ作る（期限なし）
func Generation(ctx context.Context, c Cache, key string) (string, error) {
	raw, ok, err := c.Get(ctx, key+generationSuffix)
	if err != nil {
		return "", err
	}
	if ok && len(raw) > 0 {
		return string(raw), nil
	}

	gen := uuid.NewString()
	if err := c.Set(ctx, key+generationSuffix, []byte(gen), 0); err != nil {
		return "", err
	}
	return gen, nil
}

// VersionedKey は世代ごとの保存キー
func VersionedKey(key, gen string) string {
	return key + generationDelim + gen
}

// Bump は世代を進め、前の世代の値を消す
func Bump(ctx context.Context, c Cache, key string) error {
	prev, ok, err := c.Get(ctx, key+generationSuffix)
	if err != nil {
		return err
	}
	if err := c.Set(ctx, key+generationSuffix, []byte(uuid.NewString()), 0); err != nil {
		return err
	}
	if ok && len(prev) > 0 {
		return c.Del(ctx, VersionedKey(key, string(prev)))
	}
	return nil
}
