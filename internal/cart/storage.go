package cart

import "context"

// Storage はカートの置き場所（ブラウザのlocalStorage相当）。
// Subscribe の fn には変更後の値がそのまま渡る。キーが消えたときは空文字。
type Storage interface {
	Read(ctx context.Context, key string) (value string, ok bool, err error)
	Write(ctx context.Context, key string, value string) error
	Subscribe(ctx context.Context, key string, fn func(newValue string)) (unsubscribe func(), err error)
}
