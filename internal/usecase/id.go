package usecase

import "github.com/google/uuid"

// UUID 等のIDを作る約束
type IDGenerator interface {
	NewID() string
}

// UUIDv7Generator は時刻順のUUID（id降順が新しい順になる）
type UUIDv7Generator struct{}

func (UUIDv7Generator) NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
