package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"restaurant/internal/domain/model"
	"restaurant/internal/repository"
	"restaurant/internal/validator"

	"golang.org/x/crypto/bcrypt"
)

// 会員登録の出力
type RegisterUserOutput struct {
	User    model.User `json:"user"`
	Landing string     `json:"landing"`
}

var (
	// 競合
	ErrEmailAlreadyExists = errors.New("email already exists")
)

// 平文パスワードからハッシュへ。
type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// UUID 等のIDを作る約束
type IDGenerator interface {
	NewID() string
}

// 現在の時間
type Clock interface {
	Now() time.Time
}

// SystemClock は time.Now
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// RolePolicy は登録時のロールをメールで決める
type RolePolicy struct {
	AdminEmail  string
	WorkerEmail string
}

// RoleFor はADMIN_EMAIL→ADMIN、WORKER_EMAIL→WORKER、それ以外はUSER
func (p RolePolicy) RoleFor(email string) model.Role {
	e := strings.ToLower(strings.TrimSpace(email))
	switch {
	case e == "":
		return model.RoleUser
	case p.AdminEmail != "" && e == strings.ToLower(strings.TrimSpace(p.AdminEmail)):
		return model.RoleAdmin
	case p.WorkerEmail != "" && e == strings.ToLower(strings.TrimSpace(p.WorkerEmail)):
		return model.RoleWorker
	default:
		return model.RoleUser
	}
}

// RegisterUserUsecaseは会員登録の処理。
type RegisterUserUsecase struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
	idGen    IDGenerator
	clock    Clock
	roles    RolePolicy
}

// DI
func NewRegisterUserUsecase(
	userRepo repository.UserRepository,
	hasher PasswordHasher,
	idGen IDGenerator,
	clock Clock,
	roles RolePolicy,
) *RegisterUserUsecase {
	return &RegisterUserUsecase{
		userRepo: userRepo,
		hasher:   hasher,
		idGen:    idGen,
		clock:    clock,
		roles:    roles,
	}
}

// 会員登録実行
func (u *RegisterUserUsecase) Execute(ctx context.Context, in validator.AuthRequest) (RegisterUserOutput, error) {
	var out RegisterUserOutput

	in, err := validator.ValidateRegister(in)
	if err != nil {
		return out, err
	}

	// email重複チェック
	existing, err := u.userRepo.FindByEmail(ctx, in.Email)
	if err != nil {
		return out, err
	}
	if existing != nil {
		return out, ErrEmailAlreadyExists
	}

	// パスワードをハッシュ化
	hashed, err := u.hasher.Hash(in.Password)
	if err != nil {
		return out, err
	}

	now := u.clock.Now()
	user := &model.User{
		ID:           u.idGen.NewID(),
		Email:        in.Email,
		PasswordHash: hashed,
		Role:         u.roles.RoleFor(in.Email),
		TokenVersion: 0,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// DBへ保存（同時登録の重複はここで弾かれる）
	if err := u.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return out, ErrEmailAlreadyExists
		}
		return out, err
	}

	out.User = *user
	out.Landing = user.Role.LandingPath()
	return out, nil
}

// bcryptハッシュ化
type BcryptPasswordHasher struct {
	cost int
}

// DI
func NewBcryptPasswordHasher(cost int) *BcryptPasswordHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptPasswordHasher{cost}
}

// bcryptでハッシュ化
func (h *BcryptPasswordHasher) Hash(plain string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}

	return string(hashedBytes), nil
}

// bcryptハッシュと平文を比較
type BcryptPasswordVerifier struct{}

// DI
func NewBcryptPasswordVerifier() *BcryptPasswordVerifier {
	return &BcryptPasswordVerifier{}
}

func (v *BcryptPasswordVerifier) Verify(plain string, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}
