package redisrepo

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"

	"github.com/shopkit/auth-service/users"
)

const (
	emailKeyPrefix = "user:email:"
	idKeyPrefix    = "user:id:"
)

var _ users.Repo = (*Repo)(nil)

// Repo stores user records as JSON documents in redis, keyed by email, with a
// secondary id -> email index for lookups by user ID.
type Repo struct {
	client *goredis.Client
}

func New(client *goredis.Client) *Repo {
	return &Repo{client: client}
}

// userDoc is the persisted shape. The domain model hides the password hash
// from serialization, so the store keeps its own explicit document.
type userDoc struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

func (r *Repo) Upsert(ctx context.Context, user *users.User) error {
	doc := userDoc{
		ID:           user.ID,
		Email:        user.Email,
		Role:         string(user.Role),
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "[Repo.Upsert] marshal")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, emailKeyPrefix+user.Email, data, 0)
	pipe.Set(ctx, idKeyPrefix+user.ID, user.Email, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrap(err, "[Repo.Upsert] exec")
	}
	return nil
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	val, err := r.client.Get(ctx, emailKeyPrefix+email).Result()
	if err == goredis.Nil {
		return nil, users.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "[Repo.GetByEmail] get")
	}

	var doc userDoc
	if err := json.Unmarshal([]byte(val), &doc); err != nil {
		return nil, errors.Wrap(err, "[Repo.GetByEmail] unmarshal")
	}

	return &users.User{
		ID:           doc.ID,
		Email:        doc.Email,
		Role:         users.RoleFromString(doc.Role),
		PasswordHash: doc.PasswordHash,
		CreatedAt:    doc.CreatedAt,
	}, nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*users.User, error) {
	email, err := r.client.Get(ctx, idKeyPrefix+id).Result()
	if err == goredis.Nil {
		return nil, users.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "[Repo.GetByID] get index")
	}
	return r.GetByEmail(ctx, email)
}

func (r *Repo) Delete(ctx context.Context, email string) error {
	user, err := r.GetByEmail(ctx, email)
	if err == users.ErrNotFound {
		return nil
	}
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, emailKeyPrefix+email)
	pipe.Del(ctx, idKeyPrefix+user.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrap(err, "[Repo.Delete] exec")
	}
	return nil
}
