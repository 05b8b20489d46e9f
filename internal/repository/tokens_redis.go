package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/underbudget/backend/internal/models"
)

const (
	redisTokenKeyPrefix      = "token:"
	redisUserTokensKeyPrefix = "user_tokens:"
)

// RedisTokenRepository keeps the token ledger in Redis: one hash per token
// and one set of token ids per user. Records never expire on their own.
type RedisTokenRepository struct {
	rdb *redis.Client
}

func NewRedisTokenRepository(rdb *redis.Client) *RedisTokenRepository {
	return &RedisTokenRepository{rdb: rdb}
}

func tokenKey(jwtID string) string {
	return redisTokenKeyPrefix + jwtID
}

func userTokensKey(userID string) string {
	return redisUserTokensKeyPrefix + userID
}

// Record writes the token hash and the owner index in one MULTI/EXEC.
func (r *RedisTokenRepository) Record(ctx context.Context, t *models.Token) error {
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, tokenKey(t.JwtID), map[string]any{
			"user_id": t.UserID,
			"issued":  t.Issued.UTC().Format(time.RFC3339Nano),
			"subject": t.Subject,
		})
		pipe.SAdd(ctx, userTokensKey(t.UserID), t.JwtID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to record token: %w", err)
	}
	return nil
}

func (r *RedisTokenRepository) FindByTokenID(ctx context.Context, jwtID string) (*models.Token, error) {
	fields, err := r.rdb.HGetAll(ctx, tokenKey(jwtID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to find token: %w", err)
	}
	return decodeRedisToken(jwtID, fields)
}

func (r *RedisTokenRepository) FindAllByUser(ctx context.Context, userID string) ([]models.Token, error) {
	ids, err := r.rdb.SMembers(ctx, userTokensKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list tokens: %w", err)
	}

	tokens := []models.Token{}
	if len(ids) == 0 {
		return tokens, nil
	}

	pipe := r.rdb.Pipeline()
	cmds := make([]*redis.StringStringMapCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, tokenKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to list tokens: %w", err)
	}

	for i, cmd := range cmds {
		t, err := decodeRedisToken(ids[i], cmd.Val())
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if t.UserID != userID {
			continue
		}
		tokens = append(tokens, *t)
	}
	sortTokens(tokens)
	return tokens, nil
}

func (r *RedisTokenRepository) Revoke(ctx context.Context, jwtID string) error {
	userID, err := r.rdb.HGet(ctx, tokenKey(jwtID), "user_id").Result()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	var del *redis.IntCmd
	_, err = r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, tokenKey(jwtID))
		pipe.SRem(ctx, userTokensKey(userID), jwtID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	if del.Val() == 0 {
		// revoked by someone else between the lookup and the delete
		return ErrNotFound
	}
	return nil
}

func (r *RedisTokenRepository) RevokeAllByUser(ctx context.Context, userID string) (int64, error) {
	ids, err := r.rdb.SMembers(ctx, userTokensKey(userID)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to revoke tokens: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = tokenKey(id)
	}

	var deleted *redis.IntCmd
	_, err = r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		deleted = pipe.Del(ctx, keys...)
		pipe.Del(ctx, userTokensKey(userID))
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to revoke tokens: %w", err)
	}
	return deleted.Val(), nil
}

func decodeRedisToken(jwtID string, fields map[string]string) (*models.Token, error) {
	userID, ok := fields["user_id"]
	if !ok || userID == "" {
		return nil, ErrNotFound
	}

	var issued time.Time
	if raw := fields["issued"]; raw != "" {
		var err error
		issued, err = time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, fmt.Errorf("malformed issued time for token %s: %w", jwtID, err)
		}
	}

	return &models.Token{
		JwtID:   jwtID,
		UserID:  userID,
		Issued:  issued,
		Subject: fields["subject"],
	}, nil
}

func sortTokens(tokens []models.Token) {
	sort.Slice(tokens, func(i, j int) bool {
		if tokens[i].Issued.Equal(tokens[j].Issued) {
			return tokens[i].JwtID < tokens[j].JwtID
		}
		return tokens[i].Issued.Before(tokens[j].Issued)
	})
}
