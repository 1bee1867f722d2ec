package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/sportsbook-backend/internal/game"
)

// Cache guarda o catálogo de odds de cada jogo em Redis para leituras
// frequentes da API. Invalidação acontece em edição de odds e registro
// de resultado; apostas nunca leem daqui na hora de travar a odd.
type Cache struct{ R *redis.Client }

func New(r *redis.Client) *Cache { return &Cache{R: r} }

const defaultTTL = 30 * time.Second

func keyGame(gameID string) string { return "odds:game:" + gameID }

func (c *Cache) GetOdds(ctx context.Context, gameID string) (*game.OddsCatalog, bool, error) {
	b, err := c.R.Get(ctx, keyGame(gameID)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var odds game.OddsCatalog
	if err := json.Unmarshal(b, &odds); err != nil {
		return nil, false, err
	}
	return &odds, true, nil
}

func (c *Cache) SetOdds(ctx context.Context, gameID string, odds *game.OddsCatalog) error {
	b, _ := json.Marshal(odds)
	return c.R.Set(ctx, keyGame(gameID), b, defaultTTL).Err()
}

func (c *Cache) Invalidate(ctx context.Context, gameID string) error {
	return c.R.Del(ctx, keyGame(gameID)).Err()
}
