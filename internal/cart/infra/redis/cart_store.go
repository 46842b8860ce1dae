package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/dwikikusuma/storefront/internal/cart/domain"
)

// Each cart lives under three keys:
//
//	cart:{id}:lines  hash  productID -> JSON {unitPrice, meta}
//	cart:{id}:qty    hash  productID -> quantity
//	cart:{id}:order  zset  productID scored by first-add time
//
// KEYS = lines, qty, order for every script below.

// refreshTTL is prepended to every write script so each write slides the expiry of
// all three keys.
const refreshTTL = `
local function refresh(ttl)
    ttl = tonumber(ttl)
    if ttl > 0 then
        for i = 1, 3 do
            redis.call("EXPIRE", KEYS[i], ttl)
        end
    end
end
`

// ARGV: productID, line JSON, quantity delta, ttl seconds, first-add score.
var addScript = goredis.NewScript(refreshTTL + `
redis.call("HSETNX", KEYS[1], ARGV[1], ARGV[2])
local qty = redis.call("HINCRBY", KEYS[2], ARGV[1], ARGV[3])
redis.call("ZADD", KEYS[3], "NX", ARGV[5], ARGV[1])
refresh(ARGV[4])
return {redis.call("HGET", KEYS[1], ARGV[1]), qty}
`)

// ARGV: productID, quantity, ttl seconds.
var setQuantityScript = goredis.NewScript(refreshTTL + `
if redis.call("HEXISTS", KEYS[2], ARGV[1]) == 0 then
    return 0
end
redis.call("HSET", KEYS[2], ARGV[1], ARGV[2])
refresh(ARGV[3])
return 1
`)

// ARGV: productID, ttl seconds.
var removeScript = goredis.NewScript(refreshTTL + `
local n = redis.call("HDEL", KEYS[2], ARGV[1])
redis.call("HDEL", KEYS[1], ARGV[1])
redis.call("ZREM", KEYS[3], ARGV[1])
if n > 0 then
    refresh(ARGV[2])
end
return n
`)

type storedLine struct {
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Meta      domain.Meta     `json:"meta"`
}

// CartStore persists one cart in Redis. Writes refresh the cart's TTL.
type CartStore struct {
	client goredis.UniversalClient
	keys   []string
	ttl    time.Duration
}

func NewCartStore(client goredis.UniversalClient, cartID string, ttl time.Duration) *CartStore {
	prefix := "cart:" + cartID
	return &CartStore{
		client: client,
		keys:   []string{prefix + ":lines", prefix + ":qty", prefix + ":order"},
		ttl:    ttl,
	}
}

func (s *CartStore) Items(ctx context.Context) ([]domain.LineItem, error) {
	var (
		linesCmd *goredis.MapStringStringCmd
		qtyCmd   *goredis.MapStringStringCmd
		orderCmd *goredis.StringSliceCmd
	)
	// MULTI/EXEC so a concurrent remove cannot split a line from its quantity.
	_, err := s.client.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		linesCmd = p.HGetAll(ctx, s.keys[0])
		qtyCmd = p.HGetAll(ctx, s.keys[1])
		orderCmd = p.ZRange(ctx, s.keys[2], 0, -1)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	lines, qtys, order := linesCmd.Val(), qtyCmd.Val(), orderCmd.Val()
	items := make([]domain.LineItem, 0, len(order))
	for _, productID := range order {
		raw, ok := lines[productID]
		if !ok {
			continue
		}
		qty, err := strconv.Atoi(qtys[productID])
		if err != nil {
			return nil, fmt.Errorf("cart line %s: bad quantity: %w", productID, err)
		}
		item, err := decodeLine(productID, raw, qty)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *CartStore) Add(ctx context.Context, item domain.LineItem) (domain.LineItem, error) {
	raw, err := json.Marshal(storedLine{UnitPrice: item.UnitPrice, Meta: item.Meta})
	if err != nil {
		return domain.LineItem{}, err
	}

	res, err := addScript.Run(ctx, s.client, s.keys,
		item.ProductID,
		string(raw),
		item.Quantity,
		s.ttlSeconds(),
		time.Now().UnixMicro(),
	).Slice()
	if err != nil {
		return domain.LineItem{}, fmt.Errorf("add cart line: %w", err)
	}
	if len(res) != 2 {
		return domain.LineItem{}, fmt.Errorf("add cart line: unexpected script reply %v", res)
	}

	stored, _ := res[0].(string)
	qty, _ := res[1].(int64)
	return decodeLine(item.ProductID, stored, int(qty))
}

func (s *CartStore) Remove(ctx context.Context, productID string) error {
	n, err := removeScript.Run(ctx, s.client, s.keys, productID, s.ttlSeconds()).Int()
	if err != nil {
		return fmt.Errorf("remove cart line: %w", err)
	}
	if n == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

func (s *CartStore) SetQuantity(ctx context.Context, productID string, quantity int) error {
	ok, err := setQuantityScript.Run(ctx, s.client, s.keys, productID, quantity, s.ttlSeconds()).Int()
	if err != nil {
		return fmt.Errorf("set cart quantity: %w", err)
	}
	if ok == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

func (s *CartStore) Clear(ctx context.Context) error {
	return s.client.Del(ctx, s.keys...).Err()
}

func (s *CartStore) ttlSeconds() int64 {
	return int64(s.ttl / time.Second)
}

func decodeLine(productID, raw string, qty int) (domain.LineItem, error) {
	var line storedLine
	if err := json.Unmarshal([]byte(raw), &line); err != nil {
		return domain.LineItem{}, fmt.Errorf("cart line %s: %w", productID, err)
	}
	return domain.LineItem{
		ProductID: productID,
		UnitPrice: line.UnitPrice,
		Quantity:  qty,
		Meta:      line.Meta,
	}, nil
}
