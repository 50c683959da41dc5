package redis

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/DRSN-tech/catalog-backend/internal/cfg"
	"github.com/DRSN-tech/catalog-backend/internal/domain"
	"github.com/DRSN-tech/catalog-backend/internal/repository/redis/converter"
	"github.com/DRSN-tech/catalog-backend/pkg/clients"
	"github.com/DRSN-tech/catalog-backend/pkg/e"
	"github.com/DRSN-tech/catalog-backend/pkg/logger"
	"github.com/jimlawless/whereami"
	r "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const (
	reportKeyPrefix = "report:sales:"
	totalsKey       = reportKeyPrefix + "totals"
	rankingKey      = reportKeyPrefix + "ranking"
	// generationKey вне reportKeyPrefix, чтобы SCAN в InvalidateReports его не удалял
	generationKey = "report:gen:sales"
	scanBatch     = 100
)

var errStaleGeneration = errors.New("report cache generation changed")

// CacheRepo кэширует отчёты о продажах в Redis.
type CacheRepo struct {
	client *clients.RedisClient
	conv   converter.ReportConverter
	cfg    *cfg.RedisCfg
	logger logger.Logger
}

func NewCacheRepo(client *clients.RedisClient, conv converter.ReportConverter,
	cfg *cfg.RedisCfg, logger logger.Logger) *CacheRepo {
	return &CacheRepo{
		client: client,
		conv:   conv,
		cfg:    cfg,
		logger: logger,
	}
}

// ReportGeneration возвращает текущее поколение кэша отчётов. Отсутствие ключа — поколение 0.
func (c *CacheRepo) ReportGeneration(ctx context.Context) (int64, error) {
	gen, err := c.client.Client.Get(ctx, generationKey).Int64()
	if errors.Is(err, r.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}

	return gen, nil
}

// GetSalesTotals возвращает закэшированную выручку по товарам. Промах: ok == false.
func (c *CacheRepo) GetSalesTotals(ctx context.Context) (map[int64]decimal.Decimal, bool, error) {
	var models []converter.SalesTotalRedisModel
	ok, err := c.get(ctx, totalsKey, &models)
	if err != nil || !ok {
		return nil, false, err
	}

	return c.conv.TotalsToDomain(models), true, nil
}

func (c *CacheRepo) SetSalesTotals(ctx context.Context, gen int64, totals map[int64]decimal.Decimal) error {
	return c.setIfGeneration(ctx, gen, totalsKey, c.conv.TotalsToRedisModel(totals))
}

// GetSalesRanking возвращает закэшированный полный рейтинг продаж.
func (c *CacheRepo) GetSalesRanking(ctx context.Context) ([]domain.ProductSales, bool, error) {
	var models []converter.ProductSalesRedisModel
	ok, err := c.get(ctx, rankingKey, &models)
	if err != nil || !ok {
		return nil, false, err
	}

	return c.conv.TopToDomain(models), true, nil
}

func (c *CacheRepo) SetSalesRanking(ctx context.Context, gen int64, ranking []domain.ProductSales) error {
	return c.setIfGeneration(ctx, gen, rankingKey, c.conv.TopToRedisModel(ranking))
}

// InvalidateReports увеличивает поколение и удаляет все ключи отчётов.
// Поколение растёт первым: фоновая запись, начатая до инвалидации, уже не пройдёт WATCH.
func (c *CacheRepo) InvalidateReports(ctx context.Context) error {
	if err := c.client.Client.Incr(ctx, generationKey).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	keys := make([]string, 0, 8)

	iter := c.client.Client.Scan(ctx, 0, reportKeyPrefix+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if len(keys) == 0 {
		return nil
	}

	if err := c.client.Client.Del(ctx, keys...).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	c.logger.Debugf("invalidated %d report cache keys", len(keys))
	return nil
}

func (c *CacheRepo) get(ctx context.Context, key string, dst any) (bool, error) {
	data, err := c.client.Client.Get(ctx, key).Bytes()
	if errors.Is(err, r.Nil) {
		return false, nil // cache miss
	}
	if err != nil {
		return false, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		c.logger.Warnf("Redis unmarshal failed for key %s: %v", key, e.Wrap(whereami.WhereAmI(), err))
		if err := c.client.Client.Del(ctx, key).Err(); err != nil {
			c.logger.Warnf("Redis del failed: %v", e.Wrap(whereami.WhereAmI(), err))
		}
		return false, nil
	}

	return true, nil
}

// setIfGeneration пишет value под WATCH ключа поколения. Если поколение уже не gen
// или сменилось до EXEC, запись пропускается без ошибки.
func (c *CacheRepo) setIfGeneration(ctx context.Context, gen int64, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	err = c.client.Client.Watch(ctx, func(tx *r.Tx) error {
		current, err := tx.Get(ctx, generationKey).Int64()
		if err != nil && !errors.Is(err, r.Nil) {
			return err
		}
		if current != gen {
			return errStaleGeneration
		}

		_, err = tx.TxPipelined(ctx, func(pipe r.Pipeliner) error {
			pipe.Set(ctx, key, data, c.cfg.ReportTTL)
			return nil
		})
		return err
	}, generationKey)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, errStaleGeneration), errors.Is(err, r.TxFailedErr):
		c.logger.Debugf("skip caching %s: report cache was invalidated", key)
		return nil
	default:
		return e.Wrap(whereami.WhereAmI(), err)
	}
}
