package database

import (
	"context"
	"crypto/md5"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	goRedis "github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// CacheRepository is the read-through cache in front of the schedule and
// master-row queries. Writes are collected on a channel and flushed in one
// pipeline so request handlers never block on Redis.
type CacheRepository interface {
	Get(namespace, key string) ([]byte, bool)
	AddToChannel(namespace, key string, value []byte, expiry time.Duration)
	Set(watchKey string) error
	Invalidate(namespace, key string)
}

type RedisSettings struct {
	DB         *int
	DBUser     *string
	DBPassword *string
	Host       *string
	Port       *string
	Protocol   *int
}

type RedisConnection struct {
	client *goRedis.Client
	ctx    context.Context
	ch     chan cacheEntry
	mu     sync.Mutex
}

const (
	maxRetries = 2
	poolSize   = 30
)

type cacheEntry struct {
	namespace string
	key       string
	value     []byte
	expiry    time.Duration
}

// Constructor to create an instance of the cache repository with connection pool setup
func NewRedisConnection(settings RedisSettings) (*RedisConnection, error) {
	ctx := context.Background()
	redisClient := goRedis.NewClient(&goRedis.Options{
		Addr:     *settings.Host + ":" + *settings.Port,
		DB:       *settings.DB,
		PoolSize: poolSize,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	log.Infof("Connected to Redis - %s", redisClient)
	return &RedisConnection{
		client: redisClient,
		ctx:    context.Background(),
		ch:     make(chan cacheEntry, 50),
	}, nil
}

func GenerateUUIDFromString(namespace, key string) string {
	hash := md5.Sum([]byte(namespace))
	namespaceUUID := uuid.Must(uuid.FromBytes(hash[:]))
	generatedUUID := uuid.NewMD5(namespaceUUID, []byte(key))
	return generatedUUID.String()
}

func (r *RedisConnection) AddToChannel(namespace, key string, value []byte, expiry time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	select {
	case r.ch <- cacheEntry{namespace: namespace, key: GenerateUUIDFromString(namespace, key), value: value, expiry: expiry}:
	default:
		log.Warnf("Redis cache channel full, dropping cache entry for key: %s", key)
	}
}

// Set drains the pending entries and writes them in one transactional
// pipeline, retrying once on a watch conflict.
func (r *RedisConnection) Set(watchKey string) error {
	r.mu.Lock()
	// Drain the channel without closing it
	var entries []cacheEntry
	for {
		select {
		case data := <-r.ch:
			entries = append(entries, data)
		default:
			goto done
		}
	}
done:
	r.mu.Unlock()

	txp := func(tx *goRedis.Tx) error {
		_, err := tx.TxPipelined(r.ctx, func(pipe goRedis.Pipeliner) error {
			for _, data := range entries {
				setRes := pipe.SetNX(r.ctx, data.key, data.value, data.expiry)
				if err := setRes.Err(); err != nil {
					log.Errorf("Error caching %s: %v", data.key, err)
				} else {
					log.Infof("Background Task: Successfully cached %s for %v", data.key, data.namespace)
				}
			}
			return nil
		})
		if err != nil {
			log.Errorf("error in pipeline %v", err.Error())
			return err
		}
		return nil
	}

	for i := 0; i < maxRetries; i++ {
		err := r.client.Watch(r.ctx, txp, GenerateUUIDFromString("watchKey", watchKey))
		if err == nil {
			return nil
		}
		if err == goRedis.TxFailedErr {
			continue
		}
		return err
	}
	return errors.New("cache flush reached maximum number of retries")
}

func (r *RedisConnection) Get(namespace, key string) ([]byte, bool) {
	hashKey := GenerateUUIDFromString(namespace, key)

	storedValue, err := r.client.Get(r.ctx, hashKey).Bytes()
	if err == goRedis.Nil {
		log.Infof("Background Task: %s with key: %s does not exist", namespace, hashKey)
		return nil, false
	} else if err != nil {
		log.Errorf("error getting value %v", err.Error())
		return nil, false
	}
	log.Infof("Background Task: %s with key: %s exist", namespace, hashKey)
	return storedValue, true
}

// Invalidate drops a cached entry after its source data changed. A miss is
// not an error.
func (r *RedisConnection) Invalidate(namespace, key string) {
	hashKey := GenerateUUIDFromString(namespace, key)
	if err := r.client.Del(r.ctx, hashKey).Err(); err != nil && err != goRedis.Nil {
		log.Errorf("error invalidating %s: %v", hashKey, err)
	}
}
