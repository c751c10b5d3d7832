package backup

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// ErrNoSnapshot is returned by Storage.Read when nothing has been saved yet.
var ErrNoSnapshot = errors.New("no snapshot stored")

// Storage holds the encoded snapshot.
type Storage interface {
	Write(ctx context.Context, data []byte) error
	Read(ctx context.Context) ([]byte, error)
}

// FileStorage keeps the snapshot in a local file.
type FileStorage struct {
	Path string
}

// Write replaces the file atomically.
func (f FileStorage) Write(_ context.Context, data []byte) error {
	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "create backup dir")
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.Path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "write temp file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close temp file")
	}
	return errors.Wrap(os.Rename(tmp.Name(), f.Path), "replace backup file")
}

func (f FileStorage) Read(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoSnapshot
	}
	return data, errors.Wrap(err, "read backup file")
}

// RedisStorage keeps the snapshot under a single redis key.
type RedisStorage struct {
	Client *redis.Client
	Key    string
}

// NewRedisStorage connects to url, which may be a redis:// URL or host:port.
func NewRedisStorage(url, key string) (*RedisStorage, error) {
	opts := &redis.Options{Addr: url}
	if strings.Contains(url, "://") {
		parsed, err := redis.ParseURL(url)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid redis url %q", url)
		}
		opts = parsed
	}
	return &RedisStorage{Client: redis.NewClient(opts), Key: key}, nil
}

func (r *RedisStorage) Write(ctx context.Context, data []byte) error {
	return errors.Wrap(r.Client.Set(ctx, r.Key, data, 0).Err(), "redis set")
}

func (r *RedisStorage) Read(ctx context.Context) ([]byte, error) {
	data, err := r.Client.Get(ctx, r.Key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoSnapshot
	}
	return data, errors.Wrap(err, "redis get")
}

// Close releases the redis connection pool.
func (r *RedisStorage) Close() error {
	return r.Client.Close()
}
