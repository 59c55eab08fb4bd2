package cache

import (
	"context"
	"strings"
	"time"

	errs "github.com/matzehuels/trackgrid/pkg/errors"
)

// Backend names accepted by Open.
const (
	BackendNone  = "none"
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

// Options selects and configures a cache backend.
type Options struct {
	// Backend is one of none, file, redis or mongo. Empty means file when Dir
	// is set and none otherwise.
	Backend string

	// Dir is the FileCache directory.
	Dir string

	// MaxTTL caps entry lifetimes when positive.
	MaxTTL time.Duration

	Redis RedisOptions
	Mongo MongoOptions
}

// Open creates the configured backend wrapped with WithHooks.
// A negative MaxTTL is treated as zero.
func Open(ctx context.Context, opts Options) (Cache, error) {
	backend := strings.ToLower(strings.TrimSpace(opts.Backend))
	if backend == "" {
		backend = BackendNone
		if opts.Dir != "" {
			backend = BackendFile
		}
	}

	var (
		c   Cache
		err error
	)
	switch backend {
	case BackendNone:
		c = NewNullCache()
	case BackendFile:
		if opts.Dir == "" {
			return nil, errs.New(errs.ErrCodeInvalidInput, "file cache needs a directory")
		}
		c, err = NewFileCache(opts.Dir)
	case BackendRedis:
		if opts.Redis.Addr == "" {
			return nil, errs.New(errs.ErrCodeInvalidInput, "redis cache needs an address")
		}
		c, err = NewRedisCache(ctx, opts.Redis)
	case BackendMongo:
		if opts.Mongo.URI == "" {
			return nil, errs.New(errs.ErrCodeInvalidInput, "mongo cache needs a URI")
		}
		c, err = NewMongoCache(ctx, opts.Mongo)
	default:
		return nil, errs.New(errs.ErrCodeInvalidInput, "unknown cache backend %q (want none, file, redis or mongo)", opts.Backend)
	}
	if err != nil {
		return nil, err
	}
	return &hooked{inner: c, maxTTL: opts.MaxTTL}, nil
}
