package database

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/gocql/gocql"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"toko_back_end/internal/config"
)

// Clients regroupe les connexions ouvertes au démarrage. Scylla, Elastic et
// MinIO sont optionnels : nil quand ils ne sont pas configurés.
type Clients struct {
	Scylla  *gocql.Session
	Redis   *redis.Client
	Elastic *elasticsearch.Client
	MinIO   *minio.Client
}

// Connect ouvre toutes les connexions configurées. Redis est obligatoire.
func Connect(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Clients, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	c := &Clients{}

	rdb, err := connectRedis(ctx, cfg)
	if err != nil {
		return nil, err
	}
	c.Redis = rdb
	logger.Info("✅ Connecté à Redis", zap.String("addr", cfg.RedisHost))

	if len(cfg.ScyllaHosts) > 0 {
		session, err := connectScylla(cfg)
		if err != nil {
			c.Close()
			return nil, err
		}
		c.Scylla = session
		logger.Info("✅ Session ScyllaDB ouverte", zap.String("keyspace", cfg.ScyllaKeyspace))
	} else {
		logger.Warn("⚠️ SCYLLA_HOSTS vide, stockage en mémoire")
	}

	if cfg.ElasticURL != "" {
		es, err := connectElastic(cfg)
		if err != nil {
			logger.Warn("⚠️ Elasticsearch indisponible, recherche locale uniquement", zap.Error(err))
		} else {
			c.Elastic = es
			logger.Info("✅ Connecté à Elasticsearch")
		}
	}

	if cfg.MinIOEndpoint != "" {
		mc, err := connectMinIO(ctx, cfg, logger)
		if err != nil {
			logger.Warn("⚠️ MinIO indisponible, images gardées telles quelles", zap.Error(err))
		} else {
			c.MinIO = mc
			logger.Info("✅ Connecté à MinIO", zap.String("endpoint", cfg.MinIOEndpoint))
		}
	}

	return c, nil
}

func (c *Clients) Close() {
	if c.Scylla != nil {
		c.Scylla.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}

func connectRedis(ctx context.Context, cfg config.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisHost,
		Password:     cfg.RedisPassword,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connexion Redis: %w", err)
	}
	return rdb, nil
}

func newScyllaCluster(cfg config.Config) (*gocql.ClusterConfig, error) {
	cluster := gocql.NewCluster(cfg.ScyllaHosts...)
	cluster.Keyspace = cfg.ScyllaKeyspace
	cluster.Consistency = gocql.Quorum
	cluster.Timeout = 5 * time.Second
	cluster.NumConns = 4
	cluster.ReconnectInterval = time.Second
	cluster.PoolConfig.HostSelectionPolicy = gocql.TokenAwareHostPolicy(gocql.RoundRobinHostPolicy())

	if cfg.ScyllaUsername != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: cfg.ScyllaUsername,
			Password: cfg.ScyllaPassword,
		}
	}

	if cfg.ScyllaCACert != "" {
		caCert, err := os.ReadFile(cfg.ScyllaCACert)
		if err != nil {
			return nil, fmt.Errorf("lecture certificat CA: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("certificat CA illisible")
		}
		cluster.SslOpts = &gocql.SslOptions{Config: &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12}}
	}
	return cluster, nil
}

func connectScylla(cfg config.Config) (*gocql.Session, error) {
	cluster, err := newScyllaCluster(cfg)
	if err != nil {
		return nil, err
	}
	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("session ScyllaDB (%s): %w", cfg.ScyllaKeyspace, err)
	}
	return session, nil
}

func connectElastic(cfg config.Config) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.ElasticURL},
		Username:  cfg.ElasticUser,
		Password:  cfg.ElasticPassword,
	})
	if err != nil {
		return nil, err
	}
	res, err := client.Info()
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch: %s", res.Status())
	}
	return client, nil
}

func connectMinIO(ctx context.Context, cfg config.Config, logger *zap.Logger) (*minio.Client, error) {
	client, err := minio.New(cfg.MinIOEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIOAccessKey, cfg.MinIOSecretKey, ""),
		Secure: cfg.MinIOUseSSL,
	})
	if err != nil {
		return nil, err
	}

	exists, err := client.BucketExists(ctx, cfg.MinIOBucket)
	if err != nil {
		return nil, fmt.Errorf("vérification bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinIOBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("création bucket: %w", err)
		}
		logger.Info("🪣 Bucket créé", zap.String("bucket", cfg.MinIOBucket))
	}
	return client, nil
}
