package database

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gocql/gocql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"toko_back_end/internal/config"
)

func TestConnect_RedisOnly(t *testing.T) {
	mr := miniredis.RunT(t)

	c, err := Connect(context.Background(), config.Config{RedisHost: mr.Addr()}, zap.NewNop())
	require.NoError(t, err)
	defer c.Close()

	assert.NotNil(t, c.Redis)
	assert.Nil(t, c.Scylla)
	assert.Nil(t, c.Elastic)
	assert.Nil(t, c.MinIO)
}

func TestConnect_RedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := Connect(context.Background(), config.Config{RedisHost: addr}, zap.NewNop())
	assert.Error(t, err)
}

func TestNewScyllaCluster(t *testing.T) {
	cluster, err := newScyllaCluster(config.Config{
		ScyllaHosts:    []string{"10.0.0.1", "10.0.0.2"},
		ScyllaKeyspace: "toko",
		ScyllaUsername: "kasir",
		ScyllaPassword: "rahasia",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, cluster.Hosts)
	assert.Equal(t, "toko", cluster.Keyspace)
	assert.Equal(t, gocql.Quorum, cluster.Consistency)
	assert.Equal(t, gocql.PasswordAuthenticator{Username: "kasir", Password: "rahasia"}, cluster.Authenticator)

	_, err = newScyllaCluster(config.Config{ScyllaHosts: []string{"h"}, ScyllaCACert: "/introuvable.pem"})
	assert.Error(t, err)
}
