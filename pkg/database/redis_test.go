package database

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tail418/nugulmap-api/internal/config"
)

func TestRedisOptions(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.RedisConfig
		wantAddrs []string
		wantErr   bool
	}{
		{name: "single addr", cfg: config.RedisConfig{Addr: "localhost:6379"}, wantAddrs: []string{"localhost:6379"}},
		{name: "addrs win over addr", cfg: config.RedisConfig{Addr: "a:1", Addrs: []string{"b:2", "c:3"}, Mode: "cluster"}, wantAddrs: []string{"b:2", "c:3"}},
		{name: "no address", cfg: config.RedisConfig{}, wantErr: true},
		{name: "sentinel without master", cfg: config.RedisConfig{Addr: "a:1", Mode: "sentinel"}, wantErr: true},
		{name: "unknown mode", cfg: config.RedisConfig{Addr: "a:1", Mode: "ring"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := RedisOptions(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAddrs, opts.Addrs)
		})
	}
}

func TestRedisOptions_Sentinel(t *testing.T) {
	opts, err := RedisOptions(config.RedisConfig{Addr: "a:26379", Mode: "sentinel", MasterName: "mymaster", MaxRetries: -1})
	require.NoError(t, err)
	assert.Equal(t, "mymaster", opts.MasterName)
	assert.Equal(t, -1, opts.MaxRetries)
}

func TestNewUniversalRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewUniversalRedisClient(context.Background(), config.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	got, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestNewUniversalRedisClient_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewUniversalRedisClient(context.Background(), config.RedisConfig{Addr: addr, MaxRetries: -1})
	assert.Error(t, err)
}
