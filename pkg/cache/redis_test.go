package cache_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/fortuna/gameday/pkg/cache"
)

func TestRedisCache_HealthCheck(t *testing.T) {
	tests := []struct {
		name    string
		down    bool
		healthy bool
	}{
		{"reachable", false, true},
		{"server gone", true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mr := miniredis.RunT(t)
			client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
			rc := cache.NewRedisCacheFromClient(client)
			t.Cleanup(func() { rc.Close() })

			if tt.down {
				mr.Close()
			}
			err := rc.HealthCheck(context.Background())
			if tt.healthy && err != nil {
				t.Errorf("Expected a healthy connection, got %v", err)
			}
			if !tt.healthy && err == nil {
				t.Error("Expected an error")
			}
		})
	}
}
