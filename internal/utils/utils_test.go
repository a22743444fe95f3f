package utils

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT(42, "seller", "secret")
	require.NoError(t, err)

	claims, err := ParseJWT(token, "secret")

	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "seller", claims.Role)
}

func TestJWTRejectsWrongSecret(t *testing.T) {
	token, err := GenerateJWT(1, "seller", "secret")
	require.NoError(t, err)

	_, err = ParseJWT(token, "other")

	assert.Error(t, err)
}

func TestJWTRejectsExpiredToken(t *testing.T) {
	claims := Claims{UserID: 1, RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    TokenIssuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = ParseJWT(token, "secret")

	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestJWTRequiresIssuerAndExpiry(t *testing.T) {
	for name, claims := range map[string]Claims{
		"foreign issuer": {UserID: 1, RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}},
		"no expiry": {UserID: 1, RegisteredClaims: jwt.RegisteredClaims{Issuer: TokenIssuer}},
	} {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
		require.NoError(t, err)

		_, err = ParseJWT(token, "secret")

		assert.Error(t, err, name)
	}
}

func TestCacheRoundTrip(t *testing.T) {
	_, rdb := newRedis(t)
	ctx := context.Background()

	var missing map[string]int
	found, err := GetCache(ctx, rdb, "k", &missing)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, SetCache(ctx, rdb, "k", map[string]int{"a": 1}, time.Minute))
	var got map[string]int
	found, err = GetCache(ctx, rdb, "k", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, map[string]int{"a": 1}, got)

	require.NoError(t, DeleteCache(ctx, rdb, "k"))
	found, _ = GetCache(ctx, rdb, "k", &got)
	assert.False(t, found)
}

func TestDeleteCachePrefix(t *testing.T) {
	mr, rdb := newRedis(t)
	ctx := context.Background()
	for _, k := range []string{"txhistory:user:1:page:1", "txhistory:user:1:page:2", "txhistory:user:2:page:1"} {
		require.NoError(t, mr.Set(k, "x"))
	}

	require.NoError(t, DeleteCachePrefix(ctx, rdb, "txhistory:user:1:"))
	require.NoError(t, DeleteCachePrefix(ctx, rdb, "nothing:"))

	assert.False(t, mr.Exists("txhistory:user:1:page:1"))
	assert.False(t, mr.Exists("txhistory:user:1:page:2"))
	assert.True(t, mr.Exists("txhistory:user:2:page:1"))
}

func TestCounter(t *testing.T) {
	mr, rdb := newRedis(t)
	ctx := context.Background()

	n, err := IncrCounter(ctx, rdb, "quota", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, err = IncrCounter(ctx, rdb, "quota", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, time.Hour, mr.TTL("quota"))

	require.NoError(t, DecrCounter(ctx, rdb, "quota"))
	v, _ := mr.Get("quota")
	assert.Equal(t, "1", v)

	mr.FastForward(time.Hour + time.Second)
	assert.False(t, mr.Exists("quota"))
}
