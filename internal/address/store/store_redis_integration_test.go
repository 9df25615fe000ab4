//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"simohu/internal/address/models"
	"simohu/internal/address/store"
	"simohu/pkg/platform/sentinel"
	"simohu/pkg/testutil/containers"
)

type RedisCacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	cache *store.RedisCache
}

func TestRedisCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisCacheSuite))
}

func (s *RedisCacheSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.cache = store.NewRedisCache(s.redis.Client, 5*time.Minute, nil)
}

func (s *RedisCacheSuite) TearDownSuite() {
	s.redis.Terminate(context.Background())
}

func (s *RedisCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisCacheSuite) TestAddressRoundTrip() {
	ctx := context.Background()
	address := &models.Address{
		PostalCode:   "57020000",
		Street:       "Rua do Comércio",
		Neighborhood: "Centro",
		City:         "Maceió",
		StateCode:    "AL",
		FetchedAt:    time.Now().UTC().Truncate(time.Second),
	}

	s.Require().NoError(s.cache.SaveAddress(ctx, address))

	found, err := s.cache.FindAddress(ctx, "57020000")
	s.Require().NoError(err)
	s.Equal(address.Street, found.Street)
	s.Equal(address.City, found.City)
	s.True(address.FetchedAt.Equal(found.FetchedAt))
}

func (s *RedisCacheSuite) TestMiss() {
	_, err := s.cache.FindAddress(context.Background(), "00000000")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisCacheSuite) TestTTLIsApplied() {
	ctx := context.Background()
	s.Require().NoError(s.cache.SaveAddress(ctx, &models.Address{PostalCode: "01310100"}))

	ttl, err := s.redis.Client.TTL(ctx, "simohu:cep:01310100").Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))
	s.LessOrEqual(ttl, 5*time.Minute)
}

func (s *RedisCacheSuite) TestCorruptEntryIsDropped() {
	ctx := context.Background()
	s.Require().NoError(s.redis.Client.Set(ctx, "simohu:cep:11111111", "{not json", time.Minute).Err())

	_, err := s.cache.FindAddress(ctx, "11111111")
	s.ErrorIs(err, sentinel.ErrNotFound)

	exists, err := s.redis.Client.Exists(ctx, "simohu:cep:11111111").Result()
	s.Require().NoError(err)
	s.Equal(int64(0), exists)
}
