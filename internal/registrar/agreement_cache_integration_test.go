//go:build integration

package registrar_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"

	"domainly/internal/registrar"
	"domainly/pkg/testutil/containers"
)

type countingSource struct {
	calls      int
	agreements []registrar.Agreement
	err        error
}

func (c *countingSource) Agreements(ctx context.Context, tlds []string, privacy bool) ([]registrar.Agreement, error) {
	c.calls++
	return c.agreements, c.err
}

type AgreementCacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
}

func TestAgreementCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(AgreementCacheSuite))
}

func (s *AgreementCacheSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
}

func (s *AgreementCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *AgreementCacheSuite) TestSecondLookupServedFromCache() {
	ctx := context.Background()
	source := &countingSource{agreements: []registrar.Agreement{
		{AgreementKey: "DNRA", Title: "Domain Name Registration Agreement"},
	}}
	cache := registrar.NewCachedAgreements(source, s.redis.Client, slog.Default())

	first, err := cache.Agreements(ctx, []string{"com"}, false)
	s.Require().NoError(err)
	s.Equal(1, source.calls)

	second, err := cache.Agreements(ctx, []string{"com"}, false)
	s.Require().NoError(err)
	s.Equal(1, source.calls)
	s.Equal(first, second)
}

func (s *AgreementCacheSuite) TestDistinctKeysPerTLDSetAndPrivacy() {
	ctx := context.Background()
	source := &countingSource{agreements: []registrar.Agreement{{AgreementKey: "DNRA"}}}
	cache := registrar.NewCachedAgreements(source, s.redis.Client, slog.Default())

	_, err := cache.Agreements(ctx, []string{"com"}, false)
	s.Require().NoError(err)
	_, err = cache.Agreements(ctx, []string{"org"}, false)
	s.Require().NoError(err)
	_, err = cache.Agreements(ctx, []string{"com"}, true)
	s.Require().NoError(err)
	s.Equal(3, source.calls)

	// TLD order does not matter.
	_, err = cache.Agreements(ctx, []string{"org", "com"}, false)
	s.Require().NoError(err)
	_, err = cache.Agreements(ctx, []string{"com", "org"}, false)
	s.Require().NoError(err)
	s.Equal(4, source.calls)
}

func (s *AgreementCacheSuite) TestSourceErrorNotCached() {
	ctx := context.Background()
	source := &countingSource{err: context.DeadlineExceeded}
	cache := registrar.NewCachedAgreements(source, s.redis.Client, slog.Default())

	_, err := cache.Agreements(ctx, []string{"net"}, false)
	s.Require().Error(err)

	source.err = nil
	source.agreements = []registrar.Agreement{{AgreementKey: "DNPA"}}
	agreements, err := cache.Agreements(ctx, []string{"net"}, false)
	s.Require().NoError(err)
	s.Require().Len(agreements, 1)
	s.Equal(2, source.calls)
}
