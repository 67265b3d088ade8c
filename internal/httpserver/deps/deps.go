package deps

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/allmytab/startpage/internal/aggregator"
	"github.com/allmytab/startpage/internal/auth"
	"github.com/allmytab/startpage/internal/engagement"
	"github.com/allmytab/startpage/internal/favicon"
	"github.com/allmytab/startpage/internal/layout"
	"github.com/allmytab/startpage/internal/logger"
	"github.com/allmytab/startpage/internal/resolver"
	redisstore "github.com/allmytab/startpage/internal/store/redis"
)

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
	TimeNow   func() time.Time // for testing, defaults to time.Now

	RedisClient *redis.Client
	Store       *redisstore.Store

	Resolver      *resolver.Resolver
	LayoutManager *layout.Manager
	Aggregator    *aggregator.Aggregator
	Engagement    *engagement.Tracker
	Favicon       *favicon.Resolver
	Tokens        *auth.TokenService

	ReloadTrigger chan struct{} // channel to trigger manual seed reload

	TrustProxy    bool
	AdminCIDRs    []string // IPs allowed to hit operator endpoints
	RateBurst     int
	RatePerMinute int
}
