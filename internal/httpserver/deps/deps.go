package deps

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/windmesh/bearing/internal/directory"
	"github.com/windmesh/bearing/internal/logger"
	"github.com/windmesh/bearing/internal/router"
	"github.com/windmesh/bearing/internal/scheduler"
	redisstore "github.com/windmesh/bearing/internal/store/redis"
)

type Deps struct {
	Logger            logger.Logger
	StartTime         time.Time
	Version           string
	Commit            string
	BuildDate         string
	GoVersion         string
	TimeNow           func() time.Time            // for testing, defaults to time.Now
	NodeID            string                      // this node's mesh identity
	NodeName          string                      // human-readable node name
	AllowedHosts      []string                    // Host headers allowed to access the server
	AllowedCIDRS      []string                    // IPs allowed to access admin endpoints
	TrustProxy        bool                        // true if running behind a trusted reverse proxy (e.g., cloudflared)
	RateLimitRPS      float64                     // routing endpoint refill rate (requests/second)
	RateLimitBurst    int                         // routing endpoint burst size
	RedisClient       *redis.Client               // Redis client connection
	Store             *redisstore.Store           // Redis capability/cost store
	Directory         *directory.MemoryDirectory  // In-memory capability directory
	Router            *router.Router              // Routing engine
	Publisher         *scheduler.CostPublisher    // Local cost publisher
	SeedReloadTrigger chan struct{}               // Channel to trigger manual seed reload
	SyncTrigger       chan struct{}               // Channel to trigger manual directory sync
}
