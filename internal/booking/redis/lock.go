package redis

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// Redis serializes conflict-check-then-write sequences on one venue-day. The
// lock is held only for the duration of a single propose or approve commit;
// the TTL is a safety net against a crashed holder.
type Redis struct {
	Client *redis.Client
	Logger *log.Logger
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{
		Client: client,
		Logger: log.Default(),
	}
}

// getSlotLockDuration returns the slot lock TTL from the environment or the default
func (r *Redis) getSlotLockDuration() time.Duration {
	defaultDuration := 30 * time.Second

	ttlStr := os.Getenv("SLOT_LOCK_TTL_SECONDS")
	if ttlStr == "" {
		return defaultDuration
	}

	ttlSec, err := strconv.Atoi(ttlStr)
	if err != nil {
		r.Logger.Println("REDIS: invalid SLOT_LOCK_TTL_SECONDS value '" + ttlStr + "', using default 30 seconds")
		return defaultDuration
	}

	return time.Duration(ttlSec) * time.Second
}

func slotKey(venueID string, date time.Time) string {
	return fmt.Sprintf("venue_slot:%s:%s", venueID, date.Format("2006-01-02"))
}

// LockSlot takes the venue-day lock for the given owner token. Returns false
// when another commit currently holds it.
func (r *Redis) LockSlot(venueID string, date time.Time, token string) (bool, error) {
	key := slotKey(venueID, date)
	ok, err := r.Client.SetNX(context.Background(), key, token, r.getSlotLockDuration()).Result()
	return ok, err
}

// UnlockSlot releases the venue-day lock, but only if the caller still owns
// it. A lock that expired and was re-taken by someone else stays put.
func (r *Redis) UnlockSlot(venueID string, date time.Time, token string) error {
	ctx := context.Background()
	key := slotKey(venueID, date)

	val, err := r.Client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil // already released
	}
	if err != nil {
		return err
	}
	if val == token {
		_, err := r.Client.Del(ctx, key).Result()
		return err
	}
	return nil
}
