package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	PriorityLow    = 0
	PriorityNormal = 1
	PriorityHigh   = 2
)

// Queue hands rendition job ids from the worker's HTTP side to its pool.
type Queue interface {
	Enqueue(ctx context.Context, jobID string, priority int) error
	ClaimBlocking(ctx context.Context, timeout time.Duration) (string, error)
	Ack(ctx context.Context, jobID string) error
	RequeueStale(ctx context.Context, olderThan time.Duration, maxPerLane int64) (int64, error)
	Depth(ctx context.Context) (int64, error)
}

type Lane struct {
	QueueKey      string
	ProcessingKey string
}

// LanesFor derives the three lane key pairs from base key names.
func LanesFor(queueKey, processingKey string) (low, normal, high Lane) {
	mk := func(suffix string) Lane {
		return Lane{QueueKey: queueKey + ":" + suffix, ProcessingKey: processingKey + ":" + suffix}
	}
	return mk("low"), mk("normal"), mk("high")
}

// RedisQueue is an at-least-once priority queue on redis lists.
// Claim moves an id from a lane's queue to its processing list with
// BRPOPLPUSH and records "<processing key>|<unix seconds>" in a hash so Ack
// can LREM it and RequeueStale can tell a crashed claim from a slow one.
type RedisQueue struct {
	rdb              redis.UniversalClient
	processingMapKey string
	lanes            [3]Lane // indexed by priority
	slot             time.Duration
	now              func() time.Time
}

func NewRedisQueue(rdb redis.UniversalClient, processingMapKey string, low, normal, high Lane) *RedisQueue {
	return &RedisQueue{
		rdb:              rdb,
		processingMapKey: processingMapKey,
		lanes:            [3]Lane{low, normal, high},
		slot:             time.Second,
		now:              time.Now,
	}
}

func encodeClaim(processingKey string, at time.Time) string {
	return processingKey + "|" + strconv.FormatInt(at.Unix(), 10)
}

// decodeClaim accepts a bare processing key as a claim with no timestamp.
func decodeClaim(v string) (processingKey string, at time.Time, ok bool) {
	i := strings.LastIndexByte(v, '|')
	if i < 0 {
		return v, time.Time{}, false
	}
	sec, err := strconv.ParseInt(v[i+1:], 10, 64)
	if err != nil {
		return v, time.Time{}, false
	}
	return v[:i], time.Unix(sec, 0), true
}

func clampPriority(p int) int {
	if p < PriorityLow {
		return PriorityLow
	}
	if p > PriorityHigh {
		return PriorityHigh
	}
	return p
}

func (q *RedisQueue) lane(priority int) Lane {
	return q.lanes[clampPriority(priority)]
}

// byPriority lists lanes high first.
func (q *RedisQueue) byPriority() []Lane {
	return []Lane{q.lanes[PriorityHigh], q.lanes[PriorityNormal], q.lanes[PriorityLow]}
}

func (q *RedisQueue) Enqueue(ctx context.Context, jobID string, priority int) error {
	return q.rdb.LPush(ctx, q.lane(priority).QueueKey, jobID).Err()
}

// ClaimBlocking polls lanes high to low in short blocking slots until an id
// arrives or timeout passes (redis.Nil). timeout <= 0 waits until ctx ends.
func (q *RedisQueue) ClaimBlocking(ctx context.Context, timeout time.Duration) (string, error) {
	forever := timeout <= 0
	deadline := time.Now().Add(timeout)

	slot := q.slot
	if !forever && timeout < slot {
		slot = timeout
	}

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if !forever && time.Now().After(deadline) {
			return "", redis.Nil
		}

		for _, ln := range q.byPriority() {
			wait := slot
			if !forever {
				remain := time.Until(deadline)
				if remain <= 0 {
					return "", redis.Nil
				}
				wait = min(wait, remain)
			}

			id, err := q.rdb.BRPopLPush(ctx, ln.QueueKey, ln.ProcessingKey, wait).Result()
			if err == nil {
				if hErr := q.rdb.HSet(ctx, q.processingMapKey, id, encodeClaim(ln.ProcessingKey, q.now())).Err(); hErr != nil {
					return "", hErr
				}
				return id, nil
			}
			if errors.Is(err, redis.Nil) {
				continue
			}
			return "", err
		}
	}
}

func (q *RedisQueue) Ack(ctx context.Context, jobID string) error {
	claim, err := q.rdb.HGet(ctx, q.processingMapKey, jobID).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			return err
		}
		// No lane recorded: the reaper already moved it or the map was lost.
		for _, ln := range q.byPriority() {
			_ = q.rdb.LRem(ctx, ln.ProcessingKey, 1, jobID).Err()
		}
		return nil
	}

	processingKey, _, _ := decodeClaim(claim)
	if err := q.rdb.LRem(ctx, processingKey, 1, jobID).Err(); err != nil {
		return err
	}
	_ = q.rdb.HDel(ctx, q.processingMapKey, jobID).Err()
	return nil
}

// requeueScript moves one id back to its queue only if its claim record is
// still the one the reaper read, so a fresh re-claim or an Ack in between wins.
var requeueScript = redis.NewScript(`
if redis.call('HGET', KEYS[1], ARGV[1]) ~= ARGV[2] then
  return 0
end
redis.call('HDEL', KEYS[1], ARGV[1])
if redis.call('LREM', KEYS[2], 1, ARGV[1]) == 0 then
  return 0
end
redis.call('RPUSH', KEYS[3], ARGV[1])
return 1
`)

// RequeueStale puts ids claimed more than olderThan ago back at the claiming
// end of their lane, at most maxPerLane per lane. olderThan must exceed the
// longest a live worker can hold a job. An id sitting in a processing list
// without a claim record is stamped now and becomes eligible later.
func (q *RedisQueue) RequeueStale(ctx context.Context, olderThan time.Duration, maxPerLane int64) (int64, error) {
	claims, err := q.rdb.HGetAll(ctx, q.processingMapKey).Result()
	if err != nil {
		return 0, err
	}
	now := q.now()
	cutoff := now.Add(-olderThan)

	var moved int64
	for _, ln := range q.byPriority() {
		ids, err := q.rdb.LRange(ctx, ln.ProcessingKey, 0, -1).Result()
		if err != nil {
			return moved, err
		}

		var laneMoved int64
		for _, id := range ids {
			if laneMoved >= maxPerLane {
				break
			}
			claim, ok := claims[id]
			if !ok {
				if err := q.rdb.HSetNX(ctx, q.processingMapKey, id, encodeClaim(ln.ProcessingKey, now)).Err(); err != nil {
					return moved, err
				}
				continue
			}
			_, at, ok := decodeClaim(claim)
			if !ok {
				if err := q.rdb.HSet(ctx, q.processingMapKey, id, encodeClaim(ln.ProcessingKey, now)).Err(); err != nil {
					return moved, err
				}
				continue
			}
			if at.After(cutoff) {
				continue
			}

			n, err := requeueScript.Run(ctx, q.rdb, []string{q.processingMapKey, ln.ProcessingKey, ln.QueueKey}, id, claim).Int64()
			if err != nil {
				return moved, err
			}
			laneMoved += n
		}
		moved += laneMoved
	}
	return moved, nil
}

// Depth is the number of ids waiting across all lanes.
func (q *RedisQueue) Depth(ctx context.Context) (int64, error) {
	var total int64
	for _, ln := range q.lanes {
		n, err := q.rdb.LLen(ctx, ln.QueueKey).Result()
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}
