package redisad

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"swipess_api/internal/domain"
)

// KV holds the explicitly-schemed keys of the service: onboarding sessions,
// picker state, purchase round-trip markers, and dialog transcripts. Every
// key carries a TTL; nothing here is durable storage.
type KV struct {
	c          *redis.Client
	sessionTTL time.Duration
	pickerTTL  time.Duration
	pendingTTL time.Duration
	dialogTTL  time.Duration
}

const (
	commitLatchTTL = 30 * time.Second
	busyLatchTTL   = 60 * time.Second
)

func NewKV(c *redis.Client, sessionTTL, pickerTTL, pendingTTL, dialogTTL time.Duration) *KV {
	return &KV{c: c, sessionTTL: sessionTTL, pickerTTL: pickerTTL, pendingTTL: pendingTTL, dialogTTL: dialogTTL}
}

func sessionKey(id string) string   { return "onb:" + id }
func commitKey(id string) string    { return "onb:" + id + ":commit" }
func pickerKey(id string) string    { return "pick:" + id }
func pickerGenKey(id string) string { return "pick:" + id + ":gen" }
func pendingKey(u string) string    { return "pay:pending:" + u }
func returnKey(u string) string     { return "pay:return:" + u }
func dialogKey(id string) string    { return "chat:" + id }
func busyKey(id string) string      { return "chat:" + id + ":busy" }

// ---- onboarding sessions ----

func (k *KV) PutSession(ctx context.Context, s domain.OnboardingSession) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return k.c.Set(ctx, sessionKey(s.ID), b, k.sessionTTL).Err()
}

func (k *KV) GetSession(ctx context.Context, id string) (domain.OnboardingSession, error) {
	v, err := k.c.Get(ctx, sessionKey(id)).Bytes()
	if err == redis.Nil {
		return domain.OnboardingSession{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.OnboardingSession{}, err
	}
	var s domain.OnboardingSession
	return s, json.Unmarshal(v, &s)
}

func (k *KV) DeleteSession(ctx context.Context, id string) error {
	return k.c.Del(ctx, sessionKey(id)).Err()
}

func (k *KV) AcquireCommit(ctx context.Context, id string) (bool, error) {
	return k.c.SetNX(ctx, commitKey(id), "1", commitLatchTTL).Result()
}

func (k *KV) ReleaseCommit(ctx context.Context, id string) error {
	return k.c.Del(ctx, commitKey(id)).Err()
}

// ---- picker state ----

// applySelection drops the write when a newer generation has been claimed
// since the caller started resolving. The generation key may have expired;
// in that case nothing newer can be in flight, so the write goes through.
var applySelection = redis.NewScript(`
local latest = redis.call('GET', KEYS[1])
if latest and tonumber(latest) > tonumber(ARGV[1]) then
  return 0
end
redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
return 1
`)

func (k *KV) PutPicker(ctx context.Context, p domain.PickerState) error {
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	pipe := k.c.TxPipeline()
	pipe.Set(ctx, pickerKey(p.ID), b, k.pickerTTL)
	pipe.Set(ctx, pickerGenKey(p.ID), p.Generation, k.pickerTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (k *KV) GetPicker(ctx context.Context, id string) (domain.PickerState, error) {
	v, err := k.c.Get(ctx, pickerKey(id)).Bytes()
	if err == redis.Nil {
		return domain.PickerState{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.PickerState{}, err
	}
	var p domain.PickerState
	return p, json.Unmarshal(v, &p)
}

func (k *KV) NextGeneration(ctx context.Context, id string) (int64, error) {
	pipe := k.c.TxPipeline()
	incr := pipe.Incr(ctx, pickerGenKey(id))
	pipe.Expire(ctx, pickerGenKey(id), k.pickerTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

func (k *KV) ApplySelection(ctx context.Context, p domain.PickerState) (bool, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return false, err
	}
	n, err := applySelection.Run(ctx, k.c,
		[]string{pickerGenKey(p.ID), pickerKey(p.ID)},
		p.Generation, b, k.pickerTTL.Milliseconds(),
	).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ---- purchase round-trip ----

func (k *KV) PutPending(ctx context.Context, userID string, m domain.PendingPurchase, returnPath string) error {
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	pipe := k.c.TxPipeline()
	pipe.Set(ctx, pendingKey(userID), b, k.pendingTTL)
	pipe.Set(ctx, returnKey(userID), returnPath, k.pendingTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (k *KV) TakePending(ctx context.Context, userID string) (domain.PendingPurchase, string, error) {
	pipe := k.c.TxPipeline()
	pendingGet := pipe.GetDel(ctx, pendingKey(userID))
	returnGet := pipe.GetDel(ctx, returnKey(userID))
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return domain.PendingPurchase{}, "", err
	}

	v, err := pendingGet.Bytes()
	if err == redis.Nil {
		return domain.PendingPurchase{}, "", domain.ErrNoPending
	}
	if err != nil {
		return domain.PendingPurchase{}, "", err
	}
	var m domain.PendingPurchase
	if err := json.Unmarshal(v, &m); err != nil {
		return domain.PendingPurchase{}, "", err
	}

	ret, err := returnGet.Result()
	if err == redis.Nil {
		ret = ""
	} else if err != nil {
		return domain.PendingPurchase{}, "", err
	}
	return m, ret, nil
}

// ---- dialog transcripts ----

func (k *KV) AppendMessage(ctx context.Context, sessionID string, m domain.DialogMessage) error {
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	pipe := k.c.TxPipeline()
	pipe.RPush(ctx, dialogKey(sessionID), b)
	pipe.Expire(ctx, dialogKey(sessionID), k.dialogTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (k *KV) Transcript(ctx context.Context, sessionID string) ([]domain.DialogMessage, error) {
	vals, err := k.c.LRange(ctx, dialogKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]domain.DialogMessage, 0, len(vals))
	for _, v := range vals {
		var m domain.DialogMessage
		if err := json.Unmarshal([]byte(v), &m); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (k *KV) AcquireBusy(ctx context.Context, sessionID string) (bool, error) {
	return k.c.SetNX(ctx, busyKey(sessionID), "1", busyLatchTTL).Result()
}

func (k *KV) ReleaseBusy(ctx context.Context, sessionID string) error {
	return k.c.Del(ctx, busyKey(sessionID)).Err()
}

func (k *KV) IsBusy(ctx context.Context, sessionID string) (bool, error) {
	n, err := k.c.Exists(ctx, busyKey(sessionID)).Result()
	return n > 0, err
}
