package redisad_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/require"

	redisad "swipess_api/internal/adapters/redis"
	"swipess_api/internal/domain"
)

// The round-trip contract is write-both-before-redirect. The mock pins the
// exact keys and TTLs so a schema drift fails loudly.
func TestKV_PutPending_WritesBothKeysWithTTL(t *testing.T) {
	db, mock := redismock.NewClientMock()
	kv := redisad.NewKV(db, time.Hour, time.Hour, 45*time.Minute, time.Hour)

	m := domain.PendingPurchase{
		PackageID: 3,
		Tokens:    400,
		CreatedAt: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
	}
	b, err := json.Marshal(m)
	require.NoError(t, err)

	mock.ExpectTxPipeline()
	mock.ExpectSet("pay:pending:user-7", b, 45*time.Minute).SetVal("OK")
	mock.ExpectSet("pay:return:user-7", "/packages?status=success", 45*time.Minute).SetVal("OK")
	mock.ExpectTxPipelineExec()

	require.NoError(t, kv.PutPending(context.Background(), "user-7", m, "/packages?status=success"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestKV_TakePending_ClearsBothKeys(t *testing.T) {
	db, mock := redismock.NewClientMock()
	kv := redisad.NewKV(db, time.Hour, time.Hour, time.Hour, time.Hour)

	m := domain.PendingPurchase{PackageID: 1, Tokens: 50, CreatedAt: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
	b, err := json.Marshal(m)
	require.NoError(t, err)

	mock.ExpectTxPipeline()
	mock.ExpectGetDel("pay:pending:user-7").SetVal(string(b))
	mock.ExpectGetDel("pay:return:user-7").SetVal("/home")
	mock.ExpectTxPipelineExec()

	got, path, err := kv.TakePending(context.Background(), "user-7")
	require.NoError(t, err)
	require.Equal(t, int64(1), got.PackageID)
	require.Equal(t, "/home", path)
	require.NoError(t, mock.ExpectationsWereMet())
}
