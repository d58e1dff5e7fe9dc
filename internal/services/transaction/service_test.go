package transaction

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"paylink/internal/errors"
	"paylink/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHistory(t *testing.T) {
	store := newMemStore()
	seedUser(t, store, 1, "100000.00")
	seedUser(t, store, 2, "0.00")
	seedUser(t, store, 3, "100000.00")
	svc := newTestEngine(store, nil)

	for i := 0; i < 25; i++ {
		_, err := svc.Transfer(context.Background(),
			transferReq(1, "9000000002@upi", "10.00", fmt.Sprintf("idem-history-%03d", i)))
		require.NoError(t, err)
	}
	// A transfer between two other users must not show up for user 1.
	_, err := svc.Transfer(context.Background(), transferReq(3, "9000000002@upi", "10.00", "idem-history-other"))
	require.NoError(t, err)

	t.Run("first page newest first", func(t *testing.T) {
		page, err := svc.GetHistory(context.Background(), 1, 1, 10)
		require.NoError(t, err)

		assert.Len(t, page.Content, 10)
		assert.Equal(t, 1, page.PageNumber)
		assert.Equal(t, int64(25), page.TotalElements)
		assert.Equal(t, int64(3), page.TotalPages)
		assert.False(t, page.Last)
		// Most recent transfer comes first.
		assert.True(t, page.Content[0].CreatedAt.After(page.Content[9].CreatedAt) ||
			page.Content[0].CreatedAt.Equal(page.Content[9].CreatedAt))
	})

	t.Run("default request returns the newest page", func(t *testing.T) {
		// Page 1 with the default size, as a query without parameters sends.
		page, err := svc.GetHistory(context.Background(), 1, 1, 20)
		require.NoError(t, err)

		assert.Len(t, page.Content, 20)
		assert.Equal(t, int64(25), page.TotalElements)
	})

	t.Run("last page", func(t *testing.T) {
		page, err := svc.GetHistory(context.Background(), 1, 3, 10)
		require.NoError(t, err)

		assert.Len(t, page.Content, 5)
		assert.True(t, page.Last)
	})

	t.Run("receiver sees incoming transfers", func(t *testing.T) {
		page, err := svc.GetHistory(context.Background(), 2, 1, 50)
		require.NoError(t, err)
		assert.Equal(t, int64(26), page.TotalElements)
	})

	t.Run("page below one clamps to the first page", func(t *testing.T) {
		page, err := svc.GetHistory(context.Background(), 1, 0, 10)
		require.NoError(t, err)
		assert.Equal(t, 1, page.PageNumber)
		assert.Len(t, page.Content, 10)
	})

	t.Run("size out of range falls back to default", func(t *testing.T) {
		page, err := svc.GetHistory(context.Background(), 1, 1, 500)
		require.NoError(t, err)
		assert.Equal(t, 20, page.PageSize)
	})
}

func TestGetByReference(t *testing.T) {
	store := newMemStore()
	seedUser(t, store, 1, "5000.00")
	seedUser(t, store, 2, "0.00")
	seedUser(t, store, 3, "0.00")
	svc := newTestEngine(store, nil)

	created, err := svc.Transfer(context.Background(), transferReq(1, "9000000002@upi", "250.00", "idem-lookup-001"))
	require.NoError(t, err)

	t.Run("sender reads own side", func(t *testing.T) {
		view, err := svc.GetByReference(context.Background(), created.ReferenceID, 1)
		require.NoError(t, err)
		assert.Equal(t, created.ReferenceID, view.ReferenceID)
		require.NotNil(t, view.BalanceAfter)
		assert.True(t, view.BalanceAfter.Equal(store.walletBalance(1)))
	})

	t.Run("receiver reads own side", func(t *testing.T) {
		view, err := svc.GetByReference(context.Background(), created.ReferenceID, 2)
		require.NoError(t, err)
		require.NotNil(t, view.BalanceAfter)
		assert.True(t, view.BalanceAfter.Equal(store.walletBalance(2)))
	})

	t.Run("third party denied", func(t *testing.T) {
		_, err := svc.GetByReference(context.Background(), created.ReferenceID, 3)
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("unknown reference", func(t *testing.T) {
		_, err := svc.GetByReference(context.Background(), "TXN-DOES-NOT-EXIST", 1)
		var domainErr *errors.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, errors.CodeNotFound, domainErr.Code)
	})
}

func TestViewNeverExposesSecrets(t *testing.T) {
	store := newMemStore()
	seedUser(t, store, 1, "5000.00")
	seedUser(t, store, 2, "0.00")
	svc := newTestEngine(store, nil)

	view, err := svc.Transfer(context.Background(), transferReq(1, "9000000002@upi", "100.00", "idem-secrets-001"))
	require.NoError(t, err)

	assert.Equal(t, "User 1", view.SenderName)
	assert.Equal(t, "9000000001@upi", view.SenderUpiID)
	assert.Equal(t, "User 2", view.ReceiverName)
	assert.Equal(t, "9000000002@upi", view.ReceiverUpiID)
	assert.Equal(t, models.RiskLevelLow, view.FraudRiskLevel)
}

func TestNewReferenceID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		ref := newReferenceID()
		assert.True(t, strings.HasPrefix(ref, "TXN"))
		assert.False(t, seen[ref], "reference ids must be unique: %s", ref)
		seen[ref] = true
	}
}
