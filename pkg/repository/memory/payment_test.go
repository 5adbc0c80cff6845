package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tgpay/internal/structs"
)

func session(order string, userID int64, created time.Time) structs.PaymentSession {
	return structs.PaymentSession{
		OrderNumber: order,
		InvoiceID:   order,
		UserID:      userID,
		ChatID:      userID,
		Amount:      decimal.NewFromInt(100),
		Currency:    "USD",
		Status:      structs.StatusPending,
		CheckoutURL: "https://pay.example/" + order,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

func TestPaymentRepoSaveAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewPaymentRepo()
	base := time.Now()

	s := session("TG_1_1", 1, base)
	s.PaymentID = "pay-1"
	s.TransactionID = "txn-1"
	require.NoError(t, repo.Save(ctx, s))
	assert.ErrorIs(t, repo.Save(ctx, s), structs.ErrUniqueViolation)

	got, err := repo.FindByOrderNumber(ctx, "TG_1_1")
	require.NoError(t, err)
	assert.Equal(t, s.CheckoutURL, got.CheckoutURL)

	got, err = repo.FindByPaymentID(ctx, "pay-1")
	require.NoError(t, err)
	assert.Equal(t, "TG_1_1", got.OrderNumber)

	got, err = repo.FindByTransactionID(ctx, "txn-1")
	require.NoError(t, err)
	assert.Equal(t, "TG_1_1", got.OrderNumber)

	_, err = repo.FindByPaymentID(ctx, "")
	assert.ErrorIs(t, err, structs.ErrNotFound)
	_, err = repo.FindByInvoiceID(ctx, "nope")
	assert.ErrorIs(t, err, structs.ErrNotFound)
}

func TestPaymentRepoNewestWins(t *testing.T) {
	ctx := context.Background()
	repo := NewPaymentRepo()
	base := time.Now()

	require.NoError(t, repo.Save(ctx, session("TG_1_old", 1, base)))
	require.NoError(t, repo.Save(ctx, session("TG_1_new", 1, base.Add(time.Second))))
	require.NoError(t, repo.Save(ctx, session("TG_2_newest", 2, base.Add(2*time.Second))))

	got, err := repo.FindActiveByUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "TG_1_new", got.OrderNumber)

	got, err = repo.FindMostRecentPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, "TG_2_newest", got.OrderNumber)

	_, _, err = repo.UpdateStatus(ctx, "TG_1_new", structs.StatusUpdate{Status: structs.StatusFailed}, base)
	require.NoError(t, err)

	// failed sessions are not active but still the latest
	got, err = repo.FindActiveByUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "TG_1_old", got.OrderNumber)

	got, err = repo.FindLatestByUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "TG_1_new", got.OrderNumber)
}

func TestPaymentRepoUpdateStatusOnce(t *testing.T) {
	ctx := context.Background()
	repo := NewPaymentRepo()
	at := time.Now()
	require.NoError(t, repo.Save(ctx, session("TG_1_1", 1, at)))

	first, changed, err := repo.UpdateStatus(ctx, "TG_1_1", structs.StatusUpdate{
		Status:        structs.StatusCompleted,
		TransactionID: "txn",
	}, at)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, structs.StatusCompleted, first.Status)
	require.NotNil(t, first.CompletedAt)

	second, changed, err := repo.UpdateStatus(ctx, "TG_1_1", structs.StatusUpdate{Status: structs.StatusCompleted}, at.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, first, second)

	// a late conflicting status does not overwrite the terminal one
	third, changed, err := repo.UpdateStatus(ctx, "TG_1_1", structs.StatusUpdate{Status: structs.StatusCancelled}, at)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, structs.StatusCompleted, third.Status)

	_, _, err = repo.UpdateStatus(ctx, "missing", structs.StatusUpdate{Status: structs.StatusCompleted}, at)
	assert.ErrorIs(t, err, structs.ErrNotFound)

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[structs.StatusCompleted])
}

func TestPaymentRepoReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewPaymentRepo()
	s := session("TG_1_1", 1, time.Now())
	s.BillingAddress = &structs.Address{Country: "US"}
	s.GatewayMeta = map[string]string{"k": "v"}
	require.NoError(t, repo.Save(ctx, s))

	got, err := repo.FindByOrderNumber(ctx, "TG_1_1")
	require.NoError(t, err)
	got.BillingAddress.Country = "CA"
	got.GatewayMeta["k"] = "changed"

	again, err := repo.FindByOrderNumber(ctx, "TG_1_1")
	require.NoError(t, err)
	assert.Equal(t, "US", again.BillingAddress.Country)
	assert.Equal(t, "v", again.GatewayMeta["k"])
}
