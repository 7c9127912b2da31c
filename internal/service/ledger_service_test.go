package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"habitquest/internal/model"
)

func newLedgerFixture(gateway *fakeGateway, penalties ...model.Penalty) (*LedgerService, *fakePenaltyStore, *fakeRewardStore, *fakeNotificationStore) {
	penaltyStore := newFakePenaltyStore(penalties...)
	rewards := newFakeRewardStore()
	notifications := &fakeNotificationStore{}
	svc := NewLedgerService(penaltyStore, rewards, notifications, gateway, &fakeDedupe{}, zap.NewNop())
	return svc, penaltyStore, rewards, notifications
}

func unpaidPenalty(id int64) model.Penalty {
	return model.Penalty{ID: id, UserID: 1, HabitID: 10, Amount: "15.00", MissedDate: "2026-08-20"}
}

func TestMarkPenaltyPaidIdempotent(t *testing.T) {
	svc, store, _, _ := newLedgerFixture(&fakeGateway{}, unpaidPenalty(1))

	first, err := svc.MarkPenaltyPaid(context.Background(), 1, 1, "pi_first")
	require.NoError(t, err)
	require.True(t, first.IsPaid)
	require.NotNil(t, first.PaymentRef)
	assert.Equal(t, "pi_first", *first.PaymentRef)

	second, err := svc.MarkPenaltyPaid(context.Background(), 1, 1, "pi_second")
	require.NoError(t, err)
	assert.True(t, second.IsPaid)
	assert.Equal(t, "pi_first", *second.PaymentRef, "first settlement reference wins")

	stored, _ := store.GetByID(context.Background(), 1)
	assert.Equal(t, "pi_first", *stored.PaymentRef)
}

func TestMarkPenaltyPaidChecksOwnership(t *testing.T) {
	p := unpaidPenalty(1)
	p.UserID = 99
	svc, _, _, _ := newLedgerFixture(&fakeGateway{}, p)

	_, err := svc.MarkPenaltyPaid(context.Background(), 1, 1, "pi_x")
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestMarkPenaltyPaidUnknown(t *testing.T) {
	svc, _, _, _ := newLedgerFixture(&fakeGateway{})

	_, err := svc.MarkPenaltyPaid(context.Background(), 1, 404, "pi_x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMarkRewardClaimedIdempotent(t *testing.T) {
	svc, _, rewards, _ := newLedgerFixture(&fakeGateway{})
	rw := &model.Reward{UserID: 1, Amount: "50.00", Reason: "test"}
	require.NoError(t, rewards.Insert(context.Background(), rw))

	require.NoError(t, svc.MarkRewardClaimed(context.Background(), 1, rw.ID, "tr_first"))
	require.NoError(t, svc.MarkRewardClaimed(context.Background(), 1, rw.ID, "tr_second"))

	claimed, _ := rewards.ListByUser(context.Background(), 1, false)
	require.Len(t, claimed, 1)
	assert.Equal(t, "tr_first", *claimed[0].TransferRef)
}

func TestCreatePaymentIntentDisabledGateway(t *testing.T) {
	svc, _, _, _ := newLedgerFixture(&fakeGateway{enabled: false}, unpaidPenalty(1))

	_, err := svc.CreatePaymentIntent(context.Background(), 1, []int64{1})
	assert.ErrorIs(t, err, ErrPaymentsNotConfigured)
}

func TestCreatePaymentIntentSumsUnpaid(t *testing.T) {
	gw := &fakeGateway{enabled: true}
	paid := unpaidPenalty(2)
	paid.IsPaid = true
	svc, _, _, _ := newLedgerFixture(gw, unpaidPenalty(1), paid, unpaidPenalty(3))

	intent, err := svc.CreatePaymentIntent(context.Background(), 1, []int64{1, 2, 3})
	require.NoError(t, err)

	assert.Equal(t, int64(3000), gw.lastTotal, "two unpaid 15.00 penalties in cents")
	assert.NotEmpty(t, intent.ClientSecret)
}

func TestCreatePaymentIntentNothingPayable(t *testing.T) {
	paid := unpaidPenalty(1)
	paid.IsPaid = true
	svc, _, _, _ := newLedgerFixture(&fakeGateway{enabled: true}, paid)

	_, err := svc.CreatePaymentIntent(context.Background(), 1, []int64{1})
	assert.ErrorIs(t, err, ErrNoPayablePenalties)
}

func TestCreatePaymentIntentEmptySelection(t *testing.T) {
	svc, _, _, _ := newLedgerFixture(&fakeGateway{enabled: true})

	_, err := svc.CreatePaymentIntent(context.Background(), 1, nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreatePaymentIntentGatewayFailureLeavesState(t *testing.T) {
	gw := &fakeGateway{enabled: true, err: assert.AnError}
	svc, store, _, _ := newLedgerFixture(gw, unpaidPenalty(1))

	_, err := svc.CreatePaymentIntent(context.Background(), 1, []int64{1})
	require.Error(t, err)

	p, _ := store.GetByID(context.Background(), 1)
	assert.False(t, p.IsPaid, "failed gateway call touches nothing")
}

func TestConfirmPaymentSettlesBatch(t *testing.T) {
	svc, store, _, notifications := newLedgerFixture(&fakeGateway{enabled: true}, unpaidPenalty(1), unpaidPenalty(2))

	settled, err := svc.ConfirmPayment(context.Background(), 1, []int64{1, 2}, "pi_done")
	require.NoError(t, err)
	assert.Equal(t, 2, settled)

	for _, id := range []int64{1, 2} {
		p, _ := store.GetByID(context.Background(), id)
		assert.True(t, p.IsPaid)
		assert.Equal(t, "pi_done", *p.PaymentRef)
	}

	notes, _ := notifications.ListByUser(context.Background(), 1, 10)
	require.Len(t, notes, 1)
	assert.Equal(t, model.NotificationPenalty, notes[0].Kind)
}

type flakyPenaltyStore struct {
	*fakePenaltyStore
	failuresLeft int
}

func (s *flakyPenaltyStore) MarkPaidByIDs(ctx context.Context, userID int64, ids []int64, paymentRef string) (int, error) {
	if s.failuresLeft > 0 {
		s.failuresLeft--
		return 0, errors.New("connection reset by peer")
	}
	return s.fakePenaltyStore.MarkPaidByIDs(ctx, userID, ids, paymentRef)
}

func TestConfirmPaymentRetriesAfterStorageFailure(t *testing.T) {
	store := &flakyPenaltyStore{fakePenaltyStore: newFakePenaltyStore(unpaidPenalty(1)), failuresLeft: 1}
	svc := NewLedgerService(store, newFakeRewardStore(), &fakeNotificationStore{}, &fakeGateway{enabled: true}, &fakeDedupe{}, zap.NewNop())

	_, err := svc.ConfirmPayment(context.Background(), 1, []int64{1}, "pi_retry")
	require.Error(t, err, "first settlement attempt fails")

	settled, err := svc.ConfirmPayment(context.Background(), 1, []int64{1}, "pi_retry")
	require.NoError(t, err)
	assert.Equal(t, 1, settled, "retry with the same ref settles the batch")

	p, _ := store.GetByID(context.Background(), 1)
	assert.True(t, p.IsPaid)
}

func TestConfirmPaymentDuplicateCallbackIgnored(t *testing.T) {
	svc, _, _, notifications := newLedgerFixture(&fakeGateway{enabled: true}, unpaidPenalty(1))

	settled, err := svc.ConfirmPayment(context.Background(), 1, []int64{1}, "pi_dup")
	require.NoError(t, err)
	assert.Equal(t, 1, settled)

	settled, err = svc.ConfirmPayment(context.Background(), 1, []int64{1}, "pi_dup")
	require.NoError(t, err)
	assert.Zero(t, settled, "replayed webhook settles nothing")

	notes, _ := notifications.ListByUser(context.Background(), 1, 10)
	assert.Len(t, notes, 1)
}
