package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOffer(seats int) *RideOffer {
	return &RideOffer{
		OfferNumber: "RP-TEST0001",
		VehicleType: "sedan",
		Schedule: Schedule{
			DepartureAt: time.Now().Add(48 * time.Hour),
			Recurrence:  &Recurrence{Type: RecurrenceNone},
		},
		Pricing: Pricing{
			Seats:        seats,
			PricePerSeat: 15.0,
			Currency:     "USD",
		},
		Inventory: SeatInventory{
			AvailableSeats: seats,
			BookedSeats:    0,
		},
		Status: OfferStatusDraft,
	}
}

func TestPublishFromDraft(t *testing.T) {
	offer := newTestOffer(4)
	now := time.Now()

	err := offer.Publish(now)
	require.NoError(t, err)

	assert.Equal(t, OfferStatusPublished, offer.Status)
	assert.Equal(t, 4, offer.Inventory.AvailableSeats)
	assert.Equal(t, 0, offer.Inventory.BookedSeats)
	require.NotNil(t, offer.ExpiresAt)
	assert.Equal(t, offer.Schedule.DepartureAt.Add(OfferExpiryGrace), *offer.ExpiresAt)
}

func TestPublishRejectedOutsideDraft(t *testing.T) {
	offer := newTestOffer(4)
	require.NoError(t, offer.Publish(time.Now()))

	err := offer.Publish(time.Now())
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestPublishRecurringUsesEndDate(t *testing.T) {
	offer := newTestOffer(4)
	endDate := time.Now().Add(30 * 24 * time.Hour)
	offer.Schedule.Recurrence = &Recurrence{
		Type:    RecurrenceDaily,
		EndDate: &endDate,
	}

	require.NoError(t, offer.Publish(time.Now()))
	require.NotNil(t, offer.ExpiresAt)
	assert.Equal(t, endDate, *offer.ExpiresAt)
}

func TestReserveDecrementsAndFlipsToActive(t *testing.T) {
	offer := newTestOffer(3)
	require.NoError(t, offer.Publish(time.Now()))

	require.NoError(t, offer.Reserve(2))
	assert.Equal(t, 1, offer.Inventory.AvailableSeats)
	assert.Equal(t, 2, offer.Inventory.BookedSeats)
	assert.Equal(t, OfferStatusPublished, offer.Status)

	require.NoError(t, offer.Reserve(1))
	assert.Equal(t, 0, offer.Inventory.AvailableSeats)
	assert.Equal(t, OfferStatusActive, offer.Status)
	assert.Equal(t, 2, offer.Inventory.TotalBookings)

	assert.NoError(t, offer.CheckInventory())
}

func TestReserveRejectsOversell(t *testing.T) {
	offer := newTestOffer(2)
	require.NoError(t, offer.Publish(time.Now()))

	err := offer.Reserve(3)
	assert.ErrorIs(t, err, ErrInsufficientSeats)
	assert.Equal(t, 2, offer.Inventory.AvailableSeats)
	assert.NoError(t, offer.CheckInventory())
}

func TestReleaseRevertsActiveToPublished(t *testing.T) {
	offer := newTestOffer(2)
	require.NoError(t, offer.Publish(time.Now()))
	require.NoError(t, offer.Reserve(2))
	require.Equal(t, OfferStatusActive, offer.Status)

	require.NoError(t, offer.Release(1))
	assert.Equal(t, OfferStatusPublished, offer.Status)
	assert.Equal(t, 1, offer.Inventory.AvailableSeats)
	assert.Equal(t, 1, offer.Inventory.BookedSeats)
	assert.NoError(t, offer.CheckInventory())
}

func TestReleaseGuardsInvariant(t *testing.T) {
	offer := newTestOffer(2)
	require.NoError(t, offer.Publish(time.Now()))
	require.NoError(t, offer.Reserve(1))

	assert.ErrorIs(t, offer.Release(2), ErrInvariantViolation)
	assert.ErrorIs(t, offer.Release(0), ErrInvariantViolation)
	assert.NoError(t, offer.CheckInventory())
}

func TestCancelIsIdempotent(t *testing.T) {
	offer := newTestOffer(4)
	require.NoError(t, offer.Publish(time.Now()))

	require.NoError(t, offer.Cancel("change of plans", time.Now()))
	assert.Equal(t, OfferStatusCancelled, offer.Status)
	assert.Equal(t, "change of plans", offer.CancellationReason)

	// second cancel is a no-op, reason stays
	require.NoError(t, offer.Cancel("other reason", time.Now()))
	assert.Equal(t, "change of plans", offer.CancellationReason)
}

func TestCancelRejectedAfterCompletion(t *testing.T) {
	offer := newTestOffer(4)
	require.NoError(t, offer.Publish(time.Now()))
	require.NoError(t, offer.Complete(time.Now()))

	assert.ErrorIs(t, offer.Cancel("too late", time.Now()), ErrInvalidTransition)
}

func TestApplyExpiry(t *testing.T) {
	offer := newTestOffer(4)
	offer.Schedule.DepartureAt = time.Now().Add(-48 * time.Hour)
	require.NoError(t, offer.Publish(time.Now().Add(-72 * time.Hour)))

	assert.True(t, offer.IsExpired(time.Now()))
	assert.True(t, offer.ApplyExpiry(time.Now()))
	assert.Equal(t, OfferStatusExpired, offer.Status)

	// apply again is a no-op
	assert.False(t, offer.ApplyExpiry(time.Now()))
}

func TestApplyExpiryLeavesFreshOffers(t *testing.T) {
	offer := newTestOffer(4)
	require.NoError(t, offer.Publish(time.Now()))

	assert.False(t, offer.ApplyExpiry(time.Now()))
	assert.Equal(t, OfferStatusPublished, offer.Status)
}

func TestNextDepartureOneShot(t *testing.T) {
	offer := newTestOffer(4)

	next, ok := offer.NextDeparture(time.Now())
	require.True(t, ok)
	assert.Equal(t, offer.Schedule.DepartureAt, next)
}

func TestNextDepartureDaily(t *testing.T) {
	offer := newTestOffer(4)
	offer.Schedule.DepartureAt = time.Date(2026, 1, 1, 8, 30, 0, 0, time.UTC)
	offer.Schedule.Recurrence = &Recurrence{Type: RecurrenceDaily}

	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	next, ok := offer.NextDeparture(now)
	require.True(t, ok)

	// 08:30 already passed today, so tomorrow
	assert.Equal(t, time.Date(2026, 6, 16, 8, 30, 0, 0, time.UTC), next)

	now = time.Date(2026, 6, 15, 6, 0, 0, 0, time.UTC)
	next, ok = offer.NextDeparture(now)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 6, 15, 8, 30, 0, 0, time.UTC), next)
}

func TestNextDepartureWeekly(t *testing.T) {
	offer := newTestOffer(4)
	offer.Schedule.DepartureAt = time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC) // a Monday
	offer.Schedule.Recurrence = &Recurrence{
		Type:     RecurrenceWeekly,
		Weekdays: []time.Weekday{time.Monday, time.Friday},
	}

	// Wednesday noon: next match is Friday
	now := time.Date(2026, 6, 17, 12, 0, 0, 0, time.UTC)
	next, ok := offer.NextDeparture(now)
	require.True(t, ok)
	assert.Equal(t, time.Friday, next.Weekday())
	assert.Equal(t, 9, next.Hour())

	// Friday after departure time: next match is Monday
	now = time.Date(2026, 6, 19, 10, 0, 0, 0, time.UTC)
	next, ok = offer.NextDeparture(now)
	require.True(t, ok)
	assert.Equal(t, time.Monday, next.Weekday())
}

func TestNextDepartureMonthly(t *testing.T) {
	offer := newTestOffer(4)
	offer.Schedule.DepartureAt = time.Date(2026, 1, 10, 7, 0, 0, 0, time.UTC)
	offer.Schedule.Recurrence = &Recurrence{Type: RecurrenceMonthly}

	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	next, ok := offer.NextDeparture(now)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 7, 10, 7, 0, 0, 0, time.UTC), next)
}

func TestNextDepartureExhaustedRecurrence(t *testing.T) {
	offer := newTestOffer(4)
	offer.Schedule.DepartureAt = time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	endDate := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	offer.Schedule.Recurrence = &Recurrence{
		Type:    RecurrenceDaily,
		EndDate: &endDate,
	}

	_, ok := offer.NextDeparture(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))
	assert.False(t, ok)
}

func TestIsBookable(t *testing.T) {
	offer := newTestOffer(4)
	assert.False(t, offer.IsBookable())

	require.NoError(t, offer.Publish(time.Now()))
	assert.True(t, offer.IsBookable())

	require.NoError(t, offer.Reserve(4))
	assert.False(t, offer.IsBookable())
}
