package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OfferStatus string
type RecurrenceType string

const (
	OfferStatusDraft     OfferStatus = "draft"
	OfferStatusPublished OfferStatus = "published"
	OfferStatusActive    OfferStatus = "active"
	OfferStatusCompleted OfferStatus = "completed"
	OfferStatusCancelled OfferStatus = "cancelled"
	OfferStatusExpired   OfferStatus = "expired"

	RecurrenceNone    RecurrenceType = "none"
	RecurrenceDaily   RecurrenceType = "daily"
	RecurrenceWeekly  RecurrenceType = "weekly"
	RecurrenceMonthly RecurrenceType = "monthly"
)

// OfferExpiryGrace is how long a one-shot offer stays visible past its
// departure before the read path treats it as expired.
const OfferExpiryGrace = 24 * time.Hour

type Recurrence struct {
	Type     RecurrenceType `json:"type" bson:"type" default:"none"`
	Weekdays []time.Weekday `json:"weekdays" bson:"weekdays"`
	EndDate  *time.Time     `json:"end_date" bson:"end_date"`
}

type Schedule struct {
	DepartureAt        time.Time   `json:"departure_at" bson:"departure_at" validate:"required"`
	FlexibilityMinutes int         `json:"flexibility_minutes" bson:"flexibility_minutes" default:"0"`
	Recurrence         *Recurrence `json:"recurrence" bson:"recurrence"`
}

type Pricing struct {
	Seats        int     `json:"seats" bson:"seats" validate:"required,min=1,max=8"`
	PricePerSeat float64 `json:"price_per_seat" bson:"price_per_seat" validate:"required,gt=0"`
	Negotiable   bool    `json:"negotiable" bson:"negotiable" default:"false"`
	FloorPrice   float64 `json:"floor_price" bson:"floor_price"`
	Currency     string  `json:"currency" bson:"currency" default:"USD"`
}

// SeatInventory is the single source of truth for overbooking prevention.
// Invariant: AvailableSeats + BookedSeats == Pricing.Seats at all times.
type SeatInventory struct {
	AvailableSeats int `json:"available_seats" bson:"available_seats"`
	BookedSeats    int `json:"booked_seats" bson:"booked_seats"`
	TotalBookings  int `json:"total_bookings" bson:"total_bookings"`
}

type RideOffer struct {
	ID                 primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	OfferNumber        string             `json:"offer_number" bson:"offer_number" validate:"required"`
	DriverID           primitive.ObjectID `json:"driver_id" bson:"driver_id" validate:"required"`
	VehicleType        string             `json:"vehicle_type" bson:"vehicle_type" default:"sedan"`
	Source             Location           `json:"source" bson:"source" validate:"required"`
	Destination        Location           `json:"destination" bson:"destination" validate:"required"`
	Stops              []Stop             `json:"stops" bson:"stops"`
	Schedule           Schedule           `json:"schedule" bson:"schedule" validate:"required"`
	Pricing            Pricing            `json:"pricing" bson:"pricing" validate:"required"`
	Inventory          SeatInventory      `json:"inventory" bson:"inventory"`
	Status             OfferStatus        `json:"status" bson:"status" default:"draft"`
	PublishedAt        *time.Time         `json:"published_at" bson:"published_at"`
	ExpiresAt          *time.Time         `json:"expires_at" bson:"expires_at"`
	CancelledAt        *time.Time         `json:"cancelled_at" bson:"cancelled_at"`
	CancellationReason string             `json:"cancellation_reason" bson:"cancellation_reason"`
	CreatedAt          time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at" bson:"updated_at"`
}

// Reserve takes n seats out of the available pool. When the pool empties
// the offer becomes active (fully booked).
func (o *RideOffer) Reserve(n int) error {
	if n <= 0 {
		return ErrInvariantViolation
	}
	if n > o.Inventory.AvailableSeats {
		return ErrInsufficientSeats
	}

	o.Inventory.AvailableSeats -= n
	o.Inventory.BookedSeats += n
	o.Inventory.TotalBookings++

	if o.Inventory.AvailableSeats == 0 && o.Status == OfferStatusPublished {
		o.Status = OfferStatusActive
	}

	return nil
}

// Release returns n seats to the pool. A previously fully-booked offer
// reverts to published once seats open up again.
func (o *RideOffer) Release(n int) error {
	if n <= 0 {
		return ErrInvariantViolation
	}
	if o.Inventory.BookedSeats-n < 0 || o.Inventory.AvailableSeats+n > o.Pricing.Seats {
		return ErrInvariantViolation
	}

	o.Inventory.AvailableSeats += n
	o.Inventory.BookedSeats -= n

	if o.Status == OfferStatusActive && o.Inventory.AvailableSeats > 0 {
		o.Status = OfferStatusPublished
	}

	return nil
}

// CheckInventory verifies the seat accounting invariant.
func (o *RideOffer) CheckInventory() error {
	if o.Inventory.AvailableSeats < 0 || o.Inventory.BookedSeats < 0 {
		return ErrInvariantViolation
	}
	if o.Inventory.AvailableSeats+o.Inventory.BookedSeats != o.Pricing.Seats {
		return ErrInvariantViolation
	}
	return nil
}

// Publish moves a draft offer into the bookable pool. Expiry is derived
// here: one-shot offers expire 24h after departure, recurring ones at the
// recurrence end date.
func (o *RideOffer) Publish(now time.Time) error {
	if o.Status != OfferStatusDraft {
		return ErrInvalidTransition
	}

	o.Status = OfferStatusPublished
	o.PublishedAt = &now
	o.Inventory.AvailableSeats = o.Pricing.Seats
	o.Inventory.BookedSeats = 0

	expiresAt := o.Schedule.DepartureAt.Add(OfferExpiryGrace)
	if o.IsRecurring() && o.Schedule.Recurrence.EndDate != nil {
		expiresAt = *o.Schedule.Recurrence.EndDate
	}
	o.ExpiresAt = &expiresAt
	o.UpdatedAt = now

	return nil
}

/// Cancel is idempotent: cancelling an already-cancelled offer is a no-op.
// Dependent bookings are the orchestrator's responsibility, not the
// offer's.
func (o *RideOffer) Cancel(reason string, now time.Time) error {
	if o.Status == OfferStatusCancelled {
		return nil
	}
	if o.Status == OfferStatusCompleted {
		return ErrInvalidTransition
	}

	o.Status = OfferStatusCancelled
	o.CancelledAt = &now
	o.CancellationReason = reason
	o.UpdatedAt = now

	return nil
}

func (o *RideOffer) Complete(now time.Time) error {
	if o.Status != OfferStatusPublished && o.Status != OfferStatusActive {
		return ErrInvalidTransition
	}
	o.Status = OfferStatusCompleted
	o.UpdatedAt = now
	return nil
}

func (o *RideOffer) IsRecurring() bool {
	return o.Schedule.Recurrence != nil && o.Schedule.Recurrence.Type != RecurrenceNone
}

func (o *RideOffer) IsBookable() bool {
	return o.Status == OfferStatusPublished
}

// IsExpired implements passive, time-based expiry: no sweeper, the read
// path re-derives it.
func (o *RideOffer) IsExpired(now time.Time) bool {
	return o.ExpiresAt != nil && now.After(*o.ExpiresAt)
}

// ApplyExpiry transitions a stale published/active offer to expired and
// reports whether it did so.
func (o *RideOffer) ApplyExpiry(now time.Time) bool {
	if !o.IsExpired(now) {
		return false
	}
	if o.Status != OfferStatusPublished && o.Status != OfferStatusActive {
		return false
	}
	o.Status = OfferStatusExpired
	o.UpdatedAt = now
	return true
}

// NextDeparture resolves the next concrete departure instant. For
// recurring offers it scans forward from now for the nearest matching day
// and applies the stored departure time-of-day. ok is false when the
// recurrence has run out.
func (o *RideOffer) NextDeparture(now time.Time) (time.Time, bool) {
	dep := o.Schedule.DepartureAt
	if !o.IsRecurring() {
		return dep, true
	}

	rec := o.Schedule.Recurrence
	candidate := time.Date(now.Year(), now.Month(), now.Day(),
		dep.Hour(), dep.Minute(), 0, 0, dep.Location())

	switch rec.Type {
	case RecurrenceDaily:
		if !candidate.After(now) {
			candidate = candidate.AddDate(0, 0, 1)
		}
	case RecurrenceWeekly:
		found := false
		for i := 0; i < 8; i++ {
			next := candidate.AddDate(0, 0, i)
			if next.After(now) && matchesWeekday(rec.Weekdays, next.Weekday()) {
				candidate = next
				found = true
				break
			}
		}
		if !found {
			return time.Time{}, false
		}
	case RecurrenceMonthly:
		candidate = time.Date(now.Year(), now.Month(), dep.Day(),
			dep.Hour(), dep.Minute(), 0, 0, dep.Location())
		if !candidate.After(now) {
			candidate = candidate.AddDate(0, 1, 0)
		}
	default:
		return dep, true
	}

	if rec.EndDate != nil && candidate.After(*rec.EndDate) {
		return time.Time{}, false
	}

	return candidate, true
}

func matchesWeekday(weekdays []time.Weekday, day time.Weekday) bool {
	if len(weekdays) == 0 {
		return true
	}
	for _, wd := range weekdays {
		if wd == day {
			return true
		}
	}
	return false
}
