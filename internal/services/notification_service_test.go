package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"ridepool/internal/models"
	"ridepool/pkg/push"
	"ridepool/pkg/sms"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type mockUserRepo struct {
	users map[primitive.ObjectID]*models.User
}

func (r *mockUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, models.ErrBookingNotFound
	}
	return user, nil
}

func (r *mockUserRepo) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.User, error) {
	var result []*models.User
	for _, id := range ids {
		if user, ok := r.users[id]; ok {
			result = append(result, user)
		}
	}
	return result, nil
}

type recordingPush struct {
	mu   sync.Mutex
	sent []*push.NotificationRequest
}

func (p *recordingPush) SendNotification(ctx context.Context, request *push.NotificationRequest) (*push.NotificationResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, request)
	return &push.NotificationResponse{Success: true}, nil
}

func (p *recordingPush) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sent)
}

type recordingSMS struct {
	mu   sync.Mutex
	sent []*sms.SMSRequest
}

func (s *recordingSMS) SendSMS(ctx context.Context, request *sms.SMSRequest) (*sms.SMSResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, request)
	return &sms.SMSResponse{Status: "sent"}, nil
}

func (s *recordingSMS) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func TestNotifyCancellationsFansOut(t *testing.T) {
	riderID := primitive.NewObjectID()
	userRepo := &mockUserRepo{users: map[primitive.ObjectID]*models.User{
		riderID: {
			ID:           riderID,
			Phone:        "+15551234567",
			DeviceTokens: []string{"token-a", "token-b"},
		},
	}}

	pushProvider := &recordingPush{}
	smsProvider := &recordingSMS{}
	svc := NewNotificationService(userRepo, pushProvider, smsProvider, "RidePool", testLogger(t))

	svc.NotifyCancellations([]models.CancellationNotice{
		{BookingID: primitive.NewObjectID(), RiderID: riderID, Reason: "ride offer withdrawn by driver"},
	})

	require.Eventually(t, func() bool {
		return pushProvider.count() == 2 && smsProvider.count() == 1
	}, 2*time.Second, 10*time.Millisecond)

	pushProvider.mu.Lock()
	assert.Equal(t, "Your booking was cancelled", pushProvider.sent[0].Title)
	assert.Equal(t, "booking_cancelled", pushProvider.sent[0].Data["type"])
	pushProvider.mu.Unlock()

	smsProvider.mu.Lock()
	assert.Equal(t, "+15551234567", smsProvider.sent[0].To)
	assert.Contains(t, smsProvider.sent[0].Message, "withdrawn")
	smsProvider.mu.Unlock()
}

func TestNotifyCancellationsSkipsUnknownRiders(t *testing.T) {
	userRepo := &mockUserRepo{users: map[primitive.ObjectID]*models.User{}}
	pushProvider := &recordingPush{}
	smsProvider := &recordingSMS{}
	svc := NewNotificationService(userRepo, pushProvider, smsProvider, "RidePool", testLogger(t))

	svc.NotifyCancellations([]models.CancellationNotice{
		{BookingID: primitive.NewObjectID(), RiderID: primitive.NewObjectID(), Reason: "gone"},
	})

	// give the background fan-out a moment to run
	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, pushProvider.count())
	assert.Zero(t, smsProvider.count())
}

func TestNotifyCancellationsEmptyIsNoop(t *testing.T) {
	svc := NewNotificationService(&mockUserRepo{}, &recordingPush{}, &recordingSMS{}, "RidePool", testLogger(t))
	svc.NotifyCancellations(nil)
}
