package services

import (
	"context"
	"fmt"
	"time"

	"ridepool/internal/models"
	"ridepool/internal/repositories/interfaces"
	"ridepool/pkg/logger"
	"ridepool/pkg/push"
	"ridepool/pkg/sms"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const notifyTimeout = 15 * time.Second

type NotificationService interface {
	// NotifyCancellations fans out cancellation notices to affected
	// riders. It returns immediately; delivery happens on a background
	// goroutine and failures are logged, never surfaced to the caller.
	NotifyCancellations(notices []models.CancellationNotice)

	SendBookingConfirmation(ctx context.Context, booking *models.Booking) error
}

type notificationService struct {
	userRepo     interfaces.UserRepository
	pushProvider push.PushProvider
	smsProvider  sms.SMSProvider
	smsFrom      string
	logger       *logger.Logger
}

func NewNotificationService(
	userRepo interfaces.UserRepository,
	pushProvider push.PushProvider,
	smsProvider sms.SMSProvider,
	smsFrom string,
	logger *logger.Logger,
) NotificationService {
	return &notificationService{
		userRepo:     userRepo,
		pushProvider: pushProvider,
		smsProvider:  smsProvider,
		smsFrom:      smsFrom,
		logger:       logger,
	}
}

func (s *notificationService) NotifyCancellations(notices []models.CancellationNotice) {
	if len(notices) == 0 {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		riderIDs := make([]primitive.ObjectID, 0, len(notices))
		for _, notice := range notices {
			riderIDs = append(riderIDs, notice.RiderID)
		}

		users, err := s.userRepo.GetByIDs(ctx, riderIDs)
		if err != nil {
			s.logger.WithError(err).Error("Failed to resolve riders for cancellation notices")
			return
		}

		byID := make(map[primitive.ObjectID]*models.User, len(users))
		for _, user := range users {
			byID[user.ID] = user
		}

		for _, notice := range notices {
			user, ok := byID[notice.RiderID]
			if !ok {
				s.logger.WithUserID(notice.RiderID).Warn("Rider not found for cancellation notice")
				continue
			}
			s.deliverCancellation(ctx, user, notice)
		}
	}()
}

func (s *notificationService) deliverCancellation(ctx context.Context, user *models.User, notice models.CancellationNotice) {
	title := "Your booking was cancelled"
	body := fmt.Sprintf("Booking cancelled: %s", notice.Reason)

	for _, token := range user.DeviceTokens {
		if _, err := s.pushProvider.SendNotification(ctx, &push.NotificationRequest{
			Token: token,
			Title: title,
			Body:  body,
			Data: map[string]string{
				"type":       "booking_cancelled",
				"booking_id": notice.BookingID.Hex(),
			},
		}); err != nil {
			s.logger.WithError(err).WithBookingID(notice.BookingID).Warn("Push delivery failed")
		}
	}

	if user.Phone != "" {
		if _, err := s.smsProvider.SendSMS(ctx, &sms.SMSRequest{
			To:      user.Phone,
			From:    s.smsFrom,
			Message: body,
			Type:    "transactional",
		}); err != nil {
			s.logger.WithError(err).WithBookingID(notice.BookingID).Warn("SMS delivery failed")
		}
	}
}

func (s *notificationService) SendBookingConfirmation(ctx context.Context, booking *models.Booking) error {
	user, err := s.userRepo.GetByID(ctx, booking.RiderID)
	if err != nil {
		return err
	}

	title := "Booking confirmed"
	body := fmt.Sprintf("Booking %s confirmed for %s, %d seat(s)",
		booking.BookingNumber,
		booking.Trip.DepartureAt.Format(time.RFC1123),
		booking.SeatsBooked)

	for _, token := range user.DeviceTokens {
		if _, err := s.pushProvider.SendNotification(ctx, &push.NotificationRequest{
			Token: token,
			Title: title,
			Body:  body,
			Data: map[string]string{
				"type":       "booking_confirmed",
				"booking_id": booking.ID.Hex(),
			},
		}); err != nil {
			s.logger.WithError(err).WithBookingID(booking.ID).Warn("Push delivery failed")
		}
	}

	return nil
}
