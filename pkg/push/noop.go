package push

import "context"

// NoopProvider swallows notifications. Used when no push backend is
// configured so callers never need a nil check.
type NoopProvider struct{}

func NewNoopProvider() *NoopProvider {
	return &NoopProvider{}
}

func (p *NoopProvider) SendNotification(ctx context.Context, request *NotificationRequest) (*NotificationResponse, error) {
	return &NotificationResponse{Success: true, Token: request.Token}, nil
}
