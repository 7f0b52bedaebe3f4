package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"ridepool/internal/domain"
)

// NotificationType represents the type of notification.
type NotificationType string

const (
	NotificationTripRouteCreated   NotificationType = "TRIP_ROUTE_CREATED"
	NotificationPickupOrderChanged NotificationType = "PICKUP_ORDER_CHANGED"
	NotificationTripRouteStatus    NotificationType = "TRIP_ROUTE_STATUS_CHANGED"
	NotificationTripRouteRemoved   NotificationType = "TRIP_ROUTE_REMOVED"
)

// Notification represents a notification to be sent.
type Notification struct {
	Type        NotificationType
	RecipientID string // driver or passenger ID
	Title       string
	Message     string
	Data        map[string]any
	CreatedAt   time.Time
}

// Notifier delivers notifications to trip participants.
type Notifier interface {
	TripRouteCreated(ctx context.Context, route *domain.TripRoute)
	PickupOrderChanged(ctx context.Context, route *domain.TripRoute)
	StatusChanged(ctx context.Context, route *domain.TripRoute)
	TripRouteRemoved(ctx context.Context, route *domain.TripRoute)
}

// Ensure NotificationService implements Notifier.
var _ Notifier = (*NotificationService)(nil)

// NotificationService writes participant notifications to the log. Push
// delivery would plug in at send.
type NotificationService struct {
	logger *zap.Logger
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{logger: logger}
}

// TripRouteCreated tells the driver the pickup order and each passenger
// their place in it.
func (s *NotificationService) TripRouteCreated(ctx context.Context, route *domain.TripRoute) {
	s.send(ctx, Notification{
		Type:        NotificationTripRouteCreated,
		RecipientID: route.DriverID,
		Title:       "New Trip Route",
		Message:     fmt.Sprintf("You have %d pickups on this trip", len(route.Segments)),
		Data:        routeData(route),
		CreatedAt:   time.Now(),
	})
	s.notifyPassengers(ctx, route, NotificationTripRouteCreated, "Ride Confirmed")
}

// PickupOrderChanged tells every participant the route was recalculated.
func (s *NotificationService) PickupOrderChanged(ctx context.Context, route *domain.TripRoute) {
	s.send(ctx, Notification{
		Type:        NotificationPickupOrderChanged,
		RecipientID: route.DriverID,
		Title:       "Route Updated",
		Message:     "The pickup order of your trip has changed",
		Data:        routeData(route),
		CreatedAt:   time.Now(),
	})
	s.notifyPassengers(ctx, route, NotificationPickupOrderChanged, "Route Updated")
}

// StatusChanged tells the passengers the trip route has a new status.
func (s *NotificationService) StatusChanged(ctx context.Context, route *domain.TripRoute) {
	for _, id := range route.PassengerIDs {
		s.send(ctx, Notification{
			Type:        NotificationTripRouteStatus,
			RecipientID: id,
			Title:       "Trip Status",
			Message:     fmt.Sprintf("Your trip is now %s", route.Status),
			Data: map[string]any{
				"trip_route_id": route.ID,
				"status":        route.Status,
			},
			CreatedAt: time.Now(),
		})
	}
}

// TripRouteRemoved tells the driver and passengers the route no longer exists.
func (s *NotificationService) TripRouteRemoved(ctx context.Context, route *domain.TripRoute) {
	recipients := append([]string{route.DriverID}, route.PassengerIDs...)
	for _, id := range recipients {
		s.send(ctx, Notification{
			Type:        NotificationTripRouteRemoved,
			RecipientID: id,
			Title:       "Trip Removed",
			Message:     "Your trip route has been removed",
			Data:        map[string]any{"trip_route_id": route.ID},
			CreatedAt:   time.Now(),
		})
	}
}

func (s *NotificationService) notifyPassengers(ctx context.Context, route *domain.TripRoute, typ NotificationType, title string) {
	for i, seg := range route.Segments {
		s.send(ctx, Notification{
			Type:        typ,
			RecipientID: seg.PassengerID,
			Title:       title,
			Message:     fmt.Sprintf("You are pickup %d of %d", i+1, len(route.Segments)),
			Data: map[string]any{
				"trip_route_id": route.ID,
				"driver_id":     route.DriverID,
				"pickup_order":  i + 1,
			},
			CreatedAt: time.Now(),
		})
	}
}

func routeData(route *domain.TripRoute) map[string]any {
	order := make([]string, len(route.Segments))
	for i, seg := range route.Segments {
		order[i] = seg.PassengerID
	}
	return map[string]any{
		"trip_route_id": route.ID,
		"pickup_order":  order,
		"destination":   route.Destination.Query(),
	}
}

func (s *NotificationService) send(_ context.Context, n Notification) {
	s.logger.Info("notification",
		zap.String("type", string(n.Type)),
		zap.String("recipient_id", n.RecipientID),
		zap.String("title", n.Title),
		zap.String("message", n.Message),
		zap.Any("data", n.Data),
	)
}
