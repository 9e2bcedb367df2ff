package worker

import (
	"github.com/civicdesk/complaint-service/internal/events"
	"github.com/civicdesk/complaint-service/internal/service"
)

// StartNotificationWorker registers the in-process notification handlers and, when
// Redis is available, the publisher that forwards events to other processes.
func StartNotificationWorker(dispatcher events.Dispatcher, notificationService *service.NotificationService, publisher *events.RedisPublisher) {
	if notificationService != nil {
		notificationService.RegisterHandlers()
	}
	publisher.Register(dispatcher)
}
