package services

import "github.com/ttthanh1411/gym/internal/models"

// ActivityPublisher fans events out to the admin activity feed. Publish must
// not block the caller.
type ActivityPublisher interface {
	Publish(event models.ActivityEvent)
}

type noopPublisher struct{}

func (noopPublisher) Publish(models.ActivityEvent) {}

func publisherOrNoop(publisher ActivityPublisher) ActivityPublisher {
	if publisher == nil {
		return noopPublisher{}
	}
	return publisher
}
