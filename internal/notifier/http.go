package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/entities"
)

// HTTPNotifier posts notifications as JSON to a webhook.
type HTTPNotifier struct {
	client *resty.Client
	url    string
}

func NewHTTPNotifier(url string) *HTTPNotifier {
	client := resty.New()

	client.
		SetTimeout(5 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second)

	return &HTTPNotifier{
		client: client,
		url:    url,
	}
}

func (n *HTTPNotifier) Notify(ctx context.Context, notification entities.Notification) error {
	response, err := n.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(notification).
		Post(n.url)
	if err != nil {
		return fmt.Errorf("error post notification: %w", err)
	}

	if response.IsError() {
		return fmt.Errorf("error post notification, invalid status: %v", response.Status())
	}

	return nil
}
