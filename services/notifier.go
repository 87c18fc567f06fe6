package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"gorm.io/gorm"

	"fintrek-backend/models"
)

// Pusher delivers one payload to one browser subscription. Gone reports that
// the push service no longer knows the subscription.
type Pusher interface {
	Push(ctx context.Context, sub models.PushSubscription, payload []byte) (gone bool, err error)
}

// Notifier stores in-app notifications and fans them out to push subscriptions.
type Notifier struct {
	DB     *gorm.DB
	Pusher Pusher // nil disables push

	wg sync.WaitGroup
}

type pushPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url"`
}

func (n *Notifier) Notify(ctx context.Context, userID, message string) error {
	row := models.Notification{UserID: userID, Message: message}
	if err := n.DB.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("store notification: %w", err)
	}
	if n.Pusher == nil {
		return nil
	}

	var subs []models.PushSubscription
	if err := n.DB.WithContext(ctx).Where("user_id = ?", userID).Find(&subs).Error; err != nil {
		return fmt.Errorf("load push subscriptions: %w", err)
	}
	if len(subs) == 0 {
		return nil
	}
	payload, err := json.Marshal(pushPayload{Title: "FinTrek", Body: message, URL: "/"})
	if err != nil {
		return err
	}

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		n.fanOut(context.WithoutCancel(ctx), subs, payload)
	}()
	return nil
}

func (n *Notifier) fanOut(ctx context.Context, subs []models.PushSubscription, payload []byte) {
	for _, sub := range subs {
		gone, err := n.Pusher.Push(ctx, sub, payload)
		if gone {
			if err := n.DB.WithContext(ctx).Delete(&models.PushSubscription{}, "id = ?", sub.ID).Error; err != nil {
				log.Printf("notifier: drop subscription %s: %v", sub.ID, err)
			}
			continue
		}
		if err != nil {
			log.Printf("notifier: push to %s: %v", sub.Endpoint, err)
		}
	}
}

// Wait blocks until in-flight pushes finish.
func (n *Notifier) Wait() {
	n.wg.Wait()
}
