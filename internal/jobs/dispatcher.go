package jobs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"talkk-backend/internal/models"
	"talkk-backend/internal/push"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	consumerName    = "talkk_dispatcher_1"
	readBlock       = 5 * time.Second
	reclaimMinIdle  = time.Minute
	reclaimInterval = time.Minute
)

// UserResolver resolves queued ids into users at execution time
type UserResolver interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// Pusher delivers a notification to the push gateway
type Pusher interface {
	Send(ctx context.Context, n push.Notification) error
}

// Dispatcher consumes notification events from the Redis stream and fans
// them out to the push gateway. Delivery is at least once: an entry is
// acked only after the gateway accepted it (or the failure is permanent),
// and entries left pending by a crashed or stalled consumer are reclaimed
// and replayed. A duplicate push on redelivery is tolerated.
type Dispatcher struct {
	rdb    *redis.Client
	users  UserResolver
	pusher Pusher
}

// NewDispatcher creates a new notification dispatcher
func NewDispatcher(rdb *redis.Client, users UserResolver, pusher Pusher) *Dispatcher {
	return &Dispatcher{rdb: rdb, users: users, pusher: pusher}
}

// Start consumes events until the context is cancelled
func (d *Dispatcher) Start(ctx context.Context) {
	err := d.rdb.XGroupCreateMkStream(ctx, streamKey, consumerGroup, "$").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		log.Error().Err(err).Msg("Failed to create consumer group")
	}

	log.Info().Str("stream", streamKey).Msg("Notification dispatcher started")

	d.reclaim(ctx)
	lastReclaim := time.Now()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Notification dispatcher stopped")
			return
		default:
			if time.Since(lastReclaim) >= reclaimInterval {
				d.reclaim(ctx)
				lastReclaim = time.Now()
			}

			entries, err := d.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
				Group:    consumerGroup,
				Consumer: consumerName,
				Streams:  []string{streamKey, ">"},
				Count:    10,
				Block:    readBlock,
			}).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					log.Error().Err(err).Msg("Failed to read notification stream")
					time.Sleep(time.Second)
				}
				continue
			}

			for _, stream := range entries {
				for _, msg := range stream.Messages {
					d.handle(ctx, msg)
				}
			}
		}
	}
}

// reclaim replays entries another (or a previous run of this) consumer
// read but never acked, so a crash between read and ack does not lose
// the event.
func (d *Dispatcher) reclaim(ctx context.Context) {
	start := "0-0"
	for {
		msgs, next, err := d.rdb.XAutoClaim(ctx, &redis.XAutoClaimArgs{
			Stream:   streamKey,
			Group:    consumerGroup,
			Consumer: consumerName,
			MinIdle:  reclaimMinIdle,
			Start:    start,
			Count:    10,
		}).Result()
		if err != nil {
			if ctx.Err() == nil {
				log.Error().Err(err).Msg("Failed to reclaim pending notifications")
			}
			return
		}

		for _, msg := range msgs {
			d.handle(ctx, msg)
		}

		if next == "0-0" {
			return
		}
		start = next
	}
}

// handle processes one stream entry. The ack is withheld on a transient
// failure so the reclaim pass redelivers the entry; everything else acks.
func (d *Dispatcher) handle(ctx context.Context, msg redis.XMessage) {
	if err := d.process(ctx, eventFromValues(msg.Values)); err != nil {
		log.Error().Err(err).Str("entry_id", msg.ID).Msg("Push delivery failed, leaving entry pending")
		return
	}
	d.rdb.XAck(ctx, streamKey, consumerGroup, msg.ID)
}

// process delivers one event. A non-nil return means the failure is
// transient and the entry should be replayed; a missing recipient, an
// absent push token, or an uncomposable event never resolves and
// returns nil.
func (d *Dispatcher) process(ctx context.Context, event Event) error {
	recipient, err := d.users.GetByID(ctx, event.RecipientID)
	if err != nil {
		log.Warn().
			Str("recipient_id", event.RecipientID).
			Str("kind", string(event.Kind)).
			Msg("Notification recipient no longer exists")
		return nil
	}

	if recipient.PushToken == nil || *recipient.PushToken == "" {
		log.Debug().Str("recipient_id", recipient.ID).Msg("Recipient has no push token")
		return nil
	}

	title, body, err := d.compose(ctx, event)
	if err != nil {
		log.Warn().Err(err).Str("kind", string(event.Kind)).Msg("Failed to compose notification")
		return nil
	}

	n := push.Notification{
		To:    *recipient.PushToken,
		Sound: "default",
		Title: title,
		Body:  body,
		Data:  eventData(event),
	}
	if err := d.pusher.Send(ctx, n); err != nil {
		return fmt.Errorf("push to %s: %w", recipient.ID, err)
	}

	log.Info().
		Str("recipient_id", recipient.ID).
		Str("kind", string(event.Kind)).
		Msg("Push notification delivered")
	return nil
}

func (d *Dispatcher) compose(ctx context.Context, event Event) (string, string, error) {
	switch event.Kind {
	case EventNewMessage:
		sender, err := d.users.GetByID(ctx, event.SenderID)
		if err != nil {
			return "", "", fmt.Errorf("sender not found: %w", err)
		}
		return "New message", fmt.Sprintf("%s sent you a voice message", sender.Nickname), nil
	case EventBroadcastReply:
		sender, err := d.users.GetByID(ctx, event.SenderID)
		if err != nil {
			return "", "", fmt.Errorf("sender not found: %w", err)
		}
		return "New reply", fmt.Sprintf("%s replied to your broadcast", sender.Nickname), nil
	case EventAccountSuspended:
		return "Account suspended", "Your account has been suspended. Contact support for details.", nil
	default:
		return "", "", fmt.Errorf("unknown event kind %q", event.Kind)
	}
}

func eventData(event Event) map[string]string {
	data := map[string]string{"kind": string(event.Kind)}
	if event.ConversationID != "" {
		data["conversation_id"] = event.ConversationID
	}
	if event.MessageID != "" {
		data["message_id"] = event.MessageID
	}
	if event.BroadcastID != "" {
		data["broadcast_id"] = event.BroadcastID
	}
	return data
}
