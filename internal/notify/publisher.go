package notify

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"comicnotifier/pkg/models"
)

// NatsPublisher publishes chapter updates as JSON on one subject.
type NatsPublisher struct {
	subj string
	conn *nats.Conn
	log  *slog.Logger
}

func NewNatsPublisher(address, subj string, log *slog.Logger) (*NatsPublisher, error) {
	nc, err := nats.Connect(address,
		nats.Name("comic-notifier"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(10),
		nats.ReconnectWait(time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				log.Warn("disconnected from NATS", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("reconnected to NATS", "url", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Info("connection to NATS closed")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed connect to broker: %w", err)
	}
	log.Debug("connected to broker as publisher", "address", address, "subject", subj)
	return &NatsPublisher{
		subj: subj,
		conn: nc,
		log:  log,
	}, nil
}

func (np *NatsPublisher) Close() {
	np.conn.Close()
}

func (np *NatsPublisher) Publish(u models.ChapterUpdate) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("marshal update: %w", err)
	}
	if err := np.conn.Publish(np.subj, data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	if err := np.conn.Flush(); err != nil {
		return fmt.Errorf("failed to flush: %w", err)
	}
	np.log.Debug("message published successfully", "subject", np.subj, "favorite_id", u.FavoriteID)
	return nil
}

// Broadcast makes the publisher usable as a fan-out target.
func (np *NatsPublisher) Broadcast(u models.ChapterUpdate) {
	if err := np.Publish(u); err != nil {
		np.log.Error("failed to publish", "error", err)
	}
}
