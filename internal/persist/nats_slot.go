package persist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"git.home.luguber.info/inful/taskboard/internal/logfields"
)

// NATSSlot stores values in a JetStream key-value bucket.
type NATSSlot struct {
	conn   *nats.Conn
	kv     jetstream.KeyValue
	bucket string
}

// NewNATSSlot connects to url and opens bucket, creating it when missing.
func NewNATSSlot(ctx context.Context, url, bucket string) (*NATSSlot, error) {
	conn, err := nats.Connect(url, nats.Name("taskboard"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	kv, err := openBucket(ctx, js, bucket)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize KV bucket: %w", err)
	}

	slog.Debug("NATS slot initialized", logfields.Backend("nats"), logfields.URL(url), logfields.Bucket(bucket))
	return &NATSSlot{conn: conn, kv: kv, bucket: bucket}, nil
}

func openBucket(ctx context.Context, js jetstream.JetStream, bucket string) (jetstream.KeyValue, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	kv, err := js.KeyValue(ctx, bucket)
	if err == nil {
		return kv, nil
	}
	if !errors.Is(err, jetstream.ErrBucketNotFound) {
		return nil, err
	}

	kv, err = js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "taskboard task snapshots",
		History:     5,
	})
	if err != nil {
		return nil, err
	}
	slog.Info("Created KV bucket for task storage", logfields.Backend("nats"), logfields.Bucket(bucket))
	return kv, nil
}

func (n *NATSSlot) Backend() string { return "nats" }

func (n *NATSSlot) Read(ctx context.Context, key string) ([]byte, error) {
	entry, err := n.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, ErrSlotEmpty
		}
		return nil, fmt.Errorf("failed to get key from KV: %w", err)
	}
	return entry.Value(), nil
}

func (n *NATSSlot) Write(ctx context.Context, key string, data []byte) error {
	if _, err := n.kv.Put(ctx, key, data); err != nil {
		return fmt.Errorf("failed to put key to KV: %w", err)
	}
	return nil
}

func (n *NATSSlot) Close() error {
	if n.conn != nil {
		n.conn.Close()
	}
	return nil
}
