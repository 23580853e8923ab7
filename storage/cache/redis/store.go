// Package rediscache keeps the overlay in Redis, so pending edits survive restarts
// and are shared by every API instance.
package rediscache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"

	"github.com/roshna21/DevOps-project/core"
	"github.com/roshna21/DevOps-project/core/overlay"
)

// NewClient connects to the configured Redis server and checks it answers.
func NewClient(ctx context.Context, conf *core.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Overlay.RedisAddr,
		Password: conf.Overlay.RedisPassword,
		DB:       conf.Overlay.RedisDB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "pinging redis")
	}
	return client, nil
}

// Store is an overlay.Store holding one hash per student and namespace:
// key {prefix}:{namespace}:{student}, field {subject}, JSON-encoded entry as value.
type Store struct {
	client redis.UniversalClient
	prefix string
}

var _ overlay.Store = (*Store)(nil) // interface compliance check

func NewStore(client redis.UniversalClient, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

func (s *Store) key(ns overlay.Namespace, studentID string) string {
	return s.prefix + ":" + string(ns) + ":" + studentID
}

func (s *Store) Load(ctx context.Context, ns overlay.Namespace, studentID string) (map[string]overlay.Entry, error) {
	fields, err := s.client.HGetAll(ctx, s.key(ns, studentID)).Result()
	if err != nil && err != redis.Nil {
		return nil, errors.Wrap(err, "reading overlay hash")
	}

	entries := make(map[string]overlay.Entry, len(fields))
	for subject, raw := range fields {
		var e overlay.Entry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			return nil, errors.Wrapf(err, "decoding overlay entry %s", subject)
		}
		entries[subject] = e
	}
	return entries, nil
}

func (s *Store) Put(ctx context.Context, ns overlay.Namespace, studentID, subject string, e overlay.Entry) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return errors.Wrap(err, "encoding overlay entry")
	}
	return errors.Wrap(s.client.HSet(ctx, s.key(ns, studentID), subject, raw).Err(), "writing overlay entry")
}

// Delete removes the field; Redis drops the hash with its last field.
func (s *Store) Delete(ctx context.Context, ns overlay.Namespace, studentID, subject string) error {
	return errors.Wrap(s.client.HDel(ctx, s.key(ns, studentID), subject).Err(), "deleting overlay entry")
}

func (s *Store) Close() error {
	return s.client.Close()
}
