// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pagecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/komikflow/internal/crawler/adapter"
	"github.com/taibuivan/komikflow/internal/platform/constants"
)

// Snapshot is a chapter's page list as last scraped.
type Snapshot struct {
	ChapterID string         `json:"chapterId"`
	Pages     []adapter.Page `json:"pages"`
	CachedAt  time.Time      `json:"cachedAt"`
}

// Mirror is a read-through copy of the page cache kept outside the record store.
type Mirror interface {
	// Get returns the snapshot for chapterID and whether one was found.
	Get(ctx context.Context, chapterID string) (*Snapshot, bool, error)

	// Set stores snapshot until expiry elapses.
	Set(ctx context.Context, snapshot *Snapshot, expiry time.Duration) error
}

// # Redis

// RedisMirror keeps snapshots as JSON strings under one key per chapter.
type RedisMirror struct {
	client redis.Cmdable
}

// NewRedisMirror returns a mirror backed by client.
func NewRedisMirror(client redis.Cmdable) *RedisMirror {
	return &RedisMirror{client: client}
}

func (mirror *RedisMirror) Get(ctx context.Context, chapterID string) (*Snapshot, bool, error) {
	payload, err := mirror.client.Get(ctx, mirrorKey(chapterID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("pagecache: mirror get: %w", err)
	}

	snapshot, err := decodeSnapshot(payload)
	if err != nil {
		return nil, false, err
	}
	return snapshot, true, nil
}

func (mirror *RedisMirror) Set(ctx context.Context, snapshot *Snapshot, expiry time.Duration) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("pagecache: encode snapshot: %w", err)
	}

	if err := mirror.client.Set(ctx, mirrorKey(snapshot.ChapterID), payload, expiry).Err(); err != nil {
		return fmt.Errorf("pagecache: mirror set: %w", err)
	}
	return nil
}

func mirrorKey(chapterID string) string {
	return constants.RedisPrefixChapterPages + chapterID
}

func decodeSnapshot(payload []byte) (*Snapshot, error) {
	var snapshot Snapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return nil, fmt.Errorf("pagecache: decode snapshot: %w", err)
	}
	if snapshot.ChapterID == "" || len(snapshot.Pages) == 0 {
		return nil, errors.New("pagecache: incomplete snapshot")
	}
	return &snapshot, nil
}
