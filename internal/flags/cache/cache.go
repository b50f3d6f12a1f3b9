// Package cache holds the short-lived snapshot of the flag record set that
// read paths evaluate against.
package cache

import (
	"context"
	"errors"
	"time"
)

const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
	DriverNone   = "none"
)

var ErrUnknownDriver = errors.New("cache: unknown driver")

// Store is a byte-level TTL cache.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Noop never holds anything. Every read goes to the database.
type Noop struct{}

func NewNoop() *Noop { return &Noop{} }

func (Noop) Get(context.Context, string) ([]byte, bool, error)          { return nil, false, nil }
func (Noop) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (Noop) Delete(context.Context, string) error                     { return nil }
