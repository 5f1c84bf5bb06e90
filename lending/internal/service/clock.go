package service

import (
	"time"

	"github.com/google/uuid"
)

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

type Option func(*options)

type options struct {
	clock Clock
	newID func() uuid.UUID
}

func WithClock(c Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

func WithIDGenerator(fn func() uuid.UUID) Option {
	return func(o *options) {
		o.newID = fn
	}
}

func newOptions(opts []Option) options {
	o := options{
		clock: realClock{},
		newID: uuid.New,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
