// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/rand"
	"io"
	"time"
)

type options struct {
	now    func() time.Time
	random io.Reader
}

// Option customizes token issuers.
type Option func(*options)

// WithClock replaces time.Now as the source of issue and expiry times.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithRandom replaces crypto/rand as the source of recovery secrets.
func WithRandom(r io.Reader) Option {
	return func(o *options) {
		o.random = r
	}
}

func newOptions(opts []Option) options {
	o := options{
		now:    time.Now,
		random: rand.Reader,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
