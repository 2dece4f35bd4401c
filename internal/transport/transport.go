// SPDX-License-Identifier: MIT

// Package transport provides presentation sinks that publish spectrum results
// outside the process.
package transport

import (
	"errors"

	"spectrum/internal/spectrum"
)

// ErrClosed is returned by Present after Close.
var ErrClosed = errors.New("transport closed")

// Transport is a spectrum.Sink that holds resources.
// Implementations must not block the analysis tick.
type Transport interface {
	spectrum.Sink
	Close() error
}

// Multi fans results out to several transports.
type Multi struct {
	transports []Transport
}

// NewMulti returns a transport presenting to every non-nil t in order.
func NewMulti(transports ...Transport) *Multi {
	m := &Multi{}
	for _, t := range transports {
		if t != nil {
			m.transports = append(m.transports, t)
		}
	}
	return m
}

// Add appends t.
func (m *Multi) Add(t Transport) {
	if t != nil {
		m.transports = append(m.transports, t)
	}
}

// Len returns the number of transports.
func (m *Multi) Len() int { return len(m.transports) }

// Present hands r to every transport, even after one fails, and joins the
// errors.
func (m *Multi) Present(r spectrum.Result) error {
	var errs []error
	for _, t := range m.transports {
		if err := t.Present(r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every transport and joins the errors.
func (m *Multi) Close() error {
	var errs []error
	for _, t := range m.transports {
		if err := t.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ Transport = (*Multi)(nil)
