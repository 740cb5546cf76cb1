// Package domain defines domain-level errors for the instrument feature.
package domain

import "errors"

// ErrInstrumentNotFound indicates that no instrument exists for the requested code.
// Every feature that resolves an instrument by code returns this error so handlers can map it to 404.
var ErrInstrumentNotFound = errors.New("instrument not found")
