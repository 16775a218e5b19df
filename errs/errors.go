// Package errs defines sentinel errors shared across the mtseries packages.
//
// Callers can match error categories with errors.Is while still receiving
// contextual detail, because every site wraps these sentinels using
// fmt.Errorf("%w: ...").
package errs

import "errors"

// Channel and run construction errors.
var (
	// ErrInvalidChannelKind indicates an unrecognized channel kind string.
	// Valid kinds are electric, magnetic and auxiliary.
	ErrInvalidChannelKind = errors.New("invalid channel kind")

	// ErrMetadataType indicates a metadata argument of an unexpected record type,
	// e.g. passing magnetic channel metadata to an electric channel.
	ErrMetadataType = errors.New("mismatched metadata type")

	// ErrUnsupportedSampleInput indicates a samples argument that is not a
	// recognized vector, frame or data-array shape.
	ErrUnsupportedSampleInput = errors.New("unsupported sample input")

	// ErrComponentKindMismatch indicates a component name whose leading
	// character conflicts with the channel kind's allowed prefixes.
	ErrComponentKindMismatch = errors.New("component does not match channel kind")

	// ErrSampleRateMismatch indicates channels combined or added with
	// differing sample rates.
	ErrSampleRateMismatch = errors.New("sample rate mismatch")

	// ErrChannelNotFound indicates a lookup of a component name absent from
	// the run's channel set.
	ErrChannelNotFound = errors.New("channel not found")

	// ErrUnsupportedTraceType indicates interop import given a value that is
	// not trace shaped.
	ErrUnsupportedTraceType = errors.New("unsupported trace type")
)

// Time axis alignment errors.
var (
	// ErrExactAlign indicates the exact alignment policy was requested but the
	// time axes are not identical.
	ErrExactAlign = errors.New("time indexes are not equal")

	// ErrOverrideSize indicates the override alignment policy was requested
	// but the time axes differ in length.
	ErrOverrideSize = errors.New("time indexes differ in size")

	// ErrEmptyTimeIndex indicates an operation that requires at least one
	// sample was given an empty time index.
	ErrEmptyTimeIndex = errors.New("empty time index")

	// ErrInvalidSampleRate indicates a zero or negative sample rate where a
	// positive one is required.
	ErrInvalidSampleRate = errors.New("invalid sample rate")
)

// Snapshot encoding and decoding errors.
var (
	// ErrInvalidMagicNumber indicates snapshot data that does not begin with
	// the expected magic number.
	ErrInvalidMagicNumber = errors.New("invalid magic number")

	// ErrInvalidHeader indicates a snapshot header that is truncated or
	// internally inconsistent.
	ErrInvalidHeader = errors.New("invalid snapshot header")

	// ErrInvalidPayload indicates a snapshot payload whose offsets or sizes
	// do not match the header and index entries.
	ErrInvalidPayload = errors.New("invalid snapshot payload")

	// ErrNoChannelsAdded indicates an attempt to finish a snapshot that
	// contains no channels.
	ErrNoChannelsAdded = errors.New("no channels added")
)

// ErrHandleClosed indicates access through a handle whose backing
// container has been closed, e.g. a snapshot Handle used after Close.
var ErrHandleClosed = errors.New("storage handle is closed")
