// Package objectively implements the core of a small dynamic-object language
// runtime: an object model, a tracing garbage collector, a stack-based
// bytecode interpreter, and a cooperative multithreading substrate.
//
// This file holds the handful of cross-cutting helpers every other package
// in the module leans on: stack-preserving error wrapping, monotonic unique
// ID generation, and a small generic set type.
package objectively

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"sync/atomic"

	"github.com/pkg/errors"
)

var lastUniqueIDCounter uint64 = 0

const uniqueIDLen = 16

// Encoding is the base64 encoding NextUniqueID uses for object IDs.
var Encoding = base64.RawURLEncoding

// Increment atomically increments *counter and returns the new value.
func Increment(counter *uint64) uint64 {
	return atomic.AddUint64(counter, 1)
}

// NextUniqueID generates a unique ID using a monotonic counter prefix
// followed by random bytes, then base64-encodes the result. Used for object
// IDs that don't otherwise carry a kind-specific identity.
func NextUniqueID() string {
	counter := Increment(&lastUniqueIDCounter)
	timeSize := binary.Size(counter)
	result := make([]byte, uniqueIDLen)
	binary.BigEndian.PutUint64(result, counter)
	if _, err := rand.Read(result[timeSize:]); err != nil {
		panic("crypto/rand failed: " + err.Error())
	}
	return Encoding.EncodeToString(result)
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// WithStack wraps err with a stack trace unless it already carries one. It is
// idempotent, safe to call at every return site, and returns nil for a nil
// err. This is strictly for Go-level plumbing errors (bad bytecode files,
// unreadable audit databases) -- language-level exceptions use the sentinel
// and in-flight-exception machinery described in the object/interp packages,
// never this wrapper.
func WithStack(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(stackTracer); !ok {
		return errors.WithStack(err)
	}
	return err
}

// StackTrace renders the stack trace attached to err by WithStack, if any.
func StackTrace(err error) string {
	buf := &bytes.Buffer{}
	if err, ok := err.(stackTracer); ok {
		for _, f := range err.StackTrace() {
			fmt.Fprintf(buf, "%+v\n", f)
		}
	}
	return buf.String()
}

// Set is a minimal generic set built on a map.
type Set[K comparable] map[K]struct{}

func NewSet[K comparable]() Set[K] {
	return Set[K]{}
}

func (s Set[K]) Add(k K) {
	s[k] = struct{}{}
}

func (s Set[K]) Del(k K) {
	delete(s, k)
}

func (s Set[K]) Has(k K) bool {
	_, found := s[k]
	return found
}

func (s Set[K]) Len() int {
	return len(s)
}
