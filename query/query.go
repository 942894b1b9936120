// Package query is a thin iteration helper over an engine's id set: a
// lazy iter.Seq2 the caller ranges over and can break out of early, plus
// a Limit option to stop the scan after a fixed number of matches.
// Filtering runs against decoded values via a caller-supplied codec,
// since the engine has no notion of document fields to scan.
package query

import (
	"iter"

	"github.com/mrivera-dev/cellar"
	"github.com/mrivera-dev/cellar/codec"
)

// Result pairs a decoded value with the id it was read from.
type Result[T any] struct {
	ID    uint64
	Value T
}

// Options controls a Match call.
type Options struct {
	// Limit stops the scan after this many matches. Zero means no limit.
	Limit int
}

// All decodes every live object in engine via c and yields it lazily,
// in no particular order (it follows Engine.IDs, which snapshots map
// iteration order). Decode errors are yielded as the second iter.Seq2
// value and do not stop the scan.
func All[T any](engine *cellar.Engine, c codec.ObjectCodec[T]) iter.Seq2[Result[T], error] {
	return Match(engine, c, func(T) bool { return true }, Options{})
}

// Match decodes every live object via c, yields those for which
// predicate returns true, and stops early once Options.Limit matches
// have been yielded (if Limit > 0).
func Match[T any](engine *cellar.Engine, c codec.ObjectCodec[T], predicate func(T) bool, opts Options) iter.Seq2[Result[T], error] {
	return func(yield func(Result[T], error) bool) {
		matched := 0
		for id := range engine.IDs() {
			data, err := engine.ReadID(id)
			if err != nil {
				if !yield(Result[T]{}, err) {
					return
				}
				continue
			}

			v, err := decodeBytes(c, data)
			if err != nil {
				if !yield(Result[T]{}, err) {
					return
				}
				continue
			}

			if !predicate(v) {
				continue
			}
			if !yield(Result[T]{ID: id, Value: v}, nil) {
				return
			}
			matched++
			if opts.Limit > 0 && matched >= opts.Limit {
				return
			}
		}
	}
}
