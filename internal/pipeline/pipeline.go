// Package pipeline runs the core of a transform: a single-pass reader, a
// dispatcher that is either strictly sequential or fanned out across a
// fixed number of lanes, and a single-owner writer, connected by bounded
// queues. The first error anywhere cancels everything else in flight.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"rowmill/internal/record"
)

// Transformer applies the compiled program to one record. ok == false means
// the record was dropped. Implementations must be safe for concurrent
// calls; the pipeline never shares evaluation state between calls.
type Transformer interface {
	Apply(ctx context.Context, rec record.Record) (record.Record, bool, error)
}

// Options selects the dispatch mode and its buffering.
//
// Concurrent == 0 runs the single-path mode: input order is preserved end
// to end. Concurrent >= 2 fans records out across that many lanes; output
// order across lanes is unspecified — that is the contract, not a defect.
// Any other lane count is rejected before the first read.
type Options struct {
	Concurrent  int
	Buffer      int // capacity of each inter-stage queue; default 64
	MaxInFlight int // cap on admitted-but-unretired records; default 4*Buffer
}

// Result reports a completed run.
type Result struct {
	Written int64 // records that survived the transform
}

var ErrConcurrency = errors.New("pipeline: concurrent must be 2 or greater")

const defaultBuffer = 64

// Run streams records from dec through tr into enc and reports how many
// were written. On error no Result is produced: the caller must treat the
// partially written output as garbage.
func Run(ctx context.Context, dec record.Decoder, enc record.Encoder, tr Transformer, opts Options) (Result, error) {
	if opts.Concurrent != 0 && opts.Concurrent < 2 {
		return Result{}, fmt.Errorf("%w (got %d)", ErrConcurrency, opts.Concurrent)
	}
	if opts.Buffer <= 0 {
		opts.Buffer = defaultBuffer
	}
	if opts.MaxInFlight <= 0 {
		opts.MaxInFlight = 4 * opts.Buffer
	}

	src := reader{dec: dec}
	dst := &writer{enc: enc}

	var err error
	if opts.Concurrent == 0 {
		err = runSequential(ctx, src, tr, dst)
	} else {
		err = runParallel(ctx, src, tr, dst, opts)
	}
	if err != nil {
		return Result{}, err
	}
	if err := dst.flush(); err != nil {
		return Result{}, err
	}
	return Result{Written: dst.written}, nil
}

/*──────── reader stage ───────*/

// reader is the single-pass source of records. next returns ok == false at
// end of stream; malformed input surfaces as *record.DecodeError.
type reader struct{ dec record.Decoder }

func (r reader) next(ctx context.Context) (record.Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	rec, err := r.dec.Decode()
	if errors.Is(err, io.EOF) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &record.DecodeError{Err: err}
	}
	return rec, true, nil
}

/*──────── writer stage ───────*/

// writer owns the output encoder. Every write funnels through the one
// goroutine driving it, so the encoder needs no further locking.
type writer struct {
	enc     record.Encoder
	written int64
}

func (w *writer) write(rec record.Record) error {
	if err := w.enc.Encode(rec); err != nil {
		return &record.EncodeError{Err: err}
	}
	w.written++
	return nil
}

func (w *writer) flush() error {
	if err := w.enc.Flush(); err != nil {
		return &record.EncodeError{Err: err}
	}
	return nil
}

/*──────── sequential dispatch ───────*/

func runSequential(ctx context.Context, src reader, tr Transformer, dst *writer) error {
	for {
		rec, ok, err := src.next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		out, keep, err := tr.Apply(ctx, rec)
		if err != nil {
			return err
		}
		if !keep {
			continue
		}
		if err := dst.write(out); err != nil {
			return err
		}
	}
}

/*──────── parallel dispatch ───────*/

// runParallel fans the input across opts.Concurrent lanes: one producer
// feeds a bounded dispatch queue, each lane transforms independently, and
// results merge into a second bounded queue drained by the single writer
// owner. Work is pulled by whichever lane is free, which keeps all lanes
// busy without a fixed partition.
//
// The first error from any stage wins: it fills the single-slot error
// channel and cancels the shared context. The writer stops accepting
// immediately; results still in flight are discarded, not drained.
func runParallel(ctx context.Context, src reader, tr Transformer, dst *writer, opts Options) error {
	lctx, cancel := context.WithCancel(ctx)
	defer cancel()

	in := make(chan record.Record, opts.Buffer)
	out := make(chan record.Record, opts.Buffer)
	errc := make(chan error, 1)

	fail := func(err error) {
		select {
		case errc <- err:
		default:
		}
		cancel()
	}

	gov := newGovernor(opts.MaxInFlight)

	go func() {
		defer close(in)
		for {
			rec, ok, err := src.next(lctx)
			if err != nil {
				fail(err)
				return
			}
			if !ok {
				return
			}
			if err := gov.acquire(lctx); err != nil {
				return
			}
			select {
			case in <- rec:
			case <-lctx.Done():
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < opts.Concurrent; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rec := range in {
				res, keep, err := tr.Apply(lctx, rec)
				if err != nil {
					fail(err)
					return
				}
				if !keep {
					gov.release()
					continue
				}
				select {
				case out <- res:
				case <-lctx.Done():
					return
				}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(out)
	}()

	for {
		if lctx.Err() != nil {
			break
		}
		select {
		case rec, open := <-out:
			if !open {
				// all lanes finished; a late producer error may still be pending
				select {
				case err := <-errc:
					return err
				default:
					return nil
				}
			}
			if err := dst.write(rec); err != nil {
				fail(err)
				return err
			}
			gov.release()
		case <-lctx.Done():
		}
	}

	select {
	case err := <-errc:
		return err
	default:
		return ctx.Err()
	}
}
