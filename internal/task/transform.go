// Package task wires one file transform together: render the source
// location, compile the script once, stream records through the pipeline
// into a fresh temp file, and register the result.
package task

import (
	"bufio"
	"context"
	"time"

	"rowmill/internal/config"
	"rowmill/internal/logging"
	"rowmill/internal/pipeline"
	"rowmill/internal/record"
	"rowmill/internal/script"
	"rowmill/internal/storage"
	"rowmill/internal/telemetry"
)

// Output is what a finished transform hands back to the host: the handle of
// the registered result file and how many records it holds.
type Output struct {
	URI     string
	Records int64
}

type FileTransform struct {
	spec  config.Spec
	store *storage.Store
	opts  pipeline.Options
}

func New(spec config.Spec, store *storage.Store, rt config.Runtime) (*FileTransform, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &FileTransform{
		spec:  spec,
		store: store,
		opts: pipeline.Options{
			Concurrent:  spec.Concurrent,
			Buffer:      rt.Buffer,
			MaxInFlight: rt.MaxInFlight,
		},
	}, nil
}

// Run executes the transform. On failure the partially written temp file is
// discarded and only the originating error is reported: no handle, no
// count, no metric.
func (t *FileTransform) Run(ctx context.Context) (Output, error) {
	log := logging.L().With("task", t.spec.Name)

	eng, err := script.New(t.spec.Engine)
	if err != nil {
		return Output{}, err
	}
	tr, err := script.NewTransform(eng, t.spec.Name, t.spec.Script)
	if err != nil {
		return Output{}, err
	}
	codec, err := record.New(t.spec.Codec)
	if err != nil {
		return Output{}, err
	}

	from := t.spec.RenderFrom()
	src, err := t.store.Open(from)
	if err != nil {
		return Output{}, err
	}
	defer src.Close()

	tmp, err := t.store.CreateTemp("filetransform", codec.Ext())
	if err != nil {
		return Output{}, err
	}

	start := time.Now()
	res, err := pipeline.Run(ctx,
		codec.NewDecoder(bufio.NewReader(src)),
		codec.NewEncoder(tmp),
		tr, t.opts)
	if err != nil {
		if derr := tmp.Discard(); derr != nil {
			log.Warn("discard temp output", "path", tmp.Path(), "err", derr)
		}
		return Output{}, err
	}

	uri, err := t.store.Register(tmp)
	if err != nil {
		return Output{}, err
	}

	telemetry.RecordsWritten.WithLabelValues(t.spec.Name).Add(float64(res.Written))
	log.Info("transform complete",
		"from", from,
		"uri", uri,
		"records", res.Written,
		"concurrent", t.spec.Concurrent,
		"took", time.Since(start))

	return Output{URI: uri, Records: res.Written}, nil
}
