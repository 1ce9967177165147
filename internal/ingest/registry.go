package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/claude/workouthub/internal/roundtrip"
	"github.com/google/uuid"
)

// ErrUnknownFormat is returned for formats with no registered adapter.
var ErrUnknownFormat = errors.New("unknown format")

// Registry maps formats to adapters. It is built once at startup and only read afterwards.
type Registry struct {
	adapters map[Format]Adapter
	order    []Format
}

// NewRegistry registers the given adapters. A later adapter for the same
// format replaces an earlier one.
func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[Format]Adapter, len(adapters))}
	for _, a := range adapters {
		f := a.Format()
		if _, ok := r.adapters[f]; !ok {
			r.order = append(r.order, f)
		}
		r.adapters[f] = a
	}
	return r
}

// Get returns the adapter for f.
func (r *Registry) Get(f Format) (Adapter, error) {
	a, ok := r.adapters[f]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	return a, nil
}

// Formats lists the registered formats in registration order.
func (r *Registry) Formats() []Format {
	out := make([]Format, len(r.order))
	copy(out, r.order)
	return out
}

// Convert decodes in as from and encodes the canonical document to out as to.
// Nothing is written to out unless the whole conversion succeeds.
func (r *Registry) Convert(from, to Format, in io.Reader, out io.Writer) (*Result, error) {
	src, err := r.Get(from)
	if err != nil {
		return nil, err
	}
	dst, err := r.Get(to)
	if err != nil {
		return nil, err
	}

	counter := &countingReader{r: in}
	doc, err := src.Decode(counter)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", from, err)
	}

	var buf bytes.Buffer
	if err := dst.Encode(&buf, doc); err != nil {
		return nil, fmt.Errorf("encoding %s: %w", to, err)
	}

	result := &Result{ID: uuid.NewString(), From: from, To: to, BytesIn: counter.n}
	result.Count(doc)
	n, err := buf.WriteTo(out)
	result.BytesOut = n
	if err != nil {
		return result, fmt.Errorf("writing output: %w", err)
	}
	return result, nil
}

// RoundTrip runs the tolerance check for format f on the document read from in.
func (r *Registry) RoundTrip(f Format, in io.Reader, policy roundtrip.Policy) (*roundtrip.Report, error) {
	a, err := r.Get(f)
	if err != nil {
		return nil, err
	}
	report, err := a.RoundTrip(in, policy)
	if err != nil {
		return nil, fmt.Errorf("round trip %s: %w", f, err)
	}
	return report, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
