package archive

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"runtime"

	"github.com/ctessum/requestcache"
	"github.com/klauspost/compress/zstd"

	"github.com/metio-grid/wxreader/domain"
	"github.com/metio-grid/wxreader/internal/hash"
	"github.com/metio-grid/wxreader/timerange"
	"github.com/metio-grid/wxreader/variable"
)

// ChunkReader implements the archive.ChunkReader concept of
// SPEC_FULL.md §4.2: it resolves (variable, location, subLevel,
// timeRange) to a sequence of chunk_<index>.dat keys, reads each
// (zstd-framed int16 columnar body), decodes, and concatenates.
//
// A requestcache.Cache sits in front of the decode step, composed the
// same way sr/srreader.go's Reader.Source builds its cache:
// Deduplicate() then Memory(n), collapsing concurrent reads of the
// same (key, location) to a single fetch+decode.
type ChunkReader struct {
	store *Store
	cache *requestcache.Cache
}

// NewChunkReader builds a ChunkReader backed by store, caching up to
// cacheSize decoded chunk bodies in memory.
func NewChunkReader(store *Store, cacheSize int) *ChunkReader {
	cr := &ChunkReader{store: store}
	cr.cache = requestcache.NewCache(cr.process, runtime.GOMAXPROCS(-1),
		requestcache.Deduplicate(), requestcache.Memory(cacheSize))
	return cr
}

type chunkRequest struct {
	key      string
	location int
	steps    int
}

// process fetches and decodes a single chunk file, returning the
// decoded float64 column for the request's location, or all-NaN if the
// chunk is missing (spec.md §4.2: "Missing file ≠ error").
func (cr *ChunkReader) process(ctx context.Context, payload interface{}) (interface{}, error) {
	req := payload.(chunkRequest)
	exists, err := cr.store.Exists(ctx, req.key)
	if err != nil {
		return nil, fmt.Errorf("archive: checking %s: %w", req.key, err)
	}
	if !exists {
		out := make([]float64, req.steps)
		for i := range out {
			out[i] = math.NaN()
		}
		return out, nil
	}
	raw, err := cr.store.Read(ctx, req.key)
	if err != nil {
		return nil, fmt.Errorf("archive: reading %s: %w", req.key, err)
	}
	ints, err := decodeChunk(raw, req.location, req.steps)
	if err != nil {
		return nil, DecodeError{Chunk: req.key, Err: err}
	}
	return ints, nil
}

// DecodeError wraps a corrupt chunk, fatal for the enclosing request
// only (spec.md §7).
type DecodeError struct {
	Chunk string
	Err   error
}

func (e DecodeError) Error() string {
	return fmt.Sprintf("archive: decode failure in chunk %s: %v", e.Chunk, e.Err)
}

func (e DecodeError) Unwrap() error { return e.Err }

var zstdDecoder, _ = zstd.NewReader(nil)

// decodeChunk decompresses a zstd-framed chunk body and extracts the
// raw int16 column for a single grid point, returning it as float64
// (still scaled; the caller applies the variable's scalefactor). The
// chunk's int16 payload is laid out row-major by location: each
// location's `steps`-sample column is contiguous, matching the way
// the columnar archive packs one variable's (location x time) block
// per spec.md §3 (Chunk).
func decodeChunk(raw []byte, location, steps int) ([]float64, error) {
	body, err := zstdDecoder.DecodeAll(raw, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decode: %w", err)
	}
	offset := location * steps * 2
	if offset+steps*2 > len(body) {
		return nil, fmt.Errorf("chunk body too short for location %d: have %d bytes, need %d", location, len(body), offset+steps*2)
	}
	out := make([]float64, steps)
	for i := 0; i < steps; i++ {
		v := int16(binary.LittleEndian.Uint16(body[offset+i*2 : offset+i*2+2]))
		out[i] = float64(v)
	}
	return out, nil
}

// variablePath returns the archive path fragment identifying v's file
// family: its storage key, prefixed by "member_<N>/" when d is a
// disjoint (non-packed) ensemble domain, per spec.md §4.5's
// ensembleMember routing. Packed ensembles carry the member index in
// v.SubLevel instead, which v.Key() already folds into the key.
func variablePath(d *domain.Domain, v variable.Variable) string {
	if d.EnsembleMemberCount > 0 && !d.EnsemblePacked {
		return fmt.Sprintf("member_%d/%s", v.EnsembleMember, v.Key())
	}
	return v.Key()
}

// Read returns exactly tr.Count() samples for variable at location
// (and subLevel, if applicable) over tr, in native storage units
// (int16-scaled floats; the caller divides by variable.ScaleFactor).
// A read spanning K chunks opens K files and concatenates, per spec.md
// §4.2. Missing chunks fill with NaN but never shorten the result.
func (cr *ChunkReader) Read(ctx context.Context, d *domain.Domain, v variable.Variable, location int, tr timerange.TimeRange) ([]float64, error) {
	if d.MasterFileRange != nil && d.MasterFileRange.Contains(tr) {
		return cr.readMaster(ctx, d, v, location, tr)
	}

	out := make([]float64, 0, tr.Count())
	start := tr.Start
	for start < tr.End {
		chunkIndex := start / d.ChunkLength
		chunkStart := chunkIndex * d.ChunkLength
		chunkEnd := chunkStart + d.ChunkLength
		readEnd := tr.End
		if chunkEnd < readEnd {
			readEnd = chunkEnd
		}

		key := fmt.Sprintf("%s/%s/chunk_%d.dat", d.Key, variablePath(d, v), chunkIndex)
		steps := int(d.ChunkLength / d.Dt)
		data, err := cr.readChunk(ctx, key, location, steps)
		if err != nil {
			return nil, err
		}

		firstIdx := int((start - chunkStart) / d.Dt)
		lastIdx := int((readEnd - chunkStart) / d.Dt)
		if lastIdx > len(data) {
			lastIdx = len(data)
		}
		out = append(out, data[firstIdx:lastIdx]...)

		start = readEnd
	}
	if len(out) != tr.Count() {
		padded := make([]float64, tr.Count())
		for i := range padded {
			padded[i] = math.NaN()
		}
		copy(padded, out)
		out = padded
	}
	return out, nil
}

// readMaster reads directly from the domain's monolithic master file,
// bypassing chunk-index arithmetic (spec.md §4.2 "Master files").
func (cr *ChunkReader) readMaster(ctx context.Context, d *domain.Domain, v variable.Variable, location int, tr timerange.TimeRange) ([]float64, error) {
	key := fmt.Sprintf("%s/%s/master.dat", d.Key, variablePath(d, v))
	totalSteps := int((d.MasterFileRange.End - d.MasterFileRange.Start) / d.Dt)
	data, err := cr.readChunk(ctx, key, location, totalSteps)
	if err != nil {
		return nil, err
	}
	firstIdx := int((tr.Start - d.MasterFileRange.Start) / d.Dt)
	lastIdx := firstIdx + tr.Count()
	if lastIdx > len(data) {
		lastIdx = len(data)
	}
	return append([]float64(nil), data[firstIdx:lastIdx]...), nil
}

func (cr *ChunkReader) readChunk(ctx context.Context, key string, location, steps int) ([]float64, error) {
	req := cr.cache.NewRequest(ctx, chunkRequest{key: key, location: location, steps: steps},
		hash.Hash(chunkRequest{key: key, location: location, steps: steps}))
	result, err := req.Result()
	if err != nil {
		return nil, err
	}
	return result.([]float64), nil
}

// WillNeed is the advisory prefetch hint of spec.md §4.2: it issues the
// same requests Read would, without waiting for or returning the
// result, and is safe to call redundantly (the in-flight table
// collapses duplicate concurrent fetches).
func (cr *ChunkReader) WillNeed(ctx context.Context, d *domain.Domain, v variable.Variable, location int, tr timerange.TimeRange) {
	go func() {
		_, _ = cr.Read(ctx, d, v, location, tr)
	}()
}
