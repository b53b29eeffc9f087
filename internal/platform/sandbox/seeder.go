// Package sandbox generates batches of synthetic transplant recipients for
// test and demo environments. A Seeder owns one seeded random handle, keeps
// the last generated batch in memory and exports it as a JSON array or as
// newline-delimited JSON.
package sandbox

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ehr/recipients/internal/domain/recipient"
	"github.com/ehr/recipients/internal/platform/locale"
	"github.com/ehr/recipients/pkg/pagination"
)

// ---------------------------------------------------------------------------
// Configuration
// ---------------------------------------------------------------------------

// SeedConfig controls the size and shape of a generated batch.
type SeedConfig struct {
	Count int    `json:"count"`
	Shape string `json:"shape,omitempty"`
	Seed  int64  `json:"seed"`
}

// DefaultSeedConfig returns the reference batch: ten full records.
func DefaultSeedConfig() SeedConfig {
	return SeedConfig{
		Count: 10,
		Shape: string(recipient.ShapeFull),
	}
}

// Output formats accepted by WriteFile.
const (
	FormatJSON   = "json"
	FormatNDJSON = "ndjson"
)

// jsonIndent matches the four-space layout of the reference output file.
const jsonIndent = "    "

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

var (
	// ErrWrite is returned when the output file cannot be created or written.
	ErrWrite = errors.New("cannot write output")

	// ErrInvalidCount is returned for negative batch sizes.
	ErrInvalidCount = errors.New("count must not be negative")
)

// WriteError reports a failed output write. It is never retried.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s %s: %v", ErrWrite, e.Path, e.Err)
}

func (e *WriteError) Unwrap() []error { return []error{ErrWrite, e.Err} }

// ---------------------------------------------------------------------------
// SeedResult
// ---------------------------------------------------------------------------

// SeedResult summarizes one generated batch.
type SeedResult struct {
	BatchID  string        `json:"batchId"`
	Count    int           `json:"count"`
	Shape    string        `json:"shape"`
	Seed     int64         `json:"seed"`
	Duration time.Duration `json:"duration"`
}

// ---------------------------------------------------------------------------
// Seeder
// ---------------------------------------------------------------------------

// Seeder orchestrates batch generation and export.
type Seeder struct {
	config     SeedConfig
	projection recipient.Projection
	generator  *recipient.Generator
	logger     zerolog.Logger

	mu         sync.RWMutex
	recipients []recipient.Recipient
}

// NewSeeder validates config and builds the generator. A zero seed is
// replaced with a time-based one, which SeedResult reports back.
func NewSeeder(config SeedConfig, cat *recipient.Catalog, logger zerolog.Logger) (*Seeder, error) {
	if config.Count < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCount, config.Count)
	}
	shape, projection, err := recipient.ParseShape(config.Shape)
	if err != nil {
		return nil, err
	}
	config.Shape = string(shape)
	if config.Seed == 0 {
		config.Seed = time.Now().UnixNano()
	}

	faker := gofakeit.New(uint64(config.Seed))
	gen, err := recipient.NewGenerator(faker, cat, locale.NewPTBR(faker))
	if err != nil {
		return nil, err
	}

	return &Seeder{
		config:     config,
		projection: projection,
		generator:  gen,
		logger:     logger,
		recipients: []recipient.Recipient{},
	}, nil
}

// Config returns the effective configuration, including the resolved seed.
func (s *Seeder) Config() SeedConfig {
	return s.config
}

// Generate replaces the current batch with Count new recipients, kept in
// generation order.
func (s *Seeder) Generate() (*SeedResult, error) {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	batch := make([]recipient.Recipient, 0, s.config.Count)
	for i := 0; i < s.config.Count; i++ {
		r, err := s.generator.Generate(s.projection)
		if err != nil {
			return nil, fmt.Errorf("generate recipient %d: %w", i, err)
		}
		batch = append(batch, r)
	}
	s.recipients = batch

	result := &SeedResult{
		BatchID:  uuid.NewString(),
		Count:    len(batch),
		Shape:    s.config.Shape,
		Seed:     s.config.Seed,
		Duration: time.Since(start),
	}
	s.logger.Debug().
		Str("batch_id", result.BatchID).
		Int("count", result.Count).
		Str("shape", result.Shape).
		Int64("seed", result.Seed).
		Dur("duration", result.Duration).
		Msg("recipient batch generated")

	return result, nil
}

// Sample draws one extra recipient without touching the stored batch.
func (s *Seeder) Sample(projection recipient.Projection) (recipient.Recipient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generator.Generate(projection)
}

// Recipients returns a copy of the current batch.
func (s *Seeder) Recipients() []recipient.Recipient {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]recipient.Recipient, len(s.recipients))
	copy(out, s.recipients)
	return out
}

// Page returns the recipients inside p plus the batch size.
func (s *Seeder) Page(p pagination.Params) ([]recipient.Recipient, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := len(s.recipients)
	start, end := p.Bounds(total)
	out := make([]recipient.Recipient, end-start)
	copy(out, s.recipients[start:end])
	return out, total
}

// Reset drops the current batch.
func (s *Seeder) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recipients = []recipient.Recipient{}
}

// ExportJSON writes the batch as one indented JSON array. HTML characters
// and non-ASCII text are written literally.
func (s *Seeder) ExportJSON(w io.Writer) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", jsonIndent)
	if err := enc.Encode(s.recipients); err != nil {
		return fmt.Errorf("encoding recipients: %w", err)
	}
	return nil
}

// ExportNDJSON writes one recipient per line.
func (s *Seeder) ExportNDJSON(w io.Writer) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for i, r := range s.recipients {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encoding recipient %d: %w", i, err)
		}
	}
	return nil
}

// WriteFile encodes the batch in format and writes it to path, creating
// parent directories and replacing any existing file. It returns the number
// of bytes written.
func (s *Seeder) WriteFile(path, format string) (int, error) {
	var buf bytes.Buffer
	switch format {
	case "", FormatJSON:
		if err := s.ExportJSON(&buf); err != nil {
			return 0, err
		}
	case FormatNDJSON:
		if err := s.ExportNDJSON(&buf); err != nil {
			return 0, err
		}
	default:
		return 0, fmt.Errorf("unknown output format %q", format)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, &WriteError{Path: path, Err: err}
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return 0, &WriteError{Path: path, Err: err}
	}
	return buf.Len(), nil
}

// ---------------------------------------------------------------------------
// Batch run
// ---------------------------------------------------------------------------

// RunBatch generates one batch and writes it to path, logging a
// confirmation on success.
func RunBatch(config SeedConfig, cat *recipient.Catalog, path, format string, logger zerolog.Logger) (*SeedResult, error) {
	seeder, err := NewSeeder(config, cat, logger)
	if err != nil {
		return nil, err
	}
	result, err := seeder.Generate()
	if err != nil {
		return nil, err
	}
	n, err := seeder.WriteFile(path, format)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("batch_id", result.BatchID).
		Str("path", path).
		Str("format", format).
		Int("count", result.Count).
		Str("shape", result.Shape).
		Int64("seed", result.Seed).
		Str("size", humanize.Bytes(uint64(n))).
		Msg("synthetic recipient file written")

	return result, nil
}
