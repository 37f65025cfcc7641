// =============================================================================
// XTE Converter - Converter Module
// =============================================================================
//
// This module contains the two conversion pipelines. They share nothing but
// the table representation and the field catalog.
//
// DECODE PIPELINE (documents -> table):
//   1. Parse the document and extract the transaction header
//   2. Flatten every guide into one row per procedure
//   3. Reconcile columns against the field catalog
//   4. Derive values (date renormalization, age, leading-zero repair)
//   5. Concatenate the per-file tables
//
// ENCODE PIPELINE (table -> documents):
//   1. Group rows by origin (one output document per source file)
//   2. Group each origin's rows into guides
//   3. Build, hash and pretty-print the document
//   4. Name the outputs after the origin, once per configured extension
//
// CONCURRENCY:
//   Files and origin groups are processed one at a time, each to completion
//   before the next. A document that fails midway is discarded whole.
//
// =============================================================================

package converter

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/ginjaninja78/XTE-Excel-conversion/internal/catalog"
	"github.com/ginjaninja78/XTE-Excel-conversion/internal/types"
	"github.com/ginjaninja78/XTE-Excel-conversion/internal/xmlwriter"
	"github.com/ginjaninja78/XTE-Excel-conversion/internal/xteparser"
)

// Logger is an interface for logging.
// The logging package provides the implementation used by the CLI.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

// =============================================================================
// OPTIONS
// =============================================================================

type options struct {
	logger     Logger
	now        func() time.Time
	writer     xmlwriter.Options
	extensions []string
	cache      bool
}

// Option customizes a Decoder or an Encoder.
type Option func(*options)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClock sets the clock used for the header timestamps of generated
// documents.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithWriterOptions sets the document generation options.
func WithWriterOptions(w xmlwriter.Options) Option {
	return func(o *options) {
		o.writer = w
	}
}

// WithExtensions sets the mirrored output extensions, e.g. ".xml", ".xte".
func WithExtensions(exts ...string) Option {
	return func(o *options) {
		if len(exts) > 0 {
			o.extensions = append([]string(nil), exts...)
		}
	}
}

// WithCache enables or disables the decode cache.
func WithCache(enabled bool) Option {
	return func(o *options) {
		o.cache = enabled
	}
}

func buildOptions(opts []Option) options {
	o := options{
		logger:     nopLogger{},
		now:        time.Now,
		writer:     xmlwriter.DefaultOptions(),
		extensions: []string{".xml", ".xte"},
		cache:      true,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// =============================================================================
// DECODER
// =============================================================================

// Input is one source document as supplied by the caller.
type Input struct {
	// Name is the file name; it becomes the row's origin value.
	Name string

	// Data is the raw document bytes.
	Data []byte
}

// DecodeResult is the outcome of decoding a batch of documents.
type DecodeResult struct {
	// Table is the concatenation of every successfully decoded document.
	Table *types.Table

	// Failures holds one *types.ParseError per skipped document.
	Failures []error

	// Stats contains processing statistics.
	Stats DecodeStats
}

// DecodeStats contains statistics about a decode run.
type DecodeStats struct {
	FilesDecoded int
	FilesFailed  int
	Rows         int
	Duration     time.Duration
}

// Decoder converts monitoring documents into a table.
type Decoder struct {
	catalog   *catalog.Catalog
	flattener *xteparser.Flattener
	opts      options

	mu    sync.Mutex
	cache map[string]*types.Table
}

// NewDecoder creates a decoder bound to a catalog.
func NewDecoder(cat *catalog.Catalog, opts ...Option) *Decoder {
	return &Decoder{
		catalog:   cat,
		flattener: xteparser.NewFlattener(cat),
		opts:      buildOptions(opts),
		cache:     make(map[string]*types.Table),
	}
}

// DecodeFile decodes one document.
//
// PARAMETERS:
//   - name: The file name, stored in the origin column of every row.
//   - data: The document bytes.
//
// RETURNS:
//   - The reconciled and derived table for this document.
//   - A *types.ParseError if the document cannot be read.
func (d *Decoder) DecodeFile(name string, data []byte) (*types.Table, error) {
	key := cacheKey(name, data)
	if d.opts.cache {
		d.mu.Lock()
		cached, ok := d.cache[key]
		d.mu.Unlock()
		if ok {
			d.opts.logger.Debug("Cache hit for %s", name)
			return cloneTable(cached), nil
		}
	}

	root, err := xteparser.ParseBytes(data)
	if err != nil {
		return nil, &types.ParseError{Origin: name, Err: err}
	}

	rows := d.flattener.Flatten(root)
	table := Reconcile(rows, name, d.catalog)
	Derive(table, d.catalog)

	d.opts.logger.Debug("Decoded %s: %d rows, %d columns", name, len(table.Rows), len(table.Columns))

	if d.opts.cache {
		d.mu.Lock()
		d.cache[key] = cloneTable(table)
		d.mu.Unlock()
	}
	return table, nil
}

// DecodeAll decodes a batch. Documents that fail to parse are skipped and
// reported; the others are concatenated in input order.
func (d *Decoder) DecodeAll(inputs []Input) *DecodeResult {
	start := time.Now()
	result := &DecodeResult{}

	var tables []*types.Table
	for _, in := range inputs {
		d.opts.logger.Info("Decoding file: %s", in.Name)

		table, err := d.DecodeFile(in.Name, in.Data)
		if err != nil {
			d.opts.logger.Error("Skipping %s: %v", in.Name, err)
			result.Failures = append(result.Failures, err)
			result.Stats.FilesFailed++
			continue
		}
		tables = append(tables, table)
		result.Stats.FilesDecoded++
	}

	result.Table = Concat(d.catalog, tables...)
	result.Stats.Rows = len(result.Table.Rows)
	result.Stats.Duration = time.Since(start)
	return result
}

func cacheKey(name string, data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:]) + "\x00" + name
}

func cloneTable(t *types.Table) *types.Table {
	out := &types.Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([]*types.Row, len(t.Rows)),
	}
	for i, r := range t.Rows {
		out.Rows[i] = r.Clone()
	}
	return out
}

// =============================================================================
// ENCODER
// =============================================================================

// OutputFile is one generated document under one extension.
type OutputFile struct {
	// Name is the output file name, e.g. "lote_2024_03.xte".
	Name string

	// Origin is the origin value the document was built from.
	Origin string

	// Data is the serialized document.
	Data []byte
}

// OriginFailure records an origin group that could not be generated.
type OriginFailure struct {
	Origin string
	Err    error
}

// EncodeResult is the outcome of encoding a table.
type EncodeResult struct {
	// Files holds the outputs in origin order, one entry per extension.
	Files []OutputFile

	// Failures lists origin groups that were dropped.
	Failures []OriginFailure

	// Stats contains processing statistics.
	Stats EncodeStats
}

// EncodeStats contains statistics about an encode run.
type EncodeStats struct {
	Origins     int
	Guides      int
	Procedures  int
	SkippedRows int
	Duration    time.Duration
}

// Map returns the outputs as a file name to document bytes mapping.
func (r *EncodeResult) Map() map[string][]byte {
	out := make(map[string][]byte, len(r.Files))
	for _, f := range r.Files {
		out[f.Name] = f.Data
	}
	return out
}

// Encoder converts a table back into monitoring documents.
type Encoder struct {
	catalog *catalog.Catalog
	opts    options
}

// NewEncoder creates an encoder bound to a catalog.
func NewEncoder(cat *catalog.Catalog, opts ...Option) *Encoder {
	return &Encoder{catalog: cat, opts: buildOptions(opts)}
}

// Encode generates one document per origin.
//
// RETURNS:
//   - The generated files and the origin groups that failed.
//   - A *types.SchemaError if the table has no origin column.
func (e *Encoder) Encode(table *types.Table) (*EncodeResult, error) {
	start := time.Now()

	origins, skipped, err := GroupOrigins(table, e.catalog)
	if err != nil {
		return nil, err
	}

	result := &EncodeResult{}
	result.Stats.SkippedRows = skipped
	if skipped > 0 {
		e.opts.logger.Warn("Skipped %d rows with a blank %s", skipped, e.catalog.OriginColumn)
	}

	used := make(map[string]int)
	for _, origin := range origins {
		guides := GroupGuides(origin.Rows)
		e.reportSuppressions(origin.Origin, guides)

		data, err := xmlwriter.Generate(guides, e.opts.now(), e.opts.writer)
		if err != nil {
			e.opts.logger.Error("Failed to generate %s: %v", origin.Origin, err)
			result.Failures = append(result.Failures, OriginFailure{
				Origin: origin.Origin,
				Err:    fmt.Errorf("failed to generate document: %w", err),
			})
			continue
		}

		stem := uniqueStem(xmlwriter.OutputStem(origin.Origin), used)
		for _, ext := range e.opts.extensions {
			result.Files = append(result.Files, OutputFile{Name: stem + ext, Origin: origin.Origin, Data: data})
		}

		result.Stats.Origins++
		result.Stats.Guides += len(guides)
		result.Stats.Procedures += len(origin.Rows)
		e.opts.logger.Info("Generated %s (%d guides, %d procedures)", stem, len(guides), len(origin.Rows))
	}

	result.Stats.Duration = time.Since(start)
	return result, nil
}

// reportSuppressions logs guide values the builder drops on purpose.
func (e *Encoder) reportSuppressions(origin string, guides []types.GuideGroup) {
	for _, g := range guides {
		sex := g.Rows[0].Value("sexo")
		if sex != "" && !e.opts.writer.AcceptsSex(sex) {
			e.opts.logger.Warn("%s: guide %s has sexo %q, omitted from output", origin, g.Key.ProviderGuide, sex)
		}
	}
}

// uniqueStem appends _2, _3 ... when two origins sanitize to the same stem.
func uniqueStem(stem string, used map[string]int) string {
	used[stem]++
	if n := used[stem]; n > 1 {
		candidate := fmt.Sprintf("%s_%d", stem, n)
		for used[candidate] > 0 {
			used[stem]++
			candidate = fmt.Sprintf("%s_%d", stem, used[stem])
		}
		used[candidate]++
		return candidate
	}
	return stem
}
