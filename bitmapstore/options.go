package bitmapstore

import (
	"github.com/hupe1980/ewah/codec"
	"github.com/hupe1980/ewah/internal/compress"
	"github.com/hupe1980/ewah/resource"
)

// Compression selects the block codec for stored frames.
type Compression = compress.Algorithm

const (
	CompressionNone = compress.None
	CompressionLZ4  = compress.LZ4
	CompressionZstd = compress.Zstd
)

// DefaultCatalogName is the blob holding the catalog.
const DefaultCatalogName = "_catalog"

// Option configures Open.
type Option func(*options)

type options struct {
	compression Compression
	codec       codec.Codec
	logger      *Logger
	metrics     MetricsCollector
	rc          *resource.Controller
	catalogName string
}

func defaultOptions() options {
	return options{
		compression: CompressionLZ4,
		codec:       codec.Default,
		logger:      NoopLogger(),
		metrics:     NoopMetricsCollector{},
		catalogName: DefaultCatalogName,
	}
}

// WithCompression sets the codec for newly written frames. Default LZ4.
func WithCompression(c Compression) Option {
	return func(o *options) { o.compression = c }
}

// WithCodec sets the codec for newly written catalogs. Existing catalogs are
// read with the codec recorded in them.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c != nil {
			o.codec = c
		}
	}
}

// WithLogger sets the logger. Default discards.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetricsCollector sets the metrics sink.
func WithMetricsCollector(m MetricsCollector) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithResourceController bounds LoadMany concurrency, decoded memory and IO.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) { o.rc = rc }
}

// WithCatalogName stores the catalog under another blob name, which lets
// several stores share one blob store. It must start with an underscore.
func WithCatalogName(name string) Option {
	return func(o *options) { o.catalogName = name }
}
