package azurefs

import (
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/sealdb/azurefs/internal/errs"
)

// Defaults for ReadOptions fields left at their zero value.
const (
	DefaultTransferConcurrency = 5
	DefaultTransferChunkSize   = 1 << 20 // 1 MiB
	DefaultBufferSize          = 1 << 20 // 1 MiB
)

// ReadOptions controls how blob content is transferred and buffered.
// Every field is optional; zero values resolve to the defaults above.
// Options are captured once per storage context and stay fixed for every
// handle opened through it.
type ReadOptions struct {
	// TransferConcurrency is the number of parallel connections one
	// range download may use.
	TransferConcurrency int `yaml:"transfer_concurrency"`

	// TransferChunkSize is the per-connection transfer block size in bytes.
	TransferChunkSize int64 `yaml:"transfer_chunk_size"`

	// BufferSize is the size in bytes of the per-handle read-ahead buffer.
	BufferSize int64 `yaml:"buffer_size"`

	// ContextCaching controls whether storage contexts are cached per
	// account for the duration of a session. nil means enabled.
	ContextCaching *bool `yaml:"context_caching"`
}

// DefaultReadOptions returns the fully resolved defaults.
func DefaultReadOptions() ReadOptions {
	return ReadOptions{
		TransferConcurrency: DefaultTransferConcurrency,
		TransferChunkSize:   DefaultTransferChunkSize,
		BufferSize:          DefaultBufferSize,
	}
}

// CachingEnabled reports whether storage-context caching is on.
func (o ReadOptions) CachingEnabled() bool {
	return o.ContextCaching == nil || *o.ContextCaching
}

// withDefaults fills zero-valued fields with their defaults.
func (o ReadOptions) withDefaults() ReadOptions {
	if o.TransferConcurrency <= 0 {
		o.TransferConcurrency = DefaultTransferConcurrency
	}
	if o.TransferChunkSize <= 0 {
		o.TransferChunkSize = DefaultTransferChunkSize
	}
	if o.BufferSize <= 0 {
		o.BufferSize = DefaultBufferSize
	}
	return o
}

// LoadReadOptions reads ReadOptions from a yaml file. Missing keys keep
// their defaults.
func LoadReadOptions(path string) (ReadOptions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ReadOptions{}, errs.Wrap(errs.KindConfig, "failed to read options file", err).WithPath(path)
	}

	var o ReadOptions
	if err := yaml.Unmarshal(data, &o); err != nil {
		return ReadOptions{}, errs.Wrap(errs.KindConfig, "failed to parse options file", err).WithPath(path)
	}
	return o.withDefaults(), nil
}
