package azurefs

import (
	"context"
	"time"

	"github.com/sealdb/azurefs/internal/blobstore"
	"github.com/sealdb/azurefs/internal/errs"
)

// OpenFlags control how a file handle is opened.
type OpenFlags uint8

const (
	// FlagRead requests read access and allocates the read-ahead buffer.
	FlagRead OpenFlags = 1 << iota

	// FlagWrite requests write access. Writing is not supported; Open
	// rejects the flag.
	FlagWrite

	// FlagDirectIO disables the read-ahead buffer: every read issues one
	// range request straight into the caller's slice.
	FlagDirectIO
)

// FileHandle is a seekable read-only view of a single blob.
//
// Blob length and modification time are captured at open time; a blob
// that grows or changes under an open handle is not supported.
//
// A handle is owned by one caller at a time: the buffer bookkeeping is
// not synchronized, and concurrent reads on the same handle are
// undefined. Distinct handles, including handles sharing one storage
// context, are independent.
type FileHandle struct {
	fs    *FileSystem
	path  string // original URL, for error attribution
	loc   Location
	flags OpenFlags
	store blobstore.Store
	opts  ReadOptions

	length       int64
	lastModified time.Time

	// fileOffset is the logical position for the next sequential Read.
	fileOffset int64

	// readBuffer caches the blob bytes [bufferStart, bufferEnd).
	// bufferIdx is the consume cursor within the buffer and
	// bufferAvailable the unconsumed remainder, so
	// bufferIdx + bufferAvailable == bufferEnd - bufferStart holds
	// whenever the buffer is non-empty.
	readBuffer      []byte
	bufferStart     int64
	bufferEnd       int64
	bufferIdx       int64
	bufferAvailable int64
}

// Size returns the blob length captured at open time.
func (h *FileHandle) Size() int64 {
	return h.length
}

// LastModified returns the blob modification time captured at open time.
func (h *FileHandle) LastModified() time.Time {
	return h.lastModified
}

// Offset returns the current logical file offset.
func (h *FileHandle) Offset() int64 {
	return h.fileOffset
}

// Seek sets the logical file offset. Buffer state is left untouched, so
// seeking back into the currently buffered window costs no network call
// on the next read.
func (h *FileHandle) Seek(offset int64) {
	h.fileOffset = offset
}

// Close releases the handle's buffer. There is nothing to flush on a
// read-only handle.
func (h *FileHandle) Close() error {
	h.readBuffer = nil
	h.bufferStart = 0
	h.bufferEnd = 0
	h.bufferIdx = 0
	h.bufferAvailable = 0
	return nil
}

// Read copies up to len(p) bytes from the current offset into p and
// advances the offset. The request is clamped to the end of the blob;
// at end of blob it returns 0 and no error.
func (h *FileHandle) Read(ctx context.Context, p []byte) (int, error) {
	maxRead := h.length - h.fileOffset
	if maxRead < 0 {
		maxRead = 0
	}
	n := min(int64(len(p)), maxRead)
	if n == 0 {
		return 0, nil
	}
	if err := h.ReadAt(ctx, p[:n], h.fileOffset); err != nil {
		return 0, err
	}
	return int(n), nil
}

// ReadAt reads exactly len(p) bytes starting at offset. The range must
// lie within the blob.
//
// Small requests are served from the read-ahead buffer, refilled with at
// most one range request per call. A request larger than the refill
// window bypasses the buffer with one range request straight into p, so
// a call never issues more than two range requests (buffer drain +
// bypass) and a fully buffered call issues none.
func (h *FileHandle) ReadAt(ctx context.Context, p []byte, offset int64) error {
	toRead := int64(len(p))
	copied := int64(0)

	if h.flags&FlagDirectIO != 0 && toRead > 0 {
		if err := h.readRange(ctx, offset, p); err != nil {
			return err
		}
		h.bufferAvailable = 0
		h.bufferIdx = 0
		h.fileOffset = offset + toRead
		return nil
	}

	if h.flags&FlagRead == 0 {
		return errs.New(errs.KindConfig, "file handle was not opened for reading").WithPath(h.path)
	}

	if offset >= h.bufferStart && offset < h.bufferEnd {
		// Reposition inside the buffered window instead of refetching.
		h.fileOffset = offset
		h.bufferIdx = offset - h.bufferStart
		h.bufferAvailable = (h.bufferEnd - h.bufferStart) - h.bufferIdx
	} else {
		h.bufferAvailable = 0
		h.bufferIdx = 0
		h.fileOffset = offset
	}

	for toRead > 0 {
		if n := min(h.bufferAvailable, toRead); n > 0 {
			copy(p[copied:copied+n], h.readBuffer[h.bufferIdx:h.bufferIdx+n])

			copied += n
			toRead -= n

			h.bufferIdx += n
			h.bufferAvailable -= n
			h.fileOffset += n
		}

		if toRead > 0 && h.bufferAvailable == 0 {
			refill := min(h.opts.BufferSize, h.length-h.fileOffset)

			if toRead > refill {
				// The rest of the request cannot fit one buffer refill;
				// fetch it in a single request straight into p and skip
				// the extra copy.
				if err := h.readRange(ctx, offset+copied, p[copied:]); err != nil {
					return err
				}
				h.bufferAvailable = 0
				h.bufferIdx = 0
				h.fileOffset += toRead
				break
			}

			if err := h.readRange(ctx, h.fileOffset, h.readBuffer[:refill]); err != nil {
				return err
			}
			h.bufferAvailable = refill
			h.bufferIdx = 0
			h.bufferStart = h.fileOffset
			h.bufferEnd = h.bufferStart + refill
		}
	}
	return nil
}

// readRange performs one blocking range request for len(dst) bytes at
// offset. Backend failures surface as IO errors attributed to the
// handle's path; retries are the transport's responsibility.
func (h *FileHandle) readRange(ctx context.Context, offset int64, dst []byte) error {
	h.fs.log.Debugf("range request %s offset=%d len=%d", h.path, offset, len(dst))

	_, err := h.store.DownloadRange(ctx, h.loc.Container, h.loc.Path, dst, offset, blobstore.RangeOptions{
		Concurrency: h.opts.TransferConcurrency,
		ChunkSize:   h.opts.TransferChunkSize,
	})
	if err != nil {
		return ioError(h.path, "range request failed", err)
	}
	return nil
}
