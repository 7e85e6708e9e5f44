package checkpoint

import (
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
)

// Archive writes a zstd-compressed copy of the log to dst and returns the
// compressed size in bytes.
func (l *Log[T]) Archive(dst string) (int64, error) {
	src, err := os.Open(l.path)
	if err != nil {
		return 0, ioError("open", err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return 0, ioError("create archive", err)
	}
	defer out.Close()

	enc, err := zstd.NewWriter(out, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return 0, ioError("zstd", err)
	}
	if _, err := enc.ReadFrom(src); err != nil {
		enc.Close()
		return 0, ioError("compress", err)
	}
	if err := enc.Close(); err != nil {
		return 0, ioError("compress", err)
	}
	if err := out.Sync(); err != nil {
		return 0, ioError("sync", err)
	}

	info, err := out.Stat()
	if err != nil {
		return 0, ioError("stat", err)
	}
	return info.Size(), nil
}

// Restore decompresses a log archived with Archive into the log's path,
// replacing its contents.
func (l *Log[T]) Restore(archive string) error {
	in, err := os.Open(archive)
	if err != nil {
		return ioError("open archive", err)
	}
	defer in.Close()

	dec, err := zstd.NewReader(in)
	if err != nil {
		return ioError("zstd", err)
	}
	defer dec.Close()

	out, err := os.Create(l.path)
	if err != nil {
		return ioError("create", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, dec); err != nil {
		return ioError("decompress", err)
	}
	if err := out.Sync(); err != nil {
		return ioError("sync", err)
	}
	return nil
}
