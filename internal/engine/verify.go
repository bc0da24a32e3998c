package engine

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/zeebo/blake3"

	"github.com/bamsammich/burrow/internal/event"
	"github.com/bamsammich/burrow/internal/interrupt"
)

// ErrChecksumMismatch reports a copied file whose content differs from its source.
var ErrChecksumMismatch = errors.New("checksum mismatch")

// verifyChunk is the read size while hashing. Interruption is polled
// between chunks.
const verifyChunk = 256 << 10

// verify re-reads every copied file and compares BLAKE3 digests with its
// source. It returns false when interrupted.
func (x *executor) verify() (bool, error) {
	x.cfg.Events.Emit(event.Event{Type: event.VerifyStarted, Total: int64(len(x.copied))})

	buf := make([]byte, verifyChunk)
	for _, c := range x.copied {
		fail := func(path string, err error) error {
			return &ExecError{Op: "verify", Path: path, Err: err, Arg: x.cfg.argIndex(c.origin)}
		}

		want, err := digest(c.src, buf, x.check)
		if errors.Is(err, errInterrupted) {
			return false, nil
		}
		if err != nil {
			return false, fail(c.src, err)
		}
		got, err := digest(c.dest, buf, x.check)
		if errors.Is(err, errInterrupted) {
			return false, nil
		}
		if err != nil {
			return false, fail(c.dest, err)
		}

		if got != want {
			x.cfg.Stats.AddFilesVerifyFailed(1)
			x.cfg.Events.Emit(event.Event{Type: event.VerifyFailed, Path: c.dest})
			return false, fail(c.dest, ErrChecksumMismatch)
		}
		x.log.Debug("verified", "dest", c.dest, "blake3", fmt.Sprintf("%x", got))
		x.cfg.Stats.AddFilesVerified(1)
		x.cfg.Events.Emit(event.Event{Type: event.VerifyOK, Path: c.dest})
	}
	return true, nil
}

// digest returns the BLAKE3-256 sum of the file at path, reading through
// buf. It returns errInterrupted if check trips between reads.
func digest(path string, buf []byte, check interrupt.Checker) ([32]byte, error) {
	var sum [32]byte
	f, err := os.Open(path)
	if err != nil {
		return sum, err
	}
	defer f.Close()

	h := blake3.New()
	for {
		if check.Interrupted() {
			return sum, errInterrupted
		}
		n, err := f.Read(buf)
		h.Write(buf[:n]) //nolint:errcheck // hash writes never fail
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return sum, err
		}
	}
	h.Sum(sum[:0])
	return sum, nil
}
