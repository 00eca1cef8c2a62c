// Package corefmt collects the byte-level codecs shared by the verification
// surfaces: hex digests for seed commitments and uvarint length-prefixed
// frames for round archives.
package corefmt

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"io"

	"github.com/zintix-labs/fairlab/errs"
)

func EncodeHex(b []byte) string {
	return hex.EncodeToString(b)
}

func DecodeHex(s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, errs.Wrap(err, "decode hex failed")
	}
	return b, err
}

// SeedCommitment returns the SHA-256 hex digest of a server seed. The
// operator publishes this value before any spin uses the seed; after the
// seed is revealed anyone can recompute the digest and compare.
func SeedCommitment(serverSeed string) string {
	sum := sha256.Sum256([]byte(serverSeed))
	return EncodeHex(sum[:])
}

// FrameReader is the reader contract for sequential frame decoding.
// bufio.Reader satisfies it; wrap the underlying stream exactly once so
// consecutive ReadBlobFrame calls share the same read-ahead buffer.
type FrameReader interface {
	io.Reader
	io.ByteReader
}

// EncodeBlobFrame encodes raw bytes into a length-prefixed binary frame:
//
//	frame := uvarint(len(payload)) || payload
//
// This format is NOT JSON-friendly; it is meant for files and binary streams.
func EncodeBlobFrame(payload []byte) []byte {
	var hdr [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(hdr[:], uint64(len(payload)))

	out := make([]byte, 0, n+len(payload))
	out = append(out, hdr[:n]...)
	out = append(out, payload...)
	return out
}

// DecodeBlobFrame decodes a single frame produced by EncodeBlobFrame.
// It returns an error if the frame is malformed or truncated.
func DecodeBlobFrame(frame []byte) ([]byte, error) {
	n, size := binary.Uvarint(frame)
	if size <= 0 {
		return nil, errs.NewWarn("decode blob frame failed: invalid varint length")
	}
	if uint64(len(frame)-size) < n {
		return nil, errs.NewWarn("decode blob frame failed: truncated payload")
	}
	payload := frame[size : size+int(n)]
	// Return a copy to avoid retaining the entire frame backing array.
	out := make([]byte, len(payload))
	copy(out, payload)
	return out, nil
}

// WriteBlobFrame writes one length-prefixed frame into w. Frames may be
// written back to back; ReadBlobFrame consumes them one at a time.
func WriteBlobFrame(w io.Writer, payload []byte) error {
	var hdr [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(hdr[:], uint64(len(payload)))
	if _, err := w.Write(hdr[:n]); err != nil {
		return errs.Wrap(err, "write blob frame header failed")
	}
	if _, err := w.Write(payload); err != nil {
		return errs.Wrap(err, "write blob frame payload failed")
	}
	return nil
}

// ReadBlobFrame reads the next frame from r. A clean end of stream at a
// frame boundary returns io.EOF untouched so callers can loop; EOF inside
// a frame is reported as an error.
//
// maxBytes caps the payload allocation when reading untrusted input;
// pass 0 to disable the cap.
func ReadBlobFrame(r FrameReader, maxBytes uint64) ([]byte, error) {
	ln, err := binary.ReadUvarint(r)
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, errs.Wrap(err, "read blob frame header failed")
	}
	if maxBytes > 0 && ln > maxBytes {
		return nil, errs.NewWarn("read blob frame failed: payload exceeds maxBytes")
	}
	buf := make([]byte, ln)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, errs.Wrap(err, "read blob frame payload failed")
	}
	return buf, nil
}
