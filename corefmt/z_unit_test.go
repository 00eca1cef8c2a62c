package corefmt

import (
	"bufio"
	"bytes"
	"io"
	"testing"
)

func TestHexRoundTrip(t *testing.T) {
	src := []byte{0x00, 0x01, 0xAB, 0xFF}
	enc := EncodeHex(src)
	if enc != "0001abff" {
		t.Fatalf("unexpected hex encoding: %s", enc)
	}
	dec, err := DecodeHex(enc)
	if err != nil || !bytes.Equal(dec, src) {
		t.Fatalf("round trip failed: %v %v", dec, err)
	}
	if _, err := DecodeHex("zz"); err == nil {
		t.Fatalf("invalid hex must fail")
	}
}

func TestSeedCommitment(t *testing.T) {
	// echo -n server | sha256sum
	const want = "b3eacd33433b31b5252351032c9b3e7a2e7aa7738d5decdf0dd6c62680853c06"
	if got := SeedCommitment("server"); got != want {
		t.Fatalf("commitment mismatch:\n got %s\nwant %s", got, want)
	}
	if len(SeedCommitment("")) != 64 {
		t.Fatalf("commitment must always be 32 bytes of hex")
	}
}

func TestBlobFrameRoundTrip(t *testing.T) {
	payload := []byte("fairlab-frame-payload")
	frame := EncodeBlobFrame(payload)

	got, err := DecodeBlobFrame(frame)
	if err != nil || !bytes.Equal(got, payload) {
		t.Fatalf("decode failed: %v %v", got, err)
	}

	// 截斷與壞長度
	if _, err := DecodeBlobFrame(frame[:len(frame)-3]); err == nil {
		t.Fatalf("truncated frame must fail")
	}
	if _, err := DecodeBlobFrame(nil); err == nil {
		t.Fatalf("empty frame must fail")
	}

	// 解碼結果不得與原 frame 共用底層陣列
	got[0] = 'X'
	if frame[1] == 'X' {
		t.Fatalf("decoded payload aliases the frame")
	}
}

func TestBlobFrameSequentialStream(t *testing.T) {
	var sink bytes.Buffer
	payloads := [][]byte{
		[]byte("first"),
		[]byte(""),
		[]byte("third-and-longer-payload"),
	}
	for _, p := range payloads {
		if err := WriteBlobFrame(&sink, p); err != nil {
			t.Fatalf("write error: %v", err)
		}
	}

	br := bufio.NewReader(bytes.NewReader(sink.Bytes()))
	for i, want := range payloads {
		got, err := ReadBlobFrame(br, 0)
		if err != nil || !bytes.Equal(got, want) {
			t.Fatalf("frame %d: got %q err %v", i, got, err)
		}
	}
	if _, err := ReadBlobFrame(br, 0); err != io.EOF {
		t.Fatalf("clean stream end must return io.EOF, got %v", err)
	}
}

func TestBlobFrameLimits(t *testing.T) {
	frame := EncodeBlobFrame(bytes.Repeat([]byte{0x7A}, 64))

	br := bufio.NewReader(bytes.NewReader(frame))
	if _, err := ReadBlobFrame(br, 16); err == nil || err == io.EOF {
		t.Fatalf("payload above maxBytes must fail, got %v", err)
	}

	// 框架中途截斷不可偽裝成乾淨結尾
	br = bufio.NewReader(bytes.NewReader(frame[:10]))
	if _, err := ReadBlobFrame(br, 0); err == nil || err == io.EOF {
		t.Fatalf("truncated payload must error, got %v", err)
	}
}
