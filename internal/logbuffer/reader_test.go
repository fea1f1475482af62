package logbuffer

import (
	"bytes"
	"testing"
)

func TestReadTermRoundTrip(t *testing.T) {
	appender, header, term, _ := newTestPartition(t, TermMinLength)

	payloads := [][]byte{
		[]byte("a"),
		bytes.Repeat([]byte("b"), 31),
		bytes.Repeat([]byte("c"), 32),
		bytes.Repeat([]byte("d"), 100),
		bytes.Repeat([]byte("e"), 1000),
	}

	var claim BufferClaim
	for _, p := range payloads {
		result := appender.Claim(header, int32(len(p)), 0, &claim)
		if ResultOffset(result) <= 0 {
			t.Fatalf("claim failed: %d", ResultOffset(result))
		}
		copy(claim.Buffer(), p)
		claim.Commit()
	}

	var got [][]byte
	newOffset, fragments := ReadTerm(term, 0, func(payload []byte, info FrameInfo) {
		if info.TermID != testInitialTermID {
			t.Errorf("frame term id = %d, want %d", info.TermID, testInitialTermID)
		}
		got = append(got, append([]byte(nil), payload...))
	}, 100)

	if fragments != len(payloads) {
		t.Fatalf("fragments = %d, want %d", fragments, len(payloads))
	}
	for i, p := range payloads {
		if !bytes.Equal(got[i], p) {
			t.Errorf("payload %d = %q, want %q", i, got[i], p)
		}
	}

	// Position advanced by the aligned frame lengths.
	want := int32(0)
	for _, p := range payloads {
		want += AlignUp(int32(len(p))+FrameHeaderLength, FrameAlignment)
	}
	if newOffset != want {
		t.Errorf("new offset = %d, want %d", newOffset, want)
	}
}

func TestReadTermStopsAtUncommitted(t *testing.T) {
	appender, header, term, _ := newTestPartition(t, TermMinLength)

	var first, second BufferClaim
	if ResultOffset(appender.Claim(header, 16, 0, &first)) <= 0 {
		t.Fatal("first claim failed")
	}
	if ResultOffset(appender.Claim(header, 16, 0, &second)) <= 0 {
		t.Fatal("second claim failed")
	}

	// Only the second frame is committed; the reader must stall at the
	// first to preserve in-term order.
	second.Commit()
	newOffset, fragments := ReadTerm(term, 0, func([]byte, FrameInfo) {}, 100)
	if fragments != 0 || newOffset != 0 {
		t.Fatalf("read past a reserved frame: offset %d, fragments %d", newOffset, fragments)
	}

	first.Commit()
	newOffset, fragments = ReadTerm(term, 0, func([]byte, FrameInfo) {}, 100)
	if fragments != 2 || newOffset != 128 {
		t.Fatalf("offset %d fragments %d after commits, want 128 and 2", newOffset, fragments)
	}
}

func TestReadTermSkipsPadding(t *testing.T) {
	appender, header, term, _ := newTestPartition(t, TermMinLength)

	var claim BufferClaim
	if ResultOffset(appender.Claim(header, 100, 0, &claim)) <= 0 {
		t.Fatal("claim failed")
	}
	claim.Abort()
	if ResultOffset(appender.Claim(header, 16, 0, &claim)) <= 0 {
		t.Fatal("claim failed")
	}
	claim.Commit()

	var delivered int
	newOffset, fragments := ReadTerm(term, 0, func(payload []byte, _ FrameInfo) {
		delivered++
		if len(payload) != 16 {
			t.Errorf("payload length = %d, want 16", len(payload))
		}
	}, 100)

	if fragments != 1 || delivered != 1 {
		t.Errorf("fragments = %d delivered = %d, want 1 and 1", fragments, delivered)
	}
	// The aborted 160-byte slot plus the 64-byte data frame.
	if newOffset != 224 {
		t.Errorf("new offset = %d, want 224", newOffset)
	}
}

func TestReadTermFragmentLimit(t *testing.T) {
	appender, header, term, _ := newTestPartition(t, TermMinLength)

	var claim BufferClaim
	for i := 0; i < 10; i++ {
		if ResultOffset(appender.Claim(header, 16, 0, &claim)) <= 0 {
			t.Fatal("claim failed")
		}
		claim.Commit()
	}

	newOffset, fragments := ReadTerm(term, 0, func([]byte, FrameInfo) {}, 3)
	if fragments != 3 {
		t.Fatalf("fragments = %d, want 3", fragments)
	}
	if newOffset != 3*64 {
		t.Errorf("new offset = %d, want %d", newOffset, 3*64)
	}

	// Resume where the limit stopped.
	newOffset, fragments = ReadTerm(term, newOffset, func([]byte, FrameInfo) {}, 100)
	if fragments != 7 {
		t.Errorf("resumed fragments = %d, want 7", fragments)
	}
	if newOffset != 10*64 {
		t.Errorf("final offset = %d, want %d", newOffset, 10*64)
	}
}

func TestReadTermEmpty(t *testing.T) {
	_, _, term, _ := newTestPartition(t, TermMinLength)

	newOffset, fragments := ReadTerm(term, 0, func([]byte, FrameInfo) {
		t.Error("handler invoked on empty term")
	}, 100)
	if newOffset != 0 || fragments != 0 {
		t.Errorf("offset %d fragments %d, want 0 and 0", newOffset, fragments)
	}
}
