package logbuffer

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestOpenCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.log")

	lb, err := Open(path, TermMinLength)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer lb.Close()

	if !lb.Fresh() {
		t.Error("newly created log should be fresh")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if info.Size() != LogLength(TermMinLength) {
		t.Errorf("file size = %d, want %d", info.Size(), LogLength(TermMinLength))
	}

	if got := lb.TermLength(); got != TermMinLength {
		t.Errorf("term length = %d, want %d", got, TermMinLength)
	}
	for i := 0; i < PartitionCount; i++ {
		if got := lb.TermBuffer(i).Capacity(); got != TermMinLength {
			t.Errorf("term %d capacity = %d, want %d", i, got, TermMinLength)
		}
		if got := lb.MetaDataBuffer(i).Capacity(); got != TermMetaDataLength() {
			t.Errorf("meta %d capacity = %d, want %d", i, got, TermMetaDataLength())
		}
	}
}

func TestOpenInitializesMetadata(t *testing.T) {
	lb, err := open(filepath.Join(t.TempDir(), "init.log"), TermMinLength, 7)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer lb.Close()

	logMeta := lb.LogMetaData()
	if got := ActivePartitionIndex(logMeta); got != 0 {
		t.Errorf("active partition = %d, want 0", got)
	}
	if got := InitialTermID(logMeta); got != 7 {
		t.Errorf("initial term id = %d, want 7", got)
	}

	tail := RawTailVolatile(lb.MetaDataBuffer(0))
	if got := TermIDFromRawTail(tail); got != 7 {
		t.Errorf("partition 0 term id = %d, want 7", got)
	}
	if got := TermOffsetFromRawTail(tail); got != 0 {
		t.Errorf("partition 0 tail offset = %d, want 0", got)
	}

	if got := StatusVolatile(lb.MetaDataBuffer(0)); got != PartitionInUse {
		t.Errorf("partition 0 status = %d, want in-use", got)
	}
	for i := 1; i < PartitionCount; i++ {
		if got := StatusVolatile(lb.MetaDataBuffer(i)); got != PartitionClean {
			t.Errorf("partition %d status = %d, want clean", i, got)
		}
	}
}

func TestOpenExistingPreservesState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.log")

	lb, err := open(path, TermMinLength, 7)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	PutRawTail(lb.MetaDataBuffer(0), PackTail(7, 4096))
	if err := lb.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	reopened, err := Open(path, TermMinLength)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	if reopened.Fresh() {
		t.Error("reopened log should not be fresh")
	}
	if got := InitialTermID(reopened.LogMetaData()); got != 7 {
		t.Errorf("initial term id = %d, want 7", got)
	}
	if got := TermOffsetFromRawTail(RawTailVolatile(reopened.MetaDataBuffer(0))); got != 4096 {
		t.Errorf("tail offset = %d, want 4096", got)
	}
}

func TestOpenRejectsMismatchedTermLength(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mismatch.log")

	lb, err := Open(path, TermMinLength)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	lb.Close()

	if _, err := Open(path, TermMinLength*2); err == nil {
		t.Fatal("opening with a different term length should fail")
	} else if !errors.Is(err, ErrInvalidTermLength) {
		t.Errorf("error %v should wrap ErrInvalidTermLength", err)
	}
}

func TestOpenRejectsInvalidTermLength(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invalid.log")

	for _, termLength := range []int32{0, 1000, TermMinLength - 1} {
		if _, err := Open(path, termLength); !errors.Is(err, ErrInvalidTermLength) {
			t.Errorf("Open with term length %d: error = %v, want ErrInvalidTermLength", termLength, err)
		}
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("failed open should not leave a file behind")
	}
}

func TestCleanPartition(t *testing.T) {
	lb := newTestLog(t)

	term := lb.TermBuffer(1)
	term.SetMemory(0, 1024, 0xAA)
	PutStatusOrdered(lb.MetaDataBuffer(1), PartitionNeedsCleaning)

	lb.CleanPartition(1)

	if got := StatusVolatile(lb.MetaDataBuffer(1)); got != PartitionClean {
		t.Errorf("status = %d, want clean", got)
	}
	data := term.Bytes(0, 1024)
	for i, by := range data {
		if by != 0 {
			t.Fatalf("byte %d = %#x after cleaning, want 0", i, by)
		}
	}
}
