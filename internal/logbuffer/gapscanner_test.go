package logbuffer

import "testing"

func TestScanForGapNoGap(t *testing.T) {
	appender, header, term, _ := newTestPartition(t, TermMinLength)

	var claim BufferClaim
	for i := 0; i < 3; i++ {
		if ResultOffset(appender.Claim(header, 96, 0, &claim)) <= 0 {
			t.Fatal("claim failed")
		}
		claim.Commit()
	}

	called := false
	got := ScanForGap(term, testInitialTermID, 0, 3*128, func(Gap) { called = true })
	if called {
		t.Error("handler invoked with no gap present")
	}
	if got != 3*128 {
		t.Errorf("returned offset = %d, want %d", got, 3*128)
	}
}

func TestScanForGapReportsGap(t *testing.T) {
	appender, header, term, _ := newTestPartition(t, TermMinLength)

	// Committed frame, a reserved-then-lost hole, then a committed frame
	// written directly at a later offset.
	var claim BufferClaim
	if ResultOffset(appender.Claim(header, 96, 0, &claim)) <= 0 {
		t.Fatal("claim failed")
	}
	claim.Commit()

	header.Write(term, 256, testInitialTermID)
	FrameLengthOrdered(term, 256, 128)

	var gap Gap
	calls := 0
	got := ScanForGap(term, testInitialTermID, 0, 256+128, func(g Gap) {
		gap = g
		calls++
	})

	if calls != 1 {
		t.Fatalf("handler calls = %d, want 1", calls)
	}
	if got != 128 {
		t.Errorf("returned offset = %d, want 128", got)
	}
	if gap.TermID != testInitialTermID || gap.Offset != 128 || gap.Length != 128 {
		t.Errorf("gap = %+v, want {%d 128 128}", gap, testInitialTermID)
	}
}

func TestScanForGapRunsToHWM(t *testing.T) {
	_, _, term, _ := newTestPartition(t, TermMinLength)

	var gap Gap
	ScanForGap(term, testInitialTermID, 0, 512, func(g Gap) { gap = g })
	if gap.Offset != 0 || gap.Length != 512 {
		t.Errorf("gap = %+v, want whole region to HWM", gap)
	}
}
