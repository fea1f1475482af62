package logbuffer

// RotateLog advances the active partition after a trip of termID in
// partition activeIndex. Ordering matters: the next partition's tail is
// installed before the active index is published, so a producer that
// observes the new index always observes the new term's tail. The
// partition two ahead is marked for cleaning so the background cleaner
// finishes well before the cursor wraps back to it.
//
// Election happens on the next partition's raw tail: only the first
// trip-observer wins the CAS and performs the rotation; the rest simply
// re-observe the new active index on retry. Reports whether this caller
// performed the rotation.
func RotateLog(lb *LogBuffers, activeIndex int, termID int32) bool {
	nextIndex := NextPartitionIndex(activeIndex)
	nextNextIndex := NextPartitionIndex(nextIndex)
	nextMeta := lb.MetaDataBuffer(nextIndex)

	expected := RawTailVolatile(nextMeta)
	newTail := PackTail(termID+1, 0)
	if TermIDFromRawTail(expected) == termID+1 {
		return false
	}
	if !CompareAndSetRawTail(nextMeta, expected, newTail) {
		return false
	}

	PutStatusOrdered(nextMeta, PartitionInUse)
	PutStatusOrdered(lb.MetaDataBuffer(nextNextIndex), PartitionNeedsCleaning)
	PutActivePartitionIndexOrdered(lb.LogMetaData(), nextIndex)
	return true
}
