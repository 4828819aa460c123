package keyvalue

import "testing"

func TestValidator_CleanKeyValueLines(t *testing.T) {
	v := Seed()
	if err := v.TryProcessChunk([]byte("user: alice\npass: s3cret\nuser: bob\npass: hunter2\n")); err != nil {
		t.Fatalf("TryProcessChunk: %v", err)
	}
	d, ok := v.Finalize()
	if !ok {
		t.Fatal("expected a clean key:value stream to survive")
	}
	if d.KeyValue.TotalRows != 4 {
		t.Fatalf("expected 4 total rows, got %d", d.KeyValue.TotalRows)
	}
}

func TestValidator_MinorityBrokenRowsStillSurvive(t *testing.T) {
	v := Seed()
	// 3 clean rows, 1 broken (3 columns) row: broken*2 (2) < total (4).
	if err := v.TryProcessChunk([]byte("a: 1\nb: 2\nc: x: y\nd: 3\n")); err != nil {
		t.Fatalf("TryProcessChunk: %v", err)
	}
	if _, ok := v.Finalize(); !ok {
		t.Fatal("expected the dialect to survive with a minority of broken rows")
	}
}

func TestValidator_MajorityBrokenRowsFailFinalize(t *testing.T) {
	v := Seed()
	// 1 clean row, 2 broken rows: broken*2 (4) >= total (3).
	if err := v.TryProcessChunk([]byte("a: 1\nb: x: y\nc: x: y\n")); err != nil {
		t.Fatalf("TryProcessChunk: %v", err)
	}
	if _, ok := v.Finalize(); ok {
		t.Fatal("expected a majority-broken stream to fail finalize")
	}
}

func TestValidator_RowWithNoSeparatorIsFatal(t *testing.T) {
	v := Seed()
	err := v.TryProcessChunk([]byte("nocolonhere\n"))
	if err == nil {
		t.Fatal("expected a row with zero separators to evict the validator")
	}
}

func TestValidator_CellCapNotResetAcrossRows(t *testing.T) {
	v := Seed()
	// The cell byte counter only resets on a field separator, never on a
	// row's newline: a row's long value carries its byte count straight
	// into the next row's key, so two individually-fine segments can sum
	// past the 512-byte cap before the next separator ever resets it.
	value := make([]byte, 480)
	for i := range value {
		value[i] = 'x'
	}
	row1 := "k: " + string(value) + "\n"
	row2 := "longkeylongkeylongkeylongkeylongkeylongkey: v\n"

	err := v.TryProcessChunk([]byte(row1 + row2))
	if err == nil {
		t.Fatal("expected the carried-over cell counter to trip the 512-byte cap inside row2's key")
	}
}

func TestValidator_AllBrokenAbortsEarly(t *testing.T) {
	v := Seed()
	row := []byte("a: b: c\n")
	var input []byte
	for i := 0; i < allBrokenAbortThreshold+1; i++ {
		input = append(input, row...)
	}
	err := v.TryProcessChunk(input)
	if err == nil {
		t.Fatal("expected an all-broken stream past the threshold to abort")
	}
}
