package variant

import "testing"

func TestFetchRealLittleEndian(t *testing.T) {
	bseq, err := Parse("bx11223344")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	got, err := FetchReal(bseq, FmtI32LE, 0)
	if err != nil {
		t.Fatalf("fetchreal: %v", err)
	}
	if got.AsLongInt() != 0x44332211 {
		t.Errorf("fetchreal(bx11223344, i32le, 0) = %#x, want 0x44332211", got.AsLongInt())
	}
}

func TestSortNumbers(t *testing.T) {
	arr := NewArray(NewNumber(3), NewNumber(2), NewNumber(1))
	sorted, err := Sort(arr, "asc", "auto")
	if err != nil {
		t.Fatalf("sort: %v", err)
	}
	want := []float64{1, 2, 3}
	for i, v := range sorted.Items() {
		if v.AsNumber() != want[i] {
			t.Errorf("sorted[%d] = %v, want %v", i, v.AsNumber(), want[i])
		}
	}
}

func TestSerializeRealEJSON(t *testing.T) {
	bseq, _ := Parse("bx11223344")
	arr := NewArray(NewLongDouble(1), NewLongInt(-2), NewULongInt(2), bseq)
	got, err := Serialize(arr, "real-ejson bseq-base64")
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	want := `[1FL,-2L,2UL,b64ESIzRA==]`
	if got != want {
		t.Errorf("serialize = %q, want %q", got, want)
	}
}

func TestIsEqualStrictType(t *testing.T) {
	if IsEqual(NewNumber(0), NewString("0")) {
		t.Errorf("isequal(0, \"0\") should be false: number and string never compare equal")
	}
}

func TestParseSerializeRoundTrip(t *testing.T) {
	cases := []string{
		`null`, `true`, `false`, `undefined`,
		`{"a":1,"b":"x"}`, `[1,2,3]`, `!(1,"a")`,
	}
	for _, in := range cases {
		v, err := Parse(in)
		if err != nil {
			t.Fatalf("parse(%q): %v", in, err)
		}
		out, err := Serialize(v, "real-ejson")
		if err != nil {
			t.Fatalf("serialize(%q): %v", in, err)
		}
		v2, err := Parse(out)
		if err != nil {
			t.Fatalf("re-parse(%q): %v", out, err)
		}
		if !IsEqual(v, v2) {
			t.Errorf("round trip mismatch for %q: got %q", in, out)
		}
	}
}

func TestObjectSetGetDelete(t *testing.T) {
	obj := NewObject()
	if err := obj.Set("name", NewString("hvml")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got := obj.Get("name"); got == nil || got.AsString() != "hvml" {
		t.Errorf("get(name) = %v, want hvml", got)
	}
	if err := obj.Delete("name"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if obj.Get("name") != nil {
		t.Errorf("get(name) after delete should be nil")
	}
}

func TestSetDedup(t *testing.T) {
	set := NewSet("")
	if err := set.SetAdd(NewNumber(1)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := set.SetAdd(NewNumber(1)); err != nil {
		t.Fatalf("add duplicate: %v", err)
	}
	if set.Len() != 1 {
		t.Errorf("set len = %d, want 1 (duplicate insert must be a no-op)", set.Len())
	}
}

func TestBooleanizeAllZeroString(t *testing.T) {
	if Booleanize(NewString("000")) {
		t.Errorf("booleanize(\"000\") should be false: all-zero digit strings are falsy")
	}
	if !Booleanize(NewString("0a0")) {
		t.Errorf("booleanize(\"0a0\") should be true: not all characters are zero digits")
	}
}
