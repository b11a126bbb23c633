package bytestring

import "testing"

func TestEqualsCaseSymmetricReflexive(t *testing.T) {
	a := FromString("Alpha")
	b := FromString("ALPHA")

	if !a.EqualsCase(b) || !b.EqualsCase(a) {
		t.Errorf("expected symmetric case-insensitive equality")
	}
	if !a.EqualsCase(a) {
		t.Errorf("expected reflexive equality")
	}
	if a.EqualsCase(FromString("Beta")) {
		t.Errorf("expected mismatch for different strings")
	}
}

func TestContainsCaseEmptyAlwaysMatches(t *testing.T) {
	s := FromString("gamma")
	if !s.ContainsCase(FromString("")) {
		t.Errorf("expected empty needle to always match")
	}
}

func TestContainsCaseWindow(t *testing.T) {
	s := FromString("Alphabet")
	if !s.ContainsCase(FromString("HAB")) {
		t.Errorf("expected case-insensitive substring match")
	}
	if s.ContainsCase(FromString("zzz")) {
		t.Errorf("expected no match for absent substring")
	}
}

func TestFromTableNoCopy(t *testing.T) {
	buf := make([]byte, 16)
	buf[0] = 5 // length lo byte
	buf[1] = 0 // length hi byte
	copy(buf[2:], []byte("Hello"))

	v := FromTable(buf, 0)
	if v.Len() != 5 {
		t.Fatalf("expected length 5, got %d", v.Len())
	}

	buf[2] = 'X' // mutate underlying bytes
	if v.Bytes()[0] != 'X' {
		t.Errorf("expected view to alias the table buffer, saw %q", v.Bytes())
	}
}

func TestCopyIntoThenReadBack(t *testing.T) {
	dst := make([]byte, 16)
	src := FromString("beta")
	src.CopyInto(dst, 0, 16)

	got := FromTable(dst, 0)
	if !got.EqualsCase(src) {
		t.Errorf("expected round trip through CopyInto/FromTable")
	}
}
