package section

import "testing"

func TestBaseAddresses(t *testing.T) {
	tests := []struct {
		name Name
		want uint16
	}{
		{Text, 0x0020},
		{Data, 0x8000},
		{BSS, 0x9000},
	}
	for _, tt := range tests {
		if got := Base(tt.name); got != tt.want {
			t.Fatalf("Base(%s) = 0x%04X, want 0x%04X", tt.name, got, tt.want)
		}
	}
}

func TestAppendWordLittleEndian(t *testing.T) {
	m := New()
	m.AppendWord(Data, 0x1234)
	buf := m.Bytes(Data)
	if len(buf) != 2 || buf[0] != 0x34 || buf[1] != 0x12 {
		t.Fatalf("buffer = % X, want 34 12", buf)
	}
}

func TestSectionsIndependent(t *testing.T) {
	m := New()
	m.Append(Text, 1, 2, 3)
	m.Append(Data, 4, 5)
	if m.Len(Text) != 3 {
		t.Fatalf("Len(Text) = %d, want 3", m.Len(Text))
	}
	if m.Len(Data) != 2 {
		t.Fatalf("Len(Data) = %d, want 2", m.Len(Data))
	}
	if m.Len(BSS) != 0 {
		t.Fatalf("Len(BSS) = %d, want 0", m.Len(BSS))
	}
}

func TestSpaceBytesAreZero(t *testing.T) {
	m := New()
	m.Append(BSS, make([]byte, 28)...)
	buf := m.Bytes(BSS)
	if len(buf) != 28 {
		t.Fatalf("len = %d, want 28", len(buf))
	}
	for i, b := range buf {
		if b != 0 {
			t.Fatalf("buf[%d] = %d, want 0", i, b)
		}
	}
}
