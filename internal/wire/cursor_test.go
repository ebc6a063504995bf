package wire

import "testing"

func TestReadVarint(t *testing.T) {
	tests := []struct {
		in   []byte
		want uint64
	}{
		{[]byte{0x00}, 0},
		{[]byte{0x01}, 1},
		{[]byte{0x7f}, 127},
		{[]byte{0x80, 0x01}, 128},
		{[]byte{0xac, 0x02}, 300},
		{[]byte{0xff, 0xff, 0xff, 0xff, 0x0f}, 0xffffffff},
	}
	for _, tt := range tests {
		c := NewCursor(tt.in)
		got, err := c.ReadVarint()
		if err != nil {
			t.Fatalf("ReadVarint(%v): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ReadVarint(%v) = %d, want %d", tt.in, got, tt.want)
		}
		if !c.Exhausted() {
			t.Errorf("ReadVarint(%v) left %d bytes unread", tt.in, c.Remaining())
		}
	}
}

func TestReadVarintTruncated(t *testing.T) {
	c := NewCursor([]byte{0x80})
	if _, err := c.ReadVarint(); err == nil {
		t.Fatal("expected error for truncated varint")
	}
}

func TestVarintRoundTrip(t *testing.T) {
	vals := []uint64{0, 1, 127, 128, 300, 1 << 20, 1 << 40, ^uint64(0)}
	for _, v := range vals {
		w := NewWriter(0)
		w.WriteVarint(v)
		c := NewCursor(w.Bytes())
		got, err := c.ReadVarint()
		if err != nil {
			t.Fatalf("roundtrip %d: %v", v, err)
		}
		if got != v {
			t.Errorf("roundtrip %d got %d", v, got)
		}
	}
}

func TestZigZag64RoundTrip(t *testing.T) {
	vals := []int64{0, 1, -1, 127, -128, 1 << 40, -(1 << 40)}
	for _, v := range vals {
		if got := ZigZagDecode64(ZigZagEncode64(v)); got != v {
			t.Errorf("zigzag64 roundtrip(%d) = %d", v, got)
		}
	}
}

func TestZigZag32RoundTrip(t *testing.T) {
	vals := []int32{0, 1, -1, 127, -128, 1 << 20, -(1 << 20)}
	for _, v := range vals {
		if got := ZigZagDecode32(ZigZagEncode32(v)); got != v {
			t.Errorf("zigzag32 roundtrip(%d) = %d", v, got)
		}
	}
}

func TestReadBytesEOF(t *testing.T) {
	c := NewCursor([]byte{1, 2, 3})
	if _, err := c.ReadBytes(4); err == nil {
		t.Fatal("expected EOF reading past end")
	}
	b, err := c.ReadBytes(3)
	if err != nil || len(b) != 3 {
		t.Fatalf("ReadBytes(3) = %v, %v", b, err)
	}
}

func TestBigEndianRoundTrip(t *testing.T) {
	w := NewWriter(0)
	w.WriteU16BE(0xbeef)
	w.WriteU32BE(0xdeadbeef)
	w.WriteU64BE(0xfaceb00cdeadbeef)
	w.WriteF32BE(0.42)
	w.WriteF64BE(0.42)

	c := NewCursor(w.Bytes())
	if v, _ := c.ReadU16BE(); v != 0xbeef {
		t.Errorf("u16 = %x", v)
	}
	if v, _ := c.ReadU32BE(); v != 0xdeadbeef {
		t.Errorf("u32 = %x", v)
	}
	if v, _ := c.ReadU64BE(); v != 0xfaceb00cdeadbeef {
		t.Errorf("u64 = %x", v)
	}
	if v, _ := c.ReadF32BE(); v != float32(0.42) {
		t.Errorf("f32 = %v", v)
	}
	if v, _ := c.ReadF64BE(); v != 0.42 {
		t.Errorf("f64 = %v", v)
	}
}
