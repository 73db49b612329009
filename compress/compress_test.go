package compress

import (
	"bytes"
	stdzlib "compress/zlib"
	"io"
	"testing"
	"testing/quick"
)

func TestRoundTrip(t *testing.T) {
	f := func(inp []byte) bool {
		c, err := Zlib{}.Compress(inp)
		if err != nil {
			t.Fatal(err)
		}
		got, err := Zlib{}.Uncompress(c)
		if err != nil {
			t.Fatal(err)
		}
		return bytes.Equal(got, inp)
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestDeterministic(t *testing.T) {
	inp := []byte("blob 4\x00test")
	c1, err := Zlib{}.Compress(inp)
	if err != nil {
		t.Fatal(err)
	}
	c2, err := Zlib{}.Compress(inp)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(c1, c2) {
		t.Errorf("compressing the same input twice gave %x and %x", c1, c2)
	}
}

// Stored objects must be readable by other zlib implementations.
func TestStdlibInterop(t *testing.T) {
	inp := bytes.Repeat([]byte("tree 0\x00"), 100)
	c, err := Zlib{Level: 9}.Compress(inp)
	if err != nil {
		t.Fatal(err)
	}
	r, err := stdzlib.NewReader(bytes.NewReader(c))
	if err != nil {
		t.Fatal(err)
	}
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, inp) {
		t.Error("mismatch")
	}
}

func TestCorrupt(t *testing.T) {
	if _, err := (Zlib{}).Uncompress([]byte("not zlib at all")); err == nil {
		t.Error("expected an error uncompressing garbage")
	}
}
