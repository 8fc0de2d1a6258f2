package boot

import "testing"

func TestLoadRejectsWrongLength(t *testing.T) {
	_, err := Load(make([]byte, 100))
	if err == nil {
		t.Fatal("expected an error for a non-256-byte image")
	}
}

func TestLoadRoundTripsBytes(t *testing.T) {
	img := make([]byte, Size)
	img[0] = 0x31
	img[Size-1] = 0x50
	r, err := Load(img)
	if err != nil {
		t.Fatal(err)
	}
	got := r.Bytes()
	if got[0] != 0x31 || got[Size-1] != 0x50 {
		t.Errorf("Bytes() did not round-trip the loaded image")
	}
}

func TestKnownVariantReportsUnknownForUnrecognizedImage(t *testing.T) {
	img := make([]byte, Size)
	r, err := Load(img)
	if err != nil {
		t.Fatal(err)
	}
	if v := r.KnownVariant(); v != "unknown" {
		t.Errorf("KnownVariant() = %q, want %q for an all-zero image", v, "unknown")
	}
}
