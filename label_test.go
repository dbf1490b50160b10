package udf

import "testing"

// buildDStringField encodes s as an 8-bit dchars dstring of the given field
// size, with the used-length trailer byte set per ostastring.DecodeDString.
func buildDStringField(size int, s string) []byte {
	buf := make([]byte, size)
	enc := encodeName(s)
	copy(buf, enc)
	buf[size-1] = byte(len(enc))
	return buf
}

func TestUUID_FallsBackToRawBytesWhenNotCleanHex(t *testing.T) {
	var v Volume
	copy(v.PVD.VolumeSetIdentifier[:], buildDStringField(len(v.PVD.VolumeSetIdentifier), "ABCDEF0123456789"))

	got, ok := v.UUID()
	if !ok {
		t.Fatal("UUID: ok=false, want true")
	}
	// Leading char 'A' isn't lowercase hex, so n < 16 and UUID hex-encodes
	// the first 8 raw field bytes (compression id 8 + "ABCDEF0").
	if want := "0841424344454630"; got != want {
		t.Fatalf("UUID=%q want %q", got, want)
	}
}

func TestUUID_TooShortHasNoUUID(t *testing.T) {
	var v Volume
	copy(v.PVD.VolumeSetIdentifier[:], buildDStringField(len(v.PVD.VolumeSetIdentifier), "AB"))

	if _, ok := v.UUID(); ok {
		t.Fatal("UUID: ok=true, want false for a decoded identifier shorter than 8 characters")
	}
}
