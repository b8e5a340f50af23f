package layout

import "testing"

func TestDescriptorValid(t *testing.T) {
	tests := []struct {
		name string
		d    Descriptor
		want bool
	}{
		{"blank", Descriptor{LengthBytes: NoImageLength}, false},
		{"oversize", Descriptor{LengthBytes: AppMaxSize + 1}, false},
		{"max size", Descriptor{LengthBytes: AppMaxSize}, true},
		{"small image", Descriptor{LengthBytes: 4, ExpectedCRC: 0xDEADBEEF}, true},
		{"zero length", Descriptor{LengthBytes: 0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.d.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDescriptorRoundTrip(t *testing.T) {
	d := Descriptor{LengthBytes: 4, ExpectedCRC: 0xDEADBEEF}
	raw := EncodeDescriptor(d)
	if len(raw) != 8 {
		t.Fatalf("EncodeDescriptor len = %d, want 8", len(raw))
	}
	// Big-endian on-flash order.
	want := []byte{0x00, 0x00, 0x00, 0x04, 0xDE, 0xAD, 0xBE, 0xEF}
	for i := range want {
		if raw[i] != want[i] {
			t.Fatalf("raw[%d] = 0x%02X, want 0x%02X", i, raw[i], want[i])
		}
	}

	got := DecodeDescriptor(raw)
	if got != d {
		t.Errorf("DecodeDescriptor(EncodeDescriptor(d)) = %+v, want %+v", got, d)
	}
}

func TestSectorMapCoversAppAndMeta(t *testing.T) {
	app := SectorMap[AppSector]
	if app.Base != AppStart {
		t.Errorf("AppSector base = 0x%X, want 0x%X", app.Base, AppStart)
	}
	if app.Size < AppMaxSize {
		t.Errorf("AppSector size %d too small for AppMaxSize %d", app.Size, AppMaxSize)
	}

	meta := SectorMap[MetaSector]
	if meta.Base != MetaStart {
		t.Errorf("MetaSector base = 0x%X, want 0x%X", meta.Base, MetaStart)
	}
}
