package object

import "testing"

func TestReallocateTracksBytesInUse(t *testing.T) {
	a := NewArena()
	buf := a.Reallocate(nil, 0, 16)
	if len(buf) != 16 {
		t.Fatalf("len(buf) = %d, want 16", len(buf))
	}
	if a.BytesInUse() != 16 {
		t.Errorf("BytesInUse() = %d, want 16", a.BytesInUse())
	}

	buf = a.Reallocate(buf, 16, 0)
	if buf != nil {
		t.Errorf("Reallocate(.., 0) = %v, want nil", buf)
	}
	if a.BytesInUse() != 0 {
		t.Errorf("BytesInUse() = %d, want 0", a.BytesInUse())
	}
}

func TestGrowCapacityDoublesFromEight(t *testing.T) {
	tests := []struct{ old, want int }{
		{0, 8},
		{4, 8},
		{8, 16},
		{16, 32},
	}
	for _, tt := range tests {
		if got := GrowCapacity(tt.old); got != tt.want {
			t.Errorf("GrowCapacity(%d) = %d, want %d", tt.old, got, tt.want)
		}
	}
}

func TestArenaTracksAllocatedObjects(t *testing.T) {
	a := NewArena()
	s := a.NewString("hi")
	fn := a.NewFunction(NewString("f"), 0)

	objs := a.Objects()
	if len(objs) != 2 || objs[0] != Object(s) || objs[1] != Object(fn) {
		t.Errorf("Objects() = %v, want [%v %v]", objs, s, fn)
	}
}

func TestAdoptStringChargesBytesAndTracks(t *testing.T) {
	a := NewArena()
	s := NewString("hello") // built outside the arena, as runtime + concatenation does
	adopted := a.AdoptString(s)
	if adopted != s {
		t.Fatalf("AdoptString() = %v, want the same *String back", adopted)
	}
	if a.BytesInUse() != int64(len("hello")) {
		t.Errorf("BytesInUse() = %d, want %d", a.BytesInUse(), len("hello"))
	}
	objs := a.Objects()
	if len(objs) != 1 || objs[0] != Object(s) {
		t.Errorf("Objects() = %v, want [%v]", objs, s)
	}
}

func TestTeardownResetsArena(t *testing.T) {
	a := NewArena()
	a.NewString("hi")
	a.Teardown()
	if a.BytesInUse() != 0 || len(a.Objects()) != 0 {
		t.Errorf("Teardown() left state: bytesInUse=%d objects=%d", a.BytesInUse(), len(a.Objects()))
	}
}
