package models

import (
	"errors"
	"testing"
)

func TestImage_DisplayURI(t *testing.T) {
	t.Parallel()

	// No variants at all: always the base address
	bare := Image{ID: "1", URI: "a"}
	for _, r := range Resolutions {
		if u := bare.DisplayURI(r); u != "a" {
			t.Errorf("%s: Expected %q got %q", r, "a", u)
		}
	}

	sut := Image{ID: "2", URI: "base", Resolutions: map[Resolution]string{
		R250:     "small",
		R750:     "large",
		"1080px": "huge", // Not selectable, but must not break anything
	}}
	cases := []struct {
		r        Resolution
		expected string
	}{
		{R250, "small"},
		{R500, "base"}, // Missing variant falls back
		{R750, "large"},
		{"1080px", "huge"},
		{"", "base"},
	}
	for _, tc := range cases {
		if u := sut.DisplayURI(tc.r); u != tc.expected {
			t.Errorf("%q: Expected %q got %q", tc.r, tc.expected, u)
		}
	}

	// An empty variant string shouldn't be used
	empty := Image{ID: "3", URI: "base", Resolutions: map[Resolution]string{R500: ""}}
	if u := empty.DisplayURI(R500); u != "base" {
		t.Errorf("Expected %q got %q", "base", u)
	}
}

func TestImage_HasVariant(t *testing.T) {
	t.Parallel()
	sut := Image{ID: "1", URI: "base", Resolutions: map[Resolution]string{R250: "small", R500: ""}}
	cases := map[Resolution]bool{R250: true, R500: false, R750: false}
	for r, expected := range cases {
		if got := sut.HasVariant(r); got != expected {
			t.Errorf("%s: Expected %t got %t", r, expected, got)
		}
		// Whatever HasVariant says, DisplayURI has to agree with it
		if got := sut.DisplayURI(r) != sut.URI; got != expected {
			t.Errorf("%s: Expected the variant %t got %t", r, expected, got)
		}
	}
}

func TestWireImage_Image(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		w    WireImage
		id   string
		err  bool
	}{
		{"id only", WireImage{ID: "abc", URI: "u"}, "abc", false},
		{"_id only", WireImage{MongoID: "def", URI: "u"}, "def", false},
		{"both", WireImage{ID: "abc", MongoID: "def", URI: "u"}, "abc", false},
		{"neither", WireImage{URI: "u"}, "", true},
		{"blank", WireImage{ID: "  ", MongoID: "\t", URI: "u"}, "", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			img, err := tc.w.Image()
			if (err != nil) != tc.err {
				t.Fatalf("err: %v", err)
			}
			if tc.err && !errors.Is(err, ErrMissingID) {
				t.Errorf("Expected ErrMissingID got %v", err)
			}
			if img.ID != tc.id {
				t.Errorf("Expected %q got %q", tc.id, img.ID)
			}
		})
	}
}

func TestIngest(t *testing.T) {
	t.Parallel()

	b := []byte(`[
		{"id": "1", "uri": "a"},
		{"_id": "2", "uri": "b", "resolutions": {"250px": "b-250", "500px": "b-500"}},
		{"uri": "orphan"}
	]`)
	images, rejected, err := Ingest(b)
	if err != nil {
		t.Fatal(err)
	}
	if rejected != 1 {
		t.Errorf("Expected %d rejected got %d", 1, rejected)
	}
	if len(images) != 2 {
		t.Fatalf("Expected %d images got %d", 2, len(images))
	}
	if images[0].ID != "1" || images[0].URI != "a" || images[0].Resolutions != nil {
		t.Errorf("Unexpected first image: %+v", images[0])
	}
	if images[1].ID != "2" || images[1].DisplayURI(R250) != "b-250" || images[1].DisplayURI(R750) != "b" {
		t.Errorf("Unexpected second image: %+v", images[1])
	}

	images, rejected, err = Ingest([]byte("null"))
	if err != nil || rejected != 0 || len(images) != 0 {
		t.Errorf("Expected empty result for null; got %v, %d, %v", images, rejected, err)
	}

	if _, _, err := Ingest([]byte(`{"id": "1"}`)); err == nil {
		t.Error("Expected error for a non-array body")
	}
}

func TestImage_Wire(t *testing.T) {
	t.Parallel()
	sut := Image{ID: "x", URI: "u", Resolutions: map[Resolution]string{R500: "m"}}
	w := sut.Wire()
	if w.ID != "x" || w.MongoID != "" || w.Resolutions["500px"] != "m" {
		t.Errorf("Unexpected wire record: %+v", w)
	}
	back, err := w.Image()
	if err != nil {
		t.Fatal(err)
	}
	if back.DisplayURI(R500) != "m" {
		t.Errorf("Expected %q got %q", "m", back.DisplayURI(R500))
	}
}

func TestResolution(t *testing.T) {
	t.Parallel()

	for _, r := range Resolutions {
		p, err := ParseResolution(r.String())
		if err != nil || p != r {
			t.Errorf("Expected %s got %s (%v)", r, p, err)
		}
	}
	if p, err := ParseResolution(" 750PX "); err != nil || p != R750 {
		t.Errorf("Expected %s got %s (%v)", R750, p, err)
	}
	if _, err := ParseResolution("1000px"); err == nil {
		t.Error("Expected error but got nil")
	}

	if R250.Next() != R500 || R500.Next() != R750 || R750.Next() != R250 {
		t.Error("Next() does not cycle in display order")
	}
	if R250.Prev() != R750 || R750.Prev() != R500 {
		t.Error("Prev() does not cycle in reverse order")
	}
	if Resolution("bogus").Next() != R250 {
		t.Errorf("Expected unknown label to go to %s", R250)
	}
	if R500.Width() != 500 || Resolution("x").Width() != 0 {
		t.Error("Width() returned an unexpected value")
	}
}
