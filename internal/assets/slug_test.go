package assets_test

import (
	"testing"

	"ekwe/internal/assets"
)

func TestSlug(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"mmirioku", "mmirioku"},
		{"Mmiri Oku", "mmiri-oku"},
		{"ọkụkọ", "okuko"},
		{"ṅụrụ", "nuru"},
		{"  akwụkwọ edo  ", "akwukwo-edo"},
		{"ude--aki", "ude-aki"},
		{"ọnụ/ụzọ", "onu-uzo"},
		{"", "entry"},
		{"***", "entry"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			if got := assets.Slug(tc.in); got != tc.want {
				t.Fatalf("Slug(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
