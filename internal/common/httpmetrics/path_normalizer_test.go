package httpmetrics

import "testing"

func TestNormalizePath(t *testing.T) {
	testCases := []struct {
		in   string
		want string
	}{
		{"", "/"},
		{"/", "/"},
		{"/explore", "/explore"},
		{"/notepad/edit/42", "/notepad/edit/{param}"},
		{"/notepad/edit/550e8400-e29b-41d4-a716-446655440000", "/notepad/edit/{id}"},
		{"/notepad/delete/550e8400-e29b-41d4-a716-446655440000", "/notepad/delete/{id}"},
		{"/signup/", "/signup/"},
	}

	for _, tc := range testCases {
		if got := NormalizePath(tc.in); got != tc.want {
			t.Errorf("NormalizePath(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
