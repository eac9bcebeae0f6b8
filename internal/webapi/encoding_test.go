package webapi

import "testing"

func TestBtoa(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", "", false},
		{"hello", "aGVsbG8=", false},
		{"\u00ff\u00fe", "//4=", false},
		{"snow \u2603", "", true},
	}
	for _, tt := range tests {
		got, err := btoa(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("btoa(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("btoa(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("btoa(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAtob(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"aGVsbG8=", "hello", false},
		{"aGVsbG8", "hello", false},
		{"aGVs\nbG8=", "hello", false},
		{"//4=", "\u00ff\u00fe", false},
		{"a", "", true},
		{"!!!!", "", true},
	}
	for _, tt := range tests {
		got, err := atob(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("atob(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("atob(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("atob(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
