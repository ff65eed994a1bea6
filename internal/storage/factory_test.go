package storage

import (
	"path/filepath"
	"testing"
)

func TestNewStore(t *testing.T) {
	cases := []struct {
		kind    string
		path    string
		wantErr bool
	}{
		{kind: "", wantErr: false},
		{kind: "memory", wantErr: false},
		{kind: "sqlite", path: filepath.Join(t.TempDir(), "s.db"), wantErr: false},
		{kind: "sqlite", path: "", wantErr: true},
		{kind: "unknown", wantErr: true},
	}
	for _, tc := range cases {
		store, err := NewStore(tc.kind, tc.path)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("kind=%q path=%q: expected error", tc.kind, tc.path)
			}
			continue
		}
		if err != nil || store == nil {
			t.Fatalf("kind=%q: unexpected error %v", tc.kind, err)
		}
		if err := CloseIfSupported(store); err != nil {
			t.Fatalf("kind=%q: close: %v", tc.kind, err)
		}
	}
}
