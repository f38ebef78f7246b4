// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"testing"
)

func TestFilesystemPath_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		path    FilesystemPath
		wantErr bool
	}{
		{"absolute module", FilesystemPath("/src/app/index.ts"), false},
		{"relative entry", FilesystemPath("index.ts"), false},
		{"dot path", FilesystemPath("."), false},
		{"path with spaces", FilesystemPath("/src/my app/main.ts"), false},
		{"empty is invalid", FilesystemPath(""), true},
		{"whitespace only is invalid", FilesystemPath("   "), true},
		{"tab only is invalid", FilesystemPath("\t"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.path.Validate()
			if !tt.wantErr {
				if err != nil {
					t.Errorf("FilesystemPath(%q).Validate() returned unexpected error: %v", tt.path, err)
				}
				return
			}
			if err == nil {
				t.Fatalf("FilesystemPath(%q).Validate() returned nil, want error", tt.path)
			}
			if !errors.Is(err, ErrInvalidFilesystemPath) {
				t.Errorf("error should wrap ErrInvalidFilesystemPath, got: %v", err)
			}
			var fpErr *InvalidFilesystemPathError
			if !errors.As(err, &fpErr) {
				t.Errorf("error should be *InvalidFilesystemPathError, got: %T", err)
			}
		})
	}
}

func TestFilesystemPath_Ext(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path FilesystemPath
		want string
	}{
		{"/src/a.ts", ".ts"},
		{"/src/a.d.ts", ".ts"},
		{"/src/component.tsx", ".tsx"},
		{"/src/utils", ""},
		{"/src/config.dev", ".dev"},
	}

	for _, tt := range tests {
		if got := tt.path.Ext(); got != tt.want {
			t.Errorf("FilesystemPath(%q).Ext() = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestFilesystemPath_String(t *testing.T) {
	t.Parallel()
	p := FilesystemPath("/src/index.ts")
	if p.String() != "/src/index.ts" {
		t.Errorf("FilesystemPath.String() = %q, want %q", p.String(), "/src/index.ts")
	}
}
