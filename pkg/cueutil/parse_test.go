// SPDX-License-Identifier: MPL-2.0

package cueutil_test

import (
	"strings"
	"testing"

	"github.com/invowk/minipack/pkg/cueutil"
)

const testSchema = `
#Settings: close({
	name?:  string & !=""
	level?: int & >=1 & <=3
	mode?:  "fast" | "safe"
})
`

type settings struct {
	Name  string `json:"name"`
	Level int    `json:"level"`
	Mode  string `json:"mode"`
}

func TestParseAndDecode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		opts    []cueutil.Option
		want    settings
		wantErr string
	}{
		{
			name: "valid document",
			data: "name: \"app\"\nlevel: 2\nmode: \"safe\"\n",
			want: settings{Name: "app", Level: 2, Mode: "safe"},
		},
		{
			name: "optional fields may be omitted",
			data: "level: 1\n",
			want: settings{Level: 1},
		},
		{
			name:    "out of bound value names the field",
			data:    "level: 9\n",
			opts:    []cueutil.Option{cueutil.WithFilename("settings.cue")},
			wantErr: "settings.cue: level",
		},
		{
			name:    "unknown field is rejected",
			data:    "colour: \"red\"\n",
			wantErr: "colour",
		},
		{
			name:    "syntax error",
			data:    "name: \n",
			wantErr: "<input>",
		},
		{
			name:    "size limit",
			data:    "name: \"abcdefghij\"\n",
			opts:    []cueutil.Option{cueutil.WithMaxFileSize(4), cueutil.WithFilename("big.cue")},
			wantErr: "big.cue: file size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res, err := cueutil.ParseAndDecode[settings]([]byte(testSchema), []byte(tt.data), "#Settings", tt.opts...)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error = %v, want it to contain %q", err, tt.wantErr)
				}
				if strings.Contains(err.Error(), "#Settings") {
					t.Errorf("error %q names the schema definition", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if *res.Value != tt.want {
				t.Errorf("decoded %+v, want %+v", *res.Value, tt.want)
			}
			if !res.Unified.Exists() {
				t.Error("Unified value should exist")
			}
		})
	}
}

func TestParseAndDecode_MissingDefinition(t *testing.T) {
	t.Parallel()

	_, err := cueutil.ParseAndDecode[settings]([]byte(testSchema), []byte("{}"), "#Nope")
	if err == nil || !strings.Contains(err.Error(), "#Nope") {
		t.Errorf("error = %v, want missing definition", err)
	}
}
