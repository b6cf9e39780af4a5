package yamlutil_test

// Notes:
// - Marshal's error branch is not tested: goccy only fails on channels and
//   funcs, which no config type contains.
// - TestInputSizeLimit mutates MaxInputSize and therefore is not parallel.

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/alnah/go-pdfit/internal/yamlutil"
)

type testConfig struct {
	Quality string   `yaml:"quality"`
	Workers int      `yaml:"workers"`
	Browser bool     `yaml:"browser"`
	Inputs  []string `yaml:"inputs,omitempty"`
}

// ---------------------------------------------------------------------------
// Decoding
// ---------------------------------------------------------------------------

func TestUnmarshal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    []byte
		dest    any
		want    *testConfig
		wantErr error
		wantMsg string
	}{
		{
			name: "valid YAML",
			data: []byte("quality: high\nworkers: 4\nbrowser: true"),
			dest: &testConfig{},
			want: &testConfig{Quality: "high", Workers: 4, Browser: true},
		},
		{
			name: "unknown fields ignored",
			data: []byte("quality: low\ncolour: red"),
			dest: &testConfig{},
			want: &testConfig{Quality: "low"},
		},
		{
			name: "unicode content",
			data: []byte("quality: 日本語"),
			dest: &testConfig{},
			want: &testConfig{Quality: "日本語"},
		},
		{name: "nil data", data: nil, dest: &testConfig{}, wantErr: yamlutil.ErrNilData},
		{name: "empty data", data: []byte{}, dest: &testConfig{}, wantErr: yamlutil.ErrNilData},
		{name: "nil destination", data: []byte("quality: low"), dest: nil, wantErr: yamlutil.ErrNilDestination},
		{name: "invalid syntax", data: []byte("quality: [unclosed"), dest: &testConfig{}, wantMsg: "yamlutil:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := yamlutil.Unmarshal(tt.data, tt.dest)
			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
			case tt.wantMsg != "":
				if err == nil || !strings.HasPrefix(err.Error(), tt.wantMsg) {
					t.Fatalf("error = %v, want prefix %q", err, tt.wantMsg)
				}
			default:
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if diff := cmp.Diff(tt.want, tt.dest); diff != "" {
					t.Errorf("decoded mismatch (-want +got):\n%s", diff)
				}
			}
		})
	}
}

func TestUnmarshalStrict(t *testing.T) {
	t.Parallel()

	t.Run("known fields", func(t *testing.T) {
		t.Parallel()

		var got testConfig
		if err := yamlutil.UnmarshalStrict([]byte("quality: medium\nworkers: 2"), &got); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if diff := cmp.Diff(testConfig{Quality: "medium", Workers: 2}, got); diff != "" {
			t.Errorf("decoded mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("unknown field rejected with source line", func(t *testing.T) {
		t.Parallel()

		err := yamlutil.UnmarshalStrict([]byte("quality: low\nqualty: high"), &testConfig{})
		if err == nil {
			t.Fatal("expected error for unknown field")
		}
		if !strings.Contains(err.Error(), "qualty") {
			t.Errorf("error %q does not name the offending key", err)
		}
	})

	t.Run("nil destination", func(t *testing.T) {
		t.Parallel()

		if err := yamlutil.UnmarshalStrict([]byte("quality: low"), nil); !errors.Is(err, yamlutil.ErrNilDestination) {
			t.Errorf("error = %v, want ErrNilDestination", err)
		}
	})
}

func TestReadStrict(t *testing.T) {
	t.Parallel()

	var got testConfig
	if err := yamlutil.ReadStrict(strings.NewReader("workers: 3\n"), &got); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Workers != 3 {
		t.Errorf("Workers = %d, want 3", got.Workers)
	}

	if err := yamlutil.ReadStrict(strings.NewReader(""), &got); !errors.Is(err, yamlutil.ErrNilData) {
		t.Errorf("empty reader error = %v, want ErrNilData", err)
	}
}

// ---------------------------------------------------------------------------
// Encoding
// ---------------------------------------------------------------------------

func TestMarshal(t *testing.T) {
	t.Parallel()

	data, err := yamlutil.Marshal(&testConfig{Quality: "high", Workers: 5, Inputs: []string{"a.pdf", "b.pdf"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s := string(data)
	for _, want := range []string{"quality: high", "workers: 5", "browser: false", "  - a.pdf"} {
		if !strings.Contains(s, want) {
			t.Errorf("output missing %q, got:\n%s", want, s)
		}
	}

	var back testConfig
	if err := yamlutil.UnmarshalStrict(data, &back); err != nil {
		t.Fatalf("output does not decode strictly: %v", err)
	}
}

// ---------------------------------------------------------------------------
// Size limit
// ---------------------------------------------------------------------------

func TestInputSizeLimit(t *testing.T) {
	originalMax := yamlutil.MaxInputSize
	t.Cleanup(func() { yamlutil.MaxInputSize = originalMax })
	yamlutil.MaxInputSize = 100

	atLimit := make([]byte, 100)
	copy(atLimit, "workers: 1")
	if err := yamlutil.Unmarshal(atLimit, &testConfig{}); err != nil {
		t.Errorf("input at limit: unexpected error %v", err)
	}

	over := make([]byte, 101)
	copy(over, "workers: 1")
	err := yamlutil.UnmarshalStrict(over, &testConfig{})
	if !errors.Is(err, yamlutil.ErrInputTooLarge) {
		t.Fatalf("error = %v, want ErrInputTooLarge", err)
	}
	if !strings.Contains(err.Error(), "101 bytes") || !strings.Contains(err.Error(), "max 100") {
		t.Errorf("error %q should report both sizes", err)
	}

	if err := yamlutil.ReadStrict(strings.NewReader(strings.Repeat("#", 500)), &testConfig{}); !errors.Is(err, yamlutil.ErrInputTooLarge) {
		t.Errorf("ReadStrict error = %v, want ErrInputTooLarge", err)
	}
}
