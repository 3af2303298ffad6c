package build

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		input   string
		want    Version
		wantErr bool
	}{
		{"16.0.1.2", Version{16, 0, 1, 2}, false},
		{"16.0.17928.20114", Version{16, 0, 17928, 20114}, false},
		{"16.0.017928.020114", Version{16, 0, 17928, 20114}, false},
		{"16.0.1", Version{}, true},
		{"16.0.1.2.3", Version{}, true},
		{"16.0.1.x", Version{}, true},
		{"16.0..2", Version{}, true},
		{"16.0.-1.2", Version{}, true},
		{"16.0.1 .2", Version{}, true},
		{"", Version{}, true},
		{"v16.0.1.2", Version{}, true},
		{"16.0.1.2-beta", Version{}, true},
		{"16.0.1.2+meta", Version{}, true},
		{"16.0.1.2 ", Version{}, true},
		{"16", Version{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseVersion(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidVersion), "error should wrap ErrInvalidVersion: %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVersion_Compare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"16.0.1.2", "16.0.1.2", 0},
		{"16.0.1.2", "16.0.1.10", -1},
		{"16.0.9.0", "16.0.10.0", -1},
		{"16.0.17928.20114", "16.0.16827.20130", 1},
	}

	for _, tt := range tests {
		t.Run(tt.a+" vs "+tt.b, func(t *testing.T) {
			a, err := ParseVersion(tt.a)
			require.NoError(t, err)
			b, err := ParseVersion(tt.b)
			require.NoError(t, err)

			assert.Equal(t, tt.want, a.Compare(b))
			assert.Equal(t, -tt.want, b.Compare(a))
		})
	}
}

func TestVersion_String(t *testing.T) {
	v := Version{Major: 16, Minor: 0, Build: 17928, Revision: 20114}
	assert.Equal(t, "16.0.17928.20114", v.String())
	assert.False(t, v.IsZero())
	assert.True(t, Version{}.IsZero())
}

func TestVersion_JSON(t *testing.T) {
	var decoded struct {
		V Version `json:"v"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"v":"16.0.1.2"}`), &decoded))
	assert.Equal(t, Version{16, 0, 1, 2}, decoded.V)

	err := json.Unmarshal([]byte(`{"v":"16.0.1"}`), &decoded)
	assert.Error(t, err)
}

func TestVersion_CompareRoundTrip(t *testing.T) {
	v := Version{Major: 16, Minor: 0, Build: 9, Revision: 30}
	assert.Equal(t, 0, v.Compare(Version{16, 0, 9, 30}))
	assert.Equal(t, -1, Version{}.Compare(v))
}
