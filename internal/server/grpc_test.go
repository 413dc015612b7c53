// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawCodec_Name(t *testing.T) {
	assert.Equal(t, "lockkeeper-raw", rawCodec{}.Name())
}

func TestRawCodec_MarshalUnmarshalRoundTrip(t *testing.T) {
	want := rawFrame("some opaque frame bytes")

	data, err := rawCodec{}.Marshal(want)
	require.NoError(t, err)
	assert.Equal(t, []byte(want), data)

	var got rawFrame
	require.NoError(t, rawCodec{}.Unmarshal(data, &got))
	assert.Equal(t, want, got)
}

func TestRawCodec_MarshalRejectsWrongType(t *testing.T) {
	_, err := rawCodec{}.Marshal("not a rawFrame")
	assert.Error(t, err)
}

func TestRawCodec_UnmarshalRejectsWrongType(t *testing.T) {
	var notAFrame string
	err := rawCodec{}.Unmarshal([]byte("data"), &notAFrame)
	assert.Error(t, err)
}

// TestRawCodec_UnmarshalReusesBackingArray exercises the append((*f)[:0], ...)
// idiom: unmarshaling into an already-populated rawFrame must not leave
// stale trailing bytes from a previous, longer frame.
func TestRawCodec_UnmarshalReusesBackingArray(t *testing.T) {
	f := rawFrame("a longer first frame")
	require.NoError(t, rawCodec{}.Unmarshal([]byte("short"), &f))
	assert.Equal(t, rawFrame("short"), f)
}
