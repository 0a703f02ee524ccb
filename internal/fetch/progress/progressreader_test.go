package progress

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReader_ReportsAtInterval(t *testing.T) {
	var reports []int64

	pr := NewReader(bytes.NewReader(make([]byte, 1000)), 1000, 256, func(read, total int64) {
		assert.Equal(t, int64(1000), total)
		reports = append(reports, read)
	})

	// Fixed 100-byte reads so the interval crossings are deterministic.
	buf := make([]byte, 100)

	var total int64

	for {
		n, err := pr.Read(buf)
		total += int64(n)

		if err == io.EOF {
			break
		}

		require.NoError(t, err)
	}

	assert.Equal(t, int64(1000), total)
	assert.Equal(t, int64(1000), pr.BytesRead())

	// 100-byte reads cross the 256-byte interval every third read.
	assert.Equal(t, []int64{300, 600, 900}, reports)
}

func TestReader_NilCallback(t *testing.T) {
	pr := NewReader(bytes.NewReader(make([]byte, 64)), 64, 16, nil)

	n, err := io.Copy(io.Discard, pr)
	require.NoError(t, err)
	assert.Equal(t, int64(64), n)
}
