package counts

import (
	"bytes"
	"compress/gzip"
	"io/ioutil"
	"sync"
	"testing"

	"github.com/spatialomics/stcount/annotated"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var traceRead = annotated.Read{
	Chrom:  "chr1",
	Start:  100,
	End:    130,
	Name:   "read1",
	MapQ:   30,
	Strand: '+',
	UMI:    "AAAA",
	Gene:   "ACTB",
	Spot:   annotated.Spot{X: 3, Y: 9},
}

func TestTraceWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewTraceWriter(&buf, false)
	require.NoError(t, w.Write(traceRead))
	require.NoError(t, w.Flush())

	assert.Equal(t, "chr1\t100\t130\tread1\t30\t+\tACTB\t3\t9\n", buf.String())
	assert.Equal(t, int64(1), w.Count())
}

func TestTraceWriterGzip(t *testing.T) {
	var buf bytes.Buffer
	w := NewTraceWriter(&buf, true)
	require.NoError(t, w.Write(traceRead))
	require.NoError(t, w.Flush())

	gz, err := gzip.NewReader(&buf)
	require.NoError(t, err)
	data, err := ioutil.ReadAll(gz)
	require.NoError(t, err)
	assert.Equal(t, "chr1\t100\t130\tread1\t30\t+\tACTB\t3\t9\n", string(data))
}

func TestTraceWriterConcurrent(t *testing.T) {
	var buf bytes.Buffer
	w := NewTraceWriter(&buf, false)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				assert.NoError(t, w.Write(traceRead))
			}
		}()
	}
	wg.Wait()
	require.NoError(t, w.Flush())

	assert.Equal(t, int64(400), w.Count())
	lines := bytes.Split(bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), []byte{'\n'})
	require.Len(t, lines, 400)
	for _, line := range lines {
		assert.Equal(t, "chr1\t100\t130\tread1\t30\t+\tACTB\t3\t9", string(line))
	}
}
