package logging

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chunkWriter records every Write call separately so the test can verify
// that one record maps to exactly one write.
type chunkWriter struct {
	mu     sync.Mutex
	chunks []string
	buf    bytes.Buffer
}

func (c *chunkWriter) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.chunks = append(c.chunks, string(p))
	return c.buf.Write(p)
}

func TestNew_ConcurrentRecordsDoNotInterleave(t *testing.T) {
	w := &chunkWriter{}
	logger := New(Options{Writer: w})

	const workers, perWorker = 8, 50
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := range perWorker {
				logger.Info("published", "worker", id, "seq", j, "payload", strings.Repeat("x", 64))
			}
		}(i)
	}
	wg.Wait()

	require.Len(t, w.chunks, workers*perWorker)
	scanner := bufio.NewScanner(&w.buf)
	lines := 0
	for scanner.Scan() {
		line := scanner.Text()
		assert.True(t, strings.HasPrefix(line, "time="), "corrupted line: %q", line)
		assert.Contains(t, line, "msg=published")
		lines++
	}
	assert.Equal(t, workers*perWorker, lines)
}

func TestNew_VerboseControlsDebug(t *testing.T) {
	var quiet, loud bytes.Buffer

	New(Options{Writer: &quiet}).Debug("hidden")
	New(Options{Writer: &loud, Verbose: true}).Debug("shown")

	assert.Empty(t, quiet.String())
	assert.Contains(t, loud.String(), "msg=shown")
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	New(Options{Writer: &buf, JSON: true}).Warn("empty content", "name", "a")
	assert.Contains(t, buf.String(), fmt.Sprintf("%q:%q", "level", "WARN"))
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() { Discard().Error("nothing") })
}
