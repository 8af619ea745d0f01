package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docpress/internal/logging"
)

type fakeConn struct {
	subject  string
	data     []byte
	pubErr   error
	flushErr error
	closed   bool
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	f.subject, f.data = subject, data
	return f.pubErr
}

func (f *fakeConn) FlushWithContext(context.Context) error { return f.flushErr }
func (f *fakeConn) Close()                                 { f.closed = true }

func TestNATSNotifier_PublishesJSON(t *testing.T) {
	fc := &fakeConn{}
	n := newNotifier(fc, "docpress.build.completed", logging.Discard())

	finished := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, n.BuildCompleted(context.Background(), BuildCompleted{
		BuildID: "abc", Mode: "add", Outcome: "success", Published: 3, FinishedAt: finished,
	}))
	assert.Equal(t, "docpress.build.completed", fc.subject)

	var got map[string]any
	require.NoError(t, json.Unmarshal(fc.data, &got))
	assert.Equal(t, "abc", got["build_id"])
	assert.InDelta(t, 3, got["published"], 0)
	assert.Equal(t, "2024-01-01T00:00:00Z", got["finished_at"])
	assert.NotContains(t, got, "newest")

	n.Close()
	assert.True(t, fc.closed)
}

func TestNATSNotifier_Errors(t *testing.T) {
	n := newNotifier(&fakeConn{pubErr: errors.New("no conn")}, "s", nil)
	assert.ErrorContains(t, n.BuildCompleted(context.Background(), BuildCompleted{}), "no conn")

	n = newNotifier(&fakeConn{flushErr: context.DeadlineExceeded}, "s", nil)
	assert.ErrorIs(t, n.BuildCompleted(context.Background(), BuildCompleted{}), context.DeadlineExceeded)
}

func TestNewNATS_RequiresSubject(t *testing.T) {
	_, err := NewNATS("nats://127.0.0.1:1", "", nil)
	assert.Error(t, err)
}

func TestNoop(t *testing.T) {
	var n Notifier = Noop{}
	assert.NoError(t, n.BuildCompleted(context.Background(), BuildCompleted{}))
	n.Close()
}
