package stream

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ed-sim/ed-sim/sim"
	"github.com/ed-sim/ed-sim/sink"
)

type fakeClient struct {
	args []*redis.XAddArgs
	err  error
}

func (f *fakeClient) XAdd(_ context.Context, a *redis.XAddArgs) *redis.StringCmd {
	f.args = append(f.args, a)
	return redis.NewStringResult("1-0", f.err)
}

func testEnvelope() sink.Envelope {
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	return sink.NewEnvelope(sim.Notification{Kind: sim.NotifyDepartmentCreated, At: at, Department: sim.NewDepartment(nil)})
}

func TestAppender_AddsTrimmedEntry(t *testing.T) {
	// GIVEN an appender with an explicit stream and cap
	c := &fakeClient{}
	a := NewAppender(c, "ed:events", 500)
	env := testEnvelope()

	// WHEN delivering
	require.NoError(t, a.Deliver(context.Background(), env))

	// THEN one approximate-trim XADD carried the envelope fields
	require.Len(t, c.args, 1)
	got := c.args[0]
	assert.Equal(t, "ed:events", got.Stream)
	assert.Equal(t, int64(500), got.MaxLen)
	assert.True(t, got.Approx)

	values, ok := got.Values.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, env.ID, values["id"])
	assert.Equal(t, "department-created", values["kind"])
	assert.Equal(t, "2024-03-01T09:00:00Z", values["at"])
	assert.Contains(t, values["payload"], env.DepartmentID)
}

func TestAppender_Defaults(t *testing.T) {
	c := &fakeClient{}
	require.NoError(t, NewAppender(c, "", 0).Deliver(context.Background(), testEnvelope()))
	assert.Equal(t, "edsim:notifications", c.args[0].Stream)
	assert.Equal(t, int64(DefaultMaxLen), c.args[0].MaxLen)
}

func TestAppender_WrapsClientErrors(t *testing.T) {
	down := errors.New("connection refused")
	err := NewAppender(&fakeClient{err: down}, "", 0).Deliver(context.Background(), testEnvelope())
	assert.ErrorIs(t, err, down)
}
