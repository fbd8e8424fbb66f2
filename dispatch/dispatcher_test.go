package dispatch

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaborage/replicon-go/httpclient"
	"github.com/gaborage/replicon-go/logger"
)

// Test constants to avoid string duplication
const (
	testURL = "https://acme.replicon.com/services/TimesheetService1.svc/Bulk"
)

// echoHandler returns each payload's id as the result body.
type echoHandler struct {
	mu    sync.Mutex
	calls int
	fail  map[int]error // payload id -> error to return
	gates map[int]chan struct{}
}

func (h *echoHandler) Handle(_ context.Context, _ string, payload httpclient.Payload) (*httpclient.Result, error) {
	h.mu.Lock()
	h.calls++
	id := payload["id"].(int)
	gate := h.gates[id]
	err := h.fail[id]
	h.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return &httpclient.Result{StatusCode: 200, Body: map[string]any{"id": id}}, nil
}

func payloadBatch(n int) []httpclient.Payload {
	payloads := make([]httpclient.Payload, 0, n)
	for i := 1; i <= n; i++ {
		payloads = append(payloads, httpclient.Payload{"id": i})
	}
	return payloads
}

func outcomeIDs(outcomes []Outcome) []int {
	ids := make([]int, 0, len(outcomes))
	for _, o := range outcomes {
		ids = append(ids, o.Payload["id"].(int))
	}
	return ids
}

func testDispatcher(h Handler, opts ...Option) *Dispatcher {
	return New(h, logger.NewWithOutput("debug", io.Discard), opts...)
}

func TestRunReturnsOneOutcomePerPayload(t *testing.T) {
	h := &echoHandler{}
	d := testDispatcher(h)

	outcomes, err := d.Run(context.Background(), testURL, payloadBatch(3), 2)
	require.NoError(t, err)

	require.Len(t, outcomes, 3)
	assert.Equal(t, 3, h.calls)
	// No duplicates, no omissions, regardless of completion order.
	assert.ElementsMatch(t, []int{1, 2, 3}, outcomeIDs(outcomes))
	for _, o := range outcomes {
		require.NoError(t, o.Err)
		assert.Equal(t, 200, o.Result.StatusCode)
	}
}

func TestRunSingleWorkerPreservesSubmissionOrder(t *testing.T) {
	h := &echoHandler{}
	d := testDispatcher(h)

	outcomes, err := d.Run(context.Background(), testURL, payloadBatch(5), 1)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3, 4, 5}, outcomeIDs(outcomes))
}

func TestRunCollectsInCompletionOrder(t *testing.T) {
	slow := make(chan struct{})
	h := &echoHandler{gates: map[int]chan struct{}{1: slow}}
	d := testDispatcher(h, WithProgress(func(done, total int) {
		// Unit 2 finishes first; release unit 1 once it is collected.
		if done == 1 {
			close(slow)
		}
	}))

	outcomes, err := d.Run(context.Background(), testURL, payloadBatch(2), 2)
	require.NoError(t, err)

	assert.Equal(t, []int{2, 1}, outcomeIDs(outcomes))
}

func TestRunFatalFaultFailsOnlyItsUnit(t *testing.T) {
	boom := httpclient.NewProtocolError("response is missing the correlation header")
	h := &echoHandler{fail: map[int]error{2: boom}}
	d := testDispatcher(h)

	outcomes, err := d.Run(context.Background(), testURL, payloadBatch(3), 2)
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	var failed, succeeded int
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
			assert.Equal(t, 2, o.Payload["id"])
			assert.Equal(t, boom, o.Err)
			assert.Nil(t, o.Result)
		} else {
			succeeded++
		}
	}
	assert.Equal(t, 1, failed)
	assert.Equal(t, 2, succeeded)
}

func TestRunEmitsProgressPerCompletion(t *testing.T) {
	var mu sync.Mutex
	var progress [][2]int

	h := &echoHandler{}
	d := testDispatcher(h, WithProgress(func(done, total int) {
		mu.Lock()
		progress = append(progress, [2]int{done, total})
		mu.Unlock()
	}))

	_, err := d.Run(context.Background(), testURL, payloadBatch(4), 2)
	require.NoError(t, err)

	require.Len(t, progress, 4)
	for i, p := range progress {
		assert.Equal(t, i+1, p[0], "done counter must increment monotonically")
		assert.Equal(t, 4, p[1])
	}
}

func TestRunValidatesWorkerCount(t *testing.T) {
	d := testDispatcher(&echoHandler{})

	for _, workers := range []int{0, -1} {
		t.Run(fmt.Sprintf("workers_%d", workers), func(t *testing.T) {
			_, err := d.Run(context.Background(), testURL, payloadBatch(1), workers)
			assert.Error(t, err)
		})
	}
}

func TestRunEmptyBatch(t *testing.T) {
	h := &echoHandler{}
	d := testDispatcher(h)

	outcomes, err := d.Run(context.Background(), testURL, nil, 4)
	require.NoError(t, err)
	assert.Empty(t, outcomes)
	assert.Zero(t, h.calls)
}

func TestRunMoreWorkersThanPayloads(t *testing.T) {
	h := &echoHandler{}
	d := testDispatcher(h)

	outcomes, err := d.Run(context.Background(), testURL, payloadBatch(2), 16)
	require.NoError(t, err)
	assert.Len(t, outcomes, 2)
}

func TestRunLargeBatch(t *testing.T) {
	h := &echoHandler{}
	d := testDispatcher(h)

	outcomes, err := d.Run(context.Background(), testURL, payloadBatch(200), 8)
	require.NoError(t, err)

	require.Len(t, outcomes, 200)
	ids := outcomeIDs(outcomes)
	seen := make(map[int]bool, len(ids))
	for _, id := range ids {
		assert.False(t, seen[id], "id %d duplicated", id)
		seen[id] = true
	}
	assert.Len(t, seen, 200)
}
