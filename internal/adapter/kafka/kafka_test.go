package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/couchcryptid/heat-risk-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeFetcher serves queued messages, then blocks until the context ends.
type fakeFetcher struct {
	msgs      []kafkago.Message
	errAfter  error
	committed []kafkago.Message
	closed    bool
}

func (f *fakeFetcher) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	if len(f.msgs) > 0 {
		msg := f.msgs[0]
		f.msgs = f.msgs[1:]
		return msg, nil
	}
	if f.errAfter != nil {
		return kafkago.Message{}, f.errAfter
	}
	<-ctx.Done()
	return kafkago.Message{}, ctx.Err()
}

func (f *fakeFetcher) CommitMessages(_ context.Context, msgs ...kafkago.Message) error {
	f.committed = append(f.committed, msgs...)
	return nil
}

func (f *fakeFetcher) Close() error {
	f.closed = true
	return nil
}

type fakeWriter struct {
	written []kafkago.Message
	err     error
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if f.err != nil {
		return f.err
	}
	f.written = append(f.written, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func messages(n int) []kafkago.Message {
	msgs := make([]kafkago.Message, n)
	for i := range msgs {
		msgs[i] = kafkago.Message{Topic: "soldier-submissions", Offset: int64(i), Value: []byte(`{}`)}
	}
	return msgs
}

func testReader(f *fakeFetcher) *Reader {
	return &Reader{reader: f, flushInterval: 20 * time.Millisecond, logger: discardLogger()}
}

func TestMapMessageToRawEvent(t *testing.T) {
	now := time.Now()
	msg := kafkago.Message{
		Key:       []byte("key-1"),
		Value:     []byte(`{"id":"sub-1"}`),
		Topic:     "soldier-submissions",
		Partition: 2,
		Offset:    42,
		Time:      now,
		Headers: []kafkago.Header{
			{Key: "source", Value: []byte("mobile")},
		},
	}

	raw := mapMessageToRawEvent(msg)

	assert.Equal(t, []byte("key-1"), raw.Key)
	assert.JSONEq(t, `{"id":"sub-1"}`, string(raw.Value))
	assert.Equal(t, "soldier-submissions", raw.Topic)
	assert.Equal(t, 2, raw.Partition)
	assert.Equal(t, int64(42), raw.Offset)
	assert.Equal(t, now, raw.Timestamp)
	assert.Equal(t, "mobile", raw.Headers["source"])
	assert.Nil(t, raw.Commit)
}

func TestReader_ExtractBatch_FullBatch(t *testing.T) {
	f := &fakeFetcher{msgs: messages(5)}
	r := testReader(f)

	batch, err := r.ExtractBatch(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, batch, 3)
	assert.Equal(t, int64(0), batch[0].Offset)
	assert.Equal(t, int64(2), batch[2].Offset)
	assert.Len(t, f.msgs, 2, "remaining messages stay unfetched")
}

func TestReader_ExtractBatch_FlushesPartialBatch(t *testing.T) {
	f := &fakeFetcher{msgs: messages(2)}
	r := testReader(f)

	batch, err := r.ExtractBatch(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, batch, 2)
}

func TestReader_ExtractBatch_PartialOnFetchError(t *testing.T) {
	f := &fakeFetcher{msgs: messages(1), errAfter: errors.New("broker gone")}
	r := testReader(f)

	batch, err := r.ExtractBatch(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, batch, 1)
}

func TestReader_ExtractBatch_FirstFetchError(t *testing.T) {
	f := &fakeFetcher{errAfter: errors.New("broker gone")}
	r := testReader(f)

	batch, err := r.ExtractBatch(context.Background(), 10)
	require.Error(t, err)
	assert.Nil(t, batch)
}

func TestReader_ExtractBatch_Cancelled(t *testing.T) {
	f := &fakeFetcher{}
	r := testReader(f)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := r.ExtractBatch(ctx, 10)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestReader_CommitCallback(t *testing.T) {
	f := &fakeFetcher{msgs: messages(2)}
	r := testReader(f)

	batch, err := r.ExtractBatch(context.Background(), 2)
	require.NoError(t, err)
	require.NotNil(t, batch[1].Commit)

	require.NoError(t, batch[1].Commit(context.Background()))
	require.Len(t, f.committed, 1)
	assert.Equal(t, int64(1), f.committed[0].Offset)

	require.NoError(t, r.Close())
	assert.True(t, f.closed)
}

func testAssessed() domain.AssessedSubmission {
	return domain.AssessedSubmission{
		Submission: domain.Submission{ID: "sub-1", SoldierID: "S1001", Camp: "Changi Camp", Intensity: domain.IntensityHeavy},
		Reading:    domain.EnvironmentReading{StationID: "S24", AirTemperatureC: 31, RelativeHumidityPct: 70},
		Result: domain.AssessmentResult{
			Category:   domain.CategoryBlack,
			Risk:       domain.RiskHigh,
			AssessedAt: time.Date(2024, 6, 3, 14, 30, 0, 0, time.UTC),
		},
	}
}

func TestSerializeToMessage(t *testing.T) {
	a := testAssessed()

	msg, err := serializeToMessage(a)
	require.NoError(t, err)

	assert.Equal(t, []byte("sub-1"), msg.Key)
	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "category", msg.Headers[0].Key)
	assert.Equal(t, []byte("Black"), msg.Headers[0].Value)
	assert.Equal(t, "risk", msg.Headers[1].Key)
	assert.Equal(t, []byte("High"), msg.Headers[1].Value)
	assert.Equal(t, "assessed_at", msg.Headers[2].Key)
	assert.Equal(t, []byte("2024-06-03T14:30:00Z"), msg.Headers[2].Value)

	var decoded domain.AssessedSubmission
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, domain.CategoryBlack, decoded.Result.Category)
	assert.Equal(t, "S24", decoded.Reading.StationID)
	assert.Contains(t, string(msg.Value), `"category":"Black"`)
}

func TestSerializeToMessage_NaNFails(t *testing.T) {
	a := testAssessed()
	a.Reading.AirTemperatureC = math.NaN()

	_, err := serializeToMessage(a)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sub-1")
}

func TestWriter_LoadBatch(t *testing.T) {
	fw := &fakeWriter{}
	w := &Writer{writer: fw, logger: discardLogger()}

	require.NoError(t, w.LoadBatch(context.Background(), nil))
	assert.Empty(t, fw.written)

	second := testAssessed()
	second.Submission.ID = "sub-2"
	require.NoError(t, w.LoadBatch(context.Background(), []domain.AssessedSubmission{testAssessed(), second}))
	require.Len(t, fw.written, 2)
	assert.Equal(t, []byte("sub-2"), fw.written[1].Key)
}

func TestWriter_LoadBatch_Error(t *testing.T) {
	fw := &fakeWriter{err: errors.New("leader not available")}
	w := &Writer{writer: fw, logger: discardLogger()}

	err := w.LoadBatch(context.Background(), []domain.AssessedSubmission{testAssessed()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish 1 assessments")
}
