package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/carelane/hms/libs/kafkax"
	"github.com/carelane/hms/services/clinic-service/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Commit(context.Context) error { t.committed = true; return nil }
func (t *fakeTx) Rollback(context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

type fakeStore struct {
	tx        *fakeTx
	records   []Record
	published []int64
}

func (s *fakeStore) Begin(context.Context) (pgx.Tx, error) {
	s.tx = &fakeTx{}
	return s.tx, nil
}

func (s *fakeStore) FetchUnpublished(_ context.Context, _ pgx.Tx, limit int) ([]Record, error) {
	if len(s.records) > limit {
		return s.records[:limit], nil
	}
	return s.records, nil
}

func (s *fakeStore) MarkPublished(_ context.Context, _ pgx.Tx, ids []int64) error {
	s.published = append(s.published, ids...)
	return nil
}

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestPublishBatch(t *testing.T) {
	store := &fakeStore{records: []Record{
		{ID: 1, EventID: "e1", AggregateID: "a1", EventType: TopicAppointmentBooked, Payload: []byte(`{}`)},
		{ID: 2, EventID: "e2", AggregateID: "a1", EventType: TopicAppointmentStatusChanged, Payload: []byte(`{}`)},
	}}
	writer := &fakeWriter{}
	p := NewPublisher(store, writer, zap.NewNop(), PublisherConfig{BatchSize: 10})

	n, err := p.PublishBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, store.tx.committed)
	assert.Equal(t, []int64{1, 2}, store.published)

	require.Len(t, writer.msgs, 2)
	assert.Equal(t, TopicAppointmentBooked, writer.msgs[0].Topic)
	assert.Equal(t, "a1", string(writer.msgs[0].Key))
	assert.Equal(t, "e1", kafkax.HeaderValue(writer.msgs[0].Headers, kafkax.HeaderEventID))
}

func TestPublishBatchKeepsRowsWhenKafkaFails(t *testing.T) {
	store := &fakeStore{records: []Record{{ID: 7, EventID: "e7", EventType: TopicAppointmentBooked}}}
	p := NewPublisher(store, &fakeWriter{err: errors.New("broker down")}, zap.NewNop(), PublisherConfig{})

	_, err := p.PublishBatch(context.Background())
	assert.Error(t, err)
	assert.Empty(t, store.published)
	assert.True(t, store.tx.rolledBack)
}

func TestRunWithoutWriterReturns(t *testing.T) {
	p := NewPublisher(&fakeStore{}, nil, zap.NewNop(), PublisherConfig{})
	done := make(chan struct{})
	go func() { p.Run(context.Background()); close(done) }()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run should return immediately without a writer")
	}
}

func TestAppointmentBookedPayload(t *testing.T) {
	d, _ := model.ParseDate("2026-03-06")
	appt := model.Appointment{
		ID: "appt-1", PatientID: "p1", DoctorID: "d1", Date: d,
		StartTime: model.NewTimeOfDay(9, 30, 0), EndTime: model.NewTimeOfDay(10, 0, 0),
		Status: model.StatusScheduled, CreatedOn: time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC),
	}
	evt, err := AppointmentBooked(appt, Contact{PatientEmail: "ana@example.com", PatientName: "Ana", DoctorName: "Dr. Rao"})
	require.NoError(t, err)
	assert.Equal(t, TopicAppointmentBooked, evt.EventType)
	assert.Equal(t, "appt-1", evt.AggregateID)
	assert.NotEmpty(t, evt.EventID)

	var body AppointmentBookedPayload
	require.NoError(t, json.Unmarshal(evt.Payload, &body))
	assert.Equal(t, "2026-03-06", body.Date)
	assert.Equal(t, "09:30:00", body.StartTime)
	assert.Equal(t, "ana@example.com", body.PatientEmail)
	assert.Equal(t, "2026-03-04T10:00:00Z", body.BookedAt)
}
