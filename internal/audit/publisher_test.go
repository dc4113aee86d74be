package audit

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	id "legatum/pkg/domain"
	dErrors "legatum/pkg/domain-errors"
)

// =============================================================================
// Audit Publisher Test Suite
// =============================================================================
// Justification for unit tests: the tamper-evident hash signature and the
// non-blocking sink handoff are easiest to exercise against the in-memory
// store, without Kafka or Postgres in the loop.

type PublisherSuite struct {
	suite.Suite
	store     *InMemoryStore
	publisher *Publisher
}

func TestPublisherSuite(t *testing.T) {
	suite.Run(t, new(PublisherSuite))
}

func (s *PublisherSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.publisher = NewPublisher(s.store, slog.New(slog.DiscardHandler))
}

func testUserID() id.UserID {
	return id.UserID(uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"))
}

// =============================================================================
// Emit Tests
// =============================================================================

func (s *PublisherSuite) TestEmit() {
	ctx := context.Background()

	s.Run("stamps log id, timestamp, status, and hash", func() {
		s.store.Clear()
		err := s.publisher.Emit(ctx, Event{
			UserID:      testUserID(),
			EventType:   EventVerificationSubmitted,
			Description: "death certificate received",
		})
		s.Require().NoError(err)

		events, err := s.store.ListByUser(ctx, testUserID(), Filter{})
		s.Require().NoError(err)
		s.Require().Len(events, 1)
		s.NotEqual(uuid.Nil, events[0].LogID)
		s.False(events[0].Timestamp.IsZero())
		s.Equal(StatusSuccess, events[0].Status)
		s.NotEmpty(events[0].Hash)
	})

	s.Run("stored event passes integrity verification", func() {
		s.store.Clear()
		err := s.publisher.Emit(ctx, Event{
			UserID:      testUserID(),
			EventType:   EventPolicyInterpreted,
			Description: "policy interpreted",
			AIService:   AIServiceLLM,
			InputData:   map[string]any{"policy_id": "p-1"},
			OutputData:  map[string]any{"confidence": 0.9},
		})
		s.Require().NoError(err)

		events, err := s.store.ListByUser(ctx, testUserID(), Filter{})
		s.Require().NoError(err)
		s.Require().Len(events, 1)
		s.True(events[0].VerifyIntegrity())
	})

	s.Run("tampered event fails integrity verification", func() {
		event := Event{
			LogID:       uuid.New(),
			UserID:      testUserID(),
			EventType:   EventNotificationDelivered,
			Description: "sent",
			Status:      StatusSuccess,
		}
		event.Hash = event.ComputeHash()
		s.True(event.VerifyIntegrity())

		event.Description = "altered after the fact"
		s.False(event.VerifyIntegrity())
	})
}

// =============================================================================
// Sink Handoff Tests
// =============================================================================

func (s *PublisherSuite) TestSinkHandoff() {
	ctx := context.Background()

	s.Run("event lands on sink channel", func() {
		sink := make(chan Event, 1)
		pub := NewPublisher(s.store, slog.New(slog.DiscardHandler), WithSink(sink))

		err := pub.Emit(ctx, Event{UserID: testUserID(), EventType: EventDeliveryFailed, Description: "failed"})
		s.Require().NoError(err)

		select {
		case event := <-sink:
			s.Equal(EventDeliveryFailed, event.EventType)
		default:
			s.Fail("expected event on sink channel")
		}
	})

	s.Run("full sink does not block or fail the emit", func() {
		sink := make(chan Event) // unbuffered, nobody reading
		pub := NewPublisher(s.store, slog.New(slog.DiscardHandler), WithSink(sink))

		err := pub.Emit(ctx, Event{UserID: testUserID(), EventType: EventDeliveryRetried, Description: "retried"})
		s.NoError(err)
	})
}

// =============================================================================
// Trail and Integrity Sweep Tests
// =============================================================================

func (s *PublisherSuite) TestTrail() {
	ctx := context.Background()

	s.Run("filters by event type", func() {
		s.store.Clear()
		s.Require().NoError(s.publisher.Emit(ctx, Event{UserID: testUserID(), EventType: EventVerificationSubmitted, Description: "a"}))
		s.Require().NoError(s.publisher.Emit(ctx, Event{UserID: testUserID(), EventType: EventNotificationGenerated, Description: "b"}))

		events, err := s.publisher.Trail(ctx, testUserID(), Filter{EventType: EventNotificationGenerated})
		s.Require().NoError(err)
		s.Require().Len(events, 1)
		s.Equal(EventNotificationGenerated, events[0].EventType)
	})

	s.Run("limit caps the result", func() {
		s.store.Clear()
		for range 5 {
			s.Require().NoError(s.publisher.Emit(ctx, Event{UserID: testUserID(), EventType: EventAIServiceCall, Description: "call"}))
		}

		events, err := s.publisher.Trail(ctx, testUserID(), Filter{Limit: 3})
		s.Require().NoError(err)
		s.Len(events, 3)
	})
}

func (s *PublisherSuite) TestVerify() {
	ctx := context.Background()

	s.Run("unknown log id returns not found", func() {
		_, err := s.publisher.VerifyLog(ctx, uuid.New())
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("sweep reports all valid entries", func() {
		s.store.Clear()
		for range 3 {
			s.Require().NoError(s.publisher.Emit(ctx, Event{UserID: testUserID(), EventType: EventCircuitOpened, Description: "open"}))
		}

		report, err := s.publisher.VerifyUserLogs(ctx, testUserID())
		s.Require().NoError(err)
		s.Equal(3, report.TotalLogs)
		s.Equal(3, report.ValidLogs)
		s.Empty(report.InvalidLogs)
	})
}
