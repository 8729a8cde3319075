package batchjob

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/fsdevblog/placement-billing/internal/domain"
	"github.com/fsdevblog/placement-billing/internal/jobs"
	"github.com/fsdevblog/placement-billing/internal/service"
	"github.com/fsdevblog/placement-billing/internal/transport/api/response"
	"github.com/fsdevblog/placement-billing/internal/worker/batchjob/mocks"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"
)

type ProcessorTestSuite struct {
	suite.Suite
	ctrl        *gomock.Controller
	mockService *mocks.MockServicer
	queue       *jobs.MemoryQueue
	processor   *Processor
}

func TestProcessorSuite(t *testing.T) {
	suite.Run(t, new(ProcessorTestSuite))
}

func (s *ProcessorTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockService = mocks.NewMockServicer(s.ctrl)
	s.queue = jobs.NewMemoryQueue(10)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	s.processor = New(s.queue, s.mockService, logger).
		SetMaxAttempts(3).
		SetBackoff(time.Millisecond).
		SetDequeueWait(20 * time.Millisecond)
}

func (s *ProcessorTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ProcessorTestSuite) newJob() *jobs.Job {
	job := jobs.NewJob(7, []service.PurchaseItem{
		{ProjectID: 1, SiteID: 2, Type: domain.PlacementTypeLink, ContentIDs: []int64{3}},
		{ProjectID: 1, SiteID: 4, Type: domain.PlacementTypeLink, ContentIDs: []int64{5}},
	})
	return &job
}

func (s *ProcessorTestSuite) state(id string) *jobs.State {
	state, err := s.queue.GetState(s.T().Context(), id)
	s.Require().NoError(err)
	return state
}

func (s *ProcessorTestSuite) TestProcessCompleted() {
	job := s.newJob()
	s.mockService.EXPECT().
		BatchPurchase(gomock.Any(), job.UserID, job.Items).
		Return(&service.BatchPurchaseResult{
			Successful:   1,
			Failed:       1,
			Results:      []service.BatchPurchaseItemResult{{Index: 0, Result: &service.PurchaseResult{PricePaid: decimal.NewFromInt(25)}}},
			Errors:       []service.BatchItemError{{Index: 1, Err: domain.ErrExhaustedCapacity}},
			FinalBalance: decimal.NewFromInt(75),
		}, nil)

	s.processor.process(s.T().Context(), job)

	state := s.state(job.ID)
	s.Equal(jobs.StatusCompleted, state.Status)
	s.Empty(state.Error)

	var result response.BatchPurchase
	s.Require().NoError(json.Unmarshal(state.Result, &result))
	s.Equal(1, result.Successful)
	s.Equal(1, result.Failed)
	s.InDelta(75.0, result.FinalBalance, 0.001)
	s.Require().Len(result.Errors, 1)
	s.Equal("capacity_exhausted", result.Errors[0].Code)
}

func (s *ProcessorTestSuite) TestProcessBusinessErrorIsFinal() {
	job := s.newJob()
	s.mockService.EXPECT().
		BatchPurchase(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, domain.NewValidationError("items", "at most 1000 items allowed"))

	s.processor.process(s.T().Context(), job)

	state := s.state(job.ID)
	s.Equal(jobs.StatusFailed, state.Status)
	s.Contains(state.Error, "at most 1000 items")
	_, err := s.queue.Dequeue(s.T().Context(), 10*time.Millisecond)
	s.Require().ErrorIs(err, jobs.ErrEmpty)
}

func (s *ProcessorTestSuite) TestProcessInfrastructureErrorIsRetried() {
	job := s.newJob()
	s.mockService.EXPECT().
		BatchPurchase(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&service.BatchPurchaseResult{}, errors.New("connection refused"))

	s.processor.process(s.T().Context(), job)

	state := s.state(job.ID)
	s.Equal(jobs.StatusQueued, state.Status)
	s.Equal(uint(1), state.Attempt)

	requeued, err := s.queue.Dequeue(s.T().Context(), time.Second)
	s.Require().NoError(err)
	s.Equal(job.ID, requeued.ID)
	s.Equal(uint(1), requeued.Attempt)
}

func (s *ProcessorTestSuite) TestRetryKeepsCommittedItems() {
	job := jobs.NewJob(7, []service.PurchaseItem{
		{ProjectID: 1, SiteID: 2, Type: domain.PlacementTypeLink, ContentIDs: []int64{3}},
		{ProjectID: 1, SiteID: 4, Type: domain.PlacementTypeLink, ContentIDs: []int64{5}},
		{ProjectID: 1, SiteID: 6, Type: domain.PlacementTypeLink, ContentIDs: []int64{7}},
	})
	paid := func(amount int64) *service.PurchaseResult {
		return &service.PurchaseResult{PricePaid: decimal.NewFromInt(amount)}
	}

	gomock.InOrder(
		s.mockService.EXPECT().
			BatchPurchase(gomock.Any(), job.UserID, job.Items).
			Return(&service.BatchPurchaseResult{
				Successful: 2,
				Results: []service.BatchPurchaseItemResult{
					{Index: 0, Result: paid(25)},
					{Index: 1, Result: paid(25)},
				},
				FinalBalance: decimal.NewFromInt(50),
			}, errors.New("connection reset by peer")),
		s.mockService.EXPECT().
			BatchPurchase(gomock.Any(), job.UserID, job.Items[2:]).
			Return(&service.BatchPurchaseResult{
				Successful:   1,
				Results:      []service.BatchPurchaseItemResult{{Index: 0, Result: paid(25)}},
				FinalBalance: decimal.NewFromInt(25),
			}, nil),
	)

	s.processor.process(s.T().Context(), &job)

	queued := s.state(job.ID)
	s.Equal(jobs.StatusQueued, queued.Status)
	s.NotEmpty(queued.Result)

	requeued, err := s.queue.Dequeue(s.T().Context(), time.Second)
	s.Require().NoError(err)
	s.Equal(2, requeued.Processed)

	s.processor.process(s.T().Context(), requeued)

	state := s.state(job.ID)
	s.Equal(jobs.StatusCompleted, state.Status)

	var result response.BatchPurchase
	s.Require().NoError(json.Unmarshal(state.Result, &result))
	s.Equal(3, result.Successful)
	s.Equal(0, result.Failed)
	s.Empty(result.Errors)
	s.InDelta(25.0, result.FinalBalance, 0.001)
	s.Require().Len(result.Results, 3)
	for i, item := range result.Results {
		s.Equal(i, item.Index)
	}
}

func (s *ProcessorTestSuite) TestProcessGivesUpAfterMaxAttempts() {
	job := s.newJob()
	job.Attempt = 2
	s.mockService.EXPECT().
		BatchPurchase(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&service.BatchPurchaseResult{Successful: 1}, errors.New("connection refused"))

	s.processor.process(s.T().Context(), job)

	state := s.state(job.ID)
	s.Equal(jobs.StatusFailed, state.Status)
	s.Equal("internal server error", state.Error)
	s.NotEmpty(state.Result)
}

func (s *ProcessorTestSuite) TestRun() {
	job := s.newJob()
	_, err := jobs.Submit(s.T().Context(), s.queue, *job)
	s.Require().NoError(err)

	ctx, cancel := context.WithCancel(s.T().Context())
	s.mockService.EXPECT().
		BatchPurchase(gomock.Any(), job.UserID, gomock.Any()).
		DoAndReturn(func(context.Context, int64, []service.PurchaseItem) (*service.BatchPurchaseResult, error) {
			cancel()
			return &service.BatchPurchaseResult{Successful: 2}, nil
		})

	done := make(chan struct{})
	go func() {
		s.processor.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		s.FailNow("processor did not stop")
	}
	s.Equal(jobs.StatusCompleted, s.state(job.ID).Status)
}
