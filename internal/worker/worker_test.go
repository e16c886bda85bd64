package worker

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/offboardhq/offboard/internal/model"
	"github.com/offboardhq/offboard/internal/queue"
	"github.com/offboardhq/offboard/internal/service"
	"github.com/offboardhq/offboard/internal/workflow"
)

var _ = Describe("Worker", func() {
	var (
		ctx        context.Context
		consumer   *mockConsumer
		offboarder *mockOffboarder
		scanner    *mockOrgScanner
		w          *Worker
	)

	offboardingMsg := func(attempt int) queue.Message {
		return queue.Message{
			ID:          "1700000000000-0",
			TaskType:    queue.TaskTypeOffboarding,
			EmployeeID:  "user123",
			TriggeredBy: "hr-system",
			Department:  "Payments",
			Role:        "Staff Engineer",
			Attempt:     attempt,
		}
	}

	BeforeEach(func() {
		ctx = context.Background()
		consumer = &mockConsumer{}
		offboarder = &mockOffboarder{}
		scanner = &mockOrgScanner{}
		w = New(consumer, NewProcessor(offboarder, scanner), Config{MaxAttempts: 3})
	})

	It("runs the full workflow for an offboarding message and acks it", func() {
		msg := offboardingMsg(1)
		consumer.readFn = func(_ context.Context) ([]queue.Message, error) {
			return []queue.Message{msg}, nil
		}

		Expect(w.processOneBatch(ctx)).To(Succeed())

		Expect(offboarder.calls).To(Equal(1))
		Expect(offboarder.lastParams).To(Equal(workflow.TriggerParams{
			EmployeeID:  "user123",
			TriggeredBy: "hr-system",
			Department:  "Payments",
			Role:        "Staff Engineer",
		}))
		Expect(consumer.acked).To(HaveLen(1))
		Expect(consumer.requeued).To(BeEmpty())
		Expect(consumer.dlq).To(BeEmpty())
	})

	It("runs the organization sweep for an org scan message", func() {
		consumer.readFn = func(_ context.Context) ([]queue.Message, error) {
			return []queue.Message{{ID: "1700000000000-1", TaskType: queue.TaskTypeOrgScan, Attempt: 1}}, nil
		}

		Expect(w.processOneBatch(ctx)).To(Succeed())

		Expect(scanner.calls).To(Equal(1))
		Expect(offboarder.calls).To(BeZero())
		Expect(consumer.acked).To(HaveLen(1))
	})

	It("requeues a failed message below the attempt limit", func() {
		consumer.readFn = func(_ context.Context) ([]queue.Message, error) {
			return []queue.Message{offboardingMsg(1)}, nil
		}
		offboarder.executeFn = func(_ context.Context, _ workflow.TriggerParams, _ []model.InterviewResponse) (*model.WorkflowSession, error) {
			return nil, errors.New("jira unreachable")
		}

		Expect(w.processOneBatch(ctx)).To(Succeed())

		Expect(consumer.requeued).To(HaveLen(1))
		Expect(consumer.requeueErrs[0]).To(ContainSubstring("jira unreachable"))
		Expect(consumer.dlq).To(BeEmpty())
		Expect(consumer.acked).To(BeEmpty())
	})

	It("parks a message in the DLQ once attempts are exhausted", func() {
		consumer.readFn = func(_ context.Context) ([]queue.Message, error) {
			return []queue.Message{offboardingMsg(3)}, nil
		}
		offboarder.executeFn = func(_ context.Context, _ workflow.TriggerParams, _ []model.InterviewResponse) (*model.WorkflowSession, error) {
			return nil, errors.New("jira unreachable")
		}

		Expect(w.processOneBatch(ctx)).To(Succeed())

		Expect(consumer.dlq).To(HaveLen(1))
		Expect(consumer.requeued).To(BeEmpty())
	})

	It("sends permission failures straight to the DLQ on the first attempt", func() {
		consumer.readFn = func(_ context.Context) ([]queue.Message, error) {
			return []queue.Message{offboardingMsg(1)}, nil
		}
		offboarder.executeFn = func(_ context.Context, _ workflow.TriggerParams, _ []model.InterviewResponse) (*model.WorkflowSession, error) {
			return nil, &workflow.ScanError{
				SessionID: "session-1",
				Err:       service.NewPermissionError("jira.search", "jira project PROJ", errors.New("401 from upstream")),
			}
		}

		Expect(w.processOneBatch(ctx)).To(Succeed())

		Expect(consumer.dlq).To(HaveLen(1))
		Expect(consumer.requeued).To(BeEmpty())
		// The DLQ record carries the generic message, never the upstream body.
		Expect(consumer.dlqErrs[0]).To(ContainSubstring("insufficient permissions"))
		Expect(consumer.dlqErrs[0]).NotTo(ContainSubstring("401 from upstream"))
	})

	It("requeues a message whose task type has no processor", func() {
		consumer.readFn = func(_ context.Context) ([]queue.Message, error) {
			return []queue.Message{{ID: "1700000000000-2", TaskType: "reindex", Attempt: 1}}, nil
		}

		Expect(w.processOneBatch(ctx)).To(Succeed())

		Expect(consumer.requeued).To(HaveLen(1))
		Expect(consumer.requeueErrs[0]).To(ContainSubstring("no processor"))
	})

	It("recovers from a processor panic and retries the message", func() {
		consumer.readFn = func(_ context.Context) ([]queue.Message, error) {
			return []queue.Message{offboardingMsg(1)}, nil
		}
		offboarder.executeFn = func(_ context.Context, _ workflow.TriggerParams, _ []model.InterviewResponse) (*model.WorkflowSession, error) {
			panic("nil session")
		}

		Expect(w.processOneBatch(ctx)).To(Succeed())

		Expect(consumer.requeued).To(HaveLen(1))
		Expect(consumer.requeueErrs[0]).To(ContainSubstring("panic"))
	})

	It("surfaces read failures to the run loop", func() {
		consumer.readFn = func(_ context.Context) ([]queue.Message, error) {
			return nil, errors.New("connection refused")
		}

		err := w.processOneBatch(ctx)

		Expect(err).To(MatchError(ContainSubstring("reading from stream")))
	})
})
