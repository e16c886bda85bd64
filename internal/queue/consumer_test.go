package queue

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/redis/go-redis/v9"
)

var _ = Describe("ParseMessage", func() {
	It("parses a full offboarding message", func() {
		msg, err := ParseMessage(redis.XMessage{
			ID: "1700000000000-0",
			Values: map[string]any{
				"task_type":    "offboarding",
				"employee_id":  "user123",
				"triggered_by": "hr-system",
				"department":   "Payments",
				"role":         "Staff Engineer",
				"attempt":      "2",
				"trace_id":     "4bf92f3577b34da6a3ce929d0e0e4736",
			},
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(msg.TaskType).To(Equal(TaskTypeOffboarding))
		Expect(msg.EmployeeID).To(Equal("user123"))
		Expect(msg.TriggeredBy).To(Equal("hr-system"))
		Expect(msg.Department).To(Equal("Payments"))
		Expect(msg.Role).To(Equal("Staff Engineer"))
		Expect(msg.Attempt).To(Equal(2))
		Expect(msg.TraceID).To(Equal("4bf92f3577b34da6a3ce929d0e0e4736"))
	})

	It("parses an org scan message with no payload", func() {
		msg, err := ParseMessage(redis.XMessage{
			ID:     "1700000000000-1",
			Values: map[string]any{"task_type": "org_scan"},
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(msg.TaskType).To(Equal(TaskTypeOrgScan))
		Expect(msg.EmployeeID).To(BeEmpty())
		Expect(msg.Attempt).To(Equal(1))
	})

	It("defaults the attempt counter to one", func() {
		msg, err := ParseMessage(redis.XMessage{
			Values: map[string]any{
				"task_type":   "offboarding",
				"employee_id": "user123",
			},
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(msg.Attempt).To(Equal(1))
	})

	It("infers offboarding for legacy messages without a task type", func() {
		msg, err := ParseMessage(redis.XMessage{
			Values: map[string]any{"employee_id": "user123"},
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(msg.TaskType).To(Equal(TaskTypeOffboarding))
	})

	It("rejects a message with neither task type nor employee", func() {
		_, err := ParseMessage(redis.XMessage{
			Values: map[string]any{"attempt": "1"},
		})

		Expect(err).To(MatchError(ContainSubstring("missing task_type")))
	})

	It("rejects an offboarding message without an employee", func() {
		_, err := ParseMessage(redis.XMessage{
			Values: map[string]any{"task_type": "offboarding"},
		})

		Expect(err).To(MatchError(ContainSubstring("missing employee_id")))
	})

	It("rejects an unknown task type", func() {
		_, err := ParseMessage(redis.XMessage{
			Values: map[string]any{"task_type": "reindex"},
		})

		Expect(err).To(MatchError(ContainSubstring(`unknown task_type "reindex"`)))
	})

	It("rejects a malformed attempt counter", func() {
		_, err := ParseMessage(redis.XMessage{
			Values: map[string]any{
				"task_type":   "org_scan",
				"attempt":     "soon",
				"employee_id": "user123",
			},
		})

		Expect(err).To(MatchError(ContainSubstring("parsing attempt")))
	})
})

var _ = Describe("messageValues", func() {
	It("round-trips through ParseMessage with a bumped attempt", func() {
		original, err := ParseMessage(redis.XMessage{
			Values: map[string]any{
				"task_type":    "offboarding",
				"employee_id":  "user123",
				"triggered_by": "hr-system",
				"department":   "Payments",
				"role":         "Staff Engineer",
				"attempt":      "1",
				"trace_id":     "4bf92f3577b34da6a3ce929d0e0e4736",
			},
		})
		Expect(err).NotTo(HaveOccurred())

		requeued, err := ParseMessage(redis.XMessage{
			ID:     "1700000000001-0",
			Values: messageValues(original, original.Attempt+1),
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(requeued.TaskType).To(Equal(original.TaskType))
		Expect(requeued.EmployeeID).To(Equal(original.EmployeeID))
		Expect(requeued.TriggeredBy).To(Equal(original.TriggeredBy))
		Expect(requeued.Department).To(Equal(original.Department))
		Expect(requeued.Role).To(Equal(original.Role))
		Expect(requeued.TraceID).To(Equal(original.TraceID))
		Expect(requeued.Attempt).To(Equal(2))
	})

	It("omits empty employee fields for org scans", func() {
		values := messageValues(Message{TaskType: TaskTypeOrgScan, Attempt: 1}, 1)

		Expect(values).To(HaveKeyWithValue("task_type", "org_scan"))
		Expect(values).NotTo(HaveKey("employee_id"))
		Expect(values).NotTo(HaveKey("department"))
	})
})
