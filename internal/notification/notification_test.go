package notification_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/frahmantamala/ngo-platform/internal/core/events"
	"github.com/frahmantamala/ngo-platform/internal/notification"
	"github.com/frahmantamala/ngo-platform/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestNotification(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Notification Suite")
}

type fakeSender struct {
	mu       sync.Mutex
	sent     []notification.Email
	failures int
	block    chan struct{}
}

func (f *fakeSender) Send(ctx context.Context, email notification.Email) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures > 0 {
		f.failures--
		return errors.New("smtp unavailable")
	}
	f.sent = append(f.sent, email)
	return nil
}

func (f *fakeSender) Sent() []notification.Email {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]notification.Email(nil), f.sent...)
}

var _ = Describe("Renderer", func() {
	var renderer *notification.Renderer

	BeforeEach(func() {
		var err error
		renderer, err = notification.NewRenderer()
		Expect(err).NotTo(HaveOccurred())
	})

	It("renders plain and html bodies", func() {
		email, err := renderer.Render(notification.Message{
			To:       "ngo@example.org",
			Subject:  "Complete your registration",
			Template: notification.TemplateRegistrationLink,
			Data: map[string]any{
				"Link":      "http://localhost:8080/register?token=abc&x=1",
				"ExpiresIn": "1 hour",
			},
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(email.To).To(Equal("ngo@example.org"))
		Expect(email.PlainBody).To(ContainSubstring("token=abc&x=1"))
		Expect(email.PlainBody).To(ContainSubstring("1 hour"))
		Expect(email.HTMLBody).To(ContainSubstring("token=abc&amp;x=1"))
	})

	It("falls back to a generic greeting without a donor name", func() {
		email, err := renderer.Render(notification.Message{
			Template: notification.TemplateDonationFailure,
			Data: map[string]any{
				"DonorName":        "",
				"Amount":           "10.00",
				"Currency":         "USD",
				"OrganizationName": "Helping Hands",
				"Reason":           "declined",
			},
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(email.PlainBody).To(HavePrefix("Dear donor,"))
	})

	It("rejects unknown templates", func() {
		_, err := renderer.Render(notification.Message{Template: "missing"})
		Expect(errors.Is(err, notification.ErrUnknownTemplate)).To(BeTrue())
	})
})

var _ = Describe("Dispatcher", func() {
	var (
		renderer *notification.Renderer
		sender   *fakeSender
	)

	BeforeEach(func() {
		var err error
		renderer, err = notification.NewRenderer()
		Expect(err).NotTo(HaveOccurred())
		sender = &fakeSender{}
	})

	approved := func(to string) notification.Message {
		return notification.Message{
			To:       to,
			Subject:  "approved",
			Template: notification.TemplateApplicationApproved,
			Data:     map[string]any{"OrganizationName": "Helping Hands"},
		}
	}

	It("delivers queued messages through the worker pool", func() {
		d := notification.NewDispatcher(renderer, sender, notification.DispatcherConfig{MaxWorkers: 2}, logger.Discard())

		Expect(d.Enqueue(approved("a@example.org"))).To(Succeed())
		Expect(d.Enqueue(approved("b@example.org"))).To(Succeed())

		Eventually(func() int { return len(sender.Sent()) }).Should(Equal(2))
		d.Shutdown(context.Background())
	})

	It("drops a failed send and moves on", func() {
		sender.failures = 1
		d := notification.NewDispatcher(renderer, sender, notification.DispatcherConfig{MaxWorkers: 1}, logger.Discard())

		Expect(d.Enqueue(approved("a@example.org"))).To(Succeed())
		Expect(d.Enqueue(approved("b@example.org"))).To(Succeed())

		Eventually(func() int { return len(sender.Sent()) }).Should(Equal(1))
		Consistently(func() int { return len(sender.Sent()) }, 50*time.Millisecond).Should(Equal(1))
		Expect(sender.Sent()[0].To).To(Equal("b@example.org"))
		d.Shutdown(context.Background())
	})

	It("reports a full queue without blocking", func() {
		sender.block = make(chan struct{})
		d := notification.NewDispatcher(renderer, sender, notification.DispatcherConfig{
			MaxWorkers: 1,
			QueueSize:  1,
		}, logger.Discard())

		var err error
		for i := 0; i < 10 && err == nil; i++ {
			err = d.Enqueue(approved("a@example.org"))
		}
		Expect(err).To(MatchError(notification.ErrQueueFull))

		close(sender.block)
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		d.Shutdown(ctx)
	})

	It("sends inline and surfaces sender errors on SendNow", func() {
		sender.failures = 1
		d := notification.NewDispatcher(renderer, sender, notification.DispatcherConfig{}, logger.Discard())
		defer d.Shutdown(context.Background())

		Expect(d.SendNow(context.Background(), approved("a@example.org"))).To(MatchError(ContainSubstring("smtp unavailable")))
		Expect(d.SendNow(context.Background(), approved("a@example.org"))).To(Succeed())
		Expect(sender.Sent()).To(HaveLen(1))
	})

	It("refuses work after shutdown", func() {
		d := notification.NewDispatcher(renderer, sender, notification.DispatcherConfig{}, logger.Discard())
		d.Shutdown(context.Background())

		Expect(d.Enqueue(approved("a@example.org"))).To(MatchError(notification.ErrStopped))
	})
})

type recordingNotifier struct {
	mu       sync.Mutex
	messages []notification.Message
}

func (r *recordingNotifier) Enqueue(msg notification.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
	return nil
}

func (r *recordingNotifier) SendNow(ctx context.Context, msg notification.Message) error {
	return r.Enqueue(msg)
}

var _ = Describe("Subscriber", func() {
	var (
		notifier   *recordingNotifier
		subscriber *notification.Subscriber
	)

	BeforeEach(func() {
		notifier = &recordingNotifier{}
		subscriber = notification.NewSubscriber(notifier, logger.Discard())
	})

	It("builds a receipt email for successful donations", func() {
		// Given
		receipt := "https://checkout.example/cs_1"
		evt := events.NewDonationSucceededEvent(7, 3, "Helping Hands", nil, "donor@example.org", 2550, "usd", "pi_1", &receipt)

		// When
		err := subscriber.HandleDonationSucceeded(context.Background(), evt)

		// Then
		Expect(err).NotTo(HaveOccurred())
		Expect(notifier.messages).To(HaveLen(1))
		msg := notifier.messages[0]
		Expect(msg.To).To(Equal("donor@example.org"))
		Expect(msg.Template).To(Equal(notification.TemplateDonationSuccess))
		Expect(msg.Data["Amount"]).To(Equal("25.50"))
		Expect(msg.Data["Currency"]).To(Equal("USD"))
		Expect(msg.Data["ReceiptURL"]).To(Equal(receipt))
	})

	It("picks the template from the decision type", func() {
		Expect(subscriber.HandleApplicationDecided(context.Background(),
			events.NewApplicationRejectedEvent(4, "Helping Hands", "ngo@example.org", "Incomplete documents", 1))).To(Succeed())
		Expect(subscriber.HandleApplicationDecided(context.Background(),
			events.NewApplicationApprovedEvent(9, "Helping Hands", "ngo@example.org", 1))).To(Succeed())

		Expect(notifier.messages[0].Template).To(Equal(notification.TemplateApplicationRejected))
		Expect(notifier.messages[0].Data["Reason"]).To(Equal("Incomplete documents"))
		Expect(notifier.messages[1].Template).To(Equal(notification.TemplateApplicationApproved))
	})

	It("rejects mismatched event payloads", func() {
		err := subscriber.HandleDonationFailed(context.Background(), events.NewBaseEvent(events.EventTypeDonationFailed, nil))
		Expect(err).To(HaveOccurred())
	})

	It("formats minor units", func() {
		Expect(notification.FormatAmount(100)).To(Equal("1.00"))
		Expect(notification.FormatAmount(99999999)).To(Equal("999999.99"))
	})
})
