package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/frahmantamala/ngo-platform/internal/core/events"
	"github.com/frahmantamala/ngo-platform/internal/notification"
	"github.com/frahmantamala/ngo-platform/pkg/logger"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Publish sample domain events through the event bus to check notification delivery.`,
}

var publishEventCmd = &cobra.Command{
	Use:       "publish [event-type]",
	Short:     "Publish a sample event",
	Long:      `Publish a sample donation event so the notification subscriber sends the matching email.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{events.EventTypeDonationSucceeded, events.EventTypeDonationFailed},
	Run: func(cmd *cobra.Command, args []string) {
		if err := publishTestEvent(args[0]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

var (
	eventRecipient string
	eventOrgName   string
	eventAmount    int64
)

func publishTestEvent(eventType string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	log := logger.LoggerWrapper()

	dispatcher, err := initDispatcher(cfg.Mail, log)
	if err != nil {
		return err
	}

	eventBus := events.NewEventBus(log)
	notification.NewSubscriber(dispatcher, log).Register(eventBus)

	paymentID := time.Now().Unix()
	var event events.Event
	switch eventType {
	case events.EventTypeDonationSucceeded:
		receipt := "https://example.org/receipts/sample"
		event = events.NewDonationSucceededEvent(paymentID, 0, eventOrgName, nil, eventRecipient,
			eventAmount, cfg.Payment.Currency, "ch_sample", &receipt)
	case events.EventTypeDonationFailed:
		event = events.NewDonationFailedEvent(paymentID, 0, eventOrgName, nil, eventRecipient,
			eventAmount, cfg.Payment.Currency, "Payment canceled or rejected by gateway.")
	default:
		return fmt.Errorf("unsupported event type %q", eventType)
	}

	log.Info("publishing sample event", "event_type", eventType, "event_id", event.EventID(), "to", eventRecipient)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := eventBus.Publish(ctx, event); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	if err := eventBus.Drain(ctx); err != nil {
		return fmt.Errorf("drain event bus: %w", err)
	}
	dispatcher.Shutdown(ctx)

	log.Info("sample event published")
	return nil
}

func init() {
	publishEventCmd.Flags().StringVar(&eventRecipient, "to", "donor@example.org", "recipient of the sample email")
	publishEventCmd.Flags().StringVar(&eventOrgName, "organization", "Sample Organization", "organization named in the email")
	publishEventCmd.Flags().Int64Var(&eventAmount, "amount-cents", 2500, "donation amount in cents")

	eventCmd.AddCommand(publishEventCmd)

	rootCmd.AddCommand(eventCmd)
}
