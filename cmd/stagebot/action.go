package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	appConfig "github.com/festy23/stagebot/internal/config"
	"github.com/festy23/stagebot/internal/webhook/model"
)

type actionOptions struct {
	eventName string
	eventPath string
}

func newActionCmd() *cobra.Command {
	opts := &actionOptions{}

	cmd := &cobra.Command{
		Use:   "action",
		Short: "Process a single event from a CI workflow and exit",
		Long: `Reads the event the way a CI runner hands it over: the event kind from
GITHUB_EVENT_NAME and the payload from the JSON file at GITHUB_EVENT_PATH.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(appConfig.LoadFromEnv())
			if err != nil {
				return err
			}
			defer a.close()

			return a.runAction(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.eventName, "event-name", "", "Event kind (default $GITHUB_EVENT_NAME)")
	cmd.Flags().StringVar(&opts.eventPath, "event-path", "", "Path to the event payload (default $GITHUB_EVENT_PATH)")
	return cmd
}

func (o *actionOptions) resolve() error {
	if o.eventName == "" {
		o.eventName = appConfig.GetEnv("GITHUB_EVENT_NAME", "")
	}
	if o.eventPath == "" {
		o.eventPath = appConfig.GetEnv("GITHUB_EVENT_PATH", "")
	}
	if o.eventName == "" {
		return fmt.Errorf("event name not set: pass --event-name or set GITHUB_EVENT_NAME")
	}
	if o.eventPath == "" {
		return fmt.Errorf("event path not set: pass --event-path or set GITHUB_EVENT_PATH")
	}
	return nil
}

func readEvent(name, path string) (*model.Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read event payload: %w", err)
	}

	var payload model.Payload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrMalformedPayload, err)
	}

	return &model.Event{
		Kind:       name,
		DeliveryID: appConfig.GetEnv("GITHUB_RUN_ID", uuid.NewString()),
		Payload:    &payload,
	}, nil
}

func (a *app) runAction(ctx context.Context, opts *actionOptions) error {
	if err := opts.resolve(); err != nil {
		return err
	}

	event, err := readEvent(opts.eventName, opts.eventPath)
	if err != nil {
		return err
	}

	result, err := a.service.Dispatch(ctx, event)
	if err != nil {
		return fmt.Errorf("failed to handle %s event: %w", event.Kind, err)
	}

	a.logger.Infow("event handled", "event", event.Kind, "action", event.Action(), "result", result)
	return nil
}
