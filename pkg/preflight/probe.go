package preflight

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	ebtypes "github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// ProbeDetailType tags probe events so downstream consumers can ignore them.
const ProbeDetailType = "PipelineProbe"

// SendProbe publishes a synthetic event to the bus and returns its ULID
// correlation id. It proves the bus accepts events from this principal; it
// does not exercise the pipes themselves.
func (c *Checker) SendProbe(ctx context.Context, bus, source string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if bus == "" {
		bus = "default"
	}
	if source == "" {
		return "", errors.New("preflight: probe source is empty")
	}

	probeID := ulid.Make().String()
	detail, err := json.Marshal(map[string]string{"probeId": probeID})
	if err != nil {
		return "", fmt.Errorf("preflight: marshal probe detail: %w", err)
	}

	out, err := c.bus.PutEvents(ctx, &eventbridge.PutEventsInput{
		Entries: []ebtypes.PutEventsRequestEntry{{
			EventBusName: aws.String(bus),
			Source:       aws.String(source),
			DetailType:   aws.String(ProbeDetailType),
			Detail:       aws.String(string(detail)),
		}},
	})
	if err != nil {
		return "", fmt.Errorf("preflight: put probe event: %w", err)
	}
	if out.FailedEntryCount > 0 {
		code := ""
		if len(out.Entries) > 0 {
			code = aws.ToString(out.Entries[0].ErrorCode)
		}
		return "", fmt.Errorf("preflight: probe event rejected: %s", code)
	}

	c.log.Info("probe event published",
		zap.String("bus", bus),
		zap.String("source", source),
		zap.String("probe_id", probeID),
	)
	return probeID, nil
}
