package adobe

import (
	"context"
	"fmt"

	"github.com/go-viper/mapstructure/v2"

	"targetmcp/internal/infra/catalog"
)

// Function keys referenced by the bundled manifests.
const (
	KeyUpdateActivityPriority = "adobe.target.update_activity_priority"
	KeyUpdateActivitySchedule = "adobe.target.update_activity_schedule"
	KeyUpdateActivityState    = "adobe.target.update_activity_state"
)

type priorityArgs struct {
	Tenant     string `json:"tenant"`
	ActivityID string `json:"activityId"`
	Priority   any    `json:"priority"`
}

type scheduleArgs struct {
	Tenant     string `json:"tenant"`
	ActivityID string `json:"activityId"`
	StartsAt   string `json:"startsAt"`
	EndsAt     string `json:"endsAt"`
}

type stateArgs struct {
	Tenant     string `json:"tenant"`
	ActivityID string `json:"activityId"`
	State      string `json:"state"`
}

// Register binds the Target tools to their manifest keys.
func Register(functions *catalog.FunctionRegistry, client *Client) error {
	for key, fn := range map[string]func(context.Context, map[string]any) (any, error){
		KeyUpdateActivityPriority: client.UpdateActivityPriority,
		KeyUpdateActivitySchedule: client.UpdateActivitySchedule,
		KeyUpdateActivityState:    client.UpdateActivityState,
	} {
		if err := functions.Register(key, fn); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) UpdateActivityPriority(ctx context.Context, args map[string]any) (any, error) {
	var in priorityArgs
	if err := decodeArgs(args, &in); err != nil {
		return nil, err
	}
	return c.UpdateActivity(ctx, in.Tenant, in.ActivityID, "priority", map[string]any{
		"priority": in.Priority,
	})
}

func (c *Client) UpdateActivitySchedule(ctx context.Context, args map[string]any) (any, error) {
	var in scheduleArgs
	if err := decodeArgs(args, &in); err != nil {
		return nil, err
	}
	return c.UpdateActivity(ctx, in.Tenant, in.ActivityID, "schedule", map[string]any{
		"startsAt": in.StartsAt,
		"endsAt":   in.EndsAt,
	})
}

func (c *Client) UpdateActivityState(ctx context.Context, args map[string]any) (any, error) {
	var in stateArgs
	if err := decodeArgs(args, &in); err != nil {
		return nil, err
	}
	return c.UpdateActivity(ctx, in.Tenant, in.ActivityID, "state", map[string]any{
		"state": in.State,
	})
}

// decodeArgs is lenient: numbers become strings and unknown keys are ignored.
func decodeArgs(args map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("build argument decoder: %w", err)
	}
	if err := dec.Decode(args); err != nil {
		return fmt.Errorf("decode arguments: %w", err)
	}
	return nil
}
