package capabilities

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/wispworks/wisp/configs"
	"github.com/wispworks/wisp/logs"
	"github.com/wispworks/wisp/nets"
	"github.com/wispworks/wisp/vars"
)

const defaultOrgoEndpoint = "https://api.orgo.ai"

type OrgoAPIKey string

func (Module) OrgoAPIKey(
	loader configs.Loader,
) OrgoAPIKey {
	return OrgoAPIKey(vars.FirstNonZero(
		configs.First[string](loader, "orgo_api_key"),
		os.Getenv("ORGO_API_KEY"),
	))
}

type PerformComputerAction func(ctx context.Context, action string) (string, error)

// PerformComputerAction forwards a natural-language action to a hosted
// computer-automation service and relays its outcome report verbatim. The
// service runs the virtual desktop; nothing is interpreted locally. Disabled
// unless orgo_computer_id is configured.
func (Module) PerformComputerAction(
	client nets.HTTPClient,
	loader configs.Loader,
	apiKey OrgoAPIKey,
	logger logs.Logger,
) PerformComputerAction {
	return func(ctx context.Context, action string) (string, error) {
		computerID := configs.First[string](loader, "orgo_computer_id")
		if computerID == "" {
			return "", fmt.Errorf("gui automation is not configured: orgo_computer_id is not set")
		}
		if apiKey == "" {
			return "", fmt.Errorf("gui automation is not configured: orgo_api_key is not set")
		}

		endpoint := configs.First[string](loader, "orgo_endpoint")
		if endpoint == "" {
			endpoint = defaultOrgoEndpoint
		}

		body, err := json.Marshal(map[string]any{
			"action": action,
		})
		if err != nil {
			return "", err
		}
		req, err := http.NewRequestWithContext(ctx, "POST",
			fmt.Sprintf("%s/v1/computers/%s/actions", endpoint, computerID),
			bytes.NewReader(body),
		)
		if err != nil {
			return "", err
		}
		req.Header.Set("Authorization", "Bearer "+string(apiKey))
		req.Header.Set("Content-Type", "application/json")

		logger.InfoContext(ctx, "performing computer action",
			"computer", computerID,
		)

		resp, err := client.Do(req)
		if err != nil {
			return "", err
		}
		defer resp.Body.Close()
		report, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", err
		}
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("computer action: bad status: %d, body: %s", resp.StatusCode, report)
		}

		return string(report), nil
	}
}
