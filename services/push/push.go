// Package pushsvc delivers device push notifications through an HTTP relay
// gateway. When no gateway is configured the service degrades to a no-op so
// environments without device messaging keep working.
package pushsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/newrise0410/piano-academy-app-sub002/core"
)

type GatewayService struct {
	url    string
	http   *http.Client
	logger core.Logger
}

func NewGatewayService(conf *core.Config, logger core.Logger) *GatewayService {
	return &GatewayService{
		url:    conf.PushGatewayURL,
		http:   &http.Client{Timeout: 5 * time.Second},
		logger: logger,
	}
}

type pushPayload struct {
	TargetID string            `json:"targetId"`
	Title    string            `json:"title"`
	Body     string            `json:"body"`
	Data     map[string]string `json:"data,omitempty"`
}

// Push relays one message to the gateway. An unconfigured gateway is not an
// error: the notification feed entry still exists, only the device ping is
// skipped.
func (svc *GatewayService) Push(ctx context.Context, targetID, title, body string, data map[string]string) error {
	if svc.url == "" {
		return nil
	}

	payload, err := json.Marshal(pushPayload{TargetID: targetID, Title: title, Body: body, Data: data})
	if err != nil {
		return errors.Wrap(err, "encoding push payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, svc.url+"/v1/push", bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "building push request")
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := svc.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "relaying push")
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		return errors.Errorf("push gateway returned %d", res.StatusCode)
	}
	svc.logger.Debug(fmt.Sprintf("push relayed to %s: %s", targetID, title))
	return nil
}
