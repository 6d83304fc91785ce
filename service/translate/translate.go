package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"linguachat/tools/errs"
)

// Translator produces one translated variant per target language. SendMessage
// calls it before any persistence; a failure here aborts the send entirely so
// a partially translated message is never stored.
type Translator interface {
	Translate(ctx context.Context, content, sourceLan string, targetLans []string) (map[string]string, error)
}

type request struct {
	Text    string   `json:"text"`
	Source  string   `json:"source"`
	Targets []string `json:"targets"`
}

type response struct {
	Translations map[string]string `json:"translations"`
}

// HTTPClient calls the external translation service over HTTP. No internal
// retry: the caller reports the failure and the message is not sent.
type HTTPClient struct {
	endpoint string
	client   *http.Client
}

func NewHTTPClient(endpoint string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

var _ Translator = (*HTTPClient)(nil)

func (c *HTTPClient) Translate(ctx context.Context, content, sourceLan string, targetLans []string) (map[string]string, error) {
	body, err := json.Marshal(request{Text: content, Source: sourceLan, Targets: targetLans})
	if err != nil {
		return nil, errs.ErrTranslation.WrapMsg(err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errs.ErrTranslation.WrapMsg(err.Error())
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errs.ErrTranslation.WrapMsg(err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errs.ErrTranslation.WrapMsg("unexpected status", "status", resp.StatusCode)
	}

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, errs.ErrTranslation.WrapMsg(err.Error())
	}
	return out.Translations, nil
}
