package publishers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/samvad-hq/samvad-feed-notifier/pkg/httpclient"
)

// feishuPublisher posts plain-text messages to a Feishu custom-bot webhook.
type feishuPublisher struct {
	id     string
	url    string
	client *resty.Client
	log    Logger
}

type feishuMessage struct {
	MsgType string     `json:"msg_type"`
	Content feishuText `json:"content"`
}

type feishuText struct {
	Text string `json:"text"`
}

// feishuReply is the body Feishu answers with; a non-zero code means the bot rejected the message.
type feishuReply struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

func newFeishuPublisher(_ context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	if cfg.Feishu == nil || cfg.Feishu.URL == "" {
		return nil, fmt.Errorf("publisher %q missing feishu webhook url", cfg.ID)
	}

	timeout := cfg.Feishu.TimeoutSeconds
	if timeout <= 0 {
		timeout = httpDefaultTimeoutSeconds
	}

	return &feishuPublisher{
		id:     cfg.ID,
		url:    cfg.Feishu.URL,
		client: httpclient.NewRestyHTTPClient(time.Duration(timeout) * time.Second),
		log:    ensureLogger(log),
	}, nil
}

func (f *feishuPublisher) ID() string   { return f.id }
func (f *feishuPublisher) Type() string { return TypeFeishu }

// Publish sends the event text as a single text message. Any 2xx answer counts as delivered.
func (f *feishuPublisher) Publish(ctx context.Context, evt Event) error {
	resp, err := f.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(feishuMessage{MsgType: "text", Content: feishuText{Text: evt.Text}}).
		Post(f.url)
	if err != nil {
		return fmt.Errorf("feishu request: %w", err)
	}
	if !resp.IsSuccess() {
		return &StatusError{StatusCode: resp.StatusCode(), Body: readBodySnippet(resp.Body())}
	}

	var reply feishuReply
	if err := json.Unmarshal(resp.Body(), &reply); err == nil && reply.Code != 0 {
		f.log.WarnObj("feishu bot answered with non-zero code", "publisher_feishu_reply", map[string]any{
			"publisher_id": f.id,
			"code":         reply.Code,
			"msg":          reply.Msg,
		})
	}
	return nil
}
