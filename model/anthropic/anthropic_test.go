package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/hupe1980/litertlm/conversation"
	"github.com/hupe1980/litertlm/model"
)

func TestCompleter_Complete(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/messages") {
			http.NotFound(w, r)
			return
		}
		var sb bytes.Buffer
		_, _ = sb.ReadFrom(r.Body)
		body = sb.String()

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":          "msg_1",
			"type":        "message",
			"role":        "assistant",
			"model":       "claude-test",
			"stop_reason": "end_turn",
			"content": []map[string]any{
				{"type": "text", "text": "Hello "},
				{"type": "text", "text": "there"},
			},
			"usage": map[string]any{"input_tokens": 1, "output_tokens": 2},
		})
	}))
	defer srv.Close()

	c := NewCompleter(func(o *Options) {
		o.Model = "claude-test"
		o.APIKey = "test"
		o.BaseURL = srv.URL
		o.RequestOptions = []option.RequestOption{option.WithMaxRetries(0)}
	})

	out, err := c.Complete(context.Background(), model.Request{
		Instructions: "sys",
		Turns: []conversation.Turn{
			{Role: conversation.RoleUser, Text: "hi"},
			{Role: conversation.RoleModel, Text: ""},
			{Role: conversation.RoleModel, Text: "hello"},
			{Role: conversation.RoleTool, Name: "ping", Text: "<start_function_response>response:ping{}<end_function_response>"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello there", out)

	assert.Equal(t, "claude-test", gjson.Get(body, "model").String())
	assert.Equal(t, "sys", gjson.Get(body, "system.0.text").String())
	msgs := gjson.Get(body, "messages").Array()
	require.Len(t, msgs, 3)
	assert.Equal(t, "user", msgs[0].Get("role").String())
	assert.Equal(t, "assistant", msgs[1].Get("role").String())
	assert.Equal(t, "user", msgs[2].Get("role").String())

	assert.Equal(t, model.Info{Name: "claude-test", Provider: "anthropic", SupportsTools: true}, c.Info())
}
