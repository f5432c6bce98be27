package graph

import (
	"context"
	"fmt"

	"github.com/aistudio/agentd/pkg/llm"
)

// scriptedClient returns canned responses and records the requests it saw.
// Stream delivers the response content through onDelta in two chunks.
type scriptedClient struct {
	completeResponses []*llm.Response
	streamResponses   []*llm.Response

	completeRequests []llm.Request
	streamRequests   []llm.Request
}

func (c *scriptedClient) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	c.completeRequests = append(c.completeRequests, req)
	if len(c.completeResponses) == 0 {
		return nil, fmt.Errorf("unexpected Complete call")
	}
	resp := c.completeResponses[0]
	c.completeResponses = c.completeResponses[1:]
	return resp, nil
}

func (c *scriptedClient) Stream(ctx context.Context, req llm.Request, onDelta func(string) error) (*llm.Response, error) {
	c.streamRequests = append(c.streamRequests, req)
	if len(c.streamResponses) == 0 {
		return nil, fmt.Errorf("unexpected Stream call")
	}
	resp := c.streamResponses[0]
	c.streamResponses = c.streamResponses[1:]

	content := resp.Content
	if content != "" {
		mid := len(content) / 2
		for _, chunk := range []string{content[:mid], content[mid:]} {
			if chunk == "" {
				continue
			}
			if err := onDelta(chunk); err != nil {
				return nil, err
			}
		}
	}
	return resp, nil
}

// fakeTools records executions and returns fixed outputs.
type fakeTools struct {
	outputs map[string]string
	errs    map[string]error
	calls   []string
}

func newFakeTools() *fakeTools {
	return &fakeTools{
		outputs: make(map[string]string),
		errs:    make(map[string]error),
	}
}

func (f *fakeTools) Execute(ctx context.Context, name string, args map[string]interface{}) (string, error) {
	f.calls = append(f.calls, name)
	if err, ok := f.errs[name]; ok {
		return "", err
	}
	if out, ok := f.outputs[name]; ok {
		return out, nil
	}
	return "", fmt.Errorf("unknown tool: %s", name)
}

func (f *fakeTools) Specs() []llm.ToolSpec {
	specs := make([]llm.ToolSpec, 0, len(f.outputs))
	for name := range f.outputs {
		specs = append(specs, llm.ToolSpec{
			Name:        name,
			InputSchema: map[string]interface{}{"type": "object"},
		})
	}
	return specs
}

// collector gathers emitted events.
type collector struct {
	events []Event
	failAt func(Event) error
}

func (c *collector) emit(ev Event) error {
	if c.failAt != nil {
		if err := c.failAt(ev); err != nil {
			return err
		}
	}
	c.events = append(c.events, ev)
	return nil
}

func (c *collector) types() []EventType {
	out := make([]EventType, len(c.events))
	for i, ev := range c.events {
		out[i] = ev.Type
	}
	return out
}

func (c *collector) tokens() string {
	var s string
	for _, ev := range c.events {
		if ev.Type == EventToken {
			s += ev.Token
		}
	}
	return s
}
