package remote

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Envelope 后端统一响应：{ success, message?, <payload key> }
type Envelope struct {
	Success *bool
	Message string
	Fields  map[string]json.RawMessage
}

// OK 缺少 success 字段时视为成功（support/getQueries 只有 data）
func (e *Envelope) OK() bool { return e.Success == nil || *e.Success }

// Has 判断 payload 键存在且不为 null
func (e *Envelope) Has(key string) bool {
	raw, ok := e.Fields[key]
	return ok && !bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func (e *Envelope) Decode(key string, out any) error {
	raw, ok := e.Fields[key]
	if !ok {
		return fmt.Errorf("response has no %q field", key)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %q: %w", key, err)
	}
	return nil
}

func parseEnvelope(body []byte) (*Envelope, error) {
	env := &Envelope{Fields: map[string]json.RawMessage{}}
	if len(bytes.TrimSpace(body)) == 0 {
		return env, nil
	}
	if err := json.Unmarshal(body, &env.Fields); err != nil {
		return nil, err
	}
	if raw, ok := env.Fields["success"]; ok {
		var b bool
		if err := json.Unmarshal(raw, &b); err == nil {
			env.Success = &b
		}
	}
	if raw, ok := env.Fields["message"]; ok {
		_ = json.Unmarshal(raw, &env.Message)
	}
	return env, nil
}
