package rabbitmq

import (
	"encoding/json"
	"errors"
	"strings"
)

// IngestMessage is one message queued for asynchronous ingestion.
type IngestMessage struct {
	UserName string `json:"user_name"`
	Message  string `json:"message"`
	BatchID  string `json:"batch_id,omitempty"`
}

var ErrBadMessage = errors.New("malformed ingest message")

func DecodeIngest(body []byte) (IngestMessage, error) {
	var m IngestMessage
	if err := json.Unmarshal(body, &m); err != nil {
		return IngestMessage{}, errors.Join(ErrBadMessage, err)
	}
	if strings.TrimSpace(m.UserName) == "" || m.Message == "" {
		return IngestMessage{}, ErrBadMessage
	}
	return m, nil
}
