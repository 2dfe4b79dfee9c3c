package movelog

import (
	"context"
	"time"

	"github.com/calvinmclean/babyapi"
)

// Move is a completed move as stored by the move log server
type Move struct {
	// include NilResource so we don't implement Render/Bind which are not needed
	*babyapi.NilResource

	ID        string        `json:"id,omitempty"`
	Direction string        `json:"direction"`
	Steps     int           `json:"steps"`
	StepDelay time.Duration `json:"step_delay"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

func (m Move) GetID() string {
	return m.ID
}

// Client records moves on a babyapi server that serves a /moves resource
type Client struct {
	client *babyapi.Client[*Move]
}

func NewClient(addr string) *Client {
	client := babyapi.NewClient[*Move](addr, "/moves")
	return &Client{client: client}
}

// RecordMove posts the move and returns the ID assigned by the server
func (c *Client) RecordMove(ctx context.Context, m Move) (string, error) {
	resp, err := c.client.Post(ctx, &m)
	if err != nil {
		return "", err
	}

	return resp.Data.GetID(), nil
}
