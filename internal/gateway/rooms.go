package gateway

import (
	"context"
	"encoding/json"
	"net/url"
)

// RoomsPath is the remote rooms collection.
const RoomsPath = "/rooms"

// ApprovedRooms fetches the rooms listed as approved into out.
func (c *Client) ApprovedRooms(ctx context.Context, out any) error {
	return c.FetchList(ctx, RoomsPath, url.Values{"status": {"approved"}}, out)
}

// CreateRoom submits a new room and decodes the stored version into out.
func (c *Client) CreateRoom(ctx context.Context, payload, out any) error {
	return c.Create(ctx, RoomsPath, payload, out)
}

func decodeJSON(body []byte, out any) error {
	return json.Unmarshal(body, out)
}
