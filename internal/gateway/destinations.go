package gateway

import (
	"context"
	"net/http"

	"github.com/nfrund/voyage/internal/domain"
)

// CreateDestinationRequest is the wire shape for creating a record. The
// caller computes TotalBudget from the expense breakdown before sending.
type CreateDestinationRequest struct {
	Name        string          `json:"name"`
	PlannedDate string          `json:"plannedDate"`
	TotalBudget float64         `json:"totalBudget"`
	Visited     bool            `json:"visited"`
	Expenses    domain.Expenses `json:"expenses"`
}

// ListDestinations fetches the full collection for the signed-in user.
func (c *Client) ListDestinations(ctx context.Context) ([]domain.Destination, error) {
	var list []domain.Destination
	if err := c.do(ctx, http.MethodGet, "/destinations", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// CreateDestination persists a new record and returns it with the
// server-assigned id.
func (c *Client) CreateDestination(ctx context.Context, req CreateDestinationRequest) (domain.Destination, error) {
	var created domain.Destination
	if err := c.do(ctx, http.MethodPost, "/destinations", req, &created); err != nil {
		return domain.Destination{}, err
	}
	return created, nil
}

// UpdateDestination applies a partial update and returns the server's
// representation of the record.
func (c *Client) UpdateDestination(ctx context.Context, id string, patch domain.DestinationPatch) (domain.Destination, error) {
	var updated domain.Destination
	if err := c.do(ctx, http.MethodPut, "/destinations/"+id, patch, &updated); err != nil {
		return domain.Destination{}, err
	}
	return updated, nil
}

// DeleteDestination removes a record.
func (c *Client) DeleteDestination(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/destinations/"+id, nil, nil)
}
