package hospitable

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// GetCustomer resolves the customer the access token belongs to. Used at
// connect time to pin the customer ID alongside the stored token.
func (c *Client) GetCustomer(ctx context.Context, token string) (*Customer, error) {
	var env customerEnvelope
	if err := c.doRequest(ctx, "GET", "/api/v1/customer", token, nil, &env); err != nil {
		return nil, fmt.Errorf("GetCustomer error: %w", err)
	}
	return &env.Data, nil
}

// ListCustomerListings pages through every listing of the customer.
func (c *Client) ListCustomerListings(ctx context.Context, token, customerID string) ([]Listing, error) {
	var all []Listing

	page := 1
	for {
		q := url.Values{}
		q.Set("page", strconv.Itoa(page))

		var resp listingsPage
		endpoint := fmt.Sprintf("/api/v1/customers/%s/listings", customerID)
		if err := c.doRequest(ctx, "GET", endpoint, token, q, &resp); err != nil {
			return nil, fmt.Errorf("ListCustomerListings error: %w", err)
		}
		all = append(all, resp.Data...)

		if resp.Meta.LastPage == 0 || page >= resp.Meta.LastPage {
			return all, nil
		}
		page++
	}
}
