package dtos

// HospitableConnectRequest carries the OAuth authorization code from the
// dashboard callback. The exchange happens server-side; client
// credentials never reach the browser.
type HospitableConnectRequest struct {
	Code        string `json:"code" validate:"required"`
	RedirectURI string `json:"redirect_uri,omitempty" validate:"omitempty,url"`
}

type HospitableConnectResponse struct {
	CustomerID   string `json:"customer_id"`
	CustomerName string `json:"customer_name"`
}

type HospitableSyncResponse struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Total   int `json:"total"`
}
