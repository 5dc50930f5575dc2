package types

// ProvidersResponse is the body of GET /api/chat/providers.
type ProvidersResponse struct {
	Providers []string `json:"providers"`
}

// NewProvidersResponse lists ids in the order given.
func NewProvidersResponse[T ~string](ids []T) *ProvidersResponse {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return &ProvidersResponse{Providers: out}
}
