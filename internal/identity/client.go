package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	id "luckydraw/pkg/domain"
	"luckydraw/pkg/platform/sentinel"
)

// HTTPResolver resolves emails against the identity service's lookup
// endpoint: GET {base}/users/lookup?email=...
type HTTPResolver struct {
	baseURL string
	client  *http.Client
}

func NewHTTPResolver(baseURL string) *HTTPResolver {
	return &HTTPResolver{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

func (r *HTTPResolver) ResolveEmail(ctx context.Context, email string) (id.UserID, error) {
	u := fmt.Sprintf("%s/users/lookup?email=%s", r.baseURL, url.QueryEscape(email))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return id.UserID{}, fmt.Errorf("build identity lookup request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return id.UserID{}, fmt.Errorf("identity lookup: %w", sentinel.ErrUnavailable)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return id.UserID{}, sentinel.ErrNotFound
	default:
		return id.UserID{}, fmt.Errorf("identity lookup status %d: %w", resp.StatusCode, sentinel.ErrUnavailable)
	}

	var body struct {
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return id.UserID{}, fmt.Errorf("decode identity lookup response: %w", err)
	}
	userID, err := id.ParseUserID(body.UserID)
	if err != nil {
		return id.UserID{}, fmt.Errorf("identity lookup returned invalid user id: %w", err)
	}
	return userID, nil
}

// StaticResolver serves lookups from a fixed map. Used in tests and
// single-node development without the identity service.
type StaticResolver struct {
	byEmail map[string]id.UserID
}

func NewStaticResolver(byEmail map[string]id.UserID) *StaticResolver {
	if byEmail == nil {
		byEmail = make(map[string]id.UserID)
	}
	return &StaticResolver{byEmail: byEmail}
}

func (r *StaticResolver) ResolveEmail(_ context.Context, email string) (id.UserID, error) {
	userID, ok := r.byEmail[email]
	if !ok {
		return id.UserID{}, sentinel.ErrNotFound
	}
	return userID, nil
}

// Add registers a mapping; test convenience.
func (r *StaticResolver) Add(email string, userID id.UserID) {
	r.byEmail[email] = userID
}
