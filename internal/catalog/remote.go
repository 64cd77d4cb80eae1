package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/kidspark/kidspark-engine/internal/model"
)

// RemoteSource fetches the catalog from the activity CMS over HTTP.
type RemoteSource struct {
	client *resty.Client
}

// NewRemoteSource creates a remote catalog source against baseURL.
func NewRemoteSource(baseURL string) *RemoteSource {
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(30 * time.Second)
	return &RemoteSource{client: c}
}

type activitiesResponse struct {
	Activities []model.Activity `json:"activities"`
}

// GetAll fetches the full catalog snapshot.
func (r *RemoteSource) GetAll(ctx context.Context) ([]model.Activity, error) {
	resp, err := r.client.R().SetContext(ctx).Get("/api/activities")
	if err != nil {
		return nil, fmt.Errorf("catalog request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("catalog status %d: %s", resp.StatusCode(), resp.String())
	}
	var out activitiesResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("catalog decode: %w", err)
	}
	return out.Activities, nil
}

// HealthPing implements health.HealthPinger against the CMS health route.
func (r *RemoteSource) HealthPing(ctx context.Context) error {
	resp, err := r.client.R().SetContext(ctx).Get("/api/health")
	if err != nil {
		return err
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("catalog health status %d", resp.StatusCode())
	}
	return nil
}
