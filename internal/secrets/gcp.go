// internal/secrets/gcp.go
//
// Google Secret Manager store.
//
// Context
// -------
// Secrets are addressed as
//
//	projects/{projectId}/secrets/{secretId}/versions/latest
//
// and fetched through the Secret Manager REST surface
// (google.golang.org/api/secretmanager/v1).  The payload comes back
// base64-encoded; Access decodes it before returning.
//
// Environment expectations
// ------------------------
//   - Application Default Credentials (metadata server on Cloud Run, or
//     GOOGLE_APPLICATION_CREDENTIALS locally).
package secrets

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	secretmanager "google.golang.org/api/secretmanager/v1"
)

// GCPStore reads secrets from one Google Cloud project.
type GCPStore struct {
	svc     *secretmanager.Service
	project string
}

// NewGCPStore builds the REST client.  A project id is mandatory because
// every secret name is scoped to it.
func NewGCPStore(ctx context.Context, project string, opts ...option.ClientOption) (*GCPStore, error) {
	if project == "" {
		return nil, errors.New("secret manager: google cloud project id is required")
	}

	svc, err := secretmanager.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("secret manager client: %w", err)
	}
	return &GCPStore{svc: svc, project: project}, nil
}

// VersionName returns the resource name of the latest version of id.
func VersionName(project, id string) string {
	return fmt.Sprintf("projects/%s/secrets/%s/versions/latest", project, id)
}

// Access fetches and decodes the latest version of id.
func (s *GCPStore) Access(ctx context.Context, id string) (string, error) {
	name := VersionName(s.project, id)

	resp, err := s.svc.Projects.Secrets.Versions.Access(name).Context(ctx).Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == http.StatusNotFound {
			return "", fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		return "", fmt.Errorf("access %s: %w", name, err)
	}
	if resp.Payload == nil {
		return "", fmt.Errorf("%s: %w", name, ErrEmptyPayload)
	}

	raw, err := base64.StdEncoding.DecodeString(resp.Payload.Data)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", name, err)
	}
	return string(raw), nil
}
