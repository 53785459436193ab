package util

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

const CloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

var readFile = os.ReadFile

// GoogleClientOptions returns client options for Google APIs. An empty path
// means Application Default Credentials.
func GoogleClientOptions(ctx context.Context, credentialsFile string, scopes ...string) ([]option.ClientOption, error) {
	if credentialsFile == "" {
		return nil, nil
	}

	data, err := readFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials file: %w", err)
	}

	if len(scopes) == 0 {
		scopes = []string{CloudPlatformScope}
	}

	creds, err := google.CredentialsFromJSON(ctx, data, scopes...)
	if err != nil {
		return nil, fmt.Errorf("parse credentials file: %w", err)
	}

	return []option.ClientOption{option.WithCredentials(creds)}, nil
}
