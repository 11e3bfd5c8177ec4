// Package firebaseapp builds the Firebase Admin app shared by the Firestore
// store, the Auth verifier and the FCM push provider.
package firebaseapp

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	"habitTrackerAPI/internal/logger"
)

type Credentials struct {
	ProjectID string
	// ServiceAccountJSON is the base64 encoded service account key.
	ServiceAccountJSON string
	CredentialsFile    string
}

// ClientOptions resolves credentials: the base64 key first, then the key file.
// With neither, Application Default Credentials (or the emulators) are used.
func ClientOptions(c Credentials) ([]option.ClientOption, error) {
	if c.ServiceAccountJSON != "" {
		decoded, err := base64.StdEncoding.DecodeString(c.ServiceAccountJSON)
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64 firebase credentials: %w", err)
		}
		logger.Info("firebase: using credentials from FIREBASE_SERVICE_ACCOUNT_JSON")
		return []option.ClientOption{option.WithCredentialsJSON(decoded)}, nil
	}

	if c.CredentialsFile != "" {
		if _, err := os.Stat(c.CredentialsFile); err != nil {
			return nil, fmt.Errorf("firebase credentials file %s: %w", c.CredentialsFile, err)
		}
		logger.Info("firebase: using credentials file", "path", c.CredentialsFile)
		return []option.ClientOption{option.WithCredentialsFile(c.CredentialsFile)}, nil
	}

	logger.Info("firebase: using application default credentials")
	return nil, nil
}

func New(ctx context.Context, c Credentials) (*firebase.App, error) {
	opts, err := ClientOptions(c)
	if err != nil {
		return nil, err
	}

	var conf *firebase.Config
	if c.ProjectID != "" {
		conf = &firebase.Config{ProjectID: c.ProjectID}
	}

	app, err := firebase.NewApp(ctx, conf, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}
	return app, nil
}
