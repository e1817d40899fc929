package database

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// NewFirebaseApp initialises the Firebase app used for messaging and for the
// Firestore user store. credentialsJSON wins over credentialsFile; with
// neither, Application Default Credentials are used.
func NewFirebaseApp(ctx context.Context, credentialsJSON []byte, credentialsFile string) (*firebase.App, error) {
	var opts []option.ClientOption
	switch {
	case len(credentialsJSON) > 0:
		opts = append(opts, option.WithCredentialsJSON(credentialsJSON))
	case credentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to init firebase app: %w", err)
	}
	return app, nil
}

func ConnectFirestore(ctx context.Context, app *firebase.App, logger *zap.Logger) (*firestore.Client, error) {
	if app == nil {
		return nil, fmt.Errorf("firebase app not initialised")
	}
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to init Firestore: %w", err)
	}
	logger.Info("Connected to Firestore")
	return client, nil
}

func CloseFirestore(client *firestore.Client) error {
	if client == nil {
		return nil
	}
	if err := client.Close(); err != nil {
		return fmt.Errorf("failed to close Firestore client: %w", err)
	}
	return nil
}
