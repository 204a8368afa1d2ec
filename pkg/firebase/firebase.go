package firebase

import (
	"context"
	"fmt"

	"distress-service/config"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

func SetUpFireBase(ctx context.Context, cfg *config.Config) (*firebase.App, *messaging.Client, error) {
	var fbCfg *firebase.Config
	if cfg.FirebaseProjectID != "" {
		fbCfg = &firebase.Config{ProjectID: cfg.FirebaseProjectID}
	}

	app, err := firebase.NewApp(ctx, fbCfg, option.WithCredentialsFile(cfg.FirebaseCredentials))
	if err != nil {
		return nil, nil, fmt.Errorf("error initializing firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("error getting messaging client: %w", err)
	}

	return app, client, nil
}
