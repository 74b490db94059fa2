package firestorerepos

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/campuslink/campuslink/core"
)

// Collections
const (
	EventCollection       = "Works"
	FavoriteCollection    = "userfav"
	ApplicationCollection = "applications"
)

// Open connects to the project's Firestore database.
// Without a credentials file, Application Default Credentials are used.
func Open(ctx context.Context, conf core.DatabaseConfig) (*firestore.Client, error) {
	if conf.ProjectID == "" {
		return nil, errors.New("firestore project ID not configured")
	}
	var opts []option.ClientOption
	if conf.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(conf.CredentialsFile))
	}
	client, err := firestore.NewClient(ctx, conf.ProjectID, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "creating firestore client")
	}
	return client, nil
}

func isNotFound(err error) bool      { return status.Code(err) == codes.NotFound }
func isAlreadyExists(err error) bool { return status.Code(err) == codes.AlreadyExists }

func checkInValues(values []string) error {
	if len(values) > core.MaxInQueryValues {
		return core.ErrTooManyValues
	}
	return nil
}
