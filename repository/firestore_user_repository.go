package repository

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/rayhandestian/quickbites/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreDocuments reads the fields of one document in a collection. A
// missing document is reported as a gRPC NotFound error, as Firestore does.
type FirestoreDocuments interface {
	Get(ctx context.Context, id string) (map[string]interface{}, error)
}

type firestoreCollection struct {
	ref *firestore.CollectionRef
}

func (c firestoreCollection) Get(ctx context.Context, id string) (map[string]interface{}, error) {
	snap, err := c.ref.Doc(id).Get(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Data(), nil
}

// FirestoreUserRepository reads users/{id} documents written by the mobile app.
type FirestoreUserRepository struct {
	docs FirestoreDocuments
}

func NewFirestoreUserRepository(client *firestore.Client, collection string) *FirestoreUserRepository {
	return NewFirestoreUserRepositoryWithDocs(firestoreCollection{ref: client.Collection(collection)})
}

func NewFirestoreUserRepositoryWithDocs(docs FirestoreDocuments) *FirestoreUserRepository {
	return &FirestoreUserRepository{docs: docs}
}

func (r *FirestoreUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	data, err := r.docs.Get(ctx, id)
	if status.Code(err) == codes.NotFound {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("firestore get user %s: %w", id, err)
	}

	user := &models.User{ID: id}
	// fcmToken may be absent or of another type; both mean no token.
	if token, ok := data["fcmToken"].(string); ok {
		user.FCMToken = token
	}
	return user, nil
}
