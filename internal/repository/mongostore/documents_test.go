package mongostore

import (
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	apperrors "github.com/spec-kit/workforce-service/pkg/util"
)

func TestUserDocumentRoundTripKeepsTokenPair(t *testing.T) {
	manager := primitive.NewObjectID()
	token := "abc"
	expires := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	doc := userDocument{
		ID:                       primitive.NewObjectID(),
		Name:                     "Ana",
		Email:                    "ana@example.com",
		Role:                     "developer",
		Manager:                  &manager,
		ResetPasswordToken:       &token,
		ResetPasswordExpires:     &expires,
		EmailVerificationToken:   nil,
		EmailVerificationExpires: nil,
	}

	raw, err := bson.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded userDocument
	if err := bson.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	user := decoded.toDomain()
	if user.Manager() != manager.Hex() {
		t.Fatalf("manager = %q, want %q", user.Manager(), manager.Hex())
	}
	if user.ResetPasswordToken == nil || user.ResetPasswordExpires == nil || !user.ResetPasswordExpires.Equal(expires) {
		t.Fatalf("reset pair lost: %+v", user)
	}
	if user.EmailVerificationToken != nil || user.EmailVerificationExpires != nil {
		t.Fatalf("verification pair should stay empty")
	}
	if _, present := bson.Raw(raw).Lookup("email_verification_token").StringValueOK(); present {
		t.Fatalf("empty token must be omitted from the document")
	}
}

func TestIDParsing(t *testing.T) {
	if _, err := lookupID("not-an-id"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("lookupID malformed: got %v", err)
	}
	if _, err := refID("not-an-id"); !errors.Is(err, apperrors.ErrInvalid) {
		t.Fatalf("refID malformed: got %v", err)
	}
	good := primitive.NewObjectID().Hex()
	if got := filterIDs([]string{"bad", good}); len(got) != 1 || got[0].Hex() != good {
		t.Fatalf("filterIDs = %v", got)
	}
	if ref, err := optionalRef(nil); err != nil || ref != nil {
		t.Fatalf("optionalRef(nil) = %v, %v", ref, err)
	}
}
