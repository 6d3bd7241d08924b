package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/spec-kit/workforce-service/internal/domain"
	"github.com/spec-kit/workforce-service/internal/repository"
	apperrors "github.com/spec-kit/workforce-service/pkg/util"
)

type userRepository struct {
	coll *mongo.Collection
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	manager, err := optionalRef(user.ManagerID)
	if err != nil {
		return err
	}
	now := utcNow()
	doc := userDocument{
		Name:                     user.Name,
		Email:                    domain.NormalizeEmail(user.Email),
		PasswordHash:             user.PasswordHash,
		Role:                     string(user.Role),
		Manager:                  manager,
		MobileNumber:             user.MobileNumber,
		CompanyEmail:             user.CompanyEmail,
		PersonalEmail:            user.PersonalEmail,
		Department:               user.Department,
		JobDescription:           user.JobDescription,
		ProfileImage:             user.ProfileImage,
		IsVerified:               user.IsVerified,
		EmailVerificationToken:   user.EmailVerificationToken,
		EmailVerificationExpires: user.EmailVerificationExpires,
		CreatedAt:                now,
		UpdatedAt:                now,
	}
	doc.ID = primitive.NewObjectID()
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return mapMongoError(err)
	}
	user.ID = doc.ID.Hex()
	user.Email = doc.Email
	user.CreatedAt, user.UpdatedAt = now, now
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	oid, err := lookupID(user.ID)
	if err != nil {
		return err
	}
	manager, err := optionalRef(user.ManagerID)
	if err != nil {
		return err
	}
	now := utcNow()
	set := bson.M{
		"name":            user.Name,
		"email":           domain.NormalizeEmail(user.Email),
		"role":            string(user.Role),
		"mobile_number":   user.MobileNumber,
		"company_email":   user.CompanyEmail,
		"personal_email":  user.PersonalEmail,
		"department":      user.Department,
		"job_description": user.JobDescription,
		"profile_image":   user.ProfileImage,
		"updated_at":      now,
	}
	update := bson.M{"$set": set}
	if manager != nil {
		set["manager"] = manager
	} else {
		update["$unset"] = bson.M{"manager": ""}
	}
	res, err := r.coll.UpdateByID(ctx, oid, update)
	if err != nil {
		return mapMongoError(err)
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrNotFound
	}
	user.UpdatedAt = now
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	oid, err := lookupID(id)
	if err != nil {
		return err
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return mapMongoError(err)
	}
	if res.DeletedCount == 0 {
		return apperrors.ErrNotFound
	}
	_, err = r.coll.UpdateMany(ctx, bson.M{"manager": oid}, bson.M{"$unset": bson.M{"manager": ""}})
	return mapMongoError(err)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := lookupID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": domain.NormalizeEmail(email)})
}

func (r *userRepository) GetByIDs(ctx context.Context, ids []string) ([]domain.User, error) {
	oids := filterIDs(ids)
	if len(oids) == 0 {
		return nil, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": oids}}, findOptions(0, 0, "created_at", 1))
}

func (r *userRepository) List(ctx context.Context, filter repository.UserFilter) ([]domain.User, error) {
	query := bson.M{}
	if filter.Role != "" {
		query["role"] = string(filter.Role)
	}
	if filter.ManagerID != "" {
		query["manager"] = bson.M{"$in": filterIDs([]string{filter.ManagerID})}
	}
	return r.find(ctx, query, findOptions(filter.Limit, filter.Offset, "created_at", -1))
}

func (r *userRepository) ListByManager(ctx context.Context, managerID string) ([]domain.User, error) {
	oid, err := lookupID(managerID)
	if err != nil {
		return nil, nil
	}
	return r.find(ctx, bson.M{"manager": oid}, findOptions(0, 0, "created_at", 1))
}

func (r *userRepository) SetVerificationToken(ctx context.Context, id, hash string, expires time.Time) error {
	return r.setFields(ctx, id, bson.M{"email_verification_token": hash, "email_verification_expires": expires})
}

func (r *userRepository) SetResetToken(ctx context.Context, id, hash string, expires time.Time) error {
	return r.setFields(ctx, id, bson.M{"reset_password_token": hash, "reset_password_expires": expires})
}

func (r *userRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.setFields(ctx, id, bson.M{"last_login_at": at})
}

func (r *userRepository) ConsumeVerificationToken(ctx context.Context, hash string, now time.Time) (*domain.User, error) {
	filter := bson.M{
		"email_verification_token":   hash,
		"email_verification_expires": bson.M{"$gt": now},
	}
	update := bson.M{
		"$set":   bson.M{"is_verified": true, "updated_at": utcNow()},
		"$unset": bson.M{"email_verification_token": "", "email_verification_expires": ""},
	}
	return r.findOneAndUpdate(ctx, filter, update)
}

func (r *userRepository) FindByResetToken(ctx context.Context, hash string, now time.Time) (*domain.User, error) {
	return r.findOne(ctx, bson.M{
		"reset_password_token":   hash,
		"reset_password_expires": bson.M{"$gt": now},
	})
}

func (r *userRepository) ConsumeResetToken(ctx context.Context, hash string, now time.Time, passwordHash string) (*domain.User, error) {
	filter := bson.M{
		"reset_password_token":   hash,
		"reset_password_expires": bson.M{"$gt": now},
	}
	update := bson.M{
		"$set":   bson.M{"password_hash": passwordHash, "updated_at": utcNow()},
		"$unset": bson.M{"reset_password_token": "", "reset_password_expires": ""},
	}
	return r.findOneAndUpdate(ctx, filter, update)
}

func (r *userRepository) setFields(ctx context.Context, id string, fields bson.M) error {
	oid, err := lookupID(id)
	if err != nil {
		return err
	}
	fields["updated_at"] = utcNow()
	res, err := r.coll.UpdateByID(ctx, oid, bson.M{"$set": fields})
	if err != nil {
		return mapMongoError(err)
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *userRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, mapMongoError(err)
	}
	return doc.toDomain(), nil
}

func (r *userRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*domain.User, error) {
	var doc userDocument
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, returnAfter()).Decode(&doc); err != nil {
		return nil, mapMongoError(err)
	}
	return doc.toDomain(), nil
}

func (r *userRepository) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]domain.User, error) {
	cur, err := r.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, mapMongoError(err)
	}
	defer cur.Close(ctx)

	var users []domain.User
	for cur.Next(ctx) {
		var doc userDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		users = append(users, *doc.toDomain())
	}
	return users, mapMongoError(cur.Err())
}
