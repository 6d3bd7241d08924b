package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/spec-kit/workforce-service/internal/domain"
	"github.com/spec-kit/workforce-service/internal/repository"
	apperrors "github.com/spec-kit/workforce-service/pkg/util"
)

type taskRepository struct {
	coll *mongo.Collection
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	assignedBy, err := refID(task.AssignedBy)
	if err != nil {
		return err
	}
	assignedTo, err := refIDs(task.AssignedTo)
	if err != nil {
		return err
	}
	if len(assignedTo) == 0 {
		return apperrors.ErrInvalid
	}
	now := utcNow()
	doc := taskDocument{
		ID:          primitive.NewObjectID(),
		Title:       task.Title,
		Description: task.Description,
		AssignedBy:  assignedBy,
		AssignedTo:  assignedTo,
		Status:      string(task.Status),
		Priority:    string(task.Priority),
		StartDate:   task.StartDate,
		DueDate:     task.DueDate,
		Remarks:     task.Remarks,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return mapMongoError(err)
	}
	task.ID = doc.ID.Hex()
	task.CreatedAt, task.UpdatedAt = now, now
	return nil
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	oid, err := lookupID(task.ID)
	if err != nil {
		return err
	}
	assignedTo, err := refIDs(task.AssignedTo)
	if err != nil {
		return err
	}
	if len(assignedTo) == 0 {
		return apperrors.ErrInvalid
	}
	reviewedBy, err := optionalRef(task.ReviewedBy)
	if err != nil {
		return err
	}
	now := utcNow()
	set := bson.M{
		"title":        task.Title,
		"description":  task.Description,
		"assigned_to":  assignedTo,
		"status":       string(task.Status),
		"priority":     string(task.Priority),
		"start_date":   task.StartDate,
		"due_date":     task.DueDate,
		"completed_at": task.CompletedAt,
		"reviewed_by":  reviewedBy,
		"remarks":      task.Remarks,
		"updated_at":   now,
	}
	res, err := r.coll.UpdateByID(ctx, oid, bson.M{"$set": set})
	if err != nil {
		return mapMongoError(err)
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrNotFound
	}
	task.UpdatedAt = now
	return nil
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	oid, err := lookupID(id)
	if err != nil {
		return nil, err
	}
	var doc taskDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, mapMongoError(err)
	}
	task := doc.toDomain()
	return &task, nil
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	query := bson.M{}
	if filter.AssignedBy != "" {
		query["assigned_by"] = bson.M{"$in": filterIDs([]string{filter.AssignedBy})}
	}
	if filter.Assignee != "" {
		query["assigned_to"] = bson.M{"$in": filterIDs([]string{filter.Assignee})}
	}
	if filter.Status != "" {
		query["status"] = string(filter.Status)
	}
	if filter.Priority != "" {
		query["priority"] = string(filter.Priority)
	}
	if v := filter.Visible; v != nil {
		or := bson.A{bson.M{"assigned_to": bson.M{"$in": filterIDs(v.Assignees)}}}
		if v.AssignedBy != "" {
			or = append(or, bson.M{"assigned_by": bson.M{"$in": filterIDs([]string{v.AssignedBy})}})
		}
		query["$or"] = or
	}

	cur, err := r.coll.Find(ctx, query, findOptions(filter.Limit, filter.Offset, "created_at", -1))
	if err != nil {
		return nil, mapMongoError(err)
	}
	defer cur.Close(ctx)

	var tasks []domain.Task
	for cur.Next(ctx) {
		var doc taskDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		tasks = append(tasks, doc.toDomain())
	}
	return tasks, mapMongoError(cur.Err())
}

type ticketRepository struct {
	coll *mongo.Collection
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	createdBy, err := refID(ticket.CreatedBy)
	if err != nil {
		return err
	}
	assignee, err := optionalRef(ticket.AssignedTo)
	if err != nil {
		return err
	}
	now := utcNow()
	doc := ticketDocument{
		ID:          primitive.NewObjectID(),
		CreatedBy:   createdBy,
		AssignedTo:  assignee,
		Title:       ticket.Title,
		Description: ticket.Description,
		Status:      string(ticket.Status),
		Priority:    string(ticket.Priority),
		Comments:    []commentDocument{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return mapMongoError(err)
	}
	ticket.ID = doc.ID.Hex()
	ticket.CreatedAt, ticket.UpdatedAt = now, now
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	oid, err := lookupID(id)
	if err != nil {
		return nil, err
	}
	var doc ticketDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, mapMongoError(err)
	}
	return doc.toDomain(), nil
}

func (r *ticketRepository) List(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = string(filter.Status)
	}
	if filter.Priority != "" {
		query["priority"] = string(filter.Priority)
	}
	if filter.Parties != nil {
		parties := filterIDs(filter.Parties)
		query["$or"] = bson.A{
			bson.M{"created_by": bson.M{"$in": parties}},
			bson.M{"assigned_to": bson.M{"$in": parties}},
		}
	}

	cur, err := r.coll.Find(ctx, query, findOptions(filter.Limit, filter.Offset, "created_at", -1))
	if err != nil {
		return nil, mapMongoError(err)
	}
	defer cur.Close(ctx)

	var tickets []domain.Ticket
	for cur.Next(ctx) {
		var doc ticketDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		tickets = append(tickets, *doc.toDomain())
	}
	return tickets, mapMongoError(cur.Err())
}

func (r *ticketRepository) Assign(ctx context.Context, id, assigneeID string, at time.Time) (*domain.Ticket, error) {
	oid, err := lookupID(id)
	if err != nil {
		return nil, err
	}
	assignee, err := refID(assigneeID)
	if err != nil {
		return nil, err
	}
	update := bson.M{"$set": bson.M{"assigned_to": assignee, "updated_at": at}}
	return r.findOneAndUpdate(ctx, oid, update)
}

// AppendComment pushes onto the embedded thread; $push keeps the order of
// concurrent appends as the server applies them.
func (r *ticketRepository) AppendComment(ctx context.Context, comment *domain.TicketComment) (*domain.Ticket, error) {
	oid, err := lookupID(comment.TicketID)
	if err != nil {
		return nil, err
	}
	author, err := refID(comment.AuthorID)
	if err != nil {
		return nil, err
	}
	doc := commentDocument{
		ID:        primitive.NewObjectID(),
		Author:    author,
		Text:      comment.Text,
		CreatedAt: comment.CreatedAt,
	}
	update := bson.M{
		"$push": bson.M{"comments": doc},
		"$set":  bson.M{"updated_at": comment.CreatedAt},
	}
	ticket, err := r.findOneAndUpdate(ctx, oid, update)
	if err != nil {
		return nil, err
	}
	comment.ID = doc.ID.Hex()
	return ticket, nil
}

func (r *ticketRepository) findOneAndUpdate(ctx context.Context, oid primitive.ObjectID, update bson.M) (*domain.Ticket, error) {
	var doc ticketDocument
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, returnAfter()).Decode(&doc); err != nil {
		return nil, mapMongoError(err)
	}
	return doc.toDomain(), nil
}
