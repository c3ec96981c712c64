package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/RameshMYatnalli/new-claimsat/internal/models"
)

// Collection names.
const (
	CollectionDisasters      = "disasters"
	CollectionClaims         = "claims"
	CollectionClaimEvents    = "claim_events"
	CollectionMissingPersons = "missing_persons"
	CollectionSurvivors      = "survivors"
	CollectionMatches        = "reunify_matches"
)

const connectTimeout = 10 * time.Second

// MongoStorage implements Storage on MongoDB. Documents use the same field
// names as the JSON API.
type MongoStorage struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongoStorage connects to uri, pings the server, and ensures indexes on database.
func NewMongoStorage(ctx context.Context, uri, database string) (*MongoStorage, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	s := &MongoStorage{client: client, db: client.Database(database)}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}
	return s, nil
}

func (s *MongoStorage) ensureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	indexes := map[string][]mongo.IndexModel{
		CollectionDisasters: {
			{Keys: bson.D{{Key: "disaster_id", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "status", Value: 1}}},
		},
		CollectionClaims: {
			{Keys: bson.D{{Key: "claim_id", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		CollectionClaimEvents: {
			{Keys: bson.D{{Key: "claim_id", Value: 1}, {Key: "timestamp", Value: 1}}},
		},
		CollectionMissingPersons: {
			{Keys: bson.D{{Key: "person_id", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "disaster_id", Value: 1}, {Key: "status", Value: 1}}},
		},
		CollectionSurvivors: {
			{Keys: bson.D{{Key: "survivor_id", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "disaster_id", Value: 1}, {Key: "status", Value: 1}}},
		},
		CollectionMatches: {
			{Keys: bson.D{{Key: "match_id", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "missing_person_id", Value: 1}, {Key: "survivor_id", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "confidence_score", Value: -1}}},
		},
	}
	for name, idx := range indexes {
		if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func (s *MongoStorage) coll(name string) *mongo.Collection {
	return s.db.Collection(name)
}

func findOne[T any](ctx context.Context, c *mongo.Collection, filter bson.M, kind, id string) (*T, error) {
	var v T
	err := c.FindOne(ctx, filter).Decode(&v)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: %s %s", ErrNotFound, kind, id)
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func findAll[T any](ctx context.Context, c *mongo.Collection, filter bson.M, opts *options.FindOptions) ([]*T, error) {
	cur, err := c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*T
	for cur.Next(ctx) {
		var v T
		if err := cur.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, &v)
	}
	return out, cur.Err()
}

func insert(ctx context.Context, c *mongo.Collection, doc any, kind, id string) error {
	_, err := c.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %s %s", ErrConflict, kind, id)
	}
	return err
}

func update(ctx context.Context, c *mongo.Collection, filter, change bson.M, kind, id string) error {
	res, err := c.UpdateOne(ctx, filter, change)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: %s %s", ErrNotFound, kind, id)
	}
	return nil
}

func withLimit(opts *options.FindOptions, limit int) *options.FindOptions {
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return opts
}

// CreateDisaster inserts a disaster. An existing id yields ErrConflict.
func (s *MongoStorage) CreateDisaster(ctx context.Context, d *models.Disaster) error {
	return insert(ctx, s.coll(CollectionDisasters), d, "disaster", d.ID)
}

// SaveDisaster inserts or replaces a disaster.
func (s *MongoStorage) SaveDisaster(ctx context.Context, d *models.Disaster) error {
	_, err := s.coll(CollectionDisasters).ReplaceOne(ctx,
		bson.M{"disaster_id": d.ID}, d, options.Replace().SetUpsert(true))
	return err
}

// GetDisaster returns a disaster by ID.
func (s *MongoStorage) GetDisaster(ctx context.Context, id string) (*models.Disaster, error) {
	return findOne[models.Disaster](ctx, s.coll(CollectionDisasters), bson.M{"disaster_id": id}, "disaster", id)
}

// ListDisasters returns disasters ordered by id.
func (s *MongoStorage) ListDisasters(ctx context.Context, filter models.DisasterFilter) ([]*models.Disaster, error) {
	q := bson.M{}
	if filter.Status != "" {
		q["status"] = filter.Status
	}
	return findAll[models.Disaster](ctx, s.coll(CollectionDisasters), q,
		options.Find().SetSort(bson.D{{Key: "disaster_id", Value: 1}}))
}

// CreateClaim inserts a claim.
func (s *MongoStorage) CreateClaim(ctx context.Context, c *models.Claim) error {
	if c.Evidence == nil {
		c.Evidence = []models.Evidence{}
	}
	return insert(ctx, s.coll(CollectionClaims), c, "claim", c.ID)
}

// GetClaim returns a claim by ID.
func (s *MongoStorage) GetClaim(ctx context.Context, id string) (*models.Claim, error) {
	return findOne[models.Claim](ctx, s.coll(CollectionClaims), bson.M{"claim_id": id}, "claim", id)
}

// ListClaims returns claims newest first.
func (s *MongoStorage) ListClaims(ctx context.Context, filter models.ClaimFilter) ([]*models.Claim, error) {
	q := bson.M{}
	if filter.Status != "" {
		q["status"] = filter.Status
	}
	if filter.DisasterID != "" {
		q["disaster_id"] = filter.DisasterID
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "claim_id", Value: 1}})
	return findAll[models.Claim](ctx, s.coll(CollectionClaims), q, withLimit(opts, filter.Limit))
}

// AddEvidence appends an evidence item to a claim.
func (s *MongoStorage) AddEvidence(ctx context.Context, claimID string, ev *models.Evidence) error {
	return update(ctx, s.coll(CollectionClaims), bson.M{"claim_id": claimID}, bson.M{
		"$push": bson.M{"evidence": ev},
		"$set":  bson.M{"updated_at": ev.UploadedAt},
	}, "claim", claimID)
}

// SaveClaimScore stores the latest score and the status derived from it. A
// resolved disaster is recorded on claims that had none.
func (s *MongoStorage) SaveClaimScore(ctx context.Context, claimID string, score *models.ClaimScore) error {
	if err := update(ctx, s.coll(CollectionClaims), bson.M{"claim_id": claimID}, bson.M{
		"$set": bson.M{"score": score, "status": score.Status, "updated_at": score.ScoredAt},
	}, "claim", claimID); err != nil {
		return err
	}
	if score.DisasterID == "" {
		return nil
	}
	_, err := s.coll(CollectionClaims).UpdateOne(ctx,
		bson.M{"claim_id": claimID, "disaster_id": bson.M{"$in": bson.A{nil, ""}}},
		bson.M{"$set": bson.M{"disaster_id": score.DisasterID}})
	return err
}

// AddClaimEvent appends to a claim's audit trail.
func (s *MongoStorage) AddClaimEvent(ctx context.Context, ev *models.ClaimEvent) error {
	_, err := s.coll(CollectionClaimEvents).InsertOne(ctx, ev)
	return err
}

// ListClaimEvents returns a claim's events oldest first.
func (s *MongoStorage) ListClaimEvents(ctx context.Context, claimID string) ([]*models.ClaimEvent, error) {
	return findAll[models.ClaimEvent](ctx, s.coll(CollectionClaimEvents), bson.M{"claim_id": claimID},
		options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}, {Key: "_id", Value: 1}}))
}

func personFilter(filter models.PersonFilter) bson.M {
	q := bson.M{}
	if filter.DisasterID != "" {
		q["disaster_id"] = filter.DisasterID
	}
	if len(filter.Statuses) > 0 {
		q["status"] = bson.M{"$in": filter.Statuses}
	}
	return q
}

// CreateMissingPerson inserts a missing-person report.
func (s *MongoStorage) CreateMissingPerson(ctx context.Context, p *models.MissingPerson) error {
	return insert(ctx, s.coll(CollectionMissingPersons), p, "missing person", p.ID)
}

// GetMissingPerson returns a missing-person report by ID.
func (s *MongoStorage) GetMissingPerson(ctx context.Context, id string) (*models.MissingPerson, error) {
	return findOne[models.MissingPerson](ctx, s.coll(CollectionMissingPersons), bson.M{"person_id": id}, "missing person", id)
}

// ListMissingPersons returns reports newest first.
func (s *MongoStorage) ListMissingPersons(ctx context.Context, filter models.PersonFilter) ([]*models.MissingPerson, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "person_id", Value: 1}})
	return findAll[models.MissingPerson](ctx, s.coll(CollectionMissingPersons), personFilter(filter), withLimit(opts, filter.Limit))
}

// UpdateMissingPersonStatus sets a report's status.
func (s *MongoStorage) UpdateMissingPersonStatus(ctx context.Context, id string, status models.PersonStatus, at time.Time) error {
	return update(ctx, s.coll(CollectionMissingPersons), bson.M{"person_id": id},
		bson.M{"$set": bson.M{"status": status, "updated_at": at}}, "missing person", id)
}

// CreateSurvivor inserts a survivor.
func (s *MongoStorage) CreateSurvivor(ctx context.Context, sv *models.Survivor) error {
	return insert(ctx, s.coll(CollectionSurvivors), sv, "survivor", sv.ID)
}

// GetSurvivor returns a survivor by ID.
func (s *MongoStorage) GetSurvivor(ctx context.Context, id string) (*models.Survivor, error) {
	return findOne[models.Survivor](ctx, s.coll(CollectionSurvivors), bson.M{"survivor_id": id}, "survivor", id)
}

// ListSurvivors returns survivors newest first.
func (s *MongoStorage) ListSurvivors(ctx context.Context, filter models.PersonFilter) ([]*models.Survivor, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "survivor_id", Value: 1}})
	return findAll[models.Survivor](ctx, s.coll(CollectionSurvivors), personFilter(filter), withLimit(opts, filter.Limit))
}

// UpdateSurvivorStatus sets a survivor's status.
func (s *MongoStorage) UpdateSurvivorStatus(ctx context.Context, id string, status models.PersonStatus, at time.Time) error {
	return update(ctx, s.coll(CollectionSurvivors), bson.M{"survivor_id": id},
		bson.M{"$set": bson.M{"status": status, "updated_at": at}}, "survivor", id)
}

// UpsertMatch inserts a match or, when the pair already has one, refreshes its
// confidence and factors while keeping its id, timestamp, and verification.
func (s *MongoStorage) UpsertMatch(ctx context.Context, m *models.Match) (*models.Match, error) {
	filter := bson.M{"missing_person_id": m.MissingPersonID, "survivor_id": m.SurvivorID}
	change := bson.M{
		"$set": bson.M{"confidence_score": m.ConfidenceScore, "factors": m.Factors},
		"$setOnInsert": bson.M{
			"match_id":    m.ID,
			"disaster_id": m.DisasterID,
			"verified":    m.Verified,
			"status":      m.Status,
			"matched_at":  m.MatchedAt,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var stored models.Match
	err := s.coll(CollectionMatches).FindOneAndUpdate(ctx, filter, change, opts).Decode(&stored)
	if mongo.IsDuplicateKeyError(err) {
		// A concurrent upsert inserted the pair first; the retry updates it.
		err = s.coll(CollectionMatches).FindOneAndUpdate(ctx, filter, change, opts).Decode(&stored)
	}
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

// GetMatch returns a match by ID.
func (s *MongoStorage) GetMatch(ctx context.Context, id string) (*models.Match, error) {
	return findOne[models.Match](ctx, s.coll(CollectionMatches), bson.M{"match_id": id}, "match", id)
}

// ListMatches returns matches, highest confidence first.
func (s *MongoStorage) ListMatches(ctx context.Context, filter models.MatchFilter) ([]*models.Match, error) {
	q := bson.M{"confidence_score": bson.M{"$gte": filter.MinConfidence}}
	if filter.Verified != nil {
		q["verified"] = *filter.Verified
	}
	if filter.DisasterID != "" {
		q["disaster_id"] = filter.DisasterID
	}
	opts := options.Find().SetSort(bson.D{{Key: "confidence_score", Value: -1}, {Key: "match_id", Value: 1}})
	return findAll[models.Match](ctx, s.coll(CollectionMatches), q, withLimit(opts, filter.Limit))
}

// UpdateMatchVerification records an authority's decision on a match.
func (s *MongoStorage) UpdateMatchVerification(ctx context.Context, id string, v models.Verification, status models.MatchStatus, at time.Time) (*models.Match, error) {
	var stored models.Match
	err := s.coll(CollectionMatches).FindOneAndUpdate(ctx,
		bson.M{"match_id": id},
		bson.M{"$set": bson.M{
			"verified":           v.Verified,
			"verified_by":        v.VerifiedBy,
			"verification_notes": v.VerificationNotes,
			"verified_at":        at,
			"status":             status,
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&stored)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: match %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

// Stats counts the documents in each collection.
func (s *MongoStorage) Stats(ctx context.Context) (*Stats, error) {
	var st Stats
	counts := []struct {
		coll   string
		filter bson.M
		dest   *int64
	}{
		{CollectionDisasters, bson.M{}, &st.Disasters},
		{CollectionClaims, bson.M{}, &st.Claims},
		{CollectionClaimEvents, bson.M{}, &st.ClaimEvents},
		{CollectionMissingPersons, bson.M{}, &st.MissingPersons},
		{CollectionSurvivors, bson.M{}, &st.Survivors},
		{CollectionMatches, bson.M{}, &st.Matches},
		{CollectionMatches, bson.M{"verified": true}, &st.VerifiedMatches},
	}
	for _, c := range counts {
		n, err := s.coll(c.coll).CountDocuments(ctx, c.filter)
		if err != nil {
			return nil, err
		}
		*c.dest = n
	}
	return &st, nil
}

// Close disconnects from the server.
func (s *MongoStorage) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}
