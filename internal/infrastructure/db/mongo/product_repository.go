package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/product-catalog/internal/core/domain"
	"github.com/99minutos/product-catalog/internal/core/ports"
)

const (
	collectionProducts = "products"
	collectionCounters = "counters"
	productSequence    = "products"
)

// productDocument is the stored shape of a product.
type productDocument struct {
	ID              int64                `bson:"_id"`
	Name            string               `bson:"name"`
	Price           primitive.Decimal128 `bson:"price"`
	CreatedAt       time.Time            `bson:"created_at"`
	DeletedAt       *time.Time           `bson:"deleted_at"`
	CreatedByID     string               `bson:"created_by_id"`
	LastUpdatedByID *string              `bson:"last_updated_by_id"`
}

type counterDocument struct {
	ID  string `bson:"_id"`
	Seq int64  `bson:"seq"`
}

type ProductRepository struct {
	col      *mongo.Collection
	counters *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{
		col:      db.Collection(collectionProducts),
		counters: db.Collection(collectionCounters),
	}
}

// Create assigns the next sequence value as the id and inserts the product.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := r.nextID(ctx)
	if err != nil {
		return nil, err
	}

	stored := *p
	stored.ID = id
	doc, err := toDocument(&stored)
	if err != nil {
		return nil, err
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}
	return &stored, nil
}

func (r *ProductRepository) nextID(ctx context.Context) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var c counterDocument
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": productSequence},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&c)
	if err != nil {
		return 0, fmt.Errorf("next product id: %w", err)
	}
	return c.Seq, nil
}

func (r *ProductRepository) Count(ctx context.Context, filter ports.ProductFilter) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.col.CountDocuments(ctx, visibilityFilter(filter))
}

// List returns one page ordered by id ascending.
func (r *ProductRepository) List(ctx context.Context, filter ports.ProductFilter, skip, take int) ([]*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(int64(skip)).
		SetLimit(int64(take))

	cursor, err := r.col.Find(ctx, visibilityFilter(filter), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []productDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	products := make([]*domain.Product, 0, len(docs))
	for i := range docs {
		p, err := fromDocument(&docs[i])
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc productDocument
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProductNotFound
		}
		return nil, err
	}
	return fromDocument(&doc)
}

func (r *ProductRepository) Update(ctx context.Context, id int64, changes ports.ProductChanges) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set, err := updateSet(changes)
	if err != nil {
		return err
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// EnsureIndexes creates the index backing the visibility filter.
func (r *ProductRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "deleted_at", Value: 1}, {Key: "_id", Value: 1}},
	})
	return err
}

func visibilityFilter(f ports.ProductFilter) bson.M {
	if f.IncludeDeleted {
		return bson.M{}
	}
	return bson.M{"deleted_at": nil}
}

func updateSet(c ports.ProductChanges) (bson.M, error) {
	set := bson.M{"last_updated_by_id": c.LastUpdatedByID}
	if c.Name != nil {
		set["name"] = *c.Name
	}
	if c.Price != nil {
		price, err := toDecimal128(*c.Price)
		if err != nil {
			return nil, err
		}
		set["price"] = price
	}
	switch {
	case c.ClearDeletedAt:
		set["deleted_at"] = nil
	case c.DeletedAt != nil:
		set["deleted_at"] = *c.DeletedAt
	}
	return set, nil
}

func toDocument(p *domain.Product) (*productDocument, error) {
	price, err := toDecimal128(p.Price)
	if err != nil {
		return nil, err
	}
	return &productDocument{
		ID:              p.ID,
		Name:            p.Name,
		Price:           price,
		CreatedAt:       p.CreatedAt,
		DeletedAt:       p.DeletedAt,
		CreatedByID:     p.CreatedByID,
		LastUpdatedByID: p.LastUpdatedByID,
	}, nil
}

func fromDocument(d *productDocument) (*domain.Product, error) {
	price, err := decimal.NewFromString(d.Price.String())
	if err != nil {
		return nil, fmt.Errorf("product %d price: %w", d.ID, err)
	}
	p := &domain.Product{
		ID:              d.ID,
		Name:            d.Name,
		Price:           price,
		CreatedAt:       d.CreatedAt,
		CreatedByID:     d.CreatedByID,
		LastUpdatedByID: d.LastUpdatedByID,
	}
	if d.DeletedAt != nil {
		t := d.DeletedAt.UTC()
		p.DeletedAt = &t
	}
	return p, nil
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("price %s: %w", d.String(), err)
	}
	return v, nil
}
