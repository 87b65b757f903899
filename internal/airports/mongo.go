package airports

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// LoadMongo reads airport documents ({iata_code, name, city, country})
// from a MongoDB collection. Documents without an IATA code are skipped.
func LoadMongo(ctx context.Context, cfg MongoConfig) (Data, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return Data{}, fmt.Errorf("connect to mongo: %w", err)
	}
	defer client.Disconnect(context.Background())

	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	return FetchAirports(ctx, coll)
}

func FetchAirports(ctx context.Context, coll *mongo.Collection) (Data, error) {
	filter := bson.D{{Key: "iata_code", Value: bson.D{{Key: "$nin", Value: bson.A{"", nil}}}}}
	cursor, err := coll.Find(ctx, filter)
	if err != nil {
		return Data{}, fmt.Errorf("find airports: %w", err)
	}
	defer cursor.Close(ctx)

	var d Data
	for cursor.Next(ctx) {
		var a Airport
		if err := cursor.Decode(&a); err != nil {
			return Data{}, fmt.Errorf("decode airport: %w", err)
		}
		a.IATA = strings.ToUpper(strings.TrimSpace(a.IATA))
		if len(a.IATA) != 3 {
			continue
		}
		d.Airports = append(d.Airports, a)
	}
	if err := cursor.Err(); err != nil {
		return Data{}, fmt.Errorf("iterate airports: %w", err)
	}
	return d, nil
}
