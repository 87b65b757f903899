package airports

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Sources says where to read the airport table from. The embedded data is
// always loaded first; File and then Mongo are merged on top when set.
type Sources struct {
	File  string
	Mongo MongoConfig
}

func Load(ctx context.Context, src Sources) (*Table, error) {
	data, err := DefaultData()
	if err != nil {
		return nil, err
	}

	if src.File != "" {
		extra, err := LoadFile(src.File)
		if err != nil {
			return nil, err
		}
		data = data.Merge(extra)
		log.Info().Str("file", src.File).Int("airports", len(extra.Airports)).Msg("Airport file loaded")
	}

	if src.Mongo.URI != "" {
		extra, err := LoadMongo(ctx, src.Mongo)
		if err != nil {
			return nil, err
		}
		data = data.Merge(extra)
		log.Info().Str("collection", src.Mongo.Collection).Int("airports", len(extra.Airports)).Msg("Airport collection loaded")
	}

	return NewTable(data)
}
