package chat

import (
	"context"

	"github.com/kailas-cloud/petsearch/internal/domain/intent"
	"github.com/kailas-cloud/petsearch/internal/domain/profile"
	"github.com/kailas-cloud/petsearch/internal/domain/search/result"
	"github.com/kailas-cloud/petsearch/internal/usecase/session"
)

// Searcher runs one hybrid search for a fully resolved intent.
type Searcher interface {
	Search(ctx context.Context, it intent.Intent, maxResults int) ([]result.Match, error)
}

// Resolver rewrites the turn's intent from session state and commits the
// turn afterwards.
type Resolver interface {
	Resolve(sc *session.Context, text string, it intent.Intent) intent.Intent
	Commit(sc *session.Context, text string, it intent.Intent, results []result.Match)
}

// ProfileStore is the long-term customer data the chat layer reads and writes.
type ProfileStore interface {
	Exclusions(ctx context.Context, customerID string) ([]string, error)
	SavePet(ctx context.Context, customerID string, pet profile.Pet) error
}
