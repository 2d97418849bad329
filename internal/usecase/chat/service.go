package chat

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/petsearch/internal/domain/intent"
	"github.com/kailas-cloud/petsearch/internal/domain/profile"
	"github.com/kailas-cloud/petsearch/internal/domain/search/result"
	"github.com/kailas-cloud/petsearch/internal/usecase/exclusion"
)

// Reply is the outcome of one chat turn.
type Reply struct {
	Intent         intent.Intent
	Matches        []result.Match
	ContextSummary string
}

// Service orchestrates one conversation turn: resolve the intent against the
// session context, fold in long-term profile exclusions, search, and commit.
type Service struct {
	registry   *Registry
	resolver   Resolver
	searcher   Searcher
	profiles   ProfileStore
	maxResults int
	logger     *zap.Logger
}

// New creates a chat service.
func New(
	registry *Registry,
	resolver Resolver,
	searcher Searcher,
	profiles ProfileStore,
	maxResults int,
	logger *zap.Logger,
) *Service {
	return &Service{
		registry:   registry,
		resolver:   resolver,
		searcher:   searcher,
		profiles:   profiles,
		maxResults: maxResults,
		logger:     logger,
	}
}

// Registry exposes the session table for transport-level create/get/delete.
func (s *Service) Registry() *Registry { return s.registry }

// Turn runs one chat turn in the given session.
//
// The session lock is held for the whole turn. The context is committed only
// after the search completed; when the search errors the context stays
// exactly as it was, so a retry of the same turn resolves identically. An
// empty match list is a normal outcome and commits like any other.
func (s *Service) Turn(
	ctx context.Context, sessionID, text string, it intent.Intent,
) (Reply, error) {
	sess, err := s.registry.Get(sessionID)
	if err != nil {
		return Reply{}, err
	}

	sess.Lock()
	defer sess.Unlock()

	resolved := s.resolver.Resolve(sess.Context(), text, it)

	longTerm, err := s.profiles.Exclusions(ctx, sess.CustomerID)
	if err != nil {
		return Reply{}, fmt.Errorf("load profile exclusions: %w", err)
	}
	resolved.Exclusions = exclusion.Merge(resolved.Exclusions, longTerm)
	resolved = resolved.ResolveConflicts()

	matches, err := s.searcher.Search(ctx, resolved, s.maxResults)
	if err != nil {
		return Reply{}, fmt.Errorf("search turn: %w", err)
	}

	s.resolver.Commit(sess.Context(), text, resolved, matches)

	// An allergy statement doubles as a profile write, so the constraint
	// survives this session. A failed write must not fail the turn the
	// search already answered.
	if isAllergyStatement(text) && len(it.Exclusions) > 0 {
		if err := s.savePetFromTurn(ctx, sess.CustomerID, it); err != nil {
			s.logger.Warn("pet profile write failed",
				zap.String("customer_id", sess.CustomerID),
				zap.Error(err),
			)
		}
	}

	return Reply{
		Intent:         resolved,
		Matches:        matches,
		ContextSummary: sess.Context().Summary(),
	}, nil
}

// allergyPhrases are the statement shapes that signal a durable allergy
// rather than a one-off preference.
var allergyPhrases = []string{"allergic", "can't eat", "cannot eat"}

func isAllergyStatement(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range allergyPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

func (s *Service) savePetFromTurn(
	ctx context.Context, customerID string, it intent.Intent,
) error {
	pet := profile.Pet{Allergies: it.Exclusions}
	if it.Species != nil {
		pet.Species = string(*it.Species)
	}
	return s.profiles.SavePet(ctx, customerID, pet.Normalized())
}
