// Package service contains the business logic layer.
//
// Handlers parse HTTP and delegate here; this layer validates, enforces
// permissions and orchestrates the repositories. Services depend only on
// the repository interfaces, never on a concrete backend, so the same
// logic runs against sqlite and the filestore.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/wilson400hong/slop-museum/internal/apperror"
	"github.com/wilson400hong/slop-museum/internal/model"
	"github.com/wilson400hong/slop-museum/internal/preview"
	"github.com/wilson400hong/slop-museum/internal/repository"
	"github.com/wilson400hong/slop-museum/internal/sandbox"
)

const (
	MaxTitleLength  = 100
	DefaultFeedSize = 20
	MaxFeedSize     = 100
)

// SubmitWorkInput is the submission payload. The validate tags cover the
// structural rules; kind-specific and vocabulary rules are checked in code
// because they depend on other fields or on the database.
type SubmitWorkInput struct {
	Title       string   `json:"title" validate:"required,max=100"`
	Description string   `json:"description"`
	Kind        string   `json:"kind" validate:"required"`
	URL         string   `json:"url"`
	CodeHTML    string   `json:"codeHtml"`
	CodeCSS     string   `json:"codeCss"`
	CodeJS      string   `json:"codeJs"`
	Tags        []string `json:"tags" validate:"required,min=1,max=3"`
	Anonymous   bool     `json:"anonymous"`
}

// FeedPage is one page of the public feed. NextCursor is empty when this is
// the last page.
type FeedPage struct {
	Works      []model.EnrichedWork `json:"works"`
	NextCursor string               `json:"nextCursor,omitempty"`
}

// WorkService handles submission, the feed, and per-user listings.
type WorkService struct {
	works     repository.WorkRepository
	tags      repository.TagRepository
	reactions repository.ReactionRepository
	users     repository.UserRepository
	sandbox   sandbox.Publisher // nil disables sandbox publishing
	preview   *preview.Fetcher  // nil disables preview scraping
	validate  *validator.Validate
	logger    *slog.Logger
}

func NewWorkService(
	works repository.WorkRepository,
	tags repository.TagRepository,
	reactions repository.ReactionRepository,
	users repository.UserRepository,
	sandboxStore sandbox.Publisher,
	previewFetcher *preview.Fetcher,
	logger *slog.Logger,
) *WorkService {
	return &WorkService{
		works:     works,
		tags:      tags,
		reactions: reactions,
		users:     users,
		sandbox:   sandboxStore,
		preview:   previewFetcher,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		logger:    logger,
	}
}

// Submit validates and stores a new work.
//
// Rules run in a fixed order so clients get deterministic error messages:
// structural checks first (title, tag count, kind present), then the kind
// itself, then tag vocabulary, then kind-specific payload rules, and the
// banned check last. The first failure wins. An embedded-code work with an
// all-empty payload is legal — a blank canvas is still a work.
func (s *WorkService) Submit(ctx context.Context, actorID string, input SubmitWorkInput) (*model.EnrichedWork, error) {
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	kind := model.WorkKind(input.Kind)
	if !kind.Valid() {
		return nil, apperror.ValidationFailed("kind", fmt.Sprintf("unknown kind %q", input.Kind))
	}

	tags, err := s.resolveTags(ctx, input.Tags)
	if err != nil {
		return nil, err
	}

	switch kind {
	case model.WorkKindLink:
		parsed, err := url.Parse(strings.TrimSpace(input.URL))
		if err != nil || !parsed.IsAbs() || parsed.Host == "" {
			return nil, apperror.ValidationFailed("url", "link works need an absolute URL")
		}
	case model.WorkKindCode:
		if size := len(input.CodeHTML) + len(input.CodeCSS) + len(input.CodeJS); size > model.MaxCodeBytes {
			return nil, apperror.ValidationFailed("code",
				fmt.Sprintf("code payload is %d bytes, limit is %d", size, model.MaxCodeBytes))
		}
	}

	actor, err := s.users.GetUserByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor.Banned {
		return nil, apperror.Forbidden("banned users cannot submit works")
	}

	work := &model.Work{
		UserID:      actorID,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Kind:        kind,
		Anonymous:   input.Anonymous,
	}

	switch kind {
	case model.WorkKindLink:
		work.URL = strings.TrimSpace(input.URL)
		if s.preview != nil {
			// Best-effort; ImageURL never returns a hard error.
			work.PreviewImageURL, _ = s.preview.ImageURL(ctx, work.URL)
		}
	case model.WorkKindCode:
		work.CodeHTML = input.CodeHTML
		work.CodeCSS = input.CodeCSS
		work.CodeJS = input.CodeJS
	}

	tagIDs := make([]int64, len(tags))
	for i, tag := range tags {
		tagIDs[i] = tag.ID
	}
	if err := s.works.CreateWork(ctx, work, tagIDs); err != nil {
		return nil, err
	}

	// The sandbox document is keyed by the work ID, so publishing has to
	// happen after the insert. A publish failure leaves a valid work
	// without a sandbox URL rather than failing the submission.
	if kind == model.WorkKindCode && s.sandbox != nil {
		doc := sandbox.Document(work.CodeHTML, work.CodeCSS, work.CodeJS)
		sandboxURL, err := s.sandbox.PublishDocument(ctx, work.ID, doc)
		if err != nil {
			s.logger.Error("sandbox publish failed", "work_id", work.ID, "error", err)
		} else {
			work.SandboxURL = sandboxURL
		}
	}

	s.logger.Info("work submitted",
		"work_id", work.ID,
		"kind", work.Kind,
		"anonymous", work.Anonymous)

	enriched := s.newEnrichedWork(*work, tags, model.ReactionCounts{})
	return &enriched, nil
}

func (s *WorkService) validateInput(input SubmitWorkInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return apperror.ValidationFailed("title", "title is required")
	}
	if err := s.validate.Struct(input); err != nil {
		errs, ok := err.(validator.ValidationErrors)
		if !ok || len(errs) == 0 {
			return apperror.ValidationFailed("", "invalid submission")
		}
		first := errs[0]
		switch first.Field() {
		case "Title":
			return apperror.ValidationFailed("title",
				fmt.Sprintf("title must be at most %d characters", MaxTitleLength))
		case "Kind":
			return apperror.ValidationFailed("kind", "kind is required")
		case "Tags":
			return apperror.ValidationFailed("tags",
				fmt.Sprintf("works carry between %d and %d tags", model.MinWorkTags, model.MaxWorkTags))
		default:
			return apperror.ValidationFailed(strings.ToLower(first.Field()), "invalid submission")
		}
	}
	return nil
}

// resolveTags maps tag names to rows, rejecting any name outside the
// vocabulary.
func (s *WorkService) resolveTags(ctx context.Context, names []string) ([]model.Tag, error) {
	tags, err := s.tags.TagsByName(ctx, names)
	if err != nil {
		return nil, err
	}
	if len(tags) != len(names) {
		found := make(map[string]bool, len(tags))
		for _, tag := range tags {
			found[tag.Name] = true
		}
		for _, name := range names {
			if !found[name] {
				return nil, apperror.ValidationFailed("tags", fmt.Sprintf("unknown tag %q", name))
			}
		}
		// Duplicate names resolve to fewer rows than names.
		return nil, apperror.ValidationFailed("tags", "duplicate tags in submission")
	}
	return tags, nil
}

// Tags returns the tag vocabulary for the submission form and feed filter.
func (s *WorkService) Tags(ctx context.Context) ([]model.Tag, error) {
	return s.tags.ListTags(ctx)
}

// Feed returns one page of the public feed.
func (s *WorkService) Feed(ctx context.Context, cursorStr string, tagNames []string, limit int) (*FeedPage, error) {
	cursor, err := model.ParseCursor(cursorStr)
	if err != nil {
		return nil, apperror.ValidationFailed("cursor", err.Error())
	}

	if limit <= 0 {
		limit = DefaultFeedSize
	}
	if limit > MaxFeedSize {
		limit = MaxFeedSize
	}

	works, err := s.works.ListFeed(ctx, repository.FeedOptions{
		Cursor: cursor,
		Tags:   tagNames,
		Limit:  limit,
	})
	if err != nil {
		return nil, err
	}

	enriched, err := s.enrichWorks(ctx, works)
	if err != nil {
		return nil, err
	}

	page := &FeedPage{Works: enriched}
	// A short page means the feed is exhausted. A page of exactly `limit`
	// gets a cursor even if it happens to be the last one — the next
	// request then comes back empty, which clients already handle.
	if len(works) == limit {
		last := works[len(works)-1]
		page.NextCursor = model.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}.String()
	}
	return page, nil
}

// Get returns a single visible work. Hidden works 404 here; moderation
// reads them through the repository directly.
func (s *WorkService) Get(ctx context.Context, id string) (*model.EnrichedWork, error) {
	work, err := s.works.GetWork(ctx, id)
	if err != nil {
		return nil, err
	}
	if work.Hidden {
		return nil, apperror.NotFound("work", id)
	}

	enriched, err := s.enrichWorks(ctx, []model.Work{*work})
	if err != nil {
		return nil, err
	}
	return &enriched[0], nil
}

// WorksByUser lists a user's works for their profile page. Anonymous works
// only show up when the profile owner views their own page.
func (s *WorkService) WorksByUser(ctx context.Context, callerID, userID string) ([]model.EnrichedWork, error) {
	works, err := s.works.ListWorksByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if callerID != userID {
		visible := works[:0]
		for _, w := range works {
			if !w.Anonymous {
				visible = append(visible, w)
			}
		}
		works = visible
	}
	return s.enrichWorks(ctx, works)
}

// BookmarkedWorks lists the works the user has bookmarked, most recently
// bookmarked first.
func (s *WorkService) BookmarkedWorks(ctx context.Context, userID string) ([]model.EnrichedWork, error) {
	works, err := s.works.ListBookmarkedWorks(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.enrichWorks(ctx, works)
}

// UserReactionStats aggregates the reactions received across all of a
// user's works.
func (s *WorkService) UserReactionStats(ctx context.Context, userID string) (*model.ReactionCounts, error) {
	ids, err := s.works.WorkIDsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var total model.ReactionCounts
	if len(ids) > 0 {
		counts, err := s.reactions.ReactionCounts(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, c := range counts {
			for _, kind := range model.ReactionKinds {
				total.Add(kind, c.Get(kind))
			}
		}
	}
	return &total, nil
}

// enrichWorks decorates works with tags, reaction counts and owner
// profiles, blanking the owner on anonymous works.
func (s *WorkService) enrichWorks(ctx context.Context, works []model.Work) ([]model.EnrichedWork, error) {
	if len(works) == 0 {
		return []model.EnrichedWork{}, nil
	}

	ids := make([]string, len(works))
	ownerIDs := make([]string, 0, len(works))
	for i, w := range works {
		ids[i] = w.ID
		if !w.Anonymous {
			ownerIDs = append(ownerIDs, w.UserID)
		}
	}

	counts, err := s.reactions.ReactionCounts(ctx, ids)
	if err != nil {
		return nil, err
	}
	tagsByWork, err := s.tags.TagsForWorks(ctx, ids)
	if err != nil {
		return nil, err
	}
	owners, err := s.users.UsersByID(ctx, ownerIDs)
	if err != nil {
		return nil, err
	}

	enriched := make([]model.EnrichedWork, len(works))
	for i, w := range works {
		e := s.newEnrichedWork(w, tagsByWork[w.ID], counts[w.ID])
		if !w.Anonymous {
			if owner, ok := owners[w.UserID]; ok {
				e.Owner = &owner
			}
		}
		enriched[i] = e
	}
	return enriched, nil
}

// newEnrichedWork applies the anonymity policy: the stored work always
// remembers its owner, the API never shows it for anonymous works.
func (s *WorkService) newEnrichedWork(w model.Work, tags []model.Tag, counts model.ReactionCounts) model.EnrichedWork {
	if w.Anonymous {
		w.UserID = ""
	}
	if tags == nil {
		tags = []model.Tag{}
	}
	return model.EnrichedWork{
		Work:           w,
		Tags:           tags,
		ReactionCounts: counts,
	}
}
