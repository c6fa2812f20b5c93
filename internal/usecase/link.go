package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/vadimbarashkov/ziplink/internal/entity"
	"github.com/vadimbarashkov/ziplink/pkg/useragent"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

var ErrMaxRetriesExceeded = errors.New("maximum retries exceeded for generating slug")

const (
	defaultSlugLength = 7
	defaultGuestTTL   = 7 * 24 * time.Hour

	// Title based slugs are tried as "base", "base-1", ... "base-4" before
	// falling back to random ones.
	maxRetries       = 10
	maxSuffixRetries = 5

	slugAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

	// maxSlugLength matches the width of links.slug.
	maxSlugLength = 100
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

type linkRepository interface {
	Save(ctx context.Context, link *entity.Link) (*entity.Link, error)
	RetrieveByID(ctx context.Context, id string) (*entity.Link, error)
	RetrieveActiveBySlug(ctx context.Context, slug string) (*entity.Link, error)
	ListByOwner(ctx context.Context, userID string) ([]entity.Link, error)
	ListGuest(ctx context.Context) ([]entity.Link, error)
	OwnerStats(ctx context.Context, userID string) (*entity.OwnerStats, error)
	Update(ctx context.Context, id string, upd entity.LinkUpdate) (*entity.Link, error)
	Remove(ctx context.Context, id string) error
}

type clickRecorder interface {
	Record(ctx context.Context, click entity.ClickEvent) (*entity.Link, error)
}

type linkCache interface {
	Get(ctx context.Context, slug string) (*entity.Link, bool, error)
	Set(ctx context.Context, link *entity.Link) error
	Delete(ctx context.Context, slug string) error
}

type LinkOption func(*LinkUseCase)

func WithSlugLength(n int) LinkOption {
	return func(uc *LinkUseCase) {
		uc.slugLength = n
	}
}

func WithGuestTTL(d time.Duration) LinkOption {
	return func(uc *LinkUseCase) {
		uc.guestTTL = d
	}
}

// WithCache enables the slug lookup cache used by Resolve.
func WithCache(cache linkCache) LinkOption {
	return func(uc *LinkUseCase) {
		uc.cache = cache
	}
}

func WithLogger(logger *slog.Logger) LinkOption {
	return func(uc *LinkUseCase) {
		uc.logger = logger
	}
}

func withClock(now func() time.Time) LinkOption {
	return func(uc *LinkUseCase) {
		uc.now = now
	}
}

type LinkUseCase struct {
	slugLength int
	guestTTL   time.Duration
	linkRepo   linkRepository
	clickRepo  clickRecorder
	cache      linkCache
	logger     *slog.Logger
	now        func() time.Time
}

func NewLinkUseCase(linkRepo linkRepository, clickRepo clickRecorder, opts ...LinkOption) *LinkUseCase {
	uc := &LinkUseCase{
		slugLength: defaultSlugLength,
		guestTTL:   defaultGuestTTL,
		linkRepo:   linkRepo,
		clickRepo:  clickRepo,
		logger:     slog.Default(),
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// CreateLink stores a link owned by userID.
func (uc *LinkUseCase) CreateLink(ctx context.Context, userID string, nl entity.NewLink) (*entity.Link, error) {
	const op = "usecase.LinkUseCase.CreateLink"

	link := newLink(nl)
	link.UserID = &userID

	saved, err := uc.save(ctx, link, nl.CustomSlug)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create link: %w", op, err)
	}

	return saved, nil
}

// CreateGuestLink stores a link without an owner. Guest links expire after the configured TTL.
func (uc *LinkUseCase) CreateGuestLink(ctx context.Context, nl entity.NewLink) (*entity.Link, error) {
	const op = "usecase.LinkUseCase.CreateGuestLink"

	link := newLink(nl)
	expiresAt := uc.now().Add(uc.guestTTL)
	link.ExpiresAt = &expiresAt

	saved, err := uc.save(ctx, link, nl.CustomSlug)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create guest link: %w", op, err)
	}

	return saved, nil
}

func newLink(nl entity.NewLink) *entity.Link {
	return &entity.Link{
		Title:       nl.Title,
		URL:         nl.URL,
		Description: nl.Description,
		Favicon:     Favicon(nl.URL),
	}
}

func (uc *LinkUseCase) save(ctx context.Context, link *entity.Link, customSlug string) (*entity.Link, error) {
	if customSlug != "" {
		link.Slug = customSlug
		link.IsCustom = true

		return uc.linkRepo.Save(ctx, link)
	}

	base := Slugify(link.Title)

	for i := 0; i < maxRetries; i++ {
		slug, err := uc.candidateSlug(base, i)
		if err != nil {
			return nil, fmt.Errorf("failed to generate slug: %w", err)
		}

		link.Slug = slug

		saved, err := uc.linkRepo.Save(ctx, link)
		if err != nil {
			if errors.Is(err, entity.ErrSlugExists) {
				continue
			}

			return nil, err
		}

		return saved, nil
	}

	return nil, ErrMaxRetriesExceeded
}

func (uc *LinkUseCase) candidateSlug(base string, attempt int) (string, error) {
	switch {
	case base == "" || attempt >= maxSuffixRetries:
		return gonanoid.Generate(slugAlphabet, uc.slugLength)
	case attempt == 0:
		return fitSlug(base, ""), nil
	default:
		return fitSlug(base, fmt.Sprintf("-%d", attempt)), nil
	}
}

// fitSlug appends suffix to base, cutting base so the result fits maxSlugLength.
func fitSlug(base, suffix string) string {
	if n := maxSlugLength - len(suffix); len(base) > n {
		base = strings.TrimRight(base[:n], "-")
	}
	return base + suffix
}

// Slugify lowercases title, replaces every run of characters outside [a-z0-9]
// with a single dash and trims dashes from both ends.
func Slugify(title string) string {
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(slug, "-")
}

// Favicon returns the icon URL of the destination host, or nil when rawURL has no host.
func Favicon(rawURL string) *string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return nil
	}

	favicon := "https://www.google.com/s2/favicons?domain=" + url.QueryEscape(u.Hostname()) + "&sz=64"
	return &favicon
}

func (uc *LinkUseCase) MyLinks(ctx context.Context, userID string) ([]entity.Link, error) {
	const op = "usecase.LinkUseCase.MyLinks"

	links, err := uc.linkRepo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list links: %w", op, err)
	}

	return links, nil
}

func (uc *LinkUseCase) PublicLinks(ctx context.Context) ([]entity.Link, error) {
	const op = "usecase.LinkUseCase.PublicLinks"

	links, err := uc.linkRepo.ListGuest(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list guest links: %w", op, err)
	}

	return links, nil
}

func (uc *LinkUseCase) OwnerStats(ctx context.Context, userID string) (*entity.OwnerStats, error) {
	const op = "usecase.LinkUseCase.OwnerStats"

	stats, err := uc.linkRepo.OwnerStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get owner stats: %w", op, err)
	}

	return stats, nil
}

// UpdateLink applies upd to the link with the given id if it belongs to userID.
func (uc *LinkUseCase) UpdateLink(ctx context.Context, userID, id string, upd entity.LinkUpdate) (*entity.Link, error) {
	const op = "usecase.LinkUseCase.UpdateLink"

	link, err := uc.ownedLink(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if upd.URL != nil {
		upd.Favicon = Favicon(*upd.URL)
	}

	// Evicted on both sides of the write: a concurrent redirect may re-cache the old row in between.
	uc.evict(ctx, link.Slug)

	updated, err := uc.linkRepo.Update(ctx, id, upd)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to update link: %w", op, err)
	}

	uc.evict(ctx, link.Slug)

	return updated, nil
}

// DeleteLink removes the link with the given id if it belongs to userID.
func (uc *LinkUseCase) DeleteLink(ctx context.Context, userID, id string) error {
	const op = "usecase.LinkUseCase.DeleteLink"

	link, err := uc.ownedLink(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := uc.linkRepo.Remove(ctx, id); err != nil {
		return fmt.Errorf("%s: failed to delete link: %w", op, err)
	}

	uc.evict(ctx, link.Slug)

	return nil
}

func (uc *LinkUseCase) ownedLink(ctx context.Context, userID, id string) (*entity.Link, error) {
	link, err := uc.linkRepo.RetrieveByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get link: %w", err)
	}

	if !link.OwnedBy(userID) {
		return nil, entity.ErrForbidden
	}

	return link, nil
}

// Resolve looks up the active link behind slug and records a click for the visitor.
// The returned link reflects the state after the click was counted.
func (uc *LinkUseCase) Resolve(ctx context.Context, slug string, visitor entity.Visitor) (*entity.Link, error) {
	const op = "usecase.LinkUseCase.Resolve"

	link, err := uc.lookup(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to resolve slug: %w", op, err)
	}

	if link.Expired(uc.now()) {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrLinkExpired)
	}

	ua := useragent.Parse(visitor.UserAgent)

	click := entity.ClickEvent{
		LinkID:     link.ID,
		Referrer:   optional(visitor.Referrer),
		IP:         optional(visitor.IP),
		Browser:    ua.Browser,
		OS:         ua.OS,
		DeviceType: ua.DeviceType,
		Country:    entity.UnknownCountry,
	}

	recorded, err := uc.clickRepo.Record(ctx, click)
	if err != nil {
		if errors.Is(err, entity.ErrLinkNotFound) {
			uc.evict(ctx, slug)
		}

		return nil, fmt.Errorf("%s: failed to record click: %w", op, err)
	}

	return recorded, nil
}

func (uc *LinkUseCase) lookup(ctx context.Context, slug string) (*entity.Link, error) {
	if uc.cache != nil {
		link, ok, err := uc.cache.Get(ctx, slug)
		if err != nil {
			uc.logger.WarnContext(ctx, "link cache lookup failed", slog.String("slug", slug), slog.Any("err", err))
		}
		if ok {
			return link, nil
		}
	}

	link, err := uc.linkRepo.RetrieveActiveBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, link); err != nil {
			uc.logger.WarnContext(ctx, "link cache store failed", slog.String("slug", slug), slog.Any("err", err))
		}
	}

	return link, nil
}

func (uc *LinkUseCase) evict(ctx context.Context, slug string) {
	if uc.cache == nil {
		return
	}

	if err := uc.cache.Delete(ctx, slug); err != nil {
		uc.logger.WarnContext(ctx, "link cache eviction failed", slog.String("slug", slug), slog.Any("err", err))
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
