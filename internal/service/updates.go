package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ournewbridge/directory/internal/access"
	"github.com/ournewbridge/directory/internal/auth"
	"github.com/ournewbridge/directory/internal/directory"
	"github.com/ournewbridge/directory/internal/domain"
	"github.com/ournewbridge/directory/internal/repository"
)

// UpdateService runs the contributor-update moderation queue: submission,
// permission-scoped listing and approve/reject resolution. The queue lives in
// the database; file-mode deployments get STORE_UNAVAILABLE on every call.
type UpdateService struct {
	db      repository.DBTX
	updates repository.UpdateRequestRepository
	store   directory.Store
	logger  *slog.Logger
}

// NewUpdateService creates an UpdateService. db may be nil in file mode.
func NewUpdateService(db repository.DBTX, updates repository.UpdateRequestRepository, store directory.Store, logger *slog.Logger) *UpdateService {
	return &UpdateService{db: db, updates: updates, store: store, logger: logger}
}

// SubmitInput is a contributor's proposed change.
type SubmitInput struct {
	CitySlug string               `json:"city_slug"`
	Category domain.Category      `json:"category"`
	Payload  domain.UpdatePayload `json:"payload"`
}

// Submit queues a suggestion for review. Any authenticated principal may
// submit. Payload completeness is not enforced here; approval is the
// enforcement point.
func (s *UpdateService) Submit(ctx context.Context, principal *auth.Principal, input SubmitInput) (*domain.ResourceUpdateRequest, error) {
	if principal == nil || strings.TrimSpace(principal.Email) == "" {
		return nil, domain.ErrUnauthorized("sign in to suggest an update")
	}
	if s.db == nil {
		return nil, domain.ErrStoreUnavailable("the contributor update workflow")
	}

	citySlug := strings.ToLower(strings.TrimSpace(input.CitySlug))
	if citySlug == "" {
		return nil, domain.ErrValidation("citySlug is required")
	}

	city, err := s.store.FindCity(ctx, citySlug)
	if err != nil {
		return nil, domain.ErrInternal("find city", err)
	}
	if city == nil {
		return nil, domain.ErrNotFound("city", citySlug)
	}

	category := input.Payload.Category
	if category == "" {
		category = input.Category
	}
	if category == "" {
		category = domain.CategoryFood
	}
	if _, ok := domain.ParseCategory(string(category)); !ok {
		return nil, domain.ErrValidation("invalid category: " + string(category))
	}

	payload := input.Payload
	payload.Category = category
	payload.ResourceID = strings.TrimSpace(payload.ResourceID)
	payload.AvailabilityStatus = domain.NormalizeAvailability(string(payload.AvailabilityStatus))

	req := &domain.ResourceUpdateRequest{
		ID:               uuid.New(),
		CitySlug:         citySlug,
		Category:         category,
		ChangeType:       domain.ChangeAdd,
		Payload:          payload,
		Status:           domain.UpdatePending,
		SubmittedByEmail: domain.NormalizeEmail(principal.Email),
		SubmittedAt:      time.Now(),
	}
	if payload.ResourceID != "" {
		req.ChangeType = domain.ChangeUpdate
		req.ResourceExternalID = &payload.ResourceID
	}
	if name := strings.TrimSpace(principal.Name); name != "" {
		req.SubmittedByName = &name
	}

	if err := s.updates.Insert(ctx, s.db, req); err != nil {
		return nil, domain.ErrInternal("insert update request", err)
	}

	s.logger.Info("update request submitted",
		"request_id", req.ID,
		"city", req.CitySlug,
		"change_type", req.ChangeType,
		"submitted_by", req.SubmittedByEmail,
	)
	return req, nil
}

// ListPending returns the pending requests the given access may review, most
// recent first. Non-admins are refused; scoped admins get a narrowed list
// rather than an error.
func (s *UpdateService) ListPending(ctx context.Context, a domain.AdminAccess) ([]domain.ResourceUpdateRequest, error) {
	if !a.IsAdmin {
		return nil, domain.ErrForbidden("admin access required")
	}
	if s.db == nil {
		return nil, domain.ErrStoreUnavailable("the contributor update workflow")
	}

	all, err := s.updates.ListPending(ctx, s.db)
	if err != nil {
		return nil, domain.ErrInternal("list pending updates", err)
	}
	if a.IsSuperAdmin {
		return all, nil
	}

	// Cities the caller has any footing in, then the per-row review guard.
	// The second filter matters: a location grant in city B puts B in the
	// city set, but must not expose B's other locations.
	cities := make(map[string]bool)
	for _, slug := range a.CitySlugs {
		cities[slug] = true
	}
	for _, scope := range a.LocationScopes {
		cities[scope.CitySlug] = true
	}

	var visible []domain.ResourceUpdateRequest
	for _, req := range all {
		if !cities[req.CitySlug] {
			continue
		}
		externalID := ""
		if req.ResourceExternalID != nil {
			externalID = *req.ResourceExternalID
		}
		if access.CanReviewResourceUpdate(a, req.CitySlug, externalID) {
			visible = append(visible, req)
		}
	}
	return visible, nil
}

// ResolveAction is an admin's verdict on a pending request.
type ResolveAction string

const (
	ActionApprove ResolveAction = "approve"
	ActionReject  ResolveAction = "reject"
)

// Resolve approves or rejects one pending request. Approval writes the
// proposed fields into the directory store before flipping the status, so a
// failed write leaves the request pending and retryable. The status flip is
// conditional on the row still being pending; a racing reviewer gets Conflict.
func (s *UpdateService) Resolve(ctx context.Context, a domain.AdminAccess, reviewerEmail string, id uuid.UUID, action ResolveAction, note string) (*domain.ResourceUpdateRequest, error) {
	if !a.IsAdmin {
		return nil, domain.ErrForbidden("admin access required")
	}
	if s.db == nil {
		return nil, domain.ErrStoreUnavailable("the contributor update workflow")
	}
	if action != ActionApprove && action != ActionReject {
		return nil, domain.ErrValidation("invalid action: " + string(action))
	}

	req, err := s.updates.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, domain.ErrInternal("find update request", err)
	}
	if req == nil {
		return nil, domain.ErrNotFound("update request", id.String())
	}

	externalID := ""
	if req.ResourceExternalID != nil {
		externalID = *req.ResourceExternalID
	}
	if !access.CanReviewResourceUpdate(a, req.CitySlug, externalID) {
		return nil, domain.ErrForbidden("no review rights for this update")
	}
	if req.Status != domain.UpdatePending {
		return nil, domain.ErrConflict("update request already processed")
	}

	if reviewerEmail == "" {
		reviewerEmail = "system"
	}
	now := time.Now()
	var notePtr *string
	if trimmed := strings.TrimSpace(note); trimmed != "" {
		notePtr = &trimmed
	}

	if action == ActionApprove {
		if err := s.applyApproval(ctx, req, now); err != nil {
			return nil, err
		}
	}

	status := domain.UpdateApproved
	if action == ActionReject {
		status = domain.UpdateRejected
	}

	flipped, err := s.updates.MarkResolved(ctx, s.db, req.ID, status, reviewerEmail, now, notePtr)
	if err != nil {
		return nil, domain.ErrInternal("mark update resolved", err)
	}
	if !flipped {
		return nil, domain.ErrConflict("update request already processed")
	}

	req.Status = status
	req.ReviewedByEmail = &reviewerEmail
	req.ReviewedAt = &now
	req.ReviewNote = notePtr

	s.logger.Info("update request resolved",
		"request_id", req.ID,
		"city", req.CitySlug,
		"status", status,
		"reviewed_by", reviewerEmail,
	)
	return req, nil
}

// applyApproval validates the payload and writes it into the directory store.
// Errors here must surface before any status change.
func (s *UpdateService) applyApproval(ctx context.Context, req *domain.ResourceUpdateRequest, now time.Time) error {
	name := strings.TrimSpace(req.Payload.Name)
	address := strings.TrimSpace(req.Payload.Address)
	if name == "" || address == "" {
		return domain.ErrValidation("invalid payload: name and address required")
	}

	externalID := ""
	if req.ResourceExternalID != nil {
		externalID = *req.ResourceExternalID
	}
	if externalID == "" {
		externalID = req.Payload.ResourceID
	}
	if externalID == "" {
		externalID = uuid.NewString()
	}

	availability := domain.NormalizeAvailability(string(req.Payload.AvailabilityStatus))
	fields := domain.ResourceFields{
		Name:               name,
		Address:            address,
		Lat:                req.Payload.Lat,
		Lng:                req.Payload.Lng,
		Hours:              req.Payload.Hours,
		DaysOpen:           req.Payload.DaysOpen,
		Phone:              req.Payload.Phone,
		Website:            req.Payload.Website,
		RequiresID:         req.Payload.RequiresID,
		WalkIn:             req.Payload.WalkIn,
		Notes:              req.Payload.Notes,
		AvailabilityStatus: availability,
	}
	if availability == domain.AvailabilityYes {
		fields.LastAvailableAt = &now
	}

	if _, err := s.store.UpsertResource(ctx, req.CitySlug, req.Category, externalID, fields); err != nil {
		return domain.ErrInternal("apply approved update", err)
	}
	return nil
}
