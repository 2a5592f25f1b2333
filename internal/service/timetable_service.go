package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/engine"
	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
	"github.com/noah-isme/timetable-api/pkg/export"
)

type facultyReader interface {
	List(ctx context.Context, filter models.FacultyFilter) ([]models.Faculty, error)
}

type roomReader interface {
	List(ctx context.Context, filter models.RoomFilter) ([]models.Room, error)
}

type subjectReader interface {
	List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, error)
}

type leaveReader interface {
	ListApproved(ctx context.Context) ([]models.LeaveRequest, error)
	FindByID(ctx context.Context, id string) (*models.LeaveRequest, error)
}

type timetableStore interface {
	Save(ctx context.Context, timetable *models.Timetable) (string, error)
	Publish(ctx context.Context, id string) error
	GetPublished(ctx context.Context) (*models.Timetable, error)
	FindByID(ctx context.Context, id string) (*models.Timetable, error)
}

type timetableCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type exportArchive interface {
	Save(filename string, data []byte) (string, error)
}

type scheduleEngine interface {
	Generate(ctx context.Context, faculty []models.Faculty, rooms []models.Room, subjects []models.Subject,
		leaves []models.LeaveRequest, breaks []models.Break, practicals []models.Practical) ([]*models.Timetable, error)
	Reschedule(published *models.Timetable, leave models.LeaveRequest,
		faculty []models.Faculty, rooms []models.Room) (*models.Timetable, bool)
}

const (
	publishedCacheKey     = "timetable:published"
	timetableCachePattern = "timetable:*"
)

// Reschedule outcomes reported to callers and metrics.
const (
	RescheduleSubstituted = "substituted"
	RescheduleVacated     = "vacated"
	RescheduleUnchanged   = "unchanged"
)

// TimetableService orchestrates timetable generation, publication, repair
// and export on top of the scheduling engine.
type TimetableService struct {
	faculty    facultyReader
	rooms      roomReader
	subjects   subjectReader
	leaves     leaveReader
	timetables timetableStore
	cache      timetableCache
	engine     scheduleEngine
	archive    exportArchive
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
	cacheTTL   time.Duration
}

// NewTimetableService wires the timetable dependencies. Cache, archive and
// metrics are optional; a nil cache disables read-through caching and a nil
// archive disables export archiving.
func NewTimetableService(
	faculty facultyReader,
	rooms roomReader,
	subjects subjectReader,
	leaves leaveReader,
	timetables timetableStore,
	cache timetableCache,
	eng scheduleEngine,
	archive exportArchive,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cacheTTL time.Duration,
) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if eng == nil {
		eng = engine.New(engine.Config{}, nil, logger)
	}
	if metrics == nil {
		metrics = NewMetricsService()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &TimetableService{
		faculty:    faculty,
		rooms:      rooms,
		subjects:   subjects,
		leaves:     leaves,
		timetables: timetables,
		cache:      cache,
		engine:     eng,
		archive:    archive,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
		cacheTTL:   cacheTTL,
	}
}

// Generate runs the engine against the current rosters and persists every
// candidate as an unpublished draft. The best candidate is returned in full.
func (s *TimetableService) Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid generation payload")
	}

	faculty, rooms, subjects, leaves, err := s.loadRosters(ctx)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	candidates, err := s.engine.Generate(ctx, faculty, rooms, subjects, leaves, toBreaks(req.Breaks), toPracticals(req.Practicals))
	if err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "timetable generation failed")
	}

	best := candidates[0]
	resp := &dto.GenerateTimetableResponse{
		Timetable: best.Grid,
		Score:     best.Score,
		Metrics:   best.Metrics,
		Fallback:  best.Fallback,
	}
	for _, candidate := range candidates {
		id, saveErr := s.timetables.Save(ctx, candidate)
		if saveErr != nil {
			return nil, appErrors.Wrap(saveErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist timetable candidate")
		}
		candidate.ID = id
		resp.Candidates = append(resp.Candidates, dto.TimetableCandidate{ID: id, Score: candidate.Score})
	}
	resp.ID = best.ID

	s.metrics.ObserveGeneration(best.Fallback, best.Score, time.Since(started))
	s.logger.Info("timetable generated",
		zap.Int("candidates", len(candidates)),
		zap.Float64("bestScore", best.Score),
		zap.Bool("fallback", best.Fallback),
		zap.Duration("elapsed", time.Since(started)))
	return resp, nil
}

// GetPublished returns the currently published timetable, read through the
// cache when one is configured.
func (s *TimetableService) GetPublished(ctx context.Context) (*models.Timetable, error) {
	if s.cache != nil {
		var cached models.Timetable
		lookupStart := time.Now()
		err := s.cache.Get(ctx, publishedCacheKey, &cached)
		s.metrics.RecordCacheOperation(err == nil, time.Since(lookupStart))
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("published timetable cache lookup failed", zap.Error(err))
		}
	}

	published, err := s.timetables.GetPublished(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no published timetable")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load published timetable")
	}

	if s.cache != nil {
		writeStart := time.Now()
		if err := s.cache.Set(ctx, publishedCacheKey, published, s.cacheTTL); err != nil {
			s.logger.Warn("published timetable cache write failed", zap.Error(err))
		} else {
			s.metrics.ObserveCacheWrite(time.Since(writeStart))
		}
	}
	return published, nil
}

// Publish marks a stored candidate as the single published timetable and
// invalidates cached reads.
func (s *TimetableService) Publish(ctx context.Context, req dto.PublishTimetableRequest) (*models.Timetable, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid publish payload")
	}

	timetable, err := s.timetables.FindByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}

	if err := s.timetables.Publish(ctx, req.ID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to publish timetable")
	}
	timetable.Published = true
	s.invalidateCache(ctx)
	s.logger.Info("timetable published", zap.String("id", req.ID), zap.Float64("score", timetable.Score))
	return timetable, nil
}

// Reschedule repairs the published timetable for an approved leave request.
// The repaired timetable is persisted and published atomically with respect
// to the single-published invariant; the previous version stays queryable.
func (s *TimetableService) Reschedule(ctx context.Context, req dto.RescheduleRequest) (*dto.RescheduleResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reschedule payload")
	}

	leave, err := s.leaves.FindByID(ctx, req.LeaveRequestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "leave request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load leave request")
	}
	if leave.Status != models.LeaveApproved {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "leave request is not approved")
	}

	published, err := s.timetables.GetPublished(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no published timetable to reschedule")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load published timetable")
	}

	faculty, err := s.faculty.List(ctx, models.FacultyFilter{})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty roster")
	}
	rooms, err := s.rooms.List(ctx, models.RoomFilter{})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room roster")
	}

	repaired, changed := s.engine.Reschedule(published, *leave, faculty, rooms)
	if !changed {
		s.metrics.ObserveReschedule(RescheduleUnchanged)
		return &dto.RescheduleResponse{Outcome: RescheduleUnchanged}, nil
	}

	outcome := RescheduleSubstituted
	if repaired.Metrics.FilledSlots < published.Metrics.FilledSlots {
		outcome = RescheduleVacated
	}

	id, err := s.timetables.Save(ctx, repaired)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist repaired timetable")
	}
	if err := s.timetables.Publish(ctx, id); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to publish repaired timetable")
	}
	repaired.ID = id
	repaired.Published = true
	s.invalidateCache(ctx)

	s.metrics.ObserveReschedule(outcome)
	s.logger.Info("published timetable repaired",
		zap.String("leaveRequestId", leave.ID),
		zap.String("faculty", leave.FacultyName),
		zap.String("outcome", outcome))
	return &dto.RescheduleResponse{Outcome: outcome, Timetable: repaired}, nil
}

// Statistics aggregates the published timetable's metrics with a system
// snapshot. A missing published timetable is not an error here.
func (s *TimetableService) Statistics(ctx context.Context) (*dto.TimetableStatisticsResponse, error) {
	resp := &dto.TimetableStatisticsResponse{System: s.metrics.Snapshot()}

	published, err := s.timetables.GetPublished(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return resp, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load published timetable")
	}
	resp.Published = true
	resp.Score = published.Score
	resp.Metrics = &published.Metrics
	return resp, nil
}

// Export renders the published timetable as CSV or PDF bytes.
func (s *TimetableService) Export(ctx context.Context, format string) ([]byte, string, error) {
	published, err := s.GetPublished(ctx)
	if err != nil {
		return nil, "", err
	}

	dataset := gridDataset(published.Grid)
	switch strings.ToLower(format) {
	case "csv", "":
		payload, renderErr := export.NewCSVExporter().Render(dataset)
		if renderErr != nil {
			return nil, "", appErrors.Wrap(renderErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		s.archiveExport("csv", payload)
		return payload, "text/csv", nil
	case "pdf":
		payload, renderErr := export.NewPDFExporter().Render(dataset, "Weekly Timetable")
		if renderErr != nil {
			return nil, "", appErrors.Wrap(renderErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		s.archiveExport("pdf", payload)
		return payload, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

// archiveExport keeps a dated copy of rendered exports on disk. Failures
// only log; the download itself is unaffected.
func (s *TimetableService) archiveExport(extension string, payload []byte) {
	if s.archive == nil {
		return
	}
	filename := fmt.Sprintf("timetable-%s.%s", time.Now().UTC().Format("20060102"), extension)
	path, err := s.archive.Save(filename, payload)
	if err != nil {
		s.logger.Warn("export archive write failed", zap.String("filename", filename), zap.Error(err))
		return
	}
	s.logger.Debug("export archived", zap.String("path", path))
}

func (s *TimetableService) loadRosters(ctx context.Context) ([]models.Faculty, []models.Room, []models.Subject, []models.LeaveRequest, error) {
	faculty, err := s.faculty.List(ctx, models.FacultyFilter{})
	if err != nil {
		return nil, nil, nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty roster")
	}
	rooms, err := s.rooms.List(ctx, models.RoomFilter{})
	if err != nil {
		return nil, nil, nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room roster")
	}
	subjects, err := s.subjects.List(ctx, models.SubjectFilter{})
	if err != nil {
		return nil, nil, nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject roster")
	}
	leaves, err := s.leaves.ListApproved(ctx)
	if err != nil {
		return nil, nil, nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load approved leaves")
	}
	return faculty, rooms, subjects, leaves, nil
}

func (s *TimetableService) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, timetableCachePattern); err != nil {
		s.logger.Warn("timetable cache invalidation failed", zap.Error(err))
	}
}

func toBreaks(reqs []dto.BreakRequest) []models.Break {
	breaks := make([]models.Break, 0, len(reqs))
	for _, req := range reqs {
		breaks = append(breaks, models.Break{
			Name:      req.Name,
			StartTime: req.StartTime,
			Duration:  req.Duration,
			Day:       req.Day,
		})
	}
	return breaks
}

func toPracticals(reqs []dto.PracticalRequest) []models.Practical {
	practicals := make([]models.Practical, 0, len(reqs))
	for _, req := range reqs {
		practicals = append(practicals, models.Practical{
			Subject:     req.Subject,
			Faculty:     req.Faculty,
			Room:        req.Room,
			Duration:    req.Duration,
			Description: req.Description,
		})
	}
	return practicals
}

// gridDataset flattens the weekly grid into one row per period with a column
// per day, matching the on-screen layout.
func gridDataset(grid models.Grid) export.Dataset {
	headers := append([]string{"Period"}, engine.Days...)
	rows := make([]map[string]string, 0, len(engine.Periods))
	for _, period := range engine.Periods {
		row := map[string]string{"Period": period}
		for _, day := range engine.Days {
			row[day] = formatSlot(grid[day][period])
		}
		rows = append(rows, row)
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

func formatSlot(slot *models.Slot) string {
	if slot == nil {
		return ""
	}
	if slot.Type == models.SlotBreak {
		if slot.Name != "" {
			return slot.Name
		}
		return "Break"
	}
	value := fmt.Sprintf("%s / %s / %s", slot.Subject, slot.Faculty, slot.Room)
	if slot.Type == models.SlotPractical {
		value += " (practical)"
	}
	return value
}
