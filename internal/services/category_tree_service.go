package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"elafcatalog/internal/caching"
	"elafcatalog/internal/categorytree"
	"elafcatalog/internal/models"
	"elafcatalog/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrCatalogEmpty is returned when a tenant has no stored category records.
var ErrCatalogEmpty = errors.New("no categories stored for tenant")

// CategoryTreeConfig holds the tunables of CategoryTreeService
type CategoryTreeConfig struct {
	Bucket       string
	URLExpiry    time.Duration
	CacheTTL     time.Duration
	RejectCycles bool
}

// CategoryTreeService builds, stores, caches and publishes category forests.
type CategoryTreeService interface {
	Preview(records []models.FlatRecord) (*categorytree.Report, error)
	Import(ctx context.Context, tenantID uuid.UUID, records []models.FlatRecord) (*models.ImportSummary, error)
	Tree(ctx context.Context, tenantID uuid.UUID) ([]byte, error)
	Publish(ctx context.Context, tenantID uuid.UUID) (*models.TreeSnapshot, error)
	RefreshAll(ctx context.Context) (int, error)
	PublishAll(ctx context.Context) (int, error)
}

type categoryTreeService struct {
	repo   repositories.CategoryRecordRepository
	cache  caching.TreeCache
	store  SnapshotStore
	cfg    CategoryTreeConfig
	logger *zap.Logger
	now    func() time.Time
}

func NewCategoryTreeService(repo repositories.CategoryRecordRepository, cache caching.TreeCache, store SnapshotStore,
	cfg CategoryTreeConfig, logger *zap.Logger) CategoryTreeService {
	return &categoryTreeService{
		repo:   repo,
		cache:  cache,
		store:  store,
		cfg:    cfg,
		logger: logger.Named("category-tree"),
		now:    time.Now,
	}
}

func (s *categoryTreeService) options() categorytree.Options {
	return categorytree.Options{RejectCycles: s.cfg.RejectCycles}
}

// Preview builds a forest without touching storage.
func (s *categoryTreeService) Preview(records []models.FlatRecord) (*categorytree.Report, error) {
	return categorytree.BuildWithOptions(records, s.options())
}

// Import validates records by building them, then replaces the tenant's
// stored records. Invalid input never reaches the database.
func (s *categoryTreeService) Import(ctx context.Context, tenantID uuid.UUID, records []models.FlatRecord) (*models.ImportSummary, error) {
	start := time.Now()

	report, err := categorytree.BuildWithOptions(records, s.options())
	if err != nil {
		return nil, fmt.Errorf("build category tree: %w", err)
	}

	if err := s.repo.ReplaceAll(ctx, tenantID, records); err != nil {
		return nil, fmt.Errorf("store category records: %w", err)
	}

	if err := s.cache.DeleteTree(ctx, tenantID); err != nil {
		s.logger.Warn("failed to drop cached tree", zap.Stringer("tenant_id", tenantID), zap.Error(err))
	}

	s.logReport(tenantID, report)
	s.logger.Info("imported categories",
		zap.Stringer("tenant_id", tenantID),
		zap.Int("records", len(records)),
		zap.Int("roots", len(report.Forest)),
		zap.Duration("elapsed", time.Since(start)))

	return &models.ImportSummary{
		TenantID:    tenantID,
		Records:     len(records),
		Roots:       len(report.Forest),
		Nodes:       report.Nodes(),
		Unreachable: report.Unreachable,
		Collisions:  report.Collisions,
	}, nil
}

// Tree returns the tenant's encoded forest, from cache when possible.
func (s *categoryTreeService) Tree(ctx context.Context, tenantID uuid.UUID) ([]byte, error) {
	cached, err := s.cache.GetTree(ctx, tenantID)
	if err != nil {
		s.logger.Warn("tree cache read failed", zap.Stringer("tenant_id", tenantID), zap.Error(err))
	} else if cached != nil {
		return cached, nil
	}

	data, _, err := s.build(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetTree(ctx, tenantID, data, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("tree cache write failed", zap.Stringer("tenant_id", tenantID), zap.Error(err))
	}
	return data, nil
}

// Publish uploads the tenant's current forest to object storage.
func (s *categoryTreeService) Publish(ctx context.Context, tenantID uuid.UUID) (*models.TreeSnapshot, error) {
	data, report, err := s.build(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	createdAt := s.now().UTC()
	objectName := fmt.Sprintf("trees/%s/%s-%s.json", tenantID, createdAt.Format("20060102T150405Z"), uuid.NewString())

	if err := s.store.PutJSON(ctx, s.cfg.Bucket, objectName, data); err != nil {
		return nil, fmt.Errorf("upload snapshot: %w", err)
	}

	url, err := s.store.GetPresignedURL(ctx, s.cfg.Bucket, objectName, s.cfg.URLExpiry)
	if err != nil {
		s.logger.Warn("failed to presign snapshot", zap.String("object", objectName), zap.Error(err))
		url = ""
	}

	s.logger.Info("published category snapshot",
		zap.Stringer("tenant_id", tenantID),
		zap.String("object", objectName),
		zap.Int("bytes", len(data)))

	return &models.TreeSnapshot{
		TenantID:   tenantID,
		Bucket:     s.cfg.Bucket,
		ObjectName: objectName,
		URL:        url,
		Roots:      len(report.Forest),
		Nodes:      report.Nodes(),
		Size:       int64(len(data)),
		CreatedAt:  createdAt,
	}, nil
}

// RefreshAll rebuilds and re-caches every stored tenant. A failing tenant is
// logged and skipped.
func (s *categoryTreeService) RefreshAll(ctx context.Context) (int, error) {
	return s.eachTenant(ctx, "refresh", func(tenantID uuid.UUID) error {
		data, _, err := s.build(ctx, tenantID)
		if err != nil {
			return err
		}
		return s.cache.SetTree(ctx, tenantID, data, s.cfg.CacheTTL)
	})
}

// PublishAll publishes a snapshot for every stored tenant.
func (s *categoryTreeService) PublishAll(ctx context.Context) (int, error) {
	return s.eachTenant(ctx, "publish", func(tenantID uuid.UUID) error {
		_, err := s.Publish(ctx, tenantID)
		return err
	})
}

func (s *categoryTreeService) eachTenant(ctx context.Context, op string, fn func(uuid.UUID) error) (int, error) {
	tenants, err := s.repo.ListTenants(ctx)
	if err != nil {
		return 0, fmt.Errorf("list tenants: %w", err)
	}

	done := 0
	for _, tenantID := range tenants {
		if err := ctx.Err(); err != nil {
			return done, err
		}
		if err := fn(tenantID); err != nil {
			s.logger.Warn("tenant "+op+" failed", zap.Stringer("tenant_id", tenantID), zap.Error(err))
			continue
		}
		done++
	}
	return done, nil
}

func (s *categoryTreeService) build(ctx context.Context, tenantID uuid.UUID) ([]byte, *categorytree.Report, error) {
	records, err := s.repo.List(ctx, tenantID)
	if err != nil {
		return nil, nil, fmt.Errorf("list category records: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, ErrCatalogEmpty
	}

	report, err := categorytree.BuildWithOptions(records, s.options())
	if err != nil {
		return nil, nil, fmt.Errorf("build category tree: %w", err)
	}

	data, err := categorytree.MarshalForest(report.Forest)
	if err != nil {
		return nil, nil, fmt.Errorf("encode category tree: %w", err)
	}
	return data, report, nil
}

func (s *categoryTreeService) logReport(tenantID uuid.UUID, report *categorytree.Report) {
	if len(report.Collisions) > 0 {
		s.logger.Warn("category ids collide after normalization",
			zap.Stringer("tenant_id", tenantID), zap.Strings("keys", report.Collisions))
	}
	if len(report.Unreachable) > 0 {
		s.logger.Warn("categories on a parent cycle are missing from the tree",
			zap.Stringer("tenant_id", tenantID), zap.Strings("ids", report.Unreachable))
	}
}
