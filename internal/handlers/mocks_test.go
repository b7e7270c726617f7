package handlers

import (
	"context"
	"time"

	"elafcatalog/internal/categorytree"
	"elafcatalog/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockCategoryTreeService struct {
	mock.Mock
}

func (m *MockCategoryTreeService) Preview(records []models.FlatRecord) (*categorytree.Report, error) {
	args := m.Called(records)
	report, _ := args.Get(0).(*categorytree.Report)
	return report, args.Error(1)
}

func (m *MockCategoryTreeService) Import(ctx context.Context, tenantID uuid.UUID, records []models.FlatRecord) (*models.ImportSummary, error) {
	args := m.Called(ctx, tenantID, records)
	summary, _ := args.Get(0).(*models.ImportSummary)
	return summary, args.Error(1)
}

func (m *MockCategoryTreeService) Tree(ctx context.Context, tenantID uuid.UUID) ([]byte, error) {
	args := m.Called(ctx, tenantID)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *MockCategoryTreeService) Publish(ctx context.Context, tenantID uuid.UUID) (*models.TreeSnapshot, error) {
	args := m.Called(ctx, tenantID)
	snapshot, _ := args.Get(0).(*models.TreeSnapshot)
	return snapshot, args.Error(1)
}

func (m *MockCategoryTreeService) RefreshAll(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockCategoryTreeService) PublishAll(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockTreeCache struct {
	mock.Mock
}

func (m *MockTreeCache) GetTree(ctx context.Context, tenantID uuid.UUID) ([]byte, error) {
	args := m.Called(ctx, tenantID)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *MockTreeCache) SetTree(ctx context.Context, tenantID uuid.UUID, data []byte, ttl time.Duration) error {
	return m.Called(ctx, tenantID, data, ttl).Error(0)
}

func (m *MockTreeCache) DeleteTree(ctx context.Context, tenantID uuid.UUID) error {
	return m.Called(ctx, tenantID).Error(0)
}

func (m *MockTreeCache) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type MockSnapshotStore struct {
	mock.Mock
}

func (m *MockSnapshotStore) PutJSON(ctx context.Context, bucketName, objectName string, data []byte) error {
	return m.Called(ctx, bucketName, objectName, data).Error(0)
}

func (m *MockSnapshotStore) GetPresignedURL(ctx context.Context, bucketName, objectName string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, bucketName, objectName, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockSnapshotStore) EnsureBucketExists(ctx context.Context, bucketName string) error {
	return m.Called(ctx, bucketName).Error(0)
}

func (m *MockSnapshotStore) Ping(ctx context.Context, bucketName string) error {
	return m.Called(ctx, bucketName).Error(0)
}
