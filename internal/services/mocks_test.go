package services

import (
	"context"
	"time"

	"elafcatalog/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockCategoryRecordRepository struct {
	mock.Mock
}

func (m *MockCategoryRecordRepository) ReplaceAll(ctx context.Context, tenantID uuid.UUID, records []models.FlatRecord) error {
	args := m.Called(ctx, tenantID, records)
	return args.Error(0)
}

func (m *MockCategoryRecordRepository) List(ctx context.Context, tenantID uuid.UUID) ([]models.FlatRecord, error) {
	args := m.Called(ctx, tenantID)
	records, _ := args.Get(0).([]models.FlatRecord)
	return records, args.Error(1)
}

func (m *MockCategoryRecordRepository) ListTenants(ctx context.Context) ([]uuid.UUID, error) {
	args := m.Called(ctx)
	tenants, _ := args.Get(0).([]uuid.UUID)
	return tenants, args.Error(1)
}

func (m *MockCategoryRecordRepository) Count(ctx context.Context, tenantID uuid.UUID) (int, error) {
	args := m.Called(ctx, tenantID)
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
	args := m.Called(ctx, tenantID, data, ttl)
	return args.Error(0)
}

func (m *MockTreeCache) DeleteTree(ctx context.Context, tenantID uuid.UUID) error {
	args := m.Called(ctx, tenantID)
	return args.Error(0)
}

func (m *MockTreeCache) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockSnapshotStore struct {
	mock.Mock
}

func (m *MockSnapshotStore) PutJSON(ctx context.Context, bucketName, objectName string, data []byte) error {
	args := m.Called(ctx, bucketName, objectName, data)
	return args.Error(0)
}

func (m *MockSnapshotStore) GetPresignedURL(ctx context.Context, bucketName, objectName string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, bucketName, objectName, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockSnapshotStore) EnsureBucketExists(ctx context.Context, bucketName string) error {
	args := m.Called(ctx, bucketName)
	return args.Error(0)
}

func (m *MockSnapshotStore) Ping(ctx context.Context, bucketName string) error {
	args := m.Called(ctx, bucketName)
	return args.Error(0)
}
