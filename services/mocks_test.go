package services

import (
	"context"
	"reflect"

	"github.com/golang/mock/gomock"

	"gamefilm/timeline"
)

// MockVideoCatalog is a mock of VideoCatalog interface
type MockVideoCatalog struct {
	ctrl     *gomock.Controller
	recorder *MockVideoCatalogMockRecorder
}

// MockVideoCatalogMockRecorder is the mock recorder for MockVideoCatalog
type MockVideoCatalogMockRecorder struct {
	mock *MockVideoCatalog
}

// NewMockVideoCatalog creates a new mock instance
func NewMockVideoCatalog(ctrl *gomock.Controller) *MockVideoCatalog {
	mock := &MockVideoCatalog{ctrl: ctrl}
	mock.recorder = &MockVideoCatalogMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use
func (m *MockVideoCatalog) EXPECT() *MockVideoCatalogMockRecorder {
	return m.recorder
}

// Video mocks base method
func (m *MockVideoCatalog) Video(ctx context.Context, id string) (timeline.VideoAsset, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Video", ctx, id)
	ret0, _ := ret[0].(timeline.VideoAsset)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Video indicates an expected call of Video
func (mr *MockVideoCatalogMockRecorder) Video(ctx, id interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Video", reflect.TypeOf((*MockVideoCatalog)(nil).Video), ctx, id)
}

// MockTimelineRepository is a mock of TimelineRepository interface
type MockTimelineRepository struct {
	ctrl     *gomock.Controller
	recorder *MockTimelineRepositoryMockRecorder
}

// MockTimelineRepositoryMockRecorder is the mock recorder for MockTimelineRepository
type MockTimelineRepositoryMockRecorder struct {
	mock *MockTimelineRepository
}

// NewMockTimelineRepository creates a new mock instance
func NewMockTimelineRepository(ctrl *gomock.Controller) *MockTimelineRepository {
	mock := &MockTimelineRepository{ctrl: ctrl}
	mock.recorder = &MockTimelineRepositoryMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use
func (m *MockTimelineRepository) EXPECT() *MockTimelineRepositoryMockRecorder {
	return m.recorder
}

// LoadTimeline mocks base method
func (m *MockTimelineRepository) LoadTimeline(ctx context.Context, gameID string) (*timeline.GameTimeline, int64, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "LoadTimeline", ctx, gameID)
	ret0, _ := ret[0].(*timeline.GameTimeline)
	ret1, _ := ret[1].(int64)
	ret2, _ := ret[2].(error)
	return ret0, ret1, ret2
}

// LoadTimeline indicates an expected call of LoadTimeline
func (mr *MockTimelineRepositoryMockRecorder) LoadTimeline(ctx, gameID interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "LoadTimeline", reflect.TypeOf((*MockTimelineRepository)(nil).LoadTimeline), ctx, gameID)
}

// SaveTimeline mocks base method
func (m *MockTimelineRepository) SaveTimeline(ctx context.Context, tl *timeline.GameTimeline, expectedRevision int64) (int64, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "SaveTimeline", ctx, tl, expectedRevision)
	ret0, _ := ret[0].(int64)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// SaveTimeline indicates an expected call of SaveTimeline
func (mr *MockTimelineRepositoryMockRecorder) SaveTimeline(ctx, tl, expectedRevision interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "SaveTimeline", reflect.TypeOf((*MockTimelineRepository)(nil).SaveTimeline), ctx, tl, expectedRevision)
}

// DeleteTimeline mocks base method
func (m *MockTimelineRepository) DeleteTimeline(ctx context.Context, gameID string) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "DeleteTimeline", ctx, gameID)
	ret0, _ := ret[0].(error)
	return ret0
}

// DeleteTimeline indicates an expected call of DeleteTimeline
func (mr *MockTimelineRepositoryMockRecorder) DeleteTimeline(ctx, gameID interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "DeleteTimeline", reflect.TypeOf((*MockTimelineRepository)(nil).DeleteTimeline), ctx, gameID)
}

// GetResumePosition mocks base method
func (m *MockTimelineRepository) GetResumePosition(ctx context.Context, gameID, viewerID string) (*timeline.ResumePosition, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetResumePosition", ctx, gameID, viewerID)
	ret0, _ := ret[0].(*timeline.ResumePosition)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetResumePosition indicates an expected call of GetResumePosition
func (mr *MockTimelineRepositoryMockRecorder) GetResumePosition(ctx, gameID, viewerID interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetResumePosition", reflect.TypeOf((*MockTimelineRepository)(nil).GetResumePosition), ctx, gameID, viewerID)
}

// SetResumePosition mocks base method
func (m *MockTimelineRepository) SetResumePosition(ctx context.Context, pos timeline.ResumePosition) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "SetResumePosition", ctx, pos)
	ret0, _ := ret[0].(error)
	return ret0
}

// SetResumePosition indicates an expected call of SetResumePosition
func (mr *MockTimelineRepositoryMockRecorder) SetResumePosition(ctx, pos interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "SetResumePosition", reflect.TypeOf((*MockTimelineRepository)(nil).SetResumePosition), ctx, pos)
}

// MockProber is a mock of Prober interface
type MockProber struct {
	ctrl     *gomock.Controller
	recorder *MockProberMockRecorder
}

// MockProberMockRecorder is the mock recorder for MockProber
type MockProberMockRecorder struct {
	mock *MockProber
}

// NewMockProber creates a new mock instance
func NewMockProber(ctrl *gomock.Controller) *MockProber {
	mock := &MockProber{ctrl: ctrl}
	mock.recorder = &MockProberMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use
func (m *MockProber) EXPECT() *MockProberMockRecorder {
	return m.recorder
}

// DurationMs mocks base method
func (m *MockProber) DurationMs(ctx context.Context, path string) (int64, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "DurationMs", ctx, path)
	ret0, _ := ret[0].(int64)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// DurationMs indicates an expected call of DurationMs
func (mr *MockProberMockRecorder) DurationMs(ctx, path interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "DurationMs", reflect.TypeOf((*MockProber)(nil).DurationMs), ctx, path)
}
