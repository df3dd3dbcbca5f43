package httpapi

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/PeytonNagle/MoodMusic2/internal/history"
	"github.com/PeytonNagle/MoodMusic2/internal/recommend"
)

type MockEngine struct {
	mock.Mock
}

func (m *MockEngine) Analyze(ctx context.Context, q recommend.MoodQuery) (recommend.MoodAnalysis, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(recommend.MoodAnalysis), args.Error(1)
}

func (m *MockEngine) Recommend(ctx context.Context, q recommend.MoodQuery) (recommend.Result, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(recommend.Result), args.Error(1)
}

func (m *MockEngine) RecommendWithAnalysis(ctx context.Context, q recommend.MoodQuery, analysis recommend.MoodAnalysis) (recommend.Result, error) {
	args := m.Called(ctx, q, analysis)
	return args.Get(0).(recommend.Result), args.Error(1)
}

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateUser(ctx context.Context, email, passwordHash, displayName string) (history.User, error) {
	args := m.Called(ctx, email, passwordHash, displayName)
	return args.Get(0).(history.User), args.Error(1)
}

func (m *MockRepository) GetUserByEmail(ctx context.Context, email string) (history.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(history.User), args.Error(1)
}

func (m *MockRepository) SaveSearch(ctx context.Context, job history.SaveJob) (int64, error) {
	args := m.Called(ctx, job)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) FetchHistory(ctx context.Context, userID int64, limit int) ([]history.PastSearch, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]history.PastSearch), args.Error(1)
}
