package handler

import (
	"github.com/stretchr/testify/mock"

	"roomchat/backend/internal/models"
)

// MockStorage is a testify mock of the storage.Storage interface.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) ResolveRoom(clientID string, participantIDs []string, label string) (*models.Room, bool, error) {
	args := m.Called(clientID, participantIDs, label)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Room), args.Bool(1), args.Error(2)
}

func (m *MockStorage) LeaveRoom(roomID uint, userID string) error {
	args := m.Called(roomID, userID)
	return args.Error(0)
}

func (m *MockStorage) ListRoomsForUser(userID string) ([]models.Room, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Room), args.Error(1)
}

func (m *MockStorage) GetRoomByID(roomID uint) (*models.Room, error) {
	args := m.Called(roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Room), args.Error(1)
}

func (m *MockStorage) HasActiveMembership(roomID uint, userID string) (bool, error) {
	args := m.Called(roomID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) AppendMessage(roomID uint, senderID, contentType, content string) (*models.Message, error) {
	args := m.Called(roomID, senderID, contentType, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

func (m *MockStorage) ListMessages(roomID uint, before uint, limit int) ([]models.Message, error) {
	args := m.Called(roomID, before, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Message), args.Error(1)
}

func (m *MockStorage) SoftDeleteMessage(messageID uint, requesterID string) error {
	args := m.Called(messageID, requesterID)
	return args.Error(0)
}

func (m *MockStorage) PublishEvent(roomID uint, ev models.Event) error {
	args := m.Called(roomID, ev)
	return args.Error(0)
}

// MockReporter records activity reports.
type MockReporter struct {
	mock.Mock
}

func (m *MockReporter) Report(kind string, fields map[string]any) {
	m.Called(kind, fields)
}
