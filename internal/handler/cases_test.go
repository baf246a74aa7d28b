package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/emberhold/GuildShop_Go/internal/cases"
	"github.com/emberhold/GuildShop_Go/internal/domain"
)

func TestHandleOpenCase(t *testing.T) {
	tests := []struct {
		name           string
		reqBody        interface{}
		setupMock      func(*MockCaseService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "Invalid JSON",
			reqBody:        "{broken",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   ErrMsgInvalidRequest,
		},
		{
			name: "Not a case",
			reqBody: OpenCaseRequest{
				UserID:     testUserID.String(),
				CaseItemID: 5,
			},
			setupMock: func(m *MockCaseService) {
				m.On("OpenCase", mock.Anything, testUserID, 5).Return(nil, domain.ErrNotACase)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   ErrMsgNotACaseError,
		},
		{
			name: "Case not owned",
			reqBody: OpenCaseRequest{
				UserID:     testUserID.String(),
				CaseItemID: 5,
			},
			setupMock: func(m *MockCaseService) {
				m.On("OpenCase", mock.Anything, testUserID, 5).Return(nil, domain.ErrCaseNotOwned)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   ErrMsgCaseNotOwnedError,
		},
		{
			name: "Misconfigured case surfaces as server error",
			reqBody: OpenCaseRequest{
				UserID:     testUserID.String(),
				CaseItemID: 5,
			},
			setupMock: func(m *MockCaseService) {
				m.On("OpenCase", mock.Anything, testUserID, 5).Return(nil, domain.ErrInvalidCaseContents)
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   ErrMsgCaseMisconfigError,
		},
		{
			name: "Success with prize",
			reqBody: OpenCaseRequest{
				UserID:     testUserID.String(),
				CaseItemID: 5,
			},
			setupMock: func(m *MockCaseService) {
				m.On("OpenCase", mock.Anything, testUserID, 5).Return(&cases.RollResult{
					Prize:     domain.CatalogItem{ID: 9, DisplayName: "Gilded Rod"},
					RollValue: 42,
					DropRate:  8,
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"roll_value":42`,
		},
		{
			name: "Duplicate compensated",
			reqBody: OpenCaseRequest{
				UserID:     testUserID.String(),
				CaseItemID: 5,
			},
			setupMock: func(m *MockCaseService) {
				m.On("OpenCase", mock.Anything, testUserID, 5).Return(&cases.RollResult{
					Prize:        domain.CatalogItem{ID: 9, DisplayName: "Gilded Rod"},
					RollValue:    3,
					DropRate:     2,
					AlreadyOwned: true,
					Compensation: &cases.Compensation{Credits: 500, Experience: 100},
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"credits":500`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockCases := new(MockCaseService)
			if tt.setupMock != nil {
				tt.setupMock(mockCases)
			}

			rec := postJSON(t, HandleOpenCase(mockCases), "/api/v1/cases/open", tt.reqBody)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedBody != "" {
				assert.Contains(t, rec.Body.String(), tt.expectedBody)
			}
			mockCases.AssertExpectations(t)
		})
	}
}
