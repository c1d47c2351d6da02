package account_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/compta/internal/account"
)

func TestService_Suggest(t *testing.T) {
	type args struct {
		query string
		limit int
	}

	type testCase struct {
		name      string
		args      args
		setupMock func(m *account.MockRepository)
		wantLen   int
		wantErr   bool
	}

	tests := []testCase{
		{
			name: "DefaultLimit",
			args: args{query: " 401 ", limit: 0},
			setupMock: func(m *account.MockRepository) {
				m.EXPECT().
					Suggest(gomock.Any(), int64(7), "401", account.DefaultSuggestLimit).
					Return([]account.Suggestion{
						{AccountID: 1, AccNum: "401000", AccLib: "Fournisseurs"},
						{AccountID: 2, AccNum: "401100", AccLib: "Fournisseurs divers"},
					}, nil)
			},
			wantLen: 2,
		},
		{
			name: "LimitCapped",
			args: args{query: "6", limit: 500},
			setupMock: func(m *account.MockRepository) {
				m.EXPECT().
					Suggest(gomock.Any(), int64(7), "6", account.MaxSuggestLimit).
					Return(nil, nil)
			},
			wantLen: 0,
		},
		{
			name: "RepoError",
			args: args{query: "40", limit: 5},
			setupMock: func(m *account.MockRepository) {
				m.EXPECT().
					Suggest(gomock.Any(), int64(7), "40", 5).
					Return(nil, errors.New("db error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := account.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := account.NewService(repo)
			got, err := svc.Suggest(context.Background(), 7, tt.args.query, tt.args.limit)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Len(t, got, tt.wantLen)
		})
	}
}

func TestService_Lookup_BlankNumber(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := account.NewService(account.NewMockRepository(ctrl))

	res, err := svc.Lookup(context.Background(), 7, "   ")
	require.NoError(t, err)
	assert.False(t, res.Exists)
}

func TestService_Lookup_Found(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := account.NewMockRepository(ctrl)
	repo.EXPECT().
		Lookup(gomock.Any(), int64(7), "512000").
		Return(account.LookupResult{Exists: true, AccountID: 3, AccLib: "Banque"}, nil)

	svc := account.NewService(repo)

	res, err := svc.Lookup(context.Background(), 7, " 512000")
	require.NoError(t, err)
	assert.True(t, res.Exists)
	assert.Equal(t, "Banque", res.AccLib)
}
